// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mogsworth/gilstream/internal/metrics"
	"github.com/mogsworth/gilstream/internal/models"
)

// ReplaceItems swaps the cached item names for a fresh Teamcraft dump in one
// transaction. Readers either see the old dump or the new one, never a
// partial mix.
func (db *DB) ReplaceItems(ctx context.Context, items []models.ItemInfo) error {
	start := time.Now()
	err := db.replaceItems(ctx, items)
	metrics.RecordDBQuery("replace", "items", time.Since(start), err)
	return err
}

func (db *DB) replaceItems(ctx context.Context, items []models.ItemInfo) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackWithLog(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO items (id, name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer closeQuietly(stmt)

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, item.ID, item.Name); err != nil {
			return fmt.Errorf("failed to insert item %d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item replacement: %w", err)
	}
	return nil
}

// ReplaceMarketableItems swaps the marketable item universe for a fresh
// /marketable fetch in one transaction.
func (db *DB) ReplaceMarketableItems(ctx context.Context, itemIDs []int) error {
	start := time.Now()
	err := db.replaceMarketableItems(ctx, itemIDs)
	metrics.RecordDBQuery("replace", "marketable_items", time.Since(start), err)
	return err
}

func (db *DB) replaceMarketableItems(ctx context.Context, itemIDs []int) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackWithLog(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM marketable_items`); err != nil {
		return fmt.Errorf("failed to clear marketable items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO marketable_items (item_id, synced_at) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare marketable insert: %w", err)
	}
	defer closeQuietly(stmt)

	now := time.Now().UTC()
	for _, id := range itemIDs {
		if _, err := stmt.ExecContext(ctx, id, now); err != nil {
			return fmt.Errorf("failed to insert marketable item %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit marketable replacement: %w", err)
	}
	return nil
}

// ItemName returns the cached name for an item, or an empty string when the
// id is unknown or names have not been synced yet.
func (db *DB) ItemName(ctx context.Context, itemID int) (string, error) {
	query := `SELECT name FROM items WHERE id = ?`

	stmt, err := db.getStmt(ctx, query)
	if err != nil {
		return "", err
	}

	start := time.Now()
	var name string
	err = stmt.QueryRowContext(ctx, itemID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("select", "items", time.Since(start), nil)
		return "", nil
	}
	metrics.RecordDBQuery("select", "items", time.Since(start), err)
	if err != nil {
		return "", err
	}
	return name, nil
}
