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

const upsertWorldQuery = `INSERT INTO worlds (id, name, datacenter, region, fetched_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	datacenter = EXCLUDED.datacenter,
	region = EXCLUDED.region,
	fetched_at = EXCLUDED.fetched_at`

// UpsertWorlds refreshes the cached world rows from an upstream fetch.
// Existing rows are updated in place so tracked_worlds references stay valid.
func (db *DB) UpsertWorlds(ctx context.Context, worlds []models.WorldInfo) error {
	if len(worlds) == 0 {
		return nil
	}

	start := time.Now()
	err := db.upsertWorlds(ctx, worlds)
	metrics.RecordDBQuery("upsert", "worlds", time.Since(start), err)
	return err
}

func (db *DB) upsertWorlds(ctx context.Context, worlds []models.WorldInfo) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackWithLog(tx)

	stmt, err := tx.PrepareContext(ctx, upsertWorldQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare world upsert: %w", err)
	}
	defer closeQuietly(stmt)

	now := time.Now().UTC()
	for _, w := range worlds {
		fetched := w.FetchedAt
		if fetched.IsZero() {
			fetched = now
		}
		if _, err := stmt.ExecContext(ctx, w.ID, w.Name,
			nullIfEmpty(w.DataCenter), nullIfEmpty(w.Region), fetched); err != nil {
			return fmt.Errorf("failed to upsert world %d: %w", w.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit world upsert: %w", err)
	}
	return nil
}

// ListWorlds returns the cached world rows grouped by region and data center.
func (db *DB) ListWorlds(ctx context.Context) ([]models.WorldInfo, error) {
	query := `SELECT id, name, COALESCE(datacenter, ''), COALESCE(region, ''), fetched_at
FROM worlds
ORDER BY region, datacenter, name`

	return queryAndScan(ctx, db, "select", "worlds", query, nil,
		func(rows *sql.Rows) (models.WorldInfo, error) {
			var w models.WorldInfo
			err := rows.Scan(&w.ID, &w.Name, &w.DataCenter, &w.Region, &w.FetchedAt)
			return w, err
		})
}

// WorldByName looks up a cached world by name, case-insensitively.
// Returns nil without error when the world is not cached.
func (db *DB) WorldByName(ctx context.Context, name string) (*models.WorldInfo, error) {
	query := `SELECT id, name, COALESCE(datacenter, ''), COALESCE(region, ''), fetched_at
FROM worlds
WHERE lower(name) = lower(?)`

	start := time.Now()
	var w models.WorldInfo
	err := db.conn.QueryRowContext(ctx, query, name).
		Scan(&w.ID, &w.Name, &w.DataCenter, &w.Region, &w.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("select", "worlds", time.Since(start), nil)
		return nil, nil
	}
	metrics.RecordDBQuery("select", "worlds", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// AddTrackedWorld registers a world for sync passes. Adding a world that is
// already tracked is a no-op.
func (db *DB) AddTrackedWorld(ctx context.Context, worldID int, worldName string) error {
	query := `INSERT INTO tracked_worlds (world_id, world_name, added_at)
VALUES (?, ?, ?)
ON CONFLICT DO NOTHING`

	_, err := db.execOp(ctx, "insert", "tracked_worlds", query, worldID, worldName, time.Now().UTC())
	return err
}

// RemoveTrackedWorld drops a world from the sync set. The bool reports
// whether a row was actually removed.
func (db *DB) RemoveTrackedWorld(ctx context.Context, worldName string) (bool, error) {
	query := `DELETE FROM tracked_worlds WHERE lower(world_name) = lower(?)`

	res, err := db.execOp(ctx, "delete", "tracked_worlds", query, worldName)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListTrackedWorlds returns the tracked worlds with their per-world tracked
// item counts, ordered by world name.
func (db *DB) ListTrackedWorlds(ctx context.Context) ([]models.TrackedWorld, error) {
	query := `SELECT tw.world_id, tw.world_name, tw.added_at, COUNT(ti.item_id)
FROM tracked_worlds tw
LEFT JOIN tracked_items ti ON ti.world_id = tw.world_id
GROUP BY tw.world_id, tw.world_name, tw.added_at
ORDER BY tw.world_name`

	return queryAndScan(ctx, db, "select", "tracked_worlds", query, nil,
		func(rows *sql.Rows) (models.TrackedWorld, error) {
			var w models.TrackedWorld
			err := rows.Scan(&w.WorldID, &w.WorldName, &w.AddedAt, &w.ItemCount)
			return w, err
		})
}
