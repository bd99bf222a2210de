// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mogsworth/gilstream/internal/metrics"
	"github.com/mogsworth/gilstream/internal/models"
)

// insertSnapshotQuery relies on the UNIQUE(item_id, world_id, snapshot_date)
// constraint: a conflicting row is silently dropped, never updated.
const insertSnapshotQuery = `INSERT INTO daily_snapshots (
	item_id, world_id, snapshot_date,
	nq_min_price, hq_min_price,
	nq_avg_price, hq_avg_price,
	nq_sale_velocity, hq_sale_velocity,
	last_sale_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`

// ListTrackedScopes returns every tracked world as a sync scope, ordered by
// world name so pass order is deterministic.
func (db *DB) ListTrackedScopes(ctx context.Context) ([]models.SyncScope, error) {
	query := `SELECT world_id, world_name FROM tracked_worlds ORDER BY world_name`

	return queryAndScan(ctx, db, "select", "tracked_worlds", query, nil,
		func(rows *sql.Rows) (models.SyncScope, error) {
			var s models.SyncScope
			err := rows.Scan(&s.WorldID, &s.WorldName)
			return s, err
		})
}

// ListMarketableItemIDs returns the cached marketable item universe in
// ascending id order. Batch boundaries depend on this order being stable
// between passes.
func (db *DB) ListMarketableItemIDs(ctx context.Context) ([]int, error) {
	query := `SELECT item_id FROM marketable_items ORDER BY item_id`

	return queryAndScan(ctx, db, "select", "marketable_items", query, nil,
		func(rows *sql.Rows) (int, error) {
			var id int
			err := rows.Scan(&id)
			return id, err
		})
}

// ItemsUpdatedToday returns the set of item ids that already have a snapshot
// for the current UTC date on the given world. The sync engine consults this
// before each world, so a pass re-run after a crash skips committed work
// instead of refetching it.
func (db *DB) ItemsUpdatedToday(ctx context.Context, worldID int) (map[int]struct{}, error) {
	query := `SELECT item_id FROM daily_snapshots WHERE world_id = ? AND snapshot_date = ?`

	ids, err := queryAndScan(ctx, db, "select", "daily_snapshots", query,
		[]interface{}{worldID, utcToday()},
		func(rows *sql.Rows) (int, error) {
			var id int
			err := rows.Scan(&id)
			return id, err
		})
	if err != nil {
		return nil, err
	}

	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// SaveAggregatedResults writes one snapshot row per price record for the
// current UTC date inside a single transaction. Rows whose dedup key already
// exists are dropped by ON CONFLICT DO NOTHING without failing the batch;
// any other error rolls the whole batch back.
func (db *DB) SaveAggregatedResults(ctx context.Context, worldID int, records []models.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	err := db.saveAggregatedResults(ctx, worldID, records)
	metrics.RecordDBQuery("insert", "daily_snapshots", time.Since(start), err)
	return err
}

func (db *DB) saveAggregatedResults(ctx context.Context, worldID int, records []models.PriceRecord) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackWithLog(tx)

	stmt, err := tx.PrepareContext(ctx, insertSnapshotQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer closeQuietly(stmt)

	today := utcToday()
	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.ItemID, worldID, today,
			rec.NQMinListing, rec.HQMinListing,
			rec.NQAverageSale, rec.HQAverageSale,
			rec.NQSaleVelocity, rec.HQSaleVelocity,
			rec.LastSaleAt,
		); err != nil {
			return fmt.Errorf("failed to insert snapshot for item %d: %w", rec.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot batch: %w", err)
	}
	return nil
}
