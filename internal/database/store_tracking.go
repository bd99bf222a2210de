// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/mogsworth/gilstream/internal/metrics"
	"github.com/mogsworth/gilstream/internal/models"
)

// AddTrackedItem registers an item for per-item updates on a world.
// Registering the same pair twice is a no-op. Goes through the statement
// cache because tracking initialization calls this once per probed item.
func (db *DB) AddTrackedItem(ctx context.Context, itemID, worldID int) error {
	query := `INSERT INTO tracked_items (item_id, world_id, added_at)
VALUES (?, ?, ?)
ON CONFLICT DO NOTHING`

	stmt, err := db.getStmt(ctx, query)
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = stmt.ExecContext(ctx, itemID, worldID, time.Now().UTC())
	metrics.RecordDBQuery("insert", "tracked_items", time.Since(start), err)
	return err
}

// ListTrackedItems returns the items registered on a world, most recently
// added first. Names come from the worlds and items caches and are empty
// when those have not been synced.
func (db *DB) ListTrackedItems(ctx context.Context, worldID int) ([]models.TrackedItem, error) {
	query := `SELECT ti.item_id, ti.world_id, COALESCE(w.name, ''), COALESCE(i.name, ''), ti.added_at
FROM tracked_items ti
LEFT JOIN worlds w ON w.id = ti.world_id
LEFT JOIN items i ON i.id = ti.item_id
WHERE ti.world_id = ?
ORDER BY ti.added_at DESC, ti.item_id`

	return queryAndScan(ctx, db, "select", "tracked_items", query,
		[]interface{}{worldID},
		func(rows *sql.Rows) (models.TrackedItem, error) {
			var t models.TrackedItem
			err := rows.Scan(&t.ItemID, &t.WorldID, &t.WorldName, &t.ItemName, &t.AddedAt)
			return t, err
		})
}

// CountTrackedItems returns how many items are registered on a world.
func (db *DB) CountTrackedItems(ctx context.Context, worldID int) (int, error) {
	query := `SELECT COUNT(*) FROM tracked_items WHERE world_id = ?`

	start := time.Now()
	var count int
	err := db.conn.QueryRowContext(ctx, query, worldID).Scan(&count)
	metrics.RecordDBQuery("select", "tracked_items", time.Since(start), err)
	if err != nil {
		return 0, err
	}
	return count, nil
}
