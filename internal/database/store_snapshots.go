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

// InsertDailySnapshot writes a single snapshot row, the per-item update
// path's counterpart to SaveAggregatedResults. Returns false when the
// (item_id, world_id, snapshot_date) key already existed and the row was
// silently dropped. A zero SnapshotDate means the current UTC date.
func (db *DB) InsertDailySnapshot(ctx context.Context, snap models.DailySnapshot) (bool, error) {
	stmt, err := db.getStmt(ctx, insertSnapshotQuery)
	if err != nil {
		return false, err
	}

	date := snap.SnapshotDate
	if date.IsZero() {
		date = utcToday()
	}

	start := time.Now()
	res, err := stmt.ExecContext(ctx,
		snap.ItemID, snap.WorldID, date,
		snap.NQMinPrice, snap.HQMinPrice,
		snap.NQAvgPrice, snap.HQAvgPrice,
		snap.NQSaleVelocity, snap.HQSaleVelocity,
		snap.LastSaleAt,
	)
	metrics.RecordDBQuery("insert", "daily_snapshots", time.Since(start), err)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertSales writes sale rows inside one transaction, dropping rows whose
// (item_id, world_id, sold_at, price_per_unit) key is already recorded.
// Returns the number of genuinely new rows.
func (db *DB) InsertSales(ctx context.Context, sales []models.Sale) (int, error) {
	if len(sales) == 0 {
		return 0, nil
	}

	start := time.Now()
	n, err := db.insertSales(ctx, sales)
	metrics.RecordDBQuery("insert", "sales", time.Since(start), err)
	return n, err
}

func (db *DB) insertSales(ctx context.Context, sales []models.Sale) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackWithLog(tx)

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sales (item_id, world_id, sold_at, price_per_unit, quantity, hq)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare sale insert: %w", err)
	}
	defer closeQuietly(stmt)

	inserted := 0
	for _, sale := range sales {
		res, err := stmt.ExecContext(ctx,
			sale.ItemID, sale.WorldID, sale.SoldAt, sale.PricePerUnit, sale.Quantity, sale.HQ)
		if err != nil {
			return 0, fmt.Errorf("failed to insert sale for item %d: %w", sale.ItemID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sale batch: %w", err)
	}
	return inserted, nil
}

// ItemPriceHistory returns the snapshots for one item on one world over the
// past days, newest first. Trend math reads index 0 as the latest state and
// the final element as the window baseline.
func (db *DB) ItemPriceHistory(ctx context.Context, itemID, worldID, days int) ([]models.DailySnapshot, error) {
	query := `SELECT item_id, world_id, snapshot_date,
	nq_min_price, hq_min_price, nq_avg_price, hq_avg_price,
	nq_sale_velocity, hq_sale_velocity, last_sale_at, created_at
FROM daily_snapshots
WHERE item_id = ? AND world_id = ? AND snapshot_date >= ?
ORDER BY snapshot_date DESC`

	since := utcToday().AddDate(0, 0, -days)

	return queryAndScan(ctx, db, "select", "daily_snapshots", query,
		[]interface{}{itemID, worldID, since},
		func(rows *sql.Rows) (models.DailySnapshot, error) {
			var s models.DailySnapshot
			err := rows.Scan(&s.ItemID, &s.WorldID, &s.SnapshotDate,
				&s.NQMinPrice, &s.HQMinPrice, &s.NQAvgPrice, &s.HQAvgPrice,
				&s.NQSaleVelocity, &s.HQSaleVelocity, &s.LastSaleAt, &s.CreatedAt)
			return s, err
		})
}

// TopItemsByVelocity ranks items on a world by combined NQ+HQ sale velocity
// taken from each item's most recent snapshot. Items whose latest snapshot
// carries no velocity at all rank last.
func (db *DB) TopItemsByVelocity(ctx context.Context, worldID, limit int) ([]models.TopItem, error) {
	query := `SELECT s.item_id, COALESCE(i.name, ''),
	s.nq_sale_velocity, s.hq_sale_velocity,
	s.nq_avg_price, s.hq_avg_price,
	s.last_sale_at, s.snapshot_date
FROM daily_snapshots s
JOIN (
	SELECT item_id, MAX(snapshot_date) AS latest_date
	FROM daily_snapshots
	WHERE world_id = ?
	GROUP BY item_id
) latest ON latest.item_id = s.item_id AND latest.latest_date = s.snapshot_date
LEFT JOIN items i ON i.id = s.item_id
WHERE s.world_id = ?
ORDER BY COALESCE(s.nq_sale_velocity, 0) + COALESCE(s.hq_sale_velocity, 0) DESC, s.item_id
LIMIT ?`

	return queryAndScan(ctx, db, "select", "daily_snapshots", query,
		[]interface{}{worldID, worldID, limit},
		func(rows *sql.Rows) (models.TopItem, error) {
			var t models.TopItem
			err := rows.Scan(&t.ItemID, &t.Name,
				&t.NQSaleVelocity, &t.HQSaleVelocity,
				&t.NQAvgPrice, &t.HQAvgPrice,
				&t.LastSaleAt, &t.SnapshotDate)
			return t, err
		})
}
