// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core tables and the snapshot id sequence.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// tableCreationQueries returns the table creation SQL statements.
//
// daily_snapshots is the crash-safety anchor: UNIQUE(item_id, world_id,
// snapshot_date) plus ON CONFLICT DO NOTHING on every write path means a
// replayed batch drops rows that already committed instead of duplicating
// or overwriting them. sales dedups the same way on
// (item_id, world_id, sold_at, price_per_unit).
func tableCreationQueries() []string {
	return []string{
		// World cache: /worlds joined with its data center and region
		// from /data-centers.
		`CREATE TABLE IF NOT EXISTS worlds (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			datacenter TEXT,
			region TEXT,
			fetched_at TIMESTAMP
		);`,

		// Sync scopes. world_name is the path segment sent to Universalis.
		`CREATE TABLE IF NOT EXISTS tracked_worlds (
			world_id INTEGER PRIMARY KEY,
			world_name TEXT NOT NULL UNIQUE,
			added_at TIMESTAMP
		);`,

		// Item names from the Teamcraft dump.
		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);`,

		// The marketable item universe from /marketable.
		`CREATE TABLE IF NOT EXISTS marketable_items (
			item_id INTEGER PRIMARY KEY,
			synced_at TIMESTAMP
		);`,

		// Per-world item registration for the update path.
		`CREATE TABLE IF NOT EXISTS tracked_items (
			item_id INTEGER NOT NULL,
			world_id INTEGER NOT NULL,
			added_at TIMESTAMP,
			UNIQUE(item_id, world_id)
		);`,

		// DuckDB has no auto-increment primary key, so snapshot ids come
		// from an explicit sequence.
		`CREATE SEQUENCE IF NOT EXISTS daily_snapshots_seq;`,

		`CREATE TABLE IF NOT EXISTS daily_snapshots (
			id BIGINT PRIMARY KEY DEFAULT nextval('daily_snapshots_seq'),
			item_id INTEGER NOT NULL,
			world_id INTEGER NOT NULL,
			snapshot_date DATE NOT NULL,
			nq_min_price DOUBLE,
			hq_min_price DOUBLE,
			nq_avg_price DOUBLE,
			hq_avg_price DOUBLE,
			nq_sale_velocity DOUBLE,
			hq_sale_velocity DOUBLE,
			last_sale_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT now(),
			UNIQUE(item_id, world_id, snapshot_date)
		);`,

		`CREATE TABLE IF NOT EXISTS sales (
			item_id INTEGER NOT NULL,
			world_id INTEGER NOT NULL,
			sold_at TIMESTAMP,
			price_per_unit INTEGER,
			quantity INTEGER,
			hq BOOLEAN,
			UNIQUE(item_id, world_id, sold_at, price_per_unit)
		);`,
	}
}

// createIndexes creates indexes for the common query patterns.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		// Skip-set lookups filter on world + date every pass.
		`CREATE INDEX IF NOT EXISTS idx_snapshots_world_date ON daily_snapshots(world_id, snapshot_date);`,
		// Report queries walk one item's history newest first.
		`CREATE INDEX IF NOT EXISTS idx_snapshots_item_world ON daily_snapshots(item_id, world_id, snapshot_date);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_item_world ON sales(item_id, world_id, sold_at);`,
		`CREATE INDEX IF NOT EXISTS idx_tracked_items_world ON tracked_items(world_id);`,
		`CREATE INDEX IF NOT EXISTS idx_worlds_name ON worlds(name);`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute index query: %s: %w", query, err)
		}
	}

	return nil
}
