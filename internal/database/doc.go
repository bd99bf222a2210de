// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

// Package database provides the DuckDB persistence layer for market sync
// state, daily price snapshots, and sale history.
//
// # Overview
//
// The package wraps a single DuckDB database (file-backed in production,
// in-memory in tests) behind the DB type. It owns the schema, the prepared
// statement cache, and every query the rest of the application runs.
//
// # File Layout
//
// Core lifecycle:
//   - database.go: connection setup, pool tuning, statement cache, close
//   - schema.go: table, sequence, and index creation
//   - query_helpers.go: generic row scanning and instrumented execution
//   - errors.go: close and rollback helpers
//
// Store operations:
//   - store_sync.go: the sync engine's collaborator surface (scopes,
//     marketable universe, per-world skip sets, batched snapshot writes)
//   - store_worlds.go: world cache and tracked world registration
//   - store_items.go: item name dump and marketable universe replacement
//   - store_tracking.go: per-item tracking registration and listing
//   - store_snapshots.go: single snapshot writes, sale history, reports
//
// # Write Semantics
//
// Snapshot and sale writes rely on unique constraints rather than
// read-before-write checks. daily_snapshots is unique on
// (item_id, world_id, snapshot_date) and sales on
// (item_id, world_id, sold_at, price_per_unit); all insert paths use
// INSERT ... ON CONFLICT DO NOTHING. A row that already committed is
// silently dropped on replay, which is what makes re-running an interrupted
// sync pass safe: finished work stays untouched and only the remainder is
// written.
//
// # Concurrency
//
// One process owns the database file. The *sql.DB pool handles concurrent
// readers; batched writes run inside single transactions. Prepared
// statements are cached per query string and shared across goroutines.
package database
