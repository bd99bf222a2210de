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
)

// scanFunc is a function that scans a single row into a result type.
type scanFunc[T any] func(*sql.Rows) (T, error)

// queryAndScan executes a query and scans all rows using the provided scan
// function. Duration and errors are recorded under the given metric labels.
func queryAndScan[T any](ctx context.Context, db *DB, operation, table, query string, args []interface{}, scan scanFunc[T]) (results []T, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery(operation, table, time.Since(start), err)
	}()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// execOp executes a single write statement, recording duration and errors
// under the given metric labels.
func (db *DB) execOp(ctx context.Context, operation, table, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx, query, args...)
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
	return res, err
}

// utcToday returns the current UTC calendar date at midnight. Snapshot
// dedup keys on the UTC date, so a pass that crosses local midnight still
// writes at most one row per item per day.
func utcToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// nullIfEmpty maps an empty string to SQL NULL.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
