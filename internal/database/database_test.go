// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package database

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mogsworth/gilstream/internal/config"
)

// testDBMu serializes database creation. Concurrent DuckDB CGO
// initialization is flaky under CI resource pressure.
var testDBMu sync.Mutex

// setupTestDB creates an in-memory test database and registers cleanup.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBMu.Lock()
	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"})
	testDBMu.Unlock()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	return db
}

func floatPtr(v float64) *float64 { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func TestNew_InitializesSchema(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping failed on fresh database: %v", err)
	}

	// Every table the store reads or writes must exist after New.
	tables := []string{
		"worlds", "tracked_worlds", "items", "marketable_items",
		"tracked_items", "daily_snapshots", "sales",
	}
	for _, table := range tables {
		var count int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		if err := db.Conn().QueryRowContext(ctx, query).Scan(&count); err != nil {
			t.Errorf("Table %s not queryable: %v", table, err)
		}
		if count != 0 {
			t.Errorf("Table %s not empty on fresh database: %d rows", table, count)
		}
	}
}

func TestNew_SnapshotSequenceAssignsIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := db.Conn().ExecContext(ctx,
			`INSERT INTO daily_snapshots (item_id, world_id, snapshot_date) VALUES (?, 73, ?)`,
			5333+i, time.Date(2026, 8, 20+i, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	var distinct int
	err := db.Conn().QueryRowContext(ctx, `SELECT COUNT(DISTINCT id) FROM daily_snapshots`).Scan(&distinct)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if distinct != 3 {
		t.Errorf("Expected 3 distinct sequence-assigned ids, got %d", distinct)
	}
}

func TestGetStmt_CachesPerQueryString(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	query := `SELECT COUNT(*) FROM items`
	first, err := db.getStmt(ctx, query)
	if err != nil {
		t.Fatalf("First getStmt failed: %v", err)
	}
	second, err := db.getStmt(ctx, query)
	if err != nil {
		t.Fatalf("Second getStmt failed: %v", err)
	}
	if first != second {
		t.Error("Expected the cached statement to be reused")
	}
}

func TestCheckpoint(t *testing.T) {
	db := setupTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}
}
