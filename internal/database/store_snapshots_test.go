// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package database

import (
	"context"
	"testing"
	"time"

	"github.com/mogsworth/gilstream/internal/models"
)

func TestInsertDailySnapshot_DedupReturnsFalse(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	snap := models.DailySnapshot{
		ItemID:         5333,
		WorldID:        73,
		SnapshotDate:   time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		NQMinPrice:     floatPtr(420),
		NQSaleVelocity: floatPtr(3.5),
	}

	inserted, err := db.InsertDailySnapshot(ctx, snap)
	if err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if !inserted {
		t.Error("Expected first insert to report true")
	}

	inserted, err = db.InsertDailySnapshot(ctx, snap)
	if err != nil {
		t.Fatalf("Duplicate insert should be silent: %v", err)
	}
	if inserted {
		t.Error("Expected duplicate insert to report false")
	}

	// A different calendar date is a new key.
	snap.SnapshotDate = time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	inserted, err = db.InsertDailySnapshot(ctx, snap)
	if err != nil {
		t.Fatalf("Next-day insert failed: %v", err)
	}
	if !inserted {
		t.Error("Expected next-day insert to report true")
	}
}

func TestInsertDailySnapshot_ZeroDateMeansToday(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	inserted, err := db.InsertDailySnapshot(ctx, models.DailySnapshot{ItemID: 5333, WorldID: 73})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if !inserted {
		t.Fatal("Expected insert to report true")
	}

	updated, err := db.ItemsUpdatedToday(ctx, 73)
	if err != nil {
		t.Fatalf("ItemsUpdatedToday failed: %v", err)
	}
	if _, ok := updated[5333]; !ok {
		t.Error("Expected zero-date snapshot to land on today's date")
	}
}

func TestInsertSales_CountsOnlyNewRows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	soldAt := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	first := []models.Sale{
		{ItemID: 5333, WorldID: 73, SoldAt: soldAt, PricePerUnit: 420, Quantity: 3},
		{ItemID: 5333, WorldID: 73, SoldAt: soldAt.Add(-time.Hour), PricePerUnit: 415, Quantity: 1, HQ: true},
	}
	n, err := db.InsertSales(ctx, first)
	if err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 new sales, got %d", n)
	}

	// Overlapping feed: one already recorded, one new.
	second := []models.Sale{
		{ItemID: 5333, WorldID: 73, SoldAt: soldAt, PricePerUnit: 420, Quantity: 3},
		{ItemID: 5333, WorldID: 73, SoldAt: soldAt.Add(time.Hour), PricePerUnit: 430, Quantity: 2},
	}
	n, err = db.InsertSales(ctx, second)
	if err != nil {
		t.Fatalf("Second insert failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 new sale from overlapping feed, got %d", n)
	}
}

func TestInsertSales_EmptySliceIsNoOp(t *testing.T) {
	db := setupTestDB(t)

	n, err := db.InsertSales(context.Background(), nil)
	if err != nil {
		t.Fatalf("Empty insert should not fail: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 inserted, got %d", n)
	}
}

func TestItemPriceHistory_NewestFirstWithinWindow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	today := utcToday()
	dates := []struct {
		date  time.Time
		price float64
	}{
		{today, 450},
		{today.AddDate(0, 0, -3), 430},
		{today.AddDate(0, 0, -10), 400}, // outside a 7-day window
	}
	for _, d := range dates {
		_, err := db.InsertDailySnapshot(ctx, models.DailySnapshot{
			ItemID:       5333,
			WorldID:      73,
			SnapshotDate: d.date,
			NQMinPrice:   floatPtr(d.price),
		})
		if err != nil {
			t.Fatalf("Insert for %v failed: %v", d.date, err)
		}
	}

	history, err := db.ItemPriceHistory(ctx, 5333, 73, 7)
	if err != nil {
		t.Fatalf("ItemPriceHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 snapshots in a 7-day window, got %d", len(history))
	}

	if !history[0].SnapshotDate.Equal(today) {
		t.Errorf("Expected newest snapshot first, got %v", history[0].SnapshotDate)
	}
	if history[0].NQMinPrice == nil || *history[0].NQMinPrice != 450 {
		t.Errorf("Expected latest price 450, got %v", history[0].NQMinPrice)
	}
	if history[1].NQMinPrice == nil || *history[1].NQMinPrice != 430 {
		t.Errorf("Expected baseline price 430, got %v", history[1].NQMinPrice)
	}
	if history[0].CreatedAt.IsZero() {
		t.Error("Expected created_at default to be populated")
	}
}

func TestItemPriceHistory_IsolatesItemAndWorld(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	rows := []models.DailySnapshot{
		{ItemID: 5333, WorldID: 73},
		{ItemID: 5333, WorldID: 405},
		{ItemID: 44162, WorldID: 73},
	}
	for _, row := range rows {
		if _, err := db.InsertDailySnapshot(ctx, row); err != nil {
			t.Fatalf("Insert (%d, %d) failed: %v", row.ItemID, row.WorldID, err)
		}
	}

	history, err := db.ItemPriceHistory(ctx, 5333, 73, 7)
	if err != nil {
		t.Fatalf("ItemPriceHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected exactly 1 snapshot for (5333, 73), got %d", len(history))
	}
	if history[0].ItemID != 5333 || history[0].WorldID != 73 {
		t.Errorf("Wrong row returned: item %d world %d", history[0].ItemID, history[0].WorldID)
	}
}

func TestTopItemsByVelocity_RanksByCombinedVelocity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceItems(ctx, []models.ItemInfo{
		{ID: 5333, Name: "Grade 7 Dark Matter"},
		{ID: 44162, Name: "Claro Walnut Lumber"},
	}); err != nil {
		t.Fatalf("ReplaceItems failed: %v", err)
	}

	today := utcToday()
	lastSale := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	snaps := []models.DailySnapshot{
		// Item 5333: combined velocity 4.5 today. An older, much higher
		// snapshot must not win; ranking reads the latest only.
		{ItemID: 5333, WorldID: 73, SnapshotDate: today, NQSaleVelocity: floatPtr(3.5), HQSaleVelocity: floatPtr(1.0), NQAvgPrice: floatPtr(431.5), LastSaleAt: timePtr(lastSale)},
		{ItemID: 5333, WorldID: 73, SnapshotDate: today.AddDate(0, 0, -1), NQSaleVelocity: floatPtr(50)},
		// Item 44162: combined velocity 10 today.
		{ItemID: 44162, WorldID: 73, SnapshotDate: today, NQSaleVelocity: floatPtr(10)},
		// Same item on another world must not leak in.
		{ItemID: 44162, WorldID: 405, SnapshotDate: today, NQSaleVelocity: floatPtr(99)},
	}
	for _, snap := range snaps {
		if _, err := db.InsertDailySnapshot(ctx, snap); err != nil {
			t.Fatalf("Insert (%d, %d, %v) failed: %v", snap.ItemID, snap.WorldID, snap.SnapshotDate, err)
		}
	}

	top, err := db.TopItemsByVelocity(ctx, 73, 10)
	if err != nil {
		t.Fatalf("TopItemsByVelocity failed: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Expected 2 ranked items, got %d", len(top))
	}

	if top[0].ItemID != 44162 {
		t.Errorf("Expected item 44162 first, got %d", top[0].ItemID)
	}
	if top[0].Name != "Claro Walnut Lumber" {
		t.Errorf("Expected joined name, got %q", top[0].Name)
	}
	if top[1].ItemID != 5333 {
		t.Errorf("Expected item 5333 second, got %d", top[1].ItemID)
	}
	if top[1].NQSaleVelocity == nil || *top[1].NQSaleVelocity != 3.5 {
		t.Errorf("Expected latest velocity 3.5, got %v", top[1].NQSaleVelocity)
	}
	if top[1].LastSaleAt == nil || !top[1].LastSaleAt.Equal(lastSale) {
		t.Errorf("Expected last sale %v, got %v", lastSale, top[1].LastSaleAt)
	}
}

func TestTopItemsByVelocity_LimitApplies(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	today := utcToday()
	for i := 1; i <= 5; i++ {
		_, err := db.InsertDailySnapshot(ctx, models.DailySnapshot{
			ItemID:         i,
			WorldID:        73,
			SnapshotDate:   today,
			NQSaleVelocity: floatPtr(float64(i)),
		})
		if err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	top, err := db.TopItemsByVelocity(ctx, 73, 2)
	if err != nil {
		t.Fatalf("TopItemsByVelocity failed: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Expected limit of 2 to apply, got %d rows", len(top))
	}
	if top[0].ItemID != 5 || top[1].ItemID != 4 {
		t.Errorf("Expected items 5 then 4, got %d then %d", top[0].ItemID, top[1].ItemID)
	}
}
