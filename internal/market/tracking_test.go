// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package market

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mogsworth/gilstream/internal/models"
	"github.com/mogsworth/gilstream/internal/models/universalis"
)

// recentItems builds a most-recently-updated response with the given IDs.
func recentItems(ids ...int) *universalis.RecentlyUpdated {
	recent := &universalis.RecentlyUpdated{Items: make([]universalis.RecentItem, len(ids))}
	for i, id := range ids {
		recent.Items[i] = universalis.RecentItem{ItemID: id, WorldID: 73, WorldName: "Adamantoise"}
	}
	return recent
}

func TestInitializeTrackingKeepsOnlySellingItems(t *testing.T) {
	gateway := &mockGateway{
		mostRecentlyUpdated: func(context.Context, string, int) (*universalis.RecentlyUpdated, error) {
			return recentItems(1, 2, 3, 4), nil
		},
		marketSnapshot: func(_ context.Context, _ string, itemID int) (*universalis.CurrentlyShown, error) {
			snap := &universalis.CurrentlyShown{ItemID: itemID}
			if itemID%2 == 0 {
				snap.RegularSaleVelocity = float64(itemID) // 2 and 4 show sales.
				snap.AveragePrice = 100
			}
			return snap, nil
		},
	}

	var mu sync.Mutex
	tracked := map[int]bool{}
	store := &mockStore{
		addTrackedItem: func(_ context.Context, itemID, worldID int) error {
			mu.Lock()
			defer mu.Unlock()
			tracked[itemID] = true
			return nil
		},
	}
	svc, pool := newTestService(store, gateway, nil)
	defer pool.Close()

	report, err := svc.InitializeTracking(context.Background(), "Adamantoise", 4)
	if err != nil {
		t.Fatalf("InitializeTracking() error = %v", err)
	}

	if report.Probed != 4 {
		t.Errorf("Probed = %d, want 4", report.Probed)
	}
	if report.Tracked != 2 {
		t.Errorf("Tracked = %d, want 2", report.Tracked)
	}
	if report.Failures != 0 {
		t.Errorf("Failures = %d, want 0", report.Failures)
	}
	if !tracked[2] || !tracked[4] || tracked[1] || tracked[3] {
		t.Errorf("tracked set = %v, want only 2 and 4", tracked)
	}
	// TopItems ordered by velocity descending: 4 sells faster than 2.
	if len(report.TopItems) != 2 || report.TopItems[0].ItemID != 4 {
		t.Errorf("TopItems = %+v, want item 4 first", report.TopItems)
	}
}

func TestInitializeTrackingCountsSoftFailures(t *testing.T) {
	gateway := &mockGateway{
		mostRecentlyUpdated: func(context.Context, string, int) (*universalis.RecentlyUpdated, error) {
			return recentItems(1, 2, 3), nil
		},
		marketSnapshot: func(_ context.Context, _ string, itemID int) (*universalis.CurrentlyShown, error) {
			if itemID == 2 {
				return nil, errors.New("item probe timed out")
			}
			return &universalis.CurrentlyShown{ItemID: itemID, RegularSaleVelocity: 1}, nil
		},
	}
	svc, pool := newTestService(nil, gateway, nil)
	defer pool.Close()

	report, err := svc.InitializeTracking(context.Background(), "Adamantoise", 3)
	if err != nil {
		t.Fatalf("InitializeTracking() error = %v, want nil (probe failures are soft)", err)
	}
	if report.Failures != 1 {
		t.Errorf("Failures = %d, want 1", report.Failures)
	}
	if report.Tracked != 2 {
		t.Errorf("Tracked = %d, want 2", report.Tracked)
	}
}

func TestInitializeTrackingCountsStoreFailuresAsSoft(t *testing.T) {
	gateway := &mockGateway{
		mostRecentlyUpdated: func(context.Context, string, int) (*universalis.RecentlyUpdated, error) {
			return recentItems(1, 2), nil
		},
		marketSnapshot: func(_ context.Context, _ string, itemID int) (*universalis.CurrentlyShown, error) {
			return &universalis.CurrentlyShown{ItemID: itemID, RegularSaleVelocity: 1}, nil
		},
	}
	store := &mockStore{
		addTrackedItem: func(_ context.Context, itemID, _ int) error {
			if itemID == 1 {
				return errors.New("disk full")
			}
			return nil
		},
	}
	svc, pool := newTestService(store, gateway, nil)
	defer pool.Close()

	report, err := svc.InitializeTracking(context.Background(), "Adamantoise", 2)
	if err != nil {
		t.Fatalf("InitializeTracking() error = %v", err)
	}
	if report.Tracked != 1 || report.Failures != 1 {
		t.Errorf("Tracked = %d, Failures = %d, want 1 and 1", report.Tracked, report.Failures)
	}
}

func TestInitializeTrackingProbeErrorHaltsNothing(t *testing.T) {
	wantErr := errors.New("feed unavailable")
	gateway := &mockGateway{
		mostRecentlyUpdated: func(context.Context, string, int) (*universalis.RecentlyUpdated, error) {
			return nil, wantErr
		},
	}
	svc, pool := newTestService(nil, gateway, nil)
	defer pool.Close()

	_, err := svc.InitializeTracking(context.Background(), "Adamantoise", 10)
	if !errors.Is(err, wantErr) {
		t.Errorf("InitializeTracking() error = %v, want wrapped %v (the feed itself is not per-item)", err, wantErr)
	}
}

func TestUpdateTrackedItemsRecordsSnapshotsAndSales(t *testing.T) {
	soldAt := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	gateway := &mockGateway{
		marketSnapshot: func(_ context.Context, _ string, itemID int) (*universalis.CurrentlyShown, error) {
			return &universalis.CurrentlyShown{
				ItemID:         itemID,
				MinPriceNQ:     120,
				AveragePriceNQ: 150,
				NQSaleVelocity: 3.5,
			}, nil
		},
		saleHistory: func(_ context.Context, _ string, itemID, _ int) (*universalis.HistoryResponse, error) {
			return &universalis.HistoryResponse{
				ItemID: itemID,
				Entries: []universalis.Sale{
					{PricePerUnit: 150, Quantity: 2, Timestamp: soldAt.Unix()},
					{PricePerUnit: 140, Quantity: 1, Timestamp: soldAt.Add(-time.Hour).Unix(), HQ: true},
				},
			}, nil
		},
	}

	var mu sync.Mutex
	var snaps []models.DailySnapshot
	var allSales []models.Sale
	store := &mockStore{
		listTrackedItems: func(context.Context, int) ([]models.TrackedItem, error) {
			return []models.TrackedItem{
				{ItemID: 5, WorldID: 73},
				{ItemID: 6, WorldID: 73},
			}, nil
		},
		insertDailySnapshot: func(_ context.Context, snap models.DailySnapshot) (bool, error) {
			mu.Lock()
			defer mu.Unlock()
			snaps = append(snaps, snap)
			return true, nil
		},
		insertSales: func(_ context.Context, sales []models.Sale) (int, error) {
			mu.Lock()
			defer mu.Unlock()
			allSales = append(allSales, sales...)
			return len(sales), nil
		},
	}
	svc, pool := newTestService(store, gateway, nil)
	defer pool.Close()

	report, err := svc.UpdateTrackedItems(context.Background(), "Adamantoise")
	if err != nil {
		t.Fatalf("UpdateTrackedItems() error = %v", err)
	}

	if report.Items != 2 || report.Updated != 2 || report.Failures != 0 {
		t.Errorf("report = %+v, want Items=2 Updated=2 Failures=0", report)
	}
	if report.SalesRecorded != 4 {
		t.Errorf("SalesRecorded = %d, want 4", report.SalesRecorded)
	}
	if len(snaps) != 2 {
		t.Fatalf("snapshots stored = %d, want 2", len(snaps))
	}
	for _, snap := range snaps {
		if snap.WorldID != 73 {
			t.Errorf("snapshot world = %d, want 73", snap.WorldID)
		}
		if snap.NQMinPrice == nil || *snap.NQMinPrice != 120 {
			t.Errorf("NQMinPrice = %v, want 120", snap.NQMinPrice)
		}
		if snap.HQMinPrice != nil {
			t.Errorf("HQMinPrice = %v, want nil (upstream had no HQ data)", *snap.HQMinPrice)
		}
	}
	for _, sale := range allSales {
		if sale.WorldID != 73 {
			t.Errorf("sale world = %d, want 73", sale.WorldID)
		}
	}
}

func TestUpdateTrackedItemsCountsSoftFailures(t *testing.T) {
	gateway := &mockGateway{
		marketSnapshot: func(_ context.Context, _ string, itemID int) (*universalis.CurrentlyShown, error) {
			if itemID == 6 {
				return nil, errors.New("snapshot failed")
			}
			return &universalis.CurrentlyShown{ItemID: itemID}, nil
		},
	}
	store := &mockStore{
		listTrackedItems: func(context.Context, int) ([]models.TrackedItem, error) {
			return []models.TrackedItem{{ItemID: 5}, {ItemID: 6}, {ItemID: 7}}, nil
		},
	}
	svc, pool := newTestService(store, gateway, nil)
	defer pool.Close()

	report, err := svc.UpdateTrackedItems(context.Background(), "Adamantoise")
	if err != nil {
		t.Fatalf("UpdateTrackedItems() error = %v, want nil", err)
	}
	if report.Updated != 2 || report.Failures != 1 {
		t.Errorf("Updated = %d, Failures = %d, want 2 and 1", report.Updated, report.Failures)
	}
}

func TestUpdateTrackedItemsNoTrackedItems(t *testing.T) {
	svc, pool := newTestService(nil, nil, nil)
	defer pool.Close()

	report, err := svc.UpdateTrackedItems(context.Background(), "Adamantoise")
	if err != nil {
		t.Fatalf("UpdateTrackedItems() error = %v", err)
	}
	if report.Items != 0 || report.Updated != 0 {
		t.Errorf("report = %+v, want zero work", report)
	}
}

func TestSnapshotFromMarketZeroMeansAbsent(t *testing.T) {
	snap := snapshotFromMarket(&universalis.CurrentlyShown{ItemID: 9}, 73)
	if snap.NQMinPrice != nil || snap.HQAvgPrice != nil || snap.NQSaleVelocity != nil {
		t.Errorf("zero statistics mapped to non-nil: %+v", snap)
	}
	if snap.LastSaleAt != nil {
		t.Errorf("LastSaleAt = %v, want nil with no history", snap.LastSaleAt)
	}
}

func TestNewestSalePicksLatest(t *testing.T) {
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	sales := []universalis.Sale{
		{Timestamp: base.Add(-2 * time.Hour).Unix()},
		{Timestamp: base.Unix()},
		{Timestamp: base.Add(-time.Hour).Unix()},
	}
	got := newestSale(sales)
	if got == nil || !got.Equal(base) {
		t.Errorf("newestSale() = %v, want %v", got, base)
	}
}
