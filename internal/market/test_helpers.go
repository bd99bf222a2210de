// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package market

import (
	"context"

	"github.com/mogsworth/gilstream/internal/models"
	"github.com/mogsworth/gilstream/internal/models/universalis"
	"github.com/mogsworth/gilstream/internal/offload"
)

// newTestService builds a Service over the given mocks with a small pool.
// Nil mocks fall back to zero-value defaults.
func newTestService(store *mockStore, gateway *mockGateway, names *mockNames) (*Service, *offload.Pool) {
	if store == nil {
		store = &mockStore{}
	}
	if gateway == nil {
		gateway = &mockGateway{}
	}
	if names == nil {
		names = &mockNames{}
	}
	pool := offload.NewPool(3)
	svc, err := New(Config{
		Store:   store,
		Gateway: gateway,
		Names:   names,
		Pool:    pool,
	})
	if err != nil {
		panic(err) // Config is fully populated above; New cannot fail.
	}
	return svc, pool
}

// testWorld is the cached world most tests resolve against.
var testWorld = models.WorldInfo{ID: 73, Name: "Adamantoise", DataCenter: "Aether", Region: "North-America"}

// Mock store. Every method delegates to its function field and falls back
// to an empty success.
type mockStore struct {
	upsertWorlds           func(context.Context, []models.WorldInfo) error
	listWorlds             func(context.Context) ([]models.WorldInfo, error)
	worldByName            func(context.Context, string) (*models.WorldInfo, error)
	addTrackedWorld        func(context.Context, int, string) error
	removeTrackedWorld     func(context.Context, string) (bool, error)
	listTrackedWorlds      func(context.Context) ([]models.TrackedWorld, error)
	addTrackedItem         func(context.Context, int, int) error
	listTrackedItems       func(context.Context, int) ([]models.TrackedItem, error)
	insertDailySnapshot    func(context.Context, models.DailySnapshot) (bool, error)
	insertSales            func(context.Context, []models.Sale) (int, error)
	itemPriceHistory       func(context.Context, int, int, int) ([]models.DailySnapshot, error)
	topItemsByVelocity     func(context.Context, int, int) ([]models.TopItem, error)
	itemName               func(context.Context, int) (string, error)
	replaceItems           func(context.Context, []models.ItemInfo) error
	replaceMarketableItems func(context.Context, []int) error
}

func (m *mockStore) UpsertWorlds(ctx context.Context, worlds []models.WorldInfo) error {
	if m.upsertWorlds != nil {
		return m.upsertWorlds(ctx, worlds)
	}
	return nil
}

func (m *mockStore) ListWorlds(ctx context.Context) ([]models.WorldInfo, error) {
	if m.listWorlds != nil {
		return m.listWorlds(ctx)
	}
	return nil, nil
}

func (m *mockStore) WorldByName(ctx context.Context, name string) (*models.WorldInfo, error) {
	if m.worldByName != nil {
		return m.worldByName(ctx, name)
	}
	w := testWorld
	return &w, nil
}

func (m *mockStore) AddTrackedWorld(ctx context.Context, worldID int, worldName string) error {
	if m.addTrackedWorld != nil {
		return m.addTrackedWorld(ctx, worldID, worldName)
	}
	return nil
}

func (m *mockStore) RemoveTrackedWorld(ctx context.Context, worldName string) (bool, error) {
	if m.removeTrackedWorld != nil {
		return m.removeTrackedWorld(ctx, worldName)
	}
	return true, nil
}

func (m *mockStore) ListTrackedWorlds(ctx context.Context) ([]models.TrackedWorld, error) {
	if m.listTrackedWorlds != nil {
		return m.listTrackedWorlds(ctx)
	}
	return nil, nil
}

func (m *mockStore) AddTrackedItem(ctx context.Context, itemID, worldID int) error {
	if m.addTrackedItem != nil {
		return m.addTrackedItem(ctx, itemID, worldID)
	}
	return nil
}

func (m *mockStore) ListTrackedItems(ctx context.Context, worldID int) ([]models.TrackedItem, error) {
	if m.listTrackedItems != nil {
		return m.listTrackedItems(ctx, worldID)
	}
	return nil, nil
}

func (m *mockStore) InsertDailySnapshot(ctx context.Context, snap models.DailySnapshot) (bool, error) {
	if m.insertDailySnapshot != nil {
		return m.insertDailySnapshot(ctx, snap)
	}
	return true, nil
}

func (m *mockStore) InsertSales(ctx context.Context, sales []models.Sale) (int, error) {
	if m.insertSales != nil {
		return m.insertSales(ctx, sales)
	}
	return len(sales), nil
}

func (m *mockStore) ItemPriceHistory(ctx context.Context, itemID, worldID, days int) ([]models.DailySnapshot, error) {
	if m.itemPriceHistory != nil {
		return m.itemPriceHistory(ctx, itemID, worldID, days)
	}
	return nil, nil
}

func (m *mockStore) TopItemsByVelocity(ctx context.Context, worldID, limit int) ([]models.TopItem, error) {
	if m.topItemsByVelocity != nil {
		return m.topItemsByVelocity(ctx, worldID, limit)
	}
	return nil, nil
}

func (m *mockStore) ItemName(ctx context.Context, itemID int) (string, error) {
	if m.itemName != nil {
		return m.itemName(ctx, itemID)
	}
	return "", nil
}

func (m *mockStore) ReplaceItems(ctx context.Context, items []models.ItemInfo) error {
	if m.replaceItems != nil {
		return m.replaceItems(ctx, items)
	}
	return nil
}

func (m *mockStore) ReplaceMarketableItems(ctx context.Context, itemIDs []int) error {
	if m.replaceMarketableItems != nil {
		return m.replaceMarketableItems(ctx, itemIDs)
	}
	return nil
}

// Mock gateway. Defaults return empty successes.
type mockGateway struct {
	dataCenters         func(context.Context) ([]universalis.DataCenter, error)
	worlds              func(context.Context) ([]universalis.World, error)
	mostRecentlyUpdated func(context.Context, string, int) (*universalis.RecentlyUpdated, error)
	marketSnapshot      func(context.Context, string, int) (*universalis.CurrentlyShown, error)
	saleHistory         func(context.Context, string, int, int) (*universalis.HistoryResponse, error)
	marketableItems     func(context.Context) ([]int, error)
}

func (m *mockGateway) DataCenters(ctx context.Context) ([]universalis.DataCenter, error) {
	if m.dataCenters != nil {
		return m.dataCenters(ctx)
	}
	return nil, nil
}

func (m *mockGateway) Worlds(ctx context.Context) ([]universalis.World, error) {
	if m.worlds != nil {
		return m.worlds(ctx)
	}
	return nil, nil
}

func (m *mockGateway) MostRecentlyUpdated(ctx context.Context, world string, entries int) (*universalis.RecentlyUpdated, error) {
	if m.mostRecentlyUpdated != nil {
		return m.mostRecentlyUpdated(ctx, world, entries)
	}
	return &universalis.RecentlyUpdated{}, nil
}

func (m *mockGateway) MarketSnapshot(ctx context.Context, world string, itemID int) (*universalis.CurrentlyShown, error) {
	if m.marketSnapshot != nil {
		return m.marketSnapshot(ctx, world, itemID)
	}
	return &universalis.CurrentlyShown{ItemID: itemID}, nil
}

func (m *mockGateway) SaleHistory(ctx context.Context, world string, itemID, entries int) (*universalis.HistoryResponse, error) {
	if m.saleHistory != nil {
		return m.saleHistory(ctx, world, itemID, entries)
	}
	return &universalis.HistoryResponse{ItemID: itemID}, nil
}

func (m *mockGateway) MarketableItems(ctx context.Context) ([]int, error) {
	if m.marketableItems != nil {
		return m.marketableItems(ctx)
	}
	return nil, nil
}

// Mock name source.
type mockNames struct {
	fetchItemNames func(context.Context) (map[int]string, error)
}

func (m *mockNames) FetchItemNames(ctx context.Context) (map[int]string, error) {
	if m.fetchItemNames != nil {
		return m.fetchItemNames(ctx)
	}
	return map[int]string{}, nil
}
