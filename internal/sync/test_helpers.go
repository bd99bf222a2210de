// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package sync

import (
	"context"
	"time"

	"github.com/mogsworth/gilstream/internal/config"
	"github.com/mogsworth/gilstream/internal/models"
	"github.com/mogsworth/gilstream/internal/models/universalis"
	"github.com/mogsworth/gilstream/internal/ratelimit"
)

// newTestConfig creates a Config optimized for fast test execution.
//
// The rate limit is effectively unlimited and the retry budget small, so
// tests exercise the classification logic without real backoff waits.
// Production code always goes through config.Load().
func newTestConfig() *config.Config {
	return &config.Config{
		Universalis: config.UniversalisConfig{
			BaseURL:          "http://localhost:9999",
			RateLimit:        10000, // Effectively unlimited for tests
			Burst:            10000,
			Timeout:          2 * time.Second,
			MaxAttempts:      3,
			MaxRecentEntries: 200,
		},
		Teamcraft: config.TeamcraftConfig{
			ItemsURL:      "http://localhost:9999/items.json",
			Timeout:       2 * time.Second,
			RetryAttempts: 3,
		},
		Database: config.DatabaseConfig{
			Path:      ":memory:",
			MaxMemory: "512MB",
		},
		Sync: config.SyncConfig{
			Interval: 5 * time.Minute,
			Workers:  3,
		},
		Server: config.ServerConfig{
			Host:    "127.0.0.1",
			Port:    9085,
			Timeout: 5 * time.Second,
		},
		Logging: config.LoggingConfig{
			Level:  "error", // Reduce log noise in tests
			Format: "json",
		},
	}
}

// newTestClient creates a Client against the given test server URL with a
// millisecond backoff so retry tests finish fast.
func newTestClient(baseURL string, maxAttempts int) *Client {
	cfg := newTestConfig()
	cfg.Universalis.BaseURL = baseURL
	cfg.Universalis.MaxAttempts = maxAttempts

	limiter := ratelimit.NewTokenBucket(cfg.Universalis.RateLimit, cfg.Universalis.Burst)
	client := NewClient(&cfg.Universalis, limiter)
	client.retryBaseDelay = 1 * time.Millisecond
	return client
}

// Mock store for engine testing.
type mockStore struct {
	listTrackedScopes     func(context.Context) ([]models.SyncScope, error)
	listMarketableItemIDs func(context.Context) ([]int, error)
	itemsUpdatedToday     func(context.Context, int) (map[int]struct{}, error)
	saveAggregatedResults func(context.Context, int, []models.PriceRecord) error
}

func (m *mockStore) ListTrackedScopes(ctx context.Context) ([]models.SyncScope, error) {
	if m.listTrackedScopes != nil {
		return m.listTrackedScopes(ctx)
	}
	return nil, nil
}

func (m *mockStore) ListMarketableItemIDs(ctx context.Context) ([]int, error) {
	if m.listMarketableItemIDs != nil {
		return m.listMarketableItemIDs(ctx)
	}
	return nil, nil
}

func (m *mockStore) ItemsUpdatedToday(ctx context.Context, worldID int) (map[int]struct{}, error) {
	if m.itemsUpdatedToday != nil {
		return m.itemsUpdatedToday(ctx, worldID)
	}
	return map[int]struct{}{}, nil
}

func (m *mockStore) SaveAggregatedResults(ctx context.Context, worldID int, records []models.PriceRecord) error {
	if m.saveAggregatedResults != nil {
		return m.saveAggregatedResults(ctx, worldID, records)
	}
	return nil
}

// Mock gateway for engine testing. The default returns one record per
// requested ID, as if the upstream had data for everything.
type mockGateway struct {
	aggregatedPrices func(context.Context, string, []int) ([]models.PriceRecord, error)
}

func (m *mockGateway) AggregatedPrices(ctx context.Context, scope string, itemIDs []int) ([]models.PriceRecord, error) {
	if m.aggregatedPrices != nil {
		return m.aggregatedPrices(ctx, scope, itemIDs)
	}
	records := make([]models.PriceRecord, len(itemIDs))
	for i, id := range itemIDs {
		records[i] = models.PriceRecord{ItemID: id}
	}
	return records, nil
}

// Mock Universalis client for breaker testing.
type mockClient struct {
	ping                func(context.Context) error
	dataCenters         func(context.Context) ([]universalis.DataCenter, error)
	worlds              func(context.Context) ([]universalis.World, error)
	mostRecentlyUpdated func(context.Context, string, int) (*universalis.RecentlyUpdated, error)
	marketSnapshot      func(context.Context, string, int) (*universalis.CurrentlyShown, error)
	saleHistory         func(context.Context, string, int, int) (*universalis.HistoryResponse, error)
	marketableItems     func(context.Context) ([]int, error)
	aggregatedPrices    func(context.Context, string, []int) ([]models.PriceRecord, error)
}

func (m *mockClient) Ping(ctx context.Context) error {
	if m.ping != nil {
		return m.ping(ctx)
	}
	return nil
}

func (m *mockClient) DataCenters(ctx context.Context) ([]universalis.DataCenter, error) {
	if m.dataCenters != nil {
		return m.dataCenters(ctx)
	}
	return []universalis.DataCenter{}, nil
}

func (m *mockClient) Worlds(ctx context.Context) ([]universalis.World, error) {
	if m.worlds != nil {
		return m.worlds(ctx)
	}
	return []universalis.World{}, nil
}

func (m *mockClient) MostRecentlyUpdated(ctx context.Context, world string, entries int) (*universalis.RecentlyUpdated, error) {
	if m.mostRecentlyUpdated != nil {
		return m.mostRecentlyUpdated(ctx, world, entries)
	}
	return &universalis.RecentlyUpdated{}, nil
}

func (m *mockClient) MarketSnapshot(ctx context.Context, world string, itemID int) (*universalis.CurrentlyShown, error) {
	if m.marketSnapshot != nil {
		return m.marketSnapshot(ctx, world, itemID)
	}
	return &universalis.CurrentlyShown{ItemID: itemID}, nil
}

func (m *mockClient) SaleHistory(ctx context.Context, world string, itemID, entries int) (*universalis.HistoryResponse, error) {
	if m.saleHistory != nil {
		return m.saleHistory(ctx, world, itemID, entries)
	}
	return &universalis.HistoryResponse{ItemID: itemID}, nil
}

func (m *mockClient) MarketableItems(ctx context.Context) ([]int, error) {
	if m.marketableItems != nil {
		return m.marketableItems(ctx)
	}
	return []int{}, nil
}

func (m *mockClient) AggregatedPrices(ctx context.Context, scope string, itemIDs []int) ([]models.PriceRecord, error) {
	if m.aggregatedPrices != nil {
		return m.aggregatedPrices(ctx, scope, itemIDs)
	}
	return []models.PriceRecord{}, nil
}
