// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package api

import (
	"context"
	"time"

	"github.com/mogsworth/gilstream/internal/config"
	"github.com/mogsworth/gilstream/internal/models"
	"github.com/mogsworth/gilstream/internal/offload"
)

// newTestServerConfig returns serve-mode settings with rate limiting loose
// enough not to interfere with tests.
func newTestServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		Timeout:         5 * time.Second,
		RateLimitReqs:   1000,
		RateLimitWindow: time.Minute,
	}
}

// newTestHandlers wires Handlers over the given mocks. Nil mocks fall back
// to zero-value defaults; the trigger limiter is off unless provided.
func newTestHandlers(store *mockAPIStore, manager *mockManager, marketSvc *mockMarket, limiter *TriggerRateLimiter) (*Handlers, *offload.Pool) {
	if store == nil {
		store = &mockAPIStore{}
	}
	if manager == nil {
		manager = &mockManager{}
	}
	if marketSvc == nil {
		marketSvc = &mockMarket{}
	}
	pool := offload.NewPool(1)
	h := NewHandlers(store, manager, marketSvc, pool, limiter, 6*time.Hour, "test")
	return h, pool
}

// Mock store for handler tests.
type mockAPIStore struct {
	ping       func(context.Context) error
	listWorlds func(context.Context) ([]models.WorldInfo, error)
}

func (m *mockAPIStore) Ping(ctx context.Context) error {
	if m.ping != nil {
		return m.ping(ctx)
	}
	return nil
}

func (m *mockAPIStore) ListWorlds(ctx context.Context) ([]models.WorldInfo, error) {
	if m.listWorlds != nil {
		return m.listWorlds(ctx)
	}
	return nil, nil
}

// Mock sync manager for handler tests.
type mockManager struct {
	triggerSync    func(context.Context) (models.SyncSummary, error)
	syncInProgress func() bool
	running        func() bool
	lastSyncTime   func() time.Time
	lastSummary    func() models.SyncSummary
}

func (m *mockManager) TriggerSync(ctx context.Context) (models.SyncSummary, error) {
	if m.triggerSync != nil {
		return m.triggerSync(ctx)
	}
	return models.SyncSummary{}, nil
}

func (m *mockManager) SyncInProgress() bool {
	if m.syncInProgress != nil {
		return m.syncInProgress()
	}
	return false
}

func (m *mockManager) Running() bool {
	if m.running != nil {
		return m.running()
	}
	return true
}

func (m *mockManager) LastSyncTime() time.Time {
	if m.lastSyncTime != nil {
		return m.lastSyncTime()
	}
	return time.Time{}
}

func (m *mockManager) LastSummary() models.SyncSummary {
	if m.lastSummary != nil {
		return m.lastSummary()
	}
	return models.SyncSummary{}
}

// Mock market reader for handler tests.
type mockMarket struct {
	topItems   func(context.Context, string, int) ([]models.TopItem, error)
	itemReport func(context.Context, string, int, int) (models.ItemReport, error)
}

func (m *mockMarket) TopItems(ctx context.Context, worldName string, limit int) ([]models.TopItem, error) {
	if m.topItems != nil {
		return m.topItems(ctx, worldName, limit)
	}
	return nil, nil
}

func (m *mockMarket) ItemReport(ctx context.Context, worldName string, itemID, days int) (models.ItemReport, error) {
	if m.itemReport != nil {
		return m.itemReport(ctx, worldName, itemID, days)
	}
	return models.ItemReport{}, nil
}
