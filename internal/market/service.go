// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package market

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mogsworth/gilstream/internal/logging"
	"github.com/mogsworth/gilstream/internal/models"
	"github.com/mogsworth/gilstream/internal/models/universalis"
	"github.com/mogsworth/gilstream/internal/offload"
	"github.com/mogsworth/gilstream/internal/validation"
)

// ErrUnknownWorld is returned when a world name passes syntactic validation
// but matches no world in the cache, even after a refresh from the upstream.
var ErrUnknownWorld = errors.New("unknown world")

// topCandidates caps how many discovered items a TrackingReport lists.
const topCandidates = 10

// Store is the persistence surface the service needs. *database.DB
// satisfies it; tests substitute a mock.
type Store interface {
	UpsertWorlds(ctx context.Context, worlds []models.WorldInfo) error
	ListWorlds(ctx context.Context) ([]models.WorldInfo, error)
	WorldByName(ctx context.Context, name string) (*models.WorldInfo, error)
	AddTrackedWorld(ctx context.Context, worldID int, worldName string) error
	RemoveTrackedWorld(ctx context.Context, worldName string) (bool, error)
	ListTrackedWorlds(ctx context.Context) ([]models.TrackedWorld, error)
	AddTrackedItem(ctx context.Context, itemID, worldID int) error
	ListTrackedItems(ctx context.Context, worldID int) ([]models.TrackedItem, error)
	InsertDailySnapshot(ctx context.Context, snap models.DailySnapshot) (bool, error)
	InsertSales(ctx context.Context, sales []models.Sale) (int, error)
	ItemPriceHistory(ctx context.Context, itemID, worldID, days int) ([]models.DailySnapshot, error)
	TopItemsByVelocity(ctx context.Context, worldID, limit int) ([]models.TopItem, error)
	ItemName(ctx context.Context, itemID int) (string, error)
	ReplaceItems(ctx context.Context, items []models.ItemInfo) error
	ReplaceMarketableItems(ctx context.Context, itemIDs []int) error
}

// Gateway is the slice of the Universalis client the service needs. The
// aggregated batch operation stays with the sync engine; everything here is
// per-item or reference data.
type Gateway interface {
	DataCenters(ctx context.Context) ([]universalis.DataCenter, error)
	Worlds(ctx context.Context) ([]universalis.World, error)
	MostRecentlyUpdated(ctx context.Context, world string, entries int) (*universalis.RecentlyUpdated, error)
	MarketSnapshot(ctx context.Context, world string, itemID int) (*universalis.CurrentlyShown, error)
	SaleHistory(ctx context.Context, world string, itemID, entries int) (*universalis.HistoryResponse, error)
	MarketableItems(ctx context.Context) ([]int, error)
}

// NameSource provides the static item-name dump.
type NameSource interface {
	FetchItemNames(ctx context.Context) (map[int]string, error)
}

// Config holds the collaborators a Service is built from.
type Config struct {
	Store   Store
	Gateway Gateway
	Names   NameSource
	Pool    *offload.Pool
}

// validate reports every missing collaborator at once.
func (c Config) validate() error {
	var errs []error
	if c.Store == nil {
		errs = append(errs, errors.New("store is required"))
	}
	if c.Gateway == nil {
		errs = append(errs, errors.New("gateway is required"))
	}
	if c.Names == nil {
		errs = append(errs, errors.New("name source is required"))
	}
	if c.Pool == nil {
		errs = append(errs, errors.New("offload pool is required"))
	}
	return errors.Join(errs...)
}

// Service implements the operational market commands.
//
// Thread Safety: all methods are safe for concurrent use; shared state
// lives in the store and the pool, both of which synchronize internally.
type Service struct {
	store   Store
	gateway Gateway
	names   NameSource
	pool    *offload.Pool
}

// New creates a market service from the given collaborators.
func New(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid market service config: %w", err)
	}
	return &Service{
		store:   cfg.Store,
		gateway: cfg.Gateway,
		names:   cfg.Names,
		pool:    cfg.Pool,
	}, nil
}

// resolveWorld maps a world name to its cached row. The name is validated
// before anything else happens; a cache miss triggers one refresh from the
// upstream before giving up with ErrUnknownWorld.
func (s *Service) resolveWorld(ctx context.Context, name string) (*models.WorldInfo, error) {
	if err := validation.ScopeName(name); err != nil {
		return nil, err
	}

	world, err := s.store.WorldByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("look up world %q: %w", name, err)
	}
	if world != nil {
		return world, nil
	}

	if _, err := s.RefreshWorlds(ctx); err != nil {
		return nil, fmt.Errorf("refresh worlds for %q: %w", name, err)
	}

	world, err = s.store.WorldByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("look up world %q: %w", name, err)
	}
	if world == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorld, name)
	}
	return world, nil
}

// RefreshWorlds pulls the world and data-center listings from the upstream,
// joins them, and replaces the local cache. Returns the refreshed listing.
func (s *Service) RefreshWorlds(ctx context.Context) ([]models.WorldInfo, error) {
	worlds, err := s.gateway.Worlds(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch worlds: %w", err)
	}

	dcs, err := s.gateway.DataCenters(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch data centers: %w", err)
	}

	// Index each world's data center and region by member ID.
	type placement struct {
		dc     string
		region string
	}
	placements := make(map[int]placement)
	for _, dc := range dcs {
		for _, worldID := range dc.Worlds {
			placements[worldID] = placement{dc: dc.Name, region: dc.Region}
		}
	}

	now := time.Now().UTC()
	infos := make([]models.WorldInfo, 0, len(worlds))
	for _, w := range worlds {
		p := placements[w.ID]
		infos = append(infos, models.WorldInfo{
			ID:         w.ID,
			Name:       w.Name,
			DataCenter: p.dc,
			Region:     p.region,
			FetchedAt:  now,
		})
	}

	if err := s.store.UpsertWorlds(ctx, infos); err != nil {
		return nil, fmt.Errorf("store worlds: %w", err)
	}

	logging.Ctx(ctx).Info().Int("worlds", len(infos)).Int("data_centers", len(dcs)).Msg("World cache refreshed")
	return infos, nil
}

// DataCenters returns the upstream data-center listing.
func (s *Service) DataCenters(ctx context.Context) ([]universalis.DataCenter, error) {
	return s.gateway.DataCenters(ctx)
}

// TrackWorld registers a world for daily batch sync.
func (s *Service) TrackWorld(ctx context.Context, worldName string) (*models.WorldInfo, error) {
	world, err := s.resolveWorld(ctx, worldName)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddTrackedWorld(ctx, world.ID, world.Name); err != nil {
		return nil, fmt.Errorf("track world %q: %w", world.Name, err)
	}
	logging.Ctx(ctx).Info().Str("world", world.Name).Int("world_id", world.ID).Msg("World tracked")
	return world, nil
}

// UntrackWorld removes a world from daily batch sync. Returns false when the
// world was not tracked in the first place; that is not an error.
func (s *Service) UntrackWorld(ctx context.Context, worldName string) (bool, error) {
	if err := validation.ScopeName(worldName); err != nil {
		return false, err
	}
	removed, err := s.store.RemoveTrackedWorld(ctx, worldName)
	if err != nil {
		return false, fmt.Errorf("untrack world %q: %w", worldName, err)
	}
	if removed {
		logging.Ctx(ctx).Info().Str("world", worldName).Msg("World untracked")
	}
	return removed, nil
}

// ListTracked returns the tracked worlds with their tracked-item counts.
func (s *Service) ListTracked(ctx context.Context) ([]models.TrackedWorld, error) {
	return s.store.ListTrackedWorlds(ctx)
}

// SyncItemNames fetches the static item-name dump and swaps the local items
// table for it. Returns the number of names stored.
func (s *Service) SyncItemNames(ctx context.Context) (int, error) {
	names, err := s.names.FetchItemNames(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch item names: %w", err)
	}

	items := make([]models.ItemInfo, 0, len(names))
	for id, name := range names {
		items = append(items, models.ItemInfo{ID: id, Name: name})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	if err := s.store.ReplaceItems(ctx, items); err != nil {
		return 0, fmt.Errorf("store item names: %w", err)
	}

	logging.Ctx(ctx).Info().Int("items", len(items)).Msg("Item names synced")
	return len(items), nil
}

// SyncMarketable fetches the marketable-item universe and swaps the local
// copy for it. Returns the universe size.
func (s *Service) SyncMarketable(ctx context.Context) (int, error) {
	ids, err := s.gateway.MarketableItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch marketable items: %w", err)
	}

	if err := s.store.ReplaceMarketableItems(ctx, ids); err != nil {
		return 0, fmt.Errorf("store marketable items: %w", err)
	}

	logging.Ctx(ctx).Info().Int("items", len(ids)).Msg("Marketable universe synced")
	return len(ids), nil
}
