// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/mogsworth/gilstream/internal/logging"
	"github.com/mogsworth/gilstream/internal/metrics"
	"github.com/mogsworth/gilstream/internal/models"
)

// batchCap is the number of item IDs sent per aggregated price call, the
// upstream's per-call maximum.
const batchCap = 100

// Store is the persistence surface the engine needs. *database.DB satisfies
// it; tests substitute a mock.
type Store interface {
	ListTrackedScopes(ctx context.Context) ([]models.SyncScope, error)
	ListMarketableItemIDs(ctx context.Context) ([]int, error)
	ItemsUpdatedToday(ctx context.Context, worldID int) (map[int]struct{}, error)
	SaveAggregatedResults(ctx context.Context, worldID int, records []models.PriceRecord) error
}

// Gateway is the single upstream operation the engine needs. *Client and
// *BreakerClient both satisfy it.
type Gateway interface {
	AggregatedPrices(ctx context.Context, scope string, itemIDs []int) ([]models.PriceRecord, error)
}

// Engine runs batch sync passes: for every tracked world, fetch aggregated
// prices for every marketable item not yet updated today and persist them as
// daily snapshots.
//
// A pass is resumable rather than transactional. Each batch commits
// independently, and the per-world skip set is recomputed from the store at
// the start of every pass, so a crashed or failed pass re-run picks up where
// the last one stopped. Duplicate writes are absorbed by the snapshot table's
// uniqueness constraint.
//
// Thread Safety: SyncAll is safe for concurrent use, though the Manager
// serializes passes so their summaries stay meaningful.
type Engine struct {
	store   Store
	gateway Gateway
}

// NewEngine creates a sync engine over the given store and gateway.
func NewEngine(store Store, gateway Gateway) *Engine {
	return &Engine{
		store:   store,
		gateway: gateway,
	}
}

// SyncAll runs one full sync pass over every tracked world, sequentially.
//
// Accounting (per pass):
//   - WorldsProcessed: worlds fully completed
//   - ItemsTotal: marketable universe size, counted once per world
//   - ItemsSkipped: items excluded because today's snapshot already existed
//   - ItemsUpdated: price records returned and persisted
//
// No tracked worlds is a successful zero pass with zero network calls. An
// empty marketable universe processes every world as a no-op.
//
// The first gateway or persistence failure halts the pass. The returned
// summary still reflects all work committed before the failure, and the
// error preserves its classification for errors.As.
func (e *Engine) SyncAll(ctx context.Context) (models.SyncSummary, error) {
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}

	start := time.Now()
	log := logging.Ctx(ctx)

	summary, err := e.syncAll(ctx)
	metrics.RecordSyncPass(time.Since(start), summary.WorldsProcessed, summary.ItemsUpdated, summary.ItemsSkipped, err)

	if err != nil {
		log.Error().Err(err).
			Dur("elapsed", time.Since(start)).
			Int("worlds_processed", summary.WorldsProcessed).
			Int("items_updated", summary.ItemsUpdated).
			Msg("Sync pass failed")
		return summary, err
	}

	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("worlds_processed", summary.WorldsProcessed).
		Int("items_updated", summary.ItemsUpdated).
		Int("items_skipped", summary.ItemsSkipped).
		Msg("Sync pass completed")
	return summary, nil
}

func (e *Engine) syncAll(ctx context.Context) (models.SyncSummary, error) {
	var summary models.SyncSummary
	log := logging.Ctx(ctx)

	scopes, err := e.store.ListTrackedScopes(ctx)
	if err != nil {
		return summary, fmt.Errorf("list tracked worlds: %w", err)
	}
	if len(scopes) == 0 {
		log.Info().Msg("No tracked worlds, nothing to sync")
		return summary, nil
	}

	marketable, err := e.store.ListMarketableItemIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("list marketable items: %w", err)
	}
	if len(marketable) == 0 {
		// Every world processes as a no-op until sync-marketable has run.
		summary.WorldsProcessed = len(scopes)
		log.Warn().Int("worlds", len(scopes)).Msg("Marketable item universe is empty, run sync-marketable first")
		return summary, nil
	}

	for _, scope := range scopes {
		if err := e.syncWorld(ctx, scope, marketable, &summary); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

// syncWorld syncs one world and folds its accounting into summary.
func (e *Engine) syncWorld(ctx context.Context, scope models.SyncScope, marketable []int, summary *models.SyncSummary) error {
	log := logging.Ctx(ctx)

	// The skip set is recomputed fresh per world per pass, so a re-run after
	// a crash skips exactly the items the previous pass committed.
	skipSet, err := e.store.ItemsUpdatedToday(ctx, scope.WorldID)
	if err != nil {
		return fmt.Errorf("world %s: items updated today: %w", scope.WorldName, err)
	}

	candidates := make([]int, 0, len(marketable))
	for _, id := range marketable {
		if _, done := skipSet[id]; !done {
			candidates = append(candidates, id)
		}
	}

	summary.ItemsTotal += len(marketable)
	summary.ItemsSkipped += len(marketable) - len(candidates)

	updated := 0
	for batchStart := 0; batchStart < len(candidates); batchStart += batchCap {
		end := batchStart + batchCap
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[batchStart:end]

		records, err := e.gateway.AggregatedPrices(ctx, scope.WorldName, batch)
		if err != nil {
			return fmt.Errorf("world %s: aggregated prices: %w", scope.WorldName, err)
		}
		metrics.RecordSyncBatch(len(batch))

		if err := e.store.SaveAggregatedResults(ctx, scope.WorldID, records); err != nil {
			return fmt.Errorf("world %s: save results: %w", scope.WorldName, err)
		}
		// Folded in per batch, not per world, so a summary returned alongside
		// a mid-world failure still counts the batches that committed.
		summary.ItemsUpdated += len(records)
		updated += len(records)
	}

	summary.WorldsProcessed++

	log.Debug().
		Str("world", scope.WorldName).
		Int("candidates", len(candidates)).
		Int("updated", updated).
		Int("skipped", len(marketable)-len(candidates)).
		Msg("World synced")
	return nil
}
