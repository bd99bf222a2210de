// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package market

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mogsworth/gilstream/internal/logging"
	"github.com/mogsworth/gilstream/internal/models"
	"github.com/mogsworth/gilstream/internal/models/universalis"
	"github.com/mogsworth/gilstream/internal/offload"
)

// InitializeTracking discovers actively traded items on a world and
// registers them for the per-item update path.
//
// The most-recently-updated feed supplies up to count candidates; each is
// probed with a market snapshot on the offload pool (bounded fan-out, all
// probes contending on the shared token bucket). Candidates showing sales
// become tracked items. Individual probe failures are counted and skipped,
// never raised: one dead item must not abort a discovery run over hundreds.
func (s *Service) InitializeTracking(ctx context.Context, worldName string, count int) (models.TrackingReport, error) {
	var report models.TrackingReport

	world, err := s.resolveWorld(ctx, worldName)
	if err != nil {
		return report, err
	}
	report.WorldID = world.ID
	report.WorldName = world.Name

	if ctxID := logging.CorrelationIDFromContext(ctx); ctxID == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	log := logging.Ctx(ctx)

	recent, err := s.gateway.MostRecentlyUpdated(ctx, world.Name, count)
	if err != nil {
		return report, fmt.Errorf("probe recently updated items: %w", err)
	}
	report.Probed = len(recent.Items)

	futures := make([]*offload.Future[*universalis.CurrentlyShown], len(recent.Items))
	for i, item := range recent.Items {
		itemID := item.ItemID
		futures[i] = offload.Submit(s.pool, ctx, func(ctx context.Context) (*universalis.CurrentlyShown, error) {
			return s.gateway.MarketSnapshot(ctx, world.Name, itemID)
		})
	}

	var candidates []models.TrackedCandidate
	for i, future := range futures {
		snap, err := future.Wait(ctx)
		if err != nil {
			// Cancellation aborts the run; anything else is a soft failure.
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failures++
			log.Debug().Err(err).Int("item_id", recent.Items[i].ItemID).Msg("Item probe failed, skipping")
			continue
		}
		if !snap.HasSales() {
			continue
		}

		if err := s.store.AddTrackedItem(ctx, snap.ItemID, world.ID); err != nil {
			report.Failures++
			log.Debug().Err(err).Int("item_id", snap.ItemID).Msg("Tracking item failed, skipping")
			continue
		}
		report.Tracked++
		candidates = append(candidates, models.TrackedCandidate{
			ItemID:       snap.ItemID,
			SaleVelocity: snap.RegularSaleVelocity,
			AveragePrice: snap.AveragePrice,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].SaleVelocity > candidates[j].SaleVelocity
	})
	if len(candidates) > topCandidates {
		candidates = candidates[:topCandidates]
	}
	report.TopItems = candidates

	log.Info().
		Str("world", world.Name).
		Int("probed", report.Probed).
		Int("tracked", report.Tracked).
		Int("failures", report.Failures).
		Msg("Tracking initialized")
	return report, nil
}

// itemUpdate is the per-item result folded into an UpdateReport.
type itemUpdate struct {
	sales int
}

// UpdateTrackedItems refreshes every tracked item on a world: one market
// snapshot persisted as today's daily snapshot (a dedup no-op when the batch
// sync already wrote it), plus the sale history merged into the sales table.
// Per-item failures are counted, not raised.
func (s *Service) UpdateTrackedItems(ctx context.Context, worldName string) (models.UpdateReport, error) {
	var report models.UpdateReport

	world, err := s.resolveWorld(ctx, worldName)
	if err != nil {
		return report, err
	}
	report.WorldID = world.ID
	report.WorldName = world.Name

	if ctxID := logging.CorrelationIDFromContext(ctx); ctxID == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	log := logging.Ctx(ctx)

	tracked, err := s.store.ListTrackedItems(ctx, world.ID)
	if err != nil {
		return report, fmt.Errorf("list tracked items: %w", err)
	}
	report.Items = len(tracked)

	futures := make([]*offload.Future[itemUpdate], len(tracked))
	for i, item := range tracked {
		itemID := item.ItemID
		futures[i] = offload.Submit(s.pool, ctx, func(ctx context.Context) (itemUpdate, error) {
			return s.updateItem(ctx, world, itemID)
		})
	}

	for i, future := range futures {
		result, err := future.Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failures++
			log.Debug().Err(err).Int("item_id", tracked[i].ItemID).Msg("Item update failed, skipping")
			continue
		}
		report.Updated++
		report.SalesRecorded += result.sales
	}

	log.Info().
		Str("world", world.Name).
		Int("items", report.Items).
		Int("updated", report.Updated).
		Int("failures", report.Failures).
		Int("sales_recorded", report.SalesRecorded).
		Msg("Tracked items updated")
	return report, nil
}

// updateItem refreshes one item: snapshot write plus sale-history merge.
func (s *Service) updateItem(ctx context.Context, world *models.WorldInfo, itemID int) (itemUpdate, error) {
	snap, err := s.gateway.MarketSnapshot(ctx, world.Name, itemID)
	if err != nil {
		return itemUpdate{}, fmt.Errorf("market snapshot: %w", err)
	}

	if _, err := s.store.InsertDailySnapshot(ctx, snapshotFromMarket(snap, world.ID)); err != nil {
		return itemUpdate{}, fmt.Errorf("store snapshot: %w", err)
	}

	history, err := s.gateway.SaleHistory(ctx, world.Name, itemID, 0)
	if err != nil {
		return itemUpdate{}, fmt.Errorf("sale history: %w", err)
	}

	recorded, err := s.store.InsertSales(ctx, salesFromHistory(history, world.ID))
	if err != nil {
		return itemUpdate{}, fmt.Errorf("store sales: %w", err)
	}

	return itemUpdate{sales: recorded}, nil
}

// snapshotFromMarket reduces a market snapshot to today's daily snapshot
// row. Zero-valued upstream statistics mean "no data" and map to nil so the
// row matches what the aggregated batch path would have written.
func snapshotFromMarket(snap *universalis.CurrentlyShown, worldID int) models.DailySnapshot {
	return models.DailySnapshot{
		ItemID:         snap.ItemID,
		WorldID:        worldID,
		NQMinPrice:     positiveFloat(float64(snap.MinPriceNQ)),
		HQMinPrice:     positiveFloat(float64(snap.MinPriceHQ)),
		NQAvgPrice:     positiveFloat(snap.AveragePriceNQ),
		HQAvgPrice:     positiveFloat(snap.AveragePriceHQ),
		NQSaleVelocity: positiveFloat(snap.NQSaleVelocity),
		HQSaleVelocity: positiveFloat(snap.HQSaleVelocity),
		LastSaleAt:     newestSale(snap.RecentHistory),
	}
}

// salesFromHistory converts history entries to sales rows. The store's
// uniqueness constraint absorbs entries already recorded by an earlier run.
func salesFromHistory(history *universalis.HistoryResponse, worldID int) []models.Sale {
	sales := make([]models.Sale, 0, len(history.Entries))
	for _, entry := range history.Entries {
		sales = append(sales, models.Sale{
			ItemID:       history.ItemID,
			WorldID:      worldID,
			SoldAt:       entry.Time(),
			PricePerUnit: entry.PricePerUnit,
			Quantity:     entry.Quantity,
			HQ:           entry.HQ,
		})
	}
	return sales
}

// positiveFloat maps the upstream's zero-means-absent statistics to nil.
func positiveFloat(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}

// newestSale returns the most recent sale time in the list, or nil when the
// item has no recorded sales.
func newestSale(sales []universalis.Sale) *time.Time {
	var newest *time.Time
	for _, sale := range sales {
		t := sale.Time()
		if newest == nil || t.After(*newest) {
			newest = &t
		}
	}
	return newest
}
