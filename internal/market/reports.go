// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package market

import (
	"context"
	"fmt"
	"time"

	"github.com/mogsworth/gilstream/internal/models"
)

// TopItems returns the sale-velocity leaderboard for a world, built from
// each item's most recent daily snapshot.
func (s *Service) TopItems(ctx context.Context, worldName string, limit int) ([]models.TopItem, error) {
	world, err := s.resolveWorld(ctx, worldName)
	if err != nil {
		return nil, err
	}
	items, err := s.store.TopItemsByVelocity(ctx, world.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("top items for %q: %w", world.Name, err)
	}
	return items, nil
}

// ItemReport returns the snapshot history of one item on one world over the
// given window, newest first, with trend percentages computed between the
// window's endpoints.
func (s *Service) ItemReport(ctx context.Context, worldName string, itemID, days int) (models.ItemReport, error) {
	var report models.ItemReport

	world, err := s.resolveWorld(ctx, worldName)
	if err != nil {
		return report, err
	}

	snapshots, err := s.store.ItemPriceHistory(ctx, itemID, world.ID, days)
	if err != nil {
		return report, fmt.Errorf("price history for item %d on %q: %w", itemID, world.Name, err)
	}

	// The name is decoration; a missing or unsynced dump must not fail the
	// report.
	name, err := s.store.ItemName(ctx, itemID)
	if err != nil {
		name = ""
	}

	report = models.ItemReport{
		ItemID:      itemID,
		ItemName:    name,
		WorldID:     world.ID,
		WorldName:   world.Name,
		Days:        days,
		Snapshots:   snapshots,
		Trends:      computeTrends(snapshots),
		LastSaleAgo: "unknown",
	}

	if len(snapshots) > 0 && snapshots[0].LastSaleAt != nil {
		report.LastSaleAt = snapshots[0].LastSaleAt
		report.LastSaleAgo = FormatTimeAgo(*snapshots[0].LastSaleAt)
	}

	return report, nil
}

// computeTrends derives percent changes between the oldest and newest
// snapshot of a window. Returns nil when the window has fewer than two
// snapshots; individual trend fields stay nil when either endpoint carried
// no data for them.
func computeTrends(snapshots []models.DailySnapshot) *models.TrendReport {
	if len(snapshots) < 2 {
		return nil
	}

	// Snapshots arrive newest first.
	newest, oldest := snapshots[0], snapshots[len(snapshots)-1]

	return &models.TrendReport{
		PriceChangePct:    percentChange(preferNQ(oldest.NQAvgPrice, oldest.HQAvgPrice), preferNQ(newest.NQAvgPrice, newest.HQAvgPrice)),
		VelocityChangePct: percentChange(combined(oldest.NQSaleVelocity, oldest.HQSaleVelocity), combined(newest.NQSaleVelocity, newest.HQSaleVelocity)),
	}
}

// preferNQ picks the normal-quality statistic when present; most items only
// trade in normal quality.
func preferNQ(nq, hq *float64) *float64 {
	if nq != nil {
		return nq
	}
	return hq
}

// combined sums both qualities' velocities, nil when neither has data.
func combined(nq, hq *float64) *float64 {
	if nq == nil && hq == nil {
		return nil
	}
	var total float64
	if nq != nil {
		total += *nq
	}
	if hq != nil {
		total += *hq
	}
	return &total
}

// percentChange computes (new-old)/old as a percentage, nil when either
// endpoint is missing or the base is zero.
func percentChange(oldVal, newVal *float64) *float64 {
	if oldVal == nil || newVal == nil || *oldVal == 0 {
		return nil
	}
	pct := (*newVal - *oldVal) / *oldVal * 100
	return &pct
}

// FormatTimeAgo renders a timestamp as a coarse relative duration: "just
// now", "5m ago", "3h ago", "2d ago". The zero time renders as "never".
func FormatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	elapsed := time.Since(t)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(elapsed.Hours()/24))
	}
}
