// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package models

import (
	"time"
)

// TopItem is one row of the sale-velocity leaderboard for a world, built
// from the most recent snapshot per item. Velocity and price fields are nil
// when the latest snapshot carried no data for that quality.
type TopItem struct {
	ItemID         int        `json:"item_id"`
	Name           string     `json:"name,omitempty"`
	NQSaleVelocity *float64   `json:"nq_sale_velocity,omitempty"`
	HQSaleVelocity *float64   `json:"hq_sale_velocity,omitempty"`
	NQAvgPrice     *float64   `json:"nq_avg_price,omitempty"`
	HQAvgPrice     *float64   `json:"hq_avg_price,omitempty"`
	LastSaleAt     *time.Time `json:"last_sale_at,omitempty"`
	SnapshotDate   time.Time  `json:"snapshot_date"`
}

// TrendReport holds percent changes between the oldest and newest snapshot
// in a report window. A nil field means one of the endpoints had no data,
// so no change could be computed.
type TrendReport struct {
	PriceChangePct    *float64 `json:"price_change_pct,omitempty"`
	VelocityChangePct *float64 `json:"velocity_change_pct,omitempty"`
}

// ItemReport is the detailed history for one item on one world over a
// report window. Snapshots are ordered newest first. LastSaleAgo is a
// human-readable form of LastSaleAt ("3h ago"); "unknown" when no sale has
// been observed.
type ItemReport struct {
	ItemID      int             `json:"item_id"`
	ItemName    string          `json:"item_name,omitempty"`
	WorldID     int             `json:"world_id"`
	WorldName   string          `json:"world_name"`
	Days        int             `json:"days"`
	Snapshots   []DailySnapshot `json:"snapshots"`
	Trends      *TrendReport    `json:"trends,omitempty"`
	LastSaleAt  *time.Time      `json:"last_sale_at,omitempty"`
	LastSaleAgo string          `json:"last_sale_ago,omitempty"`
}

// TrackedCandidate is one item discovered during tracking initialization,
// kept when its market showed actual sales.
type TrackedCandidate struct {
	ItemID       int     `json:"item_id"`
	SaleVelocity float64 `json:"sale_velocity"`
	AveragePrice float64 `json:"average_price"`
}

// TrackingReport summarizes a tracking initialization run. Probed is how
// many recently updated items the upstream returned, Tracked how many of
// those showed sales and were registered, Failures how many per-item probes
// failed and were skipped.
type TrackingReport struct {
	WorldID   int                `json:"world_id"`
	WorldName string             `json:"world_name"`
	Probed    int                `json:"probed"`
	Tracked   int                `json:"tracked"`
	Failures  int                `json:"failures"`
	TopItems  []TrackedCandidate `json:"top_items"`
}

// UpdateReport summarizes a per-item refresh pass over the tracked items of
// one world. Failures counts items whose fetch or write failed; they do not
// abort the pass.
type UpdateReport struct {
	WorldID       int    `json:"world_id"`
	WorldName     string `json:"world_name"`
	Items         int    `json:"items"`
	Updated       int    `json:"updated"`
	Failures      int    `json:"failures"`
	SalesRecorded int    `json:"sales_recorded"`
}
