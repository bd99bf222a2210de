// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package models

import (
	"fmt"
	"time"
)

// SyncScope identifies one tracked world targeted by a sync pass.
// The engine iterates scopes sequentially; WorldName is the path segment
// sent to Universalis and WorldID keys the local snapshot rows.
type SyncScope struct {
	WorldID   int    `json:"world_id"`
	WorldName string `json:"world_name"`
}

// SyncSummary is the accounting result of one full sync pass.
//
// Counting rules:
//   - WorldsProcessed: every scope the pass reached, including worlds where
//     nothing needed updating
//   - ItemsTotal: marketable universe size, counted once per world
//   - ItemsUpdated: price records actually returned and persisted
//   - ItemsSkipped: items excluded up front because a snapshot for today
//     already existed, counted once per world
//
// On failure mid-pass the summary still reflects all committed work.
type SyncSummary struct {
	WorldsProcessed int `json:"worlds_processed"`
	ItemsTotal      int `json:"items_total"`
	ItemsUpdated    int `json:"items_updated"`
	ItemsSkipped    int `json:"items_skipped"`
}

// String renders the single-line form printed by the sync command.
func (s SyncSummary) String() string {
	return fmt.Sprintf("worlds %d  items updated %d  items skipped %d  items total %d",
		s.WorldsProcessed, s.ItemsUpdated, s.ItemsSkipped, s.ItemsTotal)
}

// PriceRecord is the flattened per-item result of an aggregated price query.
//
// The gateway reduces the nested Universalis aggregated response (per quality,
// per scope) to this shape before anything else sees it. Each quality field is
// taken from the narrowest scope the upstream reported, world first, then
// data center, then region. A nil field means the upstream carried no data for
// that quality, typically because the item cannot exist in high quality or has
// never sold.
type PriceRecord struct {
	ItemID int `json:"item_id"`

	// Minimum posted listing price per unit.
	NQMinListing *float64 `json:"nq_min_listing,omitempty"`
	HQMinListing *float64 `json:"hq_min_listing,omitempty"`

	// Average realized sale price.
	NQAverageSale *float64 `json:"nq_average_sale,omitempty"`
	HQAverageSale *float64 `json:"hq_average_sale,omitempty"`

	// Units sold per day.
	NQSaleVelocity *float64 `json:"nq_sale_velocity,omitempty"`
	HQSaleVelocity *float64 `json:"hq_sale_velocity,omitempty"`

	// Most recent purchase across both qualities.
	LastSaleAt *time.Time `json:"last_sale_at,omitempty"`
}

// DailySnapshot is one row of the daily_snapshots table: the state of an
// item's market on a world captured on a calendar date. The
// (item_id, world_id, snapshot_date) triple is unique; writing the same
// triple twice is a silent no-op, which is what makes re-running a sync
// pass after a crash safe.
type DailySnapshot struct {
	ItemID         int        `json:"item_id"`
	WorldID        int        `json:"world_id"`
	SnapshotDate   time.Time  `json:"snapshot_date"`
	NQMinPrice     *float64   `json:"nq_min_price,omitempty"`
	HQMinPrice     *float64   `json:"hq_min_price,omitempty"`
	NQAvgPrice     *float64   `json:"nq_avg_price,omitempty"`
	HQAvgPrice     *float64   `json:"hq_avg_price,omitempty"`
	NQSaleVelocity *float64   `json:"nq_sale_velocity,omitempty"`
	HQSaleVelocity *float64   `json:"hq_sale_velocity,omitempty"`
	LastSaleAt     *time.Time `json:"last_sale_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Sale is a single realized transaction from the sale history feed.
type Sale struct {
	ItemID       int       `json:"item_id"`
	WorldID      int       `json:"world_id"`
	SoldAt       time.Time `json:"sold_at"`
	PricePerUnit int       `json:"price_per_unit"`
	Quantity     int       `json:"quantity"`
	HQ           bool      `json:"hq"`
}

// TrackedWorld is a world registered for daily sync. ItemCount is the number
// of individually tracked items on that world (zero when only the marketable
// universe is synced).
type TrackedWorld struct {
	WorldID   int       `json:"world_id"`
	WorldName string    `json:"world_name"`
	AddedAt   time.Time `json:"added_at"`
	ItemCount int       `json:"item_count"`
}

// TrackedItem is an item registered for the per-item update path on a world.
// ItemName is joined from the items table and empty when names have not been
// synced yet.
type TrackedItem struct {
	ItemID    int       `json:"item_id"`
	WorldID   int       `json:"world_id"`
	WorldName string    `json:"world_name"`
	ItemName  string    `json:"item_name,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

// WorldInfo is a cached world row: the /worlds listing joined with its data
// center and region from /data-centers.
type WorldInfo struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	DataCenter string    `json:"datacenter,omitempty"`
	Region     string    `json:"region,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// ItemInfo is a cached item name from the Teamcraft dump.
type ItemInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
