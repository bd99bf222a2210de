// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package universalis

import (
	"time"
)

// CurrentlyShown is the market board state of one item on one world:
// current listings, recent sales, and derived price statistics.
type CurrentlyShown struct {
	ItemID         int    `json:"itemID"`
	WorldID        int    `json:"worldID"`
	WorldName      string `json:"worldName"`
	LastUploadTime int64  `json:"lastUploadTime"` // epoch milliseconds

	Listings      []Listing `json:"listings"`
	RecentHistory []Sale    `json:"recentHistory"`

	// Listing-derived statistics (gil per unit).
	CurrentAveragePrice   float64 `json:"currentAveragePrice"`
	CurrentAveragePriceNQ float64 `json:"currentAveragePriceNQ"`
	CurrentAveragePriceHQ float64 `json:"currentAveragePriceHQ"`
	MinPrice              int     `json:"minPrice"`
	MinPriceNQ            int     `json:"minPriceNQ"`
	MinPriceHQ            int     `json:"minPriceHQ"`
	MaxPrice              int     `json:"maxPrice"`
	MaxPriceNQ            int     `json:"maxPriceNQ"`
	MaxPriceHQ            int     `json:"maxPriceHQ"`

	// Sale-derived statistics. Velocities are units sold per day averaged
	// over the upstream's history window.
	RegularSaleVelocity float64 `json:"regularSaleVelocity"`
	NQSaleVelocity      float64 `json:"nqSaleVelocity"`
	HQSaleVelocity      float64 `json:"hqSaleVelocity"`
	AveragePrice        float64 `json:"averagePrice"`
	AveragePriceNQ      float64 `json:"averagePriceNQ"`
	AveragePriceHQ      float64 `json:"averagePriceHQ"`

	ListingsCount      int `json:"listingsCount"`
	RecentHistoryCount int `json:"recentHistoryCount"`
	UnitsForSale       int `json:"unitsForSale"`
	UnitsSold          int `json:"unitsSold"`
}

// LastUploadAt converts LastUploadTime to a time.Time. Returns the zero time
// when the upstream has never seen an upload for this item.
func (c *CurrentlyShown) LastUploadAt() time.Time {
	if c.LastUploadTime == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.LastUploadTime).UTC()
}

// HasSales reports whether the item shows any market activity.
func (c *CurrentlyShown) HasSales() bool {
	return c.RegularSaleVelocity > 0
}

// Listing is a single posted market board listing.
type Listing struct {
	LastReviewTime int64  `json:"lastReviewTime"` // epoch seconds
	PricePerUnit   int    `json:"pricePerUnit"`
	Quantity       int    `json:"quantity"`
	HQ             bool   `json:"hq"`
	OnMannequin    bool   `json:"onMannequin"`
	RetainerName   string `json:"retainerName,omitempty"`
	Total          int    `json:"total"`
	Tax            int    `json:"tax"`
}

// Sale is one realized transaction, as returned in recentHistory and in the
// history endpoint's entries.
type Sale struct {
	HQ           bool   `json:"hq"`
	PricePerUnit int    `json:"pricePerUnit"`
	Quantity     int    `json:"quantity"`
	Timestamp    int64  `json:"timestamp"` // epoch seconds
	OnMannequin  bool   `json:"onMannequin"`
	BuyerName    string `json:"buyerName,omitempty"`
	Total        int    `json:"total"`
}

// Time converts the sale timestamp to a time.Time.
func (s Sale) Time() time.Time {
	return time.Unix(s.Timestamp, 0).UTC()
}

// HistoryResponse is the sale history of one item on one world.
type HistoryResponse struct {
	ItemID              int            `json:"itemID"`
	WorldID             int            `json:"worldID"`
	WorldName           string         `json:"worldName"`
	LastUploadTime      int64          `json:"lastUploadTime"` // epoch milliseconds
	Entries             []Sale         `json:"entries"`
	StackSizeHistogram  map[string]int `json:"stackSizeHistogram,omitempty"`
	RegularSaleVelocity float64        `json:"regularSaleVelocity"`
	NQSaleVelocity      float64        `json:"nqSaleVelocity"`
	HQSaleVelocity      float64        `json:"hqSaleVelocity"`
}
