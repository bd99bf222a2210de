// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package universalis

import (
	"time"
)

// AggregatedResponse is the response of the v2 aggregated endpoint.
// FailedItems lists requested item IDs the upstream had no data for; a
// populated FailedItems is not an error, those items simply produce no
// result.
type AggregatedResponse struct {
	Results     []AggregatedResult `json:"results"`
	FailedItems []int              `json:"failedItems"`
}

// AggregatedResult holds the aggregated market statistics for one item.
// NQ or HQ is nil when the upstream has no data for that quality, most
// commonly because the item cannot exist in high quality.
type AggregatedResult struct {
	ItemID           int                `json:"itemId"`
	NQ               *QualityAggregates `json:"nq,omitempty"`
	HQ               *QualityAggregates `json:"hq,omitempty"`
	WorldUploadTimes []WorldUploadTime  `json:"worldUploadTimes,omitempty"`
}

// WorldUploadTime records when a world last uploaded data for the item.
// Timestamp is epoch milliseconds.
type WorldUploadTime struct {
	WorldID   int   `json:"worldId"`
	Timestamp int64 `json:"timestamp"`
}

// QualityAggregates groups the per-quality statistics. Each statistic is
// independently optional.
type QualityAggregates struct {
	MinListing        *ScopedAggregate `json:"minListing,omitempty"`
	RecentPurchase    *ScopedAggregate `json:"recentPurchase,omitempty"`
	AverageSalePrice  *ScopedAggregate `json:"averageSalePrice,omitempty"`
	DailySaleVelocity *ScopedAggregate `json:"dailySaleVelocity,omitempty"`
}

// ScopedAggregate carries one statistic at up to three scopes. World data is
// only present when the query named a world; DC and Region widen the sample
// when the narrower scope has none.
type ScopedAggregate struct {
	World  *AggregateDatum `json:"world,omitempty"`
	DC     *AggregateDatum `json:"dc,omitempty"`
	Region *AggregateDatum `json:"region,omitempty"`
}

// AggregateDatum is a single data point. Which fields are set depends on the
// statistic: listings and sale prices carry Price, velocities carry Quantity,
// purchases carry Price and Timestamp (epoch milliseconds). WorldID appears
// on DC- and region-scoped points to name the world the value came from.
type AggregateDatum struct {
	Price     *float64 `json:"price,omitempty"`
	Quantity  *float64 `json:"quantity,omitempty"`
	Timestamp *int64   `json:"timestamp,omitempty"`
	WorldID   *int     `json:"worldId,omitempty"`
}

// Preferred returns the narrowest scope with data: world, then data center,
// then region. Returns nil when the receiver is nil or no scope has data.
func (s *ScopedAggregate) Preferred() *AggregateDatum {
	if s == nil {
		return nil
	}
	if s.World != nil {
		return s.World
	}
	if s.DC != nil {
		return s.DC
	}
	return s.Region
}

// PriceValue returns the price, or nil when the datum is absent.
func (d *AggregateDatum) PriceValue() *float64 {
	if d == nil {
		return nil
	}
	return d.Price
}

// QuantityValue returns the quantity, or nil when the datum is absent.
func (d *AggregateDatum) QuantityValue() *float64 {
	if d == nil {
		return nil
	}
	return d.Quantity
}

// TimestampValue returns the raw epoch-millisecond timestamp, or nil when
// the datum is absent.
func (d *AggregateDatum) TimestampValue() *int64 {
	if d == nil {
		return nil
	}
	return d.Timestamp
}

// Time converts the datum's timestamp to a time.Time, or nil when absent.
func (d *AggregateDatum) Time() *time.Time {
	ts := d.TimestampValue()
	if ts == nil {
		return nil
	}
	t := time.UnixMilli(*ts).UTC()
	return &t
}

// MinListingPrice returns the preferred-scope minimum listing price, or nil.
func (q *QualityAggregates) MinListingPrice() *float64 {
	if q == nil {
		return nil
	}
	return q.MinListing.Preferred().PriceValue()
}

// AverageSale returns the preferred-scope average sale price, or nil.
func (q *QualityAggregates) AverageSale() *float64 {
	if q == nil {
		return nil
	}
	return q.AverageSalePrice.Preferred().PriceValue()
}

// SaleVelocity returns the preferred-scope daily sale velocity, or nil.
func (q *QualityAggregates) SaleVelocity() *float64 {
	if q == nil {
		return nil
	}
	return q.DailySaleVelocity.Preferred().QuantityValue()
}

// LastSale returns the preferred-scope most recent purchase time, or nil.
func (q *QualityAggregates) LastSale() *time.Time {
	if q == nil {
		return nil
	}
	return q.RecentPurchase.Preferred().Time()
}
