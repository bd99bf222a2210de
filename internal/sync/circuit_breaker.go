// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mogsworth/gilstream/internal/logging"
	"github.com/mogsworth/gilstream/internal/metrics"
	"github.com/mogsworth/gilstream/internal/models"
	"github.com/mogsworth/gilstream/internal/models/universalis"
)

// BreakerClient wraps a Client with the circuit breaker pattern so a dead or
// degraded Universalis is not hammered every sync interval. Only the
// long-running serve mode uses it; one-shot CLI commands already have a
// bounded retry budget and exit.
//
// DETERMINISM NOTE: The breaker uses real time (via sony/gobreaker) for its
// interval and timeout calculations. The timing determines when to recover
// from failures, not data integrity. Tests should mock the underlying client,
// not the breaker.
type BreakerClient struct {
	client ClientInterface
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewBreakerClient wraps the given client with a circuit breaker.
//
// Breaker configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
func NewBreakerClient(client ClientInterface) *BreakerClient {
	cbName := "universalis-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		// Opens when failure rate >= 60% with minimum 10 requests.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.RecordBreakerTransition(name, fromStr, toStr, stateToFloat(to))
		},
	})

	return &BreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute wraps a Universalis call with circuit breaker protection.
// Returns the result or an error if the circuit is open or the call fails.
func (b *BreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordBreakerRequest(b.name, "rejected")
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.RecordBreakerRequest(b.name, "failure")
		}
		return nil, err
	}

	metrics.RecordBreakerRequest(b.name, "success")
	return result, nil
}

// castResult safely type-casts the circuit breaker result.
// Returns the typed result or an error if the assertion fails.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts a breaker state to its numeric value for metrics.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts a breaker state to a string for logging.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Ping verifies connectivity with circuit breaker protection.
func (b *BreakerClient) Ping(ctx context.Context) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.client.Ping(ctx)
	})
	return err
}

// DataCenters lists data centers with circuit breaker protection.
func (b *BreakerClient) DataCenters(ctx context.Context) ([]universalis.DataCenter, error) {
	return castResult[[]universalis.DataCenter](b.execute(func() (interface{}, error) {
		return b.client.DataCenters(ctx)
	}))
}

// Worlds lists game worlds with circuit breaker protection.
func (b *BreakerClient) Worlds(ctx context.Context) ([]universalis.World, error) {
	return castResult[[]universalis.World](b.execute(func() (interface{}, error) {
		return b.client.Worlds(ctx)
	}))
}

// MostRecentlyUpdated probes recent upload activity with circuit breaker protection.
func (b *BreakerClient) MostRecentlyUpdated(ctx context.Context, world string, entries int) (*universalis.RecentlyUpdated, error) {
	return castResult[*universalis.RecentlyUpdated](b.execute(func() (interface{}, error) {
		return b.client.MostRecentlyUpdated(ctx, world, entries)
	}))
}

// MarketSnapshot fetches one item's market state with circuit breaker protection.
func (b *BreakerClient) MarketSnapshot(ctx context.Context, world string, itemID int) (*universalis.CurrentlyShown, error) {
	return castResult[*universalis.CurrentlyShown](b.execute(func() (interface{}, error) {
		return b.client.MarketSnapshot(ctx, world, itemID)
	}))
}

// SaleHistory fetches one item's sale history with circuit breaker protection.
func (b *BreakerClient) SaleHistory(ctx context.Context, world string, itemID, entries int) (*universalis.HistoryResponse, error) {
	return castResult[*universalis.HistoryResponse](b.execute(func() (interface{}, error) {
		return b.client.SaleHistory(ctx, world, itemID, entries)
	}))
}

// MarketableItems lists marketable item IDs with circuit breaker protection.
func (b *BreakerClient) MarketableItems(ctx context.Context) ([]int, error) {
	return castResult[[]int](b.execute(func() (interface{}, error) {
		return b.client.MarketableItems(ctx)
	}))
}

// AggregatedPrices fetches aggregated prices with circuit breaker protection.
func (b *BreakerClient) AggregatedPrices(ctx context.Context, scope string, itemIDs []int) ([]models.PriceRecord, error) {
	return castResult[[]models.PriceRecord](b.execute(func() (interface{}, error) {
		return b.client.AggregatedPrices(ctx, scope, itemIDs)
	}))
}
