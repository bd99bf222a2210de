// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

/*
universalis_client.go - Core Universalis API Client

This file provides the core Client struct and HTTP communication layer for
the Universalis market board API.

Client Features:
  - Shared token bucket rate limiting (every request costs one token)
  - Bounded retry with exponential backoff for connection-level failures
  - Terminal classification for upstream rejections (no retry on non-2xx)
  - JSON response parsing with goccy/go-json
  - Context support for cancellation and timeouts

Error Classification:
  - Connection errors and timeouts retry up to MaxAttempts with 1s, 2s, 4s
    backoff, then surface as *TransientError.
  - Any non-2xx status surfaces as *TerminalError after a single attempt.
    The upstream answered; retrying the identical request cannot help.
  - A 2xx response with an undecodable body is also terminal: the response
    was received and is final.

Related Files:
  - teamcraft_client.go: static item-name dump fetcher (separate budget)
  - circuit_breaker.go: serve-mode breaker wrapper over this client
  - engine.go: batch sync pass built on AggregatedPrices
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mogsworth/gilstream/internal/config"
	"github.com/mogsworth/gilstream/internal/metrics"
	"github.com/mogsworth/gilstream/internal/models"
	"github.com/mogsworth/gilstream/internal/models/universalis"
	"github.com/mogsworth/gilstream/internal/ratelimit"
	"github.com/mogsworth/gilstream/internal/validation"
)

// maxErrorBodySize limits the amount of response body read for error
// reporting. Prevents unbounded memory allocation on large error responses.
const maxErrorBodySize = 64 * 1024 // 64KB

// maxIDsPerCall is the upstream cap on item IDs per aggregated price call.
const maxIDsPerCall = 100

// readBodyForError reads the response body for error reporting (max 64KB).
// Returns the body content or a placeholder message if reading fails.
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// ClientInterface defines the interface for all Universalis API operations.
//
// Implemented by Client for production use, by BreakerClient for the
// long-running serve mode, and by mocks for testing.
//
// All methods follow a consistent pattern:
//   - Accept context.Context as first parameter for cancellation support
//   - Validate scope names before any rate limit token is spent
//   - Return typed response structs from internal/models/universalis,
//     except AggregatedPrices which returns flattened models.PriceRecords
//   - Return *TransientError or *TerminalError per the classification above
//
// Thread Safety: All methods are safe for concurrent use.
type ClientInterface interface {
	Ping(ctx context.Context) error
	DataCenters(ctx context.Context) ([]universalis.DataCenter, error)
	Worlds(ctx context.Context) ([]universalis.World, error)
	MostRecentlyUpdated(ctx context.Context, world string, entries int) (*universalis.RecentlyUpdated, error)
	MarketSnapshot(ctx context.Context, world string, itemID int) (*universalis.CurrentlyShown, error)
	SaleHistory(ctx context.Context, world string, itemID, entries int) (*universalis.HistoryResponse, error)
	MarketableItems(ctx context.Context) ([]int, error)
	AggregatedPrices(ctx context.Context, scope string, itemIDs []int) ([]models.PriceRecord, error)
}

// Client handles communication with the Universalis HTTP API.
//
// Every request first acquires a token from the shared bucket, so the
// process-wide request rate stays under the upstream ceiling no matter how
// many goroutines hold the client. Connection-level failures retry with
// exponential backoff; upstream rejections do not retry at all.
//
// Thread Safety: Safe for concurrent use. Each request creates its own
// HTTP request; the token bucket serializes admission.
//
// Example:
//
//	limiter := ratelimit.NewTokenBucket(cfg.RateLimit, cfg.Burst)
//	client := sync.NewClient(&cfg.Universalis, limiter)
//	worlds, err := client.Worlds(ctx)
type Client struct {
	baseURL          string
	limiter          *ratelimit.TokenBucket
	client           *http.Client
	maxAttempts      int
	retryBaseDelay   time.Duration
	maxRecentEntries int
}

// NewClient creates a Universalis API client with the provided configuration
// and shared token bucket.
func NewClient(cfg *config.UniversalisConfig, limiter *ratelimit.TokenBucket) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: limiter,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxAttempts:      cfg.MaxAttempts,
		retryBaseDelay:   1 * time.Second, // doubles each retry: 1s, 2s, 4s
		maxRecentEntries: cfg.MaxRecentEntries,
	}
}

// getJSON performs a rate-limited GET against the given path and decodes the
// response into out. It is the single entry point for all operations, so the
// retry, classification, and metrics behavior is uniform across endpoints.
func (c *Client) getJSON(ctx context.Context, operation, path string, query url.Values, out interface{}) error {
	start := time.Now()
	err := c.doRequest(ctx, operation, path, query, out)
	metrics.RecordGatewayRequest(operation, outcomeLabel(err), time.Since(start))
	return err
}

// doRequest runs the attempt loop: acquire token, issue GET, classify.
// Connection-level failures back off and retry on a replaced connection;
// any received response is final.
func (c *Client) doRequest(ctx context.Context, operation, path string, query url.Values, out interface{}) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Every attempt costs a token, including retries.
		waitStart := time.Now()
		if err := c.limiter.Acquire(ctx); err != nil {
			return err
		}
		metrics.RecordRateLimitWait(time.Since(waitStart))
		metrics.RateLimitTokensAvailable.Set(c.limiter.Available())

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return fmt.Errorf("failed to create %s request: %w", operation, err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			// Cancellation of the parent context is not a network failure.
			if ctx.Err() != nil {
				return ctx.Err()
			}

			lastErr = err
			if attempt == c.maxAttempts {
				break
			}

			metrics.RecordGatewayRetry(operation)
			delay := c.retryBaseDelay << uint(attempt-1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			// The failed connection may be sitting in the keep-alive pool.
			// Drop it so the retry dials fresh.
			c.client.CloseIdleConnections()
			continue
		}

		// A received response is final, success or not.
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body := readBodyForError(resp.Body)
			_ = resp.Body.Close()
			return &TerminalError{
				Operation:  operation,
				StatusCode: resp.StatusCode,
				Body:       string(body),
			}
		}

		decodeErr := json.NewDecoder(resp.Body).Decode(out)
		_ = resp.Body.Close()
		if decodeErr != nil {
			return &TerminalError{
				Operation: operation,
				Err:       fmt.Errorf("decode response: %w", decodeErr),
			}
		}

		return nil
	}

	return &TransientError{
		Operation: operation,
		Attempts:  c.maxAttempts,
		Err:       lastErr,
	}
}

// outcomeLabel maps a doRequest result to its metrics label. doRequest only
// returns nil, *TerminalError, *TransientError, or a context error.
func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	var terminal *TerminalError
	if errors.As(err, &terminal) {
		return "terminal"
	}
	var transient *TransientError
	if errors.As(err, &transient) {
		return "transient"
	}
	return "canceled"
}

// Ping verifies connectivity to the Universalis API. The data-centers
// listing is the cheapest stable endpoint; the body is decoded and discarded.
func (c *Client) Ping(ctx context.Context) error {
	var dcs []universalis.DataCenter
	return c.getJSON(ctx, "ping", "/data-centers", nil, &dcs)
}

// DataCenters returns all data centers with their regions and member worlds.
func (c *Client) DataCenters(ctx context.Context) ([]universalis.DataCenter, error) {
	var dcs []universalis.DataCenter
	if err := c.getJSON(ctx, "data_centers", "/data-centers", nil, &dcs); err != nil {
		return nil, err
	}
	return dcs, nil
}

// Worlds returns all game worlds.
func (c *Client) Worlds(ctx context.Context) ([]universalis.World, error) {
	var worlds []universalis.World
	if err := c.getJSON(ctx, "worlds", "/v2/worlds", nil, &worlds); err != nil {
		return nil, err
	}
	return worlds, nil
}

// MostRecentlyUpdated returns the items with the freshest upload data on a
// world, newest first. entries is clamped to the configured cap; values of
// zero or below request the cap.
func (c *Client) MostRecentlyUpdated(ctx context.Context, world string, entries int) (*universalis.RecentlyUpdated, error) {
	if err := validation.ScopeName(world); err != nil {
		return nil, err
	}
	if entries <= 0 || entries > c.maxRecentEntries {
		entries = c.maxRecentEntries
	}

	query := url.Values{}
	query.Set("world", world)
	query.Set("entries", strconv.Itoa(entries))

	var recent universalis.RecentlyUpdated
	if err := c.getJSON(ctx, "most_recently_updated", "/extra/stats/most-recently-updated", query, &recent); err != nil {
		return nil, err
	}
	return &recent, nil
}

// MarketSnapshot returns the current market board state of one item on one
// world: listings, recent sales, and derived statistics.
func (c *Client) MarketSnapshot(ctx context.Context, world string, itemID int) (*universalis.CurrentlyShown, error) {
	if err := validation.ScopeName(world); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/%s/%d", url.PathEscape(world), itemID)

	var shown universalis.CurrentlyShown
	if err := c.getJSON(ctx, "market_snapshot", path, nil, &shown); err != nil {
		return nil, err
	}
	return &shown, nil
}

// SaleHistory returns realized sales of one item on one world, newest first.
// entries of zero or below leaves the window at the upstream default.
func (c *Client) SaleHistory(ctx context.Context, world string, itemID, entries int) (*universalis.HistoryResponse, error) {
	if err := validation.ScopeName(world); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/history/%s/%d", url.PathEscape(world), itemID)
	var query url.Values
	if entries > 0 {
		query = url.Values{}
		query.Set("entries", strconv.Itoa(entries))
	}

	var history universalis.HistoryResponse
	if err := c.getJSON(ctx, "sale_history", path, query, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// MarketableItems returns the IDs of every item that can be listed on the
// market board. The response is a bare array of roughly 35k integers.
func (c *Client) MarketableItems(ctx context.Context) ([]int, error) {
	var ids []int
	if err := c.getJSON(ctx, "marketable_items", "/marketable", nil, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// AggregatedPrices fetches aggregated market statistics for up to 100 items
// in one call and flattens the nested per-quality, per-scope response into
// one PriceRecord per item the upstream had data for. Items listed in the
// response's failedItems produce no record and no error.
//
// scope is a world, data center, or region name. It is validated before any
// rate limit token is spent.
func (c *Client) AggregatedPrices(ctx context.Context, scope string, itemIDs []int) ([]models.PriceRecord, error) {
	if err := validation.ScopeName(scope); err != nil {
		return nil, err
	}
	if len(itemIDs) == 0 {
		return nil, nil
	}
	if len(itemIDs) > maxIDsPerCall {
		return nil, fmt.Errorf("aggregated_prices: %d ids exceeds the %d per-call cap", len(itemIDs), maxIDsPerCall)
	}

	idStrs := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		idStrs[i] = strconv.Itoa(id)
	}
	path := fmt.Sprintf("/v2/aggregated/%s/%s", url.PathEscape(scope), strings.Join(idStrs, ","))

	var resp universalis.AggregatedResponse
	if err := c.getJSON(ctx, "aggregated_prices", path, nil, &resp); err != nil {
		return nil, err
	}
	return flattenAggregated(&resp), nil
}

// flattenAggregated reduces the nested aggregated response to flat per-item
// records. Each statistic is taken from the narrowest scope with data (world,
// then data center, then region); absent statistics stay nil.
func flattenAggregated(resp *universalis.AggregatedResponse) []models.PriceRecord {
	records := make([]models.PriceRecord, 0, len(resp.Results))
	for i := range resp.Results {
		result := &resp.Results[i]
		records = append(records, models.PriceRecord{
			ItemID:         result.ItemID,
			NQMinListing:   result.NQ.MinListingPrice(),
			HQMinListing:   result.HQ.MinListingPrice(),
			NQAverageSale:  result.NQ.AverageSale(),
			HQAverageSale:  result.HQ.AverageSale(),
			NQSaleVelocity: result.NQ.SaleVelocity(),
			HQSaleVelocity: result.HQ.SaleVelocity(),
			LastSaleAt:     latestSale(result.NQ.LastSale(), result.HQ.LastSale()),
		})
	}
	return records
}

// latestSale returns the more recent of two optional sale times.
func latestSale(nq, hq *time.Time) *time.Time {
	switch {
	case nq == nil:
		return hq
	case hq == nil:
		return nq
	case hq.After(*nq):
		return hq
	default:
		return nq
	}
}
