// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

/*
Package metrics provides Prometheus instrumentation for Gilstream.

All collectors are registered at init via promauto and exposed on the
serve-mode /metrics endpoint through promhttp. One-shot CLI commands record
into the same collectors; they are simply never scraped.

Metric Groups:

1. Gateway (universalis_*):
  - universalis_requests_total{operation, outcome}: calls by final outcome
  - universalis_request_duration_seconds{operation}: end-to-end call latency
  - universalis_retries_total{operation}: retry attempts

Outcome labels: "success", "transient" (connection failures exhausted the
attempt budget), "terminal" (upstream rejected the request), "canceled".

2. Rate Limiter (ratelimit_*):
  - ratelimit_wait_duration_seconds: time blocked acquiring a token
  - ratelimit_tokens_available: bucket level sampled by the gateway

3. Sync Passes (sync_*):
  - sync_pass_duration_seconds / sync_passes_total{result}
  - sync_worlds_processed_total, sync_items_updated_total,
    sync_items_skipped_total: cumulative pass accounting
  - sync_batch_size: item IDs per aggregated call (never above 100)
  - sync_last_success_timestamp: freshness signal for alerting

4. Circuit Breaker (circuit_breaker_*):
  - circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - circuit_breaker_state_transitions_total{name, from_state, to_state}
  - circuit_breaker_requests_total{name, result}

5. Database (duckdb_*):
  - duckdb_query_duration_seconds{operation, table}
  - duckdb_query_errors_total{operation, table}

6. HTTP API (api_*):
  - api_requests_total{method, endpoint, status_code}
  - api_request_duration_seconds{method, endpoint}
  - api_rate_limit_hits_total{endpoint}

Usage:

	start := time.Now()
	records, err := gw.AggregatedPrices(ctx, world, batch)
	metrics.RecordGatewayRequest("aggregated_prices", outcomeOf(err), time.Since(start))

Cardinality:

Label values are drawn from small fixed sets (operation names, table names,
chi route patterns). Never use raw URLs, world names, or item IDs as label
values.
*/
package metrics
