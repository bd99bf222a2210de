// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the outbound sync path and the serve-mode
// API:
// - Universalis gateway requests, retries, and latency
// - Token bucket wait times
// - Sync pass outcomes and item accounting
// - Circuit breaker state
// - DuckDB query performance
// - HTTP API latency and throughput

var (
	// Gateway Metrics (Universalis client)
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "universalis_requests_total",
			Help: "Total number of Universalis API calls by final outcome",
		},
		[]string{"operation", "outcome"}, // outcome: "success", "transient", "terminal", "canceled"
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "universalis_request_duration_seconds",
			Help:    "Duration of Universalis API calls including retries and backoff",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	GatewayRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "universalis_retries_total",
			Help: "Total number of retry attempts against Universalis",
		},
		[]string{"operation"},
	)

	// Rate Limiter Metrics
	RateLimitWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ratelimit_wait_duration_seconds",
			Help:    "Time spent waiting for a rate limit token",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	RateLimitTokensAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ratelimit_tokens_available",
			Help: "Tokens currently available in the shared bucket",
		},
	)

	// Sync Pass Metrics
	SyncPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_pass_duration_seconds",
			Help:    "Duration of full sync passes in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	SyncPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_passes_total",
			Help: "Total number of sync passes by result",
		},
		[]string{"result"}, // "success", "failure"
	)

	SyncWorldsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_worlds_processed_total",
			Help: "Total number of worlds processed across all passes",
		},
	)

	SyncItemsUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_items_updated_total",
			Help: "Total number of item price records written",
		},
	)

	SyncItemsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_items_skipped_total",
			Help: "Total number of items skipped because today's snapshot already existed",
		},
	)

	SyncBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_batch_size",
			Help:    "Number of item IDs per aggregated price call",
			Buckets: []float64{1, 5, 10, 25, 50, 75, 100},
		},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp",
			Help: "Unix timestamp of the last successful sync pass",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordGatewayRequest records the final outcome and total duration of one
// gateway operation, retries included.
func RecordGatewayRequest(operation, outcome string, duration time.Duration) {
	GatewayRequestsTotal.WithLabelValues(operation, outcome).Inc()
	GatewayRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordGatewayRetry records a single retry attempt.
func RecordGatewayRetry(operation string) {
	GatewayRetriesTotal.WithLabelValues(operation).Inc()
}

// RecordRateLimitWait records how long an acquire blocked on the bucket.
func RecordRateLimitWait(duration time.Duration) {
	RateLimitWaitDuration.Observe(duration.Seconds())
}

// RecordSyncPass records a completed sync pass and its accounting.
func RecordSyncPass(duration time.Duration, worlds, updated, skipped int, err error) {
	SyncPassDuration.Observe(duration.Seconds())
	SyncWorldsProcessed.Add(float64(worlds))
	SyncItemsUpdated.Add(float64(updated))
	SyncItemsSkipped.Add(float64(skipped))
	if err != nil {
		SyncPassesTotal.WithLabelValues("failure").Inc()
		return
	}
	SyncPassesTotal.WithLabelValues("success").Inc()
	SyncLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordSyncBatch records the size of one aggregated price call.
func RecordSyncBatch(size int) {
	SyncBatchSize.Observe(float64(size))
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordBreakerTransition records a circuit breaker state change and updates
// the state gauge.
func RecordBreakerTransition(name, from, to string, toValue float64) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(toValue)
}

// RecordBreakerRequest records the result of one request through the breaker.
func RecordBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}
