// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/mogsworth/gilstream/internal/config"
	"github.com/mogsworth/gilstream/internal/logging"
	"github.com/mogsworth/gilstream/internal/metrics"
)

// requestIDHeader is honored when a client supplies its own correlation ID.
const requestIDHeader = "X-Request-ID"

// requestLogger attaches a correlation ID to the request context, logs the
// request on completion, and records the API metrics. The correlation ID
// comes from the X-Request-ID header when present so multi-call operator
// sessions can be traced end to end.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		correlationID := r.Header.Get(requestIDHeader)
		if correlationID == "" {
			correlationID = logging.GenerateCorrelationID()
		}
		ctx := logging.ContextWithCorrelationID(r.Context(), correlationID)
		w.Header().Set(requestIDHeader, correlationID)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		elapsed := time.Since(start)
		metrics.RecordAPIRequest(r.Method, routePattern(r), strconv.Itoa(ww.Status()), elapsed)

		logging.Ctx(ctx).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", elapsed).
			Str("remote", r.RemoteAddr).
			Msg("Request handled")
	})
}

// routePattern returns the chi route pattern for metric labels, falling back
// to the raw path for requests that never matched a route. Patterns keep the
// label cardinality bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// corsMiddleware builds the CORS handler. Origins default to none: with an
// empty allow-list every cross-origin request is refused, which is the right
// posture for a local operator API.
func corsMiddleware(cfg *config.ServerConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		MaxAge:         86400,
	})
}

// globalRateLimit builds the per-IP request limiter covering the whole API.
func globalRateLimit(cfg *config.ServerConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(
		cfg.RateLimitReqs,
		cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.APIRateLimitHits.WithLabelValues("global").Inc()
			respondError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "rate limit exceeded")
		}),
	)
}
