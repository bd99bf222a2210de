// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mogsworth/gilstream/internal/config"
)

// NewRouter assembles the serve-mode router. Middleware order matters:
// recovery outermost so panics in any later layer become 500s, then request
// logging so every request gets a correlation ID, then CORS and the global
// rate limit in front of the routes.
func NewRouter(cfg *config.ServerConfig, h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)
	r.Use(corsMiddleware(cfg))
	r.Use(globalRateLimit(cfg))

	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.handleStatus)
		r.Post("/sync", h.handleTriggerSync)
		r.Get("/worlds", h.handleWorlds)
		r.Get("/top", h.handleTop)
		r.Get("/report", h.handleReport)
	})

	return r
}
