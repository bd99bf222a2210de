// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mogsworth/gilstream/internal/logging"
	"github.com/mogsworth/gilstream/internal/market"
	"github.com/mogsworth/gilstream/internal/models"
	"github.com/mogsworth/gilstream/internal/offload"
	syncer "github.com/mogsworth/gilstream/internal/sync"
	"github.com/mogsworth/gilstream/internal/validation"
)

// Report endpoint parameter bounds.
const (
	defaultTopLimit   = 20
	maxTopLimit       = 100
	defaultReportDays = 7
	maxReportDays     = 365
)

// SyncManager is the slice of the sync manager the handlers need.
// *sync.Manager satisfies it.
type SyncManager interface {
	TriggerSync(ctx context.Context) (models.SyncSummary, error)
	SyncInProgress() bool
	Running() bool
	LastSyncTime() time.Time
	LastSummary() models.SyncSummary
}

// Store is the read surface the handlers need. *database.DB satisfies it.
type Store interface {
	Ping(ctx context.Context) error
	ListWorlds(ctx context.Context) ([]models.WorldInfo, error)
}

// MarketReader serves the report endpoints. *market.Service satisfies it.
type MarketReader interface {
	TopItems(ctx context.Context, worldName string, limit int) ([]models.TopItem, error)
	ItemReport(ctx context.Context, worldName string, itemID, days int) (models.ItemReport, error)
}

// Handlers holds the endpoint implementations and their collaborators.
type Handlers struct {
	store          Store
	manager        SyncManager
	market         MarketReader
	pool           *offload.Pool
	triggerLimiter *TriggerRateLimiter
	syncInterval   time.Duration
	version        string
	startTime      time.Time
}

// NewHandlers creates the handler set. The trigger limiter may be nil when
// rate limiting is disabled.
func NewHandlers(store Store, manager SyncManager, marketSvc MarketReader, pool *offload.Pool, triggerLimiter *TriggerRateLimiter, syncInterval time.Duration, version string) *Handlers {
	return &Handlers{
		store:          store,
		manager:        manager,
		market:         marketSvc,
		pool:           pool,
		triggerLimiter: triggerLimiter,
		syncInterval:   syncInterval,
		version:        version,
		startTime:      time.Now(),
	}
}

// handleHealth reports process and database health. Degraded (database
// unreachable) still returns the body so operators see what is wrong, but
// with a 503 status for probe integration.
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := models.HealthStatus{
		Status:            "ok",
		Version:           h.version,
		DatabaseConnected: true,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if last := h.manager.LastSyncTime(); !last.IsZero() {
		status.LastSyncTime = &last
	}

	httpStatus := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		status.Status = "degraded"
		status.DatabaseConnected = false
		httpStatus = http.StatusServiceUnavailable
	}

	respondSuccess(w, r, httpStatus, status, start)
}

// handleStatus reports the sync manager state.
func (h *Handlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := models.SyncStatus{
		Running:  h.manager.Running() || h.manager.SyncInProgress(),
		Interval: h.syncInterval.String(),
	}
	if last := h.manager.LastSyncTime(); !last.IsZero() {
		status.LastSyncAt = &last
		summary := h.manager.LastSummary()
		status.LastSummary = &summary
	}

	respondSuccess(w, r, http.StatusOK, status, start)
}

// handleTriggerSync starts a sync pass in the background and returns 202.
// A pass already in flight yields 409; the per-IP trigger budget yields 429.
// The pass itself runs on the offload pool detached from the request
// context, carrying the request's correlation ID so its log lines can be
// tied back to the trigger.
func (h *Handlers) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.triggerLimiter != nil && !h.triggerLimiter.Allow(clientIP(r)) {
		respondError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "sync trigger rate limit exceeded")
		return
	}

	if h.manager.SyncInProgress() {
		respondError(w, r, http.StatusConflict, ErrCodeConflict, "a sync pass is already running")
		return
	}

	passCtx := logging.ContextWithCorrelationID(context.Background(), logging.CorrelationIDFromContext(r.Context()))
	offload.Submit(h.pool, passCtx, func(ctx context.Context) (models.SyncSummary, error) {
		summary, err := h.manager.TriggerSync(ctx)
		if err != nil && !errors.Is(err, syncer.ErrSyncInProgress) {
			logging.Ctx(ctx).Error().Err(err).Msg("Triggered sync pass failed")
		}
		return summary, err
	})

	respondSuccess(w, r, http.StatusAccepted, map[string]bool{"triggered": true}, start)
}

// handleWorlds lists the cached worlds.
func (h *Handlers) handleWorlds(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	worlds, err := h.store.ListWorlds(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "failed to list worlds")
		return
	}

	respondSuccess(w, r, http.StatusOK, worlds, start)
}

// handleTop serves the sale-velocity leaderboard for a world.
func (h *Handlers) handleTop(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	world := r.URL.Query().Get("world")
	if world == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "world parameter is required")
		return
	}
	limit, err := boundedIntParam(r, "limit", defaultTopLimit, maxTopLimit)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	items, err := h.market.TopItems(r.Context(), world, limit)
	if err != nil {
		h.respondMarketError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, items, start)
}

// handleReport serves the snapshot history report for one item on a world.
func (h *Handlers) handleReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	world := r.URL.Query().Get("world")
	if world == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "world parameter is required")
		return
	}
	itemID, err := strconv.Atoi(r.URL.Query().Get("item"))
	if err != nil || itemID <= 0 {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "item parameter must be a positive integer")
		return
	}
	days, err := boundedIntParam(r, "days", defaultReportDays, maxReportDays)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	report, err := h.market.ItemReport(r.Context(), world, itemID, days)
	if err != nil {
		h.respondMarketError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, report, start)
}

// respondMarketError maps market service failures to HTTP statuses:
// validation 400, unknown world 404, upstream failures 502, the rest 500.
func (h *Handlers) respondMarketError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	var transient *syncer.TransientError
	var terminal *syncer.TerminalError

	switch {
	case errors.As(err, &verr):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, verr.Error())
	case errors.Is(err, market.ErrUnknownWorld):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.As(err, &transient), errors.As(err, &terminal):
		respondError(w, r, http.StatusBadGateway, ErrCodeUpstreamFailed, err.Error())
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}

// boundedIntParam parses an optional positive integer query parameter,
// clamping it to max. An absent parameter yields the default.
func boundedIntParam(r *http.Request, name string, def, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s parameter must be a positive integer", name)
	}
	if v > max {
		v = max
	}
	return v, nil
}
