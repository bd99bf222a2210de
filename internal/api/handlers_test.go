// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/mogsworth/gilstream/internal/market"
	"github.com/mogsworth/gilstream/internal/models"
	"github.com/mogsworth/gilstream/internal/validation"
)

// doRequest routes one request through a fresh router and decodes the
// envelope.
func doRequest(t *testing.T, h *Handlers, method, target string) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()

	router := NewRouter(newTestServerConfig(), h)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, http.NoBody)
	req.RemoteAddr = "192.0.2.1:49152"
	router.ServeHTTP(rec, req)

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response body is not an APIResponse: %v\nbody: %s", err, rec.Body.String())
	}
	return rec, resp
}

func TestHealthOK(t *testing.T) {
	lastSync := time.Now().Add(-time.Hour)
	manager := &mockManager{
		lastSyncTime: func() time.Time { return lastSync },
	}
	h, pool := newTestHandlers(nil, manager, nil, nil)
	defer pool.Close()

	rec, resp := doRequest(t, h, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Status != "success" {
		t.Errorf("envelope status = %q, want success", resp.Status)
	}

	data, _ := json.Marshal(resp.Data)
	var health models.HealthStatus
	if err := json.Unmarshal(data, &health); err != nil {
		t.Fatalf("decode health payload: %v", err)
	}
	if health.Status != "ok" || !health.DatabaseConnected {
		t.Errorf("health = %+v, want ok and connected", health)
	}
	if health.LastSyncTime == nil {
		t.Error("LastSyncTime missing from health payload")
	}
}

func TestHealthDegradedWhenDatabaseDown(t *testing.T) {
	store := &mockAPIStore{
		ping: func(context.Context) error { return errors.New("connection refused") },
	}
	h, pool := newTestHandlers(store, nil, nil, nil)
	defer pool.Close()

	rec, resp := doRequest(t, h, http.MethodGet, "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	// The body still reports what is wrong.
	data, _ := json.Marshal(resp.Data)
	var health models.HealthStatus
	if err := json.Unmarshal(data, &health); err != nil {
		t.Fatalf("decode health payload: %v", err)
	}
	if health.Status != "degraded" || health.DatabaseConnected {
		t.Errorf("health = %+v, want degraded and disconnected", health)
	}
}

func TestStatusReportsLastSummary(t *testing.T) {
	lastSync := time.Now().Add(-time.Minute)
	manager := &mockManager{
		lastSyncTime: func() time.Time { return lastSync },
		lastSummary: func() models.SyncSummary {
			return models.SyncSummary{WorldsProcessed: 1, ItemsTotal: 150, ItemsUpdated: 150}
		},
	}
	h, pool := newTestHandlers(nil, manager, nil, nil)
	defer pool.Close()

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	data, _ := json.Marshal(resp.Data)
	var status models.SyncStatus
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("decode status payload: %v", err)
	}
	if status.LastSummary == nil || status.LastSummary.ItemsUpdated != 150 {
		t.Errorf("LastSummary = %+v, want ItemsUpdated 150", status.LastSummary)
	}
	if status.Interval != "6h0m0s" {
		t.Errorf("Interval = %q, want 6h0m0s", status.Interval)
	}
}

func TestTriggerSyncAccepted(t *testing.T) {
	var triggered atomic.Int32
	manager := &mockManager{
		triggerSync: func(context.Context) (models.SyncSummary, error) {
			triggered.Add(1)
			return models.SyncSummary{}, nil
		},
	}
	h, pool := newTestHandlers(nil, manager, nil, nil)

	rec, _ := doRequest(t, h, http.MethodPost, "/api/v1/sync")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	pool.Close() // Drain the background pass before asserting.
	if triggered.Load() != 1 {
		t.Errorf("TriggerSync calls = %d, want 1", triggered.Load())
	}
}

func TestTriggerSyncConflictWhenPassRunning(t *testing.T) {
	manager := &mockManager{
		syncInProgress: func() bool { return true },
	}
	h, pool := newTestHandlers(nil, manager, nil, nil)
	defer pool.Close()

	rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/sync")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeConflict {
		t.Errorf("error = %+v, want code %s", resp.Error, ErrCodeConflict)
	}
}

func TestTriggerSyncRateLimited(t *testing.T) {
	limiter := NewTriggerRateLimiter(time.Hour, 1)
	defer limiter.Stop()

	h, pool := newTestHandlers(nil, nil, nil, limiter)
	defer pool.Close()

	rec, _ := doRequest(t, h, http.MethodPost, "/api/v1/sync")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("first trigger status = %d, want 202", rec.Code)
	}

	rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/sync")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second trigger status = %d, want 429", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("error = %+v, want code %s", resp.Error, ErrCodeTooManyRequests)
	}
}

func TestWorldsListsCache(t *testing.T) {
	store := &mockAPIStore{
		listWorlds: func(context.Context) ([]models.WorldInfo, error) {
			return []models.WorldInfo{{ID: 73, Name: "Adamantoise"}}, nil
		},
	}
	h, pool := newTestHandlers(store, nil, nil, nil)
	defer pool.Close()

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/worlds")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	data, _ := json.Marshal(resp.Data)
	var worlds []models.WorldInfo
	if err := json.Unmarshal(data, &worlds); err != nil {
		t.Fatalf("decode worlds payload: %v", err)
	}
	if len(worlds) != 1 || worlds[0].Name != "Adamantoise" {
		t.Errorf("worlds = %+v, want one Adamantoise entry", worlds)
	}
}

func TestTopRequiresWorld(t *testing.T) {
	h, pool := newTestHandlers(nil, nil, nil, nil)
	defer pool.Close()

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/top")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeBadRequest {
		t.Errorf("error = %+v, want code %s", resp.Error, ErrCodeBadRequest)
	}
}

func TestTopClampsLimit(t *testing.T) {
	var gotLimit int
	marketSvc := &mockMarket{
		topItems: func(_ context.Context, _ string, limit int) ([]models.TopItem, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	h, pool := newTestHandlers(nil, nil, marketSvc, nil)
	defer pool.Close()

	rec, _ := doRequest(t, h, http.MethodGet, "/api/v1/top?world=Adamantoise&limit=5000")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotLimit != maxTopLimit {
		t.Errorf("limit = %d, want clamped to %d", gotLimit, maxTopLimit)
	}
}

func TestTopUnknownWorldIs404(t *testing.T) {
	marketSvc := &mockMarket{
		topItems: func(context.Context, string, int) ([]models.TopItem, error) {
			return nil, market.ErrUnknownWorld
		},
	}
	h, pool := newTestHandlers(nil, nil, marketSvc, nil)
	defer pool.Close()

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/top?world=Atlantis")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v, want code %s", resp.Error, ErrCodeNotFound)
	}
}

func TestTopInvalidWorldNameIs400(t *testing.T) {
	marketSvc := &mockMarket{
		topItems: func(_ context.Context, world string, _ int) ([]models.TopItem, error) {
			return nil, validation.ScopeName(world)
		},
	}
	h, pool := newTestHandlers(nil, nil, marketSvc, nil)
	defer pool.Close()

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/top?world=7bad")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeValidationFailed {
		t.Errorf("error = %+v, want code %s", resp.Error, ErrCodeValidationFailed)
	}
}

func TestReportParameterValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"missing world", "/api/v1/report?item=5"},
		{"missing item", "/api/v1/report?world=Adamantoise"},
		{"non-numeric item", "/api/v1/report?world=Adamantoise&item=potion"},
		{"negative item", "/api/v1/report?world=Adamantoise&item=-4"},
		{"bad days", "/api/v1/report?world=Adamantoise&item=5&days=soon"},
	}

	h, pool := newTestHandlers(nil, nil, nil, nil)
	defer pool.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doRequest(t, h, http.MethodGet, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestReportDefaultsDays(t *testing.T) {
	var gotDays int
	marketSvc := &mockMarket{
		itemReport: func(_ context.Context, _ string, _ int, days int) (models.ItemReport, error) {
			gotDays = days
			return models.ItemReport{}, nil
		},
	}
	h, pool := newTestHandlers(nil, nil, marketSvc, nil)
	defer pool.Close()

	rec, _ := doRequest(t, h, http.MethodGet, "/api/v1/report?world=Adamantoise&item=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotDays != defaultReportDays {
		t.Errorf("days = %d, want default %d", gotDays, defaultReportDays)
	}
}

func TestCorrelationIDHeaderRoundTrip(t *testing.T) {
	h, pool := newTestHandlers(nil, nil, nil, nil)
	defer pool.Close()

	router := NewRouter(newTestServerConfig(), h)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set(requestIDHeader, "op-session-42")
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "op-session-42" {
		t.Errorf("response %s = %q, want the caller's ID echoed", requestIDHeader, got)
	}
}

func TestCorrelationIDGeneratedWhenAbsent(t *testing.T) {
	h, pool := newTestHandlers(nil, nil, nil, nil)
	defer pool.Close()

	router := NewRouter(newTestServerConfig(), h)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("no correlation ID assigned to an anonymous request")
	}
}
