// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mogsworth/gilstream/internal/config"
	"github.com/mogsworth/gilstream/internal/logging"
	"github.com/mogsworth/gilstream/internal/models"
)

// Manager drives periodic sync passes in serve mode: a ticker at the
// configured interval runs Engine.SyncAll, and the API layer can trigger an
// extra pass between ticks.
//
// Thread Safety:
//   - syncMu serializes pass execution; passes never overlap
//   - mu protects the shared state (running, lastSync, lastSummary)
//   - the sync loop goroutine is tracked with a WaitGroup for clean shutdown
type Manager struct {
	engine          *Engine
	cfg             *config.Config
	lastSync        time.Time
	lastSummary     models.SyncSummary
	running         bool
	mu              sync.RWMutex
	syncMu          sync.Mutex // Serializes sync pass execution
	stopChan        chan struct{}
	wg              sync.WaitGroup
	onSyncCompleted func(summary models.SyncSummary, duration time.Duration)
}

// NewManager creates a sync manager around the given engine.
func NewManager(engine *Engine, cfg *config.Config) *Manager {
	logging.Info().
		Dur("interval", cfg.Sync.Interval).
		Int("workers", cfg.Sync.Workers).
		Msg("Sync manager config loaded")

	return &Manager{
		engine:   engine,
		cfg:      cfg,
		stopChan: make(chan struct{}),
	}
}

// SetOnSyncCompleted sets the callback invoked after each successful pass.
func (m *Manager) SetOnSyncCompleted(callback func(summary models.SyncSummary, duration time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSyncCompleted = callback
}

// Start begins the periodic sync loop. The first pass runs one interval
// after startup, not immediately, so a restart loop cannot stampede the
// upstream.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}

	logging.Info().Msg("Starting sync manager...")

	m.running = true
	m.mu.Unlock()

	m.wg.Add(1)
	go m.syncLoop(ctx)

	return nil
}

// Stop gracefully stops the sync loop and waits for an in-flight pass to
// finish.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false
	m.mu.Unlock()

	logging.Info().Msg("Stopping sync manager...")

	close(m.stopChan)
	m.wg.Wait()
	logging.Info().Msg("Sync manager stopped")

	return nil
}

// syncLoop runs passes at the configured interval until stopped.
func (m *Manager) syncLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Sync.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.syncMu.Lock()
			err := m.runPass(ctx)
			m.syncMu.Unlock()

			if err != nil {
				logging.Error().Err(err).Msg("Scheduled sync pass failed")
			}
		}
	}
}

// TriggerSync runs one pass immediately. Returns ErrSyncInProgress when a
// pass is already running instead of queueing behind it; the caller decides
// whether to retry.
func (m *Manager) TriggerSync(ctx context.Context) (models.SyncSummary, error) {
	if !m.syncMu.TryLock() {
		return models.SyncSummary{}, ErrSyncInProgress
	}
	defer m.syncMu.Unlock()

	if err := m.runPass(ctx); err != nil {
		return m.LastSummary(), err
	}
	return m.LastSummary(), nil
}

// runPass executes one engine pass and records its outcome. Callers must
// hold syncMu.
func (m *Manager) runPass(ctx context.Context) error {
	start := time.Now()

	summary, err := m.engine.SyncAll(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.lastSync = time.Now()
	m.lastSummary = summary
	callback := m.onSyncCompleted
	m.mu.Unlock()

	if callback != nil {
		callback(summary, time.Since(start))
	}

	return nil
}

// SyncInProgress reports whether a pass is running right now. The answer is
// advisory: a pass can start or finish immediately after the probe, so
// callers still handle ErrSyncInProgress from TriggerSync.
func (m *Manager) SyncInProgress() bool {
	if m.syncMu.TryLock() {
		m.syncMu.Unlock()
		return false
	}
	return true
}

// Running reports whether the manager has been started.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastSyncTime returns the completion time of the last successful pass, or
// the zero time when no pass has completed yet.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// LastSummary returns the summary of the last successful pass.
func (m *Manager) LastSummary() models.SyncSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSummary
}
