// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package services

import (
	"context"
	"fmt"
)

// SyncManager is the Start/Stop lifecycle of internal/sync.Manager.
type SyncManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// SyncManagerService wraps the sync manager as a supervised service: Start
// on entry, block until the context ends, Stop on the way out. The manager
// tracks its own goroutines, so the wrapper is purely lifecycle glue.
type SyncManagerService struct {
	manager SyncManager
}

// NewSyncManagerService wraps the given manager.
func NewSyncManagerService(manager SyncManager) *SyncManagerService {
	return &SyncManagerService{manager: manager}
}

// Serve implements suture.Service. A Start failure returns immediately so
// suture applies its restart policy; Stop waits for any in-flight pass.
func (s *SyncManagerService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("sync manager start: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("sync manager stop: %w", err)
	}
	return ctx.Err()
}

// String identifies the service in suture's event log.
func (s *SyncManagerService) String() string {
	return "sync-manager"
}
