// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package models

import (
	"time"
)

// APIResponse is the standard envelope returned by every HTTP endpoint.
//
// Status field values:
//   - "success": see Data
//   - "error": see Error
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Error    *APIError   `json:"error,omitempty"`
	Metadata *Metadata   `json:"metadata,omitempty"`
}

// APIError carries error details in an API response. The validation package
// mirrors this structure to avoid an import cycle.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Metadata carries response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms"`
}

// HealthStatus is the health check response.
type HealthStatus struct {
	Status            string     `json:"status"`
	Version           string     `json:"version"`
	DatabaseConnected bool       `json:"database_connected"`
	LastSyncTime      *time.Time `json:"last_sync_time,omitempty"`
	Uptime            float64    `json:"uptime_seconds"`
}

// SyncStatus reports the sync manager state for the status endpoint.
type SyncStatus struct {
	Running     bool         `json:"running"`
	LastSyncAt  *time.Time   `json:"last_sync_at,omitempty"`
	LastSummary *SyncSummary `json:"last_summary,omitempty"`
	Interval    string       `json:"interval"`
}
