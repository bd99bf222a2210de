// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/mogsworth/gilstream/internal/logging"
	"github.com/mogsworth/gilstream/internal/models"
)

// Machine-readable error codes carried in APIError.Code.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeUpstreamFailed     = "UPSTREAM_FAILED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// respond writes the envelope with the given HTTP status. Encoding failures
// are logged, not surfaced; the status line is already on the wire.
func respond(w http.ResponseWriter, r *http.Request, status int, resp models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Failed to encode API response")
	}
}

// respondSuccess writes a success envelope around data.
func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}, started time.Time) {
	respond(w, r, status, models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: &models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(started).Milliseconds(),
		},
	})
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respond(w, r, status, models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
		Metadata: &models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}
