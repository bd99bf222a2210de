// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mogsworth/gilstream/internal/market"
	"github.com/mogsworth/gilstream/internal/sync"
	"github.com/mogsworth/gilstream/internal/validation"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback int
		want     int
	}{
		{
			name:     "nil error",
			err:      nil,
			fallback: exitStorage,
			want:     exitOK,
		},
		{
			name:     "usage error",
			err:      fmt.Errorf("%w: -world is required", errUsage),
			fallback: exitStorage,
			want:     exitValidation,
		},
		{
			name:     "validation error",
			err:      fmt.Errorf("resolve world: %w", &validation.RequestValidationError{}),
			fallback: exitStorage,
			want:     exitValidation,
		},
		{
			name:     "unknown world",
			err:      fmt.Errorf("%w: %q", market.ErrUnknownWorld, "Atlantis"),
			fallback: exitStorage,
			want:     exitValidation,
		},
		{
			name: "transient exhausted",
			err: fmt.Errorf("sync world: %w", &sync.TransientError{
				Operation: "aggregated_prices",
				Attempts:  3,
				Err:       errors.New("connection refused"),
			}),
			fallback: exitStorage,
			want:     exitTransient,
		},
		{
			name: "terminal rejection",
			err: fmt.Errorf("sync world: %w", &sync.TerminalError{
				Operation:  "aggregated_prices",
				StatusCode: 404,
				Body:       "not found",
			}),
			fallback: exitStorage,
			want:     exitTerminal,
		},
		{
			name:     "untyped sync-path error falls back to storage",
			err:      errors.New("write snapshot: disk full"),
			fallback: exitStorage,
			want:     exitStorage,
		},
		{
			name:     "untyped serve error falls back to startup",
			err:      errors.New("listen: address already in use"),
			fallback: exitStartup,
			want:     exitStartup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err, tt.fallback); got != tt.want {
				t.Errorf("exitCode(%v, %d) = %d, want %d", tt.err, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestErrorLine(t *testing.T) {
	t.Run("storage errors get a prefix", func(t *testing.T) {
		err := errors.New("write snapshot: disk full")
		got := errorLine(err, exitStorage)
		if !strings.HasPrefix(got, "storage error: ") {
			t.Errorf("errorLine() = %q, want storage error prefix", got)
		}
	})

	t.Run("transient errors keep their own phrasing", func(t *testing.T) {
		err := &sync.TransientError{Operation: "worlds", Attempts: 3, Err: errors.New("timeout")}
		got := errorLine(err, exitTransient)
		if !strings.Contains(got, "network error after 3 attempts") {
			t.Errorf("errorLine() = %q, want network error phrasing", got)
		}
	})

	t.Run("terminal errors keep their own phrasing", func(t *testing.T) {
		err := &sync.TerminalError{Operation: "worlds", StatusCode: 500, Body: "oops"}
		got := errorLine(err, exitTerminal)
		if !strings.Contains(got, "request rejected with status 500") {
			t.Errorf("errorLine() = %q, want rejection phrasing", got)
		}
	})
}

func TestFormatHelpers(t *testing.T) {
	val := 1234.5
	if got := fmtFloat(&val, 1); got != "1234.5" {
		t.Errorf("fmtFloat(1234.5, 1) = %q", got)
	}
	if got := fmtFloat(nil, 1); got != "-" {
		t.Errorf("fmtFloat(nil) = %q, want -", got)
	}

	up := 12.34
	if got := fmtPct(&up); got != "+12.3%" {
		t.Errorf("fmtPct(12.34) = %q, want +12.3%%", got)
	}
	down := -5.0
	if got := fmtPct(&down); got != "-5.0%" {
		t.Errorf("fmtPct(-5) = %q, want -5.0%%", got)
	}
	if got := fmtPct(nil); got != "-" {
		t.Errorf("fmtPct(nil) = %q, want -", got)
	}
}
