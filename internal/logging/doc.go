// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

// Package logging provides centralized zerolog-based structured logging
// for Gilstream.
//
// The package exposes a single global logger with package-level event
// starters, JSON output for production and console output for development,
// correlation-ID propagation through context, and an slog adapter for
// libraries that require *slog.Logger (the supervisor's sutureslog hook).
//
// # Quick Start
//
//	import "github.com/mogsworth/gilstream/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Log messages with structured fields
//	logging.Info().Str("world", "Adamantoise").Int("items", 150).Msg("Sync pass complete")
//	logging.Error().Err(err).Msg("Request failed")
//
//	// Context-aware logging (correlation IDs)
//	logging.Ctx(ctx).Info().Msg("Processing batch")
//
// # Configuration
//
// Environment variables (mapped through internal/config):
//
//	LOG_LEVEL   - Minimum log level: trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - Output format: json, console (default: json)
//	LOG_CALLER  - Include caller file:line: true, false (default: false)
//
// # Structured Logging
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Prefer structured fields over string formatting:
//
//	logging.Info().
//	    Str("world", worldName).
//	    Int("updated", n).
//	    Dur("elapsed", elapsed).
//	    Msg("World synced")
//
// # Component Loggers
//
//	syncLogger := logging.WithComponent("sync")
//	syncLogger.Info().Msg("Starting pass")
//
// # Output Formats
//
// JSON (production):
//
//	{"level":"info","time":"2026-08-25T10:30:00Z","message":"World synced","world":"Adamantoise"}
//
// Console (development):
//
//	10:30:00 INF World synced world=Adamantoise
//
// # Thread Safety
//
// All exported functions are safe for concurrent use. The global logger is
// protected by a sync.RWMutex for configuration changes.
//
// # Testing
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
//	logger.Info().Msg("test message")
//	output := buf.String()
package logging
