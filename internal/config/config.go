// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from environment variables
// and an optional config file.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting
//
// Configuration Categories:
//
//  1. Upstream APIs:
//     - Universalis: The market board API (rate limit, retry budget, timeouts)
//     - Teamcraft: Static item-name dump (separate host, separate budget)
//
//  2. Infrastructure:
//     - Database: DuckDB configuration (path, memory, threads)
//     - Sync: Batch sync pass settings (interval, worker pool size)
//     - Server: Serve-mode HTTP configuration (port, host, CORS, rate limits)
//
//  3. Observability:
//     - Logging: Log levels and output formats
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load config")
//	}
//	db, err := database.New(cfg.Database)
//	client := sync.NewClient(cfg.Universalis, limiter)
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Universalis UniversalisConfig `koanf:"universalis"`
	Teamcraft   TeamcraftConfig   `koanf:"teamcraft"`
	Database    DatabaseConfig    `koanf:"database"`
	Sync        SyncConfig        `koanf:"sync"`
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// UniversalisConfig holds the connection and throttling settings for the
// Universalis market board API.
//
// Universalis documents a ceiling of 25 req/s (burst 50) per client. The
// defaults run at 80% of that so a clock-skewed bucket never trips the
// upstream limiter.
//
// Environment Variables:
//   - UNIVERSALIS_URL: API base URL (default: https://universalis.app/api)
//   - UNIVERSALIS_RATE_LIMIT: Sustained request rate per second (default: 20)
//   - UNIVERSALIS_BURST: Token bucket capacity (default: 40)
//   - UNIVERSALIS_TIMEOUT: Per-request HTTP timeout (default: 10s)
//   - UNIVERSALIS_MAX_ATTEMPTS: Attempts per call including the first (default: 3)
//   - UNIVERSALIS_MAX_RECENT: Cap for most-recently-updated entries (default: 200)
type UniversalisConfig struct {
	BaseURL     string        `koanf:"base_url" validate:"required,url"`
	RateLimit   float64       `koanf:"rate_limit" validate:"gt=0"`
	Burst       int           `koanf:"burst" validate:"min=1"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxAttempts int           `koanf:"max_attempts" validate:"min=1,max=10"`
	// MaxRecentEntries caps the entries parameter on the
	// most-recently-updated probe. The upstream rejects values above 200.
	MaxRecentEntries int `koanf:"max_recent_entries" validate:"min=1,max=200"`
}

// TeamcraftConfig holds settings for the FFXIV Teamcraft item-name dump.
// The dump is a single large static JSON file on a different host, so it
// gets its own HTTP client, a longer timeout, and its own retry budget.
// It is deliberately not governed by the Universalis token bucket.
//
// Environment Variables:
//   - TEAMCRAFT_ITEMS_URL: URL of the items.json dump
//   - TEAMCRAFT_TIMEOUT: HTTP timeout for the dump fetch (default: 30s)
//   - TEAMCRAFT_RETRY_ATTEMPTS: Attempts including the first (default: 3)
type TeamcraftConfig struct {
	ItemsURL      string        `koanf:"items_url" validate:"required,url"`
	Timeout       time.Duration `koanf:"timeout"`
	RetryAttempts int           `koanf:"retry_attempts" validate:"min=1,max=10"`
}

// DatabaseConfig holds DuckDB settings.
//
// Environment Variables:
//   - DB_PATH: Database file path (default: data/gilstream.duckdb)
//   - DB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
//   - DB_THREADS: DuckDB thread count, 0 = NumCPU (default: 0)
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"min=0"`
}

// SyncConfig holds batch sync pass settings.
//
// Environment Variables:
//   - SYNC_INTERVAL: Serve-mode interval between passes (default: 6h)
//   - SYNC_WORKERS: Offload pool size for per-item fan-out (default: 3)
type SyncConfig struct {
	Interval time.Duration `koanf:"interval"`
	Workers  int           `koanf:"workers" validate:"min=1,max=16"`
}

// ServerConfig holds serve-mode HTTP server settings.
//
// Environment Variables:
//   - SERVER_HOST: Bind address (default: 0.0.0.0)
//   - SERVER_PORT: Listen port (default: 9085)
//   - SERVER_TIMEOUT: Read/write timeout (default: 30s)
//   - CORS_ORIGINS: Comma-separated allowed origins (default: none)
//   - RATE_LIMIT_REQUESTS: Requests per window per IP (default: 100)
//   - RATE_LIMIT_WINDOW: Rate limit window (default: 1m)
//   - DISABLE_RATE_LIMIT: Disable API rate limiting (default: false)
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout           time.Duration `koanf:"timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: Include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the host:port string for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from environment variables and an optional config
// file. Later sources override earlier ones:
//  1. Built-in defaults
//  2. Config file (config.yaml if present, or CONFIG_PATH)
//  3. Environment variables
func Load() (*Config, error) {
	return loadWithKoanf()
}
