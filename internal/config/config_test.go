// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Universalis.BaseURL != "https://universalis.app/api" {
		t.Errorf("BaseURL = %q, want universalis default", cfg.Universalis.BaseURL)
	}
	if cfg.Universalis.RateLimit != 20.0 {
		t.Errorf("RateLimit = %v, want 20.0", cfg.Universalis.RateLimit)
	}
	if cfg.Universalis.Burst != 40 {
		t.Errorf("Burst = %d, want 40", cfg.Universalis.Burst)
	}
	if cfg.Universalis.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Universalis.Timeout)
	}
	if cfg.Universalis.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Universalis.MaxAttempts)
	}
	if cfg.Universalis.MaxRecentEntries != 200 {
		t.Errorf("MaxRecentEntries = %d, want 200", cfg.Universalis.MaxRecentEntries)
	}
	if cfg.Teamcraft.Timeout != 30*time.Second {
		t.Errorf("Teamcraft.Timeout = %v, want 30s", cfg.Teamcraft.Timeout)
	}
	if cfg.Sync.Workers != 3 {
		t.Errorf("Sync.Workers = %d, want 3", cfg.Sync.Workers)
	}
	if cfg.Sync.Interval != 6*time.Hour {
		t.Errorf("Sync.Interval = %v, want 6h", cfg.Sync.Interval)
	}
	if cfg.Server.Port != 9085 {
		t.Errorf("Server.Port = %d, want 9085", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestDefaultConfig_Validates(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "empty base URL",
			mutate:  func(c *Config) { c.Universalis.BaseURL = "" },
			wantMsg: "required",
		},
		{
			name:    "malformed base URL",
			mutate:  func(c *Config) { c.Universalis.BaseURL = "not a url" },
			wantMsg: "URL",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.Universalis.RateLimit = 0 },
			wantMsg: "RateLimit",
		},
		{
			name:    "zero max attempts",
			mutate:  func(c *Config) { c.Universalis.MaxAttempts = 0 },
			wantMsg: "MaxAttempts",
		},
		{
			name:    "recent entries above upstream cap",
			mutate:  func(c *Config) { c.Universalis.MaxRecentEntries = 500 },
			wantMsg: "at most 200",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Universalis.Timeout = -time.Second },
			wantMsg: "timeout must be positive",
		},
		{
			name:    "burst below rate",
			mutate:  func(c *Config) { c.Universalis.Burst = 5 },
			wantMsg: "burst",
		},
		{
			name:    "zero sync interval",
			mutate:  func(c *Config) { c.Sync.Interval = 0 },
			wantMsg: "sync interval",
		},
		{
			name:    "too many workers",
			mutate:  func(c *Config) { c.Sync.Workers = 64 },
			wantMsg: "Workers",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantMsg: "Port",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantMsg: "one of",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantMsg: "one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %q, want substring %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 9085}
	if got := s.Addr(); got != "127.0.0.1:9085" {
		t.Errorf("Addr() = %q, want 127.0.0.1:9085", got)
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if cfg.ShouldWarnAboutCORS() {
		t.Error("default config without origins should not warn")
	}

	cfg.Server.CORSOrigins = []string{"https://example.com"}
	if cfg.ShouldWarnAboutCORS() {
		t.Error("explicit origin should not warn")
	}

	cfg.Server.CORSOrigins = []string{"https://example.com", "*"}
	if !cfg.ShouldWarnAboutCORS() {
		t.Error("wildcard origin should warn")
	}
}
