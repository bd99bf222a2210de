// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package config

import (
	"fmt"

	"github.com/mogsworth/gilstream/internal/validation"
)

// Validate checks the configuration for invalid or inconsistent values.
// Tagged field rules run through the validator; duration fields and
// cross-field constraints are checked by hand.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.validateUniversalis(); err != nil {
		return err
	}
	if err := c.validateTeamcraft(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	return c.validateServer()
}

func (c *Config) validateUniversalis() error {
	if c.Universalis.Timeout <= 0 {
		return fmt.Errorf("universalis timeout must be positive, got %v", c.Universalis.Timeout)
	}
	// A bucket smaller than one second of refill forces a wait on every
	// request and starves concurrent callers.
	if float64(c.Universalis.Burst) < c.Universalis.RateLimit {
		return fmt.Errorf("universalis burst (%d) must be at least the per-second rate (%.1f)",
			c.Universalis.Burst, c.Universalis.RateLimit)
	}
	return nil
}

func (c *Config) validateTeamcraft() error {
	if c.Teamcraft.Timeout <= 0 {
		return fmt.Errorf("teamcraft timeout must be positive, got %v", c.Teamcraft.Timeout)
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync interval must be positive, got %v", c.Sync.Interval)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server timeout must be positive, got %v", c.Server.Timeout)
	}
	if !c.Server.RateLimitDisabled && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %v", c.Server.RateLimitWindow)
	}
	return nil
}

// ShouldWarnAboutCORS reports whether the CORS configuration allows any
// origin. The serve command logs a warning when it does.
func (c *Config) ShouldWarnAboutCORS() bool {
	for _, origin := range c.Server.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
