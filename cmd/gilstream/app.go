// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package main

import (
	"fmt"

	"github.com/mogsworth/gilstream/internal/config"
	"github.com/mogsworth/gilstream/internal/database"
	"github.com/mogsworth/gilstream/internal/logging"
	"github.com/mogsworth/gilstream/internal/market"
	"github.com/mogsworth/gilstream/internal/offload"
	"github.com/mogsworth/gilstream/internal/ratelimit"
	"github.com/mogsworth/gilstream/internal/sync"
)

// app holds the long-lived collaborators every command runs against. One
// token bucket and one offload pool are shared process-wide, so concurrent
// per-item work stays under the upstream rate ceiling no matter which
// command drives it.
type app struct {
	cfg       *config.Config
	db        *database.DB
	client    *sync.Client
	teamcraft *sync.TeamcraftClient
	pool      *offload.Pool
	market    *market.Service
}

func newApp(cfg *config.Config) (*app, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	limiter := ratelimit.NewTokenBucket(cfg.Universalis.RateLimit, cfg.Universalis.Burst)
	client := sync.NewClient(&cfg.Universalis, limiter)
	teamcraft := sync.NewTeamcraftClient(&cfg.Teamcraft)
	pool := offload.NewPool(cfg.Sync.Workers)

	marketSvc, err := market.New(market.Config{
		Store:   db,
		Gateway: client,
		Names:   teamcraft,
		Pool:    pool,
	})
	if err != nil {
		pool.Close()
		if closeErr := db.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing database")
		}
		return nil, fmt.Errorf("initialize market service: %w", err)
	}

	return &app{
		cfg:       cfg,
		db:        db,
		client:    client,
		teamcraft: teamcraft,
		pool:      pool,
		market:    marketSvc,
	}, nil
}

// Close drains the pool before closing the database so no in-flight worker
// writes against a closed handle.
func (a *app) Close() {
	a.pool.Close()
	if err := a.db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}
