// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mogsworth/gilstream/internal/api"
	"github.com/mogsworth/gilstream/internal/logging"
	"github.com/mogsworth/gilstream/internal/supervisor"
	"github.com/mogsworth/gilstream/internal/supervisor/services"
	"github.com/mogsworth/gilstream/internal/sync"
)

// Trigger endpoint throttle: a sync pass is expensive upstream work, so a
// single client gets one trigger per minute with a small burst.
const (
	triggerInterval = time.Minute
	triggerBurst    = 2
)

// cmdServe runs the long-lived mode: the periodic sync manager and the REST
// API under a supervision tree, until SIGINT or SIGTERM.
//
// Serve mode wraps the gateway in a circuit breaker. Unlike the one-shot
// commands, the process outlives any single upstream outage, so repeated
// pass failures should stop hammering Universalis instead of retrying at
// full rate every interval.
func (a *app) cmdServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	breaker := sync.NewBreakerClient(a.client)
	engine := sync.NewEngine(a.db, breaker)
	manager := sync.NewManager(engine, a.cfg)

	triggerLimiter := api.NewTriggerRateLimiter(triggerInterval, triggerBurst)
	defer triggerLimiter.Stop()

	handlers := api.NewHandlers(a.db, manager, a.market, a.pool, triggerLimiter, a.cfg.Sync.Interval, version)
	router := api.NewRouter(&a.cfg.Server, handlers)

	server := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  a.cfg.Server.Timeout,
		WriteTimeout: a.cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	treeConfig := supervisor.DefaultTreeConfig()
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeConfig)
	tree.AddSyncService(services.NewSyncManagerService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, treeConfig.ShutdownTimeout))

	logging.Info().
		Str("addr", server.Addr).
		Dur("sync_interval", a.cfg.Sync.Interval).
		Str("version", version).
		Msg("Starting gilstream server")

	err := <-tree.ServeBackground(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
	return nil
}
