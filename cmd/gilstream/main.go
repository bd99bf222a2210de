// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

// Package main is the entry point for the Gilstream command-line application.
//
// Gilstream syncs FFXIV market board data from Universalis into a local
// DuckDB file and serves price analytics over it. The same binary covers
// one-shot batch commands and a long-running serve mode.
//
// # Application Architecture
//
// Every command initializes components in the following order:
//
//  1. Environment: Load .env if present (godotenv)
//  2. Configuration: Environment variables plus optional config.yaml (Koanf v2)
//  3. Logging: zerolog global logger configured from LOG_* settings
//  4. Database: DuckDB file with schema creation on first open
//  5. Gateway: Universalis client behind the shared token bucket
//  6. Offload pool: Bounded workers for per-item fan-out
//
// Serve mode additionally wraps the gateway in a circuit breaker, starts the
// periodic sync manager, and runs the REST API under a suture supervision
// tree.
//
// # Commands
//
//	sync               Run one batch sync pass over all tracked worlds
//	serve              Run the periodic sync loop and the REST API
//	init-tracking      Discover actively traded items on a world
//	update             Refresh snapshots and sales for tracked items
//	top                Show the sale-velocity leaderboard for a world
//	report             Show the price history for one item on one world
//	list-tracked       List tracked worlds with their item counts
//	track-world        Register a world for batch sync
//	untrack-world      Remove a world from batch sync
//	worlds             Refresh and list the world cache
//	datacenters        List data centers from the upstream
//	sync-items         Refresh item names from the Teamcraft dump
//	sync-marketable    Refresh the marketable-item universe
//	version            Print the build version
//
// # Exit Codes
//
// Batch commands classify failures so cron and systemd units can react:
//
//	0  success, including passes where nothing needed updating
//	1  configuration or startup failure, or an unknown command
//	2  input validation rejected before any request was sent
//	3  transient network failure that exhausted its retry budget
//	4  the upstream answered and rejected the request
//	5  storage failure while persisting results
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (see internal/config)
//   - Config file (config.yaml or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// Serve mode shuts down gracefully on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests and the current sync pass (10s timeout)
//   - Closes the offload pool and the database
//
// # Example Usage
//
// Track a world and run a first pass:
//
//	./gilstream track-world -world Adamantoise
//	./gilstream sync
//
// Discover and follow actively traded items:
//
//	./gilstream init-tracking -world Adamantoise -count 100
//	./gilstream update -world Adamantoise
//
// Reports:
//
//	./gilstream top -world Adamantoise -limit 10
//	./gilstream report -world Adamantoise -item 5057 -days 14
//
// Long-running server:
//
//	export SYNC_INTERVAL=6h
//	export SERVER_PORT=9085
//	./gilstream serve
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mogsworth/gilstream/internal/config"
	"github.com/mogsworth/gilstream/internal/logging"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// .env is optional; real configuration errors surface in config.Load.
	_ = godotenv.Load()

	if len(args) == 0 {
		usage(os.Stderr)
		return exitStartup
	}
	command, rest := args[0], args[1:]

	switch command {
	case "version":
		fmt.Printf("gilstream %s\n", version)
		return exitOK
	case "help", "-h", "--help":
		usage(os.Stdout)
		return exitOK
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load configuration: %v\n", err)
		return exitStartup
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	app, err := newApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitStartup
	}
	defer app.Close()

	ctx := logging.ContextWithNewCorrelationID(context.Background())

	// Batch commands that reach the database classify leftover errors as
	// storage failures: every gateway error is typed, so what remains after
	// validation/transient/terminal is persistence.
	fallback := exitStorage

	var cmdErr error
	switch command {
	case "sync":
		cmdErr = app.cmdSync(ctx)
	case "serve":
		fallback = exitStartup
		cmdErr = app.cmdServe(ctx)
	case "init-tracking":
		cmdErr = app.cmdInitTracking(ctx, rest)
	case "update":
		cmdErr = app.cmdUpdate(ctx, rest)
	case "top":
		cmdErr = app.cmdTop(ctx, rest)
	case "report":
		cmdErr = app.cmdReport(ctx, rest)
	case "list-tracked":
		cmdErr = app.cmdListTracked(ctx)
	case "track-world":
		cmdErr = app.cmdTrackWorld(ctx, rest)
	case "untrack-world":
		cmdErr = app.cmdUntrackWorld(ctx, rest)
	case "worlds":
		cmdErr = app.cmdWorlds(ctx)
	case "datacenters":
		cmdErr = app.cmdDataCenters(ctx)
	case "sync-items":
		cmdErr = app.cmdSyncItems(ctx)
	case "sync-marketable":
		cmdErr = app.cmdSyncMarketable(ctx)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n\n", command)
		usage(os.Stderr)
		return exitStartup
	}

	if cmdErr != nil {
		code := exitCode(cmdErr, fallback)
		fmt.Fprintf(os.Stderr, "error: %s\n", errorLine(cmdErr, code))
		return code
	}
	return exitOK
}

func usage(w *os.File) {
	fmt.Fprintf(w, `Usage: gilstream <command> [flags]

Commands:
  sync               Run one batch sync pass over all tracked worlds
  serve              Run the periodic sync loop and the REST API
  init-tracking      Discover actively traded items (-world, -count)
  update             Refresh tracked items on a world (-world)
  top                Sale-velocity leaderboard (-world, -limit)
  report             Price history for one item (-world, -item, -days)
  list-tracked       List tracked worlds with their item counts
  track-world        Register a world for batch sync (-world)
  untrack-world      Remove a world from batch sync (-world)
  worlds             Refresh and list the world cache
  datacenters        List data centers from the upstream
  sync-items         Refresh item names from the Teamcraft dump
  sync-marketable    Refresh the marketable-item universe
  version            Print the build version
`)
}
