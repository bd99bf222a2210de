// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

// Package market implements the operational commands layered on top of the
// sync engine: tracking initialization, per-item updates, leaderboards,
// item reports, and the reference-data syncs (worlds, item names, the
// marketable universe).
//
// The Service is constructed from explicit collaborators (store, gateway,
// name source, offload pool) so every operation is testable with mocks and
// nothing reaches for global state. Per-item network probes fan out on the
// bounded offload pool and contend on the shared token bucket; individual
// probe failures are counted in the returned report, not raised, so one
// dead item cannot abort a long discovery or update run.
package market
