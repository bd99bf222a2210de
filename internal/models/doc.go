// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

/*
Package models defines data structures for the Gilstream application.

This package contains the domain models shared across the sync engine, the
database store, the market service, the CLI, and the HTTP API. Wire-level
structures matching the Universalis API responses live in the universalis
subpackage; this package holds the flattened, storage-ready shapes.

Model Categories:

1. Sync Models:
  - SyncScope: A tracked world targeted by a sync pass
  - SyncSummary: Accounting for one full sync pass
  - PriceRecord: Flattened per-item price aggregates ready for persistence

2. Database Models:
  - DailySnapshot: One row of the daily_snapshots table
  - TrackedWorld / TrackedItem: Tracking registrations
  - WorldInfo / ItemInfo: Cached world and item metadata

3. Report Models:
  - TopItem: Leaderboard row ordered by sale velocity
  - ItemReport / TrendReport: Per-item history with percent trends
  - TrackingReport / UpdateReport: Discovery and refresh outcomes

4. API Models:
  - APIResponse / APIError / Metadata: Standard HTTP envelope
  - HealthStatus / SyncStatus: Operational endpoints

JSON Marshaling:

Domain models use snake_case JSON tags. Optional fields are pointers with
omitempty; a nil pointer means the upstream had no data for that quality or
dimension, which is distinct from zero.

See Also:

  - internal/models/universalis: Universalis API wire shapes
  - internal/database: Store operations persisting these models
  - internal/sync: Engine and gateway producing them
*/
package models
