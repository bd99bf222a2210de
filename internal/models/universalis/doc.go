// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

// Package universalis provides data models for Universalis API responses.
//
// This package contains Go struct definitions for the Universalis REST API
// endpoints used by Gilstream. Each struct matches the upstream JSON exactly,
// with camelCase tags as emitted by the API.
//
// # Endpoints Covered
//
//   - AggregatedResponse: /api/v2/aggregated/{worldDcRegion}/{itemIds}
//   - CurrentlyShown: /api/{world}/{itemId}
//   - HistoryResponse: /api/history/{world}/{itemId}
//   - RecentlyUpdated: /api/extra/stats/most-recently-updated
//   - World: /api/v2/worlds
//   - DataCenter: /api/data-centers
//
// # Optional Data and Safe Navigation
//
// The aggregated endpoint reports each statistic per quality (NQ/HQ) and per
// scope (world, data center, region), and any level of that hierarchy may be
// absent: items that cannot be high quality have no "hq" object, items never
// sold on a world may only carry data center or region data, and so on.
//
// Every optional level is a pointer, and the accessor methods tolerate nil
// receivers, so a full traversal never needs intermediate checks:
//
//	price := result.NQ.MinListingPrice() // nil when any level is missing
//
// Preferred() picks the narrowest scope with data, world first, then data
// center, then region.
//
// # Timestamp Conventions
//
// Universalis mixes epoch units across endpoints: lastUploadTime fields and
// aggregated purchase timestamps are milliseconds, while sale entry
// timestamps are seconds. The conversion helpers on each type encode the
// correct unit; callers should never convert raw fields directly.
//
// # Field Naming
//
// JSON tags follow the upstream exactly, including its inconsistent ID
// casing: "itemID"/"worldID" on the market and stats endpoints, but
// "itemId"/"worldId" on the v2 aggregated endpoint.
package universalis
