// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

// Package api implements the serve-mode operational HTTP surface: health
// and metrics probes, sync manager status, a manual sync trigger, and
// read-only report endpoints over the local store.
//
// The router is chi v5 with CORS, per-IP request limiting (httprate
// globally, a stricter x/time limiter on the expensive trigger route),
// panic recovery, and request logging with correlation IDs. Every response
// uses the models.APIResponse envelope encoded with goccy/go-json.
//
// The surface is a local, unauthenticated operator tool. It exposes no
// mutation beyond triggering a sync pass that serve mode would run on its
// own schedule anyway.
package api
