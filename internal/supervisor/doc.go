// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

// Package supervisor builds the suture supervision tree for serve mode.
//
// The tree has two child layers under the root: sync (the periodic sync
// manager) and api (the HTTP server). A crash in one layer restarts only
// that layer; the other keeps serving. Suture events are logged through
// sutureslog bridged onto the zerolog global via the logging package's
// slog adapter.
package supervisor
