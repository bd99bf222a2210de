// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

// Package services adapts serve-mode components to suture's Serve pattern:
// the sync manager's Start/Stop lifecycle and the HTTP server's
// ListenAndServe/Shutdown pair each get a thin supervised wrapper.
package services
