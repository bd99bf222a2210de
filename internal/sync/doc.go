// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

/*
Package sync implements the outbound market data synchronization engine:
rate-limited Universalis access, bounded retry with error classification,
and the batch sync pass that turns tracked worlds into daily snapshots.

Key Components:

  - Client: HTTP client for the Universalis API, admission-controlled by a
    shared token bucket (every request costs one token)
  - TeamcraftClient: fetcher for the static item-name dump (separate host,
    separate budget, not token governed)
  - BreakerClient: circuit breaker wrapper for the long-running serve mode
  - Engine: the batch sync pass (tracked worlds x marketable items)
  - Manager: serve-mode lifecycle (periodic ticker, manual trigger)

Error Classification:

Every gateway failure is one of two classes, and the distinction drives both
retry behavior and CLI exit codes:

  - *TransientError: the upstream was unreachable (connection failure or
    timeout). Retried with exponential backoff up to the configured attempt
    budget, on a fresh connection each time.
  - *TerminalError: the upstream answered and the answer is final (any
    non-2xx status, or a 2xx body that does not decode). Never retried.

Sync Pass Shape:

A pass walks tracked worlds sequentially. Per world it recomputes the set of
items already written today, partitions the remainder into batches of at
most 100 IDs, and pipes each batch through one aggregated price call into
one transactional snapshot write. Batches commit independently and
duplicates are absorbed by the store, so an interrupted pass is safe to
re-run: it skips what committed and continues with the rest.
*/
package sync
