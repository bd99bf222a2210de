// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package sync

import (
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned by Manager.TriggerSync when a sync pass is
// already running. Passes never overlap; callers retry later.
var ErrSyncInProgress = errors.New("sync pass already in progress")

// TransientError reports a request that failed on the connection level and
// exhausted its retry budget. The upstream never rejected the request; it was
// simply unreachable. Re-running the same call later may succeed.
//
// Callers detect the class with errors.As:
//
//	var te *sync.TransientError
//	if errors.As(err, &te) { ... }
type TransientError struct {
	// Operation is the gateway operation that failed, e.g. "aggregated_prices".
	Operation string

	// Attempts is the total number of attempts made, including the first.
	Attempts int

	// Err is the last connection-level cause.
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: network error after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// TerminalError reports a request the upstream answered and rejected, or
// answered with a body the client could not decode. The response is final:
// retrying the identical request cannot change the outcome, so the gateway
// returns this after a single attempt.
type TerminalError struct {
	// Operation is the gateway operation that failed.
	Operation string

	// StatusCode is the HTTP status the upstream returned. Zero when the
	// failure was a decode error on a 2xx response.
	StatusCode int

	// Body holds up to 64KB of the rejection body for diagnostics.
	Body string

	// Err is the decode cause when StatusCode is zero.
	Err error
}

func (e *TerminalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: request rejected with status %d: %s", e.Operation, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: undecodable response: %v", e.Operation, e.Err)
}

func (e *TerminalError) Unwrap() error {
	return e.Err
}
