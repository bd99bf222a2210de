// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package database

import (
	"database/sql"
	"errors"
	"io"

	"github.com/mogsworth/gilstream/internal/logging"
)

// closeWithLog closes a resource and logs any error.
// Use this for cleanup operations where errors should be acknowledged but
// not fail the operation.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// rollbackWithLog rolls back a transaction and logs real rollback failures.
// Safe to defer past Commit: the sql.ErrTxDone a finished transaction
// returns is ignored.
func rollbackWithLog(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logging.Error().Err(err).Msg("Transaction rollback failed")
	}
}
