// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package main

import (
	"errors"

	"github.com/mogsworth/gilstream/internal/market"
	"github.com/mogsworth/gilstream/internal/sync"
	"github.com/mogsworth/gilstream/internal/validation"
)

// Exit code families. Automation keys on these, so each class of failure
// maps to exactly one code.
const (
	exitOK         = 0
	exitStartup    = 1
	exitValidation = 2
	exitTransient  = 3
	exitTerminal   = 4
	exitStorage    = 5
)

// errUsage marks bad command-line arguments: unparseable flags, missing
// required flags, out-of-range values. Classified with validation failures.
var errUsage = errors.New("invalid arguments")

// exitCode classifies an error into its exit code family. Errors outside
// the typed families get the command's fallback code.
func exitCode(err error, fallback int) int {
	if err == nil {
		return exitOK
	}

	var validationErr *validation.RequestValidationError
	var transientErr *sync.TransientError
	var terminalErr *sync.TerminalError

	switch {
	case errors.Is(err, errUsage),
		errors.As(err, &validationErr),
		errors.Is(err, market.ErrUnknownWorld):
		return exitValidation
	case errors.As(err, &transientErr):
		return exitTransient
	case errors.As(err, &terminalErr):
		return exitTerminal
	}
	return fallback
}

// errorLine renders the message printed to stderr. The typed gateway errors
// already carry their "network error after N attempts" and "request
// rejected with status NNN" phrasing; storage failures get an explicit
// prefix so the three families read differently in logs.
func errorLine(err error, code int) string {
	if code == exitStorage {
		return "storage error: " + err.Error()
	}
	return err.Error()
}
