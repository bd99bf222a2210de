// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package sync

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/mogsworth/gilstream/internal/config"
	"github.com/mogsworth/gilstream/internal/logging"
)

// TeamcraftClient fetches the FFXIV Teamcraft item-name dump, a single large
// static JSON file mapping item IDs to localized names.
//
// The dump lives on a different host than Universalis and is fetched at most
// a few times a day, so the client keeps its own HTTP client with a longer
// timeout and its own retry budget. It is deliberately not governed by the
// Universalis token bucket.
type TeamcraftClient struct {
	itemsURL       string
	client         *http.Client
	maxAttempts    int
	retryBaseDelay time.Duration
}

// teamcraftItemName is one entry of the dump: the item's name per locale.
type teamcraftItemName struct {
	EN string `json:"en"`
	DE string `json:"de"`
	FR string `json:"fr"`
	JA string `json:"ja"`
}

// NewTeamcraftClient creates a client for the Teamcraft item-name dump.
func NewTeamcraftClient(cfg *config.TeamcraftConfig) *TeamcraftClient {
	return &TeamcraftClient{
		itemsURL: cfg.ItemsURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxAttempts:    cfg.RetryAttempts,
		retryBaseDelay: 1 * time.Second,
	}
}

// FetchItemNames downloads the dump and returns English item names keyed by
// item ID. Entries with unparsable IDs or empty English names are dropped.
//
// Errors carry the same classification as the Universalis client: connection
// failures exhaust the retry budget and surface as *TransientError, any
// received non-2xx response as *TerminalError.
func (t *TeamcraftClient) FetchItemNames(ctx context.Context) (map[int]string, error) {
	const operation = "teamcraft_items"

	var raw map[string]teamcraftItemName
	var lastErr error

	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.itemsURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s request: %w", operation, err)
		}

		resp, err := t.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			lastErr = err
			if attempt == t.maxAttempts {
				break
			}

			delay := t.retryBaseDelay << uint(attempt-1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			t.client.CloseIdleConnections()
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body := readBodyForError(resp.Body)
			_ = resp.Body.Close()
			return nil, &TerminalError{
				Operation:  operation,
				StatusCode: resp.StatusCode,
				Body:       string(body),
			}
		}

		decodeErr := json.NewDecoder(resp.Body).Decode(&raw)
		_ = resp.Body.Close()
		if decodeErr != nil {
			return nil, &TerminalError{
				Operation: operation,
				Err:       fmt.Errorf("decode response: %w", decodeErr),
			}
		}

		return flattenItemNames(raw), nil
	}

	return nil, &TransientError{
		Operation: operation,
		Attempts:  t.maxAttempts,
		Err:       lastErr,
	}
}

// flattenItemNames extracts the English names from the raw dump.
func flattenItemNames(raw map[string]teamcraftItemName) map[int]string {
	names := make(map[int]string, len(raw))
	dropped := 0
	for key, entry := range raw {
		id, err := strconv.Atoi(key)
		if err != nil || entry.EN == "" {
			dropped++
			continue
		}
		names[id] = entry.EN
	}
	if dropped > 0 {
		logging.Debug().
			Int("dropped", dropped).
			Int("kept", len(names)).
			Msg("Dropped unusable entries from item name dump")
	}
	return names
}
