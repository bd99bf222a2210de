// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestSyncSummary_String(t *testing.T) {
	tests := []struct {
		name    string
		summary SyncSummary
		want    string
	}{
		{
			name:    "zero pass",
			summary: SyncSummary{},
			want:    "worlds 0  items updated 0  items skipped 0  items total 0",
		},
		{
			name: "full pass",
			summary: SyncSummary{
				WorldsProcessed: 1,
				ItemsTotal:      150,
				ItemsUpdated:    150,
				ItemsSkipped:    0,
			},
			want: "worlds 1  items updated 150  items skipped 0  items total 150",
		},
		{
			name: "partial skip",
			summary: SyncSummary{
				WorldsProcessed: 2,
				ItemsTotal:      300,
				ItemsUpdated:    220,
				ItemsSkipped:    80,
			},
			want: "worlds 2  items updated 220  items skipped 80  items total 300",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.summary.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPriceRecord_JSONOmitsAbsentQualities(t *testing.T) {
	nqMin := 420.0
	nqVel := 3.5
	lastSale := time.Date(2026, 2, 11, 9, 30, 0, 0, time.UTC)

	record := PriceRecord{
		ItemID:         5333,
		NQMinListing:   &nqMin,
		NQSaleVelocity: &nqVel,
		LastSaleAt:     &lastSale,
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Failed to marshal PriceRecord: %v", err)
	}

	s := string(data)
	if !strings.Contains(s, `"item_id":5333`) {
		t.Errorf("Expected item_id in output, got %s", s)
	}
	if !strings.Contains(s, `"nq_min_listing":420`) {
		t.Errorf("Expected nq_min_listing in output, got %s", s)
	}
	if strings.Contains(s, "hq_min_listing") {
		t.Errorf("Expected absent HQ fields to be omitted, got %s", s)
	}
	if strings.Contains(s, "nq_average_sale") {
		t.Errorf("Expected unset NQ average to be omitted, got %s", s)
	}

	var decoded PriceRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal PriceRecord: %v", err)
	}
	if decoded.HQMinListing != nil {
		t.Errorf("Expected nil HQMinListing after round trip, got %v", *decoded.HQMinListing)
	}
	if decoded.NQSaleVelocity == nil || *decoded.NQSaleVelocity != 3.5 {
		t.Errorf("Expected NQSaleVelocity 3.5, got %v", decoded.NQSaleVelocity)
	}
}
