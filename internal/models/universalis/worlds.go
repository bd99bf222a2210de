// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package universalis

import (
	"time"
)

// World is one entry of the /v2/worlds listing.
type World struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DataCenter is one entry of the /data-centers listing. Worlds holds the IDs
// of the member worlds, resolvable against the /v2/worlds listing.
type DataCenter struct {
	Name   string `json:"name"`
	Region string `json:"region"`
	Worlds []int  `json:"worlds"`
}

// RecentlyUpdated is the response of the most-recently-updated stats
// endpoint: items ordered newest upload first.
type RecentlyUpdated struct {
	Items []RecentItem `json:"items"`
}

// RecentItem is one recently updated item on a world.
type RecentItem struct {
	ItemID         int    `json:"itemID"`
	LastUploadTime int64  `json:"lastUploadTime"` // epoch milliseconds
	WorldID        int    `json:"worldID"`
	WorldName      string `json:"worldName"`
}

// LastUploadAt converts LastUploadTime to a time.Time.
func (r RecentItem) LastUploadAt() time.Time {
	return time.UnixMilli(r.LastUploadTime).UTC()
}
