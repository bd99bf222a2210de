// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// triggerLimiterEntry pairs a limiter with its last use for idle cleanup.
type triggerLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// TriggerRateLimiter is a per-IP limiter for the manual sync trigger. The
// trigger is far more expensive than any read endpoint (it spends real
// Universalis rate budget), so it gets its own much tighter allowance than
// the global request limit: one trigger per interval with a small burst.
//
// Idle entries are evicted by a cleanup goroutine; Stop terminates it.
type TriggerRateLimiter struct {
	entries   map[string]*triggerLimiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	stopClean chan struct{}
}

// NewTriggerRateLimiter creates a limiter allowing one event per interval
// with the given burst, and starts its cleanup goroutine.
func NewTriggerRateLimiter(interval time.Duration, burst int) *TriggerRateLimiter {
	rl := &TriggerRateLimiter{
		entries:   make(map[string]*triggerLimiterEntry),
		rate:      rate.Every(interval),
		burst:     burst,
		stopClean: make(chan struct{}),
	}
	go rl.cleanupLoop(10 * time.Minute)
	return rl
}

// Allow reports whether the given client IP may trigger a sync now.
func (rl *TriggerRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	entry, ok := rl.entries[ip]
	if !ok {
		entry = &triggerLimiterEntry{
			limiter: rate.NewLimiter(rl.rate, rl.burst),
		}
		rl.entries[ip] = entry
	}
	entry.lastAccess = time.Now()
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

// Stop terminates the cleanup goroutine.
func (rl *TriggerRateLimiter) Stop() {
	close(rl.stopClean)
}

func (rl *TriggerRateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopClean:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup drops entries idle for over an hour.
func (rl *TriggerRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := time.Now().Add(-1 * time.Hour)
	for ip, entry := range rl.entries {
		if entry.lastAccess.Before(threshold) {
			delete(rl.entries, ip)
		}
	}
}

// clientIP extracts the client address without the port, falling back to
// the raw RemoteAddr when it does not parse.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
