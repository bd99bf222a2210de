// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

// Package ratelimit provides the token bucket throttle that keeps all
// Universalis traffic under the upstream's documented request ceiling.
//
// A single bucket is shared by every concurrent caller in the process: the
// sync engine, per-item update workers, and the serve-mode trigger all
// acquire from the same instance, so the outbound rate holds regardless of
// how many goroutines are in flight.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket is a blocking token bucket limiter. Tokens accrue continuously
// at the configured rate up to the burst capacity, and each Acquire consumes
// exactly one.
//
// Refill and consumption happen inside one mutex-guarded critical section,
// so concurrent acquirers can never observe a partially refilled bucket or
// double-spend a token.
type TokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	burst      float64
	rate       float64
	lastRefill time.Time
}

// NewTokenBucket returns a full bucket refilling at ratePerSec tokens per
// second with the given burst capacity.
func NewTokenBucket(ratePerSec float64, burst int) *TokenBucket {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{
		tokens:     float64(burst),
		burst:      float64(burst),
		rate:       ratePerSec,
		lastRefill: time.Now(),
	}
}

// Acquire blocks until one token is consumed or the context is canceled.
// The only possible error is the context's.
//
// When the bucket is empty the caller sleeps the exact time until one token
// accrues, then re-enters the critical section. A concurrent caller may take
// that token first, in which case the wait repeats; grants are never issued
// beyond the refill rate.
func (b *TokenBucket) Acquire(ctx context.Context) error {
	for {
		wait := b.tryAcquire()
		if wait == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Available refills the bucket and reports the current token count.
func (b *TokenBucket) Available() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	return b.tokens
}

// tryAcquire consumes one token if available, returning 0. Otherwise it
// returns the time until a full token has accrued.
func (b *TokenBucket) tryAcquire() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return 0
	}

	waitSeconds := (1.0 - b.tokens) / b.rate
	return time.Duration(waitSeconds * float64(time.Second))
}

// refill credits tokens for the elapsed time, capped at burst.
// Callers must hold b.mu.
func (b *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.lastRefill = now

	b.tokens += elapsed * b.rate
	if b.tokens > b.burst {
		b.tokens = b.burst
	}
}
