// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

// Package offload provides a small bounded worker pool for fanning out
// blocking upstream calls without unbounding them.
//
// The bound is deliberate backpressure: per-item market probes all contend
// on the shared Universalis token bucket, so running more than a few
// concurrently only builds a queue inside the limiter. Submit hands back a
// Future immediately; the work waits for a worker slot in its own
// goroutine, never on the caller.
package offload

import (
	"context"
	"errors"
	"sync"
)

// DefaultWorkers is the pool size used when no explicit size is configured.
const DefaultWorkers = 3

// ErrPoolClosed is returned by futures submitted after Close.
var ErrPoolClosed = errors.New("offload pool is closed")

// Pool bounds how many submitted tasks run concurrently.
//
// Thread Safety: all methods are safe for concurrent use.
type Pool struct {
	sem    chan struct{}
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// NewPool creates a pool running at most size tasks at a time. Sizes of zero
// or below fall back to DefaultWorkers.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultWorkers
	}
	return &Pool{
		sem: make(chan struct{}, size),
	}
}

// Size returns the pool's concurrency bound.
func (p *Pool) Size() int {
	return cap(p.sem)
}

// Close marks the pool closed and waits for every submitted task to finish.
// Further Submit calls return a future that fails with ErrPoolClosed.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
}

// Future is the pending result of a submitted task.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Wait blocks until the task finishes or ctx is done. A context error only
// abandons this Wait; the task itself keeps its worker slot and completes.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit schedules fn on the pool and returns its future. Submit itself
// never blocks: when all workers are busy the task waits for a slot in its
// own goroutine. A task whose ctx is done before a slot frees up fails with
// the context error without running.
func Submit[T any](p *Pool, ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		f.err = ErrPoolClosed
		close(f.done)
		return f
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer close(f.done)

		select {
		case p.sem <- struct{}{}:
			defer func() { <-p.sem }()
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		}

		f.value, f.err = fn(ctx)
	}()

	return f
}
