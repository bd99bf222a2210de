// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package offload

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPoolSize(t *testing.T) {
	tests := []struct {
		name string
		size int
		want int
	}{
		{name: "explicit size", size: 5, want: 5},
		{name: "zero falls back to default", size: 0, want: DefaultWorkers},
		{name: "negative falls back to default", size: -3, want: DefaultWorkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPool(tt.size)
			defer p.Close()

			if got := p.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSubmitReturnsValue(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	f := Submit(p, context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})

	got, err := f.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Wait() = %d, want 42", got)
	}
}

func TestSubmitReturnsError(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	wantErr := errors.New("upstream unavailable")
	f := Submit(p, context.Background(), func(ctx context.Context) (string, error) {
		return "", wantErr
	})

	_, err := f.Wait(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("Wait() error = %v, want %v", err, wantErr)
	}
}

func TestBoundedConcurrency(t *testing.T) {
	const (
		poolSize = 2
		tasks    = 8
	)

	p := NewPool(poolSize)
	defer p.Close()

	var current, peak atomic.Int32

	futures := make([]*Future[struct{}], 0, tasks)
	for i := 0; i < tasks; i++ {
		f := Submit(p, context.Background(), func(ctx context.Context) (struct{}, error) {
			cur := current.Add(1)
			for {
				prev := peak.Load()
				if cur <= prev || peak.CompareAndSwap(prev, cur) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			current.Add(-1)
			return struct{}{}, nil
		})
		futures = append(futures, f)
	}

	for i, f := range futures {
		if _, err := f.Wait(context.Background()); err != nil {
			t.Fatalf("task %d: Wait() error = %v", i, err)
		}
	}

	if got := peak.Load(); got > poolSize {
		t.Errorf("peak concurrency = %d, want at most %d", got, poolSize)
	}
}

func TestSubmitDoesNotBlockCaller(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	release := make(chan struct{})
	blocker := Submit(p, context.Background(), func(ctx context.Context) (struct{}, error) {
		<-release
		return struct{}{}, nil
	})

	// Give the blocker time to take the only worker slot.
	time.Sleep(10 * time.Millisecond)

	start := time.Now()
	queued := make([]*Future[struct{}], 0, 3)
	for i := 0; i < 3; i++ {
		f := Submit(p, context.Background(), func(ctx context.Context) (struct{}, error) {
			return struct{}{}, nil
		})
		queued = append(queued, f)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Submit blocked for %v with pool saturated", elapsed)
	}

	close(release)

	if _, err := blocker.Wait(context.Background()); err != nil {
		t.Fatalf("blocker: Wait() error = %v", err)
	}
	for i, f := range queued {
		if _, err := f.Wait(context.Background()); err != nil {
			t.Fatalf("queued task %d: Wait() error = %v", i, err)
		}
	}
}

func TestWaitContextCanceled(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	release := make(chan struct{})
	f := Submit(p, context.Background(), func(ctx context.Context) (int, error) {
		<-release
		return 7, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want %v", err, context.DeadlineExceeded)
	}

	// Abandoning a Wait does not abandon the task.
	close(release)
	got, err := f.Wait(context.Background())
	if err != nil {
		t.Fatalf("second Wait() error = %v", err)
	}
	if got != 7 {
		t.Errorf("second Wait() = %d, want 7", got)
	}
}

func TestQueuedTaskHonorsContext(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	release := make(chan struct{})
	blocker := Submit(p, context.Background(), func(ctx context.Context) (struct{}, error) {
		<-release
		return struct{}{}, nil
	})

	// Give the blocker time to take the only worker slot.
	time.Sleep(10 * time.Millisecond)

	var ran atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())
	queued := Submit(p, ctx, func(ctx context.Context) (struct{}, error) {
		ran.Store(true)
		return struct{}{}, nil
	})

	cancel()

	if _, err := queued.Wait(context.Background()); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want %v", err, context.Canceled)
	}
	if ran.Load() {
		t.Error("queued task ran despite canceled context")
	}

	close(release)
	if _, err := blocker.Wait(context.Background()); err != nil {
		t.Fatalf("blocker: Wait() error = %v", err)
	}
}

func TestSubmitAfterClose(t *testing.T) {
	p := NewPool(1)
	p.Close()

	var ran atomic.Bool
	f := Submit(p, context.Background(), func(ctx context.Context) (struct{}, error) {
		ran.Store(true)
		return struct{}{}, nil
	})

	if _, err := f.Wait(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Wait() error = %v, want %v", err, ErrPoolClosed)
	}
	if ran.Load() {
		t.Error("task ran on closed pool")
	}
}

func TestCloseWaitsForInFlight(t *testing.T) {
	p := NewPool(2)

	var finished atomic.Int32
	for i := 0; i < 4; i++ {
		Submit(p, context.Background(), func(ctx context.Context) (struct{}, error) {
			time.Sleep(15 * time.Millisecond)
			finished.Add(1)
			return struct{}{}, nil
		})
	}

	p.Close()

	if got := finished.Load(); got != 4 {
		t.Errorf("finished tasks after Close() = %d, want 4", got)
	}
}

func TestCloseIdempotent(t *testing.T) {
	p := NewPool(1)
	p.Close()
	p.Close()
}
