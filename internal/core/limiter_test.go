package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestValidationLimiter_Slots(t *testing.T) {
	l := NewValidationLimiter(2, time.Second)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
	}
	if got := l.Status(); got != (LimiterStatus{Active: 2, Available: 0, MaxConcurrent: 2}) {
		t.Errorf("Status with both slots taken = %+v", got)
	}
	if l.TryAcquire() {
		t.Error("TryAcquire succeeded with no free slot")
	}

	l.Release()
	if got := l.Available(); got != 1 {
		t.Errorf("Available after Release = %d, want 1", got)
	}
	if !l.TryAcquire() {
		t.Error("TryAcquire failed with a free slot")
	}

	l.Release()
	l.Release()
	if got := l.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount after releasing all = %d, want 0", got)
	}
}

func TestValidationLimiter_RejectsAfterWait(t *testing.T) {
	l := NewValidationLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer l.Release()

	start := time.Now()
	err := l.Acquire(ctx)
	if !errors.Is(err, ErrTooManyValidations) {
		t.Fatalf("second Acquire error = %v, want ErrTooManyValidations", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("rejected after %v, want roughly the wait time", elapsed)
	}
}

func TestValidationLimiter_ContextCancelled(t *testing.T) {
	l := NewValidationLimiter(1, 5*time.Second)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Acquire error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after cancellation")
	}
}

func TestValidationLimiter_NeverExceedsMax(t *testing.T) {
	const max = 2
	l := NewValidationLimiter(max, time.Second)

	var (
		wg      sync.WaitGroup
		current atomic.Int32
		peak    atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			defer l.Release()

			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
		}()
	}
	wg.Wait()

	if p := peak.Load(); p > max {
		t.Errorf("peak concurrency = %d, want <= %d", p, max)
	}
}

func TestValidationLimiter_WaitForDrain(t *testing.T) {
	l := NewValidationLimiter(2, time.Second)
	ctx := context.Background()
	l.Acquire(ctx)

	done := make(chan error, 1)
	go func() { done <- l.WaitForDrain(ctx) }()

	select {
	case <-done:
		t.Fatal("WaitForDrain returned while a validation was running")
	case <-time.After(50 * time.Millisecond):
	}

	l.Release()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForDrain: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain did not return after release")
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	l.Acquire(ctx)
	defer l.Release()
	if err := l.WaitForDrain(drainCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain with expired context = %v, want DeadlineExceeded", err)
	}
}

func TestValidationLimiter_Defaults(t *testing.T) {
	l := NewValidationLimiter(0, 0)
	if got := l.MaxConcurrent(); got != DefaultMaxConcurrentValidations {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentValidations)
	}
	if l.maxWait != DefaultMaxWaitTime {
		t.Errorf("maxWait = %v, want %v", l.maxWait, DefaultMaxWaitTime)
	}
}
