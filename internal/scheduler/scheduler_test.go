package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/vacancydb/internal/model"
)

// --- Mock implementations ---

type CountingRunner struct {
	calls   atomic.Int32
	active  atomic.Int32
	maxSeen atomic.Int32
	delay   time.Duration
	err     error
}

func (r *CountingRunner) Run(ctx context.Context) (model.RunSummary, error) {
	r.calls.Add(1)
	n := r.active.Add(1)
	defer r.active.Add(-1)
	for {
		cur := r.maxSeen.Load()
		if n <= cur || r.maxSeen.CompareAndSwap(cur, n) {
			break
		}
	}
	if r.delay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(r.delay):
		}
	}
	return model.RunSummary{}, r.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

// --- Tests ---

func TestRun_InvalidSpec(t *testing.T) {
	s := NewScheduler("not a schedule", &CountingRunner{}, discardLogger())
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestRun_ImmediateRunThenCancel(t *testing.T) {
	runner := &CountingRunner{}
	s := NewScheduler("@every 1h", runner, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	waitFor(t, 2*time.Second, func() bool { return runner.calls.Load() == 1 })
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return within 2s after cancel")
	}
	if got := runner.calls.Load(); got != 1 {
		t.Errorf("runner calls = %d, want 1", got)
	}
}

func TestRun_RepeatsOnSchedule(t *testing.T) {
	runner := &CountingRunner{}
	s := NewScheduler("@every 1s", runner, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	waitFor(t, 4*time.Second, func() bool { return runner.calls.Load() >= 2 })
	cancel()
	<-done
}

func TestRun_ErrorsDoNotStopScheduler(t *testing.T) {
	runner := &CountingRunner{err: errors.New("database down")}
	s := NewScheduler("@every 1s", runner, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	waitFor(t, 4*time.Second, func() bool { return runner.calls.Load() >= 2 })
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run = %v, want nil", err)
	}
}

func TestRun_NeverOverlaps(t *testing.T) {
	runner := &CountingRunner{delay: 1500 * time.Millisecond}
	s := NewScheduler("@every 1s", runner, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(3500 * time.Millisecond)
	cancel()
	<-done

	if got := runner.maxSeen.Load(); got != 1 {
		t.Errorf("max concurrent runs = %d, want 1", got)
	}
}
