package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/thamdi/focusd/internal/logger"
)

// counter is a check body that tallies its invocations.
type counter struct {
	mu    sync.Mutex
	runs  int
	fails bool
}

func (c *counter) run(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs++
	if c.fails {
		return errors.New("boom")
	}
	return nil
}

func (c *counter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs
}

func TestSchedulerGatesChecksByInterval(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := New(log, WithClock(func() time.Time { return now }))

	fast := &counter{}
	slow := &counter{}
	s.RegisterRecurring("fast", 10*time.Minute, fast.run)
	s.RegisterRecurring("slow", time.Hour, slow.run)

	ctx := context.Background()

	// First tick: neither has ever run, so both are due.
	s.Tick(ctx)
	if fast.count() != 1 || slow.count() != 1 {
		t.Fatalf("first tick: fast=%d slow=%d, want 1/1", fast.count(), slow.count())
	}

	// Nothing is due again at the same instant.
	s.Tick(ctx)
	if fast.count() != 1 || slow.count() != 1 {
		t.Fatalf("same-instant tick re-ran a check: fast=%d slow=%d", fast.count(), slow.count())
	}

	// Ten minutes on: only the fast check is due.
	now = now.Add(10 * time.Minute)
	s.Tick(ctx)
	if fast.count() != 2 || slow.count() != 1 {
		t.Fatalf("after 10m: fast=%d slow=%d, want 2/1", fast.count(), slow.count())
	}

	// An hour on: both.
	now = now.Add(time.Hour)
	s.Tick(ctx)
	if fast.count() != 3 || slow.count() != 2 {
		t.Fatalf("after 1h: fast=%d slow=%d, want 3/2", fast.count(), slow.count())
	}
}

func TestSchedulerContainsFailures(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := New(log, WithClock(func() time.Time { return now }))

	failing := &counter{fails: true}
	healthy := &counter{}
	s.RegisterRecurring("failing", 10*time.Minute, failing.run)
	s.RegisterRecurring("healthy", 10*time.Minute, healthy.run)

	ctx := context.Background()
	s.Tick(ctx)
	if healthy.count() != 1 {
		t.Fatal("a failing check must not block the others")
	}

	// The failure still advances lastRun, so the check cannot hot-loop.
	s.Tick(ctx)
	if failing.count() != 1 {
		t.Fatalf("failing check re-ran before its interval: %d", failing.count())
	}
}

func TestSchedulerContainsPanics(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := New(log, WithClock(func() time.Time { return now }))

	after := &counter{}
	s.RegisterRecurring("panicky", 10*time.Minute, func(context.Context) error {
		panic("unexpected")
	})
	s.RegisterRecurring("after", 10*time.Minute, after.run)

	s.Tick(context.Background())
	if after.count() != 1 {
		t.Fatal("a panicking check must not take down the tick")
	}
}

func TestSchedulerReRegisterResetsGate(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := New(log, WithClock(func() time.Time { return now }))

	c := &counter{}
	s.RegisterRecurring("c", time.Hour, c.run)

	ctx := context.Background()
	s.Tick(ctx)
	if c.count() != 1 {
		t.Fatalf("expected one run, got %d", c.count())
	}

	// Replacing the registration makes the check immediately due again.
	s.RegisterRecurring("c", time.Hour, c.run)
	s.Tick(ctx)
	if c.count() != 2 {
		t.Fatalf("expected re-registration to reset the gate, got %d runs", c.count())
	}
}

func TestSchedulerCancelAllDropsChecks(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := New(log, WithClock(func() time.Time { return now }))

	c := &counter{}
	s.RegisterRecurring("c", time.Minute, c.run)
	s.Start(context.Background())
	s.CancelAll()

	s.Tick(context.Background())
	if c.count() != 0 {
		t.Fatalf("expected no runs after CancelAll, got %d", c.count())
	}
}

func TestSchedulerLoopFiresOnBaseInterval(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	s := New(log, WithBaseInterval(20*time.Millisecond))

	c := &counter{}
	s.RegisterRecurring("c", time.Nanosecond, c.run)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.CancelAll()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if c.count() >= 2 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected the background loop to run the check repeatedly, got %d", c.count())
}
