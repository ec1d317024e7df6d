// Package schedule implements the periodic check scheduler: one recurring
// timer shared by a set of named checks, each gated by its own last-run
// timestamp so heterogeneous cadences don't need their own timers.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/thamdi/focusd/internal/logger"
	"github.com/thamdi/focusd/internal/metrics"
)

// CheckFunc is a single periodic check. Errors are logged and contained;
// they never stop the scheduler or the other checks.
type CheckFunc func(ctx context.Context) error

// Option configures the scheduler.
type Option func(*Scheduler)

// WithBaseInterval sets the underlying timer cadence. Checks whose own
// interval is longer simply skip ticks.
func WithBaseInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.baseInterval = d
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// WithMetrics attaches a metric set.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) {
		s.met = m
	}
}

type registration struct {
	interval time.Duration
	lastRun  time.Time
	fn       CheckFunc
}

// Scheduler drives registered checks from one timer. Checks run in
// registration order within a tick; there is no ordering guarantee beyond
// that.
type Scheduler struct {
	log *logger.Logger
	met *metrics.Metrics

	baseInterval time.Duration
	clock        func() time.Time

	mu      sync.Mutex
	order   []string
	checks  map[string]*registration
	running bool
	cancel  context.CancelFunc
}

// New creates a scheduler with the given options.
func New(log *logger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		log:          log,
		met:          metrics.New("focusd_scheduler"),
		baseInterval: time.Minute,
		clock:        time.Now,
		checks:       make(map[string]*registration),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRecurring registers a named check with its own re-run interval.
// Registering an existing name replaces it and resets its gate.
func (s *Scheduler) RegisterRecurring(name string, interval time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.checks[name]; !exists {
		s.order = append(s.order, name)
	}
	s.checks[name] = &registration{interval: interval, fn: fn}
	s.log.Debug("registered check %s (interval=%s)", name, interval)
}

// Start begins the background loop. Non-blocking; no-op if already running.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("scheduler already running")
		return
	}
	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	go s.loop(childCtx)
	s.log.Info("scheduler started (base=%s, checks=%d)", s.baseInterval, len(s.checks))
}

// CancelAll stops the loop and drops every registration. Must be called on
// shutdown to avoid dangling timers.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.cancel()
		s.running = false
	}
	s.checks = make(map[string]*registration)
	s.order = nil
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.baseInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs every check whose own interval has elapsed since its last run
// (a check that never ran is always due). lastRun advances whether or not
// the check succeeds, so a failing check cannot hot-loop.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock()

	s.mu.Lock()
	var due []string
	for _, name := range s.order {
		reg := s.checks[name]
		if reg.lastRun.IsZero() || now.Sub(reg.lastRun) >= reg.interval {
			due = append(due, name)
		}
	}
	s.mu.Unlock()

	for _, name := range due {
		s.mu.Lock()
		reg, ok := s.checks[name]
		s.mu.Unlock()
		if !ok {
			continue // unregistered mid-tick
		}

		s.runCheck(ctx, name, reg.fn)

		s.mu.Lock()
		if reg, ok := s.checks[name]; ok {
			reg.lastRun = now
		}
		s.mu.Unlock()
	}
}

// runCheck invokes one check with panic and error containment.
func (s *Scheduler) runCheck(ctx context.Context, name string, fn CheckFunc) {
	defer func() {
		if r := recover(); r != nil {
			s.met.CheckFailures.WithLabelValues(name).Inc()
			s.log.Error("check %s panicked: %v", name, r)
		}
	}()

	s.met.CheckRuns.WithLabelValues(name).Inc()
	if err := fn(ctx); err != nil {
		s.met.CheckFailures.WithLabelValues(name).Inc()
		s.log.Error("check %s: %v", name, err)
		return
	}
	s.log.Debug("check %s completed", name)
}
