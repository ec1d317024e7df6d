// Package dispatch implements the notification queue and dispatcher: the
// single point of entry for all notification requests. It enforces priority
// ordering, global delivery spacing, duplicate suppression, per-category
// opt-outs, quiet hours, and acknowledgement tracking, and drains
// asynchronously to the delivery sink.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/thamdi/focusd/internal/domain"
	"github.com/thamdi/focusd/internal/logger"
	"github.com/thamdi/focusd/internal/metrics"
)

// Compile-time interface check.
var _ domain.NotificationSubmitter = (*Dispatcher)(nil)

// Option configures the dispatcher.
type Option func(*Dispatcher)

// WithMinSpacing sets the minimum time between two deliveries.
func WithMinSpacing(d time.Duration) Option {
	return func(dp *Dispatcher) {
		dp.minSpacing = d
	}
}

// WithPacing sets the fixed delay between consecutive drain iterations.
func WithPacing(d time.Duration) Option {
	return func(dp *Dispatcher) {
		dp.pacing = d
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(dp *Dispatcher) {
		dp.clock = clock
	}
}

// WithMetrics attaches a metric set.
func WithMetrics(m *metrics.Metrics) Option {
	return func(dp *Dispatcher) {
		dp.met = m
	}
}

// Dispatcher serializes notification delivery. Submissions append to an
// unbounded pending queue; a single drain goroutine runs while the queue is
// non-empty, so deliveries never overlap and reentrant submissions coalesce
// into the active drain.
type Dispatcher struct {
	cfg  domain.ConfigSource
	sink domain.DeliverySink
	log  *logger.Logger
	met  *metrics.Metrics

	minSpacing time.Duration
	pacing     time.Duration
	clock      func() time.Time

	limiter *rate.Limiter
	// Delivered and acknowledged ids. Process-lifetime: an id in here is
	// never delivered again.
	acked *cache.Cache

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	pending  []*domain.Notification
	draining bool
}

// New creates a dispatcher. Call Close on shutdown to stop an in-flight
// drain.
func New(cfg domain.ConfigSource, sink domain.DeliverySink, log *logger.Logger, opts ...Option) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		cfg:        cfg,
		sink:       sink,
		log:        log,
		met:        metrics.New("focusd"),
		minSpacing: time.Second,
		pacing:     500 * time.Millisecond,
		clock:      time.Now,
		acked:      cache.New(cache.NoExpiration, 0),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.limiter = rate.NewLimiter(rate.Every(d.minSpacing), 1)
	return d
}

// Submit enqueues a notification request. Requests are rejected up front
// when notifications are disabled globally or for the category, during
// quiet hours, or when the id has already been delivered or acknowledged.
// Rejection is silent from the caller's perspective.
func (d *Dispatcher) Submit(n *domain.Notification) {
	cfg := d.cfg.Notification()
	now := d.clock()
	if n.Timestamp.IsZero() {
		n.Timestamp = now
	}

	switch {
	case !cfg.Enabled:
		d.reject(n, "disabled")
		return
	case !cfg.TypeEnabled(n.Type):
		d.reject(n, "type_disabled")
		return
	case cfg.QuietHours.Contains(now):
		d.reject(n, "quiet_hours")
		return
	}
	if _, seen := d.acked.Get(n.ID); seen {
		d.reject(n, "acknowledged")
		return
	}

	d.mu.Lock()
	d.pending = append(d.pending, n)
	d.met.PendingQueueSize.Set(float64(len(d.pending)))
	start := !d.draining
	if start {
		d.draining = true
	}
	d.mu.Unlock()

	d.log.Debug("queued notification %s (type=%s, priority=%s)", n.ID, n.Type, n.Priority)
	if start {
		d.wg.Add(1)
		go d.drain()
	}
}

// Acknowledge marks an id as handled for the rest of the process lifetime.
// Future submissions with that id are dropped. This is how a
// requires-confirmation notification, once dismissed, never reappears.
func (d *Dispatcher) Acknowledge(id string) {
	d.acked.SetDefault(id, d.clock())
	d.log.Debug("acknowledged notification %s", id)
}

// PendingCount returns the number of queued, undelivered notifications.
func (d *Dispatcher) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Close stops the drain loop at its next suspension point and waits for it
// to exit. Undelivered items stay queued; the process is going away anyway.
func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}

// reject drops a submission and records why.
func (d *Dispatcher) reject(n *domain.Notification, reason string) {
	d.met.NotificationsSuppressed.WithLabelValues(reason).Inc()
	d.log.Debug("rejected notification %s (%s)", n.ID, reason)
}

// drain runs until the queue is empty. Only one drain runs at a time;
// submissions that arrive mid-drain are picked up by the same loop.
func (d *Dispatcher) drain() {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		if len(d.pending) == 0 {
			d.draining = false
			d.mu.Unlock()
			return
		}

		idx := d.selectNextLocked()
		item := d.pending[idx]

		// A second pending copy of the same id means a caller re-submitted.
		// Drop the duplicate, keep the original, and reselect. Only one
		// copy per id is ever delivered.
		if dup := d.duplicateOfLocked(item.ID, idx); dup >= 0 {
			d.pending = append(d.pending[:dup], d.pending[dup+1:]...)
			d.met.DuplicatesDropped.Inc()
			d.met.PendingQueueSize.Set(float64(len(d.pending)))
			d.mu.Unlock()
			d.log.Debug("dropped duplicate pending notification %s", item.ID)
			continue
		}

		d.pending = append(d.pending[:idx], d.pending[idx+1:]...)
		d.met.PendingQueueSize.Set(float64(len(d.pending)))
		d.mu.Unlock()

		// The id is committed to delivery from here on; a re-submission
		// racing with delivery must not produce a second copy.
		d.acked.SetDefault(item.ID, d.clock())

		// Global spacing: a soft delay, never a drop.
		if err := d.limiter.Wait(d.ctx); err != nil {
			d.stopDraining()
			return
		}

		d.deliver(item)

		d.mu.Lock()
		more := len(d.pending) > 0
		d.mu.Unlock()
		if more {
			// Pace bursts so the UI stream stays legible.
			select {
			case <-d.ctx.Done():
				d.stopDraining()
				return
			case <-time.After(d.pacing):
			}
		}
	}
}

// selectNextLocked picks the index of the next item to deliver: highest
// priority first, FIFO within a priority. Caller holds d.mu.
func (d *Dispatcher) selectNextLocked() int {
	best := 0
	for i := 1; i < len(d.pending); i++ {
		if d.pending[i].Priority > d.pending[best].Priority {
			best = i
		}
	}
	return best
}

// duplicateOfLocked returns the index of a later pending item sharing the
// id, or -1. Caller holds d.mu.
func (d *Dispatcher) duplicateOfLocked(id string, selected int) int {
	for i, n := range d.pending {
		if i != selected && n.ID == id {
			return i
		}
	}
	return -1
}

// deliver pushes one item through the sink. Sink failures are logged and
// never halt the drain.
func (d *Dispatcher) deliver(n *domain.Notification) {
	cfg := d.cfg.Notification()

	if err := d.sink.DeliverToUI(d.ctx, n); err != nil {
		d.log.Error("delivering %s to UI: %v", n.ID, err)
	}
	if cfg.OSNotifications {
		if err := d.sink.DeliverToOS(d.ctx, n, n.Priority.Urgency(), cfg.Sound); err != nil {
			d.log.Error("delivering %s to OS: %v", n.ID, err)
		}
	}

	d.met.NotificationsDelivered.Inc()
	d.met.DeliveryLatency.Observe(d.clock().Sub(n.Timestamp).Seconds())
	d.log.Debug("delivered notification %s (%s)", n.ID, n.Priority)
}

func (d *Dispatcher) stopDraining() {
	d.mu.Lock()
	d.draining = false
	d.mu.Unlock()
}
