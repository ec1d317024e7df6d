// Package activity implements the inactivity tracker: per-user last-activity
// bookkeeping plus the debounced inactivity warning evaluated on the
// scheduler's cadence.
package activity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/thamdi/focusd/internal/domain"
	"github.com/thamdi/focusd/internal/logger"
)

// A second warning is never sent sooner than this after the previous one,
// even when the configured threshold is shorter.
const minDebounce = 4 * time.Hour

// Option configures the tracker.
type Option func(*Tracker)

// WithClock overrides the wall clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) {
		t.clock = clock
	}
}

// Tracker maintains the current user's activity timestamps and submits a
// confirmation-required warning once inactivity crosses the configured
// threshold.
type Tracker struct {
	store    domain.ActivityStore
	tasks    domain.TaskStore
	sessions domain.SessionStore
	notifier domain.NotificationSubmitter
	cfg      domain.ConfigSource
	log      *logger.Logger
	clock    func() time.Time

	mu     sync.Mutex
	userID string
	rec    *domain.ActivityRecord
}

// New creates a tracker with the given dependencies and options.
func New(store domain.ActivityStore, tasks domain.TaskStore, sessions domain.SessionStore, notifier domain.NotificationSubmitter, cfg domain.ConfigSource, log *logger.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		tasks:    tasks,
		sessions: sessions,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetCurrentUser switches the tracking context, loading any persisted state
// for the user. A user never seen before starts with lastActivity = now.
func (t *Tracker) SetCurrentUser(userID string) {
	rec, err := t.store.LoadActivityState(userID)
	if err != nil {
		t.log.Error("loading activity state for %s: %v", userID, err)
	}
	if rec == nil {
		rec = &domain.ActivityRecord{LastActivityTime: t.clock()}
	}

	t.mu.Lock()
	t.userID = userID
	t.rec = rec
	t.mu.Unlock()

	t.log.Debug("tracking activity for user %s (last=%s)", userID, rec.LastActivityTime)
}

// RecordActivity stamps the user's last activity and persists it. Switches
// context implicitly when the user differs from the current one.
func (t *Tracker) RecordActivity(userID string) {
	t.mu.Lock()
	if t.userID != userID {
		t.mu.Unlock()
		t.SetCurrentUser(userID)
		t.mu.Lock()
	}
	t.rec.LastActivityTime = t.clock()
	rec := *t.rec
	t.mu.Unlock()

	if err := t.store.SaveActivityState(userID, &rec); err != nil {
		t.log.Error("saving activity state for %s: %v", userID, err)
	}
}

// CurrentUser returns the user currently being tracked, or "".
func (t *Tracker) CurrentUser() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.userID
}

// Evaluate checks whether the user has been inactive long enough for a
// warning, honoring the debounce window. No-op without a tracking context.
func (t *Tracker) Evaluate(ctx context.Context) error {
	t.mu.Lock()
	userID := t.userID
	var rec domain.ActivityRecord
	if t.rec != nil {
		rec = *t.rec
	}
	t.mu.Unlock()

	if userID == "" || rec.LastActivityTime.IsZero() {
		return nil
	}

	cfg := t.cfg.Notification()
	threshold := time.Duration(cfg.InactivityThresholdHours * float64(time.Hour))
	if threshold <= 0 {
		threshold = minDebounce
	}

	now := t.clock()
	if now.Sub(rec.LastActivityTime) < threshold {
		return nil
	}

	debounce := threshold
	if debounce < minDebounce {
		debounce = minDebounce
	}
	if !rec.LastNotificationTime.IsZero() && now.Sub(rec.LastNotificationTime) < debounce {
		return nil
	}

	body, err := t.composeWarning(ctx, userID, now, now.Sub(rec.LastActivityTime))
	if err != nil {
		return err
	}

	t.notifier.Submit(&domain.Notification{
		ID:                   fmt.Sprintf("inactivity-%s-%d", userID, now.Unix()),
		Type:                 domain.TypeInactivityWarning,
		Title:                "Still there?",
		Body:                 body,
		Priority:             domain.PriorityHigh,
		RequiresConfirmation: true,
	})

	t.mu.Lock()
	if t.userID == userID && t.rec != nil {
		t.rec.LastNotificationTime = now
		rec = *t.rec
	}
	t.mu.Unlock()

	if err := t.store.SaveActivityState(userID, &rec); err != nil {
		t.log.Error("saving activity state for %s: %v", userID, err)
	}
	t.log.Info("inactivity warning sent to %s (idle=%s)", userID, now.Sub(rec.LastActivityTime).Round(time.Minute))
	return nil
}

// composeWarning builds the warning body from the user's top pending tasks
// and today's completed focus count.
func (t *Tracker) composeWarning(ctx context.Context, userID string, now time.Time, idle time.Duration) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "No activity for %d hours.", int(idle.Hours()))

	tasks, err := t.tasks.FindTasks(ctx, domain.TaskFilter{UserID: userID, ExcludeDone: true})
	if err != nil {
		return "", fmt.Errorf("finding pending tasks: %w", err)
	}
	if len(tasks) > 0 {
		if len(tasks) > 3 {
			tasks = tasks[:3]
		}
		titles := make([]string, len(tasks))
		for i, task := range tasks {
			titles[i] = fmt.Sprintf("%q", task.Title)
		}
		fmt.Fprintf(&b, " Waiting on you: %s.", strings.Join(titles, ", "))
	}

	count, err := t.sessions.CountFocusSessionsOn(ctx, userID, now)
	if err != nil {
		return "", fmt.Errorf("counting today's sessions: %w", err)
	}
	switch count {
	case 0:
		b.WriteString(" No focus sessions completed today.")
	case 1:
		b.WriteString(" 1 focus session completed today.")
	default:
		fmt.Fprintf(&b, " %d focus sessions completed today.", count)
	}
	return b.String(), nil
}
