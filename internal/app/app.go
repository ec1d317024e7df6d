// Package app wires the core subsystems together and exposes the command
// surface the UI layer calls. Events flow back out exclusively through the
// bus, so the core stays transport-agnostic.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/thamdi/focusd/internal/activity"
	"github.com/thamdi/focusd/internal/bus"
	"github.com/thamdi/focusd/internal/countdown"
	"github.com/thamdi/focusd/internal/dispatch"
	"github.com/thamdi/focusd/internal/domain"
	"github.com/thamdi/focusd/internal/logger"
	"github.com/thamdi/focusd/internal/schedule"
)

// Compile-time interface check: the app is the config source every
// subsystem snapshots from.
var _ domain.ConfigSource = (*App)(nil)

// Option configures the app.
type Option func(*options)

type options struct {
	checksEnabled  bool
	clock          func() time.Time
	dispatcherOpts []dispatch.Option
	engineOpts     []countdown.Option
	schedulerOpts  []schedule.Option
	trackerOpts    []activity.Option
}

// WithChecksEnabled toggles the periodic check subsystem.
func WithChecksEnabled(enabled bool) Option {
	return func(o *options) {
		o.checksEnabled = enabled
	}
}

// WithClock overrides the wall clock used by the check bodies, for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithDispatcherOptions forwards options to the dispatcher.
func WithDispatcherOptions(opts ...dispatch.Option) Option {
	return func(o *options) {
		o.dispatcherOpts = append(o.dispatcherOpts, opts...)
	}
}

// WithEngineOptions forwards options to the countdown engine.
func WithEngineOptions(opts ...countdown.Option) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// WithSchedulerOptions forwards options to the scheduler.
func WithSchedulerOptions(opts ...schedule.Option) Option {
	return func(o *options) {
		o.schedulerOpts = append(o.schedulerOpts, opts...)
	}
}

// WithTrackerOptions forwards options to the inactivity tracker.
func WithTrackerOptions(opts ...activity.Option) Option {
	return func(o *options) {
		o.trackerOpts = append(o.trackerOpts, opts...)
	}
}

// App owns one instance of every subsystem, constructed once at process
// start. There are no package-level singletons; whatever wires up the UI
// holds the App.
type App struct {
	cfgStore domain.ConfigStore
	log      *logger.Logger

	engine     *countdown.Engine
	dispatcher *dispatch.Dispatcher
	scheduler  *schedule.Scheduler
	tracker    *activity.Tracker
	checks     *schedule.Checks

	checksEnabled bool

	cfgMu sync.RWMutex
	cfg   *domain.NotificationConfig

	userMu sync.RWMutex
	userID string
}

// New builds the app. The notification config is loaded from the store,
// falling back to defaults; startup is never blocked on a config error.
func New(tasks domain.TaskStore, sessions domain.SessionStore, cfgStore domain.ConfigStore, activityStore domain.ActivityStore, sink domain.DeliverySink, blocker domain.ProcessBlocker, b *bus.Bus, log *logger.Logger, opts ...Option) *App {
	o := &options{checksEnabled: true}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{
		cfgStore:      cfgStore,
		log:           log,
		checksEnabled: o.checksEnabled,
	}

	cfg, err := cfgStore.LoadNotificationConfig()
	if err != nil {
		log.Error("loading notification config, using defaults: %v", err)
	}
	if cfg == nil {
		cfg = domain.DefaultNotificationConfig()
	}
	a.cfg = cfg

	a.dispatcher = dispatch.New(a, sink, log.WithComponent("dispatch"), o.dispatcherOpts...)
	a.engine = countdown.New(sessions, tasks, a.dispatcher, blocker, b, log.WithComponent("countdown"), o.engineOpts...)
	a.tracker = activity.New(activityStore, tasks, sessions, a.dispatcher, a, log.WithComponent("activity"), o.trackerOpts...)
	a.scheduler = schedule.New(log.WithComponent("schedule"), o.schedulerOpts...)
	a.checks = schedule.NewChecks(tasks, a.dispatcher, a.tracker, a.CurrentUser, log.WithComponent("checks"), o.clock)

	if a.checksEnabled {
		a.checks.Register(a.scheduler, a.checkInterval())
	}
	return a
}

// Start launches the background subsystems. Non-blocking.
func (a *App) Start(ctx context.Context) {
	if a.checksEnabled {
		a.scheduler.Start(ctx)
	}
}

// Close tears everything down: recurring timers first, then the dispatcher.
func (a *App) Close() {
	a.scheduler.CancelAll()
	a.engine.Stop()
	a.dispatcher.Close()
}

// Notification returns the current config snapshot (domain.ConfigSource).
func (a *App) Notification() *domain.NotificationConfig {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.cfg
}

// GetNotificationConfig returns a copy the caller may mutate freely.
func (a *App) GetNotificationConfig() *domain.NotificationConfig {
	return a.Notification().Clone()
}

// UpdateNotificationConfig applies a partial update copy-on-write and
// persists the result. Persistence failures are logged, not surfaced; the
// in-memory config is authoritative for this process.
func (a *App) UpdateNotificationConfig(patch *domain.NotificationConfigPatch) *domain.NotificationConfig {
	a.cfgMu.Lock()
	old := a.cfg
	next := patch.Apply(old)
	a.cfg = next
	a.cfgMu.Unlock()

	if err := a.cfgStore.SaveNotificationConfig(next); err != nil {
		a.log.Error("persisting notification config: %v", err)
	}

	// A new sweep cadence re-registers the checks (and resets their gates).
	if a.checksEnabled && next.CheckIntervalMinutes != old.CheckIntervalMinutes {
		a.checks.Register(a.scheduler, a.checkInterval())
	}
	return next.Clone()
}

// StartTimer starts a focus or break countdown.
func (a *App) StartTimer(mode domain.TimerMode, durationMs int64, taskID string) {
	a.engine.Start(mode, time.Duration(durationMs)*time.Millisecond, taskID)
}

// PauseTimer pauses the running countdown. No-op when idle.
func (a *App) PauseTimer() {
	a.engine.Pause()
}

// ResumeTimer resumes a paused countdown. No-op when running or idle.
func (a *App) ResumeTimer() {
	a.engine.Resume()
}

// SubmitNotification routes a request into the dispatcher.
func (a *App) SubmitNotification(n *domain.Notification) {
	a.dispatcher.Submit(n)
}

// AcknowledgeNotification permanently retires a notification id.
func (a *App) AcknowledgeNotification(id string) {
	a.dispatcher.Acknowledge(id)
}

// RecordUserActivity stamps user activity for the inactivity tracker.
func (a *App) RecordUserActivity(userID string) {
	a.tracker.RecordActivity(userID)
}

// SetCurrentUser switches the owning user for timers, checks, and activity
// tracking.
func (a *App) SetCurrentUser(userID string) {
	a.userMu.Lock()
	a.userID = userID
	a.userMu.Unlock()

	a.engine.SetUser(userID)
	a.tracker.SetCurrentUser(userID)
	a.log.Info("current user: %s", userID)
}

// CurrentUser returns the signed-in user id, or "".
func (a *App) CurrentUser() string {
	a.userMu.RLock()
	defer a.userMu.RUnlock()
	return a.userID
}

// Scheduler exposes the scheduler, mainly so a caller can force a sweep.
func (a *App) Scheduler() *schedule.Scheduler {
	return a.scheduler
}

// checkInterval converts the configured minutes to a duration.
func (a *App) checkInterval() time.Duration {
	minutes := a.Notification().CheckIntervalMinutes
	if minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}
