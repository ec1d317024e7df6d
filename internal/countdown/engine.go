// Package countdown implements the focus/break countdown engine: a single
// active interval-driven timer that emits tick/paused/done events, persists
// completed sessions, recomputes task status, and requests the completion
// notification.
package countdown

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thamdi/focusd/internal/bus"
	"github.com/thamdi/focusd/internal/domain"
	"github.com/thamdi/focusd/internal/logger"
)

// Option configures the engine.
type Option func(*Engine)

// WithTickInterval sets how often the engine re-evaluates the countdown.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.tickInterval = d
	}
}

// WithBlockPollInterval sets how often focus mode sweeps blocked processes.
func WithBlockPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.blockPoll = d
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// Engine runs a single focus/break countdown. State machine:
// Idle -> Running -> {Paused -> Running | Completed -> Idle}.
// Starting while running replaces the previous run (last writer wins).
type Engine struct {
	sessions domain.SessionStore
	tasks    domain.TaskStore
	notifier domain.NotificationSubmitter
	blocker  domain.ProcessBlocker // nil disables the focus-mode sweep
	b        *bus.Bus
	log      *logger.Logger

	tickInterval time.Duration
	blockPoll    time.Duration
	clock        func() time.Time

	mu           sync.Mutex
	running      bool
	mode         domain.TimerMode
	duration     time.Duration // total for the current (possibly resumed) run
	startedAt    time.Time     // clock() at the latest (re)start
	runStartedAt time.Time     // clock() at the original start, for the record
	remaining    time.Duration // valid while paused
	taskID       string
	userID       string
	gen          int // run generation; stale goroutines bail out
	cancel       context.CancelFunc
}

// New creates a countdown engine with the given dependencies and options.
func New(sessions domain.SessionStore, tasks domain.TaskStore, notifier domain.NotificationSubmitter, blocker domain.ProcessBlocker, b *bus.Bus, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		sessions:     sessions,
		tasks:        tasks,
		notifier:     notifier,
		blocker:      blocker,
		b:            b,
		log:          log,
		tickInterval: time.Second,
		blockPoll:    5 * time.Second,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetUser sets the session owner for subsequent runs.
func (e *Engine) SetUser(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.userID = userID
}

// Start begins a countdown. If one is already running it is silently
// replaced and nothing is recorded for the abandoned run.
func (e *Engine) Start(mode domain.TimerMode, duration time.Duration, taskID string) {
	e.mu.Lock()
	if e.running {
		e.log.Warn("countdown already running, replacing (mode=%s)", e.mode)
		e.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.gen++
	gen := e.gen
	e.running = true
	e.mode = mode
	e.duration = duration
	e.taskID = taskID
	e.startedAt = e.clock()
	e.runStartedAt = e.startedAt
	e.remaining = 0
	e.mu.Unlock()

	e.log.Info("countdown started (mode=%s, duration=%s, task=%s)", mode, duration, taskID)
	e.publishTick(duration)

	go e.loop(ctx, gen)
	if mode == domain.ModeFocus && e.blocker != nil {
		go e.blockLoop(ctx)
	}
}

// Pause stops ticking and remembers the remaining time. No-op if nothing
// is running.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	elapsed := e.clock().Sub(e.startedAt)
	e.remaining = e.duration - elapsed
	if e.remaining < 0 {
		e.remaining = 0
	}
	e.running = false
	e.cancel()
	remaining := e.remaining
	e.mu.Unlock()

	e.log.Info("countdown paused (%s remaining)", remaining)
	e.b.Publish(bus.Event{Kind: bus.KindPaused, Payload: bus.TickPayload{RemainingMs: remaining.Milliseconds()}})
}

// Resume re-arms a paused countdown. No-op if already running or nothing
// is left to resume.
func (e *Engine) Resume() {
	e.mu.Lock()
	if e.running || e.remaining <= 0 {
		e.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.gen++
	gen := e.gen
	e.running = true
	e.duration = e.remaining
	e.startedAt = e.clock()
	e.remaining = 0
	mode := e.mode
	duration := e.duration
	e.mu.Unlock()

	e.log.Info("countdown resumed (mode=%s, %s remaining)", mode, duration)
	e.publishTick(duration)

	go e.loop(ctx, gen)
	if mode == domain.ModeFocus && e.blocker != nil {
		go e.blockLoop(ctx)
	}
}

// Stop abandons the current run without recording anything.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		e.cancel()
		e.running = false
	}
	e.remaining = 0
}

// Running reports whether a countdown is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Remaining returns the time left: live while running, stored while paused.
func (e *Engine) Remaining() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return e.remaining
	}
	remaining := e.duration - e.clock().Sub(e.startedAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// loop drives the countdown. Each tick is scheduled independently; the
// completion path flips running=false before any side effect so a slow
// persistence write can never double-record the session.
func (e *Engine) loop(ctx context.Context, gen int) {
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := e.tick(gen); done {
				return
			}
		}
	}
}

// tick evaluates the countdown once. Returns true when the loop should end.
func (e *Engine) tick(gen int) bool {
	e.mu.Lock()
	if !e.running || e.gen != gen {
		e.mu.Unlock()
		return true
	}

	remaining := e.duration - e.clock().Sub(e.startedAt)
	if remaining > 0 {
		e.mu.Unlock()
		e.publishTick(remaining)
		return false
	}

	// Natural expiry: leave Running before side effects.
	e.running = false
	e.remaining = 0
	e.cancel()
	mode := e.mode
	taskID := e.taskID
	userID := e.userID
	startedAt := e.runStartedAt
	e.mu.Unlock()

	e.complete(mode, taskID, userID, startedAt)
	return true
}

// complete records the session, recomputes task status, and requests the
// completion notification. Failures are logged; the state machine is
// already back in Idle.
func (e *Engine) complete(mode domain.TimerMode, taskID, userID string, startedAt time.Time) {
	now := e.clock()
	ctx := context.Background()

	e.b.Publish(bus.Event{Kind: bus.KindDone, Payload: bus.DonePayload{Mode: mode}})

	rec := &domain.SessionRecord{
		ID:              uuid.NewString(),
		UserID:          userID,
		TaskID:          taskID,
		Mode:            mode,
		StartedAt:       startedAt,
		EndedAt:         now,
		DurationSeconds: int(now.Sub(startedAt).Seconds()),
	}
	if err := e.sessions.CreateSession(ctx, rec); err != nil {
		e.log.Error("recording %s session for user %s: %v", mode, userID, err)
	}

	taskTitle := ""
	if mode == domain.ModeFocus && taskID != "" {
		taskTitle = e.recomputeTaskStatus(ctx, taskID)
	}

	e.notifier.Submit(e.completionNotification(mode, taskTitle, now))
	e.log.Info("countdown completed (mode=%s, duration=%ds)", mode, rec.DurationSeconds)
}

// recomputeTaskStatus moves the task to done once its completed focus
// sessions reach the estimate, otherwise to in-progress. Returns the task
// title for the notification body, or "" on failure.
func (e *Engine) recomputeTaskStatus(ctx context.Context, taskID string) string {
	task, err := e.tasks.GetTask(ctx, taskID)
	if err != nil {
		e.log.Error("loading task %s after focus session: %v", taskID, err)
		return ""
	}

	completed, err := e.tasks.CountCompletedFocusSessions(ctx, taskID)
	if err != nil {
		e.log.Error("counting focus sessions for task %s: %v", taskID, err)
		return task.Title
	}

	status := domain.TaskInProgress
	if task.EstimatedSessions > 0 && completed >= task.EstimatedSessions {
		status = domain.TaskDone
	}
	if err := e.tasks.UpdateTaskStatus(ctx, taskID, status); err != nil {
		e.log.Error("updating task %s status: %v", taskID, err)
	}
	return task.Title
}

// completionNotification builds the medium-priority done notification.
func (e *Engine) completionNotification(mode domain.TimerMode, taskTitle string, now time.Time) *domain.Notification {
	n := &domain.Notification{
		ID:        fmt.Sprintf("%s-%d", mode, now.UnixNano()),
		Priority:  domain.PriorityMedium,
		Timestamp: now,
	}
	switch mode {
	case domain.ModeFocus:
		n.Type = domain.TypePomodoroComplete
		n.Title = "Focus session complete"
		n.Body = "Time for a break."
		if taskTitle != "" {
			n.Body = fmt.Sprintf("Finished a focus session on %q. Time for a break.", taskTitle)
		}
	default:
		n.Type = domain.TypeBreakComplete
		n.Title = "Break over"
		n.Body = "Ready for the next focus session?"
	}
	return n
}

// blockLoop sweeps blocked processes while a focus run is active. Failures
// never affect the timer.
func (e *Engine) blockLoop(ctx context.Context) {
	ticker := time.NewTicker(e.blockPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.sweepBlocked(ctx)
		}
	}
}

// sweepBlocked terminates every blocked process once.
func (e *Engine) sweepBlocked(ctx context.Context) {
	e.mu.Lock()
	userID := e.userID
	e.mu.Unlock()

	names, err := e.blocker.ListBlockedAppNames(ctx, userID)
	if err != nil {
		e.log.Error("listing blocked apps for %s: %v", userID, err)
		return
	}
	for _, name := range names {
		if err := e.blocker.TerminateProcessByName(ctx, name); err != nil {
			e.log.Error("terminating %q: %v", name, err)
		}
	}
}

func (e *Engine) publishTick(remaining time.Duration) {
	e.b.Publish(bus.Event{Kind: bus.KindTick, Payload: bus.TickPayload{RemainingMs: remaining.Milliseconds()}})
}
