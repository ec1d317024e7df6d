package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/thamdi/focusd/internal/domain"
	"github.com/thamdi/focusd/internal/logger"
)

// Check names, also used as notification id prefixes.
const (
	CheckTaskOverdue       = "taskOverdue"
	CheckTaskDeadline      = "taskDeadline"
	CheckProjectDeadline   = "projectDeadline"
	CheckWorkloadWarning   = "workloadWarning"
	CheckInactivityWarning = "inactivityWarning"
)

// How far ahead the deadline checks look, and how many tasks due on the
// same day count as an overloaded schedule.
const (
	taskDeadlineWindow    = 24 * time.Hour
	projectDeadlineWindow = 48 * time.Hour
	workloadThreshold     = 8
)

// Evaluator is the inactivity tracker's periodic hook.
type Evaluator interface {
	Evaluate(ctx context.Context) error
}

// Checks holds the domain check bodies that sweep task and project state
// and submit notifications. Each body is registered as a named check on the
// scheduler.
type Checks struct {
	tasks      domain.TaskStore
	notifier   domain.NotificationSubmitter
	inactivity Evaluator
	user       func() string // current user id, "" when nobody is signed in
	log        *logger.Logger
	clock      func() time.Time
}

// NewChecks creates the check set. The clock may be nil for wall time.
func NewChecks(tasks domain.TaskStore, notifier domain.NotificationSubmitter, inactivity Evaluator, user func() string, log *logger.Logger, clock func() time.Time) *Checks {
	if clock == nil {
		clock = time.Now
	}
	return &Checks{
		tasks:      tasks,
		notifier:   notifier,
		inactivity: inactivity,
		user:       user,
		log:        log,
		clock:      clock,
	}
}

// Register wires every check onto the scheduler at the given interval.
func (c *Checks) Register(s *Scheduler, interval time.Duration) {
	s.RegisterRecurring(CheckTaskOverdue, interval, c.TaskOverdue)
	s.RegisterRecurring(CheckTaskDeadline, interval, c.TaskDeadline)
	s.RegisterRecurring(CheckProjectDeadline, interval, c.ProjectDeadline)
	s.RegisterRecurring(CheckWorkloadWarning, interval, c.WorkloadWarning)
	s.RegisterRecurring(CheckInactivityWarning, interval, func(ctx context.Context) error {
		return c.inactivity.Evaluate(ctx)
	})
}

// TaskOverdue flags every unfinished task whose due date has passed. The
// notification id is stable per task, so the dispatcher's delivered set
// keeps repeated sweeps from re-alerting.
func (c *Checks) TaskOverdue(ctx context.Context) error {
	uid := c.user()
	if uid == "" {
		return nil
	}
	now := c.clock()

	tasks, err := c.tasks.FindTasks(ctx, domain.TaskFilter{
		UserID:      uid,
		ExcludeDone: true,
		DueBefore:   &now,
	})
	if err != nil {
		return fmt.Errorf("finding overdue tasks: %w", err)
	}

	for _, t := range tasks {
		c.notifier.Submit(&domain.Notification{
			ID:       fmt.Sprintf("%s-%s", CheckTaskOverdue, t.ID),
			Type:     domain.TypeTaskOverdue,
			Title:    "Task overdue",
			Body:     fmt.Sprintf("%q was due %s.", t.Title, t.DueDate.Format("Jan 2 15:04")),
			Priority: domain.PriorityHigh,
			Data:     map[string]any{"taskId": t.ID},
		})
	}
	return nil
}

// TaskDeadline flags unfinished tasks due within the next 24 hours.
func (c *Checks) TaskDeadline(ctx context.Context) error {
	uid := c.user()
	if uid == "" {
		return nil
	}
	now := c.clock()
	horizon := now.Add(taskDeadlineWindow)

	tasks, err := c.tasks.FindTasks(ctx, domain.TaskFilter{
		UserID:      uid,
		ExcludeDone: true,
		DueAfter:    &now,
		DueBefore:   &horizon,
	})
	if err != nil {
		return fmt.Errorf("finding upcoming tasks: %w", err)
	}

	for _, t := range tasks {
		c.notifier.Submit(&domain.Notification{
			ID:       fmt.Sprintf("%s-%s", CheckTaskDeadline, t.ID),
			Type:     domain.TypeTaskDeadline,
			Title:    "Deadline approaching",
			Body:     fmt.Sprintf("%q is due %s.", t.Title, t.DueDate.Format("Jan 2 15:04")),
			Priority: domain.PriorityMedium,
			Data:     map[string]any{"taskId": t.ID},
		})
	}
	return nil
}

// ProjectDeadline flags projects due within the next 48 hours.
func (c *Checks) ProjectDeadline(ctx context.Context) error {
	uid := c.user()
	if uid == "" {
		return nil
	}
	now := c.clock()
	horizon := now.Add(projectDeadlineWindow)

	projects, err := c.tasks.ListProjects(ctx, uid)
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}

	for _, p := range projects {
		if p.DueDate == nil || p.DueDate.Before(now) || p.DueDate.After(horizon) {
			continue
		}
		c.notifier.Submit(&domain.Notification{
			ID:       fmt.Sprintf("%s-%s", CheckProjectDeadline, p.ID),
			Type:     domain.TypeProjectDeadline,
			Title:    "Project deadline approaching",
			Body:     fmt.Sprintf("%q is due %s.", p.Name, p.DueDate.Format("Jan 2 15:04")),
			Priority: domain.PriorityMedium,
			Data:     map[string]any{"projectId": p.ID},
		})
	}
	return nil
}

// WorkloadWarning fires once per day when too many tasks land on today.
func (c *Checks) WorkloadWarning(ctx context.Context) error {
	uid := c.user()
	if uid == "" {
		return nil
	}
	now := c.clock()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	tasks, err := c.tasks.FindTasks(ctx, domain.TaskFilter{
		UserID:      uid,
		ExcludeDone: true,
		DueAfter:    &dayStart,
		DueBefore:   &dayEnd,
	})
	if err != nil {
		return fmt.Errorf("finding today's tasks: %w", err)
	}
	if len(tasks) < workloadThreshold {
		return nil
	}

	c.notifier.Submit(&domain.Notification{
		ID:       fmt.Sprintf("%s-%s", CheckWorkloadWarning, dayStart.Format("2006-01-02")),
		Type:     domain.TypeWorkloadWarning,
		Title:    "Heavy day ahead",
		Body:     fmt.Sprintf("%d tasks are due today. Consider rescheduling some.", len(tasks)),
		Priority: domain.PriorityMedium,
	})
	return nil
}
