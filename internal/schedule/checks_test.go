package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/thamdi/focusd/internal/domain"
	"github.com/thamdi/focusd/internal/logger"
	"github.com/thamdi/focusd/internal/storage"
)

// captureSubmitter records submitted notifications.
type captureSubmitter struct {
	mu    sync.Mutex
	items []*domain.Notification
}

func (c *captureSubmitter) Submit(n *domain.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

func (c *captureSubmitter) all() []*domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*domain.Notification, len(c.items))
	copy(out, c.items)
	return out
}

// stubEvaluator satisfies the inactivity hook.
type stubEvaluator struct{ calls int }

func (s *stubEvaluator) Evaluate(context.Context) error {
	s.calls++
	return nil
}

func newTestChecks(t *testing.T, now time.Time, user string) (*Checks, *storage.MemoryStore, *captureSubmitter) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	sub := &captureSubmitter{}
	c := NewChecks(store, sub, &stubEvaluator{}, func() string { return user }, log, func() time.Time { return now })
	return c, store, sub
}

func TestTaskOverdueFlagsPastDueTasks(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c, store, sub := newTestChecks(t, now, "u1")

	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)
	store.PutTask(&domain.Task{ID: "late", UserID: "u1", Title: "Late", Status: domain.TaskTodo, DueDate: &past})
	store.PutTask(&domain.Task{ID: "ontime", UserID: "u1", Title: "On time", Status: domain.TaskTodo, DueDate: &future})
	store.PutTask(&domain.Task{ID: "finished", UserID: "u1", Title: "Done", Status: domain.TaskDone, DueDate: &past})

	if err := c.TaskOverdue(context.Background()); err != nil {
		t.Fatalf("task overdue check: %v", err)
	}

	got := sub.all()
	if len(got) != 1 {
		t.Fatalf("expected one overdue notification, got %d", len(got))
	}
	n := got[0]
	if n.ID != "taskOverdue-late" {
		t.Fatalf("overdue id must be stable per task, got %q", n.ID)
	}
	if n.Type != domain.TypeTaskOverdue || n.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestTaskDeadlineLooksOneDayAhead(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c, store, sub := newTestChecks(t, now, "u1")

	soon := now.Add(12 * time.Hour)
	far := now.Add(3 * 24 * time.Hour)
	store.PutTask(&domain.Task{ID: "soon", UserID: "u1", Title: "Soon", Status: domain.TaskTodo, DueDate: &soon})
	store.PutTask(&domain.Task{ID: "far", UserID: "u1", Title: "Far", Status: domain.TaskTodo, DueDate: &far})

	if err := c.TaskDeadline(context.Background()); err != nil {
		t.Fatalf("task deadline check: %v", err)
	}

	got := sub.all()
	if len(got) != 1 || got[0].ID != "taskDeadline-soon" {
		t.Fatalf("expected only the task due within a day, got %+v", got)
	}
	if got[0].Priority != domain.PriorityMedium {
		t.Fatalf("expected medium priority, got %s", got[0].Priority)
	}
}

func TestProjectDeadlineLooksTwoDaysAhead(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c, store, sub := newTestChecks(t, now, "u1")

	soon := now.Add(36 * time.Hour)
	far := now.Add(5 * 24 * time.Hour)
	past := now.Add(-time.Hour)
	store.PutProject(&domain.Project{ID: "p1", UserID: "u1", Name: "Launch", DueDate: &soon})
	store.PutProject(&domain.Project{ID: "p2", UserID: "u1", Name: "Later", DueDate: &far})
	store.PutProject(&domain.Project{ID: "p3", UserID: "u1", Name: "Shipped", DueDate: &past})
	store.PutProject(&domain.Project{ID: "p4", UserID: "u1", Name: "Open-ended"})

	if err := c.ProjectDeadline(context.Background()); err != nil {
		t.Fatalf("project deadline check: %v", err)
	}

	got := sub.all()
	if len(got) != 1 || got[0].ID != "projectDeadline-p1" {
		t.Fatalf("expected only the project due within two days, got %+v", got)
	}
}

func TestWorkloadWarningFiresAtThreshold(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c, store, sub := newTestChecks(t, now, "u1")

	due := now.Add(time.Hour)
	for i := 0; i < workloadThreshold-1; i++ {
		id := string(rune('a' + i))
		store.PutTask(&domain.Task{ID: id, UserID: "u1", Title: id, Status: domain.TaskTodo, DueDate: &due})
	}

	if err := c.WorkloadWarning(context.Background()); err != nil {
		t.Fatalf("workload check: %v", err)
	}
	if got := sub.all(); len(got) != 0 {
		t.Fatalf("expected no warning below threshold, got %+v", got)
	}

	store.PutTask(&domain.Task{ID: "z", UserID: "u1", Title: "z", Status: domain.TaskTodo, DueDate: &due})
	if err := c.WorkloadWarning(context.Background()); err != nil {
		t.Fatalf("workload check: %v", err)
	}

	got := sub.all()
	if len(got) != 1 {
		t.Fatalf("expected one warning at threshold, got %d", len(got))
	}
	if got[0].ID != "workloadWarning-2026-03-10" {
		t.Fatalf("warning id must be stable per day, got %q", got[0].ID)
	}
}

func TestChecksNoopWithoutUser(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c, store, sub := newTestChecks(t, now, "")

	past := now.Add(-time.Hour)
	store.PutTask(&domain.Task{ID: "late", UserID: "u1", Title: "Late", Status: domain.TaskTodo, DueDate: &past})

	ctx := context.Background()
	if err := c.TaskOverdue(ctx); err != nil {
		t.Fatalf("task overdue: %v", err)
	}
	if err := c.TaskDeadline(ctx); err != nil {
		t.Fatalf("task deadline: %v", err)
	}
	if err := c.ProjectDeadline(ctx); err != nil {
		t.Fatalf("project deadline: %v", err)
	}
	if err := c.WorkloadWarning(ctx); err != nil {
		t.Fatalf("workload: %v", err)
	}
	if got := sub.all(); len(got) != 0 {
		t.Fatalf("expected no notifications without a signed-in user, got %+v", got)
	}
}

func TestRegisterWiresEveryCheck(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c, _, _ := newTestChecks(t, now, "u1")

	log := logger.New(logger.LevelOff, nil)
	s := New(log, WithClock(func() time.Time { return now }))
	c.Register(s, 15*time.Minute)

	s.mu.Lock()
	registered := len(s.checks)
	s.mu.Unlock()
	if registered != 5 {
		t.Fatalf("expected 5 registered checks, got %d", registered)
	}

	s.Tick(context.Background())
	if ev := c.inactivity.(*stubEvaluator); ev.calls != 1 {
		t.Fatalf("expected the inactivity hook to run once, got %d", ev.calls)
	}
}
