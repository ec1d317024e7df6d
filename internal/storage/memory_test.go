package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thamdi/focusd/internal/domain"
	"github.com/thamdi/focusd/internal/logger"
)

func TestMemoryStoreGetTask(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	store.PutTask(&domain.Task{ID: "t1", UserID: "u1", Title: "One"})

	task, err := store.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if task.Title != "One" {
		t.Fatalf("unexpected task: %+v", task)
	}

	if _, err := store.GetTask(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreFindTasksFilters(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	early := now.Add(-time.Hour)
	late := now.Add(time.Hour)

	store.PutTask(&domain.Task{ID: "a", UserID: "u1", Title: "A", Status: domain.TaskTodo, Priority: 1, DueDate: &early})
	store.PutTask(&domain.Task{ID: "b", UserID: "u1", Title: "B", Status: domain.TaskDone, Priority: 9, DueDate: &early})
	store.PutTask(&domain.Task{ID: "c", UserID: "u1", Title: "C", Status: domain.TaskTodo, Priority: 5, DueDate: &late})
	store.PutTask(&domain.Task{ID: "d", UserID: "u2", Title: "D", Status: domain.TaskTodo, Priority: 7, DueDate: &early})

	got, err := store.FindTasks(ctx, domain.TaskFilter{UserID: "u1", ExcludeDone: true})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	// Priority descending.
	if got[0].ID != "c" || got[1].ID != "a" {
		t.Fatalf("expected priority order [c a], got [%s %s]", got[0].ID, got[1].ID)
	}

	got, err = store.FindTasks(ctx, domain.TaskFilter{UserID: "u1", ExcludeDone: true, DueBefore: &now})
	if err != nil {
		t.Fatalf("find due-before: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected only the overdue task, got %+v", got)
	}

	got, err = store.FindTasks(ctx, domain.TaskFilter{UserID: "u1", DueAfter: &now})
	if err != nil {
		t.Fatalf("find due-after: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c" {
		t.Fatalf("expected only the upcoming task, got %+v", got)
	}
}

func TestMemoryStoreUpdateTaskStatus(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	store.PutTask(&domain.Task{ID: "t1", Status: domain.TaskTodo})
	if err := store.UpdateTaskStatus(ctx, "t1", domain.TaskDone); err != nil {
		t.Fatalf("update: %v", err)
	}
	task, _ := store.GetTask(ctx, "t1")
	if task.Status != domain.TaskDone {
		t.Fatalf("expected done, got %s", task.Status)
	}

	if err := store.UpdateTaskStatus(ctx, "missing", domain.TaskDone); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreSessionCounts(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	today := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	yesterday := today.Add(-24 * time.Hour)

	put := func(taskID string, mode domain.TimerMode, ended time.Time) {
		if err := store.CreateSession(ctx, &domain.SessionRecord{UserID: "u1", TaskID: taskID, Mode: mode, EndedAt: ended}); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}
	put("t1", domain.ModeFocus, today)
	put("t1", domain.ModeFocus, yesterday)
	put("t1", domain.ModeBreak, today)
	put("t2", domain.ModeFocus, today)

	count, err := store.CountCompletedFocusSessions(ctx, "t1")
	if err != nil {
		t.Fatalf("count by task: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 focus sessions for t1, got %d", count)
	}

	count, err = store.CountFocusSessionsOn(ctx, "u1", today)
	if err != nil {
		t.Fatalf("count by day: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 focus sessions today, got %d", count)
	}
}

func TestMemoryStoreAssignsSessionIDs(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)

	rec := &domain.SessionRecord{UserID: "u1", Mode: domain.ModeFocus}
	if err := store.CreateSession(context.Background(), rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected an assigned session id")
	}
}
