// Package storage provides the task/session store and the file-backed
// config/activity persistence.
package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thamdi/focusd/internal/domain"
	"github.com/thamdi/focusd/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.TaskStore    = (*MemoryStore)(nil)
	_ domain.SessionStore = (*MemoryStore)(nil)
)

// MemoryStore is an in-memory task/project/session store. Safe for
// concurrent access. The real application fronts a document store; this
// implementation backs the binary's headless mode and every test.
type MemoryStore struct {
	mu       sync.RWMutex
	tasks    map[string]*domain.Task
	projects map[string]*domain.Project
	sessions []*domain.SessionRecord
	log      *logger.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		tasks:    make(map[string]*domain.Task),
		projects: make(map[string]*domain.Project),
		log:      log,
	}
}

// PutTask inserts or replaces a task.
func (s *MemoryStore) PutTask(task *domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
}

// PutProject inserts or replaces a project.
func (s *MemoryStore) PutProject(p *domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
}

// GetTask retrieves a task by ID.
func (s *MemoryStore) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		s.log.Debug("task not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return task, nil
}

// FindTasks returns tasks matching the filter, ordered by priority
// descending so callers can take the head of the list.
func (s *MemoryStore) FindTasks(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Task
	for _, t := range s.tasks {
		if f.UserID != "" && t.UserID != f.UserID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.ExcludeDone && t.Status == domain.TaskDone {
			continue
		}
		if f.DueBefore != nil {
			if t.DueDate == nil || !t.DueDate.Before(*f.DueBefore) {
				continue
			}
		}
		if f.DueAfter != nil {
			if t.DueDate == nil || !t.DueDate.After(*f.DueAfter) {
				continue
			}
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out, nil
}

// UpdateTaskStatus sets a task's status.
func (s *MemoryStore) UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	task.Status = status
	s.log.Debug("task %s status -> %s", id, status)
	return nil
}

// ListProjects returns all projects for a user.
func (s *MemoryStore) ListProjects(ctx context.Context, userID string) ([]*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Project
	for _, p := range s.projects {
		if userID != "" && p.UserID != userID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// CreateSession appends a completed session record, assigning an ID if the
// caller left it empty.
func (s *MemoryStore) CreateSession(ctx context.Context, rec *domain.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	s.sessions = append(s.sessions, rec)
	s.log.Debug("session recorded: user=%s mode=%s duration=%ds", rec.UserID, rec.Mode, rec.DurationSeconds)
	return nil
}

// CountCompletedFocusSessions counts recorded focus sessions for a task.
func (s *MemoryStore) CountCompletedFocusSessions(ctx context.Context, taskID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.sessions {
		if rec.TaskID == taskID && rec.Mode == domain.ModeFocus {
			count++
		}
	}
	return count, nil
}

// CountFocusSessionsOn counts a user's focus sessions completed on the same
// calendar day as the given time.
func (s *MemoryStore) CountFocusSessionsOn(ctx context.Context, userID string, day time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	y, m, d := day.Date()
	count := 0
	for _, rec := range s.sessions {
		if rec.UserID != userID || rec.Mode != domain.ModeFocus {
			continue
		}
		ry, rm, rd := rec.EndedAt.Date()
		if ry == y && rm == m && rd == d {
			count++
		}
	}
	return count, nil
}

// Sessions returns a copy of all recorded sessions.
func (s *MemoryStore) Sessions() []*domain.SessionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.SessionRecord, len(s.sessions))
	copy(out, s.sessions)
	return out
}
