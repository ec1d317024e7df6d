package domain

import "time"

// TaskStatus tracks where a task sits in its lifecycle.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskDone       TaskStatus = "done"
)

// Task is the slice of the task record this core needs: enough to recompute
// status after a focus session and to drive the periodic checks.
type Task struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	Title             string     `json:"title"`
	Status            TaskStatus `json:"status"`
	Priority          int        `json:"priority"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	EstimatedSessions int        `json:"estimatedSessions"`
}

// Project groups tasks under a shared deadline.
type Project struct {
	ID      string     `json:"id"`
	UserID  string     `json:"userId"`
	Name    string     `json:"name"`
	DueDate *time.Time `json:"dueDate,omitempty"`
}

// TaskFilter narrows a task query. Zero fields are ignored.
type TaskFilter struct {
	UserID      string
	Status      TaskStatus
	ExcludeDone bool
	DueBefore   *time.Time
	DueAfter    *time.Time
}
