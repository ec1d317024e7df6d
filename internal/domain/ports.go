package domain

import (
	"context"
	"time"
)

// TaskStore provides the task and project queries the core needs.
// Implementations can be in-memory, SQLite, or API-backed.
type TaskStore interface {
	GetTask(ctx context.Context, id string) (*Task, error)
	FindTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status TaskStatus) error
	ListProjects(ctx context.Context, userID string) ([]*Project, error)
	CountCompletedFocusSessions(ctx context.Context, taskID string) (int, error)
}

// SessionStore persists completed countdown sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, rec *SessionRecord) error
	CountFocusSessionsOn(ctx context.Context, userID string, day time.Time) (int, error)
}

// ConfigStore persists the runtime notification configuration. Load returns
// (nil, nil) when nothing has been persisted yet.
type ConfigStore interface {
	LoadNotificationConfig() (*NotificationConfig, error)
	SaveNotificationConfig(cfg *NotificationConfig) error
}

// ActivityStore persists per-user activity state. Load returns (nil, nil)
// when no state exists for the user.
type ActivityStore interface {
	LoadActivityState(userID string) (*ActivityRecord, error)
	SaveActivityState(userID string, rec *ActivityRecord) error
}

// ConfigSource yields the current notification configuration snapshot.
// Each call may observe a newer config; a snapshot is never mutated.
type ConfigSource interface {
	Notification() *NotificationConfig
}

// NotificationSubmitter is the single entry point producers use to request
// a notification. Submission never blocks on delivery.
type NotificationSubmitter interface {
	Submit(n *Notification)
}

// DeliverySink delivers an accepted notification to the user. Both paths are
// best-effort; errors are logged by the dispatcher and never retried.
type DeliverySink interface {
	DeliverToUI(ctx context.Context, n *Notification) error
	DeliverToOS(ctx context.Context, n *Notification, urgency Urgency, sound bool) error
}

// ProcessBlocker supports the focus-mode distraction blocker: enumerate the
// user's blocked application names and terminate matching processes.
type ProcessBlocker interface {
	ListBlockedAppNames(ctx context.Context, userID string) ([]string, error)
	TerminateProcessByName(ctx context.Context, name string) error
}
