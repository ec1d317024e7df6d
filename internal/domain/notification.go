package domain

import "time"

// Priority determines dequeue order in the dispatcher. Higher values are
// delivered first; ties are broken by submission order.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// String returns the priority name used in logs and payloads.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Urgency is the hint passed to the OS notification layer.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// Urgency maps a priority to its OS urgency hint. Everything between low
// and critical is normal.
func (p Priority) Urgency() Urgency {
	switch p {
	case PriorityCritical:
		return UrgencyCritical
	case PriorityLow:
		return UrgencyLow
	default:
		return UrgencyNormal
	}
}

// NotificationType is the category a notification belongs to. Categories can
// be opted out of individually via NotificationConfig.Types.
type NotificationType string

const (
	TypeTaskOverdue       NotificationType = "taskOverdue"
	TypeTaskDeadline      NotificationType = "taskDeadline"
	TypeProjectDeadline   NotificationType = "projectDeadline"
	TypeWorkloadWarning   NotificationType = "workloadWarning"
	TypePomodoroComplete  NotificationType = "pomodoroComplete"
	TypeBreakComplete     NotificationType = "breakComplete"
	TypeAchievement       NotificationType = "achievement"
	TypeSystem            NotificationType = "system"
	TypeInactivityWarning NotificationType = "inactivityWarning"
)

// NotificationTypes lists every known category, in a stable order.
var NotificationTypes = []NotificationType{
	TypeTaskOverdue,
	TypeTaskDeadline,
	TypeProjectDeadline,
	TypeWorkloadWarning,
	TypePomodoroComplete,
	TypeBreakComplete,
	TypeAchievement,
	TypeSystem,
	TypeInactivityWarning,
}

// Notification is a single alert request flowing through the dispatcher.
// The ID is caller-supplied and is the unit of duplicate suppression: once
// an ID has been delivered or acknowledged it is never delivered again.
type Notification struct {
	ID                   string           `json:"id"`
	Type                 NotificationType `json:"type"`
	Title                string           `json:"title"`
	Body                 string           `json:"body"`
	Priority             Priority         `json:"priority"`
	Timestamp            time.Time        `json:"timestamp"`
	RequiresConfirmation bool             `json:"requiresConfirmation"`
	Data                 map[string]any   `json:"data,omitempty"`
}
