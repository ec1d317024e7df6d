package domain

import "time"

// TimerMode is the countdown phase.
type TimerMode string

const (
	ModeFocus TimerMode = "focus"
	ModeBreak TimerMode = "break"
)

// SessionRecord is the durable record appended when a countdown completes
// naturally. Duration is wall-clock seconds between start and completion.
type SessionRecord struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	TaskID          string    `json:"taskId,omitempty"`
	Mode            TimerMode `json:"mode"`
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt"`
	DurationSeconds int       `json:"duration"`
}
