package domain

import "time"

// ActivityRecord tracks per-user activity timestamps for the inactivity
// warning. LastNotificationTime moves only when a warning is actually
// dispatched.
type ActivityRecord struct {
	LastActivityTime     time.Time `json:"lastActivityTime"`
	LastNotificationTime time.Time `json:"lastNotificationTime,omitempty"`
}
