package domain

import (
	"fmt"
	"time"
)

// QuietHours suppresses notification submission inside a daily window.
// Start and End are "HH:MM" wall-clock times; when Start > End the window
// wraps past midnight (e.g. 22:00–08:00).
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Contains reports whether t falls inside the quiet window. Malformed
// times disable the window rather than blocking all notifications.
func (q QuietHours) Contains(t time.Time) bool {
	if !q.Enabled {
		return false
	}
	start, err := parseClock(q.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(q.End)
	if err != nil {
		return false
	}
	now := t.Hour()*60 + t.Minute()
	if start <= end {
		return now >= start && now < end
	}
	// Overnight wrap.
	return now >= start || now < end
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parsing clock time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return h*60 + m, nil
}

// NotificationConfig is the runtime notification configuration. It is loaded
// once at startup, replaced wholesale on update (copy-on-write), and
// persisted back through the ConfigStore on every update.
type NotificationConfig struct {
	Enabled                  bool                      `json:"enabled"`
	Sound                    bool                      `json:"sound"`
	OSNotifications          bool                      `json:"osNotifications"`
	Types                    map[NotificationType]bool `json:"types"`
	CheckIntervalMinutes     int                       `json:"checkInterval"`
	QuietHours               QuietHours                `json:"quietHours"`
	InactivityThresholdHours float64                   `json:"inactivityThreshold"`
}

// DefaultNotificationConfig returns the documented defaults used when no
// persisted configuration exists.
func DefaultNotificationConfig() *NotificationConfig {
	types := make(map[NotificationType]bool, len(NotificationTypes))
	for _, t := range NotificationTypes {
		types[t] = true
	}
	return &NotificationConfig{
		Enabled:                  true,
		Sound:                    true,
		OSNotifications:          true,
		Types:                    types,
		CheckIntervalMinutes:     30,
		QuietHours:               QuietHours{Enabled: false, Start: "22:00", End: "08:00"},
		InactivityThresholdHours: 4,
	}
}

// TypeEnabled reports whether a category is deliverable. Categories missing
// from the map default to enabled.
func (c *NotificationConfig) TypeEnabled(t NotificationType) bool {
	if c.Types == nil {
		return true
	}
	enabled, ok := c.Types[t]
	if !ok {
		return true
	}
	return enabled
}

// Clone returns a deep copy, used for copy-on-write updates.
func (c *NotificationConfig) Clone() *NotificationConfig {
	out := *c
	out.Types = make(map[NotificationType]bool, len(c.Types))
	for k, v := range c.Types {
		out.Types[k] = v
	}
	return &out
}

// NotificationConfigPatch is a partial configuration update. Nil fields are
// left unchanged; Types entries are merged into the existing map.
type NotificationConfigPatch struct {
	Enabled                  *bool                     `json:"enabled,omitempty"`
	Sound                    *bool                     `json:"sound,omitempty"`
	OSNotifications          *bool                     `json:"osNotifications,omitempty"`
	Types                    map[NotificationType]bool `json:"types,omitempty"`
	CheckIntervalMinutes     *int                      `json:"checkInterval,omitempty"`
	QuietHours               *QuietHours               `json:"quietHours,omitempty"`
	InactivityThresholdHours *float64                  `json:"inactivityThreshold,omitempty"`
}

// Apply merges the patch into a copy of c and returns the copy.
func (p *NotificationConfigPatch) Apply(c *NotificationConfig) *NotificationConfig {
	out := c.Clone()
	if p.Enabled != nil {
		out.Enabled = *p.Enabled
	}
	if p.Sound != nil {
		out.Sound = *p.Sound
	}
	if p.OSNotifications != nil {
		out.OSNotifications = *p.OSNotifications
	}
	for k, v := range p.Types {
		out.Types[k] = v
	}
	if p.CheckIntervalMinutes != nil {
		out.CheckIntervalMinutes = *p.CheckIntervalMinutes
	}
	if p.QuietHours != nil {
		out.QuietHours = *p.QuietHours
	}
	if p.InactivityThresholdHours != nil {
		out.InactivityThresholdHours = *p.InactivityThresholdHours
	}
	return out
}
