//go:build linux

// Package platform contains the best-effort, per-OS shims for native
// notifications and process termination.
package platform

import (
	"context"
	"fmt"
	"os/exec"
)

// Notify shows a native notification via notify-send. Urgency is one of
// low, normal, critical.
func Notify(ctx context.Context, title, body, urgency string) error {
	cmd := exec.CommandContext(ctx, "notify-send", "-a", "focusd", "-u", urgency, title, body)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("notify-send: %w", err)
	}
	return nil
}
