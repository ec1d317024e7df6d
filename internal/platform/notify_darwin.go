//go:build darwin

package platform

import (
	"context"
	"fmt"
	"os/exec"
)

// Notify shows a native notification via osascript. macOS has no urgency
// levels; the hint is ignored.
func Notify(ctx context.Context, title, body, urgency string) error {
	script := fmt.Sprintf("display notification %q with title %q", body, title)
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("osascript: %w", err)
	}
	return nil
}
