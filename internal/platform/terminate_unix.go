//go:build linux || darwin

package platform

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Terminate kills processes matching the exact name via pkill. A missing
// process is not an error.
func Terminate(ctx context.Context, name string) error {
	cmd := exec.CommandContext(ctx, "pkill", "-x", name)
	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		// pkill exits 1 when nothing matched.
		return nil
	}
	return fmt.Errorf("pkill %s: %w", name, err)
}
