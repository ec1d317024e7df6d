//go:build !linux && !darwin

package platform

import "context"

// Terminate is a no-op on platforms without a process-termination shim.
func Terminate(ctx context.Context, name string) error {
	return nil
}
