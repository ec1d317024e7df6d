//go:build !linux && !darwin

package platform

import "context"

// Notify is a no-op on platforms without a native notification shim.
func Notify(ctx context.Context, title, body, urgency string) error {
	return nil
}
