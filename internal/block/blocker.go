// Package block implements the focus-mode distraction blocker: a per-user
// list of application names the countdown engine terminates while a focus
// session runs.
package block

import (
	"context"
	"sync"

	"github.com/thamdi/focusd/internal/domain"
	"github.com/thamdi/focusd/internal/logger"
	"github.com/thamdi/focusd/internal/platform"
)

// Compile-time interface check.
var _ domain.ProcessBlocker = (*Blocker)(nil)

// Blocker holds each user's blocked-app list and terminates matching
// processes through the platform shim.
type Blocker struct {
	log *logger.Logger
	mu  sync.RWMutex
	// blocked app names per user
	apps map[string][]string
}

// New creates an empty blocker.
func New(log *logger.Logger) *Blocker {
	return &Blocker{log: log, apps: make(map[string][]string)}
}

// SetBlockedApps replaces a user's blocked-app list.
func (b *Blocker) SetBlockedApps(userID string, names []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.apps[userID] = append([]string(nil), names...)
}

// ListBlockedAppNames returns a user's blocked-app list.
func (b *Blocker) ListBlockedAppNames(ctx context.Context, userID string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.apps[userID]...), nil
}

// TerminateProcessByName kills processes matching the name. Best-effort.
func (b *Blocker) TerminateProcessByName(ctx context.Context, name string) error {
	b.log.Debug("terminating blocked process %q", name)
	return platform.Terminate(ctx, name)
}
