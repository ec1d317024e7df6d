package notify

import (
	"context"

	"github.com/thamdi/focusd/internal/domain"
	"github.com/thamdi/focusd/internal/logger"
	"github.com/thamdi/focusd/internal/platform"
)

// Compile-time interface check.
var _ domain.DeliverySink = (*Sink)(nil)

// Sink is the production delivery sink: the UI path appends to the
// notification center, the OS path shells out to the platform shim and
// optionally plays the chime. Player may be nil when audio is unavailable.
type Sink struct {
	center *Center
	player *Player
	log    *logger.Logger
}

// NewSink creates a delivery sink.
func NewSink(center *Center, player *Player, log *logger.Logger) *Sink {
	return &Sink{center: center, player: player, log: log}
}

// DeliverToUI pushes the notification onto the in-app list.
func (s *Sink) DeliverToUI(ctx context.Context, n *domain.Notification) error {
	s.center.Add(n)
	return nil
}

// DeliverToOS raises a native alert and, when asked, plays the chime.
// Chime failures are logged here rather than surfaced: the alert itself is
// the deliverable.
func (s *Sink) DeliverToOS(ctx context.Context, n *domain.Notification, urgency domain.Urgency, sound bool) error {
	if sound && s.player != nil {
		go func() {
			if err := s.player.Chime(); err != nil {
				s.log.Error("notification chime: %v", err)
			}
		}()
	}
	return platform.Notify(ctx, n.Title, n.Body, string(urgency))
}
