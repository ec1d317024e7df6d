// Package bus is the message boundary between the core and the UI layer.
// Commands flow into the core through the app facade; everything the UI
// needs to observe flows out as events published here. The core never
// depends on a concrete UI transport.
package bus

import (
	"sync"

	"github.com/thamdi/focusd/internal/domain"
	"github.com/thamdi/focusd/internal/logger"
)

// Kind identifies an outbound event.
type Kind string

const (
	KindTick                Kind = "timer:tick"
	KindDone                Kind = "timer:done"
	KindPaused              Kind = "timer:paused"
	KindNewNotification     Kind = "notification:new"
	KindNotificationClicked Kind = "notification:clicked"
)

// Event is a single outbound message.
type Event struct {
	Kind    Kind
	Payload any
}

// TickPayload accompanies KindTick and KindPaused events.
type TickPayload struct {
	RemainingMs int64
}

// DonePayload accompanies KindDone events.
type DonePayload struct {
	Mode domain.TimerMode
}

// Bus fans events out to subscribers. Publishing never blocks: a subscriber
// whose buffer is full misses the event (the UI can always re-query state).
type Bus struct {
	log  *logger.Logger
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// New creates an event bus.
func New(log *logger.Logger) *Bus {
	return &Bus{
		log:  log,
		subs: make(map[int]chan Event),
	}
}

// Subscribe registers a new subscriber with the given buffer size and
// returns its channel plus a cancel function. Cancel closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.log.Debug("bus: subscriber %d full, dropping %s", id, ev.Kind)
		}
	}
}
