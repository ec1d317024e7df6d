package notify

import (
	"sync"
	"time"

	"github.com/thamdi/focusd/internal/bus"
	"github.com/thamdi/focusd/internal/domain"
	"github.com/thamdi/focusd/internal/logger"
)

// Item is a delivered notification in the in-app list.
type Item struct {
	*domain.Notification
	DeliveredAt time.Time
	Read        bool
}

// Center is the in-app notification list the UI renders. New items arrive
// unread; clicking marks them read and surfaces the click to the UI layer.
type Center struct {
	b   *bus.Bus
	log *logger.Logger

	mu    sync.Mutex
	items []*Item
}

// NewCenter creates an empty notification center.
func NewCenter(b *bus.Bus, log *logger.Logger) *Center {
	return &Center{b: b, log: log}
}

// Add appends a delivered notification and announces it on the bus.
func (c *Center) Add(n *domain.Notification) {
	item := &Item{Notification: n, DeliveredAt: time.Now()}

	c.mu.Lock()
	c.items = append(c.items, item)
	c.mu.Unlock()

	c.b.Publish(bus.Event{Kind: bus.KindNewNotification, Payload: n})
}

// List returns a snapshot of all items, newest last.
func (c *Center) List() []*Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Item, len(c.items))
	copy(out, c.items)
	return out
}

// Unread returns the number of unread items.
func (c *Center) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, item := range c.items {
		if !item.Read {
			count++
		}
	}
	return count
}

// Click marks an item read and publishes the click event. Unknown ids are
// ignored.
func (c *Center) Click(id string) {
	c.mu.Lock()
	var clicked *domain.Notification
	for _, item := range c.items {
		if item.ID == id {
			item.Read = true
			clicked = item.Notification
			break
		}
	}
	c.mu.Unlock()

	if clicked == nil {
		c.log.Debug("click on unknown notification %q", id)
		return
	}
	c.b.Publish(bus.Event{Kind: bus.KindNotificationClicked, Payload: clicked})
}
