package events

import (
	"sync"
	"time"

	"github.com/alfagnish/users-gateway/internal/users"
	"github.com/google/uuid"
)

// Type names the kind of change a user event describes.
type Type string

const (
	UserCreated Type = "user.created"
	UserUpdated Type = "user.updated"
	UserDeleted Type = "user.deleted"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 16

// Event is a single change to the user collection.
type Event struct {
	Type Type       `json:"type"`
	User users.User `json:"user"`
	At   time.Time  `json:"at"`
}

// Subscription is a live feed of events. Receive from C until it is closed.
type Subscription struct {
	ID string
	C  <-chan Event

	ch chan Event
}

// Hub fans events out to subscribers. All public methods are safe for
// concurrent use.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]*Subscription
	buffer  int
	dropped uint64
	closed  bool
}

// NewHub creates a hub whose subscribers buffer up to buffer events.
// A buffer <= 0 uses DefaultBuffer.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[string]*Subscription),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber. Subscribing to a closed hub returns
// a subscription whose channel is already closed.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{ID: uuid.New().String(), C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(ch)
		return sub
	}
	h.subs[sub.ID] = sub
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. Returns false
// if the id is unknown.
func (h *Hub) Unsubscribe(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[id]
	if !ok {
		return false
	}
	delete(h.subs, id)
	close(sub.ch)
	return true
}

// Publish delivers an event to every subscriber. A subscriber whose buffer
// is full misses the event; Publish never blocks.
func (h *Hub) Publish(typ Type, u users.User) {
	evt := Event{Type: typ, User: u, At: time.Now().UTC()}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		select {
		case sub.ch <- evt:
		default:
			h.dropped++
		}
	}
}

// Count returns the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber
// was full.
func (h *Hub) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Close closes every subscriber channel. Later publishes are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
}
