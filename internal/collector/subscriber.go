package collector

import (
	"sync"

	"github.com/google/uuid"
)

const defaultSubscriberQueue = 5000

// Hub fans published events out to live subscribers. Each subscriber holds
// a bounded queue; on overflow the subscriber is marked dead and removed
// rather than blocking the publisher. Enrollment is additive and takes
// effect immediately; a dead subscriber is detected lazily, when a send
// to it finds its queue full. A subscriber only sees events published
// after it enrolled; no replay is offered.
type Hub struct {
	mu    sync.Mutex
	queue int
	subs  map[string]chan Event
}

// NewHub creates a Hub whose subscriber queues hold up to queue events.
// Pass 0 to use the default of 5000.
func NewHub(queue int) *Hub {
	if queue <= 0 {
		queue = defaultSubscriberQueue
	}
	return &Hub{queue: queue, subs: make(map[string]chan Event)}
}

// Subscribe enrolls a new subscriber and returns its id, receive channel,
// and an Unsubscribe function the caller must call when done (e.g. on
// client disconnect).
func (h *Hub) Subscribe() (id string, ch <-chan Event, unsubscribe func()) {
	subID := uuid.NewString()
	c := make(chan Event, h.queue)

	h.mu.Lock()
	h.subs[subID] = c
	h.mu.Unlock()

	return subID, c, func() { h.remove(subID) }
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(c)
	}
}

// Publish offers ev to every subscriber with a non-blocking send. A
// subscriber whose queue is full is considered dead and removed.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.subs {
		select {
		case c <- ev:
		default:
			delete(h.subs, id)
			close(c)
		}
	}
}

// SubscriberCount reports the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
