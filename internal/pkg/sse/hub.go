package sse

import (
	"sync"
)

// StreamAll receives every event regardless of the employee it concerns.
const StreamAll = "*"

// Event is a live attendance change pushed to dashboard subscribers.
type Event struct {
	Stream string
	Event  string
	Data   interface{}
}

// Hub fans events out to subscribers grouped by stream (an employee id or StreamAll).
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	bufferSize  int
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		bufferSize:  16,
	}
}

// Subscribe registers a subscriber on stream and returns its channel and cleanup function
func (h *Hub) Subscribe(stream string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.bufferSize)

	if h.subscribers[stream] == nil {
		h.subscribers[stream] = make(map[chan Event]struct{})
	}
	h.subscribers[stream][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[stream], ch)
			close(ch)
			if len(h.subscribers[stream]) == 0 {
				delete(h.subscribers, stream)
			}
		})
	}

	return ch, cleanup
}

// Publish delivers the event to subscribers of event.Stream and of StreamAll.
// Slow subscribers miss events instead of blocking the publisher.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.deliver(h.subscribers[event.Stream], event)
	if event.Stream != StreamAll {
		h.deliver(h.subscribers[StreamAll], event)
	}
}

func (h *Hub) deliver(subs map[chan Event]struct{}, event Event) {
	for ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers of a stream
func (h *Hub) SubscriberCount(stream string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[stream])
}

// TotalSubscribers returns the number of active subscribers across all streams
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
