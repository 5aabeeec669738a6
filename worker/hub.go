package worker

import (
	"sync"

	"github.com/google/uuid"
)

// Event is pushed to websocket subscribers.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Hub fans events out to the subscribers of a topic, e.g. "inbox:7".
// A subscriber that is not keeping up misses events rather than blocking
// the publisher.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[string]chan Event
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[string]chan Event)}
}

// Subscribe returns the event channel and a func that unsubscribes and
// closes it.
func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	id := uuid.NewString()
	ch := make(chan Event, 8)

	h.mu.Lock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[string]chan Event)
	}
	h.topics[topic][id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.topics[topic], id)
			if len(h.topics[topic]) == 0 {
				delete(h.topics, topic)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers event to every current subscriber of topic and reports
// how many received it.
func (h *Hub) Publish(topic string, event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, ch := range h.topics[topic] {
		select {
		case ch <- event:
			delivered++
		default:
		}
	}
	return delivered
}

func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
