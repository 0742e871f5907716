// Package realtime fans out push events to live subscribers. Every view
// subscription from the original backend maps to a hub topic here: a
// subscriber joins a topic, receives a full snapshot, then a fresh
// snapshot event after every relevant mutation.
package realtime

import (
	"sync"

	"github.com/sourpow/tbucks-server/internal/logger"
	"github.com/sourpow/tbucks-server/internal/model"
)

var _ model.EventPublisher = (*Hub)(nil)

// Hub routes published events to topic subscribers.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscriber]struct{}
	logger *logger.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		topics: make(map[string]map[*Subscriber]struct{}),
		logger: logger,
	}
}

// Subscriber is one consumer's set of topic subscriptions. The owning
// connection must call Close on teardown to release them.
type Subscriber struct {
	hub    *Hub
	events chan model.Event
	once   sync.Once
}

const subscriberBuffer = 16

// NewSubscriber registers a consumer with the hub. The returned
// subscriber is joined to no topics.
func (h *Hub) NewSubscriber() *Subscriber {
	return &Subscriber{
		hub:    h,
		events: make(chan model.Event, subscriberBuffer),
	}
}

// Events is the stream of pushed events. It is closed when the
// subscriber is closed or evicted as a slow consumer.
func (s *Subscriber) Events() <-chan model.Event {
	return s.events
}

// Join subscribes s to a topic.
func (s *Subscriber) Join(topic string) {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	subs, ok := s.hub.topics[topic]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		s.hub.topics[topic] = subs
	}
	subs[s] = struct{}{}
}

// Leave unsubscribes s from a topic.
func (s *Subscriber) Leave(topic string) {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.hub.removeLocked(topic, s)
}

// Close releases every subscription and closes the event stream.
func (s *Subscriber) Close() {
	s.hub.mu.Lock()
	for topic := range s.hub.topics {
		s.hub.removeLocked(topic, s)
	}
	s.hub.mu.Unlock()

	s.once.Do(func() { close(s.events) })
}

func (h *Hub) removeLocked(topic string, s *Subscriber) {
	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// Publish sends the event to every subscriber of its topic. A subscriber
// whose buffer is full is evicted rather than allowed to block the
// publisher; the consumer observes a closed channel and reconnects.
func (h *Hub) Publish(event model.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var evicted []*Subscriber
	for s := range h.topics[event.Topic] {
		select {
		case s.events <- event:
		default:
			evicted = append(evicted, s)
		}
	}

	for _, s := range evicted {
		for topic := range h.topics {
			h.removeLocked(topic, s)
		}
		s.once.Do(func() { close(s.events) })
		h.logger.Info("evicted slow realtime subscriber", "topic", event.Topic)
	}
}
