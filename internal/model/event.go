package model

import "github.com/google/uuid"

// Event topics. User- and order-scoped topics append "/<user id>".
const (
	TopicItems  = "items"
	TopicOrders = "orders"
	TopicUsers  = "users"
)

// TopicUserOrders is the per-user projection of the order collection.
func TopicUserOrders(userID uuid.UUID) string {
	return TopicOrders + "/" + userID.String()
}

// TopicUser is a single user's own record (balance updates).
func TopicUser(userID uuid.UUID) string {
	return TopicUsers + "/" + userID.String()
}

// EventType describes what changed on a topic.
type EventType string

const (
	// EventSnapshot carries the full current state of a topic. Sent on
	// subscribe and, as the original backend did, on every change.
	EventSnapshot EventType = "snapshot"
	EventUnlock   EventType = "unlock"
	EventError    EventType = "error"
)

// Event is a single realtime push message.
type Event struct {
	Topic string    `json:"topic,omitempty"`
	Type  EventType `json:"type"`
	Data  any       `json:"data,omitempty"`
}

// EventPublisher fans out events to live subscribers. Implementations
// must not block the caller on slow consumers.
type EventPublisher interface {
	Publish(event Event)
}
