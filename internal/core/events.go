package core

import (
	"context"
	"time"
)

// Event types for status notifications.
const (
	EventStatusChanged  = "status.changed"
	EventConfigReloaded = "config.reloaded"
)

// StatusEvent records one accepted status change.
type StatusEvent struct {
	ID         string `json:"id"`
	EventType  string `json:"event"`
	Machine    string `json:"machine"`
	EntityID   string `json:"entity_id"`
	From       int    `json:"from"`
	To         int    `json:"to"`
	FromName   string `json:"from_name,omitempty"`
	ToName     string `json:"to_name,omitempty"`
	Note       string `json:"note,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// NewStatusChangedEvent creates a status.changed event, resolving names
// through the engine.
func NewStatusChangedEvent(e *Engine, entityID string, from, to int) *StatusEvent {
	return &StatusEvent{
		ID:         NewUUIDv7(),
		EventType:  EventStatusChanged,
		Machine:    e.Name(),
		EntityID:   entityID,
		From:       from,
		To:         to,
		FromName:   e.StatusName(from),
		ToName:     e.StatusName(to),
		OccurredAt: FormatTime(time.Now()),
	}
}

// EventPublisher delivers status events to interested parties.
type EventPublisher interface {
	// PublishStatusEvent publishes an event. Implementations must not block
	// on slow consumers.
	PublishStatusEvent(ctx context.Context, event *StatusEvent) error
	// Close shuts down the publisher.
	Close() error
}

// EventSubscriber lets callers follow status events as they happen.
type EventSubscriber interface {
	// SubscribeEntity subscribes to events for one entity.
	SubscribeEntity(entityID string) (<-chan *StatusEvent, func(), error)
	// SubscribeMachine subscribes to events for one machine.
	SubscribeMachine(machine string) (<-chan *StatusEvent, func(), error)
	// SubscribeAll subscribes to all events.
	SubscribeAll() (<-chan *StatusEvent, func(), error)
}
