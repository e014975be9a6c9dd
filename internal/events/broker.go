package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tallerhub/taller-status/internal/core"
	"github.com/tallerhub/taller-status/internal/metrics"
)

// subscription represents a single subscriber channel with its filter.
type subscription struct {
	ch        chan *core.StatusEvent
	filter    func(*core.StatusEvent) bool
	closeOnce sync.Once
}

func (s *subscription) close() {
	s.closeOnce.Do(func() { close(s.ch) })
}

// Broker implements core.EventPublisher and core.EventSubscriber with
// in-memory fan-out. Slow subscribers lose events rather than blocking
// publishers.
type Broker struct {
	mu     sync.RWMutex
	subs   map[*subscription]struct{}
	closed bool
	logger *slog.Logger
}

// NewBroker creates a new in-memory Broker.
func NewBroker(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		subs:   make(map[*subscription]struct{}),
		logger: logger,
	}
}

// PublishStatusEvent publishes an event to all matching subscribers. The
// broker metric counts "ok" only when at least one subscriber received the
// event, "dropped" once per full subscriber and "unrouted" when nobody matched.
func (b *Broker) PublishStatusEvent(_ context.Context, event *core.StatusEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	matched, delivered := 0, 0
	for sub := range b.subs {
		if sub.filter == nil || sub.filter(event) {
			matched++
			select {
			case sub.ch <- event:
				delivered++
			default:
				metrics.EventsPublished.WithLabelValues("broker", "dropped").Inc()
				b.logger.Warn("dropping event, subscriber channel full",
					"entity_id", event.EntityID, "event", event.EventType)
			}
		}
	}

	switch {
	case delivered > 0:
		metrics.EventsPublished.WithLabelValues("broker", "ok").Inc()
	case matched == 0:
		metrics.EventsPublished.WithLabelValues("broker", "unrouted").Inc()
	}
	return nil
}

// SubscribeEntity subscribes to events for a specific entity.
func (b *Broker) SubscribeEntity(entityID string) (<-chan *core.StatusEvent, func(), error) {
	return b.subscribe(func(e *core.StatusEvent) bool {
		return e.EntityID == entityID
	})
}

// SubscribeMachine subscribes to events for every entity of one machine.
func (b *Broker) SubscribeMachine(machine string) (<-chan *core.StatusEvent, func(), error) {
	return b.subscribe(func(e *core.StatusEvent) bool {
		return e.Machine == machine
	})
}

// SubscribeAll subscribes to all events.
func (b *Broker) SubscribeAll() (<-chan *core.StatusEvent, func(), error) {
	return b.subscribe(nil)
}

func (b *Broker) subscribe(filter func(*core.StatusEvent) bool) (<-chan *core.StatusEvent, func(), error) {
	sub := &subscription{ch: make(chan *core.StatusEvent, 64), filter: filter}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.close()
		return sub.ch, func() {}, nil
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		delete(b.subs, sub)
		b.mu.Unlock()
		sub.close()
	}

	return sub.ch, unsubscribe, nil
}

// Close shuts down the broker and closes every subscriber channel.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for sub := range b.subs {
		sub.close()
	}
	b.subs = make(map[*subscription]struct{})
	return nil
}
