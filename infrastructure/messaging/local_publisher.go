// Package messaging holds the in-process event publisher used when no
// EventBridge bus is configured.
package messaging

import (
	"context"
	"sync"

	"observador-backend/domain/events"

	"go.uber.org/zap"
)

// Subscriber reacts to a locally published event. Its error is logged and
// never fails the publisher.
type Subscriber func(ctx context.Context, event events.DomainEvent) error

// LocalPublisher dispatches events to in-process subscribers and keeps the
// most recent ones for inspection.
type LocalPublisher struct {
	mu          sync.RWMutex
	subscribers map[string][]Subscriber
	recent      []events.DomainEvent
	keep        int
	logger      *zap.Logger
}

// NewLocalPublisher creates a publisher remembering the last keep events
func NewLocalPublisher(keep int, logger *zap.Logger) *LocalPublisher {
	return &LocalPublisher{
		subscribers: make(map[string][]Subscriber),
		keep:        keep,
		logger:      logger,
	}
}

// Subscribe registers fn for one event type
func (p *LocalPublisher) Subscribe(eventType string, fn Subscriber) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers[eventType] = append(p.subscribers[eventType], fn)
}

// Publish dispatches a single event
func (p *LocalPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.mu.Lock()
	p.recent = append(p.recent, event)
	if over := len(p.recent) - p.keep; over > 0 {
		p.recent = p.recent[over:]
	}
	subs := p.subscribers[event.GetEventType()]
	p.mu.Unlock()

	for _, fn := range subs {
		if err := fn(ctx, event); err != nil {
			p.logger.Error("Failed to dispatch event locally",
				zap.String("eventType", event.GetEventType()),
				zap.String("aggregateID", event.GetAggregateID()),
				zap.Error(err))
		}
	}
	p.logger.Debug("Event dispatched locally",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()))
	return nil
}

// PublishBatch dispatches events in order
func (p *LocalPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	for _, event := range batch {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Recent returns a copy of the remembered events, oldest first
func (p *LocalPublisher) Recent() []events.DomainEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]events.DomainEvent(nil), p.recent...)
}
