package messaging

import (
	"context"

	"observador-backend/application/ports"
	"observador-backend/domain/events"
)

// SnapshotCounter receives one call per recorded snapshot
type SnapshotCounter interface {
	RecordSnapshot(reason string)
}

// MeteredPublisher counts snapshot events on their way to the real publisher.
// Counting happens even when publishing fails; the snapshot is already stored.
type MeteredPublisher struct {
	next    ports.EventPublisher
	counter SnapshotCounter
}

// NewMeteredPublisher wraps next
func NewMeteredPublisher(next ports.EventPublisher, counter SnapshotCounter) *MeteredPublisher {
	return &MeteredPublisher{next: next, counter: counter}
}

// Publish counts and forwards a single event
func (p *MeteredPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.observe(event)
	return p.next.Publish(ctx, event)
}

// PublishBatch counts and forwards a batch
func (p *MeteredPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	for _, event := range batch {
		p.observe(event)
	}
	return p.next.PublishBatch(ctx, batch)
}

func (p *MeteredPublisher) observe(event events.DomainEvent) {
	switch e := event.(type) {
	case events.SnapshotRecorded:
		p.counter.RecordSnapshot(e.TriggerReason)
	case *events.SnapshotRecorded:
		p.counter.RecordSnapshot(e.TriggerReason)
	}
}
