package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"observador-backend/domain/core/valueobjects"
	"observador-backend/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalPublisher_DispatchesToSubscribers(t *testing.T) {
	// Arrange
	publisher := NewLocalPublisher(2, zap.NewNop())
	var got []string
	publisher.Subscribe(events.TypeEntitySaved, func(ctx context.Context, e events.DomainEvent) error {
		got = append(got, e.GetAggregateID())
		return nil
	})
	publisher.Subscribe(events.TypeEntitySaved, func(ctx context.Context, e events.DomainEvent) error {
		return errors.New("subscriber failure is only logged")
	})

	now := time.Now()
	batch := []events.DomainEvent{
		events.NewEntitySaved("u1", valueobjects.NewNodeID(valueobjects.NodeTypeProject, "p1"), 0.5, 0.5, now),
		events.NewDailyEntrySaved("u1", "e1", now, 1, 1, now),
		events.NewEntitySaved("u1", valueobjects.NewNodeID(valueobjects.NodeTypeProject, "p2"), 0.5, 0.5, now),
	}

	// Act
	err := publisher.PublishBatch(context.Background(), batch)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"project_p1", "project_p2"}, got)
	recent := publisher.Recent()
	require.Len(t, recent, 2, "only the last two are kept")
	assert.Equal(t, events.TypeDailyEntrySaved, recent[0].GetEventType())
}

type countingRecorder struct{ reasons []string }

func (c *countingRecorder) RecordSnapshot(reason string) { c.reasons = append(c.reasons, reason) }

func TestMeteredPublisher_CountsSnapshots(t *testing.T) {
	// Arrange
	local := NewLocalPublisher(10, zap.NewNop())
	counter := &countingRecorder{}
	publisher := NewMeteredPublisher(local, counter)
	now := time.Now()

	// Act
	require.NoError(t, publisher.Publish(context.Background(),
		events.NewSnapshotRecorded("u1", "s1", "project_p1", "initial", 0.5, 0.5, 0, now)))
	require.NoError(t, publisher.PublishBatch(context.Background(), []events.DomainEvent{
		events.NewEntitySaved("u1", valueobjects.NewNodeID(valueobjects.NodeTypeProject, "p1"), 0.5, 0.5, now),
		events.NewSnapshotRecorded("u1", "s2", "project_p1", "energy_change", 0.7, 0.5, 0, now),
	}))

	// Assert
	assert.Equal(t, []string{"initial", "energy_change"}, counter.reasons)
	assert.Len(t, local.Recent(), 3)
}
