package services

import (
	"context"
	"fmt"
	"time"

	"observador-backend/application/ports"
	"observador-backend/domain/core/aggregates"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/events"
	"observador-backend/domain/services/snapshots"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotRecorder appends snapshots for graph nodes whose state moved
// enough since the last one. It is called directly after writes and by the
// snapshot-recorder Lambda.
type SnapshotRecorder struct {
	snapshotRepo ports.SnapshotRepository
	publisher    ports.EventPublisher
	configs      ports.MetricsConfigProvider
	logger       *zap.Logger
	now          func() time.Time
	newID        func() string
}

// NewSnapshotRecorder creates a new recorder
func NewSnapshotRecorder(
	snapshotRepo ports.SnapshotRepository,
	publisher ports.EventPublisher,
	configs ports.MetricsConfigProvider,
	logger *zap.Logger,
) *SnapshotRecorder {
	return &SnapshotRecorder{
		snapshotRepo: snapshotRepo,
		publisher:    publisher,
		configs:      configs,
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// RecordGraph runs the snapshot decision for every entity node in graph
// and returns the snapshots written. The observer node is never recorded.
func (r *SnapshotRecorder) RecordGraph(ctx context.Context, graph *aggregates.SystemGraph) ([]*entities.Snapshot, error) {
	return r.record(ctx, graph.UserID(), graph.EntityNodes())
}

// RecordNode runs the snapshot decision for a single node
func (r *SnapshotRecorder) RecordNode(ctx context.Context, userID string, node aggregates.Node) (*entities.Snapshot, error) {
	written, err := r.record(ctx, userID, []aggregates.Node{node})
	if err != nil || len(written) == 0 {
		return nil, err
	}
	return written[0], nil
}

func (r *SnapshotRecorder) record(ctx context.Context, userID string, nodes []aggregates.Node) ([]*entities.Snapshot, error) {
	detector := snapshots.NewDetector(r.configs.Current())
	now := r.now()

	var written []*entities.Snapshot
	var pending []events.DomainEvent
	for _, node := range nodes {
		proposal := snapshots.Proposal{
			UserID:      userID,
			NodeID:      node.ID,
			NodeLabel:   node.Label,
			Energy:      node.Energy,
			Coherence:   node.Coherence,
			Connections: node.Connections,
		}

		last, err := r.snapshotRepo.Latest(ctx, userID, node.ID)
		if err != nil {
			return written, fmt.Errorf("failed to load latest snapshot for %s: %w", node.ID, err)
		}

		ok, reason := detector.ShouldSnapshot(last, proposal)
		if !ok {
			continue
		}

		snapshot := snapshots.NewSnapshot(r.newID(), proposal, reason, now)
		if err := r.snapshotRepo.Save(ctx, snapshot); err != nil {
			return written, fmt.Errorf("failed to save snapshot for %s: %w", node.ID, err)
		}
		written = append(written, snapshot)
		pending = append(pending, events.NewSnapshotRecorded(
			userID, snapshot.ID, snapshot.NodeID, reason,
			snapshot.Energy, snapshot.Coherence, snapshot.Connections, now,
		))
	}

	if len(pending) > 0 {
		// Snapshots are already stored; a lost notification is not worth failing the write
		if err := r.publisher.PublishBatch(ctx, pending); err != nil {
			r.logger.Warn("Failed to publish snapshot events",
				zap.String("userID", userID),
				zap.Int("count", len(pending)),
				zap.Error(err),
			)
		}
	}

	r.logger.Debug("Snapshot sweep finished",
		zap.String("userID", userID),
		zap.Int("nodes", len(nodes)),
		zap.Int("written", len(written)),
	)
	return written, nil
}
