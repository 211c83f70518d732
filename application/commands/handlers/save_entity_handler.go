package handlers

import (
	"context"
	"fmt"
	"time"

	"observador-backend/application/commands"
	"observador-backend/application/ports"
	"observador-backend/application/services"
	"observador-backend/domain/core/validators"
	"observador-backend/domain/events"
	pkgerrors "observador-backend/pkg/errors"

	"go.uber.org/zap"
)

// SaveEntityHandler persists any of the four entity kinds, then refreshes
// the user's graph so snapshots and the published event carry the derived
// metrics of the saved node.
type SaveEntityHandler struct {
	entityRepo ports.EntityRepository
	analyzer   *services.SystemAnalyzer
	recorder   *services.SnapshotRecorder
	publisher  ports.EventPublisher
	validator  *validators.EntityValidator
	logger     *zap.Logger
	now        func() time.Time
}

// NewSaveEntityHandler creates a new handler instance
func NewSaveEntityHandler(
	entityRepo ports.EntityRepository,
	analyzer *services.SystemAnalyzer,
	recorder *services.SnapshotRecorder,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *SaveEntityHandler {
	return &SaveEntityHandler{
		entityRepo: entityRepo,
		analyzer:   analyzer,
		recorder:   recorder,
		publisher:  publisher,
		validator:  validators.NewEntityValidator(),
		logger:     logger,
		now:        time.Now,
	}
}

// Handle executes a save command
func (h *SaveEntityHandler) Handle(ctx context.Context, cmd commands.EntityCommand) error {
	entity := cmd.ToEntity()
	if err := h.validator.Validate(entity); err != nil {
		return err
	}

	existing, err := h.entityRepo.GetByNodeID(ctx, entity.GetUserID(), entity.NodeID())
	switch {
	case err == nil && existing != nil:
		// Keep the original creation time on updates
		entity.Touch(existing.GetCreatedAt())
	case err != nil && !pkgerrors.IsDomainType(err, pkgerrors.DomainNotFoundError):
		return fmt.Errorf("failed to load %s: %w", entity.NodeID(), err)
	}
	entity.Touch(h.now())

	if err := h.entityRepo.Save(ctx, entity); err != nil {
		return fmt.Errorf("failed to save %s: %w", entity.Kind(), err)
	}

	analysis, err := h.analyzer.Analyze(ctx, entity.GetUserID())
	if err != nil {
		h.logger.Warn("Entity saved but graph refresh failed",
			zap.String("nodeID", entity.NodeID().String()),
			zap.Error(err))
		return nil
	}

	if _, err := h.recorder.RecordGraph(ctx, analysis.Graph); err != nil {
		h.logger.Warn("Entity saved but snapshot sweep failed",
			zap.String("nodeID", entity.NodeID().String()),
			zap.Error(err))
	}

	node, ok := analysis.Graph.Node(entity.NodeID())
	if !ok {
		return nil
	}
	event := events.NewEntitySaved(entity.GetUserID(), node.ID, node.Energy, node.Coherence, h.now())
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish entity event",
			zap.String("nodeID", node.ID.String()),
			zap.Error(err))
	}

	h.logger.Info("Entity saved",
		zap.String("userID", entity.GetUserID()),
		zap.String("nodeID", node.ID.String()),
		zap.Float64("energy", node.Energy),
		zap.Float64("coherence", node.Coherence),
	)
	return nil
}
