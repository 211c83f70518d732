package handlers

import (
	"context"
	"fmt"
	"time"

	"observador-backend/application/commands"
	"observador-backend/application/ports"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/events"
	"observador-backend/pkg/auth"
	pkgerrors "observador-backend/pkg/errors"

	"go.uber.org/zap"
)

// RegisterAgentProjectHandler stores agent projects with hashed API keys
type RegisterAgentProjectHandler struct {
	agentRepo ports.AgentRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewRegisterAgentProjectHandler creates a new handler instance
func NewRegisterAgentProjectHandler(agentRepo ports.AgentRepository, logger *zap.Logger) *RegisterAgentProjectHandler {
	return &RegisterAgentProjectHandler{agentRepo: agentRepo, logger: logger, now: time.Now}
}

// Handle executes the register command
func (h *RegisterAgentProjectHandler) Handle(ctx context.Context, cmd commands.RegisterAgentProjectCommand) error {
	project := &entities.AgentProject{
		ID:           cmd.ProjectID,
		UserID:       cmd.UserID,
		Name:         cmd.Name,
		Description:  cmd.Description,
		APIKeyHash:   auth.HashAPIKey(cmd.APIKey),
		APIKeyPrefix: auth.KeyPrefix(cmd.APIKey),
		Active:       true,
		CreatedAt:    h.now(),
	}
	if err := h.agentRepo.SaveProject(ctx, project); err != nil {
		return fmt.Errorf("failed to save agent project: %w", err)
	}

	h.logger.Info("Agent project registered",
		zap.String("userID", cmd.UserID),
		zap.String("projectID", project.ID),
		zap.String("keyPrefix", project.APIKeyPrefix),
	)
	return nil
}

// RecordAgentDecisionHandler ingests webhook decisions
type RecordAgentDecisionHandler struct {
	agentRepo ports.AgentRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewRecordAgentDecisionHandler creates a new handler instance
func NewRecordAgentDecisionHandler(agentRepo ports.AgentRepository, publisher ports.EventPublisher, logger *zap.Logger) *RecordAgentDecisionHandler {
	return &RecordAgentDecisionHandler{agentRepo: agentRepo, publisher: publisher, logger: logger, now: time.Now}
}

// Handle executes the record decision command. The project must exist,
// belong to the user and still be active.
func (h *RecordAgentDecisionHandler) Handle(ctx context.Context, cmd commands.RecordAgentDecisionCommand) error {
	project, err := h.agentRepo.GetProject(ctx, cmd.ProjectID)
	if err != nil {
		return err
	}
	if project.UserID != cmd.UserID {
		return pkgerrors.ErrUserNotAuthorized
	}
	if !project.Active {
		return pkgerrors.ErrAgentProjectInactive
	}

	now := h.now()
	decision := &entities.AgentDecision{
		ID:             cmd.DecisionID,
		ProjectID:      cmd.ProjectID,
		UserID:         cmd.UserID,
		AgentName:      cmd.AgentName,
		DecisionType:   cmd.DecisionType,
		Description:    cmd.Description,
		RevenueImpact:  cmd.RevenueImpact,
		CoherenceScore: cmd.CoherenceScore,
		Confidence:     cmd.Confidence,
		Metadata:       cmd.Metadata,
		CreatedAt:      now,
	}
	if err := h.agentRepo.SaveDecision(ctx, decision); err != nil {
		return fmt.Errorf("failed to save agent decision: %w", err)
	}

	event := events.NewAgentDecisionRecorded(cmd.UserID, cmd.ProjectID, decision.ID, decision.DecisionType, decision.RevenueImpact, now)
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish agent decision event", zap.String("decisionID", decision.ID), zap.Error(err))
	}
	return nil
}
