package handlers

import (
	"context"
	"fmt"
	"time"

	"observador-backend/application/ports"
	"observador-backend/application/queries"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/services/interpreter"
	"observador-backend/domain/services/statistics"
	pkgerrors "observador-backend/pkg/errors"
)

// DecisionDashboardHandler aggregates the decisions agents reported
type DecisionDashboardHandler struct {
	agentRepo ports.AgentRepository
	configs   ports.MetricsConfigProvider
	now       func() time.Time
}

// NewDecisionDashboardHandler creates a new dashboard handler
func NewDecisionDashboardHandler(agentRepo ports.AgentRepository, configs ports.MetricsConfigProvider) *DecisionDashboardHandler {
	return &DecisionDashboardHandler{
		agentRepo: agentRepo,
		configs:   configs,
		now:       time.Now,
	}
}

// Handle executes the dashboard query
func (h *DecisionDashboardHandler) Handle(ctx context.Context, query queries.GetDecisionDashboardQuery) (*queries.DecisionDashboardResult, error) {
	cfg := h.configs.Current()

	days := query.Days
	if days <= 0 {
		days = queries.DefaultStatisticsDays
	}
	topN := query.TopN
	if topN <= 0 {
		topN = cfg.TopEmotions
	}

	var projects []*entities.AgentProject
	var err error
	if query.ProjectID != "" {
		projects, err = h.ownedProject(ctx, query.UserID, query.ProjectID)
	} else {
		projects, err = h.agentRepo.ListProjects(ctx, query.UserID)
	}
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []*entities.AgentProject{}
	}

	since := entities.Day(h.now()).AddDate(0, 0, -(days - 1))
	decisions, err := h.agentRepo.ListDecisions(ctx, query.UserID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load decisions: %w", err)
	}
	if query.ProjectID != "" {
		decisions = forProject(decisions, query.ProjectID)
	}

	result := &queries.DecisionDashboardResult{
		Days:     days,
		Summary:  statistics.SummarizeDecisions(decisions, topN),
		Projects: projects,
	}
	if result.Summary.WithCoherence > 0 {
		result.Status = interpreter.NewInterpreter(cfg).Band(result.Summary.AverageCoherence)
	}
	return result, nil
}

func (h *DecisionDashboardHandler) ownedProject(ctx context.Context, userID, projectID string) ([]*entities.AgentProject, error) {
	project, err := h.agentRepo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		// Another user's project is reported as missing
		return nil, pkgerrors.ErrAgentProjectNotFound.Clone()
	}
	return []*entities.AgentProject{project}, nil
}

func forProject(decisions []*entities.AgentDecision, projectID string) []*entities.AgentDecision {
	out := make([]*entities.AgentDecision, 0, len(decisions))
	for _, d := range decisions {
		if d != nil && d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out
}

// ListAgentProjectsHandler lists a user's agent projects
type ListAgentProjectsHandler struct {
	agentRepo ports.AgentRepository
}

// NewListAgentProjectsHandler creates a new list handler
func NewListAgentProjectsHandler(agentRepo ports.AgentRepository) *ListAgentProjectsHandler {
	return &ListAgentProjectsHandler{agentRepo: agentRepo}
}

// Handle executes the list query
func (h *ListAgentProjectsHandler) Handle(ctx context.Context, query queries.ListAgentProjectsQuery) ([]*entities.AgentProject, error) {
	projects, err := h.agentRepo.ListProjects(ctx, query.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load agent projects: %w", err)
	}
	if projects == nil {
		projects = []*entities.AgentProject{}
	}
	return projects, nil
}
