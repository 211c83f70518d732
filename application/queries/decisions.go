package queries

import (
	"observador-backend/domain/core/entities"
	"observador-backend/domain/services/interpreter"
	"observador-backend/domain/services/statistics"
	"observador-backend/pkg/utils"
)

// GetDecisionDashboardQuery aggregates agent decisions. ProjectID narrows
// the dashboard to one agent project.
type GetDecisionDashboardQuery struct {
	UserID    string `json:"userId" validate:"required"`
	ProjectID string `json:"projectId"`
	Days      int    `json:"days" validate:"gte=0,lte=365"`
	TopN      int    `json:"topN" validate:"gte=0,lte=50"`
}

func (q GetDecisionDashboardQuery) Validate() error   { return utils.ValidateStruct(q) }
func (q GetDecisionDashboardQuery) GetUserID() string { return q.UserID }

// DecisionDashboardResult is the aggregate plus the band of the average
// coherence score. Status is empty when no decision reported coherence.
type DecisionDashboardResult struct {
	Days     int                        `json:"days"`
	Summary  statistics.DecisionSummary `json:"summary"`
	Status   interpreter.Status         `json:"status,omitempty"`
	Projects []*entities.AgentProject   `json:"projects"`
}

// ListAgentProjectsQuery lists a user's agent projects
type ListAgentProjectsQuery struct {
	UserID string `json:"userId" validate:"required"`
}

func (q ListAgentProjectsQuery) Validate() error   { return utils.ValidateStruct(q) }
func (q ListAgentProjectsQuery) GetUserID() string { return q.UserID }
