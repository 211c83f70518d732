package commands

import (
	"observador-backend/pkg/utils"
)

// RegisterAgentProjectCommand stores a new agent project. The plain API key
// is generated by the caller, returned to the user once, and only its hash
// is persisted.
type RegisterAgentProjectCommand struct {
	ProjectID   string `json:"id" validate:"required"`
	UserID      string `json:"userId" validate:"required"`
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	APIKey      string `json:"-" validate:"required,min=32"`
}

func (c RegisterAgentProjectCommand) Validate() error   { return utils.ValidateStruct(c) }
func (c RegisterAgentProjectCommand) GetUserID() string { return c.UserID }

// RecordAgentDecisionCommand ingests one decision pushed through the webhook.
// ProjectID and UserID come from the authenticated API key, never the body.
type RecordAgentDecisionCommand struct {
	DecisionID     string         `json:"id" validate:"required"`
	ProjectID      string         `json:"projectId" validate:"required"`
	UserID         string         `json:"userId" validate:"required"`
	AgentName      string         `json:"agentName" validate:"required,max=120"`
	DecisionType   string         `json:"decisionType" validate:"required,max=80"`
	Description    string         `json:"description" validate:"max=5000"`
	RevenueImpact  float64        `json:"revenueImpact"`
	CoherenceScore *float64       `json:"coherenceScore" validate:"omitempty,gte=0,lte=100"`
	Confidence     *float64       `json:"confidence" validate:"omitempty,gte=0,lte=1"`
	Metadata       map[string]any `json:"metadata"`
}

func (c RecordAgentDecisionCommand) Validate() error   { return utils.ValidateStruct(c) }
func (c RecordAgentDecisionCommand) GetUserID() string { return c.UserID }
