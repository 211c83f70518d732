package entities

import "time"

// AgentProject is an external integration allowed to push decisions
// through the webhook. Only a hash of its API key is stored.
type AgentProject struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	APIKeyHash   string    `json:"-"`
	APIKeyPrefix string    `json:"apiKeyPrefix"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AgentDecision is one decision event reported by an agent
type AgentDecision struct {
	ID             string         `json:"id"`
	ProjectID      string         `json:"projectId"`
	UserID         string         `json:"userId"`
	AgentName      string         `json:"agentName"`
	DecisionType   string         `json:"decisionType"`
	Description    string         `json:"description,omitempty"`
	RevenueImpact  float64        `json:"revenueImpact"`
	CoherenceScore *float64       `json:"coherenceScore,omitempty"` // 0-100
	Confidence     *float64       `json:"confidence,omitempty"`     // 0-1
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}
