package queries

import (
	"observador-backend/domain/core/aggregates"
	"observador-backend/domain/services/interpreter"
	"observador-backend/domain/services/metrics"
	"observador-backend/domain/services/snapshots"
	"observador-backend/domain/services/statistics"
	"observador-backend/pkg/utils"
)

// GetSystemGraphQuery loads the laid-out graph for visualization
type GetSystemGraphQuery struct {
	UserID string `json:"userId" validate:"required"`
}

func (q GetSystemGraphQuery) Validate() error   { return utils.ValidateStruct(q) }
func (q GetSystemGraphQuery) GetUserID() string { return q.UserID }

// SystemGraphResult is the graph plus the coherence breakdown that fed the
// observer node
type SystemGraphResult struct {
	aggregates.GraphView
	Breakdown metrics.CoherenceBreakdown `json:"breakdown"`
}

// GetSystemInterpretationQuery reads the whole system into a status band
// and recommendations. LookbackDays bounds the trend window; zero means the
// configured default.
type GetSystemInterpretationQuery struct {
	UserID       string `json:"userId" validate:"required"`
	LookbackDays int    `json:"lookbackDays" validate:"gte=0,lte=365"`
}

func (q GetSystemInterpretationQuery) Validate() error   { return utils.ValidateStruct(q) }
func (q GetSystemInterpretationQuery) GetUserID() string { return q.UserID }

// InterpretationResult carries the interpretation with the per-node trends
// it was computed from
type InterpretationResult struct {
	interpreter.Interpretation
	Description  string                `json:"description"`
	LookbackDays int                   `json:"lookbackDays"`
	NodeTrends   []snapshots.NodeTrend `json:"nodeTrends"`
}

// GetNodeTrendsQuery classifies every node's momentum from its snapshots
type GetNodeTrendsQuery struct {
	UserID       string `json:"userId" validate:"required"`
	LookbackDays int    `json:"lookbackDays" validate:"gte=0,lte=365"`
}

func (q GetNodeTrendsQuery) Validate() error   { return utils.ValidateStruct(q) }
func (q GetNodeTrendsQuery) GetUserID() string { return q.UserID }

// NodeTrendsResult lists trends ordered by node id
type NodeTrendsResult struct {
	LookbackDays int                   `json:"lookbackDays"`
	Trends       []snapshots.NodeTrend `json:"trends"`
}

// GetCoherenceBreakdownQuery returns per-area coherence percentages
type GetCoherenceBreakdownQuery struct {
	UserID string `json:"userId" validate:"required"`
}

func (q GetCoherenceBreakdownQuery) Validate() error   { return utils.ValidateStruct(q) }
func (q GetCoherenceBreakdownQuery) GetUserID() string { return q.UserID }

// CoherenceBreakdownResult adds the band of the overall score
type CoherenceBreakdownResult struct {
	metrics.CoherenceBreakdown
	Status      interpreter.Status `json:"status"`
	Description string             `json:"description"`
}

// GetEnergyFlowQuery returns where the user's energy goes, per entity kind
type GetEnergyFlowQuery struct {
	UserID string `json:"userId" validate:"required"`
}

func (q GetEnergyFlowQuery) Validate() error   { return utils.ValidateStruct(q) }
func (q GetEnergyFlowQuery) GetUserID() string { return q.UserID }

// EnergyFlowResult is the distribution of entity energy
type EnergyFlowResult = statistics.EnergyFlow
