package queries

import (
	"observador-backend/domain/services/statistics"
	"observador-backend/pkg/utils"
)

// DefaultStatisticsDays is the window used when a query leaves Days unset
const DefaultStatisticsDays = 30

// GetEntryStatisticsQuery summarizes the daily entries of the last Days days.
// Streaks always look at the full history.
type GetEntryStatisticsQuery struct {
	UserID string `json:"userId" validate:"required"`
	Days   int    `json:"days" validate:"gte=0,lte=365"`
	TopN   int    `json:"topN" validate:"gte=0,lte=50"`
}

func (q GetEntryStatisticsQuery) Validate() error   { return utils.ValidateStruct(q) }
func (q GetEntryStatisticsQuery) GetUserID() string { return q.UserID }

// EntryStatisticsResult is the summary for the requested window
type EntryStatisticsResult struct {
	Days int `json:"days"`
	statistics.EntrySummary
}
