package handlers

import (
	"context"
	"fmt"
	"time"

	"observador-backend/application/ports"
	"observador-backend/application/queries"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/services/metrics"
	"observador-backend/domain/services/statistics"
)

// EntryStatisticsHandler summarizes daily entries
type EntryStatisticsHandler struct {
	entryRepo ports.DailyEntryRepository
	configs   ports.MetricsConfigProvider
	now       func() time.Time
}

// NewEntryStatisticsHandler creates a new statistics handler
func NewEntryStatisticsHandler(entryRepo ports.DailyEntryRepository, configs ports.MetricsConfigProvider) *EntryStatisticsHandler {
	return &EntryStatisticsHandler{
		entryRepo: entryRepo,
		configs:   configs,
		now:       time.Now,
	}
}

// Handle executes the statistics query. The window covers Days calendar
// days ending today.
func (h *EntryStatisticsHandler) Handle(ctx context.Context, query queries.GetEntryStatisticsQuery) (*queries.EntryStatisticsResult, error) {
	cfg := h.configs.Current()
	now := h.now()

	days := query.Days
	if days <= 0 {
		days = queries.DefaultStatisticsDays
	}
	topN := query.TopN
	if topN <= 0 {
		topN = cfg.TopEmotions
	}

	since := entities.Day(now).AddDate(0, 0, -(days - 1))
	entries, err := h.entryRepo.ListByUser(ctx, query.UserID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily entries: %w", err)
	}

	summary := statistics.Summarize(metrics.NewCalculator(cfg), entries, statistics.SummaryOptions{
		TopN:           topN,
		TrendThreshold: cfg.EntryTrendThreshold,
		Now:            now,
	})
	return &queries.EntryStatisticsResult{Days: days, EntrySummary: summary}, nil
}
