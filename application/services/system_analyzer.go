package services

import (
	"context"
	"fmt"
	"time"

	"observador-backend/application/ports"
	"observador-backend/domain/config"
	"observador-backend/domain/core/aggregates"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/services/layout"
	"observador-backend/domain/services/metrics"

	"go.uber.org/zap"
)

// Analysis is everything derived from one load of a user's records
type Analysis struct {
	UserID    string
	Config    *config.MetricsConfig
	Entities  *ports.EntitySet
	Entries   []*entities.DailyEntry
	Breakdown metrics.CoherenceBreakdown
	Graph     *aggregates.SystemGraph
}

// SystemAnalyzer loads a user's records and runs them through the metric
// core. Query handlers and the snapshot sweep share it so they always see
// the same graph.
type SystemAnalyzer struct {
	entityRepo ports.EntityRepository
	entryRepo  ports.DailyEntryRepository
	configs    ports.MetricsConfigProvider
	logger     *zap.Logger
	now        func() time.Time
}

// NewSystemAnalyzer creates a new analyzer
func NewSystemAnalyzer(
	entityRepo ports.EntityRepository,
	entryRepo ports.DailyEntryRepository,
	configs ports.MetricsConfigProvider,
	logger *zap.Logger,
) *SystemAnalyzer {
	return &SystemAnalyzer{
		entityRepo: entityRepo,
		entryRepo:  entryRepo,
		configs:    configs,
		logger:     logger,
		now:        time.Now,
	}
}

// Analyze builds the coherence breakdown and the laid-out graph for a user.
// The emotional area only looks at recent entries.
func (s *SystemAnalyzer) Analyze(ctx context.Context, userID string) (*Analysis, error) {
	cfg := s.configs.Current()

	set, err := s.entityRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entities: %w", err)
	}
	if set == nil {
		set = &ports.EntitySet{}
	}

	since := entities.Day(s.now()).AddDate(0, 0, -cfg.EmotionalWindowDays)
	entries, err := s.entryRepo.ListByUser(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily entries: %w", err)
	}

	calc := metrics.NewCalculator(cfg)
	breakdown := calc.Breakdown(metrics.BreakdownInput{
		Projects:       set.Projects,
		Relationships:  set.Relationships,
		Intentions:     set.Intentions,
		Manifestations: set.Manifestations,
		Entries:        entries,
	})

	graph := layout.NewEngine(cfg).Build(layout.Input{
		UserID:         userID,
		Projects:       set.Projects,
		Relationships:  set.Relationships,
		Intentions:     set.Intentions,
		Manifestations: set.Manifestations,
		Breakdown:      &breakdown,
	})

	s.logger.Debug("System analyzed",
		zap.String("userID", userID),
		zap.Int("entities", set.Len()),
		zap.Int("entries", len(entries)),
		zap.Float64("overall", breakdown.Overall),
	)

	return &Analysis{
		UserID:    userID,
		Config:    cfg,
		Entities:  set,
		Entries:   entries,
		Breakdown: breakdown,
		Graph:     graph,
	}, nil
}
