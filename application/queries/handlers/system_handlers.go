package handlers

import (
	"context"
	"fmt"
	"time"

	"observador-backend/application/ports"
	"observador-backend/application/queries"
	"observador-backend/application/services"
	"observador-backend/domain/services/interpreter"
	"observador-backend/domain/services/snapshots"
	"observador-backend/domain/services/statistics"

	"go.uber.org/zap"
)

// SystemGraphHandler handles graph visualization queries
type SystemGraphHandler struct {
	analyzer *services.SystemAnalyzer
}

// NewSystemGraphHandler creates a new graph handler
func NewSystemGraphHandler(analyzer *services.SystemAnalyzer) *SystemGraphHandler {
	return &SystemGraphHandler{analyzer: analyzer}
}

// Handle executes the graph query. A user with no records gets the lone
// observer node.
func (h *SystemGraphHandler) Handle(ctx context.Context, query queries.GetSystemGraphQuery) (*queries.SystemGraphResult, error) {
	analysis, err := h.analyzer.Analyze(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	return &queries.SystemGraphResult{
		GraphView: analysis.Graph.View(),
		Breakdown: analysis.Breakdown,
	}, nil
}

// SystemInterpretationHandler reads the system into a status with
// recommendations, using snapshot history for momentum
type SystemInterpretationHandler struct {
	analyzer     *services.SystemAnalyzer
	snapshotRepo ports.SnapshotRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewSystemInterpretationHandler creates a new interpretation handler
func NewSystemInterpretationHandler(
	analyzer *services.SystemAnalyzer,
	snapshotRepo ports.SnapshotRepository,
	logger *zap.Logger,
) *SystemInterpretationHandler {
	return &SystemInterpretationHandler{
		analyzer:     analyzer,
		snapshotRepo: snapshotRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Handle executes the interpretation query. Missing snapshot history only
// degrades trends to unknown; it never fails the query.
func (h *SystemInterpretationHandler) Handle(ctx context.Context, query queries.GetSystemInterpretationQuery) (*queries.InterpretationResult, error) {
	analysis, err := h.analyzer.Analyze(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	cfg := analysis.Config

	days := cfg.ClampLookback(query.LookbackDays)
	since := h.now().AddDate(0, 0, -days)

	var trends []snapshots.NodeTrend
	history, err := h.snapshotRepo.ListSince(ctx, query.UserID, since)
	if err != nil {
		h.logger.Warn("Failed to load snapshot history, trends unavailable",
			zap.String("userID", query.UserID),
			zap.Error(err))
	} else {
		trends = snapshots.NewDetector(cfg).ClassifyAll(history, since)
	}
	if trends == nil {
		trends = []snapshots.NodeTrend{}
	}

	reading := interpreter.NewInterpreter(cfg).Interpret(analysis.Graph, &analysis.Breakdown, snapshots.TrendIndex(trends))
	return &queries.InterpretationResult{
		Interpretation: reading,
		Description:    interpreter.Describe(reading.Status),
		LookbackDays:   days,
		NodeTrends:     trends,
	}, nil
}

// NodeTrendsHandler classifies node momentum from snapshot history
type NodeTrendsHandler struct {
	snapshotRepo ports.SnapshotRepository
	configs      ports.MetricsConfigProvider
	now          func() time.Time
}

// NewNodeTrendsHandler creates a new trends handler
func NewNodeTrendsHandler(snapshotRepo ports.SnapshotRepository, configs ports.MetricsConfigProvider) *NodeTrendsHandler {
	return &NodeTrendsHandler{
		snapshotRepo: snapshotRepo,
		configs:      configs,
		now:          time.Now,
	}
}

// Handle executes the trends query
func (h *NodeTrendsHandler) Handle(ctx context.Context, query queries.GetNodeTrendsQuery) (*queries.NodeTrendsResult, error) {
	cfg := h.configs.Current()
	days := cfg.ClampLookback(query.LookbackDays)
	since := h.now().AddDate(0, 0, -days)

	history, err := h.snapshotRepo.ListSince(ctx, query.UserID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	return &queries.NodeTrendsResult{
		LookbackDays: days,
		Trends:       snapshots.NewDetector(cfg).ClassifyAll(history, since),
	}, nil
}

// CoherenceBreakdownHandler reports per-area coherence
type CoherenceBreakdownHandler struct {
	analyzer *services.SystemAnalyzer
}

// NewCoherenceBreakdownHandler creates a new breakdown handler
func NewCoherenceBreakdownHandler(analyzer *services.SystemAnalyzer) *CoherenceBreakdownHandler {
	return &CoherenceBreakdownHandler{analyzer: analyzer}
}

// Handle executes the breakdown query
func (h *CoherenceBreakdownHandler) Handle(ctx context.Context, query queries.GetCoherenceBreakdownQuery) (*queries.CoherenceBreakdownResult, error) {
	analysis, err := h.analyzer.Analyze(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	status := interpreter.StatusUnknown
	if analysis.Breakdown.HasData {
		status = interpreter.NewInterpreter(analysis.Config).Band(analysis.Breakdown.Overall)
	}
	return &queries.CoherenceBreakdownResult{
		CoherenceBreakdown: analysis.Breakdown,
		Status:             status,
		Description:        interpreter.Describe(status),
	}, nil
}

// EnergyFlowHandler reports how energy spreads over entity kinds
type EnergyFlowHandler struct {
	analyzer *services.SystemAnalyzer
}

// NewEnergyFlowHandler creates a new energy flow handler
func NewEnergyFlowHandler(analyzer *services.SystemAnalyzer) *EnergyFlowHandler {
	return &EnergyFlowHandler{analyzer: analyzer}
}

// Handle executes the energy flow query
func (h *EnergyFlowHandler) Handle(ctx context.Context, query queries.GetEnergyFlowQuery) (*queries.EnergyFlowResult, error) {
	analysis, err := h.analyzer.Analyze(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	flow := statistics.EnergyDistribution(analysis.Graph.EntityNodes())
	return &flow, nil
}
