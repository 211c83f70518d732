package handlers

import (
	"context"
	"fmt"

	"observador-backend/application/commands"
	"observador-backend/application/services"
	"observador-backend/domain/core/valueobjects"
)

// RecordSnapshotsHandler rebuilds a user's graph and records snapshots
// for nodes whose state changed
type RecordSnapshotsHandler struct {
	analyzer *services.SystemAnalyzer
	recorder *services.SnapshotRecorder
}

// NewRecordSnapshotsHandler creates a new handler instance
func NewRecordSnapshotsHandler(analyzer *services.SystemAnalyzer, recorder *services.SnapshotRecorder) *RecordSnapshotsHandler {
	return &RecordSnapshotsHandler{analyzer: analyzer, recorder: recorder}
}

// Handle executes the record snapshots command. A node id that is no
// longer in the graph is ignored.
func (h *RecordSnapshotsHandler) Handle(ctx context.Context, cmd commands.RecordSnapshotsCommand) error {
	analysis, err := h.analyzer.Analyze(ctx, cmd.UserID)
	if err != nil {
		return err
	}

	if cmd.NodeID == "" {
		_, err = h.recorder.RecordGraph(ctx, analysis.Graph)
		return err
	}

	nodeID, err := valueobjects.ParseNodeID(cmd.NodeID)
	if err != nil {
		return fmt.Errorf("invalid node id: %w", err)
	}
	node, ok := analysis.Graph.Node(nodeID)
	if !ok || nodeID.Type() == valueobjects.NodeTypeSelf {
		return nil
	}
	_, err = h.recorder.RecordNode(ctx, cmd.UserID, node)
	return err
}
