package interpreter

import (
	"fmt"
	"testing"

	"observador-backend/domain/core/aggregates"
	"observador-backend/domain/core/valueobjects"
	"observador-backend/domain/services/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpreter_Band(t *testing.T) {
	interp := NewInterpreter(nil)

	tests := []struct {
		percent float64
		want    Status
	}{
		{100, StatusFlow},
		{80, StatusFlow},
		{79.9, StatusExpansion},
		{60, StatusExpansion},
		{59.9, StatusFriction},
		{40, StatusFriction},
		{39.9, StatusSaturation},
		{20, StatusSaturation},
		{19.99, StatusCollapse},
		{0, StatusCollapse},
		{-15, StatusCollapse},
		{250, StatusFlow},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.percent), func(t *testing.T) {
			assert.Equal(t, tt.want, interp.Band(tt.percent))
		})
	}
}

func TestInterpreter_BandIsMonotonic(t *testing.T) {
	interp := NewInterpreter(nil)
	rank := map[Status]int{StatusCollapse: 0, StatusSaturation: 1, StatusFriction: 2, StatusExpansion: 3, StatusFlow: 4}

	prev := rank[interp.Band(0)]
	for p := 0.0; p <= 100; p += 0.1 {
		cur := rank[interp.Band(p)]
		assert.GreaterOrEqual(t, cur, prev, "band dropped at %v", p)
		prev = cur
	}
}

func buildGraph(t *testing.T, coherences ...float64) *aggregates.SystemGraph {
	t.Helper()
	g := aggregates.NewSystemGraph("user-1")
	require.NoError(t, g.AddNode(aggregates.Node{
		ID:        valueobjects.NewNodeID(valueobjects.NodeTypeSelf, "user-1"),
		Type:      valueobjects.NodeTypeSelf,
		Energy:    0.1,
		Coherence: 0.1,
	}))
	for i, c := range coherences {
		require.NoError(t, g.AddNode(aggregates.Node{
			ID:        valueobjects.NewNodeID(valueobjects.NodeTypeProject, fmt.Sprintf("p%d", i)),
			Type:      valueobjects.NodeTypeProject,
			Label:     fmt.Sprintf("Proyecto %d", i),
			Energy:    0.5,
			Coherence: c,
		}))
	}
	return g
}

func TestInterpreter_Interpret(t *testing.T) {
	// Arrange
	interp := NewInterpreter(nil)
	g := buildGraph(t, 0.35, 0.1, 0.2, 0.3, 0.55, 0.45, 0.5, 0.42, 0.9)
	trends := map[string]valueobjects.Trend{
		"project_p0": valueobjects.TrendImproving,
		"project_p1": valueobjects.TrendDeclining,
		"project_p2": valueobjects.TrendDeclining,
		"project_p8": valueobjects.TrendUnknown,
	}

	// Act
	got := interp.Interpret(g, nil, trends)

	// Assert
	require.Len(t, got.Critical, 3)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, coherences(got.Critical))
	require.Len(t, got.Attention, 3)
	assert.Equal(t, []float64{0.42, 0.45, 0.5}, coherences(got.Attention))
	assert.Equal(t, 1, got.Healthy)
	assert.Equal(t, TrendCounts{Up: 1, Down: 2, Stable: 6}, got.Trends)
	assert.InDelta(t, 377.0/9, got.GlobalCoherence, 1e-6)
	assert.Equal(t, StatusFriction, got.Status)
	assert.Contains(t, got.Summary, "9 nodos")
	assert.Contains(t, got.Summary, "4 en estado crítico")
	assert.Contains(t, got.Recommendations[len(got.Recommendations)-1], "Más nodos bajan")
}

func TestInterpreter_BreakdownOverridesGlobalCoherence(t *testing.T) {
	interp := NewInterpreter(nil)
	g := buildGraph(t, 0.3)

	got := interp.Interpret(g, &metrics.CoherenceBreakdown{Overall: 85, HasData: true}, nil)

	assert.Equal(t, StatusFlow, got.Status)
	assert.InDelta(t, 85.0, got.GlobalCoherence, 1e-9)
}

func TestInterpreter_EmptyGraphIsUnknown(t *testing.T) {
	interp := NewInterpreter(nil)

	got := interp.Interpret(buildGraph(t), nil, nil)

	assert.Equal(t, StatusUnknown, got.Status)
	assert.Empty(t, got.Critical)
	assert.Empty(t, got.Attention)
	assert.Zero(t, got.Healthy)
	assert.NotEmpty(t, got.Summary)
}

func coherences(nodes []aggregates.Node) []float64 {
	out := make([]float64, len(nodes))
	for i, n := range nodes {
		out[i] = n.Coherence
	}
	return out
}
