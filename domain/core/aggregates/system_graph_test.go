package aggregates

import (
	"testing"

	"observador-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemGraph_Connect(t *testing.T) {
	// Arrange
	g := NewSystemGraph("user-1")
	self := valueobjects.NewNodeID(valueobjects.NodeTypeSelf, "user-1")
	project := valueobjects.NewNodeID(valueobjects.NodeTypeProject, "p1")
	missing := valueobjects.NewNodeID(valueobjects.NodeTypeRelationship, "gone")

	require.NoError(t, g.AddNode(Node{ID: self, Type: valueobjects.NodeTypeSelf}))
	require.NoError(t, g.AddNode(Node{ID: project, Type: valueobjects.NodeTypeProject, Energy: 0.6, Coherence: 0.5}))

	// Act
	linked := g.Connect(self, project, 0.6, LinkObserver)
	dangling := g.Connect(project, missing, 0.4, LinkRelation)
	loop := g.Connect(project, project, 0.4, LinkRelation)

	// Assert
	assert.True(t, linked)
	assert.False(t, dangling)
	assert.False(t, loop)
	assert.Len(t, g.Links(), 1)

	node, ok := g.Node(project)
	require.True(t, ok)
	assert.Equal(t, 1, node.Connections)
}

func TestSystemGraph_AddNodeRejectsDuplicates(t *testing.T) {
	g := NewSystemGraph("user-1")
	id := valueobjects.NewNodeID(valueobjects.NodeTypeIntention, "i1")

	require.NoError(t, g.AddNode(Node{ID: id, Type: valueobjects.NodeTypeIntention}))
	assert.ErrorIs(t, g.AddNode(Node{ID: id, Type: valueobjects.NodeTypeIntention}), ErrDuplicateNode)
}

func TestSystemGraph_Stats(t *testing.T) {
	g := NewSystemGraph("user-1")
	require.NoError(t, g.AddNode(Node{ID: valueobjects.NewNodeID(valueobjects.NodeTypeSelf, "user-1"), Type: valueobjects.NodeTypeSelf, Energy: 1, Coherence: 1}))
	require.NoError(t, g.AddNode(Node{ID: valueobjects.NewNodeID(valueobjects.NodeTypeProject, "p1"), Type: valueobjects.NodeTypeProject, Energy: 0.4, Coherence: 0.2}))
	require.NoError(t, g.AddNode(Node{ID: valueobjects.NewNodeID(valueobjects.NodeTypeManifestation, "m1"), Type: valueobjects.NodeTypeManifestation, Energy: 0.8, Coherence: 0.6}))

	stats := g.Stats()

	assert.Equal(t, 3, stats.TotalNodes)
	assert.Equal(t, 1, stats.Projects)
	assert.Equal(t, 1, stats.Manifestations)
	assert.Equal(t, 0, stats.Relationships)
	assert.InDelta(t, 0.6, stats.AverageEnergy, 1e-9)
	assert.InDelta(t, 0.4, stats.AverageCoherence, 1e-9)
	assert.Len(t, g.EntityNodes(), 2)
}

func TestSystemGraph_EmptyStats(t *testing.T) {
	stats := NewSystemGraph("user-1").Stats()

	assert.Equal(t, GraphStats{}, stats)
}
