package valueobjects

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNodeID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType NodeType
		wantID   string
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "project id",
			input:    "project_4f1c",
			wantType: NodeTypeProject,
			wantID:   "4f1c",
		},
		{
			name:     "entity id containing underscores",
			input:    "relationship_abc_def",
			wantType: NodeTypeRelationship,
			wantID:   "abc_def",
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
			errMsg:  "node ID cannot be empty",
		},
		{
			name:    "missing separator",
			input:   "project",
			wantErr: true,
			errMsg:  "type_entityId",
		},
		{
			name:    "unknown prefix",
			input:   "goal_1",
			wantErr: true,
			errMsg:  "unknown type prefix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseNodeID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, id.Type())
			assert.Equal(t, tt.wantID, id.EntityID())
			assert.Equal(t, tt.input, id.String())
		})
	}
}

func TestNodeID_JSONRoundTrip(t *testing.T) {
	id := NewNodeID(NodeTypeIntention, "i-1")

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"intention_i-1"`, string(data))

	var decoded NodeID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, id.Equal(decoded))
}

func TestPolarPosition(t *testing.T) {
	// Four nodes on a radius-25 ring land on the axes
	for i, want := range []Position{
		{x: 25, y: 0},
		{x: 0, y: 25},
		{x: -25, y: 0},
		{x: 0, y: -25},
	} {
		got := PolarPosition(25, 2*math.Pi*float64(i)/4, 0)
		assert.True(t, got.Equal(want), "index %d: got (%v, %v)", i, got.X(), got.Y())
		assert.InDelta(t, 25, got.PlanarDistance(), 1e-9)
	}
}

func TestPolarPosition_NonFinite(t *testing.T) {
	pos := PolarPosition(math.Inf(1), 0, math.NaN())

	assert.Equal(t, 0.0, pos.X())
	assert.Equal(t, 0.0, pos.Z())
}

func TestNewPosition3D_RejectsNonFinite(t *testing.T) {
	_, err := NewPosition3D(math.NaN(), 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid coordinates")

	pos, err := NewPosition3D(1, 2, 3)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(14), pos.DistanceTo(Origin), 1e-9)
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"below floor", 0.01, 0.1},
		{"inside", 0.55, 0.55},
		{"above ceiling", 1.32, 1.0},
		{"NaN", math.NaN(), 0.1},
		{"negative infinity", math.Inf(-1), 0.1},
		{"positive infinity", math.Inf(1), 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.in, 0.1, 1.0))
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	label, err := NormalizeLabel("name", "  Huerto urbano ")
	require.NoError(t, err)
	assert.Equal(t, "Huerto urbano", label)

	_, err = NormalizeLabel("name", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name cannot be empty")
}
