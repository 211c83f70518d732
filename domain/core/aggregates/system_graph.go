package aggregates

import (
	"errors"

	"observador-backend/domain/core/valueobjects"
)

// LinkKind distinguishes observer links from entity-to-entity relations
type LinkKind string

const (
	LinkObserver LinkKind = "observer"
	LinkRelation LinkKind = "relation"
)

// Node is the rendered view of one entity, or of the user at the centre
type Node struct {
	ID          valueobjects.NodeID   `json:"id"`
	Type        valueobjects.NodeType `json:"type"`
	Label       string                `json:"label"`
	Position    valueobjects.Position `json:"position"`
	Size        float64               `json:"size"`
	Energy      float64               `json:"energy"`
	Coherence   float64               `json:"coherence"`
	Color       string                `json:"color"`
	Status      string                `json:"status"`
	Connections int                   `json:"connections"`
}

// CoherencePercent returns the node coherence on the 0-100 scale
func (n Node) CoherencePercent() float64 {
	return n.Coherence * 100
}

// Link connects two nodes present in the same graph
type Link struct {
	Source   valueobjects.NodeID `json:"source"`
	Target   valueobjects.NodeID `json:"target"`
	Strength float64             `json:"strength"`
	Kind     LinkKind            `json:"kind"`
}

// GraphStats summarises a graph so callers do not recompute it
type GraphStats struct {
	TotalNodes       int     `json:"totalNodes"`
	TotalLinks       int     `json:"totalLinks"`
	Projects         int     `json:"projects"`
	Relationships    int     `json:"relationships"`
	Intentions       int     `json:"intentions"`
	Manifestations   int     `json:"manifestations"`
	AverageEnergy    float64 `json:"averageEnergy"`
	AverageCoherence float64 `json:"averageCoherence"`
}

// GraphView is the serialisable form of a SystemGraph
type GraphView struct {
	Nodes []Node     `json:"nodes"`
	Links []Link     `json:"links"`
	Stats GraphStats `json:"stats"`
}

// ErrDuplicateNode is returned when a node id is added twice
var ErrDuplicateNode = errors.New("node already present in graph")

// SystemGraph is the per-request graph of a user's system. Nodes keep
// insertion order so the same input always renders the same way.
type SystemGraph struct {
	userID string
	nodes  []Node
	index  map[string]int
	links  []Link
}

// NewSystemGraph creates an empty graph for userID
func NewSystemGraph(userID string) *SystemGraph {
	return &SystemGraph{
		userID: userID,
		nodes:  []Node{},
		index:  make(map[string]int),
		links:  []Link{},
	}
}

// UserID returns the owner of the graph
func (g *SystemGraph) UserID() string {
	return g.userID
}

// AddNode appends a node, rejecting duplicate ids
func (g *SystemGraph) AddNode(node Node) error {
	key := node.ID.String()
	if _, exists := g.index[key]; exists {
		return ErrDuplicateNode
	}
	g.index[key] = len(g.nodes)
	g.nodes = append(g.nodes, node)
	return nil
}

// HasNode reports whether id is present
func (g *SystemGraph) HasNode(id valueobjects.NodeID) bool {
	_, ok := g.index[id.String()]
	return ok
}

// Node returns the node with the given id
func (g *SystemGraph) Node(id valueobjects.NodeID) (Node, bool) {
	i, ok := g.index[id.String()]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Connect links source to target. It returns false without error when
// either end is not in the graph or the link would be a self loop.
func (g *SystemGraph) Connect(source, target valueobjects.NodeID, strength float64, kind LinkKind) bool {
	si, ok := g.index[source.String()]
	if !ok {
		return false
	}
	ti, ok := g.index[target.String()]
	if !ok || si == ti {
		return false
	}
	g.links = append(g.links, Link{Source: source, Target: target, Strength: strength, Kind: kind})
	g.nodes[si].Connections++
	g.nodes[ti].Connections++
	return true
}

// Nodes returns a copy of the nodes in insertion order
func (g *SystemGraph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// EntityNodes returns every node except the observer
func (g *SystemGraph) EntityNodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n.Type != valueobjects.NodeTypeSelf {
			out = append(out, n)
		}
	}
	return out
}

// Links returns a copy of the links in insertion order
func (g *SystemGraph) Links() []Link {
	out := make([]Link, len(g.links))
	copy(out, g.links)
	return out
}

// Stats computes the summary counts. Averages run over entity nodes only
// and are zero when there are none.
func (g *SystemGraph) Stats() GraphStats {
	stats := GraphStats{
		TotalNodes: len(g.nodes),
		TotalLinks: len(g.links),
	}

	var energy, coherence float64
	var entities int
	for _, n := range g.nodes {
		switch n.Type {
		case valueobjects.NodeTypeProject:
			stats.Projects++
		case valueobjects.NodeTypeRelationship:
			stats.Relationships++
		case valueobjects.NodeTypeIntention:
			stats.Intentions++
		case valueobjects.NodeTypeManifestation:
			stats.Manifestations++
		default:
			continue
		}
		energy += n.Energy
		coherence += n.Coherence
		entities++
	}

	if entities > 0 {
		stats.AverageEnergy = energy / float64(entities)
		stats.AverageCoherence = coherence / float64(entities)
	}
	return stats
}

// View returns the serialisable graph
func (g *SystemGraph) View() GraphView {
	return GraphView{
		Nodes: g.Nodes(),
		Links: g.Links(),
		Stats: g.Stats(),
	}
}
