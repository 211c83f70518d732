// Package layout places a user's entities on concentric rings around the
// observer node. The embedding is closed-form: no simulation, no
// randomness, so identical input yields identical output.
package layout

import (
	"math"

	"observador-backend/domain/config"
	"observador-backend/domain/core/aggregates"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
	"observador-backend/domain/services/interpreter"
	"observador-backend/domain/services/metrics"
)

// Node colors per type
var colors = map[valueobjects.NodeType]string{
	valueobjects.NodeTypeSelf:          "#A855F7",
	valueobjects.NodeTypeProject:       "#3B82F6",
	valueobjects.NodeTypeRelationship:  "#EC4899",
	valueobjects.NodeTypeIntention:     "#10B981",
	valueobjects.NodeTypeManifestation: "#F59E0B",
}

// DefaultSelfLabel is used when the caller does not name the observer
const DefaultSelfLabel = "Yo"

// Input is everything one layout pass needs
type Input struct {
	UserID         string
	UserLabel      string
	Projects       []*entities.Project
	Relationships  []*entities.Relationship
	Intentions     []*entities.Intention
	Manifestations []*entities.Manifestation
	Breakdown      *metrics.CoherenceBreakdown
}

// Engine builds system graphs
type Engine struct {
	cfg    *config.MetricsConfig
	calc   *metrics.Calculator
	interp *interpreter.Interpreter
}

// NewEngine creates a layout engine sharing cfg with its collaborators
func NewEngine(cfg *config.MetricsConfig) *Engine {
	if cfg == nil {
		cfg = config.DefaultMetricsConfig()
	}
	return &Engine{
		cfg:    cfg,
		calc:   metrics.NewCalculator(cfg),
		interp: interpreter.NewInterpreter(cfg),
	}
}

// RingAngle is the angle of the i-th of count nodes on a ring
func RingAngle(i, count int, phase float64) float64 {
	if count < 1 {
		count = 1
	}
	return phase + 2*math.Pi*float64(i)/float64(count)
}

// RingPositions returns count evenly spaced points on ring at height 0
func RingPositions(count int, ring config.Ring) []valueobjects.Position {
	out := make([]valueobjects.Position, count)
	for i := range out {
		out[i] = valueobjects.PolarPosition(ring.Radius, RingAngle(i, count, ring.Phase), 0)
	}
	return out
}

// Build lays out the graph. Entities with duplicate ids are kept once and
// relation links to entities outside the input are skipped.
func (e *Engine) Build(in Input) *aggregates.SystemGraph {
	graph := aggregates.NewSystemGraph(in.UserID)
	selfID := valueobjects.NewNodeID(valueobjects.NodeTypeSelf, in.UserID)

	_ = graph.AddNode(e.selfNode(selfID, in))

	e.placeRing(graph, toEntities(in.Projects), e.cfg.ProjectRing)
	e.placeRing(graph, toEntities(in.Relationships), e.cfg.RelationshipRing)
	e.placeRing(graph, toEntities(in.Intentions), e.cfg.IntentionRing)
	e.placeRing(graph, toEntities(in.Manifestations), e.cfg.ManifestationRing)

	for _, n := range graph.EntityNodes() {
		graph.Connect(selfID, n.ID, n.Energy, aggregates.LinkObserver)
	}

	for _, p := range in.Projects {
		if p == nil {
			continue
		}
		for _, personID := range p.RelatedPeople {
			e.relate(graph, p.NodeID(), valueobjects.NewNodeID(valueobjects.NodeTypeRelationship, personID))
		}
	}
	for _, i := range in.Intentions {
		if i != nil && i.RelatedProjectID != "" {
			e.relate(graph, i.NodeID(), valueobjects.NewNodeID(valueobjects.NodeTypeProject, i.RelatedProjectID))
		}
	}
	for _, m := range in.Manifestations {
		if m != nil && m.RelatedProjectID != "" {
			e.relate(graph, m.NodeID(), valueobjects.NewNodeID(valueobjects.NodeTypeProject, m.RelatedProjectID))
		}
	}

	return graph
}

func (e *Engine) selfNode(id valueobjects.NodeID, in Input) aggregates.Node {
	coherence := e.cfg.DefaultSelfCoherence
	if in.Breakdown != nil && in.Breakdown.HasData {
		coherence = in.Breakdown.Overall / 100
	}
	coherence = e.calc.Clamp(coherence)

	label := in.UserLabel
	if label == "" {
		label = DefaultSelfLabel
	}

	return aggregates.Node{
		ID:        id,
		Type:      valueobjects.NodeTypeSelf,
		Label:     label,
		Position:  valueobjects.Origin,
		Size:      e.cfg.SelfSize,
		Energy:    coherence,
		Coherence: coherence,
		Color:     colors[valueobjects.NodeTypeSelf],
		Status:    string(e.interp.Band(coherence * 100)),
	}
}

func (e *Engine) placeRing(graph *aggregates.SystemGraph, items []entities.Entity, ring config.Ring) {
	items = uniqueByNode(items)
	for i, item := range items {
		score := e.calc.Score(item)
		advancement := e.calc.Advancement(item)
		angle := RingAngle(i, len(items), ring.Phase)

		_ = graph.AddNode(aggregates.Node{
			ID:        item.NodeID(),
			Type:      item.Kind(),
			Label:     item.Label(),
			Position:  valueobjects.PolarPosition(ring.Radius, angle, advancement*e.cfg.HeightScale),
			Size:      e.cfg.BaseNodeSize + advancement*e.cfg.NodeSizeScale,
			Energy:    score.Energy,
			Coherence: score.Coherence,
			Color:     colors[item.Kind()],
			Status:    string(e.interp.Band(score.Coherence * 100)),
		})
	}
}

// relate links two entities with the mean of their energies
func (e *Engine) relate(graph *aggregates.SystemGraph, from, to valueobjects.NodeID) {
	source, ok := graph.Node(from)
	if !ok {
		return
	}
	target, ok := graph.Node(to)
	if !ok {
		return
	}
	graph.Connect(from, to, (source.Energy+target.Energy)/2, aggregates.LinkRelation)
}

// uniqueByNode keeps the first entity per node id so ring spacing counts
// only nodes that will be placed
func uniqueByNode(items []entities.Entity) []entities.Entity {
	seen := make(map[valueobjects.NodeID]struct{}, len(items))
	out := make([]entities.Entity, 0, len(items))
	for _, item := range items {
		id := item.NodeID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, item)
	}
	return out
}

func toEntities[T any, PT interface {
	*T
	entities.Entity
}](items []PT) []entities.Entity {
	out := make([]entities.Entity, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, item)
	}
	return out
}
