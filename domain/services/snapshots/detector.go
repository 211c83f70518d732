// Package snapshots decides when a node's state is worth recording and
// reads momentum back out of the recorded history.
package snapshots

import (
	"math"
	"sort"
	"time"

	"observador-backend/domain/config"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
)

// Proposal is the current state of a node offered for recording
type Proposal struct {
	UserID      string
	NodeID      valueobjects.NodeID
	NodeLabel   string
	Energy      float64
	Coherence   float64
	Connections int
}

// NodeTrend is the momentum of one node over a lookback window
type NodeTrend struct {
	NodeID          string             `json:"nodeId"`
	Trend           valueobjects.Trend `json:"trend"`
	EnergyChange    float64            `json:"energyChange"`
	CoherenceChange float64            `json:"coherenceChange"`
	SnapshotCount   int                `json:"snapshotCount"`
}

// thresholdEpsilon absorbs float error so a delta equal to the threshold on
// paper (0.4-0.3 against 0.1) does not count as exceeding it
const thresholdEpsilon = 1e-9

func exceeds(delta, threshold float64) bool {
	return math.Abs(delta)-threshold > thresholdEpsilon
}

// Detector holds the change thresholds
type Detector struct {
	cfg *config.MetricsConfig
}

// NewDetector creates a detector; nil cfg means defaults
func NewDetector(cfg *config.MetricsConfig) *Detector {
	if cfg == nil {
		cfg = config.DefaultMetricsConfig()
	}
	return &Detector{cfg: cfg}
}

// ShouldSnapshot compares a proposal with the latest stored snapshot of
// the node and returns whether to write plus the reason. last is nil when
// the node has no history.
func (d *Detector) ShouldSnapshot(last *entities.Snapshot, p Proposal) (bool, string) {
	if last == nil {
		return true, entities.TriggerInitial
	}
	if exceeds(p.Energy-last.Energy, d.cfg.SnapshotThreshold) {
		return true, entities.TriggerEnergyChange
	}
	if exceeds(p.Coherence-last.Coherence, d.cfg.SnapshotThreshold) {
		return true, entities.TriggerCoherenceChange
	}
	if p.Connections != last.Connections {
		return true, entities.TriggerConnectionsChange
	}
	return false, ""
}

// NewSnapshot materialises a proposal
func NewSnapshot(id string, p Proposal, reason string, now time.Time) *entities.Snapshot {
	return &entities.Snapshot{
		ID:            id,
		UserID:        p.UserID,
		NodeID:        p.NodeID.String(),
		NodeType:      p.NodeID.Type(),
		NodeLabel:     p.NodeLabel,
		Energy:        p.Energy,
		Coherence:     p.Coherence,
		Connections:   p.Connections,
		CreatedAt:     now,
		TriggerReason: reason,
	}
}

// Classify computes the trend of one node from snapshots taken at or
// after since. Fewer than two snapshots in the window is unknown.
func (d *Detector) Classify(nodeID string, history []*entities.Snapshot, since time.Time) NodeTrend {
	window := inWindow(history, since)
	trend := NodeTrend{NodeID: nodeID, Trend: valueobjects.TrendUnknown, SnapshotCount: len(window)}
	if len(window) < 2 {
		return trend
	}

	first, last := window[0], window[len(window)-1]
	trend.EnergyChange = last.Energy - first.Energy
	trend.CoherenceChange = last.Coherence - first.Coherence
	avg := (trend.EnergyChange + trend.CoherenceChange) / 2
	trend.Trend = valueobjects.ClassifyChange(avg, d.cfg.TrendThreshold)
	return trend
}

// ClassifyAll groups mixed snapshots by node and classifies each group.
// The result is ordered by node id.
func (d *Detector) ClassifyAll(history []*entities.Snapshot, since time.Time) []NodeTrend {
	byNode := make(map[string][]*entities.Snapshot)
	for _, s := range history {
		if s == nil {
			continue
		}
		byNode[s.NodeID] = append(byNode[s.NodeID], s)
	}

	ids := make([]string, 0, len(byNode))
	for id := range byNode {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]NodeTrend, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.Classify(id, byNode[id], since))
	}
	return out
}

// TrendIndex maps node ids to their trend for the interpreter
func TrendIndex(trends []NodeTrend) map[string]valueobjects.Trend {
	out := make(map[string]valueobjects.Trend, len(trends))
	for _, t := range trends {
		out[t.NodeID] = t.Trend
	}
	return out
}

func inWindow(history []*entities.Snapshot, since time.Time) []*entities.Snapshot {
	out := make([]*entities.Snapshot, 0, len(history))
	for _, s := range history {
		if s != nil && !s.CreatedAt.Before(since) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
