// Package interpreter classifies coherence into status bands and explains
// the state of a user's system in plain language.
package interpreter

import (
	"fmt"
	"sort"

	"observador-backend/domain/config"
	"observador-backend/domain/core/aggregates"
	"observador-backend/domain/core/valueobjects"
	"observador-backend/domain/services/metrics"
)

// Status is one of the five ordered bands
type Status string

const (
	StatusFlow       Status = "Flujo"
	StatusExpansion  Status = "Expansión"
	StatusFriction   Status = "Fricción"
	StatusSaturation Status = "Saturación"
	StatusCollapse   Status = "Colapso"
	StatusUnknown    Status = "Desconocido"
)

// TrendCounts tallies node momentum. Nodes without enough history count
// as stable.
type TrendCounts struct {
	Up     int `json:"up"`
	Down   int `json:"down"`
	Stable int `json:"stable"`
}

// Interpretation is the readable verdict on a system graph
type Interpretation struct {
	Summary         string            `json:"summary"`
	Status          Status            `json:"status"`
	GlobalCoherence float64           `json:"globalCoherence"`
	GlobalEnergy    float64           `json:"globalEnergy"`
	Critical        []aggregates.Node `json:"critical"`
	Attention       []aggregates.Node `json:"attention"`
	Healthy         int               `json:"healthy"`
	Trends          TrendCounts       `json:"trends"`
	Recommendations []string          `json:"recommendations"`
}

// Interpreter holds the band thresholds
type Interpreter struct {
	cfg *config.MetricsConfig
}

// NewInterpreter creates an interpreter; nil cfg means defaults
func NewInterpreter(cfg *config.MetricsConfig) *Interpreter {
	if cfg == nil {
		cfg = config.DefaultMetricsConfig()
	}
	return &Interpreter{cfg: cfg}
}

// Band classifies a 0-100 coherence. Out of range values are clamped and
// each band includes its lower edge.
func (i *Interpreter) Band(percent float64) Status {
	p := valueobjects.ClampPercent(percent)
	switch {
	case p >= i.cfg.FlowBand:
		return StatusFlow
	case p >= i.cfg.ExpansionBand:
		return StatusExpansion
	case p >= i.cfg.FrictionBand:
		return StatusFriction
	case p >= i.cfg.SaturationBand:
		return StatusSaturation
	default:
		return StatusCollapse
	}
}

// Interpret classifies the graph. breakdown may be nil; when it has data
// its overall score is the global coherence. trends maps node ids to
// their detected trend.
func (i *Interpreter) Interpret(graph *aggregates.SystemGraph, breakdown *metrics.CoherenceBreakdown, trends map[string]valueobjects.Trend) Interpretation {
	nodes := graph.EntityNodes()
	stats := graph.Stats()

	out := Interpretation{
		Critical:        []aggregates.Node{},
		Attention:       []aggregates.Node{},
		Recommendations: []string{},
	}

	hasData := len(nodes) > 0
	out.GlobalCoherence = stats.AverageCoherence * 100
	if breakdown != nil && breakdown.HasData {
		out.GlobalCoherence = breakdown.Overall
		hasData = true
	}
	out.GlobalCoherence = valueobjects.ClampPercent(out.GlobalCoherence)
	out.GlobalEnergy = valueobjects.ClampPercent(stats.AverageEnergy * 100)

	criticalBelow := i.cfg.FrictionBand
	attentionBelow := i.cfg.ExpansionBand
	for _, n := range nodes {
		pct := n.CoherencePercent()
		switch {
		case pct < criticalBelow:
			out.Critical = append(out.Critical, n)
		case pct < attentionBelow:
			out.Attention = append(out.Attention, n)
		default:
			out.Healthy++
		}

		switch trends[n.ID.String()] {
		case valueobjects.TrendImproving:
			out.Trends.Up++
		case valueobjects.TrendDeclining:
			out.Trends.Down++
		default:
			out.Trends.Stable++
		}
	}
	out.Critical = i.lowest(out.Critical)
	out.Attention = i.lowest(out.Attention)

	if !hasData {
		out.Status = StatusUnknown
		out.Summary = "Aún no hay suficientes datos para interpretar tu sistema."
		out.Recommendations = append(out.Recommendations, "Registra un proyecto, una relación o tu primera entrada diaria.")
		return out
	}

	out.Status = i.Band(out.GlobalCoherence)
	out.Summary = fmt.Sprintf(
		"Sistema en %s: %d nodos, coherencia global %.0f%%, energía %.0f%%. %d en estado crítico, %d al alza y %d a la baja.",
		out.Status, len(nodes), out.GlobalCoherence, out.GlobalEnergy,
		len(criticalOf(nodes, criticalBelow)), out.Trends.Up, out.Trends.Down,
	)
	out.Recommendations = i.recommend(out)
	return out
}

// lowest sorts ascending by coherence and keeps the first MaxFlagged.
// Ties keep graph order.
func (i *Interpreter) lowest(nodes []aggregates.Node) []aggregates.Node {
	sort.SliceStable(nodes, func(a, b int) bool { return nodes[a].Coherence < nodes[b].Coherence })
	if len(nodes) > i.cfg.MaxFlagged {
		nodes = nodes[:i.cfg.MaxFlagged]
	}
	return nodes
}

func criticalOf(nodes []aggregates.Node, below float64) []aggregates.Node {
	out := []aggregates.Node{}
	for _, n := range nodes {
		if n.CoherencePercent() < below {
			out = append(out, n)
		}
	}
	return out
}

// Describe returns the one-line reading of a single status
func Describe(status Status) string {
	switch status {
	case StatusFlow:
		return "Tus áreas avanzan alineadas; sostén el ritmo."
	case StatusExpansion:
		return "Hay crecimiento; consolida lo que funciona antes de abrir más frentes."
	case StatusFriction:
		return "Algunas áreas tiran en direcciones distintas; revisa prioridades."
	case StatusSaturation:
		return "Demasiada carga para la energía disponible; reduce compromisos."
	case StatusCollapse:
		return "El sistema necesita descanso y foco en lo esencial."
	default:
		return "Sin datos suficientes."
	}
}

func (i *Interpreter) recommend(in Interpretation) []string {
	recs := []string{Describe(in.Status)}
	for _, n := range in.Critical {
		recs = append(recs, fmt.Sprintf("Atiende «%s»: coherencia %.0f%% (%s).", n.Label, n.CoherencePercent(), i.Band(n.CoherencePercent())))
	}
	if in.Trends.Down > in.Trends.Up {
		recs = append(recs, "Más nodos bajan que suben; observa qué cambió esta semana.")
	}
	return recs
}
