package statistics

import (
	"observador-backend/domain/core/aggregates"
	"observador-backend/domain/core/valueobjects"
)

// EnergyCategory is the energy held by one entity kind
type EnergyCategory struct {
	Type          valueobjects.NodeType `json:"type"`
	Count         int                   `json:"count"`
	TotalEnergy   float64               `json:"totalEnergy"`
	AverageEnergy float64               `json:"averageEnergy"`
	Share         float64               `json:"share"` // percent of all entity energy
}

// EnergyFlow is how the user's energy is spread across kinds
type EnergyFlow struct {
	TotalEnergy float64          `json:"totalEnergy"`
	Categories  []EnergyCategory `json:"categories"`
	Dominant    string           `json:"dominant,omitempty"`
}

// EnergyDistribution sums node energy per entity kind. Every kind is
// reported, in ring order, even when empty.
func EnergyDistribution(nodes []aggregates.Node) EnergyFlow {
	byType := make(map[valueobjects.NodeType]*EnergyCategory, len(valueobjects.EntityTypes))
	flow := EnergyFlow{Categories: make([]EnergyCategory, 0, len(valueobjects.EntityTypes))}
	for _, t := range valueobjects.EntityTypes {
		byType[t] = &EnergyCategory{Type: t}
	}

	for _, n := range nodes {
		c, ok := byType[n.Type]
		if !ok {
			continue
		}
		c.Count++
		c.TotalEnergy += n.Energy
		flow.TotalEnergy += n.Energy
	}

	var dominant float64
	for _, t := range valueobjects.EntityTypes {
		c := byType[t]
		if c.Count > 0 {
			c.AverageEnergy = c.TotalEnergy / float64(c.Count)
		}
		if flow.TotalEnergy > 0 {
			c.Share = c.TotalEnergy / flow.TotalEnergy * 100
		}
		if c.TotalEnergy > dominant {
			dominant = c.TotalEnergy
			flow.Dominant = string(t)
		}
		flow.Categories = append(flow.Categories, *c)
	}
	return flow
}
