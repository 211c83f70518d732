package metrics

import (
	"math"

	"observador-backend/domain/core/entities"
)

// Neutral values substituted for missing fields before any formula runs
const (
	NeutralScale    = 5.0 // 0-10 fields
	NeutralProgress = 0.0 // 0-100 fields
)

// ProjectValues is a project with every numeric field resolved
type ProjectValues struct {
	Progress       float64
	Satisfaction   float64
	EnergyInvested float64
	ImpactLevel    float64
}

// RelationshipValues is a relationship with every field resolved
type RelationshipValues struct {
	ConnectionQuality float64
	Importance        float64
	EnergyExchange    entities.EnergyExchange
}

// IntentionValues is an intention with every counter resolved
type IntentionValues struct {
	CurrentStreak      int
	LongestStreak      int
	TotalFulfilledDays int
	TotalExpectedDays  int
}

// ManifestationValues is a manifestation with every field resolved.
// HasAlignment is false when no positive alignment score was recorded.
type ManifestationValues struct {
	Stage          float64
	EnergyRequired float64
	AlignmentScore float64
	HasAlignment   bool
}

// EntryValues is a daily entry with its scores resolved
type EntryValues struct {
	EmotionalState float64
	EnergyLevel    float64
}

// DefaultProject resolves missing project fields
func DefaultProject(p *entities.Project) ProjectValues {
	return ProjectValues{
		Progress:       floatOr(p.Progress, NeutralProgress),
		Satisfaction:   floatOr(p.Satisfaction, NeutralScale),
		EnergyInvested: floatOr(p.EnergyInvested, NeutralScale),
		ImpactLevel:    floatOr(p.ImpactLevel, NeutralScale),
	}
}

// DefaultRelationship resolves missing relationship fields
func DefaultRelationship(r *entities.Relationship) RelationshipValues {
	exchange := r.EnergyExchange
	if !exchange.IsValid() {
		exchange = entities.EnergyExchangeNeutral
	}
	return RelationshipValues{
		ConnectionQuality: floatOr(r.ConnectionQuality, NeutralScale),
		Importance:        floatOr(r.Importance, NeutralScale),
		EnergyExchange:    exchange,
	}
}

// DefaultIntention resolves missing intention counters
func DefaultIntention(i *entities.Intention) IntentionValues {
	return IntentionValues{
		CurrentStreak:      intOr(i.CurrentStreak, 0),
		LongestStreak:      intOr(i.LongestStreak, 0),
		TotalFulfilledDays: intOr(i.TotalFulfilledDays, 0),
		TotalExpectedDays:  intOr(i.TotalExpectedDays, 0),
	}
}

// DefaultManifestation resolves missing manifestation fields
func DefaultManifestation(m *entities.Manifestation) ManifestationValues {
	alignment := floatOr(m.AlignmentScore, 0)
	return ManifestationValues{
		Stage:          floatOr(m.ManifestationStage, NeutralProgress),
		EnergyRequired: floatOr(m.EnergyRequired, NeutralScale),
		AlignmentScore: alignment,
		HasAlignment:   alignment > 0,
	}
}

// DefaultEntry resolves missing daily entry scores
func DefaultEntry(e *entities.DailyEntry) EntryValues {
	return EntryValues{
		EmotionalState: floatOr(e.EmotionalState, NeutralScale),
		EnergyLevel:    floatOr(e.EnergyLevel, NeutralScale),
	}
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fallback
	}
	return *v
}

func intOr(v *int, fallback int) int {
	if v == nil || *v < 0 {
		return fallback
	}
	return *v
}
