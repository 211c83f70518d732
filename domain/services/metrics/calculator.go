// Package metrics turns single records into energy and coherence scores.
package metrics

import (
	"observador-backend/domain/config"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
)

// Score is the normalized energy and coherence of one record
type Score struct {
	Energy    float64 `json:"energy"`
	Coherence float64 `json:"coherence"`
}

// Calculator applies the per-kind formulas. It holds no state besides
// its thresholds and is safe for concurrent use.
type Calculator struct {
	cfg *config.MetricsConfig
}

// NewCalculator creates a calculator; nil cfg means defaults
func NewCalculator(cfg *config.MetricsConfig) *Calculator {
	if cfg == nil {
		cfg = config.DefaultMetricsConfig()
	}
	return &Calculator{cfg: cfg}
}

// Clamp bounds x to the configured score range
func (c *Calculator) Clamp(x float64) float64 {
	return valueobjects.Clamp(x, c.cfg.ScoreFloor, c.cfg.ScoreCeiling)
}

func (c *Calculator) score(energy, coherence float64) Score {
	return Score{Energy: c.Clamp(energy), Coherence: c.Clamp(coherence)}
}

// Project scores a resolved project
func (c *Calculator) Project(v ProjectValues) Score {
	energy := (v.Progress/100 + v.EnergyInvested/10) / 2
	coherence := energy * 0.8
	if v.Progress > 50 {
		coherence = energy * 1.1
	}
	return c.score(energy, coherence)
}

// Relationship scores a resolved relationship
func (c *Calculator) Relationship(v RelationshipValues) Score {
	energy := v.ConnectionQuality / 10
	coherence := energy * 0.7
	if v.EnergyExchange == entities.EnergyExchangePositive {
		coherence = energy * 1.2
	}
	return c.score(energy, coherence)
}

// FulfillmentRate is fulfilled over expected days, or the current streak
// over the fallback window when nothing is expected yet
func (c *Calculator) FulfillmentRate(v IntentionValues) float64 {
	if v.TotalExpectedDays > 0 {
		return float64(v.TotalFulfilledDays) / float64(v.TotalExpectedDays)
	}
	return float64(v.CurrentStreak) / c.cfg.StreakFallbackDays
}

// Intention scores a resolved intention
func (c *Calculator) Intention(v IntentionValues) Score {
	energy := c.Clamp(c.FulfillmentRate(v))
	coherence := energy * 0.9
	if v.CurrentStreak > c.cfg.HabitStreakDays {
		coherence = energy * 1.1
	}
	return c.score(energy, coherence)
}

// Manifestation scores a resolved manifestation
func (c *Calculator) Manifestation(v ManifestationValues) Score {
	energy := c.Clamp(v.Stage / 100)
	coherence := energy
	if v.HasAlignment {
		coherence = v.AlignmentScore / 100
	}
	return c.score(energy, coherence)
}

// Score dispatches on the entity kind. Unknown kinds score at the floor.
func (c *Calculator) Score(entity entities.Entity) Score {
	switch e := entity.(type) {
	case *entities.Project:
		return c.Project(DefaultProject(e))
	case *entities.Relationship:
		return c.Relationship(DefaultRelationship(e))
	case *entities.Intention:
		return c.Intention(DefaultIntention(e))
	case *entities.Manifestation:
		return c.Manifestation(DefaultManifestation(e))
	}
	return Score{Energy: c.cfg.ScoreFloor, Coherence: c.cfg.ScoreFloor}
}

// Advancement is the kind's progress-like metric on [0, 1]: project
// progress, relationship quality, intention fulfillment, manifestation stage
func (c *Calculator) Advancement(entity entities.Entity) float64 {
	var v float64
	switch e := entity.(type) {
	case *entities.Project:
		v = DefaultProject(e).Progress / 100
	case *entities.Relationship:
		v = DefaultRelationship(e).ConnectionQuality / 10
	case *entities.Intention:
		v = c.FulfillmentRate(DefaultIntention(e))
	case *entities.Manifestation:
		v = DefaultManifestation(e).Stage / 100
	}
	return valueobjects.Clamp(v, 0, 1)
}

// CoherencePercent is the 0-100 coherence used by the breakdown
func (c *Calculator) CoherencePercent(entity entities.Entity) float64 {
	var pct float64
	switch e := entity.(type) {
	case *entities.Project:
		v := DefaultProject(e)
		pct = (v.Progress/100 + v.Satisfaction/10) / 2 * 100
	case *entities.Relationship:
		v := DefaultRelationship(e)
		pct = (v.Importance/10 + v.ConnectionQuality/10) / 2 * 100
	case *entities.Intention:
		pct = c.FulfillmentRate(DefaultIntention(e)) * 100
	case *entities.Manifestation:
		pct = DefaultManifestation(e).Stage
	}
	return valueobjects.ClampPercent(pct)
}

// EntryCoherence derives a daily entry's 0-100 coherence level
func (c *Calculator) EntryCoherence(v EntryValues) float64 {
	return valueobjects.ClampPercent((v.EmotionalState + v.EnergyLevel) / 2 * 10)
}

// ResolveEntryCoherence returns the stored coherence level of an entry,
// deriving it when absent
func (c *Calculator) ResolveEntryCoherence(e *entities.DailyEntry) float64 {
	if e.CoherenceLevel != nil {
		stored := floatOr(e.CoherenceLevel, -1)
		if stored >= 0 {
			return valueobjects.ClampPercent(stored)
		}
	}
	return c.EntryCoherence(DefaultEntry(e))
}
