package metrics

import (
	"math"
	"testing"

	"observador-backend/domain/config"
	"observador-backend/domain/core/entities"

	"github.com/stretchr/testify/assert"
)

func TestCalculator_Score(t *testing.T) {
	calc := NewCalculator(config.DefaultMetricsConfig())

	tests := []struct {
		name          string
		entity        entities.Entity
		wantEnergy    float64
		wantCoherence float64
	}{
		{
			name:          "advanced project",
			entity:        &entities.Project{Progress: entities.Float(80), EnergyInvested: entities.Float(6)},
			wantEnergy:    0.7,
			wantCoherence: 0.77,
		},
		{
			name:          "early project",
			entity:        &entities.Project{Progress: entities.Float(20), EnergyInvested: entities.Float(4)},
			wantEnergy:    0.3,
			wantCoherence: 0.24,
		},
		{
			name:          "project with defaults",
			entity:        &entities.Project{},
			wantEnergy:    0.25,
			wantCoherence: 0.2,
		},
		{
			name:          "complete project hits the ceiling",
			entity:        &entities.Project{Progress: entities.Float(100), EnergyInvested: entities.Float(10)},
			wantEnergy:    1.0,
			wantCoherence: 1.0,
		},
		{
			name:          "positive relationship",
			entity:        &entities.Relationship{ConnectionQuality: entities.Float(8), EnergyExchange: entities.EnergyExchangePositive},
			wantEnergy:    0.8,
			wantCoherence: 0.96,
		},
		{
			name:          "draining relationship",
			entity:        &entities.Relationship{ConnectionQuality: entities.Float(8), EnergyExchange: entities.EnergyExchangeNegative},
			wantEnergy:    0.8,
			wantCoherence: 0.56,
		},
		{
			name:          "relationship with defaults",
			entity:        &entities.Relationship{},
			wantEnergy:    0.5,
			wantCoherence: 0.35,
		},
		{
			name: "intention with history",
			entity: &entities.Intention{
				CurrentStreak:      entities.Int(10),
				TotalFulfilledDays: entities.Int(15),
				TotalExpectedDays:  entities.Int(20),
			},
			wantEnergy:    0.75,
			wantCoherence: 0.825,
		},
		{
			name:          "new intention falls back to streak",
			entity:        &entities.Intention{CurrentStreak: entities.Int(15)},
			wantEnergy:    0.5,
			wantCoherence: 0.55,
		},
		{
			name:          "short streak floors",
			entity:        &entities.Intention{CurrentStreak: entities.Int(3)},
			wantEnergy:    0.1,
			wantCoherence: 0.1,
		},
		{
			name:          "aligned manifestation",
			entity:        &entities.Manifestation{ManifestationStage: entities.Float(60), AlignmentScore: entities.Float(80)},
			wantEnergy:    0.6,
			wantCoherence: 0.8,
		},
		{
			name:          "manifestation without alignment",
			entity:        &entities.Manifestation{ManifestationStage: entities.Float(60)},
			wantEnergy:    0.6,
			wantCoherence: 0.6,
		},
		{
			name:          "zero alignment counts as absent",
			entity:        &entities.Manifestation{ManifestationStage: entities.Float(5), AlignmentScore: entities.Float(0)},
			wantEnergy:    0.1,
			wantCoherence: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Score(tt.entity)
			assert.InDelta(t, tt.wantEnergy, got.Energy, 1e-9)
			assert.InDelta(t, tt.wantCoherence, got.Coherence, 1e-9)
		})
	}
}

func TestCalculator_ScoresStayInRange(t *testing.T) {
	calc := NewCalculator(nil)
	values := []float64{-50, 0, 0.5, 5, 10, 50, 100, 1e6, math.NaN(), math.Inf(1), math.Inf(-1)}

	for _, a := range values {
		for _, b := range values {
			scores := []Score{
				calc.Score(&entities.Project{Progress: entities.Float(a), EnergyInvested: entities.Float(b)}),
				calc.Score(&entities.Relationship{ConnectionQuality: entities.Float(a), EnergyExchange: entities.EnergyExchangePositive}),
				calc.Score(&entities.Manifestation{ManifestationStage: entities.Float(a), AlignmentScore: entities.Float(b)}),
			}
			for _, s := range scores {
				assert.GreaterOrEqual(t, s.Energy, 0.1)
				assert.LessOrEqual(t, s.Energy, 1.0)
				assert.GreaterOrEqual(t, s.Coherence, 0.1)
				assert.LessOrEqual(t, s.Coherence, 1.0)
			}
		}
	}

	for _, streak := range []int{-3, 0, 7, 8, 400} {
		s := calc.Score(&entities.Intention{CurrentStreak: entities.Int(streak), TotalExpectedDays: entities.Int(0)})
		assert.GreaterOrEqual(t, s.Coherence, 0.1)
		assert.LessOrEqual(t, s.Coherence, 1.0)
	}
}

func TestCalculator_Deterministic(t *testing.T) {
	calc := NewCalculator(nil)
	p := &entities.Project{Progress: entities.Float(63.3), EnergyInvested: entities.Float(7.1)}

	assert.Equal(t, calc.Score(p), calc.Score(p))
}

func TestCalculator_EntryCoherence(t *testing.T) {
	calc := NewCalculator(nil)

	assert.InDelta(t, 70.0, calc.EntryCoherence(EntryValues{EmotionalState: 6, EnergyLevel: 8}), 1e-9)
	assert.InDelta(t, 50.0, calc.ResolveEntryCoherence(&entities.DailyEntry{}), 1e-9)
	assert.InDelta(t, 42.0, calc.ResolveEntryCoherence(&entities.DailyEntry{CoherenceLevel: entities.Float(42)}), 1e-9)
	assert.InDelta(t, 100.0, calc.ResolveEntryCoherence(&entities.DailyEntry{CoherenceLevel: entities.Float(180)}), 1e-9)
}

func TestCalculator_Breakdown(t *testing.T) {
	calc := NewCalculator(nil)

	b := calc.Breakdown(BreakdownInput{
		Projects: []*entities.Project{
			{Progress: entities.Float(60), Satisfaction: entities.Float(8)}, // 70
			{Progress: entities.Float(20), Satisfaction: entities.Float(4)}, // 30
		},
		Relationships: []*entities.Relationship{
			{Importance: entities.Float(9), ConnectionQuality: entities.Float(7)}, // 80
		},
		Entries: []*entities.DailyEntry{
			{EmotionalState: entities.Float(6), EnergyLevel: entities.Float(4)}, // 50
		},
	})

	assert.True(t, b.HasData)
	assert.InDelta(t, 50.0, b.Projects, 1e-9)
	assert.InDelta(t, 80.0, b.Relationships, 1e-9)
	assert.Zero(t, b.Intentions)
	assert.InDelta(t, 50.0, b.Emotional, 1e-9)
	assert.InDelta(t, 60.0, b.Overall, 1e-9)
}

func TestCalculator_EmptyBreakdown(t *testing.T) {
	b := NewCalculator(nil).Breakdown(BreakdownInput{})

	assert.False(t, b.HasData)
	assert.Zero(t, b.Overall)
}

func TestDefaultRelationship_UnknownExchangeIsNeutral(t *testing.T) {
	v := DefaultRelationship(&entities.Relationship{EnergyExchange: "MIXED"})

	assert.Equal(t, entities.EnergyExchangeNeutral, v.EnergyExchange)
	assert.Equal(t, NeutralScale, v.Importance)
}
