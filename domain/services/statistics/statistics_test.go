package statistics

import (
	"testing"
	"time"

	"observador-backend/domain/core/aggregates"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
	"observador-backend/domain/services/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) // a Monday

func at(offset int) time.Time {
	return day0.AddDate(0, 0, offset)
}

func entry(offset int, emotional, energy float64, emotions ...string) *entities.DailyEntry {
	e := &entities.DailyEntry{
		Date:           at(offset),
		EmotionalState: entities.Float(emotional),
		EnergyLevel:    entities.Float(energy),
	}
	for _, name := range emotions {
		e.Emotions = append(e.Emotions, entities.Emotion{Type: name, Intensity: 5})
	}
	return e
}

func TestComputeStreaks(t *testing.T) {
	tests := []struct {
		name        string
		offsets     []int
		now         time.Time
		wantCurrent int
		wantLongest int
	}{
		{
			name:        "gap splits runs",
			offsets:     []int{0, 1, 2, 5, 6},
			now:         at(6),
			wantCurrent: 2,
			wantLongest: 3,
		},
		{
			name:        "yesterday keeps the streak alive",
			offsets:     []int{0, 1, 2, 5, 6},
			now:         at(7),
			wantCurrent: 2,
			wantLongest: 3,
		},
		{
			name:        "two days idle resets current",
			offsets:     []int{0, 1, 2, 5, 6},
			now:         at(8),
			wantCurrent: 0,
			wantLongest: 3,
		},
		{
			name:        "unsorted with duplicates",
			offsets:     []int{2, 0, 1, 1, 2},
			now:         at(2),
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name:        "final run is the longest",
			offsets:     []int{0, 3, 4, 5, 6},
			now:         at(6),
			wantCurrent: 4,
			wantLongest: 4,
		},
		{
			name:        "single entry today",
			offsets:     []int{0},
			now:         at(0),
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:    "no entries",
			offsets: nil,
			now:     at(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := make([]time.Time, 0, len(tt.offsets))
			for _, o := range tt.offsets {
				dates = append(dates, at(o))
			}

			got := ComputeStreaks(dates, tt.now)

			assert.Equal(t, tt.wantCurrent, got.Current)
			assert.Equal(t, tt.wantLongest, got.Longest)
		})
	}
}

func TestComputeStreaks_IgnoresTimeOfDay(t *testing.T) {
	dates := []time.Time{
		time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC),
		time.Date(2026, 3, 3, 0, 1, 0, 0, time.UTC),
	}

	got := ComputeStreaks(dates, time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC))

	assert.Equal(t, Streaks{Current: 2, Longest: 2}, got)
}

func TestTopEmotions(t *testing.T) {
	entries := []*entities.DailyEntry{
		entry(0, 5, 5, "alegría", "calma"),
		entry(1, 5, 5, "calma", "ansiedad"),
		entry(2, 5, 5, "calma", "alegría", "gratitud"),
	}

	top := TopEmotions(entries, 3)

	require.Len(t, top, 3)
	assert.Equal(t, "calma", top[0].Type)
	assert.Equal(t, 3, top[0].Count)
	assert.Equal(t, "alegría", top[1].Type)
	// ansiedad and gratitud tie at 1; alphabetical order wins
	assert.Equal(t, "ansiedad", top[2].Type)
	assert.InDelta(t, 5.0, top[0].AverageIntensity, 1e-9)
}

func TestSummarize(t *testing.T) {
	calc := metrics.NewCalculator(nil)
	entries := []*entities.DailyEntry{
		entry(1, 6, 4, "calma"),
		entry(0, 4, 2),
		entry(7, 8, 8),
		entry(8, 6, 6),
	}
	entries[2].Synchronicities = "encontré a Ana en el tren"
	entries[3].SynchronicitiesData = []map[string]any{{"kind": "número", "value": "11:11"}}

	summary := Summarize(calc, entries, SummaryOptions{TopN: 5, TrendThreshold: 0.5, Now: at(8)})

	assert.Equal(t, 4, summary.TotalEntries)
	assert.InDelta(t, 6.0, summary.AverageEmotional, 1e-9)
	assert.InDelta(t, 5.0, summary.AverageEnergy, 1e-9)
	assert.InDelta(t, 55.0, summary.AverageCoherence, 1e-9)
	assert.Equal(t, 2, summary.SynchronicityCount)
	assert.Equal(t, Streaks{Current: 2, Longest: 2}, summary.Streaks)

	// first half energy 3, second half 7
	assert.Equal(t, valueobjects.TrendImproving, summary.Trend.Direction)
	assert.InDelta(t, 4.0, summary.Trend.Change, 1e-9)

	require.Len(t, summary.ByWeekday, 7)
	assert.Equal(t, 2, summary.ByWeekday[time.Monday].Count)
	assert.InDelta(t, 5.0, summary.ByWeekday[time.Monday].AverageEnergy, 1e-9)
	assert.Equal(t, 0, summary.ByWeekday[time.Sunday].Count)

	require.Len(t, summary.ByWeek, 2)
	assert.Equal(t, entities.Day(day0), summary.ByWeek[0].WeekStart)
	assert.InDelta(t, 3.0, summary.ByWeek[0].AverageEnergy, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(metrics.NewCalculator(nil), nil, SummaryOptions{TopN: 3, TrendThreshold: 0.5, Now: day0})

	assert.Zero(t, summary.TotalEntries)
	assert.Zero(t, summary.AverageEnergy)
	assert.Empty(t, summary.TopEmotions)
	assert.Equal(t, valueobjects.TrendStable, summary.Trend.Direction)
	assert.Len(t, summary.ByWeekday, 7)
	assert.Empty(t, summary.ByWeek)
}

func TestTrend_SingleEntryIsStable(t *testing.T) {
	got := Trend([]*entities.DailyEntry{entry(0, 9, 9)}, 0.5)

	assert.Equal(t, valueobjects.TrendStable, got.Direction)
}

func TestWeekStart(t *testing.T) {
	sunday := time.Date(2026, 3, 8, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), WeekStart(sunday))
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), WeekStart(day0))
}

func TestSummarizeDecisions(t *testing.T) {
	decisions := []*entities.AgentDecision{
		{DecisionType: "pricing", RevenueImpact: 100, CoherenceScore: entities.Float(80), Confidence: entities.Float(0.9), CreatedAt: at(0)},
		{DecisionType: "pricing", RevenueImpact: -20, CoherenceScore: entities.Float(60), CreatedAt: at(0)},
		{DecisionType: "outreach", RevenueImpact: 40, Confidence: entities.Float(0.5), CreatedAt: at(1)},
		{RevenueImpact: 0, CreatedAt: at(1)},
	}

	summary := SummarizeDecisions(decisions, 2)

	assert.Equal(t, 4, summary.TotalDecisions)
	assert.InDelta(t, 120.0, summary.TotalRevenue, 1e-9)
	assert.InDelta(t, 30.0, summary.AverageRevenue, 1e-9)
	assert.InDelta(t, 70.0, summary.AverageCoherence, 1e-9)
	assert.Equal(t, 2, summary.WithCoherence)
	assert.InDelta(t, 0.7, summary.AverageConfidence, 1e-9)
	require.Len(t, summary.TopTypes, 2)
	assert.Equal(t, "pricing", summary.TopTypes[0].Type)
	assert.Equal(t, "outreach", summary.TopTypes[1].Type)
	require.Len(t, summary.Daily, 2)
	assert.InDelta(t, 80.0, summary.Daily[0].Revenue, 1e-9)
}

func TestSummarizeDecisions_Empty(t *testing.T) {
	summary := SummarizeDecisions(nil, 5)

	assert.Zero(t, summary.TotalDecisions)
	assert.Zero(t, summary.AverageRevenue)
	assert.Zero(t, summary.WithCoherence)
	assert.Empty(t, summary.TopTypes)
}

func TestEnergyDistribution(t *testing.T) {
	nodes := []aggregates.Node{
		{Type: valueobjects.NodeTypeSelf, Energy: 0.75},
		{Type: valueobjects.NodeTypeProject, Energy: 0.6},
		{Type: valueobjects.NodeTypeProject, Energy: 0.4},
		{Type: valueobjects.NodeTypeRelationship, Energy: 1.0},
	}

	flow := EnergyDistribution(nodes)

	assert.InDelta(t, 2.0, flow.TotalEnergy, 1e-9)
	require.Len(t, flow.Categories, 4)
	assert.Equal(t, valueobjects.NodeTypeProject, flow.Categories[0].Type)
	assert.InDelta(t, 0.5, flow.Categories[0].AverageEnergy, 1e-9)
	assert.InDelta(t, 50.0, flow.Categories[0].Share, 1e-9)
	assert.Zero(t, flow.Categories[2].Share)
	assert.Equal(t, "project", flow.Dominant)
}
