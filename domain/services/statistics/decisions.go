package statistics

import (
	"sort"
	"time"

	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
)

// DecisionTypeCount is one row of the decision type table
type DecisionTypeCount struct {
	Type    string  `json:"type"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// DailyRevenue is the revenue impact booked on one day
type DailyRevenue struct {
	Date      time.Time `json:"date"`
	Decisions int       `json:"decisions"`
	Revenue   float64   `json:"revenue"`
}

// DecisionSummary aggregates agent decisions for the dashboard
type DecisionSummary struct {
	TotalDecisions    int                 `json:"totalDecisions"`
	TotalRevenue      float64             `json:"totalRevenue"`
	AverageRevenue    float64             `json:"averageRevenue"`
	AverageCoherence  float64             `json:"averageCoherence"`
	WithCoherence     int                 `json:"withCoherence"`
	AverageConfidence float64             `json:"averageConfidence"`
	TopTypes          []DecisionTypeCount `json:"topTypes"`
	Daily             []DailyRevenue      `json:"daily"`
}

// SummarizeDecisions reduces decisions. Coherence and confidence averages
// only include decisions that reported them; WithCoherence counts those.
func SummarizeDecisions(decisions []*entities.AgentDecision, topN int) DecisionSummary {
	summary := DecisionSummary{
		TopTypes: []DecisionTypeCount{},
		Daily:    []DailyRevenue{},
	}

	types := make(map[string]*DecisionTypeCount)
	days := make(map[time.Time]*DailyRevenue)
	var coherence, confidence float64
	var withCoherence, withConfidence int

	for _, d := range decisions {
		if d == nil {
			continue
		}
		summary.TotalDecisions++
		summary.TotalRevenue += d.RevenueImpact

		if d.CoherenceScore != nil {
			coherence += valueobjects.ClampPercent(*d.CoherenceScore)
			withCoherence++
		}
		if d.Confidence != nil {
			confidence += valueobjects.Clamp(*d.Confidence, 0, 1)
			withConfidence++
		}

		kind := d.DecisionType
		if kind == "" {
			kind = "unspecified"
		}
		tc, ok := types[kind]
		if !ok {
			tc = &DecisionTypeCount{Type: kind}
			types[kind] = tc
		}
		tc.Count++
		tc.Revenue += d.RevenueImpact

		day := entities.Day(d.CreatedAt)
		dr, ok := days[day]
		if !ok {
			dr = &DailyRevenue{Date: day}
			days[day] = dr
		}
		dr.Decisions++
		dr.Revenue += d.RevenueImpact
	}

	if summary.TotalDecisions > 0 {
		summary.AverageRevenue = summary.TotalRevenue / float64(summary.TotalDecisions)
	}
	summary.WithCoherence = withCoherence
	if withCoherence > 0 {
		summary.AverageCoherence = coherence / float64(withCoherence)
	}
	if withConfidence > 0 {
		summary.AverageConfidence = confidence / float64(withConfidence)
	}

	for _, tc := range types {
		summary.TopTypes = append(summary.TopTypes, *tc)
	}
	sort.Slice(summary.TopTypes, func(i, j int) bool {
		if summary.TopTypes[i].Count != summary.TopTypes[j].Count {
			return summary.TopTypes[i].Count > summary.TopTypes[j].Count
		}
		return summary.TopTypes[i].Type < summary.TopTypes[j].Type
	})
	if topN > 0 && len(summary.TopTypes) > topN {
		summary.TopTypes = summary.TopTypes[:topN]
	}

	for _, dr := range days {
		summary.Daily = append(summary.Daily, *dr)
	}
	sort.Slice(summary.Daily, func(i, j int) bool { return summary.Daily[i].Date.Before(summary.Daily[j].Date) })

	return summary
}
