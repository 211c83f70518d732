package metrics

import "observador-backend/domain/core/entities"

// CoherenceBreakdown is the 0-100 coherence per area of the user's life.
// Overall is the mean of the areas that have data.
type CoherenceBreakdown struct {
	Projects       float64 `json:"projects"`
	Relationships  float64 `json:"relationships"`
	Intentions     float64 `json:"intentions"`
	Manifestations float64 `json:"manifestations"`
	Emotional      float64 `json:"emotional"`
	Overall        float64 `json:"overall"`
	HasData        bool    `json:"hasData"`
}

// BreakdownInput groups the records a breakdown is computed from
type BreakdownInput struct {
	Projects       []*entities.Project
	Relationships  []*entities.Relationship
	Intentions     []*entities.Intention
	Manifestations []*entities.Manifestation
	Entries        []*entities.DailyEntry
}

// Breakdown computes the coherence breakdown
func (c *Calculator) Breakdown(in BreakdownInput) CoherenceBreakdown {
	var b CoherenceBreakdown
	var sum float64
	var areas int

	add := func(target *float64, total float64, n int) {
		if n == 0 {
			return
		}
		*target = total / float64(n)
		sum += *target
		areas++
	}

	var total float64
	for _, p := range in.Projects {
		total += c.CoherencePercent(p)
	}
	add(&b.Projects, total, len(in.Projects))

	total = 0
	for _, r := range in.Relationships {
		total += c.CoherencePercent(r)
	}
	add(&b.Relationships, total, len(in.Relationships))

	total = 0
	for _, i := range in.Intentions {
		total += c.CoherencePercent(i)
	}
	add(&b.Intentions, total, len(in.Intentions))

	total = 0
	for _, m := range in.Manifestations {
		total += c.CoherencePercent(m)
	}
	add(&b.Manifestations, total, len(in.Manifestations))

	total = 0
	for _, e := range in.Entries {
		total += c.ResolveEntryCoherence(e)
	}
	add(&b.Emotional, total, len(in.Entries))

	if areas > 0 {
		b.Overall = sum / float64(areas)
		b.HasData = true
	}
	return b
}
