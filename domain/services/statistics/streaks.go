// Package statistics reduces daily entries and agent decisions into
// aggregates for dashboards.
package statistics

import (
	"sort"
	"time"

	"observador-backend/domain/core/entities"
)

// Streaks holds the current and longest run of consecutive days
type Streaks struct {
	Current int `json:"currentStreak"`
	Longest int `json:"longestStreak"`
}

// ComputeStreaks scans calendar days for consecutive runs. The current
// streak only counts if the last day is today or yesterday relative to now.
// Among equal runs the first one found is kept.
func ComputeStreaks(dates []time.Time, now time.Time) Streaks {
	days := uniqueDays(dates)
	if len(days) == 0 {
		return Streaks{}
	}

	longest, run := 0, 1
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i-1], days[i]) == 1 {
			run++
			continue
		}
		if run > longest {
			longest = run
		}
		run = 1
	}
	if run > longest {
		longest = run
	}

	current := 0
	gap := daysBetween(days[len(days)-1], entities.Day(now))
	if gap >= 0 && gap <= 1 {
		current = run
	}

	return Streaks{Current: current, Longest: longest}
}

// uniqueDays truncates to calendar days, sorts ascending and dedupes
func uniqueDays(dates []time.Time) []time.Time {
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		days = append(days, entities.Day(d))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := days[:0]
	for i, d := range days {
		if i > 0 && d.Equal(days[i-1]) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
