package statistics

import (
	"sort"
	"time"

	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
	"observador-backend/domain/services/metrics"
)

// EmotionCount is one row of the emotion frequency table
type EmotionCount struct {
	Type             string  `json:"type"`
	Count            int     `json:"count"`
	AverageIntensity float64 `json:"averageIntensity"`
}

// WeekdayBucket averages entries logged on one day of the week
type WeekdayBucket struct {
	Weekday          time.Weekday `json:"weekday"`
	Name             string       `json:"name"`
	Count            int          `json:"count"`
	AverageEnergy    float64      `json:"averageEnergy"`
	AverageEmotional float64      `json:"averageEmotional"`
}

// WeekBucket averages entries logged in one week, keyed by its Monday
type WeekBucket struct {
	WeekStart        time.Time `json:"weekStart"`
	Count            int       `json:"count"`
	AverageEnergy    float64   `json:"averageEnergy"`
	AverageEmotional float64   `json:"averageEmotional"`
}

// EntryTrend compares the second half of a window against the first
type EntryTrend struct {
	Direction valueobjects.Trend `json:"direction"`
	Change    float64            `json:"change"`
}

// EntrySummary is the full set of daily entry aggregates
type EntrySummary struct {
	TotalEntries       int             `json:"totalEntries"`
	AverageEmotional   float64         `json:"averageEmotional"`
	AverageEnergy      float64         `json:"averageEnergy"`
	AverageCoherence   float64         `json:"averageCoherence"`
	TopEmotions        []EmotionCount  `json:"topEmotions"`
	SynchronicityCount int             `json:"synchronicityCount"`
	Streaks            Streaks         `json:"streaks"`
	Trend              EntryTrend      `json:"trend"`
	ByWeekday          []WeekdayBucket `json:"byWeekday"`
	ByWeek             []WeekBucket    `json:"byWeek"`
}

// SummaryOptions tune Summarize
type SummaryOptions struct {
	TopN           int
	TrendThreshold float64
	Now            time.Time
}

type bucket struct {
	energy, emotional float64
	count             int
}

func (b *bucket) add(v metrics.EntryValues) {
	b.energy += v.EnergyLevel
	b.emotional += v.EmotionalState
	b.count++
}

func (b bucket) means() (energy, emotional float64) {
	if b.count == 0 {
		return 0, 0
	}
	return b.energy / float64(b.count), b.emotional / float64(b.count)
}

// Summarize computes every entry aggregate. An empty slice yields zero
// values and a stable trend.
func Summarize(calc *metrics.Calculator, entries []*entities.DailyEntry, opts SummaryOptions) EntrySummary {
	ordered := sortByDate(entries)

	summary := EntrySummary{
		TotalEntries: len(ordered),
		TopEmotions:  TopEmotions(ordered, opts.TopN),
		ByWeekday:    WeekdayAverages(ordered),
		ByWeek:       WeeklyAverages(ordered),
		Trend:        Trend(ordered, opts.TrendThreshold),
	}

	dates := make([]time.Time, 0, len(ordered))
	var all bucket
	var coherence float64
	for _, e := range ordered {
		all.add(metrics.DefaultEntry(e))
		coherence += calc.ResolveEntryCoherence(e)
		dates = append(dates, e.Date)
		if e.HasSynchronicity() {
			summary.SynchronicityCount++
		}
	}
	summary.AverageEnergy, summary.AverageEmotional = all.means()
	if all.count > 0 {
		summary.AverageCoherence = coherence / float64(all.count)
	}
	summary.Streaks = ComputeStreaks(dates, opts.Now)

	return summary
}

// TopEmotions counts emotion occurrences, most frequent first with ties
// broken alphabetically, truncated to n. n <= 0 means no limit.
func TopEmotions(entries []*entities.DailyEntry, n int) []EmotionCount {
	counts := make(map[string]*EmotionCount)
	intensity := make(map[string]float64)
	for _, e := range entries {
		for _, emotion := range e.Emotions {
			if emotion.Type == "" {
				continue
			}
			c, ok := counts[emotion.Type]
			if !ok {
				c = &EmotionCount{Type: emotion.Type}
				counts[emotion.Type] = c
			}
			c.Count++
			intensity[emotion.Type] += emotion.Intensity
		}
	}

	out := make([]EmotionCount, 0, len(counts))
	for name, c := range counts {
		c.AverageIntensity = intensity[name] / float64(c.Count)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// WeekdayAverages always returns seven buckets, Sunday first
func WeekdayAverages(entries []*entities.DailyEntry) []WeekdayBucket {
	var buckets [7]bucket
	for _, e := range entries {
		buckets[e.Date.UTC().Weekday()].add(metrics.DefaultEntry(e))
	}

	out := make([]WeekdayBucket, 7)
	for i, b := range buckets {
		energy, emotional := b.means()
		out[i] = WeekdayBucket{
			Weekday:          time.Weekday(i),
			Name:             weekdayNames[i],
			Count:            b.count,
			AverageEnergy:    energy,
			AverageEmotional: emotional,
		}
	}
	return out
}

var weekdayNames = [7]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

// WeeklyAverages buckets entries by the Monday starting their week
func WeeklyAverages(entries []*entities.DailyEntry) []WeekBucket {
	buckets := make(map[time.Time]*bucket)
	keys := []time.Time{}
	for _, e := range entries {
		key := WeekStart(e.Date)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.add(metrics.DefaultEntry(e))
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := make([]WeekBucket, 0, len(keys))
	for _, key := range keys {
		energy, emotional := buckets[key].means()
		out = append(out, WeekBucket{
			WeekStart:        key,
			Count:            buckets[key].count,
			AverageEnergy:    energy,
			AverageEmotional: emotional,
		})
	}
	return out
}

// WeekStart returns the Monday of t's week in UTC
func WeekStart(t time.Time) time.Time {
	day := entities.Day(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Trend compares the mean energy of the later half of the entries with the
// earlier half. Fewer than two entries are stable.
func Trend(entries []*entities.DailyEntry, threshold float64) EntryTrend {
	if len(entries) < 2 {
		return EntryTrend{Direction: valueobjects.TrendStable}
	}

	mid := len(entries) / 2
	var first, second bucket
	for i, e := range entries {
		if i < mid {
			first.add(metrics.DefaultEntry(e))
		} else {
			second.add(metrics.DefaultEntry(e))
		}
	}
	before, _ := first.means()
	after, _ := second.means()
	change := after - before

	return EntryTrend{
		Direction: valueobjects.ClassifyChange(change, threshold),
		Change:    change,
	}
}

func sortByDate(entries []*entities.DailyEntry) []*entities.DailyEntry {
	out := make([]*entities.DailyEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
