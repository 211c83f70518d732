package entities

import "time"

// EntryEvent is one tagged happening recorded in a daily entry
type EntryEvent struct {
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
	Impact      float64 `json:"impact,omitempty"`
}

// Emotion is one felt emotion with its intensity
type Emotion struct {
	Type      string  `json:"type"`
	Intensity float64 `json:"intensity"`
}

// DailyEntry is the user's log for one calendar day
type DailyEntry struct {
	ID                  string           `json:"id"`
	UserID              string           `json:"userId"`
	Date                time.Time        `json:"date"`
	EmotionalState      *float64         `json:"emotionalState,omitempty"` // 0-10
	EnergyLevel         *float64         `json:"energyLevel,omitempty"`    // 0-10
	CoherenceLevel      *float64         `json:"coherenceLevel,omitempty"` // 0-100, derived
	Events              []EntryEvent     `json:"events,omitempty"`
	Emotions            []Emotion        `json:"emotions,omitempty"`
	Synchronicities     string           `json:"synchronicities,omitempty"`
	SynchronicitiesData []map[string]any `json:"synchronicitiesData,omitempty"`
	Notes               string           `json:"notes,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

// HasSynchronicity reports whether the entry records any synchronicity
func (e *DailyEntry) HasSynchronicity() bool {
	return e.Synchronicities != "" || len(e.SynchronicitiesData) > 0
}

// Day truncates t to its calendar day in UTC
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
