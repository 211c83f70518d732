package commands

import (
	"time"

	"observador-backend/domain/core/entities"
	"observador-backend/pkg/utils"
)

// SaveDailyEntryCommand records the user's entry for one day. A second
// entry for the same day replaces the first.
type SaveDailyEntryCommand struct {
	EntryID             string                `json:"id" validate:"required"`
	UserID              string                `json:"userId" validate:"required"`
	Date                time.Time             `json:"date" validate:"required"`
	EmotionalState      *float64              `json:"emotionalState" validate:"omitempty,gte=0,lte=10"`
	EnergyLevel         *float64              `json:"energyLevel" validate:"omitempty,gte=0,lte=10"`
	CoherenceLevel      *float64              `json:"coherenceLevel" validate:"omitempty,gte=0,lte=100"`
	Events              []entities.EntryEvent `json:"events" validate:"max=50"`
	Emotions            []entities.Emotion    `json:"emotions" validate:"max=30"`
	Synchronicities     string                `json:"synchronicities" validate:"max=5000"`
	SynchronicitiesData []map[string]any      `json:"synchronicitiesData" validate:"max=50"`
	Notes               string                `json:"notes" validate:"max=10000"`
}

func (c SaveDailyEntryCommand) Validate() error   { return utils.ValidateStruct(c) }
func (c SaveDailyEntryCommand) GetUserID() string { return c.UserID }

// ToEntry builds the entry record, truncating the date to its day
func (c SaveDailyEntryCommand) ToEntry() *entities.DailyEntry {
	return &entities.DailyEntry{
		ID:                  c.EntryID,
		UserID:              c.UserID,
		Date:                entities.Day(c.Date),
		EmotionalState:      c.EmotionalState,
		EnergyLevel:         c.EnergyLevel,
		CoherenceLevel:      c.CoherenceLevel,
		Events:              c.Events,
		Emotions:            c.Emotions,
		Synchronicities:     c.Synchronicities,
		SynchronicitiesData: c.SynchronicitiesData,
		Notes:               c.Notes,
	}
}
