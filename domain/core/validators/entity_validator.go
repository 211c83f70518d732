package validators

import (
	"strings"
	"time"
	"unicode/utf8"

	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
	"observador-backend/pkg/errors"
)

// EntityValidator checks the ranges of incoming entity records. Missing
// numeric fields are allowed; they are defaulted later by the metrics pass.
type EntityValidator struct {
	labelMinLength int
	labelMaxLength int
	maxRelated     int
}

// NewEntityValidator creates a new entity validator with default rules
func NewEntityValidator() *EntityValidator {
	return &EntityValidator{
		labelMinLength: valueobjects.MinLabelLength,
		labelMaxLength: valueobjects.MaxLabelLength,
		maxRelated:     100,
	}
}

// Validate dispatches on the entity kind
func (v *EntityValidator) Validate(entity entities.Entity) error {
	validationErrors := errors.NewValidationErrors()

	v.checkLabel(validationErrors, entity.Label())

	switch e := entity.(type) {
	case *entities.Project:
		v.checkRange(validationErrors, "progress", e.Progress, 0, 100)
		v.checkRange(validationErrors, "satisfaction", e.Satisfaction, 0, 10)
		v.checkRange(validationErrors, "energyInvested", e.EnergyInvested, 0, 10)
		v.checkRange(validationErrors, "impactLevel", e.ImpactLevel, 0, 10)
		if len(e.RelatedPeople) > v.maxRelated {
			validationErrors.Add("relatedPeople", "too many related people")
		}
	case *entities.Relationship:
		v.checkRange(validationErrors, "connectionQuality", e.ConnectionQuality, 0, 10)
		v.checkRange(validationErrors, "importance", e.Importance, 0, 10)
		if e.EnergyExchange != "" && !e.EnergyExchange.IsValid() {
			validationErrors.AddError(errors.ErrInvalidEnergyExchange.Clone().
				WithDetail("field", "energyExchange").
				WithDetail("value", string(e.EnergyExchange)))
		}
	case *entities.Intention:
		v.checkCount(validationErrors, "currentStreak", e.CurrentStreak)
		v.checkCount(validationErrors, "longestStreak", e.LongestStreak)
		v.checkCount(validationErrors, "totalFulfilledDays", e.TotalFulfilledDays)
		v.checkCount(validationErrors, "totalExpectedDays", e.TotalExpectedDays)
	case *entities.Manifestation:
		v.checkRange(validationErrors, "manifestationStage", e.ManifestationStage, 0, 100)
		v.checkRange(validationErrors, "energyRequired", e.EnergyRequired, 0, 10)
		v.checkRange(validationErrors, "alignmentScore", e.AlignmentScore, 0, 100)
	default:
		validationErrors.AddError(errors.ErrUnknownEntityKind)
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}
	return nil
}

// ValidateDailyEntry validates a daily entry against now
func (v *EntityValidator) ValidateDailyEntry(entry *entities.DailyEntry, now time.Time) error {
	validationErrors := errors.NewValidationErrors()

	if entry.Date.IsZero() {
		validationErrors.AddError(errors.ErrEntryDateRequired)
	} else if entities.Day(entry.Date).After(entities.Day(now)) {
		validationErrors.AddError(errors.ErrEntryInFuture.Clone().
			WithDetail("field", "date"))
	}

	v.checkRange(validationErrors, "emotionalState", entry.EmotionalState, 0, 10)
	v.checkRange(validationErrors, "energyLevel", entry.EnergyLevel, 0, 10)
	v.checkRange(validationErrors, "coherenceLevel", entry.CoherenceLevel, 0, 100)

	for _, emotion := range entry.Emotions {
		if strings.TrimSpace(emotion.Type) == "" {
			validationErrors.Add("emotions", "emotion type cannot be empty")
		}
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}
	return nil
}

// checkLabel validates the entity name or title
func (v *EntityValidator) checkLabel(errs *errors.ValidationErrors, label string) {
	length := utf8.RuneCountInString(strings.TrimSpace(label))
	if length < v.labelMinLength {
		errs.AddError(errors.ErrLabelRequired)
		return
	}
	if length > v.labelMaxLength {
		errs.AddError(errors.ErrLabelTooLong.Clone().
			WithDetail("actual_length", length).
			WithDetail("max_length", v.labelMaxLength))
	}
}

func (v *EntityValidator) checkRange(errs *errors.ValidationErrors, field string, value *float64, lo, hi float64) {
	if value == nil {
		return
	}
	if !(*value >= lo && *value <= hi) {
		errs.AddError(errors.ErrValueOutOfRange.Clone().
			WithDetail("field", field).
			WithDetail("min", lo).
			WithDetail("max", hi))
	}
}

func (v *EntityValidator) checkCount(errs *errors.ValidationErrors, field string, value *int) {
	if value != nil && *value < 0 {
		errs.AddError(errors.ErrValueOutOfRange.Clone().
			WithDetail("field", field).
			WithDetail("min", 0))
	}
}
