package validators

import (
	"math"
	"testing"
	"time"

	"observador-backend/domain/core/entities"
	"observador-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityValidator_Validate(t *testing.T) {
	validator := NewEntityValidator()

	tests := []struct {
		name       string
		entity     entities.Entity
		wantErr    bool
		wantFields []string
	}{
		{
			name:   "valid project",
			entity: &entities.Project{Name: "Huerto", Progress: entities.Float(40), Satisfaction: entities.Float(7)},
		},
		{
			name:   "project with missing numbers is accepted",
			entity: &entities.Project{Name: "Huerto"},
		},
		{
			name:       "progress above range",
			entity:     &entities.Project{Name: "Huerto", Progress: entities.Float(140)},
			wantErr:    true,
			wantFields: []string{"progress"},
		},
		{
			name:       "NaN is out of range",
			entity:     &entities.Manifestation{Title: "Casa", ManifestationStage: entities.Float(math.NaN())},
			wantErr:    true,
			wantFields: []string{"manifestationStage"},
		},
		{
			name:       "unknown energy exchange",
			entity:     &entities.Relationship{Name: "Ana", EnergyExchange: "MIXED"},
			wantErr:    true,
			wantFields: []string{"energyExchange"},
		},
		{
			name:       "negative streak",
			entity:     &entities.Intention{Title: "Meditar", CurrentStreak: entities.Int(-1)},
			wantErr:    true,
			wantFields: []string{"currentStreak"},
		},
		{
			name:       "blank label",
			entity:     &entities.Intention{Title: "   "},
			wantErr:    true,
			wantFields: []string{"general"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.entity)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var validationErrors *errors.ValidationErrors
			require.ErrorAs(t, err, &validationErrors)
			fields := validationErrors.ToMap()
			for _, field := range tt.wantFields {
				assert.Contains(t, fields, field)
			}
		})
	}
}

func TestEntityValidator_SharedErrorsStayPristine(t *testing.T) {
	validator := NewEntityValidator()

	_ = validator.Validate(&entities.Project{Name: "x", Progress: entities.Float(-1)})

	assert.NotContains(t, errors.ErrValueOutOfRange.Details, "field")
}

func TestEntityValidator_ValidateDailyEntry(t *testing.T) {
	validator := NewEntityValidator()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	err := validator.ValidateDailyEntry(&entities.DailyEntry{
		Date:           now,
		EmotionalState: entities.Float(6),
		EnergyLevel:    entities.Float(8),
	}, now)
	assert.NoError(t, err)

	err = validator.ValidateDailyEntry(&entities.DailyEntry{
		Date:     now.AddDate(0, 0, 2),
		Emotions: []entities.Emotion{{Type: ""}},
	}, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "future")
	assert.Contains(t, err.Error(), "emotion type cannot be empty")

	err = validator.ValidateDailyEntry(&entities.DailyEntry{}, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date is required")
}
