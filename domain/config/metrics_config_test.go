package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMetricsConfig_ValidForEveryEnvironment(t *testing.T) {
	for _, env := range []string{"production", "development", "test", ""} {
		t.Run(env, func(t *testing.T) {
			assert.NoError(t, LoadMetricsConfig(env).Validate())
		})
	}
}

func TestClampLookback(t *testing.T) {
	cfg := DefaultMetricsConfig()

	tests := []struct {
		in   int
		want int
	}{
		{0, 7},
		{-3, 7},
		{1, 1},
		{14, 14},
		{30, 30},
		{90, 30},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.ClampLookback(tt.in), "ClampLookback(%d)", tt.in)
	}
}

func TestValidate_RejectsBrokenConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *MetricsConfig)
	}{
		{"inverted score bounds", func(c *MetricsConfig) { c.ScoreFloor = 0.9; c.ScoreCeiling = 0.5 }},
		{"zero snapshot threshold", func(c *MetricsConfig) { c.SnapshotThreshold = 0 }},
		{"unordered bands", func(c *MetricsConfig) { c.ExpansionBand = 85 }},
		{"negative cap", func(c *MetricsConfig) { c.MaxFlagged = -1 }},
		{"inverted lookback", func(c *MetricsConfig) { c.MaxLookbackDays = 0 }},
		{"flat ring", func(c *MetricsConfig) { c.IntentionRing.Radius = 0 }},
		{"tiny self", func(c *MetricsConfig) { c.SelfSize = 1 }},
		{"negative entry trend threshold", func(c *MetricsConfig) { c.EntryTrendThreshold = -0.5 }},
		{"negative top emotions", func(c *MetricsConfig) { c.TopEmotions = -1 }},
		{"negative habit streak", func(c *MetricsConfig) { c.HabitStreakDays = -7 }},
		{"empty emotional window", func(c *MetricsConfig) { c.EmotionalWindowDays = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMetricsConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestStore_ReplaceKeepsPreviousOnInvalid(t *testing.T) {
	// Arrange
	store, err := NewStore(nil)
	require.NoError(t, err)
	original := store.Current()

	broken := DefaultMetricsConfig()
	broken.FlowBand = 10

	// Act
	replaceErr := store.Replace(broken)

	// Assert
	assert.Error(t, replaceErr)
	assert.Same(t, original, store.Current())

	updated := DefaultMetricsConfig()
	updated.MaxFlagged = 5
	require.NoError(t, store.Replace(updated))
	assert.Equal(t, 5, store.Current().MaxFlagged)
}
