package config

import (
	"errors"
	"fmt"
	"math"
)

// Ring describes where one entity kind is laid out around the observer.
type Ring struct {
	Radius float64 `yaml:"radius" json:"radius"`
	Phase  float64 `yaml:"phase" json:"phase"`
}

// MetricsConfig holds every threshold and geometry constant used by the
// derived-metrics pipeline.
type MetricsConfig struct {
	// Score normalization
	ScoreFloor   float64 `yaml:"score_floor"`
	ScoreCeiling float64 `yaml:"score_ceiling"`

	// Snapshot and trend detection
	SnapshotThreshold float64 `yaml:"snapshot_threshold"`
	TrendThreshold    float64 `yaml:"trend_threshold"`
	LookbackDays      int     `yaml:"lookback_days"`
	MinLookbackDays   int     `yaml:"min_lookback_days"`
	MaxLookbackDays   int     `yaml:"max_lookback_days"`

	// Status bands, lower edges on the 0-100 scale
	FlowBand       float64 `yaml:"flow_band"`
	ExpansionBand  float64 `yaml:"expansion_band"`
	FrictionBand   float64 `yaml:"friction_band"`
	SaturationBand float64 `yaml:"saturation_band"`
	MaxFlagged     int     `yaml:"max_flagged"`

	// Layout
	DefaultSelfCoherence float64 `yaml:"default_self_coherence"`
	SelfSize             float64 `yaml:"self_size"`
	BaseNodeSize         float64 `yaml:"base_node_size"`
	NodeSizeScale        float64 `yaml:"node_size_scale"`
	HeightScale          float64 `yaml:"height_scale"`
	ProjectRing          Ring    `yaml:"project_ring"`
	RelationshipRing     Ring    `yaml:"relationship_ring"`
	IntentionRing        Ring    `yaml:"intention_ring"`
	ManifestationRing    Ring    `yaml:"manifestation_ring"`

	// Daily entry statistics
	TopEmotions         int     `yaml:"top_emotions"`
	EntryTrendThreshold float64 `yaml:"entry_trend_threshold"`
	StreakFallbackDays  float64 `yaml:"streak_fallback_days"`
	HabitStreakDays     int     `yaml:"habit_streak_days"`

	// Coherence breakdown
	EmotionalWindowDays int `yaml:"emotional_window_days"`
}

// DefaultMetricsConfig returns the default thresholds
func DefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		ScoreFloor:   0.1,
		ScoreCeiling: 1.0,

		SnapshotThreshold: 0.10,
		TrendThreshold:    0.05,
		LookbackDays:      7,
		MinLookbackDays:   1,
		MaxLookbackDays:   30,

		FlowBand:       80,
		ExpansionBand:  60,
		FrictionBand:   40,
		SaturationBand: 20,
		MaxFlagged:     3,

		DefaultSelfCoherence: 0.75,
		SelfSize:             3,
		BaseNodeSize:         1,
		NodeSizeScale:        1.5,
		HeightScale:          10,
		ProjectRing:          Ring{Radius: 25, Phase: 0},
		RelationshipRing:     Ring{Radius: 35, Phase: math.Pi / 4},
		IntentionRing:        Ring{Radius: 40, Phase: math.Pi / 8},
		ManifestationRing:    Ring{Radius: 45, Phase: 3 * math.Pi / 8},

		TopEmotions:         5,
		EntryTrendThreshold: 0.5,
		StreakFallbackDays:  30,
		HabitStreakDays:     7,

		EmotionalWindowDays: 30,
	}
}

// ProductionMetricsConfig returns production-specific thresholds
func ProductionMetricsConfig() *MetricsConfig {
	return DefaultMetricsConfig()
}

// DevelopmentMetricsConfig returns development-specific thresholds
func DevelopmentMetricsConfig() *MetricsConfig {
	config := DefaultMetricsConfig()

	// Look further back so seeded local data shows momentum
	config.LookbackDays = 30

	return config
}

// LoadMetricsConfig loads thresholds based on environment
func LoadMetricsConfig(environment string) *MetricsConfig {
	switch environment {
	case "production":
		return ProductionMetricsConfig()
	case "development":
		return DevelopmentMetricsConfig()
	default:
		return DefaultMetricsConfig()
	}
}

// ClampLookback bounds a requested lookback window. Non-positive values
// fall back to the configured default.
func (c *MetricsConfig) ClampLookback(days int) int {
	if days <= 0 {
		days = c.LookbackDays
	}
	if days < c.MinLookbackDays {
		return c.MinLookbackDays
	}
	if days > c.MaxLookbackDays {
		return c.MaxLookbackDays
	}
	return days
}

// Validate checks if the configuration is valid
func (c *MetricsConfig) Validate() error {
	if c.ScoreFloor < 0 || c.ScoreCeiling > 1 || c.ScoreFloor >= c.ScoreCeiling {
		return fmt.Errorf("score bounds must satisfy 0 <= floor < ceiling <= 1, got [%v, %v]", c.ScoreFloor, c.ScoreCeiling)
	}
	if c.SnapshotThreshold <= 0 || c.TrendThreshold <= 0 {
		return errors.New("snapshot and trend thresholds must be positive")
	}
	if !(c.FlowBand > c.ExpansionBand && c.ExpansionBand > c.FrictionBand &&
		c.FrictionBand > c.SaturationBand && c.SaturationBand > 0 && c.FlowBand <= 100) {
		return errors.New("status bands must be strictly descending within (0, 100]")
	}
	if c.MaxFlagged < 0 {
		return errors.New("max flagged nodes cannot be negative")
	}
	if c.MinLookbackDays < 1 || c.MaxLookbackDays < c.MinLookbackDays {
		return errors.New("lookback bounds are inverted")
	}
	for name, ring := range map[string]Ring{
		"project":       c.ProjectRing,
		"relationship":  c.RelationshipRing,
		"intention":     c.IntentionRing,
		"manifestation": c.ManifestationRing,
	} {
		if ring.Radius <= 0 {
			return fmt.Errorf("%s ring radius must be positive", name)
		}
	}
	if c.SelfSize < c.BaseNodeSize+c.NodeSizeScale {
		return errors.New("self node must be at least as large as any entity node")
	}
	if c.StreakFallbackDays <= 0 {
		return errors.New("streak fallback days must be positive")
	}
	if c.TopEmotions < 0 || c.HabitStreakDays < 0 {
		return errors.New("top emotions and habit streak days cannot be negative")
	}
	if c.EntryTrendThreshold < 0 {
		return errors.New("entry trend threshold cannot be negative")
	}
	if c.EmotionalWindowDays < 1 {
		return errors.New("emotional window must cover at least one day")
	}
	return nil
}
