package config

import (
	"bytes"
	"fmt"
	"os"

	domainconfig "observador-backend/domain/config"

	"gopkg.in/yaml.v3"
)

// LoadMetricsFile overlays the YAML file at path onto the environment's
// defaults. Keys missing from the file keep their default value and unknown
// keys are rejected so a typo cannot silently fall back.
func LoadMetricsFile(path, environment string) (*domainconfig.MetricsConfig, error) {
	cfg := domainconfig.LoadMetricsConfig(environment)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse metrics config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metrics config %s: %w", path, err)
	}
	return cfg, nil
}
