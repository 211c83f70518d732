package config

import (
	"sync/atomic"
)

// Store holds the active MetricsConfig and lets a watcher swap it at runtime.
// Readers always see a complete, validated config.
type Store struct {
	current atomic.Pointer[MetricsConfig]
}

// NewStore validates cfg and returns a store holding it
func NewStore(cfg *MetricsConfig) (*Store, error) {
	if cfg == nil {
		cfg = DefaultMetricsConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Store{}
	s.current.Store(cfg)
	return s, nil
}

// Current returns the active config. Callers must not modify it.
func (s *Store) Current() *MetricsConfig {
	return s.current.Load()
}

// Replace swaps in cfg if it is valid; the previous config stays active otherwise
func (s *Store) Replace(cfg *MetricsConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.current.Store(cfg)
	return nil
}
