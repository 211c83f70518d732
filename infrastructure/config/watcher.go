package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	domainconfig "observador-backend/domain/config"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDuration = 100 * time.Millisecond

// MetricsWatcher reloads the metrics thresholds file when it changes and
// swaps the result into the shared store. Invalid edits are logged and the
// previous config stays active.
type MetricsWatcher struct {
	path        string
	environment string
	store       *domainconfig.Store
	watcher     *fsnotify.Watcher
	logger      *zap.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
	reloads  chan struct{}
}

// NewMetricsWatcher watches path. The directory is watched too so editors
// that save by rename are picked up.
func NewMetricsWatcher(path, environment string, store *domainconfig.Store, logger *zap.Logger) (*MetricsWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return &MetricsWatcher{
		path:        path,
		environment: environment,
		store:       store,
		watcher:     watcher,
		logger:      logger,
		stopCh:      make(chan struct{}),
		done:        make(chan struct{}),
		reloads:     make(chan struct{}, 1),
	}, nil
}

// Start begins watching for configuration changes
func (w *MetricsWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("Metrics config watcher started", zap.String("path", w.path))
}

// Stop ends the watch loop and waits for it to exit
func (w *MetricsWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		<-w.done
		w.logger.Info("Metrics config watcher stopped")
	})
}

// Reloaded delivers a signal after each successful reload. Tests wait on it.
func (w *MetricsWatcher) Reloaded() <-chan struct{} {
	return w.reloads
}

func (w *MetricsWatcher) watchLoop() {
	defer close(w.done)

	var debounce *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(debounceDuration)
			fire = debounce.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *MetricsWatcher) reload() {
	cfg, err := LoadMetricsFile(w.path, w.environment)
	if err != nil {
		w.logger.Error("Failed to reload metrics config, keeping current", zap.Error(err))
		return
	}
	if err := w.store.Replace(cfg); err != nil {
		w.logger.Error("Invalid metrics config, keeping current", zap.Error(err))
		return
	}

	w.logger.Info("Metrics config reloaded",
		zap.String("path", w.path),
		zap.Float64("snapshotThreshold", cfg.SnapshotThreshold),
		zap.Int("lookbackDays", cfg.LookbackDays),
	)
	select {
	case w.reloads <- struct{}{}:
	default:
	}
}
