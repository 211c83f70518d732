package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"observador-backend/infrastructure/config"
	"observador-backend/infrastructure/di"
	"observador-backend/interfaces/http/rest"
	"observador-backend/pkg/auth"
	"observador-backend/pkg/observability"

	"go.uber.org/zap"
)

const limiterSweepInterval = 5 * time.Minute

func main() {
	// Initialize context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()
	logger := container.Logger

	if cfg.EnableTracing {
		shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
			ServiceName: "observador-api",
			Environment: cfg.Environment,
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    !cfg.IsProduction(),
			SampleRatio: cfg.TracingSampleRate,
		})
		if err != nil {
			logger.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer flushCancel()
			if err := shutdownTracing(flushCtx); err != nil {
				logger.Warn("Failed to flush traces", zap.Error(err))
			}
		}()
	}

	if keyed, ok := container.RateLimiter.(*auth.KeyedLimiter); ok {
		go keyed.Run(ctx, limiterSweepInterval)
	}

	if container.Watcher != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-container.Watcher.Reloaded():
					_ = container.Cache.DeletePrefix(ctx, "")
					logger.Info("Metrics thresholds reloaded; cached reads dropped")
				}
			}
		}()
	}

	router := rest.NewRouter(
		container.CommandBus,
		container.QueryBus,
		container.JWT,
		container.Repositories.Agents,
		container.RateLimiter,
		container.Collector,
		container.Ready,
		rest.Options{
			Debug:         cfg.IsDevelopment(),
			EnableMetrics: cfg.EnableMetrics,
			EnableCORS:    cfg.EnableCORS,
			CORSOrigins:   cfg.CORSOrigins,
		},
		logger,
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("storage", cfg.StorageDriver),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	cancel()

	// Clean up resources
	_ = logger.Sync()
	log.Println("Server stopped")
}
