//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"observador-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideRepositories,
	ProvideMetricsConfigStore,
	ProvideMetricsWatcher,
	ProvideCollector,
	ProvideMetrics,
	ProvideRecorder,
	ProvideEventPublisher,
	ProvideInMemoryCache,
	ProvideSystemAnalyzer,
	ProvideSnapshotRecorder,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideJWTService,
	ProvideRateLimiter,
	ProvideDistributedLock,
	ProvideTracer,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
