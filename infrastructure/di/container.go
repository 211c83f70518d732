package di

import (
	"context"
	"fmt"

	"observador-backend/application/commands/bus"
	"observador-backend/application/ports"
	querybus "observador-backend/application/queries/bus"
	domainconfig "observador-backend/domain/config"
	"observador-backend/infrastructure/config"
	"observador-backend/infrastructure/persistence/dynamodb"
	"observador-backend/pkg/auth"
	"observador-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Repositories *Repositories
	MetricsStore *domainconfig.Store
	Watcher      *config.MetricsWatcher
	Publisher    ports.EventPublisher
	Cache        *InMemoryCache
	Collector    *observability.Collector
	Metrics      *observability.Metrics
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	JWT          *auth.JWTService
	RateLimiter  auth.RateLimiter
	Lock         *dynamodb.DistributedLock
	Tracer       *observability.Tracer
}

// Ready reports whether the storage backend answers
func (c *Container) Ready(ctx context.Context) error {
	if c.Repositories == nil || c.Repositories.Health == nil {
		return fmt.Errorf("storage not configured")
	}
	return c.Repositories.Health.Ping(ctx)
}
