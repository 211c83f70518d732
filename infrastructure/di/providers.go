package di

import (
	"context"
	"fmt"
	"time"

	"observador-backend/application/commands"
	"observador-backend/application/commands/bus"
	commands_handlers "observador-backend/application/commands/handlers"
	"observador-backend/application/ports"
	querybus "observador-backend/application/queries/bus"
	queries_handlers "observador-backend/application/queries/handlers"
	"observador-backend/application/services"
	domainconfig "observador-backend/domain/config"
	"observador-backend/infrastructure/config"
	"observador-backend/infrastructure/messaging"
	"observador-backend/infrastructure/messaging/eventbridge"
	"observador-backend/infrastructure/persistence/dynamodb"
	"observador-backend/infrastructure/persistence/memory"
	"observador-backend/infrastructure/persistence/sqlite"
	"observador-backend/pkg/auth"
	"observador-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

const (
	// queryCacheTTL bounds how stale a cached read can get when a write
	// lands in another process
	queryCacheTTL        = 30
	cacheCleanupInterval = time.Minute
	recentLocalEvents    = 100

	// developmentJWTSecret is only used outside production; Validate
	// rejects a production config without JWT_SECRET
	developmentJWTSecret = "development-secret-change-in-production"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = level
	}

	return zapCfg.Build()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// Repositories groups the stores of the selected storage driver
type Repositories struct {
	Entities  ports.EntityRepository
	Entries   ports.DailyEntryRepository
	Snapshots ports.SnapshotRepository
	Progress  ports.UserProgressRepository
	Agents    ports.AgentRepository
	Health    ports.HealthChecker

	// Table is set only for the DynamoDB driver
	Table *dynamodb.Table
}

// ProvideRepositories opens the configured storage backend. The cleanup
// function closes it.
func ProvideRepositories(
	ctx context.Context,
	cfg *config.Config,
	client *awsdynamodb.Client,
	logger *zap.Logger,
) (*Repositories, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageDynamoDB:
		table := dynamodb.NewTable(client, cfg.DynamoDBTable)
		logger.Info("Using DynamoDB storage", zap.String("table", cfg.DynamoDBTable))
		return &Repositories{
			Entities:  dynamodb.NewEntityRepository(table, logger),
			Entries:   dynamodb.NewDailyEntryRepository(table, logger),
			Snapshots: dynamodb.NewSnapshotRepository(table, logger),
			Progress:  dynamodb.NewUserProgressRepository(table, logger),
			Agents:    dynamodb.NewAgentRepository(table, logger),
			Health:    table,
			Table:     table,
		}, func() {}, nil

	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using SQLite storage", zap.String("path", cfg.SQLitePath))
		cleanup := func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close SQLite store", zap.Error(err))
			}
		}
		return &Repositories{
			Entities:  sqlite.NewEntityRepository(store),
			Entries:   sqlite.NewDailyEntryRepository(store),
			Snapshots: sqlite.NewSnapshotRepository(store),
			Progress:  sqlite.NewUserProgressRepository(store),
			Agents:    sqlite.NewAgentRepository(store),
			Health:    store,
		}, cleanup, nil

	case config.StorageMemory:
		logger.Warn("Using in-memory storage; data is lost on restart")
		entities := memory.NewEntityRepository()
		return &Repositories{
			Entities:  entities,
			Entries:   memory.NewDailyEntryRepository(),
			Snapshots: memory.NewSnapshotRepository(),
			Progress:  memory.NewUserProgressRepository(),
			Agents:    memory.NewAgentRepository(),
			Health:    entities,
		}, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// ProvideMetricsConfigStore loads the thresholds, applying the YAML overlay
// when one is configured
func ProvideMetricsConfigStore(cfg *config.Config) (*domainconfig.Store, error) {
	metricsCfg := domainconfig.LoadMetricsConfig(cfg.Environment)
	if cfg.MetricsConfigPath != "" {
		loaded, err := config.LoadMetricsFile(cfg.MetricsConfigPath, cfg.Environment)
		if err != nil {
			return nil, err
		}
		metricsCfg = loaded
	}
	return domainconfig.NewStore(metricsCfg)
}

// ProvideMetricsWatcher starts hot reload of the overlay file. It returns a
// nil watcher when there is nothing to watch; Lambdas never watch.
func ProvideMetricsWatcher(
	cfg *config.Config,
	store *domainconfig.Store,
	logger *zap.Logger,
) (*config.MetricsWatcher, func(), error) {
	if cfg.MetricsConfigPath == "" || !cfg.WatchMetrics || cfg.IsLambda {
		return nil, func() {}, nil
	}
	watcher, err := config.NewMetricsWatcher(cfg.MetricsConfigPath, cfg.Environment, store, logger)
	if err != nil {
		return nil, nil, err
	}
	watcher.Start()
	return watcher, watcher.Stop, nil
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector() *observability.Collector {
	return observability.NewCollector()
}

// ProvideMetrics creates the CloudWatch metrics buffer. Outside Lambda, or
// with metrics disabled, it has no client and records nothing.
func ProvideMetrics(cfg *config.Config, client *awscloudwatch.Client, logger *zap.Logger) *observability.Metrics {
	if !cfg.IsLambda || !cfg.EnableMetrics {
		return observability.NewMetrics(cfg.MetricsNamespace, nil, logger)
	}
	return observability.NewMetrics(cfg.MetricsNamespace, client, logger)
}

// ProvideRecorder fans bus observations out to Prometheus and CloudWatch
func ProvideRecorder(collector *observability.Collector, metrics *observability.Metrics) observability.Fanout {
	return observability.Fanout{collector, metrics}
}

// ProvideEventPublisher publishes to EventBridge when a bus is configured and
// dispatches in process otherwise. Snapshot events are counted either way.
func ProvideEventPublisher(
	cfg *config.Config,
	client *awseventbridge.Client,
	recorder observability.Fanout,
	logger *zap.Logger,
) ports.EventPublisher {
	var publisher ports.EventPublisher
	if cfg.EventBusName != "" {
		publisher = eventbridge.NewPublisher(client, cfg.EventBusName, logger)
	} else {
		logger.Info("No event bus configured; events are dispatched in process")
		publisher = messaging.NewLocalPublisher(recentLocalEvents, logger)
	}
	return messaging.NewMeteredPublisher(publisher, recorder)
}

// ProvideInMemoryCache creates the query cache; the cleanup stops its sweeper
func ProvideInMemoryCache() (*InMemoryCache, func()) {
	cache := NewInMemoryCache(cacheCleanupInterval)
	return cache, cache.Close
}

// ProvideSystemAnalyzer creates the analyzer shared by queries and the sweep
func ProvideSystemAnalyzer(repos *Repositories, store *domainconfig.Store, logger *zap.Logger) *services.SystemAnalyzer {
	return services.NewSystemAnalyzer(repos.Entities, repos.Entries, store, logger)
}

// ProvideSnapshotRecorder creates the snapshot recorder
func ProvideSnapshotRecorder(
	repos *Repositories,
	publisher ports.EventPublisher,
	store *domainconfig.Store,
	logger *zap.Logger,
) *services.SnapshotRecorder {
	return services.NewSnapshotRecorder(repos.Snapshots, publisher, store, logger)
}

// ProvideCommandBus creates and configures the command bus
func ProvideCommandBus(
	repos *Repositories,
	analyzer *services.SystemAnalyzer,
	recorder *services.SnapshotRecorder,
	publisher ports.EventPublisher,
	store *domainconfig.Store,
	cache *InMemoryCache,
	metrics observability.Fanout,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()
	commandBus.Use(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(metrics),
		bus.InvalidationMiddleware(cache, logger),
	)

	saveEntity := commands_handlers.NewSaveEntityHandler(repos.Entities, analyzer, recorder, publisher, logger)
	saveEntry := commands_handlers.NewSaveDailyEntryHandler(repos.Entries, repos.Progress, publisher, store, logger)
	registerAgent := commands_handlers.NewRegisterAgentProjectHandler(repos.Agents, logger)
	recordDecision := commands_handlers.NewRecordAgentDecisionHandler(repos.Agents, publisher, logger)
	recordSnapshots := commands_handlers.NewRecordSnapshotsHandler(analyzer, recorder)

	registrations := []error{
		registerCommand(commandBus, func(ctx context.Context, cmd commands.SaveProjectCommand) error {
			return saveEntity.Handle(ctx, cmd)
		}),
		registerCommand(commandBus, func(ctx context.Context, cmd commands.SaveRelationshipCommand) error {
			return saveEntity.Handle(ctx, cmd)
		}),
		registerCommand(commandBus, func(ctx context.Context, cmd commands.SaveIntentionCommand) error {
			return saveEntity.Handle(ctx, cmd)
		}),
		registerCommand(commandBus, func(ctx context.Context, cmd commands.SaveManifestationCommand) error {
			return saveEntity.Handle(ctx, cmd)
		}),
		registerCommand(commandBus, saveEntry.Handle),
		registerCommand(commandBus, registerAgent.Handle),
		registerCommand(commandBus, recordDecision.Handle),
		registerCommand(commandBus, recordSnapshots.Handle),
	}
	for _, err := range registrations {
		if err != nil {
			return nil, fmt.Errorf("failed to register command handler: %w", err)
		}
	}

	return commandBus, nil
}

// registerCommand adapts a typed handler method to the bus
func registerCommand[C bus.Command](b *bus.CommandBus, handle func(context.Context, C) error) error {
	var zero C
	return b.Register(zero, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
		typed, ok := cmd.(C)
		if !ok {
			return fmt.Errorf("unexpected command type %T", cmd)
		}
		return handle(ctx, typed)
	}))
}

// ProvideQueryBus creates and configures the query bus
func ProvideQueryBus(
	repos *Repositories,
	analyzer *services.SystemAnalyzer,
	store *domainconfig.Store,
	cache *InMemoryCache,
	metrics observability.Fanout,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()
	queryBus.Use(
		querybus.NewTracingMiddleware(),
		querybus.NewMetricsMiddleware(metrics),
		querybus.NewCachingMiddleware(cache, queryCacheTTL),
	)

	registrations := []error{
		registerQuery(queryBus, queries_handlers.NewSystemGraphHandler(analyzer).Handle),
		registerQuery(queryBus, queries_handlers.NewSystemInterpretationHandler(analyzer, repos.Snapshots, logger).Handle),
		registerQuery(queryBus, queries_handlers.NewNodeTrendsHandler(repos.Snapshots, store).Handle),
		registerQuery(queryBus, queries_handlers.NewCoherenceBreakdownHandler(analyzer).Handle),
		registerQuery(queryBus, queries_handlers.NewEnergyFlowHandler(analyzer).Handle),
		registerQuery(queryBus, queries_handlers.NewEntryStatisticsHandler(repos.Entries, store).Handle),
		registerQuery(queryBus, queries_handlers.NewDecisionDashboardHandler(repos.Agents, store).Handle),
		registerQuery(queryBus, queries_handlers.NewListAgentProjectsHandler(repos.Agents).Handle),
	}
	for _, err := range registrations {
		if err != nil {
			return nil, fmt.Errorf("failed to register query handler: %w", err)
		}
	}

	return queryBus, nil
}

// registerQuery adapts a typed handler method to the bus
func registerQuery[Q querybus.Query, R any](b *querybus.QueryBus, handle func(context.Context, Q) (R, error)) error {
	var zero Q
	return b.Register(zero, querybus.QueryHandlerFunc(func(ctx context.Context, query querybus.Query) (interface{}, error) {
		typed, ok := query.(Q)
		if !ok {
			return nil, fmt.Errorf("unexpected query type %T", query)
		}
		return handle(ctx, typed)
	}))
}

// ProvideJWTService creates the bearer token validator
func ProvideJWTService(cfg *config.Config) (*auth.JWTService, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = developmentJWTSecret
	}
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideRateLimiter shares one budget per caller across Lambda instances
// through DynamoDB, and keeps token buckets in process everywhere else
func ProvideRateLimiter(cfg *config.Config, client *awsdynamodb.Client) auth.RateLimiter {
	perMinute := int(cfg.RateLimitRPS * 60)
	if cfg.IsLambda {
		return auth.NewDistributedRateLimiter(client, cfg.DynamoDBTable, perMinute, time.Minute, "api")
	}
	return auth.NewKeyedLimiter(perMinute, cfg.RateLimitBurst)
}

// ProvideDistributedLock serializes snapshot sweeps per user. It is nil
// unless the DynamoDB driver is in use.
func ProvideDistributedLock(repos *Repositories, logger *zap.Logger) *dynamodb.DistributedLock {
	if repos.Table == nil {
		return nil
	}
	return dynamodb.NewDistributedLock(repos.Table, logger)
}

// ProvideTracer creates the X-Ray tracer used by the Lambda handlers
func ProvideTracer() *observability.Tracer {
	return observability.NewTracer("observador")
}
