// Package main implements the Lambda that sweeps a user's graph for
// snapshot-worthy changes after each entity.saved event.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"observador-backend/application/commands"
	commandbus "observador-backend/application/commands/bus"
	"observador-backend/domain/events"
	"observador-backend/infrastructure/config"
	"observador-backend/infrastructure/di"
	"observador-backend/infrastructure/persistence/dynamodb"
	"observador-backend/pkg/observability"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"
)

const (
	lockTTL     = 30 * time.Second
	lockTimeout = 10 * time.Second
)

type commandSender interface {
	Send(ctx context.Context, cmd commandbus.Command) error
}

type locker interface {
	TryAcquire(ctx context.Context, resource, owner string, ttl, timeout time.Duration) (*dynamodb.Lock, error)
}

// recorder handles one EventBridge delivery
type recorder struct {
	commands commandSender
	lock     locker
	tracer   *observability.Tracer
	logger   *zap.Logger
}

var (
	container *di.Container
	handler   *recorder
)

// setup builds the container once per execution environment
func setup() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, _, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}

	handler = &recorder{
		commands: container.CommandBus,
		tracer:   container.Tracer,
		logger:   container.Logger,
	}
	if container.Lock != nil {
		handler.lock = container.Lock
	}
	container.Logger.Info("Snapshot recorder initialized")
}

// Handle sweeps the user named by an entity.saved event. Other event
// types are acknowledged and dropped.
func (r *recorder) Handle(ctx context.Context, event awsevents.CloudWatchEvent) error {
	if event.DetailType != events.TypeEntitySaved {
		r.logger.Debug("Ignoring event", zap.String("detailType", event.DetailType))
		return nil
	}

	var saved events.EntitySaved
	if err := json.Unmarshal(event.Detail, &saved); err != nil {
		// Retrying a malformed event cannot succeed
		r.logger.Error("Dropping malformed entity.saved event",
			zap.String("eventID", event.ID),
			zap.Error(err))
		return nil
	}
	if saved.UserID == "" {
		r.logger.Error("Dropping entity.saved event without user", zap.String("eventID", event.ID))
		return nil
	}

	r.tracer.AddAnnotation(ctx, "userID", saved.UserID)
	return r.tracer.TraceFunction(ctx, "RecordSnapshots", func(ctx context.Context) error {
		return r.sweep(ctx, saved.UserID, event.ID)
	})
}

// sweep runs the snapshot command for every node of the user under a
// per-user lock, so concurrent deliveries cannot write the same change twice
func (r *recorder) sweep(ctx context.Context, userID, owner string) error {
	if r.lock != nil {
		lock, err := r.lock.TryAcquire(ctx, "snapshots#"+userID, owner, lockTTL, lockTimeout)
		if err != nil {
			if errors.Is(err, dynamodb.ErrLockHeld) {
				// The holder's sweep covers this change too
				r.logger.Info("Snapshot sweep already running", zap.String("userID", userID))
				return nil
			}
			return fmt.Errorf("failed to lock snapshot sweep: %w", err)
		}
		defer func() {
			if err := lock.Release(ctx); err != nil {
				r.logger.Warn("Failed to release snapshot lock", zap.String("userID", userID), zap.Error(err))
			}
		}()
	}

	if err := r.commands.Send(ctx, commands.RecordSnapshotsCommand{UserID: userID}); err != nil {
		return fmt.Errorf("failed to record snapshots for %s: %w", userID, err)
	}
	return nil
}

func handle(ctx context.Context, event awsevents.CloudWatchEvent) error {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		container.Logger.Debug("Invocation", zap.String("awsRequestID", lc.AwsRequestID))
	}
	err := handler.Handle(ctx, event)
	container.Metrics.Flush(ctx)
	return err
}

func main() {
	setup()
	lambda.Start(handle)
}
