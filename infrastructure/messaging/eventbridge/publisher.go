package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"observador-backend/domain/events"
	pkgerrors "observador-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// EventBridge limits PutEvents to 10 entries per call
const batchSize = 10

// PutEventsAPI is the slice of the EventBridge client the publisher needs
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher sends domain events to an EventBridge bus behind a circuit
// breaker, so a struggling bus fails fast instead of slowing every write.
type Publisher struct {
	client       PutEventsAPI
	eventBusName string
	source       string
	breaker      *gobreaker.CircuitBreaker
	logger       *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client PutEventsAPI, eventBusName string, logger *zap.Logger) *Publisher {
	p := &Publisher{
		client:       client,
		eventBusName: eventBusName,
		source:       events.SourceBackend,
		logger:       logger,
	}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "eventbridge",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return p
}

// Publish sends a single event
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends events in chunks of ten. The first failing chunk stops the batch.
func (p *Publisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	for i := 0; i < len(domainEvents); i += batchSize {
		end := min(i+batchSize, len(domainEvents))
		chunk := domainEvents[i:end]

		_, err := p.breaker.Execute(func() (interface{}, error) {
			return nil, p.publishBatch(ctx, chunk)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return pkgerrors.NewPublishError(p.eventBusName, err)
			}
			return err
		}
	}
	return nil
}

func (p *Publisher) publishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(domainEvents))
	for _, event := range domainEvents {
		detail, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("Failed to marshal event",
				zap.String("eventType", event.GetEventType()),
				zap.Error(err))
			continue
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.eventBusName),
			Source:       aws.String(p.source),
			DetailType:   aws.String(event.GetEventType()),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.GetTimestamp()),
			Resources:    []string{fmt.Sprintf("observador:%s:%s", event.GetUserID(), event.GetAggregateID())},
		})
	}
	if len(entries) == 0 {
		return nil
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return pkgerrors.NewPublishError(p.eventBusName, err)
	}

	if result.FailedEntryCount > 0 {
		for i, entry := range result.Entries {
			if entry.ErrorCode != nil && i < len(domainEvents) {
				p.logger.Error("Failed to publish event",
					zap.String("eventType", domainEvents[i].GetEventType()),
					zap.String("errorCode", aws.ToString(entry.ErrorCode)),
					zap.String("errorMessage", aws.ToString(entry.ErrorMessage)))
			}
		}
		return pkgerrors.NewPublishError(p.eventBusName, fmt.Errorf("%d events failed to publish", result.FailedEntryCount))
	}

	p.logger.Debug("Events published to EventBridge",
		zap.Int("count", len(entries)),
		zap.String("eventBus", p.eventBusName))
	return nil
}

// State reports the breaker state for health output
func (p *Publisher) State() string {
	return p.breaker.State().String()
}
