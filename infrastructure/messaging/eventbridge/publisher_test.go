package eventbridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"observador-backend/domain/core/valueobjects"
	"observador-backend/domain/events"
	pkgerrors "observador-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEventBridge struct {
	mu      sync.Mutex
	calls   [][]types.PutEventsRequestEntry
	err     error
	failAll bool
}

func (f *fakeEventBridge) PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, params.Entries)
	if f.err != nil {
		return nil, f.err
	}
	out := &eventbridge.PutEventsOutput{}
	if f.failAll {
		out.FailedEntryCount = int32(len(params.Entries))
		for range params.Entries {
			out.Entries = append(out.Entries, types.PutEventsResultEntry{ErrorCode: aws.String("InternalFailure")})
		}
	}
	return out, nil
}

func entitySaved(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, 0, n)
	for i := 0; i < n; i++ {
		id := valueobjects.NewNodeID(valueobjects.NodeTypeProject, string(rune('a'+i%26)))
		out = append(out, events.NewEntitySaved("u1", id, 0.5, 0.6, time.Unix(1700000000, 0)))
	}
	return out
}

func TestPublisher_PublishBatch_SplitsIntoChunksOfTen(t *testing.T) {
	// Arrange
	client := &fakeEventBridge{}
	publisher := NewPublisher(client, "observador-bus", zap.NewNop())

	// Act
	err := publisher.PublishBatch(context.Background(), entitySaved(23))

	// Assert
	require.NoError(t, err)
	require.Len(t, client.calls, 3)
	assert.Len(t, client.calls[0], 10)
	assert.Len(t, client.calls[2], 3)

	entry := client.calls[0][0]
	assert.Equal(t, "observador-bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, events.SourceBackend, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeEntitySaved, aws.ToString(entry.DetailType))
	assert.Contains(t, aws.ToString(entry.Detail), `"node_id":"project_a"`)
}

func TestPublisher_EmptyBatchIsNoop(t *testing.T) {
	client := &fakeEventBridge{}
	publisher := NewPublisher(client, "bus", zap.NewNop())

	require.NoError(t, publisher.PublishBatch(context.Background(), nil))
	assert.Empty(t, client.calls)
}

func TestPublisher_FailedEntriesReturnPublishError(t *testing.T) {
	client := &fakeEventBridge{failAll: true}
	publisher := NewPublisher(client, "bus", zap.NewNop())

	err := publisher.Publish(context.Background(), entitySaved(1)[0])

	require.Error(t, err)
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.ErrorTypePublish, appErr.Type)
}

func TestPublisher_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	// Arrange
	client := &fakeEventBridge{err: errors.New("service unavailable")}
	publisher := NewPublisher(client, "bus", zap.NewNop())
	event := entitySaved(1)[0]

	// Act
	for i := 0; i < 5; i++ {
		_ = publisher.Publish(context.Background(), event)
	}
	err := publisher.Publish(context.Background(), event)

	// Assert
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Len(t, client.calls, 5, "open breaker must not reach the client")
	assert.Equal(t, gobreaker.StateOpen.String(), publisher.State())
}
