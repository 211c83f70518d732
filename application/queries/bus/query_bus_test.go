package bus

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type countQuery struct {
	UserID string
	Days   int
}

func (q countQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user id required")
	}
	return nil
}

func (q countQuery) GetUserID() string { return q.UserID }

type globalQuery struct{}

func (globalQuery) Validate() error { return nil }

type mapCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newMapCache() *mapCache { return &mapCache{items: map[string]interface{}{}} }

func (c *mapCache) Get(_ context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

type fakeRecorder struct{ names []string }

func (r *fakeRecorder) RecordOperation(kind, name string, _ time.Duration, _ error) {
	r.names = append(r.names, kind+":"+name)
}

func TestQueryBus_Ask(t *testing.T) {
	// Arrange
	bus := NewQueryBus()
	calls := 0
	require.NoError(t, bus.Register(countQuery{}, QueryHandlerFunc(func(_ context.Context, q Query) (interface{}, error) {
		calls++
		return q.(countQuery).Days * 2, nil
	})))

	// Act
	result, err := bus.Ask(context.Background(), countQuery{UserID: "u1", Days: 7})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 14, result)
	assert.Equal(t, 1, calls)
}

func TestQueryBus_Errors(t *testing.T) {
	bus := NewQueryBus()

	_, err := bus.Ask(context.Background(), countQuery{})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = bus.Ask(context.Background(), countQuery{UserID: "u1"})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestCachingMiddleware(t *testing.T) {
	// Arrange
	bus := NewQueryBus()
	cache := newMapCache()
	recorder := &fakeRecorder{}
	bus.Use(NewMetricsMiddleware(recorder), NewTracingMiddleware(), NewCachingMiddleware(cache, 60))
	calls := 0
	handler := QueryHandlerFunc(func(context.Context, Query) (interface{}, error) {
		calls++
		return calls, nil
	})
	require.NoError(t, bus.Register(countQuery{}, handler))
	require.NoError(t, bus.Register(globalQuery{}, handler))

	// Act
	first, _ := bus.Ask(context.Background(), countQuery{UserID: "u1", Days: 7})
	second, _ := bus.Ask(context.Background(), countQuery{UserID: "u1", Days: 7})
	otherDays, _ := bus.Ask(context.Background(), countQuery{UserID: "u1", Days: 30})
	_, _ = bus.Ask(context.Background(), globalQuery{})
	_, _ = bus.Ask(context.Background(), globalQuery{})

	// Assert
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 2, otherDays)
	assert.Equal(t, 4, calls, "unscoped queries are never cached")
	assert.Len(t, recorder.names, 5)
	for key := range cache.items {
		assert.True(t, strings.HasPrefix(key, "user:u1:"), key)
	}
}

func TestTracingMiddleware(t *testing.T) {
	// Arrange
	spans := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	defer func() { _ = provider.Shutdown(context.Background()) }()
	middleware := &TracingMiddleware{tracer: provider.Tracer("test")}

	failing := middleware.Wrap(QueryHandlerFunc(func(context.Context, Query) (interface{}, error) {
		return nil, errors.New("storage down")
	}))

	// Act
	_, err := failing.Handle(context.Background(), countQuery{UserID: "u1"})

	// Assert
	require.Error(t, err)
	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "query.countQuery", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), attribute.String("user.id", "u1"))
}
