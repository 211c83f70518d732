package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Query represents a read-only query
type Query interface {
	Validate() error
}

// UserScoped is implemented by queries that read a single user's data
type UserScoped interface {
	GetUserID() string
}

// QueryHandler handles a specific query type
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// Middleware wraps a query handler
type Middleware interface {
	Wrap(next QueryHandler) QueryHandler
}

// QueryBus dispatches queries to their handlers
type QueryBus struct {
	handlers    map[reflect.Type]QueryHandler
	middlewares []Middleware
	mu          sync.RWMutex
}

// NewQueryBus creates a new query bus
func NewQueryBus() *QueryBus {
	return &QueryBus{
		handlers: make(map[reflect.Type]QueryHandler),
	}
}

// Use appends middleware; the first one added runs outermost
func (b *QueryBus) Use(middlewares ...Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middlewares = append(b.middlewares, middlewares...)
}

// Register registers a handler for a query type
func (b *QueryBus) Register(queryType Query, handler QueryHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(queryType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for query type %s", t.Name())
	}

	b.handlers[t] = handler
	return nil
}

// Ask dispatches a query to its handler and returns the result
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(query)]
	middlewares := b.middlewares
	b.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %T", ErrHandlerNotFound, query)
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i].Wrap(handler)
	}
	return handler.Handle(ctx, query)
}

// QueryHandlerFunc is an adapter to allow functions to be used as handlers
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

// Handle implements QueryHandler
func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// CachingMiddleware adds caching to user-scoped query handlers
type CachingMiddleware struct {
	cache Cache
	ttl   int // TTL in seconds
}

// NewCachingMiddleware creates a new caching middleware
func NewCachingMiddleware(cache Cache, ttl int) *CachingMiddleware {
	return &CachingMiddleware{
		cache: cache,
		ttl:   ttl,
	}
}

// Wrap wraps a query handler with caching. Queries that are not user scoped
// bypass the cache, since there is no prefix to invalidate them by.
func (m *CachingMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		scoped, ok := query.(UserScoped)
		if !ok {
			return next.Handle(ctx, query)
		}
		cacheKey := CacheKey(scoped.GetUserID(), query)

		if cached, found := m.cache.Get(ctx, cacheKey); found {
			return cached, nil
		}

		result, err := next.Handle(ctx, query)
		if err != nil {
			return nil, err
		}

		_ = m.cache.Set(ctx, cacheKey, result, m.ttl)
		return result, nil
	})
}

// CacheKey builds the key for a user's query; it starts with the prefix
// the command side clears after writes.
func CacheKey(userID string, query Query) string {
	return fmt.Sprintf("user:%s:%T:%+v", userID, query, query)
}

// Cache interface for caching
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl int) error
}

// MetricsMiddleware adds metrics to query handlers
type MetricsMiddleware struct {
	recorder Recorder
}

// NewMetricsMiddleware creates a new metrics middleware
func NewMetricsMiddleware(recorder Recorder) *MetricsMiddleware {
	return &MetricsMiddleware{
		recorder: recorder,
	}
}

// Wrap wraps a query handler with metrics
func (m *MetricsMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		start := time.Now()
		result, err := next.Handle(ctx, query)
		m.recorder.RecordOperation("query", reflect.TypeOf(query).Name(), time.Since(start), err)
		return result, err
	})
}

// Recorder receives one observation per dispatched query
type Recorder interface {
	RecordOperation(kind, name string, duration time.Duration, err error)
}

// TracingMiddleware opens a span around each query
type TracingMiddleware struct {
	tracer trace.Tracer
}

// NewTracingMiddleware uses the globally registered tracer provider
func NewTracingMiddleware() *TracingMiddleware {
	return &TracingMiddleware{tracer: otel.Tracer("observador-backend/queries")}
}

// Wrap wraps a query handler with a span
func (m *TracingMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		name := reflect.TypeOf(query).Name()
		ctx, span := m.tracer.Start(ctx, "query."+name)
		defer span.End()

		if scoped, ok := query.(UserScoped); ok {
			span.SetAttributes(attribute.String("user.id", scoped.GetUserID()))
		}

		result, err := next.Handle(ctx, query)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return result, err
	})
}

// Errors
var (
	ErrHandlerNotFound  = errors.New("query handler not found")
	ErrValidationFailed = errors.New("query validation failed")
)
