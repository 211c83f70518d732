package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Command represents a command that changes state
type Command interface {
	Validate() error
}

// UserScoped is implemented by commands that act on a single user's data
type UserScoped interface {
	GetUserID() string
}

// CommandHandler handles a specific command type
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) error
}

// CommandBus dispatches commands to their handlers
type CommandBus struct {
	handlers    map[reflect.Type]CommandHandler
	middlewares []Middleware
	mu          sync.RWMutex
}

// NewCommandBus creates a new command bus
func NewCommandBus() *CommandBus {
	return &CommandBus{
		handlers: make(map[reflect.Type]CommandHandler),
	}
}

// Use appends middleware. Middleware wraps handlers at dispatch time, so the
// order of Use and Register calls does not matter.
func (b *CommandBus) Use(middlewares ...Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middlewares = append(b.middlewares, middlewares...)
}

// Register registers a handler for a command type
func (b *CommandBus) Register(cmdType Command, handler CommandHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(cmdType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for command type %s", t.Name())
	}

	b.handlers[t] = handler
	return nil
}

// Send dispatches a command to its handler
func (b *CommandBus) Send(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(cmd)]
	chain := NewPipeline(b.middlewares...)
	b.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %T", ErrHandlerNotFound, cmd)
	}

	return chain.Execute(handler).Handle(ctx, cmd)
}

// Middleware defines command middleware
type Middleware func(next CommandHandler) CommandHandler

// CommandHandlerFunc is an adapter to allow functions to be used as handlers
type CommandHandlerFunc func(ctx context.Context, cmd Command) error

// Handle implements CommandHandler
func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// LoggingMiddleware logs command execution
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			cmdType := reflect.TypeOf(cmd).Name()
			start := time.Now()

			err := next.Handle(ctx, cmd)
			if err != nil {
				logger.Warn("Command failed",
					zap.String("type", cmdType),
					zap.Duration("duration", time.Since(start)),
					zap.Error(err))
			} else {
				logger.Debug("Command succeeded",
					zap.String("type", cmdType),
					zap.Duration("duration", time.Since(start)))
			}

			return err
		})
	}
}

// Recorder receives one observation per dispatched command or query
type Recorder interface {
	RecordOperation(kind, name string, duration time.Duration, err error)
}

// MetricsMiddleware reports command latency and outcome
func MetricsMiddleware(recorder Recorder) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			start := time.Now()
			err := next.Handle(ctx, cmd)
			recorder.RecordOperation("command", reflect.TypeOf(cmd).Name(), time.Since(start), err)
			return err
		})
	}
}

// Invalidator drops cached reads for a user
type Invalidator interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// InvalidationMiddleware clears a user's cached query results after a
// successful user-scoped command.
func InvalidationMiddleware(cache Invalidator, logger *zap.Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			if err := next.Handle(ctx, cmd); err != nil {
				return err
			}
			scoped, ok := cmd.(UserScoped)
			if !ok {
				return nil
			}
			if err := cache.DeletePrefix(ctx, UserCachePrefix(scoped.GetUserID())); err != nil {
				logger.Warn("Failed to invalidate cached queries",
					zap.String("userID", scoped.GetUserID()),
					zap.Error(err))
			}
			return nil
		})
	}
}

// UserCachePrefix is the cache key prefix shared by all of a user's queries
func UserCachePrefix(userID string) string {
	return "user:" + userID + ":"
}

// Pipeline chains multiple middleware together
type Pipeline struct {
	middlewares []Middleware
}

// NewPipeline creates a new middleware pipeline
func NewPipeline(middlewares ...Middleware) *Pipeline {
	return &Pipeline{
		middlewares: middlewares,
	}
}

// Execute wraps handler so the first middleware runs outermost
func (p *Pipeline) Execute(handler CommandHandler) CommandHandler {
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		handler = p.middlewares[i](handler)
	}
	return handler
}

// Errors
var (
	ErrHandlerNotFound  = errors.New("command handler not found")
	ErrValidationFailed = errors.New("command validation failed")
)
