package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingCommand struct {
	UserID string
	fail   bool
}

func (c pingCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("user id required")
	}
	return nil
}

func (c pingCommand) GetUserID() string { return c.UserID }

type recordingHandler struct {
	calls int
}

func (h *recordingHandler) Handle(_ context.Context, cmd Command) error {
	h.calls++
	if cmd.(pingCommand).fail {
		return errors.New("handler failed")
	}
	return nil
}

type fakeRecorder struct {
	names []string
	errs  []error
}

func (r *fakeRecorder) RecordOperation(kind, name string, _ time.Duration, err error) {
	r.names = append(r.names, kind+":"+name)
	r.errs = append(r.errs, err)
}

type fakeInvalidator struct {
	prefixes []string
}

func (f *fakeInvalidator) DeletePrefix(_ context.Context, prefix string) error {
	f.prefixes = append(f.prefixes, prefix)
	return nil
}

func TestCommandBus_Send(t *testing.T) {
	// Arrange
	bus := NewCommandBus()
	handler := &recordingHandler{}
	require.NoError(t, bus.Register(pingCommand{}, handler))

	// Act
	err := bus.Send(context.Background(), pingCommand{UserID: "u1"})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, handler.calls)
}

func TestCommandBus_RejectsInvalidCommandBeforeHandler(t *testing.T) {
	bus := NewCommandBus()
	handler := &recordingHandler{}
	require.NoError(t, bus.Register(pingCommand{}, handler))

	err := bus.Send(context.Background(), pingCommand{})

	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Zero(t, handler.calls)
}

func TestCommandBus_UnknownCommand(t *testing.T) {
	err := NewCommandBus().Send(context.Background(), pingCommand{UserID: "u1"})

	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestCommandBus_DuplicateRegistration(t *testing.T) {
	bus := NewCommandBus()
	require.NoError(t, bus.Register(pingCommand{}, &recordingHandler{}))

	assert.Error(t, bus.Register(pingCommand{}, &recordingHandler{}))
}

func TestCommandBus_MiddlewareOrderAndEffects(t *testing.T) {
	// Arrange
	bus := NewCommandBus()
	recorder := &fakeRecorder{}
	invalidator := &fakeInvalidator{}
	var order []string
	trace := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}
	bus.Use(trace("outer"), trace("inner"))
	bus.Use(
		LoggingMiddleware(zap.NewNop()),
		MetricsMiddleware(recorder),
		InvalidationMiddleware(invalidator, zap.NewNop()),
	)
	require.NoError(t, bus.Register(pingCommand{}, &recordingHandler{}))

	// Act
	okErr := bus.Send(context.Background(), pingCommand{UserID: "u1"})
	failErr := bus.Send(context.Background(), pingCommand{UserID: "u2", fail: true})

	// Assert
	assert.NoError(t, okErr)
	assert.Error(t, failErr)
	assert.Equal(t, []string{"outer", "inner", "outer", "inner"}, order)
	assert.Equal(t, []string{"command:pingCommand", "command:pingCommand"}, recorder.names)
	assert.NoError(t, recorder.errs[0])
	assert.Error(t, recorder.errs[1])
	assert.Equal(t, []string{"user:u1:"}, invalidator.prefixes, "failed commands keep the cache")
}
