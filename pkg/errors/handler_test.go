package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestErrorHandler_Resolve(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop(), false)

	validation := NewValidationErrors()
	validation.Add("name", "name is required")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation bundle", validation, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"wrapped validation bundle", fmt.Errorf("save project: %w", validation), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"domain not found", ErrEntityNotFound.Clone(), http.StatusNotFound, "ENTITY_NOT_FOUND"},
		{"domain auth", ErrInvalidAPIKey, http.StatusUnauthorized, "INVALID_API_KEY"},
		{"business rule", ErrEntryInFuture, http.StatusUnprocessableEntity, "ENTRY_IN_FUTURE"},
		{"app error", NewNotFoundError("snapshot").WithCode("SNAPSHOT_MISSING"), http.StatusNotFound, "SNAPSHOT_MISSING"},
		{"database error", NewDatabaseError("save", stderrors.New("boom")), http.StatusInternalServerError, ""},
		{"plain error", stderrors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			status, response := handler.Resolve(tt.err)

			// Assert
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, response.Code)
			assert.True(t, response.Error)
		})
	}
}

func TestErrorHandler_Handle_WritesFieldErrors(t *testing.T) {
	// Arrange
	handler := NewErrorHandler(zap.NewNop(), false)
	validation := NewValidationErrors()
	validation.Add("progress", "progress must be between 0 and 100")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()

	// Act
	handler.Handle(rec, req, validation)

	// Assert
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-1", body.RequestID)
	assert.Equal(t, []string{"progress must be between 0 and 100"}, body.Fields["progress"])
}

func TestErrorHandler_PlainErrorHidesMessageOutsideDebug(t *testing.T) {
	err := stderrors.New("connection string leaked")

	_, prod := NewErrorHandler(zap.NewNop(), false).Resolve(err)
	_, dev := NewErrorHandler(zap.NewNop(), true).Resolve(err)

	assert.Equal(t, "An internal error occurred", prod.Message)
	assert.Equal(t, "connection string leaked", dev.Message)
}

func TestErrorHandler_MiddlewareRecoversPanics(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop(), false)
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("kaboom") })
	rec := httptest.NewRecorder()

	handler.Middleware(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWrap_DoesNotMutateOriginal(t *testing.T) {
	original := NewNotFoundError("project")

	wrapped := Wrap(original, "load graph")

	assert.Equal(t, "project not found", original.Message)
	assert.Equal(t, "load graph: project not found", GetAppError(wrapped).Message)
}

func TestWrap_KeepsDomainErrors(t *testing.T) {
	wrapped := Wrap(ErrAgentProjectInactive, "record decision")

	assert.True(t, IsDomainType(wrapped, DomainAuthorizationError))
	assert.True(t, stderrors.Is(wrapped, ErrAgentProjectInactive))
}
