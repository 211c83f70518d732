package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeInternal     ErrorType = "INTERNAL"
	ErrorTypeTimeout      ErrorType = "TIMEOUT"
	ErrorTypeRateLimit    ErrorType = "RATE_LIMIT"
	ErrorTypeUnavailable  ErrorType = "UNAVAILABLE"
	ErrorTypeDatabase     ErrorType = "DATABASE"
	ErrorTypePublish      ErrorType = "PUBLISH"
)

var statusByType = map[ErrorType]int{
	ErrorTypeValidation:   http.StatusBadRequest,
	ErrorTypeNotFound:     http.StatusNotFound,
	ErrorTypeConflict:     http.StatusConflict,
	ErrorTypeUnauthorized: http.StatusUnauthorized,
	ErrorTypeForbidden:    http.StatusForbidden,
	ErrorTypeInternal:     http.StatusInternalServerError,
	ErrorTypeTimeout:      http.StatusRequestTimeout,
	ErrorTypeRateLimit:    http.StatusTooManyRequests,
	ErrorTypeUnavailable:  http.StatusServiceUnavailable,
	ErrorTypeDatabase:     http.StatusInternalServerError,
	ErrorTypePublish:      http.StatusBadGateway,
}

// typeForStatus names the error type rendered for a bare status code
func typeForStatus(status int) ErrorType {
	switch status {
	case http.StatusInternalServerError:
		return ErrorTypeInternal
	case http.StatusBadGateway:
		return ErrorTypePublish
	}
	for t, s := range statusByType {
		if s == status {
			return t
		}
	}
	return ErrorTypeInternal
}

// AppError is an infrastructure or application failure with the HTTP status
// it should surface as
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// New builds an AppError of the given type
func New(errType ErrorType, message string) *AppError {
	status, ok := statusByType[errType]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: status,
		StackTrace: captureStackTrace(),
	}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds a machine readable code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func captureStackTrace() string {
	var pcs [32]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return b.String()
}

// NewValidationError reports a malformed request
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message)
}

// NewNotFoundError reports a missing resource
func NewNotFoundError(resource string) *AppError {
	return New(ErrorTypeNotFound, resource+" not found")
}

// NewInternalError reports an unexpected failure
func NewInternalError(message string) *AppError {
	return New(ErrorTypeInternal, message)
}

// NewDatabaseError wraps a storage driver failure
func NewDatabaseError(operation string, err error) *AppError {
	return New(ErrorTypeDatabase, fmt.Sprintf("database operation '%s' failed", operation)).WithCause(err)
}

// NewPublishError wraps a failure to hand events to the bus
func NewPublishError(target string, err error) *AppError {
	return New(ErrorTypePublish, fmt.Sprintf("publishing events to '%s' failed", target)).WithCause(err)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsDomainType checks whether err carries a DomainError of the given type
func IsDomainType(err error, errType DomainErrorType) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Type == errType
}

// Wrap adds context to err. AppErrors are copied rather than mutated so
// shared errors stay untouched; domain errors keep their type so the HTTP
// layer can still map them.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if appErr := GetAppError(err); appErr != nil {
		wrapped := *appErr
		wrapped.Message = message + ": " + appErr.Message
		return &wrapped
	}

	var domainErr *DomainError
	var validationErrs *ValidationErrors
	if errors.As(err, &domainErr) || errors.As(err, &validationErrs) {
		return fmt.Errorf("%s: %w", message, err)
	}

	return NewInternalError(message).WithCause(err)
}
