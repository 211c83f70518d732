package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// DomainErrorType represents the category of domain error
type DomainErrorType string

const (
	DomainValidationError     DomainErrorType = "VALIDATION_ERROR"
	DomainBusinessRuleError   DomainErrorType = "BUSINESS_RULE_ERROR"
	DomainNotFoundError       DomainErrorType = "NOT_FOUND"
	DomainAuthorizationError  DomainErrorType = "AUTHORIZATION_ERROR"
	DomainAuthenticationError DomainErrorType = "AUTHENTICATION_ERROR"
	DomainRateLimitError      DomainErrorType = "RATE_LIMIT_ERROR"
)

var domainStatus = map[DomainErrorType]int{
	DomainValidationError:     http.StatusBadRequest,
	DomainBusinessRuleError:   http.StatusUnprocessableEntity,
	DomainNotFoundError:       http.StatusNotFound,
	DomainAuthorizationError:  http.StatusForbidden,
	DomainAuthenticationError: http.StatusUnauthorized,
	DomainRateLimitError:      http.StatusTooManyRequests,
}

// DomainError is a rule violation the caller can act on. The shared values
// below are compared with errors.Is on Type and Code, so decorate a Clone
// rather than the original.
type DomainError struct {
	Type       DomainErrorType        `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

// NewDomainError creates a new domain error
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	status, ok := domainStatus[errorType]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &DomainError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		StatusCode: status,
	}
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	e.Details[key] = value
	return e
}

// WithRetryable marks the error as safe to retry
func (e *DomainError) WithRetryable(retryable bool) *DomainError {
	e.Retryable = retryable
	return e
}

// Clone returns a copy with its own details map
func (e *DomainError) Clone() *DomainError {
	clone := *e
	clone.Details = make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	return &clone
}

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Type == t.Type && e.Code == t.Code
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Entity and entry rules
var (
	ErrEntityNotFound        = NewDomainError(DomainNotFoundError, "ENTITY_NOT_FOUND", "The requested entity does not exist")
	ErrLabelRequired         = NewDomainError(DomainValidationError, "LABEL_REQUIRED", "A name or title is required")
	ErrLabelTooLong          = NewDomainError(DomainValidationError, "LABEL_TOO_LONG", "Name or title exceeds maximum length")
	ErrValueOutOfRange       = NewDomainError(DomainValidationError, "VALUE_OUT_OF_RANGE", "Numeric value is outside its allowed range")
	ErrInvalidEnergyExchange = NewDomainError(DomainValidationError, "INVALID_ENERGY_EXCHANGE", "Energy exchange must be POSITIVE, NEUTRAL or NEGATIVE")
	ErrUnknownEntityKind     = NewDomainError(DomainValidationError, "UNKNOWN_ENTITY_KIND", "Entity kind is not supported")
	ErrEntryDateRequired     = NewDomainError(DomainValidationError, "ENTRY_DATE_REQUIRED", "Daily entry date is required")
	ErrEntryInFuture         = NewDomainError(DomainBusinessRuleError, "ENTRY_IN_FUTURE", "Daily entries cannot be dated in the future")
)

// Agents and access
var (
	ErrAgentProjectNotFound = NewDomainError(DomainNotFoundError, "AGENT_PROJECT_NOT_FOUND", "The requested agent project does not exist")
	ErrAgentProjectInactive = NewDomainError(DomainAuthorizationError, "AGENT_PROJECT_INACTIVE", "Agent project is not active")
	ErrInvalidAPIKey        = NewDomainError(DomainAuthenticationError, "INVALID_API_KEY", "API key is missing or invalid")
	ErrUserNotAuthorized    = NewDomainError(DomainAuthorizationError, "USER_NOT_AUTHORIZED", "User is not authorized to perform this action")
	ErrRateLimitExceeded    = NewDomainError(DomainRateLimitError, "RATE_LIMIT_EXCEEDED", "Too many requests, please try again later").
				WithRetryable(true)
)

// ValidationErrors collects every rule a record broke
type ValidationErrors struct {
	Errors []*DomainError `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add records a field level failure
func (v *ValidationErrors) Add(field string, message string) {
	v.Errors = append(v.Errors, NewDomainError(DomainValidationError, "FIELD_VALIDATION_ERROR", message).
		WithDetail("field", field))
}

// AddError records a pre-existing domain error
func (v *ValidationErrors) AddError(err *DomainError) {
	v.Errors = append(v.Errors, err)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return "Validation failed: " + strings.Join(messages, "; ")
}

// ToMap groups messages by field; errors without one land under "general"
func (v *ValidationErrors) ToMap() map[string][]string {
	result := make(map[string][]string)
	for _, err := range v.Errors {
		field, ok := err.Details["field"].(string)
		if !ok {
			field = "general"
		}
		result[field] = append(result[field], err.Message)
	}
	return result
}
