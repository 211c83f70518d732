package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorResponse represents the API error response format
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Fields    map[string][]string    `json:"fields,omitempty"`
	Retryable bool                   `json:"retryable,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorHandler turns errors coming out of the buses into HTTP responses
type ErrorHandler struct {
	logger        *zap.Logger
	debug         bool
	defaultStatus int
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{
		logger:        logger,
		debug:         debug,
		defaultStatus: http.StatusInternalServerError,
	}
}

// Handle processes an error and sends an HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	status, response := h.Resolve(err)
	response.RequestID = requestID(r)

	h.logError(r, err, status)
	h.sendJSON(w, status, response)
}

// Resolve maps an error to a status code and response body without writing it.
// Validation bundles win over single domain errors, which win over AppErrors.
func (h *ErrorHandler) Resolve(err error) (int, ErrorResponse) {
	var validationErrs *ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest, ErrorResponse{
			Error:   true,
			Type:    string(DomainValidationError),
			Message: validationErrs.Error(),
			Code:    "VALIDATION_FAILED",
			Fields:  validationErrs.ToMap(),
		}
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		status := domainErr.StatusCode
		if status == 0 {
			status = h.defaultStatus
		}
		return status, ErrorResponse{
			Error:     true,
			Type:      string(domainErr.Type),
			Message:   domainErr.Message,
			Code:      domainErr.Code,
			Details:   domainErr.Details,
			Retryable: domainErr.Retryable,
		}
	}

	if appErr := GetAppError(err); appErr != nil {
		status := appErr.HTTPStatus
		if status == 0 {
			status = h.defaultStatus
		}
		response := ErrorResponse{
			Error:   true,
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		}
		if h.debug && appErr.StackTrace != "" {
			details := make(map[string]interface{}, len(appErr.Details)+1)
			for k, v := range appErr.Details {
				details[k] = v
			}
			details["stack_trace"] = appErr.StackTrace
			response.Details = details
		}
		return status, response
	}

	response := ErrorResponse{
		Error:   true,
		Type:    string(ErrorTypeInternal),
		Message: "An internal error occurred",
	}
	if h.debug {
		response.Message = err.Error()
	}
	return h.defaultStatus, response
}

// HandleStatus sends an error response with a specific status code
func (h *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	response := ErrorResponse{
		Error:     true,
		Type:      string(typeForStatus(status)),
		Message:   message,
		RequestID: requestID(r),
	}

	h.logger.Warn("HTTP error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("message", message),
	)

	h.sendJSON(w, status, response)
}

func (h *ErrorHandler) logError(r *http.Request, err error, status int) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", requestID(r)),
	}

	switch {
	case status >= 500:
		h.logger.Error("Request failed", fields...)
	case status >= 400:
		h.logger.Warn("Request rejected", fields...)
	default:
		h.logger.Info("Request error", fields...)
	}
}

func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// Middleware recovers panics raised further down the chain
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}
