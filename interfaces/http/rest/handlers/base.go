package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	commandbus "observador-backend/application/commands/bus"
	querybus "observador-backend/application/queries/bus"
	"observador-backend/pkg/auth"
	pkgerrors "observador-backend/pkg/errors"

	"go.uber.org/zap"
)

// maxBodyBytes caps every JSON request body
const maxBodyBytes = 1 << 20

// base carries what every handler needs to answer a request
type base struct {
	errs   *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// userID returns the authenticated user, writing 401 when there is none
func (b *base) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		b.errs.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return user.UserID, true
}

// decode reads a JSON body into dst, writing 400 on malformed input
func (b *base) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		b.errs.Handle(w, r, pkgerrors.NewValidationError("Invalid request body: "+err.Error()))
		return false
	}
	return true
}

// fail renders an error coming back from a bus. A command or query that
// failed its own Validate with an untyped error is still the caller's fault.
func (b *base) fail(w http.ResponseWriter, r *http.Request, err error) {
	if isValidationFailure(err) && !isTyped(err) {
		err = pkgerrors.NewValidationError(err.Error())
	}
	b.errs.Handle(w, r, err)
}

func isValidationFailure(err error) bool {
	return errors.Is(err, commandbus.ErrValidationFailed) || errors.Is(err, querybus.ErrValidationFailed)
}

func isTyped(err error) bool {
	var validationErrs *pkgerrors.ValidationErrors
	var domainErr *pkgerrors.DomainError
	return errors.As(err, &validationErrs) || errors.As(err, &domainErr) || pkgerrors.GetAppError(err) != nil
}

// intParam parses an optional integer query parameter
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.NewValidationError(fmt.Sprintf("%s must be an integer", name))
	}
	return v, nil
}
