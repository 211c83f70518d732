package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	pkgerrors "observador-backend/pkg/errors"
)

const (
	MinLabelLength = 1
	MaxLabelLength = 200
)

// NormalizeLabel trims a display label and enforces length bounds
func NormalizeLabel(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	length := utf8.RuneCountInString(value)
	if length < MinLabelLength {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("%s cannot be empty", field))
	}
	if length > MaxLabelLength {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("%s exceeds maximum length of %d characters", field, MaxLabelLength))
	}
	return value, nil
}
