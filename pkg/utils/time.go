package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for daily entries
const DateLayout = "2006-01-02"

// ParseDate accepts either a calendar day or a full RFC3339 timestamp and
// returns the UTC day it falls on.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD or RFC3339", s)
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// FormatDate renders t as a calendar day
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
