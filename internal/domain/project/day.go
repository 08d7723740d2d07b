package project

import (
	"strings"
	"time"

	"github.com/handwerk/backoffice/internal/domain/shared"
)

// DateLayout is the wire format of a calendar day
const DateLayout = "2006-01-02"

// Day returns the calendar day of t, read in t's own location, as midnight UTC.
// Work, usage and report dates are stored in this form, so a day parsed from
// YYYY-MM-DD and "today" taken from a local clock compare equal.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last instant of Day(t)
func EndOfDay(t time.Time) time.Time {
	return Day(t).Add(24*time.Hour - time.Nanosecond)
}

// ParseDay parses a YYYY-MM-DD day or an RFC 3339 timestamp. Days come back as
// midnight UTC with dateOnly set; timestamps keep their instant, in UTC.
func ParseDay(field, s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, shared.NewInvalidArgumentError("%s %q is not a valid date (expected YYYY-MM-DD)", field, s)
}
