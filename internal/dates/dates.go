// Package dates normalizes the raw date strings and epoch seconds the
// storage layer persists into validated calendar values. Stored timestamps
// are always interpreted as UTC; created dates use the unambiguous
// YYYY-MM-DD form and nothing else.
package dates

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the only accepted calendar-date form.
const DateLayout = "2006-01-02"

// ErrFormat is returned when a stored date string does not parse as
// YYYY-MM-DD. It indicates previously accepted data is unreadable.
var ErrFormat = errors.New("malformed date")

// ErrTimestamp is returned when an epoch second count falls outside the
// representable calendar range.
var ErrTimestamp = errors.New("invalid timestamp")

// Epoch seconds for years 0001 and 9999. Values outside this window cannot
// round-trip through DateLayout and are treated as corrupt.
const (
	minUnix = -62135596800
	maxUnix = 253402300799
)

// ParseDate parses a strict YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	return t, nil
}

// FromUnix converts stored epoch seconds into a UTC instant. The UTC
// interpretation is deliberate: local-time readings of the same value can
// be ambiguous around calendar adjustments.
func FromUnix(sec int64) (time.Time, error) {
	if sec < minUnix || sec > maxUnix {
		return time.Time{}, fmt.Errorf("%w: %d", ErrTimestamp, sec)
	}
	return time.Unix(sec, 0).UTC(), nil
}
