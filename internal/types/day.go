package types

import (
	"fmt"
	"time"
)

// DateFormat is the layout used to read and write calendar days.
const DateFormat = "2006-01-02"

// Day returns the calendar day of t as midnight UTC. The wall-clock year,
// month and day of t are kept regardless of its location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// ParseDay parses a YYYY-MM-DD string into a calendar day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q, want format %s: %w", s, DateFormat, err)
	}

	return t, nil
}

// MustParseDay is like ParseDay but panics on error. Meant for tests and constants.
func MustParseDay(s string) time.Time {
	t, err := ParseDay(s)
	if err != nil {
		panic(err)
	}

	return t
}
