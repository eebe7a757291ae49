// Package dates provides civil-date helpers for the daily simulation axis.
// All dates are UTC midnights; arithmetic stays on whole calendar days so a
// date parsed from "YYYY-MM-DD" round-trips exactly.
package dates

import (
	"fmt"
	"time"
)

// Layout is the wire format for all dates consumed and produced by the lab.
const Layout = "2006-01-02"

// Parse parses a YYYY-MM-DD string into a UTC midnight.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// MustParse parses a YYYY-MM-DD string and panics on failure.
// Intended for tests and package-level constants only.
func MustParse(s string) time.Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Format renders a date as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Truncate drops the time-of-day component, keeping the UTC calendar date.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days after t.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(Truncate(b).Sub(Truncate(a)).Hours() / 24)
}

// ExpectedTradingDays approximates the number of trading days in a calendar
// span as 5/7 of the day count. Good enough for coverage ratios; holiday
// calendars are deliberately not modeled.
func ExpectedTradingDays(start, end time.Time) float64 {
	days := DaysBetween(start, end)
	if days <= 0 {
		return 0
	}
	return float64(days) * 5.0 / 7.0
}
