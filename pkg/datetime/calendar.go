// Package datetime provides calendar date utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/finance-engine/pkg/constants"
)

const (
	// DateTimeLayout is the month-granularity output format.
	DateTimeLayout = constants.DateTimeLayout

	// DateLayout is the day-granularity input format.
	DateLayout = constants.DateLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate accepts either a YYYY-MM-DD or a YYYY-MM string and returns the
// calendar date at midnight UTC. A YYYY-MM value maps to the first of the month.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if t, err := time.Parse(DateLayout, trimmed); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateTimeLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected %s or %s", value, DateLayout, DateTimeLayout)
	}
	return t, nil
}

// Day truncates t to its calendar date, keeping its location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddMonths adds a number of calendar months to t. Unlike time.AddDate the
// day of month is clamped to the last day of the target month, so January 31
// plus one month is the last day of February rather than early March.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	total := int(m) - 1 + months
	year := y + total/constants.MonthsPerYear
	month := total % constants.MonthsPerYear
	if month < 0 {
		month += constants.MonthsPerYear
		year--
	}

	target := time.Month(month + 1)
	if last := DaysInMonth(year, target); d > last {
		d = last
	}
	return time.Date(year, target, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatMonth renders t in the YYYY-MM layout used in reports.
func FormatMonth(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateTimeLayout)
}
