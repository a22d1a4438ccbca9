// Package dates handles the ISO calendar dates stored on ledger entries.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical YYYY-MM-DD form compared against stored dates.
const Layout = "2006-01-02"

// Parse accepts YYYY-MM-DD with an optional T-separated time portion and
// returns the calendar date at UTC midnight.
func Parse(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if idx := strings.IndexByte(trimmed, 'T'); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	t, err := time.Parse(Layout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

// Format renders the calendar date of t.
func Format(t time.Time) string {
	return Day(t).Format(Layout)
}

// Day truncates t to midnight of its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a calendar date by n days.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// Today returns the current calendar date in UTC.
func Today() time.Time {
	return Day(time.Now().UTC())
}
