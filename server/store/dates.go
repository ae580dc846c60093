package store

import (
	"strings"
	"time"
)

// DateFormat is the canonical calendar-day form every stored run date uses.
const DateFormat = "2006-01-02"

// MonthFormat keys leaderboard resets by calendar month.
const MonthFormat = "2006-01"

// NormalizeRunDate canonicalizes a run date to YYYY-MM-DD using local
// calendar fields. It accepts ISO dates, ISO date-times and MM/DD/YYYY.
// A run logged for "today" always resolves to the runner's local calendar
// day regardless of time-of-day or timezone offset. Returns "" when the
// input is empty or unparseable.
func NormalizeRunDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	if t, err := time.ParseInLocation(DateFormat, value, time.Local); err == nil {
		return t.Format(DateFormat)
	}

	// Date-time inputs keep their calendar fields as written instead of being
	// shifted through UTC, so a run dated "2026-01-07T10:00:00Z" stays on the
	// 7th everywhere.
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "01/02/2006"} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t.Format(DateFormat)
		}
	}

	return ""
}

// NormalizeTimeDate canonicalizes a native time value to the local calendar
// day it falls on.
func NormalizeTimeDate(t time.Time) string {
	return t.In(time.Local).Format(DateFormat)
}

// MonthOf returns the YYYY-MM month key a canonical run date belongs to.
func MonthOf(date string) string {
	if len(date) < len(MonthFormat) {
		return ""
	}
	return date[:len(MonthFormat)]
}
