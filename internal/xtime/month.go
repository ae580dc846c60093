package xtime

import (
	"time"
)

// MonthKey returns the YYYY-MM key of the month t falls in.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// PrevMonthKey returns the YYYY-MM key of the month before the one t falls
// in, computed from the first of the month so day-of-month overflow can never
// skip a month.
func PrevMonthKey(t time.Time) string {
	return MonthStart(t).AddDate(0, -1, 0).Format("2006-01")
}

// MonthStart returns midnight on the first day of the month t falls in.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
