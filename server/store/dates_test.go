package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRunDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "canonical", value: "2026-01-07", want: "2026-01-07"},
		{name: "rfc3339 keeps calendar day", value: "2026-01-07T10:00:00Z", want: "2026-01-07"},
		{name: "rfc3339 with offset", value: "2026-01-07T23:30:00+05:00", want: "2026-01-07"},
		{name: "datetime without zone", value: "2026-01-07T06:15:00", want: "2026-01-07"},
		{name: "us style", value: "01/07/2026", want: "2026-01-07"},
		{name: "padded", value: "  2026-01-07  ", want: "2026-01-07"},
		{name: "empty", value: "", want: ""},
		{name: "garbage", value: "next tuesday", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRunDate(tt.value))
		})
	}
}

func TestNormalizeRunDateIsIdempotent(t *testing.T) {
	values := []string{"2026-01-07", "2026-01-07T10:00:00Z", "01/07/2026"}
	for _, value := range values {
		once := NormalizeRunDate(value)
		assert.Equal(t, once, NormalizeRunDate(once))
	}
}

func TestNormalizeTimeDate(t *testing.T) {
	local := time.Date(2026, 3, 9, 23, 45, 0, 0, time.Local)
	assert.Equal(t, "2026-03-09", NormalizeTimeDate(local))
}

func TestMonthOf(t *testing.T) {
	assert.Equal(t, "2026-01", MonthOf("2026-01-07"))
	assert.Equal(t, "", MonthOf("bad"))
}
