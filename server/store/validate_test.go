package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRun(t *testing.T) {
	run, err := ValidateRun(Run{Date: "2026-01-07T10:00:00Z", Miles: 4.25, Notes: " easy loop "})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-07", run.Date)
	assert.Equal(t, 4.3, run.Miles)
	assert.Equal(t, RunTypeTraining, run.Type)
	assert.Equal(t, "easy loop", run.Notes)
}

func TestValidateRunRejectsNonPositiveMiles(t *testing.T) {
	for _, miles := range []float64{0, -1} {
		_, err := ValidateRun(Run{Date: "2026-01-07", Miles: miles})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.EqualError(t, err, "Miles must be greater than 0")
	}
}

func TestValidateRunRequiresDate(t *testing.T) {
	_, err := ValidateRun(Run{Miles: 3})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestValidateRunRaceNeedsName(t *testing.T) {
	_, err := ValidateRun(Run{Date: "2026-01-07", Miles: 3, Type: RunTypeRace})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	run, err := ValidateRun(Run{Date: "2026-01-07", Miles: 3, Type: RunTypeRace, RaceName: "Spring 5K"})
	require.NoError(t, err)
	assert.Equal(t, "Spring 5K", run.RaceName)
}

func TestValidateAnnouncement(t *testing.T) {
	_, err := ValidateAnnouncement(Announcement{ClubID: "c1", Title: "Race day", Body: "   "})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.EqualError(t, err, "Message is required")

	a, err := ValidateAnnouncement(Announcement{ClubID: "c1", Title: " Race day ", Body: " Meet at 8 "})
	require.NoError(t, err)
	assert.Equal(t, "Race day", a.Title)
	assert.Equal(t, "Meet at 8", a.Body)
}

func TestFilterAnnouncementsDropsMalformed(t *testing.T) {
	filtered := FilterAnnouncements([]Announcement{
		{Title: "ok", Body: "ok"},
		{Title: "", Body: "orphan body"},
		{Title: "orphan title", Body: "  "},
	})
	require.Len(t, filtered, 1)
	assert.Equal(t, "ok", filtered[0].Title)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 4.3, Round1(4.25))
	assert.Equal(t, 0.0, Round1(0.04))
	assert.Equal(t, 5.2, Round1(5.2))
}
