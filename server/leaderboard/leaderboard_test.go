package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridelog/stridelog/server/store"
)

var now = time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

func member(userID, clubID, name string) store.Membership {
	return store.Membership{
		UserID:      userID,
		ClubID:      clubID,
		DisplayName: name,
	}
}

func run(userID, clubID, date string, miles float64) store.Run {
	return store.Run{
		UserID: userID,
		ClubID: clubID,
		Date:   date,
		Miles:  miles,
	}
}

func TestComputeRanksByMiles(t *testing.T) {
	members := []store.Membership{
		member("u1", "c1", "Ann"),
		member("u2", "c1", "Bo"),
		member("u3", "c1", "Cam"),
	}
	runs := []store.Run{
		run("u1", "c1", "2026-01-05", 3.0),
		run("u1", "c1", "2026-01-12", 5.0),
		run("u2", "c1", "2026-01-10", 10.0),
	}

	entries := Compute(members, runs, Options{ClubID: "c1", Scope: ScopeThisMonth, Now: now})
	require.Len(t, entries, 3)

	assert.Equal(t, Entry{Rank: 1, UserID: "u2", Name: "Bo", Miles: 10.0, Runs: 1}, entries[0])
	assert.Equal(t, Entry{Rank: 2, UserID: "u1", Name: "Ann", Miles: 8.0, Runs: 2}, entries[1])
	assert.Equal(t, Entry{Rank: 3, UserID: "u3", Name: "Cam", Miles: 0.0, Runs: 0}, entries[2])
}

func TestComputeTiesGetDistinctRanks(t *testing.T) {
	members := []store.Membership{
		member("u1", "c1", "Ann"),
		member("u2", "c1", "Bo"),
	}
	runs := []store.Run{
		run("u1", "c1", "2026-01-05", 12.0),
		run("u2", "c1", "2026-01-06", 12.0),
	}

	entries := Compute(members, runs, Options{ClubID: "c1", Scope: ScopeThisMonth, Now: now})
	require.Len(t, entries, 2)

	// Equal totals break the tie by name, ranks stay sequential.
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "Ann", entries[0].Name)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "Bo", entries[1].Name)
}

func TestComputeScopesRunsToClubAndMembership(t *testing.T) {
	members := []store.Membership{
		member("u1", "c1", "Ann"),
	}
	runs := []store.Run{
		run("u1", "c1", "2026-01-05", 3.0),
		// Same user, different club: never counts here.
		run("u1", "c2", "2026-01-06", 50.0),
		// Not a member of c1 anymore.
		run("u9", "c1", "2026-01-07", 50.0),
	}

	entries := Compute(members, runs, Options{ClubID: "c1", Scope: ScopeThisMonth, Now: now})
	require.Len(t, entries, 1)
	assert.Equal(t, 3.0, entries[0].Miles)
}

func TestComputeMonthWindows(t *testing.T) {
	members := []store.Membership{
		member("u1", "c1", "Ann"),
	}
	runs := []store.Run{
		run("u1", "c1", "2025-12-28", 4.0),
		run("u1", "c1", "2026-01-05", 3.0),
	}

	thisMonth := Compute(members, runs, Options{ClubID: "c1", Scope: ScopeThisMonth, Now: now})
	assert.Equal(t, 3.0, thisMonth[0].Miles)

	lastMonth := Compute(members, runs, Options{ClubID: "c1", Scope: ScopeLastMonth, Now: now})
	assert.Equal(t, 4.0, lastMonth[0].Miles)

	allTime := Compute(members, runs, Options{ClubID: "c1", Scope: ScopeAllTime, Now: now})
	assert.Equal(t, 7.0, allTime[0].Miles)
}

func TestComputeResetOnlyNarrowsThisMonth(t *testing.T) {
	members := []store.Membership{
		member("u1", "c1", "Ann"),
	}
	runs := []store.Run{
		run("u1", "c1", "2026-01-05", 3.0),
		run("u1", "c1", "2026-01-15", 5.0),
	}

	opts := Options{ClubID: "c1", Scope: ScopeThisMonth, Now: now, ResetCutoff: "2026-01-10"}
	entries := Compute(members, runs, opts)
	assert.Equal(t, 5.0, entries[0].Miles)
	assert.Equal(t, 1, entries[0].Runs)

	// All-time ignores the cutoff entirely.
	opts.Scope = ScopeAllTime
	entries = Compute(members, runs, opts)
	assert.Equal(t, 8.0, entries[0].Miles)
}

func TestComputeShoeFilter(t *testing.T) {
	members := []store.Membership{
		member("u1", "c1", "Ann"),
	}
	runs := []store.Run{
		{UserID: "u1", ClubID: "c1", Date: "2026-01-05", Miles: 3.0, ShoeID: "s1"},
		{UserID: "u1", ClubID: "c1", Date: "2026-01-06", Miles: 5.0, ShoeID: "s2"},
	}

	entries := Compute(members, runs, Options{ClubID: "c1", Scope: ScopeThisMonth, Now: now, ShoeID: "s1"})
	assert.Equal(t, 3.0, entries[0].Miles)
}

func TestComputeIsDeterministic(t *testing.T) {
	members := []store.Membership{
		member("u3", "c1", "Cam"),
		member("u1", "c1", "Ann"),
		member("u2", "c1", "Bo"),
	}
	runs := []store.Run{
		run("u2", "c1", "2026-01-10", 4.2),
		run("u1", "c1", "2026-01-05", 4.2),
		run("u3", "c1", "2026-01-07", 4.2),
	}

	opts := Options{ClubID: "c1", Scope: ScopeThisMonth, Now: now}
	first := Compute(members, runs, opts)
	for range 10 {
		assert.Equal(t, first, Compute(members, runs, opts))
	}
}

func TestComputeRoundsTotals(t *testing.T) {
	members := []store.Membership{
		member("u1", "c1", "Ann"),
	}
	runs := []store.Run{
		run("u1", "c1", "2026-01-05", 3.1),
		run("u1", "c1", "2026-01-06", 2.2),
	}

	entries := Compute(members, runs, Options{ClubID: "c1", Scope: ScopeThisMonth, Now: now})
	assert.Equal(t, 5.3, entries[0].Miles)
}

func TestParseScope(t *testing.T) {
	assert.Equal(t, ScopeThisMonth, ParseScope(""))
	assert.Equal(t, ScopeThisMonth, ParseScope("bogus"))
	assert.Equal(t, ScopeLastMonth, ParseScope("last_month"))
	assert.Equal(t, ScopeAllTime, ParseScope("all_time"))
}
