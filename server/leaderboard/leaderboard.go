// Package leaderboard derives ranked monthly standings from membership and
// run snapshots. The computation is pure: it never mutates a stored run and
// repeated calls over the same snapshot return identical results.
package leaderboard

import (
	"sort"
	"time"

	"github.com/stridelog/stridelog/internal/xtime"
	"github.com/stridelog/stridelog/server/store"
)

type Scope string

const (
	ScopeThisMonth Scope = "this_month"
	ScopeLastMonth Scope = "last_month"
	ScopeAllTime   Scope = "all_time"
)

// ParseScope maps a query value to a scope, defaulting to this month.
func ParseScope(value string) Scope {
	switch Scope(value) {
	case ScopeLastMonth:
		return ScopeLastMonth
	case ScopeAllTime:
		return ScopeAllTime
	default:
		return ScopeThisMonth
	}
}

// Options select the club, time window and filters of a standings query.
type Options struct {
	ClubID string
	Scope  Scope
	// Now anchors the month windows; handlers pass time.Now().
	Now time.Time
	// ResetCutoff is the canonical date of a manual monthly reset. It only
	// narrows the this-month window; every other scope ignores it.
	ResetCutoff string
	// ShoeID restricts totals to runs logged with one shoe.
	ShoeID string
}

// Entry is one member's standing. Members with no qualifying miles still
// appear with a total of 0.
type Entry struct {
	Rank   int     `json:"rank"`
	UserID string  `json:"user_id"`
	Name   string  `json:"name"`
	Miles  float64 `json:"miles"`
	Runs   int     `json:"runs"`
}

// Compute ranks the club's current members by total qualifying miles.
//
// A run qualifies only when its club matches the queried club AND its owner
// currently holds a membership in that club; a run logged by the same user in
// a different club never counts. Totals are rounded to one decimal. Ties sort
// by ascending as-typed name and still receive distinct sequential ranks:
// rank is positional, not value-based.
func Compute(members []store.Membership, runs []store.Run, opts Options) []Entry {
	eligible := make(map[string]*Entry, len(members))
	for _, m := range members {
		if m.ClubID != opts.ClubID {
			continue
		}
		eligible[m.UserID] = &Entry{
			UserID: m.UserID,
			Name:   m.DisplayName,
		}
	}

	targetMonth := monthFor(opts)
	for _, run := range runs {
		if run.ClubID != opts.ClubID {
			continue
		}
		entry, ok := eligible[run.UserID]
		if !ok {
			continue
		}
		if targetMonth != "" && store.MonthOf(run.Date) != targetMonth {
			continue
		}
		if opts.Scope == ScopeThisMonth && opts.ResetCutoff != "" && run.Date < opts.ResetCutoff {
			continue
		}
		if opts.ShoeID != "" && run.ShoeID != opts.ShoeID {
			continue
		}
		entry.Miles += run.Miles
		entry.Runs++
	}

	entries := make([]Entry, 0, len(eligible))
	for _, entry := range eligible {
		entry.Miles = store.Round1(entry.Miles)
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Miles != entries[j].Miles {
			return entries[i].Miles > entries[j].Miles
		}
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].UserID < entries[j].UserID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}

func monthFor(opts Options) string {
	switch opts.Scope {
	case ScopeThisMonth:
		return xtime.MonthKey(opts.Now)
	case ScopeLastMonth:
		return xtime.PrevMonthKey(opts.Now)
	default:
		return ""
	}
}
