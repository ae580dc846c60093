package localstore

import (
	"context"
	"slices"
	"time"

	"github.com/stridelog/stridelog/server/store"
)

// SetLeaderboardReset records a manual reset cutoff per (club, month). It
// never deletes or alters a run; it only moves the qualifying lower bound of
// that month's this-month standings.
func (s *Store) SetLeaderboardReset(_ context.Context, reset store.LeaderboardReset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reset.SetAt.IsZero() {
		reset.SetAt = time.Now()
	}

	resets := read[[]store.LeaderboardReset](s, nsResets)
	idx := slices.IndexFunc(resets, func(r store.LeaderboardReset) bool {
		return r.ClubID == reset.ClubID && r.Month == reset.Month
	})
	if idx >= 0 {
		resets[idx] = reset
	} else {
		resets = append(resets, reset)
	}
	write(s, nsResets, resets)
	return nil
}

func (s *Store) GetLeaderboardReset(_ context.Context, clubID string, month string) (*store.LeaderboardReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, reset := range read[[]store.LeaderboardReset](s, nsResets) {
		if reset.ClubID == clubID && reset.Month == month {
			return &reset, nil
		}
	}
	return nil, store.ErrNotFound
}
