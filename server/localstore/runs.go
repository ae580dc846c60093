package localstore

import (
	"context"
	"slices"
	"time"

	"github.com/stridelog/stridelog/server/store"
)

func normalizeRun(run store.Run) store.Run {
	if normalized := store.NormalizeRunDate(run.Date); normalized != "" {
		run.Date = normalized
	}
	if run.Miles < 0 {
		run.Miles = 0
	}
	run.Miles = store.Round1(run.Miles)
	return run
}

func (s *Store) GetRun(_ context.Context, runID string) (*store.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, run := range read[[]store.Run](s, nsRuns) {
		if run.ID == runID {
			run = normalizeRun(run)
			return &run, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetClubRuns(_ context.Context, clubID string) ([]store.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var runs []store.Run
	for _, run := range read[[]store.Run](s, nsRuns) {
		if run.ClubID == clubID {
			runs = append(runs, normalizeRun(run))
		}
	}
	return runs, nil
}

func (s *Store) GetMemberRuns(_ context.Context, clubID string, userID string) ([]store.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var runs []store.Run
	for _, run := range read[[]store.Run](s, nsRuns) {
		if run.ClubID == clubID && run.UserID == userID {
			runs = append(runs, normalizeRun(run))
		}
	}
	return runs, nil
}

func (s *Store) GetRunsForMembers(_ context.Context, clubID string, userIDs []string) ([]store.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var runs []store.Run
	for _, run := range read[[]store.Run](s, nsRuns) {
		if run.ClubID == clubID && slices.Contains(userIDs, run.UserID) {
			runs = append(runs, normalizeRun(run))
		}
	}
	return runs, nil
}

func (s *Store) AddRun(_ context.Context, run store.Run) (*store.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := store.ValidateRun(run)
	if err != nil {
		return nil, err
	}

	run.ID = newID()
	run.CreatedAt = time.Now()

	// Newest first; a display convenience, not a correctness requirement.
	runs := append([]store.Run{run}, read[[]store.Run](s, nsRuns)...)
	write(s, nsRuns, runs)

	if run.ShoeID != "" {
		s.addMilesLocked(run.ShoeID, run.Miles)
	}

	return &run, nil
}

func (s *Store) UpdateRun(_ context.Context, runID string, patch store.RunPatch) (*store.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs := read[[]store.Run](s, nsRuns)
	idx := slices.IndexFunc(runs, func(run store.Run) bool {
		return run.ID == runID
	})
	if idx < 0 {
		return nil, store.ErrNotFound
	}

	previous := runs[idx]
	updated, err := store.ValidateRun(patch.Apply(previous))
	if err != nil {
		return nil, err
	}

	runs[idx] = updated
	write(s, nsRuns, runs)

	// Reconcile the shoe ledger: the old contribution comes off its shoe,
	// the new one goes onto its shoe, covering a changed shoe reference.
	if previous.ShoeID != "" {
		s.addMilesLocked(previous.ShoeID, -previous.Miles)
	}
	if updated.ShoeID != "" {
		s.addMilesLocked(updated.ShoeID, updated.Miles)
	}

	return &updated, nil
}

func (s *Store) DeleteRun(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs := read[[]store.Run](s, nsRuns)
	idx := slices.IndexFunc(runs, func(run store.Run) bool {
		return run.ID == runID
	})
	if idx < 0 {
		// Deleting an absent run is a no-op, not an error.
		return nil
	}

	run := runs[idx]
	write(s, nsRuns, slices.Delete(runs, idx, idx+1))

	if run.ShoeID != "" {
		s.addMilesLocked(run.ShoeID, -run.Miles)
	}

	return nil
}
