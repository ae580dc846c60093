package localstore

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/stridelog/stridelog/server/store"
)

func normalizeClub(club store.Club) store.Club {
	club.Name = strings.TrimSpace(club.Name)
	return club
}

func (s *Store) hasClub(clubID string) bool {
	return slices.ContainsFunc(read[[]store.Club](s, nsClubs), func(club store.Club) bool {
		return club.ID == clubID
	})
}

func (s *Store) GetClub(_ context.Context, clubID string) (*store.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, club := range read[[]store.Club](s, nsClubs) {
		if club.ID == clubID {
			club = normalizeClub(club)
			return &club, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUserClubs(_ context.Context, userID string) ([]store.ClubWithRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	memberships := read[[]store.Membership](s, nsMemberships)
	byClub := make(map[string]bool, len(memberships))
	for _, m := range memberships {
		if m.UserID == userID {
			byClub[m.ClubID] = m.Admin
		}
	}

	var clubs []store.ClubWithRole
	for _, club := range read[[]store.Club](s, nsClubs) {
		admin, ok := byClub[club.ID]
		if !ok {
			continue
		}
		clubs = append(clubs, store.ClubWithRole{Club: normalizeClub(club), Admin: admin})
	}
	slices.SortFunc(clubs, func(a, b store.ClubWithRole) int {
		return strings.Compare(a.Name, b.Name)
	})
	return clubs, nil
}

func (s *Store) CreateClub(_ context.Context, club store.Club, creator store.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	club = normalizeClub(club)
	if club.Name == "" {
		return &store.ValidationError{Message: "Club name is required"}
	}
	if club.ID == "" {
		club.ID = newID()
	}
	if club.CreatedAt.IsZero() {
		club.CreatedAt = time.Now()
	}

	clubs := append(read[[]store.Club](s, nsClubs), club)
	write(s, nsClubs, clubs)

	creator.ClubID = club.ID
	creator.Admin = true
	if creator.CreatedAt.IsZero() {
		creator.CreatedAt = club.CreatedAt
	}
	write(s, nsMemberships, upsertMembershipIn(read[[]store.Membership](s, nsMemberships), creator))

	return nil
}

// DeleteClub removes the club and everything scoped to it. Runs referencing
// a shoe give their miles back to the ledger so the shoe invariant survives
// the cascade.
func (s *Store) DeleteClub(_ context.Context, clubID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clubs := slices.DeleteFunc(read[[]store.Club](s, nsClubs), func(club store.Club) bool {
		return club.ID == clubID
	})
	write(s, nsClubs, clubs)

	write(s, nsMemberships, slices.DeleteFunc(read[[]store.Membership](s, nsMemberships), func(m store.Membership) bool {
		return m.ClubID == clubID
	}))

	runs := read[[]store.Run](s, nsRuns)
	for _, run := range runs {
		if run.ClubID == clubID && run.ShoeID != "" {
			s.addMilesLocked(run.ShoeID, -run.Miles)
		}
	}
	write(s, nsRuns, slices.DeleteFunc(runs, func(run store.Run) bool {
		return run.ClubID == clubID
	}))

	write(s, nsAnnouncements, slices.DeleteFunc(read[[]store.Announcement](s, nsAnnouncements), func(a store.Announcement) bool {
		return a.ClubID == clubID
	}))

	write(s, nsInvites, slices.DeleteFunc(read[[]store.Invite](s, nsInvites), func(invite store.Invite) bool {
		return invite.ClubID == clubID
	}))

	write(s, nsResets, slices.DeleteFunc(read[[]store.LeaderboardReset](s, nsResets), func(reset store.LeaderboardReset) bool {
		return reset.ClubID == clubID
	}))

	active := read[map[string]string](s, nsActiveClubs)
	for userID, activeClubID := range active {
		if activeClubID == clubID {
			delete(active, userID)
		}
	}
	write(s, nsActiveClubs, active)

	return nil
}
