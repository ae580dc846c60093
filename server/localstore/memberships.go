package localstore

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/stridelog/stridelog/server/store"
)

// upsertMembershipIn enforces the at-most-one-membership-per-(user, club)
// invariant: an existing row is updated in place, never duplicated.
func upsertMembershipIn(memberships []store.Membership, membership store.Membership) []store.Membership {
	for i, existing := range memberships {
		if existing.UserID == membership.UserID && existing.ClubID == membership.ClubID {
			membership.CreatedAt = existing.CreatedAt
			memberships[i] = membership
			return memberships
		}
	}
	if membership.CreatedAt.IsZero() {
		membership.CreatedAt = time.Now()
	}
	return append(memberships, membership)
}

func normalizeMembership(m store.Membership) store.Membership {
	m.DisplayName = strings.TrimSpace(m.DisplayName)
	m.Email = strings.TrimSpace(m.Email)
	return m
}

func (s *Store) GetMembership(_ context.Context, clubID string, userID string) (*store.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range read[[]store.Membership](s, nsMemberships) {
		if m.ClubID == clubID && m.UserID == userID {
			m = normalizeMembership(m)
			return &m, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetMemberships(_ context.Context, clubID string) ([]store.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var memberships []store.Membership
	for _, m := range read[[]store.Membership](s, nsMemberships) {
		if m.ClubID == clubID {
			memberships = append(memberships, normalizeMembership(m))
		}
	}
	slices.SortFunc(memberships, func(a, b store.Membership) int {
		return strings.Compare(a.DisplayName, b.DisplayName)
	})
	return memberships, nil
}

func (s *Store) UpsertMembership(_ context.Context, membership store.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	write(s, nsMemberships, upsertMembershipIn(read[[]store.Membership](s, nsMemberships), normalizeMembership(membership)))
	return nil
}

func (s *Store) DeleteMembership(_ context.Context, clubID string, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	write(s, nsMemberships, slices.DeleteFunc(read[[]store.Membership](s, nsMemberships), func(m store.Membership) bool {
		return m.ClubID == clubID && m.UserID == userID
	}))
	return nil
}
