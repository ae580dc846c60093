package localstore

import (
	"context"
	"slices"
	"time"

	"github.com/stridelog/stridelog/server/store"
)

func (s *Store) CreateInvite(_ context.Context, invite store.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if invite.CreatedAt.IsZero() {
		invite.CreatedAt = time.Now()
	}
	write(s, nsInvites, append(read[[]store.Invite](s, nsInvites), invite))
	return nil
}

func (s *Store) GetInvite(_ context.Context, token string) (*store.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, invite := range read[[]store.Invite](s, nsInvites) {
		if invite.Token == token {
			return &invite, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetClubInvites(_ context.Context, clubID string) ([]store.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var invites []store.Invite
	for _, invite := range read[[]store.Invite](s, nsInvites) {
		if invite.ClubID == clubID {
			invites = append(invites, invite)
		}
	}
	slices.SortFunc(invites, func(a, b store.Invite) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return invites, nil
}

func (s *Store) ClaimInvite(_ context.Context, token string, user store.User) (*store.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invites := read[[]store.Invite](s, nsInvites)
	idx := slices.IndexFunc(invites, func(invite store.Invite) bool {
		return invite.Token == token
	})
	if idx < 0 {
		return nil, store.ErrNotFound
	}

	invite := invites[idx]
	if invite.ConsumedAt != nil {
		// Re-acceptance by the claimer is idempotent; anyone else is
		// rejected, the token is single-use.
		if invite.ConsumedBy == user.ID {
			return &invite, nil
		}
		return nil, store.ErrInviteConsumed
	}
	if time.Now().After(invite.ExpiresAt) {
		return nil, store.ErrInviteExpired
	}

	now := time.Now()
	invite.ConsumedAt = &now
	invite.ConsumedBy = user.ID
	invites[idx] = invite
	write(s, nsInvites, invites)

	write(s, nsMemberships, upsertMembershipIn(read[[]store.Membership](s, nsMemberships), store.Membership{
		UserID:      user.ID,
		ClubID:      invite.ClubID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Phone:       user.Phone,
		Admin:       invite.Admin,
		CreatedAt:   now,
	}))

	return &invite, nil
}

func (s *Store) DeleteExpiredInvites(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	invites := read[[]store.Invite](s, nsInvites)
	remaining := slices.DeleteFunc(slices.Clone(invites), func(invite store.Invite) bool {
		return invite.ConsumedAt == nil && now.After(invite.ExpiresAt)
	})

	removed := int64(len(invites) - len(remaining))
	if removed > 0 {
		write(s, nsInvites, remaining)
	}
	return removed, nil
}
