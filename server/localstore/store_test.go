package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridelog/stridelog/internal/omit"
	"github.com/stridelog/stridelog/server/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestEnsureSeededIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	clubs, err := s.GetUserClubs(ctx, demoUserID)
	require.NoError(t, err)
	require.Len(t, clubs, 2)

	s.EnsureSeeded()
	s.EnsureSeeded()

	clubs, err = s.GetUserClubs(ctx, demoUserID)
	require.NoError(t, err)
	assert.Len(t, clubs, 2)
}

func TestShoeLedgerFollowsRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	shoe, err := s.AddShoe(ctx, store.Shoe{UserID: demoUserID, Name: "Pegasus"})
	require.NoError(t, err)

	run, err := s.AddRun(ctx, store.Run{
		UserID: demoUserID,
		ClubID: demoClubDawn,
		Date:   "2026-01-07",
		Miles:  5.2,
		ShoeID: shoe.ID,
	})
	require.NoError(t, err)

	got, err := s.GetShoe(ctx, shoe.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.2, got.Miles)

	require.NoError(t, s.DeleteRun(ctx, run.ID))

	got, err = s.GetShoe(ctx, shoe.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Miles)
}

func TestUpdateRunMovesMilesBetweenShoes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.AddShoe(ctx, store.Shoe{UserID: demoUserID, Name: "Pegasus"})
	require.NoError(t, err)
	second, err := s.AddShoe(ctx, store.Shoe{UserID: demoUserID, Name: "Speedgoat"})
	require.NoError(t, err)

	run, err := s.AddRun(ctx, store.Run{
		UserID: demoUserID,
		ClubID: demoClubDawn,
		Date:   "2026-01-07",
		Miles:  4.0,
		ShoeID: first.ID,
	})
	require.NoError(t, err)

	patch := store.RunPatch{
		ShoeID: omit.New(second.ID),
		Miles:  omit.New(6.0),
	}
	_, err = s.UpdateRun(ctx, run.ID, patch)
	require.NoError(t, err)

	got, err := s.GetShoe(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Miles)

	got, err = s.GetShoe(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, got.Miles)
}

func TestAddRunValidationLeavesNothingBehind(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	before, err := s.GetClubRuns(ctx, demoClubDawn)
	require.NoError(t, err)

	_, err = s.AddRun(ctx, store.Run{
		UserID: demoUserID,
		ClubID: demoClubDawn,
		Date:   "2026-01-07",
		Miles:  0,
	})
	require.Error(t, err)
	assert.True(t, store.IsValidation(err))

	after, err := s.GetClubRuns(ctx, demoClubDawn)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAddRunCanonicalizesDate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	run, err := s.AddRun(ctx, store.Run{
		UserID: demoUserID,
		ClubID: demoClubDawn,
		Date:   "2026-01-07T10:00:00Z",
		Miles:  3.0,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-07", run.Date)
}

func TestClaimInviteIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	invite := store.Invite{
		Token:     "tok-1",
		ClubID:    demoClubDawn,
		CreatorID: demoUserID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, s.CreateInvite(ctx, invite))

	alice := store.User{ID: "alice", DisplayName: "Alice", Email: "alice@example.com"}
	_, err := s.ClaimInvite(ctx, "tok-1", alice)
	require.NoError(t, err)

	// Re-acceptance by the same user is idempotent and leaves one membership.
	_, err = s.ClaimInvite(ctx, "tok-1", alice)
	require.NoError(t, err)

	members, err := s.GetMemberships(ctx, demoClubDawn)
	require.NoError(t, err)
	var count int
	for _, m := range members {
		if m.UserID == alice.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)

	// Anyone else is rejected.
	_, err = s.ClaimInvite(ctx, "tok-1", store.User{ID: "bob"})
	assert.ErrorIs(t, err, store.ErrInviteConsumed)
}

func TestClaimInviteExpired(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateInvite(ctx, store.Invite{
		Token:     "tok-old",
		ClubID:    demoClubDawn,
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	_, err := s.ClaimInvite(ctx, "tok-old", store.User{ID: "alice"})
	assert.ErrorIs(t, err, store.ErrInviteExpired)
}

func TestAddAnnouncementRejectsEmptyBody(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.AddAnnouncement(ctx, store.Announcement{
		ClubID: demoClubDawn,
		Title:  "Race day",
		Body:   "   ",
	})
	require.Error(t, err)
	assert.True(t, store.IsValidation(err))

	announcements, err := s.GetAnnouncements(ctx, demoClubDawn)
	require.NoError(t, err)
	assert.Empty(t, announcements)
}

func TestDeleteClubBacksMilesOutOfShoes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	shoe, err := s.AddShoe(ctx, store.Shoe{UserID: demoUserID, Name: "Pegasus"})
	require.NoError(t, err)

	_, err = s.AddRun(ctx, store.Run{
		UserID: demoUserID,
		ClubID: demoClubDawn,
		Date:   "2026-01-07",
		Miles:  5.2,
		ShoeID: shoe.ID,
	})
	require.NoError(t, err)
	_, err = s.AddRun(ctx, store.Run{
		UserID: demoUserID,
		ClubID: demoClubTrail,
		Date:   "2026-01-08",
		Miles:  2.0,
		ShoeID: shoe.ID,
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteClub(ctx, demoClubDawn))

	// Only the deleted club's contribution comes off.
	got, err := s.GetShoe(ctx, shoe.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Miles)

	_, err = s.GetClub(ctx, demoClubDawn)
	assert.ErrorIs(t, err, store.ErrNotFound)

	runs, err := s.GetClubRuns(ctx, demoClubDawn)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestUpdateProfileRefreshesMembershipSnapshots(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.UpdateProfile(ctx, demoUserID, store.ProfileUpdate{
		DisplayName: "Morning Miles",
		Email:       "miles@example.com",
		Phone:       "+1 555 0100",
		Role:        store.RoleMember,
	}))

	user, err := s.GetUser(ctx, demoUserID)
	require.NoError(t, err)
	assert.Equal(t, "Morning Miles", user.DisplayName)

	// The seeded user belongs to both demo clubs; every snapshot follows.
	for _, clubID := range []string{demoClubDawn, demoClubTrail} {
		members, err := s.GetMemberships(ctx, clubID)
		require.NoError(t, err)

		var found bool
		for _, m := range members {
			if m.UserID != demoUserID {
				continue
			}
			found = true
			assert.Equal(t, "Morning Miles", m.DisplayName)
			assert.Equal(t, "miles@example.com", m.Email)
			assert.Equal(t, "+1 555 0100", m.Phone)
		}
		require.True(t, found)
	}
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.UpdateProfile(ctx, "nobody", store.ProfileUpdate{DisplayName: "Ghost"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateSession(ctx, store.Session{
		ID:        "sess-1",
		UserID:    demoUserID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	session, err := s.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, demoUserID, session.User.ID)

	require.NoError(t, s.CreateSession(ctx, store.Session{
		ID:        "sess-old",
		UserID:    demoUserID,
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	_, err = s.GetSession(ctx, "sess-old")
	assert.ErrorIs(t, err, store.ErrSessionExpired)

	require.NoError(t, s.DeleteExpiredSessions(ctx))
	_, err = s.GetSession(ctx, "sess-old")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
