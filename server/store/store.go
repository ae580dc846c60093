package store

import (
	"context"
	"time"

	"github.com/stridelog/stridelog/internal/omit"
)

// Store is the single authoritative persistence backend of a deployment.
// It is implemented by the Postgres driver (server/database) and the
// single-writer file driver (server/localstore). Both must return identical
// rows for identical underlying data so leaderboards are reproducible across
// drivers.
type Store interface {
	Close() error

	// Users / profile

	GetUser(ctx context.Context, userID string) (*User, error)
	GetUserByCustomerID(ctx context.Context, customerID string) (*User, error)
	UpsertUser(ctx context.Context, user User) (*User, error)
	// UpdateProfile mutates the profile and propagates the display name,
	// email and phone snapshots into every membership of the user.
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error
	SetActiveClub(ctx context.Context, userID string, clubID string) error
	ActivatePremium(ctx context.Context, userID string, customerID string, subscriptionID string, since time.Time) error
	SetPremiumByCustomerID(ctx context.Context, customerID string, premium bool) error

	// Clubs

	GetClub(ctx context.Context, clubID string) (*Club, error)
	GetUserClubs(ctx context.Context, userID string) ([]ClubWithRole, error)
	// CreateClub inserts the club and an admin membership for its creator.
	CreateClub(ctx context.Context, club Club, creator Membership) error
	// DeleteClub removes the club and cascades to its memberships, runs,
	// announcements, invites and leaderboard resets.
	DeleteClub(ctx context.Context, clubID string) error

	// Memberships

	GetMembership(ctx context.Context, clubID string, userID string) (*Membership, error)
	GetMemberships(ctx context.Context, clubID string) ([]Membership, error)
	UpsertMembership(ctx context.Context, membership Membership) error
	DeleteMembership(ctx context.Context, clubID string, userID string) error

	// Runs. Add, update and delete reconcile the shoe mileage ledger.

	GetRun(ctx context.Context, runID string) (*Run, error)
	GetClubRuns(ctx context.Context, clubID string) ([]Run, error)
	GetMemberRuns(ctx context.Context, clubID string, userID string) ([]Run, error)
	GetRunsForMembers(ctx context.Context, clubID string, userIDs []string) ([]Run, error)
	AddRun(ctx context.Context, run Run) (*Run, error)
	UpdateRun(ctx context.Context, runID string, patch RunPatch) (*Run, error)
	DeleteRun(ctx context.Context, runID string) error

	// Shoes

	GetShoe(ctx context.Context, shoeID string) (*Shoe, error)
	GetShoes(ctx context.Context, userID string) ([]Shoe, error)
	AddShoe(ctx context.Context, shoe Shoe) (*Shoe, error)
	UpdateShoe(ctx context.Context, shoeID string, name string, milesLimit float64) error
	SetShoeActive(ctx context.Context, shoeID string, active bool) error
	// AddMilesToShoe applies a signed mileage delta. A missing shoe drops the
	// delta silently; mileage bookkeeping is advisory.
	AddMilesToShoe(ctx context.Context, shoeID string, delta float64) error

	// Announcements

	GetAnnouncement(ctx context.Context, announcementID string) (*Announcement, error)
	GetAnnouncements(ctx context.Context, clubID string) ([]Announcement, error)
	AddAnnouncement(ctx context.Context, announcement Announcement) (*Announcement, error)
	UpdateAnnouncement(ctx context.Context, announcementID string, title string, body string, audience string) error
	DeleteAnnouncement(ctx context.Context, announcementID string) error

	// Invites

	CreateInvite(ctx context.Context, invite Invite) error
	GetInvite(ctx context.Context, token string) (*Invite, error)
	GetClubInvites(ctx context.Context, clubID string) ([]Invite, error)
	// ClaimInvite atomically marks the invite consumed and upserts the
	// membership. A second claim of the same token fails with
	// ErrInviteConsumed; re-acceptance by the same user never creates a
	// second membership.
	ClaimInvite(ctx context.Context, token string, user User) (*Invite, error)
	DeleteExpiredInvites(ctx context.Context) (int64, error)

	// Leaderboard resets

	SetLeaderboardReset(ctx context.Context, reset LeaderboardReset) error
	GetLeaderboardReset(ctx context.Context, clubID string, month string) (*LeaderboardReset, error)

	// Sessions

	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, sessionID string) (*SessionWithUser, error)
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteExpiredSessions(ctx context.Context) error

	// Billing audit

	InsertBillingEvent(ctx context.Context, event BillingEvent) error
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	DisplayName string
	Email       string
	Phone       string
	Role        string
}

// RunPatch carries the editable run fields. Absent fields keep their stored
// value; present fields replace it, including clearing the shoe reference.
type RunPatch struct {
	Date     omit.Omit[string]
	Miles    omit.Omit[float64]
	Type     omit.Omit[RunType]
	RaceName omit.Omit[string]
	Notes    omit.Omit[string]
	ShoeID   omit.Omit[string]
}

// Apply returns run with the patch applied. It does not validate.
func (p RunPatch) Apply(run Run) Run {
	if p.Date.OK {
		run.Date = p.Date.Value
	}
	if p.Miles.OK {
		run.Miles = p.Miles.Value
	}
	if p.Type.OK {
		run.Type = p.Type.Value
	}
	if p.RaceName.OK {
		run.RaceName = p.RaceName.Value
	}
	if p.Notes.OK {
		run.Notes = p.Notes.Value
	}
	if p.ShoeID.OK {
		run.ShoeID = p.ShoeID.Value
	}
	return run
}
