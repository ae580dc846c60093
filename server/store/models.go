package store

import (
	"encoding/json"
	"time"
)

// RunType is the free classification of a logged run.
type RunType string

const (
	RunTypeTraining  RunType = "training"
	RunTypeRace      RunType = "race"
	RunTypeEasy      RunType = "easy"
	RunTypeTempo     RunType = "tempo"
	RunTypeIntervals RunType = "intervals"
	RunTypeLong      RunType = "long"
	RunTypeOther     RunType = "other"
)

// RunTypes lists every valid run type in display order.
var RunTypes = []RunType{
	RunTypeTraining,
	RunTypeRace,
	RunTypeEasy,
	RunTypeTempo,
	RunTypeIntervals,
	RunTypeLong,
	RunTypeOther,
}

// App-wide user roles. Club-level admin rights live on the membership.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type User struct {
	ID           string     `db:"user_id" json:"id"`
	Email        string     `db:"user_email" json:"email"`
	DisplayName  string     `db:"user_display_name" json:"display_name"`
	Phone        string     `db:"user_phone" json:"phone"`
	Role         string     `db:"user_role" json:"role"`
	AvatarURL    string     `db:"user_avatar_url" json:"avatar_url"`
	ActiveClubID string     `db:"user_active_club_id" json:"active_club_id"`
	Premium      bool       `db:"user_premium" json:"premium"`
	CustomerID   string     `db:"user_customer_id" json:"customer_id"`
	Subscription string     `db:"user_subscription_id" json:"subscription_id"`
	PremiumSince *time.Time `db:"user_premium_since" json:"premium_since,omitempty"`
	CreatedAt    time.Time  `db:"user_created_at" json:"created_at"`
}

type Club struct {
	ID        string    `db:"club_id" json:"id"`
	Name      string    `db:"club_name" json:"name"`
	CreatorID string    `db:"club_creator_id" json:"creator_id"`
	CreatedAt time.Time `db:"club_created_at" json:"created_at"`
}

// ClubWithRole is a club joined with the requesting user's membership flags.
type ClubWithRole struct {
	Club
	Admin bool `db:"membership_admin" json:"admin"`
}

// Membership links a user to a club. The display name, email and phone are
// denormalized snapshots refreshed whenever the profile changes.
type Membership struct {
	UserID      string    `db:"membership_user_id" json:"user_id"`
	ClubID      string    `db:"membership_club_id" json:"club_id"`
	DisplayName string    `db:"membership_display_name" json:"display_name"`
	Email       string    `db:"membership_email" json:"email"`
	Phone       string    `db:"membership_phone" json:"phone"`
	Admin       bool      `db:"membership_admin" json:"admin"`
	CreatedAt   time.Time `db:"membership_created_at" json:"created_at"`
}

type Shoe struct {
	ID         string    `db:"shoe_id" json:"id"`
	UserID     string    `db:"shoe_user_id" json:"user_id"`
	Name       string    `db:"shoe_name" json:"name"`
	Miles      float64   `db:"shoe_miles" json:"miles"`
	MilesLimit float64   `db:"shoe_miles_limit" json:"miles_limit"`
	Active     bool      `db:"shoe_active" json:"active"`
	CreatedAt  time.Time `db:"shoe_created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"shoe_updated_at" json:"updated_at"`
}

// Run is a single logged activity. Date is the runner's local calendar day in
// canonical YYYY-MM-DD form, never a timestamp.
type Run struct {
	ID        string    `db:"run_id" json:"id"`
	UserID    string    `db:"run_user_id" json:"user_id"`
	ClubID    string    `db:"run_club_id" json:"club_id"`
	Date      string    `db:"run_date" json:"date"`
	Miles     float64   `db:"run_miles" json:"miles"`
	Type      RunType   `db:"run_type" json:"type"`
	RaceName  string    `db:"run_race_name" json:"race_name"`
	Notes     string    `db:"run_notes" json:"notes"`
	ShoeID    string    `db:"run_shoe_id" json:"shoe_id"`
	CreatedAt time.Time `db:"run_created_at" json:"created_at"`
}

// Announcement audiences. Admin-only announcements are hidden from regular
// members in listings.
const (
	AudienceAll    = "all"
	AudienceAdmins = "admins"
)

type Announcement struct {
	ID        string    `db:"announcement_id" json:"id"`
	ClubID    string    `db:"announcement_club_id" json:"club_id"`
	Title     string    `db:"announcement_title" json:"title"`
	Body      string    `db:"announcement_body" json:"body"`
	Audience  string    `db:"announcement_audience" json:"audience"`
	CreatedAt time.Time `db:"announcement_created_at" json:"created_at"`
	UpdatedAt time.Time `db:"announcement_updated_at" json:"updated_at"`
}

type Invite struct {
	Token      string     `db:"invite_token" json:"token"`
	ClubID     string     `db:"invite_club_id" json:"club_id"`
	Email      string     `db:"invite_email" json:"email"`
	Admin      bool       `db:"invite_admin" json:"admin"`
	CreatorID  string     `db:"invite_creator_id" json:"creator_id"`
	CreatedAt  time.Time  `db:"invite_created_at" json:"created_at"`
	ExpiresAt  time.Time  `db:"invite_expires_at" json:"expires_at"`
	ConsumedAt *time.Time `db:"invite_consumed_at" json:"consumed_at,omitempty"`
	ConsumedBy string     `db:"invite_consumed_by" json:"consumed_by"`
}

// LeaderboardReset moves the qualifying lower bound of a club's "this month"
// standings forward without touching any run.
type LeaderboardReset struct {
	ClubID string    `db:"reset_club_id" json:"club_id"`
	Month  string    `db:"reset_month" json:"month"`
	Cutoff string    `db:"reset_cutoff" json:"cutoff"`
	SetBy  string    `db:"reset_set_by" json:"set_by"`
	SetAt  time.Time `db:"reset_set_at" json:"set_at"`
}

type Session struct {
	ID        string    `db:"session_id" json:"id"`
	UserID    string    `db:"session_user_id" json:"user_id"`
	CreatedAt time.Time `db:"session_created_at" json:"created_at"`
	ExpiresAt time.Time `db:"session_expires_at" json:"expires_at"`
}

type SessionWithUser struct {
	Session
	User
}

// BillingEvent is the audit record of a verified payment-processor webhook
// event. Raw carries the event payload as received.
type BillingEvent struct {
	ID         string          `db:"billing_event_id" json:"id"`
	Type       string          `db:"billing_event_type" json:"type"`
	CustomerID string          `db:"billing_event_customer_id" json:"customer_id"`
	Raw        json.RawMessage `db:"billing_event_raw" json:"raw"`
	ReceivedAt time.Time       `db:"billing_event_received_at" json:"received_at"`
}
