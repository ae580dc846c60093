package localstore

import (
	"context"
	"strings"
	"time"

	"github.com/stridelog/stridelog/server/store"
)

// premiumState is the premium namespace record, keyed by user id.
type premiumState struct {
	Premium        bool       `json:"premium"`
	CustomerID     string     `json:"customer_id"`
	SubscriptionID string     `json:"subscription_id"`
	PremiumSince   *time.Time `json:"premium_since,omitempty"`
}

// normalizeUser is the single parse boundary for profile records: ids are
// strings, names are trimmed and empty display names fall back to the email
// local part.
func normalizeUser(user store.User) store.User {
	user.DisplayName = strings.TrimSpace(user.DisplayName)
	if user.DisplayName == "" {
		if at := strings.IndexByte(user.Email, '@'); at > 0 {
			user.DisplayName = user.Email[:at]
		} else {
			user.DisplayName = "Runner"
		}
	}
	return user
}

// overlay fills the premium and active-club fields from their own
// namespaces; profiles never store them authoritatively.
func (s *Store) overlay(user store.User) store.User {
	premium := read[map[string]premiumState](s, nsPremium)[user.ID]
	user.Premium = premium.Premium
	user.CustomerID = premium.CustomerID
	user.Subscription = premium.SubscriptionID
	user.PremiumSince = premium.PremiumSince
	user.ActiveClubID = read[map[string]string](s, nsActiveClubs)[user.ID]
	return user
}

func (s *Store) GetUser(_ context.Context, userID string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range read[[]store.User](s, nsUsers) {
		if user.ID == userID {
			user = s.overlay(normalizeUser(user))
			return &user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUserByCustomerID(_ context.Context, customerID string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, state := range read[map[string]premiumState](s, nsPremium) {
		if state.CustomerID != customerID {
			continue
		}
		for _, user := range read[[]store.User](s, nsUsers) {
			if user.ID == userID {
				user = s.overlay(normalizeUser(user))
				return &user, nil
			}
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpsertUser(_ context.Context, user store.User) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user = normalizeUser(user)

	users := read[[]store.User](s, nsUsers)
	var found bool
	for i, existing := range users {
		if existing.ID != user.ID {
			continue
		}
		users[i].Email = user.Email
		users[i].DisplayName = user.DisplayName
		users[i].AvatarURL = user.AvatarURL
		found = true
		user = users[i]
		break
	}
	if !found {
		user.CreatedAt = time.Now()
		users = append(users, user)

		// Demo convenience: a brand-new user joins the seeded clubs as an
		// admin so the local driver is usable without an invite.
		memberships := read[[]store.Membership](s, nsMemberships)
		for _, clubID := range []string{demoClubDawn, demoClubTrail} {
			if s.hasClub(clubID) {
				memberships = upsertMembershipIn(memberships, store.Membership{
					UserID:      user.ID,
					ClubID:      clubID,
					DisplayName: user.DisplayName,
					Email:       user.Email,
					Admin:       true,
					CreatedAt:   time.Now(),
				})
			}
		}
		write(s, nsMemberships, memberships)
	}
	write(s, nsUsers, users)

	user = s.overlay(user)
	return &user, nil
}

func (s *Store) UpdateProfile(_ context.Context, userID string, update store.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := read[[]store.User](s, nsUsers)
	var found bool
	for i, user := range users {
		if user.ID != userID {
			continue
		}
		users[i].DisplayName = strings.TrimSpace(update.DisplayName)
		users[i].Email = strings.TrimSpace(update.Email)
		users[i].Phone = strings.TrimSpace(update.Phone)
		users[i].Role = strings.TrimSpace(update.Role)
		users[i] = normalizeUser(users[i])
		found = true
		break
	}
	if !found {
		return store.ErrNotFound
	}
	write(s, nsUsers, users)

	// Keep directory listings current: membership snapshots follow the
	// profile.
	memberships := read[[]store.Membership](s, nsMemberships)
	for i, m := range memberships {
		if m.UserID != userID {
			continue
		}
		memberships[i].DisplayName = strings.TrimSpace(update.DisplayName)
		memberships[i].Email = strings.TrimSpace(update.Email)
		memberships[i].Phone = strings.TrimSpace(update.Phone)
	}
	write(s, nsMemberships, memberships)

	return nil
}

func (s *Store) SetActiveClub(_ context.Context, userID string, clubID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := read[map[string]string](s, nsActiveClubs)
	if active == nil {
		active = map[string]string{}
	}
	active[userID] = clubID
	write(s, nsActiveClubs, active)
	return nil
}

func (s *Store) ActivatePremium(_ context.Context, userID string, customerID string, subscriptionID string, since time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	premium := read[map[string]premiumState](s, nsPremium)
	if premium == nil {
		premium = map[string]premiumState{}
	}
	premium[userID] = premiumState{
		Premium:        true,
		CustomerID:     customerID,
		SubscriptionID: subscriptionID,
		PremiumSince:   &since,
	}
	write(s, nsPremium, premium)
	return nil
}

func (s *Store) SetPremiumByCustomerID(_ context.Context, customerID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	premium := read[map[string]premiumState](s, nsPremium)
	for userID, state := range premium {
		if state.CustomerID != customerID {
			continue
		}
		state.Premium = active
		premium[userID] = state
		write(s, nsPremium, premium)
		return nil
	}
	return store.ErrNotFound
}
