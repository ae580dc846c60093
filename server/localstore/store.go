// Package localstore is the file-backed record store driver. It persists
// each collection as a JSON document in its own namespace file and is meant
// for single-writer dev/demo deployments: there is no cross-process
// exclusion, the last writer wins.
//
// Reads never fail. A missing or corrupt namespace yields the collection's
// empty default, and every decoded record passes through a normalization
// step so callers never observe malformed shapes. Write errors are logged
// and otherwise swallowed; the store is best-effort, not a system of record.
package localstore

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stridelog/stridelog/server/store"
)

// Namespace files. Each holds one whole collection; there are no partial
// updates across namespaces.
const (
	nsSeeded        = "seeded"
	nsUsers         = "users"
	nsClubs         = "clubs"
	nsMemberships   = "memberships"
	nsActiveClubs   = "active_clubs"
	nsPremium       = "premium"
	nsShoes         = "shoes"
	nsRuns          = "runs"
	nsAnnouncements = "announcements"
	nsInvites       = "invites"
	nsResets        = "leaderboard_resets"
	nsSessions      = "sessions"
	nsBillingEvents = "billing_events"
)

var _ store.Store = (*Store)(nil)

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &Store{dir: dir}
	s.EnsureSeeded()
	return s, nil
}

type Store struct {
	dir string
	mu  sync.Mutex
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) path(namespace string) string {
	return filepath.Join(s.dir, namespace+".json")
}

// read decodes a whole namespace. Any failure yields the zero value.
func read[T any](s *Store, namespace string) T {
	var value T
	data, err := os.ReadFile(s.path(namespace))
	if err != nil {
		return value
	}
	if err = json.Unmarshal(data, &value); err != nil {
		slog.Warn("localstore: discarding corrupt namespace", slog.String("namespace", namespace), slog.Any("err", err))
		var zero T
		return zero
	}
	return value
}

// write replaces a whole namespace. Failures are logged and swallowed.
func write[T any](s *Store, namespace string, value T) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		slog.Warn("localstore: failed to encode namespace", slog.String("namespace", namespace), slog.Any("err", err))
		return
	}
	if err = os.WriteFile(s.path(namespace), data, 0o644); err != nil {
		slog.Warn("localstore: failed to write namespace", slog.String("namespace", namespace), slog.Any("err", err))
	}
}

const (
	demoUserID    = "demo-runner"
	demoClubDawn  = "demo-club-dawn-patrol"
	demoClubTrail = "demo-club-trail-crew"
)

// EnsureSeeded bootstraps first-run state and applies forward migrations on
// every later call so older persisted data stays loadable after a shape
// change. It is idempotent.
func (s *Store) EnsureSeeded() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if read[bool](s, nsSeeded) {
		s.migrate()
		return
	}

	now := time.Now()
	demo := store.User{
		ID:          demoUserID,
		Email:       "demo@stridelog.local",
		DisplayName: "Demo Runner",
		CreatedAt:   now,
	}
	clubs := []store.Club{
		{ID: demoClubDawn, Name: "Dawn Patrol RC", CreatorID: demo.ID, CreatedAt: now},
		{ID: demoClubTrail, Name: "Trail Crew", CreatorID: demo.ID, CreatedAt: now},
	}
	memberships := make([]store.Membership, 0, len(clubs))
	for _, club := range clubs {
		memberships = append(memberships, store.Membership{
			UserID:      demo.ID,
			ClubID:      club.ID,
			DisplayName: demo.DisplayName,
			Email:       demo.Email,
			Admin:       true,
			CreatedAt:   now,
		})
	}

	write(s, nsUsers, []store.User{demo})
	write(s, nsClubs, clubs)
	write(s, nsMemberships, memberships)
	write(s, nsActiveClubs, map[string]string{demo.ID: clubs[0].ID})
	write(s, nsShoes, []store.Shoe{})
	write(s, nsRuns, []store.Run{})
	write(s, nsAnnouncements, []store.Announcement{})
	write(s, nsSeeded, true)

	slog.Info("localstore: seeded demo data", slog.String("dir", s.dir))
}

// migrate normalizes previously persisted data: run dates are canonicalized
// to YYYY-MM-DD and membership display names are backfilled from profiles.
func (s *Store) migrate() {
	runs := read[[]store.Run](s, nsRuns)
	var runsChanged bool
	for i, run := range runs {
		if normalized := store.NormalizeRunDate(run.Date); normalized != "" && normalized != run.Date {
			runs[i].Date = normalized
			runsChanged = true
		}
	}
	if runsChanged {
		write(s, nsRuns, runs)
	}

	users := read[[]store.User](s, nsUsers)
	names := make(map[string]store.User, len(users))
	for _, user := range users {
		names[user.ID] = user
	}

	memberships := read[[]store.Membership](s, nsMemberships)
	var membershipsChanged bool
	for i, m := range memberships {
		if strings.TrimSpace(m.DisplayName) != "" {
			continue
		}
		if user, ok := names[m.UserID]; ok {
			memberships[i].DisplayName = user.DisplayName
			memberships[i].Email = user.Email
			membershipsChanged = true
		}
	}
	if membershipsChanged {
		write(s, nsMemberships, memberships)
	}
}

func newID() string {
	return uuid.NewString()
}
