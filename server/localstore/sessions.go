package localstore

import (
	"context"
	"slices"
	"time"

	"github.com/stridelog/stridelog/server/store"
)

func (s *Store) CreateSession(_ context.Context, session store.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	write(s, nsSessions, append(read[[]store.Session](s, nsSessions), session))
	return nil
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (*store.SessionWithUser, error) {
	s.mu.Lock()
	var session *store.Session
	for _, candidate := range read[[]store.Session](s, nsSessions) {
		if candidate.ID == sessionID {
			session = &candidate
			break
		}
	}
	s.mu.Unlock()

	if session == nil {
		return nil, store.ErrNotFound
	}
	if session.ExpiresAt.Before(time.Now()) {
		return nil, store.ErrSessionExpired
	}

	user, err := s.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	return &store.SessionWithUser{Session: *session, User: *user}, nil
}

func (s *Store) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	write(s, nsSessions, slices.DeleteFunc(read[[]store.Session](s, nsSessions), func(session store.Session) bool {
		return session.ID == sessionID
	}))
	return nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	write(s, nsSessions, slices.DeleteFunc(read[[]store.Session](s, nsSessions), func(session store.Session) bool {
		return session.ExpiresAt.Before(now)
	}))
	return nil
}

func (s *Store) InsertBillingEvent(_ context.Context, event store.BillingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now()
	}
	write(s, nsBillingEvents, append(read[[]store.BillingEvent](s, nsBillingEvents), event))
	return nil
}
