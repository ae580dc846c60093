package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stridelog/stridelog/server/store"
)

func (d *Database) CreateSession(ctx context.Context, session store.Session) error {
	query := `
		INSERT INTO sessions (session_id, session_user_id, session_expires_at)
		VALUES (:session_id, :session_user_id, :session_expires_at)
	`

	if _, err := d.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (d *Database) GetSession(ctx context.Context, sessionID string) (*store.SessionWithUser, error) {
	var session store.SessionWithUser
	err := d.db.GetContext(ctx, &session, `
		SELECT sessions.*, users.*
		FROM sessions
		JOIN users ON sessions.session_user_id = users.user_id
		WHERE sessions.session_id = $1
	`, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.ExpiresAt.Before(time.Now()) {
		return nil, store.ErrSessionExpired
	}

	return &session, nil
}

func (d *Database) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = $1", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (d *Database) DeleteExpiredSessions(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_expires_at < NOW()"); err != nil {
		return fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}
	return nil
}
