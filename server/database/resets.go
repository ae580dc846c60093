package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stridelog/stridelog/server/store"
)

// SetLeaderboardReset records a manual reset cutoff per (club, month). No
// run is deleted or altered; only the qualifying lower bound of that month's
// this-month standings moves.
func (d *Database) SetLeaderboardReset(ctx context.Context, reset store.LeaderboardReset) error {
	query := `
		INSERT INTO leaderboard_resets (reset_club_id, reset_month, reset_cutoff, reset_set_by)
		VALUES (:reset_club_id, :reset_month, :reset_cutoff, :reset_set_by)
		ON CONFLICT (reset_club_id, reset_month) DO UPDATE SET
			reset_cutoff = EXCLUDED.reset_cutoff,
			reset_set_by = EXCLUDED.reset_set_by,
			reset_set_at = NOW()
	`

	if _, err := d.db.NamedExecContext(ctx, query, reset); err != nil {
		return fmt.Errorf("failed to set leaderboard reset: %w", err)
	}
	return nil
}

func (d *Database) GetLeaderboardReset(ctx context.Context, clubID string, month string) (*store.LeaderboardReset, error) {
	var reset store.LeaderboardReset
	err := d.db.GetContext(ctx, &reset, `
		SELECT * FROM leaderboard_resets
		WHERE reset_club_id = $1 AND reset_month = $2
	`, clubID, month)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get leaderboard reset: %w", err)
	}
	return &reset, nil
}
