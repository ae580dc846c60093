package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/stridelog/stridelog/server/store"
)

func (d *Database) CreateInvite(ctx context.Context, invite store.Invite) error {
	query := `
		INSERT INTO invites (invite_token, invite_club_id, invite_email, invite_admin, invite_creator_id, invite_expires_at)
		VALUES (:invite_token, :invite_club_id, :invite_email, :invite_admin, :invite_creator_id, :invite_expires_at)
	`

	if _, err := d.db.NamedExecContext(ctx, query, invite); err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

func (d *Database) GetInvite(ctx context.Context, token string) (*store.Invite, error) {
	var invite store.Invite
	if err := d.db.GetContext(ctx, &invite, "SELECT * FROM invites WHERE invite_token = $1", token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return &invite, nil
}

func (d *Database) GetClubInvites(ctx context.Context, clubID string) ([]store.Invite, error) {
	var invites []store.Invite
	err := d.db.SelectContext(ctx, &invites, `
		SELECT * FROM invites
		WHERE invite_club_id = $1
		ORDER BY invite_created_at DESC
	`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to get club invites: %w", err)
	}
	return invites, nil
}

// ClaimInvite enforces single use at the data layer: the consumed-at stamp
// is checked and set in one statement, so only one claim can ever win. A
// repeat claim by the winner is answered idempotently; the membership upsert
// de-duplicates on (user, club) either way.
func (d *Database) ClaimInvite(ctx context.Context, token string, user store.User) (*store.Invite, error) {
	var invite store.Invite
	err := d.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &invite, `
			UPDATE invites
			SET invite_consumed_at = NOW(), invite_consumed_by = $2
			WHERE invite_token = $1 AND invite_consumed_at IS NULL AND invite_expires_at > NOW()
			RETURNING *
		`, token, user.ID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to claim invite: %w", err)
			}

			// Lost the race, already consumed, expired or unknown; decide
			// which from the current row.
			if err = tx.GetContext(ctx, &invite, "SELECT * FROM invites WHERE invite_token = $1", token); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return store.ErrNotFound
				}
				return fmt.Errorf("failed to get invite: %w", err)
			}
			switch {
			case invite.ConsumedAt != nil && invite.ConsumedBy == user.ID:
				return nil
			case invite.ConsumedAt != nil:
				return store.ErrInviteConsumed
			default:
				return store.ErrInviteExpired
			}
		}

		if _, err = tx.ExecContext(ctx, `
			INSERT INTO memberships (membership_user_id, membership_club_id, membership_display_name, membership_email, membership_phone, membership_admin)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (membership_user_id, membership_club_id) DO NOTHING
		`, user.ID, invite.ClubID, user.DisplayName, user.Email, user.Phone, invite.Admin); err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (d *Database) DeleteExpiredInvites(ctx context.Context) (int64, error) {
	res, err := d.db.ExecContext(ctx, "DELETE FROM invites WHERE invite_consumed_at IS NULL AND invite_expires_at < NOW()")
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired invites: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows, nil
}
