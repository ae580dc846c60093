package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stridelog/stridelog/server/store"
)

func (d *Database) GetMembership(ctx context.Context, clubID string, userID string) (*store.Membership, error) {
	var membership store.Membership
	err := d.db.GetContext(ctx, &membership, `
		SELECT * FROM memberships
		WHERE membership_club_id = $1 AND membership_user_id = $2
	`, clubID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &membership, nil
}

func (d *Database) GetMemberships(ctx context.Context, clubID string) ([]store.Membership, error) {
	var memberships []store.Membership
	err := d.db.SelectContext(ctx, &memberships, `
		SELECT * FROM memberships
		WHERE membership_club_id = $1
		ORDER BY membership_display_name ASC
	`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to get memberships: %w", err)
	}
	return memberships, nil
}

// UpsertMembership enforces the one-membership-per-(user, club) invariant at
// the primary key; re-inserting refreshes the snapshots and role.
func (d *Database) UpsertMembership(ctx context.Context, membership store.Membership) error {
	query := `
		INSERT INTO memberships (membership_user_id, membership_club_id, membership_display_name, membership_email, membership_phone, membership_admin)
		VALUES (:membership_user_id, :membership_club_id, :membership_display_name, :membership_email, :membership_phone, :membership_admin)
		ON CONFLICT (membership_user_id, membership_club_id) DO UPDATE SET
			membership_display_name = EXCLUDED.membership_display_name,
			membership_email = EXCLUDED.membership_email,
			membership_phone = EXCLUDED.membership_phone,
			membership_admin = EXCLUDED.membership_admin
	`

	if _, err := d.db.NamedExecContext(ctx, query, membership); err != nil {
		return fmt.Errorf("failed to upsert membership: %w", err)
	}
	return nil
}

func (d *Database) DeleteMembership(ctx context.Context, clubID string, userID string) error {
	_, err := d.db.ExecContext(ctx, `
		DELETE FROM memberships
		WHERE membership_club_id = $1 AND membership_user_id = $2
	`, clubID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return nil
}
