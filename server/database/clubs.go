package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/stridelog/stridelog/server/store"
)

func (d *Database) GetClub(ctx context.Context, clubID string) (*store.Club, error) {
	var club store.Club
	if err := d.db.GetContext(ctx, &club, "SELECT * FROM clubs WHERE club_id = $1", clubID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get club: %w", err)
	}
	return &club, nil
}

func (d *Database) GetUserClubs(ctx context.Context, userID string) ([]store.ClubWithRole, error) {
	query := `
		SELECT clubs.*, memberships.membership_admin
		FROM clubs
		JOIN memberships ON clubs.club_id = memberships.membership_club_id
		WHERE memberships.membership_user_id = $1
		ORDER BY clubs.club_name ASC
	`

	var clubs []store.ClubWithRole
	if err := d.db.SelectContext(ctx, &clubs, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user clubs: %w", err)
	}
	return clubs, nil
}

// CreateClub inserts the club and its creator's admin membership in one
// transaction.
func (d *Database) CreateClub(ctx context.Context, club store.Club, creator store.Membership) error {
	return d.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO clubs (club_id, club_name, club_creator_id)
			VALUES ($1, $2, $3)
		`, club.ID, club.Name, club.CreatorID); err != nil {
			return fmt.Errorf("failed to create club: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO memberships (membership_user_id, membership_club_id, membership_display_name, membership_email, membership_phone, membership_admin)
			VALUES ($1, $2, $3, $4, $5, TRUE)
		`, creator.UserID, club.ID, creator.DisplayName, creator.Email, creator.Phone); err != nil {
			return fmt.Errorf("failed to create creator membership: %w", err)
		}

		return nil
	})
}

// DeleteClub removes the club; memberships, runs, announcements, invites and
// resets follow via foreign-key cascade. Shoe mileage contributed by the
// club's runs is handed back first so the ledger invariant survives.
func (d *Database) DeleteClub(ctx context.Context, clubID string) error {
	return d.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE shoes
			SET shoe_miles = GREATEST(ROUND((shoe_miles - contributed.miles)::numeric, 1), 0),
				shoe_updated_at = NOW()
			FROM (
				SELECT run_shoe_id AS shoe_id, SUM(run_miles) AS miles
				FROM runs
				WHERE run_club_id = $1 AND run_shoe_id <> ''
				GROUP BY run_shoe_id
			) AS contributed
			WHERE shoes.shoe_id = contributed.shoe_id
		`, clubID); err != nil {
			return fmt.Errorf("failed to reconcile shoe mileage: %w", err)
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM clubs WHERE club_id = $1", clubID)
		if err != nil {
			return fmt.Errorf("failed to delete club: %w", err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return store.ErrNotFound
		}

		return nil
	})
}
