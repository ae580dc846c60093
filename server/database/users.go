package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stridelog/stridelog/server/store"
)

func (d *Database) GetUser(ctx context.Context, userID string) (*store.User, error) {
	var user store.User
	if err := d.db.GetContext(ctx, &user, "SELECT * FROM users WHERE user_id = $1", userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (d *Database) GetUserByCustomerID(ctx context.Context, customerID string) (*store.User, error) {
	var user store.User
	if err := d.db.GetContext(ctx, &user, "SELECT * FROM users WHERE user_customer_id = $1", customerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by customer id: %w", err)
	}
	return &user, nil
}

func (d *Database) UpsertUser(ctx context.Context, user store.User) (*store.User, error) {
	query := `
		INSERT INTO users (user_id, user_email, user_display_name, user_avatar_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			user_email = EXCLUDED.user_email,
			user_display_name = EXCLUDED.user_display_name,
			user_avatar_url = EXCLUDED.user_avatar_url
		RETURNING *
	`

	var upserted store.User
	if err := d.db.GetContext(ctx, &upserted, query, user.ID, user.Email, user.DisplayName, user.AvatarURL); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &upserted, nil
}

// UpdateProfile mutates the profile and refreshes the denormalized snapshots
// on every membership of the user in the same transaction.
func (d *Database) UpdateProfile(ctx context.Context, userID string, update store.ProfileUpdate) error {
	return d.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE users
			SET user_display_name = $2, user_email = $3, user_phone = $4, user_role = $5
			WHERE user_id = $1
		`, userID, update.DisplayName, update.Email, update.Phone, update.Role)
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return store.ErrNotFound
		}

		if _, err = tx.ExecContext(ctx, `
			UPDATE memberships
			SET membership_display_name = $2, membership_email = $3, membership_phone = $4
			WHERE membership_user_id = $1
		`, userID, update.DisplayName, update.Email, update.Phone); err != nil {
			return fmt.Errorf("failed to update membership snapshots: %w", err)
		}

		return nil
	})
}

func (d *Database) SetActiveClub(ctx context.Context, userID string, clubID string) error {
	if _, err := d.db.ExecContext(ctx, "UPDATE users SET user_active_club_id = $2 WHERE user_id = $1", userID, clubID); err != nil {
		return fmt.Errorf("failed to set active club: %w", err)
	}
	return nil
}

func (d *Database) ActivatePremium(ctx context.Context, userID string, customerID string, subscriptionID string, since time.Time) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE users
		SET user_premium = TRUE,
			user_customer_id = $2,
			user_subscription_id = $3,
			user_premium_since = $4
		WHERE user_id = $1
	`, userID, customerID, subscriptionID, since)
	if err != nil {
		return fmt.Errorf("failed to activate premium: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *Database) SetPremiumByCustomerID(ctx context.Context, customerID string, premium bool) error {
	res, err := d.db.ExecContext(ctx, "UPDATE users SET user_premium = $2 WHERE user_customer_id = $1", customerID, premium)
	if err != nil {
		return fmt.Errorf("failed to set premium by customer id: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}
