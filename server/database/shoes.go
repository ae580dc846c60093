package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/stridelog/stridelog/server/store"
)

func (d *Database) GetShoe(ctx context.Context, shoeID string) (*store.Shoe, error) {
	var shoe store.Shoe
	if err := d.db.GetContext(ctx, &shoe, "SELECT * FROM shoes WHERE shoe_id = $1", shoeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get shoe: %w", err)
	}
	return &shoe, nil
}

func (d *Database) GetShoes(ctx context.Context, userID string) ([]store.Shoe, error) {
	var shoes []store.Shoe
	err := d.db.SelectContext(ctx, &shoes, `
		SELECT * FROM shoes
		WHERE shoe_user_id = $1
		ORDER BY shoe_name ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shoes: %w", err)
	}
	return shoes, nil
}

func (d *Database) AddShoe(ctx context.Context, shoe store.Shoe) (*store.Shoe, error) {
	shoe, err := store.ValidateShoe(shoe)
	if err != nil {
		return nil, err
	}
	shoe.ID = uuid.NewString()

	if err = d.db.GetContext(ctx, &shoe, `
		INSERT INTO shoes (shoe_id, shoe_user_id, shoe_name, shoe_miles_limit)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, shoe.ID, shoe.UserID, shoe.Name, shoe.MilesLimit); err != nil {
		return nil, fmt.Errorf("failed to insert shoe: %w", err)
	}
	return &shoe, nil
}

func (d *Database) UpdateShoe(ctx context.Context, shoeID string, name string, milesLimit float64) error {
	shoe, err := store.ValidateShoe(store.Shoe{Name: name, MilesLimit: milesLimit})
	if err != nil {
		return err
	}

	res, err := d.db.ExecContext(ctx, `
		UPDATE shoes
		SET shoe_name = $2, shoe_miles_limit = $3, shoe_updated_at = NOW()
		WHERE shoe_id = $1
	`, shoeID, shoe.Name, shoe.MilesLimit)
	if err != nil {
		return fmt.Errorf("failed to update shoe: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SetShoeActive toggles retirement. It never touches mileage.
func (d *Database) SetShoeActive(ctx context.Context, shoeID string, active bool) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE shoes
		SET shoe_active = $2, shoe_updated_at = NOW()
		WHERE shoe_id = $1
	`, shoeID, active)
	if err != nil {
		return fmt.Errorf("failed to set shoe active: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *Database) AddMilesToShoe(ctx context.Context, shoeID string, delta float64) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE shoes
		SET shoe_miles = GREATEST(ROUND((shoe_miles + $2)::numeric, 1), 0),
			shoe_updated_at = NOW()
		WHERE shoe_id = $1
	`, shoeID, delta)
	if err != nil {
		return fmt.Errorf("failed to add miles to shoe: %w", err)
	}
	return nil
}
