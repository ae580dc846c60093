package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/stridelog/stridelog/server/store"
)

func (d *Database) GetRun(ctx context.Context, runID string) (*store.Run, error) {
	var run store.Run
	if err := d.db.GetContext(ctx, &run, "SELECT * FROM runs WHERE run_id = $1", runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

func (d *Database) GetClubRuns(ctx context.Context, clubID string) ([]store.Run, error) {
	var runs []store.Run
	err := d.db.SelectContext(ctx, &runs, `
		SELECT * FROM runs
		WHERE run_club_id = $1
		ORDER BY run_date DESC, run_created_at DESC
	`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to get club runs: %w", err)
	}
	return runs, nil
}

func (d *Database) GetMemberRuns(ctx context.Context, clubID string, userID string) ([]store.Run, error) {
	var runs []store.Run
	err := d.db.SelectContext(ctx, &runs, `
		SELECT * FROM runs
		WHERE run_club_id = $1 AND run_user_id = $2
		ORDER BY run_date DESC, run_created_at DESC
	`, clubID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member runs: %w", err)
	}
	return runs, nil
}

func (d *Database) GetRunsForMembers(ctx context.Context, clubID string, userIDs []string) ([]store.Run, error) {
	var runs []store.Run
	err := d.db.SelectContext(ctx, &runs, `
		SELECT * FROM runs
		WHERE run_club_id = $1 AND run_user_id = ANY($2)
		ORDER BY run_date DESC, run_created_at DESC
	`, clubID, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get runs for members: %w", err)
	}
	return runs, nil
}

func (d *Database) AddRun(ctx context.Context, run store.Run) (*store.Run, error) {
	run, err := store.ValidateRun(run)
	if err != nil {
		return nil, err
	}
	run.ID = uuid.NewString()

	err = d.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &run, `
			INSERT INTO runs (run_id, run_user_id, run_club_id, run_date, run_miles, run_type, run_race_name, run_notes, run_shoe_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING *
		`, run.ID, run.UserID, run.ClubID, run.Date, run.Miles, run.Type, run.RaceName, run.Notes, run.ShoeID); err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		return addShoeMiles(ctx, tx, run.ShoeID, run.Miles)
	})
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// UpdateRun re-validates the patched run and reconciles the shoe ledger in
// the same transaction: the previous contribution comes off its shoe, the
// new one goes onto its shoe, covering a changed shoe reference.
func (d *Database) UpdateRun(ctx context.Context, runID string, patch store.RunPatch) (*store.Run, error) {
	var updated store.Run
	err := d.inTx(ctx, func(tx *sqlx.Tx) error {
		var previous store.Run
		if err := tx.GetContext(ctx, &previous, "SELECT * FROM runs WHERE run_id = $1 FOR UPDATE", runID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrNotFound
			}
			return fmt.Errorf("failed to get run: %w", err)
		}

		var err error
		updated, err = store.ValidateRun(patch.Apply(previous))
		if err != nil {
			return err
		}

		if _, err = tx.ExecContext(ctx, `
			UPDATE runs
			SET run_date = $2, run_miles = $3, run_type = $4, run_race_name = $5, run_notes = $6, run_shoe_id = $7
			WHERE run_id = $1
		`, runID, updated.Date, updated.Miles, updated.Type, updated.RaceName, updated.Notes, updated.ShoeID); err != nil {
			return fmt.Errorf("failed to update run: %w", err)
		}

		if err = addShoeMiles(ctx, tx, previous.ShoeID, -previous.Miles); err != nil {
			return err
		}
		return addShoeMiles(ctx, tx, updated.ShoeID, updated.Miles)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteRun removes the run and hands its miles back to the referenced shoe.
// Deleting an absent run is a no-op.
func (d *Database) DeleteRun(ctx context.Context, runID string) error {
	return d.inTx(ctx, func(tx *sqlx.Tx) error {
		var run store.Run
		if err := tx.GetContext(ctx, &run, "SELECT * FROM runs WHERE run_id = $1 FOR UPDATE", runID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to get run: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE run_id = $1", runID); err != nil {
			return fmt.Errorf("failed to delete run: %w", err)
		}

		return addShoeMiles(ctx, tx, run.ShoeID, -run.Miles)
	})
}

// addShoeMiles applies a signed mileage delta inside tx. An empty reference
// or a missing shoe drops the delta silently; the ledger is advisory.
func addShoeMiles(ctx context.Context, tx *sqlx.Tx, shoeID string, delta float64) error {
	if shoeID == "" {
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE shoes
		SET shoe_miles = GREATEST(ROUND((shoe_miles + $2)::numeric, 1), 0),
			shoe_updated_at = NOW()
		WHERE shoe_id = $1
	`, shoeID, delta)
	if err != nil {
		return fmt.Errorf("failed to update shoe mileage: %w", err)
	}
	return nil
}
