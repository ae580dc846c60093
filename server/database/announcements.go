package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/stridelog/stridelog/server/store"
)

func (d *Database) GetAnnouncement(ctx context.Context, announcementID string) (*store.Announcement, error) {
	var announcement store.Announcement
	if err := d.db.GetContext(ctx, &announcement, "SELECT * FROM announcements WHERE announcement_id = $1", announcementID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	return &announcement, nil
}

// GetAnnouncements lists a club's announcements newest first, defensively
// excluding rows with an empty trimmed title or body.
func (d *Database) GetAnnouncements(ctx context.Context, clubID string) ([]store.Announcement, error) {
	var announcements []store.Announcement
	err := d.db.SelectContext(ctx, &announcements, `
		SELECT * FROM announcements
		WHERE announcement_club_id = $1
		ORDER BY announcement_created_at DESC
	`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to get announcements: %w", err)
	}
	return store.FilterAnnouncements(announcements), nil
}

func (d *Database) AddAnnouncement(ctx context.Context, announcement store.Announcement) (*store.Announcement, error) {
	announcement, err := store.ValidateAnnouncement(announcement)
	if err != nil {
		return nil, err
	}
	announcement.ID = uuid.NewString()

	if err = d.db.GetContext(ctx, &announcement, `
		INSERT INTO announcements (announcement_id, announcement_club_id, announcement_title, announcement_body, announcement_audience)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, announcement.ID, announcement.ClubID, announcement.Title, announcement.Body, announcement.Audience); err != nil {
		return nil, fmt.Errorf("failed to insert announcement: %w", err)
	}
	return &announcement, nil
}

func (d *Database) UpdateAnnouncement(ctx context.Context, announcementID string, title string, body string, audience string) error {
	announcement, err := store.ValidateAnnouncement(store.Announcement{ClubID: "-", Title: title, Body: body, Audience: audience})
	if err != nil {
		return err
	}

	res, err := d.db.ExecContext(ctx, `
		UPDATE announcements
		SET announcement_title = $2, announcement_body = $3, announcement_audience = $4, announcement_updated_at = NOW()
		WHERE announcement_id = $1
	`, announcementID, announcement.Title, announcement.Body, announcement.Audience)
	if err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *Database) DeleteAnnouncement(ctx context.Context, announcementID string) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM announcements WHERE announcement_id = $1", announcementID); err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	return nil
}
