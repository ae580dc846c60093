package localstore

import (
	"context"
	"slices"
	"time"

	"github.com/stridelog/stridelog/server/store"
)

func (s *Store) GetAnnouncement(_ context.Context, announcementID string) (*store.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range read[[]store.Announcement](s, nsAnnouncements) {
		if a.ID == announcementID {
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetAnnouncements(_ context.Context, clubID string) ([]store.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var announcements []store.Announcement
	for _, a := range read[[]store.Announcement](s, nsAnnouncements) {
		if a.ClubID == clubID {
			announcements = append(announcements, a)
		}
	}
	slices.SortFunc(announcements, func(a, b store.Announcement) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return store.FilterAnnouncements(announcements), nil
}

func (s *Store) AddAnnouncement(_ context.Context, announcement store.Announcement) (*store.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	announcement, err := store.ValidateAnnouncement(announcement)
	if err != nil {
		return nil, err
	}

	announcement.ID = newID()
	announcement.CreatedAt = time.Now()
	announcement.UpdatedAt = announcement.CreatedAt

	write(s, nsAnnouncements, append(read[[]store.Announcement](s, nsAnnouncements), announcement))
	return &announcement, nil
}

func (s *Store) UpdateAnnouncement(_ context.Context, announcementID string, title string, body string, audience string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	announcements := read[[]store.Announcement](s, nsAnnouncements)
	idx := slices.IndexFunc(announcements, func(a store.Announcement) bool {
		return a.ID == announcementID
	})
	if idx < 0 {
		return store.ErrNotFound
	}

	updated := announcements[idx]
	updated.Title = title
	updated.Body = body
	updated.Audience = audience
	updated, err := store.ValidateAnnouncement(updated)
	if err != nil {
		return err
	}
	updated.UpdatedAt = time.Now()

	announcements[idx] = updated
	write(s, nsAnnouncements, announcements)
	return nil
}

func (s *Store) DeleteAnnouncement(_ context.Context, announcementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	write(s, nsAnnouncements, slices.DeleteFunc(read[[]store.Announcement](s, nsAnnouncements), func(a store.Announcement) bool {
		return a.ID == announcementID
	}))
	return nil
}
