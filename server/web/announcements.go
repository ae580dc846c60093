package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/stridelog/stridelog/server/store"
)

type AnnouncementsVars struct {
	Club          store.Club
	Admin         bool
	Announcements []Announcement
	Error         string
}

func (h *handler) Announcements(w http.ResponseWriter, r *http.Request) {
	h.renderAnnouncements(w, r, "")
}

func (h *handler) renderAnnouncements(w http.ResponseWriter, r *http.Request, errorMessage string) {
	ctx := r.Context()

	cc, ok := h.activeClub(w, r)
	if !ok {
		return
	}

	announcements, err := h.DB.GetAnnouncements(ctx, cc.Club.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get announcements", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	vars := AnnouncementsVars{
		Club:  cc.Club,
		Admin: cc.Membership.Admin,
		Error: errorMessage,
	}
	for _, announcement := range visibleAnnouncements(announcements, cc.Membership.Admin) {
		vars.Announcements = append(vars.Announcements, newAnnouncement(announcement))
	}

	if err = h.Templates().ExecuteTemplate(w, "announcements.gohtml", vars); err != nil {
		slog.ErrorContext(ctx, "Failed to render announcements template", slog.Any("err", err))
	}
}

func (h *handler) AddAnnouncement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cc, ok := h.requireClubAdmin(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	audience := r.FormValue("audience")
	if audience != store.AudienceAdmins {
		audience = store.AudienceAll
	}

	announcement := store.Announcement{
		ID:       newID(),
		ClubID:   cc.Club.ID,
		Title:    r.FormValue("title"),
		Body:     r.FormValue("body"),
		Audience: audience,
	}

	created, err := h.DB.AddAnnouncement(ctx, announcement)
	if err != nil {
		if store.IsValidation(err) {
			h.renderAnnouncements(w, r, err.Error())
			return
		}
		slog.ErrorContext(ctx, "failed to add announcement", slog.Any("err", err))
		http.Error(w, "Failed to add announcement", http.StatusInternalServerError)
		return
	}

	if created.Audience == store.AudienceAll {
		h.SendNotification(ctx, fmt.Sprintf("New announcement in %s: %s", cc.Club.Name, created.Title))
	}

	http.Redirect(w, r, "/announcements", http.StatusFound)
}

func (h *handler) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cc, ok := h.requireClubAdmin(w, r)
	if !ok {
		return
	}

	announcement, ok := h.clubAnnouncement(w, r, cc)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	updated := *announcement
	updated.Title = r.FormValue("title")
	updated.Body = r.FormValue("body")
	updated.Audience = r.FormValue("audience")
	if updated.Audience != store.AudienceAdmins {
		updated.Audience = store.AudienceAll
	}

	validated, err := store.ValidateAnnouncement(updated)
	if err != nil {
		h.renderAnnouncements(w, r, err.Error())
		return
	}

	if err = h.DB.UpdateAnnouncement(ctx, announcement.ID, validated.Title, validated.Body, validated.Audience); err != nil {
		slog.ErrorContext(ctx, "failed to update announcement", slog.Any("err", err))
		http.Error(w, "Failed to update announcement", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/announcements", http.StatusFound)
}

func (h *handler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cc, ok := h.requireClubAdmin(w, r)
	if !ok {
		return
	}

	announcement, ok := h.clubAnnouncement(w, r, cc)
	if !ok {
		return
	}

	if err := h.DB.DeleteAnnouncement(ctx, announcement.ID); err != nil {
		slog.ErrorContext(ctx, "failed to delete announcement", slog.Any("err", err))
		http.Error(w, "Failed to delete announcement", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/announcements", http.StatusFound)
}

func (h *handler) clubAnnouncement(w http.ResponseWriter, r *http.Request, cc *clubContext) (*store.Announcement, bool) {
	ctx := r.Context()

	announcement, err := h.DB.GetAnnouncement(ctx, r.PathValue("announcement_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.NotFound(w, r)
			return nil, false
		}
		slog.ErrorContext(ctx, "failed to get announcement", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}

	if announcement.ClubID != cc.Club.ID {
		h.NotFound(w, r)
		return nil, false
	}

	return announcement, true
}
