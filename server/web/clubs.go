package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/stridelog/stridelog/server/auth"
	"github.com/stridelog/stridelog/server/store"
)

type ClubsVars struct {
	User    store.User
	Clubs   []Club
	Premium bool
	Error   string
}

func (h *handler) Clubs(w http.ResponseWriter, r *http.Request) {
	h.renderClubs(w, r, "")
}

func (h *handler) renderClubs(w http.ResponseWriter, r *http.Request, errorMessage string) {
	ctx := r.Context()
	session := auth.GetSession(r)

	clubs, err := h.DB.GetUserClubs(ctx, session.User.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get clubs", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	vars := ClubsVars{
		User:    session.User,
		Premium: session.User.Premium,
		Error:   errorMessage,
	}
	for _, club := range clubs {
		vars.Clubs = append(vars.Clubs, newClub(club, club.ID == session.User.ActiveClubID))
	}

	if err = h.Templates().ExecuteTemplate(w, "clubs.gohtml", vars); err != nil {
		slog.ErrorContext(ctx, "Failed to render clubs template", slog.Any("err", err))
	}
}

func (h *handler) SwitchClub(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := auth.GetSession(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	clubID := r.FormValue("club_id")

	if _, err := h.DB.GetMembership(ctx, clubID, session.User.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "You are not a member of that club", http.StatusForbidden)
			return
		}
		slog.ErrorContext(ctx, "failed to get membership", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := h.DB.SetActiveClub(ctx, session.User.ID, clubID); err != nil {
		slog.ErrorContext(ctx, "failed to set active club", slog.Any("err", err))
		http.Error(w, "Failed to switch club", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// CreateClub is gated on an active premium subscription.
func (h *handler) CreateClub(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := auth.GetSession(r)

	if !session.User.Premium {
		h.renderClubs(w, r, "Creating a club requires a premium subscription")
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		h.renderClubs(w, r, "Club name is required")
		return
	}

	club := store.Club{
		ID:        newID(),
		Name:      name,
		CreatorID: session.User.ID,
	}
	creator := store.Membership{
		UserID:      session.User.ID,
		ClubID:      club.ID,
		DisplayName: session.User.DisplayName,
		Email:       session.User.Email,
		Phone:       session.User.Phone,
		Admin:       true,
	}

	if err := h.DB.CreateClub(ctx, club, creator); err != nil {
		slog.ErrorContext(ctx, "failed to create club", slog.Any("err", err))
		http.Error(w, "Failed to create club", http.StatusInternalServerError)
		return
	}

	if err := h.DB.SetActiveClub(ctx, session.User.ID, club.ID); err != nil {
		slog.ErrorContext(ctx, "failed to set active club", slog.Any("err", err))
	}

	h.SendNotification(ctx, "New club created: "+club.Name)

	http.Redirect(w, r, "/", http.StatusFound)
}

// DeleteClub removes the club with everything in it. Shoe mileage logged
// through the club's runs is backed out before the cascade.
func (h *handler) DeleteClub(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := auth.GetSession(r)

	clubID := r.PathValue("club_id")
	membership, err := h.DB.GetMembership(ctx, clubID, session.User.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		slog.ErrorContext(ctx, "failed to get membership", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !membership.Admin {
		http.Error(w, "You must be a club admin to delete a club", http.StatusForbidden)
		return
	}

	if err = h.DB.DeleteClub(ctx, clubID); err != nil {
		slog.ErrorContext(ctx, "failed to delete club", slog.Any("err", err))
		http.Error(w, "Failed to delete club", http.StatusInternalServerError)
		return
	}

	if session.User.ActiveClubID == clubID {
		if err = h.DB.SetActiveClub(ctx, session.User.ID, ""); err != nil {
			slog.ErrorContext(ctx, "failed to clear active club", slog.Any("err", err))
		}
	}

	http.Redirect(w, r, "/clubs", http.StatusFound)
}
