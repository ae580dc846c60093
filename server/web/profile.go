package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/stridelog/stridelog/server/auth"
	"github.com/stridelog/stridelog/server/store"
)

type ProfileVars struct {
	User  store.User
	Error string
}

func (h *handler) Profile(w http.ResponseWriter, r *http.Request) {
	h.renderProfile(w, r, "")
}

func (h *handler) renderProfile(w http.ResponseWriter, r *http.Request, errorMessage string) {
	ctx := r.Context()
	session := auth.GetSession(r)

	if err := h.Templates().ExecuteTemplate(w, "profile.gohtml", ProfileVars{
		User:  session.User,
		Error: errorMessage,
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to render profile template", slog.Any("err", err))
	}
}

// UpdateProfile saves the editable profile fields and propagates the contact
// snapshots into every membership directory entry.
func (h *handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := auth.GetSession(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	displayName := strings.TrimSpace(r.FormValue("display_name"))
	if displayName == "" {
		h.renderProfile(w, r, "Display name is required")
		return
	}

	update := store.ProfileUpdate{
		DisplayName: displayName,
		Email:       strings.TrimSpace(r.FormValue("email")),
		Phone:       strings.TrimSpace(r.FormValue("phone")),
		Role:        session.User.Role,
	}

	if err := h.DB.UpdateProfile(ctx, session.User.ID, update); err != nil {
		slog.ErrorContext(ctx, "failed to update profile", slog.Any("err", err))
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/profile", http.StatusFound)
}
