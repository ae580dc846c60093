package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/stridelog/stridelog/server/auth"
	"github.com/stridelog/stridelog/server/leaderboard"
	"github.com/stridelog/stridelog/server/store"
)

// The JSON API mirrors the pages for scripted use. It rides on the same
// session cookie as the browser.

func (h *handler) APIRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cc, ok := h.activeClub(w, r)
	if !ok {
		return
	}

	runs, err := h.DB.GetMemberRuns(ctx, cc.Club.ID, cc.Session.User.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get runs", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}

	writeJSON(ctx, w, runs)
}

func (h *handler) APILeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	cc, ok := h.activeClub(w, r)
	if !ok {
		return
	}

	scope := leaderboard.ParseScope(query.Get("scope"))
	entries, _, err := h.computeLeaderboard(r, cc, scope, query.Get("shoe"))
	if err != nil {
		slog.ErrorContext(ctx, "failed to compute leaderboard", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, w, entries)
}

func (h *handler) APIClubs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := auth.GetSession(r)

	clubs, err := h.DB.GetUserClubs(ctx, session.User.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get clubs", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if clubs == nil {
		clubs = []store.ClubWithRole{}
	}

	writeJSON(ctx, w, clubs)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "failed to encode JSON response", slog.Any("err", err))
	}
}
