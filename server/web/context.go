package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/stridelog/stridelog/server/auth"
	"github.com/stridelog/stridelog/server/store"
)

// clubContext bundles the signed-in user with their active club and
// membership. Every club-scoped page resolves one before doing anything else.
type clubContext struct {
	Session    store.SessionWithUser
	Club       store.Club
	Membership store.Membership
}

// activeClub resolves the requester's active club and membership. Users
// without an active club, or whose membership in it has been revoked, are
// sent to the club picker.
func (h *handler) activeClub(w http.ResponseWriter, r *http.Request) (*clubContext, bool) {
	ctx := r.Context()
	session := auth.GetSession(r)

	if session.ActiveClubID == "" {
		http.Redirect(w, r, "/clubs", http.StatusFound)
		return nil, false
	}

	club, err := h.DB.GetClub(ctx, session.ActiveClubID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Redirect(w, r, "/clubs", http.StatusFound)
			return nil, false
		}
		slog.ErrorContext(ctx, "failed to get active club", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}

	membership, err := h.DB.GetMembership(ctx, club.ID, session.User.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Redirect(w, r, "/clubs", http.StatusFound)
			return nil, false
		}
		slog.ErrorContext(ctx, "failed to get membership", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}

	return &clubContext{
		Session:    session,
		Club:       *club,
		Membership: *membership,
	}, true
}

// requireClubAdmin is activeClub plus a club admin check.
func (h *handler) requireClubAdmin(w http.ResponseWriter, r *http.Request) (*clubContext, bool) {
	cc, ok := h.activeClub(w, r)
	if !ok {
		return nil, false
	}

	if !cc.Membership.Admin {
		http.Error(w, "You must be a club admin to do that", http.StatusForbidden)
		return nil, false
	}

	return cc, true
}

// ownRun loads a run and verifies the requester may modify it: the owner
// always can, a club admin can for runs in their club.
func (h *handler) ownRun(w http.ResponseWriter, r *http.Request, cc *clubContext, runID string) (*store.Run, bool) {
	ctx := r.Context()

	run, err := h.DB.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.NotFound(w, r)
			return nil, false
		}
		slog.ErrorContext(ctx, "failed to get run", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}

	if run.UserID != cc.Session.User.ID && !(cc.Membership.Admin && run.ClubID == cc.Club.ID) {
		http.Error(w, "You may only modify your own runs", http.StatusForbidden)
		return nil, false
	}

	return run, true
}
