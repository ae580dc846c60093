package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/stridelog/stridelog/server/store"
)

type MembersVars struct {
	Club    store.Club
	Admin   bool
	Members []Member
}

func (h *handler) Members(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cc, ok := h.activeClub(w, r)
	if !ok {
		return
	}

	members, err := h.DB.GetMemberships(ctx, cc.Club.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get members", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	vars := MembersVars{
		Club:  cc.Club,
		Admin: cc.Membership.Admin,
	}
	for _, member := range members {
		vars.Members = append(vars.Members, newMember(member))
	}

	if err = h.Templates().ExecuteTemplate(w, "members.gohtml", vars); err != nil {
		slog.ErrorContext(ctx, "Failed to render members template", slog.Any("err", err))
	}
}

type MemberVars struct {
	Club       store.Club
	Member     Member
	Self       bool
	Admin      bool
	TotalMiles float64
	Runs       []Run
}

func (h *handler) Member(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cc, ok := h.activeClub(w, r)
	if !ok {
		return
	}

	membership, err := h.DB.GetMembership(ctx, cc.Club.ID, r.PathValue("user_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		slog.ErrorContext(ctx, "failed to get membership", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	runs, err := h.DB.GetMemberRuns(ctx, cc.Club.ID, membership.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get runs", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var totalMiles float64
	vars := MemberVars{
		Club:   cc.Club,
		Member: newMember(*membership),
		Self:   membership.UserID == cc.Session.User.ID,
		Admin:  cc.Membership.Admin,
	}
	for _, run := range runs {
		totalMiles += run.Miles
		vars.Runs = append(vars.Runs, newRun(run, nil))
	}
	vars.TotalMiles = store.Round1(totalMiles)

	if err = h.Templates().ExecuteTemplate(w, "member.gohtml", vars); err != nil {
		slog.ErrorContext(ctx, "Failed to render member template", slog.Any("err", err))
	}
}

// RemoveMember drops another member from the club. Admins cannot remove
// themselves this way; that path is LeaveClub so a club never silently loses
// its last admin.
func (h *handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cc, ok := h.requireClubAdmin(w, r)
	if !ok {
		return
	}

	userID := r.PathValue("user_id")
	if userID == cc.Session.User.ID {
		http.Error(w, "You cannot remove yourself, leave the club instead", http.StatusBadRequest)
		return
	}

	if err := h.DB.DeleteMembership(ctx, cc.Club.ID, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to remove member", slog.Any("err", err))
		http.Error(w, "Failed to remove member", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/members", http.StatusFound)
}

func (h *handler) LeaveClub(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cc, ok := h.activeClub(w, r)
	if !ok {
		return
	}

	if err := h.DB.DeleteMembership(ctx, cc.Club.ID, cc.Session.User.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to leave club", slog.Any("err", err))
		http.Error(w, "Failed to leave club", http.StatusInternalServerError)
		return
	}

	if err := h.DB.SetActiveClub(ctx, cc.Session.User.ID, ""); err != nil {
		slog.ErrorContext(ctx, "failed to clear active club", slog.Any("err", err))
	}

	http.Redirect(w, r, "/clubs", http.StatusFound)
}
