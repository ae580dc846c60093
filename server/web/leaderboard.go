package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/stridelog/stridelog/internal/xtime"
	"github.com/stridelog/stridelog/server/leaderboard"
	"github.com/stridelog/stridelog/server/store"
)

type LeaderboardVars struct {
	Club    store.Club
	Admin   bool
	Scope   string
	ShoeID  string
	Shoes   []Shoe
	Entries []leaderboard.Entry
	Reset   *store.LeaderboardReset
}

func (h *handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	cc, ok := h.activeClub(w, r)
	if !ok {
		return
	}

	scope := leaderboard.ParseScope(query.Get("scope"))
	shoeID := query.Get("shoe")

	entries, reset, err := h.computeLeaderboard(r, cc, scope, shoeID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to compute leaderboard", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	shoes, err := h.DB.GetShoes(ctx, cc.Session.User.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get shoes", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	vars := LeaderboardVars{
		Club:    cc.Club,
		Admin:   cc.Membership.Admin,
		Scope:   string(scope),
		ShoeID:  shoeID,
		Entries: entries,
		Reset:   reset,
	}
	for _, shoe := range shoes {
		vars.Shoes = append(vars.Shoes, newShoe(shoe))
	}

	if err = h.Templates().ExecuteTemplate(w, "leaderboard.gohtml", vars); err != nil {
		slog.ErrorContext(ctx, "Failed to render leaderboard template", slog.Any("err", err))
	}
}

func (h *handler) computeLeaderboard(r *http.Request, cc *clubContext, scope leaderboard.Scope, shoeID string) ([]leaderboard.Entry, *store.LeaderboardReset, error) {
	ctx := r.Context()
	now := time.Now()

	members, err := h.DB.GetMemberships(ctx, cc.Club.ID)
	if err != nil {
		return nil, nil, err
	}

	runs, err := h.DB.GetClubRuns(ctx, cc.Club.ID)
	if err != nil {
		return nil, nil, err
	}

	var reset *store.LeaderboardReset
	if scope == leaderboard.ScopeThisMonth {
		reset, err = h.DB.GetLeaderboardReset(ctx, cc.Club.ID, xtime.MonthKey(now))
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, nil, err
		}
	}

	opts := leaderboard.Options{
		ClubID: cc.Club.ID,
		Scope:  scope,
		Now:    now,
		ShoeID: shoeID,
	}
	if reset != nil {
		opts.ResetCutoff = reset.Cutoff
	}

	return leaderboard.Compute(members, runs, opts), reset, nil
}

// ResetLeaderboard records a cutoff of today for the current month. Standings
// start over from zero without touching a single run.
func (h *handler) ResetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cc, ok := h.requireClubAdmin(w, r)
	if !ok {
		return
	}

	now := time.Now()
	if err := h.DB.SetLeaderboardReset(ctx, store.LeaderboardReset{
		ClubID: cc.Club.ID,
		Month:  xtime.MonthKey(now),
		Cutoff: now.Format(store.DateFormat),
		SetBy:  cc.Session.User.ID,
		SetAt:  now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to reset leaderboard", slog.Any("err", err))
		http.Error(w, "Failed to reset leaderboard", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/leaderboard", http.StatusFound)
}
