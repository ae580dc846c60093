package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/stridelog/stridelog/internal/xtime"
	"github.com/stridelog/stridelog/server/store"
)

type IndexVars struct {
	User          store.User
	Club          store.Club
	Admin         bool
	MonthMiles    float64
	MonthRuns     int
	RecentRuns    []Run
	Announcements []Announcement
}

func (h *handler) Index(w http.ResponseWriter, r *http.Request) {
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

	shoes, err := h.DB.GetShoes(ctx, cc.Session.User.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get shoes", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	announcements, err := h.DB.GetAnnouncements(ctx, cc.Club.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get announcements", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	month := xtime.MonthKey(time.Now())
	var monthMiles float64
	var monthRuns int
	for _, run := range runs {
		if store.MonthOf(run.Date) != month {
			continue
		}
		monthMiles += run.Miles
		monthRuns++
	}

	recent := make([]Run, 0, 5)
	for _, run := range runs {
		if len(recent) == 5 {
			break
		}
		recent = append(recent, newRun(run, shoes))
	}

	vars := IndexVars{
		User:       cc.Session.User,
		Club:       cc.Club,
		Admin:      cc.Membership.Admin,
		MonthMiles: store.Round1(monthMiles),
		MonthRuns:  monthRuns,
		RecentRuns: recent,
	}
	for _, announcement := range visibleAnnouncements(announcements, cc.Membership.Admin) {
		vars.Announcements = append(vars.Announcements, newAnnouncement(announcement))
	}

	if err = h.Templates().ExecuteTemplate(w, "index.gohtml", vars); err != nil {
		slog.ErrorContext(ctx, "Failed to render index template", slog.Any("err", err))
	}
}

// visibleAnnouncements applies the audience filter on top of the malformed
// record filter.
func visibleAnnouncements(announcements []store.Announcement, admin bool) []store.Announcement {
	announcements = store.FilterAnnouncements(announcements)
	if admin {
		return announcements
	}

	visible := make([]store.Announcement, 0, len(announcements))
	for _, a := range announcements {
		if a.Audience == store.AudienceAdmins {
			continue
		}
		visible = append(visible, a)
	}
	return visible
}
