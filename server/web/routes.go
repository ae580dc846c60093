package web

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/stridelog/stridelog/internal/middlewares"
	"github.com/stridelog/stridelog/server"
)

type handler struct {
	*server.Server

	joinLimiter *rate.Limiter
}

func Routes(srv *server.Server) http.Handler {
	h := &handler{
		Server:      srv,
		joinLimiter: rate.NewLimiter(rate.Limit(1), 10),
	}

	fileServer := http.FileServer(h.StaticFS)
	var fs http.Handler
	if srv.Cfg.Dev {
		fs = fileServer
	} else {
		fs = middlewares.Cache(fileServer)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Index)

	mux.HandleFunc("GET /login", h.Login)
	mux.HandleFunc("GET /login/callback", h.LoginCallback)
	mux.HandleFunc("POST /logout", h.Logout)

	mux.HandleFunc("GET  /runs", h.Runs)
	mux.HandleFunc("POST /runs", h.AddRun)
	mux.HandleFunc("GET  /runs/{run_id}", h.Run)
	mux.HandleFunc("POST /runs/{run_id}", h.UpdateRun)
	mux.HandleFunc("POST /runs/{run_id}/delete", h.DeleteRun)

	mux.HandleFunc("GET  /shoes", h.Shoes)
	mux.HandleFunc("POST /shoes", h.AddShoe)
	mux.HandleFunc("POST /shoes/{shoe_id}", h.UpdateShoe)
	mux.HandleFunc("POST /shoes/{shoe_id}/active", h.SetShoeActive)

	mux.HandleFunc("GET  /leaderboard", h.Leaderboard)
	mux.HandleFunc("POST /leaderboard/reset", h.ResetLeaderboard)

	mux.HandleFunc("GET  /announcements", h.Announcements)
	mux.HandleFunc("POST /announcements", h.AddAnnouncement)
	mux.HandleFunc("POST /announcements/{announcement_id}", h.UpdateAnnouncement)
	mux.HandleFunc("POST /announcements/{announcement_id}/delete", h.DeleteAnnouncement)

	mux.HandleFunc("GET  /members", h.Members)
	mux.HandleFunc("GET  /members/{user_id}", h.Member)
	mux.HandleFunc("POST /members/{user_id}/remove", h.RemoveMember)
	mux.HandleFunc("POST /members/leave", h.LeaveClub)

	mux.HandleFunc("GET  /clubs", h.Clubs)
	mux.HandleFunc("POST /clubs", h.CreateClub)
	mux.HandleFunc("POST /clubs/switch", h.SwitchClub)
	mux.HandleFunc("POST /clubs/{club_id}/delete", h.DeleteClub)

	mux.HandleFunc("GET  /invites", h.Invites)
	mux.HandleFunc("POST /invites", h.CreateInvite)
	mux.Handle("GET  /invites/{token}/qr", middlewares.Cache(http.HandlerFunc(h.InviteQR)))

	mux.HandleFunc("GET  /join", h.Join)
	mux.Handle("POST /join", h.limitJoin(http.HandlerFunc(h.DoJoin)))

	mux.HandleFunc("GET  /profile", h.Profile)
	mux.HandleFunc("POST /profile", h.UpdateProfile)

	mux.HandleFunc("GET  /export", h.Export)
	mux.HandleFunc("POST /export", h.DoExport)

	mux.HandleFunc("GET  /billing", h.Billing)
	mux.HandleFunc("POST /billing/checkout", h.BillingCheckout)
	mux.HandleFunc("GET  /billing/success", h.BillingSuccess)
	mux.HandleFunc("POST /billing/webhook", h.BillingWebhook)

	mux.HandleFunc("GET  /api/runs", h.APIRuns)
	mux.HandleFunc("GET  /api/leaderboard", h.APILeaderboard)
	mux.HandleFunc("GET  /api/clubs", h.APIClubs)

	mux.Handle("GET  /static/", fs)
	mux.Handle("HEAD /static/", fs)

	if srv.Cfg.Dev {
		mux.HandleFunc("GET /dev/reload", h.DevReload)
	}

	mux.HandleFunc("/", h.NotFound)

	return h.auth(mux)
}

func (h *handler) NotFound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	w.WriteHeader(http.StatusNotFound)
	if err := h.Templates().ExecuteTemplate(w, "not_found.gohtml", nil); err != nil {
		slog.ErrorContext(ctx, "Failed to render not found template", slog.Any("err", err))
		return
	}
}

func (h *handler) limitJoin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.joinLimiter.Allow() {
			http.Error(w, "Too many join attempts, try again shortly", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
