package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"

	"github.com/stridelog/stridelog/internal/xio"
	"github.com/stridelog/stridelog/internal/xrand"
	"github.com/stridelog/stridelog/server/auth"
	"github.com/stridelog/stridelog/server/store"
)

// DefaultInviteTTL is how long a freshly minted invite stays claimable.
const DefaultInviteTTL = 7 * 24 * time.Hour

type InvitesVars struct {
	Club    store.Club
	Invites []Invite
	Error   string
}

func (h *handler) Invites(w http.ResponseWriter, r *http.Request) {
	h.renderInvites(w, r, "")
}

func (h *handler) renderInvites(w http.ResponseWriter, r *http.Request, errorMessage string) {
	ctx := r.Context()

	cc, ok := h.requireClubAdmin(w, r)
	if !ok {
		return
	}

	invites, err := h.DB.GetClubInvites(ctx, cc.Club.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get invites", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	vars := InvitesVars{
		Club:  cc.Club,
		Error: errorMessage,
	}
	for _, invite := range invites {
		vars.Invites = append(vars.Invites, newInvite(invite, cc.Club))
	}

	if err = h.Templates().ExecuteTemplate(w, "invites.gohtml", vars); err != nil {
		slog.ErrorContext(ctx, "Failed to render invites template", slog.Any("err", err))
	}
}

func (h *handler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cc, ok := h.requireClubAdmin(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	invite := store.Invite{
		Token:     xrand.RandToken(32),
		ClubID:    cc.Club.ID,
		Email:     r.FormValue("email"),
		Admin:     r.FormValue("admin") == "true",
		CreatorID: cc.Session.User.ID,
		ExpiresAt: time.Now().Add(DefaultInviteTTL),
	}

	if err := h.DB.CreateInvite(ctx, invite); err != nil {
		slog.ErrorContext(ctx, "failed to create invite", slog.Any("err", err))
		http.Error(w, "Failed to create invite", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/invites", http.StatusFound)
}

// InviteQR renders the invite's join link as a PNG so it can be scanned
// straight off a screen at a group run.
func (h *handler) InviteQR(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cc, ok := h.requireClubAdmin(w, r)
	if !ok {
		return
	}

	invite, err := h.DB.GetInvite(ctx, r.PathValue("token"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		slog.ErrorContext(ctx, "failed to get invite", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if invite.ClubID != cc.Club.ID {
		h.NotFound(w, r)
		return
	}

	joinURL := fmt.Sprintf("%s/join?token=%s", h.Cfg.Server.PublicURL, invite.Token)
	qr, err := qrcode.New(joinURL)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create qrcode", slog.Any("err", err))
		http.Error(w, "Failed to create qrcode", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	qrW := standard.NewWithWriter(xio.NewResponseWriteCloser(w),
		standard.WithBgTransparent(),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	)
	defer func() {
		_ = qrW.Close()
	}()
	if err = qr.Save(qrW); err != nil {
		slog.ErrorContext(ctx, "Failed to save qrcode", slog.Any("err", err))
	}
}

type JoinVars struct {
	Token    string
	ClubName string
	Admin    bool
	Error    string
}

// Join shows the invite so the signed-in user can confirm. Reaching it while
// signed out bounces through login and lands right back here with the token
// intact.
func (h *handler) Join(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("token")
	if token == "" {
		h.NotFound(w, r)
		return
	}

	invite, err := h.DB.GetInvite(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.renderJoinError(w, r, "This invite does not exist")
			return
		}
		slog.ErrorContext(ctx, "failed to get invite", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	club, err := h.DB.GetClub(ctx, invite.ClubID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get club", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err = h.Templates().ExecuteTemplate(w, "join.gohtml", JoinVars{
		Token:    token,
		ClubName: club.Name,
		Admin:    invite.Admin,
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to render join template", slog.Any("err", err))
	}
}

func (h *handler) DoJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := auth.GetSession(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	token := r.FormValue("token")
	if token == "" {
		h.NotFound(w, r)
		return
	}

	invite, err := h.DB.ClaimInvite(ctx, token, session.User)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			h.renderJoinError(w, r, "This invite does not exist")
		case errors.Is(err, store.ErrInviteConsumed):
			h.renderJoinError(w, r, "This invite has already been used")
		case errors.Is(err, store.ErrInviteExpired):
			h.renderJoinError(w, r, "This invite has expired")
		default:
			slog.ErrorContext(ctx, "failed to claim invite", slog.Any("err", err))
			http.Error(w, "Failed to join club", http.StatusInternalServerError)
		}
		return
	}

	if err = h.DB.SetActiveClub(ctx, session.User.ID, invite.ClubID); err != nil {
		slog.ErrorContext(ctx, "failed to set active club", slog.Any("err", err))
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *handler) renderJoinError(w http.ResponseWriter, r *http.Request, message string) {
	ctx := r.Context()

	if err := h.Templates().ExecuteTemplate(w, "join.gohtml", JoinVars{
		Error: message,
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to render join template", slog.Any("err", err))
	}
}
