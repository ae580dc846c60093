package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stridelog/stridelog/internal/xrand"
	"github.com/stridelog/stridelog/server/auth"
	"github.com/stridelog/stridelog/server/store"
)

// publicPath reports whether a request may pass without a session.
func publicPath(path string) bool {
	return strings.HasPrefix(path, "/login") ||
		strings.HasPrefix(path, "/static/") ||
		path == "/billing/webhook" ||
		path == "/dev/reload"
}

func (h *handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if publicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie("session")
		if err != nil {
			if errors.Is(err, http.ErrNoCookie) {
				h.forceLogin(w, r)
				return
			}
			slog.ErrorContext(ctx, "failed to get session cookie", slog.Any("err", err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		session, err := h.DB.GetSession(ctx, cookie.Value)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrSessionExpired) {
				h.forceLogin(w, r)
				return
			}
			slog.ErrorContext(ctx, "failed to get session", slog.Any("err", err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		r = r.WithContext(auth.SetSession(ctx, *session))
		next.ServeHTTP(w, r)
	})
}

func (h *handler) forceLogin(w http.ResponseWriter, r *http.Request) {
	rd := r.URL.Path
	if r.URL.RawQuery != "" {
		rd += "?" + r.URL.RawQuery
	}
	u := url.URL{
		Path:     "/login",
		RawQuery: url.Values{"rd": {rd}}.Encode(),
	}
	http.Redirect(w, r, u.String(), http.StatusFound)
}

func (h *handler) Login(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	redirect := query.Get("rd")
	if redirect == "" || !strings.HasPrefix(redirect, "/") {
		redirect = "/"
	}

	state := h.Auth.NewState(redirect)

	expiration := time.Now().Add(auth.MaxLoginFlowDuration)
	addOauthCookie(w, state, expiration, h.Auth.Secure())
	http.Redirect(w, r, h.Auth.Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *handler) LoginCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	oauthState, _ := r.Cookie("oauthstate")
	state := query.Get("state")
	code := query.Get("code")

	if oauthState == nil || state != oauthState.Value {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	redirectURL, ok := h.Auth.GetState(state)
	if !ok {
		http.Error(w, "Unknown OAuth state", http.StatusBadRequest)
		return
	}

	token, err := h.Auth.Config().Exchange(ctx, code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to exchange OAuth code", slog.Any("err", err))
		http.Error(w, "Failed to exchange OAuth code", http.StatusInternalServerError)
		return
	}

	info, err := h.Auth.FetchUser(ctx, token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch user info", slog.Any("err", err))
		http.Error(w, "Failed to fetch user info", http.StatusInternalServerError)
		return
	}

	user, err := h.DB.UpsertUser(ctx, store.User{
		ID:          info.Subject,
		Email:       info.Email,
		DisplayName: info.Name,
		AvatarURL:   info.Picture,
		Role:        h.Auth.RoleFor(info.Email),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to upsert user", slog.Any("err", err))
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	expiration := now.Add(h.Auth.SessionTTL())
	sessionID := xrand.RandToken(32)
	if err = h.DB.CreateSession(ctx, store.Session{
		ID:        sessionID,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: expiration,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to create session", slog.Any("err", err))
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	addSessionCookie(w, sessionID, expiration, h.Auth.Secure())
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func (h *handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := auth.GetSession(r)

	if err := h.DB.DeleteSession(ctx, session.Session.ID); err != nil {
		slog.ErrorContext(ctx, "failed to delete session", slog.Any("err", err))
	}

	removeSessionCookie(w, h.Auth.Secure())
	http.Redirect(w, r, "/login", http.StatusFound)
}

func addOauthCookie(w http.ResponseWriter, state string, expiration time.Time, secure bool) {
	cookie := http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		Expires:  expiration,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		HttpOnly: true, // Can't be accessed by JS
		Path:     "/login/callback",
	}

	http.SetCookie(w, &cookie)
}

func removeOauthCookie(w http.ResponseWriter, secure bool) {
	cookie := http.Cookie{
		Name:     "oauthstate",
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		HttpOnly: true,
		Path:     "/login/callback",
	}

	http.SetCookie(w, &cookie)
}

func addSessionCookie(w http.ResponseWriter, session string, expiration time.Time, secure bool) {
	cookie := http.Cookie{
		Name:     "session",
		Value:    session,
		Expires:  expiration,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		HttpOnly: true,
		Path:     "/",
	}

	http.SetCookie(w, &cookie)
	removeOauthCookie(w, secure)
}

func removeSessionCookie(w http.ResponseWriter, secure bool) {
	cookie := http.Cookie{
		Name:     "session",
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		HttpOnly: true,
		Path:     "/",
	}

	http.SetCookie(w, &cookie)
}

// newID mints identifiers for records created by handlers.
func newID() string {
	return uuid.NewString()
}
