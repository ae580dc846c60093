package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/stridelog/stridelog/internal/xrand"
	"github.com/stridelog/stridelog/server/store"
)

const MaxLoginFlowDuration = 30 * time.Minute

const userInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

type loginState struct {
	RedirectURL string
	CreatedAt   time.Time
}

func (s loginState) IsExpired() bool {
	return time.Since(s.CreatedAt) > MaxLoginFlowDuration
}

func New(cfg Config) *Auth {
	a := &Auth{
		cfg: cfg,
		oauth2Cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoints.Google,
			RedirectURL:  cfg.PublicURL + "/login/callback",
			Scopes:       []string{"openid", "email", "profile"},
		},
		states: make(map[string]loginState),
	}

	go a.cleanupStates()

	return a
}

type Auth struct {
	cfg       Config
	oauth2Cfg *oauth2.Config
	states    map[string]loginState
	statesMu  sync.Mutex
}

func (a *Auth) Config() *oauth2.Config {
	return a.oauth2Cfg
}

func (a *Auth) SessionTTL() time.Duration {
	return time.Duration(a.cfg.SessionTTL)
}

func (a *Auth) Secure() bool {
	return a.cfg.Secure
}

// RoleFor returns the app-wide role for an email address.
func (a *Auth) RoleFor(email string) string {
	if slices.Contains(a.cfg.Admins, email) {
		return store.RoleAdmin
	}
	return store.RoleMember
}

func (a *Auth) NewState(redirectURL string) string {
	a.statesMu.Lock()
	defer a.statesMu.Unlock()

	state := xrand.RandToken(32)
	a.states[state] = loginState{
		RedirectURL: redirectURL,
		CreatedAt:   time.Now(),
	}
	return state
}

func (a *Auth) GetState(state string) (string, bool) {
	a.statesMu.Lock()
	defer a.statesMu.Unlock()

	lState, ok := a.states[state]
	if ok {
		delete(a.states, state)
	}

	if lState.IsExpired() {
		return "", false
	}

	return lState.RedirectURL, ok
}

// UserInfo is the OpenID Connect userinfo claims subset we care about.
type UserInfo struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// FetchUser exchanges the token for the signed-in user's identity claims.
func (a *Auth) FetchUser(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	rq, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}

	rs, err := a.oauth2Cfg.Client(ctx, token).Do(rq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer func() {
		_ = rs.Body.Close()
	}()

	if rs.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", rs.StatusCode)
	}

	var info UserInfo
	if err = json.NewDecoder(rs.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Subject == "" {
		return nil, fmt.Errorf("userinfo response missing subject")
	}

	return &info, nil
}

func (a *Auth) cleanupStates() {
	for {
		a.doCleanupStates()
		time.Sleep(10 * time.Minute)
	}
}

func (a *Auth) doCleanupStates() {
	a.statesMu.Lock()
	defer a.statesMu.Unlock()

	for state, lState := range a.states {
		if lState.IsExpired() {
			delete(a.states, state)
		}
	}
}
