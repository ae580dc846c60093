package auth

import (
	"context"
	"net/http"

	"github.com/stridelog/stridelog/server/store"
)

type sessionKey struct{}

var sessionContextKey = &sessionKey{}

func SetSession(ctx context.Context, session store.SessionWithUser) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

func GetSession(r *http.Request) store.SessionWithUser {
	return r.Context().Value(sessionContextKey).(store.SessionWithUser)
}
