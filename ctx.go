package authclient

import (
	"context"
	"net/http"
)

var sessionCtxKey = &contextKey{"session"}

type contextKey struct {
	name string
}

// WithSession sets the Session in the given context
func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, session)
}

// SessionFromContext finds the session from the context.
func SessionFromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	raw, ok := ctx.Value(sessionCtxKey).(Session)
	return raw, ok
}

// Middleware stores a snapshot of the current session in every request
// context so downstream handlers read one consistent view.
func (s *Store) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithSession(r.Context(), s.Snapshot())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
