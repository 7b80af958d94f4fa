package guard

import (
	"net/http"

	authclient "github.com/goliatone/go-auth-client"
)

// HTTP returns net/http middleware guarding with the default rules
func HTTP(source SessionSource, opts ...Option) func(http.Handler) http.Handler {
	return New(source, opts...).HTTP()
}

func (g *Guard) HTTP() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := g.Check(r.Context())
			if !decision.Proceed() {
				http.Redirect(w, r, decision.Redirect, redirectStatus(r.Method))
				return
			}

			ctx := r.Context()
			if _, ok := authclient.SessionFromContext(ctx); !ok {
				ctx = authclient.WithSession(ctx, g.session(ctx))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
