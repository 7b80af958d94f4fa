// Package guard decides whether a navigation may reach an admin page and
// adapts that decision to net/http, gin, fiber and go-router.
package guard

import (
	"context"
	"net/http"

	authclient "github.com/goliatone/go-auth-client"
)

const (
	DefaultLoginPath         = "/auth/login"
	DefaultAdminRequiredPath = "/admin_required"
)

type Action string

const (
	ActionProceed  Action = "proceed"
	ActionRedirect Action = "redirect"
)

// Reasons reported with a decision, also used as the metrics label
const (
	ReasonProceed       = "proceed"
	ReasonNotLoggedIn   = "not_logged_in"
	ReasonMissingUser   = "missing_user"
	ReasonAdminRequired = "admin_required"
)

// Decision is the outcome of a guard check. Redirect is only set when
// Action is ActionRedirect.
type Decision struct {
	Action   Action
	Redirect string
	Reason   string
}

func (d Decision) Proceed() bool {
	return d.Action == ActionProceed
}

func (d Decision) String() string {
	if d.Proceed() {
		return string(d.Action)
	}
	return string(d.Action) + " " + d.Redirect + " (" + d.Reason + ")"
}

// SessionSource provides the session a guard checks. *authclient.Store
// implements it.
type SessionSource interface {
	Snapshot() authclient.Session
}

type Option func(*Guard)

func WithLoginPath(path string) Option {
	return func(g *Guard) {
		if path != "" {
			g.loginPath = path
		}
	}
}

func WithAdminRequiredPath(path string) Option {
	return func(g *Guard) {
		if path != "" {
			g.adminRequiredPath = path
		}
	}
}

// WithRequiredRole replaces the ADMIN role. Matching stays exact.
func WithRequiredRole(role string) Option {
	return func(g *Guard) {
		if role != "" {
			g.requiredRole = role
		}
	}
}

func WithLogger(logger authclient.Logger) Option {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithMetrics(metrics *authclient.Metrics) Option {
	return func(g *Guard) {
		g.metrics = metrics
	}
}

// Guard protects admin routes
type Guard struct {
	source            SessionSource
	loginPath         string
	adminRequiredPath string
	requiredRole      string
	logger            authclient.Logger
	metrics           *authclient.Metrics
}

func New(source SessionSource, opts ...Option) *Guard {
	g := &Guard{
		source:            source,
		loginPath:         DefaultLoginPath,
		adminRequiredPath: DefaultAdminRequiredPath,
		requiredRole:      authclient.RoleAdmin,
		logger:            authclient.NopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var defaultGuard = New(nil)

// Evaluate applies the default admin rules to s
func Evaluate(s authclient.Session) Decision {
	return defaultGuard.Evaluate(s)
}

// Evaluate checks s, first matching rule wins:
// logged out, logged in without user, wrong role, then proceed.
func (g *Guard) Evaluate(s authclient.Session) Decision {
	switch {
	case !s.LoggedIn:
		return g.redirect(g.loginPath, ReasonNotLoggedIn)
	case !s.Consistent():
		return g.redirect(g.loginPath, ReasonMissingUser)
	case !s.HasRole(g.requiredRole):
		return g.redirect(g.adminRequiredPath, ReasonAdminRequired)
	default:
		return Decision{Action: ActionProceed, Reason: ReasonProceed}
	}
}

// Check evaluates the session carried by ctx, or the source snapshot when
// ctx has none. The decision is logged and counted.
func (g *Guard) Check(ctx context.Context) Decision {
	session := g.session(ctx)
	decision := g.Evaluate(session)

	g.metrics.ObserveDecision(decision.Reason)
	if !decision.Proceed() {
		g.logger.Debug("Guard redirect", "redirect", decision.Redirect, "reason", decision.Reason)
	}
	return decision
}

func (g *Guard) session(ctx context.Context) authclient.Session {
	if session, ok := authclient.SessionFromContext(ctx); ok {
		return session
	}
	if g.source == nil {
		return authclient.Session{}
	}
	return g.source.Snapshot()
}

func (g *Guard) redirect(path, reason string) Decision {
	return Decision{Action: ActionRedirect, Redirect: path, Reason: reason}
}

// redirectStatus keeps GET navigations on 302 and moves everything else to
// 303 so the browser follows with a GET.
func redirectStatus(method string) int {
	if method == http.MethodGet || method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
