package guard_test

import (
	"context"
	"testing"

	authclient "github.com/goliatone/go-auth-client"
	"github.com/goliatone/go-auth-client/guard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type staticSource struct {
	session authclient.Session
}

func (s staticSource) Snapshot() authclient.Session {
	return s.session
}

func adminSession() authclient.Session {
	return authclient.Session{LoggedIn: true, User: &authclient.User{ID: "u-1", Role: authclient.RoleAdmin}}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name         string
		session      authclient.Session
		wantAction   guard.Action
		wantRedirect string
		wantReason   string
	}{
		{
			name:         "logged out redirects to login",
			session:      authclient.Session{},
			wantAction:   guard.ActionRedirect,
			wantRedirect: "/auth/login",
			wantReason:   guard.ReasonNotLoggedIn,
		},
		{
			name:         "logged out with stale admin user still redirects to login",
			session:      authclient.Session{LoggedIn: false, User: &authclient.User{Role: "ADMIN"}},
			wantAction:   guard.ActionRedirect,
			wantRedirect: "/auth/login",
			wantReason:   guard.ReasonNotLoggedIn,
		},
		{
			name:         "logged in without user redirects to login",
			session:      authclient.Session{LoggedIn: true},
			wantAction:   guard.ActionRedirect,
			wantRedirect: "/auth/login",
			wantReason:   guard.ReasonMissingUser,
		},
		{
			name:         "non admin role",
			session:      authclient.Session{LoggedIn: true, User: &authclient.User{Role: "USER"}},
			wantAction:   guard.ActionRedirect,
			wantRedirect: "/admin_required",
			wantReason:   guard.ReasonAdminRequired,
		},
		{
			name:         "role match is case sensitive",
			session:      authclient.Session{LoggedIn: true, User: &authclient.User{Role: "admin"}},
			wantAction:   guard.ActionRedirect,
			wantRedirect: "/admin_required",
			wantReason:   guard.ReasonAdminRequired,
		},
		{
			name:         "empty role",
			session:      authclient.Session{LoggedIn: true, User: &authclient.User{}},
			wantAction:   guard.ActionRedirect,
			wantRedirect: "/admin_required",
			wantReason:   guard.ReasonAdminRequired,
		},
		{
			name:       "admin proceeds",
			session:    adminSession(),
			wantAction: guard.ActionProceed,
			wantReason: guard.ReasonProceed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := guard.Evaluate(tt.session)
			assert.Equal(t, tt.wantAction, decision.Action)
			assert.Equal(t, tt.wantRedirect, decision.Redirect)
			assert.Equal(t, tt.wantReason, decision.Reason)
		})
	}
}

func TestGuard_Options(t *testing.T) {
	g := guard.New(nil,
		guard.WithLoginPath("/login"),
		guard.WithAdminRequiredPath("/forbidden"),
		guard.WithRequiredRole("OPERATOR"),
	)

	assert.Equal(t, "/login", g.Evaluate(authclient.Session{}).Redirect)
	assert.Equal(t, "/forbidden", g.Evaluate(adminSession()).Redirect)

	operator := authclient.Session{LoggedIn: true, User: &authclient.User{Role: "OPERATOR"}}
	assert.True(t, g.Evaluate(operator).Proceed())
}

func TestGuard_CheckPrefersContextSession(t *testing.T) {
	g := guard.New(staticSource{session: authclient.Session{}})

	assert.False(t, g.Check(context.Background()).Proceed())

	ctx := authclient.WithSession(context.Background(), adminSession())
	assert.True(t, g.Check(ctx).Proceed())
}

func TestGuard_CheckWithoutSource(t *testing.T) {
	decision := guard.New(nil).Check(context.Background())
	assert.Equal(t, "/auth/login", decision.Redirect)
}

func TestGuard_Metrics(t *testing.T) {
	metrics := authclient.NewMetrics(prometheus.NewRegistry())
	g := guard.New(staticSource{session: adminSession()}, guard.WithMetrics(metrics))

	g.Check(context.Background())
	g.Check(authclient.WithSession(context.Background(), authclient.Session{}))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.GuardDecisionTotal.WithLabelValues(guard.ReasonProceed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.GuardDecisionTotal.WithLabelValues(guard.ReasonNotLoggedIn)))
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "proceed", guard.Evaluate(adminSession()).String())
	assert.Equal(t, "redirect /auth/login (not_logged_in)", guard.Evaluate(authclient.Session{}).String())
}
