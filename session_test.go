package authclient_test

import (
	"testing"
	"time"

	authclient "github.com/goliatone/go-auth-client"
	"github.com/stretchr/testify/assert"
)

func TestSession_Roles(t *testing.T) {
	tests := []struct {
		name      string
		session   authclient.Session
		wantAdmin bool
	}{
		{name: "admin", session: authclient.Session{LoggedIn: true, User: &authclient.User{Role: "ADMIN"}}, wantAdmin: true},
		{name: "user", session: authclient.Session{LoggedIn: true, User: &authclient.User{Role: "USER"}}, wantAdmin: false},
		{name: "lowercase admin is not admin", session: authclient.Session{LoggedIn: true, User: &authclient.User{Role: "admin"}}, wantAdmin: false},
		{name: "no user", session: authclient.Session{LoggedIn: true}, wantAdmin: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantAdmin, tt.session.IsAdmin())
		})
	}
}

func TestSession_Consistent(t *testing.T) {
	assert.True(t, authclient.Session{}.Consistent())
	assert.True(t, authclient.Session{LoggedIn: true, User: &authclient.User{}}.Consistent())
	assert.False(t, authclient.Session{LoggedIn: true}.Consistent())
}

func TestSession_Expiry(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	session := authclient.Session{
		LoggedIn:         true,
		RefreshToken:     "refresh-1",
		AccessExpiresAt:  now,
		RefreshExpiresAt: now.Add(time.Minute),
	}

	assert.True(t, session.AccessExpired(now))
	assert.False(t, session.AccessExpired(now.Add(-time.Second)))
	assert.False(t, session.RefreshExpired(now))
	assert.True(t, session.CanRefresh(now))
	assert.False(t, session.CanRefresh(now.Add(time.Minute)))

	assert.False(t, authclient.Session{}.AccessExpired(now), "zero expiry never expires")
}

func TestSession_String(t *testing.T) {
	session := authclient.Session{
		LoggedIn:     true,
		User:         &authclient.User{Username: "admin", Role: "ADMIN"},
		AccessToken:  "secret-access",
		RefreshToken: "secret-refresh",
	}
	assert.Contains(t, session.String(), "user=admin")
	assert.NotContains(t, session.String(), "secret-")
	assert.Contains(t, session.String(), "role=ADMIN")
	assert.Contains(t, authclient.Session{}.String(), "user=<nil>")
}

func TestCredentials_Validate(t *testing.T) {
	assert.NoError(t, authclient.Credentials{Username: "admin", Password: "secret"}.Validate())
	assert.Error(t, authclient.Credentials{Username: "admin"}.Validate())
	assert.Error(t, authclient.Credentials{Password: "secret"}.Validate())
}
