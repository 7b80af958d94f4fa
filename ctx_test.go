package authclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	authclient "github.com/goliatone/go-auth-client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionFromContext(t *testing.T) {
	tests := []struct {
		name     string
		setupCtx func() context.Context
		wantOK   bool
	}{
		{
			name: "should return session when present in context",
			setupCtx: func() context.Context {
				return authclient.WithSession(context.Background(), authclient.Session{LoggedIn: true})
			},
			wantOK: true,
		},
		{
			name:     "should return false when no session in context",
			setupCtx: context.Background,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, ok := authclient.SessionFromContext(tt.setupCtx())
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantOK, session.LoggedIn)
		})
	}
}

func TestStore_Middleware(t *testing.T) {
	clock := newTestClock()
	store, _ := restoredStore(t, testConfig(), new(MockBackend), clock, loggedInSession(clock))

	var got authclient.Session
	handler := store.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		got, ok = authclient.SessionFromContext(r.Context())
		require.True(t, ok)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.True(t, got.LoggedIn)
	assert.Equal(t, "access-1", got.AccessToken)
}
