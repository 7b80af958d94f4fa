package authclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	authclient "github.com/goliatone/go-auth-client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackendServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		if body["login"] != "admin" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"message": "invalid login"})
			return
		}

		json.NewEncoder(w).Encode(map[string]any{
			"token":         "access-1",
			"refresh_token": "refresh-1",
			"user": map[string]any{
				"userId":   "u-1",
				"username": "admin",
				"role":     "ADMIN",
				"phone":    "555-0100",
			},
		})
	})

	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		if body["refresh_token"] != "refresh-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"token": "access-2", "refresh_token": "refresh-2"})
	})

	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/auth/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{"userId": "u-1", "role": "USER"},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestHTTPBackend_Login(t *testing.T) {
	server := newBackendServer(t)
	backend := authclient.NewHTTPBackend(authclient.NewStaticConfig(authclient.EnvDevelopment, server.URL), server.Client()).
		WithLogger(authclient.NopLogger())

	resp, err := backend.Login(context.Background(), authclient.Credentials{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "access-1", resp.AccessToken)
	assert.Equal(t, "refresh-1", resp.RefreshToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, authclient.RoleAdmin, resp.User.Role)
	assert.Equal(t, "555-0100", resp.User.Extra["phone"])

	_, err = backend.Login(context.Background(), authclient.Credentials{Username: "admin", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, authclient.IsAuthError(err))
	assert.True(t, errors.Is(err, authclient.ErrAuthRejected))
}

func TestHTTPBackend_Refresh(t *testing.T) {
	server := newBackendServer(t)
	backend := authclient.NewHTTPBackend(authclient.NewStaticConfig(authclient.EnvDevelopment, server.URL), server.Client()).
		WithLogger(authclient.NopLogger())

	resp, err := backend.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", resp.AccessToken)
	assert.Equal(t, "refresh-2", resp.RefreshToken)
	assert.Nil(t, resp.User)

	_, err = backend.Refresh(context.Background(), "unknown")
	require.Error(t, err)
	assert.True(t, errors.Is(err, authclient.ErrRefreshRejected))
	assert.True(t, authclient.IsAuthError(err))
}

func TestHTTPBackend_LogoutAndFetchUser(t *testing.T) {
	server := newBackendServer(t)
	backend := authclient.NewHTTPBackend(authclient.NewStaticConfig(authclient.EnvDevelopment, server.URL), server.Client()).
		WithLogger(authclient.NopLogger())

	require.NoError(t, backend.Logout(context.Background(), "access-1"))

	err := backend.Logout(context.Background(), "other")
	require.Error(t, err)
	assert.True(t, errors.Is(err, authclient.ErrUnexpectedResponse))
	assert.False(t, authclient.IsAuthError(err))

	user, err := backend.FetchUser(context.Background(), "access-1")
	require.NoError(t, err)
	assert.Equal(t, authclient.RoleUser, user.Role)

	_, err = backend.FetchUser(context.Background(), "expired")
	assert.True(t, authclient.IsAuthError(err))
}

func TestHTTPBackend_NestedTokenProperty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data":          map[string]any{"token": "nested-access"},
			"refresh_token": "refresh-1",
		})
	}))
	defer server.Close()

	cfg := authclient.NewStaticConfig(authclient.EnvDevelopment, server.URL)
	cfg.Endpoints[authclient.EndpointLogin] = authclient.Endpoint{URL: "/login", Method: http.MethodPost, Property: "data.token"}

	backend := authclient.NewHTTPBackend(cfg, server.Client()).WithLogger(authclient.NopLogger())

	resp, err := backend.Login(context.Background(), authclient.Credentials{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "nested-access", resp.AccessToken)
	assert.Equal(t, "refresh-1", resp.RefreshToken)
}

func TestHTTPBackend_RefreshTokenRequired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"token": "access-1"})
	}))
	defer server.Close()

	cfg := authclient.NewStaticConfig(authclient.EnvDevelopment, server.URL)
	backend := authclient.NewHTTPBackend(cfg, server.Client()).WithLogger(authclient.NopLogger())

	_, err := backend.Login(context.Background(), authclient.Credentials{Username: "admin", Password: "secret"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, authclient.ErrUnexpectedResponse))
	assert.False(t, authclient.IsAuthError(err))

	// a refresh response may keep the current refresh token
	resp, err := backend.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", resp.AccessToken)
	assert.Empty(t, resp.RefreshToken)

	cfg.RefreshTokenRequired = false

	resp, err = backend.Login(context.Background(), authclient.Credentials{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "access-1", resp.AccessToken)
	assert.Empty(t, resp.RefreshToken)
}

func TestHTTPBackend_UserNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"message": "user not found"})
	}))
	defer server.Close()

	backend := authclient.NewHTTPBackend(authclient.NewStaticConfig(authclient.EnvDevelopment, server.URL), server.Client()).
		WithLogger(authclient.NopLogger())

	_, err := backend.Login(context.Background(), authclient.Credentials{Username: "ghost", Password: "secret"})
	require.Error(t, err)
	assert.True(t, authclient.IsAuthError(err))
	assert.True(t, errors.Is(err, authclient.ErrAuthRejected))

	_, err = backend.Refresh(context.Background(), "refresh-1")
	require.Error(t, err)
	assert.True(t, authclient.IsAuthError(err))
	assert.True(t, errors.Is(err, authclient.ErrRefreshRejected))

	// other endpoints keep 404 as an unexpected response
	_, err = backend.FetchUser(context.Background(), "access-1")
	require.Error(t, err)
	assert.False(t, authclient.IsAuthError(err))
	assert.True(t, errors.Is(err, authclient.ErrUnexpectedResponse))
}

func TestHTTPBackend_UnusableResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"message":"boom"}`, wantErr: authclient.ErrUnexpectedResponse},
		{name: "missing token", status: http.StatusOK, body: `{"user":{"role":"ADMIN"}}`, wantErr: authclient.ErrUnexpectedResponse},
		{name: "plain text error", status: http.StatusBadGateway, body: "upstream down", wantErr: authclient.ErrUnexpectedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			backend := authclient.NewHTTPBackend(authclient.NewStaticConfig(authclient.EnvDevelopment, server.URL), server.Client()).
				WithLogger(authclient.NopLogger())

			_, err := backend.Login(context.Background(), authclient.Credentials{Username: "admin", Password: "secret"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.False(t, authclient.IsAuthError(err))
		})
	}
}

func TestHTTPBackend_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	backend := authclient.NewHTTPBackend(authclient.NewStaticConfig(authclient.EnvDevelopment, url), nil).
		WithLogger(authclient.NopLogger())

	_, err := backend.Refresh(context.Background(), "refresh-1")
	require.Error(t, err)
	assert.False(t, authclient.IsAuthError(err))
}
