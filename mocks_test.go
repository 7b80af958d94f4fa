package authclient_test

import (
	"context"
	"testing"
	"time"

	authclient "github.com/goliatone/go-auth-client"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBackend implements authclient.Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Login(ctx context.Context, credentials authclient.Credentials) (*authclient.TokenResponse, error) {
	args := m.Called(ctx, credentials)
	resp, _ := args.Get(0).(*authclient.TokenResponse)
	return resp, args.Error(1)
}

func (m *MockBackend) Logout(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func (m *MockBackend) Refresh(ctx context.Context, refreshToken string) (*authclient.TokenResponse, error) {
	args := m.Called(ctx, refreshToken)
	resp, _ := args.Get(0).(*authclient.TokenResponse)
	return resp, args.Error(1)
}

func (m *MockBackend) FetchUser(ctx context.Context, accessToken string) (*authclient.User, error) {
	args := m.Called(ctx, accessToken)
	user, _ := args.Get(0).(*authclient.User)
	return user, args.Error(1)
}

// testClock is a settable clock for expiry checks
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func testConfig() *authclient.StaticConfig {
	return authclient.NewStaticConfig(authclient.EnvDevelopment, "http://localhost:3000")
}

func adminUser() *authclient.User {
	return &authclient.User{ID: "u-1", Username: "admin", Role: authclient.RoleAdmin}
}

func loggedInSession(clock *testClock) authclient.Session {
	return authclient.Session{
		LoggedIn:         true,
		User:             adminUser(),
		AccessToken:      "access-1",
		RefreshToken:     "refresh-1",
		AccessExpiresAt:  clock.Now().Add(time.Minute),
		RefreshExpiresAt: clock.Now().Add(time.Minute),
		Strategy:         "local",
	}
}

// restoredStore returns a store that starts from session
func restoredStore(t *testing.T, cfg authclient.Config, backend authclient.Backend, clock *testClock, session authclient.Session) (*authclient.Store, *authclient.MemoryPersister) {
	t.Helper()

	persister := authclient.NewMemoryPersister()
	require.NoError(t, persister.Save(context.Background(), session))

	store := authclient.NewStore(cfg, backend).
		WithLogger(authclient.NopLogger()).
		WithPersister(persister).
		WithClock(clock.Now)

	_, err := store.Restore(context.Background())
	require.NoError(t, err)
	return store, persister
}
