package authclient_test

import (
	"context"
	"testing"

	authclient "github.com/goliatone/go-auth-client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPersister(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	persister := authclient.NewMemoryPersister()

	loaded, err := persister.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	session := loggedInSession(clock)
	require.NoError(t, persister.Save(ctx, session))

	session.User.Role = authclient.RoleUser

	loaded, err = persister.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, authclient.RoleAdmin, loaded.User.Role)

	require.NoError(t, persister.Clear(ctx))
	loaded, err = persister.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
