package authclient_test

import (
	"testing"

	authclient "github.com/goliatone/go-auth-client"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := authclient.NewZapLogger(zap.New(core))

	logger.Info("Logged in", "identifier", "admin")
	logger.Warn("Refresh failed", "error", "boom")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "Logged in", entries[0].Message)
		assert.Equal(t, "admin", entries[0].ContextMap()["identifier"])
		assert.Equal(t, zap.WarnLevel, entries[1].Level)
	}

	assert.NotPanics(t, func() { authclient.NewZapLogger(nil).Debug("ignored") })
}
