package authclient_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	authclient "github.com/goliatone/go-auth-client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var metrics *authclient.Metrics
	assert.NotPanics(t, func() { metrics.ObserveDecision("proceed") })
	assert.Nil(t, authclient.NewMetrics(nil))
}

func TestMetrics_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := authclient.NewMetrics(reg)
	metrics.ObserveDecision("redirect_login")

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.GuardDecisionTotal.WithLabelValues("redirect_login")))

	rec := httptest.NewRecorder()
	authclient.MetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `guard_decisions_total{decision="redirect_login"} 1`)
}
