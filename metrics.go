package authclient

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the counters exposed by the store, the transport and the
// guard. A nil *Metrics is valid and records nothing.
type Metrics struct {
	LoginsTotal        *prometheus.CounterVec
	RefreshesTotal     *prometheus.CounterVec
	UnauthorizedTotal  prometheus.Counter
	ReplaysTotal       prometheus.Counter
	GuardDecisionTotal *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg. A nil
// registerer returns nil metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authclient_logins_total",
				Help: "Total number of login attempts by result",
			},
			[]string{"result"},
		),
		RefreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authclient_refreshes_total",
				Help: "Total number of backend token refresh calls by result",
			},
			[]string{"result"},
		),
		UnauthorizedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "authclient_unauthorized_responses_total",
				Help: "Total number of 401 responses seen by the transport",
			},
		),
		ReplaysTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "authclient_request_replays_total",
				Help: "Total number of requests replayed after a token refresh",
			},
		),
		GuardDecisionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guard_decisions_total",
				Help: "Total number of route guard decisions by outcome",
			},
			[]string{"decision"},
		),
	}

	reg.MustRegister(
		m.LoginsTotal,
		m.RefreshesTotal,
		m.UnauthorizedTotal,
		m.ReplaysTotal,
		m.GuardDecisionTotal,
	)

	return m
}

func (m *Metrics) login(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) refresh(result string) {
	if m == nil {
		return
	}
	m.RefreshesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) unauthorized() {
	if m == nil {
		return
	}
	m.UnauthorizedTotal.Inc()
}

func (m *Metrics) replay() {
	if m == nil {
		return
	}
	m.ReplaysTotal.Inc()
}

// ObserveDecision counts a guard decision
func (m *Metrics) ObserveDecision(decision string) {
	if m == nil {
		return
	}
	m.GuardDecisionTotal.WithLabelValues(decision).Inc()
}

// MetricsHandler serves the metrics gathered by g
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

const (
	resultSuccess  = "success"
	resultRejected = "rejected"
	resultError    = "error"
)

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case IsAuthError(err):
		return resultRejected
	default:
		return resultError
	}
}
