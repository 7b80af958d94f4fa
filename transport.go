package authclient

import (
	"io"
	"net/http"

	"github.com/google/uuid"
)

// CorrelationHeader carries the request id shared by a request and its replay
const CorrelationHeader = "X-Correlation-ID"

var _ http.RoundTripper = &Transport{}

// Transport attaches the session token to outgoing API requests and
// recovers from 401 responses by refreshing the tokens and replaying the
// request once.
type Transport struct {
	store   *Store
	base    http.RoundTripper
	logger  Logger
	metrics *Metrics
}

// NewTransport wraps base. A nil base uses BaseTransport for the store
// configuration.
func NewTransport(store *Store, base http.RoundTripper) *Transport {
	if base == nil {
		base = BaseTransport(store.Config())
	}
	return &Transport{
		store:   store,
		base:    base,
		logger:  store.logger,
		metrics: store.metrics,
	}
}

func (t *Transport) WithLogger(logger Logger) *Transport {
	if logger != nil {
		t.logger = logger
	}
	return t
}

func (t *Transport) WithMetrics(metrics *Metrics) *Transport {
	t.metrics = metrics
	return t
}

// Client returns an http.Client using this transport
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	session := t.beforeSend(req)

	correlationID := req.Header.Get(CorrelationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	callerAuth := req.Header.Get("Authorization") != ""

	out := t.prepare(req, session, correlationID, callerAuth)
	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	t.metrics.unauthorized()

	current := t.store.Snapshot()
	if !current.LoggedIn || current.RefreshToken == "" {
		t.logger.Debug("Unauthorized response without refreshable session", "url", req.URL.String(), "correlation_id", correlationID)
		return resp, nil
	}

	var refreshErr error
	if callerAuth {
		current, refreshErr = t.store.RefreshTokens(ctx)
	} else {
		current, refreshErr = t.store.refreshTokens(ctx, session.AccessToken)
	}
	if refreshErr != nil {
		t.logger.Warn("Token refresh after 401 failed", "url", req.URL.String(), "correlation_id", correlationID, "error", refreshErr)
		return resp, nil
	}

	if callerAuth || !current.LoggedIn || !replayable(req) {
		return resp, nil
	}

	replay := t.prepare(req, current, correlationID, false)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			t.logger.Warn("Unable to rewind request body", "correlation_id", correlationID, "error", err)
			return resp, nil
		}
		replay.Body = body
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	t.metrics.replay()
	t.logger.Debug("Replaying request with refreshed token", "url", req.URL.String(), "correlation_id", correlationID)
	return t.base.RoundTrip(replay)
}

// beforeSend refreshes an expired access token ahead of the call and drops
// a session whose refresh token is already gone.
func (t *Transport) beforeSend(req *http.Request) Session {
	session := t.store.Snapshot()
	if !session.LoggedIn {
		return session
	}

	now := t.store.now()
	if !session.AccessExpired(now) {
		return session
	}

	if !session.CanRefresh(now) {
		t.logger.Info("Session expired, logging out locally")
		t.store.clear(req.Context())
		return Session{}
	}

	refreshed, err := t.store.refreshTokens(req.Context(), session.AccessToken)
	if err != nil {
		t.logger.Warn("Proactive token refresh failed", "error", err)
		return t.store.Snapshot()
	}
	return refreshed
}

func (t *Transport) prepare(req *http.Request, session Session, correlationID string, callerAuth bool) *http.Request {
	out := req.Clone(req.Context())
	out.Header.Set(CorrelationHeader, correlationID)

	if callerAuth || !session.LoggedIn || session.AccessToken == "" {
		return out
	}

	cfg := t.store.Config()
	if cfg.GetTokenGlobal() {
		out.Header.Set("Authorization", authorizationValue(cfg.GetTokenType(), session.AccessToken))
	}
	return out
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}
