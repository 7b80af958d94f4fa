package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

var _ Backend = &HTTPBackend{}

// HTTPBackend talks to the auth endpoints described by Config. It must not
// use the intercepting Transport, auth calls are never retried.
type HTTPBackend struct {
	cfg    Config
	client *http.Client
	logger Logger
}

// NewHTTPBackend returns a backend client. A nil client gets a client built
// on BaseTransport.
func NewHTTPBackend(cfg Config, client *http.Client) *HTTPBackend {
	if client == nil {
		client = &http.Client{Transport: BaseTransport(cfg)}
	}
	return &HTTPBackend{
		cfg:    cfg,
		client: client,
		logger: defLogger{},
	}
}

func (b *HTTPBackend) WithLogger(logger Logger) *HTTPBackend {
	if logger != nil {
		b.logger = logger
	}
	return b
}

func (b *HTTPBackend) Login(ctx context.Context, credentials Credentials) (*TokenResponse, error) {
	ep := b.cfg.GetEndpoint(EndpointLogin)

	payload, status, err := b.call(ctx, ep, "", credentials)
	if err != nil {
		return nil, transportError(err, EndpointLogin)
	}

	if IsRejectedStatus(EndpointLogin, status) {
		b.logger.Info("Login rejected", "status", status, "identifier", credentials.Username)
		return nil, authError(ErrAuthRejected, status, responseMessage(payload))
	}

	if !isSuccess(status) {
		return nil, responseError(status, responseMessage(payload))
	}

	return b.tokenResponse(payload, firstNonEmpty(ep.Property, b.cfg.GetTokenProperty()), b.cfg.GetRefreshTokenRequired())
}

func (b *HTTPBackend) Logout(ctx context.Context, accessToken string) error {
	ep := b.cfg.GetEndpoint(EndpointLogout)

	payload, status, err := b.call(ctx, ep, accessToken, nil)
	if err != nil {
		return transportError(err, EndpointLogout)
	}

	if !isSuccess(status) {
		return responseError(status, responseMessage(payload))
	}
	return nil
}

func (b *HTTPBackend) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	ep := b.cfg.GetEndpoint(EndpointRefresh)

	body := map[string]string{
		firstNonEmpty(b.cfg.GetRefreshTokenData(), "refresh_token"): refreshToken,
	}

	payload, status, err := b.call(ctx, ep, "", body)
	if err != nil {
		return nil, transportError(err, EndpointRefresh)
	}

	if IsRejectedStatus(EndpointRefresh, status) {
		b.logger.Info("Refresh token rejected", "status", status)
		return nil, authError(ErrRefreshRejected, status, responseMessage(payload))
	}

	if !isSuccess(status) {
		return nil, responseError(status, responseMessage(payload))
	}

	return b.tokenResponse(payload, firstNonEmpty(ep.Property, b.cfg.GetTokenProperty()), false)
}

func (b *HTTPBackend) FetchUser(ctx context.Context, accessToken string) (*User, error) {
	ep := b.cfg.GetEndpoint(EndpointUser)

	payload, status, err := b.call(ctx, ep, accessToken, nil)
	if err != nil {
		return nil, transportError(err, EndpointUser)
	}

	if IsUnauthorizedStatus(status) {
		return nil, authError(ErrAuthRejected, status, responseMessage(payload))
	}

	if !isSuccess(status) {
		return nil, responseError(status, responseMessage(payload))
	}

	user, err := userFromPayload(payload, firstNonEmpty(ep.Property, b.cfg.GetUserProperty()))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, responseError(status, "user property missing from response")
	}
	return user, nil
}

// tokenResponse reads the tokens and user. requireRefresh is set for login,
// a refresh response may keep the current refresh token.
func (b *HTTPBackend) tokenResponse(payload map[string]any, tokenProperty string, requireRefresh bool) (*TokenResponse, error) {
	token, _ := getProp(payload, tokenProperty).(string)
	if token == "" {
		return nil, goerrors.Wrap(ErrUnexpectedResponse, goerrors.CategoryOperation,
			fmt.Sprintf("token property %q missing from response", tokenProperty)).
			WithTextCode("TOKEN_MISSING")
	}

	refreshProperty := b.cfg.GetRefreshTokenProperty()
	refreshToken, _ := getProp(payload, refreshProperty).(string)
	if refreshToken == "" && requireRefresh {
		return nil, goerrors.Wrap(ErrUnexpectedResponse, goerrors.CategoryOperation,
			fmt.Sprintf("refresh token property %q missing from response", refreshProperty)).
			WithTextCode("REFRESH_TOKEN_MISSING")
	}

	user, err := userFromPayload(payload, b.cfg.GetUserProperty())
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken:  token,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (b *HTTPBackend) call(ctx context.Context, ep Endpoint, accessToken string, body any) (map[string]any, int, error) {
	target, err := resolveURL(b.cfg.GetBaseURL(), ep.URL)
	if err != nil {
		return nil, 0, err
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(raw)
	}

	method := ep.Method
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), target, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", authorizationValue(b.cfg.GetTokenType(), accessToken))
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	payload := map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			b.logger.Debug("Non JSON response body", "url", target, "status", resp.StatusCode)
			payload = map[string]any{"message": strings.TrimSpace(string(raw))}
		}
	}

	return payload, resp.StatusCode, nil
}

func resolveURL(base, path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() || base == "" {
		return ref.String(), nil
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return u.ResolveReference(ref).String(), nil
}

// getProp walks a dotted property path, "data.token" reads payload.data.token
func getProp(payload map[string]any, property string) any {
	if property == "" {
		return payload
	}

	var current any = payload
	for _, key := range strings.Split(property, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[key]
		if !ok {
			return nil
		}
	}
	return current
}

func userFromPayload(payload map[string]any, property string) (*User, error) {
	if property == "" {
		return nil, nil
	}

	raw := getProp(payload, property)
	if raw == nil {
		return nil, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, goerrors.Wrap(ErrUnableToParseData, goerrors.CategoryInternal, "encode user payload")
	}

	user := &User{}
	if err := json.Unmarshal(data, user); err != nil {
		return nil, goerrors.Wrap(ErrUnableToParseData, goerrors.CategoryOperation, "decode user payload").
			WithMetadata(map[string]any{"property": property})
	}
	return user, nil
}

func responseMessage(payload map[string]any) string {
	for _, key := range []string{"message", "error"} {
		if msg, ok := payload[key].(string); ok && msg != "" {
			return msg
		}
	}
	return ""
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
