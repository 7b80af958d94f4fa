package authclient

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrNotLoggedIn is returned by operations that need an active session
var ErrNotLoggedIn = errors.New("not logged in")

// ErrNoRefreshToken is returned when a refresh is requested without a refresh token
var ErrNoRefreshToken = errors.New("no refresh token")

// ErrRefreshTokenExpired the refresh token is past its max age
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// ErrAuthRejected the backend rejected the credentials or the access token
var ErrAuthRejected = errors.New("authentication rejected")

// ErrRefreshRejected the backend rejected the refresh token
var ErrRefreshRejected = errors.New("refresh token rejected")

// ErrInvalidCredentials credentials failed local validation
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnexpectedResponse the backend answered with something we can not use
var ErrUnexpectedResponse = errors.New("unexpected response")

// ErrUnableToParseData parse error
var ErrUnableToParseData = errors.New("unable to parse data")

// IsAuthError reports whether err is an authentication failure, as opposed to
// a network or server error.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryAuth {
		return true
	}

	return errors.Is(err, ErrAuthRejected) ||
		errors.Is(err, ErrRefreshRejected) ||
		errors.Is(err, ErrRefreshTokenExpired)
}

// IsUnauthorizedStatus reports the status codes the backend uses to reject
// credentials or tokens.
func IsUnauthorizedStatus(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusBadRequest:
		return true
	default:
		return false
	}
}

// IsRejectedStatus reports whether status rejects what was sent to endpoint.
// Login and refresh also answer 404 for an unknown user.
func IsRejectedStatus(endpoint string, status int) bool {
	if IsUnauthorizedStatus(status) {
		return true
	}
	switch endpoint {
	case EndpointLogin, EndpointRefresh:
		return status == http.StatusNotFound
	default:
		return false
	}
}

func authError(source error, status int, message string) *goerrors.Error {
	if message == "" {
		message = source.Error()
	}
	return goerrors.Wrap(source, goerrors.CategoryAuth, message).
		WithCode(status).
		WithTextCode(textCode(source)).
		WithMetadata(map[string]any{"status": status})
}

func responseError(status int, message string) *goerrors.Error {
	if message == "" {
		message = http.StatusText(status)
	}
	return goerrors.Wrap(ErrUnexpectedResponse, goerrors.CategoryOperation, message).
		WithCode(status).
		WithTextCode("UNEXPECTED_RESPONSE").
		WithMetadata(map[string]any{"status": status})
}

func transportError(err error, operation string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, operation+" request failed").
		WithCode(http.StatusBadGateway).
		WithTextCode("BACKEND_UNREACHABLE")
}

func textCode(err error) string {
	return strings.ToUpper(strings.ReplaceAll(err.Error(), " ", "_"))
}
