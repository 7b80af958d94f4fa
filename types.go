package authclient

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger is the structured logger used across the package. Args are
// key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Endpoint describes one backend operation of the auth strategy
type Endpoint struct {
	URL      string
	Method   string
	Property string
}

// Redirects holds the client side routes used around the auth lifecycle
type Redirects struct {
	Login    string
	Logout   string
	Callback string
	Home     string
}

// Config holds the auth strategy options
type Config interface {
	GetEnvironment() string
	GetBaseURL() string
	GetStrategyName() string
	GetTokenProperty() string
	GetTokenType() string
	GetTokenMaxAge() time.Duration
	GetTokenGlobal() bool
	GetRefreshTokenProperty() string
	GetRefreshTokenData() string
	GetRefreshTokenMaxAge() time.Duration
	GetRefreshTokenRequired() bool
	GetUserProperty() string
	GetUserAutoFetch() bool
	GetEndpoint(name string) Endpoint
	GetRedirects() Redirects
}

// Backend is the HTTP contract of the external authentication service
type Backend interface {
	Login(ctx context.Context, credentials Credentials) (*TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	FetchUser(ctx context.Context, accessToken string) (*User, error)
}

// Persister keeps a session across process restarts
type Persister interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, session Session) error
	Clear(ctx context.Context) error
}

// SessionListener is notified after every session change
type SessionListener func(Session)

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] AUTHCLIENT " + format(msg, args))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] AUTHCLIENT " + format(msg, args))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print("[WRN] AUTHCLIENT " + format(msg, args))
}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] AUTHCLIENT " + format(msg, args))
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// NopLogger discards everything
func NopLogger() Logger {
	return nopLogger{}
}

func format(msg string, args []any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		b.WriteByte(' ')
		if i+1 < len(args) {
			fmt.Fprintf(&b, "%v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, "%v", args[i])
		}
	}
	return newline(b.String())
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
