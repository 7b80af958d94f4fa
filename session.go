package authclient

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Session holds the client side state of an auth session. Values returned
// by the Store are copies.
type Session struct {
	LoggedIn         bool      `json:"logged_in"`
	User             *User     `json:"user,omitempty"`
	AccessToken      string    `json:"access_token,omitempty"`
	RefreshToken     string    `json:"refresh_token,omitempty"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	Strategy         string    `json:"strategy,omitempty"`
}

// Consistent reports whether a logged in session also carries a user
func (s Session) Consistent() bool {
	return !s.LoggedIn || s.User != nil
}

// HasRole checks the user role with an exact match
func (s Session) HasRole(role string) bool {
	return s.User != nil && s.User.Role == role
}

// IsAdmin checks for the admin role
func (s Session) IsAdmin() bool {
	return s.HasRole(RoleAdmin)
}

// AccessExpired reports whether the access token is past its expiry.
// A zero expiry never expires.
func (s Session) AccessExpired(now time.Time) bool {
	return expired(s.AccessExpiresAt, now)
}

// RefreshExpired reports whether the refresh token is past its expiry
func (s Session) RefreshExpired(now time.Time) bool {
	return expired(s.RefreshExpiresAt, now)
}

// CanRefresh reports whether a refresh call has a chance to succeed
func (s Session) CanRefresh(now time.Time) bool {
	return s.LoggedIn && s.RefreshToken != "" && !s.RefreshExpired(now)
}

func (s Session) clone() Session {
	c := s
	c.User = s.User.Clone()
	return c
}

func expired(at, now time.Time) bool {
	return !at.IsZero() && !now.Before(at)
}

// String summarizes the session for logs. Tokens are never printed.
func (s Session) String() string {
	user := "<nil>"
	role := ""
	if s.User != nil {
		user = s.User.Username
		role = s.User.Role
	}
	return fmt.Sprintf(
		"logged_in=%t user=%s role=%s access_exp=%s refresh_exp=%s",
		s.LoggedIn,
		user,
		role,
		formatTime(s.AccessExpiresAt),
		formatTime(s.RefreshExpiresAt),
	)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "<none>"
	}
	return t.Format(time.RFC1123)
}

// Validate checks the credentials before they reach the backend
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required),
		validation.Field(&c.Password, validation.Required),
	)
}
