package authclient

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry returns when a token stops being usable. The exp claim of a
// JWT wins; opaque tokens expire maxAge after issuedAt. A zero time means
// the token never expires locally.
func TokenExpiry(token string, issuedAt time.Time, maxAge time.Duration) time.Time {
	if token == "" {
		return time.Time{}
	}

	if exp, ok := jwtExpiry(token); ok {
		return exp
	}

	if maxAge <= 0 {
		return time.Time{}
	}
	return issuedAt.Add(maxAge)
}

// The client never holds the signing key, the signature is checked by the
// backend on every call.
func jwtExpiry(token string) (time.Time, bool) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func authorizationValue(tokenType, token string) string {
	if tokenType == "" {
		return token
	}
	return tokenType + " " + token
}
