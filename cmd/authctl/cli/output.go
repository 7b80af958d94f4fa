package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	authclient "github.com/goliatone/go-auth-client"
	"github.com/goliatone/go-auth-client/guard"
)

var (
	green = color.New(color.FgHiGreen)
	red   = color.New(color.FgHiRed)
	white = color.New(color.FgHiWhite)
)

func printSession(w io.Writer, session authclient.Session) {
	if !session.LoggedIn {
		red.Fprintln(w, "not logged in")
		return
	}

	green.Fprint(w, "logged in")
	if session.User != nil {
		fmt.Fprintf(w, " as %s (%s)", displayName(session.User), session.User.Role)
	} else {
		fmt.Fprint(w, " without user")
	}
	fmt.Fprintln(w)

	white.Fprintf(w, "  access token expires:  %s\n", expiry(session.AccessExpiresAt))
	white.Fprintf(w, "  refresh token expires: %s\n", expiry(session.RefreshExpiresAt))
}

func printDecision(w io.Writer, path string, decision guard.Decision) {
	if decision.Proceed() {
		green.Fprintf(w, "%s: proceed\n", path)
		return
	}
	red.Fprintf(w, "%s: redirect to %s (%s)\n", path, decision.Redirect, decision.Reason)
}

func displayName(user *authclient.User) string {
	if name := user.FullName(); name != "" {
		return name
	}
	if user.Username != "" {
		return user.Username
	}
	return user.ID
}

func expiry(at time.Time) string {
	if at.IsZero() {
		return "never"
	}
	return at.Local().Format(time.RFC1123)
}
