// Package authclient keeps the client side of an auth session for a single
// page admin application talking to an external authentication backend.
//
// Session store:
//   - Store owns the Session. Login, Logout, RefreshTokens, FetchUser and
//     Restore are the only writers; Snapshot hands out copies. Subscribe to
//     get every new session.
//   - Concurrent RefreshTokens calls share one backend call. A refresh token
//     the backend rejects logs the session out locally.
//
// Transport:
//   - Transport is an http.RoundTripper that attaches the access token. On a
//     401 it refreshes the tokens when the session is logged in and holds a
//     refresh token, then replays the request once.
//   - BaseTransport skips certificate verification only in binaries built
//     with the dev tag and configured for the development environment.
//
// The route guard lives in the guard package; the Redis and SQL persisters
// in the repository package.
package authclient
