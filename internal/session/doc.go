// Package session resolves a session token taken from the session cookie
// into the account it authenticates.
//
// Three backends are provided: [StoreResolver] looks the token up in the
// auth_sessions table, [JWTResolver] verifies a signed stateless token, and
// [RemoteResolver] asks the auth service over HTTP. [CachedResolver]
// decorates any of them with a Redis cache of successful lookups.
//
// Every resolver returns [ErrNoSession] (possibly wrapped) when the token
// does not identify a live session. Infrastructure failures are returned
// as other errors so that callers can log them; the gateway treats both as
// "no session".
package session
