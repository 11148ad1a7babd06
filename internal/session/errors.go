package session

import "errors"

var (
	// ErrNoSession is returned when a token does not identify a live session.
	ErrNoSession = errors.New("no session")

	// ErrMalformedToken is returned when a token cannot be a session token.
	// It wraps ErrNoSession.
	ErrMalformedToken = errors.Join(ErrNoSession, errors.New("malformed session token"))

	// ErrUnknownBackend is returned by New for an unrecognised backend name.
	ErrUnknownBackend = errors.New("unknown session backend")
)
