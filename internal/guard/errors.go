package guard

import "errors"

// Details returned to clients in the {"detail": ...} error body.
const (
	DetailInvalidHost               = "invalid host"
	DetailInternalAuthNotConfigured = "internal auth not configured"
	DetailInternalAuthRequired      = "internal auth required"
	DetailInternalCallerNotAllowed  = "internal caller not allowed"
	DetailSessionRequired           = "auth session required"
	DetailForbidden                 = "forbidden"
)

// Reasons reported by the CSRF guard. They are logged and counted, never
// returned to the client.
const (
	ReasonInvalidOrigin     = "invalid_origin"
	ReasonOriginNotAllowed  = "origin_not_allowed"
	ReasonInvalidReferer    = "invalid_referer"
	ReasonRefererNotAllowed = "referer_not_allowed"
	ReasonCrossSiteFetch    = "cross_site_fetch"
)

var (
	// ErrNilResolver is returned by NewAuthorizer when route enforcement is
	// enabled without a session resolver.
	ErrNilResolver = errors.New("session resolver is required when route enforcement is enabled")

	// ErrInvalidOrigin is returned when an origin cannot be normalized.
	ErrInvalidOrigin = errors.New("invalid origin")

	// ErrEmptyRole is returned by RequireRole for a blank role name.
	ErrEmptyRole = errors.New("role name must not be empty")
)
