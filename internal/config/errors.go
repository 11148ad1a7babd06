package config

import "errors"

// Errors returned while loading configuration sources.
var (
	ErrReadingEnv   = errors.New("error getting env configs")
	ErrParsingFlags = errors.New("error parsing flags")
	ErrReadingJSON  = errors.New("error reading a json file")
	ErrDecodingJSON = errors.New("error decoding json configs")
)

// Validation errors returned by [StructuredConfig.validate]. Each failure is
// wrapped with the offending setting and joined with the others, so callers
// can match any of them with errors.Is.
var (
	// ErrInvalidAppConfigs indicates an invalid deployment tier or service id.
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidTrustConfigs indicates host, origin, CSRF or cookie settings
	// that are unsafe for the tier.
	ErrInvalidTrustConfigs = errors.New("invalid trust configuration")
	// ErrInvalidInternalConfigs indicates missing or weak internal-auth settings.
	ErrInvalidInternalConfigs = errors.New("invalid internal auth configuration")
	// ErrInvalidAuthzConfigs indicates route authorization settings that are
	// unsafe for the tier.
	ErrInvalidAuthzConfigs = errors.New("invalid authz configuration")
	// ErrInvalidSessionConfigs indicates an unknown or incomplete session backend.
	ErrInvalidSessionConfigs = errors.New("invalid session configuration")
	// ErrInvalidStorageConfigs indicates an empty DSN or unknown driver.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidUpstreamConfigs indicates missing upstream URLs or secrets.
	ErrInvalidUpstreamConfigs = errors.New("invalid upstream configuration")
)
