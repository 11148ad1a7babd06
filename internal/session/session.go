package session

import (
	"errors"
	"fmt"

	"github.com/shamell/trustgate/internal/store"
)

// Backend names accepted by New.
const (
	BackendDB     = "db"
	BackendJWT    = "jwt"
	BackendRemote = "remote"
)

// Options selects and configures a session backend.
type Options struct {
	Backend string
	// Repository serves BackendDB.
	Repository store.SessionRepository
	// JWTSignKey and JWTIssuer serve BackendJWT.
	JWTSignKey string
	JWTIssuer  string
	// Remote serves BackendRemote.
	Remote RemoteOptions
}

// New builds the resolver for opts.Backend.
func New(opts Options) (Resolver, error) {
	switch opts.Backend {
	case BackendDB:
		if opts.Repository == nil {
			return nil, errors.New("db session backend requires a repository")
		}
		return NewStoreResolver(opts.Repository), nil
	case BackendJWT:
		if opts.JWTSignKey == "" {
			return nil, errors.New("jwt session backend requires a sign key")
		}
		return NewJWTResolver(opts.JWTSignKey, opts.JWTIssuer), nil
	case BackendRemote:
		if opts.Remote.BaseURL == "" {
			return nil, errors.New("remote session backend requires a base url")
		}
		return NewRemoteResolver(opts.Remote), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
