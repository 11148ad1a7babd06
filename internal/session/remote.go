package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shamell/trustgate/internal/guard"
	"github.com/shamell/trustgate/internal/utils"
	"github.com/shamell/trustgate/models"
)

// DefaultRemotePath is the auth-service endpoint asked to resolve the
// caller's session.
const DefaultRemotePath = "/internal/sessions/current"

// RemoteOptions configures a RemoteResolver.
type RemoteOptions struct {
	// BaseURL of the auth service, e.g. http://auth:8081.
	BaseURL string
	// Path defaults to DefaultRemotePath.
	Path string
	// Timeout bounds every lookup.
	Timeout time.Duration
	// InternalSecret and CallerID authenticate the gateway to the auth
	// service.
	InternalSecret string
	CallerID       string
	// Header names default to the guard package defaults.
	SecretHeader    string
	CallerHeader    string
	RequestIDHeader string
}

// RemoteResolver asks the auth service who owns a session. The token is
// forwarded as the primary session cookie; the gateway authenticates with
// the internal-auth headers.
type RemoteResolver struct {
	client   *utils.HTTPClient
	path     string
	secret   string
	callerID string

	secretHeader    string
	callerHeader    string
	requestIDHeader string
}

// NewRemoteResolver returns a RemoteResolver for opts.
func NewRemoteResolver(opts RemoteOptions) *RemoteResolver {
	path := opts.Path
	if path == "" {
		path = DefaultRemotePath
	}
	return &RemoteResolver{
		client:   utils.NewHTTPClient(strings.TrimRight(opts.BaseURL, "/"), opts.Timeout),
		path:     path,
		secret:   opts.InternalSecret,
		callerID: opts.CallerID,

		secretHeader:    headerOrDefault(opts.SecretHeader, guard.DefaultInternalSecretHeader),
		callerHeader:    headerOrDefault(opts.CallerHeader, guard.DefaultInternalCallerHeader),
		requestIDHeader: headerOrDefault(opts.RequestIDHeader, guard.DefaultRequestIDHeader),
	}
}

func headerOrDefault(name, def string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return def
}

func (rr *RemoteResolver) Resolve(ctx context.Context, token string) (models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Session{}, ErrMalformedToken
	}

	var found models.Session
	req := rr.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetCookie(&http.Cookie{Name: guard.SessionCookieName, Value: token}).
		SetResult(&found)
	if rr.secret != "" {
		req.SetHeader(rr.secretHeader, rr.secret)
	}
	if rr.callerID != "" {
		req.SetHeader(rr.callerHeader, rr.callerID)
	}
	if requestID, ok := utils.GetRequestIDFromContext(ctx); ok {
		req.SetHeader(rr.requestIDHeader, requestID)
	}

	resp, err := req.Get(rr.path)
	if err != nil {
		return models.Session{}, fmt.Errorf("auth service request: %w", err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusOK:
	case code == http.StatusUnauthorized, code == http.StatusForbidden, code == http.StatusNotFound:
		return models.Session{}, ErrNoSession
	default:
		return models.Session{}, fmt.Errorf("auth service responded %d", code)
	}

	found.AccountID = strings.TrimSpace(found.AccountID)
	if found.AccountID == "" {
		return models.Session{}, ErrNoSession
	}
	return found, nil
}
