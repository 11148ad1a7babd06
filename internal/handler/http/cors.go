package http

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/jub0bs/cors"

	"github.com/shamell/trustgate/internal/guard"
)

// CORSOptions configures the browser zone's CORS policy.
type CORSOptions struct {
	// Origins are normalized browser origins. "*" allows any origin but
	// turns credentialed access off.
	Origins []string
	// AllowInsecureOrigins tolerates plain-http origins other than
	// localhost. Only sensible outside production.
	AllowInsecureOrigins bool
	// RequestIDHeader is allowed on requests and exposed on responses.
	// Defaults to guard.DefaultRequestIDHeader.
	RequestIDHeader string
}

var (
	corsMethods = []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	corsRequestHeaders = []string{
		"Content-Type",
		"Idempotency-Key",
		"X-Device-Id",
		"X-Merchant",
		"X-Ref",
		"X-Chat-Device-Id",
		"X-Chat-Device-Token",
	}
	corsResponseHeaders = []string{
		"Retry-After",
	}
)

// newCORS builds the browser-zone middleware. No origins means no CORS
// headers at all: the zone is then same-origin only.
func newCORS(opts CORSOptions) (guard.Filter, error) {
	if len(opts.Origins) == 0 {
		return func(next http.Handler) http.Handler { return next }, nil
	}

	requestID := opts.RequestIDHeader
	if requestID == "" {
		requestID = guard.DefaultRequestIDHeader
	}

	cfg := cors.Config{
		Origins:         opts.Origins,
		Credentialed:    true,
		Methods:         corsMethods,
		RequestHeaders:  append(slices.Clone(corsRequestHeaders), requestID),
		MaxAgeInSeconds: 600,
		ResponseHeaders: append(slices.Clone(corsResponseHeaders), requestID),
		ExtraConfig: cors.ExtraConfig{
			DangerouslyTolerateInsecureOrigins: opts.AllowInsecureOrigins,
		},
	}
	if slices.Contains(opts.Origins, "*") {
		cfg.Origins = []string{"*"}
		cfg.Credentialed = false
	}

	mw, err := cors.NewMiddleware(cfg)
	if err != nil {
		return nil, fmt.Errorf("error building cors middleware: %w", err)
	}
	return mw.Wrap, nil
}
