package guard

import (
	"net/http"
	"strings"
)

// DefaultCSP is the Content-Security-Policy applied when CSP is enabled
// without an explicit policy.
const DefaultCSP = "default-src 'self'; base-uri 'none'; frame-ancestors 'none'; object-src 'none'; " +
	"script-src 'self' https: 'unsafe-inline'; style-src 'self' https: 'unsafe-inline'; " +
	"img-src 'self' https: data:; connect-src 'self' https: wss:; form-action 'self'"

// HSTSValue is the Strict-Transport-Security value set when HSTS is enabled.
const HSTSValue = "max-age=31536000; includeSubDomains"

// SecurityHeadersOptions selects which defensive headers are added.
type SecurityHeadersOptions struct {
	// Enabled turns the injector on. When false responses are untouched.
	Enabled bool
	// HSTS adds Strict-Transport-Security.
	HSTS bool
	// CSP adds Content-Security-Policy.
	CSP bool
	// CSPValue overrides DefaultCSP. Blank means DefaultCSP.
	CSPValue string
}

// SecurityHeaders adds defensive response headers without overwriting any
// header the handler has already set.
type SecurityHeaders struct {
	opts SecurityHeadersOptions
	csp  string
}

// NewSecurityHeaders builds the injector.
func NewSecurityHeaders(opts SecurityHeadersOptions) *SecurityHeaders {
	csp := strings.TrimSpace(opts.CSPValue)
	if csp == "" {
		csp = DefaultCSP
	}
	return &SecurityHeaders{opts: opts, csp: csp}
}

// Apply adds the configured headers to h, absent-only.
func (s *SecurityHeaders) Apply(h http.Header) {
	if !s.opts.Enabled {
		return
	}
	setIfAbsent(h, "X-Content-Type-Options", "nosniff")
	setIfAbsent(h, "X-Frame-Options", "DENY")
	setIfAbsent(h, "Referrer-Policy", "no-referrer")
	setIfAbsent(h, "Permissions-Policy", "camera=(), microphone=(), geolocation=()")
	if s.opts.HSTS {
		setIfAbsent(h, "Strict-Transport-Security", HSTSValue)
	}
	if s.opts.CSP {
		setIfAbsent(h, "Content-Security-Policy", s.csp)
	}
}

// Handler is the Filter form of the injector. Headers are added at the
// moment the response is committed.
func (s *SecurityHeaders) Handler(next http.Handler) http.Handler {
	if !s.opts.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		withHeaderHook(w, r, next, s.Apply)
	})
}
