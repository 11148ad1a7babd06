package guard

import (
	"net/http"
	"strings"
)

// CSRFOptions configures the CSRF/Origin defense guard.
type CSRFOptions struct {
	// Enabled turns the guard on.
	Enabled bool
	// AllowedOrigins lists trusted browser origins; "*" trusts any origin.
	AllowedOrigins []string
	// AcceptLegacyCookie treats the legacy session cookie as a session.
	AcceptLegacyCookie bool
}

// CSRFGuard blocks state-changing, cookie-authenticated requests whose
// Origin, Referer or Sec-Fetch-Site shows they were issued cross-site.
//
// Requests that carry no session cookie are never blocked: without ambient
// credentials there is nothing to forge. A cookie-authenticated write with
// no Origin, no Referer and no Sec-Fetch-Site is allowed.
type CSRFGuard struct {
	common
	enabled      bool
	anyOrigin    bool
	allowed      map[string]struct{}
	acceptLegacy bool
}

// NewCSRFGuard builds the guard. Allowed origins are normalized once;
// entries that cannot be normalized never match.
func NewCSRFGuard(opts CSRFOptions, guardOpts ...Option) *CSRFGuard {
	g := &CSRFGuard{
		common:       newCommon(guardOpts),
		enabled:      opts.Enabled,
		allowed:      make(map[string]struct{}, len(opts.AllowedOrigins)),
		acceptLegacy: opts.AcceptLegacyCookie,
	}
	normalized, _ := NormalizeOrigins(opts.AllowedOrigins)
	for _, o := range normalized {
		if o == "*" {
			g.anyOrigin = true
			continue
		}
		g.allowed[o] = struct{}{}
	}
	return g
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// BlockReason returns why r must be blocked, or "" when it may proceed.
// The first matching rule decides.
func (g *CSRFGuard) BlockReason(r *http.Request) string {
	if !g.enabled || !isStateChanging(r.Method) {
		return ""
	}
	if SessionToken(r, g.acceptLegacy) == "" {
		return ""
	}

	if raw := headerText(r.Header, "Origin"); raw != "" {
		o, err := ParseOrigin(raw)
		if err != nil {
			return ReasonInvalidOrigin
		}
		if g.trusted(o, r) {
			return ""
		}
		return ReasonOriginNotAllowed
	}

	if raw := headerText(r.Header, "Referer"); raw != "" {
		o, err := ParseOrigin(raw)
		if err != nil {
			return ReasonInvalidReferer
		}
		if g.trusted(o, r) {
			return ""
		}
		return ReasonRefererNotAllowed
	}

	if strings.EqualFold(headerText(r.Header, "Sec-Fetch-Site"), "cross-site") {
		return ReasonCrossSiteFetch
	}
	return ""
}

func (g *CSRFGuard) trusted(o Origin, r *http.Request) bool {
	if g.anyOrigin {
		return true
	}
	if _, ok := g.allowed[o.String()]; ok {
		return true
	}
	return matchesRequestHost(o, r)
}

// matchesRequestHost reports whether the origin's host equals the host the
// request was addressed to: the first X-Forwarded-Host value, else Host.
func matchesRequestHost(o Origin, r *http.Request) bool {
	host := firstListValue(headerText(r.Header, "X-Forwarded-Host"))
	if host == "" {
		host = firstListValue(r.Host)
	}
	host = hostWithoutPort(host)
	return host != "" && host == o.Host
}

// Handler is the Filter form of the guard. Blocked requests get 403
// {"detail":"forbidden"}; the reason is only logged and counted.
func (g *CSRFGuard) Handler(next http.Handler) http.Handler {
	if !g.enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := g.BlockReason(r); reason != "" {
			deny(w, r, g.observer, GuardCSRF, http.StatusForbidden, DetailForbidden, reason)
			return
		}
		next.ServeHTTP(w, r)
	})
}
