package guard

import (
	"net/http"
	"strings"

	"github.com/shamell/trustgate/internal/utils"
)

// Default header names for service-to-service authentication.
const (
	DefaultInternalSecretHeader = "X-Internal-Secret"
	DefaultInternalCallerHeader = "X-Internal-Service-Id"
)

// InternalAuthOptions configures the internal service authenticator.
type InternalAuthOptions struct {
	// Required turns enforcement on. When false every request passes.
	Required bool
	// Secret is the shared secret callers must present.
	Secret string
	// AllowedCallers restricts which caller ids may pass. Empty means any
	// caller presenting the secret.
	AllowedCallers []string
	// SecretHeader defaults to DefaultInternalSecretHeader.
	SecretHeader string
	// CallerHeader defaults to DefaultInternalCallerHeader.
	CallerHeader string
}

// Verdict is the outcome of an internal authentication decision.
type Verdict int

const (
	VerdictAllow Verdict = iota
	VerdictNotConfigured
	VerdictAuthRequired
	VerdictCallerNotAllowed
)

// HTTPStatus maps the verdict to a response status.
func (v Verdict) HTTPStatus() int {
	switch v {
	case VerdictNotConfigured:
		return http.StatusServiceUnavailable
	case VerdictAuthRequired, VerdictCallerNotAllowed:
		return http.StatusUnauthorized
	default:
		return http.StatusOK
	}
}

// Detail is the client-facing message for a rejecting verdict.
func (v Verdict) Detail() string {
	switch v {
	case VerdictNotConfigured:
		return DetailInternalAuthNotConfigured
	case VerdictAuthRequired:
		return DetailInternalAuthRequired
	case VerdictCallerNotAllowed:
		return DetailInternalCallerNotAllowed
	default:
		return ""
	}
}

// Reason is the label used in logs and metrics.
func (v Verdict) Reason() string {
	switch v {
	case VerdictNotConfigured:
		return "not_configured"
	case VerdictAuthRequired:
		return "secret_mismatch"
	case VerdictCallerNotAllowed:
		return "caller_not_allowed"
	default:
		return "allowed"
	}
}

// InternalAuth authenticates machine-to-machine calls with a shared secret
// and an optional caller allow-set. The same decision backs the HTTP filter
// and the gRPC interceptors.
type InternalAuth struct {
	common
	required     bool
	secret       string
	secretHeader string
	callerHeader string
	callers      map[string]struct{}
}

// NewInternalAuth builds the authenticator. Caller ids are trimmed,
// lowercased and deduplicated.
func NewInternalAuth(opts InternalAuthOptions, guardOpts ...Option) *InternalAuth {
	a := &InternalAuth{
		common:       newCommon(guardOpts),
		required:     opts.Required,
		secret:       strings.TrimSpace(opts.Secret),
		secretHeader: opts.SecretHeader,
		callerHeader: opts.CallerHeader,
	}
	if a.secretHeader == "" {
		a.secretHeader = DefaultInternalSecretHeader
	}
	if a.callerHeader == "" {
		a.callerHeader = DefaultInternalCallerHeader
	}
	a.callers = normalizeCallers(opts.AllowedCallers)
	return a
}

// WithAllowedCallers returns a copy of a restricted to callers. The
// receiver is not modified.
func (a *InternalAuth) WithAllowedCallers(callers []string) *InternalAuth {
	cp := *a
	cp.callers = normalizeCallers(callers)
	return &cp
}

// CallerHeader returns the header the caller id is read from.
func (a *InternalAuth) CallerHeader() string {
	return a.callerHeader
}

func normalizeCallers(callers []string) map[string]struct{} {
	out := make(map[string]struct{}, len(callers))
	for _, c := range callers {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		out[c] = struct{}{}
	}
	return out
}

// Decide evaluates the presented secret and caller id.
//
// Order: disabled → allow; no secret configured → not configured; missing
// or mismatched secret → auth required; caller outside a non-empty
// allow-set → caller not allowed; otherwise allow.
func (a *InternalAuth) Decide(providedSecret, providedCaller string) Verdict {
	if !a.required {
		return VerdictAllow
	}
	if a.secret == "" {
		return VerdictNotConfigured
	}

	provided := strings.TrimSpace(providedSecret)
	if provided == "" || !utils.ConstantTimeEqual(provided, a.secret) {
		return VerdictAuthRequired
	}

	if len(a.callers) > 0 {
		caller := strings.ToLower(strings.TrimSpace(providedCaller))
		if _, ok := a.callers[caller]; caller == "" || !ok {
			return VerdictCallerNotAllowed
		}
	}
	return VerdictAllow
}

// Handler is the Filter form of the authenticator.
func (a *InternalAuth) Handler(next http.Handler) http.Handler {
	if !a.required {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := a.Decide(r.Header.Get(a.secretHeader), r.Header.Get(a.callerHeader))
		if v != VerdictAllow {
			deny(w, r, a.observer, GuardInternalAuth, v.HTTPStatus(), v.Detail(), v.Reason())
			return
		}
		next.ServeHTTP(w, r)
	})
}
