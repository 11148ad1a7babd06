package guard

import (
	"net/http"

	"github.com/shamell/trustgate/internal/logger"
)

// Guard names used in logs and denial metrics.
const (
	GuardHost         = "host"
	GuardInternalAuth = "internal_auth"
	GuardAuthz        = "authz"
	GuardCSRF         = "csrf"
)

// DenialObserver is notified every time a guard rejects a request.
//
//go:generate mockgen -source=observer.go -destination=../mock/observer_mock.go -package=mock
type DenialObserver interface {
	ObserveDenial(guard, reason string)
}

type nopObserver struct{}

func (nopObserver) ObserveDenial(string, string) {}

func observerOrNop(o DenialObserver) DenialObserver {
	if o == nil {
		return nopObserver{}
	}
	return o
}

// deny logs and reports a rejection, then writes the error body.
// reason is internal; detail is what the client sees.
func deny(w http.ResponseWriter, r *http.Request, obs DenialObserver, guard string, status int, detail, reason string) {
	logger.FromRequest(r).Warn().
		Str("guard", guard).
		Str("reason", reason).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("request denied")

	obs.ObserveDenial(guard, reason)
	WriteDetail(w, status, detail)
}
