package guard

import "net/http"

// HostGuard rejects requests whose Host is not in the allow-list.
type HostGuard struct {
	common
	allow AllowList
}

// NewHostGuard builds a HostGuard from rules. An empty rule set turns the
// guard into a pass-through.
func NewHostGuard(rules []string, opts ...Option) *HostGuard {
	return &HostGuard{
		common: newCommon(opts),
		allow:  NewAllowList(rules),
	}
}

// Allows reports whether a raw Host value (optionally with port) passes.
func (g *HostGuard) Allows(host string) bool {
	if g.allow.Empty() {
		return true
	}
	return g.allow.Matches(hostWithoutPort(host))
}

// Handler is the Filter form of the guard.
func (g *HostGuard) Handler(next http.Handler) http.Handler {
	if g.allow.Empty() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := requestHost(r)
		if host == "" {
			deny(w, r, g.observer, GuardHost, http.StatusBadRequest, DetailInvalidHost, "missing_host")
			return
		}
		if !g.allow.Matches(host) {
			deny(w, r, g.observer, GuardHost, http.StatusBadRequest, DetailInvalidHost, "host_not_allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}
