package guard

import (
	"net/http"
	"strings"
)

// Session cookie names. The primary name carries the __Host- prefix; the
// legacy name is honoured only while a migration is in progress.
const (
	SessionCookieName       = "__Host-sa_session"
	LegacySessionCookieName = "sa_session"
)

// SessionToken returns the session token carried by r: the primary cookie
// when present and non-blank, else the legacy cookie when acceptLegacy is
// set. It returns "" when neither is usable.
func SessionToken(r *http.Request, acceptLegacy bool) string {
	if v := cookieValue(r, SessionCookieName); v != "" {
		return v
	}
	if acceptLegacy {
		return cookieValue(r, LegacySessionCookieName)
	}
	return ""
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}
