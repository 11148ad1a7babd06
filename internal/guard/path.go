package guard

import (
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shamell/trustgate/internal/logger"
)

// DetailInvalidPath is returned for request paths that are not canonical.
const DetailInvalidPath = "invalid path"

// CanonicalPath rejects request paths that would route differently from how
// they are forwarded: empty or dot segments, repeated slashes, and escapes
// that decode into any of those. Accepted requests are routed on the decoded
// path, the same one upstream forwarders relay.
func CanonicalPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if !IsCanonicalPath(p) {
			logger.FromRequest(r).Warn().
				Str("guard", "path").
				Str("path", r.URL.EscapedPath()).
				Msg("request rejected")
			WriteDetail(w, http.StatusBadRequest, DetailInvalidPath)
			return
		}
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			rctx.RoutePath = p
		}
		next.ServeHTTP(w, r)
	})
}

// IsCanonicalPath reports whether p is absolute and already clean. A single
// trailing slash is allowed.
func IsCanonicalPath(p string) bool {
	if !strings.HasPrefix(p, "/") {
		return false
	}
	clean := path.Clean(p)
	if strings.HasSuffix(p, "/") && clean != "/" {
		clean += "/"
	}
	return clean == p
}
