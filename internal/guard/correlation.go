package guard

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/shamell/trustgate/internal/logger"
	"github.com/shamell/trustgate/internal/utils"
)

// DefaultRequestIDHeader carries the correlation id in both directions.
const DefaultRequestIDHeader = "X-Request-ID"

// Correlation stamps every request with a correlation id.
//
// A trimmed, non-empty caller-supplied id is reused; otherwise a random
// 32-hex id is generated and written back into the request header so that
// upstream calls carry it. The id is stored in the request context and in a
// request-scoped logger under "request_id", and echoed on the response
// unless the handler has set the header itself.
type Correlation struct {
	common
	header string
}

// NewCorrelation builds the stamper for header (DefaultRequestIDHeader when
// blank).
func NewCorrelation(header string, opts ...Option) *Correlation {
	if header == "" {
		header = DefaultRequestIDHeader
	}
	return &Correlation{common: newCommon(opts), header: http.CanonicalHeaderKey(header)}
}

// Header returns the canonical header name the stamper reads and writes.
func (c *Correlation) Header() string {
	return c.header
}

// Handler is the Filter form of the stamper.
func (c *Correlation) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := headerText(r.Header, c.header)
		if id == "" {
			id = utils.NewRequestID()
		}
		r.Header.Set(c.header, id)

		base := c.logger
		if base == nil {
			base = logger.FromRequest(r)
		}
		l := base.GetChildLogger()
		l.UpdateContext(func(zc zerolog.Context) zerolog.Context {
			return zc.Str("request_id", id)
		})

		ctx := context.WithValue(r.Context(), utils.RequestIDCtxKey, id)
		r = r.WithContext(l.WithContext(ctx))

		withHeaderHook(w, r, next, func(h http.Header) {
			setIfAbsent(h, c.header, id)
		})
	})
}

// RequestIDFromContext returns the correlation id stored by the stamper,
// or "" outside a stamped request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := utils.GetRequestIDFromContext(ctx)
	return id
}
