package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shamell/trustgate/internal/guard"
)

// Init builds the router. The shared chain runs outermost first:
// recovery, correlation, access log, security headers, host check, path
// check, body limit, CSRF. Security headers wrap every guard below them so
// denials carry them too. Zone filters (CORS, authorizer, internal auth)
// follow on the route groups.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()

	chain := guard.NewPipeline(
		middleware.Recoverer,
		h.deps.Correlation.Handler,
		h.withLogging,
		h.deps.SecurityHeaders.Handler,
		h.deps.Hosts.Handler,
		guard.CanonicalPath,
		h.limitBody,
		h.deps.CSRF.Handler,
	)
	router.Use(chain.Middlewares()...)

	router.NotFound(h.notFound)
	router.MethodNotAllowed(h.notFound)

	router.Get("/health", h.health)
	router.Get("/version", h.version)

	// internal zone
	router.With(h.deps.InternalAuth.Handler).Handle("/metrics", h.deps.MetricsHandler)
	router.With(h.alertAuth.Handler).Post("/internal/security/alerts", h.securityAlerts)

	// browser zone; handlers are mounted for every method so that CORS
	// answers preflights before any route check
	router.Group(func(r chi.Router) {
		r.Use(h.cors)

		r.With(h.deps.Authorizer.RequireSession()).Handle("/me/roles", onlyGet(h.myRoles, h.notFound))
		r.With(h.deps.Authorizer.RequireAdmin()).Handle("/admin/*", h.deps.Admin)
		r.With(h.deps.Authorizer.RequireRole(OperatorBusRole)).Handle("/bus/operator/*", h.deps.Bus)
		r.Handle("/payments/*", h.deps.Payments)
		r.Handle("/chat/*", h.deps.Chat)
		r.Handle("/bus/*", h.deps.Bus)
	})

	return router
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	guard.WriteDetail(w, http.StatusNotFound, "not found")
}

// limitBody caps request bodies at MaxBodyBytes. Reads past the cap fail
// with *http.MaxBytesError, which handlers map to 413.
func (h *Handler) limitBody(next http.Handler) http.Handler {
	if h.deps.MaxBodyBytes <= 0 {
		return next
	}
	return middleware.RequestSize(h.deps.MaxBodyBytes)(next)
}

func onlyGet(get, otherwise http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			otherwise(w, r)
			return
		}
		get(w, r)
	}
}
