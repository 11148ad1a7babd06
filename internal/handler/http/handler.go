package http

import (
	"errors"
	"net/http"

	"github.com/shamell/trustgate/internal/guard"
	"github.com/shamell/trustgate/internal/logger"
	"github.com/shamell/trustgate/internal/metrics"
	"github.com/shamell/trustgate/internal/validators"
	"github.com/shamell/trustgate/models"
)

// OperatorBusRole gates the bus operator routes.
const OperatorBusRole = "operator_bus"

var errMissingDependency = errors.New("http handler dependency is missing")

// Dependencies holds everything the gateway routes need. Guards are built
// by the caller from configuration; Handler only orders them.
type Dependencies struct {
	Env       string
	Service   string
	BuildInfo models.AppBuildInfo

	Correlation     *guard.Correlation
	Hosts           *guard.HostGuard
	SecurityHeaders *guard.SecurityHeaders
	CSRF            *guard.CSRFGuard
	Authorizer      *guard.Authorizer
	InternalAuth    *guard.InternalAuth
	// AlertCallers restricts who may post security alerts on top of the
	// internal secret. Empty means any authenticated internal caller.
	AlertCallers []string

	// MaxBodyBytes caps every inbound request body.
	MaxBodyBytes int64
	CORS         CORSOptions

	// Upstream handlers, normally *upstream.Forwarder.
	Payments http.Handler
	Chat     http.Handler
	Bus      http.Handler
	Admin    http.Handler

	Metrics        metrics.Recorder
	MetricsHandler http.Handler
	AlertValidator validators.Validator
}

// Handler serves the gateway's HTTP surface.
type Handler struct {
	deps      Dependencies
	cors      guard.Filter
	alertAuth *guard.InternalAuth

	logger *logger.Logger
}

// NewHandler validates deps and builds the per-zone CORS middleware.
func NewHandler(deps Dependencies, logger *logger.Logger) (*Handler, error) {
	if deps.Correlation == nil || deps.Hosts == nil || deps.SecurityHeaders == nil ||
		deps.CSRF == nil || deps.Authorizer == nil || deps.InternalAuth == nil {
		return nil, errMissingDependency
	}
	if deps.Payments == nil || deps.Chat == nil || deps.Bus == nil || deps.Admin == nil {
		return nil, errMissingDependency
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Noop{}
	}
	if deps.MetricsHandler == nil {
		deps.MetricsHandler = http.NotFoundHandler()
	}
	if deps.AlertValidator == nil {
		deps.AlertValidator = validators.NewSecurityAlertValidator()
	}

	cors, err := newCORS(deps.CORS)
	if err != nil {
		return nil, err
	}

	logger.Info().Msg("http handler created")
	return &Handler{
		deps:      deps,
		cors:      cors,
		alertAuth: deps.InternalAuth.WithAllowedCallers(deps.AlertCallers),
		logger:    logger,
	}, nil
}
