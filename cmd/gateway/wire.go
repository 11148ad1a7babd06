package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shamell/trustgate/internal/config"
	"github.com/shamell/trustgate/internal/guard"
	myHTTP "github.com/shamell/trustgate/internal/handler/http"
	"github.com/shamell/trustgate/internal/logger"
	"github.com/shamell/trustgate/internal/metrics"
	"github.com/shamell/trustgate/internal/session"
	"github.com/shamell/trustgate/internal/store"
	"github.com/shamell/trustgate/internal/upstream"
	"github.com/shamell/trustgate/internal/workers"
	"github.com/shamell/trustgate/models"
)

const metricsNamespace = "trustgate"

// sessionComponents is the session backend plus whatever it owns.
type sessionComponents struct {
	Resolver session.Resolver
	// Sweeper is nil unless the db backend runs with a sweep interval.
	Sweeper workers.Worker

	db    *store.DB
	redis *redis.Client
}

func (c *sessionComponents) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
	if c.db != nil {
		_ = c.db.Close()
	}
}

func newSessionComponents(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (*sessionComponents, error) {
	c := &sessionComponents{}
	opts := session.Options{
		Backend:    cfg.Session.Backend,
		JWTSignKey: cfg.Session.JWTSignKey,
		JWTIssuer:  cfg.Session.JWTIssuer,
		Remote: session.RemoteOptions{
			BaseURL:         cfg.Session.AuthURL,
			Timeout:         cfg.Authz.SessionTimeout,
			InternalSecret:  cfg.Internal.APISecret,
			CallerID:        cfg.Internal.ServiceID,
			SecretHeader:    cfg.Internal.SecretHeader,
			CallerHeader:    cfg.Internal.CallerHeader,
			RequestIDHeader: cfg.Trust.RequestIDHeader,
		},
	}

	if cfg.Session.Backend == session.BackendDB {
		db, err := store.Open(ctx, cfg.Storage.DB.Driver, cfg.Storage.DB.DSN, log)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		c.db = db
		if err = db.Migrate(); err != nil {
			c.Close()
			return nil, fmt.Errorf("migrate session store: %w", err)
		}

		repo := store.NewSessionRepository(db, log)
		opts.Repository = repo
		if cfg.Session.SweepInterval > 0 {
			c.Sweeper = workers.NewSessionSweeper(repo, cfg.Session.SweepInterval, cfg.Session.SweepGrace, log)
		}
	}

	resolver, err := session.New(opts)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Resolver = resolver

	if cfg.Session.CacheURL != "" {
		client, err := session.NewRedisClient(ctx, cfg.Session.CacheURL)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("connect session cache: %w", err)
		}
		c.redis = client
		c.Resolver = session.NewCachedResolver(resolver, client, cfg.Session.CacheTTL)
	}

	log.Info().
		Str("backend", cfg.Session.Backend).
		Bool("cache", c.redis != nil).
		Bool("sweeper", c.Sweeper != nil).
		Msg("session backend ready")
	return c, nil
}

type gatewayGuards struct {
	correlation     *guard.Correlation
	hosts           *guard.HostGuard
	securityHeaders *guard.SecurityHeaders
	csrf            *guard.CSRFGuard
	authorizer      *guard.Authorizer
	internalAuth    *guard.InternalAuth
}

func newGuards(cfg *config.StructuredConfig, resolver session.Resolver, observer guard.DenialObserver, log *logger.Logger) (*gatewayGuards, error) {
	if resolver == nil {
		return nil, errors.New("session resolver is required")
	}
	opts := []guard.Option{guard.WithObserver(observer), guard.WithLogger(log)}
	legacyCookie := config.Enabled(cfg.Trust.AcceptLegacySessionCookie)

	authorizer, err := guard.NewAuthorizer(guard.AuthorizerOptions{
		Enforce:  config.Enabled(cfg.Authz.EnforceRoutes),
		Resolver: resolver,
		Roles: guard.NewRoleExtractor(guard.RoleExtractorOptions{
			Secret:       cfg.Authz.RoleHeaderSecret,
			RoleHeaders:  cfg.Authz.RoleHeaders,
			SecretHeader: cfg.Authz.RoleSecretHeader,
		}),
		SessionTimeout:     cfg.Authz.SessionTimeout,
		AcceptLegacyCookie: legacyCookie,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("authorizer: %w", err)
	}

	return &gatewayGuards{
		correlation: guard.NewCorrelation(cfg.Trust.RequestIDHeader, opts...),
		hosts:       guard.NewHostGuard(cfg.Trust.AllowedHosts, opts...),
		securityHeaders: guard.NewSecurityHeaders(guard.SecurityHeadersOptions{
			Enabled:  config.Enabled(cfg.Trust.SecurityHeadersEnabled),
			HSTS:     config.Enabled(cfg.Trust.HSTSEnabled),
			CSP:      config.Enabled(cfg.Trust.CSPEnabled),
			CSPValue: cfg.Trust.CSP,
		}),
		csrf: guard.NewCSRFGuard(guard.CSRFOptions{
			Enabled:            config.Enabled(cfg.Trust.CSRFGuardEnabled),
			AllowedOrigins:     cfg.Trust.AllowedOrigins,
			AcceptLegacyCookie: legacyCookie,
		}, opts...),
		authorizer: authorizer,
		internalAuth: guard.NewInternalAuth(guard.InternalAuthOptions{
			Required:     config.Enabled(cfg.Internal.RequireSecret),
			Secret:       cfg.Internal.APISecret,
			SecretHeader: cfg.Internal.SecretHeader,
			CallerHeader: cfg.Internal.CallerHeader,
		}, opts...),
	}, nil
}

func newForwarder(cfg *config.StructuredConfig, name, stripPrefix string, up config.Upstream) *upstream.Forwarder {
	return upstream.New(upstream.Options{
		Name:             name,
		BaseURL:          up.BaseURL,
		StripPrefix:      stripPrefix,
		Timeout:          cfg.Upstreams.Timeout,
		InternalSecret:   up.InternalSecret,
		CallerID:         cfg.Internal.ServiceID,
		SecretHeader:     cfg.Internal.SecretHeader,
		CallerHeader:     cfg.Internal.CallerHeader,
		RequestIDHeader:  cfg.Trust.RequestIDHeader,
		MaxRequestBytes:  cfg.Server.MaxBodyBytes,
		MaxResponseBytes: cfg.Upstreams.MaxBodyBytes,
		ExposeErrors:     config.Enabled(cfg.Upstreams.ExposeErrors),
	})
}

func newHTTPDependencies(cfg *config.StructuredConfig, build models.AppBuildInfo, g *gatewayGuards, prom *metrics.Prom) myHTTP.Dependencies {
	return myHTTP.Dependencies{
		Env:       cfg.App.Env,
		Service:   cfg.App.ServiceName,
		BuildInfo: build,

		Correlation:     g.correlation,
		Hosts:           g.hosts,
		SecurityHeaders: g.securityHeaders,
		CSRF:            g.csrf,
		Authorizer:      g.authorizer,
		InternalAuth:    g.internalAuth,
		AlertCallers:    cfg.Internal.SecurityAlertAllowedCallers,

		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		CORS: myHTTP.CORSOptions{
			Origins:              cfg.Trust.AllowedOrigins,
			AllowInsecureOrigins: !cfg.ProductionLike(),
			RequestIDHeader:      cfg.Trust.RequestIDHeader,
		},

		Payments: newForwarder(cfg, "payments", "/payments", cfg.Upstreams.Payments),
		Chat:     newForwarder(cfg, "chat", "/chat", cfg.Upstreams.Chat),
		Bus:      newForwarder(cfg, "bus", "/bus", cfg.Upstreams.Bus),
		// admin routes live on the payments service under their own path
		Admin: newForwarder(cfg, "payments", "", cfg.Upstreams.Payments),

		Metrics:        prom,
		MetricsHandler: prom.Handler(),
	}
}
