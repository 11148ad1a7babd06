// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/shamell/trustgate/internal/guard"
	"github.com/shamell/trustgate/internal/secretpolicy"
	"github.com/shamell/trustgate/internal/session"
	"github.com/shamell/trustgate/internal/store"
)

// Defaults and bounds applied by applyDefaults.
const (
	DefaultEnv         = "dev"
	DefaultServiceName = "trustgate"
	DefaultServiceID   = "bff"
	DefaultHTTPAddress = ":8080"

	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second

	DefaultMaxBodyBytes int64 = 1 << 20
	MinMaxBodyBytes     int64 = 16 << 10
	MaxMaxBodyBytes     int64 = 10 << 20

	DefaultUpstreamTimeout = 15 * time.Second
	MinUpstreamTimeout     = time.Second
	MaxUpstreamTimeout     = 60 * time.Second

	DefaultUpstreamBodyBytes int64 = 1 << 20
	MinUpstreamBodyBytes     int64 = 16 << 10
	MaxUpstreamBodyBytes     int64 = 20 << 20

	MinSessionTimeout = 100 * time.Millisecond
	MaxSessionTimeout = 10 * time.Second

	DefaultSessionCacheTTL = 30 * time.Second
	DefaultSweepInterval   = 10 * time.Minute

	DefaultSecurityAlertCaller = "security-reporter"

	// DefaultLocalDSN is used by the db session backend in dev and test when
	// no DSN is configured.
	DefaultLocalDSN = "file::memory:?cache=shared"

	maxServiceIDLength = 64
)

var (
	defaultServiceHosts   = []string{"bff", "bff-gateway"}
	defaultLocalHosts     = []string{"localhost", "127.0.0.1"}
	defaultAllowedOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

	defaultPaymentsURL = "http://payments:8082"
	defaultChatURL     = "http://chat:8081"
	defaultBusURL      = "http://bus:8083"
)

// ProductionLike reports whether the configured tier is prod, production or
// staging.
func (cfg *StructuredConfig) ProductionLike() bool {
	return secretpolicy.IsProductionLike(cfg.App.Env)
}

// applyDefaults normalizes the merged configuration and fills every unset
// value with its tier-dependent default. Numeric limits are clamped.
func (cfg *StructuredConfig) applyDefaults() {
	cfg.App.Env = strings.ToLower(strings.TrimSpace(cfg.App.Env))
	if cfg.App.Env == "" {
		cfg.App.Env = DefaultEnv
	}
	prodLike := cfg.ProductionLike()
	local := secretpolicy.IsLocal(cfg.App.Env)

	if cfg.App.ServiceName == "" {
		cfg.App.ServiceName = DefaultServiceName
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "debug"
		if prodLike {
			cfg.App.LogLevel = "info"
		}
	}

	cfg.applyServerDefaults()
	cfg.applyTrustDefaults(prodLike, local)
	cfg.applyInternalDefaults(prodLike)

	defaultBool(&cfg.Authz.EnforceRoutes, prodLike)
	cfg.Authz.RoleHeaderSecret = strings.TrimSpace(cfg.Authz.RoleHeaderSecret)
	cfg.Authz.RoleHeaders = trimList(cfg.Authz.RoleHeaders)
	if len(cfg.Authz.RoleHeaders) == 0 {
		cfg.Authz.RoleHeaders = []string{guard.DefaultRolesHeader, guard.DefaultLegacyRolesHeader}
	}
	cfg.Authz.RoleSecretHeader = headerName(cfg.Authz.RoleSecretHeader, guard.DefaultRoleSecretHeader)
	if cfg.Authz.SessionTimeout <= 0 {
		cfg.Authz.SessionTimeout = guard.DefaultSessionTimeout
	}
	cfg.Authz.SessionTimeout = clamp(cfg.Authz.SessionTimeout, MinSessionTimeout, MaxSessionTimeout)

	cfg.applySessionDefaults(local)
	cfg.applyUpstreamDefaults(prodLike, local)
}

func (cfg *StructuredConfig) applyServerDefaults() {
	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = DefaultHTTPAddress
	}
	if cfg.Server.ReadHeaderTimeout <= 0 {
		cfg.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	cfg.Server.MaxBodyBytes = clamp(cfg.Server.MaxBodyBytes, MinMaxBodyBytes, MaxMaxBodyBytes)
}

func (cfg *StructuredConfig) applyTrustDefaults(prodLike, local bool) {
	hosts := normalizeList(cfg.Trust.AllowedHosts)
	if local {
		hosts = append(hosts, defaultLocalHosts...)
	}
	serviceHosts := normalizeList(cfg.Internal.ServiceHosts)
	if len(serviceHosts) == 0 {
		serviceHosts = slices.Clone(defaultServiceHosts)
	}
	cfg.Internal.ServiceHosts = serviceHosts
	cfg.Trust.AllowedHosts = dedupe(append(hosts, serviceHosts...))

	origins := trimList(cfg.Trust.AllowedOrigins)
	if len(origins) == 0 {
		origins = slices.Clone(defaultAllowedOrigins)
	}
	cfg.Trust.AllowedOrigins = origins

	defaultBool(&cfg.Trust.CSRFGuardEnabled, prodLike)
	defaultBool(&cfg.Trust.AcceptLegacySessionCookie, local)
	defaultBool(&cfg.Trust.SecurityHeadersEnabled, true)
	defaultBool(&cfg.Trust.HSTSEnabled, prodLike)
	defaultBool(&cfg.Trust.CSPEnabled, true)
	cfg.Trust.CSP = strings.TrimSpace(cfg.Trust.CSP)
	cfg.Trust.RequestIDHeader = headerName(cfg.Trust.RequestIDHeader, guard.DefaultRequestIDHeader)
}

func (cfg *StructuredConfig) applyInternalDefaults(prodLike bool) {
	defaultBool(&cfg.Internal.RequireSecret, prodLike)
	cfg.Internal.APISecret = strings.TrimSpace(cfg.Internal.APISecret)

	cfg.Internal.ServiceID = strings.ToLower(strings.TrimSpace(cfg.Internal.ServiceID))
	if cfg.Internal.ServiceID == "" {
		cfg.Internal.ServiceID = DefaultServiceID
	}

	callers := normalizeList(cfg.Internal.SecurityAlertAllowedCallers)
	if len(callers) == 0 && prodLike {
		callers = []string{DefaultSecurityAlertCaller}
	}
	cfg.Internal.SecurityAlertAllowedCallers = dedupe(callers)

	cfg.Internal.SecretHeader = headerName(cfg.Internal.SecretHeader, guard.DefaultInternalSecretHeader)
	cfg.Internal.CallerHeader = headerName(cfg.Internal.CallerHeader, guard.DefaultInternalCallerHeader)
}

func headerName(name, def string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return def
}

func (cfg *StructuredConfig) applySessionDefaults(local bool) {
	cfg.Session.Backend = strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = session.BackendDB
	}
	if cfg.Session.CacheURL != "" && cfg.Session.CacheTTL <= 0 {
		cfg.Session.CacheTTL = DefaultSessionCacheTTL
	}
	if cfg.Session.SweepInterval < 0 {
		cfg.Session.SweepInterval = 0
	}
	if cfg.Session.Backend == session.BackendDB && cfg.Session.SweepInterval == 0 {
		cfg.Session.SweepInterval = DefaultSweepInterval
	}

	cfg.Storage.DB.DSN = strings.TrimSpace(cfg.Storage.DB.DSN)
	if cfg.Storage.DB.DSN == "" && cfg.Session.Backend == session.BackendDB && local {
		cfg.Storage.DB.DSN = DefaultLocalDSN
	}
	cfg.Storage.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.DB.Driver))
	if cfg.Storage.DB.Driver == "" {
		cfg.Storage.DB.Driver = driverFromDSN(cfg.Storage.DB.DSN)
	}
}

func (cfg *StructuredConfig) applyUpstreamDefaults(prodLike, local bool) {
	u := &cfg.Upstreams
	setDefault(&u.Payments.BaseURL, defaultPaymentsURL)
	setDefault(&u.Chat.BaseURL, defaultChatURL)
	setDefault(&u.Bus.BaseURL, defaultBusURL)

	u.Payments.InternalSecret = strings.TrimSpace(u.Payments.InternalSecret)
	u.Chat.InternalSecret = strings.TrimSpace(u.Chat.InternalSecret)
	u.Bus.InternalSecret = strings.TrimSpace(u.Bus.InternalSecret)
	setDefault(&u.Payments.InternalSecret, cfg.Internal.APISecret)
	if local {
		setDefault(&u.Chat.InternalSecret, cfg.Internal.APISecret)
	}

	if u.Timeout <= 0 {
		u.Timeout = DefaultUpstreamTimeout
	}
	u.Timeout = clamp(u.Timeout, MinUpstreamTimeout, MaxUpstreamTimeout)
	if u.MaxBodyBytes <= 0 {
		u.MaxBodyBytes = DefaultUpstreamBodyBytes
	}
	u.MaxBodyBytes = clamp(u.MaxBodyBytes, MinUpstreamBodyBytes, MaxUpstreamBodyBytes)
	defaultBool(&u.ExposeErrors, !prodLike)
}

// validate checks that the final merged [StructuredConfig] is internally
// consistent and safe for its tier. It runs after applyDefaults and
// reports every violation at once.
func (cfg *StructuredConfig) validate() error {
	var errs []error
	fail := func(kind error, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)))
	}
	policy := func(kind error, key, value string, required bool) {
		if err := secretpolicy.Validate(cfg.App.Env, key, value, required); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", kind, err))
		}
	}
	env := cfg.App.Env
	prodLike := cfg.ProductionLike()

	if !validServiceID(cfg.Internal.ServiceID) {
		fail(ErrInvalidAppConfigs, "INTERNAL_SERVICE_ID must be 1..64 chars of [A-Za-z0-9-_.]")
	}

	// trust boundary
	if prodLike {
		if slices.Contains(cfg.Trust.AllowedHosts, "*") {
			fail(ErrInvalidTrustConfigs, "TRUST_ALLOWED_HOSTS must not contain '*' in %s", env)
		}
		if !Enabled(cfg.Trust.CSRFGuardEnabled) {
			fail(ErrInvalidTrustConfigs, "TRUST_CSRF_GUARD_ENABLED must be true in %s", env)
		}
		if Enabled(cfg.Trust.AcceptLegacySessionCookie) {
			fail(ErrInvalidTrustConfigs, "TRUST_ACCEPT_LEGACY_SESSION_COOKIE must be false in %s", env)
		}
	}
	origins, err := guard.NormalizeOrigins(cfg.Trust.AllowedOrigins)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: TRUST_ALLOWED_ORIGINS: %w", ErrInvalidTrustConfigs, err))
	} else {
		cfg.Trust.AllowedOrigins = origins
	}
	if prodLike {
		for _, o := range origins {
			if o == "*" {
				fail(ErrInvalidTrustConfigs, "TRUST_ALLOWED_ORIGINS must not contain '*' in %s", env)
			} else if !strings.HasPrefix(o, "https://") {
				fail(ErrInvalidTrustConfigs, "TRUST_ALLOWED_ORIGINS must use https in %s: %s", env, o)
			}
		}
	}

	// internal auth
	requireSecret := Enabled(cfg.Internal.RequireSecret)
	if prodLike && !requireSecret {
		fail(ErrInvalidInternalConfigs, "INTERNAL_REQUIRE_SECRET must be true in %s", env)
	}
	if requireSecret && cfg.Internal.APISecret == "" {
		fail(ErrInvalidInternalConfigs, "INTERNAL_API_SECRET must be set when INTERNAL_REQUIRE_SECRET is true")
	} else {
		policy(ErrInvalidInternalConfigs, "INTERNAL_API_SECRET", cfg.Internal.APISecret, requireSecret)
	}

	// route authorization
	enforce := Enabled(cfg.Authz.EnforceRoutes)
	if prodLike && !enforce {
		fail(ErrInvalidAuthzConfigs, "AUTHZ_ENFORCE_ROUTES must be true in %s", env)
	}
	if enforce && cfg.Authz.RoleHeaderSecret == "" {
		fail(ErrInvalidAuthzConfigs, "AUTHZ_ROLE_HEADER_SECRET must be set when AUTHZ_ENFORCE_ROUTES is true")
	} else {
		policy(ErrInvalidAuthzConfigs, "AUTHZ_ROLE_HEADER_SECRET", cfg.Authz.RoleHeaderSecret, enforce)
	}

	errs = append(errs, cfg.validateSession()...)

	// upstreams
	for _, u := range []struct {
		name string
		cfg  Upstream
	}{
		{"PAYMENTS", cfg.Upstreams.Payments},
		{"CHAT", cfg.Upstreams.Chat},
		{"BUS", cfg.Upstreams.Bus},
	} {
		if !validHTTPURL(u.cfg.BaseURL) {
			fail(ErrInvalidUpstreamConfigs, "UPSTREAM_%s_BASE_URL must be an absolute http(s) URL", u.name)
		}
		policy(ErrInvalidUpstreamConfigs, "UPSTREAM_"+u.name+"_INTERNAL_SECRET", u.cfg.InternalSecret, true)
	}

	return errors.Join(errs...)
}

func (cfg *StructuredConfig) validateSession() []error {
	var errs []error
	switch cfg.Session.Backend {
	case session.BackendDB:
		if cfg.Storage.DB.DSN == "" {
			errs = append(errs, fmt.Errorf("%w: STORAGE_DB_DATABASE_URI must be set for the db session backend", ErrInvalidStorageConfigs))
		}
		if cfg.Storage.DB.Driver != store.DriverPostgres && cfg.Storage.DB.Driver != store.DriverSQLite {
			errs = append(errs, fmt.Errorf("%w: STORAGE_DB_DRIVER must be %s or %s", ErrInvalidStorageConfigs, store.DriverPostgres, store.DriverSQLite))
		}
	case session.BackendJWT:
		if strings.TrimSpace(cfg.Session.JWTSignKey) == "" {
			errs = append(errs, fmt.Errorf("%w: SESSION_JWT_SIGN_KEY must be set for the jwt session backend", ErrInvalidSessionConfigs))
		} else if err := secretpolicy.Validate(cfg.App.Env, "SESSION_JWT_SIGN_KEY", cfg.Session.JWTSignKey, true); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidSessionConfigs, err))
		}
	case session.BackendRemote:
		if !validHTTPURL(cfg.Session.AuthURL) {
			errs = append(errs, fmt.Errorf("%w: SESSION_AUTH_URL must be an absolute http(s) URL", ErrInvalidSessionConfigs))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown SESSION_BACKEND %q", ErrInvalidSessionConfigs, cfg.Session.Backend))
	}

	if cfg.Session.CacheURL != "" {
		if u, err := url.Parse(cfg.Session.CacheURL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errs = append(errs, fmt.Errorf("%w: SESSION_CACHE_URL must be a redis:// or rediss:// URL", ErrInvalidSessionConfigs))
		}
	}
	return errs
}

func driverFromDSN(dsn string) string {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return store.DriverPostgres
	case dsn == "":
		return ""
	default:
		return store.DriverSQLite
	}
}

func validServiceID(id string) bool {
	if id == "" || len(id) > maxServiceIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func defaultBool(p **bool, value bool) {
	if *p == nil {
		*p = &value
	}
}

func setDefault(p *string, value string) {
	if strings.TrimSpace(*p) == "" {
		*p = value
	}
}

func clamp[T int64 | time.Duration](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalizeList(in []string) []string {
	out := trimList(in)
	for i := range out {
		out[i] = strings.ToLower(out[i])
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
