// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shamell/trustgate/internal/secretpolicy"
)

// prodConfig returns a production configuration that passes validation.
func prodConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{Env: "prod"},
		Trust: Trust{
			AllowedHosts:   []string{"api.example.com"},
			AllowedOrigins: []string{"https://app.example.com"},
		},
		Internal: Internal{APISecret: strongSecret},
		Authz:    Authz{RoleHeaderSecret: "Zr4_mQ8vK2pX7nW1tY6b"},
		Storage:  Storage{DB: DB{DSN: "postgres://u:p@db:5432/auth"}},
		Upstreams: Upstreams{
			Chat: Upstream{InternalSecret: "c8Hq_2LmV5xR9tK3wN7j"},
			Bus:  Upstream{InternalSecret: "b3Fz_7QnT1yW5kP9mR2v"},
		},
	}
}

func finalize(cfg *StructuredConfig) error {
	cfg.applyDefaults()
	return cfg.validate()
}

func TestApplyDefaults_Dev(t *testing.T) {
	cfg := &StructuredConfig{}
	cfg.applyDefaults()

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, DefaultServiceName, cfg.App.ServiceName)
	assert.Equal(t, "debug", cfg.App.LogLevel)

	assert.Equal(t, []string{"localhost", "127.0.0.1", "bff", "bff-gateway"}, cfg.Trust.AllowedHosts)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.Trust.AllowedOrigins)
	assert.False(t, Enabled(cfg.Trust.CSRFGuardEnabled))
	assert.True(t, Enabled(cfg.Trust.AcceptLegacySessionCookie))
	assert.True(t, Enabled(cfg.Trust.SecurityHeadersEnabled))
	assert.False(t, Enabled(cfg.Trust.HSTSEnabled))
	assert.True(t, Enabled(cfg.Trust.CSPEnabled))
	assert.Equal(t, "X-Request-ID", cfg.Trust.RequestIDHeader)

	assert.False(t, Enabled(cfg.Internal.RequireSecret))
	assert.Equal(t, "bff", cfg.Internal.ServiceID)
	assert.Empty(t, cfg.Internal.SecurityAlertAllowedCallers)
	assert.Equal(t, "X-Internal-Secret", cfg.Internal.SecretHeader)
	assert.Equal(t, "X-Internal-Service-Id", cfg.Internal.CallerHeader)

	assert.False(t, Enabled(cfg.Authz.EnforceRoutes))
	assert.Equal(t, 2*time.Second, cfg.Authz.SessionTimeout)
	assert.Equal(t, []string{"X-Auth-Roles", "X-Roles"}, cfg.Authz.RoleHeaders)
	assert.Equal(t, "X-Role-Auth", cfg.Authz.RoleSecretHeader)

	assert.Equal(t, "db", cfg.Session.Backend)
	assert.Equal(t, DefaultSweepInterval, cfg.Session.SweepInterval)
	assert.Equal(t, DefaultLocalDSN, cfg.Storage.DB.DSN)
	assert.Equal(t, "sqlite3", cfg.Storage.DB.Driver)

	assert.Equal(t, "http://payments:8082", cfg.Upstreams.Payments.BaseURL)
	assert.Equal(t, "http://chat:8081", cfg.Upstreams.Chat.BaseURL)
	assert.Equal(t, "http://bus:8083", cfg.Upstreams.Bus.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Upstreams.Timeout)
	assert.Equal(t, int64(1<<20), cfg.Upstreams.MaxBodyBytes)
	assert.True(t, Enabled(cfg.Upstreams.ExposeErrors))

	assert.NoError(t, cfg.validate())
}

func TestApplyDefaults_Prod(t *testing.T) {
	cfg := prodConfig()
	cfg.applyDefaults()

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, []string{"api.example.com", "bff", "bff-gateway"}, cfg.Trust.AllowedHosts)
	assert.True(t, Enabled(cfg.Trust.CSRFGuardEnabled))
	assert.False(t, Enabled(cfg.Trust.AcceptLegacySessionCookie))
	assert.True(t, Enabled(cfg.Trust.HSTSEnabled))
	assert.True(t, Enabled(cfg.Internal.RequireSecret))
	assert.True(t, Enabled(cfg.Authz.EnforceRoutes))
	assert.Equal(t, []string{DefaultSecurityAlertCaller}, cfg.Internal.SecurityAlertAllowedCallers)
	assert.False(t, Enabled(cfg.Upstreams.ExposeErrors))
	assert.Equal(t, "pgx", cfg.Storage.DB.Driver)

	assert.NoError(t, cfg.validate())
}

func TestApplyDefaults_NormalizesTierAndServiceID(t *testing.T) {
	cfg := &StructuredConfig{
		App:      App{Env: " TEST "},
		Internal: Internal{ServiceID: "  Gateway-1 ", SecurityAlertAllowedCallers: []string{" A ", "a", ""}},
	}
	cfg.applyDefaults()

	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, "gateway-1", cfg.Internal.ServiceID)
	assert.Equal(t, []string{"a"}, cfg.Internal.SecurityAlertAllowedCallers)
}

func TestApplyDefaults_UpstreamSecretFallback(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		wantChat    string
		wantBus     string
		wantPayment string
	}{
		{name: "dev falls back for payments and chat", env: "dev", wantPayment: strongSecret, wantChat: strongSecret},
		{name: "staging falls back for payments only", env: "staging", wantPayment: strongSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &StructuredConfig{App: App{Env: tt.env}, Internal: Internal{APISecret: strongSecret}}
			cfg.applyDefaults()

			assert.Equal(t, tt.wantPayment, cfg.Upstreams.Payments.InternalSecret)
			assert.Equal(t, tt.wantChat, cfg.Upstreams.Chat.InternalSecret)
			assert.Equal(t, tt.wantBus, cfg.Upstreams.Bus.InternalSecret)
		})
	}
}

func TestApplyDefaults_Clamps(t *testing.T) {
	tests := []struct {
		name  string
		cfg   StructuredConfig
		check func(t *testing.T, cfg *StructuredConfig)
	}{
		{
			name: "low values raised",
			cfg: StructuredConfig{
				Server:    Server{MaxBodyBytes: 1},
				Authz:     Authz{SessionTimeout: time.Millisecond},
				Upstreams: Upstreams{Timeout: time.Millisecond, MaxBodyBytes: 1},
			},
			check: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, MinMaxBodyBytes, cfg.Server.MaxBodyBytes)
				assert.Equal(t, MinSessionTimeout, cfg.Authz.SessionTimeout)
				assert.Equal(t, MinUpstreamTimeout, cfg.Upstreams.Timeout)
				assert.Equal(t, MinUpstreamBodyBytes, cfg.Upstreams.MaxBodyBytes)
			},
		},
		{
			name: "high values lowered",
			cfg: StructuredConfig{
				Server:    Server{MaxBodyBytes: 1 << 30},
				Authz:     Authz{SessionTimeout: time.Hour},
				Upstreams: Upstreams{Timeout: time.Hour, MaxBodyBytes: 1 << 30},
			},
			check: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, MaxMaxBodyBytes, cfg.Server.MaxBodyBytes)
				assert.Equal(t, MaxSessionTimeout, cfg.Authz.SessionTimeout)
				assert.Equal(t, MaxUpstreamTimeout, cfg.Upstreams.Timeout)
				assert.Equal(t, MaxUpstreamBodyBytes, cfg.Upstreams.MaxBodyBytes)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.applyDefaults()
			tt.check(t, &cfg)
		})
	}
}

func TestValidate_Prod(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *StructuredConfig)
		wantErr error
	}{
		{name: "valid", mutate: func(*StructuredConfig) {}},
		{
			name:    "internal secret switched off",
			mutate:  func(cfg *StructuredConfig) { cfg.Internal.RequireSecret = boolPtr(false) },
			wantErr: ErrInvalidInternalConfigs,
		},
		{
			name:    "internal secret missing",
			mutate:  func(cfg *StructuredConfig) { cfg.Internal.APISecret = "" },
			wantErr: ErrInvalidInternalConfigs,
		},
		{
			name:    "internal secret placeholder",
			mutate:  func(cfg *StructuredConfig) { cfg.Internal.APISecret = "change-me-please-0000" },
			wantErr: secretpolicy.ErrPlaceholder,
		},
		{
			name:    "route authz switched off",
			mutate:  func(cfg *StructuredConfig) { cfg.Authz.EnforceRoutes = boolPtr(false) },
			wantErr: ErrInvalidAuthzConfigs,
		},
		{
			name:    "role header secret missing",
			mutate:  func(cfg *StructuredConfig) { cfg.Authz.RoleHeaderSecret = "" },
			wantErr: ErrInvalidAuthzConfigs,
		},
		{
			name:    "role header secret too short",
			mutate:  func(cfg *StructuredConfig) { cfg.Authz.RoleHeaderSecret = "short" },
			wantErr: secretpolicy.ErrTooShort,
		},
		{
			name:    "csrf guard switched off",
			mutate:  func(cfg *StructuredConfig) { cfg.Trust.CSRFGuardEnabled = boolPtr(false) },
			wantErr: ErrInvalidTrustConfigs,
		},
		{
			name:    "legacy cookie switched on",
			mutate:  func(cfg *StructuredConfig) { cfg.Trust.AcceptLegacySessionCookie = boolPtr(true) },
			wantErr: ErrInvalidTrustConfigs,
		},
		{
			name:    "wildcard host",
			mutate:  func(cfg *StructuredConfig) { cfg.Trust.AllowedHosts = []string{"*"} },
			wantErr: ErrInvalidTrustConfigs,
		},
		{
			name:    "wildcard origin",
			mutate:  func(cfg *StructuredConfig) { cfg.Trust.AllowedOrigins = []string{"*"} },
			wantErr: ErrInvalidTrustConfigs,
		},
		{
			name:    "plain http origin",
			mutate:  func(cfg *StructuredConfig) { cfg.Trust.AllowedOrigins = []string{"http://app.example.com"} },
			wantErr: ErrInvalidTrustConfigs,
		},
		{
			name:    "bus secret missing",
			mutate:  func(cfg *StructuredConfig) { cfg.Upstreams.Bus.InternalSecret = "" },
			wantErr: ErrInvalidUpstreamConfigs,
		},
		{
			name:    "chat secret does not fall back",
			mutate:  func(cfg *StructuredConfig) { cfg.Upstreams.Chat.InternalSecret = "" },
			wantErr: ErrInvalidUpstreamConfigs,
		},
		{
			name:    "db backend without dsn",
			mutate:  func(cfg *StructuredConfig) { cfg.Storage.DB.DSN = "" },
			wantErr: ErrInvalidStorageConfigs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := prodConfig()
			tt.mutate(cfg)

			err := finalize(cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_SecretNeverEchoed(t *testing.T) {
	cfg := prodConfig()
	cfg.Internal.APISecret = "your-secret-goes-right-here"

	err := finalize(cfg)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), cfg.Internal.APISecret)
}

func TestValidate_DevRequireSecretNeedsSecret(t *testing.T) {
	cfg := &StructuredConfig{Internal: Internal{RequireSecret: boolPtr(true)}}

	err := finalize(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInternalConfigs)
}

func TestValidate_ServiceID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{id: "bff", valid: true},
		{id: "edge.gw_1-a", valid: true},
		{id: "has space", valid: false},
		{id: "slash/id", valid: false},
		{id: string(make([]byte, 65)), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.valid, validServiceID(tt.id))
		})
	}
}

func TestValidate_SessionBackends(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		wantErr error
	}{
		{name: "jwt with key", session: Session{Backend: "jwt", JWTSignKey: "k"}},
		{name: "jwt without key", session: Session{Backend: "jwt"}, wantErr: ErrInvalidSessionConfigs},
		{name: "remote with url", session: Session{Backend: "remote", AuthURL: "http://auth:8080"}},
		{name: "remote without url", session: Session{Backend: "remote"}, wantErr: ErrInvalidSessionConfigs},
		{name: "remote with relative url", session: Session{Backend: "remote", AuthURL: "/auth"}, wantErr: ErrInvalidSessionConfigs},
		{name: "unknown backend", session: Session{Backend: "ldap"}, wantErr: ErrInvalidSessionConfigs},
		{name: "cache url", session: Session{CacheURL: "redis://cache:6379/0"}},
		{name: "bad cache url", session: Session{CacheURL: "http://cache"}, wantErr: ErrInvalidSessionConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &StructuredConfig{Session: tt.session}

			err := finalize(cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_NormalizesOrigins(t *testing.T) {
	cfg := &StructuredConfig{Trust: Trust{AllowedOrigins: []string{"HTTPS://App.Example.com:443/path"}}}
	require.NoError(t, finalize(cfg))
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Trust.AllowedOrigins)

	cfg = &StructuredConfig{Trust: Trust{AllowedOrigins: []string{"ftp://files"}}}
	err := finalize(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTrustConfigs)
}

func TestDriverFromDSN(t *testing.T) {
	assert.Equal(t, "pgx", driverFromDSN("postgres://u@h/db"))
	assert.Equal(t, "pgx", driverFromDSN("PostgreSQL://u@h/db"))
	assert.Equal(t, "sqlite3", driverFromDSN("file:sessions.db"))
	assert.Equal(t, "", driverFromDSN(""))
}
