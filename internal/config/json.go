package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] for the JSON file source.
// Durations accept either Go duration strings ("15s") or nanosecond numbers.
type StructuredJSONConfig struct {
	App struct {
		Env         string `json:"env"`
		ServiceName string `json:"service_name"`
		Version     string `json:"version"`
		LogLevel    string `json:"log_level"`
	} `json:"app,omitempty"`

	Server struct {
		HTTPAddress       string   `json:"http_address"`
		GRPCAddress       string   `json:"grpc_address"`
		ReadHeaderTimeout Duration `json:"read_header_timeout"`
		IdleTimeout       Duration `json:"idle_timeout"`
		ShutdownTimeout   Duration `json:"shutdown_timeout"`
		MaxBodyBytes      int64    `json:"max_body_bytes"`
	} `json:"server,omitempty"`

	Trust struct {
		AllowedHosts              []string `json:"allowed_hosts"`
		AllowedOrigins            []string `json:"allowed_origins"`
		CSRFGuardEnabled          *bool    `json:"csrf_guard_enabled"`
		AcceptLegacySessionCookie *bool    `json:"accept_legacy_session_cookie"`
		SecurityHeadersEnabled    *bool    `json:"security_headers_enabled"`
		HSTSEnabled               *bool    `json:"hsts_enabled"`
		CSPEnabled                *bool    `json:"csp_enabled"`
		CSP                       string   `json:"csp"`
		RequestIDHeader           string   `json:"request_id_header"`
	} `json:"trust,omitempty"`

	Internal struct {
		RequireSecret               *bool    `json:"require_secret"`
		APISecret                   string   `json:"api_secret"`
		ServiceID                   string   `json:"service_id"`
		ServiceHosts                []string `json:"service_hosts"`
		SecurityAlertAllowedCallers []string `json:"security_alert_allowed_callers"`
		SecretHeader                string   `json:"secret_header"`
		CallerHeader                string   `json:"caller_header"`
	} `json:"internal,omitempty"`

	Authz struct {
		EnforceRoutes    *bool    `json:"enforce_routes"`
		RoleHeaderSecret string   `json:"role_header_secret"`
		RoleHeaders      []string `json:"role_headers"`
		RoleSecretHeader string   `json:"role_secret_header"`
		SessionTimeout   Duration `json:"session_timeout"`
	} `json:"authz,omitempty"`

	Session struct {
		Backend       string   `json:"backend"`
		JWTSignKey    string   `json:"jwt_sign_key"`
		JWTIssuer     string   `json:"jwt_issuer"`
		AuthURL       string   `json:"auth_url"`
		CacheURL      string   `json:"cache_url"`
		CacheTTL      Duration `json:"cache_ttl"`
		SweepInterval Duration `json:"sweep_interval"`
		SweepGrace    Duration `json:"sweep_grace"`
	} `json:"session,omitempty"`

	Storage struct {
		DB struct {
			Driver string `json:"driver"`
			DSN    string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Upstreams struct {
		Payments     jsonUpstream `json:"payments"`
		Chat         jsonUpstream `json:"chat"`
		Bus          jsonUpstream `json:"bus"`
		Timeout      Duration     `json:"timeout"`
		MaxBodyBytes int64        `json:"max_body_bytes"`
		ExposeErrors *bool        `json:"expose_errors"`
	} `json:"upstreams,omitempty"`
}

type jsonUpstream struct {
	BaseURL        string `json:"base_url"`
	InternalSecret string `json:"internal_secret"`
}

func (u jsonUpstream) upstream() Upstream {
	return Upstream{BaseURL: u.BaseURL, InternalSecret: u.InternalSecret}
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadingJSON, err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	decoder := json.NewDecoder(jsonFile)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingJSON, err)
	}

	cfg := &StructuredConfig{
		App: App{
			Env:         jsonCfg.App.Env,
			ServiceName: jsonCfg.App.ServiceName,
			Version:     jsonCfg.App.Version,
			LogLevel:    jsonCfg.App.LogLevel,
		},
		Server: Server{
			HTTPAddress:       jsonCfg.Server.HTTPAddress,
			GRPCAddress:       jsonCfg.Server.GRPCAddress,
			ReadHeaderTimeout: time.Duration(jsonCfg.Server.ReadHeaderTimeout),
			IdleTimeout:       time.Duration(jsonCfg.Server.IdleTimeout),
			ShutdownTimeout:   time.Duration(jsonCfg.Server.ShutdownTimeout),
			MaxBodyBytes:      jsonCfg.Server.MaxBodyBytes,
		},
		Trust: Trust{
			AllowedHosts:              jsonCfg.Trust.AllowedHosts,
			AllowedOrigins:            jsonCfg.Trust.AllowedOrigins,
			CSRFGuardEnabled:          jsonCfg.Trust.CSRFGuardEnabled,
			AcceptLegacySessionCookie: jsonCfg.Trust.AcceptLegacySessionCookie,
			SecurityHeadersEnabled:    jsonCfg.Trust.SecurityHeadersEnabled,
			HSTSEnabled:               jsonCfg.Trust.HSTSEnabled,
			CSPEnabled:                jsonCfg.Trust.CSPEnabled,
			CSP:                       jsonCfg.Trust.CSP,
			RequestIDHeader:           jsonCfg.Trust.RequestIDHeader,
		},
		Internal: Internal{
			RequireSecret:               jsonCfg.Internal.RequireSecret,
			APISecret:                   jsonCfg.Internal.APISecret,
			ServiceID:                   jsonCfg.Internal.ServiceID,
			ServiceHosts:                jsonCfg.Internal.ServiceHosts,
			SecurityAlertAllowedCallers: jsonCfg.Internal.SecurityAlertAllowedCallers,
			SecretHeader:                jsonCfg.Internal.SecretHeader,
			CallerHeader:                jsonCfg.Internal.CallerHeader,
		},
		Authz: Authz{
			EnforceRoutes:    jsonCfg.Authz.EnforceRoutes,
			RoleHeaderSecret: jsonCfg.Authz.RoleHeaderSecret,
			RoleHeaders:      jsonCfg.Authz.RoleHeaders,
			RoleSecretHeader: jsonCfg.Authz.RoleSecretHeader,
			SessionTimeout:   time.Duration(jsonCfg.Authz.SessionTimeout),
		},
		Session: Session{
			Backend:       jsonCfg.Session.Backend,
			JWTSignKey:    jsonCfg.Session.JWTSignKey,
			JWTIssuer:     jsonCfg.Session.JWTIssuer,
			AuthURL:       jsonCfg.Session.AuthURL,
			CacheURL:      jsonCfg.Session.CacheURL,
			CacheTTL:      time.Duration(jsonCfg.Session.CacheTTL),
			SweepInterval: time.Duration(jsonCfg.Session.SweepInterval),
			SweepGrace:    time.Duration(jsonCfg.Session.SweepGrace),
		},
		Storage: Storage{
			DB: DB{
				Driver: jsonCfg.Storage.DB.Driver,
				DSN:    jsonCfg.Storage.DB.DSN,
			},
		},
		Upstreams: Upstreams{
			Payments:     jsonCfg.Upstreams.Payments.upstream(),
			Chat:         jsonCfg.Upstreams.Chat.upstream(),
			Bus:          jsonCfg.Upstreams.Bus.upstream(),
			Timeout:      time.Duration(jsonCfg.Upstreams.Timeout),
			MaxBodyBytes: jsonCfg.Upstreams.MaxBodyBytes,
			ExposeErrors: jsonCfg.Upstreams.ExposeErrors,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case nil:
		return nil
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
