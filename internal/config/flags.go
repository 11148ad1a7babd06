package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// optionalBool is a flag.Value that remembers whether it was set, so an
// absent flag does not override a switch configured elsewhere.
type optionalBool struct {
	value *bool
}

func (b *optionalBool) String() string {
	if b == nil || b.value == nil {
		return ""
	}
	return strconv.FormatBool(*b.value)
}

func (b *optionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	b.value = &v
	return nil
}

func (b *optionalBool) IsBoolFlag() bool { return true }

// ParseFlags parses the gateway's command-line flags from args.
//
// Flags:
//
//	-a http server address in format [host]:[port]
//	-grpc-address grpc server address in format [host]:[port]
//	-env deployment tier (dev, test, staging, prod)
//	-log-level zerolog level name
//	-d database DSN
//	-session-backend db, jwt or remote
//	-auth-url auth service base URL (remote session backend)
//	-cache-url redis URL for the session cache
//	-payments-url / -chat-url / -bus-url upstream base URLs
//	-upstream-timeout upstream call timeout (e.g., "15s")
//	-max-body-bytes inbound request body cap
//	-require-internal-secret / -enforce-route-authz / -csrf-guard tri-state switches
//	-c/-config json file path with configs
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("trustgate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var httpAddress, grpcAddress NetAddress
	var appEnv, logLevel string
	var databaseDSN string
	var sessionBackend, authURL, cacheURL string
	var paymentsURL, chatURL, busURL string
	var upstreamTimeout time.Duration
	var maxBodyBytes int64
	var jsonConfigPath string
	var requireSecret, enforceAuthz, csrfGuard optionalBool

	fs.Var(&httpAddress, "a", "Net address host:port")
	fs.Var(&grpcAddress, "grpc-address", "Net grpc server address host:port")
	fs.StringVar(&appEnv, "env", "", "Deployment tier")
	fs.StringVar(&logLevel, "log-level", "", "Log level")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&sessionBackend, "session-backend", "", "Session backend: db, jwt or remote")
	fs.StringVar(&authURL, "auth-url", "", "Auth service base URL")
	fs.StringVar(&cacheURL, "cache-url", "", "Redis URL for the session cache")
	fs.StringVar(&paymentsURL, "payments-url", "", "Payments upstream base URL")
	fs.StringVar(&chatURL, "chat-url", "", "Chat upstream base URL")
	fs.StringVar(&busURL, "bus-url", "", "Bus upstream base URL")
	fs.DurationVar(&upstreamTimeout, "upstream-timeout", 0, "Upstream timeout (e.g., 15s)")
	fs.Int64Var(&maxBodyBytes, "max-body-bytes", 0, "Inbound request body cap in bytes")
	fs.Var(&requireSecret, "require-internal-secret", "Require the internal secret on internal routes")
	fs.Var(&enforceAuthz, "enforce-route-authz", "Enforce role checks on protected routes")
	fs.Var(&csrfGuard, "csrf-guard", "Enable the CSRF origin guard")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParsingFlags, err)
	}

	return &StructuredConfig{
		App: App{
			Env:      appEnv,
			LogLevel: logLevel,
		},
		Server: Server{
			HTTPAddress:  httpAddress.String(),
			GRPCAddress:  grpcAddress.String(),
			MaxBodyBytes: maxBodyBytes,
		},
		Trust: Trust{
			CSRFGuardEnabled: csrfGuard.value,
		},
		Internal: Internal{
			RequireSecret: requireSecret.value,
		},
		Authz: Authz{
			EnforceRoutes: enforceAuthz.value,
		},
		Session: Session{
			Backend:  sessionBackend,
			AuthURL:  authURL,
			CacheURL: cacheURL,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Upstreams: Upstreams{
			Payments: Upstream{BaseURL: paymentsURL},
			Chat:     Upstream{BaseURL: chatURL},
			Bus:      Upstream{BaseURL: busURL},
			Timeout:  upstreamTimeout,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Set parses the input string of form host:port and populates the NetAddress.
// An empty host binds every interface. Otherwise the host must be an IP
// address or "localhost".
func (a *NetAddress) Set(s string) error {
	host, rawPort, err := net.SplitHostPort(s)
	if err != nil {
		return errors.New("need address in a form `host:port`")
	}

	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in 1..65535")
	}

	if host != "" && host != "localhost" && net.ParseIP(host) == nil {
		return errors.New("incorrect IP-address provided")
	}

	a.Host = host
	a.Port = port
	return nil
}
