// Package grpc exposes the gateway's machine-to-machine gRPC surface.
//
// Only the standard health service is registered. Every RPC passes the
// internal service authenticator before reaching a service implementation.
package grpc

import (
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/shamell/trustgate/internal/guard"
	"github.com/shamell/trustgate/internal/logger"
)

var errMissingInternalAuth = errors.New("grpc handler: internal authenticator is required")

// Handler is the root gRPC transport handler.
//
// It owns the health service state and the interceptors guarding it. A
// handler instance is created once at startup and shared by the gRPC server.
type Handler struct {
	service string
	health  *health.Server
	auth    *guard.InternalAuth

	logger *logger.Logger
}

// NewHandler constructs a [Handler] reporting health for service.
//
// The overall ("") and per-service statuses start as SERVING.
func NewHandler(service string, auth *guard.InternalAuth, logger *logger.Logger) (*Handler, error) {
	if auth == nil {
		return nil, errMissingInternalAuth
	}

	h := &Handler{
		service: service,
		health:  health.NewServer(),
		auth:    auth,
		logger:  logger,
	}
	h.SetServing(true)

	logger.Debug().Str("service", service).Msg("gRPC handler created")
	return h, nil
}

// ServerOptions returns the interceptor chain every gRPC server built from
// this handler must install.
func (h *Handler) ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(h.auth.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(h.auth.StreamServerInterceptor()),
	}
}

// Register attaches the handler's services to s.
func (h *Handler) Register(s grpc.ServiceRegistrar) {
	healthpb.RegisterHealthServer(s, h.health)
}

// SetServing flips the reported status. It is switched off at the start of
// graceful shutdown so load balancers drain the instance.
func (h *Handler) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	if h.service != "" {
		h.health.SetServingStatus(h.service, status)
	}
}

// Shutdown marks every service NOT_SERVING and ends open Watch streams.
func (h *Handler) Shutdown() {
	h.health.Shutdown()
}
