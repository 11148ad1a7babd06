package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/shamell/trustgate/internal/config"
	"github.com/shamell/trustgate/internal/logger"
)

type httpServer struct {
	server   *http.Server
	listener net.Listener

	logger *logger.Logger
}

func newHTTPServer(handler http.Handler, cfg config.Server, logger *logger.Logger) *httpServer {
	return &httpServer{
		server: &http.Server{
			Addr:              cfg.HTTPAddress,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		logger: logger,
	}
}

func (h *httpServer) name() string { return "http" }

func (h *httpServer) listen() error {
	if h.listener != nil {
		return nil
	}
	lis, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		return err
	}
	h.listener = lis
	return nil
}

func (h *httpServer) closeListener() {
	if h.listener != nil {
		_ = h.listener.Close()
	}
}

func (h *httpServer) serve() error {
	h.logger.Info().Str("address", h.listener.Addr().String()).Msg("HTTP server listening")
	if err := h.server.Serve(h.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *httpServer) shutdown(ctx context.Context) error {
	h.logger.Info().Msg("HTTP server Shutdown")
	return h.server.Shutdown(ctx)
}
