package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shamell/trustgate/internal/config"
	"github.com/shamell/trustgate/internal/handler"
	"github.com/shamell/trustgate/internal/logger"
)

const defaultShutdownTimeout = 10 * time.Second

type server struct {
	httpServer *httpServer
	gRPCServer *grpcServer
	background []BackgroundRunner

	shutdownTimeout time.Duration
	logger          *logger.Logger
}

// Option customizes a server built by NewServer.
type Option func(*server)

// WithBackground registers runners started with the listeners. Their
// context is cancelled when shutdown begins and RunServer waits for them.
func WithBackground(runners ...BackgroundRunner) Option {
	return func(s *server) {
		for _, r := range runners {
			if r != nil {
				s.background = append(s.background, r)
			}
		}
	}
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger, opts ...Option) (Server, error) {
	logger.Info().Msg("creating new server...")
	servers := &server{
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
	if servers.shutdownTimeout <= 0 {
		servers.shutdownTimeout = defaultShutdownTimeout
	}

	if handlers != nil && handlers.HTTP != nil && cfg.HTTPAddress != "" {
		servers.httpServer = newHTTPServer(handlers.HTTP.Init(), cfg, logger)
	}
	if handlers != nil && handlers.GRPC != nil && cfg.GRPCAddress != "" {
		servers.gRPCServer = newGRPCServer(handlers.GRPC, cfg, logger)
	}

	if servers.httpServer == nil && servers.gRPCServer == nil {
		return nil, errNoServersAreCreated
	}

	for _, opt := range opts {
		opt(servers)
	}

	return servers, nil
}

func (s *server) RunServer() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	return s.run(ctx)
}

// Shutdown stops every transport, bounded by the configured shutdown
// timeout on top of ctx.
func (s *server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	var errs []error
	for _, t := range s.transports() {
		if err := t.shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s shutdown: %w", t.name(), err))
		}
	}
	return errors.Join(errs...)
}

func (s *server) transports() []transport {
	var out []transport
	if s.httpServer != nil {
		out = append(out, s.httpServer)
	}
	if s.gRPCServer != nil {
		out = append(out, s.gRPCServer)
	}
	return out
}

func (s *server) run(ctx context.Context) error {
	transports := s.transports()
	if len(transports) == 0 {
		return errNoServersAreCreated
	}

	// bind every listener before serving so a taken port fails fast
	for i, t := range transports {
		if err := t.listen(); err != nil {
			for _, opened := range transports[:i] {
				opened.closeListener()
			}
			return fmt.Errorf("%s listen: %w", t.name(), err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErrs := make(chan error, len(transports))
	for _, t := range transports {
		s.logger.Info().Str("transport", t.name()).Msg("launching server")
		go func(t transport) {
			if err := t.serve(); err != nil {
				serveErrs <- fmt.Errorf("%w: %s: %w", errServeFailed, t.name(), err)
			}
		}(t)
	}

	var wg sync.WaitGroup
	for _, r := range s.background {
		wg.Add(1)
		go func(r BackgroundRunner) {
			defer wg.Done()
			r.Run(runCtx)
		}(r)
	}

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info().Msg("stop signal received")
	case runErr = <-serveErrs:
		s.logger.Error().Err(runErr).Str("func", "server.run").Msg("transport failed")
	}

	cancel()
	shutdownErr := s.Shutdown(context.Background())
	wg.Wait()

	if shutdownErr != nil {
		s.logger.Error().Err(shutdownErr).Str("func", "server.run").Msg("error during shutdown")
	} else {
		s.logger.Info().Msg("server Shutdown gracefully")
	}

	return errors.Join(runErr, shutdownErr)
}
