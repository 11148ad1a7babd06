package server

import (
	"context"
	"errors"
	"net"

	"google.golang.org/grpc"

	"github.com/shamell/trustgate/internal/config"
	myGRPC "github.com/shamell/trustgate/internal/handler/grpc"
	"github.com/shamell/trustgate/internal/logger"
)

type grpcServer struct {
	handler *myGRPC.Handler

	server   *grpc.Server
	address  string
	listener net.Listener

	logger *logger.Logger
}

func newGRPCServer(handler *myGRPC.Handler, cfg config.Server, logger *logger.Logger) *grpcServer {
	s := grpc.NewServer(handler.ServerOptions()...)
	handler.Register(s)

	return &grpcServer{
		handler: handler,
		server:  s,
		address: cfg.GRPCAddress,
		logger:  logger,
	}
}

func (g *grpcServer) name() string { return "grpc" }

func (g *grpcServer) listen() error {
	if g.listener != nil {
		return nil
	}
	lis, err := net.Listen("tcp", g.address)
	if err != nil {
		return err
	}
	g.listener = lis
	return nil
}

func (g *grpcServer) closeListener() {
	if g.listener != nil {
		_ = g.listener.Close()
	}
}

func (g *grpcServer) serve() error {
	g.logger.Info().Str("address", g.listener.Addr().String()).Msg("gRPC server listening")
	if err := g.server.Serve(g.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// shutdown reports NOT_SERVING first, then waits for in-flight RPCs until
// ctx expires and force-closes whatever is left.
func (g *grpcServer) shutdown(ctx context.Context) error {
	g.logger.Info().Msg("gRPC server Shutdown")
	g.handler.SetServing(false)
	g.handler.Shutdown()

	stopped := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		g.server.Stop()
		return ctx.Err()
	}
}
