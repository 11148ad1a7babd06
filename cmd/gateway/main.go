package main

import (
	"context"
	"fmt"

	"github.com/shamell/trustgate/internal/config"
	"github.com/shamell/trustgate/internal/handler"
	"github.com/shamell/trustgate/internal/logger"
	"github.com/shamell/trustgate/internal/metrics"
	"github.com/shamell/trustgate/internal/server"
	"github.com/shamell/trustgate/internal/workers"
	"github.com/shamell/trustgate/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("gateway")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if !logger.SetLevel(cfg.App.LogLevel) {
		log.Warn().Str("level", cfg.App.LogLevel).Msg("unknown log level, keeping debug")
	}

	log.Info().
		Str("env", cfg.App.Env).
		Str("session_backend", cfg.Session.Backend).
		Str("http_address", cfg.Server.HTTPAddress).
		Str("grpc_address", cfg.Server.GRPCAddress).
		Msg("received configs")

	ctx := context.Background()

	sessions, err := newSessionComponents(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating session backend")
	}
	defer sessions.Close()

	prom := metrics.NewProm(metricsNamespace)
	guards, err := newGuards(cfg, sessions.Resolver, prom, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating guards")
	}

	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit).WithVersion(cfg.App.Version)
	deps := newHTTPDependencies(cfg, buildInfo, guards, prom)
	handlers, err := handler.NewHandlers(deps, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	background := workers.NewWorkers(sessions.Sweeper)
	srv, err := server.NewServer(handlers, cfg.Server, log, server.WithBackground(background))
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	if err = srv.RunServer(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}
}

func printBuildInfo() {
	info := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	fmt.Printf("Build version: %s\n", info.BuildVersion())
	fmt.Printf("Build date: %s\n", info.BuildDate())
	fmt.Printf("Build commit: %s\n", info.BuildCommit())
}
