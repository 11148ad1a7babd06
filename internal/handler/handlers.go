package handler

import (
	"fmt"

	"github.com/shamell/trustgate/internal/config"
	"github.com/shamell/trustgate/internal/handler/grpc"
	"github.com/shamell/trustgate/internal/handler/http"
	"github.com/shamell/trustgate/internal/logger"
)

type Handlers struct {
	HTTP *http.Handler
	GRPC *grpc.Handler
}

func NewHandlers(deps http.Dependencies, cfg config.Server, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.HTTPAddress != "" {
		h, err := http.NewHandler(deps, logger)
		if err != nil {
			return nil, fmt.Errorf("http handler: %w", err)
		}
		handlers.HTTP = h
	}
	if cfg.GRPCAddress != "" {
		h, err := grpc.NewHandler(deps.Service, deps.InternalAuth, logger)
		if err != nil {
			return nil, fmt.Errorf("grpc handler: %w", err)
		}
		handlers.GRPC = h
	}

	if handlers.HTTP == nil && handlers.GRPC == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
