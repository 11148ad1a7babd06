package server

import "context"

// Server defines the lifecycle contract for the gateway's transports.
//
// RunServer blocks until SIGTERM, SIGINT or SIGQUIT arrives or a listener
// fails, then drains every transport. Shutdown can be called directly to
// stop the transports without waiting for a signal.
type Server interface {
	// RunServer starts serving requests and blocks until the server stops.
	RunServer() error

	// Shutdown gracefully stops the server within ctx.
	Shutdown(ctx context.Context) error
}

// BackgroundRunner is a long-lived task started next to the listeners and
// stopped with them, such as a worker group.
type BackgroundRunner interface {
	Run(ctx context.Context)
}

type transport interface {
	name() string
	listen() error
	closeListener()
	serve() error
	shutdown(ctx context.Context) error
}
