// Package server wires and runs the gateway's transport servers.
//
// It owns the HTTP and optional gRPC listener lifecycles together with the
// background workers: startup, signal handling and a bounded graceful
// shutdown of everything that was started.
package server
