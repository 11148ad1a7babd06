// Package http implements the edge gateway's HTTP transport layer.
//
// It wires the trust-boundary guards into one ordered filter chain, splits
// routes into a browser zone (CORS, session and role checks) and an
// internal zone (service-to-service authentication), and hands matched
// requests to local handlers or upstream forwarders.
package http
