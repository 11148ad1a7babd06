// Package metrics exposes gateway counters on a dedicated Prometheus
// registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the HTTP layer reports to.
type Recorder interface {
	ObserveDenial(guard, reason string)
	ObserveRequest(method string, status int, elapsed time.Duration)
}

// Noop implements Recorder without emitting anything.
type Noop struct{}

func (Noop) ObserveDenial(string, string)              {}
func (Noop) ObserveRequest(string, int, time.Duration) {}

// Prom implements Recorder backed by Prometheus collectors.
type Prom struct {
	registry *prometheus.Registry
	denials  *prometheus.CounterVec
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewProm registers the gateway collectors, plus the Go runtime and process
// collectors, on a fresh registry.
func NewProm(namespace string) *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "denials_total",
			Help:      "Requests rejected by a trust-boundary guard",
		}, []string{"guard", "reason"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	p.registry.MustRegister(
		p.denials,
		p.requests,
		p.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// ObserveDenial implements guard.DenialObserver.
func (p *Prom) ObserveDenial(guard, reason string) {
	p.denials.WithLabelValues(guard, reason).Inc()
}

func (p *Prom) ObserveRequest(method string, status int, elapsed time.Duration) {
	method = normalizeMethod(method)
	p.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	p.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Registry returns the registry the collectors live on.
func (p *Prom) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// normalizeMethod keeps label cardinality bounded against arbitrary
// client-chosen methods.
func normalizeMethod(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return method
	default:
		return "OTHER"
	}
}
