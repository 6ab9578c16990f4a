package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/hexpatch/internal/plugin"
)

// Metrics holds the registry the application's collectors live in.
type Metrics struct {
	Registry *prometheus.Registry
	Plugins  *plugin.Metrics
}

// NewMetrics creates a registry with the Go runtime, process and plugin
// collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		Registry: registry,
		Plugins:  plugin.NewMetrics(registry),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RegisterMetricsEndpoint registers the /metrics endpoint.
func RegisterMetricsEndpoint(mux *http.ServeMux, m *Metrics) {
	mux.Handle("/metrics", m.Handler())
}
