package plugin

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics of the plugin runtime. A nil
// *Metrics records nothing.
type Metrics struct {
	LoadsTotal       *prometheus.CounterVec
	CallsTotal       *prometheus.CounterVec
	CallDuration     *prometheus.HistogramVec
	CommandsExported *prometheus.GaugeVec
	ChunkCacheHits   prometheus.Counter
	ChunkCacheMisses prometheus.Counter
}

// NewMetrics creates the plugin metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hexpatch_plugin_loads_total",
				Help: "Total number of plugin loads",
			},
			[]string{"status"},
		),
		CallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hexpatch_plugin_calls_total",
				Help: "Total number of calls into plugins",
			},
			[]string{"plugin", "function", "status"},
		),
		CallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hexpatch_plugin_call_duration_seconds",
				Help:    "Duration of calls into plugins in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"function"},
		),
		CommandsExported: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hexpatch_plugin_commands_exported",
				Help: "Number of commands a plugin currently exports",
			},
			[]string{"plugin"},
		),
		ChunkCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hexpatch_plugin_chunk_cache_hits_total",
				Help: "Total number of compiled chunk cache hits",
			},
		),
		ChunkCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hexpatch_plugin_chunk_cache_misses_total",
				Help: "Total number of compiled chunk cache misses",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.LoadsTotal,
			m.CallsTotal,
			m.CallDuration,
			m.CommandsExported,
			m.ChunkCacheHits,
			m.ChunkCacheMisses,
		)
	}
	return m
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) recordLoad(err error) {
	if m == nil {
		return
	}
	m.LoadsTotal.WithLabelValues(status(err)).Inc()
}

// recordCall records one call. Commands share the "command" function label
// so arbitrary command names do not grow the label space.
func (m *Metrics) recordCall(plugin, function string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.CallsTotal.WithLabelValues(plugin, function, status(err)).Inc()
	m.CallDuration.WithLabelValues(function).Observe(d.Seconds())
}

func (m *Metrics) setCommands(plugin string, n int) {
	if m == nil {
		return
	}
	m.CommandsExported.WithLabelValues(plugin).Set(float64(n))
}

func (m *Metrics) deletePlugin(plugin string) {
	if m == nil {
		return
	}
	m.CommandsExported.DeleteLabelValues(plugin)
}

func (m *Metrics) recordCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.ChunkCacheHits.Inc()
	} else {
		m.ChunkCacheMisses.Inc()
	}
}
