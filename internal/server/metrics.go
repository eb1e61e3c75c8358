package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/argo-frvp/internal/analysis"
)

// Metrics holds the Prometheus metrics of the analysis server.
type Metrics struct {
	RunsTotal    *prometheus.CounterVec // labels: status
	RunDuration  prometheus.Histogram
	BarsAnalyzed prometheus.Counter
	ActionsTotal *prometheus.CounterVec // labels: action

	registry *prometheus.Registry
}

// NewMetrics creates the metrics on their own registry so several servers
// can live in one process.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frvp_analysis_runs_total",
			Help: "Analysis runs by outcome",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "frvp_analysis_duration_seconds",
			Help:    "End-to-end latency of one analysis run including the fetch",
			Buckets: prometheus.DefBuckets,
		}),
		BarsAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frvp_bars_analyzed_total",
			Help: "Total bars fed through the pipeline",
		}),
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frvp_trade_actions_total",
			Help: "Simulated trade actions by kind",
		}, []string{"action"}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(m.RunsTotal, m.RunDuration, m.BarsAnalyzed, m.ActionsTotal)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and embedding.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observe(result *analysis.Result) {
	m.RunsTotal.WithLabelValues("ok").Inc()
	m.BarsAnalyzed.Add(float64(len(result.Bars)))

	for action, n := range result.Summary.Actions {
		m.ActionsTotal.WithLabelValues(action).Add(float64(n))
	}
}
