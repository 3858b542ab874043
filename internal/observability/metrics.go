package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the dashboard backend.
type Metrics struct {
	ForecastRequests *prometheus.CounterVec   // labels: outcome={success,error}
	ChatRequests     *prometheus.CounterVec   // labels: outcome={success,invalid,error}
	GeocodeRequests  *prometheus.CounterVec   // labels: method={forward,reverse,ip}, outcome={success,error,empty}
	GeocodeCache     *prometheus.CounterVec   // labels: method={forward,reverse}, result={hit,miss}
	UpstreamDuration *prometheus.HistogramVec // labels: service
}

// NewMetrics creates and registers all backend metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ForecastRequests,
		m.ChatRequests,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.UpstreamDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default
// registry, avoiding "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "above_cloud",
			Name:      "forecast_requests_total",
			Help:      "Forecast proxy requests by outcome.",
		}, []string{"outcome"}),
		ChatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "above_cloud",
			Name:      "chat_requests_total",
			Help:      "Chat relay requests by outcome.",
		}, []string{"outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "above_cloud",
			Name:      "geocode_requests_total",
			Help:      "Geocoding provider requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "above_cloud",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "above_cloud",
			Name:      "upstream_duration_seconds",
			Help:      "Upstream provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"service"}),
	}
}
