// Package metrics exposes Prometheus metrics for the campaign API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for flowforge.
type Metrics struct {
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec
	CampaignsTotal            prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a Metrics instance with all metrics registered on its own
// registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowforge_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flowforge_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		CampaignsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "flowforge_campaigns_total",
				Help: "Number of campaigns in the backing store",
			},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		m.CampaignsTotal,
	)

	return m
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
