// Package metrics exposes simulation and forecast measurements to Prometheus.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

// Registry holds the resil collectors on a private Prometheus registry.
// It implements ports.SimulationRecorder.
type Registry struct {
	SimulationsTotal    *prometheus.CounterVec
	SimulationDuration  prometheus.Histogram
	AffectedPerRun      prometheus.Histogram
	DowntimePerRun      prometheus.Histogram
	ForecastsTotal      *prometheus.CounterVec
	ForecastPredicted   *prometheus.GaugeVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewRegistry creates a Registry with every collector registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	factory := promauto.With(r.registry)

	r.SimulationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resil_simulations_total",
			Help: "Total number of propagation simulations by outcome",
		},
		[]string{"outcome"},
	)
	r.SimulationDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "resil_simulation_duration_seconds",
		Help:    "Propagation simulation duration in seconds",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	r.AffectedPerRun = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "resil_simulation_affected_dependencies",
		Help:    "Number of dependencies affected per simulation",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
	})
	r.DowntimePerRun = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "resil_simulation_downtime_hours",
		Help:    "Estimated total downtime per simulation in hours",
		Buckets: []float64{1, 4, 8, 24, 72, 168, 720},
	})
	r.ForecastsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resil_forecasts_total",
			Help: "Total number of metric forecasts by trend",
		},
		[]string{"trend"},
	)
	r.ForecastPredicted = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "resil_forecast_predicted_value",
			Help: "Latest predicted value of a metric at a horizon",
		},
		[]string{"metric", "horizon_days"},
	)
	r.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resil_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)
	r.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resil_http_request_duration_seconds",
			Help:    "HTTP API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	return r
}

// RecordSimulation records one propagation walk.
func (r *Registry) RecordSimulation(outcome string, result *entities.SimulationResult, duration time.Duration) {
	r.SimulationsTotal.WithLabelValues(outcome).Inc()
	r.SimulationDuration.Observe(duration.Seconds())
	if result == nil {
		return
	}
	r.AffectedPerRun.Observe(float64(result.TotalAffected))
	r.DowntimePerRun.Observe(result.EstimatedTotalDowntimeHours)
}

// RecordForecast records one computed forecast.
func (r *Registry) RecordForecast(forecast entities.Forecast) {
	r.ForecastsTotal.WithLabelValues(string(forecast.Trend)).Inc()
	r.ForecastPredicted.WithLabelValues(forecast.Metric, "30").Set(forecast.Predicted30Days)
	r.ForecastPredicted.WithLabelValues(forecast.Metric, "90").Set(forecast.Predicted90Days)
	for days, value := range forecast.Predictions {
		r.ForecastPredicted.WithLabelValues(forecast.Metric, fmt.Sprint(days)).Set(value)
	}
}

// RecordHTTPRequest records an HTTP API request.
func (r *Registry) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Gatherer returns the underlying registry for exposition.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the registry for the node-exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
