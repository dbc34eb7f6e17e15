package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges shared by
// the ETL pipelines and the HTTP API.
type Metrics struct {
	// ETL pipeline metrics.
	ETLRuns        *prometheus.CounterVec // labels: pipeline={weather,energy}, outcome={success,error}
	ETLUnitErrors  *prometheus.CounterVec // labels: pipeline={weather,energy}
	ETLRunDuration *prometheus.HistogramVec
	ETLRunning     prometheus.Gauge

	// Engine output metrics.
	PointsIngested   *prometheus.CounterVec // labels: pipeline
	PointsProjected  prometheus.Counter
	ForecastsWritten prometheus.Counter

	// HTTP metrics.
	HTTPRequests       *prometheus.CounterVec // labels: route, method, status
	HTTPRequestSeconds *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ETLRuns,
		m.ETLUnitErrors,
		m.ETLRunDuration,
		m.ETLRunning,
		m.PointsIngested,
		m.PointsProjected,
		m.ForecastsWritten,
		m.HTTPRequests,
		m.HTTPRequestSeconds,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ETLRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slopecast",
			Name:      "etl_runs_total",
			Help:      "Completed ETL runs by pipeline and outcome.",
		}, []string{"pipeline", "outcome"}),
		ETLUnitErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slopecast",
			Name:      "etl_unit_errors_total",
			Help:      "Per-region or per-zone failures inside an ETL run.",
		}, []string{"pipeline"}),
		ETLRunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "slopecast",
			Name:      "etl_run_duration_seconds",
			Help:      "Duration of a full ETL run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"pipeline"}),
		ETLRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "slopecast",
			Name:      "etl_running",
			Help:      "1 while an ETL run is in progress, 0 otherwise.",
		}),
		PointsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slopecast",
			Name:      "points_ingested_total",
			Help:      "Raw series points fetched from upstream providers.",
		}, []string{"pipeline"}),
		PointsProjected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slopecast",
			Name:      "points_projected_total",
			Help:      "Quarter-hour points written by the forecast projector.",
		}),
		ForecastsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slopecast",
			Name:      "forecasts_written_total",
			Help:      "Daily forecast rows upserted.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slopecast",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method, and status class.",
		}, []string{"route", "method", "status"}),
		HTTPRequestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "slopecast",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method"}),
	}
}
