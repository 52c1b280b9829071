package infrastructure

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "retail_pulse"

// Outcome labels for operation counters.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Metrics holds the Prometheus collectors for the application.
// All collectors live on a private registry so tests can create
// independent instances without AlreadyRegisteredError noise.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal  *prometheus.CounterVec
	httpRequestSeconds *prometheus.HistogramVec
	datasetRows        prometheus.Gauge
	datasetLoadsTotal  *prometheus.CounterVec
	chartsTotal        *prometheus.CounterVec
	chartRenderSeconds prometheus.Histogram
}

// NewMetrics creates a metrics instance with its own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests, partitioned by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		datasetRows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "dataset_rows",
				Help:      "Number of order rows in the loaded dataset after cleaning.",
			},
		),
		datasetLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "dataset_loads_total",
				Help:      "Total number of dataset load attempts, partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		chartsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "charts_rendered_total",
				Help:      "Total number of chart renders, partitioned by chart and outcome.",
			},
			[]string{"chart", "outcome"},
		),
		chartRenderSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "chart_render_seconds",
				Help:      "Chart render latency in seconds.",
				Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
		),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestSeconds,
		m.datasetRows,
		m.datasetLoadsTotal,
		m.chartsTotal,
		m.chartRenderSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns the /metrics endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware instruments HTTP requests with count and latency metrics.
// The route label uses the chi route pattern to keep cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.status)).Inc()
		m.httpRequestSeconds.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// SetDatasetRows records the current dataset size.
func (m *Metrics) SetDatasetRows(n int) {
	m.datasetRows.Set(float64(n))
}

// ObserveDatasetLoad records a dataset load attempt.
func (m *Metrics) ObserveDatasetLoad(outcome string) {
	m.datasetLoadsTotal.WithLabelValues(outcome).Inc()
}

// ObserveChartRender records a chart render attempt with its duration.
func (m *Metrics) ObserveChartRender(chart, outcome string, duration time.Duration) {
	m.chartsTotal.WithLabelValues(chart, outcome).Inc()
	if outcome == OutcomeSuccess {
		if duration < 0 {
			duration = 0
		}
		m.chartRenderSeconds.Observe(duration.Seconds())
	}
}

// statusRecorder captures the response status code for metrics labeling.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
