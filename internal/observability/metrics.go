// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Data source metrics
	FetchesTotal  *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	SamplesLoaded prometheus.Gauge

	// Aggregation metrics
	AggregationsTotal *prometheus.CounterVec
	BucketsProduced   *prometheus.HistogramVec

	// Export metrics
	ExportsTotal   *prometheus.CounterVec
	ExportDuration *prometheus.HistogramVec
	ExportBytes    *prometheus.HistogramVec

	// Web metrics
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	WSClients         prometheus.Gauge
	WSMessagesSent    prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
	DBConnections   *prometheus.GaugeVec

	// Health metrics
	LastSuccessfulFetch prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg registers with the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "timeframe_chart"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Data source metrics
		FetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetches_total",
			Help:      "Total number of data source fetches by source and status",
		}, []string{"source", "status"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetch_duration_seconds",
			Help:      "Data source fetch duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		SamplesLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "samples_loaded",
			Help:      "Number of samples in the currently loaded series",
		}),

		// Aggregation metrics
		AggregationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "runs_total",
			Help:      "Total number of aggregations by granularity",
		}, []string{"granularity"}),
		BucketsProduced: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "output_points",
			Help:      "Number of points produced per aggregation",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"granularity"}),

		// Export metrics
		ExportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "exports_total",
			Help:      "Total number of chart exports by format and status",
		}, []string{"format", "status"}),
		ExportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "duration_seconds",
			Help:      "Chart export duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		ExportBytes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "size_bytes",
			Help:      "Encoded chart image size in bytes",
			Buckets:   prometheus.ExponentialBuckets(4096, 2, 10),
		}, []string{"format"}),

		// Web metrics
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Number of connected WebSocket clients",
		}),
		WSMessagesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "messages_sent_total",
			Help:      "Total number of view messages pushed to WebSocket clients",
		}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
		DBConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "connections",
			Help:      "Number of database connections by state",
		}, []string{"database", "state"}),

		// Health metrics
		LastSuccessfulFetch: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_fetch_timestamp",
			Help:      "Unix timestamp of last successful data source fetch",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordFetch records a data source fetch.
func RecordFetch(source string, seconds float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.FetchesTotal.WithLabelValues(source, status).Inc()
	DefaultMetrics.FetchDuration.WithLabelValues(source).Observe(seconds)
}

// RecordSamplesLoaded records the size of a freshly loaded series.
func RecordSamplesLoaded(n int, unixSeconds float64) {
	DefaultMetrics.SamplesLoaded.Set(float64(n))
	DefaultMetrics.LastSuccessfulFetch.Set(unixSeconds)
}

// RecordAggregation records one aggregation and the number of points it produced.
func RecordAggregation(granularity string, points int) {
	DefaultMetrics.AggregationsTotal.WithLabelValues(granularity).Inc()
	DefaultMetrics.BucketsProduced.WithLabelValues(granularity).Observe(float64(points))
}

// RecordExport records a chart export. status is "success", "noop" or "error".
func RecordExport(format, status string, seconds float64, size int) {
	DefaultMetrics.ExportsTotal.WithLabelValues(format, status).Inc()
	if status != "success" {
		return
	}
	DefaultMetrics.ExportDuration.WithLabelValues(format).Observe(seconds)
	DefaultMetrics.ExportBytes.WithLabelValues(format).Observe(float64(size))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(route, code string, seconds float64) {
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(route, code).Inc()
	DefaultMetrics.HTTPDuration.WithLabelValues(route).Observe(seconds)
}

// UpdateWSClients sets the connected WebSocket client gauge.
func UpdateWSClients(n int) {
	DefaultMetrics.WSClients.Set(float64(n))
}

// RecordWSMessage increments the pushed view message counter.
func RecordWSMessage() {
	DefaultMetrics.WSMessagesSent.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// UpdateDBConnections sets the connection gauge for one database/state pair.
func UpdateDBConnections(database, state string, n int) {
	DefaultMetrics.DBConnections.WithLabelValues(database, state).Set(float64(n))
}
