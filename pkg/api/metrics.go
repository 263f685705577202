package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssargent/tfrecord/pkg/tfrecord"
)

const (
	statusSuccess  = "success"
	statusError    = "error"
	statusNotFound = "not_found"
	statusCorrupt  = "corrupt"
	statusChecksum = "checksum"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Record read metrics
	recordReadsTotal    *prometheus.CounterVec
	recordBytesTotal    prometheus.Counter
	recordReadDuration  prometheus.Histogram
	verifyRunsTotal     *prometheus.CounterVec
	indexedRecordsTotal prometheus.Gauge

	// Authentication metrics
	authRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates all metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfrecord_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tfrecord_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tfrecord_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		recordReadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfrecord_record_reads_total",
				Help: "Total number of single record reads by outcome",
			},
			[]string{"status"},
		),

		recordBytesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tfrecord_record_bytes_total",
				Help: "Total payload bytes served",
			},
		),

		recordReadDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tfrecord_record_read_duration_seconds",
				Help:    "Single record read duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		verifyRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfrecord_verify_runs_total",
				Help: "Total number of full container verifications by outcome",
			},
			[]string{"status"},
		),

		indexedRecordsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tfrecord_indexed_records",
				Help: "Number of records in the served index",
			},
		),

		authRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfrecord_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),
	}

	return m
}

// readStatus classifies a read error for metric labels
func readStatus(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case errors.Is(err, tfrecord.ErrChecksumMismatch):
		return statusChecksum
	case errors.Is(err, tfrecord.ErrCorruptContainer):
		return statusCorrupt
	default:
		return statusError
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRead records a single record read
func (m *Metrics) RecordRead(size int, err error, duration time.Duration) {
	m.recordReadsTotal.WithLabelValues(readStatus(err)).Inc()
	m.recordReadDuration.Observe(duration.Seconds())
	if err == nil {
		m.recordBytesTotal.Add(float64(size))
	}
}

// RecordNotFound records a read past the end of the index
func (m *Metrics) RecordNotFound() {
	m.recordReadsTotal.WithLabelValues(statusNotFound).Inc()
}

// RecordVerify records a full verification run
func (m *Metrics) RecordVerify(err error) {
	m.verifyRunsTotal.WithLabelValues(readStatus(err)).Inc()
}

// SetIndexedRecords updates the index size gauge
func (m *Metrics) SetIndexedRecords(n int64) {
	m.indexedRecordsTotal.Set(float64(n))
}

// RecordAuthRequest records an authentication request
func (m *Metrics) RecordAuthRequest(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.authRequestsTotal.WithLabelValues(status).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		// Create response writer wrapper to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
