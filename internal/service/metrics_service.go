package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alifdwt/lms-bff-api/internal/fetch"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP surface
// and the upstream fetch layer.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	fetchTotal      *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	degradedTotal   prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	fetchTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_fetch_total",
		Help: "Upstream source fetches by source and result",
	}, []string{"source", "result"})

	fetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_fetch_duration_seconds",
		Help:    "Duration of upstream source fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	degradedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aggregations_degraded_total",
		Help: "Aggregations served with at least one failed source",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, fetchTotal, fetchDuration, degradedTotal, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		fetchTotal:      fetchTotal,
		fetchDuration:   fetchDuration,
		degradedTotal:   degradedTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics for one completed request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveFetch records the timing of one upstream source fetch.
func (m *MetricsService) ObserveFetch(source string, duration time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordFetchOutcomes counts per-source success and failure for one gather.
func (m *MetricsService) RecordFetchOutcomes(outcomes fetch.Outcomes) {
	if m == nil {
		return
	}
	anyFailed := false
	for source, outcome := range outcomes {
		result := "ok"
		if outcome.Err != nil {
			result = "error"
			anyFailed = true
		}
		m.fetchTotal.WithLabelValues(source, result).Inc()
	}
	if anyFailed {
		m.degradedTotal.Inc()
	}
}
