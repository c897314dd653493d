package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	gradingRequestsTotal  *prometheus.CounterVec
	gradingLatencySeconds *prometheus.HistogramVec
	gradingErrorsTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the grading API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		gradingRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gradeflow",
			Name:      "http_requests_total",
			Help:      "Total number of grading API requests served.",
		}, []string{"method", "route", "status"})

		gradingLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gradeflow",
			Name:      "http_latency_seconds",
			Help:      "Latency distribution for grading API requests.",
			// Submit can block on sequential AI calls, so the upper buckets
			// stretch well past typical CRUD latencies.
			Buckets: []float64{0.01, 0.05, 0.25, 1, 5, 15, 60, 180},
		}, []string{"method", "route"})

		gradingErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gradeflow",
			Name:      "http_errors_total",
			Help:      "Total number of error responses returned by the grading API.",
		}, []string{"method", "route", "status"})

		prometheus.MustRegister(gradingRequestsTotal, gradingLatencySeconds, gradingErrorsTotal)
	})
}

// GradingRequests exposes the request counter.
func GradingRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingRequestsTotal
}

// GradingLatency exposes the latency histogram.
func GradingLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return gradingLatencySeconds
}

// GradingErrors exposes the error counter.
func GradingErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingErrorsTotal
}
