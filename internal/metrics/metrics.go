// Package metrics exposes the service's prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screencast",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "screencast",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "route"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screencast",
			Name:      "uploads_total",
			Help:      "Finalized upload orchestrations",
		},
		[]string{"status"},
	)

	HostOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screencast",
			Name:      "media_host_operations_total",
			Help:      "Calls against the external media host",
		},
		[]string{"operation", "status"},
	)

	ViewsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "screencast",
			Name:      "views_recorded_total",
			Help:      "View-count increments served",
		},
	)
)

// RecordRequest records one served HTTP request.
func RecordRequest(method, route, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, route, status).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(durationSec)
}

// RecordUpload records the outcome of a finalize orchestration.
func RecordUpload(status string) {
	UploadsTotal.WithLabelValues(status).Inc()
}

// RecordHostOperation records a call against the media host.
func RecordHostOperation(operation, status string) {
	HostOperationsTotal.WithLabelValues(operation, status).Inc()
}
