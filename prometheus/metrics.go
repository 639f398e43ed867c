package prometheus

import (
	"time"

	"gallery-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics (internal selector API)
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Public gallery metrics
	GalleryViewsCounter  prometheus.CounterVec
	ImagesServedCounter  prometheus.Counter
	SharesCreatedCounter prometheus.Counter

	// Reservation metrics
	ReservationsCounter  prometheus.CounterVec
	ReservedLinesCounter prometheus.Counter
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	GalleryViewsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_views_total",
			Help: "Total number of public gallery view requests",
		},
		[]string{"status"},
	)

	ImagesServedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_images_served_total",
			Help: "Total number of gallery images served",
		},
	)

	SharesCreatedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_shares_created_total",
			Help: "Total number of gallery share links created",
		},
	)

	ReservationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_reservations_total",
			Help: "Total number of reservation submissions by outcome",
		},
		[]string{"outcome"},
	)

	ReservedLinesCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_reserved_lines_total",
			Help: "Total number of slabs placed on hold",
		},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordGalleryView increments the view counter for an outcome (ok, not_found, expired)
func RecordGalleryView(status string) {
	GalleryViewsCounter.WithLabelValues(status).Inc()
}

// RecordReservation increments the reservation counter for an outcome
func RecordReservation(outcome string) {
	ReservationsCounter.WithLabelValues(outcome).Inc()
}
