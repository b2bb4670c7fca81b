package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Engine metrics
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatheralert_evaluations_total",
			Help: "Total number of evaluated temperature readings",
		},
		[]string{"outcome", "condition"}, // outcome: normal, alert-sent, skipped, error
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatheralert_notifications_total",
			Help: "Total number of notification send attempts",
		},
		[]string{"status"}, // status: sent, failed
	)

	NotificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weatheralert_notification_duration_seconds",
			Help:    "Time taken by the notification channel to accept a message",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	PersistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatheralert_persist_failures_total",
			Help: "Total number of commits that failed after a successful send",
		},
	)

	HistorySkippedRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatheralert_history_skipped_records_total",
			Help: "Total number of malformed history records skipped by queries",
		},
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatheralert_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatheralert_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	// Ingest metrics
	PollFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatheralert_poll_failures_total",
			Help: "Total number of failed weather fetches",
		},
		[]string{"city"},
	)

	IngestRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatheralert_ingest_rejected_total",
			Help: "Total number of MQTT reading payloads that could not be decoded",
		},
	)

	PanicsRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatheralert_panics_recovered_total",
			Help: "Total number of panics recovered in HTTP handlers",
		},
	)
)
