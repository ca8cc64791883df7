// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// WorkerItemsProcessed counts items within a job, by outcome (ok, error, skipped).
	WorkerItemsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_items_processed_total",
			Help: "Total number of input items processed per operation",
		},
		[]string{"task_type", "operation", "outcome"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rynko_api_requests_total",
			Help: "Total number of requests sent to the Rynko API",
		},
		[]string{"method", "status"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rynko_api_request_duration_seconds",
			Help:    "Duration of Rynko API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	OptionLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rynko_option_load_failures_total",
			Help: "Option loader calls that failed and returned an empty list",
		},
		[]string{"method"},
	)

	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rynko_webhook_deliveries_total",
			Help: "Inbound webhook deliveries by event and result",
		},
		[]string{"event", "result"},
	)

	WebhookLifecycleCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rynko_webhook_lifecycle_total",
			Help: "Webhook subscription lifecycle calls by step and result",
		},
		[]string{"step", "result"},
	)
)
