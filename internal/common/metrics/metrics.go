// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_provider_attempts_total",
			Help: "Provider invocations by provider id and classified outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "generation_provider_attempt_seconds",
			Help: "Duration of individual provider calls",
		},
		[]string{"provider"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_cache_lookups_total",
			Help: "Result-cache lookups by result (hit, miss, expired, outdated)",
		},
		[]string{"result"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_pipeline_duration_seconds",
			Help:    "End-to-end generation duration",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"from_cache"},
	)

	DegradedTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_degraded_tasks_total",
			Help: "Persona tasks that fell back to the template artifact",
		},
		[]string{"task"},
	)

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
)
