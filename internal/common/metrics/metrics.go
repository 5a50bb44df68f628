// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for AnswerResolutions.
const (
	OutcomeAnswered   = "answered"
	OutcomeFallback   = "fallback"
	OutcomeDiagnostic = "diagnostic"
)

var (
	AnswerResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answer_resolutions_total",
			Help: "Total number of answer resolutions by outcome",
		},
		[]string{"strategy", "outcome"},
	)

	AnswerResolutionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answer_resolution_failures_total",
			Help: "Total number of failed resolutions by pipeline stage",
		},
		[]string{"strategy", "stage"},
	)

	AnswerResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "answer_resolution_duration_seconds",
			Help:    "Duration of answer resolution in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	BotActivities = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_activities_total",
			Help: "Total number of inbound bot activities by type",
		},
		[]string{"type"},
	)

	AnswerCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answer_cache_lookups_total",
			Help: "Total number of answer cache lookups by result",
		},
		[]string{"result"},
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
