package task

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aitutor_job_transitions_total",
			Help: "Job state transitions by kind and target state",
		},
		[]string{"kind", "state"},
	)

	jobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aitutor_job_duration_seconds",
			Help:    "Time spent executing job bodies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind", "state"},
	)

	jobsInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aitutor_jobs_inflight",
		Help: "Jobs currently queued in memory or running",
	})

	scheduledFiresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aitutor_scheduler_fires_total",
			Help: "Scheduler firings by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)
