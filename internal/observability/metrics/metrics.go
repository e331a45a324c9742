// Package metrics exposes Prometheus instrumentation for the notification
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_jobs_submitted_total",
		Help: "Total number of notification jobs accepted by the queue, labelled by channel.",
	}, []string{"channel"})

	JobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_jobs_completed_total",
		Help: "Total number of notification jobs that dispatched successfully, labelled by channel.",
	}, []string{"channel"})

	JobsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_jobs_failed_total",
		Help: "Total number of notification jobs that exhausted their retries, labelled by channel.",
	}, []string{"channel"})

	JobRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_job_retries_total",
		Help: "Total number of retry re-submissions, labelled by channel.",
	}, []string{"channel"})

	JobsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_jobs_dropped_total",
		Help: "Total number of jobs rejected due to a full or closed queue.",
	})

	JobsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notifier_jobs_in_flight",
		Help: "Number of dispatch attempts currently executing.",
	})

	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "notifier_dispatch_duration_ms",
		Help:    "Duration of one dispatch attempt in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})

	EventsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_events_ingested_total",
		Help: "Total number of accepted inbound events, labelled by event type.",
	}, []string{"event_type"})

	EventsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_events_rejected_total",
		Help: "Total number of rejected inbound events, labelled by reason.",
	}, []string{"reason"})
)
