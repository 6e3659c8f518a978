package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	schedulerTicksCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reminder_scheduler",
			Name:      "ticks_total",
			Help:      "Total scheduler ticks executed.",
		},
	)

	remindersProcessedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reminder_scheduler",
			Name:      "reminders_processed_total",
			Help:      "Total due reminders processed by the scheduler.",
		},
		[]string{"method", "status"}, // e.g., method="sms", status="sent"
	)

	dispatchDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reminder_scheduler",
			Name:      "dispatch_duration_seconds",
			Help:      "Duration of a single notification dispatch.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	successorsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reminder_scheduler",
			Name:      "successors_total",
			Help:      "Recurring successor occurrences created or suppressed by the end-date gate.",
		},
		[]string{"outcome"}, // "created", "suppressed", "error"
	)
)
