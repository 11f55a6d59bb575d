// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReviewEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_events_total",
			Help: "Total number of review lifecycle events",
		},
		[]string{"event"},
	)

	ModerationVerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_verdicts_total",
			Help: "Moderation gateway verdicts by outcome",
		},
		[]string{"verdict"},
	)

	RatingHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "review_rating",
			Help:    "Distribution of submitted review ratings",
			Buckets: prometheus.LinearBuckets(1, 1, 5),
		},
		[]string{"status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
