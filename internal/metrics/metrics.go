// Package metrics holds the Prometheus collectors of the service. They are
// registered with the default registry served on the metrics port.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "campaign_api"

var (
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Dispatch submissions by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	Debited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debited_amount_total",
			Help:      "Money debited for dispatches in account currency units",
		},
		[]string{"channel"},
	)

	ZeroCostDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "zero_cost_dispatches_total",
			Help:      "Dispatches created without any billable segment",
		},
		[]string{"channel"},
	)

	OutboxPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Dispatch created events published to the queue",
		},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status code",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "code"},
	)
)
