package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by outcome.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resonate_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	// NotificationPublishes counts notification events published to the sink.
	NotificationPublishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resonate_notification_publishes_total",
		Help: "Total notification events published, by outcome",
	}, []string{"outcome"})

	// FeedPages counts served feed pages by sort order.
	FeedPages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resonate_feed_pages_total",
		Help: "Total feed pages served, by sort order",
	}, []string{"sort"})
)
