package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（毫秒）
	HTTPRequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_latency_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	// 发布到 MQ 的事件计数
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mq_events_published_total",
			Help: "Total number of events published to the exchange",
		},
		[]string{"routing_key", "status"},
	)

	// 时间线快照缓存命中/未命中
	TimelineCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeline_cache_requests_total",
			Help: "Timeline snapshot cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

// ObserveDBQuery records the duration of a named query.
func ObserveDBQuery(query string, start time.Time) {
	DBQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}
