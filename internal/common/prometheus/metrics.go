package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_requests_in_flight",
			Help: "Number of API requests currently being processed",
		},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	DomainErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_errors_total",
			Help: "Total number of domain errors by category and code",
		},
		[]string{"category", "code", "status"},
	)

	NotifyConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notify_websocket_connections_active",
			Help: "Number of open notification WebSocket connections",
		},
	)

	NotifyConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_websocket_connections_total",
			Help: "Total number of notification WebSocket connections established",
		},
	)

	NotifyAuthenticationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_websocket_authentications_total",
			Help: "Total number of WebSocket authentication attempts by outcome",
		},
		[]string{"outcome"},
	)

	NotifyEventsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_events_sent_total",
			Help: "Total number of real-time events sent by type",
		},
		[]string{"event_type"},
	)

	NotifyEventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_events_dropped_total",
			Help: "Total number of real-time events dropped by reason",
		},
		[]string{"reason"},
	)

	NotifyDisconnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_websocket_disconnections_total",
			Help: "Total number of WebSocket disconnections",
		},
		[]string{"reason"},
	)

	EmailNotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_notifications_sent_total",
			Help: "Total number of notification emails sent by type and status",
		},
		[]string{"type", "status"},
	)

	EmailBatchDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "email_batch_duration_seconds",
			Help:    "Duration of a full batched email send in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	DBPoolAcquiredConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_acquired_connections",
			Help: "Number of acquired database connections",
		},
	)

	DBPoolIdleConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_idle_connections",
			Help: "Number of idle database connections",
		},
	)

	DBPoolMaxConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_max_connections",
			Help: "Maximum number of database connections",
		},
	)

	DBPoolTotalConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_total_connections",
			Help: "Total number of database connections",
		},
	)

	RateLimitBlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_blocked_total",
			Help: "Total number of requests blocked by rate limiter",
		},
		[]string{"path", "limiter_type"},
	)
)
