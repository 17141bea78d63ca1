package constants

import "time"

const (
	JWTSecretMinLength = 32

	DefaultMaxRequestSize = 1 << 20

	EmailBatchSize  = 50
	EmailBatchPause = 1 * time.Second

	WebSocketWriteWait       = 10 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketPingPeriod      = 54 * time.Second
	WebSocketMaxMsgSize      = 4 * 1024
	WebSocketSendBufSize     = 64
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 5 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort       = "8080"
	DefaultRequestTimeout = 5 * time.Second

	RateLimitCleanupInterval           = 1 * time.Minute
	RateLimitGeneralRequestsPerSecond  = 10
	RateLimitGeneralBurst              = 20
	RateLimitFeedbackRequestsPerSecond = 1
	RateLimitFeedbackBurst             = 5

	LoggerMaxSizeMB  = 100
	LoggerMaxBackups = 3
	LoggerMaxAgeDays = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
