package config

import "time"

const (
	envPort            = "PORT"
	envAllowedOrigins  = "ALLOWED_ORIGINS"
	envTickInterval    = "TICK_INTERVAL"
	envLogLevel        = "LOG_LEVEL"
	envLogFormat       = "LOG_FORMAT"
	envMetricsEnabled  = "METRICS_ENABLED"
	envNATSURL         = "NATS_URL"
	envNATSSubject     = "NATS_SUBJECT"
	envActionRate      = "ACTION_RATE"
	envActionBurst     = "ACTION_BURST"
	envShutdownTimeout = "SHUTDOWN_TIMEOUT"

	defaultPort            = "3001"
	defaultAllowedOrigins  = "http://localhost:5173"
	defaultTickInterval    = 100 * time.Millisecond
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultMetricsEnabled  = true
	defaultNATSSubject     = "scoreboard.state"
	defaultActionRate      = 0.0
	defaultActionBurst     = 40
	defaultShutdownTimeout = 10 * time.Second

	minTickInterval = 10 * time.Millisecond
	maxTickInterval = time.Second
)
