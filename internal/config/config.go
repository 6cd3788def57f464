package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidPort    = errors.New("invalid port")
	ErrNoOrigins      = errors.New("no allowed origins")
	ErrInvalidOrigin  = errors.New("invalid allowed origin")
	ErrTickInterval   = errors.New("tick interval out of range")
	ErrInvalidLogging = errors.New("invalid log settings")
)

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NATSConfig enables the frame mirror when URL is set.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// RateLimitConfig bounds inbound actions per websocket connection. A
// PerSecond of zero leaves them unlimited.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

type Config struct {
	Port            string          `yaml:"port"`
	AllowedOrigins  []string        `yaml:"allowed_origins"`
	TickInterval    time.Duration   `yaml:"tick_interval"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	Log             LogConfig       `yaml:"log"`
	Metrics         MetricsConfig   `yaml:"metrics"`
	NATS            NATSConfig      `yaml:"nats"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

func Default() Config {
	return Config{
		Port:            defaultPort,
		AllowedOrigins:  SplitList(defaultAllowedOrigins),
		TickInterval:    defaultTickInterval,
		ShutdownTimeout: defaultShutdownTimeout,
		Log:             LogConfig{Level: defaultLogLevel, Format: defaultLogFormat},
		Metrics:         MetricsConfig{Enabled: defaultMetricsEnabled},
		NATS:            NATSConfig{Subject: defaultNATSSubject},
		RateLimit:       RateLimitConfig{PerSecond: defaultActionRate, Burst: defaultActionBurst},
	}
}

// Load layers defaults, then the YAML file at path (if any), then the
// environment. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envOrDefault(envPort, cfg.Port)
	cfg.AllowedOrigins = listEnvOrDefault(envAllowedOrigins, cfg.AllowedOrigins)
	cfg.TickInterval = durationEnvOrDefault(envTickInterval, cfg.TickInterval)
	cfg.ShutdownTimeout = durationEnvOrDefault(envShutdownTimeout, cfg.ShutdownTimeout)
	cfg.Log.Level = envOrDefault(envLogLevel, cfg.Log.Level)
	cfg.Log.Format = envOrDefault(envLogFormat, cfg.Log.Format)
	cfg.Metrics.Enabled = boolEnvOrDefault(envMetricsEnabled, cfg.Metrics.Enabled)
	cfg.NATS.URL = envOrDefault(envNATSURL, cfg.NATS.URL)
	cfg.NATS.Subject = envOrDefault(envNATSSubject, cfg.NATS.Subject)
	cfg.RateLimit.PerSecond = floatEnvOrDefault(envActionRate, cfg.RateLimit.PerSecond)
	cfg.RateLimit.Burst = intEnvOrDefault(envActionBurst, cfg.RateLimit.Burst)
}

func (c Config) Validate() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("%w: %q", ErrInvalidPort, c.Port)
	}
	if len(c.AllowedOrigins) == 0 {
		return ErrNoOrigins
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidOrigin, o)
		}
	}
	if c.TickInterval < minTickInterval || c.TickInterval > maxTickInterval {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrTickInterval, c.TickInterval, minTickInterval, maxTickInterval)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: format %q", ErrInvalidLogging, c.Log.Format)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

// OriginHosts returns the host[:port] of each allowed origin, the form
// websocket origin patterns match against.
func (c Config) OriginHosts() []string {
	hosts := make([]string, 0, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			hosts = append(hosts, "*")
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		}
	}
	return hosts
}
