package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		envPort, envAllowedOrigins, envTickInterval, envLogLevel, envLogFormat,
		envMetricsEnabled, envNATSURL, envNATSSubject, envActionRate, envActionBurst,
		envShutdownTimeout,
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, ":3001", cfg.Addr())
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.NATS.URL)
	assert.Equal(t, "scoreboard.state", cfg.NATS.Subject)
	assert.Zero(t, cfg.RateLimit.PerSecond, "unlimited unless ACTION_RATE is set")
	assert.Equal(t, 40, cfg.RateLimit.Burst)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(envPort, "8080")
	t.Setenv(envAllowedOrigins, " http://arena.local:3000 , ,https://overlay.example.com")
	t.Setenv(envTickInterval, "200ms")
	t.Setenv(envMetricsEnabled, "no")
	t.Setenv(envNATSURL, "nats://127.0.0.1:4222")
	t.Setenv(envActionBurst, "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://arena.local:3000", "https://overlay.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"arena.local:3000", "overlay.example.com"}, cfg.OriginHosts())
	assert.Equal(t, 200*time.Millisecond, cfg.TickInterval)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, defaultActionBurst, cfg.RateLimit.Burst, "bad value falls back")
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "scoreboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "4100"
allowed_origins:
  - http://control.local
tick_interval: 50ms
log:
  level: debug
  format: console
rate_limit:
  per_second: 5
  burst: 10
`), 0o600))
	t.Setenv(envPort, "4200")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "4200", cfg.Port, "env wins over file")
	assert.Equal(t, []string{"http://control.local"}, cfg.AllowedOrigins)
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 5.0, cfg.RateLimit.PerSecond)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"port not numeric", func(c *Config) { c.Port = "http" }, ErrInvalidPort},
		{"port out of range", func(c *Config) { c.Port = "70000" }, ErrInvalidPort},
		{"no origins", func(c *Config) { c.AllowedOrigins = nil }, ErrNoOrigins},
		{"origin without scheme", func(c *Config) { c.AllowedOrigins = []string{"localhost:5173"} }, ErrInvalidOrigin},
		{"tick too fast", func(c *Config) { c.TickInterval = time.Millisecond }, ErrTickInterval},
		{"tick too slow", func(c *Config) { c.TickInterval = 2 * time.Second }, ErrTickInterval},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, ErrInvalidLogging},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(&c)
			require.ErrorIs(t, c.Validate(), tc.wantErr)
		})
	}

	c := Default()
	c.AllowedOrigins = []string{"*"}
	require.NoError(t, c.Validate())
	assert.Equal(t, []string{"*"}, c.OriginHosts())
}
