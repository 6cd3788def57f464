package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/DoyleJ11/scoreboard-backend/internal/config"
	"github.com/DoyleJ11/scoreboard-backend/internal/engine"
	"github.com/DoyleJ11/scoreboard-backend/internal/httpapi"
	"github.com/DoyleJ11/scoreboard-backend/internal/hub"
	"github.com/DoyleJ11/scoreboard-backend/internal/logging"
	"github.com/DoyleJ11/scoreboard-backend/internal/metrics"
	"github.com/DoyleJ11/scoreboard-backend/internal/mirror"
	"github.com/DoyleJ11/scoreboard-backend/internal/scoreboard"
)

const readHeaderTimeout = 5 * time.Second

type serveOptions struct {
	ConfigPath string
	EnvFile    string
	Port       string
	LogLevel   string
}

// loadConfig applies, in order: .env file, YAML file, environment,
// command-line flags.
func loadConfig(opts serveOptions) (config.Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	return cfg, cfg.Validate()
}

func serve(opts serveOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rec *metrics.Recorder
	if cfg.Metrics.Enabled {
		rec = metrics.New()
	}

	h := hub.NewHub(appCtx, log, rec)
	pubs := []scoreboard.Publisher{h}

	if cfg.NATS.URL != "" {
		m, err := mirror.Dial(cfg.NATS.URL, cfg.NATS.Subject, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				log.Warn("close NATS mirror", zap.Error(err))
			}
		}()
		pubs = append(pubs, m)
	}

	sb := scoreboard.New(appCtx, engine.NewState(), scoreboard.Config{
		Clock:        clockwork.NewRealClock(),
		TickInterval: cfg.TickInterval,
		Logger:       log,
		Metrics:      rec,
		Publishers:   pubs,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpapi.SetupRoutes(httpapi.Deps{Scoreboard: sb, Hub: h, Config: cfg, Logger: log, Metrics: rec}),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", srv.Addr),
			zap.Strings("allowed_origins", cfg.AllowedOrigins),
			zap.Duration("tick_interval", cfg.TickInterval),
			zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-sigCtx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	// Stopping the hub closes every client outbox, which ends the
	// hijacked websocket connections Shutdown does not track.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}

	select {
	case <-sb.Done():
	case <-shutdownCtx.Done():
		log.Warn("scoreboard did not stop in time")
	}
	log.Info("stopped")
	return nil
}

func writeDefaultConfig(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(config.Default()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
