package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/DoyleJ11/scoreboard-backend/internal/config"
	"github.com/DoyleJ11/scoreboard-backend/internal/hub"
	"github.com/DoyleJ11/scoreboard-backend/internal/metrics"
	"github.com/DoyleJ11/scoreboard-backend/internal/scoreboard"
	"github.com/DoyleJ11/scoreboard-backend/internal/ws"
)

type Deps struct {
	Scoreboard *scoreboard.Scoreboard
	Hub        *hub.Hub
	Config     config.Config
	Logger     *zap.Logger
	// Metrics is nil when metrics are disabled.
	Metrics *metrics.Recorder
}

func SetupRoutes(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log.Named("http"), d.Metrics))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz(d.Hub))
	r.Get("/api/state", GetState(d.Scoreboard))
	r.Get("/ws", ws.Handler(d.Scoreboard, d.Hub, ws.Options{
		OriginPatterns: d.Config.OriginHosts(),
		ActionRate:     rate.Limit(d.Config.RateLimit.PerSecond),
		ActionBurst:    d.Config.RateLimit.Burst,
		Logger:         log,
		Metrics:        d.Metrics,
	}))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	c := cors.New(cors.Options{
		AllowedOrigins:      d.Config.AllowedOrigins,
		AllowedMethods:      []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:      []string{"Accept", "Content-Type"},
		AllowCredentials:    true,
		AllowPrivateNetwork: true,
	})
	return c.Handler(r)
}
