package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/scoreboard-backend/internal/hub"
	"github.com/DoyleJ11/scoreboard-backend/internal/metrics"
	"github.com/DoyleJ11/scoreboard-backend/internal/scoreboard"
)

const readTimeout = 2 * time.Second

// GetState is the polling fallback: the same snapshot the websocket
// pushes, without the envelope.
func GetState(sb *scoreboard.Scoreboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
		defer cancel()

		f, err := sb.Current(ctx)
		if err != nil {
			http.Error(w, "state unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-State-Version", strconv.Itoa(f.Version))
		_ = json.NewEncoder(w).Encode(f.Snapshot)
	}
}

func Healthz(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		stats, ok := h.Stats(ctx)
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
			return
		}
		_ = json.NewEncoder(w).Encode(struct {
			Status  string `json:"status"`
			Clients int    `json:"clients"`
			Version int    `json:"version"`
		}{Status: "ok", Clients: stats.Clients, Version: stats.Version})
	}
}

func requestLogger(log *zap.Logger, rec *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			rec.RecordHTTPRequest(r.Method, route, status, elapsed)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("elapsed", elapsed),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
