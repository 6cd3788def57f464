package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/DoyleJ11/scoreboard-backend/internal/codec"
	"github.com/DoyleJ11/scoreboard-backend/internal/engine"
	"github.com/DoyleJ11/scoreboard-backend/internal/hub"
	"github.com/DoyleJ11/scoreboard-backend/internal/metrics"
	"github.com/DoyleJ11/scoreboard-backend/internal/scoreboard"
	"github.com/DoyleJ11/scoreboard-backend/internal/types"
	wire "github.com/DoyleJ11/scoreboard-backend/pkg/types"
)

const (
	outboxSize          = 16
	readLimit           = 4096
	defaultWriteTimeout = 3 * time.Second
	defaultPingInterval = 30 * time.Second
)

type Options struct {
	// OriginPatterns are host[:port] patterns allowed to connect from a
	// browser. Same-host requests are always accepted.
	OriginPatterns []string
	ActionRate     rate.Limit
	ActionBurst    int
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	Logger         *zap.Logger
	Metrics        *metrics.Recorder
}

func (o *Options) defaults() {
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = defaultWriteTimeout
	}
	if o.PingInterval <= 0 {
		o.PingInterval = defaultPingInterval
	}
	if o.ActionRate <= 0 {
		o.ActionRate = rate.Inf
	}
	if o.ActionBurst <= 0 {
		o.ActionBurst = 1
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Handler upgrades to a websocket, subscribes the connection to the hub
// and forwards decoded actions to the scoreboard.
func Handler(sb *scoreboard.Scoreboard, h *hub.Hub, opts Options) http.HandlerFunc {
	opts.defaults()
	log := opts.Logger.Named("ws")

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
			Subprotocols:   codec.Subprotocols(),
		})
		if err != nil {
			log.Warn("websocket accept failed",
				zap.String("origin", r.Header.Get("Origin")),
				zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		conn.SetReadLimit(readLimit)

		cd := codec.ForSubprotocol(conn.Subprotocol())
		clientID := uuid.NewString()
		clog := log.With(zap.String("client", clientID), zap.String("codec", cd.Name()))

		out := make(chan types.Frame, outboxSize)
		select {
		case h.Inbox() <- hub.Join{ClientID: clientID, Outbox: out}:
		case <-h.Done():
			conn.Close(websocket.StatusTryAgainLater, "shutting down")
			return
		}
		clog.Info("client connected", zap.String("remote", r.RemoteAddr))
		defer func() {
			select {
			case h.Inbox() <- hub.Leave{ClientID: clientID}:
			case <-h.Done():
			}
			clog.Info("client disconnected")
		}()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go writeLoop(ctx, cancel, conn, cd, out, opts, clog)
		readLoop(ctx, conn, cd, sb, clientID, rate.NewLimiter(opts.ActionRate, opts.ActionBurst), opts.Metrics, clog)
	}
}

// writeLoop owns all data writes on conn. It ends when the hub closes
// the outbox, a write fails, or ctx ends; the first two cancel ctx so
// the reader stops too.
func writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, cd codec.Codec,
	out <-chan types.Frame, opts Options, log *zap.Logger) {
	ping := time.NewTicker(opts.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case f, ok := <-out:
			if !ok {
				// Dropped by the hub or the hub is shutting down.
				conn.Close(websocket.StatusGoingAway, "unsubscribed")
				cancel()
				return
			}
			payload, err := cd.Marshal(wire.ServerMessage{
				Type:    wire.EventStateUpdate,
				Version: f.Version,
				State:   f.Snapshot,
			})
			if err != nil {
				log.Error("encode frame", zap.Int("version", f.Version), zap.Error(err))
				continue
			}
			wctx, wcancel := context.WithTimeout(ctx, opts.WriteTimeout)
			err = conn.Write(wctx, cd.MessageType(), payload)
			wcancel()
			if err != nil {
				log.Debug("write failed", zap.Error(err))
				cancel()
				return
			}

		case <-ping.C:
			pctx, pcancel := context.WithTimeout(ctx, opts.WriteTimeout)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				log.Debug("ping failed", zap.Error(err))
				cancel()
				return
			}
		}
	}
}

func readLoop(ctx context.Context, conn *websocket.Conn, cd codec.Codec, sb *scoreboard.Scoreboard,
	clientID string, limiter *rate.Limiter, rec *metrics.Recorder, log *zap.Logger) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					log.Debug("read ended", zap.Error(err))
				}
			}
			return
		}

		if !limiter.Allow() {
			rec.ActionIgnored("rate_limited")
			log.Warn("action dropped: rate limited")
			continue
		}

		var cm wire.ClientMessage
		if err := cd.Unmarshal(data, &cm); err != nil {
			rec.ActionIgnored("malformed")
			log.Warn("action dropped: malformed message", zap.Error(err))
			continue
		}

		action, err := engine.Decode(cm.ActionKind(), cm.Team, cm.Value)
		if err != nil {
			rec.ActionIgnored(scoreboard.Reason(err))
			log.Warn("action dropped", zap.String("kind", cm.ActionKind()), zap.Error(err))
			continue
		}

		if err := sb.Submit(ctx, clientID, action); err != nil {
			return
		}
	}
}
