// Package mirror copies every published frame onto a NATS subject so
// other processes (stat loggers, replay tools) can follow the game
// without holding a websocket.
package mirror

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/DoyleJ11/scoreboard-backend/internal/types"
	wire "github.com/DoyleJ11/scoreboard-backend/pkg/types"
)

const (
	natsMaxReconnects = -1
	natsReconnectWait = 2 * time.Second
)

// conn is the part of *nats.Conn the mirror uses.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

type NATS struct {
	nc      conn
	subject string
	log     *zap.Logger
}

// Dial connects to url and returns a mirror publishing on subject.
func Dial(url, subject string, log *zap.Logger) (*NATS, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("mirror")

	opts := []nats.Option{
		nats.Name("scoreboard"),
		nats.MaxReconnects(natsMaxReconnects),
		nats.ReconnectWait(natsReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error("NATS error", zap.Error(err))
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	log.Info("mirroring frames", zap.String("url", nc.ConnectedUrl()), zap.String("subject", subject))
	return newNATS(nc, subject, log), nil
}

func newNATS(nc conn, subject string, log *zap.Logger) *NATS {
	return &NATS{nc: nc, subject: subject, log: log}
}

// Publish never blocks the caller on the network; the NATS client
// buffers while reconnecting.
func (m *NATS) Publish(f types.Frame) {
	data, err := json.Marshal(wire.ServerMessage{
		Type:    wire.EventStateUpdate,
		Version: f.Version,
		State:   f.Snapshot,
	})
	if err != nil {
		m.log.Error("encode frame", zap.Int("version", f.Version), zap.Error(err))
		return
	}
	if err := m.nc.Publish(m.subject, data); err != nil {
		m.log.Warn("publish frame", zap.Int("version", f.Version), zap.Error(err))
	}
}

// Close flushes pending frames and closes the connection.
func (m *NATS) Close() error {
	return m.nc.Drain()
}
