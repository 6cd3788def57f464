// Package hub fans published frames out to every connected client.
package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/DoyleJ11/scoreboard-backend/internal/metrics"
	"github.com/DoyleJ11/scoreboard-backend/internal/types"
)

type HubMsg interface{ isHubMsg() }

// Join registers a client. The latest frame, if any, is queued on the
// outbox immediately. The hub closes the outbox on Leave or shutdown.
type Join struct {
	ClientID string
	Outbox   chan types.Frame
}

type Leave struct{ ClientID string }

type Publish struct{ Frame types.Frame }

type GetStats struct{ Reply chan Stats }

type ShutdownHub struct{}

func (Join) isHubMsg()        {}
func (Leave) isHubMsg()       {}
func (Publish) isHubMsg()     {}
func (GetStats) isHubMsg()    {}
func (ShutdownHub) isHubMsg() {}

type Stats struct {
	Clients   int
	Version   int
	Coalesced uint64
	Dropped   uint64
}

type Hub struct {
	inbox     chan HubMsg
	clients   map[string]chan types.Frame
	last      *types.Frame
	coalesced uint64
	dropped   uint64
	ctx       context.Context
	cancel    context.CancelFunc
	log       *zap.Logger
	metrics   *metrics.Recorder
}

func NewHub(parent context.Context, log *zap.Logger, rec *metrics.Recorder) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		clients: make(map[string]chan types.Frame),
		ctx:     ctx,
		cancel:  cancel,
		log:     log.Named("hub"),
		metrics: rec,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed once the hub has stopped.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

// Publish queues a frame for fan-out. It returns without sending once
// the hub is shut down.
func (h *Hub) Publish(f types.Frame) {
	select {
	case h.inbox <- Publish{Frame: f}:
	case <-h.ctx.Done():
	}
}

// Stats asks the loop for counters. Returns false if the hub is gone.
func (h *Hub) Stats(ctx context.Context) (Stats, bool) {
	reply := make(chan Stats, 1)
	select {
	case h.inbox <- GetStats{Reply: reply}:
	case <-h.ctx.Done():
		return Stats{}, false
	case <-ctx.Done():
		return Stats{}, false
	}
	select {
	case s := <-reply:
		return s, true
	case <-h.ctx.Done():
		return Stats{}, false
	case <-ctx.Done():
		return Stats{}, false
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Join:
				if old, ok := h.clients[msg.ClientID]; ok {
					close(old)
				}
				h.clients[msg.ClientID] = msg.Outbox
				if h.last != nil && !h.deliver(msg.ClientID, msg.Outbox, *h.last) {
					h.drop(msg.ClientID, msg.Outbox)
				}
				h.metrics.SetClients(len(h.clients))
				h.log.Debug("client joined", zap.String("client", msg.ClientID), zap.Int("clients", len(h.clients)))

			case Leave:
				if ch, ok := h.clients[msg.ClientID]; ok {
					close(ch)
					delete(h.clients, msg.ClientID)
					h.metrics.SetClients(len(h.clients))
					h.log.Debug("client left", zap.String("client", msg.ClientID), zap.Int("clients", len(h.clients)))
				}

			case Publish:
				f := msg.Frame
				h.last = &f
				h.broadcast(f)

			case GetStats:
				s := Stats{Clients: len(h.clients), Coalesced: h.coalesced, Dropped: h.dropped}
				if h.last != nil {
					s.Version = h.last.Version
				}
				msg.Reply <- s

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
	h.metrics.SetClients(0)
	h.cancel()
}

func (h *Hub) broadcast(f types.Frame) {
	for id, ch := range h.clients {
		if !h.deliver(id, ch, f) {
			h.drop(id, ch)
		}
	}
}

// deliver never blocks. When a client's queue is full the oldest queued
// frame is discarded: every frame is a full snapshot, so only the
// newest one matters.
func (h *Hub) deliver(id string, ch chan types.Frame, f types.Frame) bool {
	select {
	case ch <- f:
		return true
	default:
	}

	select {
	case <-ch:
		h.coalesced++
		h.metrics.FrameCoalesced()
	default:
	}

	select {
	case ch <- f:
		return true
	default:
		return false
	}
}

// drop disconnects a client that cannot take frames at all.
func (h *Hub) drop(id string, ch chan types.Frame) {
	close(ch)
	delete(h.clients, id)
	h.dropped++
	h.metrics.ClientDropped()
	h.metrics.SetClients(len(h.clients))
	h.log.Warn("dropped unresponsive client", zap.String("client", id))
}
