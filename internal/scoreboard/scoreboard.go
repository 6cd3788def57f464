// Package scoreboard owns the live game. One goroutine applies every
// action and every clock tick in arrival order, then publishes a full
// snapshot, so nothing else ever touches the state.
package scoreboard

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/DoyleJ11/scoreboard-backend/internal/clock"
	"github.com/DoyleJ11/scoreboard-backend/internal/engine"
	"github.com/DoyleJ11/scoreboard-backend/internal/metrics"
	"github.com/DoyleJ11/scoreboard-backend/internal/types"
)

var ErrStopped = errors.New("scoreboard stopped")

type Msg interface{ isScoreboardMsg() }

type FromClient struct {
	ClientID string
	Action   engine.Action
}

type GetState struct {
	Reply chan types.Frame
}

type Shutdown struct{}

func (FromClient) isScoreboardMsg() {}
func (GetState) isScoreboardMsg()   {}
func (Shutdown) isScoreboardMsg()   {}

// Publisher receives every frame in version order. Publish must not
// block for long: it runs on the game loop.
type Publisher interface {
	Publish(types.Frame)
}

type Config struct {
	Clock        clockwork.Clock
	TickInterval time.Duration
	Logger       *zap.Logger
	Metrics      *metrics.Recorder
	Publishers   []Publisher
}

type Scoreboard struct {
	inbox   chan Msg
	state   *engine.State
	proc    *engine.Processor
	clocks  *clock.Engine
	version int
	pubs    []Publisher
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	log     *zap.Logger
	metrics *metrics.Recorder
}

// New starts the game loop with initial as the opening state. Both
// clocks start stopped regardless of the flags in initial. Version 0 is
// published before New returns.
func New(parent context.Context, initial engine.State, cfg Config) *Scoreboard {
	ctx, cancel := context.WithCancel(parent)

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("scoreboard")

	st := initial.Clone()
	st.IsRunning = false
	st.ShotRunning = false

	clocks := clock.New(&st, cfg.Clock, cfg.TickInterval, log)
	s := &Scoreboard{
		inbox:   make(chan Msg, 64),
		state:   &st,
		proc:    engine.NewProcessor(&st, clocks),
		clocks:  clocks,
		pubs:    cfg.Publishers,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		log:     log,
		metrics: cfg.Metrics,
	}

	s.emit()
	go s.loop()
	return s
}

func (s *Scoreboard) Inbox() chan<- Msg { return s.inbox }

// Done is closed after the loop has exited and both clocks are stopped.
func (s *Scoreboard) Done() <-chan struct{} { return s.done }

// Submit queues an action. It gives up when ctx ends or the loop has
// stopped.
func (s *Scoreboard) Submit(ctx context.Context, clientID string, a engine.Action) error {
	if s.ctx.Err() != nil {
		return ErrStopped
	}
	select {
	case s.inbox <- FromClient{ClientID: clientID, Action: a}:
		return nil
	case <-s.ctx.Done():
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Current returns the latest frame as seen by the loop.
func (s *Scoreboard) Current(ctx context.Context) (types.Frame, error) {
	if s.ctx.Err() != nil {
		return types.Frame{}, ErrStopped
	}
	reply := make(chan types.Frame, 1)
	select {
	case s.inbox <- GetState{Reply: reply}:
	case <-s.ctx.Done():
		return types.Frame{}, ErrStopped
	case <-ctx.Done():
		return types.Frame{}, ctx.Err()
	}

	select {
	case f := <-reply:
		return f, nil
	case <-s.done:
		return types.Frame{}, ErrStopped
	case <-ctx.Done():
		return types.Frame{}, ctx.Err()
	}
}

func (s *Scoreboard) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case <-s.clocks.GameC():
			if s.clocks.TickGame() {
				s.metrics.ClockTick(metrics.ClockGame)
				s.publish()
			}

		case <-s.clocks.ShotC():
			if s.clocks.TickShot() {
				s.metrics.ClockTick(metrics.ClockShot)
				s.publish()
			}

		case m := <-s.inbox:
			switch msg := m.(type) {
			case FromClient:
				kind := string(msg.Action.Kind())
				if err := s.proc.Apply(msg.Action); err != nil {
					s.metrics.ActionIgnored(Reason(err))
					s.log.Warn("action ignored",
						zap.String("client", msg.ClientID),
						zap.String("kind", kind),
						zap.Error(err))
					break
				}
				s.metrics.ActionApplied(kind)
				s.log.Debug("action applied", zap.String("client", msg.ClientID), zap.String("kind", kind))
				s.publish()

			case GetState:
				msg.Reply <- s.frame()

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Scoreboard) shutdown() {
	s.clocks.Close()
	s.cancel()
	s.log.Info("scoreboard stopped", zap.Int("version", s.version))
}

func (s *Scoreboard) frame() types.Frame {
	return types.Frame{Version: s.version, Snapshot: engine.NewSnapshot(*s.state)}
}

func (s *Scoreboard) publish() {
	s.version++
	s.emit()
}

func (s *Scoreboard) emit() {
	f := s.frame()
	for _, p := range s.pubs {
		p.Publish(f)
	}
	s.metrics.FramePublished(f.Version)
}

// Reason maps an action error to a low-cardinality metric label.
func Reason(err error) string {
	switch {
	case errors.Is(err, engine.ErrMissingTeam):
		return "missing_team"
	case errors.Is(err, engine.ErrBadValue):
		return "bad_value"
	case errors.Is(err, engine.ErrUnknownKind):
		return "unknown_kind"
	default:
		return "other"
	}
}
