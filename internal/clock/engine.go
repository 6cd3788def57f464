// Package clock runs the game clock and shot clock against an injected
// time source. It is not safe for concurrent use: the scoreboard loop
// is its only caller.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/DoyleJ11/scoreboard-backend/internal/engine"
)

const DefaultInterval = 100 * time.Millisecond

type Engine struct {
	state *engine.State
	game  countdown
	shot  countdown
	log   *zap.Logger
}

var _ engine.Clocks = (*Engine)(nil)

func New(state *engine.State, clk clockwork.Clock, interval time.Duration, log *zap.Logger) *Engine {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		state: state,
		game:  countdown{clk: clk, interval: interval},
		shot:  countdown{clk: clk, interval: interval},
		log:   log,
	}
}

func (e *Engine) StartGame() {
	e.game.start()
	e.state.IsRunning = true
}

// StopGame also stops the shot clock: a dead ball ends both.
func (e *Engine) StopGame() {
	e.StopShot()
	e.state.ClockTenths = max(0, e.state.ClockTenths-e.game.stop())
	e.state.IsRunning = false
}

// StartShot is a no-op while the game clock is stopped.
func (e *Engine) StartShot() {
	if !e.state.IsRunning {
		return
	}
	e.shot.start()
	e.state.ShotRunning = true
}

func (e *Engine) StopShot() {
	e.state.ShotClockTenths = max(0, e.state.ShotClockTenths-e.shot.stop())
	e.state.ShotRunning = false
}

// GameC fires on every game clock tick; nil while stopped.
func (e *Engine) GameC() <-chan time.Time { return e.game.ticks() }

// ShotC fires on every shot clock tick; nil while stopped.
func (e *Engine) ShotC() <-chan time.Time { return e.shot.ticks() }

// TickGame consumes elapsed time from the game clock. Reaching zero
// stops both clocks. It reports whether state changed.
func (e *Engine) TickGame() bool {
	if !e.game.running() {
		return false
	}
	n := e.game.sample()
	if n == 0 {
		return false
	}
	e.state.ClockTenths = max(0, e.state.ClockTenths-n)
	if e.state.ClockTenths == 0 {
		e.StopGame()
		e.log.Info("game clock expired", zap.Int("quarter", e.state.Quarter))
	}
	return true
}

// TickShot consumes elapsed time from the shot clock. Reaching zero
// stops only the shot clock.
func (e *Engine) TickShot() bool {
	if !e.shot.running() {
		return false
	}
	n := e.shot.sample()
	if n == 0 {
		return false
	}
	e.state.ShotClockTenths = max(0, e.state.ShotClockTenths-n)
	if e.state.ShotClockTenths == 0 {
		e.StopShot()
		e.log.Info("shot clock expired")
	}
	return true
}

// Close releases both tickers.
func (e *Engine) Close() {
	e.StopGame()
}
