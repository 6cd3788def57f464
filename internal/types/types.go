package types

import "github.com/DoyleJ11/scoreboard-backend/internal/engine"

// Frame is one published version of the game.
type Frame struct {
	Version  int
	Snapshot engine.Snapshot
}
