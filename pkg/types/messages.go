// Package types is the websocket wire contract shared with clients.
//
// Client -> Server
//
//	{ "kind": string, "team"?: "teamA" | "teamB", "value"?: number | string }
//
// "type" is accepted in place of "kind" for older control panels.
//
// Server -> Client
//
//	stateUpdate:
//	  version: number (increases by one per change)
//	  state: full snapshot; teamA/teamB { name, score, fouls, teamFouls,
//	         techFouls, timeouts, color }, quarter, clockTenths,
//	         lastClockSet, isRunning, shotClockTenths, shotRunning,
//	         possession ("teamA" | "teamB" | null), jumpBall,
//	         display { teamA/teamB { bonus, doubleBonus }, gameClock, shotClock }
package types

const (
	EventStateUpdate = "stateUpdate"

	// Websocket subprotocols. JSON is used when none is requested.
	SubprotocolJSON = "scoreboard.v1.json"
	SubprotocolCBOR = "scoreboard.v1.cbor"
)

type ClientMessage struct {
	Kind  string `json:"kind,omitempty"`
	Type  string `json:"type,omitempty"`
	Team  string `json:"team,omitempty"`
	Value any    `json:"value,omitempty"`
}

// ActionKind prefers kind and falls back to type.
func (m ClientMessage) ActionKind() string {
	if m.Kind != "" {
		return m.Kind
	}
	return m.Type
}

type ServerMessage struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
	State   any    `json:"state,omitempty"`
}
