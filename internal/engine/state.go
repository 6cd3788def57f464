package engine

// TeamID names one side of the game. It doubles as the wire value for
// the `team` and `possession` fields.
type TeamID string

const (
	TeamA TeamID = "teamA"
	TeamB TeamID = "teamB"
)

func ParseTeam(s string) (TeamID, bool) {
	switch TeamID(s) {
	case TeamA:
		return TeamA, true
	case TeamB:
		return TeamB, true
	default:
		return "", false
	}
}

const (
	DefaultClockTenths     = 6000 // 10:00.0
	DefaultShotClockTenths = 240  // 24.0s
	DefaultTimeouts        = 2

	MaxNameLen   = 20
	MaxFouls     = 6
	MaxTeamFouls = 10

	BonusTeamFouls       = 5
	DoubleBonusTeamFouls = 10
)

type TeamState struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Fouls     int    `json:"fouls"`
	TeamFouls int    `json:"teamFouls"`
	TechFouls int    `json:"techFouls"`
	Timeouts  int    `json:"timeouts"`
	Color     string `json:"color"`
}

// State is the authoritative game record. It is owned by a single
// goroutine and only changed through a Processor or the clock engine.
type State struct {
	TeamA           TeamState `json:"teamA"`
	TeamB           TeamState `json:"teamB"`
	Quarter         int       `json:"quarter"`
	ClockTenths     int       `json:"clockTenths"`
	LastClockSet    int       `json:"lastClockSet"`
	IsRunning       bool      `json:"isRunning"`
	ShotClockTenths int       `json:"shotClockTenths"`
	ShotRunning     bool      `json:"shotRunning"`
	Possession      *TeamID   `json:"possession"`
	JumpBall        bool      `json:"jumpBall"`
}

func newTeam(name, color string) TeamState {
	return TeamState{
		Name:     name,
		Timeouts: DefaultTimeouts,
		Color:    color,
	}
}

func NewState() State {
	return State{
		TeamA:           newTeam("HOME", "#FF6B35"),
		TeamB:           newTeam("AWAY", "#00D4FF"),
		Quarter:         1,
		ClockTenths:     DefaultClockTenths,
		LastClockSet:    DefaultClockTenths,
		ShotClockTenths: DefaultShotClockTenths,
	}
}

// Team returns the addressed side, or nil for an unknown id.
func (s *State) Team(id TeamID) *TeamState {
	switch id {
	case TeamA:
		return &s.TeamA
	case TeamB:
		return &s.TeamB
	default:
		return nil
	}
}

// Clone returns a deep copy safe to hand to other goroutines.
func (s State) Clone() State {
	if s.Possession != nil {
		p := *s.Possession
		s.Possession = &p
	}
	return s
}
