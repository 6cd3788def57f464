package engine

import "fmt"

type TeamDisplay struct {
	Bonus       bool `json:"bonus"`
	DoubleBonus bool `json:"doubleBonus"`
}

// Display holds values derived from State for renderers. It is never
// read back as input.
type Display struct {
	TeamA     TeamDisplay `json:"teamA"`
	TeamB     TeamDisplay `json:"teamB"`
	GameClock string      `json:"gameClock"`
	ShotClock string      `json:"shotClock"`
}

// Snapshot is the outbound shape: every State field at the top level
// plus the derived display block.
type Snapshot struct {
	State
	Display Display `json:"display"`
}

func NewSnapshot(s State) Snapshot {
	s = s.Clone()
	return Snapshot{
		State: s,
		Display: Display{
			TeamA:     teamDisplay(s.TeamA),
			TeamB:     teamDisplay(s.TeamB),
			GameClock: FormatGameClock(s.ClockTenths),
			ShotClock: FormatShotClock(s.ShotClockTenths),
		},
	}
}

func teamDisplay(t TeamState) TeamDisplay {
	return TeamDisplay{
		Bonus:       t.TeamFouls >= BonusTeamFouls,
		DoubleBonus: t.TeamFouls >= DoubleBonusTeamFouls,
	}
}

// FormatGameClock renders M:SS above one minute and SS.t inside the
// last minute.
func FormatGameClock(tenths int) string {
	tenths = floor0(tenths)
	if tenths > 600 {
		secs := tenths / 10
		return fmt.Sprintf("%d:%02d", secs/60, secs%60)
	}
	return fmt.Sprintf("%02d.%d", tenths/10, tenths%10)
}

// FormatShotClock renders whole seconds (rounded up) above ten seconds
// and S.t below.
func FormatShotClock(tenths int) string {
	tenths = floor0(tenths)
	if tenths > 100 {
		return fmt.Sprintf("%d", (tenths+9)/10)
	}
	return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
}
