package engine

// Kind is the wire name of an action.
type Kind string

const (
	KindScore           Kind = "score"
	KindFoul            Kind = "foul"
	KindTechFoul        Kind = "techFoul"
	KindTeamFoul        Kind = "teamFoul"
	KindTeamFoulReset   Kind = "teamFoulReset"
	KindTimeout         Kind = "timeout"
	KindTeamName        Kind = "teamName"
	KindTeamColor       Kind = "teamColor"
	KindPossession      Kind = "possession"
	KindJumpBall        Kind = "jumpBall"
	KindClockToggle     Kind = "clockToggle"
	KindClockSet        Kind = "clockSet"
	KindClockReset      Kind = "clockReset"
	KindClockAdjust     Kind = "clockAdjust"
	KindShotClockToggle Kind = "shotClockToggle"
	KindShotClockSet    Kind = "shotClockSet"
	KindShotClockAdjust Kind = "shotClockAdjust"
	KindQuarter         Kind = "quarter"
	KindNewQuarter      Kind = "newQuarter"
	KindResetGame       Kind = "resetGame"
)

// Action is a closed set of state changes. Each variant carries only
// the fields it needs; Processor.Apply switches over all of them.
type Action interface {
	Kind() Kind
	isAction()
}

type Score struct {
	Team  TeamID
	Delta int
}

type Foul struct {
	Team  TeamID
	Delta int
}

type TechFoul struct {
	Team  TeamID
	Delta int
}

type TeamFoul struct {
	Team  TeamID
	Delta int
}

type TeamFoulReset struct{ Team TeamID }

type Timeout struct {
	Team  TeamID
	Delta int
}

type TeamName struct {
	Team TeamID
	Name string
}

type TeamColor struct {
	Team  TeamID
	Color string
}

// SetPossession with a nil Team clears possession.
type SetPossession struct{ Team *TeamID }

type JumpBall struct{}

type ClockToggle struct{}

type ClockSet struct{ Tenths int }

type ClockReset struct{}

type ClockAdjust struct{ Tenths int }

type ShotClockToggle struct{}

type ShotClockSet struct{ Seconds int }

type ShotClockAdjust struct{ Tenths int }

type SetQuarter struct{ Quarter int }

type NewQuarter struct{ Quarter int }

type ResetGame struct{}

func (Score) Kind() Kind           { return KindScore }
func (Foul) Kind() Kind            { return KindFoul }
func (TechFoul) Kind() Kind        { return KindTechFoul }
func (TeamFoul) Kind() Kind        { return KindTeamFoul }
func (TeamFoulReset) Kind() Kind   { return KindTeamFoulReset }
func (Timeout) Kind() Kind         { return KindTimeout }
func (TeamName) Kind() Kind        { return KindTeamName }
func (TeamColor) Kind() Kind       { return KindTeamColor }
func (SetPossession) Kind() Kind   { return KindPossession }
func (JumpBall) Kind() Kind        { return KindJumpBall }
func (ClockToggle) Kind() Kind     { return KindClockToggle }
func (ClockSet) Kind() Kind        { return KindClockSet }
func (ClockReset) Kind() Kind      { return KindClockReset }
func (ClockAdjust) Kind() Kind     { return KindClockAdjust }
func (ShotClockToggle) Kind() Kind { return KindShotClockToggle }
func (ShotClockSet) Kind() Kind    { return KindShotClockSet }
func (ShotClockAdjust) Kind() Kind { return KindShotClockAdjust }
func (SetQuarter) Kind() Kind      { return KindQuarter }
func (NewQuarter) Kind() Kind      { return KindNewQuarter }
func (ResetGame) Kind() Kind       { return KindResetGame }

func (Score) isAction()           {}
func (Foul) isAction()            {}
func (TechFoul) isAction()        {}
func (TeamFoul) isAction()        {}
func (TeamFoulReset) isAction()   {}
func (Timeout) isAction()         {}
func (TeamName) isAction()        {}
func (TeamColor) isAction()       {}
func (SetPossession) isAction()   {}
func (JumpBall) isAction()        {}
func (ClockToggle) isAction()     {}
func (ClockSet) isAction()        {}
func (ClockReset) isAction()      {}
func (ClockAdjust) isAction()     {}
func (ShotClockToggle) isAction() {}
func (ShotClockSet) isAction()    {}
func (ShotClockAdjust) isAction() {}
func (SetQuarter) isAction()      {}
func (NewQuarter) isAction()      {}
func (ResetGame) isAction()       {}
