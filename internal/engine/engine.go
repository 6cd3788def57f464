package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrUnknownKind = errors.New("unknown action kind")
var ErrMissingTeam = errors.New("missing or invalid team")
var ErrBadValue = errors.New("invalid action value")

var hexColor = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// Clocks is the side of the clock engine the processor drives. Start
// calls are idempotent, and StopGame also stops the shot clock.
type Clocks interface {
	StartGame()
	StopGame()
	StartShot()
	StopShot()
}

// Processor applies actions to a State it does not own exclusively:
// the clock engine shares the same pointer and updates the running
// flags and clock fields.
type Processor struct {
	state  *State
	clocks Clocks
}

func NewProcessor(state *State, clocks Clocks) *Processor {
	return &Processor{state: state, clocks: clocks}
}

// Apply mutates state for one action. A non-nil error means nothing
// changed; callers log it and carry on.
func (p *Processor) Apply(a Action) error {
	s := p.state

	switch act := a.(type) {
	case Score:
		t, err := p.team(act.Team)
		if err != nil {
			return err
		}
		t.Score = floor0(t.Score + act.Delta)

	case Foul:
		t, err := p.team(act.Team)
		if err != nil {
			return err
		}
		t.Fouls = clamp(t.Fouls+act.Delta, 0, MaxFouls)

	case TechFoul:
		t, err := p.team(act.Team)
		if err != nil {
			return err
		}
		t.TechFouls = floor0(t.TechFouls + act.Delta)

	case TeamFoul:
		t, err := p.team(act.Team)
		if err != nil {
			return err
		}
		t.TeamFouls = clamp(t.TeamFouls+act.Delta, 0, MaxTeamFouls)

	case TeamFoulReset:
		t, err := p.team(act.Team)
		if err != nil {
			return err
		}
		t.TeamFouls = 0

	case Timeout:
		t, err := p.team(act.Team)
		if err != nil {
			return err
		}
		t.Timeouts = addTimeouts(t.Timeouts, act.Delta, s.Quarter)

	case TeamName:
		t, err := p.team(act.Team)
		if err != nil {
			return err
		}
		name, ok := normalizeName(act.Name)
		if !ok {
			return fmt.Errorf("%w: empty team name", ErrBadValue)
		}
		t.Name = name

	case TeamColor:
		t, err := p.team(act.Team)
		if err != nil {
			return err
		}
		if !hexColor.MatchString(act.Color) {
			return fmt.Errorf("%w: color %q", ErrBadValue, act.Color)
		}
		t.Color = act.Color

	case SetPossession:
		if act.Team != nil {
			if _, ok := ParseTeam(string(*act.Team)); !ok {
				return ErrMissingTeam
			}
			id := *act.Team
			s.Possession = &id
		} else {
			s.Possession = nil
		}
		s.JumpBall = false

	case JumpBall:
		s.JumpBall = !s.JumpBall
		if s.JumpBall {
			s.Possession = nil
		}

	case ClockToggle:
		if s.IsRunning {
			p.clocks.StopGame()
		} else {
			p.clocks.StartGame()
			if s.ShotClockTenths > 0 {
				p.clocks.StartShot()
			}
		}

	case ClockSet:
		p.clocks.StopGame()
		s.ClockTenths = floor0(act.Tenths)
		s.LastClockSet = s.ClockTenths

	case ClockReset:
		p.clocks.StopGame()
		s.ClockTenths = s.LastClockSet

	case ClockAdjust:
		s.ClockTenths = floor0(s.ClockTenths + act.Tenths)

	case ShotClockToggle:
		if s.ShotRunning {
			p.clocks.StopShot()
		} else if s.IsRunning {
			p.clocks.StartShot()
		}

	case ShotClockSet:
		p.clocks.StopShot()
		s.ShotClockTenths = floor0(act.Seconds * 10)
		if s.IsRunning {
			p.clocks.StartShot()
		}

	case ShotClockAdjust:
		s.ShotClockTenths = floor0(s.ShotClockTenths + act.Tenths)

	case SetQuarter:
		if act.Quarter < 1 {
			return fmt.Errorf("%w: quarter %d", ErrBadValue, act.Quarter)
		}
		s.Quarter = act.Quarter

	case NewQuarter:
		if act.Quarter < 1 {
			return fmt.Errorf("%w: quarter %d", ErrBadValue, act.Quarter)
		}
		p.clocks.StopGame()
		s.Quarter = act.Quarter
		s.ClockTenths = s.LastClockSet
		s.ShotClockTenths = DefaultShotClockTenths
		for _, t := range []*TeamState{&s.TeamA, &s.TeamB} {
			t.Fouls = 0
			t.TeamFouls = 0
		}
		s.Possession = nil
		s.JumpBall = true

	case ResetGame:
		p.clocks.StopGame()
		fresh := NewState()
		fresh.TeamA.Name, fresh.TeamA.Color = s.TeamA.Name, s.TeamA.Color
		fresh.TeamB.Name, fresh.TeamB.Color = s.TeamB.Name, s.TeamB.Color
		*s = fresh

	default:
		return fmt.Errorf("%w: %T", ErrUnknownKind, a)
	}

	return nil
}

func (p *Processor) team(id TeamID) (*TeamState, error) {
	t := p.state.Team(id)
	if t == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingTeam, id)
	}
	return t, nil
}

func normalizeName(name string) (string, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return "", false
	}
	if r := []rune(name); len(r) > MaxNameLen {
		name = string(r[:MaxNameLen])
	}
	return name, true
}
