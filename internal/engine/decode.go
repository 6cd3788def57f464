package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Decode turns a loosely typed inbound message into an Action. Numeric
// values may arrive as JSON numbers, CBOR integers or numeric strings.
func Decode(kind, team string, value any) (Action, error) {
	switch Kind(kind) {
	case KindScore, KindFoul, KindTechFoul, KindTeamFoul, KindTimeout:
		id, err := requireTeam(team)
		if err != nil {
			return nil, err
		}
		n, err := intValue(value)
		if err != nil {
			return nil, err
		}
		switch Kind(kind) {
		case KindScore:
			return Score{Team: id, Delta: n}, nil
		case KindFoul:
			return Foul{Team: id, Delta: n}, nil
		case KindTechFoul:
			return TechFoul{Team: id, Delta: n}, nil
		case KindTeamFoul:
			return TeamFoul{Team: id, Delta: n}, nil
		default:
			return Timeout{Team: id, Delta: n}, nil
		}

	case KindTeamFoulReset:
		id, err := requireTeam(team)
		if err != nil {
			return nil, err
		}
		return TeamFoulReset{Team: id}, nil

	case KindTeamName, KindTeamColor:
		id, err := requireTeam(team)
		if err != nil {
			return nil, err
		}
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s wants a string, got %T", ErrBadValue, kind, value)
		}
		if Kind(kind) == KindTeamName {
			return TeamName{Team: id, Name: str}, nil
		}
		return TeamColor{Team: id, Color: strings.TrimSpace(str)}, nil

	case KindPossession:
		// value names the team; a bare team field works too. Null or
		// empty clears possession.
		var raw string
		switch v := value.(type) {
		case nil:
			raw = team
		case string:
			raw = strings.TrimSpace(v)
		default:
			return nil, fmt.Errorf("%w: possession wants a team name, got %T", ErrBadValue, value)
		}
		if raw == "" {
			return SetPossession{}, nil
		}
		id, ok := ParseTeam(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingTeam, raw)
		}
		return SetPossession{Team: &id}, nil

	case KindJumpBall:
		return JumpBall{}, nil
	case KindClockToggle:
		return ClockToggle{}, nil
	case KindClockReset:
		return ClockReset{}, nil
	case KindShotClockToggle:
		return ShotClockToggle{}, nil
	case KindResetGame:
		return ResetGame{}, nil

	case KindClockSet, KindClockAdjust, KindShotClockSet, KindShotClockAdjust, KindQuarter, KindNewQuarter:
		n, err := intValue(value)
		if err != nil {
			return nil, err
		}
		switch Kind(kind) {
		case KindClockSet:
			return ClockSet{Tenths: n}, nil
		case KindClockAdjust:
			return ClockAdjust{Tenths: n}, nil
		case KindShotClockSet:
			return ShotClockSet{Seconds: n}, nil
		case KindShotClockAdjust:
			return ShotClockAdjust{Tenths: n}, nil
		case KindQuarter:
			return SetQuarter{Quarter: n}, nil
		default:
			return NewQuarter{Quarter: n}, nil
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func requireTeam(team string) (TeamID, error) {
	id, ok := ParseTeam(team)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingTeam, team)
	}
	return id, nil
}

func intValue(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		return roundFloat(n)
	case float32:
		return roundFloat(float64(n))
	case int:
		return boundInt(int64(n))
	case int64:
		return boundInt(n)
	case uint64:
		if n > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %d out of range", ErrBadValue, n)
		}
		return int(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrBadValue, n)
		}
		return roundFloat(f)
	case nil:
		return 0, fmt.Errorf("%w: missing value", ErrBadValue)
	default:
		return 0, fmt.Errorf("%w: unsupported value type %T", ErrBadValue, v)
	}
}

func boundInt(n int64) (int, error) {
	if n > math.MaxInt32 || n < -math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d out of range", ErrBadValue, n)
	}
	return int(n), nil
}

func roundFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v out of range", ErrBadValue, f)
	}
	return int(math.Round(f)), nil
}
