package table

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/KromDaniel/shieldgen/internal/strategy"
)

// Action tags.
const (
	TagMove byte = 'M'
	TagTurn byte = 'T'
)

// Action is the controller command attached to an entry.
type Action struct {
	Tag  byte
	Code int
}

// Entry is one row of the strategy table.
type Entry struct {
	CPS       Snapshot
	Phase     int
	Count     int
	Obstacles []Snapshot
	Action    Action
}

// Table is the flattened strategy.
type Table struct {
	Entries []Entry
	// MaxObs is one plus the highest obstacle index present in any state, or 0.
	MaxObs int
}

// Classify maps a transition to an action. A transition leaving a location
// whose name contains "Move" carries go(n); one containing "Turn" carries
// turn(n). ok is false for any other location. A recognized location whose
// payload lacks the call is an error.
func Classify(t strategy.Transition) (Action, bool, error) {
	var tag byte
	var call string
	switch {
	case strings.Contains(t.LocFrom, "Move"):
		tag, call = TagMove, "go("
	case strings.Contains(t.LocFrom, "Turn"):
		tag, call = TagTurn, "turn("
	default:
		return Action{}, false, nil
	}

	_, after, found := strings.Cut(t.Details, call)
	if !found {
		return Action{}, false, fmt.Errorf("%w: %s has no %s...) call in %q",
			strategy.ErrMalformedTransitionPayload, t.LocFrom, call, t.Details)
	}
	arg, _, _ := strings.Cut(after, ")")
	code, err := strategy.IntPrefix(strings.TrimSpace(arg))
	if err != nil {
		return Action{}, false, fmt.Errorf("%w: %s%s): %w",
			strategy.ErrMalformedTransitionPayload, call, arg, err)
	}
	return Action{Tag: tag, Code: code}, true, nil
}

// Build walks states, guard groups and transitions in order and emits one
// entry per classified transition.
func Build(states []*strategy.State, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tbl := &Table{}
	dropped := 0

	for _, st := range states {
		cps := ExtractCPS(st.Variables)
		phase := st.Variables.Int(0, phaseKey)
		count := st.Variables.Int(0, countKey)

		indexed := ExtractObstacles(st.Variables, MaxObsCap)
		var obstacles []Snapshot
		for _, o := range indexed {
			obstacles = append(obstacles, o.Snapshot)
			if o.Index+1 > tbl.MaxObs {
				tbl.MaxObs = o.Index + 1
			}
		}

		err := st.Transitions.Each(func(t strategy.Transition) error {
			action, ok, err := Classify(t)
			if err != nil {
				return &strategy.ParseError{
					Kind:      strategy.ErrMalformedTransitionPayload,
					Section:   st.Index,
					Offending: t.String(),
					Detail:    err.Error(),
				}
			}
			if !ok {
				dropped++
				return nil
			}
			tbl.Entries = append(tbl.Entries, Entry{
				CPS:       cps,
				Phase:     phase,
				Count:     count,
				Obstacles: obstacles,
				Action:    action,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Strategy table built.", "states", len(states), "entries", len(tbl.Entries), "dropped", dropped, "max_obs", tbl.MaxObs)
	return tbl, nil
}
