package strategy

import "strings"

// Transition is one model move under a guard, with its raw payload.
type Transition struct {
	ModelFrom string
	LocFrom   string
	ModelTo   string
	LocTo     string
	Details   string
	Condition string
}

// Compare orders transitions field by field.
func (t Transition) Compare(o Transition) int {
	for _, p := range [...][2]string{
		{t.ModelFrom, o.ModelFrom},
		{t.LocFrom, o.LocFrom},
		{t.ModelTo, o.ModelTo},
		{t.LocTo, o.LocTo},
		{t.Details, o.Details},
		{t.Condition, o.Condition},
	} {
		if c := strings.Compare(p[0], p[1]); c != 0 {
			return c
		}
	}
	return 0
}

// Equal reports whether all fields match.
func (t Transition) Equal(o Transition) bool {
	return t == o
}

func (t Transition) String() string {
	return t.ModelFrom + "." + t.LocFrom + "->" + t.ModelTo + "." + t.LocTo + " {" + t.Details + "}"
}

// TransitionGroups maps guards to transitions, preserving the order in which
// guards were first seen and the encounter order within each guard.
type TransitionGroups struct {
	guards []string
	byKey  map[string][]Transition
}

func newTransitionGroups() *TransitionGroups {
	return &TransitionGroups{byKey: make(map[string][]Transition)}
}

func (g *TransitionGroups) add(t Transition) {
	if _, ok := g.byKey[t.Condition]; !ok {
		g.guards = append(g.guards, t.Condition)
	}
	g.byKey[t.Condition] = append(g.byKey[t.Condition], t)
}

// Guards returns the guards in first-seen order.
func (g *TransitionGroups) Guards() []string {
	return g.guards
}

// Get returns the transitions grouped under guard.
func (g *TransitionGroups) Get(guard string) []Transition {
	return g.byKey[guard]
}

// Len returns the number of guard groups.
func (g *TransitionGroups) Len() int {
	return len(g.guards)
}

// Count returns the total number of transitions across all groups.
func (g *TransitionGroups) Count() int {
	n := 0
	for _, ts := range g.byKey {
		n += len(ts)
	}
	return n
}

// Each calls fn for every transition in guard order, then encounter order.
// Iteration stops when fn returns a non-nil error.
func (g *TransitionGroups) Each(fn func(Transition) error) error {
	for _, guard := range g.guards {
		for _, t := range g.byKey[guard] {
			if err := fn(t); err != nil {
				return err
			}
		}
	}
	return nil
}
