package pipeline

import (
	"sort"

	"github.com/KromDaniel/shieldgen/internal/strategy"
	"github.com/KromDaniel/shieldgen/internal/table"
)

// Summary describes a parsed dump without writing anything.
type Summary struct {
	States          int      `yaml:"states"`
	Guards          int      `yaml:"guards"`
	Conditions      int      `yaml:"conditions"`
	Transitions     int      `yaml:"transitions"`
	WaitTransitions int      `yaml:"wait_transitions"`
	Entries         int      `yaml:"entries"`
	MaxObs          int      `yaml:"max_obs"`
	MoveEntries     int      `yaml:"move_entries"`
	TurnEntries     int      `yaml:"turn_entries"`
	HasInitialState bool     `yaml:"has_initial_state"`
	HasStrategy     bool     `yaml:"has_strategy"`
	Models          []string `yaml:"models"`
}

// Analyze parses text and builds its table, returning the counts.
func Analyze(text string) (*Summary, error) {
	doc := strategy.Load(text)
	states, err := strategy.ParseStates(doc)
	if err != nil {
		return nil, err
	}
	tbl, err := table.Build(states, nil)
	if err != nil {
		return nil, err
	}
	return summarize(doc, states, tbl), nil
}

func summarize(doc *strategy.Document, states []*strategy.State, tbl *table.Table) *Summary {
	s := &Summary{
		States:  len(states),
		Entries: len(tbl.Entries),
		MaxObs:  tbl.MaxObs,
	}
	_, s.HasInitialState = doc.InitialState()
	_, s.HasStrategy = doc.Strategy()

	seen := make(map[string]struct{})
	for _, st := range states {
		s.Guards += st.Transitions.Len()
		s.Conditions += len(st.Conditions)
		s.Transitions += st.Transitions.Count()
		s.WaitTransitions += len(st.WaitTransitions)
		for model := range st.Locations {
			if _, ok := seen[model]; !ok {
				seen[model] = struct{}{}
				s.Models = append(s.Models, model)
			}
		}
	}
	sort.Strings(s.Models)

	for _, e := range tbl.Entries {
		switch e.Action.Tag {
		case table.TagMove:
			s.MoveEntries++
		case table.TagTurn:
			s.TurnEntries++
		}
	}
	return s
}
