package strategy

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// State is the parsed form of one state section. It is not modified after ParseState returns.
type State struct {
	Index           int
	Locations       map[string]string
	Variables       *Tree
	Conditions      []string
	Transitions     *TransitionGroups
	WaitTransitions []string
}

// ParseState runs the extraction passes over one section. index is the
// section's position in the document and is reported in errors.
func ParseState(index int, section string) (*State, error) {
	locations, err := parseLocations(index, section)
	if err != nil {
		return nil, err
	}
	variables, err := parseVariables(index, section)
	if err != nil {
		return nil, err
	}
	return &State{
		Index:           index,
		Locations:       locations,
		Variables:       variables,
		Conditions:      parseConditions(section),
		Transitions:     parseTransitions(section),
		WaitTransitions: parseWaitTransitions(section),
	}, nil
}

// Equal reports whether two states carry the same parsed content. Index is ignored.
func (s *State) Equal(o *State) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.Locations) != len(o.Locations) {
		return false
	}
	for k, v := range s.Locations {
		if ov, ok := o.Locations[k]; !ok || ov != v {
			return false
		}
	}
	if !s.Variables.Equal(o.Variables) ||
		!equalStrings(s.Conditions, o.Conditions) ||
		!equalStrings(s.WaitTransitions, o.WaitTransitions) ||
		!equalStrings(s.Transitions.Guards(), o.Transitions.Guards()) {
		return false
	}
	for _, g := range s.Transitions.Guards() {
		a, b := s.Transitions.Get(g), o.Transitions.Get(g)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// parseLocations reads the Model.Location tokens of the first parenthesized group.
func parseLocations(index int, section string) (map[string]string, error) {
	locations := make(map[string]string)
	open := strings.IndexByte(section, '(')
	if open == -1 {
		return locations, nil
	}
	closing := strings.IndexByte(section[open+1:], ')')
	if closing == -1 {
		return locations, nil
	}
	for _, tok := range strings.Fields(section[open+1 : open+1+closing]) {
		model, loc, ok := strings.Cut(tok, ".")
		if !ok || model == "" || loc == "" || strings.Contains(loc, ".") {
			return nil, newParseError(ErrMalformedLocationToken, index, tok, "want Model.Location")
		}
		locations[model] = loc
	}
	return locations, nil
}

// parseVariables finds every path=value assignment anywhere in the section.
// A failed attempt resumes one rune later; a match resumes after its value.
func parseVariables(index int, section string) (*Tree, error) {
	tree := NewTree()
	for i := 0; i < len(section); {
		path, end, ok := scanPath(section, i)
		if !ok || end >= len(section) || section[end] != '=' {
			i = nextRune(section, i)
			continue
		}
		valueEnd := scanValue(section, end+1)
		if valueEnd == end+1 {
			i = nextRune(section, i)
			continue
		}
		value, err := IntPrefix(section[end+1 : valueEnd])
		if err != nil {
			return nil, newParseError(ErrMalformedVariablePath, index, section[i:valueEnd], err.Error())
		}
		if err := tree.Insert(path, value); err != nil {
			return nil, newParseError(ErrMalformedVariablePath, index, section[i:valueEnd], err.Error())
		}
		i = valueEnd
	}
	return tree, nil
}

// parseConditions collects guards of `When you are in (...)`, deduplicated in first-seen order.
// The guard ends at the first ')' on its line.
func parseConditions(section string) []string {
	var conditions []string
	seen := make(map[string]struct{})
	for pos := 0; pos < len(section); {
		k := strings.Index(section[pos:], whenPhrase)
		if k == -1 {
			break
		}
		start := pos + k + len(whenPhrase)
		closing := strings.IndexByte(section[start:lineEnd(section, start)], ')')
		if closing == -1 {
			pos += k + 1
			continue
		}
		guard := strings.TrimSpace(section[start : start+closing])
		if _, dup := seen[guard]; !dup {
			seen[guard] = struct{}{}
			conditions = append(conditions, guard)
		}
		pos = start + closing + 1
	}
	return conditions
}

// parseTransitions collects `When you are in (guard), take transition M.L->M.L {payload}`.
// The guard is the shortest prefix of the line for which the rest matches.
func parseTransitions(section string) *TransitionGroups {
	groups := newTransitionGroups()
	for pos := 0; pos < len(section); {
		k := strings.Index(section[pos:], whenPhrase)
		if k == -1 {
			break
		}
		start := pos + k + len(whenPhrase)
		limit := lineEnd(section, start)
		next := pos + k + 1
		for p := start; p < limit; p++ {
			if section[p] != ')' {
				continue
			}
			t, end, ok := matchTransitionTail(section, p, limit)
			if !ok {
				continue
			}
			t.Condition = strings.TrimSpace(section[start:p])
			groups.add(t)
			next = end
			break
		}
		pos = next
	}
	return groups
}

// parseWaitTransitions collects guards of `While you are in (guard), wait`, in encounter order.
func parseWaitTransitions(section string) []string {
	var waits []string
	for pos := 0; pos < len(section); {
		k := strings.Index(section[pos:], whilePhrase)
		if k == -1 {
			break
		}
		j := pos + k + len(whilePhrase)
		for j < len(section) {
			r, size := utf8.DecodeRuneInString(section[j:])
			if !unicode.IsSpace(r) {
				break
			}
			j += size
		}
		next := pos + k + 1
		if j < len(section) && section[j] == '(' {
			start := j + 1
			limit := lineEnd(section, start)
			for p := start; p < limit; p++ {
				if section[p] == ')' && strings.HasPrefix(section[p:], waitPhrase) {
					waits = append(waits, strings.TrimSpace(section[start:p]))
					next = p + len(waitPhrase)
					break
				}
			}
		}
		pos = next
	}
	return waits
}
