// Package strategy parses textual safety-strategy dumps into per-state records.
//
// A dump looks like:
//
//	Strategy to avoid losing:
//
//	State: ( Car.Move Obs.Drive ) phase=1 count=0 cps_state.position.x=120 ...
//
//	When you are in (cps_state.vel<=2000), take transition Car.Move->Car.Turn { 1, tau, go(5) }
//	While you are in (true), wait.
//
// Load splits the dump into sections; ParseState turns one section into a State.
package strategy

import "strings"

// Document markers.
const (
	StateMarker    = "State:"
	InitialMarker  = "Initial state:"
	StrategyMarker = "Strategy to avoid losing:"
)

// Document owns the raw dump text and the raw state sections cut from it.
type Document struct {
	text     string
	sections []string
}

// Load splits text at every StateMarker. Text before the first marker is
// preamble and discarded; every following segment is trimmed and kept.
func Load(text string) *Document {
	doc := &Document{text: text}
	parts := strings.Split(text, StateMarker)
	for _, part := range parts[1:] {
		doc.sections = append(doc.sections, strings.TrimSpace(part))
	}
	return doc
}

// Text returns the full raw text.
func (d *Document) Text() string {
	return d.text
}

// Sections returns the raw state sections in document order.
func (d *Document) Sections() []string {
	return d.sections
}

// InitialState returns the initial-state description, from InitialMarker up
// to StrategyMarker. ok is false if either marker is missing.
func (d *Document) InitialState() (string, bool) {
	start := strings.Index(d.text, InitialMarker)
	end := strings.Index(d.text, StrategyMarker)
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return strings.TrimSpace(d.text[start:end]), true
}

// Strategy returns the text from StrategyMarker to the end of the dump.
func (d *Document) Strategy() (string, bool) {
	start := strings.Index(d.text, StrategyMarker)
	if start == -1 {
		return "", false
	}
	return strings.TrimSpace(d.text[start:]), true
}

// ParseStates parses every section of d. The first structural error aborts.
func ParseStates(d *Document) ([]*State, error) {
	states := make([]*State, 0, len(d.sections))
	for i, section := range d.sections {
		st, err := ParseState(i, section)
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	return states, nil
}
