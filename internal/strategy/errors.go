package strategy

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Use errors.Is against a returned error to test the kind.
var (
	ErrMalformedLocationToken     = errors.New("malformed location token")
	ErrMalformedVariablePath      = errors.New("malformed variable path")
	ErrMalformedTransitionPayload = errors.New("malformed transition payload")
)

// ParseError describes a structural failure inside one state section.
type ParseError struct {
	Kind      error
	Section   int
	Offending string
	Detail    string
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("strategy: section %d: %v %q", e.Section, e.Kind, e.Offending)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

func newParseError(kind error, section int, offending, detail string) *ParseError {
	return &ParseError{Kind: kind, Section: section, Offending: offending, Detail: detail}
}
