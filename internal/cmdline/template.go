// Package cmdline expands variable references in collaborator command arguments.
package cmdline

import (
	"fmt"
	"strings"
	"unicode"
)

// SegmentType indicates the type of segment in an argument template.
type SegmentType int

const (
	// SegmentLiteral represents literal text.
	SegmentLiteral SegmentType = iota
	// SegmentVariable represents a reference to a named variable ($name, ${name}).
	SegmentVariable
)

// Segment is one parsed piece of an argument template.
type Segment struct {
	Type    SegmentType
	Literal string // For SegmentLiteral: the literal text
	Name    string // For SegmentVariable: the variable name
}

// Template is a parsed argument template.
type Template struct {
	Original string
	Segments []Segment
}

// Parse parses an argument template.
// Template syntax:
//   - $name or ${name}: variable reference
//   - $$: literal dollar sign
//   - Everything else, including a lone $, is literal text
func Parse(template string) (*Template, error) {
	result := &Template{
		Original: template,
		Segments: make([]Segment, 0),
	}

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			result.Segments = append(result.Segments, Segment{Type: SegmentLiteral, Literal: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(template) {
		if template[i] != '$' || i+1 >= len(template) {
			lit.WriteByte(template[i])
			i++
			continue
		}

		next := template[i+1]
		switch {
		case next == '$':
			lit.WriteByte('$')
			i += 2

		case next == '{':
			closeIdx := strings.IndexByte(template[i:], '}')
			if closeIdx == -1 {
				return nil, fmt.Errorf("at position %d: unclosed ${", i)
			}
			name := template[i+2 : i+closeIdx]
			if !isValidIdentifier(name) {
				return nil, fmt.Errorf("at position %d: invalid variable name ${%s}", i, name)
			}
			flush()
			result.Segments = append(result.Segments, Segment{Type: SegmentVariable, Name: name})
			i += closeIdx + 1

		case isNameStart(rune(next)):
			end := i + 2
			for end < len(template) && isNameContinue(rune(template[end])) {
				end++
			}
			flush()
			result.Segments = append(result.Segments, Segment{Type: SegmentVariable, Name: template[i+1 : end]})
			i = end

		default:
			lit.WriteByte('$')
			i++
		}
	}
	flush()

	return result, nil
}

// Expand substitutes vars into the template. Unknown names are an error.
func (t *Template) Expand(vars map[string]string) (string, error) {
	var b strings.Builder
	for _, seg := range t.Segments {
		switch seg.Type {
		case SegmentLiteral:
			b.WriteString(seg.Literal)
		case SegmentVariable:
			v, ok := vars[seg.Name]
			if !ok {
				return "", fmt.Errorf("undefined variable $%s in %q", seg.Name, t.Original)
			}
			b.WriteString(v)
		}
	}
	return b.String(), nil
}

// ExpandArgs parses and expands every element of argv.
func ExpandArgs(argv []string, vars map[string]string) ([]string, error) {
	out := make([]string, 0, len(argv))
	for _, arg := range argv {
		tmpl, err := Parse(arg)
		if err != nil {
			return nil, err
		}
		s, err := tmpl.Expand(vars)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isValidIdentifier(s string) bool {
	if len(s) == 0 {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !isNameStart(r) {
				return false
			}
		} else {
			if !isNameContinue(r) {
				return false
			}
		}
	}
	return true
}
