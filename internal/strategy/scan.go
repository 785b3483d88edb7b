package strategy

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fixed phrases of the dump grammar.
const (
	whenPhrase     = "When you are in ("
	takePhrase     = "), take transition "
	whilePhrase    = "While you are in"
	waitPhrase     = "), wait"
	arrowSeparator = "->"
)

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// scanWord returns the end of the run of word runes starting at i.
func scanWord(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isWordRune(r) {
			break
		}
		i += size
	}
	return i
}

// nextRune returns the offset of the rune after the one at i.
func nextRune(s string, i int) int {
	_, size := utf8.DecodeRuneInString(s[i:])
	return i + size
}

// lineEnd returns the offset of the first newline at or after i, or len(s).
func lineEnd(s string, i int) int {
	if k := strings.IndexByte(s[i:], '\n'); k >= 0 {
		return i + k
	}
	return len(s)
}

// scanSegment reads `word` or `word[digits]`.
func scanSegment(s string, i int) (string, int, bool) {
	j := scanWord(s, i)
	if j == i {
		return "", i, false
	}
	if j < len(s) && s[j] == '[' {
		k := j + 1
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j+1 && k < len(s) && s[k] == ']' {
			j = k + 1
		}
	}
	return s[i:j], j, true
}

// scanPath reads segment(.segment)* starting at i.
func scanPath(s string, i int) ([]string, int, bool) {
	seg, j, ok := scanSegment(s, i)
	if !ok {
		return nil, i, false
	}
	path := []string{seg}
	for j < len(s) && s[j] == '.' {
		seg, k, ok := scanSegment(s, j+1)
		if !ok {
			break
		}
		path = append(path, seg)
		j = k
	}
	return path, j, true
}

// scanValue reads a run of word runes and '-'.
func scanValue(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r != '-' && !isWordRune(r) {
			break
		}
		i += size
	}
	return i
}

// ErrNoInteger is returned by IntPrefix when s does not start with an integer.
var ErrNoInteger = errors.New("no integer prefix")

// IntPrefix parses the longest leading `-?[0-9]+` of s. A run that does not
// fit in an int yields an error wrapping strconv.ErrRange.
func IntPrefix(s string) (int, error) {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return 0, ErrNoInteger
	}
	return strconv.Atoi(s[:i])
}

// scanQualified reads `word.word` and returns both halves.
func scanQualified(s string, i int) (string, string, int, bool) {
	j := scanWord(s, i)
	if j == i || j >= len(s) || s[j] != '.' {
		return "", "", i, false
	}
	k := scanWord(s, j+1)
	if k == j+1 {
		return "", "", i, false
	}
	return s[i:j], s[j+1 : k], k, true
}

// matchTransitionTail matches `), take transition M.L->M.L {payload}` at p,
// without crossing limit. It returns the transition (without condition) and
// the offset just past the closing brace.
func matchTransitionTail(s string, p, limit int) (Transition, int, bool) {
	line := s[:limit]
	if !strings.HasPrefix(line[p:], takePhrase) {
		return Transition{}, 0, false
	}
	j := p + len(takePhrase)
	modelFrom, locFrom, j, ok := scanQualified(line, j)
	if !ok || !strings.HasPrefix(line[j:], arrowSeparator) {
		return Transition{}, 0, false
	}
	modelTo, locTo, j, ok := scanQualified(line, j+len(arrowSeparator))
	if !ok || !strings.HasPrefix(line[j:], " {") {
		return Transition{}, 0, false
	}
	j += 2
	end := strings.IndexByte(line[j:], '}')
	if end < 0 {
		return Transition{}, 0, false
	}
	return Transition{
		ModelFrom: modelFrom,
		LocFrom:   locFrom,
		ModelTo:   modelTo,
		LocTo:     locTo,
		Details:   strings.TrimSpace(line[j : j+end]),
	}, j + end + 1, true
}
