package emit

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/KromDaniel/shieldgen/internal/codegen"
	"github.com/KromDaniel/shieldgen/internal/table"
)

// ErrPatchTargetNotFound is returned in strict mode when the target file lacks a slot.
var ErrPatchTargetNotFound = errors.New("patch target not found")

// Slot names reported in PatchError.
const (
	SlotMaxObs   = "maxobs"
	SlotStrategy = "strategy"
)

var defineRe = regexp.MustCompile(regexp.QuoteMeta(codegen.DefinePrefix) + `\s+\d+`)

// PatchError names the slot that could not be found.
type PatchError struct {
	Slot string
	Err  error
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("emit: %s slot: %v", e.Slot, e.Err)
}

func (e *PatchError) Unwrap() error {
	return e.Err
}

// PatchOptions controls Patch.
type PatchOptions struct {
	// Strict fails with ErrPatchTargetNotFound when a slot is absent.
	// Otherwise an absent slot leaves its region of the file unchanged.
	Strict bool
}

// Target is a controller source file with two slots: the MAXOBS define and
// the region between StartMarker and EndMarker.
type Target struct {
	text      string
	hasDefine bool
	hasRegion bool
}

// ParseTarget locates the slots in text.
func ParseTarget(text string) *Target {
	t := &Target{text: text}
	t.hasDefine = defineRe.MatchString(text)
	if i := strings.Index(text, codegen.StartMarker); i >= 0 {
		t.hasRegion = strings.Contains(text[i+len(codegen.StartMarker):], codegen.EndMarker)
	}
	return t
}

// Missing returns the names of the absent slots.
func (t *Target) Missing() []string {
	var missing []string
	if !t.hasDefine {
		missing = append(missing, SlotMaxObs)
	}
	if !t.hasRegion {
		missing = append(missing, SlotStrategy)
	}
	return missing
}

// Fill sets every MAXOBS define to maxObs and replaces every marker region
// with decl. Everything else is left byte-identical.
func (t *Target) Fill(maxObs int, decl string) string {
	out := defineRe.ReplaceAllLiteralString(t.text, codegen.DefinePrefix+" "+strconv.Itoa(maxObs))
	return replaceRegions(out, codegen.StartMarker+"\n"+decl+"\n"+codegen.EndMarker)
}

func replaceRegions(text, replacement string) string {
	var b strings.Builder
	pos := 0
	for {
		i := strings.Index(text[pos:], codegen.StartMarker)
		if i == -1 {
			break
		}
		start := pos + i
		j := strings.Index(text[start+len(codegen.StartMarker):], codegen.EndMarker)
		if j == -1 {
			break
		}
		end := start + len(codegen.StartMarker) + j + len(codegen.EndMarker)
		b.WriteString(text[pos:start])
		b.WriteString(replacement)
		pos = end
	}
	b.WriteString(text[pos:])
	return b.String()
}

// Patch renders entries with RenderC and fills target's slots.
func Patch(target string, entries []table.Entry, maxObs int, opts PatchOptions) (string, error) {
	t := ParseTarget(target)
	if opts.Strict {
		if missing := t.Missing(); len(missing) > 0 {
			return "", &PatchError{Slot: strings.Join(missing, ","), Err: ErrPatchTargetNotFound}
		}
	}
	return t.Fill(maxObs, RenderC(entries)), nil
}
