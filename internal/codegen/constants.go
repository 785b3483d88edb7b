// Package codegen provides the identifiers and markers used in emitted code.
package codegen

import "fmt"

// Names used in the emitted C declarations and the target file.
const (
	CountName     = "SLEN"
	ArrayName     = "strategy"
	EntryType     = "ST_ENTRY"
	MaxObsName    = "MAXOBS"
	StartMarker   = "// strategy starts"
	EndMarker     = "// strategy ends"
	DefinePrefix  = "#define " + MaxObsName
	GeneratedNote = "Code generated by shieldgen. DO NOT EDIT."
)

// Names used in the emitted Go table.
const (
	GoCountName    = "SLen"
	GoMaxObsName   = "MaxObs"
	GoArrayName    = "Strategy"
	GoEntryType    = "Entry"
	GoSnapshotType = "Snapshot"
	GoPositionType = "Position"
	GoActionType   = "Action"
)

// CharLiteral renders b as a C character literal.
func CharLiteral(b byte) string {
	switch b {
	case '\'', '\\':
		return fmt.Sprintf(`'\%c'`, b)
	}
	if b < 0x20 || b > 0x7e {
		return fmt.Sprintf(`'\x%02x'`, b)
	}
	return fmt.Sprintf("'%c'", b)
}

// LowerFirst converts the first character of a string to lowercase.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]|0x20) + s[1:]
}
