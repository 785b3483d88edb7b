package shieldgen

import (
	"github.com/KromDaniel/shieldgen/internal/pipeline"
)

// Summary describes a dump: state, guard and transition counts, the table
// size split by action kind, and the models seen in location vectors.
type Summary = pipeline.Summary

// Analyze parses a dump and builds its table without writing anything.
//
// Example:
//
//	s, err := shieldgen.Analyze(dump)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(s.Entries, s.MaxObs)
func Analyze(text string) (*Summary, error) {
	return pipeline.Analyze(text)
}
