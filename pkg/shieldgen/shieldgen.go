// Package shieldgen turns a synthesized safety-strategy dump into a strategy
// table and writes it into a C controller source and, optionally, a Go file.
package shieldgen

import (
	"context"
	"fmt"

	"github.com/KromDaniel/shieldgen/internal/config"
	"github.com/KromDaniel/shieldgen/internal/emit"
	"github.com/KromDaniel/shieldgen/internal/pipeline"
	"github.com/KromDaniel/shieldgen/internal/strategy"
	"github.com/KromDaniel/shieldgen/internal/table"
)

// Options configures a generation run.
type Options struct {
	// StrategyFile is the path of the strategy dump to read
	StrategyFile string

	// TargetFile is the C source whose MAXOBS define and strategy region are rewritten
	TargetFile string

	// GoFile, when set, receives the table as Go declarations
	GoFile string

	// GoPackage is the package name of GoFile
	GoPackage string

	// GoUnexported lowercases the generated Go identifiers
	GoUnexported bool

	// Lenient leaves a missing slot of TargetFile unchanged instead of failing
	Lenient bool
}

// Validate checks if the options are valid.
func (o Options) Validate() error {
	if o.StrategyFile == "" {
		return fmt.Errorf("strategy file cannot be empty")
	}
	if o.TargetFile == "" && o.GoFile == "" {
		return fmt.Errorf("target file and go file cannot both be empty")
	}
	if o.GoFile != "" && o.GoPackage == "" {
		return fmt.Errorf("package cannot be empty when go file is set")
	}
	return nil
}

func (o Options) config() *config.Config {
	cfg := config.Default()
	cfg.StrategyPath = o.StrategyFile
	cfg.TargetPath = o.TargetFile
	cfg.StrictPatch = !o.Lenient
	if o.GoFile != "" {
		cfg.GoOutput = &config.GoOutput{Path: o.GoFile, Package: o.GoPackage, Unexported: o.GoUnexported}
	}
	return cfg
}

// Generate reads the dump and writes the configured outputs. No file is
// written if the dump is malformed or, unless Lenient is set, the target
// lacks a slot.
func Generate(ctx context.Context, opts Options) (*Summary, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	gen, err := pipeline.New(opts.config()).Generate(ctx)
	if err != nil {
		return nil, err
	}
	return gen.Summary, nil
}

// Render parses a dump and returns the C declarations for the strategy
// region together with the MAXOBS value.
func Render(text string) (decl string, maxObs int, err error) {
	states, err := strategy.ParseStates(strategy.Load(text))
	if err != nil {
		return "", 0, err
	}
	tbl, err := table.Build(states, nil)
	if err != nil {
		return "", 0, err
	}
	return emit.RenderC(tbl.Entries), tbl.MaxObs, nil
}
