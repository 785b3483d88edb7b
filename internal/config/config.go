// Package config holds the generator pipeline configuration and loads it from
// an HCL pipeline file.
package config

import (
	"errors"
	"fmt"

	"github.com/KromDaniel/shieldgen/internal/collab"
)

// Script stages.
const (
	StageBefore = "before"
	StageAfter  = "after"
)

// Config is the fully resolved pipeline configuration.
type Config struct {
	Scenario     string
	StrategyPath string
	TargetPath   string
	StrictPatch  bool

	GoOutput  *GoOutput
	Scripts   []Script
	Build     *Build
	Evaluator *Evaluator

	LogLevel  string
	LogFormat string
}

// GoOutput requests a Go rendition of the table.
type GoOutput struct {
	Path       string
	Package    string
	Unexported bool
}

// Script is an external script run before generation (synthesis) or after
// the build (simulation).
type Script struct {
	Name  string
	Path  string
	Stage string
}

// Build lists the toolchain steps. An empty list means the default gcc steps.
type Build struct {
	Steps       []BuildStep
	FailOnError bool
}

// BuildStep is one toolchain command.
type BuildStep struct {
	Name    string
	Command []string
}

// Evaluator configures the criticality evaluator calls. One request is sent
// per entry of Modes, in order; an empty Modes means collab.DefaultModes.
type Evaluator struct {
	Command []string
	// Metrics is the list of scene and scenario requests.
	Metrics []string
	// Measure is the single metric of a measure request.
	Measure      string
	Modes        []string
	TimeStep     int
	OtherVehicle int
	Start        int
	End          int
}

// Default returns a configuration with strict patching and info-level text logs.
func Default() *Config {
	return &Config{
		StrictPatch: true,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if c.StrategyPath == "" {
		return errors.New("strategy path is a required configuration field and cannot be empty")
	}
	if c.TargetPath == "" && c.GoOutput == nil {
		return errors.New("nothing to generate: set a target file or a go_output block")
	}
	if c.GoOutput != nil {
		if c.GoOutput.Path == "" {
			return errors.New("go_output: path cannot be empty")
		}
		if c.GoOutput.Package == "" {
			return errors.New("go_output: package cannot be empty")
		}
	}
	if c.Build != nil && c.TargetPath == "" {
		return errors.New("build requires a target file")
	}
	for _, s := range c.Scripts {
		if s.Path == "" {
			return fmt.Errorf("script %q: path cannot be empty", s.Name)
		}
		if s.Stage != StageBefore && s.Stage != StageAfter {
			return fmt.Errorf("script %q: stage must be %q or %q", s.Name, StageBefore, StageAfter)
		}
	}
	if c.Evaluator != nil {
		if len(c.Evaluator.Command) == 0 {
			return errors.New("evaluator: command cannot be empty")
		}
		if c.Scenario == "" {
			return errors.New("evaluator: scenario cannot be empty")
		}
		for _, m := range c.Evaluator.Modes {
			if !collab.KnownMode(m) {
				return fmt.Errorf("evaluator: unknown mode %q", m)
			}
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	return nil
}

// ScriptsAt returns the scripts of one stage in file order.
func (c *Config) ScriptsAt(stage string) []Script {
	var out []Script
	for _, s := range c.Scripts {
		if s.Stage == stage {
			out = append(out, s)
		}
	}
	return out
}
