package collab

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/KromDaniel/shieldgen/internal/cmdline"
	"github.com/KromDaniel/shieldgen/internal/ctxlog"
)

// Builder turns the patched controller source into a loadable shared artifact.
type Builder interface {
	Build(ctx context.Context, source string) Result
}

// Step is one toolchain invocation. Command elements may reference $source,
// $object, $shared and $dir.
type Step struct {
	Name    string
	Command []string
}

// DefaultSteps compile source position-independent and link it into lib<name>.so.
func DefaultSteps() []Step {
	return []Step{
		{Name: "compile", Command: []string{"gcc", "-c", "-fPIC", "$source", "-o", "$object"}},
		{Name: "link", Command: []string{"gcc", "-shared", "-o", "$shared", "$object"}},
	}
}

// CommandBuilder runs a fixed sequence of steps, stopping at the first failure.
type CommandBuilder struct {
	Steps  []Step
	Runner Runner
}

// NewCommandBuilder returns a builder for steps, or DefaultSteps if steps is empty.
func NewCommandBuilder(steps []Step, runner Runner) *CommandBuilder {
	if len(steps) == 0 {
		steps = DefaultSteps()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &CommandBuilder{Steps: steps, Runner: runner}
}

// ArtifactVars returns the template variables for source, e.g. shield/shield.c
// gives object shield/shield.o and shared shield/libshield.so.
func ArtifactVars(source string) map[string]string {
	dir := filepath.Dir(source)
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return map[string]string{
		"source": source,
		"dir":    dir,
		"object": filepath.Join(dir, base+".o"),
		"shared": filepath.Join(dir, "lib"+base+".so"),
	}
}

// Build implements Builder.
func (b *CommandBuilder) Build(ctx context.Context, source string) Result {
	logger := ctxlog.FromContext(ctx)
	vars := ArtifactVars(source)

	var last Result
	for _, step := range b.Steps {
		argv, err := cmdline.ExpandArgs(step.Command, vars)
		if err != nil {
			return Failed("build step %s: %v", step.Name, err)
		}
		logger.Debug("Running build step.", "step", step.Name, "argv", argv)
		last = b.Runner.Run(ctx, "", argv)
		if !last.OK {
			logger.Warn("Build step failed.", "step", step.Name, "exit_code", last.ExitCode, "diagnostics", strings.TrimSpace(last.Diagnostics))
			return last
		}
	}
	logger.Info("Shared library created.", "path", vars["shared"])
	return Result{OK: true, Stdout: last.Stdout, Diagnostics: last.Diagnostics}
}
