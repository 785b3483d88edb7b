// Package collab runs the external collaborators of the generator: the C
// toolchain, the synthesis/simulation scripts and the criticality evaluator.
// Each is an injected interface; failures are reported as a Result, never as a panic.
package collab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result is the outcome of a collaborator call.
type Result struct {
	OK          bool
	ExitCode    int
	Stdout      string
	Diagnostics string
}

// Failed returns a failed Result carrying diagnostics.
func Failed(format string, args ...any) Result {
	return Result{ExitCode: -1, Diagnostics: fmt.Sprintf(format, args...)}
}

// Err converts a failed Result to an error.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	msg := strings.TrimSpace(r.Diagnostics)
	if msg == "" {
		msg = "no diagnostics"
	}
	return fmt.Errorf("collaborator failed (exit %d): %s", r.ExitCode, msg)
}

// Runner executes an argv and captures its output.
type Runner interface {
	Run(ctx context.Context, dir string, argv []string) Result
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, dir string, argv []string) Result

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, dir string, argv []string) Result {
	return f(ctx, dir, argv)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner. A missing executable and a non-zero exit both yield
// a failed Result; stderr becomes the diagnostics.
func (ExecRunner) Run(ctx context.Context, dir string, argv []string) Result {
	if len(argv) == 0 || argv[0] == "" {
		return Failed("missing command")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Dir = dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{
		OK:          err == nil,
		Stdout:      stdout.String(),
		Diagnostics: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
			if res.Diagnostics == "" {
				res.Diagnostics = err.Error()
			} else {
				res.Diagnostics += "\n" + err.Error()
			}
		}
	}
	return res
}
