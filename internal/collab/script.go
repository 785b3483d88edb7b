package collab

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/KromDaniel/shieldgen/internal/ctxlog"
)

// ScriptRunner runs a synthesis or simulation shell script.
type ScriptRunner interface {
	RunScript(ctx context.Context, path string) Result
}

// BashScripts runs scripts with Shell in Dir (the current directory when empty).
type BashScripts struct {
	Shell  string
	Dir    string
	Runner Runner
}

// NewBashScripts returns a ScriptRunner using bash and the given working directory.
func NewBashScripts(dir string, runner Runner) *BashScripts {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &BashScripts{Shell: "bash", Dir: dir, Runner: runner}
}

// RunScript implements ScriptRunner. Success is exit code 0.
func (s *BashScripts) RunScript(ctx context.Context, path string) Result {
	logger := ctxlog.FromContext(ctx).With("script", filepath.Base(path))
	logger.Info("Running script.")

	res := s.Runner.Run(ctx, s.Dir, []string{s.Shell, path})
	if !res.OK {
		logger.Error("Script failed.", "exit_code", res.ExitCode, "stderr", strings.TrimSpace(res.Diagnostics))
		return res
	}
	logger.Debug("Script finished.", "stdout_bytes", len(res.Stdout))
	return res
}
