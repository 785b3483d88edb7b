package collab

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KromDaniel/shieldgen/internal/cmdline"
	"github.com/KromDaniel/shieldgen/internal/ctxlog"
)

// Evaluation modes.
const (
	// ModeMeasure computes one metric at a single time step against another vehicle.
	ModeMeasure = "measure"
	// ModeScene computes a metric list at a single time step.
	ModeScene = "scene"
	// ModeScenario computes a metric list over a [Start, End] time-step range.
	ModeScenario = "scenario"
)

// DefaultModes is the request sequence of a full evaluation pass.
var DefaultModes = []string{ModeMeasure, ModeScene, ModeScenario}

// DefaultMeasure is the metric of a measure request when none is configured.
const DefaultMeasure = "TTCStar"

// DefaultMetrics is the metric list evaluated when none is configured.
var DefaultMetrics = []string{"HW", "TTC", "TTR", "ALongReq", "LongJ", "BTN", "P_MC", "PF"}

// KnownMode reports whether mode is one of the evaluation modes.
func KnownMode(mode string) bool {
	switch mode {
	case ModeMeasure, ModeScene, ModeScenario:
		return true
	}
	return false
}

// Request asks the criticality evaluator to score a scenario.
type Request struct {
	Scenario     string   `yaml:"scenario"`
	Metrics      []string `yaml:"metrics"`
	Mode         string   `yaml:"mode"`
	TimeStep     int      `yaml:"time_step,omitempty"`
	OtherVehicle int      `yaml:"other_vehicle,omitempty"`
	Start        int      `yaml:"start,omitempty"`
	End          int      `yaml:"end,omitempty"`
}

// Validate checks the request is complete for its mode.
func (r Request) Validate() error {
	if r.Scenario == "" {
		return fmt.Errorf("scenario cannot be empty")
	}
	if len(r.Metrics) == 0 {
		return fmt.Errorf("metrics cannot be empty")
	}
	switch r.Mode {
	case ModeMeasure:
		if len(r.Metrics) != 1 {
			return fmt.Errorf("measure mode takes exactly one metric, got %d", len(r.Metrics))
		}
	case ModeScene:
	case ModeScenario:
		if r.End < r.Start {
			return fmt.Errorf("end time step %d is before start %d", r.End, r.Start)
		}
	default:
		return fmt.Errorf("unknown mode %q", r.Mode)
	}
	return nil
}

// Evaluator computes criticality measures for a scenario.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) Result
}

// CommandEvaluator writes the request as YAML into Dir and runs Command.
// Command elements may reference $request, $scenario, $mode, $start and $end.
type CommandEvaluator struct {
	Command []string
	Dir     string
	Runner  Runner
}

// NewCommandEvaluator returns an evaluator running command. Request files are
// written to dir, or the system temp directory when dir is empty.
func NewCommandEvaluator(command []string, dir string, runner Runner) *CommandEvaluator {
	if runner == nil {
		runner = ExecRunner{}
	}
	if dir == "" {
		dir = os.TempDir()
	}
	return &CommandEvaluator{Command: command, Dir: dir, Runner: runner}
}

// Evaluate implements Evaluator.
func (e *CommandEvaluator) Evaluate(ctx context.Context, req Request) Result {
	logger := ctxlog.FromContext(ctx).With("scenario", req.Scenario, "mode", req.Mode)
	if err := req.Validate(); err != nil {
		return Failed("invalid evaluation request: %v", err)
	}

	data, err := yaml.Marshal(req)
	if err != nil {
		return Failed("encode evaluation request: %v", err)
	}
	path := filepath.Join(e.Dir, "crime-"+uuid.NewString()+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Failed("write evaluation request: %v", err)
	}
	defer os.Remove(path)

	argv, err := cmdline.ExpandArgs(e.Command, map[string]string{
		"request":  path,
		"scenario": req.Scenario,
		"mode":     req.Mode,
		"start":    strconv.Itoa(req.Start),
		"end":      strconv.Itoa(req.End),
	})
	if err != nil {
		return Failed("evaluator command: %v", err)
	}

	logger.Info("Evaluating criticality.", "metrics", req.Metrics)
	res := e.Runner.Run(ctx, "", argv)
	if !res.OK {
		logger.Warn("Criticality evaluation failed.", "exit_code", res.ExitCode)
	}
	return res
}

// ReadRequest decodes a YAML request file.
func ReadRequest(path string) (Request, error) {
	var req Request
	data, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}
	if err := yaml.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return req, nil
}
