// Package pipeline runs the generator end to end: optional synthesis scripts,
// dump parsing, table construction, target patching, optional Go output,
// the toolchain build and the criticality evaluation.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/KromDaniel/shieldgen/internal/collab"
	"github.com/KromDaniel/shieldgen/internal/config"
	"github.com/KromDaniel/shieldgen/internal/ctxlog"
	"github.com/KromDaniel/shieldgen/internal/emit"
	"github.com/KromDaniel/shieldgen/internal/strategy"
	"github.com/KromDaniel/shieldgen/internal/table"
)

// Pipeline binds a configuration to its collaborators.
type Pipeline struct {
	Config    *config.Config
	Builder   collab.Builder
	Scripts   collab.ScriptRunner
	Evaluator collab.Evaluator
}

// New wires the default process-backed collaborators for cfg.
func New(cfg *config.Config) *Pipeline {
	p := &Pipeline{
		Config:  cfg,
		Scripts: collab.NewBashScripts("", nil),
	}
	if cfg.Build != nil {
		steps := make([]collab.Step, 0, len(cfg.Build.Steps))
		for _, s := range cfg.Build.Steps {
			steps = append(steps, collab.Step{Name: s.Name, Command: s.Command})
		}
		p.Builder = collab.NewCommandBuilder(steps, nil)
	}
	if cfg.Evaluator != nil {
		p.Evaluator = collab.NewCommandEvaluator(cfg.Evaluator.Command, "", nil)
	}
	return p
}

// Generation is the outcome of the generate stage.
type Generation struct {
	Summary *Summary
	Table   *table.Table
}

// Report is the outcome of a full run.
type Report struct {
	RunID      string
	Generation *Generation
	Scripts    map[string]collab.Result
	Build       *collab.Result
	Evaluations []collab.Result
}

// Run executes every configured stage. A failing before-stage script stops
// the run; a failing build stops it only when Build.FailOnError is set.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), Scripts: make(map[string]collab.Result)}
	logger := ctxlog.FromContext(ctx).With("run", report.RunID)
	ctx = ctxlog.WithLogger(ctx, logger)
	cfg := p.Config

	for _, s := range cfg.ScriptsAt(config.StageBefore) {
		res := p.Scripts.RunScript(ctx, s.Path)
		report.Scripts[s.Name] = res
		if !res.OK {
			return report, fmt.Errorf("script %s: %w", s.Name, res.Err())
		}
	}

	gen, err := p.Generate(ctx)
	if err != nil {
		return report, err
	}
	report.Generation = gen

	if p.Builder != nil {
		res := p.Builder.Build(ctx, cfg.TargetPath)
		report.Build = &res
		if !res.OK && cfg.Build != nil && cfg.Build.FailOnError {
			return report, fmt.Errorf("build %s: %w", cfg.TargetPath, res.Err())
		}
	}

	for _, s := range cfg.ScriptsAt(config.StageAfter) {
		res := p.Scripts.RunScript(ctx, s.Path)
		report.Scripts[s.Name] = res
	}

	if p.Evaluator != nil && cfg.Evaluator != nil {
		for _, req := range evaluationRequests(cfg) {
			report.Evaluations = append(report.Evaluations, p.Evaluator.Evaluate(ctx, req))
		}
	}

	logger.Info("Run complete.", "entries", gen.Summary.Entries, "max_obs", gen.Summary.MaxObs)
	return report, nil
}

// evaluationRequests returns one request per configured mode, in order.
func evaluationRequests(cfg *config.Config) []collab.Request {
	ev := cfg.Evaluator
	metrics := ev.Metrics
	if len(metrics) == 0 {
		metrics = collab.DefaultMetrics
	}
	measure := ev.Measure
	if measure == "" {
		measure = collab.DefaultMeasure
	}
	modes := ev.Modes
	if len(modes) == 0 {
		modes = collab.DefaultModes
	}

	reqs := make([]collab.Request, 0, len(modes))
	for _, mode := range modes {
		req := collab.Request{Scenario: cfg.Scenario, Mode: mode}
		switch mode {
		case collab.ModeMeasure:
			req.Metrics = []string{measure}
			req.TimeStep = ev.TimeStep
			req.OtherVehicle = ev.OtherVehicle
		case collab.ModeScene:
			req.Metrics = metrics
			req.TimeStep = ev.TimeStep
		default:
			req.Metrics = metrics
			req.Start = ev.Start
			req.End = ev.End
		}
		reqs = append(reqs, req)
	}
	return reqs
}

// Generate reads the dump, builds the table and writes the configured outputs.
// Nothing is written unless parsing, building, patching and staging all
// succeed; the staged outputs are then renamed into place, target first.
func (p *Pipeline) Generate(ctx context.Context) (*Generation, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := p.Config

	raw, err := os.ReadFile(cfg.StrategyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read strategy: %w", err)
	}
	doc := strategy.Load(string(raw))
	states, err := strategy.ParseStates(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", cfg.StrategyPath, err)
	}
	logger.Debug("Strategy parsed.", "path", cfg.StrategyPath, "states", len(states))

	tbl, err := table.Build(states, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build table from %s: %w", cfg.StrategyPath, err)
	}

	var writes []pendingWrite
	if cfg.TargetPath != "" {
		w, err := p.patchTarget(ctx, tbl)
		if err != nil {
			return nil, err
		}
		writes = append(writes, w)
	}
	if out := cfg.GoOutput; out != nil {
		src, err := emit.RenderGo(tbl, emit.GoOptions{Package: out.Package, Unexported: out.Unexported})
		if err != nil {
			return nil, err
		}
		writes = append(writes, pendingWrite{path: out.Path, data: src, mode: 0o644})
	}

	if err := commitWrites(writes); err != nil {
		return nil, err
	}
	for _, w := range writes {
		logger.Info("File written.", "path", w.path, "bytes", len(w.data))
	}

	return &Generation{Summary: summarize(doc, states, tbl), Table: tbl}, nil
}

func (p *Pipeline) patchTarget(ctx context.Context, tbl *table.Table) (pendingWrite, error) {
	path := p.Config.TargetPath
	info, err := os.Stat(path)
	if err != nil {
		return pendingWrite{}, fmt.Errorf("failed to stat target: %w", err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return pendingWrite{}, fmt.Errorf("failed to read target: %w", err)
	}
	if missing := emit.ParseTarget(string(src)).Missing(); len(missing) > 0 && !p.Config.StrictPatch {
		ctxlog.FromContext(ctx).Warn("Target slots not found, leaving them unchanged.", "path", path, "slots", missing)
	}
	patched, err := emit.Patch(string(src), tbl.Entries, tbl.MaxObs, emit.PatchOptions{Strict: p.Config.StrictPatch})
	if err != nil {
		return pendingWrite{}, fmt.Errorf("failed to patch %s: %w", path, err)
	}
	return pendingWrite{path: path, data: []byte(patched), mode: info.Mode().Perm()}, nil
}
