package config

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot mirrors the top-level structure of a pipeline file.
type fileRoot struct {
	Scenario    *string         `hcl:"scenario,optional"`
	Strategy    *string         `hcl:"strategy,optional"`
	Target      *string         `hcl:"target,optional"`
	StrictPatch *bool           `hcl:"strict_patch,optional"`
	GoOutput    *goOutputBlock  `hcl:"go_output,block"`
	Scripts     []*scriptBlock  `hcl:"script,block"`
	Build       *buildBlock     `hcl:"build,block"`
	Evaluator   *evaluatorBlock `hcl:"evaluator,block"`
}

type goOutputBlock struct {
	Path       string `hcl:"path"`
	Package    string `hcl:"package"`
	Unexported *bool  `hcl:"unexported,optional"`
}

type scriptBlock struct {
	Name  string  `hcl:"name,label"`
	Path  string  `hcl:"path"`
	Stage *string `hcl:"stage,optional"`
}

type buildBlock struct {
	FailOnError *bool        `hcl:"fail_on_error,optional"`
	Steps       []*stepBlock `hcl:"step,block"`
}

type stepBlock struct {
	Name    string   `hcl:"name,label"`
	Command []string `hcl:"command"`
}

type evaluatorBlock struct {
	Command      []string `hcl:"command"`
	Metrics      []string `hcl:"metrics,optional"`
	Measure      *string  `hcl:"measure,optional"`
	Modes        []string `hcl:"modes,optional"`
	TimeStep     *int     `hcl:"time_step,optional"`
	OtherVehicle *int     `hcl:"other_vehicle,optional"`
	Start        *int     `hcl:"start,optional"`
	End          *int     `hcl:"end,optional"`
}

var scenarioSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{{Name: "scenario"}},
}

// LoadFile reads an HCL pipeline file on top of base (Default() when nil).
//
// Expressions may reference two variables: root, the directory holding the
// file, and scenario. scenarioOverride, when non-empty, replaces the file's
// scenario attribute before the rest of the file is evaluated.
func LoadFile(path string, base *Config, scenarioOverride string) (*Config, error) {
	if base == nil {
		base = Default()
	}
	cfg := *base
	cfg.Scripts = append([]Script(nil), base.Scripts...)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	vars := map[string]cty.Value{"root": cty.StringVal(root)}

	scenario := scenarioOverride
	if scenario == "" {
		content, _, diags := file.Body.PartialContent(scenarioSchema)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to read scenario in %s: %w", path, diags)
		}
		if attr, ok := content.Attributes["scenario"]; ok {
			val, diags := attr.Expr.Value(&hcl.EvalContext{Variables: vars})
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to evaluate scenario in %s: %w", path, diags)
			}
			if val.IsNull() || !val.IsKnown() || !val.Type().Equals(cty.String) {
				return nil, fmt.Errorf("%s: scenario must be a string", path)
			}
			scenario = val.AsString()
		}
	}
	if scenario == "" {
		scenario = cfg.Scenario
	}
	vars["scenario"] = cty.StringVal(scenario)

	var fr fileRoot
	diags = gohcl.DecodeBody(file.Body, &hcl.EvalContext{Variables: vars}, &fr)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	fr.apply(&cfg)
	cfg.Scenario = scenario
	return &cfg, nil
}

func (fr *fileRoot) apply(cfg *Config) {
	if fr.Strategy != nil {
		cfg.StrategyPath = *fr.Strategy
	}
	if fr.Target != nil {
		cfg.TargetPath = *fr.Target
	}
	if fr.StrictPatch != nil {
		cfg.StrictPatch = *fr.StrictPatch
	}
	if fr.GoOutput != nil {
		cfg.GoOutput = &GoOutput{
			Path:       fr.GoOutput.Path,
			Package:    fr.GoOutput.Package,
			Unexported: fr.GoOutput.Unexported != nil && *fr.GoOutput.Unexported,
		}
	}
	for _, s := range fr.Scripts {
		stage := StageBefore
		if s.Stage != nil {
			stage = *s.Stage
		}
		cfg.Scripts = append(cfg.Scripts, Script{Name: s.Name, Path: s.Path, Stage: stage})
	}
	if fr.Build != nil {
		b := &Build{FailOnError: fr.Build.FailOnError != nil && *fr.Build.FailOnError}
		for _, st := range fr.Build.Steps {
			b.Steps = append(b.Steps, BuildStep{Name: st.Name, Command: st.Command})
		}
		cfg.Build = b
	}
	if ev := fr.Evaluator; ev != nil {
		out := &Evaluator{Command: ev.Command, Metrics: ev.Metrics, Modes: ev.Modes}
		if ev.Measure != nil {
			out.Measure = *ev.Measure
		}
		setInt(&out.TimeStep, ev.TimeStep)
		setInt(&out.OtherVehicle, ev.OtherVehicle)
		setInt(&out.Start, ev.Start)
		setInt(&out.End, ev.End)
		cfg.Evaluator = out
	}
}

func setInt(dst, src *int) {
	if src != nil {
		*dst = *src
	}
}
