package collab

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	dir  string
	argv []string
}

type fakeRunner struct {
	calls   []call
	results []Result
}

func (f *fakeRunner) Run(_ context.Context, dir string, argv []string) Result {
	f.calls = append(f.calls, call{dir: dir, argv: argv})
	if len(f.results) == 0 {
		return Result{OK: true}
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res
}

func TestArtifactVars(t *testing.T) {
	vars := ArtifactVars(filepath.Join("car", "shield", "shield.c"))
	assert.Equal(t, filepath.Join("car", "shield", "shield.o"), vars["object"])
	assert.Equal(t, filepath.Join("car", "shield", "libshield.so"), vars["shared"])
	assert.Equal(t, filepath.Join("car", "shield"), vars["dir"])
}

func TestCommandBuilderDefaultSteps(t *testing.T) {
	runner := &fakeRunner{}
	res := NewCommandBuilder(nil, runner).Build(context.Background(), "shield/shield.c")

	require.True(t, res.OK)
	require.Len(t, runner.calls, 2)
	assert.Equal(t, []string{"gcc", "-c", "-fPIC", "shield/shield.c", "-o", "shield/shield.o"}, runner.calls[0].argv)
	assert.Equal(t, []string{"gcc", "-shared", "-o", "shield/libshield.so", "shield/shield.o"}, runner.calls[1].argv)
	assert.NoError(t, res.Err())
}

func TestCommandBuilderStopsOnFailure(t *testing.T) {
	runner := &fakeRunner{results: []Result{{OK: false, ExitCode: 1, Diagnostics: "shield.c:3: error: expected ';'"}}}
	res := NewCommandBuilder(nil, runner).Build(context.Background(), "shield.c")

	assert.False(t, res.OK)
	assert.Len(t, runner.calls, 1)
	assert.Contains(t, res.Diagnostics, "expected ';'")
	assert.ErrorContains(t, res.Err(), "exit 1")
}

func TestCommandBuilderBadTemplate(t *testing.T) {
	runner := &fakeRunner{}
	res := NewCommandBuilder([]Step{{Name: "x", Command: []string{"cc", "$nope"}}}, runner).Build(context.Background(), "a.c")
	assert.False(t, res.OK)
	assert.Empty(t, runner.calls)
	assert.Contains(t, res.Diagnostics, "undefined variable $nope")
}

func TestExecRunnerMissingToolchain(t *testing.T) {
	res := ExecRunner{}.Run(context.Background(), "", []string{"shieldgen-no-such-compiler-xyz"})
	assert.False(t, res.OK)
	assert.Equal(t, -1, res.ExitCode)
	assert.NotEmpty(t, res.Diagnostics)

	assert.False(t, ExecRunner{}.Run(context.Background(), "", nil).OK)
}

func TestExecRunnerExitCode(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	res := ExecRunner{}.Run(context.Background(), "", []string{sh, "-c", "echo out; echo boom >&2; exit 3"})
	assert.False(t, res.OK)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "boom\n", res.Diagnostics)

	res = ExecRunner{}.Run(context.Background(), "", []string{sh, "-c", "exit 0"})
	assert.True(t, res.OK)
}

func TestBashScripts(t *testing.T) {
	runner := &fakeRunner{results: []Result{{OK: true}, {OK: false, ExitCode: 2, Diagnostics: "verifyta: not found"}}}
	scripts := NewBashScripts("/work", runner)

	assert.True(t, scripts.RunScript(context.Background(), "shield/linux_synthesis.sh").OK)
	failed := scripts.RunScript(context.Background(), "shield/linux_simulate.sh")
	assert.False(t, failed.OK)
	assert.Equal(t, "verifyta: not found", failed.Diagnostics)

	require.Len(t, runner.calls, 2)
	assert.Equal(t, "/work", runner.calls[0].dir)
	assert.Equal(t, []string{"bash", "shield/linux_synthesis.sh"}, runner.calls[0].argv)
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"scenario range", Request{Scenario: "S", Metrics: DefaultMetrics, Mode: ModeScenario, Start: 0, End: 10}, false},
		{"single measure", Request{Scenario: "S", Metrics: []string{DefaultMeasure}, Mode: ModeMeasure, OtherVehicle: 30627}, false},
		{"measure with many metrics", Request{Scenario: "S", Metrics: DefaultMetrics, Mode: ModeMeasure}, true},
		{"scene with metric list", Request{Scenario: "S", Metrics: DefaultMetrics, Mode: ModeScene, TimeStep: 3}, false},
		{"reversed range", Request{Scenario: "S", Metrics: DefaultMetrics, Mode: ModeScenario, Start: 5, End: 1}, true},
		{"no scenario", Request{Metrics: DefaultMetrics, Mode: ModeScenario}, true},
		{"no metrics", Request{Scenario: "S", Mode: ModeScenario}, true},
		{"unknown mode", Request{Scenario: "S", Metrics: DefaultMetrics, Mode: "batch"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommandEvaluatorWritesRequest(t *testing.T) {
	dir := t.TempDir()
	req := Request{Scenario: "DEU_A9-2_1_T-1-shielded", Metrics: []string{"HW", "TTC"}, Mode: ModeScenario, Start: 0, End: 10}

	var seen Request
	var calls [][]string
	runner := RunnerFunc(func(_ context.Context, _ string, argv []string) Result {
		calls = append(calls, argv)
		got, err := ReadRequest(argv[len(argv)-1])
		require.NoError(t, err)
		seen = got
		return Result{OK: true, Stdout: "HW: 12.5\n"}
	})
	eval := NewCommandEvaluator([]string{"python3", "-m", "crime.evaluate", "--scenario", "$scenario", "--mode", "$mode", "$request"}, dir, runner)

	res := eval.Evaluate(context.Background(), req)
	require.True(t, res.OK)
	assert.Equal(t, "HW: 12.5\n", res.Stdout)
	assert.Equal(t, req, seen)

	require.Len(t, calls, 1)
	assert.Equal(t, "DEU_A9-2_1_T-1-shielded", calls[0][4])
	assert.Equal(t, ModeScenario, calls[0][6])

	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	require.NoError(t, err)
	assert.Empty(t, matches, "request file is removed after the run")
}

func TestKnownMode(t *testing.T) {
	for _, mode := range DefaultModes {
		assert.True(t, KnownMode(mode), mode)
	}
	assert.False(t, KnownMode("batch"))
}

func TestCommandEvaluatorRejectsInvalidRequest(t *testing.T) {
	runner := &fakeRunner{}
	res := NewCommandEvaluator([]string{"eval"}, t.TempDir(), runner).Evaluate(context.Background(), Request{})
	assert.False(t, res.OK)
	assert.Empty(t, runner.calls)
}
