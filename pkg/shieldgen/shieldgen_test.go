package shieldgen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KromDaniel/shieldgen/internal/emit"
	"github.com/KromDaniel/shieldgen/internal/strategy"
)

const dump = `Strategy to avoid losing:

State: ( Car.Move ) phase=1 count=2 cps_state.position.x=4 cps_state.vel=7 obs_state[1].position.y=9
When you are in (true), take transition Car.Move->Car.Move { 1, tau, go(3) }
`

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"target only", Options{StrategyFile: "s.txt", TargetFile: "shield.c"}, false},
		{"go only", Options{StrategyFile: "s.txt", GoFile: "s.go", GoPackage: "shield"}, false},
		{"no strategy", Options{TargetFile: "shield.c"}, true},
		{"no outputs", Options{StrategyFile: "s.txt"}, true},
		{"go without package", Options{StrategyFile: "s.txt", GoFile: "s.go"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		StrategyFile: filepath.Join(dir, "dump.txt"),
		TargetFile:   filepath.Join(dir, "shield.c"),
		GoFile:       filepath.Join(dir, "table.go"),
		GoPackage:    "shield",
	}
	require.NoError(t, os.WriteFile(opts.StrategyFile, []byte(dump), 0o644))
	require.NoError(t, os.WriteFile(opts.TargetFile, []byte("#define MAXOBS 0\n// strategy starts\n// strategy ends\n"), 0o644))

	s, err := Generate(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries)
	assert.Equal(t, 2, s.MaxObs)

	c, err := os.ReadFile(opts.TargetFile)
	require.NoError(t, err)
	assert.Contains(t, string(c), "#define MAXOBS 2\n")
	assert.Contains(t, string(c), "{'M', 3}")

	g, err := os.ReadFile(opts.GoFile)
	require.NoError(t, err)
	assert.Contains(t, string(g), "package shield")
}

func TestGenerateStrictAndLenient(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		StrategyFile: filepath.Join(dir, "dump.txt"),
		TargetFile:   filepath.Join(dir, "shield.c"),
	}
	require.NoError(t, os.WriteFile(opts.StrategyFile, []byte(dump), 0o644))
	require.NoError(t, os.WriteFile(opts.TargetFile, []byte("#define MAXOBS 0\n"), 0o644))

	_, err := Generate(context.Background(), opts)
	assert.ErrorIs(t, err, emit.ErrPatchTargetNotFound)

	opts.Lenient = true
	_, err = Generate(context.Background(), opts)
	require.NoError(t, err)
	c, err := os.ReadFile(opts.TargetFile)
	require.NoError(t, err)
	assert.Equal(t, "#define MAXOBS 2\n", string(c))
}

func TestGenerateInvalidOptions(t *testing.T) {
	_, err := Generate(context.Background(), Options{})
	assert.ErrorContains(t, err, "invalid options")
}

func TestRender(t *testing.T) {
	decl, maxObs, err := Render(dump)
	require.NoError(t, err)
	assert.Equal(t, 2, maxObs)
	assert.Equal(t, "const int SLEN = 1;\n"+
		"const ST_ENTRY strategy[1] = {\n"+
		"\t{\n"+
		"\t\t{{{4, 0}, 7, 0, 0}, 1, 2, {\n"+
		"\t\t\t{{0, 9}, 0, 0, 0}\n"+
		"\t\t}},\n"+
		"\t\t{'M', 3}\n"+
		"\t}\n"+
		"};", decl)

	_, _, err = Render("State: ( Car )")
	assert.ErrorIs(t, err, strategy.ErrMalformedLocationToken)
}

func TestAnalyze(t *testing.T) {
	s, err := Analyze(dump)
	require.NoError(t, err)
	assert.Equal(t, []string{"Car"}, s.Models)
	assert.Equal(t, 1, s.MoveEntries)
	assert.False(t, s.HasInitialState)
	assert.True(t, s.HasStrategy)
}
