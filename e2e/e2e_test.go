package e2e

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KromDaniel/shieldgen/pkg/shieldgen"
)

// TestE2E generates every case under testdata/ and compares the patched
// controller source with want.c. Each case directory holds strategy.txt,
// shield.c and want.c.
func TestE2E(t *testing.T) {
	cases, err := os.ReadDir("testdata")
	if err != nil {
		t.Fatalf("Failed to read test data: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("No test cases found in testdata")
	}

	for _, c := range cases {
		if !c.IsDir() {
			continue
		}
		name := c.Name()

		t.Run(name, func(t *testing.T) {
			src := filepath.Join("testdata", name)
			caseDir := t.TempDir()

			target := filepath.Join(caseDir, "shield.c")
			copyFile(t, filepath.Join(src, "shield.c"), target)

			// Step 1: Generate the C table and a Go rendition
			goFile := filepath.Join(caseDir, "strategy_gen.go")
			_, err := shieldgen.Generate(context.Background(), shieldgen.Options{
				StrategyFile: filepath.Join(src, "strategy.txt"),
				TargetFile:   target,
				GoFile:       goFile,
				GoPackage:    "shield",
			})
			if err != nil {
				t.Fatalf("Failed to generate: %v", err)
			}

			// Step 2: Compare with the golden file
			got, err := os.ReadFile(target)
			if err != nil {
				t.Fatal(err)
			}
			want, err := os.ReadFile(filepath.Join(src, "want.c"))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(string(want), string(got)); diff != "" {
				t.Errorf("patched source mismatch (-want +got):\n%s", diff)
			}

			if _, err := os.Stat(goFile); err != nil {
				t.Errorf("Go output missing: %v", err)
			}

			// Step 3: Regenerating is a fixed point
			if _, err := shieldgen.Generate(context.Background(), shieldgen.Options{
				StrategyFile: filepath.Join(src, "strategy.txt"),
				TargetFile:   target,
			}); err != nil {
				t.Fatal(err)
			}
			again, err := os.ReadFile(target)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(string(got), string(again)); diff != "" {
				t.Errorf("second generation changed the source (-first +second):\n%s", diff)
			}

			// Step 4: Check the patched source compiles, when a C compiler is around
			gcc, err := exec.LookPath("gcc")
			if err != nil {
				t.Skip("gcc not available")
			}
			cmd := exec.Command(gcc, "-std=gnu11", "-fsyntax-only", target)
			if output, err := cmd.CombinedOutput(); err != nil {
				t.Errorf("gcc rejected the patched source: %v\n%s", err, output)
			}
		})
	}
}

func copyFile(t *testing.T, from, to string) {
	t.Helper()
	data, err := os.ReadFile(from)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(to, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
