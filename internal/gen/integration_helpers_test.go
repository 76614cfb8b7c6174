package gen_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"codec-generator/internal/config"
)

// runExampleIntegrationTest generates every config of examples/<name>, copies
// the round-trip tests of its testdata into the output of the first config,
// and runs them against the freshly generated packages.
func runExampleIntegrationTest(t *testing.T, exampleName string, configs ...string) {
	t.Helper()

	if testing.Short() {
		t.Skip("runs the go toolchain")
	}

	repoRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		t.Fatalf("repo root: %v", err)
	}

	exampleDir := filepath.Join(repoRoot, "examples", exampleName)

	var testDir string

	for _, cfg := range configs {
		f, err := config.LoadFile(filepath.Join(exampleDir, cfg))
		if err != nil {
			t.Fatalf("config: %v", err)
		}

		outDir := f.OutputDir()
		if testDir == "" {
			testDir = outDir
		}

		// Ensure a clean output dir so the test is repeatable.
		_ = os.RemoveAll(outDir)

		cmd := exec.CommandContext(t.Context(), "go", "run", "./cmd/codec-generator", "gen",
			"--config", filepath.Join(exampleDir, cfg),
		)
		cmd.Dir = repoRoot

		b, err := cmd.CombinedOutput()
		if err != nil {
			dumpDir(t, outDir)
			t.Fatalf("gen %s failed: %v\n%s", cfg, err, string(b))
		}
	}

	tests, err := filepath.Glob(filepath.Join(exampleDir, "testdata", "*_test.go"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}

	for _, src := range tests {
		b, err := os.ReadFile(src)
		if err != nil {
			t.Fatalf("read %s: %v", src, err)
		}

		if err := os.WriteFile(filepath.Join(testDir, filepath.Base(src)), b, 0o644); err != nil {
			t.Fatalf("copy %s: %v", src, err)
		}
	}

	run := exec.CommandContext(t.Context(), "go", "test", "./examples/"+exampleName+"/...", "-count=1")
	run.Dir = repoRoot

	b, err := run.CombinedOutput()
	if err != nil {
		t.Fatalf("round trip failed: %v\n%s", err, string(b))
	}
}

// dumpDir logs every generated file, best-effort, for easier debugging.
func dumpDir(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		p := filepath.Join(dir, e.Name())
		if fb, rerr := os.ReadFile(p); rerr == nil {
			t.Logf("generated file %s:\n%s", p, string(fb))
		}
	}
}
