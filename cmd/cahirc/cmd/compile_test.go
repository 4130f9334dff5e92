package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// writeProject lays out a minimal cahirc.toml plus src/main.wss under a
// fresh temp directory and returns its path.
func writeProject(t *testing.T, source string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	toml := "[package]\nname = \"fixture\"\nsrc = \"src\"\ndist = \"dist\"\n"
	if err := os.WriteFile(filepath.Join(dir, "cahirc.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "main.wss"), []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// runAndSnapshot runs the compile pipeline against a single-file project
// and snapshots every file written under dist, keyed by its relative path,
// so a diverging translation shows up as a snapshot diff instead of a
// silent pass.
func runAndSnapshot(t *testing.T, name, source string) {
	t.Helper()
	dir := writeProject(t, source)
	if err := runCompile(nil, []string{dir}); err != nil {
		t.Fatalf("runCompile: %v", err)
	}

	distDir := filepath.Join(dir, "dist")
	entries, err := os.ReadDir(distDir)
	if err != nil {
		t.Fatalf("reading dist: %v", err)
	}
	for _, entry := range entries {
		content, err := os.ReadFile(filepath.Join(distDir, entry.Name()))
		if err != nil {
			t.Fatalf("reading %s: %v", entry.Name(), err)
		}
		snaps.MatchSnapshot(t, name+"/"+entry.Name(), string(content))
	}
}

// TestCompileScenarios covers the six scenarios spec.md §8 calls out end to
// end: source on disk in, translated Target on disk out.
func TestCompileScenarios(t *testing.T) {
	t.Run("ConstantMacro", func(t *testing.T) {
		runAndSnapshot(t, "ConstantMacro", `#define const MAX = 5;
function limit(): int { return MAX!; }`)
	})

	t.Run("FunctionMacro", func(t *testing.T) {
		runAndSnapshot(t, "FunctionMacro", `#define function doubleIt(a) { a+a };
function run(): int { return doubleIt!(3); }`)
	})

	t.Run("GenericFunctionSpecialization", func(t *testing.T) {
		runAndSnapshot(t, "GenericFunctionSpecialization", `function identity<T>(x: T): T { return x; }
function run(): int { return identity<int>(5); }`)
	})

	t.Run("ForInLowering", func(t *testing.T) {
		runAndSnapshot(t, "ForInLowering", `function sumAll(items: array): int {
  var total: int = 0;
  for item: int in items { total = total+item; }
  return total;
}`)
	})

	t.Run("LambdaCapture", func(t *testing.T) {
		runAndSnapshot(t, "LambdaCapture", `function run(): void { var f = (x: int) -> x+1; }`)
	})

	t.Run("AnnotationRewrite", func(t *testing.T) {
		runAndSnapshot(t, "AnnotationRewrite", `@replaceMethod(Npc) function onSpawn(): void { }`)
	})
}
