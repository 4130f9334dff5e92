package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Aelto/tw3-cahirc-language/internal/config"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func newProject(t *testing.T, src, dist string, deps map[string]string) *config.Project {
	t.Helper()
	if deps == nil {
		deps = map[string]string{}
	}
	return &config.Project{Name: "demo", Src: src, Dist: dist, Dependencies: deps}
}

func TestCompileEmitsOneFilePerSource(t *testing.T) {
	dir := t.TempDir()
	src, dist := filepath.Join(dir, "src"), filepath.Join(dir, "dist")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	write(t, filepath.Join(src, "main.wss"), `function add(a: int, b: int): int { return a+b; }`)

	res, err := New().Compile(context.Background(), newProject(t, src, dist, nil))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.FilesCompiled != 1 || res.FilesSkipped != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}

	out, err := os.ReadFile(filepath.Join(dist, "main.ws"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(out), "function add") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestCompileMirrorsNestedSourceDirectories(t *testing.T) {
	dir := t.TempDir()
	src, dist := filepath.Join(dir, "src"), filepath.Join(dir, "dist")
	if err := os.MkdirAll(filepath.Join(src, "combat"), 0o755); err != nil {
		t.Fatal(err)
	}
	write(t, filepath.Join(src, "combat", "attacks.wss"), `function slash(): void { }`)

	if _, err := New().Compile(context.Background(), newProject(t, src, dist, nil)); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dist, "combat", "attacks.ws")); err != nil {
		t.Fatalf("expected mirrored output path, stat err: %v", err)
	}
}

func TestCompileSkipsAndReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	src, dist := filepath.Join(dir, "src"), filepath.Join(dir, "dist")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	write(t, filepath.Join(src, "bad.wss"), `function broken( {`)
	write(t, filepath.Join(src, "good.wss"), `function ok(): void { }`)

	var stderr strings.Builder
	d := New()
	d.Stderr = &stderr

	res, err := d.Compile(context.Background(), newProject(t, src, dist, nil))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.FilesSkipped != 1 || res.FilesCompiled != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.Contains(stderr.String(), "parse error") {
		t.Fatalf("expected a reported parse error, got: %s", stderr.String())
	}
	if _, err := os.Stat(filepath.Join(dist, "good.ws")); err != nil {
		t.Fatalf("expected the well-formed file to still be emitted: %v", err)
	}
}

func TestCompileClearsPriorDistContents(t *testing.T) {
	dir := t.TempDir()
	src, dist := filepath.Join(dir, "src"), filepath.Join(dir, "dist")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dist, 0o755); err != nil {
		t.Fatal(err)
	}
	write(t, filepath.Join(dist, "stale.ws"), "leftover")
	write(t, filepath.Join(src, "main.wss"), `function noop(): void { }`)

	if _, err := New().Compile(context.Background(), newProject(t, src, dist, nil)); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dist, "stale.ws")); !os.IsNotExist(err) {
		t.Fatalf("expected stale.ws to be removed, stat err: %v", err)
	}
}

func TestCompileDependencyDeclarationsAreNotEmittedStandalone(t *testing.T) {
	dir := t.TempDir()
	src, depDir, dist := filepath.Join(dir, "src"), filepath.Join(dir, "lib"), filepath.Join(dir, "dist")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(depDir, 0o755); err != nil {
		t.Fatal(err)
	}
	write(t, filepath.Join(depDir, "helpers.wss"), `function helper(): int { return 1; }`)
	write(t, filepath.Join(src, "main.wss"), `function run(): int { return helper(); }`)

	res, err := New().Compile(context.Background(), newProject(t, src, dist, map[string]string{"lib": depDir}))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.FilesCompiled != 1 {
		t.Fatalf("expected only the source file to be compiled, got %+v", res)
	}
	if _, err := os.Stat(filepath.Join(dist, "helpers.ws")); !os.IsNotExist(err) {
		t.Fatalf("dependency file should not be emitted standalone under dist")
	}
}

func TestCompileSkipsAggregateWhenNothingSynthesized(t *testing.T) {
	dir := t.TempDir()
	src, dist := filepath.Join(dir, "src"), filepath.Join(dir, "dist")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	write(t, filepath.Join(src, "main.wss"), `function noop(): void { }`)

	res, err := New().Compile(context.Background(), newProject(t, src, dist, nil))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.AggregatePath != "" {
		t.Fatalf("expected no aggregate file, got %q", res.AggregatePath)
	}
	entries, err := os.ReadDir(dist)
	if err != nil {
		t.Fatalf("reading dist: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the one compiled file under dist, got %d entries", len(entries))
	}
}
