// Package driver orchestrates one compilation end to end (spec.md §4.10):
// clear the destination directory, preprocess every source and dependency
// file, parse each one (recording parse errors per file rather than
// aborting), run the six semantic passes over dependencies then sources,
// emit each source file's output, and finally emit the single synthesized
// file gathering every lambda shape and closure class reachable from the
// sources.
//
// Grounded on the teacher's cmd/dwscript/cmd/compile.go pipeline shape
// (read file, lex/parse, analyze, emit, write) generalized from "one file"
// to "a project's worth of files plus its dependencies", and on
// _examples/original_source/src/main.rs's directory-clearing and
// single-synthesized-output-file behavior for the parts spec.md's
// distillation left implicit.
package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/maruel/natural"
	"github.com/mattn/go-isatty"

	"github.com/Aelto/tw3-cahirc-language/internal/ast"
	"github.com/Aelto/tw3-cahirc-language/internal/config"
	"github.com/Aelto/tw3-cahirc-language/internal/ctxgraph"
	"github.com/Aelto/tw3-cahirc-language/internal/emitter"
	"github.com/Aelto/tw3-cahirc-language/internal/parser"
	"github.com/Aelto/tw3-cahirc-language/internal/preprocessor"
	"github.com/Aelto/tw3-cahirc-language/internal/semantic"
	"github.com/Aelto/tw3-cahirc-language/internal/sourcemap"
)

const (
	sourceExt = ".wss"
	outputExt = ".ws"
)

// Result summarizes one Compile invocation.
type Result struct {
	FilesCompiled int
	FilesSkipped  int
	BytesWritten  int64
	AggregatePath string // "" when the synthesized file was whitespace-only and skipped
}

// Driver holds the long-lived bits a single compilation needs beyond the
// project configuration itself: where diagnostics go and whether to color
// them.
type Driver struct {
	Stderr  io.Writer
	Verbose bool // gates status lines (advisories, the final summary); diagnostics always print
	color   bool
}

// New returns a Driver reporting to stderr, colored only when stderr is
// actually a terminal (spec.md §9: never color when redirected to a file
// or pipe).
func New() *Driver {
	return &Driver{
		Stderr: os.Stderr,
		color:  isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
}

// Compile runs the full pipeline against proj. ctx is checked once per file
// boundary; the pipeline itself is strictly sequential (spec.md §5), so ctx
// only ever stops the driver from starting the *next* file.
func (d *Driver) Compile(ctx context.Context, proj *config.Project) (*Result, error) {
	if err := os.RemoveAll(proj.Dist); err != nil {
		return nil, fmt.Errorf("driver: clearing %s: %w", proj.Dist, err)
	}
	if err := os.MkdirAll(proj.Dist, 0o755); err != nil {
		return nil, fmt.Errorf("driver: creating %s: %w", proj.Dist, err)
	}

	sourceFiles, err := d.loadTree(proj.Src)
	if err != nil {
		return nil, err
	}

	dependencyFiles := make(map[string]map[string]*preprocessor.File, len(proj.Dependencies))
	for name, dir := range proj.Dependencies {
		files, err := d.loadTree(dir)
		if err != nil {
			return nil, fmt.Errorf("driver: dependency %s: %w", name, err)
		}
		dependencyFiles[name] = files
	}

	ppOut, err := preprocessor.Process(sourceFiles, dependencyFiles)
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}
	for _, diag := range ppOut.Diagnostics {
		d.vprintf("advisory: %s: %s\n", diag.File, diag.Message)
	}

	spans := sourcemap.NewStore()
	prog := semantic.NewProgram(spans)
	root := ctxgraph.New("", ctxgraph.KindGlobal)
	em := emitter.New()
	res := &Result{}

	// Dependencies run through the passes first (so their declarations and
	// mangled accessor prefixes exist by the time source call sites are
	// resolved against them) but are never themselves emitted: a library
	// file's declarations reach Target only through the rewritten call
	// sites at its use, never as a standalone file under dist.
	for _, name := range sortedStrings(keysOf(dependencyFiles)) {
		files := dependencyFiles[name]
		for _, path := range sortedStrings(keysOf(files)) {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			fileAst, ok := d.parseOne(spans, path, files[path].Content, &res.FilesSkipped)
			if !ok {
				continue
			}
			fileCtx := ctxgraph.New(name+":"+path, ctxgraph.KindFile)
			fileCtx.Library = true
			fileCtx.SetParent(root)
			semantic.RunAll(prog, fileAst, fileCtx)
			d.drainReports(prog)
		}
	}

	for _, path := range sortedStrings(keysOf(sourceFiles)) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		fileAst, ok := d.parseOne(spans, path, sourceFiles[path].Content, &res.FilesSkipped)
		if !ok {
			continue
		}
		fileCtx := ctxgraph.New(path, ctxgraph.KindFile)
		fileCtx.SetParent(root)
		semantic.RunAll(prog, fileAst, fileCtx)
		d.drainReports(prog)

		if err := d.emitOne(em, fileAst, proj, path, res); err != nil {
			return res, err
		}
	}

	if err := d.emitAggregate(em, proj, res); err != nil {
		return res, err
	}

	d.vprintf("compiled %s file(s), %s skipped, %s written\n",
		humanize.Comma(int64(res.FilesCompiled)),
		humanize.Comma(int64(res.FilesSkipped)),
		humanize.Bytes(uint64(res.BytesWritten)))

	return res, nil
}

func (d *Driver) emitOne(em *emitter.Emitter, prog *ast.Program, proj *config.Project, path string, res *Result) error {
	rendered := em.EmitFile(prog)
	outPath := destPath(proj.Src, proj.Dist, path)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("driver: creating %s: %w", filepath.Dir(outPath), err)
	}
	if err := os.WriteFile(outPath, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("driver: writing %s: %w", outPath, err)
	}
	res.FilesCompiled++
	res.BytesWritten += int64(len(rendered))
	return nil
}

func (d *Driver) emitAggregate(em *emitter.Emitter, proj *config.Project, res *Result) error {
	aggregate := em.Aggregate()
	if strings.TrimSpace(aggregate) == "" {
		return nil
	}
	aggPath := filepath.Join(proj.Dist, uuid.NewString()+outputExt)
	if err := os.WriteFile(aggPath, []byte(aggregate), 0o644); err != nil {
		return fmt.Errorf("driver: writing %s: %w", aggPath, err)
	}
	res.AggregatePath = aggPath
	res.BytesWritten += int64(len(aggregate))
	return nil
}

// loadTree discovers every *.wss file under dir (recursively) and reads it
// into a path->File map ready for preprocessor.Process.
func (d *Driver) loadTree(dir string) (map[string]*preprocessor.File, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, "**", "*"+sourceExt))
	if err != nil {
		return nil, fmt.Errorf("driver: globbing %s: %w", dir, err)
	}
	files := make(map[string]*preprocessor.File, len(matches))
	for _, path := range matches {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("driver: reading %s: %w", path, err)
		}
		files[path] = &preprocessor.File{Path: path, Content: string(content)}
	}
	return files, nil
}

// parseOne parses one file's (already preprocessed) content, reporting and
// skipping it on a structured parse error rather than aborting the whole
// run (spec.md §7).
func (d *Driver) parseOne(spans *sourcemap.Store, path, src string, skipped *int) (*ast.Program, bool) {
	fileAst, err := parser.Parse(spans, path, src)
	if err != nil {
		d.printf("parse error: %s: %s\n", path, err)
		*skipped++
		return nil, false
	}
	return fileAst, true
}

// drainReports consumes and prints every report a pass pushed since the
// last drain (spec.md §4.1: push/consume are not atomic with respect to
// each other, consuming is the driver's job between passes and between
// files).
func (d *Driver) drainReports(prog *semantic.Program) {
	for _, r := range prog.Reports.Take() {
		d.printReport(prog.Spans, r)
	}
}

func (d *Driver) printReport(spans *sourcemap.Store, r sourcemap.Report) {
	label := r.Severity.String()
	if d.color {
		label = colorFor(r.Severity) + label + "\033[0m"
	}
	fmt.Fprint(d.Stderr, label+strings.TrimPrefix(sourcemap.Render(spans, r), r.Severity.String()))
}

func colorFor(sev sourcemap.Severity) string {
	switch sev {
	case sourcemap.SeverityError:
		return "\033[31m"
	case sourcemap.SeverityWarning:
		return "\033[33m"
	default:
		return "\033[36m"
	}
}

func (d *Driver) printf(format string, args ...any) {
	fmt.Fprintf(d.Stderr, format, args...)
}

// vprintf prints a status line (as opposed to a diagnostic): gated behind
// Verbose, unlike parse errors and semantic reports which always print.
func (d *Driver) vprintf(format string, args ...any) {
	if !d.Verbose {
		return
	}
	d.printf(format, args...)
}

// destPath mirrors a source file's path (relative to srcDir) under distDir,
// swapping the input extension for the output one (spec.md §6).
func destPath(srcDir, distDir, path string) string {
	rel, err := filepath.Rel(srcDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = strings.TrimSuffix(rel, sourceExt) + outputExt
	return filepath.Join(distDir, rel)
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// sortedStrings orders paths the way a human would (file2 before file10),
// matching the teacher's deterministic-ordering concern for anything that
// feeds observable output.
func sortedStrings(s []string) []string {
	sort.Slice(s, func(i, j int) bool { return natural.Less(s[i], s[j]) })
	return s
}
