// Package semantic implements the six cooperating semantic passes spec.md
// §4.6 describes, built on the internal/visitor framework: ContextBuilding,
// CompoundTypes, ExpressionTypeInference (with a nested ClosureVisitor),
// VariableDeclaration, GenericCalls, and FunctionsCallsChecker.
//
// Grounded on internal/semantic.Analyzer's pass-over-the-whole-program
// shape in the teacher and its error-collection style (one ReportManager
// threaded through every pass rather than per-pass error slices).
package semantic

import (
	"github.com/Aelto/tw3-cahirc-language/internal/ast"
	"github.com/Aelto/tw3-cahirc-language/internal/ctxgraph"
	"github.com/Aelto/tw3-cahirc-language/internal/sourcemap"
	"github.com/Aelto/tw3-cahirc-language/internal/typestore"
)

// Program is the process-wide state shared by every pass: the span store,
// the diagnostic sink, and the type store. It is constructed once by the
// driver and threaded explicitly into every pass constructor (spec.md §9's
// "global state" note — never a package-level variable).
type Program struct {
	Spans   *sourcemap.Store
	Reports *sourcemap.ReportManager
	Types   *typestore.Store
}

// NewProgram creates an empty Program with a fresh type store (primitives
// pre-registered) and report manager.
func NewProgram(spans *sourcemap.Store) *Program {
	return &Program{
		Spans:   spans,
		Reports: sourcemap.NewReportManager(),
		Types:   typestore.New(),
	}
}

// autoCast is the permitted implicit-widening table for call-argument
// checking (spec.md §4.6 pass 6): supplied -> expected is allowed without
// an error report.
var autoCast = map[[2]string]bool{
	{"name", "string"}: true,
	{"float", "int"}:   true,
	{"int", "float"}:   true,
}

func isAutoCastable(supplied, expected string) bool {
	return autoCast[[2]string{supplied, expected}]
}

// RunAll runs the six passes, in order, over prog, with root as the file's
// context. When root.Library is set, every context created under root
// inherits the library flag (so its declarations receive mangled accessor
// prefixes).
func RunAll(p *Program, prog *ast.Program, root *ctxgraph.Context) {
	RunContextBuilding(p, prog, root)
	RunCompoundTypes(p, prog, root)
	RunExpressionTypeInference(p, prog, root)
	RunVariableDeclaration(p, prog, root)
	RunGenericCalls(p, prog, root)
	RunFunctionsCallsChecker(p, prog, root)
}
