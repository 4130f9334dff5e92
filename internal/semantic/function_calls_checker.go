package semantic

import (
	"fmt"

	"github.com/Aelto/tw3-cahirc-language/internal/ast"
	"github.com/Aelto/tw3-cahirc-language/internal/ctxgraph"
	"github.com/Aelto/tw3-cahirc-language/internal/sourcemap"
	"github.com/Aelto/tw3-cahirc-language/internal/typestore"
	"github.com/Aelto/tw3-cahirc-language/internal/visitor"
)

// FunctionsCallsCheckerVisitor implements spec.md §4.6 pass 6: for every
// call with a recorded function type, pair declared parameters with
// supplied arguments in order and report arity/type mismatches.
type FunctionsCallsCheckerVisitor struct {
	visitor.BaseVisitor
	Program *Program
}

// NewFunctionsCallsCheckerVisitor creates the (stateless) checker visitor.
func NewFunctionsCallsCheckerVisitor(p *Program) *FunctionsCallsCheckerVisitor {
	return &FunctionsCallsCheckerVisitor{BaseVisitor: visitor.BaseVisitor{K: visitor.KindFunctionsCallsChecker}, Program: p}
}

// RunFunctionsCallsChecker runs pass 6 over prog.
func RunFunctionsCallsChecker(p *Program, prog *ast.Program, _ *ctxgraph.Context) {
	visitor.WalkProgram(NewFunctionsCallsCheckerVisitor(p), prog)
}

func (v *FunctionsCallsCheckerVisitor) VisitExpression(e ast.Expression) {
	call, ok := e.(*ast.Call)
	if !ok {
		return
	}
	fn, ok := call.InferredFunction.(*typestore.Function)
	if !ok || fn == nil {
		return
	}

	for i, param := range fn.Parameters {
		if i >= len(call.Arguments) {
			if param.Kind != "optional" {
				v.Program.Reports.Push(
					sourcemap.NewReport(call.Span, fmt.Sprintf("missing required argument %d in call to %q", i+1, call.Callee)).
						WithLabel(param.Span, "parameter declared here"),
				)
			}
			continue
		}

		arg := call.Arguments[i]
		supplied, ok := arg.Cells().Get()
		if !ok {
			continue
		}
		if supplied == param.Type {
			continue
		}
		if isAutoCastable(supplied, param.Type) {
			continue
		}
		v.Program.Reports.Push(sourcemap.NewReport(
			arg.Pos(),
			fmt.Sprintf("argument %d to %q: cannot use %q as %q", i+1, call.Callee, supplied, param.Type),
		))
	}

	// Extra supplied arguments beyond the declared parameter list are not
	// flagged; the parser accepts any number of call arguments.
}
