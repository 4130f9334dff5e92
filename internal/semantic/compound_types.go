package semantic

import (
	"github.com/Aelto/tw3-cahirc-language/internal/ast"
	"github.com/Aelto/tw3-cahirc-language/internal/ctxgraph"
	"github.com/Aelto/tw3-cahirc-language/internal/sourcemap"
	"github.com/Aelto/tw3-cahirc-language/internal/typestore"
	"github.com/Aelto/tw3-cahirc-language/internal/visitor"
)

// CompoundTypesVisitor registers every class/struct name as a compound and
// every function/method's signature in the type store, flagging duplicates
// as errors at the declaration span (spec.md §4.6 pass 2).
type CompoundTypesVisitor struct {
	visitor.BaseVisitor
	Program *Program

	// enclosingClass is non-empty while walking a class's methods, so a
	// method registers against its owning compound rather than globally.
	enclosingClass string
}

// NewCompoundTypesVisitor creates a fresh top-level instance.
func NewCompoundTypesVisitor(p *Program) *CompoundTypesVisitor {
	return &CompoundTypesVisitor{BaseVisitor: visitor.BaseVisitor{K: visitor.KindCompoundTypes}, Program: p}
}

// RunCompoundTypes registers every class/struct/function/method declared in
// prog.
func RunCompoundTypes(p *Program, prog *ast.Program, _ *ctxgraph.Context) {
	visitor.WalkProgram(NewCompoundTypesVisitor(p), prog)
}

func paramKindString(k ast.ParamKind) string {
	switch k {
	case ast.ParamOptional:
		return "optional"
	case ast.ParamReference:
		return "reference"
	default:
		return "copy"
	}
}

func storeParameters(params []*ast.Parameter) []typestore.Parameter {
	out := make([]typestore.Parameter, 0, len(params))
	for _, p := range params {
		typ := ""
		if p.Type != nil {
			typ = p.Type.String()
		}
		out = append(out, typestore.Parameter{Kind: paramKindString(p.Kind), Type: typ, Span: p.Span})
	}
	return out
}

func returnString(t ast.TypeExpr) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// EnterClass registers cls as a compound, then its methods' signatures.
func (v *CompoundTypesVisitor) EnterClass(cls *ast.ClassDecl) (visitor.Visitor, bool) {
	if err := v.Program.Types.RegisterCompound(cls.Name, cls.Extends); err != nil {
		v.Program.Reports.Push(sourcemap.NewReport(cls.Span, err.Error()))
	}
	child := &CompoundTypesVisitor{
		BaseVisitor:    visitor.BaseVisitor{K: visitor.KindCompoundTypes},
		Program:        v.Program,
		enclosingClass: cls.Name,
	}
	return child, true
}

// EnterFunction registers fn in the type store, either as a free function
// or, within a class's walk, as a method on enclosingClass.
func (v *CompoundTypesVisitor) EnterFunction(fn *ast.FunctionDecl) (visitor.Visitor, bool) {
	params := storeParameters(fn.Parameters)
	ret := returnString(fn.Return)

	var err error
	if v.enclosingClass != "" {
		err = v.Program.Types.RegisterMethod(v.enclosingClass, fn.Name, params, ret, fn.Span)
	} else {
		err = v.Program.Types.RegisterFunction(fn.Name, params, ret, fn.Span)
	}
	if err != nil {
		v.Program.Reports.Push(sourcemap.NewReport(fn.Span, err.Error()))
	}
	// Signatures only: the function body's own declarations are not this
	// pass's concern.
	return v, false
}
