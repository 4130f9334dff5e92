// Package visitor implements the tagged-variant visitor framework spec.md
// §4.6/§9 describes: a closed family of six semantic passes, each tagged
// with a Kind and implementing the Visitor hook interface, with generic
// Walk* helpers that recurse through the AST, dispatch on node type, and
// consult each hook's return value to decide whether to stop at a
// function/class/lambda boundary. The walkers never consult Kind().
//
// Grounded on internal/interp/evaluator's visitor_*.go split-by-concern
// files in the teacher, generalized here with an explicit Kind tag per
// SPEC_FULL.md §9 — the teacher has exactly one visitor and does not need
// one, this repo has six cooperating passes that must early-terminate
// differently at the same boundaries.
package visitor

import "github.com/Aelto/tw3-cahirc-language/internal/ast"

// Kind identifies which of the six semantic passes (or the nested closure
// pass) a Visitor implements.
type Kind int

const (
	KindContextBuilding Kind = iota
	KindCompoundTypes
	KindExpressionInference
	KindVariableDeclaration
	KindGenericCalls
	KindFunctionsCallsChecker
	KindClosure
)

// Visitor is the shared hook interface every pass implements. Concrete
// passes embed BaseVisitor and override only the hooks relevant to them
// (spec.md §9: "a shared trait of hook methods").
type Visitor interface {
	Kind() Kind

	// EnterFunction/EnterClass/EnterLambda are called before a composite
	// node's body is walked. Returning walk=false stops traversal there
	// (e.g. a pass that only cares about top-level signatures). Returning
	// a non-nil body visitor switches the walk to a fresh visitor instance
	// seeded with the new context for the remainder of the subtree (spec.md
	// §4.6: "the function creates a new context which must become
	// 'current' for the subtree").
	EnterFunction(fn *ast.FunctionDecl) (body Visitor, walk bool)
	EnterClass(cls *ast.ClassDecl) (body Visitor, walk bool)
	EnterLambda(lam *ast.Lambda) (body Visitor, walk bool)

	VisitEnumDecl(e *ast.EnumDecl)
	VisitAnnotation(a *ast.Annotation)
	VisitProperty(p *ast.Property, owner *ast.ClassDecl)

	VisitExprStatement(s *ast.ExprStatement)
	VisitVarDecl(s *ast.VarDecl)
	VisitAssign(s *ast.Assign)
	VisitReturn(s *ast.Return)
	VisitIf(s *ast.If)
	VisitWhile(s *ast.While)
	VisitForIn(s *ast.ForIn)
	VisitSwitch(s *ast.Switch)

	// VisitExpression is invoked post-order: every sub-expression has
	// already been visited by the time a parent expression reaches this
	// hook, matching the bottom-up requirement of the
	// ExpressionTypeInferenceVisitor (spec.md §4.6.3).
	VisitExpression(e ast.Expression)
}

// BaseVisitor supplies a no-op implementation of every hook so a concrete
// pass need only override what it uses.
type BaseVisitor struct {
	K Kind
}

func (b BaseVisitor) Kind() Kind { return b.K }

func (BaseVisitor) EnterFunction(*ast.FunctionDecl) (Visitor, bool) { return nil, true }
func (BaseVisitor) EnterClass(*ast.ClassDecl) (Visitor, bool)       { return nil, true }
func (BaseVisitor) EnterLambda(*ast.Lambda) (Visitor, bool)         { return nil, true }

func (BaseVisitor) VisitEnumDecl(*ast.EnumDecl)                 {}
func (BaseVisitor) VisitAnnotation(*ast.Annotation)             {}
func (BaseVisitor) VisitProperty(*ast.Property, *ast.ClassDecl) {}

func (BaseVisitor) VisitExprStatement(*ast.ExprStatement) {}
func (BaseVisitor) VisitVarDecl(*ast.VarDecl)             {}
func (BaseVisitor) VisitAssign(*ast.Assign)               {}
func (BaseVisitor) VisitReturn(*ast.Return)               {}
func (BaseVisitor) VisitIf(*ast.If)                       {}
func (BaseVisitor) VisitWhile(*ast.While)                 {}
func (BaseVisitor) VisitForIn(*ast.ForIn)                 {}
func (BaseVisitor) VisitSwitch(*ast.Switch)               {}

func (BaseVisitor) VisitExpression(ast.Expression) {}

// WalkProgram walks every top-level statement of p with v.
func WalkProgram(v Visitor, p *ast.Program) {
	for _, t := range p.Statements {
		WalkTopLevel(v, t)
	}
}

// WalkTopLevel dispatches on t's concrete kind.
func WalkTopLevel(v Visitor, t ast.TopLevel) {
	switch n := t.(type) {
	case *ast.FunctionDecl:
		bodyV, walk := v.EnterFunction(n)
		if !walk {
			return
		}
		WalkStatements(orElse(bodyV, v), n.Body)

	case *ast.ClassDecl:
		bodyV, walk := v.EnterClass(n)
		if !walk {
			return
		}
		uv := orElse(bodyV, v)
		for _, m := range n.Methods {
			WalkTopLevel(uv, m)
		}
		for _, p := range n.Properties {
			uv.VisitProperty(p, n)
			if p.Default != nil {
				WalkExpression(uv, p.Default)
			}
		}

	case *ast.EnumDecl:
		v.VisitEnumDecl(n)

	case *ast.Annotation:
		v.VisitAnnotation(n)
		if n.Inner != nil {
			WalkTopLevel(v, n.Inner)
		}

	case *ast.ExprStatement:
		v.VisitExprStatement(n)
		WalkExpression(v, n.Expr)
	}
}

// WalkStatements walks each statement of stmts in source order.
func WalkStatements(v Visitor, stmts []ast.Statement) {
	for _, s := range stmts {
		WalkStatement(v, s)
	}
}

// WalkStatement dispatches on s's concrete kind.
func WalkStatement(v Visitor, s ast.Statement) {
	switch n := s.(type) {
	case *ast.ExprStatement:
		v.VisitExprStatement(n)
		WalkExpression(v, n.Expr)

	case *ast.VarDecl:
		v.VisitVarDecl(n)
		if n.Infer != nil {
			WalkExpression(v, n.Infer)
		}

	case *ast.Assign:
		v.VisitAssign(n)
		WalkExpression(v, n.Target)
		WalkExpression(v, n.Value)

	case *ast.Return:
		v.VisitReturn(n)
		if n.Value != nil {
			WalkExpression(v, n.Value)
		}

	case *ast.If:
		v.VisitIf(n)
		WalkExpression(v, n.Cond)
		WalkStatements(v, n.Then)
		WalkStatements(v, n.Else)

	case *ast.While:
		v.VisitWhile(n)
		WalkExpression(v, n.Cond)
		WalkStatements(v, n.Body)

	case *ast.ForIn:
		v.VisitForIn(n)
		WalkExpression(v, n.Iterable)
		WalkStatements(v, n.Body)

	case *ast.Switch:
		v.VisitSwitch(n)
		WalkExpression(v, n.Subject)
		for _, c := range n.Cases {
			for _, val := range c.Values {
				WalkExpression(v, val)
			}
			WalkStatements(v, c.Body)
		}
		WalkStatements(v, n.Default)
	}
}

// WalkExpression recurses post-order through e's sub-expressions before
// invoking v.VisitExpression(e), so a pass relying on bottom-up inference
// (spec.md §4.6.3) sees every child's cell already written.
func WalkExpression(v Visitor, e ast.Expression) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.Literal, *ast.Identifier, *ast.ErrorExpr:
		// leaves

	case *ast.Call:
		for _, a := range n.Arguments {
			WalkExpression(v, a)
		}

	case *ast.Instantiation:
		for _, a := range n.Arguments {
			WalkExpression(v, a)
		}

	case *ast.Lambda:
		bodyV, walk := v.EnterLambda(n)
		if walk {
			WalkStatements(orElse(bodyV, v), n.Body)
		}

	case *ast.Unary:
		WalkExpression(v, n.Operand)

	case *ast.Binary:
		WalkExpression(v, n.Left)
		// The "." (nesting) form resolves its right operand inside the
		// left operand's compound context, not the enclosing scope
		// (spec.md §4.6.3) — that re-contextualized walk is the owning
		// pass's responsibility (it calls WalkExpression itself with a
		// visitor seeded at the resolved compound context), so the
		// generic walker does not recurse into Right here.
		if n.Op != ast.OpDot {
			WalkExpression(v, n.Right)
		}

	case *ast.Cast:
		WalkExpression(v, n.Operand)

	case *ast.Group:
		WalkExpression(v, n.Inner)

	case *ast.ListLit:
		for _, el := range n.Elements {
			WalkExpression(v, el)
		}

	case *ast.Nesting:
		// Only the first part is part of the enclosing scope; every
		// subsequent part chains off the previous part's resolved
		// compound context, same reasoning as Binary(OpDot) above.
		if len(n.Parts) > 0 {
			WalkExpression(v, n.Parts[0])
		}
	}
	v.VisitExpression(e)
}

func orElse(preferred, fallback Visitor) Visitor {
	if preferred != nil {
		return preferred
	}
	return fallback
}
