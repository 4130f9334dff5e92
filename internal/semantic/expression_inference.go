package semantic

import (
	"fmt"

	"github.com/Aelto/tw3-cahirc-language/internal/ast"
	"github.com/Aelto/tw3-cahirc-language/internal/ctxgraph"
	"github.com/Aelto/tw3-cahirc-language/internal/sourcemap"
	"github.com/Aelto/tw3-cahirc-language/internal/typestore"
	"github.com/Aelto/tw3-cahirc-language/internal/visitor"
)

// ExpressionTypeInferenceVisitor implements spec.md §4.6 pass 3: bottom-up
// type deduction for every expression, implicit-var registration, and
// (via the nested ClosureVisitor) lambda capture analysis.
type ExpressionTypeInferenceVisitor struct {
	visitor.BaseVisitor
	Program *Program
	Root    *ctxgraph.Context
	Current *ctxgraph.Context

	// compoundScope is non-"" while resolving the right side of a "."
	// chain: call resolution uses the named compound's method map instead
	// of the global function table (spec.md §4.6.3).
	compoundScope string
}

// NewExpressionTypeInferenceVisitor seeds a top-level instance rooted at
// root, walking with current as the active scope.
func NewExpressionTypeInferenceVisitor(p *Program, root, current *ctxgraph.Context) *ExpressionTypeInferenceVisitor {
	return &ExpressionTypeInferenceVisitor{
		BaseVisitor: visitor.BaseVisitor{K: visitor.KindExpressionInference},
		Program:     p,
		Root:        root,
		Current:     current,
	}
}

// RunExpressionTypeInference runs pass 3 over prog.
func RunExpressionTypeInference(p *Program, prog *ast.Program, root *ctxgraph.Context) {
	visitor.WalkProgram(NewExpressionTypeInferenceVisitor(p, root, root), prog)
}

func (v *ExpressionTypeInferenceVisitor) seeded(current *ctxgraph.Context) *ExpressionTypeInferenceVisitor {
	return NewExpressionTypeInferenceVisitor(v.Program, v.Root, current)
}

func (v *ExpressionTypeInferenceVisitor) EnterFunction(fn *ast.FunctionDecl) (visitor.Visitor, bool) {
	ctx, _ := fn.Context.(*ctxgraph.Context)
	if ctx == nil {
		ctx = v.Current
	}
	return v.seeded(ctx), true
}

func (v *ExpressionTypeInferenceVisitor) EnterClass(cls *ast.ClassDecl) (visitor.Visitor, bool) {
	ctx, _ := cls.Context.(*ctxgraph.Context)
	if ctx == nil {
		ctx = v.Current
	}
	return v.seeded(ctx), true
}

// VisitVarDecl handles the implicit-declaration form (`var x = expr;`,
// spec.md §4.6.3): the explicit-type form is pass 4's responsibility.
func (v *ExpressionTypeInferenceVisitor) VisitVarDecl(n *ast.VarDecl) {
	if n.Type != nil || n.Infer == nil {
		return
	}
	// Pass 3 needs the initializer's type before this hook runs; the
	// generic walker visits it afterward, but WalkExpression is idempotent
	// so forcing it early here is harmless.
	visitor.WalkExpression(v, n.Infer)

	t, ok := n.Infer.Cells().Get()
	if !ok || t == "" || t == "void" {
		v.Program.Reports.Push(sourcemap.NewReport(n.Span, "implicit variable declared with a void or unresolved type"))
		return
	}
	n.InferredType = make([]string, len(n.Names))
	for i, name := range n.Names {
		n.InferredType[i] = t
		v.Current.DeclareVariable(name, t)
	}
}

// VisitForIn registers the loop-bound variable the same way VisitVarDecl
// registers an implicit declaration: the walker calls this hook before
// descending into Body, so every reference inside the loop resolves against
// it (spec.md §4.6.3/§4.9).
func (v *ExpressionTypeInferenceVisitor) VisitForIn(n *ast.ForIn) {
	if n.VarType == nil {
		return
	}
	v.Current.DeclareVariable(n.VarName, n.VarType.String())
}

// compoundDisplayName returns the nominal name used as a compound context's
// own type: its StateParent for a state context, or the trimmed "class: "
// name otherwise.
func compoundDisplayName(ctx *ctxgraph.Context) string {
	if ctx.Kind == ctxgraph.KindState {
		return ctx.StateParent
	}
	if name, ok := ctx.ClassName(); ok {
		return name
	}
	return ctx.Name
}

// VisitExpression performs the bottom-up deduction; WalkExpression has
// already run this hook for every sub-expression before this node is
// reached, so the cell reads below are always populated when they can be.
func (v *ExpressionTypeInferenceVisitor) VisitExpression(e ast.Expression) {
	if _, ok := e.Cells().Get(); ok {
		// Idempotent: once set to a non-unknown value, not re-run.
		return
	}
	switch n := e.(type) {
	case *ast.Literal:
		v.inferLiteral(n)
	case *ast.Identifier:
		v.inferIdentifier(n)
	case *ast.Call:
		v.inferCall(n)
	case *ast.Instantiation:
		n.Cells().Set(n.ClassName)
	case *ast.Lambda:
		v.inferLambda(n)
	case *ast.Unary:
		n.Cells().Set("bool")
	case *ast.Cast:
		v.inferCast(n)
	case *ast.Group:
		if t, ok := n.Inner.Cells().Get(); ok {
			n.Cells().Set(t)
		}
	case *ast.ListLit:
		if len(n.Elements) > 0 {
			if t, ok := n.Elements[0].Cells().Get(); ok {
				n.Cells().Set(t)
			}
		}
	case *ast.Binary:
		v.inferBinary(n)
	case *ast.Nesting:
		v.inferNesting(n)
	case *ast.ErrorExpr:
		// inference left unset
	}
}

func (v *ExpressionTypeInferenceVisitor) inferLiteral(n *ast.Literal) {
	switch n.Kind {
	case ast.LitInt:
		n.Cells().Set("int")
	case ast.LitFloat:
		n.Cells().Set("float")
	case ast.LitString:
		n.Cells().Set("string")
	case ast.LitName:
		n.Cells().Set("name")
	}
}

func (v *ExpressionTypeInferenceVisitor) inferIdentifier(n *ast.Identifier) {
	switch n.Name {
	case "this":
		comp := v.Current.EnclosingCompound()
		if comp == nil {
			v.Program.Reports.Push(sourcemap.NewReport(n.Span, "'this' used outside a class/struct/state scope"))
			return
		}
		n.Cells().Set(compoundDisplayName(comp))

	case "parent":
		state := v.Current.EnclosingState()
		if state == nil {
			v.Program.Reports.Push(sourcemap.NewReport(n.Span, "'parent' used outside a state scope"))
			return
		}
		n.Cells().Set(state.StateParent)

	default:
		if t, ok := v.Current.LookupParameter(n.Name); ok {
			n.Cells().Set(t)
			return
		}
		if t, ok := v.Current.LookupVariable(n.Name); ok {
			n.Cells().Set(t)
			return
		}
		v.Program.Reports.Push(sourcemap.NewReport(n.Span, fmt.Sprintf("unknown identifier %q", n.Name)))
	}
}

func (v *ExpressionTypeInferenceVisitor) resolveCall(n *ast.Call) (*typestore.Function, bool) {
	if v.compoundScope != "" {
		_, fn, ok := v.Program.Types.ResolveMethod(v.compoundScope, n.Callee)
		return fn, ok
	}
	entry, ok := v.Program.Types.Lookup(n.Callee)
	if !ok {
		v.Program.Reports.Push(sourcemap.Advice(n.Span, fmt.Sprintf("call to unknown function %q", n.Callee)))
		return nil, false
	}
	if entry.Kind != typestore.KindFunction {
		v.Program.Reports.Push(sourcemap.NewReport(n.Span, fmt.Sprintf("%q is not callable", n.Callee)))
		return nil, false
	}
	return entry.Function, true
}

func (v *ExpressionTypeInferenceVisitor) inferCall(n *ast.Call) {
	fn, ok := v.resolveCall(n)
	if !ok {
		return
	}
	n.InferredFunction = fn
	if fn.Return != "" {
		n.Cells().Set(fn.Return)
	} else {
		n.Cells().Set("void")
	}
}

func (v *ExpressionTypeInferenceVisitor) inferLambda(n *ast.Lambda) {
	shape := &ast.LambdaType{Parameters: n.Parameters, Return: n.Return}
	key := shape.String()
	v.Program.Types.RegisterLambda(key, storeParameters(n.Parameters), returnString(n.Return), n.Span)
	n.Cells().Set(key)
	n.Capture = collectCaptures(n, v.Current)
}

func (v *ExpressionTypeInferenceVisitor) inferCast(n *ast.Cast) {
	target := n.Target.String()
	if entry, ok := v.Program.Types.Lookup(target); !ok || entry.Kind == typestore.KindUnknown {
		v.Program.Reports.Push(sourcemap.Warning(n.Span, fmt.Sprintf("cast to unknown type %q", target)))
	}
	n.Cells().Set(target)
}

func (v *ExpressionTypeInferenceVisitor) inferBinary(n *ast.Binary) {
	if n.Op == ast.OpDot {
		v.resolveNestingStep(n.Left, n.Right)
		if t, ok := n.Right.Cells().Get(); ok {
			n.Cells().Set(t)
		}
		return
	}
	if lit, isLit := n.Left.(*ast.Literal); isLit {
		_ = lit
		if t, ok := n.Left.Cells().Get(); ok {
			n.Cells().Set(t)
		}
	}
	// Every other operator form is left uninferred, per spec.md §4.6.3.
}

func (v *ExpressionTypeInferenceVisitor) inferNesting(n *ast.Nesting) {
	if len(n.Parts) == 0 {
		return
	}
	cur := n.Parts[0]
	for i := 1; i < len(n.Parts); i++ {
		right := n.Parts[i]
		v.resolveNestingStep(cur, right)
		cur = right
	}
	if t, ok := cur.Cells().Get(); ok {
		n.Cells().Set(t)
	}
}

// resolveNestingStep deduces right given that left has already been
// deduced, implementing the "." nesting rule of spec.md §4.6.3: a lambda
// left side paired with a call right side evaluates to the lambda's return
// type; otherwise left must be a compound, and right is deduced in that
// compound's own context against its method map.
func (v *ExpressionTypeInferenceVisitor) resolveNestingStep(left, right ast.Expression) {
	leftType, ok := left.Cells().Get()
	if !ok {
		return
	}
	entry, ok := v.Program.Types.Lookup(leftType)
	if !ok {
		v.Program.Reports.Push(sourcemap.NewReport(right.Pos(), fmt.Sprintf("invalid nesting: unknown type %q", leftType)))
		return
	}

	if entry.Kind == typestore.KindLambda {
		if call, isCall := right.(*ast.Call); isCall {
			for _, a := range call.Arguments {
				visitor.WalkExpression(v, a)
			}
			ret := entry.Lambda.Return
			if ret == "" {
				ret = "void"
			}
			right.Cells().Set(ret)
			return
		}
	}

	if entry.Kind != typestore.KindCompound {
		v.Program.Reports.Push(sourcemap.NewReport(right.Pos(), "invalid nesting: left side is not a compound"))
		return
	}

	classCtx := v.Root.FindGlobalClassDeclaration(leftType)
	if classCtx == nil {
		v.Program.Reports.Push(sourcemap.NewReport(right.Pos(), fmt.Sprintf("invalid nesting: no declaration found for %q", leftType)))
		return
	}

	scoped := &ExpressionTypeInferenceVisitor{
		BaseVisitor:   v.BaseVisitor,
		Program:       v.Program,
		Root:          v.Root,
		Current:       classCtx,
		compoundScope: leftType,
	}
	visitor.WalkExpression(scoped, right)
}

// closureState is shared by every ClosureVisitor instance spawned while
// descending into nested lambdas, so their collected references land in one
// ordered, deduplicated list.
type closureState struct {
	seen map[string]bool
	refs []string
}

// ClosureVisitor collects every free identifier referenced inside a
// lambda's body (spec.md §4.6 pass 3 / §4.8).
type ClosureVisitor struct {
	visitor.BaseVisitor
	bound map[string]bool
	state *closureState
}

func (c *ClosureVisitor) VisitExpression(e ast.Expression) {
	id, ok := e.(*ast.Identifier)
	if !ok {
		return
	}
	if c.bound[id.Name] || c.state.seen[id.Name] {
		return
	}
	c.state.seen[id.Name] = true
	c.state.refs = append(c.state.refs, id.Name)
}

// EnterLambda descends into a nested lambda's own body with its parameters
// added to the bound set, so a nested lambda's parameters are not
// themselves reported as captures of the outer lambda.
func (c *ClosureVisitor) EnterLambda(lam *ast.Lambda) (visitor.Visitor, bool) {
	nested := make(map[string]bool, len(c.bound)+len(lam.Parameters))
	for k := range c.bound {
		nested[k] = true
	}
	for _, p := range lam.Parameters {
		nested[p.Name] = true
	}
	return &ClosureVisitor{BaseVisitor: c.BaseVisitor, bound: nested, state: c.state}, true
}

// collectCaptures implements the capture-set rule of spec.md §4.6.3: every
// free identifier referenced in lambda's body, filtered to names present in
// enclosing's parameter/variable maps (walking to the root), or equal to
// the literal `this`. Only identifiers are captured: the walk does not enter
// the right side of a "." access, so a property read such as `obj.field`
// captures `obj` alone.
func collectCaptures(lambda *ast.Lambda, enclosing *ctxgraph.Context) []ast.CapturedVar {
	bound := make(map[string]bool, len(lambda.Parameters))
	for _, p := range lambda.Parameters {
		bound[p.Name] = true
	}
	cv := &ClosureVisitor{
		BaseVisitor: visitor.BaseVisitor{K: visitor.KindClosure},
		bound:       bound,
		state:       &closureState{seen: make(map[string]bool)},
	}
	visitor.WalkStatements(cv, lambda.Body)

	var captures []ast.CapturedVar
	for _, name := range cv.state.refs {
		if name == "this" {
			if comp := enclosing.EnclosingCompound(); comp != nil {
				captures = append(captures, ast.CapturedVar{Name: "this", Type: compoundDisplayName(comp)})
			}
			continue
		}
		if t, ok := enclosing.LookupParameter(name); ok {
			captures = append(captures, ast.CapturedVar{Name: name, Type: t})
			continue
		}
		if t, ok := enclosing.LookupVariable(name); ok {
			captures = append(captures, ast.CapturedVar{Name: name, Type: t})
		}
	}
	return captures
}
