package semantic

import (
	"github.com/Aelto/tw3-cahirc-language/internal/ast"
	"github.com/Aelto/tw3-cahirc-language/internal/ctxgraph"
	"github.com/Aelto/tw3-cahirc-language/internal/visitor"
)

// GenericCallsVisitor implements spec.md §4.6 pass 5: for every generic
// function call, generic-typed declaration, and generic class
// instantiation, it resolves the target's context, stringifies the
// type-argument list, and registers the resulting variant.
type GenericCallsVisitor struct {
	visitor.BaseVisitor
	Program *Program
	Root    *ctxgraph.Context
	Current *ctxgraph.Context
}

// NewGenericCallsVisitor seeds a visitor rooted at root, walking with
// current as the active scope.
func NewGenericCallsVisitor(p *Program, root, current *ctxgraph.Context) *GenericCallsVisitor {
	return &GenericCallsVisitor{
		BaseVisitor: visitor.BaseVisitor{K: visitor.KindGenericCalls},
		Program:     p,
		Root:        root,
		Current:     current,
	}
}

// RunGenericCalls runs pass 5 over prog.
func RunGenericCalls(p *Program, prog *ast.Program, root *ctxgraph.Context) {
	visitor.WalkProgram(NewGenericCallsVisitor(p, root, root), prog)
}

func (v *GenericCallsVisitor) seeded(current *ctxgraph.Context) *GenericCallsVisitor {
	return NewGenericCallsVisitor(v.Program, v.Root, current)
}

func (v *GenericCallsVisitor) EnterFunction(fn *ast.FunctionDecl) (visitor.Visitor, bool) {
	ctx, _ := fn.Context.(*ctxgraph.Context)
	if ctx == nil {
		ctx = v.Current
	}
	child := v.seeded(ctx)
	for _, p := range fn.Parameters {
		child.registerTypeExprVariant(p.Type)
	}
	child.registerTypeExprVariant(fn.Return)
	return child, true
}

func (v *GenericCallsVisitor) EnterClass(cls *ast.ClassDecl) (visitor.Visitor, bool) {
	ctx, _ := cls.Context.(*ctxgraph.Context)
	if ctx == nil {
		ctx = v.Current
	}
	child := v.seeded(ctx)
	for _, p := range cls.Properties {
		child.registerTypeExprVariant(p.Type)
	}
	return child, true
}

func (v *GenericCallsVisitor) VisitVarDecl(n *ast.VarDecl) {
	v.registerTypeExprVariant(n.Type)
}

func (v *GenericCallsVisitor) VisitExpression(e ast.Expression) {
	switch n := e.(type) {
	case *ast.Call:
		if len(n.TypeArgs) == 0 {
			return
		}
		args, ok := v.resolveTypeArgStrings(n.TypeArgs)
		if !ok {
			return
		}
		target := v.Root.FindGlobalFunctionDeclaration(n.Callee)
		if target == nil {
			return
		}
		if target.Generics != nil {
			target.Generics.RegisterVariant(args)
		}
		if target.Library {
			n.Accessor.Set(target.AccessorPrefix)
		}

	case *ast.Instantiation:
		if len(n.TypeArgs) == 0 {
			return
		}
		args, ok := v.resolveTypeArgStrings(n.TypeArgs)
		if !ok {
			return
		}
		target := v.Root.FindGlobalClassDeclaration(n.ClassName)
		if target == nil {
			return
		}
		if target.Generics != nil {
			target.Generics.RegisterVariant(args)
		}
		if target.Library {
			n.Accessor.Set(target.AccessorPrefix)
		}
	}
}

func (v *GenericCallsVisitor) resolveTypeArgStrings(args []ast.TypeExpr) ([]string, bool) {
	out := make([]string, len(args))
	for i, a := range args {
		s, ok := v.resolveTypeString(a)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

// resolveTypeString stringifies t, substituting any bare generic parameter
// identifier for its currently-bound resolution in the active scope.
// Returns ok=false if t (or one of its nested arguments) names a generic
// parameter of an enclosing scope that has no variant currently selected
// ("will be bound by later outer specialization", spec.md §4.6 pass 5).
func (v *GenericCallsVisitor) resolveTypeString(t ast.TypeExpr) (string, bool) {
	switch tt := t.(type) {
	case *ast.NamedType:
		name := tt.Name
		if isGenericParamName(v.Current, name) {
			resolved, ok := v.Current.ResolveGenericParam(name)
			if !ok {
				return "", false
			}
			name = resolved
		}
		argStrs := make([]string, len(tt.Args))
		for i, a := range tt.Args {
			s, ok := v.resolveTypeString(a)
			if !ok {
				return "", false
			}
			argStrs[i] = s
		}
		s := name
		for _, a := range argStrs {
			s += a
		}
		return s, true

	case *ast.LambdaType:
		return tt.String(), true

	default:
		return t.String(), true
	}
}

// registerTypeExprVariant registers a generic-typed declaration's variant
// (a parameter, return type, property, or variable type naming a generic
// class with concrete arguments) and copies its accessor if the target
// class is library-owned.
func (v *GenericCallsVisitor) registerTypeExprVariant(t ast.TypeExpr) {
	if t == nil {
		return
	}
	named, ok := t.(*ast.NamedType)
	if !ok {
		return
	}
	for _, a := range named.Args {
		v.registerTypeExprVariant(a)
	}
	if len(named.Args) == 0 {
		return
	}
	args, ok := v.resolveTypeArgStrings(named.Args)
	if !ok {
		return
	}
	target := v.Root.FindGlobalClassDeclaration(named.Name)
	if target == nil {
		return
	}
	if target.Generics != nil {
		target.Generics.RegisterVariant(args)
	}
	if target.Library {
		named.Accessor.Set(target.AccessorPrefix)
	}
}

func isGenericParamName(ctx *ctxgraph.Context, name string) bool {
	for cur := ctx; cur != nil; cur = cur.Parent {
		if cur.Generics == nil {
			continue
		}
		for _, p := range cur.Generics.Parameters {
			if p == name {
				return true
			}
		}
	}
	return false
}
