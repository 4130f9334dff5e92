package semantic

import (
	"github.com/Aelto/tw3-cahirc-language/internal/ast"
	"github.com/Aelto/tw3-cahirc-language/internal/ctxgraph"
	"github.com/Aelto/tw3-cahirc-language/internal/visitor"
)

// VariableDeclarationVisitor installs explicit `var` declarations' bindings
// into the current context and the emitter's hoist list; implicit
// declarations were already handled by pass 3 (spec.md §4.6 pass 4).
type VariableDeclarationVisitor struct {
	visitor.BaseVisitor
	Program *Program
	Current *ctxgraph.Context
}

// NewVariableDeclarationVisitor seeds a visitor rooted at current.
func NewVariableDeclarationVisitor(p *Program, current *ctxgraph.Context) *VariableDeclarationVisitor {
	return &VariableDeclarationVisitor{
		BaseVisitor: visitor.BaseVisitor{K: visitor.KindVariableDeclaration},
		Program:     p,
		Current:     current,
	}
}

// RunVariableDeclaration runs pass 4 over prog.
func RunVariableDeclaration(p *Program, prog *ast.Program, root *ctxgraph.Context) {
	visitor.WalkProgram(NewVariableDeclarationVisitor(p, root), prog)
}

func (v *VariableDeclarationVisitor) EnterFunction(fn *ast.FunctionDecl) (visitor.Visitor, bool) {
	ctx, _ := fn.Context.(*ctxgraph.Context)
	if ctx == nil {
		ctx = v.Current
	}
	return NewVariableDeclarationVisitor(v.Program, ctx), true
}

func (v *VariableDeclarationVisitor) EnterClass(cls *ast.ClassDecl) (visitor.Visitor, bool) {
	ctx, _ := cls.Context.(*ctxgraph.Context)
	if ctx == nil {
		ctx = v.Current
	}
	return NewVariableDeclarationVisitor(v.Program, ctx), true
}

// VisitVarDecl installs an explicit declaration's name->type bindings.
// Implicit declarations (Type == nil) were already handled by pass 3.
func (v *VariableDeclarationVisitor) VisitVarDecl(n *ast.VarDecl) {
	if n.Type == nil {
		return
	}
	typ := n.Type.String()
	n.InferredType = make([]string, len(n.Names))
	for i, name := range n.Names {
		n.InferredType[i] = typ
		v.Current.DeclareVariable(name, typ)
	}
}
