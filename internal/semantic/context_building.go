package semantic

import (
	"github.com/Aelto/tw3-cahirc-language/internal/ast"
	"github.com/Aelto/tw3-cahirc-language/internal/ctxgraph"
	"github.com/Aelto/tw3-cahirc-language/internal/visitor"
)

// ContextBuildingVisitor links every scope-creating AST node's freshly
// constructed context under the tree's current context (spec.md §4.4).
type ContextBuildingVisitor struct {
	visitor.BaseVisitor
	Program *Program
	Current *ctxgraph.Context
}

// NewContextBuildingVisitor seeds a visitor rooted at current.
func NewContextBuildingVisitor(p *Program, current *ctxgraph.Context) *ContextBuildingVisitor {
	return &ContextBuildingVisitor{
		BaseVisitor: visitor.BaseVisitor{K: visitor.KindContextBuilding},
		Program:     p,
		Current:     current,
	}
}

// RunContextBuilding links contexts for every top-level declaration in prog
// under root.
func RunContextBuilding(p *Program, prog *ast.Program, root *ctxgraph.Context) {
	visitor.WalkProgram(NewContextBuildingVisitor(p, root), prog)
}

func (v *ContextBuildingVisitor) inheritLibrary(child *ctxgraph.Context) {
	if !v.Current.Library {
		return
	}
	child.Library = true
	child.AccessorPrefix = ctxgraph.NewAccessorPrefix()
}

// EnterFunction creates and links fn's context, then continues traversal
// seeded with it as current (spec.md §4.4: "recurses into the node's body
// with the new context as current").
func (v *ContextBuildingVisitor) EnterFunction(fn *ast.FunctionDecl) (visitor.Visitor, bool) {
	var child *ctxgraph.Context
	if fn.Generics != nil {
		child = ctxgraph.NewGeneric("function: "+fn.Name, ctxgraph.KindFunction, fn.Generics.Names)
	} else {
		child = ctxgraph.New("function: "+fn.Name, ctxgraph.KindFunction)
	}
	for _, param := range fn.Parameters {
		if param.Type != nil {
			child.Parameters[param.Name] = param.Type.String()
		}
	}
	child.SetParent(v.Current)
	v.inheritLibrary(child)
	fn.Context = child
	return NewContextBuildingVisitor(v.Program, child), true
}

// EnterClass creates and links cls's context (and, for a state, records its
// nominal parent class).
func (v *ContextBuildingVisitor) EnterClass(cls *ast.ClassDecl) (visitor.Visitor, bool) {
	kind := ctxgraph.KindClassOrStruct
	if cls.Kind == ast.CompoundState {
		kind = ctxgraph.KindState
	}

	var child *ctxgraph.Context
	if cls.Generics != nil {
		child = ctxgraph.NewGeneric("class: "+cls.Name, kind, cls.Generics.Names)
	} else {
		child = ctxgraph.New("class: "+cls.Name, kind)
	}
	if cls.Kind == ast.CompoundState {
		child.StateParent = cls.StateOf
	}
	child.SetParent(v.Current)
	v.inheritLibrary(child)
	cls.Context = child
	return NewContextBuildingVisitor(v.Program, child), true
}
