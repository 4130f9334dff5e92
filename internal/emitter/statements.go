package emitter

import (
	"strings"

	"github.com/Aelto/tw3-cahirc-language/internal/ast"
	"github.com/Aelto/tw3-cahirc-language/internal/ctxgraph"
)

// emitStatement renders a single body statement (spec.md §4.9). A variable
// declaration only ever emits its assignment half inside a function body:
// the type declaration was already hoisted to the top of the enclosing
// function by the semantic pass (ctxgraph.Context.DeclareVariable /
// HoistOrder), so re-declaring it here would shadow the hoisted slot.
func (e *Emitter) emitStatement(b *strings.Builder, ctx *ctxgraph.Context, s ast.Statement) {
	switch n := s.(type) {
	case *ast.ExprStatement:
		b.WriteString(e.emitExpression(ctx, n.Expr) + ";\n")

	case *ast.VarDecl:
		if n.Infer != nil && len(n.Names) == 1 {
			b.WriteString(n.Names[0] + " = " + e.emitExpression(ctx, n.Infer) + ";\n")
		}

	case *ast.Assign:
		b.WriteString(e.emitExpression(ctx, n.Target) + " = " + e.emitExpression(ctx, n.Value) + ";\n")

	case *ast.Return:
		if n.Value != nil {
			b.WriteString("return " + e.emitExpression(ctx, n.Value) + ";\n")
		} else {
			b.WriteString("return;\n")
		}

	case *ast.If:
		b.WriteString("if (" + e.emitExpression(ctx, n.Cond) + ") {\n")
		for _, s2 := range n.Then {
			e.emitStatement(b, ctx, s2)
		}
		b.WriteString("}\n")
		if n.Else != nil {
			b.WriteString("else {\n")
			for _, s2 := range n.Else {
				e.emitStatement(b, ctx, s2)
			}
			b.WriteString("}\n")
		}

	case *ast.While:
		b.WriteString("while (" + e.emitExpression(ctx, n.Cond) + ") {\n")
		for _, s2 := range n.Body {
			e.emitStatement(b, ctx, s2)
		}
		b.WriteString("}\n")

	case *ast.ForIn:
		e.emitForIn(b, ctx, n)

	case *ast.Switch:
		e.emitSwitch(b, ctx, n)
	}
}

// hoistForIns walks stmts (recursing into every nested block) assigning each
// ForIn's synthesized indexer name up front and declaring both it and the
// loop variable against ctx, so emitFunction's hoist block already carries
// them by the time it renders: the indexer name only exists once emission
// reaches it, but the hoisted `var` line has to come before the body that
// uses it.
func (e *Emitter) hoistForIns(ctx *ctxgraph.Context, stmts []ast.Statement) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.ForIn:
			if n.Index == "" {
				n.Index = e.nextIndex()
			}
			ctx.DeclareVariable(n.Index, "int")
			ctx.DeclareVariable(n.VarName, e.emitType(ctx, n.VarType))
			e.hoistForIns(ctx, n.Body)
		case *ast.If:
			e.hoistForIns(ctx, n.Then)
			e.hoistForIns(ctx, n.Else)
		case *ast.While:
			e.hoistForIns(ctx, n.Body)
		case *ast.Switch:
			for _, c := range n.Cases {
				e.hoistForIns(ctx, c.Body)
			}
			e.hoistForIns(ctx, n.Default)
		}
	}
}

// emitForIn lowers the `for NAME: TYPE in COLLECTION { BODY }` construct
// into an indexed native loop. Both the indexer and the loop variable were
// already hoisted to the top of the enclosing function by hoistForIns, so
// this only renders the loop itself (spec.md §4.9/§8 scenario 4).
func (e *Emitter) emitForIn(b *strings.Builder, ctx *ctxgraph.Context, n *ast.ForIn) {
	collection := e.emitExpression(ctx, n.Iterable)

	b.WriteString("for (" + n.Index + " = 0; " + n.Index + " < " + collection + ".Size(); " + n.Index + " += 1) {\n")
	b.WriteString(n.VarName + " = " + collection + "[" + n.Index + "];\n")
	for _, s := range n.Body {
		e.emitStatement(b, ctx, s)
	}
	b.WriteString("}\n")
}

func (e *Emitter) emitSwitch(b *strings.Builder, ctx *ctxgraph.Context, n *ast.Switch) {
	b.WriteString("switch (" + e.emitExpression(ctx, n.Subject) + ") {\n")
	for _, c := range n.Cases {
		for _, v := range c.Values {
			b.WriteString("case " + e.emitExpression(ctx, v) + ":\n")
		}
		b.WriteString("{\n")
		for _, s := range c.Body {
			e.emitStatement(b, ctx, s)
		}
		b.WriteString("break;\n")
		b.WriteString("}\n")
	}
	if n.Default != nil {
		b.WriteString("default:\n{\n")
		for _, s := range n.Default {
			e.emitStatement(b, ctx, s)
		}
		b.WriteString("}\n")
	}
	b.WriteString("}\n")
}
