package emitter

import (
	"strings"

	"github.com/Aelto/tw3-cahirc-language/internal/ast"
	"github.com/Aelto/tw3-cahirc-language/internal/ctxgraph"
	"github.com/google/uuid"
)

// emitExpression renders an expression (spec.md §4.9): infix with no
// surrounding whitespace for every operator except a boolean "and"/"or"
// join, which gets spaces on both sides.
func (e *Emitter) emitExpression(ctx *ctxgraph.Context, expr ast.Expression) string {
	switch n := expr.(type) {
	case *ast.Literal:
		return n.Value

	case *ast.Identifier:
		return n.Name

	case *ast.Call:
		name := n.Callee
		if acc, ok := n.Accessor.Get(); ok {
			name = acc
		}
		suffix := ""
		if len(n.TypeArgs) > 0 {
			argStrs := make([]string, len(n.TypeArgs))
			for i, a := range n.TypeArgs {
				argStrs[i] = e.emitType(ctx, a)
			}
			suffix = ctxgraph.VariantID(argStrs)
		}
		return name + suffix + "(" + e.emitArgs(ctx, n.Arguments) + ")"

	case *ast.Instantiation:
		name := n.ClassName
		if acc, ok := n.Accessor.Get(); ok {
			name = acc
		}
		suffix := ""
		if len(n.TypeArgs) > 0 {
			argStrs := make([]string, len(n.TypeArgs))
			for i, a := range n.TypeArgs {
				argStrs[i] = e.emitType(ctx, a)
			}
			suffix = ctxgraph.VariantID(argStrs)
		}
		return "new " + name + suffix + "(" + e.emitArgs(ctx, n.Arguments) + ")"

	case *ast.Lambda:
		return e.emitLambdaUse(ctx, n)

	case *ast.Unary:
		return "!" + e.emitExpression(ctx, n.Operand)

	case *ast.Binary:
		if n.Op == ast.OpDot {
			return e.emitExpression(ctx, n.Left) + "." + e.emitExpression(ctx, n.Right)
		}
		op := binOpString(n.Op)
		if n.Op.IsBooleanJoin() {
			return e.emitExpression(ctx, n.Left) + " " + op + " " + e.emitExpression(ctx, n.Right)
		}
		return e.emitExpression(ctx, n.Left) + op + e.emitExpression(ctx, n.Right)

	case *ast.Cast:
		return e.emitExpression(ctx, n.Operand) + " as " + e.emitType(ctx, n.Target)

	case *ast.Group:
		return "(" + e.emitExpression(ctx, n.Inner) + ")"

	case *ast.ListLit:
		parts := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			parts[i] = e.emitExpression(ctx, el)
		}
		return "[" + strings.Join(parts, ", ") + "]"

	case *ast.Nesting:
		parts := make([]string, len(n.Parts))
		for i, p := range n.Parts {
			parts[i] = e.emitExpression(ctx, p)
		}
		return strings.Join(parts, ".")

	case *ast.ErrorExpr:
		return "<error>"

	default:
		return ""
	}
}

func (e *Emitter) emitArgs(ctx *ctxgraph.Context, args []ast.Expression) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = e.emitExpression(ctx, a)
	}
	return strings.Join(parts, ", ")
}

func binOpString(op ast.BinOp) string {
	switch op {
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpMod:
		return "%"
	case ast.OpBitAnd:
		return "&"
	case ast.OpBitOr:
		return "|"
	case ast.OpBitXor:
		return "^"
	case ast.OpAnd:
		return "&&"
	case ast.OpOr:
		return "||"
	case ast.OpEq:
		return "=="
	case ast.OpNeq:
		return "!="
	case ast.OpLt:
		return "<"
	case ast.OpLte:
		return "<="
	case ast.OpGt:
		return ">"
	case ast.OpGte:
		return ">="
	case ast.OpAssign:
		return "="
	default:
		return ""
	}
}

// ownerName names the context a fresh closure instance is attached to: the
// nearest enclosing class, or the engine-global owner when a lambda is
// declared outside of any class (spec.md §4.8).
func ownerName(ctx *ctxgraph.Context) string {
	if comp := ctx.EnclosingCompound(); comp != nil {
		if name, ok := comp.ClassName(); ok {
			return name
		}
	}
	return "theGame"
}

// emitLambdaUse renders a lambda literal's use site: the shape class is
// cached once per distinct signature (emitType), the per-occurrence closure
// class is rendered into the aggregate buffer, and the use site instantiates
// and captures (spec.md §4.8).
func (e *Emitter) emitLambdaUse(ctx *ctxgraph.Context, n *ast.Lambda) string {
	if n.ClassName == "" {
		n.ClassName = "lambda_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	lt := &ast.LambdaType{Parameters: n.Parameters, Return: n.Return}
	shapeName := e.lambdaShapeName(lt, ctx)
	e.closures = append(e.closures, e.renderClosureClass(ctx, n, shapeName))

	captureArgs := make([]string, len(n.Capture))
	for i, c := range n.Capture {
		captureArgs[i] = c.Name
	}
	return "(new " + n.ClassName + " in " + ownerName(ctx) + ").Capture(" + strings.Join(captureArgs, ", ") + ")"
}

func (e *Emitter) renderClosureClass(ctx *ctxgraph.Context, n *ast.Lambda, shapeName string) string {
	var b strings.Builder
	b.WriteString("class " + n.ClassName + " extends " + shapeName + " {\n")
	for _, c := range n.Capture {
		b.WriteString("var " + c.Name + ": " + c.Type + ";\n")
	}

	b.WriteString("function Capture(")
	for i, c := range n.Capture {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.Name + ": " + c.Type)
	}
	b.WriteString("): " + n.ClassName + " {\n")
	for _, c := range n.Capture {
		b.WriteString("this." + c.Name + " = " + c.Name + ";\n")
	}
	b.WriteString("return this;\n}\n")

	b.WriteString("function run(")
	for i, p := range n.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name + ": " + e.emitType(ctx, p.Type))
	}
	b.WriteString(")")
	if n.Return != nil {
		b.WriteString(": " + e.emitType(ctx, n.Return))
	}
	b.WriteString(" {\n")
	for _, s := range n.Body {
		e.emitStatement(&b, ctx, s)
	}
	b.WriteString("}\n}\n")
	return b.String()
}
