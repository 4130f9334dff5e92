package emitter

import (
	"strings"

	"github.com/Aelto/tw3-cahirc-language/internal/ast"
	"github.com/Aelto/tw3-cahirc-language/internal/ctxgraph"
)

// emitType renders a type declaration (spec.md §4.9): a mangled accessor
// when the name resolves to a library declaration, else the currently
// selected generic-parameter translation walking up to the root, else the
// bare name; followed by the variant suffix, except for the native "array"
// type which instead uses angle-bracket argument syntax.
func (e *Emitter) emitType(ctx *ctxgraph.Context, t ast.TypeExpr) string {
	if t == nil {
		return "void"
	}
	switch tt := t.(type) {
	case *ast.NamedType:
		base := tt.Name
		if acc, ok := tt.Accessor.Get(); ok {
			base = acc
		} else if resolved, ok := ctx.ResolveGenericParam(tt.Name); ok {
			base = resolved
		}

		if tt.Name == "array" {
			parts := make([]string, len(tt.Args))
			for i, a := range tt.Args {
				parts[i] = e.emitType(ctx, a)
			}
			return "array<" + strings.Join(parts, ", ") + ">"
		}

		if len(tt.Args) == 0 {
			return base
		}
		argStrings := make([]string, len(tt.Args))
		for i, a := range tt.Args {
			argStrings[i] = e.emitType(ctx, a)
		}
		return base + ctxgraph.VariantID(argStrings)

	case *ast.LambdaType:
		return e.lambdaShapeName(tt, ctx)

	default:
		return t.String()
	}
}

// lambdaShapeName returns lt's canonical shape-class name, rendering and
// caching the abstract shape class the first time a given shape is seen
// (spec.md §4.8: one shape class per distinct lambda signature, shared
// across every occurrence).
func (e *Emitter) lambdaShapeName(lt *ast.LambdaType, ctx *ctxgraph.Context) string {
	key := lt.String()
	if _, ok := e.shapeClasses[key]; !ok {
		e.shapeOrder = append(e.shapeOrder, key)
		e.shapeClasses[key] = e.renderLambdaShape(key, lt, ctx)
	}
	return key
}

func (e *Emitter) renderLambdaShape(name string, lt *ast.LambdaType, ctx *ctxgraph.Context) string {
	var b strings.Builder
	b.WriteString("abstract class " + name + " {\n")
	b.WriteString("function run(")
	for i, p := range lt.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name + ": " + e.emitType(ctx, p.Type))
	}
	b.WriteString(")")
	if lt.Return != nil {
		b.WriteString(": " + e.emitType(ctx, lt.Return))
	}
	b.WriteString(";\n}\n")
	return b.String()
}
