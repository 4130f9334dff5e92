package emitter

import (
	"strings"

	"github.com/Aelto/tw3-cahirc-language/internal/ast"
	"github.com/Aelto/tw3-cahirc-language/internal/ctxgraph"
)

// emitFunctionAllVariants emits fn once per registered generic variant
// (spec.md §4.7/§8: "for every generic declaration with variants
// {V1,...,Vk}, the emitter produces k specializations"), or once unsuffixed
// when fn carries no generic parameters or no variant was ever used.
func (e *Emitter) emitFunctionAllVariants(b *strings.Builder, fn *ast.FunctionDecl) {
	ctx := contextOf(fn.Context)
	for _, vid := range sortedVariants(ctx) {
		if ctx.Generics != nil {
			ctx.Generics.CurrentlyUsed = vid
		}
		e.emitFunction(b, fn, ctx, vid)
	}
	if ctx.Generics != nil {
		ctx.Generics.CurrentlyUsed = ""
	}
}

func (e *Emitter) emitFunction(b *strings.Builder, fn *ast.FunctionDecl, ctx *ctxgraph.Context, variantSuffix string) {
	name := mangledOrName(ctx, fn.Name) + variantSuffix

	if fn.Access != ast.AccessDefault {
		b.WriteString(accessWord(fn.Access))
	}
	b.WriteString(funcKindWord(fn.Kind) + " " + name + "(")
	for i, p := range fn.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.emitParameter(ctx, p))
	}
	b.WriteString(")")
	if fn.Return != nil {
		b.WriteString(": " + e.emitType(ctx, fn.Return))
	}
	b.WriteString(" {\n")

	e.hoistForIns(ctx, fn.Body)
	for _, name := range ctx.HoistOrder {
		b.WriteString("var " + name + ": " + ctx.Variables[name] + ";\n")
	}
	for _, s := range fn.Body {
		e.emitStatement(b, ctx, s)
	}
	b.WriteString("}\n")
}

func (e *Emitter) emitParameter(ctx *ctxgraph.Context, p *ast.Parameter) string {
	prefix := ""
	switch p.Kind {
	case ast.ParamOptional:
		prefix = "optional "
	case ast.ParamReference:
		prefix = "out "
	}
	return prefix + p.Name + ": " + e.emitType(ctx, p.Type)
}

// emitClassAllVariants emits cls once per registered generic variant, same
// rule as emitFunctionAllVariants.
func (e *Emitter) emitClassAllVariants(b *strings.Builder, cls *ast.ClassDecl) {
	ctx := contextOf(cls.Context)
	for _, vid := range sortedVariants(ctx) {
		if ctx.Generics != nil {
			ctx.Generics.CurrentlyUsed = vid
		}
		e.emitClass(b, cls, ctx, vid)
	}
	if ctx.Generics != nil {
		ctx.Generics.CurrentlyUsed = ""
	}
}

func (e *Emitter) emitClass(b *strings.Builder, cls *ast.ClassDecl, ctx *ctxgraph.Context, variantSuffix string) {
	name := mangledOrName(ctx, cls.Name) + variantSuffix

	b.WriteString(compoundKindWord(cls.Kind) + " " + name)
	if cls.Kind == ast.CompoundState && cls.StateOf != "" {
		b.WriteString(" in " + cls.StateOf)
	}
	if cls.Extends != "" {
		b.WriteString(" extends " + cls.Extends)
	}
	b.WriteString(" {\n")

	for _, h := range cls.Hints {
		b.WriteString("// " + h.Text + "\n")
	}
	for _, p := range cls.Properties {
		e.emitProperty(b, ctx, p)
	}
	for _, m := range cls.Methods {
		mctx := contextOf(m.Context)
		for _, mvid := range sortedVariants(mctx) {
			if mctx.Generics != nil {
				mctx.Generics.CurrentlyUsed = mvid
			}
			e.emitFunction(b, m, mctx, mvid)
		}
		if mctx.Generics != nil {
			mctx.Generics.CurrentlyUsed = ""
		}
	}
	b.WriteString("}\n")
}

func (e *Emitter) emitProperty(b *strings.Builder, ctx *ctxgraph.Context, p *ast.Property) {
	if p.Access != ast.AccessDefault {
		b.WriteString(accessWord(p.Access))
	}
	if p.Editable {
		b.WriteString("editable ")
	}
	if p.Saved {
		b.WriteString("saved ")
	}
	b.WriteString("var " + p.Name + ": " + e.emitType(ctx, p.Type))
	if p.Default != nil {
		b.WriteString(" = " + e.emitExpression(ctx, p.Default))
	}
	b.WriteString(";\n")
}
