package ast

import "github.com/Aelto/tw3-cahirc-language/internal/ctxgraph"

// TypeExpr is a type declaration: either a regular named type (optionally
// generic) or a lambda shape (spec.md §3).
type TypeExpr interface {
	typeExpr()
	// String returns the canonical flat stringification used for equality
	// testing and mangling (spec.md §4.5): base name followed by the
	// concatenated stringifications of its generic arguments, no
	// separator, per the canonical rule in spec.md §9(ii).
	String() string
}

// NamedType is a regular type reference: a base name plus optional generic
// arguments, with a mangled-accessor cell filled in when the name resolves
// to a library declaration.
type NamedType struct {
	Name     string
	Args     []TypeExpr
	Accessor AccessorCell
}

func (*NamedType) typeExpr() {}

func (t *NamedType) String() string {
	s := t.Name
	for _, a := range t.Args {
		s += a.String()
	}
	return s
}

// LambdaType is a lambda shape: a parameter list plus optional return
// type.
type LambdaType struct {
	Parameters []*Parameter
	Return     TypeExpr // nil means void
}

func (*LambdaType) typeExpr() {}

// String builds the canonical lambda shape name: "lambda" followed by the
// generic-suffix form (spec.md §9(ii)) of the parameter types, then
// "_rt_" and either that same suffix form of the return type or the
// literal "_void" (spec.md §4.5/§9(ii); worked example spec.md §8:
// a single int parameter returning int stringifies to
// "lambda_int_rt__int").
func (t *LambdaType) String() string {
	paramTypes := make([]string, len(t.Parameters))
	for i, p := range t.Parameters {
		paramTypes[i] = p.Type.String()
	}
	s := "lambda" + ctxgraph.VariantID(paramTypes)
	if t.Return != nil {
		s += "_rt_" + ctxgraph.VariantID([]string{t.Return.String()})
	} else {
		s += "_rt_" + "_void"
	}
	return s
}

// Parameter is a function/method/lambda parameter.
type Parameter struct {
	BaseNode
	Kind ParamKind
	Name string
	Type TypeExpr
}
