package ast

// GenericParams is the optional `<T1, T2, ...>` parameter list a class or
// function declaration may carry.
type GenericParams struct {
	Names []string
}

// FunctionDecl is a top-level or class-member function/method declaration.
//
// Context holds the *ctxgraph.Context the ContextBuildingVisitor attaches,
// stored as `any`; the concrete type is asserted by callers in
// internal/semantic and internal/emitter.
type FunctionDecl struct {
	BaseNode
	Kind       FuncKind
	Name       string
	Generics   *GenericParams // nil if not generic
	Parameters []*Parameter
	Return     TypeExpr // nil => void
	Body       []Statement
	Access     AccessLevel // meaningful only for methods

	Context any
}

func (*FunctionDecl) topLevel() {}

// Property is a class/struct field declaration.
type Property struct {
	BaseNode
	Name     string
	Type     TypeExpr
	Editable bool
	Saved    bool
	Access   AccessLevel
	Default  Expression // nil if no default-value assignment
}

// Hint is a free-form compiler hint attached to a compound body (spec.md
// §3's "hints").
type Hint struct {
	BaseNode
	Text string
}

// CompoundKind distinguishes the class-like declaration forms.
type CompoundKind int

const (
	CompoundClass CompoundKind = iota
	CompoundStruct
	CompoundState
)

// ClassDecl is a class, struct, or state declaration (spec.md §3: "classes
// additionally carry the nominal parent and the container class for
// states").
type ClassDecl struct {
	BaseNode
	Kind       CompoundKind
	Name       string
	Generics   *GenericParams
	Extends    string // "" if no parent
	StateOf    string // non-"" only when Kind == CompoundState
	Methods    []*FunctionDecl
	Properties []*Property
	Hints      []Hint

	Context any
}

func (*ClassDecl) topLevel() {}

// EnumMember is one `NAME [= VALUE]` entry of an enum declaration.
type EnumMember struct {
	BaseNode
	Name  string
	Value Expression // nil if not explicitly assigned
}

// EnumDecl declares an enumerated type.
type EnumDecl struct {
	BaseNode
	Name    string
	Members []EnumMember
}

func (*EnumDecl) topLevel() {}

// AnnotationKind tags a structural annotation's patching behavior.
type AnnotationKind int

const (
	AnnotationReplaceMethod AnnotationKind = iota
	AnnotationWrapMethod
	AnnotationAddMethod
	AnnotationAddField
)

// Annotation is a structural annotation that patches an existing class:
// `@replaceMethod(P)`, `@wrapMethod(P)`, `@addMethod(P)`, `@addField(P)`,
// immediately followed by the inner declaration it applies to.
type Annotation struct {
	BaseNode
	Kind   AnnotationKind
	Target string // the patched class/parameter name, P
	Inner  TopLevel
}

func (*Annotation) topLevel() {}
