package emitter

import (
	"strings"
	"testing"

	"github.com/Aelto/tw3-cahirc-language/internal/ast"
	"github.com/Aelto/tw3-cahirc-language/internal/ctxgraph"
)

func namedType(name string) *ast.NamedType { return &ast.NamedType{Name: name} }

func TestEmitFunctionUnsuffixedWhenNotGeneric(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name:       "add",
		Parameters: []*ast.Parameter{{Name: "a", Type: namedType("int")}, {Name: "b", Type: namedType("int")}},
		Return:     namedType("int"),
		Body: []ast.Statement{
			&ast.Return{Value: &ast.Binary{Op: ast.OpAdd, Left: &ast.Identifier{Name: "a"}, Right: &ast.Identifier{Name: "b"}}},
		},
		Context: ctxgraph.New("function: add", ctxgraph.KindFunction),
	}
	prog := &ast.Program{Statements: []ast.TopLevel{fn}}

	out := New().EmitFile(prog)

	if !strings.Contains(out, "function add(a: int, b: int): int {") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "return a+b;") {
		t.Fatalf("expected tight infix addition, got:\n%s", out)
	}
}

func TestEmitFunctionEmitsOneVariantPerRegisteredSpecialization(t *testing.T) {
	ctx := ctxgraph.NewGeneric("function: id", ctxgraph.KindFunction, []string{"T"})
	ctx.Generics.RegisterVariant([]string{"int"})
	ctx.Generics.RegisterVariant([]string{"string"})

	fn := &ast.FunctionDecl{
		Name:       "id",
		Generics:   &ast.GenericParams{Names: []string{"T"}},
		Parameters: []*ast.Parameter{{Name: "x", Type: namedType("T")}},
		Return:     namedType("T"),
		Body:       []ast.Statement{&ast.Return{Value: &ast.Identifier{Name: "x"}}},
		Context:    ctx,
	}
	prog := &ast.Program{Statements: []ast.TopLevel{fn}}

	out := New().EmitFile(prog)

	if !strings.Contains(out, "function id_int(x: int): int {") {
		t.Fatalf("missing int specialization:\n%s", out)
	}
	if !strings.Contains(out, "function id_string(x: string): string {") {
		t.Fatalf("missing string specialization:\n%s", out)
	}
	if ctx.Generics.CurrentlyUsed != "" {
		t.Fatalf("expected CurrentlyUsed to be reset after emission, got %q", ctx.Generics.CurrentlyUsed)
	}
}

func TestEmitForInLowersToIndexedLoop(t *testing.T) {
	loop := &ast.ForIn{
		VarName:  "item",
		VarType:  namedType("int"),
		Iterable: &ast.Identifier{Name: "items"},
		Body: []ast.Statement{
			&ast.ExprStatement{Expr: &ast.Call{Callee: "Log", Arguments: []ast.Expression{&ast.Identifier{Name: "item"}}}},
		},
	}
	fn := &ast.FunctionDecl{
		Name:    "printAll",
		Body:    []ast.Statement{loop},
		Context: ctxgraph.New("function: printAll", ctxgraph.KindFunction),
	}
	prog := &ast.Program{Statements: []ast.TopLevel{fn}}

	out := New().EmitFile(prog)

	if loop.Index == "" {
		t.Fatalf("expected a synthesized indexer name to be cached on the node")
	}
	if !strings.Contains(out, "for ("+loop.Index+" = 0; "+loop.Index+" < items.Size(); "+loop.Index+" += 1) {") {
		t.Fatalf("expected an indexed native loop, got:\n%s", out)
	}
	if !strings.Contains(out, "item = items["+loop.Index+"];") {
		t.Fatalf("expected the loop variable assigned from the indexed element, got:\n%s", out)
	}
}

func TestEmitAnnotationPrecedesPatchedDeclaration(t *testing.T) {
	fn := &ast.FunctionDecl{Name: "onAttack", Context: ctxgraph.New("function: onAttack", ctxgraph.KindFunction)}
	ann := &ast.Annotation{Kind: ast.AnnotationReplaceMethod, Target: "W3PlayerWitcher", Inner: fn}
	prog := &ast.Program{Statements: []ast.TopLevel{ann}}

	out := New().EmitFile(prog)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 || !strings.Contains(lines[0], "@replaceMethod(W3PlayerWitcher)") {
		t.Fatalf("expected the annotation on its own leading line, got:\n%s", out)
	}
}

func TestEmitHoistedVariableDeclaredOnceAtFunctionTop(t *testing.T) {
	ctx := ctxgraph.New("function: f", ctxgraph.KindFunction)
	ctx.DeclareVariable("k", "int")
	ctx.DeclareVariable("k", "int")

	fn := &ast.FunctionDecl{
		Name: "f",
		Body: []ast.Statement{
			&ast.VarDecl{Names: []string{"k"}, Infer: &ast.Literal{Kind: ast.LitInt, Value: "3"}},
		},
		Context: ctx,
	}
	prog := &ast.Program{Statements: []ast.TopLevel{fn}}

	out := New().EmitFile(prog)

	if strings.Count(out, "var k: int;") != 1 {
		t.Fatalf("expected exactly one hoisted declaration for k, got:\n%s", out)
	}
	if !strings.Contains(out, "k = 3;") {
		t.Fatalf("expected the body to only carry the assignment, got:\n%s", out)
	}
}

func TestEmitLambdaUseProducesClosureClassInAggregate(t *testing.T) {
	lambda := &ast.Lambda{
		Parameters: []*ast.Parameter{{Name: "x", Type: namedType("int")}},
		Return:     namedType("int"),
		Body:       []ast.Statement{&ast.Return{Value: &ast.Identifier{Name: "x"}}},
		Capture:    []ast.CapturedVar{{Name: "k", Type: "int"}},
	}
	fn := &ast.FunctionDecl{
		Name:    "outer",
		Body:    []ast.Statement{&ast.VarDecl{Names: []string{"f"}, Infer: lambda}},
		Context: ctxgraph.New("function: outer", ctxgraph.KindFunction),
	}
	prog := &ast.Program{Statements: []ast.TopLevel{fn}}

	e := New()
	out := e.EmitFile(prog)
	agg := e.Aggregate()

	if lambda.ClassName == "" {
		t.Fatalf("expected a closure class name to be minted")
	}
	if !strings.Contains(out, "new "+lambda.ClassName+" in theGame).Capture(k)") {
		t.Fatalf("expected the use site to instantiate and capture, got:\n%s", out)
	}
	if !strings.Contains(agg, "abstract class lambda") {
		t.Fatalf("expected an abstract shape class in the aggregate, got:\n%s", agg)
	}
	if !strings.Contains(agg, "class "+lambda.ClassName+" extends lambda") {
		t.Fatalf("expected the closure class in the aggregate, got:\n%s", agg)
	}
	if !strings.Contains(agg, "var k: int;") {
		t.Fatalf("expected a captured field in the closure class, got:\n%s", agg)
	}
}
