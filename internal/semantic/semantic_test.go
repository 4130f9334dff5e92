package semantic

import (
	"testing"

	"github.com/Aelto/tw3-cahirc-language/internal/ast"
	"github.com/Aelto/tw3-cahirc-language/internal/ctxgraph"
	"github.com/Aelto/tw3-cahirc-language/internal/sourcemap"
)

func newTestProgram() (*Program, *ctxgraph.Context) {
	spans := sourcemap.NewStore()
	p := NewProgram(spans)
	root := ctxgraph.New("global", ctxgraph.KindGlobal)
	return p, root
}

func intType() *ast.NamedType    { return &ast.NamedType{Name: "int"} }
func stringType() *ast.NamedType { return &ast.NamedType{Name: "string"} }

func TestContextBuildingLinksSingleRoot(t *testing.T) {
	p, root := newTestProgram()
	fn := &ast.FunctionDecl{Name: "doThing"}
	cls := &ast.ClassDecl{Name: "Player"}
	prog := &ast.Program{Statements: []ast.TopLevel{fn, cls}}

	RunContextBuilding(p, prog, root)

	fnCtx, ok := fn.Context.(*ctxgraph.Context)
	if !ok || fnCtx.Parent != root {
		t.Fatalf("expected function context parented at root")
	}
	clsCtx, ok := cls.Context.(*ctxgraph.Context)
	if !ok || clsCtx.Parent != root {
		t.Fatalf("expected class context parented at root")
	}
	if root.TopMost() != root {
		t.Fatalf("root must be its own TopMost")
	}
}

func TestCompoundTypesDuplicateYieldsOneErrorAndKeepsFirst(t *testing.T) {
	p, root := newTestProgram()
	a := &ast.ClassDecl{Name: "Player", Extends: ""}
	b := &ast.ClassDecl{Name: "Player", Extends: "Actor"}
	prog := &ast.Program{Statements: []ast.TopLevel{a, b}}

	RunCompoundTypes(p, prog, root)

	reports := p.Reports.Take()
	if len(reports) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(reports))
	}
	entry, ok := p.Types.Lookup("Player")
	if !ok || entry.Compound.Extends != "" {
		t.Fatalf("expected the first registration to remain intact, got %+v", entry)
	}
}

func TestExpressionInferenceLiteralAndIdentifier(t *testing.T) {
	p, root := newTestProgram()
	param := &ast.Parameter{Name: "x", Type: intType()}
	ident := &ast.Identifier{Name: "x"}
	body := []ast.Statement{&ast.ExprStatement{Expr: ident}}
	fn := &ast.FunctionDecl{Name: "f", Parameters: []*ast.Parameter{param}, Body: body}
	prog := &ast.Program{Statements: []ast.TopLevel{fn}}

	RunContextBuilding(p, prog, root)
	RunExpressionTypeInference(p, prog, root)

	got, ok := ident.Cells().Get()
	if !ok || got != "int" {
		t.Fatalf("identifier type = (%q, %v), want (int, true)", got, ok)
	}
	if p.Reports.HasErrors() {
		t.Fatalf("expected no errors, got %v", p.Reports.Take())
	}
}

func TestExpressionInferenceUnknownIdentifierErrors(t *testing.T) {
	p, root := newTestProgram()
	ident := &ast.Identifier{Name: "ghost"}
	fn := &ast.FunctionDecl{Name: "f", Body: []ast.Statement{&ast.ExprStatement{Expr: ident}}}
	prog := &ast.Program{Statements: []ast.TopLevel{fn}}

	RunContextBuilding(p, prog, root)
	RunExpressionTypeInference(p, prog, root)

	if !p.Reports.HasErrors() {
		t.Fatalf("expected an error for an unresolved identifier")
	}
	if _, ok := ident.Cells().Get(); ok {
		t.Fatalf("expected the identifier's type cell to remain unset")
	}
}

func TestExpressionInferenceIsIdempotent(t *testing.T) {
	p, root := newTestProgram()
	lit := &ast.Literal{Kind: ast.LitInt, Value: "1"}
	fn := &ast.FunctionDecl{Name: "f", Body: []ast.Statement{&ast.ExprStatement{Expr: lit}}}
	prog := &ast.Program{Statements: []ast.TopLevel{fn}}

	RunContextBuilding(p, prog, root)
	RunExpressionTypeInference(p, prog, root)
	firstType, _ := lit.Cells().Get()
	p.Reports.Take()

	RunExpressionTypeInference(p, prog, root)
	secondType, _ := lit.Cells().Get()

	if firstType != secondType {
		t.Fatalf("type changed across re-inference: %q vs %q", firstType, secondType)
	}
	if p.Reports.Len() != 0 {
		t.Fatalf("expected no new diagnostics on re-inference, got %d", p.Reports.Len())
	}
}

func TestThisResolvesToEnclosingClass(t *testing.T) {
	p, root := newTestProgram()
	thisRef := &ast.Identifier{Name: "this"}
	method := &ast.FunctionDecl{Name: "attack", Body: []ast.Statement{&ast.ExprStatement{Expr: thisRef}}}
	cls := &ast.ClassDecl{Name: "Player", Methods: []*ast.FunctionDecl{method}}
	prog := &ast.Program{Statements: []ast.TopLevel{cls}}

	RunContextBuilding(p, prog, root)
	RunExpressionTypeInference(p, prog, root)

	got, ok := thisRef.Cells().Get()
	if !ok || got != "Player" {
		t.Fatalf("this type = (%q, %v), want (Player, true)", got, ok)
	}
}

func TestLambdaCaptureSetMatchesEnclosingBindings(t *testing.T) {
	p, root := newTestProgram()

	// var k: int = 3;
	kDecl := &ast.VarDecl{Names: []string{"k"}, Type: intType()}
	// var f = (x: int) -> x + k;   (modeled as a lambda whose single
	// statement returns x + k)
	xParam := &ast.Parameter{Name: "x", Type: intType()}
	lambdaBody := []ast.Statement{
		&ast.Return{Value: &ast.Binary{Op: ast.OpAdd, Left: &ast.Identifier{Name: "x"}, Right: &ast.Identifier{Name: "k"}}},
	}
	lambda := &ast.Lambda{Parameters: []*ast.Parameter{xParam}, Return: intType(), Body: lambdaBody}
	fDecl := &ast.VarDecl{Names: []string{"f"}, Infer: lambda}

	fn := &ast.FunctionDecl{Name: "outer", Body: []ast.Statement{kDecl, fDecl}}
	prog := &ast.Program{Statements: []ast.TopLevel{fn}}

	RunContextBuilding(p, prog, root)
	RunVariableDeclaration(p, prog, root) // installs k's explicit binding first
	RunExpressionTypeInference(p, prog, root)

	if len(lambda.Capture) != 1 {
		t.Fatalf("expected exactly one captured variable, got %v", lambda.Capture)
	}
	if lambda.Capture[0].Name != "k" || lambda.Capture[0].Type != "int" {
		t.Fatalf("expected capture {k int}, got %+v", lambda.Capture[0])
	}
}

func TestGenericCallRegistersVariantAndLibraryAccessor(t *testing.T) {
	p, root := newTestProgram()

	idFn := &ast.FunctionDecl{
		Name:     "id",
		Generics: &ast.GenericParams{Names: []string{"T"}},
	}
	call := &ast.Call{Callee: "id", TypeArgs: []ast.TypeExpr{intType()}}
	userFn := &ast.FunctionDecl{Name: "main", Body: []ast.Statement{&ast.ExprStatement{Expr: call}}}
	prog := &ast.Program{Statements: []ast.TopLevel{idFn, userFn}}

	RunContextBuilding(p, prog, root)
	idFn.Context.(*ctxgraph.Context).Library = true
	idFn.Context.(*ctxgraph.Context).AccessorPrefix = "wssdeadbeef"

	RunGenericCalls(p, prog, root)

	fnCtx := idFn.Context.(*ctxgraph.Context)
	if len(fnCtx.Generics.Variants) != 1 {
		t.Fatalf("expected exactly one registered variant, got %d", len(fnCtx.Generics.Variants))
	}
	if _, ok := fnCtx.Generics.Variant(ctxgraph.VariantID([]string{"int"})); !ok {
		t.Fatalf("expected the _int variant to be registered")
	}
	accessor, ok := call.Accessor.Get()
	if !ok || accessor != "wssdeadbeef" {
		t.Fatalf("expected the library accessor to be copied to the call site, got (%q, %v)", accessor, ok)
	}
}

func TestFunctionsCallsCheckerFlagsMissingRequiredArgument(t *testing.T) {
	p, root := newTestProgram()

	fn := &ast.FunctionDecl{Name: "take", Parameters: []*ast.Parameter{{Name: "a", Type: intType()}}}
	call := &ast.Call{Callee: "take"}
	userFn := &ast.FunctionDecl{Name: "main", Body: []ast.Statement{&ast.ExprStatement{Expr: call}}}
	prog := &ast.Program{Statements: []ast.TopLevel{fn, userFn}}

	RunContextBuilding(p, prog, root)
	RunCompoundTypes(p, prog, root)
	RunExpressionTypeInference(p, prog, root)
	p.Reports.Take()

	RunFunctionsCallsChecker(p, prog, root)

	if !p.Reports.HasErrors() {
		t.Fatalf("expected a missing-argument error")
	}
}

func TestFunctionsCallsCheckerPermitsAutoCast(t *testing.T) {
	p, root := newTestProgram()

	fn := &ast.FunctionDecl{Name: "take", Parameters: []*ast.Parameter{{Name: "a", Type: stringType()}}}
	arg := &ast.Literal{Kind: ast.LitName, Value: "'bob'"}
	call := &ast.Call{Callee: "take", Arguments: []ast.Expression{arg}}
	userFn := &ast.FunctionDecl{Name: "main", Body: []ast.Statement{&ast.ExprStatement{Expr: call}}}
	prog := &ast.Program{Statements: []ast.TopLevel{fn, userFn}}

	RunContextBuilding(p, prog, root)
	RunCompoundTypes(p, prog, root)
	RunExpressionTypeInference(p, prog, root)
	p.Reports.Take()

	RunFunctionsCallsChecker(p, prog, root)

	if p.Reports.HasErrors() {
		t.Fatalf("expected name->string auto-cast to be permitted, got %v", p.Reports.Take())
	}
}
