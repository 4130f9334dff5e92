package ctxgraph

import "testing"

func TestTopMostIsSingleRoot(t *testing.T) {
	root := New("global", KindGlobal)
	file := New("file: main.wss", KindFile)
	file.SetParent(root)
	cls := New("class: Foo", KindClassOrStruct)
	cls.SetParent(file)

	if got := cls.TopMost(); got != root {
		t.Fatalf("TopMost() = %v, want root", got)
	}
	if len(root.Children) != 1 || root.Children[0] != file {
		t.Fatalf("root children = %v", root.Children)
	}
}

func TestReparentingDetachesFromPriorParent(t *testing.T) {
	a := New("a", KindFile)
	b := New("b", KindFile)
	child := New("class: X", KindClassOrStruct)

	child.SetParent(a)
	child.SetParent(b)

	if len(a.Children) != 0 {
		t.Fatalf("expected a to have no children after reparenting, got %v", a.Children)
	}
	if len(b.Children) != 1 || b.Children[0] != child {
		t.Fatalf("expected b to own child, got %v", b.Children)
	}
}

func TestFindGlobalClassDeclaration(t *testing.T) {
	root := New("global", KindGlobal)
	file := New("file: main.wss", KindFile)
	file.SetParent(root)
	cls := New("class: Player", KindClassOrStruct)
	cls.SetParent(file)

	found := root.FindGlobalClassDeclaration("Player")
	if found != cls {
		t.Fatalf("FindGlobalClassDeclaration did not find the class context")
	}
	if root.FindGlobalClassDeclaration("Missing") != nil {
		t.Fatalf("expected nil for unknown class")
	}
}

func TestVariantRegistrationIsIdempotent(t *testing.T) {
	g := NewGenericContext([]string{"T"})
	if !g.RegisterVariant([]string{"int"}) {
		t.Fatalf("first registration should succeed")
	}
	if !g.RegisterVariant([]string{"int"}) {
		t.Fatalf("re-registration should be a no-op success")
	}
	if len(g.Variants) != 1 {
		t.Fatalf("expected exactly one variant entry, got %d", len(g.Variants))
	}
}

func TestVariantIDIsInjectiveOverDistinctVectors(t *testing.T) {
	cases := [][]string{
		{"int", "string"},
		{"intstring", ""},
		{"int", "", "string"},
	}
	seen := make(map[string]int)
	for i, c := range cases {
		id := VariantID(c)
		if prior, ok := seen[id]; ok {
			t.Fatalf("VariantID collision between case %d and %d: %q", prior, i, id)
		}
		seen[id] = i
	}
}

func TestVariantIDMatchesSpecFormat(t *testing.T) {
	got := VariantID([]string{"int", "string"})
	want := "_int_string"
	if got != want {
		t.Fatalf("VariantID = %q, want %q", got, want)
	}
}

func TestRegisterVariantRejectsMismatchedArity(t *testing.T) {
	g := NewGenericContext([]string{"T", "U"})
	if g.RegisterVariant([]string{"int"}) {
		t.Fatalf("expected arity mismatch to be rejected")
	}
	if len(g.Variants) != 0 {
		t.Fatalf("expected no variant registered, got %d", len(g.Variants))
	}
}

func TestCurrentTranslationResolvesSelectedVariant(t *testing.T) {
	g := NewGenericContext([]string{"T"})
	g.RegisterVariant([]string{"int"})
	g.CurrentlyUsed = VariantID([]string{"int"})

	resolved, ok := g.CurrentTranslation("T")
	if !ok || resolved != "int" {
		t.Fatalf("CurrentTranslation(T) = (%q, %v), want (int, true)", resolved, ok)
	}
	if _, ok := g.CurrentTranslation("U"); ok {
		t.Fatalf("expected U to be unresolved")
	}
}
