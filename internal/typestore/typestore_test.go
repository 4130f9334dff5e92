package typestore

import (
	"testing"

	"github.com/Aelto/tw3-cahirc-language/internal/sourcemap"
)

func TestPrimitivesPreregistered(t *testing.T) {
	s := New()
	for _, name := range []string{"int", "float", "string", "name", "bool"} {
		e, ok := s.Lookup(name)
		if !ok || e.Kind != KindScalar {
			t.Fatalf("%s: want registered Scalar, got %v, %v", name, e, ok)
		}
	}
	e, ok := s.Lookup("array")
	if !ok || e.Kind != KindUnknown {
		t.Fatalf("array: want registered Unknown, got %v, %v", e, ok)
	}
}

func TestRegisterCompoundTwiceFails(t *testing.T) {
	s := New()
	if err := s.RegisterCompound("Player", ""); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if err := s.RegisterCompound("Player", "Actor"); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	e, _ := s.Lookup("Player")
	if e.Compound.Extends != "" {
		t.Fatalf("first registration should remain intact, got extends=%q", e.Compound.Extends)
	}
}

func TestRegisterFunctionTwiceFails(t *testing.T) {
	s := New()
	if err := s.RegisterFunction("DoThing", nil, "int", sourcemap.Span{}); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if err := s.RegisterFunction("DoThing", nil, "string", sourcemap.Span{}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestRegisterMethodTwiceFails(t *testing.T) {
	s := New()
	if err := s.RegisterCompound("Player", ""); err != nil {
		t.Fatalf("compound registration: %v", err)
	}
	if err := s.RegisterMethod("Player", "Attack", nil, "", sourcemap.Span{}); err != nil {
		t.Fatalf("first method registration: %v", err)
	}
	if err := s.RegisterMethod("Player", "Attack", nil, "int", sourcemap.Span{}); err == nil {
		t.Fatalf("expected duplicate method registration to fail")
	}
}

func TestRegisterMethodOnUnknownCompoundFails(t *testing.T) {
	s := New()
	if err := s.RegisterMethod("Ghost", "Vanish", nil, "", sourcemap.Span{}); err == nil {
		t.Fatalf("expected registration against unregistered compound to fail")
	}
}

func TestResolveMethodWalksExtendsChain(t *testing.T) {
	s := New()
	if err := s.RegisterCompound("Actor", ""); err != nil {
		t.Fatal(err)
	}
	if err := s.RegisterMethod("Actor", "TakeDamage", nil, "", sourcemap.Span{}); err != nil {
		t.Fatal(err)
	}
	if err := s.RegisterCompound("Player", "Actor"); err != nil {
		t.Fatal(err)
	}

	owner, fn, ok := s.ResolveMethod("Player", "TakeDamage")
	if !ok || owner != "Actor" || fn == nil {
		t.Fatalf("expected to resolve TakeDamage via Actor, got owner=%q ok=%v", owner, ok)
	}

	if _, _, ok := s.ResolveMethod("Player", "Missing"); ok {
		t.Fatalf("expected Missing to be unresolved")
	}
}

func TestResolveMethodBreaksOnExtendsCycle(t *testing.T) {
	s := New()
	s.types["A"] = &Entry{Kind: KindCompound, Compound: &Compound{Extends: "B", Methods: map[string]*Function{}}}
	s.types["B"] = &Entry{Kind: KindCompound, Compound: &Compound{Extends: "A", Methods: map[string]*Function{}}}

	if _, _, ok := s.ResolveMethod("A", "Nope"); ok {
		t.Fatalf("expected lookup through a cycle to terminate and fail")
	}
}

func TestRegisterLambdaIsIdempotentByName(t *testing.T) {
	s := New()
	params := []Parameter{{Kind: "copy", Type: "int"}}
	first := s.RegisterLambda("lambda_int_rt_int", params, "int", sourcemap.Span{})
	second := s.RegisterLambda("lambda_int_rt_int", []Parameter{{Kind: "copy", Type: "string"}}, "string", sourcemap.Span{})

	if first != second {
		t.Fatalf("expected re-registration under the same name to return the existing entry")
	}
	if second.Return != "int" {
		t.Fatalf("expected original registration to remain intact, got return=%q", second.Return)
	}
}
