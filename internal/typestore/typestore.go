// Package typestore implements the type inference store (spec.md §3/§4.5):
// a process-wide (per-compilation) registry mapping a type name to its
// inferred type — Scalar, Compound, Function, Lambda, or Unknown.
//
// Grounded on the teacher's internal/semantic.Analyzer's struct-of-maps
// registry style (classes/functions/enums kept as separate maps), narrowed
// to the kinds spec.md §4.5 names.
package typestore

import (
	"fmt"

	"github.com/Aelto/tw3-cahirc-language/internal/sourcemap"
)

// Kind discriminates the shape stored under a type name.
type Kind int

const (
	KindUnknown Kind = iota
	KindScalar
	KindCompound
	KindFunction
	KindLambda
)

// Parameter is a function/method/lambda parameter signature entry, using
// the AST's canonical flat type stringification (spec.md §4.5).
type Parameter struct {
	Kind string // "copy", "optional", or "reference"
	Type string
	Span sourcemap.Span
}

// Compound is a class/struct/state's registered shape: a mutable
// name->Function method map shared by handle (spec.md §3: "Method maps are
// themselves mutable name->function mappings shared by handle so that
// methods can be added post-creation"), plus an optional nominal parent.
type Compound struct {
	Extends string // "" if none
	Methods map[string]*Function
}

// Function is a registered free function or method signature.
type Function struct {
	Name       string
	Parameters []Parameter
	Return     string // "" means void
	Span       sourcemap.Span
}

// Lambda is a registered lambda shape, added lazily as expressions are
// inferred (spec.md §4.5).
type Lambda struct {
	Parameters []Parameter
	Return     string // "" means void
	Span       sourcemap.Span
}

// Entry is one type-store record: exactly one of the typed fields is
// meaningful, selected by Kind.
type Entry struct {
	Kind     Kind
	Compound *Compound
	Function *Function
	Lambda   *Lambda
}

// Store is the process-wide type registry (spec.md §4.5).
type Store struct {
	types map[string]*Entry
}

// New creates a store with the Dialect's built-in primitives pre-registered:
// int/float/string/name/bool as Scalar, array as Unknown (the only built-in
// generic the Target supports natively).
func New() *Store {
	s := &Store{types: make(map[string]*Entry)}
	for _, name := range []string{"int", "float", "string", "name", "bool"} {
		s.types[name] = &Entry{Kind: KindScalar}
	}
	s.types["array"] = &Entry{Kind: KindUnknown}
	return s
}

// Lookup returns the entry registered under name, if any.
func (s *Store) Lookup(name string) (*Entry, bool) {
	e, ok := s.types[name]
	return e, ok
}

// IsRegistered reports whether any entry (of any kind) exists under name.
func (s *Store) IsRegistered(name string) bool {
	_, ok := s.types[name]
	return ok
}

// RegisterCompound inserts an empty Compound under name. Fails with
// "registered twice" if the name already exists (spec.md §4.5/§8: "duplicate
// type/function/method ... yields exactly one error and leaves the first
// registration intact").
func (s *Store) RegisterCompound(name, extends string) error {
	if _, exists := s.types[name]; exists {
		return fmt.Errorf("type %q registered twice", name)
	}
	s.types[name] = &Entry{
		Kind:     KindCompound,
		Compound: &Compound{Extends: extends, Methods: make(map[string]*Function)},
	}
	return nil
}

// RegisterFunction inserts a Function under name. Fails on duplicate.
func (s *Store) RegisterFunction(name string, parameters []Parameter, returnType string, span sourcemap.Span) error {
	if _, exists := s.types[name]; exists {
		return fmt.Errorf("function %q registered twice", name)
	}
	s.types[name] = &Entry{
		Kind: KindFunction,
		Function: &Function{
			Name:       name,
			Parameters: parameters,
			Return:     returnType,
			Span:       span,
		},
	}
	return nil
}

// RegisterMethod mutates compound's method-map via its shared handle,
// adding name. Fails if compound is not a registered Compound, or if the
// method name already exists on it.
func (s *Store) RegisterMethod(compound, name string, parameters []Parameter, returnType string, span sourcemap.Span) error {
	e, ok := s.types[compound]
	if !ok || e.Kind != KindCompound {
		return fmt.Errorf("%q is not a registered compound type", compound)
	}
	if _, exists := e.Compound.Methods[name]; exists {
		return fmt.Errorf("method %q registered twice on %q", name, compound)
	}
	e.Compound.Methods[name] = &Function{
		Name:       name,
		Parameters: parameters,
		Return:     returnType,
		Span:       span,
	}
	return nil
}

// RegisterLambda inserts or returns the existing Lambda entry for a
// structurally distinct lambda shape keyed by name (the shape's canonical
// ast.LambdaType string, computed during expression inference). Lambda entries are added
// lazily as expressions are inferred (spec.md §4.5), so unlike the other
// Register* operations a re-registration under the same name is accepted
// as a no-op rather than an error.
func (s *Store) RegisterLambda(name string, parameters []Parameter, returnType string, span sourcemap.Span) *Lambda {
	if e, ok := s.types[name]; ok && e.Kind == KindLambda {
		return e.Lambda
	}
	l := &Lambda{Parameters: parameters, Return: returnType, Span: span}
	s.types[name] = &Entry{Kind: KindLambda, Lambda: l}
	return l
}

// ResolveMethod walks compound's extends chain looking for a method named
// name, returning the owning compound's name and the Function, or ("",
// nil, false) if not found anywhere in the chain (spec.md §4.5's "walk down
// its extends chain").
func (s *Store) ResolveMethod(compound, name string) (string, *Function, bool) {
	seen := make(map[string]bool)
	for cur := compound; cur != "" && !seen[cur]; {
		seen[cur] = true
		e, ok := s.types[cur]
		if !ok || e.Kind != KindCompound {
			return "", nil, false
		}
		if fn, ok := e.Compound.Methods[name]; ok {
			return cur, fn, true
		}
		cur = e.Compound.Extends
	}
	return "", nil, false
}
