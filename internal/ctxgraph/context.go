// Package ctxgraph implements the scope/context graph (spec.md §3/§4.4):
// the tree of lexical scopes built by the ContextBuildingVisitor, plus the
// generic sub-context and variant registry each generic declaration's
// context owns (spec.md §4.7).
//
// Grounded on _examples/original_source/src/ast/codegen/context.rs
// (Context, GenericContext, register_generic_call,
// find_global_function_declaration), translated from Rc<RefCell<_>> to
// plain *Context pointers (Go's GC owns the cycle — SPEC_FULL.md §9).
package ctxgraph

import (
	"strings"

	"github.com/google/uuid"
)

// Kind classifies what a Context was created for.
type Kind int

const (
	KindGlobal Kind = iota
	KindFile
	KindClassOrStruct
	KindState // carries the parent class name
	KindFunction
)

// Context is one node of the scope tree (spec.md §3).
type Context struct {
	Name   string
	Kind   Kind
	Parent *Context
	Children []*Context

	// Identifiers maps a locally visible name to a description string used
	// only for debugging/printing, mirroring the teacher's map shape.
	Identifiers map[string]string

	// Parameters and Variables hold the local declarations registered in
	// this context by later passes.
	Parameters map[string]string // parameter name -> type string
	Variables  map[string]string // variable name -> type string

	// HoistOrder records the order in which variable names were first
	// declared in this context, deduplicated, so the emitter can hoist a
	// function body's local declarations to its top with set semantics
	// even when the source declares the same name across multiple
	// typed-identifier groups (spec.md §4.9/§8).
	HoistOrder []string

	Generics *GenericContext // non-nil only for generic class/function contexts

	Library        bool
	AccessorPrefix string // "" unless Library and assigned by ContextBuildingVisitor

	// ReplaceThisWith overrides `this` resolution during closure lowering
	// (spec.md §3: "an optional 'replace this with <id>' override").
	ReplaceThisWith string

	StateParent string // the nominal parent class name, for KindState contexts
}

// NewAccessorPrefix mints a fresh "wss<32-hex>" mangled-accessor prefix for
// a library-owned context (spec.md §4.4).
func NewAccessorPrefix() string {
	return "wss" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// New creates a detached context with the given name and kind.
func New(name string, kind Kind) *Context {
	return &Context{
		Name:        name,
		Kind:        kind,
		Identifiers: make(map[string]string),
		Parameters:  make(map[string]string),
		Variables:   make(map[string]string),
	}
}

// NewGeneric creates a detached context carrying a generic sub-context over
// the given type parameter names.
func NewGeneric(name string, kind Kind, params []string) *Context {
	c := New(name, kind)
	c.Generics = NewGenericContext(params)
	return c
}

// SetParent links this under parent, detaching it from any prior parent
// first. Re-parenting is always explicit, never automatic (spec.md §4.4).
func (c *Context) SetParent(parent *Context) {
	if c.Parent != nil {
		c.Parent.removeChild(c)
	}
	parent.Children = append(parent.Children, c)
	c.Parent = parent
}

func (c *Context) removeChild(child *Context) {
	for i, ch := range c.Children {
		if ch == child {
			c.Children = append(c.Children[:i], c.Children[i+1:]...)
			return
		}
	}
}

// TopMost walks to the root of the tree.
func (c *Context) TopMost() *Context {
	cur := c
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// FindGlobalFunctionDeclaration looks up a child context named
// "function: <name>" among every descendant file context under the root,
// matching the teacher's naming-convention-based lookup (spec.md §4.4).
func (c *Context) FindGlobalFunctionDeclaration(name string) *Context {
	return c.TopMost().findDescendant("function: " + name)
}

// FindGlobalClassDeclaration looks up a child context named "class: <name>"
// (also matching states/structs registered with that prefix).
func (c *Context) FindGlobalClassDeclaration(name string) *Context {
	return c.TopMost().findDescendant("class: " + name)
}

func (c *Context) findDescendant(fullName string) *Context {
	if c.Name == fullName {
		return c
	}
	for _, child := range c.Children {
		if found := child.findDescendant(fullName); found != nil {
			return found
		}
	}
	return nil
}

// ClassName returns the name following "class: " if this context is a
// class/struct/state context, and "", false otherwise.
func (c *Context) ClassName() (string, bool) {
	const prefix = "class: "
	if strings.HasPrefix(c.Name, prefix) {
		return c.Name[len(prefix):], true
	}
	return "", false
}

// EnclosingCompound walks up to the nearest class/struct/state context.
func (c *Context) EnclosingCompound() *Context {
	cur := c
	for cur != nil {
		if cur.Kind == KindClassOrStruct || cur.Kind == KindState {
			return cur
		}
		cur = cur.Parent
	}
	return nil
}

// EnclosingState walks up to the nearest state context.
func (c *Context) EnclosingState() *Context {
	cur := c
	for cur != nil {
		if cur.Kind == KindState {
			return cur
		}
		cur = cur.Parent
	}
	return nil
}

// DeclareVariable installs name -> typ in this context's variable map and
// appends name to HoistOrder if it has not already been declared here,
// implementing the emitter's "each name at most once" hoisting contract
// (spec.md §8).
func (c *Context) DeclareVariable(name, typ string) {
	if _, exists := c.Variables[name]; !exists {
		c.HoistOrder = append(c.HoistOrder, name)
	}
	c.Variables[name] = typ
}

// LookupParameter walks from c up to the root looking for a parameter
// binding, returning the type string and whether it was found.
func (c *Context) LookupParameter(name string) (string, bool) {
	for cur := c; cur != nil; cur = cur.Parent {
		if t, ok := cur.Parameters[name]; ok {
			return t, true
		}
	}
	return "", false
}

// LookupVariable walks from c up to the root looking for a variable
// binding, returning the type string and whether it was found.
func (c *Context) LookupVariable(name string) (string, bool) {
	for cur := c; cur != nil; cur = cur.Parent {
		if t, ok := cur.Variables[name]; ok {
			return t, true
		}
	}
	return "", false
}

// ResolveGenericParam walks from c up to the root looking for a generic
// parameter substitution in whichever ancestor has a currently-used
// variant, implementing the emitter's "transform_if_generic_type" walk
// (spec.md §4.9).
func (c *Context) ResolveGenericParam(identifier string) (string, bool) {
	for cur := c; cur != nil; cur = cur.Parent {
		if cur.Generics == nil {
			continue
		}
		if resolved, ok := cur.Generics.CurrentTranslation(identifier); ok {
			return resolved, true
		}
	}
	return "", false
}
