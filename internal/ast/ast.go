// Package ast defines the Dialect's abstract syntax tree (spec.md §3): a
// tagged-variant tree built once by the parser and never structurally
// mutated afterward. Only the small "deduction cell" fields attached to
// expression and declaration nodes are written later, by the semantic
// passes (and, for a lambda's ClassName and a for-in loop's Index, by the
// emitter), following the single-writer discipline in spec.md §5 and
// SPEC_FULL.md §9.
//
// Grounded on internal/ast/{functions,classes,declarations}.go's
// struct-per-node-kind style in the teacher repo.
package ast

import "github.com/Aelto/tw3-cahirc-language/internal/sourcemap"

// Node is implemented by every AST node that carries a span.
type Node interface {
	Pos() sourcemap.Span
}

// Program is the root of a single parsed file: an ordered list of top
// level statements (spec.md §3).
type Program struct {
	Statements []TopLevel
}

// TopLevel is implemented by every node that may appear at file scope:
// expression statements, function/class/struct/enum declarations, and
// structural annotations.
type TopLevel interface {
	Node
	topLevel()
}

// ParamKind distinguishes how a parameter is passed.
type ParamKind int

const (
	ParamCopy ParamKind = iota
	ParamOptional
	ParamReference
)

// FuncKind distinguishes the engine-native function categories the Target
// recognizes.
type FuncKind int

const (
	FuncPlain FuncKind = iota
	FuncTimer
	FuncEvent
	FuncEntry
	FuncLatent
	FuncExec
)

// AccessLevel is the optional visibility modifier carried by class members.
type AccessLevel int

const (
	AccessDefault AccessLevel = iota
	AccessPublic
	AccessPrivate
	AccessProtected
)

// TypeCell holds an expression or declaration's inferred semantic type
// string plus a shared handle into the type store. It is a "write-once or
// write-idempotent" cell (spec.md §3 invariants, SPEC_FULL.md §9): once set
// to a non-unknown value it must not change.
type TypeCell struct {
	set     bool
	typ     string
	handle  any // *typestore.Function or *typestore.Lambda, set lazily
}

// Get returns the inferred type string and whether it has been set yet.
func (c *TypeCell) Get() (string, bool) { return c.typ, c.set }

// Set assigns the cell's type the first time it is called; subsequent
// calls with a different value are rejected (idempotent deduction, spec.md
// §3/§8). Calling with the same value again is a harmless no-op.
func (c *TypeCell) Set(typ string) bool {
	if c.set {
		return c.typ == typ
	}
	c.typ = typ
	c.set = true
	return true
}

// Handle returns the shared type-store handle attached by a later pass
// (e.g. GenericCallsVisitor/ExpressionTypeInferenceVisitor recording a
// resolved function type).
func (c *TypeCell) Handle() any { return c.handle }

// SetHandle attaches a shared handle; like Set, first write wins.
func (c *TypeCell) SetHandle(h any) {
	if c.handle == nil {
		c.handle = h
	}
}

// AccessorCell holds a mangled accessor name assigned to a library-owned
// declaration. Unique once written; never rewritten with a different
// value (spec.md §3 invariants).
type AccessorCell struct {
	set   bool
	value string
}

// Get returns the accessor and whether it has been assigned.
func (c *AccessorCell) Get() (string, bool) { return c.value, c.set }

// Set assigns the accessor the first time; returns false if a different
// value was already written.
func (c *AccessorCell) Set(v string) bool {
	if c.set {
		return c.value == v
	}
	c.value = v
	c.set = true
	return true
}

// BaseNode embeds the span every node carries.
type BaseNode struct {
	Span sourcemap.Span
}

// Pos implements Node.
func (b BaseNode) Pos() sourcemap.Span { return b.Span }
