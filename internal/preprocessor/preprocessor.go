// Package preprocessor implements the textual rewrite pass that runs before
// parsing: macro expansion (function and constant macros), conditional
// compilation (#ifdef/#ifndef), pragma-driven find/replace inside macro
// bodies, call-site splicing ($), and the register/registry accumulate-and
// -emit facility (spec.md §4.2).
//
// It is implemented as a hand-written scanner rather than the original's
// regex-driven rewrites (see SPEC_FULL.md §9 and
// _examples/original_source/src/preprocessor) because nested "#define
// function" bodies and balanced "{{ ... }}" verbatim blocks are not
// regular, and a scanner keeps later diagnostics pointing at a coherent
// byte offset within the original text.
package preprocessor

import (
	"fmt"
	"strings"
)

// File is a single preprocessed unit: a path plus its content, where
// Content is rewritten in place across expansion iterations. Passing files
// by pointer gives the "interior mutability" spec.md §3 asks for without an
// explicit cell type.
type File struct {
	Path    string
	Content string
}

// MacroKind distinguishes the two macro definition forms.
type MacroKind int

const (
	MacroFunction MacroKind = iota
	MacroConstant
)

// Macro is a registered macro definition, either a parameterized function
// macro or a simple constant substitution.
type Macro struct {
	Kind       MacroKind
	Name       string
	Parameters []string // function macros only
	Body       string   // function macros: unexpanded body text
	Value      string   // constant macros: substitution text
}

// Registry is the fixed-point macro table built and consulted across every
// file during expansion. It is scoped to a single compilation (spec.md §3).
type Registry struct {
	macros map[string]Macro
}

// NewRegistry returns an empty macro registry.
func NewRegistry() *Registry {
	return &Registry{macros: make(map[string]Macro)}
}

func (r *Registry) register(m Macro) { r.macros[m.Name] = m }

func (r *Registry) lookup(name string) (Macro, bool) {
	m, ok := r.macros[name]
	return m, ok
}

// FatalError reports an unrecoverable preprocessor failure: an unterminated
// macro body, verbatim argument, or block comment. The driver aborts
// compilation on this error, per spec.md §7.
type FatalError struct {
	File    string
	Message string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Diagnostic is a non-fatal preprocessor finding: a call to an undefined
// macro, or a register whose name was never consumed by a matching
// @registry. These are advisory per spec.md §7 — compilation continues.
type Diagnostic struct {
	File    string
	Message string
}

// Output bundles the diagnostics produced while preprocessing; the driver
// prints them after a successful run.
type Output struct {
	Diagnostics []Diagnostic
}

// Process runs the full preprocessor pipeline in place over every file in
// sourceFiles and every dependency's files in dependencyFiles (a map of
// dependency name to its own path->File map): strip comments, expand macros
// to a fixed point, filter conditionals bottom-up, then collect and expand
// registers/registries. It returns accumulated advisory diagnostics, or an
// error on the first unrecoverable failure: a *FatalError for comment, macro
// and conditional failures, a plain error for a malformed register/registry
// directive.
func Process(sourceFiles map[string]*File, dependencyFiles map[string]map[string]*File) (*Output, error) {
	out := &Output{}
	registry := NewRegistry()

	all := func(yield func(*File)) {
		for _, f := range sourceFiles {
			yield(f)
		}
		for _, dep := range dependencyFiles {
			for _, f := range dep {
				yield(f)
			}
		}
	}

	var stripErr error
	all(func(f *File) {
		if stripErr != nil {
			return
		}
		stripped, err := stripComments(f.Content)
		if err != nil {
			stripErr = &FatalError{File: f.Path, Message: err.Error()}
			return
		}
		f.Content = stripped
	})
	if stripErr != nil {
		return nil, stripErr
	}

	// Fixed-point expansion: repeat while any file still contains a macro
	// call, registering newly discovered macros as we go so that macros
	// produced by prior iterations become available to later ones.
	for {
		changedAny := false
		var iterErr error

		all(func(f *File) {
			if iterErr != nil {
				return
			}
			newContent, defs, err := extractFunctionMacros(f.Content)
			if err != nil {
				iterErr = &FatalError{File: f.Path, Message: err.Error()}
				return
			}
			for _, m := range defs {
				registry.register(m)
			}

			newContent, constDefs := extractConstMacros(newContent)
			for _, m := range constDefs {
				registry.register(m)
			}

			expanded, diags, err := expandCalls(newContent, registry)
			if err != nil {
				iterErr = &FatalError{File: f.Path, Message: err.Error()}
				return
			}
			for _, d := range diags {
				out.Diagnostics = append(out.Diagnostics, Diagnostic{File: f.Path, Message: d})
			}

			if expanded != f.Content {
				changedAny = true
			}
			f.Content = expanded
		})
		if iterErr != nil {
			return nil, iterErr
		}
		if !changedAny {
			break
		}
	}

	var condErr error
	all(func(f *File) {
		if condErr != nil {
			return
		}
		filtered, err := filterConditionals(f.Content, registry)
		if err != nil {
			condErr = &FatalError{File: f.Path, Message: err.Error()}
			return
		}
		f.Content = filtered
	})
	if condErr != nil {
		return nil, condErr
	}

	registerDiags, err := handleRegisters(sourceFiles, dependencyFiles)
	if err != nil {
		return nil, err
	}
	out.Diagnostics = append(out.Diagnostics, registerDiags...)

	all(func(f *File) {
		f.Content = stripPragmas(f.Content)
	})

	return out, nil
}

// stripPragmas removes any leftover "#pragma ..." line before parsing;
// pragma find/replace directives are consumed earlier, from inside macro
// bodies only, so anything remaining at this point is dead text.
func stripPragmas(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#pragma ") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
