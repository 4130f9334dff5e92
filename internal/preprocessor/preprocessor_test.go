package preprocessor

import (
	"strings"
	"testing"
)

func process(t *testing.T, content string) string {
	t.Helper()
	files := map[string]*File{"main.wss": {Path: "main.wss", Content: content}}
	if _, err := Process(files, nil); err != nil {
		t.Fatalf("Process: %v", err)
	}
	return files["main.wss"].Content
}

func TestConstantMacro(t *testing.T) {
	got := process(t, `#define const MAX = 5; var x: int = MAX!;`)
	want := `var x: int = 5;`
	if strings.TrimSpace(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestConstantMacroDefaultsToTrue(t *testing.T) {
	got := process(t, `#define const FEATURE; if FEATURE! { };`)
	if !strings.Contains(got, "if true { };") {
		t.Fatalf("got %q", got)
	}
}

func TestFunctionMacroWithFindReplace(t *testing.T) {
	got := process(t, `#define function swap(a,b) { var t: int; t = a; a = b; b = t;
#pragma find t
#pragma replace tmp
};
swap!(x, y);`)
	if !strings.Contains(got, "var tmp: int; tmp = x; x = y; y = tmp;") {
		t.Fatalf("got %q", got)
	}
}

func TestIfdefKeepsBodyWhenDefined(t *testing.T) {
	got := process(t, `#define const DEBUG;
#ifdef DEBUG { log!(1); };`)
	if !strings.Contains(got, "log!(1);") {
		t.Fatalf("expected body kept, got %q", got)
	}
}

func TestIfndefDropsBodyWhenDefined(t *testing.T) {
	got := process(t, `#define const RELEASE;
#ifndef RELEASE { debugOnly!(); };`)
	if strings.Contains(got, "debugOnly") {
		t.Fatalf("expected body dropped, got %q", got)
	}
}

func TestUndefinedMacroCallIsAdvisoryAndLeftAsIs(t *testing.T) {
	files := map[string]*File{"main.wss": {Path: "main.wss", Content: `var x = unknown!;`}}
	out, err := Process(files, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if files["main.wss"].Content != `var x = unknown!;` {
		t.Fatalf("expected call left as-is, got %q", files["main.wss"].Content)
	}
	if len(out.Diagnostics) == 0 {
		t.Fatalf("expected an advisory diagnostic")
	}
}

func TestRegisterRegistry(t *testing.T) {
	files := map[string]*File{
		"a.wss": {Path: "a.wss", Content: `@register('hooks', {{ onLoad(); }})`},
		"b.wss": {Path: "b.wss", Content: `function init() { @registry('hooks', {{ REGISTER }}) };`},
	}
	if _, err := Process(files, nil); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(files["b.wss"].Content, "onLoad();") {
		t.Fatalf("expected registry emission, got %q", files["b.wss"].Content)
	}
}

func TestUnusedRegisterIsAdvisory(t *testing.T) {
	files := map[string]*File{"a.wss": {Path: "a.wss", Content: `@register('orphan', {{ x(); }})`}}
	out, err := Process(files, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	found := false
	for _, d := range out.Diagnostics {
		if strings.Contains(d.Message, "orphan") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected advisory about unused register, got %+v", out.Diagnostics)
	}
}

func TestUnterminatedBlockCommentIsFatal(t *testing.T) {
	files := map[string]*File{"a.wss": {Path: "a.wss", Content: "/* never closed"}}
	if _, err := Process(files, nil); err == nil {
		t.Fatalf("expected fatal error")
	}
}

func TestFixedPointExpandsMacroProducedMacros(t *testing.T) {
	got := process(t, `#define function defineFoo() { #define const FOO = 1; };
defineFoo!();
var x = FOO!;`)
	if !strings.Contains(got, "var x = 1;") {
		t.Fatalf("got %q", got)
	}
}
