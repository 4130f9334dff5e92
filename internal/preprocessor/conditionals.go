package preprocessor

import (
	"errors"
	"strings"
)

// filterConditionals resolves every "#ifdef NAME { BODY };" / "#ifndef NAME
// { BODY };" block against registry, innermost (most nested) first, as
// required by spec.md §4.2. Nested blocks are located and resolved before
// their enclosing block's own NAME is looked up in the registry, matching
// _examples/original_source/src/preprocessor/conditionals.rs.
func filterConditionals(content string, registry *Registry) (string, error) {
	for {
		start, _, found := findOutermostConditional(content)
		if !found {
			return content, nil
		}

		resolved, err := resolveConditional(content[start:], registry)
		if err != nil {
			return "", err
		}
		content = content[:start] + resolved
	}
}

type conditionalKind int

const (
	condIfdef conditionalKind = iota
	condIfndef
)

func findOutermostConditional(content string) (int, conditionalKind, bool) {
	ifdefIdx := strings.Index(content, "#ifdef ")
	ifndefIdx := strings.Index(content, "#ifndef ")

	switch {
	case ifdefIdx == -1 && ifndefIdx == -1:
		return 0, 0, false
	case ifndefIdx == -1 || (ifdefIdx != -1 && ifdefIdx < ifndefIdx):
		return ifdefIdx, condIfdef, true
	default:
		return ifndefIdx, condIfndef, true
	}
}

// resolveConditional parses the single conditional block starting at the
// head of s (s[0] is the '#' of "#ifdef"/"#ifndef"), recursing into any
// nested conditional found within its own body first, and returns s with
// that one block replaced by its resolved text (the block's body if kept,
// empty string otherwise), followed by the untouched remainder of s.
func resolveConditional(s string, registry *Registry) (string, error) {
	var keyword string
	var kind conditionalKind
	switch {
	case strings.HasPrefix(s, "#ifdef "):
		keyword, kind = "#ifdef ", condIfdef
	case strings.HasPrefix(s, "#ifndef "):
		keyword, kind = "#ifndef ", condIfndef
	default:
		return "", errors.New("resolveConditional called on non-conditional text")
	}

	rest := s[len(keyword):]
	braceIdx := strings.IndexByte(rest, '{')
	if braceIdx == -1 {
		return "", errors.New("malformed conditional: missing body")
	}
	name := strings.TrimSpace(rest[:braceIdx])
	body := rest[braceIdx+1:]

	// Resolve any nested conditional within this block's body first.
	if nestedStart, _, found := findOutermostConditional(body); found {
		resolvedBody, err := resolveConditional(body[nestedStart:], registry)
		if err != nil {
			return "", err
		}
		body = body[:nestedStart] + resolvedBody
	}

	closeIdx := strings.Index(body, "};")
	if closeIdx == -1 {
		return "", errors.New("unterminated conditional block (missing \"};\")")
	}
	blockBody := body[:closeIdx]
	remainder := body[closeIdx+len("};"):]

	_, isDefined := registry.lookup(name)
	keep := (kind == condIfdef && isDefined) || (kind == condIfndef && !isDefined)

	if keep {
		return blockBody + remainder, nil
	}
	return remainder, nil
}
