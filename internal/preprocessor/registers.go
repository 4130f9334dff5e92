package preprocessor

import (
	"errors"
	"fmt"
	"strings"
)

// handleRegisters implements the register/registry facility (spec.md
// §4.2): first every "@register('NAME', BODY)" across all files is
// collected (and removed from the text) under NAME, then every
// "@registry('NAME', BODY)" is replaced by one copy of BODY per collected
// value, with the literal token REGISTER substituted for that value.
// Registries naming an unknown NAME emit nothing; registers whose NAME was
// never consumed by a matching registry are reported as advisory
// diagnostics.
func handleRegisters(sourceFiles map[string]*File, dependencyFiles map[string]map[string]*File) ([]Diagnostic, error) {
	registers := make(map[string][]string)

	collect := func(f *File) error {
		for {
			start, ok := findDirective(f.Content, "@register")
			if !ok {
				return nil
			}
			name, body, end, err := parseDirective(f.Content[start:], "@register")
			if err != nil {
				return fmt.Errorf("%s: %w", f.Path, err)
			}
			registers[name] = append(registers[name], body)
			f.Content = f.Content[:start] + f.Content[start+end:]
		}
	}

	for _, f := range sourceFiles {
		if err := collect(f); err != nil {
			return nil, err
		}
	}
	for _, dep := range dependencyFiles {
		for _, f := range dep {
			if err := collect(f); err != nil {
				return nil, err
			}
		}
	}

	used := make(map[string]bool)
	emit := func(f *File) error {
		for {
			start, ok := findDirective(f.Content, "@registry")
			if !ok {
				return nil
			}
			name, body, end, err := parseDirective(f.Content[start:], "@registry")
			if err != nil {
				return fmt.Errorf("%s: %w", f.Path, err)
			}

			values := registers[name]
			var out strings.Builder
			for _, v := range values {
				out.WriteString(strings.ReplaceAll(body, "REGISTER", v))
			}
			if len(values) > 0 {
				used[name] = true
			}

			f.Content = f.Content[:start] + out.String() + f.Content[start+end:]
		}
	}

	for _, f := range sourceFiles {
		if err := emit(f); err != nil {
			return nil, err
		}
	}
	for _, dep := range dependencyFiles {
		for _, f := range dep {
			if err := emit(f); err != nil {
				return nil, err
			}
		}
	}

	var diags []Diagnostic
	for name := range registers {
		if !used[name] {
			diags = append(diags, Diagnostic{Message: fmt.Sprintf("register %q defined but unused, no matching @registry found", name)})
		}
	}
	return diags, nil
}

func findDirective(content, prefix string) (int, bool) {
	idx := strings.Index(content, prefix)
	return idx, idx != -1
}

// parseDirective parses "PREFIX('NAME', BODY)" starting at the head of s,
// where BODY is either a balanced "(...)" expression or a verbatim
// "{{...}}" block, and returns the name, body text, and the byte length of
// the whole directive within s.
func parseDirective(s, prefix string) (name, body string, length int, err error) {
	rest := s[len(prefix):]
	rest = strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(rest, "(") {
		return "", "", 0, errors.New("malformed directive: expected '(' after prefix")
	}
	rest = rest[1:]
	rest = strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(rest, "'") {
		return "", "", 0, errors.New("malformed directive: expected quoted name")
	}
	rest = rest[1:]
	q := strings.IndexByte(rest, '\'')
	if q == -1 {
		return "", "", 0, errors.New("malformed directive: unterminated name")
	}
	name = rest[:q]
	rest = rest[q+1:]
	rest = strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(rest, ",") {
		return "", "", 0, errors.New("malformed directive: expected ',' after name")
	}
	rest = rest[1:]
	rest = strings.TrimLeft(rest, " \t")

	var bodyLen int
	if strings.HasPrefix(rest, "{{") {
		end := strings.Index(rest[2:], "}}")
		if end == -1 {
			return "", "", 0, errors.New("unterminated {{ verbatim block in directive")
		}
		body = rest[2 : 2+end]
		afterBody := strings.TrimLeft(rest[2+end+2:], " \t")
		if !strings.HasPrefix(afterBody, ")") {
			return "", "", 0, errors.New("malformed directive: expected ')' after verbatim block")
		}
		consumedBeforeParen := len(rest) - len(afterBody)
		bodyLen = consumedBeforeParen + 1
	} else {
		depth := 1
		i := 0
		for i < len(rest) {
			switch rest[i] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					body = rest[:i]
					bodyLen = i + 1
				}
			}
			if depth == 0 {
				break
			}
			i++
		}
		if depth != 0 {
			return "", "", 0, errors.New("unterminated directive body")
		}
	}

	total := len(s) - len(rest) + bodyLen
	return name, strings.TrimSpace(body), total, nil
}
