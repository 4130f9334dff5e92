// Package config reads a project's cahirc.toml (spec.md §6/SPEC_FULL.md
// §4.11): a `[package]` table naming the source/output directories, plus a
// `[dependencies]` table mapping a local name to a path.
//
// No TOML library appears in any retrieved example repo's go.mod, so this
// reader is hand-written against the narrow subset cahirc.toml actually
// uses (two tables, string/bool scalars, no arrays or nesting) — see
// DESIGN.md's justification for the one stdlib-only corner of this module.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Project is the parsed, path-resolved contents of a cahirc.toml.
type Project struct {
	Name           string
	Src            string // absolute, resolved against the config's directory
	Dist           string
	StaticAnalysis bool
	Dependencies   map[string]string // name -> absolute path
}

// Load reads and parses <dir>/cahirc.toml, resolving src/dist and every
// dependency path relative to dir (spec.md §6).
func Load(dir string) (*Project, error) {
	path := filepath.Join(dir, "cahirc.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return parse(dir, string(data))
}

func parse(dir, text string) (*Project, error) {
	p := &Project{Dependencies: make(map[string]string)}
	section := ""

	for lineNum, raw := range strings.Split(text, "\n") {
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("config: line %d: malformed table header %q", lineNum+1, raw)
			}
			section = strings.TrimSpace(line[1 : len(line)-1])
			if section != "package" && section != "dependencies" {
				return nil, fmt.Errorf("config: line %d: unknown table [%s]", lineNum+1, section)
			}
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("config: line %d: expected key = value, got %q", lineNum+1, raw)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch section {
		case "package":
			if err := p.setPackageField(key, value, lineNum+1); err != nil {
				return nil, err
			}
		case "dependencies":
			path, err := unquote(value)
			if err != nil {
				return nil, fmt.Errorf("config: line %d: %w", lineNum+1, err)
			}
			if isURL(path) {
				return nil, fmt.Errorf("config: line %d: dependency %q is a URL; remote dependencies are not supported, use a local path", lineNum+1, key)
			}
			p.Dependencies[key] = filepath.Join(dir, path)
		default:
			return nil, fmt.Errorf("config: line %d: key %q outside of any table", lineNum+1, key)
		}
	}

	if p.Name == "" {
		return nil, fmt.Errorf("config: missing required [package] name")
	}
	if p.Src == "" {
		return nil, fmt.Errorf("config: missing required [package] src")
	}
	if p.Dist == "" {
		return nil, fmt.Errorf("config: missing required [package] dist")
	}
	p.Src = filepath.Join(dir, p.Src)
	p.Dist = filepath.Join(dir, p.Dist)
	return p, nil
}

func (p *Project) setPackageField(key, value string, lineNum int) error {
	switch key {
	case "name":
		s, err := unquote(value)
		if err != nil {
			return fmt.Errorf("config: line %d: %w", lineNum, err)
		}
		p.Name = s
	case "src":
		s, err := unquote(value)
		if err != nil {
			return fmt.Errorf("config: line %d: %w", lineNum, err)
		}
		p.Src = s
	case "dist":
		s, err := unquote(value)
		if err != nil {
			return fmt.Errorf("config: line %d: %w", lineNum, err)
		}
		p.Dist = s
	case "static_analysis":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: line %d: static_analysis must be true or false, got %q", lineNum, value)
		}
		p.StaticAnalysis = b
	default:
		return fmt.Errorf("config: line %d: unknown [package] key %q", lineNum, key)
	}
	return nil
}

func stripComment(line string) string {
	inQuotes := false
	for i, r := range line {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case '#':
			if !inQuotes {
				return line[:i]
			}
		}
	}
	return line
}

func unquote(value string) (string, error) {
	if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
		return "", fmt.Errorf("expected a quoted string, got %q", value)
	}
	return value[1 : len(value)-1], nil
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://")
}
