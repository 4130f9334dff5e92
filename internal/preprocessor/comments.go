package preprocessor

import (
	"errors"
	"strings"
)

// stripComments removes // line comments and /* */ block comments before
// any macro work begins, matching the original preprocessor's
// utils::strip_comments pass. An unterminated block comment is a fatal
// preprocessor error per spec.md §4.2/§7.
func stripComments(content string) (string, error) {
	var sb strings.Builder
	i := 0
	n := len(content)
	for i < n {
		switch {
		case content[i] == '/' && i+1 < n && content[i+1] == '/':
			for i < n && content[i] != '\n' {
				i++
			}
		case content[i] == '/' && i+1 < n && content[i+1] == '*':
			end := strings.Index(content[i+2:], "*/")
			if end == -1 {
				return "", errors.New("unterminated block comment")
			}
			// Preserve newlines inside the removed comment so later line
			// numbers in reported spans stay meaningful.
			sb.WriteString(strings.Repeat("\n", strings.Count(content[i:i+2+end], "\n")))
			i = i + 2 + end + 2
		default:
			sb.WriteByte(content[i])
			i++
		}
	}
	return sb.String(), nil
}
