// Package template expands parameterized formula expressions. Templates are
// opaque text with {{ name }} placeholders; expansion substitutes each
// placeholder from a parameter map and performs no validation of the
// resulting formula language. Expansion happens once, before an expression
// is attached to a measure or calculated column.
package template

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	exprStart = "{{"
	exprEnd   = "}}"
)

// Expand replaces every {{ name }} placeholder in src with params[name].
// A template without placeholders expands to itself unchanged. Expansion
// fails with *MissingParameterError when a placeholder names a parameter
// absent from the map, and with *SyntaxError for malformed placeholders.
func Expand(src string, params map[string]string) (string, error) {
	if !strings.Contains(src, exprStart) {
		return src, nil
	}

	var out strings.Builder
	out.Grow(len(src))

	pos := Position{Line: 1, Column: 1}
	rest := src
	for {
		start := strings.Index(rest, exprStart)
		if start < 0 {
			out.WriteString(rest)
			return out.String(), nil
		}

		out.WriteString(rest[:start])
		pos = pos.advance(rest[:start])

		end := strings.Index(rest[start+len(exprStart):], exprEnd)
		if end < 0 {
			return "", &SyntaxError{pos: pos, msg: "unclosed placeholder (missing '}}')"}
		}

		name := strings.TrimSpace(rest[start+len(exprStart) : start+len(exprStart)+end])
		if name == "" {
			return "", &SyntaxError{pos: pos, msg: "empty placeholder"}
		}
		if !isIdentifier(name) {
			return "", &SyntaxError{pos: pos, msg: "invalid placeholder name " + strconv.Quote(name)}
		}

		value, ok := params[name]
		if !ok {
			return "", &MissingParameterError{Name: name, pos: pos}
		}
		out.WriteString(value)

		consumed := rest[start : start+len(exprStart)+end+len(exprEnd)]
		pos = pos.advance(consumed)
		rest = rest[start+len(consumed):]
	}
}

// Names returns the distinct placeholder names referenced by src, in order
// of first appearance. Malformed placeholders are ignored; Expand reports
// them.
func Names(src string) []string {
	var names []string
	seen := make(map[string]bool)

	rest := src
	for {
		start := strings.Index(rest, exprStart)
		if start < 0 {
			return names
		}
		end := strings.Index(rest[start+len(exprStart):], exprEnd)
		if end < 0 {
			return names
		}
		name := strings.TrimSpace(rest[start+len(exprStart) : start+len(exprStart)+end])
		if isIdentifier(name) && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		rest = rest[start+len(exprStart)+end+len(exprEnd):]
	}
}

// isIdentifier reports whether name is a plain placeholder identifier:
// letters, digits, and underscores, not starting with a digit.
func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}
