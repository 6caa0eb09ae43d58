package template

import (
	"fmt"
	"strings"
)

// Position tracks the location of a placeholder within a template for error
// reporting. Line and Column are 1-based.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// advance returns the position after consuming s.
func (p Position) advance(s string) Position {
	if n := strings.Count(s, "\n"); n > 0 {
		p.Line += n
		p.Column = len(s) - strings.LastIndex(s, "\n")
	} else {
		p.Column += len(s)
	}
	return p
}

// SyntaxError reports a malformed placeholder: unclosed delimiters, an empty
// placeholder, or a name that is not a plain identifier.
type SyntaxError struct {
	pos Position
	msg string
}

// Position returns the location of the malformed placeholder.
func (e *SyntaxError) Position() Position { return e.pos }

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.pos, e.msg)
}

// MissingParameterError reports a placeholder whose name is absent from the
// supplied parameter map.
type MissingParameterError struct {
	Name string
	pos  Position
}

// Position returns the location of the unresolved placeholder.
func (e *MissingParameterError) Position() Position { return e.pos }

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s: missing template parameter %q", e.pos, e.Name)
}
