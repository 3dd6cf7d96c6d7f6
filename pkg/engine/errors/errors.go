// Package errors provides the structured error type shared by the
// template engine's lexer, parser, evaluator and inheritance resolver.
//
// Every engine failure is a single *Error carrying a class (syntax,
// render or inheritance), a human-readable message and, where known,
// the position in the template source that produced it. The engine
// never logs or retries; errors propagate unchanged to the caller.
package errors

import (
	"fmt"
	"strings"
)

// Class categorizes engine errors.
type Class string

const (
	ClassSyntax      Class = "syntax"      // malformed directives or expression grammar
	ClassRender      Class = "render"      // evaluation failures (undefined name, arity, types)
	ClassInheritance Class = "inheritance" // cycle or missing parent during resolution
)

// Error is the engine's error type.
type Error struct {
	Class   Class
	Message string
	Line    int    // 1-based line (0 if unknown)
	Column  int    // 1-based column (0 if unknown)
	Offset  int    // byte offset into the template source (-1 if unknown)
	File    string // source name, if the caller supplied one
	Hints   []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	switch e.Class {
	case ClassSyntax:
		sb.WriteString("template syntax error")
	case ClassRender:
		sb.WriteString("template render error")
	case ClassInheritance:
		sb.WriteString("template inheritance error")
	default:
		sb.WriteString("template error")
	}

	if e.File != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.File)
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, " at line %d, column %d", e.Line, e.Column)
	}
	if e.Offset >= 0 && e.Line == 0 {
		fmt.Fprintf(&sb, " at offset %d", e.Offset)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}
	return sb.String()
}

// WithHint appends a suggestion line to the error and returns it.
func (e *Error) WithHint(hint string) *Error {
	e.Hints = append(e.Hints, hint)
	return e
}

// NewSyntax creates a syntax error at the given position.
func NewSyntax(line, column, offset int, format string, args ...any) *Error {
	return &Error{
		Class:   ClassSyntax,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
		Offset:  offset,
	}
}

// NewRender creates a render (evaluation) error at the given position.
func NewRender(line, column int, format string, args ...any) *Error {
	return &Error{
		Class:   ClassRender,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
		Offset:  -1,
	}
}

// NewInheritance creates an inheritance resolution error. Resolution
// happens before any lexing, so there is no source position.
func NewInheritance(format string, args ...any) *Error {
	return &Error{
		Class:   ClassInheritance,
		Message: fmt.Sprintf(format, args...),
		Offset:  -1,
	}
}

// IsSyntax reports whether err is an engine syntax error.
func IsSyntax(err error) bool { return hasClass(err, ClassSyntax) }

// IsRender reports whether err is an engine render error.
func IsRender(err error) bool { return hasClass(err, ClassRender) }

// IsInheritance reports whether err is an engine inheritance error.
func IsInheritance(err error) bool { return hasClass(err, ClassInheritance) }

func hasClass(err error, class Class) bool {
	e, ok := err.(*Error)
	return ok && e.Class == class
}
