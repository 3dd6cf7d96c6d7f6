package errors

import (
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			"syntax with position",
			NewSyntax(3, 7, 42, "unexpected %q", "}"),
			`template syntax error at line 3, column 7: unexpected "}"`,
		},
		{
			"render with position",
			NewRender(1, 5, "undefined variable %q", "x"),
			`template render error at line 1, column 5: undefined variable "x"`,
		},
		{
			"render without position",
			NewRender(0, 0, "division by zero"),
			"template render error: division by zero",
		},
		{
			"inheritance",
			NewInheritance("template %d appears twice", 4),
			"template inheritance error: template 4 appears twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestErrorHints(t *testing.T) {
	err := NewSyntax(1, 1, 0, "unknown directive %q", "#unless").
		WithHint("did you mean {{#if}} with a negated condition?")

	got := err.Error()
	if !strings.Contains(got, "\n  did you mean") {
		t.Errorf("hint missing from %q", got)
	}
}

func TestClassPredicates(t *testing.T) {
	if !IsSyntax(NewSyntax(1, 1, 0, "x")) {
		t.Error("expected a syntax error")
	}
	if !IsRender(NewRender(0, 0, "x")) {
		t.Error("expected a render error")
	}
	if !IsInheritance(NewInheritance("x")) {
		t.Error("expected an inheritance error")
	}
	if IsSyntax(NewRender(0, 0, "x")) {
		t.Error("class predicates must not cross")
	}
}
