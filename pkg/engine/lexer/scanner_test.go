package lexer

import (
	"strings"
	"testing"
)

func TestScanTextAndDirectives(t *testing.T) {
	input := `Hello {{name}}!
{{#if premium}}Welcome back.{{else}}Hello.{{/if}}
{{#for item in items}}- {{item}}
{{/for}}`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TEXT, "Hello "},
		{EXPR, "name"},
		{TEXT, "!\n"},
		{IF, "premium"},
		{TEXT, "Welcome back."},
		{ELSE, ""},
		{TEXT, "Hello."},
		{ENDIF, ""},
		{TEXT, "\n"},
		{FOR, "item in items"},
		{TEXT, "- "},
		{EXPR, "item"},
		{TEXT, "\n"},
		{ENDFOR, ""},
	}

	tokens, err := Scan(input)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(tokens) != len(tests) {
		t.Fatalf("expected %d tokens, got %d: %v", len(tests), len(tokens), tokens)
	}
	for i, tt := range tests {
		if tokens[i].Type != tt.expectedType {
			t.Errorf("token %d: expected type %v, got %v", i, tt.expectedType, tokens[i].Type)
		}
		if tokens[i].Literal != tt.expectedLiteral {
			t.Errorf("token %d: expected literal %q, got %q", i, tt.expectedLiteral, tokens[i].Literal)
		}
	}
}

func TestScanSwitchDirectives(t *testing.T) {
	input := `{{#switch tier}}{{#case "gold"}}G{{/case}}{{#default}}D{{/default}}{{/switch}}`

	tokens, err := Scan(input)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	want := []TokenType{SWITCH, CASE, TEXT, ENDCASE, DEFAULT, TEXT, ENDDEFAULT, ENDSWITCH}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, tt := range want {
		if tokens[i].Type != tt {
			t.Errorf("token %d: expected %v, got %v", i, tt, tokens[i].Type)
		}
	}
	if tokens[1].Literal != `"gold"` {
		t.Errorf("case literal: expected %q, got %q", `"gold"`, tokens[1].Literal)
	}
}

func TestScanTracksPositions(t *testing.T) {
	input := "line one\nline {{two}}"

	tokens, err := Scan(input)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	expr := tokens[1]
	if expr.Type != EXPR {
		t.Fatalf("expected EXPR, got %v", expr.Type)
	}
	if expr.Line != 2 || expr.Column != 6 {
		t.Errorf("expected position 2:6, got %d:%d", expr.Line, expr.Column)
	}
	if expr.Offset != strings.Index(input, "{{") {
		t.Errorf("expected offset %d, got %d", strings.Index(input, "{{"), expr.Offset)
	}
}

func TestScanUnterminatedDirective(t *testing.T) {
	input := "before {{name"

	_, err := Scan(input)
	if err == nil {
		t.Fatal("expected an error for an unterminated directive")
	}
	if !strings.Contains(err.Error(), "unterminated directive") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestScanDirectiveErrors(t *testing.T) {
	tests := []struct {
		input   string
		wantErr string
	}{
		{"{{}}", "empty directive"},
		{"{{#if}}", "requires an argument"},
		{"{{#for}}", "requires an argument"},
		{"{{#case}}", "requires an argument"},
		{"{{#unknown thing}}", "unknown directive"},
		{"{{/while}}", "unknown closing directive"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Scan(tt.input)
			if err == nil {
				t.Fatalf("expected an error for %q", tt.input)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestScanBareElifAndElse(t *testing.T) {
	tokens, err := Scan(`{{#if a}}1{{elif b}}2{{else}}3{{/if}}`)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	want := []TokenType{IF, TEXT, ELIF, TEXT, ELSE, TEXT, ENDIF}
	for i, tt := range want {
		if tokens[i].Type != tt {
			t.Errorf("token %d: expected %v, got %v", i, tt, tokens[i].Type)
		}
	}
	if tokens[2].Literal != "b" {
		t.Errorf("elif condition: expected %q, got %q", "b", tokens[2].Literal)
	}
}
