package lexer

import (
	"strings"

	terrors "github.com/docufab/docufab/pkg/engine/errors"
)

// Scanner splits raw template text into literal runs and directive
// markers. It is single-pass and restartable: create a new Scanner to
// rescan the same input.
type Scanner struct {
	input  string
	pos    int
	line   int
	column int
	done   bool
}

// NewScanner creates a scanner over raw template text.
func NewScanner(input string) *Scanner {
	return &Scanner{input: input, line: 1, column: 1}
}

// Scan tokenizes the whole input, returning the token stream without
// the trailing EOF marker.
func Scan(input string) ([]Token, error) {
	s := NewScanner(input)
	var tokens []Token
	for {
		tok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// Next returns the next template-level token. An unterminated "{{"
// fails with a syntax error reporting its byte offset.
func (s *Scanner) Next() (Token, error) {
	if s.done || s.pos >= len(s.input) {
		s.done = true
		return Token{Type: EOF, Line: s.line, Column: s.column, Offset: s.pos}, nil
	}

	rest := s.input[s.pos:]
	open := strings.Index(rest, "{{")

	// Literal text before the next marker (or to end of input).
	if open != 0 {
		end := len(rest)
		if open > 0 {
			end = open
		}
		tok := Token{
			Type:    TEXT,
			Literal: rest[:end],
			Line:    s.line,
			Column:  s.column,
			Offset:  s.pos,
		}
		s.advance(rest[:end])
		return tok, nil
	}

	// A directive marker starts here.
	markerLine, markerColumn, markerOffset := s.line, s.column, s.pos
	closing := strings.Index(rest, "}}")
	if closing < 0 {
		return Token{}, terrors.NewSyntax(markerLine, markerColumn, markerOffset,
			"unterminated directive: missing closing %q", "}}")
	}

	interior := rest[2:closing]
	s.advance(rest[:closing+2])

	tok := Token{Line: markerLine, Column: markerColumn, Offset: markerOffset}
	var err *terrors.Error
	tok.Type, tok.Literal, err = classifyDirective(interior, tok)
	if err != nil {
		return Token{}, err
	}
	return tok, nil
}

// classifyDirective determines the token type of a directive from its
// leading sigil and returns the remaining content.
func classifyDirective(interior string, at Token) (TokenType, string, *terrors.Error) {
	content := strings.TrimSpace(interior)

	if content == "" {
		return ILLEGAL, "", terrors.NewSyntax(at.Line, at.Column, at.Offset, "empty directive")
	}

	if strings.HasPrefix(content, "/") {
		switch content {
		case "/if":
			return ENDIF, "", nil
		case "/for":
			return ENDFOR, "", nil
		case "/switch":
			return ENDSWITCH, "", nil
		case "/case":
			return ENDCASE, "", nil
		case "/default":
			return ENDDEFAULT, "", nil
		}
		return ILLEGAL, "", terrors.NewSyntax(at.Line, at.Column, at.Offset,
			"unknown closing directive {{%s}}", content)
	}

	if strings.HasPrefix(content, "#") {
		keyword, rest := splitDirective(content)
		switch keyword {
		case "#if":
			return requireContent(IF, keyword, rest, at)
		case "#elif":
			return requireContent(ELIF, keyword, rest, at)
		case "#for":
			return requireContent(FOR, keyword, rest, at)
		case "#switch":
			return requireContent(SWITCH, keyword, rest, at)
		case "#case":
			return requireContent(CASE, keyword, rest, at)
		case "#else":
			return ELSE, "", nil
		case "#default":
			return DEFAULT, "", nil
		}
		return ILLEGAL, "", terrors.NewSyntax(at.Line, at.Column, at.Offset,
			"unknown directive {{%s}}", keyword)
	}

	if content == "else" {
		return ELSE, "", nil
	}
	if keyword, rest := splitDirective(content); keyword == "elif" {
		return requireContent(ELIF, keyword, rest, at)
	}

	return EXPR, content, nil
}

// splitDirective separates the directive keyword from its argument.
func splitDirective(content string) (keyword, rest string) {
	if i := strings.IndexAny(content, " \t\n"); i >= 0 {
		return content[:i], strings.TrimSpace(content[i:])
	}
	return content, ""
}

func requireContent(tt TokenType, keyword, rest string, at Token) (TokenType, string, *terrors.Error) {
	if rest == "" {
		return ILLEGAL, "", terrors.NewSyntax(at.Line, at.Column, at.Offset,
			"directive {{%s}} requires an argument", keyword)
	}
	return tt, rest, nil
}

// advance moves the scanner past consumed text, tracking line breaks.
func (s *Scanner) advance(consumed string) {
	s.pos += len(consumed)
	if n := strings.Count(consumed, "\n"); n > 0 {
		s.line += n
		s.column = len(consumed) - strings.LastIndexByte(consumed, '\n')
	} else {
		s.column += len(consumed)
	}
}
