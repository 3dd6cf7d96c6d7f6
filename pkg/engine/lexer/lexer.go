// Package lexer turns template source into tokens.
//
// Lexing happens in two layers. The Scanner splits raw template text
// into literal runs and {{...}} directive markers, classifying each
// directive by its sigil (#if, #for, /switch, bare expression, ...).
// The Lexer tokenizes the interior of a single directive for the
// expression parser: identifiers, literals, operators and delimiters.
package lexer

import (
	"fmt"
	"strings"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Template-level tokens (produced by the Scanner)
	TEXT       // literal text run
	EXPR       // {{ expression }}
	IF         // {{#if condition}}
	ELIF       // {{elif condition}}
	ELSE       // {{else}}
	ENDIF      // {{/if}}
	FOR        // {{#for binding in source}}
	ENDFOR     // {{/for}}
	SWITCH     // {{#switch subject}}
	CASE       // {{#case literal}}
	ENDCASE    // {{/case}}
	DEFAULT    // {{#default}}
	ENDDEFAULT // {{/default}}
	ENDSWITCH  // {{/switch}}

	// Identifiers and literals (produced by the Lexer)
	IDENT  // total, USER, items
	INT    // 42
	FLOAT  // 3.14
	STRING // "quoted"

	// Operators
	PLUS     // +
	MINUS    // -
	BANG     // !
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	LT       // <
	GT       // >
	LTE      // <=
	GTE      // >=
	EQ       // ==
	NOT_EQ   // !=
	AND      // &&
	OR       // ||

	// Delimiters
	COMMA  // ,
	DOT    // .
	RANGE  // ..
	LPAREN // (
	RPAREN // )

	// Keywords
	TRUE  // "true"
	FALSE // "false"
	IN    // "in" (for loop bindings)
)

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string // token text; for directive tokens, the trimmed interior
	Line    int    // 1-based
	Column  int    // 1-based
	Offset  int    // byte offset of the token start in the original source
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %q, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case TEXT:
		return "TEXT"
	case EXPR:
		return "EXPR"
	case IF:
		return "IF"
	case ELIF:
		return "ELIF"
	case ELSE:
		return "ELSE"
	case ENDIF:
		return "ENDIF"
	case FOR:
		return "FOR"
	case ENDFOR:
		return "ENDFOR"
	case SWITCH:
		return "SWITCH"
	case CASE:
		return "CASE"
	case ENDCASE:
		return "ENDCASE"
	case DEFAULT:
		return "DEFAULT"
	case ENDDEFAULT:
		return "ENDDEFAULT"
	case ENDSWITCH:
		return "ENDSWITCH"
	case IDENT:
		return "IDENT"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case STRING:
		return "STRING"
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case BANG:
		return "!"
	case ASTERISK:
		return "*"
	case SLASH:
		return "/"
	case PERCENT:
		return "%"
	case LT:
		return "<"
	case GT:
		return ">"
	case LTE:
		return "<="
	case GTE:
		return ">="
	case EQ:
		return "=="
	case NOT_EQ:
		return "!="
	case AND:
		return "&&"
	case OR:
		return "||"
	case COMMA:
		return ","
	case DOT:
		return "."
	case RANGE:
		return ".."
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case TRUE:
		return "TRUE"
	case FALSE:
		return "FALSE"
	case IN:
		return "IN"
	default:
		return "UNKNOWN"
	}
}

// keywords maps identifier text to keyword token types
var keywords = map[string]TokenType{
	"true":  TRUE,
	"false": FALSE,
	"in":    IN,
}

// LookupIdent returns the keyword type for an identifier, or IDENT
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Lexer tokenizes the interior of a single {{...}} directive.
type Lexer struct {
	input        string
	position     int  // current position (points to ch)
	readPosition int  // next reading position (after ch)
	ch           byte // current char under examination
	line         int
	column       int
}

// New creates a lexer for an expression string.
func New(input string) *Lexer {
	return NewAt(input, 1, 1)
}

// NewAt creates a lexer whose position reporting starts at the given
// line and column. The parser uses this so expression tokens carry
// positions relative to the whole template, not the directive.
func NewAt(input string, line, column int) *Lexer {
	l := &Lexer{input: input, line: line, column: column - 1}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken returns the next token in the expression.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Line: l.line, Column: l.column, Offset: l.position}

	switch l.ch {
	case 0:
		tok.Type = EOF
		tok.Literal = ""
		return tok
	case '+':
		tok.Type, tok.Literal = PLUS, "+"
	case '-':
		tok.Type, tok.Literal = MINUS, "-"
	case '*':
		tok.Type, tok.Literal = ASTERISK, "*"
	case '/':
		tok.Type, tok.Literal = SLASH, "/"
	case '%':
		tok.Type, tok.Literal = PERCENT, "%"
	case ',':
		tok.Type, tok.Literal = COMMA, ","
	case '(':
		tok.Type, tok.Literal = LPAREN, "("
	case ')':
		tok.Type, tok.Literal = RPAREN, ")"
	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			tok.Type, tok.Literal = RANGE, ".."
		} else {
			tok.Type, tok.Literal = DOT, "."
		}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = EQ, "=="
		} else {
			tok.Type, tok.Literal = ILLEGAL, "="
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = NOT_EQ, "!="
		} else {
			tok.Type, tok.Literal = BANG, "!"
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = LTE, "<="
		} else {
			tok.Type, tok.Literal = LT, "<"
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = GTE, ">="
		} else {
			tok.Type, tok.Literal = GT, ">"
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok.Type, tok.Literal = AND, "&&"
		} else {
			tok.Type, tok.Literal = ILLEGAL, "&"
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok.Type, tok.Literal = OR, "||"
		} else {
			tok.Type, tok.Literal = ILLEGAL, "|"
		}
	case '"', '\'':
		quote := l.ch
		lit, terminated := l.readString(quote)
		if !terminated {
			tok.Type = ILLEGAL
			tok.Literal = string(quote) + lit
			return tok
		}
		tok.Type = STRING
		tok.Literal = lit
		return tok
	default:
		if isIdentStart(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		}
		if isDigit(l.ch) {
			tok.Type, tok.Literal = l.readNumber()
			return tok
		}
		tok.Type = ILLEGAL
		tok.Literal = string(l.ch)
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads an integer or float literal. A '.' followed by a
// second '.' belongs to a range operator, not the number.
func (l *Lexer) readNumber() (TokenType, string) {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
		return FLOAT, l.input[start:l.position]
	}
	return INT, l.input[start:l.position]
}

// readString reads a quoted string literal, handling escapes. The
// closing quote is consumed; the returned literal excludes quotes.
// Reaching end of input before the closing quote reports terminated
// as false.
func (l *Lexer) readString(quote byte) (string, bool) {
	var sb strings.Builder
	l.readChar() // past opening quote
	for l.ch != quote {
		if l.ch == 0 {
			return sb.String(), false
		}
		if l.ch == '\\' {
			switch l.peekChar() {
			case 'n':
				sb.WriteByte('\n')
				l.readChar()
			case 't':
				sb.WriteByte('\t')
				l.readChar()
			case '\\', '"', '\'':
				sb.WriteByte(l.peekChar())
				l.readChar()
			default:
				sb.WriteByte(l.ch)
			}
		} else {
			sb.WriteByte(l.ch)
		}
		l.readChar()
	}
	l.readChar() // past closing quote
	return sb.String(), true
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
