// Package parser builds the node tree for a template.
//
// Parsing is two recursive-descent passes sharing one token space: the
// directive parser consumes the Scanner's token stream and enforces
// block nesting with an explicit frame per open directive, and a Pratt
// expression parser handles the interior of each {{...}} span. The
// parser only builds structure; it never evaluates anything.
package parser

import (
	"strconv"

	"github.com/docufab/docufab/pkg/engine/ast"
	terrors "github.com/docufab/docufab/pkg/engine/errors"
	"github.com/docufab/docufab/pkg/engine/lexer"
)

// Parse parses raw template text into a node tree.
func Parse(input string) (*ast.Template, error) {
	tokens, err := lexer.Scan(input)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	nodes, perr := p.parseNodes(nil)
	if perr != nil {
		return nil, perr
	}
	// parseNodes with a nil stop set consumes everything up to EOF.
	return &ast.Template{Nodes: nodes}, nil
}

// ParseExpression parses a standalone expression string, as used by
// the REPL. Positions are reported relative to the string itself.
func ParseExpression(input string) (ast.Expression, error) {
	start := lexer.Token{Line: 1, Column: 1}
	expr, err := parseExpressionString(input, start)
	if err != nil {
		return nil, err
	}
	return expr, nil
}

// Parser consumes the template-level token stream.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) next() lexer.Token {
	tok := p.cur()
	p.pos++
	return tok
}

// parseNodes parses template nodes until it reaches EOF or a directive
// in the stop set, which it leaves unconsumed for the caller. A block
// directive outside its frame is a syntax error.
func (p *Parser) parseNodes(stop map[lexer.TokenType]bool) ([]ast.TemplateNode, *terrors.Error) {
	nodes := []ast.TemplateNode{}
	for {
		tok := p.cur()
		switch tok.Type {
		case lexer.EOF:
			return nodes, nil
		case lexer.TEXT:
			p.next()
			nodes = append(nodes, &ast.Text{Token: tok, Value: tok.Literal})
		case lexer.EXPR:
			p.next()
			expr, err := parseExpressionString(tok.Literal, tok)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &ast.Interpolation{Token: tok, Expr: expr})
		case lexer.IF:
			node, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		case lexer.FOR:
			node, err := p.parseFor()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		case lexer.SWITCH:
			node, err := p.parseSwitch()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		default:
			if stop != nil && stop[tok.Type] {
				return nodes, nil
			}
			return nil, terrors.NewSyntax(tok.Line, tok.Column, tok.Offset,
				"unexpected directive {{%s}}", directiveName(tok))
		}
	}
}

var ifStops = map[lexer.TokenType]bool{
	lexer.ELIF:  true,
	lexer.ELSE:  true,
	lexer.ENDIF: true,
}

func (p *Parser) parseIf() (*ast.If, *terrors.Error) {
	open := p.next()
	cond, err := parseExpressionString(open.Literal, open)
	if err != nil {
		return nil, err
	}

	node := &ast.If{Token: open}
	body, err := p.parseNodes(ifStops)
	if err != nil {
		return nil, err
	}
	node.Branches = append(node.Branches, ast.IfBranch{Condition: cond, Body: body})

	for {
		switch tok := p.cur(); tok.Type {
		case lexer.ELIF:
			if node.HasElse {
				return nil, terrors.NewSyntax(tok.Line, tok.Column, tok.Offset,
					"{{elif}} is not allowed after {{else}}")
			}
			p.next()
			cond, err := parseExpressionString(tok.Literal, tok)
			if err != nil {
				return nil, err
			}
			body, err := p.parseNodes(ifStops)
			if err != nil {
				return nil, err
			}
			node.Branches = append(node.Branches, ast.IfBranch{Condition: cond, Body: body})
		case lexer.ELSE:
			if node.HasElse {
				return nil, terrors.NewSyntax(tok.Line, tok.Column, tok.Offset,
					"duplicate {{else}} in {{#if}} block")
			}
			p.next()
			body, err := p.parseNodes(ifStops)
			if err != nil {
				return nil, err
			}
			node.HasElse = true
			node.Else = body
		case lexer.ENDIF:
			p.next()
			return node, nil
		default:
			return nil, terrors.NewSyntax(open.Line, open.Column, open.Offset,
				"unclosed {{#if}} block: missing {{/if}}")
		}
	}
}

func (p *Parser) parseFor() (*ast.For, *terrors.Error) {
	open := p.next()
	names, source, err := parseForHeader(open.Literal, open)
	if err != nil {
		return nil, err
	}

	body, err := p.parseNodes(map[lexer.TokenType]bool{lexer.ENDFOR: true})
	if err != nil {
		return nil, err
	}
	if p.cur().Type != lexer.ENDFOR {
		return nil, terrors.NewSyntax(open.Line, open.Column, open.Offset,
			"unclosed {{#for}} block: missing {{/for}}")
	}
	p.next()

	return &ast.For{Token: open, Names: names, Source: source, Body: body}, nil
}

var caseStops = map[lexer.TokenType]bool{
	lexer.CASE:       true,
	lexer.DEFAULT:    true,
	lexer.ENDCASE:    true,
	lexer.ENDDEFAULT: true,
	lexer.ENDSWITCH:  true,
}

func (p *Parser) parseSwitch() (*ast.Switch, *terrors.Error) {
	open := p.next()
	subject, err := parseExpressionString(open.Literal, open)
	if err != nil {
		return nil, err
	}

	node := &ast.Switch{Token: open, Subject: subject}
	p.skipBlankText()

	for {
		switch tok := p.cur(); tok.Type {
		case lexer.CASE:
			if node.HasDefault {
				return nil, terrors.NewSyntax(tok.Line, tok.Column, tok.Offset,
					"{{#case}} is not allowed after {{#default}}")
			}
			p.next()
			value, err := parseCaseLiteral(tok)
			if err != nil {
				return nil, err
			}
			body, err := p.parseCaseBody()
			if err != nil {
				return nil, err
			}
			node.Cases = append(node.Cases, ast.SwitchCase{Token: tok, Value: value, Body: body})
		case lexer.DEFAULT:
			if node.HasDefault {
				return nil, terrors.NewSyntax(tok.Line, tok.Column, tok.Offset,
					"duplicate {{#default}} in {{#switch}} block")
			}
			p.next()
			body, err := p.parseCaseBody()
			if err != nil {
				return nil, err
			}
			node.HasDefault = true
			node.Default = body
		case lexer.ENDSWITCH:
			p.next()
			return node, nil
		case lexer.EOF:
			return nil, terrors.NewSyntax(open.Line, open.Column, open.Offset,
				"unclosed {{#switch}} block: missing {{/switch}}")
		default:
			return nil, terrors.NewSyntax(tok.Line, tok.Column, tok.Offset,
				"expected {{#case}} or {{#default}} inside {{#switch}} block")
		}
	}
}

// parseCaseBody parses one case arm, tolerating an optional {{/case}}
// or {{/default}} closer between arms.
func (p *Parser) parseCaseBody() ([]ast.TemplateNode, *terrors.Error) {
	body, err := p.parseNodes(caseStops)
	if err != nil {
		return nil, err
	}
	if p.cur().Type == lexer.ENDCASE || p.cur().Type == lexer.ENDDEFAULT {
		p.next()
		p.skipBlankText()
	}
	return body, nil
}

// skipBlankText discards whitespace-only literal runs, which are legal
// between a switch header and its cases.
func (p *Parser) skipBlankText() {
	for p.cur().Type == lexer.TEXT && isBlank(p.cur().Literal) {
		p.next()
	}
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}

// parseCaseLiteral parses a case value, which must be a literal
// (optionally negated).
func parseCaseLiteral(tok lexer.Token) (ast.Expression, *terrors.Error) {
	value, err := parseExpressionString(tok.Literal, tok)
	if err != nil {
		return nil, err
	}
	if !isLiteralExpr(value) {
		return nil, terrors.NewSyntax(tok.Line, tok.Column, tok.Offset,
			"{{#case}} value must be a literal, got %s", value.String())
	}
	return value, nil
}

func isLiteralExpr(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.IntegerLiteral, *ast.FloatLiteral, *ast.StringLiteral, *ast.BooleanLiteral:
		return true
	case *ast.PrefixExpression:
		if v.Operator != "-" {
			return false
		}
		switch v.Right.(type) {
		case *ast.IntegerLiteral, *ast.FloatLiteral:
			return true
		}
	}
	return false
}

// parseForHeader parses "name in source" or "key, value in source".
func parseForHeader(content string, at lexer.Token) ([]string, ast.Expression, *terrors.Error) {
	ep := newExprParser(lexer.NewAt(content, at.Line, at.Column))

	var names []string
	if ep.curToken.Type != lexer.IDENT {
		return nil, nil, terrors.NewSyntax(at.Line, at.Column, at.Offset,
			"{{#for}} requires a loop variable, got %q", ep.curToken.Literal)
	}
	names = append(names, ep.curToken.Literal)
	ep.nextToken()

	if ep.curToken.Type == lexer.COMMA {
		ep.nextToken()
		if ep.curToken.Type != lexer.IDENT {
			return nil, nil, terrors.NewSyntax(at.Line, at.Column, at.Offset,
				"{{#for}} requires an identifier after the comma, got %q", ep.curToken.Literal)
		}
		names = append(names, ep.curToken.Literal)
		ep.nextToken()
	}

	if ep.curToken.Type != lexer.IN {
		return nil, nil, terrors.NewSyntax(at.Line, at.Column, at.Offset,
			"{{#for}} requires %q between the loop variable and its source", "in")
	}
	ep.nextToken()

	source := ep.parseExpression(LOWEST)
	if err := ep.finish(); err != nil {
		return nil, nil, err
	}
	return names, source, nil
}

func directiveName(tok lexer.Token) string {
	switch tok.Type {
	case lexer.ELIF:
		return "elif"
	case lexer.ELSE:
		return "else"
	case lexer.ENDIF:
		return "/if"
	case lexer.ENDFOR:
		return "/for"
	case lexer.CASE:
		return "#case"
	case lexer.ENDCASE:
		return "/case"
	case lexer.DEFAULT:
		return "#default"
	case lexer.ENDDEFAULT:
		return "/default"
	case lexer.ENDSWITCH:
		return "/switch"
	default:
		return tok.Type.String()
	}
}

// =====================================================================
// Expression parsing (Pratt)
// =====================================================================

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	RANGE_PREC  // ..
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -x !x
	CALL        // NS.fn(x)
)

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.OR:       LOGIC_OR,
	lexer.AND:      LOGIC_AND,
	lexer.EQ:       EQUALS,
	lexer.NOT_EQ:   EQUALS,
	lexer.LT:       LESSGREATER,
	lexer.GT:       LESSGREATER,
	lexer.LTE:      LESSGREATER,
	lexer.GTE:      LESSGREATER,
	lexer.RANGE:    RANGE_PREC,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.ASTERISK: PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.PERCENT:  PRODUCT,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type exprParser struct {
	l *lexer.Lexer

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn

	errs []*terrors.Error
}

func newExprParser(l *lexer.Lexer) *exprParser {
	p := &exprParser{l: l}

	p.prefixParseFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:  p.parseIdentifier,
		lexer.INT:    p.parseIntegerLiteral,
		lexer.FLOAT:  p.parseFloatLiteral,
		lexer.STRING: p.parseStringLiteral,
		lexer.TRUE:   p.parseBoolean,
		lexer.FALSE:  p.parseBoolean,
		lexer.BANG:   p.parsePrefixExpression,
		lexer.MINUS:  p.parsePrefixExpression,
		lexer.LPAREN: p.parseGroupedExpression,
	}
	p.infixParseFns = map[lexer.TokenType]infixParseFn{
		lexer.PLUS:     p.parseInfixExpression,
		lexer.MINUS:    p.parseInfixExpression,
		lexer.ASTERISK: p.parseInfixExpression,
		lexer.SLASH:    p.parseInfixExpression,
		lexer.PERCENT:  p.parseInfixExpression,
		lexer.EQ:       p.parseInfixExpression,
		lexer.NOT_EQ:   p.parseInfixExpression,
		lexer.LT:       p.parseInfixExpression,
		lexer.GT:       p.parseInfixExpression,
		lexer.LTE:      p.parseInfixExpression,
		lexer.GTE:      p.parseInfixExpression,
		lexer.AND:      p.parseInfixExpression,
		lexer.OR:       p.parseInfixExpression,
		lexer.RANGE:    p.parseRangeExpression,
	}

	// Prime curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// parseExpressionString parses a full directive interior, requiring
// the whole input to be consumed.
func parseExpressionString(content string, at lexer.Token) (ast.Expression, *terrors.Error) {
	ep := newExprParser(lexer.NewAt(content, at.Line, at.Column))
	expr := ep.parseExpression(LOWEST)
	if err := ep.finish(); err != nil {
		return nil, err
	}
	return expr, nil
}

// finish verifies the expression consumed all input and returns the
// first error recorded, if any. A completed parse leaves the last
// expression token in curToken, so the lookahead is what must be EOF.
func (p *exprParser) finish() *terrors.Error {
	if len(p.errs) == 0 && p.peekToken.Type != lexer.EOF {
		p.errorf(p.peekToken, "unexpected %q after expression", p.peekToken.Literal)
	}
	if len(p.errs) > 0 {
		return p.errs[0]
	}
	return nil
}

func (p *exprParser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *exprParser) errorf(tok lexer.Token, format string, args ...any) {
	p.errs = append(p.errs, terrors.NewSyntax(tok.Line, tok.Column, tok.Offset, format, args...))
}

func (p *exprParser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *exprParser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *exprParser) expectPeek(t lexer.TokenType) bool {
	if p.peekToken.Type == t {
		p.nextToken()
		return true
	}
	p.errorf(p.peekToken, "expected %s, got %q", t, p.peekToken.Literal)
	return false
}

func (p *exprParser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		switch {
		case p.curToken.Type == lexer.EOF:
			p.errorf(p.curToken, "unexpected end of expression")
		case p.curToken.Type == lexer.ILLEGAL && isQuote(p.curToken.Literal):
			p.errorf(p.curToken, "unterminated string literal")
		default:
			p.errorf(p.curToken, "unexpected %q in expression", p.curToken.Literal)
		}
		return nil
	}
	left := prefix()

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

// isQuote reports whether an ILLEGAL literal came from an unclosed
// string, which carries its opening quote.
func isQuote(lit string) bool {
	return len(lit) > 0 && (lit[0] == '"' || lit[0] == '\'')
}

// parseIdentifier parses a dotted identifier path, or a namespaced
// call when the path is followed by an argument list.
func (p *exprParser) parseIdentifier() ast.Expression {
	tok := p.curToken
	parts := []string{tok.Literal}

	for p.peekToken.Type == lexer.DOT {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		parts = append(parts, p.curToken.Literal)
	}

	if p.peekToken.Type != lexer.LPAREN {
		return &ast.Identifier{Token: tok, Parts: parts}
	}

	// Call form: exactly NAMESPACE.name(args).
	if len(parts) != 2 {
		p.errorf(tok, "function calls take the form NAMESPACE.name(...), got %q",
			(&ast.Identifier{Token: tok, Parts: parts}).String())
		return nil
	}
	p.nextToken() // onto '('
	args := p.parseCallArguments()
	return &ast.CallExpression{Token: tok, Namespace: parts[0], Name: parts[1], Arguments: args}
}

func (p *exprParser) parseCallArguments() []ast.Expression {
	args := []ast.Expression{}
	if p.peekToken.Type == lexer.RPAREN {
		p.nextToken()
		return args
	}

	p.nextToken()
	args = append(args, p.parseExpression(LOWEST))
	for p.peekToken.Type == lexer.COMMA {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return args
}

func (p *exprParser) parseIntegerLiteral() ast.Expression {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errorf(p.curToken, "could not parse %q as an integer", p.curToken.Literal)
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: value}
}

func (p *exprParser) parseFloatLiteral() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorf(p.curToken, "could not parse %q as a number", p.curToken.Literal)
		return nil
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: value}
}

func (p *exprParser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *exprParser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curToken.Type == lexer.TRUE}
}

func (p *exprParser) parsePrefixExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(PREFIX)
	return &ast.PrefixExpression{Token: tok, Operator: tok.Literal, Right: right}
}

func (p *exprParser) parseInfixExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.InfixExpression{Token: tok, Left: left, Operator: tok.Literal, Right: right}
}

func (p *exprParser) parseRangeExpression(start ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	end := p.parseExpression(RANGE_PREC)
	return &ast.RangeExpression{Token: tok, Start: start, End: end}
}

func (p *exprParser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return expr
}
