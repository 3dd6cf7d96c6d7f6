// Package ast defines the node tree built by the parser.
//
// A parsed template is a Template whose children are template nodes:
// literal text, interpolated expressions and the if/for/switch control
// blocks. Directive conditions and interpolations are expression trees
// built from the types in the second half of this file. The tree is
// ephemeral: it is built per parse call and owned by the render
// invocation that created it.
package ast

import (
	"fmt"
	"strings"

	"github.com/docufab/docufab/pkg/engine/lexer"
)

// Node is the base interface for all AST nodes.
type Node interface {
	// Pos returns the node's 1-based source position.
	Pos() (line, column int)
	String() string
}

// TemplateNode is a node that renders output: text, an interpolated
// expression, or a control block.
type TemplateNode interface {
	Node
	templateNode()
}

// Expression is a node inside a {{...}} span.
type Expression interface {
	Node
	expressionNode()
}

// Template is the root of a parsed template.
type Template struct {
	Nodes []TemplateNode
}

func (t *Template) Pos() (int, int) {
	if len(t.Nodes) > 0 {
		return t.Nodes[0].Pos()
	}
	return 1, 1
}

func (t *Template) String() string {
	var sb strings.Builder
	for _, n := range t.Nodes {
		sb.WriteString(n.String())
	}
	return sb.String()
}

// Text is a literal run emitted unchanged.
type Text struct {
	Token lexer.Token
	Value string
}

func (t *Text) templateNode()   {}
func (t *Text) Pos() (int, int) { return t.Token.Line, t.Token.Column }
func (t *Text) String() string { return t.Value }

// Interpolation is a bare {{expression}} whose stringified value is
// emitted.
type Interpolation struct {
	Token lexer.Token
	Expr  Expression
}

func (i *Interpolation) templateNode()  {}
func (i *Interpolation) Pos() (int, int) { return i.Token.Line, i.Token.Column }
func (i *Interpolation) String() string { return "{{" + i.Expr.String() + "}}" }

// IfBranch is one (condition, body) pair of an If block.
type IfBranch struct {
	Condition Expression
	Body      []TemplateNode
}

// If is an {{#if}}...{{elif}}...{{else}}...{{/if}} block. Branches are
// evaluated in declared order; the first truthy condition wins.
type If struct {
	Token    lexer.Token
	Branches []IfBranch
	Else     []TemplateNode
	HasElse  bool
}

func (i *If) templateNode()   {}
func (i *If) Pos() (int, int) { return i.Token.Line, i.Token.Column }

func (i *If) String() string {
	var sb strings.Builder
	for bi, b := range i.Branches {
		if bi == 0 {
			sb.WriteString("{{#if " + b.Condition.String() + "}}")
		} else {
			sb.WriteString("{{elif " + b.Condition.String() + "}}")
		}
		writeNodes(&sb, b.Body)
	}
	if i.HasElse {
		sb.WriteString("{{else}}")
		writeNodes(&sb, i.Else)
	}
	sb.WriteString("{{/if}}")
	return sb.String()
}

// For is a {{#for binding in source}}...{{/for}} block. Names holds
// one loop variable, or two for (key, value) iteration over a mapping.
type For struct {
	Token  lexer.Token
	Names  []string
	Source Expression
	Body   []TemplateNode
}

func (f *For) templateNode()   {}
func (f *For) Pos() (int, int) { return f.Token.Line, f.Token.Column }

func (f *For) String() string {
	var sb strings.Builder
	sb.WriteString("{{#for " + strings.Join(f.Names, ", ") + " in " + f.Source.String() + "}}")
	writeNodes(&sb, f.Body)
	sb.WriteString("{{/for}}")
	return sb.String()
}

// SwitchCase is one (literal, body) arm of a Switch block.
type SwitchCase struct {
	Token lexer.Token
	Value Expression
	Body  []TemplateNode
}

// Switch is a {{#switch}}/{{#case}}/{{#default}}/{{/switch}} block.
type Switch struct {
	Token      lexer.Token
	Subject    Expression
	Cases      []SwitchCase
	Default    []TemplateNode
	HasDefault bool
}

func (s *Switch) templateNode()   {}
func (s *Switch) Pos() (int, int) { return s.Token.Line, s.Token.Column }

func (s *Switch) String() string {
	var sb strings.Builder
	sb.WriteString("{{#switch " + s.Subject.String() + "}}")
	for _, c := range s.Cases {
		sb.WriteString("{{#case " + c.Value.String() + "}}")
		writeNodes(&sb, c.Body)
	}
	if s.HasDefault {
		sb.WriteString("{{#default}}")
		writeNodes(&sb, s.Default)
	}
	sb.WriteString("{{/switch}}")
	return sb.String()
}

func writeNodes(sb *strings.Builder, nodes []TemplateNode) {
	for _, n := range nodes {
		sb.WriteString(n.String())
	}
}

// Identifier is a variable reference. Parts holds the dotted path:
// "invoice.total" is []string{"invoice", "total"}.
type Identifier struct {
	Token lexer.Token
	Parts []string
}

func (i *Identifier) expressionNode() {}
func (i *Identifier) Pos() (int, int) { return i.Token.Line, i.Token.Column }
func (i *Identifier) String() string { return strings.Join(i.Parts, ".") }

// IntegerLiteral represents an integer literal.
type IntegerLiteral struct {
	Token lexer.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode() {}
func (il *IntegerLiteral) Pos() (int, int) { return il.Token.Line, il.Token.Column }
func (il *IntegerLiteral) String() string { return il.Token.Literal }

// FloatLiteral represents a floating-point literal.
type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode() {}
func (fl *FloatLiteral) Pos() (int, int) { return fl.Token.Line, fl.Token.Column }
func (fl *FloatLiteral) String() string { return fl.Token.Literal }

// StringLiteral represents a quoted string literal.
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode() {}
func (sl *StringLiteral) Pos() (int, int) { return sl.Token.Line, sl.Token.Column }
func (sl *StringLiteral) String() string { return fmt.Sprintf("%q", sl.Value) }

// BooleanLiteral represents true or false.
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode() {}
func (bl *BooleanLiteral) Pos() (int, int) { return bl.Token.Line, bl.Token.Column }
func (bl *BooleanLiteral) String() string { return bl.Token.Literal }

// PrefixExpression is a unary operator application: !x or -x.
type PrefixExpression struct {
	Token    lexer.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode() {}
func (pe *PrefixExpression) Pos() (int, int) { return pe.Token.Line, pe.Token.Column }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// InfixExpression is a binary operator application.
type InfixExpression struct {
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode() {}
func (ie *InfixExpression) Pos() (int, int) { return ie.Token.Line, ie.Token.Column }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// CallExpression is a namespaced builtin call: NAMESPACE.name(args).
type CallExpression struct {
	Token     lexer.Token
	Namespace string
	Name      string
	Arguments []Expression
}

func (ce *CallExpression) expressionNode() {}
func (ce *CallExpression) Pos() (int, int) { return ce.Token.Line, ce.Token.Column }

func (ce *CallExpression) String() string {
	args := make([]string, len(ce.Arguments))
	for i, a := range ce.Arguments {
		args[i] = a.String()
	}
	return ce.Namespace + "." + ce.Name + "(" + strings.Join(args, ", ") + ")"
}

// RangeExpression is an inclusive integer range A..B, valid only as
// the source of a For loop.
type RangeExpression struct {
	Token lexer.Token
	Start Expression
	End   Expression
}

func (re *RangeExpression) expressionNode() {}
func (re *RangeExpression) Pos() (int, int) { return re.Token.Line, re.Token.Column }
func (re *RangeExpression) String() string {
	return re.Start.String() + ".." + re.End.String()
}
