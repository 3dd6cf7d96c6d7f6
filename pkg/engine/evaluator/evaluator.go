// Package evaluator walks a parsed node tree against a parameter
// environment and produces the rendered text.
//
// Values are represented by a closed tagged sum (Integer, Float,
// Boolean, String, Null, Array, Dictionary). Rendering is synchronous
// and single-pass: it either returns the complete output string or
// fails atomically with the first error, producing no partial output.
package evaluator

import (
	"math"
	"strconv"
	"strings"

	"github.com/docufab/docufab/pkg/engine/ast"
	terrors "github.com/docufab/docufab/pkg/engine/errors"
)

// Render walks the template's node tree against env and returns the
// rendered text.
func Render(tpl *ast.Template, env *Environment) (string, error) {
	var out strings.Builder
	if err := renderNodes(tpl.Nodes, env, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

// EvalExpression evaluates a single expression and returns its text
// form, for interactive use.
func EvalExpression(expr ast.Expression, env *Environment) (string, error) {
	value := Eval(expr, env)
	if err, ok := value.(*Error); ok {
		return "", err.Err
	}
	return value.Inspect(), nil
}

func renderNodes(nodes []ast.TemplateNode, env *Environment, out *strings.Builder) *terrors.Error {
	for _, node := range nodes {
		if err := renderNode(node, env, out); err != nil {
			return err
		}
	}
	return nil
}

func renderNode(node ast.TemplateNode, env *Environment, out *strings.Builder) *terrors.Error {
	switch n := node.(type) {
	case *ast.Text:
		out.WriteString(n.Value)
		return nil
	case *ast.Interpolation:
		value := Eval(n.Expr, env)
		if err, ok := value.(*Error); ok {
			return err.Err
		}
		out.WriteString(value.Inspect())
		return nil
	case *ast.If:
		return renderIf(n, env, out)
	case *ast.For:
		return renderFor(n, env, out)
	case *ast.Switch:
		return renderSwitch(n, env, out)
	default:
		line, column := node.Pos()
		return terrors.NewRender(line, column, "unknown node kind %T", node)
	}
}

// renderIf renders the first branch whose condition is truthy, the
// else body if none is, or nothing.
func renderIf(n *ast.If, env *Environment, out *strings.Builder) *terrors.Error {
	for _, branch := range n.Branches {
		cond := Eval(branch.Condition, env)
		if err, ok := cond.(*Error); ok {
			return err.Err
		}
		if isTruthy(cond) {
			return renderNodes(branch.Body, NewEnclosedEnvironment(env), out)
		}
	}
	if n.HasElse {
		return renderNodes(n.Else, NewEnclosedEnvironment(env), out)
	}
	return nil
}

func renderFor(n *ast.For, env *Environment, out *strings.Builder) *terrors.Error {
	line, column := n.Pos()

	// Inclusive integer range source.
	if rng, ok := n.Source.(*ast.RangeExpression); ok {
		if len(n.Names) != 1 {
			return terrors.NewRender(line, column,
				"a range source binds a single loop variable, got %d names", len(n.Names))
		}
		start, end, err := evalRangeBounds(rng, env)
		if err != nil {
			return err
		}
		// An inverted range is an empty iteration, not an error.
		for i := start; i <= end; i++ {
			child := NewEnclosedEnvironment(env)
			child.Set(n.Names[0], &Integer{Value: i})
			if err := renderNodes(n.Body, child, out); err != nil {
				return err
			}
		}
		return nil
	}

	source := Eval(n.Source, env)
	if err, ok := source.(*Error); ok {
		return err.Err
	}

	switch src := source.(type) {
	case *Array:
		if len(n.Names) != 1 {
			return terrors.NewRender(line, column,
				"cannot destructure %s into (%s): key/value iteration requires a mapping",
				src.Type(), strings.Join(n.Names, ", "))
		}
		for _, element := range src.Elements {
			child := NewEnclosedEnvironment(env)
			child.Set(n.Names[0], element)
			if err := renderNodes(n.Body, child, out); err != nil {
				return err
			}
		}
		return nil
	case *Dictionary:
		for _, key := range src.Keys {
			child := NewEnclosedEnvironment(env)
			if len(n.Names) == 2 {
				child.Set(n.Names[0], &String{Value: key})
				child.Set(n.Names[1], src.Pairs[key])
			} else {
				child.Set(n.Names[0], &String{Value: key})
			}
			if err := renderNodes(n.Body, child, out); err != nil {
				return err
			}
		}
		return nil
	default:
		return terrors.NewRender(line, column,
			"{{#for}} source must be a range, sequence or mapping, got %s", source.Type())
	}
}

func evalRangeBounds(rng *ast.RangeExpression, env *Environment) (int64, int64, *terrors.Error) {
	line, column := rng.Pos()

	start := Eval(rng.Start, env)
	if err, ok := start.(*Error); ok {
		return 0, 0, err.Err
	}
	end := Eval(rng.End, env)
	if err, ok := end.(*Error); ok {
		return 0, 0, err.Err
	}

	a, ok := rangeBound(start)
	if !ok {
		return 0, 0, terrors.NewRender(line, column,
			"range start must be an integer, got %s", start.Type())
	}
	b, ok := rangeBound(end)
	if !ok {
		return 0, 0, terrors.NewRender(line, column,
			"range end must be an integer, got %s", end.Type())
	}
	return a, b, nil
}

func rangeBound(obj Object) (int64, bool) {
	switch v := obj.(type) {
	case *Integer:
		return v.Value, true
	case *Float:
		if v.Value == math.Trunc(v.Value) {
			return int64(v.Value), true
		}
	}
	return 0, false
}

// renderSwitch evaluates the subject once, then renders the first case
// whose literal equals it, falling back to the default body.
func renderSwitch(n *ast.Switch, env *Environment, out *strings.Builder) *terrors.Error {
	subject := Eval(n.Subject, env)
	if err, ok := subject.(*Error); ok {
		return err.Err
	}

	for _, c := range n.Cases {
		caseValue := Eval(c.Value, env)
		if err, ok := caseValue.(*Error); ok {
			return err.Err
		}
		if objectsEqual(subject, caseValue) {
			return renderNodes(c.Body, NewEnclosedEnvironment(env), out)
		}
	}
	if n.HasDefault {
		return renderNodes(n.Default, NewEnclosedEnvironment(env), out)
	}
	return nil
}

// Eval evaluates an expression against the current scope.
func Eval(node ast.Expression, env *Environment) Object {
	switch n := node.(type) {
	case *ast.IntegerLiteral:
		return &Integer{Value: n.Value}
	case *ast.FloatLiteral:
		return &Float{Value: n.Value}
	case *ast.StringLiteral:
		return &String{Value: n.Value}
	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(n.Value)
	case *ast.Identifier:
		return evalIdentifier(n, env)
	case *ast.PrefixExpression:
		return evalPrefixExpression(n, env)
	case *ast.InfixExpression:
		return evalInfixExpression(n, env)
	case *ast.CallExpression:
		return evalCallExpression(n, env)
	case *ast.RangeExpression:
		line, column := n.Pos()
		return newRenderError(line, column, "a range is only valid as the source of a {{#for}} loop")
	case nil:
		return newRenderError(0, 0, "missing expression")
	default:
		line, column := node.Pos()
		return newRenderError(line, column, "unknown expression kind %T", node)
	}
}

// evalIdentifier resolves a dotted path: the root from the scope
// chain, the remaining parts attribute-style through mappings.
func evalIdentifier(n *ast.Identifier, env *Environment) Object {
	line, column := n.Pos()

	value, ok := env.Get(n.Parts[0])
	if !ok {
		return newRenderError(line, column, "undefined variable %q", n.Parts[0])
	}

	for _, part := range n.Parts[1:] {
		dict, ok := value.(*Dictionary)
		if !ok {
			return newRenderError(line, column,
				"%q is not a mapping, cannot look up attribute %q", n.Parts[0], part)
		}
		value, ok = dict.Get(part)
		if !ok {
			return newRenderError(line, column, "unknown attribute %q on %q", part, n.Parts[0])
		}
	}
	return value
}

func evalPrefixExpression(n *ast.PrefixExpression, env *Environment) Object {
	right := Eval(n.Right, env)
	if isError(right) {
		return right
	}
	line, column := n.Pos()

	switch n.Operator {
	case "!":
		return nativeBoolToBooleanObject(!isTruthy(right))
	case "-":
		switch v := right.(type) {
		case *Integer:
			return &Integer{Value: -v.Value}
		case *Float:
			return &Float{Value: -v.Value}
		}
		return newRenderError(line, column, "operator - is not defined for %s", right.Type())
	default:
		return newRenderError(line, column, "unknown prefix operator %q", n.Operator)
	}
}

func evalInfixExpression(n *ast.InfixExpression, env *Environment) Object {
	line, column := n.Pos()

	// Logical operators short-circuit on truthiness.
	if n.Operator == "&&" || n.Operator == "||" {
		left := Eval(n.Left, env)
		if isError(left) {
			return left
		}
		if n.Operator == "&&" && !isTruthy(left) {
			return FALSE
		}
		if n.Operator == "||" && isTruthy(left) {
			return TRUE
		}
		right := Eval(n.Right, env)
		if isError(right) {
			return right
		}
		return nativeBoolToBooleanObject(isTruthy(right))
	}

	left := Eval(n.Left, env)
	if isError(left) {
		return left
	}
	right := Eval(n.Right, env)
	if isError(right) {
		return right
	}

	switch n.Operator {
	case "==":
		return nativeBoolToBooleanObject(objectsEqual(left, right))
	case "!=":
		return nativeBoolToBooleanObject(!objectsEqual(left, right))
	}

	// String concatenation and comparison.
	if ls, ok := left.(*String); ok {
		rs, ok := right.(*String)
		if !ok {
			return newRenderError(line, column,
				"type mismatch: %s %s %s", left.Type(), n.Operator, right.Type())
		}
		switch n.Operator {
		case "+":
			return &String{Value: ls.Value + rs.Value}
		case "<":
			return nativeBoolToBooleanObject(ls.Value < rs.Value)
		case "<=":
			return nativeBoolToBooleanObject(ls.Value <= rs.Value)
		case ">":
			return nativeBoolToBooleanObject(ls.Value > rs.Value)
		case ">=":
			return nativeBoolToBooleanObject(ls.Value >= rs.Value)
		}
		return newRenderError(line, column, "operator %s is not defined for strings", n.Operator)
	}

	return evalNumericInfix(n.Operator, left, right, line, column)
}

func evalNumericInfix(operator string, left, right Object, line, column int) Object {
	lv, lok := numericValue(left)
	rv, rok := numericValue(right)
	if !lok || !rok {
		return newRenderError(line, column,
			"type mismatch: %s %s %s", left.Type(), operator, right.Type())
	}

	li, lInt := left.(*Integer)
	ri, rInt := right.(*Integer)
	bothInt := lInt && rInt

	switch operator {
	case "+":
		if bothInt {
			return &Integer{Value: li.Value + ri.Value}
		}
		return &Float{Value: lv + rv}
	case "-":
		if bothInt {
			return &Integer{Value: li.Value - ri.Value}
		}
		return &Float{Value: lv - rv}
	case "*":
		if bothInt {
			return &Integer{Value: li.Value * ri.Value}
		}
		return &Float{Value: lv * rv}
	case "/":
		if rv == 0 {
			return newRenderError(line, column, "division by zero")
		}
		// Division always yields a float; Inspect trims a zero
		// fraction, so 10/5 still renders as "2".
		return &Float{Value: lv / rv}
	case "%":
		if !bothInt {
			return newRenderError(line, column, "operator %% requires integers")
		}
		if ri.Value == 0 {
			return newRenderError(line, column, "modulo by zero")
		}
		return &Integer{Value: li.Value % ri.Value}
	case "<":
		return nativeBoolToBooleanObject(lv < rv)
	case "<=":
		return nativeBoolToBooleanObject(lv <= rv)
	case ">":
		return nativeBoolToBooleanObject(lv > rv)
	case ">=":
		return nativeBoolToBooleanObject(lv >= rv)
	default:
		return newRenderError(line, column, "unknown operator %q", operator)
	}
}

func evalCallExpression(n *ast.CallExpression, env *Environment) Object {
	line, column := n.Pos()

	if env.Registry == nil {
		return newRenderError(line, column, "no function registry available")
	}
	fn, ok := env.Registry.Lookup(n.Namespace, n.Name)
	if !ok {
		return newRenderError(line, column, "unknown function %s.%s", n.Namespace, n.Name)
	}

	args := make([]Object, 0, len(n.Arguments))
	for _, argExpr := range n.Arguments {
		arg := Eval(argExpr, env)
		if isError(arg) {
			return arg
		}
		args = append(args, arg)
	}

	if len(args) < fn.MinArgs || (fn.MaxArgs >= 0 && len(args) > fn.MaxArgs) {
		return newRenderError(line, column, "%s.%s expects %s, got %d",
			n.Namespace, n.Name, arityDescription(fn), len(args))
	}

	result := fn.Fn(args...)
	if err, ok := result.(*Error); ok {
		// Attach the call site if the builtin did not know it.
		if err.Err.Line == 0 {
			err.Err.Line = line
			err.Err.Column = column
		}
		err.Err.Message = n.Namespace + "." + n.Name + ": " + err.Err.Message
		return err
	}
	return result
}

func arityDescription(fn *Builtin) string {
	switch {
	case fn.MaxArgs < 0 && fn.MinArgs == 0:
		return "any number of arguments"
	case fn.MaxArgs < 0:
		return pluralArgs(fn.MinArgs) + " or more"
	case fn.MinArgs == fn.MaxArgs:
		return pluralArgs(fn.MinArgs)
	default:
		return pluralArgs(fn.MinArgs) + " to " + pluralArgs(fn.MaxArgs)
	}
}

func pluralArgs(n int) string {
	if n == 1 {
		return "1 argument"
	}
	return strconv.Itoa(n) + " arguments"
}

// isTruthy implements the engine's truthiness rules: booleans as-is,
// numbers truthy iff nonzero, strings truthy iff non-empty, sequences
// and mappings truthy iff non-empty, null falsy.
func isTruthy(obj Object) bool {
	switch v := obj.(type) {
	case *Boolean:
		return v.Value
	case *Integer:
		return v.Value != 0
	case *Float:
		return v.Value != 0
	case *String:
		return v.Value != ""
	case *Array:
		return len(v.Elements) > 0
	case *Dictionary:
		return len(v.Keys) > 0
	case *Null:
		return false
	default:
		return true
	}
}

// objectsEqual implements type-aware value equality: numbers compare
// numerically across integer/float, strings by exact text. Values of
// incomparable kinds are unequal, not an error.
func objectsEqual(a, b Object) bool {
	if av, aok := numericValue(a); aok {
		bv, bok := numericValue(b)
		return bok && av == bv
	}
	switch av := a.(type) {
	case *String:
		bv, ok := b.(*String)
		return ok && av.Value == bv.Value
	case *Boolean:
		bv, ok := b.(*Boolean)
		return ok && av.Value == bv.Value
	case *Null:
		_, ok := b.(*Null)
		return ok
	default:
		return false
	}
}

func numericValue(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case *Integer:
		return float64(v.Value), true
	case *Float:
		return v.Value, true
	default:
		return 0, false
	}
}
