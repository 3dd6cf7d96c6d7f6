package evaluator

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func stringBuiltins() []*Builtin {
	return []*Builtin{
		{Name: "upper", MinArgs: 1, MaxArgs: 1, Fn: stringFn(strings.ToUpper)},
		{Name: "lower", MinArgs: 1, MaxArgs: 1, Fn: stringFn(strings.ToLower)},
		{Name: "capitalize", MinArgs: 1, MaxArgs: 1, Fn: stringFn(capitalize)},
		{Name: "trim", MinArgs: 1, MaxArgs: 1, Fn: stringFn(strings.TrimSpace)},
		{Name: "replace", MinArgs: 3, MaxArgs: 3, Fn: stringReplace},
		{Name: "length", MinArgs: 1, MaxArgs: 1, Fn: stringLength},
	}
}

// stringFn lifts a string transform into a builtin. Non-string values
// are stringified first, matching how interpolation treats them.
func stringFn(fn func(string) string) BuiltinFunction {
	return func(args ...Object) Object {
		return &String{Value: fn(args[0].Inspect())}
	}
}

// capitalize uppercases the first rune and lowercases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

func stringReplace(args ...Object) Object {
	old, ok := args[1].(*String)
	if !ok {
		return typeError("the search value must be a string, got %s", args[1].Type())
	}
	new_, ok := args[2].(*String)
	if !ok {
		return typeError("the replacement must be a string, got %s", args[2].Type())
	}
	return &String{Value: strings.ReplaceAll(args[0].Inspect(), old.Value, new_.Value)}
}

func stringLength(args ...Object) Object {
	switch v := args[0].(type) {
	case *Array:
		return &Integer{Value: int64(len(v.Elements))}
	case *Dictionary:
		return &Integer{Value: int64(len(v.Keys))}
	default:
		return &Integer{Value: int64(utf8.RuneCountInString(v.Inspect()))}
	}
}
