package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	terrors "github.com/docufab/docufab/pkg/engine/errors"
)

// ObjectType represents the type of values flowing through templates
type ObjectType string

const (
	INTEGER_OBJ    = "INTEGER"
	FLOAT_OBJ      = "FLOAT"
	BOOLEAN_OBJ    = "BOOLEAN"
	STRING_OBJ     = "STRING"
	NULL_OBJ       = "NULL"
	ARRAY_OBJ      = "ARRAY"
	DICTIONARY_OBJ = "DICTIONARY"
	BUILTIN_OBJ    = "BUILTIN"
	ERROR_OBJ      = "ERROR"
)

// Object represents all values in the template language
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Integer represents integer objects
type Integer struct {
	Value int64
}

func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Type() ObjectType { return INTEGER_OBJ }

// Float represents floating-point objects
type Float struct {
	Value float64
}

func (f *Float) Inspect() string  { return strconv.FormatFloat(f.Value, 'g', -1, 64) }
func (f *Float) Type() ObjectType { return FLOAT_OBJ }

// Boolean represents boolean objects
type Boolean struct {
	Value bool
}

func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }
func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }

// String represents string objects
type String struct {
	Value string
}

func (s *String) Inspect() string  { return s.Value }
func (s *String) Type() ObjectType { return STRING_OBJ }

// Null represents the absence of a value. It stringifies to nothing.
type Null struct{}

func (n *Null) Inspect() string  { return "" }
func (n *Null) Type() ObjectType { return NULL_OBJ }

// Array represents ordered sequences
type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }

func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Dictionary represents a key-ordered mapping. Keys preserves
// insertion order for deterministic iteration.
type Dictionary struct {
	Keys  []string
	Pairs map[string]Object
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{Pairs: make(map[string]Object)}
}

func (d *Dictionary) Type() ObjectType { return DICTIONARY_OBJ }

func (d *Dictionary) Inspect() string {
	parts := make([]string, len(d.Keys))
	for i, k := range d.Keys {
		parts[i] = fmt.Sprintf("%s: %s", k, d.Pairs[k].Inspect())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Get returns the value bound to key.
func (d *Dictionary) Get(key string) (Object, bool) {
	v, ok := d.Pairs[key]
	return v, ok
}

// Set binds key to value, appending to the key order on first
// introduction.
func (d *Dictionary) Set(key string, value Object) {
	if _, exists := d.Pairs[key]; !exists {
		d.Keys = append(d.Keys, key)
	}
	d.Pairs[key] = value
}

// Builtin represents a registered namespace function
type Builtin struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for variadic
	Fn      BuiltinFunction
}

// BuiltinFunction is the callable contract for registered functions.
// Implementations return an *Error object on failure.
type BuiltinFunction func(args ...Object) Object

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin function " + b.Name }

// Error wraps an engine error as an object so failures propagate
// through evaluation like any other value.
type Error struct {
	Err *terrors.Error
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return e.Err.Error() }

// shared singletons
var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

func isError(obj Object) bool {
	if obj == nil {
		return false
	}
	return obj.Type() == ERROR_OBJ
}

// newRenderError creates an error object positioned at the given node
// location.
func newRenderError(line, column int, format string, args ...any) *Error {
	return &Error{Err: terrors.NewRender(line, column, format, args...)}
}

// typeError creates an unpositioned render error for a builtin
// argument of the wrong kind; the evaluator attaches the call site.
func typeError(format string, args ...any) *Error {
	return newRenderError(0, 0, format, args...)
}
