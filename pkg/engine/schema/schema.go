// Package schema models a template's declared parameters: per-name
// type, default value and optional enumerated option set. Schemas
// merge down inheritance chains with descendant entries overriding
// ancestors of the same name.
package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
)

// Parameter types understood by Coerce.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeDate    = "date"
)

// Param describes one declared parameter.
type Param struct {
	Name    string   `json:"name" yaml:"name"`
	Type    string   `json:"type,omitempty" yaml:"type,omitempty"`
	Default any      `json:"default,omitempty" yaml:"default,omitempty"`
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// Schema is an ordered parameter list. Order is the order of first
// introduction, which merging preserves.
type Schema []Param

// Get returns the parameter with the given name.
func (s Schema) Get(name string) (Param, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Merge overlays child entries on s: entries sharing a name are
// replaced in place, new entries append in child order.
func (s Schema) Merge(child Schema) Schema {
	merged := make(Schema, len(s))
	copy(merged, s)
	for _, cp := range child {
		replaced := false
		for i, p := range merged {
			if p.Name == cp.Name {
				merged[i] = cp
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, cp)
		}
	}
	return merged
}

// Apply overlays explicit values on the schema's defaults: explicit
// values win, then defaults. Values for parameters with an option set
// must be one of the options.
func (s Schema) Apply(values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(s)+len(values))
	for _, p := range s {
		if p.Default != nil {
			out[p.Name] = p.Default
		}
	}
	for name, v := range values {
		if p, ok := s.Get(name); ok && len(p.Options) > 0 {
			if err := checkOption(p, v); err != nil {
				return nil, err
			}
		}
		out[name] = v
	}
	return out, nil
}

// Coerce converts a raw string (for example from a --param flag) to
// the parameter's declared type. Unknown parameter types pass through
// as strings.
func (p Param) Coerce(raw string) (any, error) {
	switch p.Type {
	case TypeNumber:
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %q is not a number", p.Name, raw)
		}
		return f, nil
	case TypeBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %q is not a boolean", p.Name, raw)
		}
		return b, nil
	case TypeDate:
		t, err := dateparse.ParseAny(raw)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %q is not a recognizable date", p.Name, raw)
		}
		return t, nil
	default:
		return raw, nil
	}
}

func checkOption(p Param, v any) error {
	text := fmt.Sprintf("%v", v)
	for _, opt := range p.Options {
		if text == opt {
			return nil
		}
	}
	return fmt.Errorf("parameter %q must be one of [%s], got %q",
		p.Name, strings.Join(p.Options, ", "), text)
}

// MarshalJSON keeps a nil schema serializable as an empty array.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Param(s))
}

// ParseJSON decodes a schema from its stored JSON form.
func ParseJSON(data []byte) (Schema, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding parameter schema: %w", err)
	}
	return s, nil
}
