package schema

import (
	"strings"
	"testing"
	"time"
)

func TestMergeOverridesAndAppends(t *testing.T) {
	parent := Schema{
		{Name: "greeting", Type: TypeString, Default: "Hello"},
		{Name: "count", Type: TypeNumber, Default: 1},
	}
	child := Schema{
		{Name: "count", Type: TypeNumber, Default: 5},
		{Name: "signed", Type: TypeBoolean, Default: true},
	}

	merged := parent.Merge(child)

	if len(merged) != 3 {
		t.Fatalf("expected 3 parameters, got %d", len(merged))
	}
	// Order of first introduction survives the merge.
	for i, name := range []string{"greeting", "count", "signed"} {
		if merged[i].Name != name {
			t.Errorf("position %d: expected %q, got %q", i, name, merged[i].Name)
		}
	}
	count, _ := merged.Get("count")
	if count.Default != 5 {
		t.Errorf("expected the child default 5, got %v", count.Default)
	}
}

func TestMergeLeavesInputsIntact(t *testing.T) {
	parent := Schema{{Name: "count", Default: 1}}
	child := Schema{{Name: "count", Default: 2}}

	parent.Merge(child)

	if parent[0].Default != 1 {
		t.Errorf("parent mutated: %v", parent[0].Default)
	}
}

func TestApplyDefaultsAndOverrides(t *testing.T) {
	s := Schema{
		{Name: "greeting", Type: TypeString, Default: "Hello"},
		{Name: "count", Type: TypeNumber, Default: 1},
		{Name: "note", Type: TypeString},
	}

	out, err := s.Apply(map[string]any{"count": 7, "extra": "x"})
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}

	if out["greeting"] != "Hello" {
		t.Errorf("expected the default greeting, got %v", out["greeting"])
	}
	if out["count"] != 7 {
		t.Errorf("expected the explicit count, got %v", out["count"])
	}
	if _, ok := out["note"]; ok {
		t.Error("a parameter without a default should stay absent")
	}
	if out["extra"] != "x" {
		t.Errorf("undeclared values pass through, got %v", out["extra"])
	}
}

func TestApplyEnforcesOptions(t *testing.T) {
	s := Schema{{Name: "status", Type: TypeString, Options: []string{"draft", "final"}, Default: "draft"}}

	if _, err := s.Apply(map[string]any{"status": "final"}); err != nil {
		t.Fatalf("valid option rejected: %v", err)
	}

	_, err := s.Apply(map[string]any{"status": "published"})
	if err == nil {
		t.Fatal("expected an error for a value outside the option set")
	}
	if !strings.Contains(err.Error(), `must be one of [draft, final]`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		typ      string
		raw      string
		expected any
	}{
		{TypeNumber, "42", int64(42)},
		{TypeNumber, "2.5", 2.5},
		{TypeBoolean, "true", true},
		{TypeBoolean, "0", false},
		{TypeString, "plain", "plain"},
		{"", "untyped", "untyped"},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.raw, func(t *testing.T) {
			got, err := Param{Name: "p", Type: tt.typ}.Coerce(tt.raw)
			if err != nil {
				t.Fatalf("coerce error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %v (%T), got %v (%T)", tt.expected, tt.expected, got, got)
			}
		})
	}
}

func TestCoerceDate(t *testing.T) {
	got, err := Param{Name: "due", Type: TypeDate}.Coerce("2024-03-15")
	if err != nil {
		t.Fatalf("coerce error: %v", err)
	}
	ts, ok := got.(time.Time)
	if !ok {
		t.Fatalf("expected time.Time, got %T", got)
	}
	if ts.Year() != 2024 || ts.Month() != time.March || ts.Day() != 15 {
		t.Errorf("unexpected date %v", ts)
	}
}

func TestCoerceErrors(t *testing.T) {
	tests := []struct {
		typ string
		raw string
	}{
		{TypeNumber, "many"},
		{TypeBoolean, "maybe"},
		{TypeDate, "someday"},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.raw, func(t *testing.T) {
			if _, err := (Param{Name: "p", Type: tt.typ}).Coerce(tt.raw); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseJSONRoundTrip(t *testing.T) {
	s := Schema{
		{Name: "status", Type: TypeString, Options: []string{"draft", "final"}, Default: "draft"},
		{Name: "amount", Type: TypeNumber},
	}

	data, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	parsed, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(parsed) != 2 || parsed[0].Name != "status" || len(parsed[0].Options) != 2 {
		t.Errorf("unexpected schema %+v", parsed)
	}
}

func TestParseJSONEmpty(t *testing.T) {
	s, err := ParseJSON(nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if s != nil {
		t.Errorf("expected a nil schema, got %+v", s)
	}

	data, err := Schema(nil).MarshalJSON()
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected %q, got %q", "[]", data)
	}
}
