package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/docufab/docufab/pkg/engine/evaluator"
	"github.com/docufab/docufab/pkg/engine/inherit"
	"github.com/docufab/docufab/pkg/engine/schema"
)

func TestRender(t *testing.T) {
	e := New(evaluator.Options{})

	tests := []struct {
		name     string
		content  string
		params   map[string]any
		expected string
	}{
		{
			name:     "plain text",
			content:  "nothing dynamic here",
			expected: "nothing dynamic here",
		},
		{
			name:     "interpolation",
			content:  "Dear {{client}}, your total is {{amount * 2}}.",
			params:   map[string]any{"client": "Acme", "amount": 21},
			expected: "Dear Acme, your total is 42.",
		},
		{
			name:     "conditional",
			content:  "{{#if premium}}priority{{#else}}standard{{/if}} shipping",
			params:   map[string]any{"premium": true},
			expected: "priority shipping",
		},
		{
			name:     "loop over go slice",
			content:  "{{#for item in items}}- {{item}}\n{{/for}}",
			params:   map[string]any{"items": []string{"pen", "ink"}},
			expected: "- pen\n- ink\n",
		},
		{
			name:     "nested map access",
			content:  "{{client.name}} ({{client.tier}})",
			params:   map[string]any{"client": map[string]any{"name": "Acme", "tier": "gold"}},
			expected: "Acme (gold)",
		},
		{
			name:     "function call",
			content:  "{{FORMAT.percent(0.5)}}",
			expected: "50.0%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Render(tt.content, tt.params)
			if err != nil {
				t.Fatalf("render error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	e := New(evaluator.Options{})

	tests := []struct {
		name    string
		content string
		message string
	}{
		{"parse failure", "{{#if x}}unclosed", "unclosed {{#if}} block"},
		{"render failure", "{{missing}}", "undefined variable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.Render(tt.content, nil)
			if err == nil {
				t.Fatalf("expected an error, rendered %q", out)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("expected error containing %q, got %q", tt.message, err.Error())
			}
		})
	}
}

func TestRenderUsesOptions(t *testing.T) {
	clock := func() time.Time {
		return time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	}
	e := New(evaluator.Options{
		Now:  clock,
		User: map[string]string{"name": "Ada"},
	})

	got, err := e.Render("{{USER.name()}} on {{DATE.format(\"YYYY-MM-DD\")}}", nil)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if got != "Ada on 2024-03-15" {
		t.Errorf("unexpected output %q", got)
	}
}

// The user profile is reachable both through the USER builtins and as
// a plain USER dictionary, and explicit params shadow it.
func TestRenderUserDictionary(t *testing.T) {
	e := New(evaluator.Options{
		User: map[string]string{"name": "Ada", "email": "ada@example.com"},
	})

	got, err := e.Render("{{USER.name}} <{{USER.email}}> aka {{USER.name()}}", nil)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if got != "Ada <ada@example.com> aka Ada" {
		t.Errorf("unexpected output %q", got)
	}

	got, err = e.Render("{{USER.name}}", map[string]any{
		"USER": map[string]any{"name": "Grace"},
	})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if got != "Grace" {
		t.Errorf("expected params to shadow the profile, got %q", got)
	}
}

func TestRenderEffectiveAppliesDefaults(t *testing.T) {
	e := New(evaluator.Options{})

	eff := &inherit.Effective{
		Name:      "letter",
		Content:   "{{greeting}}, {{name}}.",
		Extension: "txt",
		Params: schema.Schema{
			{Name: "greeting", Type: schema.TypeString, Default: "Hello"},
			{Name: "name", Type: schema.TypeString, Default: "friend"},
		},
	}

	got, err := e.RenderEffective(eff, map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if got != "Hello, Ada." {
		t.Errorf("expected %q, got %q", "Hello, Ada.", got)
	}
}

func TestRenderEffectiveRejectsBadOption(t *testing.T) {
	e := New(evaluator.Options{})

	eff := &inherit.Effective{
		Content: "{{status}}",
		Params: schema.Schema{
			{Name: "status", Options: []string{"draft", "final"}, Default: "draft"},
		},
	}

	_, err := e.RenderEffective(eff, map[string]any{"status": "published"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "must be one of") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEvalExpression(t *testing.T) {
	e := New(evaluator.Options{})

	got, err := e.EvalExpression("rate * 100", map[string]any{"rate": 0.07})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if got != "7.000000000000001" && got != "7" {
		// 0.07*100 is not exact in binary floating point.
		t.Errorf("unexpected output %q", got)
	}

	got, err = e.EvalExpression("MATH.round(rate * 100, 0)", map[string]any{"rate": 0.07})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if got != "7" {
		t.Errorf("expected %q, got %q", "7", got)
	}
}

func TestCheckParams(t *testing.T) {
	e := New(evaluator.Options{})
	s := schema.Schema{{Name: "status", Options: []string{"draft", "final"}}}

	if err := e.CheckParams(s, map[string]any{"status": "draft"}); err != nil {
		t.Errorf("valid value rejected: %v", err)
	}
	if err := e.CheckParams(s, map[string]any{"status": "nope"}); err == nil {
		t.Error("expected an error")
	}
}

func TestParseReturnsCachedTemplate(t *testing.T) {
	e := New(evaluator.Options{})
	const content = "total: {{1 + 1}}"

	first, err := e.Parse(content)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	second, err := e.Parse(content)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if first != second {
		t.Error("expected the cached template on the second parse")
	}

	e.ClearCache()
	third, err := e.Parse(content)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if third == first {
		t.Error("expected a fresh parse after clearing the cache")
	}
}

func TestParseCacheEvictsOldest(t *testing.T) {
	c := newParseCache(2)

	c.put("a", nil)
	c.put("b", nil)
	// Touch "a" so "b" becomes the eviction candidate.
	c.get("a")
	c.put("c", nil)

	if _, ok := c.entries["b"]; ok {
		t.Error("expected b to be evicted")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok := c.entries[key]; !ok {
			t.Errorf("expected %s to survive", key)
		}
	}
}

func TestParseCacheDisabled(t *testing.T) {
	c := newParseCache(0)
	c.put("a", nil)
	if _, ok := c.get("a"); ok {
		t.Error("a zero-size cache must not store entries")
	}
}

func TestRegistryExtension(t *testing.T) {
	e := New(evaluator.Options{})
	e.Registry().Register("ACME", &evaluator.Builtin{
		Name: "tag", MinArgs: 0, MaxArgs: 0,
		Fn: func(args ...evaluator.Object) evaluator.Object {
			return &evaluator.String{Value: "acme-1"}
		},
	})

	got, err := e.Render("ref: {{ACME.tag()}}", nil)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if got != "ref: acme-1" {
		t.Errorf("expected %q, got %q", "ref: acme-1", got)
	}
}
