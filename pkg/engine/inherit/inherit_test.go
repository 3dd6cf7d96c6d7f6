package inherit

import (
	"strings"
	"testing"

	"github.com/docufab/docufab/pkg/engine/schema"
)

func lookupIn(templates map[int64]*Template) LookupFunc {
	return func(id int64) (*Template, bool) {
		t, ok := templates[id]
		return t, ok
	}
}

func TestResolveWithoutParent(t *testing.T) {
	tpl := &Template{ID: 1, Name: "letter", Content: "Dear {{name}}", Extension: "txt"}

	eff, err := Resolve(tpl, lookupIn(nil))
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if eff.Name != "letter" || eff.Content != "Dear {{name}}" || eff.Extension != "txt" {
		t.Errorf("unexpected effective template %+v", eff)
	}
}

func TestResolveMergesChainRootFirst(t *testing.T) {
	templates := map[int64]*Template{
		1: {ID: 1, Name: "base", Content: "base body", Extension: "txt",
			Params: schema.Schema{
				{Name: "greeting", Default: "Hello"},
				{Name: "closing", Default: "Regards"},
			}},
		2: {ID: 2, Name: "branded", ParentID: 1, Extension: "md",
			Params: schema.Schema{
				{Name: "greeting", Default: "Welcome"},
			}},
	}
	child := &Template{ID: 3, Name: "invoice", ParentID: 2,
		Params: schema.Schema{{Name: "amount", Type: schema.TypeNumber}}}

	eff, err := Resolve(child, lookupIn(templates))
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if eff.Name != "invoice" {
		t.Errorf("expected the child's name, got %q", eff.Name)
	}
	// Content falls back to the root; the middle template's extension wins.
	if eff.Content != "base body" {
		t.Errorf("expected inherited content, got %q", eff.Content)
	}
	if eff.Extension != "md" {
		t.Errorf("expected %q, got %q", "md", eff.Extension)
	}

	if len(eff.Params) != 3 {
		t.Fatalf("expected 3 merged parameters, got %d: %+v", len(eff.Params), eff.Params)
	}
	greeting, _ := eff.Params.Get("greeting")
	if greeting.Default != "Welcome" {
		t.Errorf("expected the descendant override, got %v", greeting.Default)
	}
	if eff.Params[0].Name != "greeting" || eff.Params[2].Name != "amount" {
		t.Errorf("unexpected parameter order %+v", eff.Params)
	}
}

func TestResolveChildContentOverridesParent(t *testing.T) {
	templates := map[int64]*Template{
		1: {ID: 1, Name: "base", Content: "base body", Extension: "txt"},
	}
	child := &Template{ID: 2, Name: "custom", ParentID: 1, Content: "own body"}

	eff, err := Resolve(child, lookupIn(templates))
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if eff.Content != "own body" {
		t.Errorf("expected the child's content, got %q", eff.Content)
	}
	if eff.Extension != "txt" {
		t.Errorf("expected the inherited extension, got %q", eff.Extension)
	}
}

func TestResolveDetectsCycle(t *testing.T) {
	templates := map[int64]*Template{
		1: {ID: 1, Name: "a", ParentID: 2},
		2: {ID: 2, Name: "b", ParentID: 1},
	}

	_, err := Resolve(templates[1], lookupIn(templates))
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	if !strings.Contains(err.Error(), "inheritance cycle detected") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolveSelfParentIsACycle(t *testing.T) {
	tpl := &Template{ID: 1, Name: "narcissus", ParentID: 1}
	templates := map[int64]*Template{1: tpl}

	_, err := Resolve(tpl, lookupIn(templates))
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	if !strings.Contains(err.Error(), "inheritance cycle detected") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolveMissingParent(t *testing.T) {
	tpl := &Template{ID: 1, Name: "orphan", ParentID: 99}

	_, err := Resolve(tpl, lookupIn(nil))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), `template "orphan" names parent 99, which does not exist`) {
		t.Errorf("unexpected error: %v", err)
	}
}
