package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/docufab/docufab/pkg/engine/schema"
	"github.com/docufab/docufab/store"
)

// Audit entries for a modify carry the old and new value of each
// changed field, not just the entity name.
func TestModifyDetails(t *testing.T) {
	before := store.Template{
		Name:      "letter",
		Content:   "Dear {{client}}",
		Extension: "txt",
		Params:    schema.Schema{{Name: "client", Type: schema.TypeString}},
	}
	after := before
	after.Name = "letter-v2"
	after.Content = "Dear {{client}},"

	d := modifyDetails(before, after)
	if d["name"] != "letter-v2" {
		t.Errorf("unexpected name %v", d["name"])
	}
	changes, ok := d["changes"].(map[string]any)
	if !ok {
		t.Fatalf("missing changes in %v", d)
	}
	if len(changes) != 2 {
		t.Errorf("expected 2 changed fields, got %v", changes)
	}
	name, ok := changes["name"].(map[string]any)
	if !ok {
		t.Fatalf("missing name change in %v", changes)
	}
	if name["old"] != "letter" || name["new"] != "letter-v2" {
		t.Errorf("unexpected name change %v", name)
	}
	if _, ok := changes["extension"]; ok {
		t.Error("extension did not change, must not be recorded")
	}

	// No changes at all still identifies the template.
	d = modifyDetails(before, before)
	if _, ok := d["changes"]; ok {
		t.Errorf("expected no changes, got %v", d["changes"])
	}
	if d["name"] != "letter" {
		t.Errorf("unexpected name %v", d["name"])
	}
}

func TestParamFlags(t *testing.T) {
	p := paramFlags{}

	if err := p.Set("client=Acme"); err != nil {
		t.Fatalf("set error: %v", err)
	}
	if err := p.Set("note=a=b"); err != nil {
		t.Fatalf("set error: %v", err)
	}
	if p["client"] != "Acme" {
		t.Errorf("unexpected value %q", p["client"])
	}
	// Only the first = splits; the rest belongs to the value.
	if p["note"] != "a=b" {
		t.Errorf("unexpected value %q", p["note"])
	}

	if err := p.Set("no-equals"); err == nil {
		t.Error("expected an error for a flag without =")
	}
}

func TestCollectParams(t *testing.T) {
	a := &app{}
	s := schema.Schema{
		{Name: "amount", Type: schema.TypeNumber},
		{Name: "signed", Type: schema.TypeBoolean},
	}

	paramsFile := filepath.Join(t.TempDir(), "params.yaml")
	err := os.WriteFile(paramsFile, []byte("client: Acme\namount: 100\n"), 0644)
	if err != nil {
		t.Fatalf("writing params file: %v", err)
	}

	values, err := a.collectParams(s, paramFlags{"amount": "250", "signed": "true", "extra": "x"}, paramsFile)
	if err != nil {
		t.Fatalf("collect error: %v", err)
	}

	if values["client"] != "Acme" {
		t.Errorf("file value lost: %v", values["client"])
	}
	// Flags override the file and are coerced by the schema.
	if values["amount"] != int64(250) {
		t.Errorf("expected int64(250), got %v (%T)", values["amount"], values["amount"])
	}
	if values["signed"] != true {
		t.Errorf("expected true, got %v", values["signed"])
	}
	// Undeclared flags pass through as strings.
	if values["extra"] != "x" {
		t.Errorf("expected %q, got %v", "x", values["extra"])
	}
}

func TestCollectParamsRejectsBadValue(t *testing.T) {
	a := &app{}
	s := schema.Schema{{Name: "amount", Type: schema.TypeNumber}}

	if _, err := a.collectParams(s, paramFlags{"amount": "lots"}, ""); err == nil {
		t.Error("expected a coercion error")
	}
}
