package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFactoryFor(t *testing.T) {
	f := NewFactory()

	tests := []struct {
		ext      string
		expected string
	}{
		{"txt", "txt"},
		{"md", "md"},
		{"html", "html"},
		{".md", "md"},
		{"MD", "md"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			r, err := f.For(tt.ext)
			if err != nil {
				t.Fatalf("For(%q) error: %v", tt.ext, err)
			}
			if r.Extension() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, r.Extension())
			}
		})
	}
}

// A rich format with no registered renderer must error, not silently
// write template text with that extension.
func TestFactoryForUnregistered(t *testing.T) {
	f := NewFactory()
	for _, ext := range []string{"docx", "xlsx", "log"} {
		if _, err := f.For(ext); err == nil {
			t.Errorf("For(%q): expected an error", ext)
		} else if !strings.Contains(err.Error(), "no renderer registered") {
			t.Errorf("For(%q): unexpected error %v", ext, err)
		}
	}
}

func TestFactoryExtensions(t *testing.T) {
	exts := NewFactory().Extensions()
	have := map[string]bool{}
	for _, e := range exts {
		have[e] = true
	}
	for _, e := range []string{"txt", "md", "html"} {
		if !have[e] {
			t.Errorf("missing built-in extension %q in %v", e, exts)
		}
	}
}

type stubRenderer struct{ called *bool }

func (s stubRenderer) Extension() string { return "docx" }
func (s stubRenderer) Render(content, outputPath string) error {
	*s.called = true
	return nil
}

func TestFactoryRegisterNativeRenderer(t *testing.T) {
	f := NewFactory()
	called := false
	f.Register(stubRenderer{called: &called})

	r, err := f.For("docx")
	if err != nil {
		t.Fatalf("For error: %v", err)
	}
	if err := r.Render("body", ""); err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !called {
		t.Error("expected the registered renderer to be used")
	}
}

func mustFor(t *testing.T, ext string) FileRenderer {
	t.Helper()
	r, err := NewFactory().For(ext)
	if err != nil {
		t.Fatalf("For(%q) error: %v", ext, err)
	}
	return r
}

func TestTextRendererWritesVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	content := "# not markdown\nplain text\n"

	if err := mustFor(t, "txt").Render(content, path); err != nil {
		t.Fatalf("render error: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(got) != content {
		t.Errorf("expected %q, got %q", content, got)
	}
}

func TestHTMLRendererConvertsMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	content := "# Quarterly Report\n\nRevenue is **up**.\n"

	if err := mustFor(t, "html").Render(content, path); err != nil {
		t.Fatalf("render error: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	html := string(got)
	if !strings.Contains(html, "<h1>Quarterly Report</h1>") {
		t.Errorf("missing heading in %q", html)
	}
	if !strings.Contains(html, "<strong>up</strong>") {
		t.Errorf("missing emphasis in %q", html)
	}
}

func TestHTMLRendererPassesHTMLThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	content := "<!DOCTYPE html>\n<html><body><h1>Done</h1></body></html>\n"

	if err := mustFor(t, "html").Render(content, path); err != nil {
		t.Fatalf("render error: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(got) != content {
		t.Errorf("expected pass-through, got %q", got)
	}
}
