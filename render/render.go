// Package render writes rendered template text into output files.
// Text formats are written as-is; HTML is produced from markdown; rich
// formats like docx and xlsx go through pluggable native renderers.
package render

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// FileRenderer turns rendered template content into a file on disk.
type FileRenderer interface {
	Extension() string
	Render(content string, outputPath string) error
}

// Factory hands out renderers by file extension. Rich formats like
// docx must be registered explicitly; asking for an unregistered
// extension is an error rather than a silent plain-text write.
type Factory struct {
	mu        sync.RWMutex
	renderers map[string]FileRenderer
}

// NewFactory builds a factory with the built-in text, markdown and
// HTML renderers registered.
func NewFactory() *Factory {
	f := &Factory{renderers: make(map[string]FileRenderer)}
	f.Register(textRenderer{ext: "txt"})
	f.Register(textRenderer{ext: "md"})
	f.Register(NewHTMLRenderer())
	return f
}

// Register adds or replaces the renderer for its extension. Native
// renderers for formats like docx hook in here.
func (f *Factory) Register(r FileRenderer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renderers[strings.ToLower(r.Extension())] = r
}

// For returns the renderer registered for ext.
func (f *Factory) For(ext string) (FileRenderer, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	f.mu.RLock()
	defer f.mu.RUnlock()
	if r, ok := f.renderers[ext]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("no renderer registered for %q files; native formats need a renderer registered via Register", ext)
}

// Extensions lists the registered extensions.
func (f *Factory) Extensions() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.renderers))
	for ext := range f.renderers {
		out = append(out, ext)
	}
	return out
}

// textRenderer writes content verbatim.
type textRenderer struct {
	ext string
}

func (t textRenderer) Extension() string { return t.ext }

func (t textRenderer) Render(content, outputPath string) error {
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return nil
}
