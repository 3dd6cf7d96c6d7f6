package render

import (
	"bytes"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// HTMLRenderer converts markdown-shaped template output to an HTML
// document. Content that already looks like HTML is written as-is.
type HTMLRenderer struct {
	md goldmark.Markdown
}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

func (h *HTMLRenderer) Extension() string { return "html" }

func (h *HTMLRenderer) Render(content, outputPath string) error {
	out := []byte(content)
	if !looksLikeHTML(content) {
		var buf bytes.Buffer
		if err := h.md.Convert([]byte(content), &buf); err != nil {
			return fmt.Errorf("converting markdown: %w", err)
		}
		out = buf.Bytes()
	}
	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return nil
}

func looksLikeHTML(content string) bool {
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case '<':
			return true
		default:
			return false
		}
	}
	return false
}
