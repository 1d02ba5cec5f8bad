package extfilter

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Goldmark renders the body of ':markdown' filters, with GitHub flavored extensions.
type Goldmark struct {
	md goldmark.Markdown
}

func NewGoldmark() *Goldmark {
	return &Goldmark{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (g *Goldmark) Name() string { return "Goldmark" }

func (g *Goldmark) Available() bool { return g.md != nil }

func (g *Goldmark) Render(text string) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}
