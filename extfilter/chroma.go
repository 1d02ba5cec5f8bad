package extfilter

import (
	"bytes"
	"fmt"
	"strings"

	hlhtml "github.com/alecthomas/chroma/v2/formatters/html"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const DefaultStyle = "github"

// Chroma highlights the body of ':highlight' filters.
type Chroma struct {
	// Style is the name of the chroma style, DefaultStyle if empty
	Style string

	// Language selects the lexer. If empty, it is guessed from the code
	Language string
}

func (h *Chroma) Name() string { return "Chroma" }

func (h *Chroma) Available() bool { return true }

// Render returns the code as HTML, in a <pre> inside a 'highlight' div.
func (h *Chroma) Render(code string) (string, error) {

	// Determine lexer.
	var l chroma.Lexer
	if lang := strings.TrimSpace(h.Language); len(lang) > 0 {
		l = lexers.Get(lang)
	}
	if l == nil {
		l = lexers.Analyse(code)
	}
	if l == nil {
		l = lexers.Fallback
	}
	l = chroma.Coalesce(l)

	styleName := h.Style
	if len(styleName) == 0 {
		styleName = DefaultStyle
	}
	s := styles.Get(styleName)

	// Get the HTML formatter
	f := hlhtml.New(hlhtml.Standalone(false), hlhtml.WithClasses(true))

	it, err := l.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenising code: %w", err)
	}

	rb := &bytes.Buffer{}
	rb.WriteString(`<div class="highlight">`)
	if err := f.Format(rb, s, it); err != nil {
		return "", fmt.Errorf("formatting code: %w", err)
	}
	rb.WriteString("</div>")

	return rb.String(), nil
}
