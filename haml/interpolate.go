package haml

import (
	"strings"

	"github.com/hesusruiz/hamlet/sliceedit"
)

const (
	varStart = "{{ "
	varEnd   = " }}"
)

// variable returns the output directive printing expr.
func variable(expr string, escape bool) string {
	expr = strings.TrimSpace(expr)
	if !escape {
		expr += "|safe"
	}
	return varStart + expr + varEnd
}

// interpolate expands the markers '#{expr}' (and '={expr}' in Django inline style)
// into variable directives. A '#{' or '={' preceded by a backslash is output literally,
// without the backslash, whether the Django inline style is enabled or not.
// When quote is not zero, every occurrence of it outside markers is escaped with a backslash,
// so the text can be wrapped in that quote character.
func (c *Compiler) interpolate(text string, quote byte) string {
	if strings.IndexByte(text, '{') < 0 && (quote == 0 || strings.IndexByte(text, quote) < 0) {
		return text
	}

	b := sliceedit.NewBufferString(text)

	for i := 0; i < len(text); i++ {
		ch := text[i]

		switch {

		case quote != 0 && ch == quote:
			b.Insert(i, `\`)

		case ch == '\\' && isEscapedMarker(text, i+1):
			// Remove the escape and skip the marker so it is not expanded
			b.Delete(i, i+1)
			i += 2

		case c.isMarker(text, i):
			end := strings.IndexByte(text[i+2:], '}')
			if end == -1 {
				// Not closed, it is just text
				i++
				continue
			}
			end += i + 2
			b.Replace(i, end+1, variable(text[i+2:end], true))
			i = end

		}
	}

	return b.String()
}

// isEscapedMarker returns true if text[i:] starts with '#{' or '={'.
func isEscapedMarker(text string, i int) bool {
	return i+1 < len(text) && (text[i] == '#' || text[i] == '=') && text[i+1] == '{'
}

// isMarker returns true if an interpolation marker starts at text[i].
func (c *Compiler) isMarker(text string, i int) bool {
	if i+1 >= len(text) || text[i+1] != '{' {
		return false
	}
	return text[i] == '#' || (text[i] == '=' && c.djangoInlineStyle)
}
