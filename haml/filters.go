package haml

import (
	"strings"

	"github.com/hesusruiz/hamlet/sliceedit"
)

// Executor runs the code of a ':python' filter and returns what it prints.
//
// An Executor is inherently unsafe: the template runs arbitrary code with the
// privileges of the process compiling it. It must never be enabled for untrusted input.
// No Executor is configured by default and the filter fails.
type Executor interface {
	Execute(code string) (string, error)
}

// Renderer converts the body of a filter into markup, like a syntax highlighter
// or a markdown processor. Name is used in error messages.
type Renderer interface {
	Name() string
	Available() bool
	Render(text string) (string, error)
}

// filterFunc writes the output of a filter node.
type filterFunc func(c *Compiler, br *ByteRenderer, f *Filter) error

// filterHandlers maps the name of each filter to its implementation.
// It is also the set of valid filter names for the classifier.
var filterHandlers map[string]filterFunc

func init() {
	filterHandlers = map[string]filterFunc{
		"plain":      renderPlainFilter,
		"javascript": renderJavascriptFilter,
		"css":        renderCSSFilter,
		"cdata":      renderCDATAFilter,
		"escaped":    renderEscapedFilter,
		"python":     renderPythonFilter,
		"highlight": func(c *Compiler, br *ByteRenderer, f *Filter) error {
			return c.renderWith(br, f, c.highlighter, "highlighter")
		},
		"markdown": func(c *Compiler, br *ByteRenderer, f *Filter) error {
			return c.renderWith(br, f, c.markdown, "markdown")
		},
		"d2": func(c *Compiler, br *ByteRenderer, f *Filter) error {
			return c.renderWith(br, f, c.diagram, "diagram renderer")
		},
	}
}

// renderFilter dispatches a filter node to its handler.
func (c *Compiler) renderFilter(br *ByteRenderer, f *Filter) error {
	handler, ok := filterHandlers[f.Name]
	if !ok {
		return structuralError(f.LineNumber, "unknown filter ':%s'", f.Name)
	}
	c.log.Debugw("filter", "line", f.LineNumber, "filter", f.Name, "lines", len(f.Lines))
	return handler(c, br, f)
}

func renderPlainFilter(c *Compiler, br *ByteRenderer, f *Filter) error {
	lines := dedent(f.Lines)
	for i, line := range lines {
		// A backslash escapes a leading sigil, as in normal lines
		if len(line) > 1 && line[0] == escapeSigil && isSigil(line[1]) {
			lines[i] = line[1:]
		}
	}
	renderLines(br, f.Indent, lines)
	return nil
}

func renderJavascriptFilter(c *Compiler, br *ByteRenderer, f *Filter) error {
	q := string(c.attrWrapper)
	br.Renderln(f.Indent, "<script type=", q, "text/javascript", q, ">")
	br.Renderln(f.Indent, "// <![CDATA[")
	renderLines(br, f.Indent, dedent(f.Lines))
	br.Renderln(f.Indent, "// ]]>")
	br.Renderln(f.Indent, "</script>")
	return nil
}

func renderCSSFilter(c *Compiler, br *ByteRenderer, f *Filter) error {
	q := string(c.attrWrapper)
	br.Renderln(f.Indent, "<style type=", q, "text/css", q, ">")
	br.Renderln(f.Indent, "/*<![CDATA[*/")
	renderLines(br, f.Indent, dedent(f.Lines))
	br.Renderln(f.Indent, "/*]]>*/")
	br.Renderln(f.Indent, "</style>")
	return nil
}

func renderCDATAFilter(c *Compiler, br *ByteRenderer, f *Filter) error {
	br.Renderln(f.Indent, "<![CDATA[")
	renderLines(br, f.Indent, dedent(f.Lines))
	br.Renderln(f.Indent, "]]>")
	return nil
}

func renderEscapedFilter(c *Compiler, br *ByteRenderer, f *Filter) error {
	lines := dedent(f.Lines)
	for i, line := range lines {
		lines[i] = escapeHTML(line)
	}
	renderLines(br, f.Indent, lines)
	return nil
}

func renderPythonFilter(c *Compiler, br *ByteRenderer, f *Filter) error {
	lines := dedent(f.Lines)
	if len(lines) == 0 {
		return nil
	}

	if c.executor == nil {
		return newError(FilterUnavailableError, f.LineNumber, "python is not available: code execution is not enabled")
	}

	out, err := c.executor.Execute(strings.Join(lines, "\n") + "\n")
	if err != nil {
		e := newError(FilterExecutionError, f.LineNumber, "error whilst executing python filter node: %v", err)
		e.Cause = err
		return e
	}

	renderOutput(br, out)
	return nil
}

// renderWith sends the body of the filter to an external renderer.
// An empty body produces no output and the renderer is not called.
func (c *Compiler) renderWith(br *ByteRenderer, f *Filter, r Renderer, what string) error {
	lines := dedent(f.Lines)
	if len(lines) == 0 {
		return nil
	}

	if r == nil {
		return newError(FilterUnavailableError, f.LineNumber, "%s is not available", what)
	}
	if !r.Available() {
		return newError(FilterUnavailableError, f.LineNumber, "%s is not available", r.Name())
	}

	out, err := r.Render(strings.Join(lines, "\n") + "\n")
	if err != nil {
		e := newError(FilterExecutionError, f.LineNumber, "error whilst executing %s filter node: %v", f.Name, err)
		e.Cause = err
		return e
	}

	renderOutput(br, out)
	return nil
}

// renderOutput writes the text produced by a collaborator, without its trailing newlines.
func renderOutput(br *ByteRenderer, out string) {
	out = strings.TrimRight(out, "\n")
	if len(out) > 0 {
		br.Renderln(out)
	}
}

// renderLines writes each line with the prefix, except blank lines which are written empty.
func renderLines(br *ByteRenderer, prefix string, lines []string) {
	for _, line := range lines {
		if len(line) == 0 {
			br.Renderln()
			continue
		}
		br.Renderln(prefix, line)
	}
}

// dedent removes from every line the indentation of the first non-blank line.
// Blank lines become empty.
func dedent(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}

	var prefix string
	for _, line := range lines {
		if trimmed := strings.TrimLeft(line, " \t"); len(trimmed) > 0 {
			prefix = line[:len(line)-len(trimmed)]
			break
		}
	}

	result := make([]string, len(lines))
	for i, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.HasPrefix(line, prefix) {
			result[i] = line[len(prefix):]
		} else {
			result[i] = strings.TrimLeft(line, " \t")
		}
	}
	return result
}

var htmlEscapes = []struct{ old, new string }{
	{"&", "&amp;"},
	{"<", "&lt;"},
	{">", "&gt;"},
	{`"`, "&#34;"},
	{"'", "&#39;"},
}

// escapeHTML replaces the special HTML characters with their entities in one pass.
func escapeHTML(s string) string {
	b := sliceedit.NewBufferString(s)
	for _, e := range htmlEscapes {
		b.ReplaceAllString(e.old, e.new)
	}
	return b.String()
}
