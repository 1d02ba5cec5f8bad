package haml

import (
	"bytes"
	"strings"
)

// ByteRenderer accumulates the output of the compiler.
type ByteRenderer struct {
	buf bytes.Buffer
}

// Render writes the strings one after another.
func (br *ByteRenderer) Render(s ...string) {
	for _, v := range s {
		br.buf.WriteString(v)
	}
}

// Renderln writes the strings followed by a newline.
func (br *ByteRenderer) Renderln(s ...string) {
	br.Render(s...)
	br.buf.WriteByte('\n')
}

// String returns the accumulated output.
func (br *ByteRenderer) String() string {
	return br.buf.String()
}

// Process compiles src and returns the output, which always ends with exactly one newline.
// On error there is no usable output.
func (c *Compiler) Process(src string) (string, error) {
	p := newParser(src, c.djangoInlineStyle, c.log)

	nodes, err := p.Parse()
	if err != nil {
		return "", err
	}

	br := &ByteRenderer{}
	if err := c.renderNodes(br, nodes); err != nil {
		return "", err
	}

	return strings.TrimRight(br.String(), "\n") + "\n", nil
}

// renderNodes renders a list of siblings depth-first.
func (c *Compiler) renderNodes(br *ByteRenderer, nodes []Node) error {
	for i, n := range nodes {
		var next Node
		if i+1 < len(nodes) {
			next = nodes[i+1]
		}
		if err := c.renderNode(br, n, next); err != nil {
			return err
		}
	}
	return nil
}

// renderNode renders a node and its children. next is the following sibling, or nil.
func (c *Compiler) renderNode(br *ByteRenderer, node Node, next Node) error {

	switch n := node.(type) {

	case *Element:
		return c.renderElement(br, n)

	case *PlainText:
		br.Renderln(n.Indent, n.Escaped, c.interpolate(n.Text, 0))
		return c.renderNodes(br, n.Children)

	case *Variable:
		br.Renderln(n.Indent, variable(n.Expr, n.Escape))
		return c.renderNodes(br, n.Children)

	case *Comment:
		return c.renderComment(br, n)

	case *Doctype:
		br.Renderln(n.Indent, DoctypeDeclaration(n.Token, c.attrWrapper))
		return nil

	case *Directive:
		return c.renderDirective(br, n, next)

	case *Filter:
		return c.renderFilter(br, n)

	}

	return structuralError(node.base().LineNumber, "invalid node type %T", node)
}

func (c *Compiler) renderElement(br *ByteRenderer, n *Element) error {
	startTag := "<" + n.Tag + c.renderAttributes(n)
	hasChildren := len(n.Children) > 0

	if !hasChildren && n.Inline == nil && (n.SelfClose || isVoidElement(n.Tag)) {
		br.Renderln(n.Indent, startTag, " />")
		return nil
	}

	var inline string
	switch v := n.Inline.(type) {
	case *Variable:
		inline = variable(v.Expr, v.Escape)
	case *PlainText:
		inline = c.interpolate(v.Text, 0)
	}

	if !hasChildren {
		br.Renderln(n.Indent, startTag, ">", inline, "</", n.Tag, ">")
		return nil
	}

	br.Renderln(n.Indent, startTag, ">", inline)
	if err := c.renderNodes(br, n.Children); err != nil {
		return err
	}
	br.Renderln(n.Indent, "</", n.Tag, ">")

	return nil
}

// renderAttributes returns the attributes of the element, each preceded by a space.
// The id goes first, then the class, then the rest in source order.
// An id in the attribute literal replaces the '#id' shorthand, while classes
// are accumulated, shorthand classes first.
func (c *Compiler) renderAttributes(n *Element) string {
	var sb strings.Builder
	q := string(c.attrWrapper)

	writeAttr := func(key, value string) {
		sb.WriteString(" " + key + "=" + q + c.interpolate(value, c.attrWrapper) + q)
	}

	id := n.ID
	classes := append([]string(nil), n.Classes...)
	var rest []Attribute

	for _, a := range n.Attrs {
		switch {
		case a.Kind == FlagValue:
			rest = append(rest, a)
		case a.Key == "id":
			id = a.Value()
		case a.Key == "class":
			classes = append(classes, a.Value())
		default:
			rest = append(rest, a)
		}
	}

	if len(id) > 0 {
		writeAttr("id", id)
	}
	if len(classes) > 0 {
		writeAttr("class", strings.Join(classes, " "))
	}

	for _, a := range rest {
		if a.Kind == FlagValue {
			sb.WriteString(" " + a.Key)
			continue
		}
		writeAttr(a.Key, a.Value())
	}

	return sb.String()
}

func (c *Compiler) renderComment(br *ByteRenderer, n *Comment) error {

	// Hidden comments and their children produce nothing
	if n.Hidden {
		return nil
	}

	hasChildren := len(n.Children) > 0

	if len(n.Condition) > 0 {
		startTag := "<!--[" + n.Condition + "]>"
		if !hasChildren {
			br.Renderln(n.Indent, startTag, n.Text, "<![endif]-->")
			return nil
		}
		br.Renderln(n.Indent, startTag, n.Text)
		if err := c.renderNodes(br, n.Children); err != nil {
			return err
		}
		br.Renderln(n.Indent, "<![endif]-->")
		return nil
	}

	if !hasChildren {
		br.Renderln(n.Indent, "<!-- ", n.Text, " -->")
		return nil
	}

	if len(n.Text) > 0 {
		br.Renderln(n.Indent, "<!-- ", n.Text)
	} else {
		br.Renderln(n.Indent, "<!--")
	}
	if err := c.renderNodes(br, n.Children); err != nil {
		return err
	}
	br.Renderln(n.Indent, "-->")

	return nil
}

// renderDirective renders a directive and its children. The block of an opener
// is terminated after its last continuation, which is the first following
// sibling that does not continue it.
func (c *Compiler) renderDirective(br *ByteRenderer, n *Directive, next Node) error {
	if len(n.Expr) > 0 {
		br.Renderln(n.Indent, "{% ", n.Keyword, " ", n.Expr, " %}")
	} else {
		br.Renderln(n.Indent, "{% ", n.Keyword, " %}")
	}

	if err := c.renderNodes(br, n.Children); err != nil {
		return err
	}

	var opener *Directive
	switch n.Role {
	case OpenerDirective:
		opener = n
	case ContinuationDirective:
		opener = n.Opener
	default:
		return nil
	}

	if d, ok := next.(*Directive); ok && d.Role == ContinuationDirective && d.Opener == opener {
		return nil
	}

	br.Renderln(n.Indent, "{% ", terminatorFor(opener.Keyword), " %}")
	return nil
}
