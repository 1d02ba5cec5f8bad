package haml

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	elementSigil   = '%'
	idSigil        = '#'
	classSigil     = '.'
	commentSigil   = '/'
	directiveSigil = '-'
	variableSigil  = '='
	filterSigil    = ':'
	escapeSigil    = '\\'

	doctypePrefix       = "!!!"
	unescapedVarPrefix  = "!="
	hiddenCommentPrefix = "-#"
)

// NewNode classifies a non-blank line by its leading sigil and builds the
// corresponding node, longest prefix first.
func (p *parser) NewNode(line *Line) (Node, error) {
	content := line.Content
	base := NodeBase{
		Indent:     line.Indent,
		LineNumber: line.LineNumber,
	}

	switch {

	case content[0] == escapeSigil:
		return newEscapedText(base, content), nil

	case strings.HasPrefix(content, doctypePrefix):
		return &Doctype{
			NodeBase: base,
			Token:    strings.TrimSpace(content[len(doctypePrefix):]),
		}, nil

	case strings.HasPrefix(content, unescapedVarPrefix):
		return &Variable{
			NodeBase: base,
			Expr:     strings.TrimSpace(content[len(unescapedVarPrefix):]),
		}, nil

	case strings.HasPrefix(content, hiddenCommentPrefix):
		return &Comment{
			NodeBase: base,
			Text:     strings.TrimSpace(content[len(hiddenCommentPrefix):]),
			Hidden:   true,
		}, nil

	case content[0] == directiveSigil:
		return newDirective(base, content)

	case content[0] == variableSigil && !p.startsMarker(content):
		return &Variable{
			NodeBase: base,
			Expr:     strings.TrimSpace(content[1:]),
			Escape:   true,
		}, nil

	case content[0] == commentSigil:
		return newComment(base, content)

	case content[0] == elementSigil:
		return p.newElement(base, content)

	case (content[0] == idSigil || content[0] == classSigil) && startsName(content[1:]):
		// A '#{' or a lone '.' is text, not an element with an implied div
		return p.newElement(base, content)

	case content[0] == filterSigil && startsName(content[1:]):
		return newFilter(base, content)

	}

	return &PlainText{
		NodeBase: base,
		Text:     content,
	}, nil
}

// newEscapedText builds the text of a line starting with a backslash.
// The backslash is removed when it escapes a sigil, which is then output literally.
// Interpolation markers ('\={x}', '\#{x}') are left for the renderer to unescape.
func newEscapedText(base NodeBase, content string) *PlainText {
	if len(content) > 2 && (content[1] == variableSigil || content[1] == idSigil) && content[2] == '{' {
		return &PlainText{NodeBase: base, Text: content}
	}
	if len(content) > 1 && isSigil(content[1]) {
		return &PlainText{NodeBase: base, Escaped: content[1:2], Text: content[2:]}
	}
	return &PlainText{NodeBase: base, Text: content}
}

// startsMarker returns true if s starts with a '={' interpolation marker
// and the Django inline style is enabled.
func (p *parser) startsMarker(s string) bool {
	return p.djangoInlineStyle && strings.HasPrefix(s, "={")
}

// isSigil returns true if the character has a special meaning at the start of a line.
func isSigil(c byte) bool {
	return strings.IndexByte(`%#./-=:!\`, c) >= 0
}

func newDirective(base NodeBase, content string) (*Directive, error) {
	rest := strings.TrimSpace(content[1:])
	if len(rest) == 0 {
		return nil, structuralError(base.LineNumber, "empty directive")
	}

	keyword, expr, _ := strings.Cut(rest, " ")

	role, err := directiveRole(keyword)
	if err != nil {
		err.(*ParseError).Line = base.LineNumber
		return nil, err
	}

	return &Directive{
		NodeBase: base,
		Keyword:  keyword,
		Expr:     strings.TrimSpace(expr),
		Role:     role,
	}, nil
}

func newComment(base NodeBase, content string) (*Comment, error) {
	rest := content[1:]

	// Conditional comment: /[if IE] text
	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			return nil, structuralError(base.LineNumber, "unterminated conditional comment")
		}
		return &Comment{
			NodeBase:  base,
			Condition: rest[1:end],
			Text:      rest[end+1:],
		}, nil
	}

	return &Comment{
		NodeBase: base,
		Text:     strings.TrimSpace(rest),
	}, nil
}

func newFilter(base NodeBase, content string) (*Filter, error) {
	name := strings.TrimSpace(content[1:])
	if _, ok := filterHandlers[name]; !ok {
		return nil, structuralError(base.LineNumber, "unknown filter ':%s'", name)
	}
	return &Filter{
		NodeBase: base,
		Name:     name,
	}, nil
}

// newElement parses '%tag#id.class1.class2{attrs}/ inline content'.
// The '%tag' part is optional when an id or class is given, and the tag is a div.
func (p *parser) newElement(base NodeBase, content string) (*Element, error) {
	n := &Element{
		NodeBase: base,
		Tag:      "div",
	}

	rest := content
	if rest[0] == elementSigil {
		var tag string
		tag, rest = readName(rest[1:], true)
		if len(tag) == 0 {
			return nil, structuralError(base.LineNumber, "missing tag name after '%c'", elementSigil)
		}
		n.Tag = tag
	}

	// Process the shortcut syntax for id and classes
	for len(rest) > 0 && (rest[0] == idSigil || rest[0] == classSigil) {
		sigil := rest[0]

		var name string
		name, rest = readName(rest[1:], false)
		if len(name) == 0 {
			return nil, structuralError(base.LineNumber, "missing name after '%c'", sigil)
		}

		if sigil == classSigil {
			// The tag may specify more than one class and all are accumulated
			n.Classes = append(n.Classes, name)
		} else if len(n.ID) == 0 {
			// Only the first id shortcut is used, others are ignored
			n.ID = name
		}
	}

	// The attribute literal
	if len(rest) > 0 && rest[0] == '{' {
		end := attrLiteralEnd(rest, 0)
		if end == -1 {
			return nil, newError(AttributeSyntaxError, base.LineNumber, "unmatched '{' in attribute dictionary")
		}

		attrs, err := ParseAttributes(rest[:end])
		if err != nil {
			err.(*ParseError).Line = base.LineNumber
			return nil, err
		}
		n.Attrs = attrs
		rest = rest[end:]
	}

	if len(rest) > 0 && rest[0] == '/' {
		n.SelfClose = true
		rest = strings.TrimSpace(rest[1:])
		if len(rest) > 0 {
			return nil, structuralError(base.LineNumber, "self-closing element '%s' can not have content", n.Tag)
		}
	}

	// The rest of the line is the inline content
	inlineBase := NodeBase{Indent: "", LineNumber: base.LineNumber}
	switch {
	case strings.HasPrefix(rest, unescapedVarPrefix):
		n.Inline = &Variable{NodeBase: inlineBase, Expr: strings.TrimSpace(rest[len(unescapedVarPrefix):])}
	case len(rest) > 0 && rest[0] == variableSigil && !p.startsMarker(rest):
		n.Inline = &Variable{NodeBase: inlineBase, Expr: strings.TrimSpace(rest[1:]), Escape: true}
	default:
		if text := strings.TrimLeft(rest, " \t"); len(text) > 0 {
			n.Inline = &PlainText{NodeBase: inlineBase, Text: text}
		}
	}

	p.log.Debugw("element", "line", base.LineNumber, "tag", n.Tag, "id", n.ID, "classes", n.Classes, "attrs", len(n.Attrs))

	return n, nil
}

// isNameRune returns true for the characters allowed in ids and class names.
// Tag names also accept ':' for XML namespaces.
func isNameRune(r rune, tag bool) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || (tag && r == ':')
}

// startsName returns true if s starts with a character valid in a name.
func startsName(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && isNameRune(r, false)
}

// readName returns the name at the start of s and the rest of s.
func readName(s string, tag bool) (name string, rest string) {
	for i, r := range s {
		if !isNameRune(r, tag) {
			return s[:i], s[i:]
		}
	}
	return s, ""
}
