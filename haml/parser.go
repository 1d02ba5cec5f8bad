package haml

import (
	"strings"

	"go.uber.org/zap"
)

// frame is an open level of the tree being built.
type frame struct {
	// parent receives the nodes of this level
	parent *NodeBase

	// indent is the indentation of the parent node, -1 for the root
	indent int

	// childIndent is the indentation of the children, -1 until the first child is seen.
	// childPrefix is the exact whitespace of the first child, which every sibling must repeat.
	childIndent int
	childPrefix string

	// afterCloser is true when the previous sibling was an explicit closing directive
	afterCloser bool
}

// parser builds the node tree of one source document.
// It is created for each compilation and is not safe for concurrent use.
type parser struct {
	r       *lineReader
	log     *zap.SugaredLogger
	matcher TagMatcher
	stack   []*frame

	// djangoInlineStyle makes a line starting with '={' text with markers instead of a variable
	djangoInlineStyle bool
}

func newParser(src string, djangoInlineStyle bool, log *zap.SugaredLogger) *parser {
	return &parser{
		r:                 newLineReader(src),
		log:               log,
		djangoInlineStyle: djangoInlineStyle,
	}
}

// Parse reads the whole source and returns the top-level nodes.
func (p *parser) Parse() ([]Node, error) {
	root := &NodeBase{}
	p.stack = []*frame{{parent: root, indent: -1, childIndent: -1}}

	for {
		line, err := p.r.ReadLine()
		if err != nil {
			return nil, err
		}

		// Stop at the end of the source
		if line == nil {
			break
		}

		// Blank lines do not take part in the structure
		if line.Blank() {
			continue
		}

		if err := p.parseLine(line); err != nil {
			return nil, err
		}
	}

	return root.Children, nil
}

// parseLine places a non-blank line in the tree.
func (p *parser) parseLine(line *Line) error {
	indent := len(line.Indent)

	// Close the levels which are at least as indented as the line
	for indent <= p.top().indent {
		p.stack = p.stack[:len(p.stack)-1]
	}

	top := p.top()

	switch {
	case top.childIndent == -1:
		// The first line of the level determines its indentation
		top.childIndent = indent
		top.childPrefix = line.Indent

	case indent == top.childIndent:
		// A sibling must use exactly the same whitespace
		if line.Indent != top.childPrefix {
			return structuralError(line.LineNumber, "mixed indentation: tabs and spaces do not match the previous lines")
		}

	case indent > top.childIndent:
		// A more indented line starts the children of the last node
		if err := p.openChildren(line); err != nil {
			return err
		}
		top = p.top()

	default:
		return structuralError(line.LineNumber, "inconsistent indentation: %d does not match any enclosing level", indent)
	}

	node, err := p.NewNode(line)
	if err != nil {
		return err
	}

	// The nesting level of the line, zero for top-level nodes
	depth := len(p.stack) - 1

	d, _ := node.(*Directive)
	if err := p.matcher.Match(d, depth); err != nil {
		return err
	}

	p.log.Debugw("node", "line", line.LineNumber, "type", node.Type(), "depth", depth)

	// Explicit closers are validated by the matcher but do not appear in the tree.
	// The renderer synthesizes the terminator of every block.
	if d != nil && d.Role == CloserDirective {
		top.afterCloser = true
		return nil
	}

	top.afterCloser = false
	top.parent.AppendChild(node)

	// The lines nested under a filter are its raw content
	if f, ok := node.(*Filter); ok {
		return p.readFilterBody(f, indent)
	}

	return nil
}

// openChildren pushes a new level for the children of the last node of the current level.
func (p *parser) openChildren(line *Line) error {
	top := p.top()

	if top.afterCloser {
		return structuralError(line.LineNumber, "a closing directive can not have nested content")
	}

	last := top.parent.LastChild()
	if last == nil {
		return structuralError(line.LineNumber, "inconsistent indentation: nested content without a parent")
	}

	switch n := last.(type) {
	case *Doctype:
		return structuralError(line.LineNumber, "illegal nesting: nesting within a doctype is not allowed")
	case *Element:
		if n.SelfClose {
			return structuralError(line.LineNumber, "illegal nesting: nesting within a self-closing tag is not allowed")
		}
	}

	if !strings.HasPrefix(line.Indent, top.childPrefix) {
		return structuralError(line.LineNumber, "mixed indentation: tabs and spaces do not match the enclosing lines")
	}

	p.stack = append(p.stack, &frame{
		parent:      last.base(),
		indent:      top.childIndent,
		childIndent: len(line.Indent),
		childPrefix: line.Indent,
	})

	return nil
}

// readFilterBody consumes the lines nested under a filter node, blank lines included.
// The lines are kept raw, and trailing blank lines are dropped.
func (p *parser) readFilterBody(f *Filter, indent int) error {
	for {
		line, err := p.r.ReadLine()
		if err != nil {
			return err
		}
		if line == nil {
			break
		}

		// The first line which is not more indented than the filter ends the body
		if !line.Blank() && len(line.Indent) <= indent {
			p.r.UnreadLine(line)
			break
		}

		f.Lines = append(f.Lines, line.Raw)
	}

	for len(f.Lines) > 0 && len(strings.TrimSpace(f.Lines[len(f.Lines)-1])) == 0 {
		f.Lines = f.Lines[:len(f.Lines)-1]
	}

	p.log.Debugw("filter body", "line", f.LineNumber, "filter", f.Name, "lines", len(f.Lines))

	return nil
}

func (p *parser) top() *frame {
	return p.stack[len(p.stack)-1]
}
