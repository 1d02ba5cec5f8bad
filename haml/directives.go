package haml

import "strings"

// A DirectiveRole tells how a directive line takes part in block matching.
type DirectiveRole uint32

const (
	// SingleDirective is a directive without a block, like 'load' or 'include'
	SingleDirective DirectiveRole = iota
	// OpenerDirective starts a block which is closed automatically, like 'if' or 'for'
	OpenerDirective
	// ContinuationDirective splits the block of its opener, like 'else' or 'empty'
	ContinuationDirective
	// CloserDirective is an explicit 'end<opener>'
	CloserDirective
)

// blockDirectives maps every keyword opening a block to the continuations it accepts.
var blockDirectives = map[string][]string{
	"for":        {"empty"},
	"if":         {"else", "elif"},
	"ifchanged":  {"else"},
	"ifequal":    {"else"},
	"ifnotequal": {"else"},
	"block":      nil,
	"filter":     nil,
	"autoescape": nil,
	"with":       nil,
	"blocktrans": nil,
	"spaceless":  nil,
	"comment":    nil,
	"cache":      nil,
	"localize":   nil,
	"compress":   nil,
	"verbatim":   nil,
}

const closerPrefix = "end"

// directiveRole classifies a directive keyword.
// It fails for an 'end<x>' keyword where x does not open a block.
func directiveRole(keyword string) (DirectiveRole, error) {
	if _, ok := blockDirectives[keyword]; ok {
		return OpenerDirective, nil
	}

	switch keyword {
	case "else", "elif", "empty":
		return ContinuationDirective, nil
	}

	if strings.HasPrefix(keyword, closerPrefix) && len(keyword) > len(closerPrefix) {
		if _, ok := blockDirectives[keyword[len(closerPrefix):]]; ok {
			return CloserDirective, nil
		}
		return SingleDirective, structuralError(0, "unknown closing directive '%s'", keyword)
	}

	return SingleDirective, nil
}

// terminatorFor returns the keyword closing the block opened by keyword.
func terminatorFor(keyword string) string {
	return closerPrefix + keyword
}

// acceptsContinuation returns true if the continuation can appear in the block opened by opener.
func acceptsContinuation(opener, continuation string) bool {
	for _, c := range blockDirectives[opener] {
		if c == continuation {
			return true
		}
	}
	return false
}

type openDirective struct {
	node  *Directive
	depth int
}

// TagMatcher is the stack of directive blocks which are still open.
// depth is the nesting level of the line, not its amount of whitespace.
type TagMatcher struct {
	stack []openDirective
}

// top returns the innermost open block, or nil if there is none.
func (m *TagMatcher) top() *openDirective {
	if len(m.stack) == 0 {
		return nil
	}
	return &m.stack[len(m.stack)-1]
}

// Unwind closes the blocks nested deeper than depth.
// Their terminators are synthesized by the renderer.
func (m *TagMatcher) Unwind(depth int) {
	for len(m.stack) > 0 && m.stack[len(m.stack)-1].depth > depth {
		m.stack = m.stack[:len(m.stack)-1]
	}
}

// Match updates the stack with a directive found at depth.
// A line which is not a directive is passed as nil.
func (m *TagMatcher) Match(d *Directive, depth int) error {
	m.Unwind(depth)

	if d == nil {
		m.closeSiblings(depth)
		return nil
	}

	switch d.Role {

	case ContinuationDirective:
		top := m.top()
		if top == nil || top.depth != depth || !acceptsContinuation(top.node.Keyword, d.Keyword) {
			return structuralError(d.LineNumber, "unmatched continuation directive '%s'", d.Keyword)
		}
		// The opener stays open, a continuation does not pop
		d.Opener = top.node

	case CloserDirective:
		top := m.top()
		if top == nil || top.depth != depth || terminatorFor(top.node.Keyword) != d.Keyword {
			return structuralError(d.LineNumber, "unmatched closing directive '%s'", d.Keyword)
		}
		m.stack = m.stack[:len(m.stack)-1]

	case OpenerDirective:
		m.closeSiblings(depth)
		m.stack = append(m.stack, openDirective{node: d, depth: depth})

	default:
		m.closeSiblings(depth)

	}

	return nil
}

// closeSiblings closes the block open at depth: a new sibling ends its scope.
func (m *TagMatcher) closeSiblings(depth int) {
	for len(m.stack) > 0 && m.stack[len(m.stack)-1].depth >= depth {
		m.stack = m.stack[:len(m.stack)-1]
	}
}
