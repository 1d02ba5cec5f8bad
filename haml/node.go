package haml

import (
	"strconv"
	"strings"
)

// A NodeType is the type of a Node.
type NodeType uint32

const (
	ErrorNode NodeType = iota
	ElementNode
	PlainTextNode
	VariableNode
	CommentNode
	DoctypeNode
	DirectiveNode
	FilterNode
)

// String returns a string representation of the NodeType.
func (n NodeType) String() string {
	switch n {
	case ErrorNode:
		return "Error Node"
	case ElementNode:
		return "Element Node"
	case PlainTextNode:
		return "Plain Text Node"
	case VariableNode:
		return "Variable Node"
	case CommentNode:
		return "Comment Node"
	case DoctypeNode:
		return "Doctype Node"
	case DirectiveNode:
		return "Directive Node"
	case FilterNode:
		return "Filter Node"
	}
	return "Invalid Node (" + strconv.Itoa(int(n)) + ")"
}

// Node is an element of the tree built from a source document.
// The set of implementations is closed: *Element, *PlainText, *Variable,
// *Comment, *Doctype, *Directive and *Filter.
type Node interface {
	Type() NodeType
	base() *NodeBase
}

// NodeBase holds what every node has in common.
type NodeBase struct {
	// Indent is the leading whitespace of the source line, reproduced verbatim on output
	Indent     string
	LineNumber int
	Children   []Node
}

func (b *NodeBase) base() *NodeBase { return b }

// AppendChild adds child as the last child of the node.
func (b *NodeBase) AppendChild(child Node) {
	b.Children = append(b.Children, child)
}

// LastChild returns the last child of the node, or nil if it has none.
func (b *NodeBase) LastChild() Node {
	if len(b.Children) == 0 {
		return nil
	}
	return b.Children[len(b.Children)-1]
}

// Element is an HTML tag, written as %tag or implied by #id and .class.
type Element struct {
	NodeBase
	Tag     string
	ID      string
	Classes []string
	Attrs   []Attribute

	// SelfClose is set by a trailing '/' after the tag spec
	SelfClose bool

	// Inline is the content written on the same line as the tag: a *PlainText or a *Variable
	Inline Node
}

// PlainText is literal text. Text may contain interpolation markers.
// Escaped holds a leading sigil which was escaped with a backslash and is output as is.
type PlainText struct {
	NodeBase
	Escaped string
	Text    string
}

// Variable is an expression rendered as a variable output directive.
type Variable struct {
	NodeBase
	Expr   string
	Escape bool
}

// Comment is an HTML comment (/) or a hidden comment (-#).
type Comment struct {
	NodeBase
	Condition string
	Text      string
	Hidden    bool
}

// Doctype is a !!! line.
type Doctype struct {
	NodeBase
	Token string
}

// Directive is a '- keyword expression' line.
type Directive struct {
	NodeBase
	Keyword string
	Expr    string
	Role    DirectiveRole

	// Opener is the block a continuation (else, elif, empty) belongs to
	Opener *Directive
}

// Filter is a :name line and the raw lines nested under it.
type Filter struct {
	NodeBase
	Name  string
	Lines []string
}

func (*Element) Type() NodeType   { return ElementNode }
func (*PlainText) Type() NodeType { return PlainTextNode }
func (*Variable) Type() NodeType  { return VariableNode }
func (*Comment) Type() NodeType   { return CommentNode }
func (*Doctype) Type() NodeType   { return DoctypeNode }
func (*Directive) Type() NodeType { return DirectiveNode }
func (*Filter) Type() NodeType    { return FilterNode }

// An AttrKind is the shape of the value of an attribute.
type AttrKind uint32

const (
	StringValue AttrKind = iota
	ListValue
	TupleValue
	FlagValue
)

// An Attribute is a key with its value(s), in the order written in the source.
// Flag attributes have no values.
type Attribute struct {
	Key    string
	Kind   AttrKind
	Values []string
}

// Value joins the values of the attribute. Lists and tuples for the 'id' key
// are joined with '_', any other key with a space.
func (a Attribute) Value() string {
	sep := " "
	if a.Key == "id" {
		sep = "_"
	}
	return strings.Join(a.Values, sep)
}

var VoidElements = []string{
	"area", "base", "br", "col", "embed", "hr", "img", "input", "link", "meta", "source", "track", "wbr",
}

// isVoidElement returns true if the tag is in the set of 'void' tags
func isVoidElement(tagName string) bool {
	for _, el := range VoidElements {
		if tagName == el {
			return true
		}
	}
	return false
}
