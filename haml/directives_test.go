package haml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectiveRole(t *testing.T) {
	tests := []struct {
		keyword string
		want    DirectiveRole
	}{
		{"if", OpenerDirective},
		{"for", OpenerDirective},
		{"with", OpenerDirective},
		{"blocktrans", OpenerDirective},
		{"else", ContinuationDirective},
		{"elif", ContinuationDirective},
		{"empty", ContinuationDirective},
		{"endif", CloserDirective},
		{"endfor", CloserDirective},
		{"endblock", CloserDirective},
		{"load", SingleDirective},
		{"include", SingleDirective},
		{"end", SingleDirective},
	}
	for _, tt := range tests {
		got, err := directiveRole(tt.keyword)
		require.NoError(t, err, tt.keyword)
		assert.Equal(t, tt.want, got, tt.keyword)
	}

	_, err := directiveRole("endfoo")
	assert.Error(t, err)
}

func newDirectiveNode(keyword string, line int) *Directive {
	role, err := directiveRole(keyword)
	if err != nil {
		panic(err)
	}
	return &Directive{
		NodeBase: NodeBase{LineNumber: line},
		Keyword:  keyword,
		Role:     role,
	}
}

func TestTagMatcher(t *testing.T) {
	var m TagMatcher

	ifNode := newDirectiveNode("if", 1)
	require.NoError(t, m.Match(ifNode, 0))
	assert.Equal(t, 1, len(m.stack))
	assert.Same(t, ifNode, m.top().node)

	// Children of the block do not close it
	require.NoError(t, m.Match(nil, 1))
	assert.Equal(t, 1, len(m.stack))

	forNode := newDirectiveNode("for", 3)
	require.NoError(t, m.Match(forNode, 1))
	assert.Equal(t, 2, len(m.stack))

	// A continuation at the level of the if closes the nested for
	elseNode := newDirectiveNode("else", 5)
	require.NoError(t, m.Match(elseNode, 0))
	assert.Equal(t, 1, len(m.stack))
	assert.Same(t, ifNode, elseNode.Opener)

	// The explicit closer pops the block
	require.NoError(t, m.Match(newDirectiveNode("endif", 7), 0))
	assert.Equal(t, 0, len(m.stack))
	assert.Nil(t, m.top())
}

func TestTagMatcherSiblings(t *testing.T) {
	var m TagMatcher

	require.NoError(t, m.Match(newDirectiveNode("with", 1), 0))
	second := newDirectiveNode("with", 3)
	require.NoError(t, m.Match(second, 0))
	assert.Equal(t, 1, len(m.stack))
	assert.Same(t, second, m.top().node)

	// Any other line at the same level closes the block
	require.NoError(t, m.Match(nil, 0))
	assert.Equal(t, 0, len(m.stack))
}

func TestTagMatcherErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup []string
		depth int
		line  string
		msg   string
	}{
		{"closer on empty stack", nil, 0, "endfor", "unmatched closing directive 'endfor'"},
		{"closer for another block", []string{"if"}, 0, "endfor", "unmatched closing directive 'endfor'"},
		{"closer at another level", []string{"if"}, 1, "endif", "unmatched closing directive 'endif'"},
		{"continuation on empty stack", nil, 0, "else", "unmatched continuation directive 'else'"},
		{"continuation of wrong block", []string{"for"}, 0, "elif", "unmatched continuation directive 'elif'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m TagMatcher
			for _, kw := range tt.setup {
				require.NoError(t, m.Match(newDirectiveNode(kw, 1), 0))
			}
			err := m.Match(newDirectiveNode(tt.line, 9), tt.depth)
			require.Error(t, err)
			pe := err.(*ParseError)
			assert.Equal(t, StructuralError, pe.Kind)
			assert.Equal(t, 9, pe.Line)
			assert.Equal(t, tt.msg, pe.Msg)
		})
	}
}
