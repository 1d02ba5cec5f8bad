package haml

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type compileTest struct {
	name string
	src  string
	want string
	opts []Option
}

func runCompileTests(t *testing.T, tests []compileTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.src, tt.opts...)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want+"\n", got); diff != "" {
				t.Errorf("Compile(%q) mismatch (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func compileError(t *testing.T, src string, opts ...Option) *ParseError {
	t.Helper()
	got, err := Compile(src, opts...)
	require.Error(t, err, "output was %q", got)
	assert.Empty(t, got)

	var pe *ParseError
	require.True(t, errors.As(err, &pe), "error %v is not a *ParseError", err)
	return pe
}

func TestTags(t *testing.T) {
	runCompileTests(t, []compileTest{
		{"namespace", "%fb:tag\n  content", "<fb:tag>\n  content\n</fb:tag>", nil},
		{"empty", "%p", "<p></p>", nil},
		{"void", "%br", "<br />", nil},
		{"void with attributes", "%img{src: '/a.png', alt: ''}", "<img src='/a.png' alt='' />", nil},
		{"forced self-close", "%foo/", "<foo />", nil},
		{"forced self-close with attributes", "%foo{a: 'b'}/", "<foo a='b' />", nil},
		{"inline text", "%p Hello world", "<p>Hello world</p>", nil},
		{"inline text and children", "%p Hello\n  world", "<p>Hello\n  world\n</p>", nil},
		{"nested", "%ul\n  %li one\n  %li two", "<ul>\n  <li>one</li>\n  <li>two</li>\n</ul>", nil},
	})
}

func TestIDsAndClasses(t *testing.T) {
	runCompileTests(t, []compileTest{
		{"id on tag", "%div#someId Some text", "<div id='someId'>Some text</div>", nil},
		{"non-ascii id", "%div#これはテストです test", "<div id='これはテストです'>test</div>", nil},
		{"class on tag", "%div.someClass Some text", "<div class='someClass'>Some text</div>", nil},
		{"class with dash", ".header.span-24.last", "<div class='header span-24 last'></div>", nil},
		{"multiple classes", "%div.someClass.anotherClass Some text", "<div class='someClass anotherClass'>Some text</div>", nil},
		{"class before id", "%div.someClass#someId", "<div id='someId' class='someClass'></div>", nil},
		{"implicit div with id", "#main", "<div id='main'></div>", nil},
		{"first shorthand id wins", "#one#two", "<div id='one'></div>", nil},
		{"literal id wins over shorthand", "#short{'id': 'long'}", "<div id='long'></div>", nil},
		{"last literal id wins", "%div{'id': 'a', 'id': 'b'}", "<div id='b'></div>", nil},
		{"shorthand classes first", ".a.b{'class': 'c'}", "<div class='a b c'></div>", nil},
		{"shorthand and literal list classes", ".a{'class': ['b', 'c']}", "<div class='a b c'></div>", nil},
	})
}

func TestAttributeDictionaries(t *testing.T) {
	runCompileTests(t, []compileTest{
		{"source order",
			"%html{'xmlns':'http://www.w3.org/1999/xhtml', 'xml:lang':'en', 'lang':'en'}",
			"<html xmlns='http://www.w3.org/1999/xhtml' xml:lang='en' lang='en'></html>", nil},
		{"whitespace is ignored", `%form{ id : "myform" }`, "<form id='myform'></form>", nil},
		{"ruby style", "%a{:href => '/'}", "<a href='/'></a>", nil},
		{"non-ascii values", "%a{'href':'', 'title':'링크(Korean)'} Some Link", "<a href='' title='링크(Korean)'>Some Link</a>", nil},
		{"numbers", "%td{colspan: 2}", "<td colspan='2'></td>", nil},
	})
}

func TestBooleanAttributes(t *testing.T) {
	runCompileTests(t, []compileTest{
		{"alone", "%input{required}", "<input required />", nil},
		{"first", "%input{required, a: 'b'}", "<input required a='b' />", nil},
		{"middle", "%input{a: 'b', required, b: 'c'}", "<input a='b' required b='c' />", nil},
		{"last", "%input{a: 'b', required}", "<input a='b' required />", nil},
		{"several", "%input{checked, required, visible}", "<input checked required visible />", nil},
	})
}

func TestAttributeValuesAsTuplesAndLists(t *testing.T) {
	runCompileTests(t, []compileTest{
		{"id tuple", "%div{'id':('itemType', '5')}", "<div id='itemType_5'></div>", nil},
		{"lists",
			"%div{'id':['Article','1'], 'class':['article','entry','visible']} Booyaka",
			"<div id='Article_1' class='article entry visible'>Booyaka</div>", nil},
		{"tuples",
			"%div{'id': ('article', '3'), 'class': ('newest', 'urgent')} Content",
			"<div id='article_3' class='newest urgent'>Content</div>", nil},
		{"other keys join with space", "%div{'data-x': ['a', 'b']}", "<div data-x='a b'></div>", nil},
	})
}

func TestComments(t *testing.T) {
	runCompileTests(t, []compileTest{
		{"html comment", "/ some comment", "<!-- some comment -->", nil},
		{"hidden comment hides children", "\n-# My comment\n  #my_div\n    my text\ntest", "test", nil},
		{"block comment", "/\n  %p hi", "<!--\n  <p>hi</p>\n-->", nil},
		{"conditional", "/[if IE] You use a shitty browser", "<!--[if IE]> You use a shitty browser<![endif]-->", nil},
		{"conditional block",
			"/[if IE]\n  %h1 You use a shitty browser",
			"<!--[if IE]>\n  <h1>You use a shitty browser</h1>\n<![endif]-->", nil},
		{"conditional with tabs",
			"/[if lte IE 7]\n\ttest\n#test",
			"<!--[if lte IE 7]>\n\ttest\n<![endif]-->\n<div id='test'></div>", nil},
	})
}

func TestDjangoVariables(t *testing.T) {
	runCompileTests(t, []compileTest{
		{"on tag", "%div= story.tease", "<div>{{ story.tease }}</div>", nil},
		{"standalone", "= story.tease", "{{ story.tease }}", nil},
		{"unescaped", "!= story.body", "{{ story.body|safe }}", nil},
		{"unescaped on tag", "%div!= story.body", "<div>{{ story.body|safe }}</div>", nil},
		{"inline markers",
			"={greeting} #{name}, how are you ={date}?",
			"{{ greeting }} {{ name }}, how are you {{ date }}?", nil},
		{"hash marker", "#{name}, how are you?", "{{ name }}, how are you?", nil},
		{"marker in tag text", "%h1 Hello, #{person.name}, how are you?", "<h1>Hello, {{ person.name }}, how are you?</h1>", nil},
		{"django filters", `={value|center:"15"}`, `{{ value|center:"15" }}`, nil},
		{"in attribute value", "%a{'b': '={greeting} test'} blah", "<a b='{{ greeting }} test'>blah</a>", nil},
		{"in id", "%div{'id':'package_={object.id}'}", "<div id='package_{{ object.id }}'></div>", nil},
		{"in class", "%div{'class':'package_={object.id}'}", "<div class='package_{{ object.id }}'></div>", nil},
		{"escaped in attribute",
			`%a{'b': '\\={greeting} test', title: "It can't be removed"} blah`,
			`<a b='={greeting} test' title='It can\'t be removed'>blah</a>`, nil},
		{"escaped in text", `%h1 Hello, \#{name}, how are you ={ date }?`, "<h1>Hello, #{name}, how are you {{ date }}?</h1>", nil},
		{"escaped line", `\={name}, how are you?`, "={name}, how are you?", nil},
		{"escaped hash line", `\#{name}, how are you?`, "#{name}, how are you?", nil},
		{"django style disabled",
			"Dear ={title} #{name} href={{ var }}",
			"Dear ={title} {{ name }} href={{ var }}",
			[]Option{WithDjangoInlineStyle(false)}},
		{"variable line when django style is disabled",
			"={title}", "{{ {title} }}",
			[]Option{WithDjangoInlineStyle(false)}},
		{"escaped line when django style is disabled",
			`\={name}, how are you?`, "={name}, how are you?",
			[]Option{WithDjangoInlineStyle(false)}},
		{"escaped in text when django style is disabled",
			`%p a \={x} b`, "<p>a ={x} b</p>",
			[]Option{WithDjangoInlineStyle(false)}},
		{"escaped in attribute when django style is disabled",
			`%a{'b': '\\={x}'}`, "<a b='={x}'></a>",
			[]Option{WithDjangoInlineStyle(false)}},
	})
}

func TestDjangoTags(t *testing.T) {
	runCompileTests(t, []compileTest{
		{"if else",
			"- if something\n   %p hello\n- else\n   %p goodbye",
			"{% if something %}\n   <p>hello</p>\n{% else %}\n   <p>goodbye</p>\n{% endif %}", nil},
		{"with", "- with thing1 as another\n  stuff", "{% with thing1 as another %}\n  stuff\n{% endwith %}", nil},
		{"sibling blocks",
			"- with context\n  hello\n- with other_context\n  goodbye",
			"{% with context %}\n  hello\n{% endwith %}\n{% with other_context %}\n  goodbye\n{% endwith %}", nil},
		{"if elif else",
			"- if a\n  one\n- elif b\n  two\n- else\n  three",
			"{% if a %}\n  one\n{% elif b %}\n  two\n{% else %}\n  three\n{% endif %}", nil},
		{"for empty",
			"%ul\n  - for x in xs\n    %li= x\n  - empty\n    %li none",
			"<ul>\n  {% for x in xs %}\n    <li>{{ x }}</li>\n  {% empty %}\n    <li>none</li>\n  {% endfor %}\n</ul>", nil},
		{"block without children", "- block content", "{% block content %}\n{% endblock %}", nil},
		{"single directive", "- load static\n- csrf_token", "{% load static %}\n{% csrf_token %}", nil},
		{"explicit closer is not repeated", "- if a\n  one\n- endif\ntext", "{% if a %}\n  one\n{% endif %}\ntext", nil},
		{"nested blocks",
			"- for a in b\n  - if a\n    x\n  y",
			"{% for a in b %}\n  {% if a %}\n    x\n  {% endif %}\n  y\n{% endfor %}", nil},
	})
}

func TestDirectiveErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"lone closer", "- endfor", "unmatched closing directive 'endfor'"},
		{"wrong closer", "- if a\n  x\n- endfor", "unmatched closing directive 'endfor'"},
		{"unknown closer", "- endfoo", "unknown closing directive 'endfoo'"},
		{"lone continuation", "- else", "unmatched continuation directive 'else'"},
		{"continuation of wrong block", "- with a\n  x\n- else", "unmatched continuation directive 'else'"},
		{"continuation after text", "- if a\n  x\ntext\n- else", "unmatched continuation directive 'else'"},
		{"empty directive", "-", "empty directive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := compileError(t, tt.src)
			assert.Equal(t, StructuralError, pe.Kind)
			assert.Contains(t, pe.Error(), tt.msg)
		})
	}
}

func TestPlainText(t *testing.T) {
	runCompileTests(t, []compileTest{
		{"line", "This should be plain text", "This should be plain text", nil},
		{"indented", "This should be plain text\n    This should be indented", "This should be plain text\n    This should be indented", nil},
		{"escaped sigil", `\= Escaped`, "= Escaped", nil},
		{"escaped percent", `\%p not a tag`, "%p not a tag", nil},
		{"backslash before text", `\hello`, `\hello`, nil},
		{"lone dot", ". and more", ". and more", nil},
	})
}

func TestPlainFilter(t *testing.T) {
	runCompileTests(t, []compileTest{
		{"with indentation",
			":plain\n    -This should be plain text\n    .This should be more\n      This should be indented",
			"-This should be plain text\n.This should be more\n  This should be indented", nil},
		{"with no children", ":plain\nNothing", "Nothing", nil},
		{"with escaped back slash", ":plain\n  \\Something", "\\Something", nil},
		{"escaped sigil", ":plain\n  \\%p", "%p", nil},
		{"no interpolation", ":plain\n  #{name}", "#{name}", nil},
		{"nested keeps the filter indentation",
			"%div\n  :plain\n    one\n\n      two\n  %p",
			"<div>\n  one\n\n    two\n  <p></p>\n</div>", nil},
	})
}

func TestOtherBuiltinFilters(t *testing.T) {
	runCompileTests(t, []compileTest{
		{"javascript",
			":javascript\n  alert('hi');",
			"<script type='text/javascript'>\n// <![CDATA[\nalert('hi');\n// ]]>\n</script>", nil},
		{"css",
			":css\n  p { color: red; }",
			"<style type='text/css'>\n/*<![CDATA[*/\np { color: red; }\n/*]]>*/\n</style>", nil},
		{"cdata", ":cdata\n  raw <data>", "<![CDATA[\nraw <data>\n]]>", nil},
		{"escaped", ":escaped\n  <b>\"A & B\"</b>", "&lt;b&gt;&#34;A &amp; B&#34;&lt;/b&gt;", nil},
	})
}

func TestDoctypes(t *testing.T) {
	runCompileTests(t, []compileTest{
		{"html5", "!!! 5", "<!DOCTYPE html>", nil},
		{"default", "!!!", `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">`, nil},
		{"strict", "!!! Strict", `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">`, nil},
		{"xml", "!!! XML", "<?xml version='1.0' encoding='utf-8' ?>", nil},
		{"xml with encoding", "!!! XML iso-8859-1", "<?xml version='1.0' encoding='iso-8859-1' ?>", nil},
		{"unknown falls back to html5", "!!! foo", "<!DOCTYPE html>", nil},
	})
}

func TestAttrWrapper(t *testing.T) {
	src := `
%html{'xmlns':'http://www.w3.org/1999/xhtml', 'xml:lang':'en', 'lang':'en'}
  %body#main
    %div.wrap
      %a{:href => '/'}
:javascript`
	want := `<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="en" lang="en">
  <body id="main">
    <div class="wrap">
      <a href="/"></a>
    </div>
  </body>
</html>
<script type="text/javascript">
// <![CDATA[
// ]]>
</script>`

	runCompileTests(t, []compileTest{
		{"double quotes", src, want, []Option{WithAttrWrapper('"')}},
		{"escapes the wrapper", `%a{title: 'say "hi"'}`, `<a title="say \"hi\""></a>`, []Option{WithAttrWrapper('"')}},
	})

	_, err := New(WithAttrWrapper('`'))
	assert.Error(t, err)
}

func TestIndentationErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"inconsistent", "%div\n    %p\n  %p", 3, "inconsistent indentation"},
		{"mixed siblings", "%div\n  %p\n \t%p", 3, "mixed indentation"},
		{"mixed nesting", "%div\n\t%p\n\t  %p\n  \t  %p", 4, "mixed indentation"},
		{"nested in doctype", "!!! 5\n  %p", 2, "illegal nesting"},
		{"nested in self-closing tag", "%foo/\n  %p", 2, "illegal nesting"},
		{"content after self-close", "%foo/ text", 1, "can not have content"},
		{"nested in closer", "- if a\n  x\n- endif\n  y", 4, "closing directive"},
		{"error in hidden comment", "-# hidden\n  %div{'a' 'b'}", 2, "malformed attribute dictionary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := compileError(t, tt.src)
			assert.Equal(t, tt.line, pe.Line)
			assert.Contains(t, pe.Msg, tt.msg)
		})
	}
}

func TestUnknownFilter(t *testing.T) {
	pe := compileError(t, "%div\n  :foo\n    bar")
	assert.Equal(t, StructuralError, pe.Kind)
	assert.Equal(t, 2, pe.Line)
	assert.Contains(t, pe.Msg, "unknown filter")
}

func TestAttributeSyntaxError(t *testing.T) {
	for _, src := range []string{
		"%div{'a': 'b'",
		"%div{'a': ('b', 'c']}",
		"%div{'a' 'b'}",
		"%div{'a': b}",
	} {
		pe := compileError(t, src)
		assert.Equal(t, AttributeSyntaxError, pe.Kind, src)
		assert.Equal(t, 1, pe.Line, src)
	}
}

func TestOutputEndsWithOneNewline(t *testing.T) {
	for _, src := range []string{"", "\n\n", "%p", "%p\n\n\n", ":plain\n  a\n\n\n"} {
		got, err := Compile(src)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(got, "\n"), "%q", got)
		assert.False(t, strings.HasSuffix(got, "\n\n"), "%q", got)
	}
}

func TestConcurrentUse(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	src := "- if a\n  %p{class: 'x'}= a\n- else\n  #{b}"
	want, err := c.Process(src)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Process(src)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestHiddenCommentEndsBlock(t *testing.T) {
	// Any line at the level of a block ends it, hidden comments included
	pe := compileError(t, "- if a\n  x\n-# note\n- else\n  y")
	assert.Equal(t, StructuralError, pe.Kind)
	assert.Equal(t, 4, pe.Line)
	assert.Equal(t, "unmatched continuation directive 'else'", pe.Msg)

	// Nested one level deeper, the comment belongs to the block
	runCompileTests(t, []compileTest{
		{"nested hidden comment",
			"- if a\n  x\n  -# note\n- else\n  y",
			"{% if a %}\n  x\n{% else %}\n  y\n{% endif %}", nil},
	})
}
