package haml

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// attrDict is the grammar of an attribute literal, like
// {'id': ('item', '5'), :href => '/', required}
//
//nolint:govet // participle grammar tags are not standard struct tags
type attrDict struct {
	Entries []*attrEntry `parser:"\"{\" ( @@ ( \",\" @@ )* \",\"? )? \"}\""`
}

//nolint:govet // participle grammar tags are not standard struct tags
type attrEntry struct {
	Key   string     `parser:"( @String | @Symbol | @Ident )"`
	Value *attrValue `parser:"( ( \":\" | \"=>\" ) @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type attrValue struct {
	Str    *string  `parser:"  @String"`
	Number *string  `parser:"| @Number"`
	Seq    *attrSeq `parser:"| @@"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type attrSeq struct {
	Open  string   `parser:"@( \"[\" | \"(\" )"`
	Items []string `parser:"( @String ( \",\" @String )* \",\"? )?"`
	Close string   `parser:"@( \"]\" | \")\" )"`
}

// attrLexer defines the tokens of an attribute literal.
// Order matters: a Symbol (:href) must be tried before the ':' separator.
var attrLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(\\.|[^'\\])*'|"(\\.|[^"\\])*"`},
	{Name: "Symbol", Pattern: `:[\p{L}_][\p{L}\p{N}_\-:]*`},
	{Name: "Arrow", Pattern: `=>`},
	{Name: "Number", Pattern: `[0-9]+(\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_\-]*`},
	{Name: "Punct", Pattern: `[{}()\[\],:]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// attrParser is the participle parser for attribute literals.
var attrParser = participle.MustBuild[attrDict](
	participle.Lexer(attrLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ParseAttributes parses an attribute literal, including its braces, into
// the list of attributes in source order.
// When a key is repeated, the last value wins but the key keeps the position
// of its first occurrence.
func ParseAttributes(literal string) ([]Attribute, error) {

	dict, err := attrParser.ParseString("", literal)
	if err != nil {
		return nil, newError(AttributeSyntaxError, 0, "malformed attribute dictionary %s: %v", literal, err)
	}

	var attrs []Attribute
	position := make(map[string]int)

	for _, entry := range dict.Entries {
		attr := Attribute{Key: attrKey(entry.Key)}

		switch {
		case entry.Value == nil:
			attr.Kind = FlagValue
		case entry.Value.Str != nil:
			attr.Kind = StringValue
			attr.Values = []string{unquote(*entry.Value.Str)}
		case entry.Value.Number != nil:
			attr.Kind = StringValue
			attr.Values = []string{*entry.Value.Number}
		case entry.Value.Seq != nil:
			seq := entry.Value.Seq
			switch {
			case seq.Open == "[" && seq.Close == "]":
				attr.Kind = ListValue
			case seq.Open == "(" && seq.Close == ")":
				attr.Kind = TupleValue
			default:
				return nil, newError(AttributeSyntaxError, 0, "malformed attribute dictionary %s: unmatched '%s' for key %s", literal, seq.Open, attr.Key)
			}
			attr.Values = make([]string, 0, len(seq.Items))
			for _, item := range seq.Items {
				attr.Values = append(attr.Values, unquote(item))
			}
		}

		// Duplicated keys are not an error, the last one wins
		if i, ok := position[attr.Key]; ok {
			attrs[i] = attr
			continue
		}
		position[attr.Key] = len(attrs)
		attrs = append(attrs, attr)
	}

	return attrs, nil
}

// attrKey returns the key as written, without quotes or a leading symbol colon.
func attrKey(key string) string {
	switch key[0] {
	case '\'', '"':
		return unquote(key)
	case ':':
		return key[1:]
	}
	return key
}

// unquote removes the quotes of a string token and resolves its escapes.
// Unknown escapes keep their backslash, so '\={x}' survives for the renderer.
func unquote(s string) string {
	s = s[1 : len(s)-1]
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case '\\', '\'', '"':
			sb.WriteByte(s[i])
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// attrLiteralEnd returns the index just after the '}' closing the literal
// which starts at s[start], skipping braces inside quoted strings.
// It returns -1 if the literal is not closed.
func attrLiteralEnd(s string, start int) int {
	depth := 0
	var quote byte

	for i := start; i < len(s); i++ {
		c := s[i]

		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}

	return -1
}
