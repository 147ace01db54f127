package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	templateLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|%|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=:;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	tokenNames       = invertSymbols(templateLexer.Symbols())
	newlineTokenType = mustTokenType("Newline")
	lbraceTokenType  = mustTokenType("LBrace")
	rbraceTokenType  = mustTokenType("RBrace")
	symbolTokenType  = mustTokenType("Symbol")
	stringTokenType  = mustTokenType("String")

	templateParser = participle.MustBuild[Template](
		participle.Lexer(templateLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Template is the root node of a page template file.
//
//	template Fragments v1 {
//	  meta { title: "Airtable Records" }
//	  page A5 landscape margin 10mm {
//	    content size 12pt line-height 5mm max-length 2000
//	  }
//	}
type Template struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'template' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section is one of meta/fonts/page.
type Section struct {
	Meta  *MetaSection  `parser:"  @@"`
	Fonts *FontsSection `parser:"| @@"`
	Page  *PageSection  `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Fonts != nil:
		return "fonts"
	case s.Page != nil:
		return "page"
	default:
		return "unknown"
	}
}

// MetaSection holds document info assignments (title, author, subject, keywords).
type MetaSection struct {
	Entries []*Assignment `parser:"'meta' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// FontsSection maps font styles (regular/bold/italic/bold-italic) to TTF paths.
type FontsSection struct {
	Entries []*Assignment `parser:"'fonts' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// PageSection describes page geometry and the per-record elements.
type PageSection struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Size     string         `parser:"'page' @Ident"`
	Params   []*Lexeme      `parser:"@@*"`
	Elements []*Element     `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Element is a page element line such as `title size 14pt`.
type Element struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name string         `parser:"@Ident"`
	Args []*Lexeme      `parser:"@@*"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Key   string `parser:"@Ident"`
	Value *Value `parser:"':' Newline* @@"`
}

// Value is a scalar or a list.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
	Array  *ArrayValue    `parser:"| @@"`
}

// Text flattens scalar values to their string form; arrays yield "".
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Strings returns array items as strings, or the scalar as a one-element slice.
func (v *Value) Strings() []string {
	if v == nil {
		return nil
	}
	if v.Array == nil {
		if s := v.Text(); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(v.Array.Values))
	for _, item := range v.Array.Values {
		if s := item.Text(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ArrayValue captures `[ ... ]` lists.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Lexeme captures a single token used as an element or page argument.
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse implements participle.Parseable so Lexeme can act as a grammar atom.
// Arguments run until the end of the line, a brace or a semicolon.
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	tok := lex.Peek()
	if shouldStopArg(tok) {
		return participle.NextMatch
	}
	next := lex.Next()
	lexeme, err := newLexeme(*next)
	if err != nil {
		return err
	}
	*l = lexeme
	return nil
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a template from an io.Reader.
func Parse(r io.Reader) (*Template, error) {
	return templateParser.Parse("", r)
}

// ParseString parses a template from a string.
func ParseString(input string) (*Template, error) {
	return templateParser.ParseString("", input)
}

// ParseFile parses a template and reports errors against filename.
func ParseFile(filename string, r io.Reader) (*Template, error) {
	return templateParser.Parse(filename, r)
}

// Page returns the first page section, or nil.
func (t *Template) Page() *PageSection {
	if t == nil {
		return nil
	}
	for _, s := range t.Sections {
		if s.Page != nil {
			return s.Page
		}
	}
	return nil
}

// Element returns the first element called name.
func (p *PageSection) Element(name string) *Element {
	if p == nil {
		return nil
	}
	for _, el := range p.Elements {
		if el.Name == name {
			return el
		}
	}
	return nil
}

// Attrs reads element arguments as `key value` pairs. A key followed by
// another key (or by nothing) is a flag and maps to "true".
func (e *Element) Attrs() map[string]string {
	out := map[string]string{}
	if e == nil {
		return out
	}
	for i := 0; i < len(e.Args); i++ {
		key := e.Args[i]
		if key.Type != "Ident" {
			continue
		}
		if i+1 < len(e.Args) && !isFlagTerminator(e.Args[i+1]) {
			out[key.Value] = e.Args[i+1].Value
			i++
			continue
		}
		out[key.Value] = "true"
	}
	return out
}

// 值可以是数字、字符串、颜色，也可以是 true/false 等标识符；
// 只有形如下一个键名的标识符才视为开关结束。
func isFlagTerminator(l *Lexeme) bool {
	return l.Type == "Ident" && flagKeys[l.Value]
}

var flagKeys = map[string]bool{
	"bold":        true,
	"italic":      true,
	"size":        true,
	"color":       true,
	"top":         true,
	"width":       true,
	"step":        true,
	"line-height": true,
	"max-length":  true,
	"format":      true,
	"label":       true,
	"hidden":      true,
}

func shouldStopArg(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tok.Type {
	case newlineTokenType, rbraceTokenType, lbraceTokenType:
		return true
	case symbolTokenType:
		return tok.Value == ";"
	default:
		return false
	}
}

func newLexeme(tok lexer.Token) (Lexeme, error) {
	name, ok := tokenNames[tok.Type]
	if !ok {
		name = fmt.Sprintf("#%d", tok.Type)
	}
	val := tok.Value
	if tok.Type == stringTokenType {
		unquoted, err := strconv.Unquote(tok.Value)
		if err != nil {
			return Lexeme{}, err
		}
		val = unquoted
	}
	return Lexeme{
		Type:  name,
		Value: val,
		Raw:   tok.Value,
		Pos:   tok.Pos,
	}, nil
}

func invertSymbols(symbols map[string]lexer.TokenType) map[lexer.TokenType]string {
	out := make(map[lexer.TokenType]string, len(symbols))
	for name, tt := range symbols {
		out[tt] = name
	}
	return out
}

func mustTokenType(name string) lexer.TokenType {
	symbols := templateLexer.Symbols()
	tt, ok := symbols[name]
	if !ok {
		panic(fmt.Sprintf("token %s not defined", name))
	}
	return tt
}
