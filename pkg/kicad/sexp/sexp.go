// Package sexp reads and writes the S-expression format of KiCad files.
package sexp

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Sexp is a node of a parsed S-expression: a Symbol or a *List.
type Sexp interface {
	IsLeaf() bool
	String() string
}

// Symbol is an atom. Quoted strings are stored unquoted.
type Symbol string

func (s Symbol) IsLeaf() bool { return true }

func (s Symbol) String() string { return string(s) }

// List is a parenthesised list of nodes.
type List struct {
	elements []Sexp
}

// NewList creates a list holding elements.
func NewList(elements ...Sexp) *List {
	return &List{elements: elements}
}

func (l *List) IsLeaf() bool { return false }

// Len returns the number of elements.
func (l *List) Len() int { return len(l.elements) }

// At returns element i, or nil if out of range.
func (l *List) At(i int) Sexp {
	if i < 0 || i >= len(l.elements) {
		return nil
	}
	return l.elements[i]
}

// Elements returns the elements of l.
func (l *List) Elements() []Sexp { return l.elements }

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, e := range l.elements {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if sym, ok := e.(Symbol); ok && needsQuote(string(sym)) {
			sb.WriteString(quote(string(sym)))
			continue
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

var sexpLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Atom", Pattern: `[^\s()"]+`},
})

type document struct {
	Exprs []*expr `@@*`
}

type expr struct {
	List *exprList `  @@`
	Str  *string   `| @String`
	Atom *string   `| @Atom`
}

type exprList struct {
	Items []*expr `"(" @@* ")"`
}

var parser = participle.MustBuild[document](
	participle.Lexer(sexpLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// Parse reads all top level expressions from r.
func Parse(r io.Reader) ([]Sexp, error) {
	doc, err := parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}
	return convert(doc.Exprs), nil
}

// ParseString reads all top level expressions from s.
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile reads all top level expressions from the named file.
func ParseFile(filename string) ([]Sexp, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func convert(exprs []*expr) []Sexp {
	out := make([]Sexp, 0, len(exprs))
	for _, e := range exprs {
		switch {
		case e.List != nil:
			out = append(out, &List{elements: convert(e.List.Items)})
		case e.Str != nil:
			out = append(out, Symbol(*e.Str))
		case e.Atom != nil:
			out = append(out, Symbol(*e.Atom))
		}
	}
	return out
}
