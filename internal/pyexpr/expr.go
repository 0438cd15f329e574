// Package pyexpr builds and renders Python expressions for generated buildbot configs.
//
// Generated fragments are assembled as expression trees and rendered in one
// place, so quoting and layout never depend on string splicing.
package pyexpr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// maxWidth is the column limit for rendering a composite expression on one line.
const maxWidth = 88

const indentStep = "    "

// Expr is a Python expression.
type Expr interface {
	// inline renders the expression on a single line.
	inline() string
	// block renders the expression at the given position, breaking
	// composite expressions over several lines when they don't fit.
	block(at position) string
}

// position is where a rendered expression lands: depth nesting levels
// below a line that already starts base columns in.
type position struct {
	base  int
	depth int
}

func (p position) column() int { return p.base + p.depth*len(indentStep) }

func (p position) nested() position { return position{base: p.base, depth: p.depth + 1} }

// Render renders e as Python source starting at column zero.
func Render(e Expr) string {
	return RenderAt(e, 0)
}

// RenderAt renders e for a line indented by base columns. Continuation lines
// are laid out relative to that indent but do not include it.
func RenderAt(e Expr, base int) string {
	return e.block(position{base: base})
}

// Str is a Python string literal.
type Str string

func (s Str) inline() string          { return Quote(string(s)) }
func (s Str) block(_ position) string { return s.inline() }

// Int is a Python integer literal.
type Int int

func (i Int) inline() string          { return strconv.Itoa(int(i)) }
func (i Int) block(_ position) string { return i.inline() }

// Bool is a Python boolean literal.
type Bool bool

func (b Bool) inline() string {
	if b {
		return "True"
	}

	return "False"
}

func (b Bool) block(_ position) string { return b.inline() }

// Ident is a bare or dotted identifier such as util.BuildFactory.
// It is emitted verbatim and must only be built from trusted names.
type Ident string

func (id Ident) inline() string          { return string(id) }
func (id Ident) block(_ position) string { return string(id) }

// List is a Python list literal.
type List []Expr

// ListOf builds a List of string literals.
func ListOf(items ...string) List {
	l := make(List, len(items))
	for i, s := range items {
		l[i] = Str(s)
	}

	return l
}

func (l List) parts() []part {
	ps := make([]part, len(l))
	for i, e := range l {
		ps[i] = part{value: e}
	}

	return ps
}

func (l List) inline() string           { return inlineLayout("[", "]", l.parts()) }
func (l List) block(at position) string { return blockLayout("[", "]", l.parts(), at) }

// DictItem is one key/value pair of a Dict.
type DictItem struct {
	Key   Expr
	Value Expr
}

// Dict is a Python dict literal. Items render in the given order.
type Dict []DictItem

func (d Dict) parts() []part {
	ps := make([]part, len(d))
	for i, it := range d {
		ps[i] = part{prefix: it.Key.inline() + ": ", value: it.Value}
	}

	return ps
}

func (d Dict) inline() string           { return inlineLayout("{", "}", d.parts()) }
func (d Dict) block(at position) string { return blockLayout("{", "}", d.parts(), at) }

// Kwarg is a keyword argument of a Call.
type Kwarg struct {
	Name  string
	Value Expr
}

// Call is a function call with positional arguments followed by keyword arguments.
type Call struct {
	Func   Ident
	Args   []Expr
	Kwargs []Kwarg
}

func (c Call) parts() []part {
	ps := make([]part, 0, len(c.Args)+len(c.Kwargs))
	for _, a := range c.Args {
		ps = append(ps, part{value: a})
	}

	for _, kw := range c.Kwargs {
		ps = append(ps, part{prefix: kw.Name + "=", value: kw.Value})
	}

	return ps
}

func (c Call) inline() string {
	return inlineLayout(string(c.Func)+"(", ")", c.parts())
}

func (c Call) block(at position) string {
	return blockLayout(string(c.Func)+"(", ")", c.parts(), at)
}

type part struct {
	prefix string
	value  Expr
}

func inlineLayout(open, closer string, parts []part) string {
	items := make([]string, len(parts))
	for i, p := range parts {
		items[i] = p.prefix + p.value.inline()
	}

	return open + strings.Join(items, ", ") + closer
}

func blockLayout(open, closer string, parts []part, at position) string {
	flat := inlineLayout(open, closer, parts)
	if len(parts) == 0 || at.column()+len(flat) <= maxWidth {
		return flat
	}

	pad := strings.Repeat(indentStep, at.depth)
	inner := pad + indentStep

	var b strings.Builder
	b.WriteString(open)
	b.WriteString("\n")

	for _, p := range parts {
		b.WriteString(inner)
		b.WriteString(p.prefix)
		b.WriteString(p.value.block(at.nested()))
		b.WriteString(",\n")
	}

	b.WriteString(pad)
	b.WriteString(closer)

	return b.String()
}

// Quote renders s as a single-quoted Python string literal. Printable runes
// are kept as is; quotes, backslashes and control characters are escaped.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')

	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			switch {
			case unicode.IsPrint(r):
				b.WriteRune(r)
			case r < 0x100:
				fmt.Fprintf(&b, `\x%02x`, r)
			case r < 0x10000:
				fmt.Fprintf(&b, `\u%04x`, r)
			default:
				fmt.Fprintf(&b, `\U%08x`, r)
			}
		}
	}

	b.WriteByte('\'')

	return b.String()
}
