// Package sexpr provides a tolerant tokenizer and recursive-descent parser for
// the nested-list S-expression format used by symbol library files. Unlike
// general-purpose sexp libraries, the parser never fails hard on malformed
// input: excess closing parens are ignored and truncated input yields whatever
// complete nodes were assembled.
package sexpr

import "strings"

// Node represents an S-expression node: either an atom or a list.
type Node interface {
	// IsLeaf returns true if this is an atom (not a list)
	IsLeaf() bool

	// String returns the string representation
	String() string
}

// Atom represents an atomic token (identifier, number, or quoted string with
// the quotes already stripped).
type Atom string

func (a Atom) IsLeaf() bool   { return true }
func (a Atom) String() string { return string(a) }

// List represents a parenthesized list of nodes.
type List struct {
	items []Node
}

func (l *List) IsLeaf() bool { return false }

// Items returns the elements of the list in document order.
func (l *List) Items() []Node {
	if l == nil {
		return nil
	}
	return l.items
}

// Len returns the number of elements in the list.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, item := range l.Items() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(item.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
