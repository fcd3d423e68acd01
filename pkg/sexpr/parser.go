package sexpr

import (
	"io"
	"strings"
)

// Parser assembles S-expression trees from a lexer.
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new parser from an io.Reader
func NewParser(r io.Reader) *Parser {
	return &Parser{lexer: NewLexer(r)}
}

// Parse reads all top-level S-expressions from r.
func Parse(r io.Reader) ([]Node, error) {
	return NewParser(r).ParseAll()
}

// ParseString parses all top-level S-expressions from a string.
func ParseString(input string) ([]Node, error) {
	return Parse(strings.NewReader(input))
}

// ParseAll parses all top-level S-expressions from the input.
// A stray ')' at the top level is skipped; a list truncated by EOF closes
// early and is returned with the elements collected so far.
func (p *Parser) ParseAll() ([]Node, error) {
	var result []Node

	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return result, err
		}

		switch tok.Type {
		case TokenEOF:
			return result, nil

		case TokenRightParen:
			// Unbalanced close at the top level; ignore it.
			continue

		case TokenLeftParen:
			list, err := p.parseList()
			if err != nil {
				return result, err
			}
			result = append(result, list)

		default:
			result = append(result, Atom(tok.Value))
		}
	}
}

// parseList parses the remainder of a list after its '(' has been consumed.
func (p *Parser) parseList() (*List, error) {
	var elements []Node

	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return &List{items: elements}, err
		}

		switch tok.Type {
		case TokenRightParen:
			return &List{items: elements}, nil

		case TokenEOF:
			// Truncated input: the tree closes early.
			return &List{items: elements}, nil

		case TokenLeftParen:
			sub, err := p.parseList()
			if err != nil {
				return &List{items: elements}, err
			}
			elements = append(elements, sub)

		default:
			elements = append(elements, Atom(tok.Value))
		}
	}
}
