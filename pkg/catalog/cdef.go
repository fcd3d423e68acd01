package catalog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/circuitsmith/circuitsmith/pkg/circuit"
)

// The .cdef format is a small declarative language for hand-written component
// definitions, an alternative to the JSON files for libraries maintained in
// version control:
//
//	component "basic:led_red" {
//	    name "Red LED"
//	    type led
//	    size 40 30
//	    description "5mm red LED"
//	    pin "A" power at 0 15 label "Anode"
//	    pin "K" ground at 40 15 label "Cathode"
//	}

// cdefLexer defines the lexical structure for .cdef files.
var cdefLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `[-+]?\d+(\.\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Brace", Pattern: `[{}]`},
})

type cdefFile struct {
	Components []*cdefComponent `parser:"@@*"`
}

type cdefComponent struct {
	ID    string      `parser:"'component' @String '{'"`
	Stmts []*cdefStmt `parser:"@@* '}'"`
}

type cdefStmt struct {
	Name        *string   `parser:"  'name' @String"`
	Type        *string   `parser:"| 'type' @Ident"`
	Size        *cdefSize `parser:"| 'size' @@"`
	Description *string   `parser:"| 'description' @String"`
	Datasheet   *string   `parser:"| 'datasheet' @String"`
	Meta        *cdefMeta `parser:"| 'meta' @@"`
	Pin         *cdefPin  `parser:"| @@"`
}

type cdefSize struct {
	Width  float64 `parser:"@Number"`
	Height float64 `parser:"@Number"`
}

type cdefMeta struct {
	Key   string `parser:"@String"`
	Value string `parser:"@String"`
}

type cdefPin struct {
	ID    string  `parser:"'pin' @String"`
	Type  string  `parser:"@Ident"`
	X     float64 `parser:"'at' @Number"`
	Y     float64 `parser:"@Number"`
	Label *string `parser:"('label' @String)?"`
}

// CDefParser parses .cdef component definition files.
type CDefParser struct {
	parser *participle.Parser[cdefFile]
}

// NewCDefParser builds the .cdef parser.
func NewCDefParser() (*CDefParser, error) {
	parser, err := participle.Build[cdefFile](
		participle.Lexer(cdefLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.Unquote("String"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build cdef parser: %w", err)
	}
	return &CDefParser{parser: parser}, nil
}

// Parse parses component definitions from a reader.
func (p *CDefParser) Parse(name string, r io.Reader) ([]*circuit.ComponentDefinition, error) {
	file, err := p.parser.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return cdefToDefinitions(file)
}

// ParseString parses component definitions from a string.
func (p *CDefParser) ParseString(input string) ([]*circuit.ComponentDefinition, error) {
	file, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return cdefToDefinitions(file)
}

func cdefToDefinitions(file *cdefFile) ([]*circuit.ComponentDefinition, error) {
	defs := make([]*circuit.ComponentDefinition, 0, len(file.Components))
	for _, comp := range file.Components {
		def := &circuit.ComponentDefinition{
			ID:   comp.ID,
			Name: comp.ID,
			Type: circuit.TypeIC,
		}

		for _, stmt := range comp.Stmts {
			switch {
			case stmt.Name != nil:
				def.Name = *stmt.Name
			case stmt.Type != nil:
				if !circuit.ValidComponentType(*stmt.Type) {
					return nil, fmt.Errorf("component %s: invalid type %q", comp.ID, *stmt.Type)
				}
				def.Type = circuit.ComponentType(*stmt.Type)
			case stmt.Size != nil:
				def.Width = stmt.Size.Width
				def.Height = stmt.Size.Height
			case stmt.Description != nil:
				def.Description = *stmt.Description
			case stmt.Datasheet != nil:
				def.DatasheetURL = *stmt.Datasheet
			case stmt.Meta != nil:
				if def.Metadata == nil {
					def.Metadata = make(map[string]string)
				}
				def.Metadata[stmt.Meta.Key] = stmt.Meta.Value
			case stmt.Pin != nil:
				if !circuit.ValidPinType(stmt.Pin.Type) {
					return nil, fmt.Errorf("component %s: pin %s: invalid pin type %q",
						comp.ID, stmt.Pin.ID, stmt.Pin.Type)
				}
				label := stmt.Pin.ID
				if stmt.Pin.Label != nil {
					label = *stmt.Pin.Label
				}
				def.Pins = append(def.Pins, circuit.Pin{
					ID:       stmt.Pin.ID,
					Label:    label,
					Type:     circuit.PinType(stmt.Pin.Type),
					Position: circuit.Point{X: stmt.Pin.X, Y: stmt.Pin.Y},
				})
			}
		}

		defs = append(defs, def)
	}
	return defs, nil
}

// LoadCDefDir loads every *.cdef file under dir into the catalog. As with the
// JSON loader, a malformed file is logged and skipped.
func (c *Catalog) LoadCDefDir(dir string) (int, error) {
	parser, err := NewCDefParser()
	if err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("catalog: cdef directory not found: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cdef") {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		f, err := os.Open(path)
		if err != nil {
			slog.Error("catalog: failed to open cdef file", "path", path, "error", err)
			continue
		}
		defs, err := parser.Parse(entry.Name(), f)
		f.Close()
		if err != nil {
			slog.Error("catalog: failed to parse cdef file", "path", path, "error", err)
			continue
		}

		for _, def := range defs {
			if err := c.Register(def); err != nil {
				slog.Error("catalog: failed to register component", "path", path, "error", err)
				continue
			}
			loaded++
		}
	}

	return loaded, nil
}
