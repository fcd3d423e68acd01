package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/circuitsmith/circuitsmith/pkg/circuit"
)

// jsonComponent mirrors the on-disk declarative component format. The pin
// records carry layout hints (length, orientation, decoration) that older
// files include; the connectivity model does not use them.
type jsonComponent struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	ComponentType string            `json:"component_type"`
	Description   string            `json:"description"`
	Width         float64           `json:"width"`
	Height        float64           `json:"height"`
	Pins          []jsonPin         `json:"pins"`
	Graphics      []circuit.Graphic `json:"graphics"`
	Metadata      map[string]string `json:"metadata"`
}

type jsonPin struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	PinType     string    `json:"pin_type"`
	Position    []float64 `json:"position"`
	Length      float64   `json:"length"`
	Orientation string    `json:"orientation"`
	Decoration  string    `json:"decoration"`
}

// LoadJSONDir loads every *.json component file under dir into the catalog.
// A malformed file is logged and skipped; the sweep never aborts. Returns the
// number of definitions loaded.
func (c *Catalog) LoadJSONDir(dir string) (int, error) {
	if _, err := os.Stat(dir); err != nil {
		return 0, fmt.Errorf("catalog: component directory not found: %w", err)
	}

	loaded := 0
	failed := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		switch strings.ToLower(d.Name()) {
		case "readme.json", "package.json":
			return nil
		}

		def, err := loadJSONComponent(path)
		if err != nil {
			slog.Error("catalog: failed to load component file", "path", path, "error", err)
			failed++
			return nil
		}
		if err := c.Register(def); err != nil {
			slog.Error("catalog: failed to register component", "path", path, "error", err)
			failed++
			return nil
		}
		loaded++
		return nil
	})
	if err != nil {
		return loaded, fmt.Errorf("catalog: walking %s: %w", dir, err)
	}

	slog.Info("catalog: component library initialized", "components", loaded)
	if failed > 0 {
		slog.Warn("catalog: some component files failed to load", "failed", failed)
	}
	return loaded, nil
}

// loadJSONComponent reads and validates one component definition file.
func loadJSONComponent(path string) (*circuit.ComponentDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data jsonComponent
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if data.ID == "" || data.Name == "" {
		return nil, fmt.Errorf("missing required field: id or name")
	}
	if !circuit.ValidComponentType(data.ComponentType) {
		return nil, fmt.Errorf("invalid component_type %q", data.ComponentType)
	}

	pins := make([]circuit.Pin, 0, len(data.Pins))
	for _, p := range data.Pins {
		if p.ID == "" {
			return nil, fmt.Errorf("pin missing id")
		}
		if !circuit.ValidPinType(p.PinType) {
			return nil, fmt.Errorf("pin %s: invalid pin_type %q", p.ID, p.PinType)
		}
		if len(p.Position) < 2 {
			return nil, fmt.Errorf("pin %s: missing position", p.ID)
		}
		label := p.Label
		if label == "" {
			label = p.ID
		}
		pins = append(pins, circuit.Pin{
			ID:       p.ID,
			Label:    label,
			Type:     circuit.PinType(p.PinType),
			Position: circuit.Point{X: p.Position[0], Y: p.Position[1]},
		})
	}

	return &circuit.ComponentDefinition{
		ID:           data.ID,
		Name:         data.Name,
		Type:         circuit.ComponentType(data.ComponentType),
		Width:        data.Width,
		Height:       data.Height,
		Pins:         pins,
		Graphics:     data.Graphics,
		Description:  data.Description,
		DatasheetURL: data.Metadata["datasheet_url"],
		Metadata:     data.Metadata,
	}, nil
}
