package kicadsym

import (
	"fmt"
	"strings"

	"github.com/circuitsmith/circuitsmith/pkg/circuit"
	"github.com/circuitsmith/circuitsmith/pkg/sexpr"
)

// coordKeys are the node names whose first two values are x/y coordinates.
// Every occurrence in a symbol subtree contributes to the bounding box.
var coordKeys = map[string]bool{
	"xy":     true,
	"start":  true,
	"end":    true,
	"center": true,
	"at":     true,
}

// pinFunctionTypes maps a pin's declared electrical function to a pin type.
// Anything unrecognized defaults to digital.
var pinFunctionTypes = map[string]circuit.PinType{
	"passive":        circuit.PinAnalog,
	"input":          circuit.PinDigital,
	"output":         circuit.PinDigital,
	"bidirectional":  circuit.PinDigital,
	"tri_state":      circuit.PinDigital,
	"open_collector": circuit.PinDigital,
	"open_emitter":   circuit.PinDigital,
	"unspecified":    circuit.PinDigital,
	"power_in":       circuit.PinPower,
	"power_out":      circuit.PinPower,
	"power":          circuit.PinPower,
	"ground":         circuit.PinGround,
}

// referencePrefixTypes maps reference designator prefixes to component types.
// Order matters: longer prefixes shadowed by shorter ones ("SW" before "S")
// must come first in their group.
var referencePrefixTypes = []struct {
	prefix string
	typ    circuit.ComponentType
}{
	{"R", circuit.TypeResistor},
	{"C", circuit.TypeCapacitor},
	{"Q", circuit.TypeTransistor},
	{"U", circuit.TypeIC},
	{"IC", circuit.TypeIC},
	{"SW", circuit.TypeButton},
	{"S", circuit.TypeSensor},
	{"D", circuit.TypeLED},
	{"LED", circuit.TypeLED},
}

// symbolToComponent converts one (symbol ...) node into a component
// definition. Returns nil for malformed nodes; the caller skips them.
func symbolToComponent(library string, node *sexpr.List) *circuit.ComponentDefinition {
	qualified, err := sexpr.GetString(node, 1)
	if err != nil {
		return nil
	}
	symbolName := qualified
	if idx := strings.Index(qualified, ":"); idx >= 0 {
		symbolName = qualified[idx+1:]
	}

	props := extractProperties(node)
	keywordText := props["ki_keywords"]
	if keywordText == "" {
		keywordText = props["Keywords"]
	}
	keywords := strings.Fields(keywordText)
	description := props["Description"]
	datasheet := props["Datasheet"]
	reference := props["Reference"]
	displayName := props["Value"]
	if displayName == "" {
		displayName = symbolName
	}

	offsetX, offsetY, width, height := calculateBounds(node)

	records := collectPins(node)
	pins := make([]circuit.Pin, 0, len(records))
	for _, rec := range records {
		pins = append(pins, circuit.Pin{
			ID:    rec.id,
			Label: rec.label,
			Type:  rec.typ,
			Position: circuit.Point{
				X: rec.x - offsetX,
				Y: rec.y - offsetY,
			},
		})
	}

	graphics := collectGraphics(node, offsetX, offsetY)

	metadata := map[string]string{
		"library":               library,
		"symbol_name":           symbolName,
		"symbol_qualified_name": qualified,
		"keywords":              strings.Join(keywords, " "),
		"reference":             reference,
	}
	if datasheet != "" {
		metadata["datasheet"] = datasheet
	}

	return &circuit.ComponentDefinition{
		ID:           library + ":" + symbolName,
		Name:         displayName,
		Type:         guessComponentType(reference, keywords, symbolName),
		Width:        width,
		Height:       height,
		Pins:         pins,
		Graphics:     graphics,
		Description:  description,
		DatasheetURL: datasheet,
		Metadata:     metadata,
	}
}

// extractProperties collects (property "Key" "Value" ...) pairs.
func extractProperties(node *sexpr.List) map[string]string {
	props := make(map[string]string)
	for _, pn := range sexpr.FindAllNodes(node, "property") {
		key, err := sexpr.GetString(pn, 1)
		if err != nil {
			continue
		}
		value, err := sexpr.GetString(pn, 2)
		if err != nil {
			value = ""
		}
		props[key] = value
	}
	return props
}

type pinRecord struct {
	id    string
	label string
	typ   circuit.PinType
	x, y  float64
}

// collectPins gathers pin nodes from every sub-symbol unit (multi-unit parts
// keep their pins per unit); if the symbol has no units, pins are read from
// the symbol node itself.
func collectPins(node *sexpr.List) []pinRecord {
	var pinNodes []*sexpr.List
	for _, unit := range sexpr.FindAllNodes(node, "symbol") {
		pinNodes = append(pinNodes, sexpr.FindAllNodes(unit, "pin")...)
	}
	if len(pinNodes) == 0 {
		pinNodes = sexpr.FindAllNodes(node, "pin")
	}

	records := make([]pinRecord, 0, len(pinNodes))
	for i, pn := range pinNodes {
		function, _ := sexpr.GetString(pn, 1)
		typ, ok := pinFunctionTypes[function]
		if !ok {
			typ = circuit.PinDigital
		}

		var x, y float64
		if atNode, found := sexpr.FindNode(pn, "at"); found {
			x, _ = sexpr.GetFloat(atNode, 1)
			y, _ = sexpr.GetFloat(atNode, 2)
		}

		name := childText(pn, "name")
		number := childText(pn, "number")
		label := name
		if label == "" {
			label = number
		}
		if label == "" {
			label = fmt.Sprintf("Pin %d", i+1)
		}
		id := number
		if id == "" {
			id = label
		}

		records = append(records, pinRecord{id: id, label: label, typ: typ, x: x, y: y})
	}
	return records
}

// childText returns the first value of a named child node, or "".
func childText(node *sexpr.List, key string) string {
	child, found := sexpr.FindNode(node, key)
	if !found {
		return ""
	}
	text, err := sexpr.GetString(child, 1)
	if err != nil {
		return ""
	}
	return text
}

// calculateBounds computes the bounding box over every coordinate-bearing
// node in the subtree, padded by a fixed margin. All pin and graphics
// coordinates are later re-expressed relative to the returned offset so the
// component's local space starts near the origin. If no coordinates exist at
// all, a fixed minimal box is used.
func calculateBounds(node *sexpr.List) (offsetX, offsetY, width, height float64) {
	var coords []circuit.Point
	gatherCoordinates(node, &coords)
	if len(coords) == 0 {
		const margin = 20.0
		return -margin / 2, -margin / 2, margin, margin
	}

	minX, maxX := coords[0].X, coords[0].X
	minY, maxY := coords[0].Y, coords[0].Y
	for _, c := range coords[1:] {
		if c.X < minX {
			minX = c.X
		}
		if c.X > maxX {
			maxX = c.X
		}
		if c.Y < minY {
			minY = c.Y
		}
		if c.Y > maxY {
			maxY = c.Y
		}
	}

	const margin = 5.0
	width = (maxX - minX) + 2*margin
	if width < 20.0 {
		width = 20.0
	}
	height = (maxY - minY) + 2*margin
	if height < 20.0 {
		height = 20.0
	}
	return minX - margin, minY - margin, width, height
}

func gatherCoordinates(node sexpr.Node, coords *[]circuit.Point) {
	list, ok := node.(*sexpr.List)
	if !ok {
		return
	}
	if name, err := sexpr.NodeName(list); err == nil && coordKeys[name] && list.Len() >= 3 {
		x, _ := sexpr.GetFloat(list, 1)
		y, _ := sexpr.GetFloat(list, 2)
		*coords = append(*coords, circuit.Point{X: x, Y: y})
	}
	for _, item := range list.Items() {
		gatherCoordinates(item, coords)
	}
}

// guessComponentType derives a component type from the reference designator
// prefix, falling back to keyword substrings, then a name heuristic.
func guessComponentType(reference string, keywords []string, symbolName string) circuit.ComponentType {
	reference = strings.ToUpper(reference)
	for _, entry := range referencePrefixTypes {
		if strings.HasPrefix(reference, entry.prefix) {
			return entry.typ
		}
	}
	for _, keyword := range keywords {
		kw := strings.ToLower(keyword)
		switch {
		case strings.Contains(kw, "sensor"):
			return circuit.TypeSensor
		case strings.Contains(kw, "led"):
			return circuit.TypeLED
		case strings.Contains(kw, "res"):
			return circuit.TypeResistor
		case strings.Contains(kw, "cap"):
			return circuit.TypeCapacitor
		}
	}
	if strings.HasPrefix(strings.ToUpper(symbolName), "BAT") {
		return circuit.TypeBattery
	}
	return circuit.TypeIC
}
