package schematic

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/circuitsmith/circuitsmith/pkg/circuit"
)

// fileVersion is the on-disk circuit format version.
const fileVersion = 1

// circuitFile is the JSON document written by Save and consumed by Load.
type circuitFile struct {
	Version        int                          `json:"version"`
	UUID           string                       `json:"uuid"`
	Components     []*circuit.ComponentInstance `json:"components"`
	Connections    []*circuit.Connection        `json:"connections"`
	Nets           []*circuit.Net               `json:"nets,omitempty"`
	Buses          []*circuit.Bus               `json:"buses,omitempty"`
	DiffPairs      []*circuit.DifferentialPair  `json:"differential_pairs,omitempty"`
	Sheets         []*circuit.Sheet             `json:"sheets,omitempty"`
	SheetInstances []*circuit.SheetInstance     `json:"sheet_instances,omitempty"`
	ActiveSheet    string                       `json:"active_sheet,omitempty"`
}

// Save writes the circuit to path as JSON. A fresh document UUID is
// stamped on every save.
func (s *Schematic) Save(path string) error {
	s.uuid = uuid.NewString()

	doc := circuitFile{
		Version:     fileVersion,
		UUID:        s.uuid,
		Components:  s.Components(),
		Connections: s.Connections(),
		Nets:        s.Nets(),
		Buses:       s.Buses(),
		DiffPairs:   s.DifferentialPairs(),
		Sheets:      s.Sheets(),
		ActiveSheet: s.activeSheetID,
	}
	for _, id := range s.instOrder {
		doc.SheetInstances = append(doc.SheetInstances, s.sheetInstances[id])
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode circuit: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write circuit: %w", err)
	}
	slog.Info("schematic: circuit saved", "path", path, "components", len(doc.Components))
	return nil
}

// UUID returns the document id assigned by the most recent Save or Load,
// or the empty string for a circuit never persisted.
func (s *Schematic) UUID() string {
	return s.uuid
}

// Load replaces the current design with the circuit stored at path. A
// failed load never leaves a half-populated model: the schematic is reset
// to a clean empty state and the error returned.
func (s *Schematic) Load(path string) error {
	if err := s.loadFile(path); err != nil {
		s.resetState()
		s.ensureRootSheet()
		s.emit(CircuitChanged{})
		slog.Error("schematic: circuit load failed, model reset", "path", path, "error", err)
		return err
	}
	return nil
}

func (s *Schematic) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read circuit: %w", err)
	}

	var doc circuitFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse circuit %s: %w", path, err)
	}
	if doc.Version > fileVersion {
		return fmt.Errorf("parse circuit %s: unsupported version %d", path, doc.Version)
	}
	if err := s.validateDocument(&doc); err != nil {
		return fmt.Errorf("parse circuit %s: %w", path, err)
	}

	s.resetState()
	s.ensureRootSheet()
	s.uuid = doc.UUID

	for _, sheet := range doc.Sheets {
		if sheet.SheetID == rootSheetID {
			s.sheets[rootSheetID] = sheet
			continue
		}
		s.sheets[sheet.SheetID] = sheet
		s.sheetOrder = append(s.sheetOrder, sheet.SheetID)
		s.nextSheetIndex = bumpCounter(s.nextSheetIndex, sheet.SheetID, "sheet_")
	}

	for _, inst := range doc.Components {
		if inst.Properties == nil {
			inst.Properties = map[string]string{}
		}
		if inst.SheetID == "" {
			inst.SheetID = rootSheetID
		}
		s.components[inst.InstanceID] = inst
		s.componentOrder = append(s.componentOrder, inst.InstanceID)
		s.nextComponentID = bumpCounter(s.nextComponentID, inst.InstanceID, "comp_")
		s.countAnnotation(inst)
	}

	for _, conn := range doc.Connections {
		if conn.WireColor == "" {
			conn.WireColor = defaultWireColor
		}
		s.connections[conn.ConnectionID] = conn
		s.connOrder = append(s.connOrder, conn.ConnectionID)
		s.nextConnectionID = bumpCounter(s.nextConnectionID, conn.ConnectionID, "conn_")
	}

	for _, net := range doc.Nets {
		s.nets[net.Name] = net
		s.netOrder = append(s.netOrder, net.Name)
		if isAutoNetName(net.Name) {
			var n int
			fmt.Sscanf(net.Name[3:], "%d", &n)
			if n >= s.nextNetID {
				s.nextNetID = n + 1
			}
		}
	}
	if len(doc.Nets) == 0 && len(doc.Connections) > 0 {
		// Older files carried connections only; rebuild the partition.
		s.rebuildNetsFromConnections()
	}

	for _, pair := range doc.DiffPairs {
		s.diffPairs[pair.Name] = pair
	}
	for _, bus := range doc.Buses {
		if bus.Nets == nil {
			bus.Nets = map[string]bool{}
		}
		if bus.DifferentialPairs == nil {
			bus.DifferentialPairs = map[string]*circuit.DifferentialPair{}
		}
		// The decoder gives each bus its own pair copies; re-point them at
		// the registry objects so a rename through one is seen by both.
		for name := range bus.DifferentialPairs {
			if pair, ok := s.diffPairs[name]; ok {
				bus.DifferentialPairs[name] = pair
			} else {
				delete(bus.DifferentialPairs, name)
			}
		}
		s.buses[bus.Name] = bus
	}
	for _, inst := range doc.SheetInstances {
		if inst.Ports == nil {
			inst.Ports = map[string]*circuit.HierarchicalPort{}
		}
		s.sheetInstances[inst.InstanceID] = inst
		s.instOrder = append(s.instOrder, inst.InstanceID)
		s.nextSheetInstanceID = bumpCounter(s.nextSheetInstanceID, inst.InstanceID, "sheet_inst_")
	}

	if doc.ActiveSheet != "" {
		if _, ok := s.sheets[doc.ActiveSheet]; ok {
			s.activeSheetID = doc.ActiveSheet
		}
	}

	s.emit(CircuitChanged{})
	slog.Info("schematic: circuit loaded", "path", path,
		"components", len(doc.Components), "connections", len(doc.Connections))
	return nil
}

// validateDocument checks referential integrity before the document is
// applied.
func (s *Schematic) validateDocument(doc *circuitFile) error {
	seen := make(map[string]bool, len(doc.Components))
	for _, inst := range doc.Components {
		if inst.InstanceID == "" {
			return fmt.Errorf("component with empty instance id")
		}
		if seen[inst.InstanceID] {
			return fmt.Errorf("duplicate component instance id %s", inst.InstanceID)
		}
		seen[inst.InstanceID] = true
		if inst.DefinitionID == "" {
			return fmt.Errorf("component %s has no definition id", inst.InstanceID)
		}
	}
	for _, conn := range doc.Connections {
		if conn.ConnectionID == "" {
			return fmt.Errorf("connection with empty id")
		}
		if !seen[conn.FromComponent] {
			return fmt.Errorf("connection %s references unknown component %s", conn.ConnectionID, conn.FromComponent)
		}
		if !seen[conn.ToComponent] {
			return fmt.Errorf("connection %s references unknown component %s", conn.ConnectionID, conn.ToComponent)
		}
	}
	netNames := make(map[string]bool, len(doc.Nets))
	for _, net := range doc.Nets {
		if net.Name == "" {
			return fmt.Errorf("net with empty name")
		}
		if netNames[net.Name] {
			return fmt.Errorf("duplicate net name %s", net.Name)
		}
		netNames[net.Name] = true
	}
	for _, pair := range doc.DiffPairs {
		if !netNames[pair.PositiveNet] || !netNames[pair.NegativeNet] {
			return fmt.Errorf("differential pair %s references unknown net", pair.Name)
		}
	}
	return nil
}

// rebuildNetsFromConnections recomputes net membership by replaying the
// stored connections through the merge rules. Used for files that predate
// the nets section.
func (s *Schematic) rebuildNetsFromConnections() {
	for _, id := range s.connOrder {
		conn := s.connections[id]
		fromPin, err := s.pinDefinition(conn.FromComponent, conn.FromPin)
		if err != nil {
			continue
		}
		toPin, err := s.pinDefinition(conn.ToComponent, conn.ToPin)
		if err != nil {
			continue
		}
		s.joinNets(
			s.netNodeFor(conn.FromComponent, conn.FromPin, fromPin),
			s.netNodeFor(conn.ToComponent, conn.ToPin, toPin),
		)
		if net := s.netContaining(conn.FromComponent, conn.FromPin); net != nil {
			conn.NetName = net.Name
		}
	}
}

// countAnnotation advances the per-type designator counter past an
// instance's reference so later additions do not collide.
func (s *Schematic) countAnnotation(inst *circuit.ComponentInstance) {
	t := s.instanceType(inst)
	ref := inst.Properties[circuit.PropReference]
	prefix := referencePrefixes[t]
	if prefix == "" || !strings.HasPrefix(ref, prefix) {
		return
	}
	var n int
	if _, err := fmt.Sscanf(ref[len(prefix):], "%d", &n); err == nil && n > s.annotationCounters[t] {
		s.annotationCounters[t] = n
	}
}

// bumpCounter advances a numeric id counter past ids like "comp_12".
func bumpCounter(counter int, id, prefix string) int {
	if !strings.HasPrefix(id, prefix) {
		return counter
	}
	var n int
	if _, err := fmt.Sscanf(id[len(prefix):], "%d", &n); err == nil && n >= counter {
		return n + 1
	}
	return counter
}
