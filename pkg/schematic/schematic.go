// Package schematic implements the mutable circuit design model: component
// instances, connections, nets, buses, differential pairs and hierarchical
// sheets, plus annotation, persistence and the ERC entry points. The model
// is single-threaded; callers must serialize access externally.
package schematic

import (
	"fmt"
	"log/slog"

	"github.com/circuitsmith/circuitsmith/pkg/catalog"
	"github.com/circuitsmith/circuitsmith/pkg/circuit"
	"github.com/circuitsmith/circuitsmith/pkg/netlist"
)

const rootSheetID = "root"

// Schematic is the circuit design model. It owns every mutable entity;
// component definitions stay in the catalog and are referenced by id only.
type Schematic struct {
	catalog *catalog.Catalog
	uuid    string

	components     map[string]*circuit.ComponentInstance
	componentOrder []string
	connections    map[string]*circuit.Connection
	connOrder      []string
	nets           map[string]*circuit.Net
	netOrder       []string
	buses          map[string]*circuit.Bus
	diffPairs      map[string]*circuit.DifferentialPair
	sheets         map[string]*circuit.Sheet
	sheetOrder     []string
	sheetInstances map[string]*circuit.SheetInstance
	instOrder      []string

	annotationCounters map[circuit.ComponentType]int

	nextComponentID     int
	nextConnectionID    int
	nextNetID           int
	nextSheetIndex      int
	nextSheetInstanceID int

	activeSheetID string

	listeners []Listener
}

// New creates an empty schematic backed by the given catalog.
func New(cat *catalog.Catalog) *Schematic {
	s := &Schematic{catalog: cat}
	s.resetState()
	s.ensureRootSheet()
	return s
}

// Catalog returns the component catalog backing this schematic.
func (s *Schematic) Catalog() *catalog.Catalog {
	return s.catalog
}

// resetState drops every mutable entity and resets all counters.
func (s *Schematic) resetState() {
	s.components = make(map[string]*circuit.ComponentInstance)
	s.componentOrder = nil
	s.connections = make(map[string]*circuit.Connection)
	s.connOrder = nil
	s.nets = make(map[string]*circuit.Net)
	s.netOrder = nil
	s.buses = make(map[string]*circuit.Bus)
	s.diffPairs = make(map[string]*circuit.DifferentialPair)
	s.sheets = make(map[string]*circuit.Sheet)
	s.sheetOrder = nil
	s.sheetInstances = make(map[string]*circuit.SheetInstance)
	s.instOrder = nil
	s.annotationCounters = make(map[circuit.ComponentType]int)
	s.nextComponentID = 1
	s.nextConnectionID = 1
	s.nextNetID = 1
	s.nextSheetIndex = 1
	s.nextSheetInstanceID = 1
	s.activeSheetID = ""
}

// Component management

// AddComponent places an instance of the given definition on the active
// sheet and assigns it a fresh reference designator.
func (s *Schematic) AddComponent(definitionID string, x, y float64) (*circuit.ComponentInstance, error) {
	def, ok := s.catalog.Get(definitionID)
	if !ok {
		slog.Warn("schematic: component definition not found", "definition_id", definitionID)
		return nil, fmt.Errorf("%w: %s", ErrUnknownDefinition, definitionID)
	}

	instanceID := fmt.Sprintf("comp_%d", s.nextComponentID)
	s.nextComponentID++

	inst := &circuit.ComponentInstance{
		InstanceID:   instanceID,
		DefinitionID: definitionID,
		X:            x,
		Y:            y,
		Properties: map[string]string{
			circuit.PropReference: s.generateReference(def.Type),
			circuit.PropValue:     "",
		},
		SheetID: s.activeSheetID,
	}

	s.components[instanceID] = inst
	s.componentOrder = append(s.componentOrder, instanceID)
	s.emit(ComponentAdded{InstanceID: instanceID})
	s.emit(CircuitChanged{})
	return inst, nil
}

// RemoveComponent deletes an instance. Every connection touching it is
// removed first, its nodes are stripped from every net, and the remaining
// instances are renumbered.
func (s *Schematic) RemoveComponent(instanceID string) error {
	if _, ok := s.components[instanceID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, instanceID)
	}

	var doomed []string
	for _, id := range s.connOrder {
		conn := s.connections[id]
		if conn.FromComponent == instanceID || conn.ToComponent == instanceID {
			doomed = append(doomed, id)
		}
	}
	for _, id := range doomed {
		if err := s.RemoveConnection(id); err != nil {
			return err
		}
	}

	for _, name := range append([]string(nil), s.netOrder...) {
		if net, ok := s.nets[name]; ok {
			s.detachNodesForComponent(net, instanceID)
		}
	}

	delete(s.components, instanceID)
	s.componentOrder = removeString(s.componentOrder, instanceID)
	s.RenumberAnnotations()

	s.emit(ComponentRemoved{InstanceID: instanceID})
	s.emit(CircuitChanged{})
	return nil
}

// MoveComponent updates an instance's position.
func (s *Schematic) MoveComponent(instanceID string, x, y float64) error {
	inst, ok := s.components[instanceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, instanceID)
	}
	inst.X = x
	inst.Y = y
	s.emit(ComponentMoved{InstanceID: instanceID, X: x, Y: y})
	s.emit(CircuitChanged{})
	return nil
}

// RotateComponent sets an instance's rotation, normalized to [0, 360).
func (s *Schematic) RotateComponent(instanceID string, rotation float64) error {
	inst, ok := s.components[instanceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, instanceID)
	}
	rotation = rotation - 360*float64(int(rotation/360))
	if rotation < 0 {
		rotation += 360
	}
	inst.Rotation = rotation
	s.emit(CircuitChanged{})
	return nil
}

// UpdateComponentProperties merges the given updates into an instance's
// property map.
func (s *Schematic) UpdateComponentProperties(instanceID string, updates map[string]string) error {
	inst, ok := s.components[instanceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, instanceID)
	}
	for k, v := range updates {
		inst.Properties[k] = v
	}
	s.emit(CircuitChanged{})
	return nil
}

// Component queries

// ComponentInstance returns the instance with the given id.
func (s *Schematic) ComponentInstance(instanceID string) (*circuit.ComponentInstance, bool) {
	inst, ok := s.components[instanceID]
	return inst, ok
}

// Components returns every instance in creation order.
func (s *Schematic) Components() []*circuit.ComponentInstance {
	result := make([]*circuit.ComponentInstance, 0, len(s.componentOrder))
	for _, id := range s.componentOrder {
		result = append(result, s.components[id])
	}
	return result
}

// Definition resolves a definition id through the catalog.
func (s *Schematic) Definition(definitionID string) (*circuit.ComponentDefinition, bool) {
	return s.catalog.Get(definitionID)
}

// Connections returns every connection in creation order.
func (s *Schematic) Connections() []*circuit.Connection {
	result := make([]*circuit.Connection, 0, len(s.connOrder))
	for _, id := range s.connOrder {
		result = append(result, s.connections[id])
	}
	return result
}

// Connection returns the connection with the given id.
func (s *Schematic) Connection(connectionID string) (*circuit.Connection, bool) {
	conn, ok := s.connections[connectionID]
	return conn, ok
}

// ComponentsForSheet returns the instances placed on the given sheet
// (the active sheet when sheetID is empty).
func (s *Schematic) ComponentsForSheet(sheetID string) []*circuit.ComponentInstance {
	if sheetID == "" {
		sheetID = s.activeSheetID
	}
	var result []*circuit.ComponentInstance
	for _, id := range s.componentOrder {
		if inst := s.components[id]; inst.SheetID == sheetID {
			result = append(result, inst)
		}
	}
	return result
}

// ConnectionsForSheet returns the connections whose endpoints are both on
// the given sheet (the active sheet when sheetID is empty).
func (s *Schematic) ConnectionsForSheet(sheetID string) []*circuit.Connection {
	onSheet := make(map[string]bool)
	for _, inst := range s.ComponentsForSheet(sheetID) {
		onSheet[inst.InstanceID] = true
	}
	var result []*circuit.Connection
	for _, id := range s.connOrder {
		conn := s.connections[id]
		if onSheet[conn.FromComponent] && onSheet[conn.ToComponent] {
			result = append(result, conn)
		}
	}
	return result
}

// BuildConnectionGraph computes the net partition implied by the current
// connection set, independent of the named nets the model maintains.
func (s *Schematic) BuildConnectionGraph() *netlist.Graph {
	return netlist.Build(s.Components(), s.Connections(), s.catalog.Get)
}

// GenerateConnectionList produces a human-readable connection report.
func (s *Schematic) GenerateConnectionList() string {
	lines := []string{"Circuit Connections:", "=================================================="}
	for _, id := range s.connOrder {
		conn := s.connections[id]
		fromName := s.displayName(conn.FromComponent)
		toName := s.displayName(conn.ToComponent)
		lines = append(lines, fmt.Sprintf("%s (%s) -> %s (%s)", fromName, conn.FromPin, toName, conn.ToPin))
	}
	out := ""
	for i, line := range lines {
		if i > 0 {
			out += "\n"
		}
		out += line
	}
	return out
}

func (s *Schematic) displayName(instanceID string) string {
	inst, ok := s.components[instanceID]
	if !ok {
		return instanceID
	}
	if def, ok := s.catalog.Get(inst.DefinitionID); ok {
		return def.Name
	}
	return instanceID
}

// Clear drops all design state and restores the root sheet.
func (s *Schematic) Clear() {
	s.resetState()
	s.ensureRootSheet()
	s.emit(CircuitChanged{})
	slog.Info("schematic: circuit cleared")
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
