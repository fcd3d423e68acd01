package schematic

import (
	"fmt"

	"github.com/circuitsmith/circuitsmith/pkg/circuit"
)

// ensureRootSheet guarantees the implicit top-level sheet exists and is
// active.
func (s *Schematic) ensureRootSheet() {
	if _, ok := s.sheets[rootSheetID]; !ok {
		s.sheets[rootSheetID] = &circuit.Sheet{SheetID: rootSheetID, Name: "Root"}
		s.sheetOrder = append(s.sheetOrder, rootSheetID)
	}
	if s.activeSheetID == "" {
		s.activeSheetID = rootSheetID
	}
}

// DefineSheet declares a reusable sub-circuit with the given port
// interface. Port pin types must be valid.
func (s *Schematic) DefineSheet(name, parentID string, ports []circuit.HierarchicalPort) (*circuit.Sheet, error) {
	if parentID != "" {
		if _, ok := s.sheets[parentID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSheet, parentID)
		}
	}
	for _, p := range ports {
		if !circuit.ValidPinType(string(p.Type)) {
			return nil, fmt.Errorf("sheet %s: port %s has invalid pin type %q", name, p.Name, p.Type)
		}
	}

	sheetID := fmt.Sprintf("sheet_%d", s.nextSheetIndex)
	s.nextSheetIndex++

	sheet := &circuit.Sheet{
		SheetID:  sheetID,
		Name:     name,
		ParentID: parentID,
		Ports:    ports,
	}
	s.sheets[sheetID] = sheet
	s.sheetOrder = append(s.sheetOrder, sheetID)
	s.emit(SheetsChanged{})
	return sheet, nil
}

// InstantiateSheet places an instance of a declared sheet at the given
// hierarchical path. The instance gets its own copy of the port list so
// bindings on one instance never leak into another.
func (s *Schematic) InstantiateSheet(sheetID string, parentPath []string) (*circuit.SheetInstance, error) {
	sheet, ok := s.sheets[sheetID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSheet, sheetID)
	}

	instanceID := fmt.Sprintf("sheet_inst_%d", s.nextSheetInstanceID)
	s.nextSheetInstanceID++

	ports := make(map[string]*circuit.HierarchicalPort, len(sheet.Ports))
	for _, p := range sheet.Ports {
		copied := p
		ports[p.Name] = &copied
	}

	inst := &circuit.SheetInstance{
		InstanceID: instanceID,
		SheetID:    sheetID,
		ParentPath: append([]string(nil), parentPath...),
		Ports:      ports,
	}
	s.sheetInstances[instanceID] = inst
	s.instOrder = append(s.instOrder, instanceID)
	s.emit(SheetsChanged{})
	return inst, nil
}

// BindPortToNet attaches a sheet instance's port to a net. The instance
// stands in for a component: the binding is recorded both on the port and
// as a node of the net, using the port name as the pin id.
func (s *Schematic) BindPortToNet(instanceID, portName, netName string) error {
	inst, ok := s.sheetInstances[instanceID]
	if !ok {
		return fmt.Errorf("%w: sheet instance %s", ErrUnknownSheet, instanceID)
	}
	port, ok := inst.Ports[portName]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrUnknownPort, portName, instanceID)
	}
	net, ok := s.nets[netName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNet, netName)
	}

	if port.NetName != "" && port.NetName != netName {
		if prev, ok := s.nets[port.NetName]; ok {
			kept := prev.Nodes[:0]
			for _, node := range prev.Nodes {
				if node.ComponentID != instanceID || node.PinID != portName {
					kept = append(kept, node)
				}
			}
			prev.Nodes = kept
		}
	}

	port.NetName = netName
	if !net.HasNode(instanceID, portName) {
		net.Nodes = append(net.Nodes, circuit.NetNode{
			ComponentID: instanceID,
			PinID:       portName,
			PinType:     port.Type,
			SheetPath:   append(append([]string(nil), inst.ParentPath...), inst.SheetID),
		})
	}
	s.emit(CircuitChanged{})
	return nil
}

// Sheet returns the declared sheet with the given id.
func (s *Schematic) Sheet(sheetID string) (*circuit.Sheet, bool) {
	sheet, ok := s.sheets[sheetID]
	return sheet, ok
}

// Sheets returns every declared sheet in declaration order, the root
// sheet first.
func (s *Schematic) Sheets() []*circuit.Sheet {
	result := make([]*circuit.Sheet, 0, len(s.sheetOrder))
	for _, id := range s.sheetOrder {
		result = append(result, s.sheets[id])
	}
	return result
}

// SheetInstances returns every placed sheet instance in creation order.
func (s *Schematic) SheetInstances() []*circuit.SheetInstance {
	result := make([]*circuit.SheetInstance, 0, len(s.instOrder))
	for _, id := range s.instOrder {
		result = append(result, s.sheetInstances[id])
	}
	return result
}

// SheetInstance returns the placed instance with the given id.
func (s *Schematic) SheetInstance(instanceID string) (*circuit.SheetInstance, bool) {
	inst, ok := s.sheetInstances[instanceID]
	return inst, ok
}

// ActiveSheet returns the id of the sheet new components are placed on.
func (s *Schematic) ActiveSheet() string {
	return s.activeSheetID
}

// SetActiveSheet switches the sheet new components are placed on.
func (s *Schematic) SetActiveSheet(sheetID string) error {
	if _, ok := s.sheets[sheetID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSheet, sheetID)
	}
	if s.activeSheetID == sheetID {
		return nil
	}
	s.activeSheetID = sheetID
	s.emit(ActiveSheetChanged{SheetID: sheetID})
	return nil
}
