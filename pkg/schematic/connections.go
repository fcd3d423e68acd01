package schematic

import (
	"fmt"
	"log/slog"

	"github.com/circuitsmith/circuitsmith/pkg/circuit"
)

// defaultWireColor is the color given to newly drawn wires.
const defaultWireColor = "#424242"

// AddConnection wires two pins together. Each pin may carry at most one
// connection, though a net may still union many pins transitively. When
// netName is non-empty both endpoints are assigned into that net (created
// on first use); otherwise net membership follows the merge rules, with a
// fresh auto-named net when neither pin is attached yet.
func (s *Schematic) AddConnection(fromComponent, fromPin, toComponent, toPin, netName string) (*circuit.Connection, error) {
	fromDef, err := s.pinDefinition(fromComponent, fromPin)
	if err != nil {
		slog.Warn("schematic: add connection rejected", "error", err)
		return nil, err
	}
	toDef, err := s.pinDefinition(toComponent, toPin)
	if err != nil {
		slog.Warn("schematic: add connection rejected", "error", err)
		return nil, err
	}

	if s.pinOccupied(fromComponent, fromPin) {
		slog.Warn("schematic: pin already connected", "component", fromComponent, "pin", fromPin)
		return nil, fmt.Errorf("%w: %s.%s", ErrPinInUse, fromComponent, fromPin)
	}
	if s.pinOccupied(toComponent, toPin) {
		slog.Warn("schematic: pin already connected", "component", toComponent, "pin", toPin)
		return nil, fmt.Errorf("%w: %s.%s", ErrPinInUse, toComponent, toPin)
	}

	connectionID := fmt.Sprintf("conn_%d", s.nextConnectionID)
	s.nextConnectionID++

	conn := &circuit.Connection{
		ConnectionID:  connectionID,
		FromComponent: fromComponent,
		FromPin:       fromPin,
		ToComponent:   toComponent,
		ToPin:         toPin,
		WireColor:     defaultWireColor,
	}
	s.connections[connectionID] = conn
	s.connOrder = append(s.connOrder, connectionID)

	fromNode := s.netNodeFor(fromComponent, fromPin, fromDef)
	toNode := s.netNodeFor(toComponent, toPin, toDef)
	if netName != "" {
		net, ok := s.nets[netName]
		if !ok {
			net = &circuit.Net{Name: netName}
			s.nets[netName] = net
			s.netOrder = append(s.netOrder, netName)
		}
		s.assignNode(net, fromNode)
		s.assignNode(net, toNode)
	} else {
		s.joinNets(fromNode, toNode)
	}
	if net := s.netContaining(fromComponent, fromPin); net != nil {
		conn.NetName = net.Name
	}

	s.emit(ConnectionAdded{ConnectionID: connectionID})
	s.emit(CircuitChanged{})
	return conn, nil
}

// RemoveConnection detaches both endpoints from their nets and deletes
// the connection record. Nets unioned through other connections are left
// as they are; only the two named endpoints are detached.
func (s *Schematic) RemoveConnection(connectionID string) error {
	conn, ok := s.connections[connectionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConnection, connectionID)
	}
	delete(s.connections, connectionID)
	s.connOrder = removeString(s.connOrder, connectionID)

	s.detachPin(conn.FromComponent, conn.FromPin)
	s.detachPin(conn.ToComponent, conn.ToPin)

	s.emit(ConnectionRemoved{ConnectionID: connectionID})
	s.emit(CircuitChanged{})
	return nil
}

// pinDefinition validates a component/pin pair and returns the pin's
// definition.
func (s *Schematic) pinDefinition(instanceID, pinID string) (circuit.Pin, error) {
	inst, ok := s.components[instanceID]
	if !ok {
		return circuit.Pin{}, fmt.Errorf("%w: %s", ErrUnknownComponent, instanceID)
	}
	def, ok := s.catalog.Get(inst.DefinitionID)
	if !ok {
		return circuit.Pin{}, fmt.Errorf("%w: %s", ErrUnknownDefinition, inst.DefinitionID)
	}
	pin, ok := def.PinByID(pinID)
	if !ok {
		return circuit.Pin{}, fmt.Errorf("%w: %s.%s", ErrUnknownPin, instanceID, pinID)
	}
	return pin, nil
}

// pinOccupied reports whether a pin already carries a connection.
func (s *Schematic) pinOccupied(instanceID, pinID string) bool {
	for _, id := range s.connOrder {
		conn := s.connections[id]
		if conn.FromComponent == instanceID && conn.FromPin == pinID {
			return true
		}
		if conn.ToComponent == instanceID && conn.ToPin == pinID {
			return true
		}
	}
	return false
}

func (s *Schematic) netNodeFor(instanceID, pinID string, pin circuit.Pin) circuit.NetNode {
	inst := s.components[instanceID]
	sheetID := rootSheetID
	if inst != nil && inst.SheetID != "" {
		sheetID = inst.SheetID
	}
	return circuit.NetNode{
		ComponentID: instanceID,
		PinID:       pinID,
		PinType:     pin.Type,
		SheetPath:   []string{sheetID},
	}
}

// joinNets applies the connect step of net partitioning to the named
// nets: neither pin assigned creates a fresh net, one assigned absorbs
// the other, both assigned to distinct nets merges the second into the
// first.
func (s *Schematic) joinNets(a, b circuit.NetNode) {
	netA := s.netContaining(a.ComponentID, a.PinID)
	netB := s.netContaining(b.ComponentID, b.PinID)

	switch {
	case netA == nil && netB == nil:
		net := s.allocateNet(isSupplyPin(a.PinType) && isSupplyPin(b.PinType))
		net.Nodes = append(net.Nodes, a, b)
	case netA != nil && netB == nil:
		netA.Nodes = append(netA.Nodes, b)
	case netA == nil && netB != nil:
		netB.Nodes = append(netB.Nodes, a)
	case netA != netB:
		s.mergeNets(netA, netB)
	}
}

func isSupplyPin(t circuit.PinType) bool {
	return t == circuit.PinPower || t == circuit.PinGround
}

// assignNode moves a node into the given net, detaching it from any net
// that held it before.
func (s *Schematic) assignNode(net *circuit.Net, node circuit.NetNode) {
	if prev := s.netContaining(node.ComponentID, node.PinID); prev != nil {
		if prev == net {
			return
		}
		s.detachPin(node.ComponentID, node.PinID)
	}
	net.Nodes = append(net.Nodes, node)
}

// detachPin filters a pin out of whichever net holds it. The net is
// dropped once it has no nodes left.
func (s *Schematic) detachPin(instanceID, pinID string) {
	net := s.netContaining(instanceID, pinID)
	if net == nil {
		return
	}
	kept := net.Nodes[:0]
	for _, node := range net.Nodes {
		if node.ComponentID != instanceID || node.PinID != pinID {
			kept = append(kept, node)
		}
	}
	net.Nodes = kept
	if len(net.Nodes) == 0 {
		s.dropNet(net.Name)
	}
}

// netContaining finds the named net that holds the given pin, if any.
func (s *Schematic) netContaining(instanceID, pinID string) *circuit.Net {
	for _, name := range s.netOrder {
		net := s.nets[name]
		if net.HasNode(instanceID, pinID) {
			return net
		}
	}
	return nil
}

// allocateNet creates an empty auto-named net. Supply nets use the PWR
// prefix, everything else NET.
func (s *Schematic) allocateNet(supply bool) *circuit.Net {
	prefix := "NET"
	if supply {
		prefix = "PWR"
	}
	var name string
	for {
		name = fmt.Sprintf("%s%03d", prefix, s.nextNetID)
		s.nextNetID++
		if _, taken := s.nets[name]; !taken {
			break
		}
	}
	net := &circuit.Net{Name: name}
	s.nets[name] = net
	s.netOrder = append(s.netOrder, name)
	return net
}

// mergeNets appends absorbed's nodes to keeper and removes absorbed.
// Connections recorded against the absorbed net follow their pins into
// the keeper.
func (s *Schematic) mergeNets(keeper, absorbed *circuit.Net) {
	keeper.Nodes = append(keeper.Nodes, absorbed.Nodes...)
	for _, id := range s.connOrder {
		if conn := s.connections[id]; conn.NetName == absorbed.Name {
			conn.NetName = keeper.Name
		}
	}
	s.dropNet(absorbed.Name)
}

// dropNet removes a net and scrubs references to it from connections,
// buses and differential pairs.
func (s *Schematic) dropNet(name string) {
	delete(s.nets, name)
	s.netOrder = removeString(s.netOrder, name)
	for _, id := range s.connOrder {
		if conn := s.connections[id]; conn.NetName == name {
			conn.NetName = ""
		}
	}
	for _, bus := range s.buses {
		delete(bus.Nets, name)
	}
	for pairName, pair := range s.diffPairs {
		if pair.PositiveNet != name && pair.NegativeNet != name {
			continue
		}
		for _, partner := range []string{pair.PositiveNet, pair.NegativeNet} {
			if other, ok := s.nets[partner]; ok && other.DifferentialPair == pairName {
				other.DifferentialPair = ""
			}
		}
		delete(s.diffPairs, pairName)
		for _, bus := range s.buses {
			delete(bus.DifferentialPairs, pairName)
		}
	}
}

// detachNodesForComponent strips every node of the given component from a
// net. The net is dropped once it has no nodes left.
func (s *Schematic) detachNodesForComponent(net *circuit.Net, instanceID string) {
	kept := net.Nodes[:0]
	for _, node := range net.Nodes {
		if node.ComponentID != instanceID {
			kept = append(kept, node)
		}
	}
	net.Nodes = kept
	if len(net.Nodes) == 0 {
		s.dropNet(net.Name)
	}
}

func isAutoNetName(name string) bool {
	if len(name) != 6 {
		return false
	}
	prefix := name[:3]
	if prefix != "NET" && prefix != "PWR" {
		return false
	}
	for _, r := range name[3:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
