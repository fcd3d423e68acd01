package schematic

import (
	"fmt"
	"sort"

	"github.com/circuitsmith/circuitsmith/pkg/circuit"
)

// CreateNet registers an empty named net. The name must be unused.
func (s *Schematic) CreateNet(name string) (*circuit.Net, error) {
	if _, taken := s.nets[name]; taken {
		return nil, fmt.Errorf("%w: net %s", ErrDuplicateName, name)
	}
	net := &circuit.Net{Name: name}
	s.nets[name] = net
	s.netOrder = append(s.netOrder, name)
	s.emit(CircuitChanged{})
	return net, nil
}

// AssignPinToNet adds a pin to a named net, detaching it from whichever
// net held it before. The net is created if it does not exist yet.
func (s *Schematic) AssignPinToNet(netName, instanceID, pinID string) error {
	pin, err := s.pinDefinition(instanceID, pinID)
	if err != nil {
		return err
	}
	net, ok := s.nets[netName]
	if !ok {
		net = &circuit.Net{Name: netName}
		s.nets[netName] = net
		s.netOrder = append(s.netOrder, netName)
	}

	s.assignNode(net, s.netNodeFor(instanceID, pinID, pin))
	s.emit(CircuitChanged{})
	return nil
}

// RemoveNet deletes a named net. Connections between its pins survive;
// the partition they imply is recomputed on the next rebuild.
func (s *Schematic) RemoveNet(name string) error {
	if _, ok := s.nets[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNet, name)
	}
	s.dropNet(name)
	s.emit(CircuitChanged{})
	return nil
}

// Net returns the named net.
func (s *Schematic) Net(name string) (*circuit.Net, bool) {
	net, ok := s.nets[name]
	return net, ok
}

// Nets returns every net in creation order.
func (s *Schematic) Nets() []*circuit.Net {
	result := make([]*circuit.Net, 0, len(s.netOrder))
	for _, name := range s.netOrder {
		result = append(result, s.nets[name])
	}
	return result
}

// RenumberNets renames every net to a dense NET001, NET002, … sequence,
// visiting nets sorted by their current name, and remaps every
// back-reference (connection net names, bus membership, differential
// pairs).
func (s *Schematic) RenumberNets() {
	oldNames := make([]string, 0, len(s.netOrder))
	oldNames = append(oldNames, s.netOrder...)
	sort.Strings(oldNames)

	renamed := make(map[string]string, len(oldNames))
	fresh := make(map[string]*circuit.Net, len(oldNames))
	for i, old := range oldNames {
		name := fmt.Sprintf("NET%03d", i+1)
		renamed[old] = name
		net := s.nets[old]
		net.Name = name
		fresh[name] = net
	}

	s.nets = fresh
	s.netOrder = s.netOrder[:0]
	for _, old := range oldNames {
		s.netOrder = append(s.netOrder, renamed[old])
	}

	for _, id := range s.connOrder {
		conn := s.connections[id]
		if next, ok := renamed[conn.NetName]; ok {
			conn.NetName = next
		}
	}
	for _, bus := range s.buses {
		nets := make(map[string]bool, len(bus.Nets))
		for old := range bus.Nets {
			if next, ok := renamed[old]; ok {
				nets[next] = true
			}
		}
		bus.Nets = nets
	}
	for _, pair := range s.diffPairs {
		if next, ok := renamed[pair.PositiveNet]; ok {
			pair.PositiveNet = next
		}
		if next, ok := renamed[pair.NegativeNet]; ok {
			pair.NegativeNet = next
		}
	}

	s.nextNetID = len(oldNames) + 1
	s.emit(CircuitChanged{})
}

// Buses

// CreateBus registers a named bus grouping.
func (s *Schematic) CreateBus(name string) (*circuit.Bus, error) {
	if _, taken := s.buses[name]; taken {
		return nil, fmt.Errorf("%w: bus %s", ErrDuplicateName, name)
	}
	bus := &circuit.Bus{
		Name:              name,
		Nets:              make(map[string]bool),
		DifferentialPairs: make(map[string]*circuit.DifferentialPair),
	}
	s.buses[name] = bus
	s.emit(CircuitChanged{})
	return bus, nil
}

// AddNetToBus adds an existing net to a bus.
func (s *Schematic) AddNetToBus(busName, netName string) error {
	bus, ok := s.buses[busName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBus, busName)
	}
	net, ok := s.nets[netName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNet, netName)
	}
	bus.Nets[netName] = true
	net.Bus = busName
	s.emit(CircuitChanged{})
	return nil
}

// Bus returns the named bus.
func (s *Schematic) Bus(name string) (*circuit.Bus, bool) {
	bus, ok := s.buses[name]
	return bus, ok
}

// Buses returns every bus sorted by name.
func (s *Schematic) Buses() []*circuit.Bus {
	names := make([]string, 0, len(s.buses))
	for name := range s.buses {
		names = append(names, name)
	}
	sort.Strings(names)
	result := make([]*circuit.Bus, 0, len(names))
	for _, name := range names {
		result = append(result, s.buses[name])
	}
	return result
}

// DefineDifferentialPair links two existing nets as a differential pair,
// optionally attached to a bus.
func (s *Schematic) DefineDifferentialPair(name, positiveNet, negativeNet, busName string) (*circuit.DifferentialPair, error) {
	pos, ok := s.nets[positiveNet]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNet, positiveNet)
	}
	neg, ok := s.nets[negativeNet]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNet, negativeNet)
	}
	if _, taken := s.diffPairs[name]; taken {
		return nil, fmt.Errorf("%w: differential pair %s", ErrDuplicateName, name)
	}
	var bus *circuit.Bus
	if busName != "" {
		bus, ok = s.buses[busName]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBus, busName)
		}
	}
	pair := &circuit.DifferentialPair{
		Name:        name,
		PositiveNet: positiveNet,
		NegativeNet: negativeNet,
	}
	s.diffPairs[name] = pair
	pos.DifferentialPair = name
	neg.DifferentialPair = name
	if bus != nil {
		bus.DifferentialPairs[name] = pair
	}
	s.emit(CircuitChanged{})
	return pair, nil
}

// DifferentialPair returns the named pair.
func (s *Schematic) DifferentialPair(name string) (*circuit.DifferentialPair, bool) {
	pair, ok := s.diffPairs[name]
	return pair, ok
}

// DifferentialPairs returns every pair sorted by name.
func (s *Schematic) DifferentialPairs() []*circuit.DifferentialPair {
	names := make([]string, 0, len(s.diffPairs))
	for name := range s.diffPairs {
		names = append(names, name)
	}
	sort.Strings(names)
	result := make([]*circuit.DifferentialPair, 0, len(names))
	for _, name := range names {
		result = append(result, s.diffPairs[name])
	}
	return result
}
