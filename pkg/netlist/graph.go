// Package netlist computes the partition of pins into electrical nets from a
// component/connection snapshot. The partition is built by net merging: nets
// grow as connections are processed and two nets touched by one connection
// are merged wholesale. After all connections are processed, any two pins
// joined by a path of connections share a net, and no net holds a pin that
// is not transitively connected to every other pin in it.
package netlist

import (
	"fmt"
	"strings"

	"github.com/circuitsmith/circuitsmith/pkg/circuit"
)

// PinRef identifies one pin of one component instance.
type PinRef struct {
	ComponentID string
	PinID       string
}

func (r PinRef) String() string {
	return r.ComponentID + "." + r.PinID
}

// Graph holds the computed net partition.
type Graph struct {
	netOrder []string                // net names in creation order
	nets     map[string]*circuit.Net // live nets; merged-away nets are removed
	nodeNet  map[PinRef]string       // pin -> owning net name
	pinOrder []PinRef                // every known pin, in snapshot order
	known    map[PinRef]circuit.NetNode
	counter  int
}

// Build constructs the connection graph. One graph node is created per
// (component, pin) pair; connections are then applied in the given order.
// A connection referencing an unknown component or pin is skipped.
func Build(
	instances []*circuit.ComponentInstance,
	connections []*circuit.Connection,
	lookup func(definitionID string) (*circuit.ComponentDefinition, bool),
) *Graph {
	g := &Graph{
		nets:    make(map[string]*circuit.Net),
		nodeNet: make(map[PinRef]string),
		known:   make(map[PinRef]circuit.NetNode),
	}

	for _, inst := range instances {
		def, ok := lookup(inst.DefinitionID)
		if !ok {
			continue
		}
		var sheetPath []string
		if inst.SheetID != "" {
			sheetPath = []string{inst.SheetID}
		}
		for _, pin := range def.Pins {
			ref := PinRef{ComponentID: inst.InstanceID, PinID: pin.ID}
			g.known[ref] = circuit.NetNode{
				ComponentID: inst.InstanceID,
				PinID:       pin.ID,
				PinType:     pin.Type,
				SheetPath:   sheetPath,
			}
			g.pinOrder = append(g.pinOrder, ref)
		}
	}

	for _, conn := range connections {
		from := PinRef{ComponentID: conn.FromComponent, PinID: conn.FromPin}
		to := PinRef{ComponentID: conn.ToComponent, PinID: conn.ToPin}
		g.connect(from, to)
	}

	return g
}

// connect places both endpoints in the same net, creating or merging nets as
// needed.
func (g *Graph) connect(from, to PinRef) {
	fromNode, fromKnown := g.known[from]
	toNode, toKnown := g.known[to]
	if !fromKnown || !toKnown {
		return
	}

	fromNet, fromHas := g.nodeNet[from]
	toNet, toHas := g.nodeNet[to]

	switch {
	case !fromHas && !toHas:
		g.counter++
		name := fmt.Sprintf("Net%d", g.counter)
		g.nets[name] = &circuit.Net{
			Name:  name,
			Nodes: []circuit.NetNode{fromNode, toNode},
		}
		g.netOrder = append(g.netOrder, name)
		g.nodeNet[from] = name
		g.nodeNet[to] = name

	case fromHas && !toHas:
		net := g.nets[fromNet]
		net.Nodes = append(net.Nodes, toNode)
		g.nodeNet[to] = fromNet

	case !fromHas && toHas:
		net := g.nets[toNet]
		net.Nodes = append(net.Nodes, fromNode)
		g.nodeNet[from] = toNet

	default:
		if fromNet != toNet {
			g.merge(fromNet, toNet)
		}
	}
}

// merge appends every node of the second net to the first and repoints their
// memberships; the second net is deleted.
func (g *Graph) merge(first, second string) {
	a, okA := g.nets[first]
	b, okB := g.nets[second]
	if !okA || !okB {
		return
	}

	a.Nodes = append(a.Nodes, b.Nodes...)
	for _, node := range b.Nodes {
		g.nodeNet[PinRef{ComponentID: node.ComponentID, PinID: node.PinID}] = first
	}
	delete(g.nets, second)
}

// NetForPin returns the net containing the pin, or nil if unconnected.
func (g *Graph) NetForPin(componentID, pinID string) *circuit.Net {
	name, ok := g.nodeNet[PinRef{ComponentID: componentID, PinID: pinID}]
	if !ok {
		return nil
	}
	return g.nets[name]
}

// Nets returns all live nets in creation order.
func (g *Graph) Nets() []*circuit.Net {
	result := make([]*circuit.Net, 0, len(g.nets))
	for _, name := range g.netOrder {
		if net, ok := g.nets[name]; ok {
			result = append(result, net)
		}
	}
	return result
}

// UnconnectedPins returns every pin with no net membership, in snapshot
// order.
func (g *Graph) UnconnectedPins() []PinRef {
	var result []PinRef
	for _, ref := range g.pinOrder {
		if _, ok := g.nodeNet[ref]; !ok {
			result = append(result, ref)
		}
	}
	return result
}

// GenerateNetlist produces a deterministic text dump: one "Net: <name>"
// header per net in creation order, followed by indented component.pin lines
// in append order.
func (g *Graph) GenerateNetlist() string {
	var sb strings.Builder
	sb.WriteString("# Netlist\n\n")
	for _, net := range g.Nets() {
		fmt.Fprintf(&sb, "Net: %s\n", net.Name)
		for _, node := range net.Nodes {
			fmt.Fprintf(&sb, "  - %s.%s\n", node.ComponentID, node.PinID)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
