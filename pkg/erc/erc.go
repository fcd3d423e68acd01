// Package erc implements the electrical rule checker. Check is a pure
// function of the model snapshot: it never mutates anything and never
// fails, an empty diagnostic list means the circuit is valid.
package erc

import (
	"fmt"
	"sort"

	"github.com/circuitsmith/circuitsmith/pkg/circuit"
)

// Diagnostic codes.
const (
	CodeShort             = "ERC_SHORT"
	CodeDriverConflict    = "ERC_DRIVER_CONFLICT"
	CodeAnalogMix         = "ERC_ANALOG_MIX"
	CodeUnconnectedPower  = "ERC_UNCONNECTED_POWER"
	CodeUnconnectedGround = "ERC_UNCONNECTED_GROUND"
	CodeNoController      = "ERC_NO_CONTROLLER"
)

// Model is the read-only view of a circuit the checker needs.
type Model interface {
	Nets() []*circuit.Net
	Components() []*circuit.ComponentInstance
	Definition(definitionID string) (*circuit.ComponentDefinition, bool)
}

// drivenTypes are pin types that actively drive a net.
var drivenTypes = map[circuit.PinType]bool{
	circuit.PinDigital: true,
	circuit.PinPWM:     true,
	circuit.PinSPI:     true,
	circuit.PinSerial:  true,
	circuit.PinI2C:     true,
}

// Check runs every rule and returns the combined diagnostics. Rules run
// in a fixed order; within a rule, nets are visited in creation order and
// components sorted by instance id, so the output is deterministic.
func Check(m Model) []circuit.Diagnostic {
	var diags []circuit.Diagnostic
	diags = append(diags, checkShorts(m)...)
	diags = append(diags, checkDriverConflicts(m)...)
	diags = append(diags, checkAnalogMix(m)...)
	diags = append(diags, checkUnconnectedSupply(m)...)
	diags = append(diags, checkController(m)...)
	return diags
}

// checkShorts flags nets that tie a power pin to a ground pin.
func checkShorts(m Model) []circuit.Diagnostic {
	var diags []circuit.Diagnostic
	for _, net := range m.Nets() {
		var hasPower, hasGround bool
		for _, node := range net.Nodes {
			switch node.PinType {
			case circuit.PinPower:
				hasPower = true
			case circuit.PinGround:
				hasGround = true
			}
		}
		if hasPower && hasGround {
			diags = append(diags, circuit.Diagnostic{
				Code:       CodeShort,
				Message:    fmt.Sprintf("net %s connects power to ground", net.Name),
				Severity:   circuit.SeverityError,
				RelatedNet: net.Name,
			})
		}
	}
	return diags
}

// checkDriverConflicts flags nets with more than one driving pin.
func checkDriverConflicts(m Model) []circuit.Diagnostic {
	var diags []circuit.Diagnostic
	for _, net := range m.Nets() {
		drivers := 0
		for _, node := range net.Nodes {
			if drivenTypes[node.PinType] {
				drivers++
			}
		}
		if drivers > 1 {
			diags = append(diags, circuit.Diagnostic{
				Code:       CodeDriverConflict,
				Message:    fmt.Sprintf("net %s has %d driving pins tied together", net.Name, drivers),
				Severity:   circuit.SeverityError,
				RelatedNet: net.Name,
			})
		}
	}
	return diags
}

// checkAnalogMix flags nets that mix an analog pin with a driven pin.
func checkAnalogMix(m Model) []circuit.Diagnostic {
	var diags []circuit.Diagnostic
	for _, net := range m.Nets() {
		var hasAnalog, hasDriven bool
		for _, node := range net.Nodes {
			if node.PinType == circuit.PinAnalog {
				hasAnalog = true
			}
			if drivenTypes[node.PinType] {
				hasDriven = true
			}
		}
		if hasAnalog && hasDriven {
			diags = append(diags, circuit.Diagnostic{
				Code:       CodeAnalogMix,
				Message:    fmt.Sprintf("net %s mixes analog and digital signals", net.Name),
				Severity:   circuit.SeverityWarning,
				RelatedNet: net.Name,
			})
		}
	}
	return diags
}

// checkUnconnectedSupply flags power and ground pins that belong to no
// net. Unconnected power is an error, unconnected ground a warning.
func checkUnconnectedSupply(m Model) []circuit.Diagnostic {
	nets := m.Nets()
	connected := func(componentID, pinID string) bool {
		for _, net := range nets {
			if net.HasNode(componentID, pinID) {
				return true
			}
		}
		return false
	}

	instances := append([]*circuit.ComponentInstance(nil), m.Components()...)
	sort.Slice(instances, func(i, j int) bool {
		return instances[i].InstanceID < instances[j].InstanceID
	})

	var diags []circuit.Diagnostic
	for _, inst := range instances {
		def, ok := m.Definition(inst.DefinitionID)
		if !ok {
			continue
		}
		for _, pin := range def.Pins {
			if pin.Type != circuit.PinPower && pin.Type != circuit.PinGround {
				continue
			}
			if connected(inst.InstanceID, pin.ID) {
				continue
			}
			if pin.Type == circuit.PinPower {
				diags = append(diags, circuit.Diagnostic{
					Code:             CodeUnconnectedPower,
					Message:          fmt.Sprintf("power pin %s of %s is unconnected", pin.ID, inst.InstanceID),
					Severity:         circuit.SeverityError,
					RelatedComponent: inst.InstanceID,
				})
			} else {
				diags = append(diags, circuit.Diagnostic{
					Code:             CodeUnconnectedGround,
					Message:          fmt.Sprintf("ground pin %s of %s is unconnected", pin.ID, inst.InstanceID),
					Severity:         circuit.SeverityWarning,
					RelatedComponent: inst.InstanceID,
				})
			}
		}
	}
	return diags
}

// checkController warns when the circuit has no controller board.
func checkController(m Model) []circuit.Diagnostic {
	for _, inst := range m.Components() {
		if def, ok := m.Definition(inst.DefinitionID); ok && def.Type == circuit.TypeArduinoBoard {
			return nil
		}
	}
	if len(m.Components()) == 0 {
		return nil
	}
	return []circuit.Diagnostic{{
		Code:     CodeNoController,
		Message:  "circuit has no controller board",
		Severity: circuit.SeverityWarning,
	}}
}
