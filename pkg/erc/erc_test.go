package erc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circuitsmith/circuitsmith/pkg/circuit"
)

// fakeModel is a hand-assembled circuit snapshot for rule tests.
type fakeModel struct {
	nets       []*circuit.Net
	components []*circuit.ComponentInstance
	defs       map[string]*circuit.ComponentDefinition
}

func (m *fakeModel) Nets() []*circuit.Net { return m.nets }

func (m *fakeModel) Components() []*circuit.ComponentInstance { return m.components }

func (m *fakeModel) Definition(id string) (*circuit.ComponentDefinition, bool) {
	def, ok := m.defs[id]
	return def, ok
}

func supplyDef(id string) *circuit.ComponentDefinition {
	return &circuit.ComponentDefinition{
		ID:   id,
		Name: id,
		Type: circuit.TypeArduinoBoard,
		Pins: []circuit.Pin{
			{ID: "VCC", Label: "VCC", Type: circuit.PinPower},
			{ID: "GND", Label: "GND", Type: circuit.PinGround},
		},
	}
}

func instance(id, defID string) *circuit.ComponentInstance {
	return &circuit.ComponentInstance{InstanceID: id, DefinitionID: defID, Properties: map[string]string{}}
}

func node(comp, pin string, t circuit.PinType) circuit.NetNode {
	return circuit.NetNode{ComponentID: comp, PinID: pin, PinType: t}
}

func codes(diags []circuit.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func filter(diags []circuit.Diagnostic, code string) []circuit.Diagnostic {
	var out []circuit.Diagnostic
	for _, d := range diags {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

func TestShortCircuitScenario(t *testing.T) {
	// Two supply components wired power-to-power and ground-to-ground,
	// plus one net that ties A's power pin straight to its ground pin.
	m := &fakeModel{
		defs: map[string]*circuit.ComponentDefinition{"lib:supply": supplyDef("lib:supply")},
		components: []*circuit.ComponentInstance{
			instance("A", "lib:supply"),
			instance("B", "lib:supply"),
		},
		nets: []*circuit.Net{
			{Name: "PWR", Nodes: []circuit.NetNode{
				node("A", "VCC", circuit.PinPower),
				node("B", "VCC", circuit.PinPower),
			}},
			{Name: "GND", Nodes: []circuit.NetNode{
				node("A", "GND", circuit.PinGround),
				node("B", "GND", circuit.PinGround),
			}},
			{Name: "SHORT", Nodes: []circuit.NetNode{
				node("A", "VCC", circuit.PinPower),
				node("A", "GND", circuit.PinGround),
			}},
		},
	}

	diags := Check(m)

	shorts := filter(diags, CodeShort)
	require.Len(t, shorts, 1, "exactly one short finding")
	assert.Equal(t, "SHORT", shorts[0].RelatedNet)
	assert.Equal(t, circuit.SeverityError, shorts[0].Severity)

	assert.Empty(t, filter(diags, CodeUnconnectedPower),
		"every power pin is in a net")
}

func TestLonePowerPinScenario(t *testing.T) {
	def := &circuit.ComponentDefinition{
		ID:   "lib:board",
		Name: "board",
		Type: circuit.TypeArduinoBoard,
		Pins: []circuit.Pin{{ID: "VIN", Label: "VIN", Type: circuit.PinPower}},
	}
	m := &fakeModel{
		defs:       map[string]*circuit.ComponentDefinition{"lib:board": def},
		components: []*circuit.ComponentInstance{instance("A", "lib:board")},
	}

	diags := Check(m)
	require.Len(t, diags, 1, "no other rule fires")
	assert.Equal(t, CodeUnconnectedPower, diags[0].Code)
	assert.Equal(t, "A", diags[0].RelatedComponent)
	assert.Equal(t, circuit.SeverityError, diags[0].Severity)
}

func TestDriverConflict(t *testing.T) {
	m := &fakeModel{
		nets: []*circuit.Net{
			{Name: "N1", Nodes: []circuit.NetNode{
				node("A", "TX", circuit.PinSerial),
				node("B", "D1", circuit.PinDigital),
			}},
			{Name: "N2", Nodes: []circuit.NetNode{
				node("A", "D2", circuit.PinDigital),
				node("C", "1", circuit.PinAnalog),
			}},
		},
	}

	diags := filter(Check(m), CodeDriverConflict)
	require.Len(t, diags, 1)
	assert.Equal(t, "N1", diags[0].RelatedNet)
	assert.Equal(t, circuit.SeverityError, diags[0].Severity)
}

func TestAnalogMixWarning(t *testing.T) {
	m := &fakeModel{
		nets: []*circuit.Net{
			{Name: "MIX", Nodes: []circuit.NetNode{
				node("A", "A0", circuit.PinAnalog),
				node("B", "D1", circuit.PinDigital),
			}},
			{Name: "PURE", Nodes: []circuit.NetNode{
				node("A", "A1", circuit.PinAnalog),
				node("C", "1", circuit.PinAnalog),
			}},
		},
	}

	diags := filter(Check(m), CodeAnalogMix)
	require.Len(t, diags, 1)
	assert.Equal(t, "MIX", diags[0].RelatedNet)
	assert.Equal(t, circuit.SeverityWarning, diags[0].Severity)
}

func TestUnconnectedGroundIsWarning(t *testing.T) {
	m := &fakeModel{
		defs:       map[string]*circuit.ComponentDefinition{"lib:supply": supplyDef("lib:supply")},
		components: []*circuit.ComponentInstance{instance("A", "lib:supply")},
		nets: []*circuit.Net{
			{Name: "PWR", Nodes: []circuit.NetNode{
				node("A", "VCC", circuit.PinPower),
			}},
		},
	}

	diags := Check(m)
	grounds := filter(diags, CodeUnconnectedGround)
	require.Len(t, grounds, 1)
	assert.Equal(t, circuit.SeverityWarning, grounds[0].Severity)
	assert.Empty(t, filter(diags, CodeUnconnectedPower))
}

func TestMissingController(t *testing.T) {
	ledDef := &circuit.ComponentDefinition{
		ID:   "lib:led",
		Name: "led",
		Type: circuit.TypeLED,
		Pins: []circuit.Pin{{ID: "A", Type: circuit.PinAnalog}},
	}
	m := &fakeModel{
		defs:       map[string]*circuit.ComponentDefinition{"lib:led": ledDef},
		components: []*circuit.ComponentInstance{instance("L1", "lib:led")},
	}

	diags := Check(m)
	require.Len(t, diags, 1)
	assert.Equal(t, CodeNoController, diags[0].Code)
	assert.Equal(t, circuit.SeverityWarning, diags[0].Severity)

	// Adding a controller silences the warning.
	m.defs["lib:uno"] = supplyDef("lib:uno")
	m.components = append(m.components, instance("U1", "lib:uno"))
	assert.Empty(t, filter(Check(m), CodeNoController))
}

func TestEmptyCircuitIsValid(t *testing.T) {
	assert.Empty(t, Check(&fakeModel{}))
}

func TestDiagnosticOrderingDeterministic(t *testing.T) {
	// A supply-pinned part that is not a controller board, so the missing
	// controller warning fires after the unconnected-supply findings.
	regDef := &circuit.ComponentDefinition{
		ID:   "lib:reg",
		Name: "reg",
		Type: circuit.TypeIC,
		Pins: []circuit.Pin{
			{ID: "VCC", Label: "VCC", Type: circuit.PinPower},
			{ID: "GND", Label: "GND", Type: circuit.PinGround},
		},
	}
	m := &fakeModel{
		defs: map[string]*circuit.ComponentDefinition{"lib:reg": regDef},
		components: []*circuit.ComponentInstance{
			instance("B", "lib:reg"),
			instance("A", "lib:reg"),
		},
	}

	diags := Check(m)
	want := []string{
		CodeUnconnectedPower, CodeUnconnectedGround, // A
		CodeUnconnectedPower, CodeUnconnectedGround, // B
		CodeNoController,
	}
	assert.Equal(t, want, codes(diags))

	// Components are visited sorted by instance id regardless of input
	// order.
	assert.Equal(t, "A", diags[0].RelatedComponent)
	assert.Equal(t, "B", diags[2].RelatedComponent)
}
