// Package circuit defines the domain model shared by the component catalog,
// the connectivity graph, and the electrical rule checker: component
// definitions and instances, connections, nets, buses, differential pairs and
// hierarchical sheets.
package circuit

// PinType classifies the electrical function of a pin.
type PinType string

const (
	PinDigital PinType = "digital"
	PinAnalog  PinType = "analog"
	PinPWM     PinType = "pwm"
	PinPower   PinType = "power"
	PinGround  PinType = "ground"
	PinI2C     PinType = "i2c"
	PinSPI     PinType = "spi"
	PinSerial  PinType = "serial"
)

// ValidPinType reports whether s names a known pin type.
func ValidPinType(s string) bool {
	switch PinType(s) {
	case PinDigital, PinAnalog, PinPWM, PinPower, PinGround, PinI2C, PinSPI, PinSerial:
		return true
	}
	return false
}

// ComponentType classifies circuit components.
type ComponentType string

const (
	TypeArduinoBoard  ComponentType = "arduino_board"
	TypeLED           ComponentType = "led"
	TypeResistor      ComponentType = "resistor"
	TypeButton        ComponentType = "button"
	TypePotentiometer ComponentType = "potentiometer"
	TypeServo         ComponentType = "servo"
	TypeMotor         ComponentType = "motor"
	TypeSensor        ComponentType = "sensor"
	TypeBreadboard    ComponentType = "breadboard"
	TypeWire          ComponentType = "wire"
	TypeBattery       ComponentType = "battery"
	TypeCapacitor     ComponentType = "capacitor"
	TypeTransistor    ComponentType = "transistor"
	TypeIC            ComponentType = "ic"
)

// ValidComponentType reports whether s names a known component type.
func ValidComponentType(s string) bool {
	switch ComponentType(s) {
	case TypeArduinoBoard, TypeLED, TypeResistor, TypeButton, TypePotentiometer,
		TypeServo, TypeMotor, TypeSensor, TypeBreadboard, TypeWire, TypeBattery,
		TypeCapacitor, TypeTransistor, TypeIC:
		return true
	}
	return false
}

// Point is a 2D coordinate in the component's local coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pin is a connection point on a component definition. Immutable once the
// definition is constructed.
type Pin struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Type     PinType `json:"pin_type"`
	Position Point   `json:"position"`
}

// Graphic is a single drawing primitive of a symbol body. Type is one of
// "polygon", "rect" or "circle"; arcs are approximated as 3-point polygons.
type Graphic struct {
	Type   string    `json:"type"`
	Points []Point   `json:"points,omitempty"` // polygon vertices
	Rect   []float64 `json:"rect,omitempty"`   // x, y, width, height
	Center Point     `json:"center"`
	Radius float64   `json:"radius,omitempty"`
	Width  float64   `json:"width"`          // stroke width
	Pen    string    `json:"pen"`            // stroke color
	Fill   string    `json:"fill,omitempty"` // empty when unfilled
}

// ComponentDefinition describes a symbol from a library. Definitions are
// created once by the parser or catalog loader and are read-only afterwards;
// instances reference them by ID only.
type ComponentDefinition struct {
	ID           string            `json:"id"` // "<library>:<symbol>"
	Name         string            `json:"name"`
	Type         ComponentType     `json:"component_type"`
	Width        float64           `json:"width"`
	Height       float64           `json:"height"`
	Pins         []Pin             `json:"pins"`
	Graphics     []Graphic         `json:"graphics,omitempty"`
	Description  string            `json:"description"`
	DatasheetURL string            `json:"datasheet_url,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// PinByID returns the pin with the given id, if any.
func (d *ComponentDefinition) PinByID(id string) (Pin, bool) {
	for _, p := range d.Pins {
		if p.ID == id {
			return p, true
		}
	}
	return Pin{}, false
}

// Well-known instance property keys. Properties is otherwise an open map.
const (
	PropReference = "reference"
	PropValue     = "value"
)

// ComponentInstance is a placed component in the circuit.
type ComponentInstance struct {
	InstanceID   string            `json:"instance_id"`
	DefinitionID string            `json:"definition_id"`
	X            float64           `json:"x"`
	Y            float64           `json:"y"`
	Rotation     float64           `json:"rotation"`
	Properties   map[string]string `json:"properties"`
	SheetID      string            `json:"sheet_id,omitempty"`
}

// Connection is a user-drawn wire between exactly two pins.
type Connection struct {
	ConnectionID  string `json:"connection_id"`
	FromComponent string `json:"from_component"`
	FromPin       string `json:"from_pin"`
	ToComponent   string `json:"to_component"`
	ToPin         string `json:"to_pin"`
	WireColor     string `json:"wire_color"`
	NetName       string `json:"net_name,omitempty"`
}

// NetNode records a pin's membership in a net.
type NetNode struct {
	ComponentID string   `json:"component_id"`
	PinID       string   `json:"pin_id"`
	PinType     PinType  `json:"pin_type"`
	SheetPath   []string `json:"sheet_path,omitempty"`
}

// Net is a maximal set of pins that are electrically the same node.
// A given (component, pin) pair appears in at most one net at any time.
type Net struct {
	Name             string            `json:"name"`
	Nodes            []NetNode         `json:"nodes"`
	Attributes       map[string]string `json:"attributes,omitempty"`
	Bus              string            `json:"bus,omitempty"`
	DifferentialPair string            `json:"differential_pair,omitempty"`
}

// HasNode reports whether the (component, pin) pair is a member of the net.
func (n *Net) HasNode(componentID, pinID string) bool {
	for _, node := range n.Nodes {
		if node.ComponentID == componentID && node.PinID == pinID {
			return true
		}
	}
	return false
}

// Bus aggregates related nets under one name.
type Bus struct {
	Name              string                       `json:"name"`
	Nets              map[string]bool              `json:"nets"`
	DifferentialPairs map[string]*DifferentialPair `json:"differential_pairs,omitempty"`
}

// DifferentialPair links two nets carrying a balanced signal.
type DifferentialPair struct {
	Name        string `json:"name"`
	PositiveNet string `json:"positive_net"`
	NegativeNet string `json:"negative_net"`
}

// HierarchicalPort is a named boundary signal of a sheet.
type HierarchicalPort struct {
	Name      string  `json:"name"`
	Type      PinType `json:"pin_type"`
	Direction string  `json:"direction"` // input, output, bidirectional
	NetName   string  `json:"net_name,omitempty"`
}

// Sheet declares a reusable sub-circuit port interface.
type Sheet struct {
	SheetID  string             `json:"sheet_id"`
	Name     string             `json:"name"`
	ParentID string             `json:"parent_id,omitempty"`
	Ports    []HierarchicalPort `json:"ports,omitempty"`
}

// PortByName returns the declared port with the given name, if any.
func (s *Sheet) PortByName(name string) (HierarchicalPort, bool) {
	for _, p := range s.Ports {
		if p.Name == name {
			return p, true
		}
	}
	return HierarchicalPort{}, false
}

// SheetInstance binds a sheet's ports to nets at a hierarchical path. The
// instance id stands in for a component id when its ports are assigned to
// nets, so an instance acts as a virtual component.
type SheetInstance struct {
	InstanceID string                       `json:"instance_id"`
	SheetID    string                       `json:"sheet_id"`
	ParentPath []string                     `json:"parent_path,omitempty"`
	Ports      map[string]*HierarchicalPort `json:"ports"`
}

// Diagnostic severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Diagnostic is a single electrical-rule finding. Diagnostics are value
// objects; they are never persisted as part of circuit state.
type Diagnostic struct {
	Code             string `json:"code"`
	Message          string `json:"message"`
	Severity         string `json:"severity"`
	RelatedNet       string `json:"related_net,omitempty"`
	RelatedComponent string `json:"related_component,omitempty"`
}
