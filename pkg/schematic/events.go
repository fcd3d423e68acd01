package schematic

import "github.com/circuitsmith/circuitsmith/pkg/circuit"

// Change events emitted by the model. The GUI layer (or any other consumer)
// registers a Listener and receives typed events; the model carries no
// dependency on any particular UI toolkit.

// Event is a discrete model change notification.
type Event interface {
	isEvent()
}

// ComponentAdded is emitted after a component instance is created.
type ComponentAdded struct{ InstanceID string }

// ComponentRemoved is emitted after a component instance and its cascaded
// connections/net memberships are gone.
type ComponentRemoved struct{ InstanceID string }

// ComponentMoved is emitted after a component changes position.
type ComponentMoved struct {
	InstanceID string
	X, Y       float64
}

// ConnectionAdded is emitted after a connection is stored.
type ConnectionAdded struct{ ConnectionID string }

// ConnectionRemoved is emitted after a connection is deleted.
type ConnectionRemoved struct{ ConnectionID string }

// CircuitChanged is emitted after any mutation of design state.
type CircuitChanged struct{}

// CircuitValidated is emitted after an ERC run triggered through Validate.
type CircuitValidated struct {
	IsValid     bool
	Diagnostics []circuit.Diagnostic
}

// SheetsChanged is emitted after the sheet set changes.
type SheetsChanged struct{}

// ActiveSheetChanged is emitted after the active sheet switches.
type ActiveSheetChanged struct{ SheetID string }

func (ComponentAdded) isEvent()     {}
func (ComponentRemoved) isEvent()   {}
func (ComponentMoved) isEvent()     {}
func (ConnectionAdded) isEvent()    {}
func (ConnectionRemoved) isEvent()  {}
func (CircuitChanged) isEvent()     {}
func (CircuitValidated) isEvent()   {}
func (SheetsChanged) isEvent()      {}
func (ActiveSheetChanged) isEvent() {}

// Listener receives model change events.
type Listener func(Event)

// Subscribe registers a listener for all subsequent events.
func (s *Schematic) Subscribe(fn Listener) {
	s.listeners = append(s.listeners, fn)
}

func (s *Schematic) emit(e Event) {
	for _, fn := range s.listeners {
		fn(e)
	}
}
