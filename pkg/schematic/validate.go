package schematic

import (
	"github.com/circuitsmith/circuitsmith/pkg/circuit"
	"github.com/circuitsmith/circuitsmith/pkg/erc"
)

// RunERC executes the electrical rule checks against the current state.
func (s *Schematic) RunERC() []circuit.Diagnostic {
	return erc.Check(s)
}

// Validate runs the rule checks and reports whether the circuit is free
// of error-severity findings. Warnings do not make a circuit invalid.
// A CircuitValidated event is emitted with the full result.
func (s *Schematic) Validate() (bool, []circuit.Diagnostic) {
	diags := s.RunERC()
	valid := true
	for _, d := range diags {
		if d.Severity == circuit.SeverityError {
			valid = false
			break
		}
	}
	s.emit(CircuitValidated{IsValid: valid, Diagnostics: diags})
	return valid, diags
}
