package schematic

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/circuitsmith/circuitsmith/pkg/circuit"
)

// referencePrefixes maps component types to their designator prefix.
var referencePrefixes = map[circuit.ComponentType]string{
	circuit.TypeResistor:      "R",
	circuit.TypeCapacitor:     "C",
	circuit.TypeLED:           "D",
	circuit.TypeButton:        "S",
	circuit.TypePotentiometer: "RV",
	circuit.TypeServo:         "M",
	circuit.TypeMotor:         "M",
	circuit.TypeSensor:        "U",
	circuit.TypeIC:            "U",
	circuit.TypeBreadboard:    "BRD",
	circuit.TypeTransistor:    "Q",
	circuit.TypeWire:          "W",
	circuit.TypeBattery:       "BAT",
	circuit.TypeArduinoBoard:  "A",
}

// generateReference allocates the next designator for a component type,
// e.g. R1, R2 for resistors.
func (s *Schematic) generateReference(t circuit.ComponentType) string {
	prefix, ok := referencePrefixes[t]
	if !ok {
		prefix = "U"
	}
	s.annotationCounters[t]++
	return fmt.Sprintf("%s%d", prefix, s.annotationCounters[t])
}

// RenumberAnnotations reassigns reference designators from scratch so the
// numbering is dense again after removals. Instances are visited grouped
// by type, ordered by the numeric suffix of their instance id so the
// result is stable across calls.
func (s *Schematic) RenumberAnnotations() {
	s.annotationCounters = make(map[circuit.ComponentType]int)

	instances := s.Components()
	sort.SliceStable(instances, func(i, j int) bool {
		ti, tj := s.instanceType(instances[i]), s.instanceType(instances[j])
		if ti != tj {
			return ti < tj
		}
		return instanceOrdinal(instances[i].InstanceID) < instanceOrdinal(instances[j].InstanceID)
	})

	for _, inst := range instances {
		inst.Properties[circuit.PropReference] = s.generateReference(s.instanceType(inst))
	}
}

func (s *Schematic) instanceType(inst *circuit.ComponentInstance) circuit.ComponentType {
	if def, ok := s.catalog.Get(inst.DefinitionID); ok {
		return def.Type
	}
	return circuit.TypeIC
}

// instanceOrdinal extracts the trailing number from ids like "comp_12".
func instanceOrdinal(id string) int {
	idx := strings.LastIndex(id, "_")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(id[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
