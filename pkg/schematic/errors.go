package schematic

import "errors"

// Caller-contract violations. Operations that hit one of these fail without
// mutating any state.
var (
	ErrUnknownDefinition = errors.New("schematic: unknown component definition")
	ErrUnknownComponent  = errors.New("schematic: unknown component instance")
	ErrUnknownPin        = errors.New("schematic: unknown pin")
	ErrUnknownConnection = errors.New("schematic: unknown connection")
	ErrUnknownNet        = errors.New("schematic: unknown net")
	ErrUnknownBus        = errors.New("schematic: unknown bus")
	ErrUnknownSheet      = errors.New("schematic: unknown sheet")
	ErrUnknownPort       = errors.New("schematic: unknown sheet port")
	ErrPinInUse          = errors.New("schematic: pin already connected")
	ErrDuplicateName     = errors.New("schematic: name already in use")
)
