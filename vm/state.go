package vm

import "github.com/AaronC81/hiloz/logic"

// State is the shared-state contract the VM needs from its host: reading
// and writing pins and component variables, and recording dumps. The model
// package's ComponentIntermediateState is the only implementation, but
// keeping this as an interface here (rather than importing the model
// package) avoids a cycle between the bytecode engine and the component
// graph it operates on.
type State interface {
	// PinValue resolves the net-aware value of one pin, per the connectivity
	// algebra. Returns an error if the pin's net is in conflict.
	PinValue(componentIdx, pinIdx int) (logic.Value, error)

	// ModifyPin records a pending pin write, visible to subsequent reads
	// against this same State.
	ModifyPin(componentIdx, pinIdx int, value logic.Value)

	// ComponentVariable reads a named variable on the given component. The
	// second return value is false if no such variable is defined.
	ComponentVariable(componentIdx int, name string) (Object, bool)

	// SetComponentVariable writes a named variable on the given component.
	// Returns false if no such variable is defined.
	SetComponentVariable(componentIdx int, name string, value Object) bool

	// Dump records a trace value emitted by the given component.
	Dump(componentIdx int, value Object)
}
