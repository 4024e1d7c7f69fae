package model

import (
	"github.com/AaronC81/hiloz/logic"
	"github.com/AaronC81/hiloz/vm"
)

// Pin is one instance-level signal terminal: its driven value, and the
// passive pull used when no net driver exists.
type Pin struct {
	Definition *PinDefinition
	Value      logic.Value
	Pull       logic.Value
}

// Variable is one instance-level named storage slot.
type Variable struct {
	Definition *VariableDefinition
	Value      vm.Object
}

// Component is one instantiated component: its pins and variables in the
// same order as its definition, plus its append-only dump trace.
type Component struct {
	InstanceName string
	Definition   *ComponentDefinition
	Pins         []Pin
	Variables    []Variable

	ConstructorArguments []vm.Object
	Dumps                []vm.Object
}

// NewComponent creates a freshly-instantiated component with every pin
// Unknown/Unknown and every variable set to its definition's Initial value
// (Null when the member has no initializer).
func NewComponent(instanceName string, def *ComponentDefinition) *Component {
	pins := make([]Pin, len(def.Pins))
	for i, pd := range def.Pins {
		pins[i] = Pin{Definition: pd, Value: logic.Unknown, Pull: logic.Unknown}
	}
	vars := make([]Variable, len(def.Variables))
	for i, vd := range def.Variables {
		vars[i] = Variable{Definition: vd, Value: vd.Initial}
	}
	return &Component{
		InstanceName: instanceName,
		Definition:   def,
		Pins:         pins,
		Variables:    vars,
	}
}

func (c *Component) clone() *Component {
	pins := make([]Pin, len(c.Pins))
	copy(pins, c.Pins)
	vars := make([]Variable, len(c.Variables))
	copy(vars, c.Variables)
	dumps := make([]vm.Object, len(c.Dumps))
	copy(dumps, c.Dumps)
	return &Component{
		InstanceName:         c.InstanceName,
		Definition:           c.Definition,
		Pins:                 pins,
		Variables:            vars,
		ConstructorArguments: c.ConstructorArguments,
		Dumps:                dumps,
	}
}

// PinConnection addresses one pin on one component instance by index pair.
type PinConnection struct {
	ComponentIdx int
	PinIdx       int
}

// Connection (a "net") is an ordered set of electrically-joined pins.
type Connection struct {
	Pins []PinConnection
}

func containsConnection(pins []PinConnection, target PinConnection) bool {
	for _, p := range pins {
		if p == target {
			return true
		}
	}
	return false
}
