// Package model holds the typed store of component definitions, instances,
// pins, variables and connections, plus the net-resolution algebra and the
// discrete-event scheduler that drives simulation.
package model

import "github.com/AaronC81/hiloz/vm"

// PinDefinition names one pin terminal on a ComponentDefinition. Interned by
// name within the owning definition.
type PinDefinition struct {
	Name string
}

// VariableDefinition names one component-level storage slot. Initial is
// the constant every instance's slot starts at; its zero value is Null.
type VariableDefinition struct {
	Name    string
	Initial vm.Object
}

// ComponentDefinition is a component "class": its ordered pins and
// variables, its optional constructor, its optional script, and any named
// helper functions, all shared and immutable once compiled.
type ComponentDefinition struct {
	Name          string
	Pins          []*PinDefinition
	Variables     []*VariableDefinition
	Constructor   *vm.Function
	Script        *vm.Function
	Functions     map[string]*vm.Function
	FunctionNames []string // source order, for deterministic iteration
}

// PinIdx looks up a pin by name within this definition. O(n) over the
// ordered pin list, matching source order.
func (d *ComponentDefinition) PinIdx(name string) (int, bool) {
	for i, p := range d.Pins {
		if p.Name == name {
			return i, true
		}
	}
	return 0, false
}

// VariableIdx looks up a variable by name within this definition.
func (d *ComponentDefinition) VariableIdx(name string) (int, bool) {
	for i, v := range d.Variables {
		if v.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Function looks up a named helper function on this definition.
func (d *ComponentDefinition) Function(name string) (*vm.Function, bool) {
	f, ok := d.Functions[name]
	return f, ok
}
