package model

import (
	"github.com/AaronC81/hiloz/logic"
	"github.com/AaronC81/hiloz/vm"
)

// ModificationKind tags which field of a Component a ComponentStateModification touches.
type ModificationKind int

const (
	ModifyPin ModificationKind = iota
	ModifyVariable
	ModifyDump
)

// ComponentStateModification is a pending effect emitted by a script: a pin
// write, a component-variable write, or a dump. It is both applied
// immediately to the emitting interpreter's own ComponentIntermediateState
// (so it observes its own writes) and queued for replay onto the
// authoritative Model at commit time.
type ComponentStateModification struct {
	ComponentIdx int
	Kind         ModificationKind
	Idx          int // pin or variable index; unused for ModifyDump
	Value        vm.Object
	LogicValue   logic.Value // populated alongside Value for ModifyPin
}

func (m ComponentStateModification) applyTo(c *Component) {
	switch m.Kind {
	case ModifyPin:
		c.Pins[m.Idx].Value = m.LogicValue
	case ModifyVariable:
		c.Variables[m.Idx].Value = m.Value
	case ModifyDump:
		c.Dumps = append(c.Dumps, m.Value)
	}
}

// ComponentIntermediateState is the per-interpreter clone scripts execute
// against during one scheduler step. Writes apply immediately to this
// clone (own-write visibility) and are separately recorded so the
// scheduler can replay them onto the authoritative Model at commit.
type ComponentIntermediateState struct {
	Graph
	modifications []ComponentStateModification
}

// NewComponentIntermediateState clones g into a fresh state with no
// recorded modifications. Construct uses it to give each constructor a
// clone of the live graph, which already holds earlier constructors'
// writes; Step instead gives every interpreter its own clone of one shared
// per-step snapshot.
func NewComponentIntermediateState(g *Graph) *ComponentIntermediateState {
	return &ComponentIntermediateState{Graph: g.clone()}
}

// Modifications returns everything emitted against this clone so far, in
// emission order.
func (s *ComponentIntermediateState) Modifications() []ComponentStateModification {
	return s.modifications
}

func (s *ComponentIntermediateState) record(m ComponentStateModification) {
	s.modifications = append(s.modifications, m)
	m.applyTo(s.Components[m.ComponentIdx])
}

// ModifyPin implements vm.State.
func (s *ComponentIntermediateState) ModifyPin(componentIdx, pinIdx int, value logic.Value) {
	s.record(ComponentStateModification{
		ComponentIdx: componentIdx,
		Kind:         ModifyPin,
		Idx:          pinIdx,
		LogicValue:   value,
	})
}

// ComponentVariable implements vm.State.
func (s *ComponentIntermediateState) ComponentVariable(componentIdx int, name string) (vm.Object, bool) {
	def := s.Components[componentIdx].Definition
	idx, ok := def.VariableIdx(name)
	if !ok {
		return vm.Object{}, false
	}
	return s.Components[componentIdx].Variables[idx].Value, true
}

// SetComponentVariable implements vm.State.
func (s *ComponentIntermediateState) SetComponentVariable(componentIdx int, name string, value vm.Object) bool {
	def := s.Components[componentIdx].Definition
	idx, ok := def.VariableIdx(name)
	if !ok {
		return false
	}
	s.record(ComponentStateModification{
		ComponentIdx: componentIdx,
		Kind:         ModifyVariable,
		Idx:          idx,
		Value:        value,
	})
	return true
}

// Dump implements vm.State.
func (s *ComponentIntermediateState) Dump(componentIdx int, value vm.Object) {
	s.record(ComponentStateModification{
		ComponentIdx: componentIdx,
		Kind:         ModifyDump,
		Value:        value,
	})
}

var _ vm.State = (*ComponentIntermediateState)(nil)
