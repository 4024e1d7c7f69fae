package model

import (
	"testing"

	"github.com/AaronC81/hiloz/logic"
	"github.com/AaronC81/hiloz/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oneOutPinDef() *ComponentDefinition {
	return &ComponentDefinition{Name: "Driver", Pins: []*PinDefinition{{Name: "out"}}}
}

func newTestModel(defs []*ComponentDefinition, comps []*Component, interps []*vm.Interpreter) *Model {
	m := NewModel()
	m.Definitions = defs
	m.Components = comps
	m.Interpreters = interps
	return m
}

func TestScenarioConstantHigh(t *testing.T) {
	def := oneOutPinDef()
	comp := NewComponent("h", def)
	script := &vm.Function{Body: []vm.Instruction{
		vm.Push(vm.NewLogicValue(logic.High)),
		vm.Push(vm.NewInteger(0)),
		vm.GetOwnComponentIdx(),
		vm.ModifyComponentPin(),
		vm.Halt(),
	}}
	interp := vm.NewScriptInterpreter(script, 0)
	m := newTestModel([]*ComponentDefinition{def}, []*Component{comp}, []*vm.Interpreter{interp})

	_, err := m.Step()
	require.NoError(t, err)
	assert.Equal(t, logic.High, m.Components[0].Pins[0].Value)
}

func TestScenarioEmptyModelHaltsImmediately(t *testing.T) {
	m := NewModel()
	result, err := m.Step()
	require.NoError(t, err)
	assert.Equal(t, StepHalted, result.Outcome)
}

func TestScenarioDumpOnConnectedWire(t *testing.T) {
	driverDef := &ComponentDefinition{Name: "Driver", Pins: []*PinDefinition{{Name: "out"}}}
	stubDef := &ComponentDefinition{Name: "Stub", Pins: []*PinDefinition{{Name: "in"}}}

	driverComp := NewComponent("drv", driverDef)
	stubComp := NewComponent("stub", stubDef)

	// sleep(50); out <- H;
	driverScript := &vm.Function{Body: []vm.Instruction{
		vm.Push(vm.NewInteger(50)),
		vm.SuspendSleep(),
		vm.Push(vm.NewLogicValue(logic.High)),
		vm.Push(vm.NewInteger(0)),
		vm.GetOwnComponentIdx(),
		vm.ModifyComponentPin(),
		vm.Halt(),
	}}
	// _dump(in); sleep(100); _dump(in);
	stubScript := &vm.Function{Body: []vm.Instruction{
		vm.Push(vm.NewInteger(0)),
		vm.GetOwnComponentIdx(),
		vm.ReadComponentPin(),
		vm.Dump(),
		vm.Push(vm.NewInteger(100)),
		vm.SuspendSleep(),
		vm.Push(vm.NewInteger(0)),
		vm.GetOwnComponentIdx(),
		vm.ReadComponentPin(),
		vm.Dump(),
		vm.Halt(),
	}}

	driverInterp := vm.NewScriptInterpreter(driverScript, 0)
	stubInterp := vm.NewScriptInterpreter(stubScript, 1)

	m := newTestModel(
		[]*ComponentDefinition{driverDef, stubDef},
		[]*Component{driverComp, stubComp},
		[]*vm.Interpreter{driverInterp, stubInterp},
	)
	m.ConnectPins([]PinConnection{{ComponentIdx: 0, PinIdx: 0}, {ComponentIdx: 1, PinIdx: 0}})

	err := m.Run(100000, nil)
	require.NoError(t, err)

	require.Len(t, m.Components[1].Dumps, 2)
	assert.True(t, vm.NewLogicValue(logic.Unknown).Equal(m.Components[1].Dumps[0]))
	assert.True(t, vm.NewLogicValue(logic.High).Equal(m.Components[1].Dumps[1]))
}

func TestScenarioTriggeredInverter(t *testing.T) {
	driverDef := &ComponentDefinition{Name: "Driver", Pins: []*PinDefinition{{Name: "out"}}}
	notDef := &ComponentDefinition{Name: "NotGate", Pins: []*PinDefinition{{Name: "in"}, {Name: "out"}}}

	driverComp := NewComponent("drv", driverDef)
	notComp := NewComponent("not", notDef)

	// out <- L; loop { sleep(100); out <- !out; _dump(out); }
	//
	// The explicit initial write (not just setting the pin's zero value
	// directly) is what gives the stub's first trigger a net change to
	// react to before the loop's first toggle ever runs.
	driverScript := &vm.Function{Body: []vm.Instruction{
		vm.Push(vm.NewLogicValue(logic.Low)),
		vm.Push(vm.NewInteger(0)),
		vm.GetOwnComponentIdx(),
		vm.ModifyComponentPin(),
		vm.Push(vm.NewInteger(100)),
		vm.SuspendSleep(),
		vm.Push(vm.NewInteger(0)),
		vm.GetOwnComponentIdx(),
		vm.ReadComponentPin(),
		vm.LogicNot(),
		vm.Push(vm.NewInteger(0)),
		vm.GetOwnComponentIdx(),
		vm.ModifyComponentPin(),
		vm.Push(vm.NewInteger(0)),
		vm.GetOwnComponentIdx(),
		vm.ReadComponentPin(),
		vm.Dump(),
		vm.Jump(-13),
	}}
	// loop { trigger; _dump(in); out <- !in; }
	notScript := &vm.Function{Body: []vm.Instruction{
		vm.SuspendTrigger(),
		vm.Push(vm.NewInteger(0)),
		vm.GetOwnComponentIdx(),
		vm.ReadComponentPin(),
		vm.Dump(),
		vm.Push(vm.NewInteger(0)),
		vm.GetOwnComponentIdx(),
		vm.ReadComponentPin(),
		vm.LogicNot(),
		vm.Push(vm.NewInteger(1)),
		vm.GetOwnComponentIdx(),
		vm.ModifyComponentPin(),
		vm.Jump(-12),
	}}

	driverInterp := vm.NewScriptInterpreter(driverScript, 0)
	notInterp := vm.NewScriptInterpreter(notScript, 1)

	m := newTestModel(
		[]*ComponentDefinition{driverDef, notDef},
		[]*Component{driverComp, notComp},
		[]*vm.Interpreter{driverInterp, notInterp},
	)
	m.ConnectPins([]PinConnection{{0, 0}, {1, 0}})

	err := m.Run(550, nil)
	require.NoError(t, err)

	wantDriver := []logic.Value{logic.High, logic.Low, logic.High, logic.Low, logic.High, logic.Low}
	require.Len(t, m.Components[0].Dumps, len(wantDriver))
	for i, want := range wantDriver {
		assert.True(t, vm.NewLogicValue(want).Equal(m.Components[0].Dumps[i]), "driver dump %d", i)
	}

	// The stub's first trigger reacts to the driver's initial out <- L
	// write, one logical toggle "ahead of" the driver's own loop. That
	// offset is exactly what keeps both dump counts at 6: the stub never
	// needs to react to the driver's final toggle before Run's deadline
	// cuts the simulation off right after the driver commits it.
	wantNot := []logic.Value{logic.Low, logic.High, logic.Low, logic.High, logic.Low, logic.High}
	require.Len(t, m.Components[1].Dumps, len(wantNot))
	for i, want := range wantNot {
		assert.True(t, vm.NewLogicValue(want).Equal(m.Components[1].Dumps[i]), "not dump %d", i)
	}
}

func TestConstructRunsBeforeScripts(t *testing.T) {
	def := &ComponentDefinition{Name: "Component", Pins: []*PinDefinition{{Name: "out"}}}
	ctor := &vm.Function{Parameters: []string{"v"}, Body: []vm.Instruction{
		vm.GetParameter(0),
		vm.Push(vm.NewInteger(0)),
		vm.GetOwnComponentIdx(),
		vm.ModifyComponentPin(),
		vm.Halt(),
	}}
	script := &vm.Function{Body: []vm.Instruction{
		vm.Push(vm.NewInteger(0)),
		vm.GetOwnComponentIdx(),
		vm.ReadComponentPin(),
		vm.Dump(),
		vm.Halt(),
	}}

	ch := NewComponent("ch", def)
	cl := NewComponent("cl", def)

	ctorHigh := vm.NewScriptInterpreter(ctor, 0)
	ctorHigh.Frames[0].Arguments = []vm.Object{vm.NewLogicValue(logic.High)}
	ctorLow := vm.NewScriptInterpreter(ctor, 1)
	ctorLow.Frames[0].Arguments = []vm.Object{vm.NewLogicValue(logic.Low)}

	scriptHigh := vm.NewScriptInterpreter(script, 0)
	scriptLow := vm.NewScriptInterpreter(script, 1)

	m := newTestModel(
		[]*ComponentDefinition{def},
		[]*Component{ch, cl},
		[]*vm.Interpreter{scriptHigh, scriptLow},
	)
	m.ConstructorInterpreters = []*vm.Interpreter{ctorHigh, ctorLow}

	require.NoError(t, m.Construct())
	require.NoError(t, m.Run(10, nil))

	require.Len(t, m.Components[0].Dumps, 1)
	assert.True(t, vm.NewLogicValue(logic.High).Equal(m.Components[0].Dumps[0]))
	require.Len(t, m.Components[1].Dumps, 1)
	assert.True(t, vm.NewLogicValue(logic.Low).Equal(m.Components[1].Dumps[0]))
}

func TestSleepZeroStillAdvancesAStep(t *testing.T) {
	def := &ComponentDefinition{Name: "X"}
	comp := NewComponent("x", def)
	script := &vm.Function{Body: []vm.Instruction{
		vm.Push(vm.NewInteger(0)),
		vm.SuspendSleep(),
		vm.Halt(),
	}}
	interp := vm.NewScriptInterpreter(script, 0)
	m := newTestModel([]*ComponentDefinition{def}, []*Component{comp}, []*vm.Interpreter{interp})

	r1, err := m.Step()
	require.NoError(t, err)
	assert.Equal(t, StepRan, r1.Outcome)
	assert.Equal(t, vm.StatusSuspended, interp.Status)

	r2, err := m.Step()
	require.NoError(t, err)
	assert.Equal(t, StepRan, r2.Outcome)
	assert.Equal(t, vm.StatusHalted, interp.Status)
	assert.Equal(t, uint64(0), m.TimeElapsed)
}
