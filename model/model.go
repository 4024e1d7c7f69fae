package model

import "github.com/AaronC81/hiloz/vm"

// Model is the whole compiled simulation: definitions, instances,
// connections, the script interpreters, and the scheduler's suspension
// queues. TimeElapsed is monotonically non-decreasing.
type Model struct {
	Definitions []*ComponentDefinition
	Graph

	Interpreters            []*vm.Interpreter
	ConstructorInterpreters []*vm.Interpreter

	suspendedTimingQueue timingQueue
	suspendedTriggerList []int // indices into Interpreters

	TimeElapsed uint64
}

// NewModel returns an empty, un-simulated model ready for the model
// compiler to populate.
func NewModel() *Model {
	return &Model{}
}

// StepOutcome tags what one call to Step produced.
type StepOutcome int

const (
	StepHalted StepOutcome = iota
	StepRan
)

// StepResult is the outcome of one scheduler step.
type StepResult struct {
	Outcome       StepOutcome
	Modifications []ComponentStateModification
}

// Construct runs every constructor interpreter to completion, in index
// order, applying each one's emitted modifications to the live model
// before the next constructor (and before any script) runs. Constructors
// may write pins and component variables but must never suspend; doing so
// is a fatal error here, the same as any other runtime contract violation.
func (m *Model) Construct() error {
	for _, interp := range m.ConstructorInterpreters {
		state := NewComponentIntermediateState(&m.Graph)
		result := interp.ExecuteUntilDone(state)
		switch result.Kind {
		case vm.ExecHalt:
			for _, mod := range state.Modifications() {
				mod.applyTo(m.Components[mod.ComponentIdx])
			}
		case vm.ExecSuspend:
			return errConstructorSuspended
		case vm.ExecErr:
			return result.Err
		}
	}
	return nil
}

// Step advances the simulator by one discrete event, implementing the
// illusion of simultaneity: snapshot, optional time advancement,
// run every runnable interpreter against independent clones of that one
// snapshot, commit their effects in emission order, then dispatch trigger
// wakeups from the resulting net changes.
func (m *Model) Step() (StepResult, error) {
	anyRunnable := false
	for _, interp := range m.Interpreters {
		if interp.CanRun() {
			anyRunnable = true
			break
		}
	}

	if !anyRunnable {
		if m.suspendedTimingQueue.Len() == 0 {
			return StepResult{Outcome: StepHalted}, nil
		}
		delta := m.suspendedTimingQueue.peekMin().TimeRemaining
		var woken []int
		for m.suspendedTimingQueue.Len() > 0 && m.suspendedTimingQueue.peekMin().TimeRemaining == delta {
			woken = append(woken, m.suspendedTimingQueue.popMin().InterpreterIdx)
		}
		for i := range m.suspendedTimingQueue {
			m.suspendedTimingQueue[i].TimeRemaining -= delta
		}
		m.TimeElapsed += delta
		for _, idx := range woken {
			m.Interpreters[idx].Resume()
		}
	}

	snapshot := m.Graph.clone()

	var allModifications []ComponentStateModification
	for idx, interp := range m.Interpreters {
		if !interp.CanRun() {
			continue
		}
		state := &ComponentIntermediateState{Graph: snapshot.clone()}
		result := interp.ExecuteUntilDone(state)
		allModifications = append(allModifications, state.Modifications()...)

		switch result.Kind {
		case vm.ExecSuspend:
			switch result.Suspend.Kind {
			case vm.SuspendSleepMode:
				m.suspendedTimingQueue.push(TimingQueueEntry{InterpreterIdx: idx, TimeRemaining: result.Suspend.Duration})
			case vm.SuspendTriggerMode:
				m.suspendedTriggerList = append(m.suspendedTriggerList, idx)
			}
		case vm.ExecHalt:
			// nothing to do; CanRun() is now false forever.
		case vm.ExecErr:
			return StepResult{}, result.Err
		}
	}

	pre, err := m.Graph.AllConnectionValues()
	if err != nil {
		return StepResult{}, err
	}
	for _, mod := range allModifications {
		mod.applyTo(m.Components[mod.ComponentIdx])
	}
	post, err := m.Graph.AllConnectionValues()
	if err != nil {
		return StepResult{}, err
	}

	changedNets := map[int]bool{}
	for idx, v := range post {
		if pre[idx] != v {
			changedNets[idx] = true
		}
	}

	selfModifiedPins := map[int]map[int]bool{} // componentIdx -> pinIdx set
	for _, mod := range allModifications {
		if mod.Kind != ModifyPin {
			continue
		}
		set, ok := selfModifiedPins[mod.ComponentIdx]
		if !ok {
			set = map[int]bool{}
			selfModifiedPins[mod.ComponentIdx] = set
		}
		set[mod.Idx] = true
	}

	var stillWaiting []int
	for _, idx := range m.suspendedTriggerList {
		interp := m.Interpreters[idx]
		c := interp.ComponentIdx
		excluded := selfModifiedPins[c]
		woken := false
		for pinIdx := range m.Components[c].Pins {
			if excluded[pinIdx] {
				continue
			}
			net := m.Graph.netIdx(PinConnection{ComponentIdx: c, PinIdx: pinIdx})
			if net >= 0 && changedNets[net] {
				woken = true
				break
			}
		}
		if woken {
			interp.Resume()
		} else {
			stillWaiting = append(stillWaiting, idx)
		}
	}
	m.suspendedTriggerList = stillWaiting

	return StepResult{Outcome: StepRan, Modifications: allModifications}, nil
}

// RunCallback receives the model and the modifications committed by one
// step, in commit order. The VCD writer is the canonical consumer.
type RunCallback func(*Model, []ComponentStateModification)

// Run steps the scheduler until it halts or TimeElapsed reaches untilTime,
// invoking callback after every step that actually ran.
func (m *Model) Run(untilTime uint64, callback RunCallback) error {
	for {
		result, err := m.Step()
		if err != nil {
			return err
		}
		if result.Outcome == StepHalted {
			return nil
		}
		if callback != nil {
			callback(m, result.Modifications)
		}
		if m.TimeElapsed >= untilTime {
			return nil
		}
	}
}
