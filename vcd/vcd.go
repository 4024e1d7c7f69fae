// Package vcd writes the simulated waveform as a Value Change Dump file:
// a header declaring one scope per component instance and one variable
// per pin, followed by a timestamped value-change record for every pin
// write emitted during a step.
package vcd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/AaronC81/hiloz/model"
)

// DefaultTimescale is the $timescale declaration used when the caller
// doesn't configure one.
const DefaultTimescale = "1ms"

// Writer streams VCD text to an underlying io.Writer as the simulation
// runs, rather than buffering the whole trace in memory.
type Writer struct {
	out       *bufio.Writer
	timescale string
	err       error
}

// NewWriter wraps w. timescale is the unit one simulated time step
// represents (e.g. "1ms", "10us"); empty means DefaultTimescale. Callers
// must call WriteHeader once before any WriteStep calls, and Flush when done.
func NewWriter(w io.Writer, timescale string) *Writer {
	if timescale == "" {
		timescale = DefaultTimescale
	}
	return &Writer{out: bufio.NewWriter(w), timescale: timescale}
}

func varIdentifier(componentIdx, pinIdx int) string {
	return fmt.Sprintf("c%dp%d", componentIdx, pinIdx)
}

// WriteHeader emits the $timescale/$scope/$var declarations for every
// component instance and pin currently in m, in component/pin order.
func (w *Writer) WriteHeader(m *model.Model) error {
	w.writeln(fmt.Sprintf("$timescale %s $end", w.timescale))
	w.writeln("$scope module simulation $end")
	for componentIdx, c := range m.Components {
		w.writeln(fmt.Sprintf("$scope module %s $end", c.InstanceName))
		for pinIdx, pd := range c.Definition.Pins {
			w.writeln(fmt.Sprintf("$var wire 1 %s %s $end", varIdentifier(componentIdx, pinIdx), pd.Name))
		}
		w.writeln("$upscope $end")
	}
	w.writeln("$upscope $end")
	w.writeln("$enddefinitions $end")
	return w.err
}

// WriteStep emits one `#<time>` marker followed by one value-change line
// per pin write in mods (variable writes and dumps carry no waveform
// representation and are skipped). mods is expected in emission order, the
// same order model.StepResult.Modifications reports.
func (w *Writer) WriteStep(timeElapsed uint64, mods []model.ComponentStateModification) error {
	w.writeln(fmt.Sprintf("#%d", timeElapsed))
	for _, m := range mods {
		if m.Kind != model.ModifyPin {
			continue
		}
		w.writeln(fmt.Sprintf("%c%s", m.LogicValue.Symbol(), varIdentifier(m.ComponentIdx, m.Idx)))
	}
	return w.err
}

// Flush flushes any buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.out.Flush()
}

func (w *Writer) writeln(line string) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintln(w.out, line)
}
