// Package simerr defines the error taxonomy the CLI reports on: the four
// kinds a run can fail with, each carrying enough context to print one
// diagnostic line and exit non-zero.
package simerr

import "fmt"

// Kind identifies which stage of the pipeline produced an error.
type Kind int

const (
	// KindParse is invalid syntax in the DSL source text.
	KindParse Kind = iota
	// KindCompile is a semantic resolution failure: undefined pin or
	// component, duplicate name, ambiguous name, assignment to an
	// undefined local, a non-constant where one was required, a
	// duplicate script or constructor.
	KindCompile
	// KindRuntime is malformed bytecode or a broken VM invariant. Fatal
	// to the simulation: the owning interpreter halts and the scheduler
	// reports the error upward rather than unwinding to a consistent
	// state.
	KindRuntime
	// KindModelHalt is not a failure: no interpreter is runnable and
	// none can be woken by a pending sleep or trigger. Normal
	// termination, reported through this type only so callers have one
	// place to switch on every outcome.
	KindModelHalt
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse error"
	case KindCompile:
		return "compile error"
	case KindRuntime:
		return "runtime error"
	case KindModelHalt:
		return "model halt"
	default:
		return "unknown error"
	}
}

// Position locates an error in DSL source text.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Error is the one error type the CLI ever needs to print: a Kind, a
// message, and wherever relevant, a source Position or a component index
// and step count. Position is the zero value for runtime errors and
// model halts, which aren't anchored to source text.
type Error struct {
	Kind     Kind
	Message  string
	Position Position

	// Component and Step are set on KindRuntime errors raised while
	// stepping the model, naming which interpreter and which step
	// number the fatal error occurred on. Component is -1 when not
	// applicable.
	Component int
	Step      uint64

	// Cause is the underlying sentinel error, when one exists (the
	// vm package's ErrStackUnderflow and friends). Unwrap exposes it
	// so callers can errors.Is against those sentinels directly.
	Cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindParse, KindCompile:
		if e.Position != (Position{}) {
			return fmt.Sprintf("%s at %s: %s", e.Kind, e.Position, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case KindRuntime:
		if e.Component >= 0 {
			return fmt.Sprintf("%s in component %d at step %d: %s", e.Kind, e.Component, e.Step, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewParseError reports invalid syntax at pos.
func NewParseError(pos Position, format string, args ...any) *Error {
	return &Error{Kind: KindParse, Position: pos, Message: fmt.Sprintf(format, args...), Component: -1}
}

// NewCompileError reports a semantic resolution failure at pos.
func NewCompileError(pos Position, format string, args ...any) *Error {
	return &Error{Kind: KindCompile, Position: pos, Message: fmt.Sprintf(format, args...), Component: -1}
}

// NewRuntimeError wraps cause with the component and step it was raised
// on, for the CLI's fatal diagnostic line.
func NewRuntimeError(cause error, component int, step uint64) *Error {
	return &Error{
		Kind:      KindRuntime,
		Message:   cause.Error(),
		Cause:     cause,
		Component: component,
		Step:      step,
	}
}

// ModelHalted reports normal termination at the given absolute time.
func ModelHalted(timeElapsed uint64) *Error {
	return &Error{
		Kind:      KindModelHalt,
		Message:   fmt.Sprintf("model halted at time %d", timeElapsed),
		Component: -1,
	}
}

// List collects every error accumulated from a single parse or compile
// pass, so the CLI can report more than the first failure when it
// chooses to.
type List []*Error

func (l *List) Add(err *Error) { *l = append(*l, err) }

func (l List) HasErrors() bool { return len(l) > 0 }

func (l List) Error() string {
	if len(l) == 0 {
		return ""
	}
	if len(l) == 1 {
		return l[0].Error()
	}
	out := l[0].Error()
	for _, e := range l[1:] {
		out += "\n" + e.Error()
	}
	return out
}

// ByKind filters the list to only errors of the given Kind.
func (l List) ByKind(k Kind) List {
	var out List
	for _, e := range l {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}
