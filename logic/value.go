// Package logic implements the three-valued signal algebra used across the
// simulator: every pin and net carries a Value, never a raw bool.
package logic

// Value is a three-state digital signal level.
type Value int

const (
	Unknown Value = iota
	Low
	High
)

// Not implements logical negation. Unknown negates to itself.
func (v Value) Not() Value {
	switch v {
	case Low:
		return High
	case High:
		return Low
	default:
		return Unknown
	}
}

// FromBool converts a boolean condition into a driven level.
func FromBool(b bool) Value {
	if b {
		return High
	}
	return Low
}

// Truthy is the projection used by conditional jumps: Low and Unknown are
// false, High is true.
func (v Value) Truthy() bool {
	return v == High
}

func (v Value) String() string {
	switch v {
	case Low:
		return "L"
	case High:
		return "H"
	default:
		return "X"
	}
}

// Symbol returns the VCD single-character encoding for this value.
func (v Value) Symbol() byte {
	switch v {
	case High:
		return '1'
	case Low:
		return '0'
	default:
		return 'x'
	}
}
