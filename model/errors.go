package model

import "errors"

// ErrNetConflict is returned by PinValue when a net carries both Low and
// High drivers simultaneously. This is a runtime error: fatal to the
// simulation, not a recoverable condition.
var ErrNetConflict = errors.New("read of a net in conflict (both Low and High drivers)")

// errConstructorSuspended is a contract violation: a constructor must never
// call sleep() or trigger().
var errConstructorSuspended = errors.New("constructor attempted to suspend (sleep or trigger)")
