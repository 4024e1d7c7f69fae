package vm

import (
	"strconv"

	"github.com/AaronC81/hiloz/logic"
)

// ObjectKind tags which arm of Object is populated.
type ObjectKind int

const (
	KindNull ObjectKind = iota
	KindLogicValue
	KindInteger
	KindFunction
)

// Object is the VM's first-class value: the sum of Null, a three-valued
// logic level, a 64-bit signed integer, or a shared Function reference.
type Object struct {
	Kind    ObjectKind
	Logic   logic.Value
	Integer int64
	Func    *Function
}

// Null is the singleton "no value" object, used as the default local
// binding introduced by DefineLocal.
var Null = Object{Kind: KindNull}

// NewLogicValue wraps a three-valued level as an Object.
func NewLogicValue(v logic.Value) Object { return Object{Kind: KindLogicValue, Logic: v} }

// NewInteger wraps a signed integer as an Object.
func NewInteger(i int64) Object { return Object{Kind: KindInteger, Integer: i} }

// NewFunction wraps a shared Function reference as an Object.
func NewFunction(f *Function) Object { return Object{Kind: KindFunction, Func: f} }

// Equal implements Object equality: structural for Null/LogicValue/Integer,
// reference identity for Function (comparing function bodies structurally
// would be expensive and is never what a script means by "==").
func (o Object) Equal(other Object) bool {
	if o.Kind != other.Kind {
		return false
	}
	switch o.Kind {
	case KindNull:
		return true
	case KindLogicValue:
		return o.Logic == other.Logic
	case KindInteger:
		return o.Integer == other.Integer
	case KindFunction:
		return o.Func == other.Func
	default:
		return false
	}
}

// Truthy applies the VM's truth projection to any Object: only a High
// LogicValue is true. Non-logic objects are never truthy.
func (o Object) Truthy() bool {
	return o.Kind == KindLogicValue && o.Logic.Truthy()
}

func (o Object) String() string {
	switch o.Kind {
	case KindNull:
		return "null"
	case KindLogicValue:
		return o.Logic.String()
	case KindInteger:
		return strconv.FormatInt(o.Integer, 10)
	case KindFunction:
		return "<function>"
	default:
		return "<invalid>"
	}
}
