// Package value defines the closed set of primitive types a preference
// store can hold. A Value is a tagged union over the five storage slots;
// callers either construct one explicitly or convert a dynamically typed
// Go value with FromAny.
package value

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the storage slot a Value occupies. The same key under
// different kinds addresses logically distinct slots.
type Kind int

const (
	KindInt64 Kind = iota + 1
	KindString
	KindBool
	KindFloat32
	KindFloat64
)

// String returns the lower-case slot name.
func (k Kind) String() string {
	switch k {
	case KindInt64:
		return "int64"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is an immutable tagged union over the supported primitive types.
// The zero Value has no kind and compares unequal to every typed Value.
type Value struct {
	kind Kind
	num  uint64 // int64 / bool / float bits, interpretation depends on kind
	str  string
}

// Int64Of returns a Value occupying the int64 slot.
func Int64Of(v int64) Value { return Value{kind: KindInt64, num: uint64(v)} }

// StringOf returns a Value occupying the string slot.
func StringOf(v string) Value { return Value{kind: KindString, str: v} }

// BoolOf returns a Value occupying the bool slot.
func BoolOf(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

// Float32Of returns a Value occupying the float32 slot.
func Float32Of(v float32) Value {
	return Value{kind: KindFloat32, num: uint64(math.Float32bits(v))}
}

// Float64Of returns a Value occupying the float64 slot.
func Float64Of(v float64) Value {
	return Value{kind: KindFloat64, num: math.Float64bits(v)}
}

// Kind reports which slot the Value occupies.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v is the untyped zero Value.
func (v Value) IsZero() bool { return v.kind == 0 }

// Int64 returns the int64 payload. It is only meaningful for KindInt64.
func (v Value) Int64() int64 { return int64(v.num) }

// Str returns the string payload. It is only meaningful for KindString.
func (v Value) Str() string { return v.str }

// Bool returns the bool payload. It is only meaningful for KindBool.
func (v Value) Bool() bool { return v.num != 0 }

// Float32 returns the float32 payload. It is only meaningful for KindFloat32.
func (v Value) Float32() float32 { return math.Float32frombits(uint32(v.num)) }

// Float64 returns the float64 payload. It is only meaningful for KindFloat64.
func (v Value) Float64() float64 { return math.Float64frombits(v.num) }

// Any returns the payload as a dynamically typed Go value. The zero Value
// yields nil.
func (v Value) Any() any {
	switch v.kind {
	case KindInt64:
		return v.Int64()
	case KindString:
		return v.str
	case KindBool:
		return v.Bool()
	case KindFloat32:
		return v.Float32()
	case KindFloat64:
		return v.Float64()
	default:
		return nil
	}
}

// Equal reports whether two Values occupy the same slot kind and carry the
// same payload. Float comparison is bitwise, so NaN equals NaN.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.num == o.num && v.str == o.str
}

// String renders the payload for display and diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.Bool())
	case KindFloat32:
		return strconv.FormatFloat(float64(v.Float32()), 'g', -1, 32)
	case KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	default:
		return "<zero>"
	}
}

// FromAny converts a dynamically typed Go value into a Value. Exactly the
// primitive types int, int32, int64, string, bool, float32 and float64 are
// recognized; int and int32 are widened into the int64 slot, so there is no
// distinct 32-bit integer slot. Any other type fails with ErrUnsupportedType.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case int:
		return Int64Of(int64(t)), nil
	case int32:
		return Int64Of(int64(t)), nil
	case int64:
		return Int64Of(t), nil
	case string:
		return StringOf(t), nil
	case bool:
		return BoolOf(t), nil
	case float32:
		return Float32Of(t), nil
	case float64:
		return Float64Of(t), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}
