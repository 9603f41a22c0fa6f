// Package value implements the XDM atomic value classes: numeric,
// string, calendar, untyped-atomic and the remaining primitives, each a
// value-type whose identity is independent of its representation.
package value

import "github.com/oxhq/xpathcore/internal/xdm"

// AtomicValue is any XDM atomic value: its Type is a descendant of
// xs:anyAtomicType, and it can render its canonical lexical form.
type AtomicValue interface {
	// Type returns the value's dynamic type label.
	Type() xdm.Type
	// StringValue returns the value's string-value, the representation used
	// by string(), cast-as-string and untyped-atomic comparison.
	StringValue() string
}

// NumericValue is the contract every numeric atomic value (xs:integer and
// its relatives, xs:decimal, xs:float, xs:double) must satisfy.
type NumericValue interface {
	AtomicValue
	// DoubleValue returns the value promoted to a float64.
	DoubleValue() float64
	// DecimalValue returns the value as an exact decimal, or an error if the
	// value has no exact decimal representation (NaN, +INF, -INF).
	DecimalValue() (Decimal, error)
	// LongValue returns the value truncated to an int64, or an error if the
	// value is out of int64 range or not finite.
	LongValue() (int64, error)
	// Signum returns -1, 0 or 1 according to the sign of the value; NaN
	// reports 0 by convention (it is its own, unordered, class).
	Signum() int
	// IsNaN reports whether the value is the not-a-number value (only
	// possible for float/double).
	IsNaN() bool
	// IsWholeNumber reports whether the value has no fractional part.
	IsWholeNumber() bool
}
