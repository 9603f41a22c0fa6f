package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/oxhq/xpathcore/internal/xdm"
)

// IntegerValue is an xs:integer (or one of its built-in derivations, though
// this package does not separately enforce the derivation's value-space
// facets: that belongs to a schema-aware layer above this one). It stores
// its value as an exact Decimal so no precision is lost promoting toward
// xs:decimal.
type IntegerValue struct {
	typ xdm.Type
	val Decimal
}

// NewInteger builds an IntegerValue of the given dynamic type (must be
// xs:integer or one of its built-in derivations, e.g. xs:int, xs:long) from
// an int64.
func NewInteger(t xdm.Type, v int64) IntegerValue {
	return IntegerValue{typ: t, val: DecimalFromInt64(v)}
}

// NewIntegerFromDecimal builds an IntegerValue from an exact Decimal that is
// already known to be a whole number.
func NewIntegerFromDecimal(t xdm.Type, v Decimal) IntegerValue {
	return IntegerValue{typ: t, val: v}
}

func (v IntegerValue) Type() xdm.Type       { return v.typ }
func (v IntegerValue) StringValue() string  { return v.val.String() }
func (v IntegerValue) DoubleValue() float64 { return v.val.Float64() }
func (v IntegerValue) DecimalValue() (Decimal, error) {
	return v.val, nil
}
func (v IntegerValue) LongValue() (int64, error) {
	n, ok := v.val.Int64()
	if !ok {
		return 0, fmt.Errorf("value.IntegerValue: %s out of int64 range", v.val.String())
	}
	return n, nil
}
func (v IntegerValue) Signum() int         { return v.val.Signum() }
func (v IntegerValue) IsNaN() bool         { return false }
func (v IntegerValue) IsWholeNumber() bool { return true }

// DecimalAtomicValue is an xs:decimal.
type DecimalAtomicValue struct {
	val Decimal
}

func NewDecimal(v Decimal) DecimalAtomicValue { return DecimalAtomicValue{val: v} }

func (v DecimalAtomicValue) Type() xdm.Type       { return xdm.TypeDecimal }
func (v DecimalAtomicValue) StringValue() string  { return v.val.String() }
func (v DecimalAtomicValue) DoubleValue() float64 { return v.val.Float64() }
func (v DecimalAtomicValue) DecimalValue() (Decimal, error) {
	return v.val, nil
}
func (v DecimalAtomicValue) LongValue() (int64, error) {
	n, ok := v.val.Int64()
	if !ok {
		return 0, fmt.Errorf("value.DecimalAtomicValue: %s out of int64 range", v.val.String())
	}
	return n, nil
}
func (v DecimalAtomicValue) Signum() int         { return v.val.Signum() }
func (v DecimalAtomicValue) IsNaN() bool         { return false }
func (v DecimalAtomicValue) IsWholeNumber() bool { return v.val.IsInteger() }

// DoubleAtomicValue is an xs:double, the IEEE 754 double-precision binary floating
// point type that is the implicit common ground for numeric promotion:
// integer promotes through decimal to double.
type DoubleAtomicValue struct {
	val float64
}

func NewDouble(v float64) DoubleAtomicValue { return DoubleAtomicValue{val: v} }

func (v DoubleAtomicValue) Type() xdm.Type { return xdm.TypeDouble }
func (v DoubleAtomicValue) StringValue() string {
	return formatFloatingPoint(v.val)
}
func (v DoubleAtomicValue) DoubleValue() float64 { return v.val }
func (v DoubleAtomicValue) DecimalValue() (Decimal, error) {
	if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
		return Decimal{}, fmt.Errorf("value.DoubleAtomicValue: %v has no exact decimal representation", v.val)
	}
	d, ok := ParseDecimal(strconv.FormatFloat(v.val, 'f', -1, 64))
	if !ok {
		return Decimal{}, fmt.Errorf("value.DoubleAtomicValue: cannot convert %v to decimal", v.val)
	}
	return d, nil
}
func (v DoubleAtomicValue) LongValue() (int64, error) {
	if math.IsNaN(v.val) || math.IsInf(v.val, 0) || v.val > math.MaxInt64 || v.val < math.MinInt64 {
		return 0, fmt.Errorf("value.DoubleAtomicValue: %v cannot be converted to an integer", v.val)
	}
	return int64(v.val), nil
}
func (v DoubleAtomicValue) Signum() int {
	switch {
	case math.IsNaN(v.val) || v.val == 0:
		return 0
	case v.val > 0:
		return 1
	default:
		return -1
	}
}
func (v DoubleAtomicValue) IsNaN() bool         { return math.IsNaN(v.val) }
func (v DoubleAtomicValue) IsWholeNumber() bool { return !v.IsNaN() && !math.IsInf(v.val, 0) && v.val == math.Trunc(v.val) }

// FloatAtomicValue is an xs:float, IEEE 754 single-precision. It is
// incomparable to decimal/integer except via promotion to
// double; this package stores the float32 bit pattern and widens through
// float64 arithmetic for everything except equality-preserving round trips.
type FloatAtomicValue struct {
	val float32
}

func NewFloat(v float32) FloatAtomicValue { return FloatAtomicValue{val: v} }

func (v FloatAtomicValue) Type() xdm.Type { return xdm.TypeFloat }
func (v FloatAtomicValue) StringValue() string {
	return formatFloatingPoint(float64(v.val))
}
func (v FloatAtomicValue) DoubleValue() float64 { return float64(v.val) }
func (v FloatAtomicValue) DecimalValue() (Decimal, error) {
	if math.IsNaN(float64(v.val)) || math.IsInf(float64(v.val), 0) {
		return Decimal{}, fmt.Errorf("value.FloatAtomicValue: %v has no exact decimal representation", v.val)
	}
	d, ok := ParseDecimal(strconv.FormatFloat(float64(v.val), 'f', -1, 32))
	if !ok {
		return Decimal{}, fmt.Errorf("value.FloatAtomicValue: cannot convert %v to decimal", v.val)
	}
	return d, nil
}
func (v FloatAtomicValue) LongValue() (int64, error) {
	d := float64(v.val)
	if math.IsNaN(d) || math.IsInf(d, 0) || d > math.MaxInt64 || d < math.MinInt64 {
		return 0, fmt.Errorf("value.FloatAtomicValue: %v cannot be converted to an integer", v.val)
	}
	return int64(d), nil
}
func (v FloatAtomicValue) Signum() int {
	switch {
	case math.IsNaN(float64(v.val)) || v.val == 0:
		return 0
	case v.val > 0:
		return 1
	default:
		return -1
	}
}
func (v FloatAtomicValue) IsNaN() bool { return math.IsNaN(float64(v.val)) }
func (v FloatAtomicValue) IsWholeNumber() bool {
	return !v.IsNaN() && !math.IsInf(float64(v.val), 0) && v.val == float32(math.Trunc(float64(v.val)))
}

// formatFloatingPoint renders a float/double per the XDM canonical lexical
// rules: "NaN", "INF", "-INF", and otherwise the shortest round-tripping
// decimal form without a binary exponent below 1e6 and above 1e-6 in
// magnitude (XPath uses plain notation in that range and scientific
// notation, with a capital "E", outside it).
func formatFloatingPoint(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case f == 0:
		if math.Signbit(f) {
			return "-0"
		}
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e6 {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		return s
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	// Go renders "1.5e+20"; XDM wants "1.5E20" (capital E, no '+', no
	// leading zero in the exponent).
	mantissa, exp := splitExponent(s)
	return mantissa + "E" + exp
}

func splitExponent(s string) (mantissa, exp string) {
	i := strings.IndexByte(s, 'e')
	mantissa = s[:i]
	exp = s[i+1:]
	if len(exp) > 0 && exp[0] == '+' {
		exp = exp[1:]
	}
	neg := false
	if len(exp) > 0 && exp[0] == '-' {
		neg = true
		exp = exp[1:]
	}
	for len(exp) > 1 && exp[0] == '0' {
		exp = exp[1:]
	}
	if neg {
		exp = "-" + exp
	}
	return mantissa, exp
}
