package value

import (
	"math/big"
	"strings"
)

// Decimal is an arbitrary-precision exact decimal number, backing
// xs:decimal and xs:integer. XML Schema decimal arithmetic must be exact
// (no binary floating-point rounding), so this wraps math/big.Rat rather
// than float64.
type Decimal struct {
	rat *big.Rat
}

// DecimalFromInt64 builds a Decimal from an integer.
func DecimalFromInt64(v int64) Decimal {
	return Decimal{rat: new(big.Rat).SetInt64(v)}
}

// ParseDecimal parses an XSD decimal lexical form: an optional sign,
// digits, an optional '.' and more digits. This is XSD decimal's lexical
// space, not a general-purpose number parser (no exponents, no leading
// '+' requirement issues beyond what XSD allows).
func ParseDecimal(lexical string) (Decimal, bool) {
	s := strings.TrimSpace(lexical)
	if s == "" {
		return Decimal{}, false
	}
	body := s
	neg := false
	if body[0] == '+' || body[0] == '-' {
		neg = body[0] == '-'
		body = body[1:]
	}
	if body == "" || body == "." {
		return Decimal{}, false
	}
	intPart, fracPart, hasDot := strings.Cut(body, ".")
	if strings.Contains(fracPart, ".") {
		return Decimal{}, false
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return Decimal{}, false
		}
	}
	if intPart == "" && (!hasDot || fracPart == "") {
		return Decimal{}, false
	}
	digits := intPart + fracPart
	if digits == "" {
		digits = "0"
	}
	num := new(big.Int)
	if _, ok := num.SetString(digits, 10); !ok {
		return Decimal{}, false
	}
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(fracPart))), nil)
	rat := new(big.Rat).SetFrac(num, den)
	if neg {
		rat.Neg(rat)
	}
	return Decimal{rat: rat}, true
}

// String renders the canonical decimal lexical form: no exponent, a decimal
// point present only when there is a fractional part, no trailing zeros
// beyond the first digit after the point, "0" for zero.
func (d Decimal) String() string {
	if d.rat == nil {
		return "0"
	}
	if d.rat.IsInt() {
		return d.rat.Num().String()
	}
	// FloatString with generous precision, then trim trailing zeros.
	s := d.rat.FloatString(40)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}

// Cmp returns -1, 0 or 1 as d is less than, equal to, or greater than other.
func (d Decimal) Cmp(other Decimal) int {
	return d.ratOrZero().Cmp(other.ratOrZero())
}

func (d Decimal) ratOrZero() *big.Rat {
	if d.rat == nil {
		return new(big.Rat)
	}
	return d.rat
}

// Add returns d + other.
func (d Decimal) Add(other Decimal) Decimal {
	return Decimal{rat: new(big.Rat).Add(d.ratOrZero(), other.ratOrZero())}
}

// Sub returns d - other.
func (d Decimal) Sub(other Decimal) Decimal {
	return Decimal{rat: new(big.Rat).Sub(d.ratOrZero(), other.ratOrZero())}
}

// Mul returns d * other.
func (d Decimal) Mul(other Decimal) Decimal {
	return Decimal{rat: new(big.Rat).Mul(d.ratOrZero(), other.ratOrZero())}
}

// Div returns d / other and true, or false if other is zero.
func (d Decimal) Div(other Decimal) (Decimal, bool) {
	if other.ratOrZero().Sign() == 0 {
		return Decimal{}, false
	}
	return Decimal{rat: new(big.Rat).Quo(d.ratOrZero(), other.ratOrZero())}, true
}

// Neg returns -d.
func (d Decimal) Neg() Decimal {
	return Decimal{rat: new(big.Rat).Neg(d.ratOrZero())}
}

// Signum returns -1, 0 or 1.
func (d Decimal) Signum() int { return d.ratOrZero().Sign() }

// IsInteger reports whether d has no fractional part.
func (d Decimal) IsInteger() bool { return d.ratOrZero().IsInt() }

// Float64 returns the nearest float64 approximation.
func (d Decimal) Float64() float64 {
	f, _ := d.ratOrZero().Float64()
	return f
}

// Int64 returns the truncated (toward zero) integer value and whether it
// fits in an int64.
func (d Decimal) Int64() (int64, bool) {
	if !d.IsInteger() {
		q := new(big.Int).Quo(d.ratOrZero().Num(), d.ratOrZero().Denom())
		if !q.IsInt64() {
			return 0, false
		}
		return q.Int64(), true
	}
	n := d.ratOrZero().Num()
	if !n.IsInt64() {
		return 0, false
	}
	return n.Int64(), true
}
