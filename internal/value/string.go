package value

import (
	"unicode/utf8"

	"github.com/oxhq/xpathcore/internal/xdm"
)

// StringAtomicValue is an xs:string (or a derivation such as xs:token,
// xs:NMTOKEN; this package does not enforce facet restrictions). It caches
// whether the value contains any character outside the Basic Multilingual
// Plane, since fn:compare and the codepoint collator must compare by
// Unicode code point, not by Go's native UTF-8 byte order, whenever
// surrogate pairs are involved.
type StringAtomicValue struct {
	s           string
	hasNonBMP   bool
	nonBMPKnown bool
}

func NewString(s string) StringAtomicValue {
	return StringAtomicValue{s: s}
}

func (v StringAtomicValue) Type() xdm.Type      { return xdm.TypeString }
func (v StringAtomicValue) StringValue() string { return v.s }

// HasNonBMP reports whether the string contains any code point above
// U+FFFF, i.e. one that a UTF-16 based host would represent as a surrogate
// pair. When false, codepoint order and Go's native byte-wise string
// comparison agree, letting callers take a fast path: codepoint equality
// matches byte equality when neither string contains non-BMP characters.
func (v *StringAtomicValue) HasNonBMP() bool {
	if !v.nonBMPKnown {
		v.hasNonBMP = containsNonBMP(v.s)
		v.nonBMPKnown = true
	}
	return v.hasNonBMP
}

func containsNonBMP(s string) bool {
	for _, r := range s {
		if r > 0xFFFF {
			return true
		}
	}
	return false
}

// CodepointCompare compares a and b by Unicode code point (not by UTF-16
// code unit, not by byte), per the fn:compare default collation. It takes
// the byte-wise fast path whenever both operands are BMP-only.
func CodepointCompare(a, b *StringAtomicValue) int {
	if !a.HasNonBMP() && !b.HasNonBMP() {
		switch {
		case a.s < b.s:
			return -1
		case a.s > b.s:
			return 1
		default:
			return 0
		}
	}
	ar := []rune(a.s)
	br := []rune(b.s)
	for i := 0; i < len(ar) && i < len(br); i++ {
		if ar[i] != br[i] {
			if ar[i] < br[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ar) < len(br):
		return -1
	case len(ar) > len(br):
		return 1
	default:
		return 0
	}
}

// UTF16Length returns the string's length in UTF-16 code units, matching
// fn:string-length's semantics when a surrogate-pair-aware host is being
// emulated.
func UTF16Length(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// ValidUTF8 reports whether s is well-formed UTF-8, used when constructing
// string values from externally supplied byte data.
func ValidUTF8(s string) bool { return utf8.ValidString(s) }
