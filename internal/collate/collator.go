// Package collate implements the string collation machinery: a
// StringCollator contract with several variants, and a
// collation-URI-keyed factory resolving a collation implementation by
// name.
package collate

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// StringCollator compares strings and produces opaque, equality-preserving
// collation keys.
type StringCollator interface {
	// CompareStrings returns <0, 0 or >0 as a sorts before, the same as, or
	// after b under this collation.
	CompareStrings(a, b string) int
	// CollationKey returns an opaque key such that two keys' Equals agrees
	// with CompareStrings(a,b) == 0.
	CollationKey(s string) Key
}

// Key is an opaque collation key; two keys compare equal iff their source
// strings compared equal under the collator that produced them.
type Key struct {
	bytes []byte
}

// Bytes returns the key's raw opaque byte representation, used by callers
// (internal/compare's group-by) that need a hashable form of the key
// rather than pairwise Equals comparisons.
func (k Key) Bytes() []byte { return k.bytes }

// Equals reports whether two keys were produced from equal strings.
func (k Key) Equals(other Key) bool {
	if len(k.bytes) != len(other.bytes) {
		return false
	}
	for i := range k.bytes {
		if k.bytes[i] != other.bytes[i] {
			return false
		}
	}
	return true
}

// codepointCollator compares by raw Unicode code point, the XPath default
// collation (http://www.w3.org/2005/xpath-functions/collation/codepoint).
type codepointCollator struct{}

func (codepointCollator) CompareStrings(a, b string) int {
	ar, br := []rune(a), []rune(b)
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

func (codepointCollator) CollationKey(s string) Key {
	return Key{bytes: []byte(s)}
}

// Codepoint is the default codepoint collator, used whenever no collation
// URI is specified.
var Codepoint StringCollator = codepointCollator{}

// localeCollator wraps golang.org/x/text/collate for a specific language
// tag and strength/decomposition setting.
type localeCollator struct {
	col    *collate.Collator
	decomp Decomposition
}

// Strength mirrors the ICU/x/text collation strength levels.
type Strength int

const (
	StrengthPrimary Strength = iota
	StrengthSecondary
	StrengthTertiary
	StrengthIdentical
)

// Decomposition selects Unicode normalization applied before comparison.
type Decomposition int

const (
	DecompositionNone Decomposition = iota
	DecompositionStandard
	DecompositionFull
)

// NewLocale builds a locale-aware collator for tag using the given
// strength and decomposition, wiring golang.org/x/text/collate,
// /language and /unicode/norm.
func NewLocale(tag language.Tag, strength Strength, decomp Decomposition) StringCollator {
	opts := []collate.Option{collationStrength(strength)}
	if decomp != DecompositionNone {
		opts = append(opts, collate.Force)
	}
	return &localeCollator{col: collate.New(tag, opts...), decomp: decomp}
}

func collationStrength(s Strength) collate.Option {
	switch s {
	case StrengthPrimary:
		return collate.Strength(collate.Primary)
	case StrengthSecondary:
		return collate.Strength(collate.Secondary)
	case StrengthIdentical:
		return collate.Strength(collate.Identical)
	default:
		return collate.Strength(collate.Tertiary)
	}
}

func (c *localeCollator) CompareStrings(a, b string) int {
	if c.decomp == DecompositionFull {
		a, b = normalize(a), normalize(b)
	}
	return c.col.CompareString(a, b)
}

func (c *localeCollator) CollationKey(s string) Key {
	if c.decomp == DecompositionFull {
		s = normalize(s)
	}
	buf := &collate.Buffer{}
	return Key{bytes: append([]byte(nil), c.col.KeyFromString(buf, s)...)}
}

// normalize applies NFC normalization, used by the full-decomposition
// locale collator variant to canonicalize composed/decomposed forms before
// comparison.
func normalize(s string) string {
	return norm.NFC.String(s)
}

// caseOrderCollator implements the lowercase-first and uppercase-first
// case-order collator variants: primary ordering ignores case, a
// secondary pass breaks ties by case with the configured side sorting
// first.
type caseOrderCollator struct {
	base       StringCollator
	upperFirst bool
}

func NewLowercaseFirst(base StringCollator) StringCollator {
	return &caseOrderCollator{base: base, upperFirst: false}
}

func NewUppercaseFirst(base StringCollator) StringCollator {
	return &caseOrderCollator{base: base, upperFirst: true}
}

func (c *caseOrderCollator) CompareStrings(a, b string) int {
	af, bf := strings.ToLower(a), strings.ToLower(b)
	if cmp := c.base.CompareStrings(af, bf); cmp != 0 {
		return cmp
	}
	if a == b {
		return 0
	}
	aIsLower := a == af
	bIsLower := b == bf
	if aIsLower == bIsLower {
		return strings.Compare(a, b)
	}
	if c.upperFirst {
		if !aIsLower {
			return -1
		}
		return 1
	}
	if aIsLower {
		return -1
	}
	return 1
}

func (c *caseOrderCollator) CollationKey(s string) Key {
	return Key{bytes: []byte(s)}
}
