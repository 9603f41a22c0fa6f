// Package compare implements the sort/group/compare machinery: atomic
// comparers keyed by primitive-type category, a stable sort over a flat
// record array, the four xsl:for-each-group variants, and the
// document-order sorter wrapper.
package compare

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/oxhq/xpathcore/internal/collate"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// ErrNotComparable is returned by CompareAtomicValues when either operand
// is NaN: NaN is incomparable under the value-comparison
// comparer and every relational operator evaluates to false.
var ErrNotComparable = errors.New("compare: NaN is not comparable")

// ErrCategoryMismatch is returned when the two operands fall into
// different primitive-type categories that cannot be compared (e.g. a
// duration against a boolean), after untyped-atomic coercion has already
// been attempted.
var ErrCategoryMismatch = errors.New("compare: operand types belong to different comparison categories")

// category partitions atomic values so that cross-category equality is
// always false.
type category int8

const (
	catNumeric category = iota
	// catNaNSort is used only by SortComparer.ComparisonKey: every NaN
	// value maps to this category-only key, so two NaNs compare equal
	// under the sort/group comparer while remaining unequal under the
	// general value-comparison comparer (whose numeric key uses raw
	// float64 equality, and NaN != NaN there).
	catNaNSort
	catString
	catBoolean
	catYearMonthDuration
	catDayTimeDuration
	catGeneralDuration
	catDateTime
	catQName
	catBinary
	catAnyURI
)

// Key is an opaque comparison key such that, for any AtomicComparer C,
// C.CompareAtomicValues(a, b) == 0 iff C.ComparisonKey(a).Equals(C.ComparisonKey(b)).
// Keys from different categories are never equal.
type Key struct {
	cat     category
	num     float64
	str     string
	collK   collate.Key
	hascoll bool
}

// Equals reports whether two keys were derived from atomic values that
// compare equal under the comparer that produced them.
func (k Key) Equals(other Key) bool {
	if k.cat != other.cat {
		return false
	}
	switch k.cat {
	case catNaNSort:
		return true
	case catString, catAnyURI, catBinary, catQName:
		if k.hascoll || other.hascoll {
			return k.hascoll && other.hascoll && k.collK.Equals(other.collK)
		}
		return k.str == other.str
	default:
		return k.num == other.num
	}
}

// HashString returns a canonical byte-string whose content-equality
// agrees with Equals, so group-by can bucket items in a plain Go map
// instead of a linear Equals scan. The one exception is NaN: every NaN
// numeric key hashes alike, so group-by puts NaN keys in one group even
// where Equals reports two NaN keys unequal.
func (k Key) HashString() string {
	switch k.cat {
	case catNaNSort:
		return "N"
	case catString, catAnyURI, catBinary, catQName:
		if k.hascoll {
			return fmt.Sprintf("%d:c:%s", k.cat, string(k.collK.Bytes()))
		}
		return fmt.Sprintf("%d:s:%s", k.cat, k.str)
	default:
		num := k.num
		if num == 0 {
			num = 0 // -0 and +0 are Equal, so they must hash alike
		}
		return fmt.Sprintf("%d:n:%x", k.cat, math.Float64bits(num))
	}
}

// AtomicComparer compares full atomic values and produces comparison
// keys.
type AtomicComparer interface {
	// CompareAtomicValues returns <0, 0 or >0, or ErrNotComparable if
	// either operand is NaN, or ErrCategoryMismatch if the operands
	// belong to unrelated comparison categories.
	CompareAtomicValues(a, b value.AtomicValue) (int, error)
	// ComparisonKey returns v's comparison key under this comparer.
	ComparisonKey(v value.AtomicValue) Key
}

func categoryOf(v value.AtomicValue) category {
	switch v.(type) {
	case value.NumericValue:
		return catNumeric
	case value.BooleanValue:
		return catBoolean
	case value.DurationValue:
		d := v.(value.DurationValue)
		switch d.Type() {
		case xdm.TypeYearMonthDuration:
			return catYearMonthDuration
		case xdm.TypeDayTimeDuration:
			return catDayTimeDuration
		default:
			return catGeneralDuration
		}
	case value.CalendarValue:
		return catDateTime
	case value.QNameValue:
		return catQName
	case value.HexBinaryValue, value.Base64BinaryValue:
		return catBinary
	case value.AnyURIValue:
		return catAnyURI
	default:
		return catString
	}
}

// coerceUntyped resolves xs:untypedAtomic operands: the untyped side is
// cast to the other operand's primitive type, and when both sides are
// untyped both are treated as strings. Only the
// numeric and string coercions are performed directly (a general
// lexical-cast facility belongs to the expression-tree cast machinery);
// any other target category leaves the untyped side as a string, which
// then reports ErrCategoryMismatch against a non-string peer, the same
// outcome a failed runtime cast would produce.
func coerceUntyped(a, b value.AtomicValue) (value.AtomicValue, value.AtomicValue) {
	au, aUntyped := a.(value.UntypedAtomicValue)
	bu, bUntyped := b.(value.UntypedAtomicValue)
	switch {
	case aUntyped && bUntyped:
		return value.NewString(au.StringValue()), value.NewString(bu.StringValue())
	case aUntyped:
		return coerceOneUntyped(au, categoryOf(b)), b
	case bUntyped:
		return a, coerceOneUntyped(bu, categoryOf(a))
	default:
		return a, b
	}
}

func coerceOneUntyped(u value.UntypedAtomicValue, target category) value.AtomicValue {
	if target == catNumeric {
		if d, ok := value.ParseDecimal(strings.TrimSpace(u.StringValue())); ok {
			return value.NewDecimal(d)
		}
	}
	return value.NewString(u.StringValue())
}

// GeneralComparer implements XPath value-comparison (`eq`, `lt`, ...)
// semantics: NaN is incomparable, a general xs:duration only orders
// against another duration when both reduce to the same component, and
// string comparison defers to the configured collation.
type GeneralComparer struct {
	Collator                collate.StringCollator
	ImplicitTimezoneMinutes int
}

// NewGeneralComparer builds a GeneralComparer over the given collation
// (collate.Codepoint if nil) and implicit timezone.
func NewGeneralComparer(collator collate.StringCollator, implicitTZMins int) *GeneralComparer {
	if collator == nil {
		collator = collate.Codepoint
	}
	return &GeneralComparer{Collator: collator, ImplicitTimezoneMinutes: implicitTZMins}
}

func (c *GeneralComparer) CompareAtomicValues(a, b value.AtomicValue) (int, error) {
	a, b = coerceUntyped(a, b)
	ca, cb := categoryOf(a), categoryOf(b)
	if ca != cb {
		return 0, ErrCategoryMismatch
	}
	switch ca {
	case catNumeric:
		na, okA := a.(value.NumericValue)
		nb, okB := b.(value.NumericValue)
		if !okA || !okB {
			return 0, ErrCategoryMismatch
		}
		return compareNumeric(na, nb)
	case catString, catAnyURI, catBinary:
		return c.collator().CompareStrings(a.StringValue(), b.StringValue()), nil
	case catBoolean:
		ba := a.(value.BooleanValue).Bool()
		bb := b.(value.BooleanValue).Bool()
		return boolCompare(ba, bb), nil
	case catYearMonthDuration:
		return value.CompareYearMonth(a.(value.DurationValue), b.(value.DurationValue)), nil
	case catDayTimeDuration:
		return value.CompareDayTime(a.(value.DurationValue), b.(value.DurationValue)), nil
	case catGeneralDuration:
		da, db := a.(value.DurationValue), b.(value.DurationValue)
		if da.Months() == 0 && db.Months() == 0 {
			return value.CompareDayTime(da, db), nil
		}
		if da.Seconds() == 0 && db.Seconds() == 0 {
			return value.CompareYearMonth(da, db), nil
		}
		return 0, ErrCategoryMismatch
	case catDateTime:
		cmp, ok := value.Compare(a.(value.CalendarValue), b.(value.CalendarValue), c.ImplicitTimezoneMinutes)
		if !ok {
			return 0, ErrCategoryMismatch
		}
		return cmp, nil
	case catQName:
		qa, qb := a.(value.QNameValue), b.(value.QNameValue)
		if qa.Equal(qb) {
			return 0, nil
		}
		// QName has no standard ordering; fall back to a stable,
		// arbitrary-but-deterministic order for sort/group use.
		return strings.Compare(qa.NamespaceURI+" "+qa.Local, qb.NamespaceURI+" "+qb.Local), nil
	default:
		return 0, ErrCategoryMismatch
	}
}

func (c *GeneralComparer) collator() collate.StringCollator {
	if c.Collator == nil {
		return collate.Codepoint
	}
	return c.Collator
}

func (c *GeneralComparer) ComparisonKey(v value.AtomicValue) Key {
	cat := categoryOf(v)
	switch cat {
	case catNumeric:
		return Key{cat: catNumeric, num: v.(value.NumericValue).DoubleValue()}
	case catString, catAnyURI, catBinary:
		return Key{cat: cat, hascoll: true, collK: c.collator().CollationKey(v.StringValue())}
	case catBoolean:
		n := 0.0
		if v.(value.BooleanValue).Bool() {
			n = 1.0
		}
		return Key{cat: catBoolean, num: n}
	case catYearMonthDuration:
		return Key{cat: cat, num: float64(v.(value.DurationValue).Months())}
	case catDayTimeDuration:
		return Key{cat: cat, num: v.(value.DurationValue).Seconds()}
	case catGeneralDuration:
		d := v.(value.DurationValue)
		return Key{cat: cat, num: float64(d.Months())*1e12 + d.Seconds()}
	case catDateTime:
		instant, _ := v.(value.CalendarValue).ToInstant(c.ImplicitTimezoneMinutes)
		return Key{cat: cat, num: instant}
	case catQName:
		qn := v.(value.QNameValue)
		return Key{cat: cat, str: qn.NamespaceURI + "#" + qn.Local}
	default:
		return Key{cat: catString, str: v.StringValue()}
	}
}

func compareNumeric(a, b value.NumericValue) (int, error) {
	if a.IsNaN() || b.IsNaN() {
		return 0, ErrNotComparable
	}
	if isFloatingPoint(a) || isFloatingPoint(b) {
		af, bf := a.DoubleValue(), b.DoubleValue()
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	ad, err := a.DecimalValue()
	if err != nil {
		return 0, err
	}
	bd, err := b.DecimalValue()
	if err != nil {
		return 0, err
	}
	return ad.Cmp(bd), nil
}

func isFloatingPoint(v value.NumericValue) bool {
	switch v.(type) {
	case value.FloatAtomicValue, value.DoubleAtomicValue:
		return true
	default:
		return false
	}
}

func boolCompare(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// SortComparer adapts a base AtomicComparer for xsl:sort / FLWOR order-by
// semantics: NaN compares equal to NaN and less than every non-NaN
// value, rather than being incomparable.
type SortComparer struct {
	Base AtomicComparer
}

func NewSortComparer(base AtomicComparer) SortComparer { return SortComparer{Base: base} }

func (c SortComparer) CompareAtomicValues(a, b value.AtomicValue) (int, error) {
	an, aNum := a.(value.NumericValue)
	bn, bNum := b.(value.NumericValue)
	if aNum && bNum {
		aNaN, bNaN := an.IsNaN(), bn.IsNaN()
		switch {
		case aNaN && bNaN:
			return 0, nil
		case aNaN:
			return -1, nil
		case bNaN:
			return 1, nil
		}
	}
	return c.Base.CompareAtomicValues(a, b)
}

func (c SortComparer) ComparisonKey(v value.AtomicValue) Key {
	if n, ok := v.(value.NumericValue); ok && n.IsNaN() {
		return Key{cat: catNaNSort}
	}
	return c.Base.ComparisonKey(v)
}

// EmptyOrder controls where a missing sort key (an empty sequence) sorts
// relative to present values.
type EmptyOrder int

const (
	// EmptyLeast sorts a missing value before every present value
	// (ascending order's default).
	EmptyLeast EmptyOrder = iota
	// EmptyGreatest sorts a missing value after every present value.
	EmptyGreatest
)

// CompareWithEmpty compares two optional atomic values — nil denotes an
// empty sort-key sequence — treating a missing operand as the minimum or
// maximum element under order.
func CompareWithEmpty(c AtomicComparer, a, b value.AtomicValue, order EmptyOrder) (int, error) {
	switch {
	case a == nil && b == nil:
		return 0, nil
	case a == nil:
		if order == EmptyGreatest {
			return 1, nil
		}
		return -1, nil
	case b == nil:
		if order == EmptyGreatest {
			return -1, nil
		}
		return 1, nil
	default:
		return c.CompareAtomicValues(a, b)
	}
}

// Factory: specialized comparers

// codepointStringComparer is the fast path for strings under the default
// codepoint collation: a direct rune-wise comparison, skipping the
// collator indirection entirely.
type codepointStringComparer struct{}

func (codepointStringComparer) CompareAtomicValues(a, b value.AtomicValue) (int, error) {
	return collate.Codepoint.CompareStrings(a.StringValue(), b.StringValue()), nil
}

func (codepointStringComparer) ComparisonKey(v value.AtomicValue) Key {
	return Key{cat: catString, hascoll: true, collK: collate.Codepoint.CollationKey(v.StringValue())}
}

// decimalComparer is the specialized comparer for xs:decimal/xs:integer
// operands, comparing via exact Decimal arithmetic without the
// floating-point promotion check GeneralComparer performs per element.
type decimalComparer struct{}

func (decimalComparer) CompareAtomicValues(a, b value.AtomicValue) (int, error) {
	na, okA := a.(value.NumericValue)
	nb, okB := b.(value.NumericValue)
	if !okA || !okB {
		return 0, ErrCategoryMismatch
	}
	ad, err := na.DecimalValue()
	if err != nil {
		return 0, err
	}
	bd, err := nb.DecimalValue()
	if err != nil {
		return 0, err
	}
	return ad.Cmp(bd), nil
}

func (decimalComparer) ComparisonKey(v value.AtomicValue) Key {
	return Key{cat: catNumeric, num: v.(value.NumericValue).DoubleValue()}
}

// doubleComparer is the specialized comparer for xs:double/xs:float (and
// any numeric operand once promoted), comparing via float64.
type doubleComparer struct{}

func (doubleComparer) CompareAtomicValues(a, b value.AtomicValue) (int, error) {
	na, okA := a.(value.NumericValue)
	nb, okB := b.(value.NumericValue)
	if !okA || !okB {
		return 0, ErrCategoryMismatch
	}
	return compareNumeric(na, nb)
}

func (doubleComparer) ComparisonKey(v value.AtomicValue) Key {
	return Key{cat: catNumeric, num: v.(value.NumericValue).DoubleValue()}
}

// calendarComparer is the specialized comparer for date/dateTime/time.
type calendarComparer struct {
	implicitTZMins int
}

func (c calendarComparer) CompareAtomicValues(a, b value.AtomicValue) (int, error) {
	ca, okA := a.(value.CalendarValue)
	cb, okB := b.(value.CalendarValue)
	if !okA || !okB {
		return 0, ErrCategoryMismatch
	}
	cmp, ok := value.Compare(ca, cb, c.implicitTZMins)
	if !ok {
		return 0, ErrCategoryMismatch
	}
	return cmp, nil
}

func (c calendarComparer) ComparisonKey(v value.AtomicValue) Key {
	instant, _ := v.(value.CalendarValue).ToInstant(c.implicitTZMins)
	return Key{cat: catDateTime, num: instant}
}

// NewComparer builds the specialized AtomicComparer for primitiveType
// under the given collation and implicit timezone, falling back to a
// generic comparer for every other category.
func NewComparer(collator collate.StringCollator, primitiveType xdm.Type, implicitTZMins int) AtomicComparer {
	if collator == nil {
		collator = collate.Codepoint
	}
	switch primitiveType {
	case xdm.TypeString, xdm.TypeUntypedAtomic, xdm.TypeAnyURI:
		if collator == collate.Codepoint {
			return codepointStringComparer{}
		}
	case xdm.TypeDecimal, xdm.TypeInteger:
		return decimalComparer{}
	case xdm.TypeDouble, xdm.TypeFloat:
		return doubleComparer{}
	case xdm.TypeDateTime, xdm.TypeDate, xdm.TypeTime:
		return calendarComparer{implicitTZMins: implicitTZMins}
	}
	return NewGeneralComparer(collator, implicitTZMins)
}
