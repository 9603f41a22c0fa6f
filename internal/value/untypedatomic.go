package value

import "github.com/oxhq/xpathcore/internal/xdm"

// UntypedAtomicValue is xs:untypedAtomic: the type given to content that has
// not been validated against a schema (element/attribute text when no
// schema is in effect). Comparing an untyped-atomic value
// against a typed operand casts the untyped side to the typed side's
// primitive type first; when both sides are untyped they compare as
// strings.
type UntypedAtomicValue struct {
	s string
}

func NewUntypedAtomic(s string) UntypedAtomicValue { return UntypedAtomicValue{s: s} }

func (v UntypedAtomicValue) Type() xdm.Type      { return xdm.TypeUntypedAtomic }
func (v UntypedAtomicValue) StringValue() string { return v.s }
