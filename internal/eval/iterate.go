package eval

import (
	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
)

// Iterable is satisfied by every expression-tree node: the single
// primary evaluator. EvaluateItem and EffectiveBooleanValue
// below are its default derived operations, callable against any Iterable
// without the expression tree depending back on this package's Context
// type in more than this one method signature.
type Iterable interface {
	Iterate(ctx *Context) (sequence.Iterator, error)
}

// EvaluateItem returns the first item of e's iteration over ctx, or nil
// if the sequence is empty, or an XPTY0004 type error if the iterator
// yields more than one item, the default for every expression whose
// static cardinality is not itself "exactly-one" or "?".
func EvaluateItem(e Iterable, ctx *Context) (sequence.Item, error) {
	it, err := e.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	first, err, ok := it.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	_, err, ok = it.Next()
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, errors.NewTypeError(errors.XPTY0004, "evaluateItem: sequence contains more than one item")
	}
	return first, nil
}

// EffectiveBooleanValue computes e's boolean coercion over ctx per the
// XPath 2.0 rules: empty sequence is false; a single
// boolean is its own value; a single numeric is true iff nonzero and not
// NaN; a single string is true iff non-empty; a sequence whose first item
// is a node is true regardless of what follows; any other case (e.g. a
// non-node first item followed by more items, or an unsupported atomic
// kind) raises FORG0006.
func EffectiveBooleanValue(e Iterable, ctx *Context) (bool, error) {
	it, err := e.Iterate(ctx)
	if err != nil {
		return false, err
	}
	first, err, ok := it.Next()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if sequence.IsNode(first) {
		return true, nil
	}
	_, err, hasMore := it.Next()
	if err != nil {
		return false, err
	}
	if hasMore {
		return false, errors.NewTypeError(errors.FORG0006,
			"effective boolean value: sequence has more than one item and the first is not a node")
	}
	switch v := first.(type) {
	case value.BooleanValue:
		return v.Bool(), nil
	case value.NumericValue:
		return !v.IsNaN() && v.Signum() != 0, nil
	case value.StringAtomicValue, value.UntypedAtomicValue, value.AnyURIValue:
		return v.StringValue() != "", nil
	default:
		return false, errors.NewTypeError(errors.FORG0006, "effective boolean value: unsupported item type")
	}
}
