package expr

import (
	"strings"

	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// RangeExpression is "Start to End": the sequence of consecutive
// xs:integer values from Start up to End inclusive, or the empty
// sequence when End is less than Start or either operand is empty.
type RangeExpression struct {
	base
	Start, End Expression
}

// NewRangeExpression builds a RangeExpression with xs:integer* static
// type.
func NewRangeExpression(start, end Expression) *RangeExpression {
	r := &RangeExpression{Start: start, End: end}
	r.staticType = xdm.SequenceType{ItemType: xdm.TypeInteger, Cardinality: xdm.CardinalityZeroOrMore}
	if start.SpecialProperties().Has(PropContextItemIndependent) && end.SpecialProperties().Has(PropContextItemIndependent) {
		r.props = PropContextItemIndependent
	}
	r.props |= PropNonCreative
	return r
}

func (r *RangeExpression) bound(e Expression, ctx *eval.Context) (int64, bool, error) {
	v, err := atomizeOne(e, ctx)
	if err != nil {
		return 0, false, err
	}
	if v == nil {
		return 0, false, nil
	}
	n, ok := v.(value.NumericValue)
	if !ok {
		return 0, false, errors.NewTypeError(errors.XPTY0004, "range expression: operand is not an integer")
	}
	i, err := n.LongValue()
	if err != nil {
		return 0, false, errors.Wrap(errors.XPTY0004, errors.DynamicType, "range expression: operand is not a valid integer", err)
	}
	return i, true, nil
}

func (r *RangeExpression) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	start, ok, err := r.bound(r.Start, ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return sequence.Empty.Iterate(), nil
	}
	end, ok, err := r.bound(r.End, ctx)
	if err != nil {
		return nil, err
	}
	if !ok || end < start {
		return sequence.Empty.Iterate(), nil
	}
	next := start
	return sequence.NewRestartableLazyIterator(func() *sequence.LazyIterator {
		n := next
		return sequence.NewLazyIterator(func() (sequence.Item, error, bool) {
			if n > end {
				return nil, nil, false
			}
			item := value.NewInteger(xdm.TypeInteger, n)
			n++
			return item, nil, true
		})
	}), nil
}

func (r *RangeExpression) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	return eval.EvaluateItem(r, ctx)
}

func (r *RangeExpression) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(r, ctx)
}

// Simplify folds a range with two constant bounds into a materialized
// Literal only when the resulting sequence is small; a constant
// "1 to 1000000" stays lazy.
func (r *RangeExpression) Simplify() (Expression, error) {
	if _, err := defaultSimplify(r); err != nil {
		return nil, err
	}
	_, startLit := r.Start.(*Literal)
	_, endLit := r.End.(*Literal)
	if !startLit || !endLit {
		return r, nil
	}
	start, okS, err := r.bound(r.Start, nil)
	if err != nil {
		return nil, err
	}
	end, okE, err := r.bound(r.End, nil)
	if err != nil {
		return nil, err
	}
	if !okS || !okE || end < start {
		return EmptyLiteral, nil
	}
	const foldLimit = 128
	if end-start+1 > foldLimit {
		return r, nil
	}
	items := make([]sequence.Item, 0, end-start+1)
	for n := start; n <= end; n++ {
		items = append(items, value.NewInteger(xdm.TypeInteger, n))
	}
	return NewLiteral(items), nil
}

func (r *RangeExpression) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(r)
}
func (r *RangeExpression) Optimize() (Expression, error) { return defaultOptimize(r) }
func (r *RangeExpression) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(r, offer)
}

func (r *RangeExpression) SubExpressions() []Expression { return []Expression{r.Start, r.End} }

func (r *RangeExpression) ReplaceSubExpression(old, replacement Expression) bool {
	switch old {
	case r.Start:
		r.Start = replacement
	case r.End:
		r.End = replacement
	default:
		return false
	}
	return true
}

func (r *RangeExpression) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	return pad + "to\n" + r.Start.Display(indent+1) + "\n" + r.End.Display(indent+1)
}
