package expr

import (
	"strings"

	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// FilterExpression applies a predicate to every item of Base, keeping
// those for which the predicate's effective boolean value is true, with
// the numeric-predicate special case: a predicate whose
// value is itself numeric selects the item whose context position equals
// that number, rather than being coerced through the general effective
// boolean value rules.
type FilterExpression struct {
	base
	Base      Expression
	Predicate Expression
}

// NewFilterExpression builds a FilterExpression. Cardinality is always
// widened to zero-or-more, since a predicate may eliminate some or all
// of Base's items regardless of Base's own cardinality.
func NewFilterExpression(baseExpr, predicate Expression) *FilterExpression {
	f := &FilterExpression{Base: baseExpr, Predicate: predicate}
	f.staticType = xdm.SequenceType{ItemType: baseExpr.StaticType().ItemType, Cardinality: xdm.CardinalityZeroOrMore}
	if baseExpr.SpecialProperties().Has(PropOrderedNodeset) {
		f.props |= PropOrderedNodeset
	}
	if baseExpr.SpecialProperties().Has(PropSingleDocumentNodeset) {
		f.props |= PropSingleDocumentNodeset
	}
	return f
}

func (f *FilterExpression) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	it, err := f.Base.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	all, err := sequence.Drain(it)
	if err != nil {
		return nil, err
	}
	size := len(all)
	var kept []sequence.Item
	for i, item := range all {
		position := i + 1
		predCtx := ctx.WithPosition(item, position, size)
		ok, err := f.evalPredicate(predCtx, position)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, item)
		}
	}
	return sequence.NewGroundedSequence(kept).Iterate(), nil
}

func (f *FilterExpression) evalPredicate(ctx *eval.Context, position int) (bool, error) {
	item, err := f.Predicate.EvaluateItem(ctx)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil
	}
	if av, ok := sequence.AsAtomic(item); ok {
		if n, ok := av.(value.NumericValue); ok {
			return !n.IsNaN() && n.DoubleValue() == float64(position), nil
		}
	}
	return f.Predicate.EffectiveBooleanValue(ctx)
}

func (f *FilterExpression) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	return eval.EvaluateItem(f, ctx)
}

func (f *FilterExpression) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(f, ctx)
}

func (f *FilterExpression) Simplify() (Expression, error) { return defaultSimplify(f) }
func (f *FilterExpression) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(f)
}
func (f *FilterExpression) Optimize() (Expression, error) { return defaultOptimize(f) }
func (f *FilterExpression) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(f, offer)
}

func (f *FilterExpression) SubExpressions() []Expression {
	return []Expression{f.Base, f.Predicate}
}

func (f *FilterExpression) ReplaceSubExpression(old, replacement Expression) bool {
	switch old {
	case f.Base:
		f.Base = replacement
	case f.Predicate:
		f.Predicate = replacement
	default:
		return false
	}
	return true
}

func (f *FilterExpression) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	return pad + "filter\n" + f.Base.Display(indent+1) + "\n" + f.Predicate.Display(indent+1)
}

// ContextItemExpression evaluates to the current context item: the
// compiled form of the "." token.
type ContextItemExpression struct{ base }

// NewContextItemExpression builds a ContextItemExpression with item()
// exactly-one static type, the most permissive item type possible since
// the context item's kind is unknown until evaluated.
func NewContextItemExpression() *ContextItemExpression {
	c := &ContextItemExpression{}
	c.staticType = xdm.SequenceType{ItemType: xdm.TypeItem, Cardinality: xdm.CardinalityExactlyOne}
	return c
}

func (c *ContextItemExpression) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	item, err := c.EvaluateItem(ctx)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return sequence.Empty.Iterate(), nil
	}
	return sequence.NewGroundedSequence([]sequence.Item{item}).Iterate(), nil
}

func (c *ContextItemExpression) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	return ctx.ContextItem, nil
}

func (c *ContextItemExpression) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(c, ctx)
}

func (c *ContextItemExpression) Simplify() (Expression, error)                      { return c, nil }
func (c *ContextItemExpression) TypeCheck(xdm.SequenceType) (Expression, error)     { return c, nil }
func (c *ContextItemExpression) Optimize() (Expression, error)                      { return c, nil }
func (c *ContextItemExpression) Promote(*PromotionOffer) (Expression, error)        { return c, nil }
func (c *ContextItemExpression) SubExpressions() []Expression                       { return nil }
func (c *ContextItemExpression) ReplaceSubExpression(Expression, Expression) bool   { return false }

func (c *ContextItemExpression) Display(indent int) string {
	return strings.Repeat("  ", indent) + "."
}
