package expr

import (
	"strings"

	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// Literal is a compile-time-constant sequence: the leaf every constant
// folding pass produces and every other leaf (an xs:integer, a string
// literal, an empty-sequence ()) compiles to directly.
type Literal struct {
	base
	value *sequence.GroundedSequence
}

// NewLiteral wraps items as a Literal, inferring the least-common-supertype
// item type and exact-count cardinality from the items themselves.
func NewLiteral(items []sequence.Item) *Literal {
	itemType := xdm.TypeItem
	for i, it := range items {
		var t xdm.Type
		if av, ok := sequence.AsAtomic(it); ok {
			t = av.Type()
		} else {
			t = xdm.TypeNode
		}
		if i == 0 {
			itemType = t
		} else {
			itemType = xdm.LeastCommonSupertype(itemType, t)
		}
	}
	l := &Literal{value: sequence.NewGroundedSequence(items)}
	l.staticType = xdm.SequenceType{ItemType: itemType, Cardinality: CardinalityFromItemCount(len(items))}
	l.props = PropNonCreative | PropContextItemIndependent | PropOrderedNodeset
	return l
}

// NewAtomicLiteral is a convenience constructor for a single atomic value.
func NewAtomicLiteral(v value.AtomicValue) *Literal {
	return NewLiteral([]sequence.Item{v})
}

// EmptyLiteral is the compiled form of the empty sequence `()`.
var EmptyLiteral = NewLiteral(nil)

func (l *Literal) Iterate(*eval.Context) (sequence.Iterator, error) {
	return l.value.Iterate(), nil
}

func (l *Literal) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	return eval.EvaluateItem(l, ctx)
}

func (l *Literal) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(l, ctx)
}

func (l *Literal) Simplify() (Expression, error)                          { return l, nil }
func (l *Literal) TypeCheck(xdm.SequenceType) (Expression, error)         { return l, nil }
func (l *Literal) Optimize() (Expression, error)                          { return l, nil }
func (l *Literal) Promote(*PromotionOffer) (Expression, error)            { return l, nil }
func (l *Literal) SubExpressions() []Expression                          { return nil }
func (l *Literal) ReplaceSubExpression(Expression, Expression) bool       { return false }

func (l *Literal) Display(indent int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString("literal(")
	for i := 0; i < l.value.Len(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(l.value.Item(i).StringValue())
	}
	b.WriteString(")")
	return b.String()
}
