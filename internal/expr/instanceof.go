package expr

import (
	"strings"

	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// InstanceOf implements "Operand instance of RequiredType": it runs
// Operand to completion, checks the resulting item count against
// RequiredType's cardinality, and checks every item's dynamic type
// against RequiredType's item type, the sequence-type matching rule. Never raises a dynamic error; always produces a boolean.
type InstanceOf struct {
	base
	Operand      Expression
	RequiredType xdm.SequenceType
}

// NewInstanceOf builds an InstanceOf node, always exactly one xs:boolean.
func NewInstanceOf(operand Expression, required xdm.SequenceType) *InstanceOf {
	i := &InstanceOf{Operand: operand, RequiredType: required}
	i.staticType = xdm.SequenceType{ItemType: xdm.TypeBoolean, Cardinality: xdm.CardinalityExactlyOne}
	return i
}

func (i *InstanceOf) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	item, err := i.EvaluateItem(ctx)
	if err != nil {
		return nil, err
	}
	return sequence.NewGroundedSequence([]sequence.Item{item}).Iterate(), nil
}

func (i *InstanceOf) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	it, err := i.Operand.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	items, err := sequence.Drain(it)
	if err != nil {
		return nil, err
	}
	n := len(items)
	if !i.RequiredType.Cardinality.AllowsZero() && n == 0 {
		return value.NewBoolean(false), nil
	}
	if !i.RequiredType.Cardinality.AllowsMany() && n > 1 {
		return value.NewBoolean(false), nil
	}
	for _, item := range items {
		if !itemMatches(item, i.RequiredType.ItemType) {
			return value.NewBoolean(false), nil
		}
	}
	return value.NewBoolean(true), nil
}

func itemMatches(item sequence.Item, required xdm.Type) bool {
	if av, ok := sequence.AsAtomic(item); ok {
		return xdm.IsSubType(av.Type(), required)
	}
	n, ok := sequence.AsNode(item)
	if !ok {
		return false
	}
	if required == xdm.TypeNode || required == xdm.TypeItem {
		return true
	}
	return xdm.IsSubType(n.Kind(), required)
}

func (i *InstanceOf) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(i, ctx)
}

func (i *InstanceOf) Simplify() (Expression, error) { return defaultSimplify(i) }
func (i *InstanceOf) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(i)
}
func (i *InstanceOf) Optimize() (Expression, error) { return defaultOptimize(i) }
func (i *InstanceOf) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(i, offer)
}

func (i *InstanceOf) SubExpressions() []Expression { return []Expression{i.Operand} }

func (i *InstanceOf) ReplaceSubExpression(old, replacement Expression) bool {
	if i.Operand == old {
		i.Operand = replacement
		return true
	}
	return false
}

func (i *InstanceOf) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	return pad + "instance-of(" + xdm.Name(i.RequiredType.ItemType) + i.RequiredType.Cardinality.String() + ")\n" +
		i.Operand.Display(indent+1)
}
