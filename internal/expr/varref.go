package expr

import (
	"fmt"
	"strings"

	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// VariableReference is a reference to a variable bound by a let/for
// clause, a function parameter, or an external variable declared on the
// static context.
type VariableReference struct {
	base
	Key  eval.VarKey
	Name string // display name only; resolution is by Key
}

// NewVariableReference builds a reference to key, with the given static
// type (propagated from the binding's declared or inferred type). A
// variable reference is always PropContextItemIndependent: its value
// comes from the context's variable bindings, never from the context
// item, which is exactly what makes it (and any expression built only
// from such references and literals) a candidate for Promote to hoist
// out of an enclosing loop.
func NewVariableReference(key eval.VarKey, name string, staticType xdm.SequenceType) *VariableReference {
	v := &VariableReference{Key: key, Name: name}
	v.staticType = staticType
	v.props = PropContextItemIndependent
	return v
}

func (v *VariableReference) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	bound, err := ctx.LookupVariable(v.Key)
	if err != nil {
		return nil, errors.Wrap(errors.XPST0008, errors.Static,
			fmt.Sprintf("unbound variable reference $%s", v.Name), err)
	}
	return bound.Iterate(), nil
}

func (v *VariableReference) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	return eval.EvaluateItem(v, ctx)
}

func (v *VariableReference) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(v, ctx)
}

func (v *VariableReference) Simplify() (Expression, error) { return v, nil }

func (v *VariableReference) TypeCheck(expected xdm.SequenceType) (Expression, error) {
	if !expected.Subsumes(v.staticType) {
		return nil, errors.NewTypeError(errors.XPTY0004,
			fmt.Sprintf("variable $%s does not satisfy the required type", v.Name))
	}
	return v, nil
}

func (v *VariableReference) Optimize() (Expression, error) { return v, nil }

func (v *VariableReference) Promote(offer *PromotionOffer) (Expression, error) {
	if offer.References(v.Key) {
		return v, nil
	}
	if replacement, ok := offer.AcceptSubExpression(v); ok {
		return replacement, nil
	}
	return v, nil
}

func (v *VariableReference) SubExpressions() []Expression                    { return nil }
func (v *VariableReference) ReplaceSubExpression(Expression, Expression) bool { return false }

func (v *VariableReference) Display(indent int) string {
	return strings.Repeat("  ", indent) + "$" + v.Name
}
