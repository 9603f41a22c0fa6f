package expr

import (
	"strings"

	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// SequenceConstructor is the comma operator: Parts are evaluated in
// order and their results concatenated.
type SequenceConstructor struct {
	base
	Parts []Expression
}

// NewSequenceConstructor builds a SequenceConstructor over parts,
// computing the combined item type and cardinality from each part's own
// static type.
func NewSequenceConstructor(parts []Expression) *SequenceConstructor {
	s := &SequenceConstructor{Parts: parts}
	if len(parts) == 0 {
		s.staticType = xdm.EmptySequenceType
		return s
	}
	itemType := parts[0].StaticType().ItemType
	card := parts[0].StaticType().Cardinality
	for _, p := range parts[1:] {
		itemType = xdm.LeastCommonSupertype(itemType, p.StaticType().ItemType)
		card = xdm.CombineSequential(card, p.StaticType().Cardinality)
	}
	s.staticType = xdm.SequenceType{ItemType: itemType, Cardinality: card}
	return s
}

func (s *SequenceConstructor) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	var out []sequence.Item
	for _, p := range s.Parts {
		it, err := p.Iterate(ctx)
		if err != nil {
			return nil, err
		}
		chunk, err := sequence.Drain(it)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return sequence.NewGroundedSequence(out).Iterate(), nil
}

func (s *SequenceConstructor) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	return eval.EvaluateItem(s, ctx)
}

func (s *SequenceConstructor) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(s, ctx)
}

func (s *SequenceConstructor) Simplify() (Expression, error) {
	rewritten, err := defaultSimplify(s)
	if err != nil {
		return nil, err
	}
	sc := rewritten.(*SequenceConstructor)
	flat := make([]Expression, 0, len(sc.Parts))
	for _, p := range sc.Parts {
		if nested, ok := p.(*SequenceConstructor); ok {
			flat = append(flat, nested.Parts...)
		} else {
			flat = append(flat, p)
		}
	}
	sc.Parts = flat
	return sc, nil
}

func (s *SequenceConstructor) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(s)
}
func (s *SequenceConstructor) Optimize() (Expression, error) { return defaultOptimize(s) }
func (s *SequenceConstructor) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(s, offer)
}

func (s *SequenceConstructor) SubExpressions() []Expression { return s.Parts }

func (s *SequenceConstructor) ReplaceSubExpression(old, replacement Expression) bool {
	for i, p := range s.Parts {
		if p == old {
			s.Parts[i] = replacement
			return true
		}
	}
	return false
}

func (s *SequenceConstructor) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	var b strings.Builder
	b.WriteString(pad + "sequence")
	for _, p := range s.Parts {
		b.WriteString("\n" + p.Display(indent+1))
	}
	return b.String()
}
