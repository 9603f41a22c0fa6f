package expr

import (
	"fmt"
	"strings"

	"github.com/oxhq/xpathcore/internal/compare"
	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/node"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// AxisStep evaluates one step of a path expression: an axis plus a node
// test, applied to every node the step's Context sub-expression
// contributes as a context item. A bare relative path's
// single step uses the implicit context item instead, by leaving Context
// nil.
type AxisStep struct {
	base
	Axis    node.Axis
	Test    NodeTest
	Context Expression // nil: use ctx.ContextItem directly
}

// NewAxisStep builds an AxisStep. Its static item type narrows to
// xdm.TypeNode (node tests never select atomic values) and its
// cardinality is always zero-or-more; no compile pass narrows it for axes
// and tests that can never return more than one node.
func NewAxisStep(axis node.Axis, test NodeTest, context Expression) *AxisStep {
	s := &AxisStep{Axis: axis, Test: test, Context: context}
	s.staticType = xdm.SequenceType{ItemType: xdm.TypeNode, Cardinality: xdm.CardinalityZeroOrMore}
	if axis.Forward() {
		s.props = PropOrderedNodeset
	} else {
		s.props = PropReverseDocumentOrder
	}
	if axis == node.AxisChild || axis == node.AxisAttribute || axis == node.AxisNamespace ||
		axis == node.AxisSelf || axis == node.AxisParent {
		s.props |= PropSingleDocumentNodeset
	}
	return s
}

func (s *AxisStep) contextNode(ctx *eval.Context) (node.Node, error) {
	if s.Context == nil {
		if ctx.ContextItem == nil {
			return node.Node{}, errors.New(errors.Code("XPDY0002"), errors.DynamicRuntime, "axis step: no context item is set")
		}
		n, ok := sequence.AsNode(ctx.ContextItem)
		if !ok {
			return node.Node{}, errors.NewTypeError(errors.XPTY0004, "axis step: context item is not a node")
		}
		return n, nil
	}
	item, err := s.Context.EvaluateItem(ctx)
	if err != nil {
		return node.Node{}, err
	}
	if item == nil {
		return node.Node{}, nil
	}
	n, ok := sequence.AsNode(item)
	if !ok {
		return node.Node{}, errors.NewTypeError(errors.XPTY0004, "axis step: step context is not a node")
	}
	return n, nil
}

func (s *AxisStep) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	n, err := s.contextNode(ctx)
	if err != nil {
		return nil, err
	}
	if n.IsZero() {
		return sequence.Empty.Iterate(), nil
	}
	candidates := node.Step(n, s.Axis)
	matched := make([]sequence.Item, 0, len(candidates))
	for _, c := range candidates {
		if s.Test.Matches(c) {
			matched = append(matched, c)
		}
	}
	return sequence.NewGroundedSequence(matched).Iterate(), nil
}

func (s *AxisStep) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	return eval.EvaluateItem(s, ctx)
}

func (s *AxisStep) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(s, ctx)
}

func (s *AxisStep) Simplify() (Expression, error) { return defaultSimplify(s) }
func (s *AxisStep) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(s)
}
func (s *AxisStep) Optimize() (Expression, error) { return defaultOptimize(s) }
func (s *AxisStep) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(s, offer)
}

func (s *AxisStep) SubExpressions() []Expression {
	if s.Context == nil {
		return nil
	}
	return []Expression{s.Context}
}

func (s *AxisStep) ReplaceSubExpression(old, replacement Expression) bool {
	if s.Context == old {
		s.Context = replacement
		return true
	}
	return false
}

func (s *AxisStep) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	label := fmt.Sprintf("axis-step(%s::%s)", axisName(s.Axis), s.Test.Display())
	if s.Context == nil {
		return pad + label
	}
	return pad + label + "\n" + s.Context.Display(indent+1)
}

func axisName(a node.Axis) string {
	names := [...]string{
		"child", "descendant", "descendant-or-self", "parent", "ancestor",
		"ancestor-or-self", "following-sibling", "preceding-sibling",
		"following", "preceding", "self", "attribute", "namespace",
	}
	if int(a) < len(names) {
		return names[a]
	}
	return "?"
}

// PathExpression chains two steps: for every item Left produces, Right is
// evaluated with that item as the context item, and the concatenated
// results are deduplicated and sorted into document order unless both
// sub-steps are already known ordered node-sets sharing a single
// document.
type PathExpression struct {
	base
	Left, Right Expression
}

// NewPathExpression builds a PathExpression whose static properties are
// derived from its steps: ordered iff both steps are ordered, and
// single-document iff both are.
func NewPathExpression(left, right Expression) *PathExpression {
	p := &PathExpression{Left: left, Right: right}
	p.staticType = xdm.SequenceType{ItemType: xdm.TypeNode, Cardinality: xdm.CardinalityZeroOrMore}
	if left.SpecialProperties().Has(PropOrderedNodeset) && right.SpecialProperties().Has(PropOrderedNodeset) {
		p.props |= PropOrderedNodeset
	}
	if left.SpecialProperties().Has(PropSingleDocumentNodeset) && right.SpecialProperties().Has(PropSingleDocumentNodeset) {
		p.props |= PropSingleDocumentNodeset
	}
	return p
}

func (p *PathExpression) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	leftIt, err := p.Left.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	var results []sequence.Item
	for {
		item, err, ok := leftIt.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if !sequence.IsNode(item) {
			return nil, errors.NewTypeError(errors.XPTY0019, "path expression: a non-last step produced a non-node item")
		}
		n, _ := sequence.AsNode(item)
		stepCtx := ctx.WithContextItem(n)
		rightIt, err := p.Right.Iterate(stepCtx)
		if err != nil {
			return nil, err
		}
		chunk, err := sequence.Drain(rightIt)
		if err != nil {
			return nil, err
		}
		for _, c := range chunk {
			if !sequence.IsNode(c) {
				return nil, errors.New(errors.XPTY0018, errors.DynamicType,
					"path expression: step produced a mix of nodes and atomic values")
			}
			results = append(results, c)
		}
	}
	singleDocument := p.SpecialProperties().Has(PropSingleDocumentNodeset)
	ordered, err := compare.DocumentOrder(results, singleDocument,
		singleDocument && p.SpecialProperties().Has(PropOrderedNodeset))
	if err != nil {
		return nil, err
	}
	return sequence.NewGroundedSequence(ordered).Iterate(), nil
}

func (p *PathExpression) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	return eval.EvaluateItem(p, ctx)
}

func (p *PathExpression) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(p, ctx)
}

func (p *PathExpression) Simplify() (Expression, error) { return defaultSimplify(p) }
func (p *PathExpression) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(p)
}
func (p *PathExpression) Optimize() (Expression, error) { return defaultOptimize(p) }
func (p *PathExpression) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(p, offer)
}

func (p *PathExpression) SubExpressions() []Expression { return []Expression{p.Left, p.Right} }

func (p *PathExpression) ReplaceSubExpression(old, replacement Expression) bool {
	switch old {
	case p.Left:
		p.Left = replacement
	case p.Right:
		p.Right = replacement
	default:
		return false
	}
	return true
}

func (p *PathExpression) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	return pad + "path\n" + p.Left.Display(indent+1) + "\n" + p.Right.Display(indent+1)
}
