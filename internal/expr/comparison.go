package expr

import (
	"fmt"
	"strings"

	"github.com/oxhq/xpathcore/internal/collate"
	"github.com/oxhq/xpathcore/internal/compare"
	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/node"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// CompareOp identifies one of the relational operators, in either of
// XPath's two comparison flavors.
type CompareOp int

const (
	OpEQ CompareOp = iota
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
)

func (op CompareOp) String() string {
	return [...]string{"eq", "ne", "lt", "le", "gt", "ge"}[op]
}

// generalSymbol is op's spelling as a general (node-set aware) comparison
// operator, used only by Display.
func (op CompareOp) generalSymbol() string {
	return [...]string{"=", "!=", "<", "<=", ">", ">="}[op]
}

// satisfiedBy reports whether the three-way comparison result c (as
// returned by an AtomicComparer) satisfies op.
func (op CompareOp) satisfiedBy(c int) bool {
	switch op {
	case OpEQ:
		return c == 0
	case OpNE:
		return c != 0
	case OpLT:
		return c < 0
	case OpLE:
		return c <= 0
	case OpGT:
		return c > 0
	case OpGE:
		return c >= 0
	default:
		return false
	}
}

// ValueComparison implements the XPath 2.0 value-comparison operators
// (eq, ne, lt, le, gt, ge): each operand is atomized to a single item,
// and an empty operand makes the whole expression's result the empty
// sequence. NaN is incomparable: CompareAtomicValues returns
// compare.ErrNotComparable, which this node maps to a false result
// except under ne, per the value-comparison semantics.
type ValueComparison struct {
	base
	Op                      CompareOp
	Left, Right             Expression
	Collator                collate.StringCollator
	ImplicitTimezoneMinutes int
}

// NewValueComparison builds a ValueComparison node with xs:boolean? item
// type (empty when either operand atomizes to the empty sequence).
func NewValueComparison(op CompareOp, left, right Expression, collator collate.StringCollator, implicitTZMins int) *ValueComparison {
	v := &ValueComparison{Op: op, Left: left, Right: right, Collator: collator, ImplicitTimezoneMinutes: implicitTZMins}
	v.staticType = xdm.SequenceType{ItemType: xdm.TypeBoolean, Cardinality: xdm.CardinalityZeroOrOne}
	return v
}

func (v *ValueComparison) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	item, err := v.EvaluateItem(ctx)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return sequence.Empty.Iterate(), nil
	}
	return sequence.NewGroundedSequence([]sequence.Item{item}).Iterate(), nil
}

func (v *ValueComparison) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	lv, err := atomizeOne(v.Left, ctx)
	if err != nil {
		return nil, err
	}
	rv, err := atomizeOne(v.Right, ctx)
	if err != nil {
		return nil, err
	}
	if lv == nil || rv == nil {
		return nil, nil
	}
	cmp := compare.NewGeneralComparer(v.Collator, v.ImplicitTimezoneMinutes)
	c, err := cmp.CompareAtomicValues(lv, rv)
	if err != nil {
		if err == compare.ErrNotComparable {
			return value.NewBoolean(v.Op == OpNE), nil
		}
		return nil, errors.Wrap(errors.XPTY0004, errors.DynamicType,
			fmt.Sprintf("value comparison %s: operands not comparable", v.Op), err)
	}
	return value.NewBoolean(v.Op.satisfiedBy(c)), nil
}

func (v *ValueComparison) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(v, ctx)
}

// Simplify folds a value comparison of two already-constant operands
// into a single Literal.
func (v *ValueComparison) Simplify() (Expression, error) {
	if _, err := defaultSimplify(v); err != nil {
		return nil, err
	}
	if folded, ok, err := foldConstant(v, v.Left, v.Right); err != nil {
		return nil, err
	} else if ok {
		return folded, nil
	}
	return v, nil
}
func (v *ValueComparison) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(v)
}
func (v *ValueComparison) Optimize() (Expression, error) { return defaultOptimize(v) }
func (v *ValueComparison) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(v, offer)
}

func (v *ValueComparison) SubExpressions() []Expression { return []Expression{v.Left, v.Right} }

func (v *ValueComparison) ReplaceSubExpression(old, replacement Expression) bool {
	switch old {
	case v.Left:
		v.Left = replacement
	case v.Right:
		v.Right = replacement
	default:
		return false
	}
	return true
}

func (v *ValueComparison) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	return pad + v.Op.String() + "\n" + v.Left.Display(indent+1) + "\n" + v.Right.Display(indent+1)
}

// GeneralComparison implements the XPath 1.0-compatible general
// comparison operators (=, !=, <, <=, >, >=): existential over both
// operand sequences (true if any pair of items satisfies the operator),
// with untyped-atomic coercion applied pairwise inside the comparer.
// A general comparison of two empty sequences, or where one operand is
// empty, is false — there is no pair to satisfy.
type GeneralComparison struct {
	base
	Op                      CompareOp
	Left, Right             Expression
	Collator                collate.StringCollator
	ImplicitTimezoneMinutes int
}

// NewGeneralComparison builds a GeneralComparison node, always exactly
// xs:boolean (never empty: an existential quantifier over zero pairs is
// simply false).
func NewGeneralComparison(op CompareOp, left, right Expression, collator collate.StringCollator, implicitTZMins int) *GeneralComparison {
	g := &GeneralComparison{Op: op, Left: left, Right: right, Collator: collator, ImplicitTimezoneMinutes: implicitTZMins}
	g.staticType = xdm.SequenceType{ItemType: xdm.TypeBoolean, Cardinality: xdm.CardinalityExactlyOne}
	return g
}

func (g *GeneralComparison) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	item, err := g.EvaluateItem(ctx)
	if err != nil {
		return nil, err
	}
	return sequence.NewGroundedSequence([]sequence.Item{item}).Iterate(), nil
}

func (g *GeneralComparison) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	lefts, err := materializeAtomics(g.Left, ctx)
	if err != nil {
		return nil, err
	}
	rights, err := materializeAtomics(g.Right, ctx)
	if err != nil {
		return nil, err
	}
	cmp := compare.NewGeneralComparer(g.Collator, g.ImplicitTimezoneMinutes)
	for _, lv := range lefts {
		for _, rv := range rights {
			c, err := cmp.CompareAtomicValues(lv, rv)
			if err != nil {
				if err == compare.ErrNotComparable {
					continue
				}
				return nil, errors.Wrap(errors.XPTY0004, errors.DynamicType,
					fmt.Sprintf("general comparison %s: operands not comparable", g.Op.generalSymbol()), err)
			}
			if g.Op.satisfiedBy(c) {
				return value.NewBoolean(true), nil
			}
		}
	}
	return value.NewBoolean(false), nil
}

func (g *GeneralComparison) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(g, ctx)
}

// Simplify folds a general comparison of two already-constant operands
// into a single Literal.
func (g *GeneralComparison) Simplify() (Expression, error) {
	if _, err := defaultSimplify(g); err != nil {
		return nil, err
	}
	if folded, ok, err := foldConstant(g, g.Left, g.Right); err != nil {
		return nil, err
	} else if ok {
		return folded, nil
	}
	return g, nil
}
func (g *GeneralComparison) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(g)
}
func (g *GeneralComparison) Optimize() (Expression, error) { return defaultOptimize(g) }
func (g *GeneralComparison) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(g, offer)
}

func (g *GeneralComparison) SubExpressions() []Expression { return []Expression{g.Left, g.Right} }

func (g *GeneralComparison) ReplaceSubExpression(old, replacement Expression) bool {
	switch old {
	case g.Left:
		g.Left = replacement
	case g.Right:
		g.Right = replacement
	default:
		return false
	}
	return true
}

func (g *GeneralComparison) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	return pad + g.Op.generalSymbol() + "\n" + g.Left.Display(indent+1) + "\n" + g.Right.Display(indent+1)
}

// materializeAtomics runs e to completion and atomizes every resulting
// item; node items atomize to their string value as xs:untypedAtomic,
// matching atomizeOne's single-item rule applied across a sequence.
func materializeAtomics(e Expression, ctx *eval.Context) ([]value.AtomicValue, error) {
	it, err := e.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	var out []value.AtomicValue
	for {
		item, err, ok := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		if av, ok := sequence.AsAtomic(item); ok {
			out = append(out, av)
		} else {
			out = append(out, value.NewUntypedAtomic(item.StringValue()))
		}
	}
}

// NodeComparisonOp identifies one of the node-identity comparison
// operators is, <<, >>.
type NodeComparisonOp int

const (
	NodeIs NodeComparisonOp = iota
	NodePrecedes
	NodeFollows
)

func (n NodeComparisonOp) String() string {
	switch n {
	case NodeIs:
		return "is"
	case NodePrecedes:
		return "<<"
	case NodeFollows:
		return ">>"
	default:
		return "?"
	}
}

// NodeComparison implements the node-identity comparison operators is,
// <<, >> over two singleton node operands: is tests node identity, <<
// and >> test document order via CompareOrder. A comparison
// where either operand atomizes to the empty sequence yields the empty
// sequence rather than a boolean.
type NodeComparison struct {
	base
	Op             NodeComparisonOp
	Left, Right    Expression
	SingleDocument bool
}

// NewNodeComparison builds a NodeComparison node with xs:boolean? item
// type.
func NewNodeComparison(op NodeComparisonOp, left, right Expression, singleDocument bool) *NodeComparison {
	n := &NodeComparison{Op: op, Left: left, Right: right, SingleDocument: singleDocument}
	n.staticType = xdm.SequenceType{ItemType: xdm.TypeBoolean, Cardinality: xdm.CardinalityZeroOrOne}
	return n
}

func (n *NodeComparison) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	item, err := n.EvaluateItem(ctx)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return sequence.Empty.Iterate(), nil
	}
	return sequence.NewGroundedSequence([]sequence.Item{item}).Iterate(), nil
}

func (n *NodeComparison) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	li, err := n.Left.EvaluateItem(ctx)
	if err != nil {
		return nil, err
	}
	ri, err := n.Right.EvaluateItem(ctx)
	if err != nil {
		return nil, err
	}
	if li == nil || ri == nil {
		return nil, nil
	}
	ln, ok := sequence.AsNode(li)
	if !ok {
		return nil, errors.NewTypeError(errors.XPTY0004, fmt.Sprintf("node comparison %s: left operand is not a node", n.Op))
	}
	rn, ok := sequence.AsNode(ri)
	if !ok {
		return nil, errors.NewTypeError(errors.XPTY0004, fmt.Sprintf("node comparison %s: right operand is not a node", n.Op))
	}
	switch n.Op {
	case NodeIs:
		return value.NewBoolean(ln.Equal(rn)), nil
	case NodePrecedes:
		return value.NewBoolean(nodeCompare(ln, rn, n.SingleDocument) < 0), nil
	case NodeFollows:
		return value.NewBoolean(nodeCompare(ln, rn, n.SingleDocument) > 0), nil
	default:
		return nil, errors.Assertionf("node comparison: unknown operator %v", n.Op)
	}
}

func (n *NodeComparison) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(n, ctx)
}

// Simplify folds a node comparison of two already-constant operands into
// a single Literal (rare in practice: node
// operands are almost never literals — but e.g. `() is ()` still folds).
func (n *NodeComparison) Simplify() (Expression, error) {
	if _, err := defaultSimplify(n); err != nil {
		return nil, err
	}
	if folded, ok, err := foldConstant(n, n.Left, n.Right); err != nil {
		return nil, err
	} else if ok {
		return folded, nil
	}
	return n, nil
}
func (n *NodeComparison) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(n)
}
func (n *NodeComparison) Optimize() (Expression, error) { return defaultOptimize(n) }
func (n *NodeComparison) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(n, offer)
}

func (n *NodeComparison) SubExpressions() []Expression { return []Expression{n.Left, n.Right} }

func (n *NodeComparison) ReplaceSubExpression(old, replacement Expression) bool {
	switch old {
	case n.Left:
		n.Left = replacement
	case n.Right:
		n.Right = replacement
	default:
		return false
	}
	return true
}

func (n *NodeComparison) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	return pad + n.Op.String() + "\n" + n.Left.Display(indent+1) + "\n" + n.Right.Display(indent+1)
}

func nodeCompare(a, b node.Node, singleDocument bool) int {
	if singleDocument {
		return node.CompareLocalOrder(a, b)
	}
	return node.CompareOrder(a, b)
}
