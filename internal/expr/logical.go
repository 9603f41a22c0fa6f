package expr

import (
	"strings"

	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// LogicalOp identifies "and" or "or", the two short-circuiting boolean
// connectives of the OrExpr/AndExpr productions.
type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

func (op LogicalOp) String() string {
	if op == LogicalAnd {
		return "and"
	}
	return "or"
}

// LogicalExpression implements the "and"/"or" operators: both operands
// are coerced to their effective boolean value, and the second operand
// is not evaluated once the result is already determined (false "and",
// true "or"), the standard XPath short-circuit rule.
type LogicalExpression struct {
	base
	Op          LogicalOp
	Left, Right Expression
}

func newLogical(op LogicalOp, left, right Expression) *LogicalExpression {
	l := &LogicalExpression{Op: op, Left: left, Right: right}
	l.staticType = xdm.SequenceType{ItemType: xdm.TypeBoolean, Cardinality: xdm.CardinalityExactlyOne}
	if left.SpecialProperties().Has(PropNonCreative) && right.SpecialProperties().Has(PropNonCreative) {
		l.props |= PropNonCreative
	}
	return l
}

// NewAndExpression builds a LogicalExpression for "Left and Right".
func NewAndExpression(left, right Expression) *LogicalExpression {
	return newLogical(LogicalAnd, left, right)
}

// NewOrExpression builds a LogicalExpression for "Left or Right".
func NewOrExpression(left, right Expression) *LogicalExpression {
	return newLogical(LogicalOr, left, right)
}

func (l *LogicalExpression) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	item, err := l.EvaluateItem(ctx)
	if err != nil {
		return nil, err
	}
	return sequence.NewGroundedSequence([]sequence.Item{item}).Iterate(), nil
}

func (l *LogicalExpression) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	ok, err := l.EffectiveBooleanValue(ctx)
	if err != nil {
		return nil, err
	}
	return value.NewBoolean(ok), nil
}

func (l *LogicalExpression) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	left, err := l.Left.EffectiveBooleanValue(ctx)
	if err != nil {
		return false, err
	}
	if l.Op == LogicalAnd && !left {
		return false, nil
	}
	if l.Op == LogicalOr && left {
		return true, nil
	}
	return l.Right.EffectiveBooleanValue(ctx)
}

// Simplify folds "and"/"or" of two already-constant operands into a
// single Literal.
func (l *LogicalExpression) Simplify() (Expression, error) {
	if _, err := defaultSimplify(l); err != nil {
		return nil, err
	}
	if folded, ok, err := foldConstant(l, l.Left, l.Right); err != nil {
		return nil, err
	} else if ok {
		return folded, nil
	}
	return l, nil
}
func (l *LogicalExpression) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(l)
}
func (l *LogicalExpression) Optimize() (Expression, error) { return defaultOptimize(l) }
func (l *LogicalExpression) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(l, offer)
}

func (l *LogicalExpression) SubExpressions() []Expression { return []Expression{l.Left, l.Right} }

func (l *LogicalExpression) ReplaceSubExpression(old, replacement Expression) bool {
	switch old {
	case l.Left:
		l.Left = replacement
	case l.Right:
		l.Right = replacement
	default:
		return false
	}
	return true
}

func (l *LogicalExpression) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	return pad + l.Op.String() + "\n" + l.Left.Display(indent+1) + "\n" + l.Right.Display(indent+1)
}
