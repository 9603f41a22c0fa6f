package expr

import (
	"fmt"
	"math"
	"strings"

	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// ArithOp identifies one of the six XPath arithmetic operators.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpIDiv
	OpMod
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "div"
	case OpIDiv:
		return "idiv"
	case OpMod:
		return "mod"
	default:
		return "?"
	}
}

// Arithmetic is a binary numeric operator node. Under the numeric
// promotion rules (integer promotes through decimal to double; float
// promotes only through double) the
// common type is chosen dynamically per evaluation from the operands'
// actual runtime types, since XPath arithmetic's static type is often
// only "numeric" until the operands are known.
type Arithmetic struct {
	base
	Op          ArithOp
	Left, Right Expression
}

// NewArithmetic builds an Arithmetic node with item type xs:anyAtomicType
// (no compile pass narrows it; the result type is only known per
// evaluation) and zero-or-one cardinality (empty when either operand
// atomizes to the empty sequence).
func NewArithmetic(op ArithOp, left, right Expression) *Arithmetic {
	a := &Arithmetic{Op: op, Left: left, Right: right}
	a.staticType = xdm.SequenceType{ItemType: xdm.TypeAnyAtomicType, Cardinality: xdm.CardinalityZeroOrOne}
	if left.SpecialProperties().Has(PropContextItemIndependent) && right.SpecialProperties().Has(PropContextItemIndependent) {
		a.props = PropContextItemIndependent
	}
	return a
}

func (a *Arithmetic) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	item, err := a.EvaluateItem(ctx)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return sequence.Empty.Iterate(), nil
	}
	return sequence.NewGroundedSequence([]sequence.Item{item}).Iterate(), nil
}

func (a *Arithmetic) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	lv, err := atomizeOne(a.Left, ctx)
	if err != nil {
		return nil, err
	}
	rv, err := atomizeOne(a.Right, ctx)
	if err != nil {
		return nil, err
	}
	if lv == nil || rv == nil {
		return nil, nil
	}
	ln, ok := lv.(value.NumericValue)
	if !ok {
		return nil, errors.NewTypeError(errors.XPTY0004, fmt.Sprintf("arithmetic %s: left operand is not numeric", a.Op))
	}
	rn, ok := rv.(value.NumericValue)
	if !ok {
		return nil, errors.NewTypeError(errors.XPTY0004, fmt.Sprintf("arithmetic %s: right operand is not numeric", a.Op))
	}
	return computeArithmetic(a.Op, ln, rn)
}

func (a *Arithmetic) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(a, ctx)
}

// Simplify folds a+b into a single Literal once both operands have
// simplified down to literals.
func (a *Arithmetic) Simplify() (Expression, error) {
	if _, err := defaultSimplify(a); err != nil {
		return nil, err
	}
	if folded, ok, err := foldConstant(a, a.Left, a.Right); err != nil {
		return nil, err
	} else if ok {
		return folded, nil
	}
	return a, nil
}
func (a *Arithmetic) TypeCheck(expected xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(a)
}
func (a *Arithmetic) Optimize() (Expression, error) { return defaultOptimize(a) }
func (a *Arithmetic) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(a, offer)
}

func (a *Arithmetic) SubExpressions() []Expression { return []Expression{a.Left, a.Right} }

func (a *Arithmetic) ReplaceSubExpression(old, replacement Expression) bool {
	switch old {
	case a.Left:
		a.Left = replacement
	case a.Right:
		a.Right = replacement
	default:
		return false
	}
	return true
}

func (a *Arithmetic) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	return pad + a.Op.String() + "\n" + a.Left.Display(indent+1) + "\n" + a.Right.Display(indent+1)
}

// atomizeOne evaluates e over ctx and returns its single atomic value, or
// nil for an empty result. A node result is atomized to its typed value;
// this package only ever produces untyped content so atomization reduces
// to reading the node's string-value as xs:untypedAtomic.
func atomizeOne(e Expression, ctx *eval.Context) (value.AtomicValue, error) {
	item, err := e.EvaluateItem(ctx)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	if av, ok := sequence.AsAtomic(item); ok {
		return av, nil
	}
	return value.NewUntypedAtomic(item.StringValue()), nil
}

func computeArithmetic(op ArithOp, a, b value.NumericValue) (value.AtomicValue, error) {
	_, aDouble := a.(value.DoubleAtomicValue)
	_, bDouble := b.(value.DoubleAtomicValue)
	_, aFloat := a.(value.FloatAtomicValue)
	_, bFloat := b.(value.FloatAtomicValue)
	switch {
	case aDouble || bDouble:
		r, err := doubleArith(op, a.DoubleValue(), b.DoubleValue())
		if err != nil {
			return nil, err
		}
		return value.NewDouble(r), nil
	case aFloat || bFloat:
		r, err := doubleArith(op, a.DoubleValue(), b.DoubleValue())
		if err != nil {
			return nil, err
		}
		return value.NewFloat(float32(r)), nil
	default:
		return decimalArith(op, a, b)
	}
}

func doubleArith(op ArithOp, a, b float64) (float64, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		return a / b, nil
	case OpIDiv:
		if b == 0 || math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) {
			return 0, errors.New(errors.FOAR0001, errors.DynamicRuntime, "idiv: division by zero or non-finite operand")
		}
		return math.Trunc(a / b), nil
	case OpMod:
		if b == 0 {
			return math.NaN(), nil
		}
		return math.Mod(a, b), nil
	default:
		return 0, errors.Assertionf("arithmetic: unknown operator %v", op)
	}
}

func decimalArith(op ArithOp, a, b value.NumericValue) (value.AtomicValue, error) {
	ad, err := a.DecimalValue()
	if err != nil {
		return nil, err
	}
	bd, err := b.DecimalValue()
	if err != nil {
		return nil, err
	}
	_, aInt := a.(value.IntegerValue)
	_, bInt := b.(value.IntegerValue)
	bothInt := aInt && bInt
	switch op {
	case OpAdd:
		return wrapDecimal(ad.Add(bd), bothInt), nil
	case OpSub:
		return wrapDecimal(ad.Sub(bd), bothInt), nil
	case OpMul:
		return wrapDecimal(ad.Mul(bd), bothInt), nil
	case OpDiv:
		r, ok := ad.Div(bd)
		if !ok {
			return nil, errors.New(errors.FOAR0001, errors.DynamicRuntime, "div: division by zero")
		}
		return value.NewDecimal(r), nil
	case OpIDiv:
		if bd.Signum() == 0 {
			return nil, errors.New(errors.FOAR0001, errors.DynamicRuntime, "idiv: division by zero")
		}
		q, _ := ad.Div(bd)
		n, ok := q.Int64()
		if !ok {
			return nil, errors.New(errors.FOAR0002, errors.DynamicRuntime, "idiv: result out of range")
		}
		return value.NewInteger(xdm.TypeInteger, n), nil
	case OpMod:
		if bd.Signum() == 0 {
			return nil, errors.New(errors.FOAR0001, errors.DynamicRuntime, "mod: division by zero")
		}
		q, _ := ad.Div(bd)
		n, _ := q.Int64()
		trunc := value.DecimalFromInt64(n)
		return wrapDecimal(ad.Sub(trunc.Mul(bd)), bothInt), nil
	default:
		return nil, errors.Assertionf("arithmetic: unknown operator %v", op)
	}
}

func wrapDecimal(d value.Decimal, preferInteger bool) value.AtomicValue {
	if preferInteger && d.IsInteger() {
		if n, ok := d.Int64(); ok {
			return value.NewInteger(xdm.TypeInteger, n)
		}
	}
	return value.NewDecimal(d)
}
