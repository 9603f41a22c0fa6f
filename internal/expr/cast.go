package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// CastExpression implements "Operand cast as TargetType(?)": Operand
// must atomize to zero or one item (more than one is a dynamic type
// error regardless of the cast's own "?" suffix), and that item is
// converted to TargetType following the constructor-function conversion
// rules of the relevant primitive types.
// An empty operand with AllowsEmpty false raises FORG0001 (empty
// sequence cannot be cast to a type requiring exactly one item).
type CastExpression struct {
	base
	Operand     Expression
	TargetType  xdm.Type
	AllowsEmpty bool
}

// NewCastExpression builds a CastExpression.
func NewCastExpression(operand Expression, target xdm.Type, allowsEmpty bool) *CastExpression {
	c := &CastExpression{Operand: operand, TargetType: target, AllowsEmpty: allowsEmpty}
	card := xdm.CardinalityExactlyOne
	if allowsEmpty {
		card = xdm.CardinalityZeroOrOne
	}
	c.staticType = xdm.SequenceType{ItemType: target, Cardinality: card}
	return c
}

func (c *CastExpression) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	item, err := c.EvaluateItem(ctx)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return sequence.Empty.Iterate(), nil
	}
	return sequence.NewGroundedSequence([]sequence.Item{item}).Iterate(), nil
}

func (c *CastExpression) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	src, err := atomizeOne(c.Operand, ctx)
	if err != nil {
		return nil, err
	}
	if src == nil {
		if c.AllowsEmpty {
			return nil, nil
		}
		return nil, errors.New(errors.FORG0001, errors.DynamicType,
			fmt.Sprintf("cast as %s: operand is the empty sequence", xdm.Name(c.TargetType)))
	}
	out, err := castAtomic(src, c.TargetType)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CastExpression) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(c, ctx)
}

func (c *CastExpression) Simplify() (Expression, error) { return defaultSimplify(c) }
func (c *CastExpression) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(c)
}
func (c *CastExpression) Optimize() (Expression, error) { return defaultOptimize(c) }
func (c *CastExpression) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(c, offer)
}

func (c *CastExpression) SubExpressions() []Expression { return []Expression{c.Operand} }

func (c *CastExpression) ReplaceSubExpression(old, replacement Expression) bool {
	if c.Operand == old {
		c.Operand = replacement
		return true
	}
	return false
}

func (c *CastExpression) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	suffix := ""
	if c.AllowsEmpty {
		suffix = "?"
	}
	return pad + "cast as " + xdm.Name(c.TargetType) + suffix + "\n" + c.Operand.Display(indent+1)
}

// castAtomic converts src to target, following the subset of the XPath
// constructor-function cast table this package implements: the numeric
// tower, xs:string/xs:untypedAtomic, and xs:boolean. Casting to or from
// a duration/calendar/QName/binary type is not supported by this
// expression-tree layer; a dedicated lexical-grammar parser for those
// types belongs in a schema-aware layer above it.
func castAtomic(src value.AtomicValue, target xdm.Type) (value.AtomicValue, error) {
	if src.Type() == target {
		return src, nil
	}
	switch target {
	case xdm.TypeString, xdm.TypeUntypedAtomic:
		if target == xdm.TypeUntypedAtomic {
			return value.NewUntypedAtomic(src.StringValue()), nil
		}
		return value.NewString(src.StringValue()), nil
	case xdm.TypeBoolean:
		return castToBoolean(src)
	case xdm.TypeDouble:
		d, err := castToDouble(src)
		if err != nil {
			return nil, err
		}
		return value.NewDouble(d), nil
	case xdm.TypeFloat:
		d, err := castToDouble(src)
		if err != nil {
			return nil, err
		}
		return value.NewFloat(float32(d)), nil
	case xdm.TypeDecimal:
		return castToDecimal(src)
	case xdm.TypeInteger:
		dec, err := castToDecimal(src)
		if err != nil {
			return nil, err
		}
		d, err := dec.(value.NumericValue).DecimalValue()
		if err != nil {
			return nil, err
		}
		n, ok := d.Int64()
		if !ok {
			return nil, errors.New(errors.FOAR0002, errors.DynamicRuntime, "cast as xs:integer: value out of range or not a whole number")
		}
		return value.NewInteger(xdm.TypeInteger, n), nil
	default:
		return nil, errors.New(errors.Code("XPST0080"), errors.Static,
			fmt.Sprintf("cast as %s: unsupported target type", xdm.Name(target)))
	}
}

func castToBoolean(src value.AtomicValue) (value.AtomicValue, error) {
	switch v := src.(type) {
	case value.BooleanValue:
		return v, nil
	case value.NumericValue:
		return value.NewBoolean(!v.IsNaN() && v.Signum() != 0), nil
	default:
		s := strings.TrimSpace(src.StringValue())
		switch s {
		case "true", "1":
			return value.NewBoolean(true), nil
		case "false", "0":
			return value.NewBoolean(false), nil
		default:
			return nil, errors.New(errors.FORG0001, errors.DynamicType,
				fmt.Sprintf("cast as xs:boolean: %q is not in the lexical space", s))
		}
	}
}

func castToDouble(src value.AtomicValue) (float64, error) {
	if n, ok := src.(value.NumericValue); ok {
		return n.DoubleValue(), nil
	}
	if b, ok := src.(value.BooleanValue); ok {
		if b.Bool() {
			return 1, nil
		}
		return 0, nil
	}
	s := strings.TrimSpace(src.StringValue())
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(errors.FORG0001, errors.DynamicType,
			fmt.Sprintf("cast as xs:double: %q is not in the lexical space", s))
	}
	return f, nil
}

func castToDecimal(src value.AtomicValue) (value.AtomicValue, error) {
	if n, ok := src.(value.NumericValue); ok {
		d, err := n.DecimalValue()
		if err != nil {
			return nil, err
		}
		return value.NewDecimal(d), nil
	}
	if b, ok := src.(value.BooleanValue); ok {
		if b.Bool() {
			return value.NewDecimal(value.DecimalFromInt64(1)), nil
		}
		return value.NewDecimal(value.DecimalFromInt64(0)), nil
	}
	s := strings.TrimSpace(src.StringValue())
	d, ok := value.ParseDecimal(s)
	if !ok {
		return nil, errors.New(errors.FORG0001, errors.DynamicType,
			fmt.Sprintf("cast as xs:decimal: %q is not in the lexical space", s))
	}
	return value.NewDecimal(d), nil
}
