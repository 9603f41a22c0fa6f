package expr

import (
	"fmt"
	"math"
	"strings"

	"github.com/oxhq/xpathcore/internal/compare"
	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// NewCoreFunctionLibrary builds the fn:* namespace's core subset this
// package implements directly: the general-purpose, type-conversion,
// string, aggregate, and timezone-adjustment functions a compiled
// expression tree can call without reaching into a schema-aware or
// context-building layer above it, plus the xs:dateTime and
// xs:dayTimeDuration constructor functions the timezone family needs.
// The remainder of the 1.0/2.0 function library (node-construction,
// context-accessor wrappers for position()/last(), and the remaining
// date/time and URI families) belongs to a fuller host layer.
func NewCoreFunctionLibrary() *FunctionLibrary {
	lib := NewFunctionLibrary()

	lib.Register(&FunctionSignature{
		Name: "fn:not", MinArity: 1, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeBoolean, Cardinality: xdm.CardinalityExactlyOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			ok, err := ebvOf(args[0])
			if err != nil {
				return nil, err
			}
			return singleton(value.NewBoolean(!ok)), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:boolean", MinArity: 1, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeBoolean, Cardinality: xdm.CardinalityExactlyOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			ok, err := ebvOf(args[0])
			if err != nil {
				return nil, err
			}
			return singleton(value.NewBoolean(ok)), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:true", MinArity: 0, MaxArity: 0,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeBoolean, Cardinality: xdm.CardinalityExactlyOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			return singleton(value.NewBoolean(true)), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:false", MinArity: 0, MaxArity: 0,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeBoolean, Cardinality: xdm.CardinalityExactlyOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			return singleton(value.NewBoolean(false)), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:count", MinArity: 1, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeInteger, Cardinality: xdm.CardinalityExactlyOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			return singleton(value.NewInteger(xdm.TypeInteger, int64(len(args[0])))), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:empty", MinArity: 1, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeBoolean, Cardinality: xdm.CardinalityExactlyOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			return singleton(value.NewBoolean(len(args[0]) == 0)), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:exists", MinArity: 1, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeBoolean, Cardinality: xdm.CardinalityExactlyOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			return singleton(value.NewBoolean(len(args[0]) != 0)), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:reverse", MinArity: 1, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeItem, Cardinality: xdm.CardinalityZeroOrMore},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			in := args[0]
			out := make([]sequence.Item, len(in))
			for i, item := range in {
				out[len(in)-1-i] = item
			}
			return out, nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:string", MinArity: 0, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeString, Cardinality: xdm.CardinalityExactlyOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			items := args
			var source []sequence.Item
			if len(items) == 0 || len(items[0]) == 0 {
				if ctx.ContextItem == nil {
					return singleton(value.NewString("")), nil
				}
				source = []sequence.Item{ctx.ContextItem}
			} else {
				source = items[0]
			}
			return singleton(value.NewString(source[0].StringValue())), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:concat", MinArity: 2, MaxArity: -1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeString, Cardinality: xdm.CardinalityExactlyOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			var b strings.Builder
			for _, arg := range args {
				if len(arg) == 0 {
					continue
				}
				b.WriteString(arg[0].StringValue())
			}
			return singleton(value.NewString(b.String())), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:string-length", MinArity: 0, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeInteger, Cardinality: xdm.CardinalityExactlyOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			s, err := stringArgOrContext(ctx, args)
			if err != nil {
				return nil, err
			}
			return singleton(value.NewInteger(xdm.TypeInteger, int64(len([]rune(s))))), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:upper-case", MinArity: 1, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeString, Cardinality: xdm.CardinalityExactlyOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			s, err := stringArgOrContext(ctx, args)
			if err != nil {
				return nil, err
			}
			return singleton(value.NewString(strings.ToUpper(s))), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:lower-case", MinArity: 1, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeString, Cardinality: xdm.CardinalityExactlyOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			s, err := stringArgOrContext(ctx, args)
			if err != nil {
				return nil, err
			}
			return singleton(value.NewString(strings.ToLower(s))), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:contains", MinArity: 2, MaxArity: 2,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeBoolean, Cardinality: xdm.CardinalityExactlyOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			a, b := stringArgOf(args[0]), stringArgOf(args[1])
			return singleton(value.NewBoolean(strings.Contains(a, b))), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:starts-with", MinArity: 2, MaxArity: 2,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeBoolean, Cardinality: xdm.CardinalityExactlyOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			a, b := stringArgOf(args[0]), stringArgOf(args[1])
			return singleton(value.NewBoolean(strings.HasPrefix(a, b))), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:ends-with", MinArity: 2, MaxArity: 2,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeBoolean, Cardinality: xdm.CardinalityExactlyOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			a, b := stringArgOf(args[0]), stringArgOf(args[1])
			return singleton(value.NewBoolean(strings.HasSuffix(a, b))), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:substring", MinArity: 2, MaxArity: 3,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeString, Cardinality: xdm.CardinalityExactlyOne},
		Impl: fnSubstring,
	})

	lib.Register(&FunctionSignature{
		Name: "fn:sum", MinArity: 1, MaxArity: 2,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeAnyAtomicType, Cardinality: xdm.CardinalityExactlyOne},
		Impl: fnSum,
	})

	lib.Register(&FunctionSignature{
		Name: "fn:avg", MinArity: 1, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeAnyAtomicType, Cardinality: xdm.CardinalityZeroOrOne},
		Impl: fnAvg,
	})

	lib.Register(&FunctionSignature{
		Name: "xs:dateTime", MinArity: 1, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeDateTime, Cardinality: xdm.CardinalityZeroOrOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			if len(args[0]) == 0 {
				return nil, nil
			}
			av := atomizeAll(args[0][:1])[0]
			if cv, ok := av.(value.CalendarValue); ok && cv.Type() == xdm.TypeDateTime {
				return singleton(cv), nil
			}
			cv, err := value.ParseDateTime(strings.TrimSpace(av.StringValue()))
			if err != nil {
				return nil, errors.Wrap(errors.FORG0001, errors.DynamicType, "xs:dateTime: value is not in the lexical space", err)
			}
			return singleton(cv), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "xs:dayTimeDuration", MinArity: 1, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeDayTimeDuration, Cardinality: xdm.CardinalityZeroOrOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			if len(args[0]) == 0 {
				return nil, nil
			}
			av := atomizeAll(args[0][:1])[0]
			if dv, ok := av.(value.DurationValue); ok && dv.Type() == xdm.TypeDayTimeDuration {
				return singleton(dv), nil
			}
			dv, err := value.ParseDayTimeDuration(strings.TrimSpace(av.StringValue()))
			if err != nil {
				return nil, errors.Wrap(errors.FORG0001, errors.DynamicType, "xs:dayTimeDuration: value is not in the lexical space", err)
			}
			return singleton(dv), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:adjust-dateTime-to-timezone", MinArity: 1, MaxArity: 2,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeDateTime, Cardinality: xdm.CardinalityZeroOrOne},
		Impl: fnAdjustDateTimeToTimezone,
	})

	lib.Register(&FunctionSignature{
		Name: "fn:remove-timezone", MinArity: 1, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeDateTime, Cardinality: xdm.CardinalityZeroOrOne},
		Impl: func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
			if len(args[0]) == 0 {
				return nil, nil
			}
			cv, err := calendarArgOf(args[0], "fn:remove-timezone")
			if err != nil {
				return nil, err
			}
			return singleton(cv.RemoveTimezone()), nil
		},
	})

	lib.Register(&FunctionSignature{
		Name: "fn:min", MinArity: 1, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeAnyAtomicType, Cardinality: xdm.CardinalityZeroOrOne},
		Impl: fnMinMax(true),
	})

	lib.Register(&FunctionSignature{
		Name: "fn:max", MinArity: 1, MaxArity: 1,
		ReturnType: xdm.SequenceType{ItemType: xdm.TypeAnyAtomicType, Cardinality: xdm.CardinalityZeroOrOne},
		Impl: fnMinMax(false),
	})

	return lib
}

func ebvOf(items []sequence.Item) (bool, error) {
	seq := sequence.NewGroundedSequence(items)
	return eval.EffectiveBooleanValue(groundedIterable{seq}, nil)
}

// groundedIterable adapts a grounded sequence into an eval.Iterable that
// ignores ctx, letting the core function library reuse
// eval.EffectiveBooleanValue without constructing an Expression.
type groundedIterable struct{ seq *sequence.GroundedSequence }

func (i groundedIterable) Iterate(*eval.Context) (sequence.Iterator, error) {
	return i.seq.Iterate(), nil
}

func stringArgOf(items []sequence.Item) string {
	if len(items) == 0 {
		return ""
	}
	return items[0].StringValue()
}

func stringArgOrContext(ctx *eval.Context, args [][]sequence.Item) (string, error) {
	if len(args) == 0 || len(args[0]) == 0 {
		if ctx == nil || ctx.ContextItem == nil {
			return "", errors.New(errors.Code("XPDY0002"), errors.DynamicRuntime, "function call: no context item is set")
		}
		return ctx.ContextItem.StringValue(), nil
	}
	return args[0][0].StringValue(), nil
}

func fnSubstring(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
	s := []rune(stringArgOf(args[0]))
	start, err := numericArgOf(args[1])
	if err != nil {
		return nil, err
	}
	startIdx := round(start) - 1
	end := len(s)
	if len(args) == 3 {
		length, err := numericArgOf(args[2])
		if err != nil {
			return nil, err
		}
		end = round(start+length) - 1
	}
	if startIdx < 0 {
		startIdx = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if startIdx >= end || startIdx >= len(s) {
		return singleton(value.NewString("")), nil
	}
	return singleton(value.NewString(string(s[startIdx:end]))), nil
}

func round(f float64) int {
	if f < 0 {
		return -int(-f + 0.5)
	}
	return int(f + 0.5)
}

func numericArgOf(items []sequence.Item) (float64, error) {
	if len(items) == 0 {
		return 0, errors.NewTypeError(errors.XPTY0004, "function call: expected a numeric argument, got the empty sequence")
	}
	av, ok := sequence.AsAtomic(items[0])
	if !ok {
		return 0, errors.NewTypeError(errors.XPTY0004, "function call: expected a numeric argument, got a node")
	}
	n, ok := av.(value.NumericValue)
	if !ok {
		return 0, errors.NewTypeError(errors.XPTY0004, "function call: expected a numeric argument")
	}
	return n.DoubleValue(), nil
}

func fnSum(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
	atoms := atomizeAll(args[0])
	if len(atoms) == 0 {
		if len(args) == 2 {
			return args[1], nil
		}
		return singleton(value.NewInteger(xdm.TypeInteger, 0)), nil
	}
	acc, ok := atoms[0].(value.NumericValue)
	if !ok {
		return nil, errors.NewTypeError(errors.XPTY0004, "fn:sum: operand contains a non-numeric item")
	}
	result := value.AtomicValue(acc)
	for _, a := range atoms[1:] {
		n, ok := a.(value.NumericValue)
		if !ok {
			return nil, errors.NewTypeError(errors.XPTY0004, "fn:sum: operand contains a non-numeric item")
		}
		sum, err := computeArithmetic(OpAdd, result.(value.NumericValue), n)
		if err != nil {
			return nil, err
		}
		result = sum
	}
	return singleton(result), nil
}

func fnAvg(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
	atoms := atomizeAll(args[0])
	if len(atoms) == 0 {
		return nil, nil
	}
	sumResult, err := fnSum(ctx, [][]sequence.Item{args[0]})
	if err != nil {
		return nil, err
	}
	sum := sumResult[0].(value.NumericValue)
	count := value.NewInteger(xdm.TypeInteger, int64(len(atoms)))
	avg, err := computeArithmetic(OpDiv, sum, count)
	if err != nil {
		return nil, err
	}
	return singleton(avg), nil
}

// fnAdjustDateTimeToTimezone adjusts a dateTime to a new timezone: with
// one argument the implicit timezone of the dynamic context is attached;
// an explicit empty timezone argument removes the timezone; an explicit
// dayTimeDuration must be a whole number of minutes within +/-PT14H
// (FODT0003 otherwise) and becomes the new offset, recomputing the clock
// so the instant denoted is unchanged.
func fnAdjustDateTimeToTimezone(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
	if len(args[0]) == 0 {
		return nil, nil
	}
	cv, err := calendarArgOf(args[0], "fn:adjust-dateTime-to-timezone")
	if err != nil {
		return nil, err
	}
	if len(args) == 2 {
		if len(args[1]) == 0 {
			return singleton(cv.RemoveTimezone()), nil
		}
		av, ok := sequence.AsAtomic(args[1][0])
		if !ok {
			return nil, errors.NewTypeError(errors.XPTY0004, "fn:adjust-dateTime-to-timezone: timezone argument is not a dayTimeDuration")
		}
		d, ok := av.(value.DurationValue)
		if !ok {
			return nil, errors.NewTypeError(errors.XPTY0004, "fn:adjust-dateTime-to-timezone: timezone argument is not a dayTimeDuration")
		}
		secs := d.Seconds()
		if math.Mod(secs, 60) != 0 || secs < -14*3600 || secs > 14*3600 {
			return nil, errors.New(errors.FODT0003, errors.DynamicRuntime,
				"fn:adjust-dateTime-to-timezone: timezone is out of range or not a whole number of minutes")
		}
		mins := int(secs / 60)
		return singleton(cv.AdjustTimezone(&mins)), nil
	}
	mins := 0
	if ctx != nil {
		mins = ctx.ImplicitTimezoneMinutes
	}
	return singleton(cv.AdjustTimezone(&mins)), nil
}

func calendarArgOf(items []sequence.Item, name string) (value.CalendarValue, error) {
	av, ok := sequence.AsAtomic(items[0])
	if !ok {
		return value.CalendarValue{}, errors.NewTypeError(errors.XPTY0004, name+": operand is not a dateTime")
	}
	cv, ok := av.(value.CalendarValue)
	if !ok {
		return value.CalendarValue{}, errors.NewTypeError(errors.XPTY0004, name+": operand is not a dateTime")
	}
	return cv, nil
}

func fnMinMax(wantMin bool) FunctionImpl {
	return func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error) {
		atoms := atomizeAll(args[0])
		if len(atoms) == 0 {
			return nil, nil
		}
		cmp := compare.NewGeneralComparer(nil, 0)
		best := atoms[0]
		for _, a := range atoms[1:] {
			c, err := cmp.CompareAtomicValues(a, best)
			if err != nil {
				return nil, fmt.Errorf("fn:min/fn:max: %w", err)
			}
			if (wantMin && c < 0) || (!wantMin && c > 0) {
				best = a
			}
		}
		return singleton(best), nil
	}
}
