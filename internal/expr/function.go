package expr

import (
	"fmt"
	"strings"

	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// FunctionImpl is the Go implementation of one fn:* call: given the
// already-evaluated argument sequences (each fully materialized) and the
// dynamic context, it produces the function's result sequence.
type FunctionImpl func(ctx *eval.Context, args [][]sequence.Item) ([]sequence.Item, error)

// FunctionSignature records a function's static type information,
// looked up by (namespace-qualified name, arity) at compile time.
type FunctionSignature struct {
	Name       string
	MinArity   int
	MaxArity   int // -1 for unbounded (e.g. fn:concat)
	ReturnType xdm.SequenceType
	Impl       FunctionImpl
}

// FunctionLibrary resolves qualified function names to implementations:
// the compiled form of the static function library.
type FunctionLibrary struct {
	byNameArity map[string]*FunctionSignature
}

// NewFunctionLibrary builds an empty library.
func NewFunctionLibrary() *FunctionLibrary {
	return &FunctionLibrary{byNameArity: make(map[string]*FunctionSignature)}
}

// Register adds sig to the library under every arity in [MinArity, MaxArity]
// (MaxArity == -1 registers only MinArity, with the call site passing
// however many arguments the node was built with — variadic functions
// are checked only by MinArity).
func (lib *FunctionLibrary) Register(sig *FunctionSignature) {
	if sig.MaxArity < 0 {
		lib.byNameArity[key(sig.Name, sig.MinArity)] = sig
		lib.byNameArity[key(sig.Name, -1)] = sig
		return
	}
	for n := sig.MinArity; n <= sig.MaxArity; n++ {
		lib.byNameArity[key(sig.Name, n)] = sig
	}
}

func key(name string, arity int) string { return fmt.Sprintf("%s#%d", name, arity) }

// Lookup finds the signature matching name and arity, falling back to
// the variadic ("-1") entry if a fixed-arity one isn't registered and
// arity is at least that entry's MinArity.
func (lib *FunctionLibrary) Lookup(name string, arity int) (*FunctionSignature, bool) {
	if sig, ok := lib.byNameArity[key(name, arity)]; ok {
		return sig, true
	}
	sig, ok := lib.byNameArity[key(name, -1)]
	if ok && arity < sig.MinArity {
		return nil, false
	}
	return sig, ok
}

// FunctionCall is a static function call Name(Args...), resolved against
// a FunctionLibrary at compile time.
type FunctionCall struct {
	base
	Name string
	Args []Expression
	Sig  *FunctionSignature
}

// NewFunctionCall resolves name/arity against lib and builds a
// FunctionCall node, or returns an XPST0017 static error if no matching
// signature exists.
func NewFunctionCall(lib *FunctionLibrary, name string, args []Expression) (*FunctionCall, error) {
	sig, ok := lib.Lookup(name, len(args))
	if !ok {
		return nil, errors.New(errors.XPST0017, errors.Static,
			fmt.Sprintf("call to undeclared function %s#%d", name, len(args)))
	}
	f := &FunctionCall{Name: name, Args: args, Sig: sig}
	f.staticType = sig.ReturnType
	return f, nil
}

func (f *FunctionCall) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	argVals := make([][]sequence.Item, len(f.Args))
	for i, a := range f.Args {
		it, err := a.Iterate(ctx)
		if err != nil {
			return nil, err
		}
		items, err := sequence.Drain(it)
		if err != nil {
			return nil, err
		}
		argVals[i] = items
	}
	result, err := f.Sig.Impl(ctx, argVals)
	if err != nil {
		return nil, err
	}
	return sequence.NewGroundedSequence(result).Iterate(), nil
}

func (f *FunctionCall) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	return eval.EvaluateItem(f, ctx)
}

func (f *FunctionCall) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(f, ctx)
}

func (f *FunctionCall) Simplify() (Expression, error) { return defaultSimplify(f) }
func (f *FunctionCall) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(f)
}
func (f *FunctionCall) Optimize() (Expression, error) { return defaultOptimize(f) }
func (f *FunctionCall) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(f, offer)
}

func (f *FunctionCall) SubExpressions() []Expression { return f.Args }

func (f *FunctionCall) ReplaceSubExpression(old, replacement Expression) bool {
	for i, a := range f.Args {
		if a == old {
			f.Args[i] = replacement
			return true
		}
	}
	return false
}

func (f *FunctionCall) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	var b strings.Builder
	b.WriteString(pad + f.Name + "(")
	if len(f.Args) == 0 {
		b.WriteString(")")
		return b.String()
	}
	b.WriteString(")")
	for _, a := range f.Args {
		b.WriteString("\n" + a.Display(indent+1))
	}
	return b.String()
}

// atomizeAll atomizes every item in items, matching atomizeOne's
// node-to-untypedAtomic atomization rule applied elementwise.
func atomizeAll(items []sequence.Item) []value.AtomicValue {
	out := make([]value.AtomicValue, len(items))
	for i, item := range items {
		if av, ok := sequence.AsAtomic(item); ok {
			out[i] = av
		} else {
			out[i] = value.NewUntypedAtomic(item.StringValue())
		}
	}
	return out
}

func singleton(v value.AtomicValue) []sequence.Item {
	return []sequence.Item{v}
}
