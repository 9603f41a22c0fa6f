package expr

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// hoistCounter allocates the synthetic variable names acceptingOffer
// mints for a hoisted sub-expression; it only needs to be unique within
// one compilation, never stable across compilations.
var hoistCounter uint64

// hoistCandidate pairs a fresh variable key with the sub-expression a
// FLWOR node's own accepting offer agreed to hoist above itself.
type hoistCandidate struct {
	key  eval.VarKey
	name string
	expr Expression
}

// acceptingOffer builds a PromotionOffer that installs a real
// AcceptSubExpression: unlike the root offer (facade.go's
// rootPromotionOffer), which always declines, this one accepts any
// candidate still marked PropContextItemIndependent after the caller has
// already checked it against bindingsBelow (VariableReference.Promote
// does this before ever calling AcceptSubExpression), replacing it in
// place with a reference to a freshly minted variable and recording the
// hoisted (key, expr) pair in *accepted. The owning FLWOR node splices
// one LetExpression per accepted candidate above itself via
// wrapWithHoisted once its body/test has finished promoting.
func acceptingOffer(bindingsBelow []eval.VarKey, accepted *[]hoistCandidate) *PromotionOffer {
	offer := &PromotionOffer{BindingsBelow: bindingsBelow}
	offer.AcceptSubExpression = func(candidate Expression) (Expression, bool) {
		if !candidate.SpecialProperties().Has(PropContextItemIndependent) {
			return nil, false
		}
		n := atomic.AddUint64(&hoistCounter, 1)
		key := eval.VarKey{URI: "urn:x-xpathcore:promote", Local: fmt.Sprintf("hoisted%d", n)}
		*accepted = append(*accepted, hoistCandidate{key: key, name: key.Local, expr: candidate})
		return NewVariableReference(key, key.Local, candidate.StaticType()), true
	}
	return offer
}

// wrapWithHoisted splices one LetExpression per accepted candidate above
// body, binding each hoisted computation exactly once instead of once
// per loop iteration, the loop-invariant hoisting PromotionOffer exists
// for. Candidates are wound innermost-first so
// later hoists (which may have been offered while evaluating an earlier
// one's sibling sub-expressions) still end up in a valid nesting order.
func wrapWithHoisted(body Expression, accepted []hoistCandidate) Expression {
	result := body
	for i := len(accepted) - 1; i >= 0; i-- {
		c := accepted[i]
		result = NewLetExpression(c.key, c.name, c.expr, result)
	}
	return result
}

// ForExpression is the "for $var in Source return Body" clause: Body is
// evaluated once per item of Source, with $var bound to that item (and,
// if HasPosition is set, PositionKey bound to its 1-based
// position), and the results concatenated in order.
type ForExpression struct {
	base
	VarKey      eval.VarKey
	VarName     string
	PositionKey eval.VarKey // zero value if no positional variable was declared
	HasPosition bool
	Source      Expression
	Body        Expression
}

// NewForExpression builds a ForExpression. Cardinality is zero-or-more:
// Source may bind zero, one, or many times.
func NewForExpression(varKey eval.VarKey, varName string, source, body Expression) *ForExpression {
	f := &ForExpression{VarKey: varKey, VarName: varName, Source: source, Body: body}
	f.staticType = xdm.SequenceType{ItemType: body.StaticType().ItemType, Cardinality: xdm.CardinalityZeroOrMore}
	return f
}

// WithPositionalVariable attaches an "at $p" positional binding to f,
// returning f for chaining.
func (f *ForExpression) WithPositionalVariable(key eval.VarKey) *ForExpression {
	f.PositionKey = key
	f.HasPosition = true
	return f
}

func (f *ForExpression) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	srcIt, err := f.Source.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	var results []sequence.Item
	position := 0
	for {
		item, err, ok := srcIt.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		position++
		bound := ctx.BindVariable(f.VarKey, sequence.NewGroundedSequence([]sequence.Item{item}))
		if f.HasPosition {
			bound = bound.BindVariable(f.PositionKey,
				sequence.NewGroundedSequence([]sequence.Item{intItemOf(position)}))
		}
		bodyIt, err := f.Body.Iterate(bound)
		if err != nil {
			return nil, err
		}
		chunk, err := sequence.Drain(bodyIt)
		if err != nil {
			return nil, err
		}
		results = append(results, chunk...)
	}
	return sequence.NewGroundedSequence(results).Iterate(), nil
}

func (f *ForExpression) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	return eval.EvaluateItem(f, ctx)
}

func (f *ForExpression) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(f, ctx)
}

func (f *ForExpression) Simplify() (Expression, error) { return defaultSimplify(f) }
func (f *ForExpression) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(f)
}
func (f *ForExpression) Optimize() (Expression, error) { return defaultOptimize(f) }

// Promote installs its own accepting offer for Body: a sub-expression
// that is PropContextItemIndependent and does not reference $VarName (or
// the positional variable) is hoisted above the loop into a LetExpression
// that computes it exactly once instead of once per Source item. Source
// itself is promoted against the caller's own offer, since
// Source is evaluated once already and has nothing to gain by hoisting
// relative to this loop.
func (f *ForExpression) Promote(offer *PromotionOffer) (Expression, error) {
	promotedSource, err := f.Source.Promote(offer)
	if err != nil {
		return nil, err
	}
	f.Source = promotedSource
	innerBindings := append(append([]eval.VarKey{}, offer.BindingsBelow...), f.VarKey)
	if f.HasPosition {
		innerBindings = append(innerBindings, f.PositionKey)
	}
	var accepted []hoistCandidate
	promotedBody, err := f.Body.Promote(acceptingOffer(innerBindings, &accepted))
	if err != nil {
		return nil, err
	}
	f.Body = promotedBody
	return wrapWithHoisted(f, accepted), nil
}

func (f *ForExpression) SubExpressions() []Expression { return []Expression{f.Source, f.Body} }

func (f *ForExpression) ReplaceSubExpression(old, replacement Expression) bool {
	switch old {
	case f.Source:
		f.Source = replacement
	case f.Body:
		f.Body = replacement
	default:
		return false
	}
	return true
}

func (f *ForExpression) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	return pad + "for $" + f.VarName + "\n" + f.Source.Display(indent+1) + "\n" + f.Body.Display(indent+1)
}

// LetExpression is the "let $var := Source return Body" clause: Source
// is evaluated exactly once (not once per item), bound as a whole
// sequence to $var, and Body is evaluated once against that binding.
type LetExpression struct {
	base
	VarKey  eval.VarKey
	VarName string
	Source  Expression
	Body    Expression
}

// NewLetExpression builds a LetExpression with Body's own static type.
func NewLetExpression(varKey eval.VarKey, varName string, source, body Expression) *LetExpression {
	l := &LetExpression{VarKey: varKey, VarName: varName, Source: source, Body: body}
	l.staticType = body.StaticType()
	return l
}

func (l *LetExpression) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	srcIt, err := l.Source.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	items, err := sequence.Drain(srcIt)
	if err != nil {
		return nil, err
	}
	bound := ctx.BindVariable(l.VarKey, sequence.NewGroundedSequence(items))
	return l.Body.Iterate(bound)
}

func (l *LetExpression) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	return eval.EvaluateItem(l, ctx)
}

func (l *LetExpression) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	return eval.EffectiveBooleanValue(l, ctx)
}

func (l *LetExpression) Simplify() (Expression, error) { return defaultSimplify(l) }
func (l *LetExpression) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(l)
}
func (l *LetExpression) Optimize() (Expression, error) { return defaultOptimize(l) }

// Promote installs its own accepting offer for Body, the same
// loop-invariant hoist ForExpression.Promote performs: Source is bound
// once already, so only Body (evaluated once per use of $VarName further
// down, e.g. inside a nested for) can still yield something worth
// hoisting above this let.
func (l *LetExpression) Promote(offer *PromotionOffer) (Expression, error) {
	promotedSource, err := l.Source.Promote(offer)
	if err != nil {
		return nil, err
	}
	l.Source = promotedSource
	innerBindings := append(append([]eval.VarKey{}, offer.BindingsBelow...), l.VarKey)
	var accepted []hoistCandidate
	promotedBody, err := l.Body.Promote(acceptingOffer(innerBindings, &accepted))
	if err != nil {
		return nil, err
	}
	l.Body = promotedBody
	return wrapWithHoisted(l, accepted), nil
}

func (l *LetExpression) SubExpressions() []Expression { return []Expression{l.Source, l.Body} }

func (l *LetExpression) ReplaceSubExpression(old, replacement Expression) bool {
	switch old {
	case l.Source:
		l.Source = replacement
	case l.Body:
		l.Body = replacement
	default:
		return false
	}
	return true
}

func (l *LetExpression) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	return pad + "let $" + l.VarName + "\n" + l.Source.Display(indent+1) + "\n" + l.Body.Display(indent+1)
}

// IfExpression is the conditional "if (Test) then Then else Else".
type IfExpression struct {
	base
	Test, Then, Else Expression
}

// NewIfExpression builds an IfExpression whose static item type is the
// least common supertype of its two branches, and whose cardinality is
// the union of both branches' cardinalities.
func NewIfExpression(test, thenExpr, elseExpr Expression) *IfExpression {
	i := &IfExpression{Test: test, Then: thenExpr, Else: elseExpr}
	itemType := xdm.LeastCommonSupertype(thenExpr.StaticType().ItemType, elseExpr.StaticType().ItemType)
	card := xdm.Union(thenExpr.StaticType().Cardinality, elseExpr.StaticType().Cardinality)
	i.staticType = xdm.SequenceType{ItemType: itemType, Cardinality: card}
	return i
}

func (i *IfExpression) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	cond, err := i.Test.EffectiveBooleanValue(ctx)
	if err != nil {
		return nil, err
	}
	if cond {
		return i.Then.Iterate(ctx)
	}
	return i.Else.Iterate(ctx)
}

func (i *IfExpression) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	cond, err := i.Test.EffectiveBooleanValue(ctx)
	if err != nil {
		return nil, err
	}
	if cond {
		return i.Then.EvaluateItem(ctx)
	}
	return i.Else.EvaluateItem(ctx)
}

func (i *IfExpression) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	cond, err := i.Test.EffectiveBooleanValue(ctx)
	if err != nil {
		return false, err
	}
	if cond {
		return i.Then.EffectiveBooleanValue(ctx)
	}
	return i.Else.EffectiveBooleanValue(ctx)
}

func (i *IfExpression) Simplify() (Expression, error) { return defaultSimplify(i) }
func (i *IfExpression) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(i)
}
func (i *IfExpression) Optimize() (Expression, error) { return defaultOptimize(i) }
func (i *IfExpression) Promote(offer *PromotionOffer) (Expression, error) {
	return defaultPromote(i, offer)
}

func (i *IfExpression) SubExpressions() []Expression {
	return []Expression{i.Test, i.Then, i.Else}
}

func (i *IfExpression) ReplaceSubExpression(old, replacement Expression) bool {
	switch old {
	case i.Test:
		i.Test = replacement
	case i.Then:
		i.Then = replacement
	case i.Else:
		i.Else = replacement
	default:
		return false
	}
	return true
}

func (i *IfExpression) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	return pad + "if\n" + i.Test.Display(indent+1) + "\n" + i.Then.Display(indent+1) + "\n" + i.Else.Display(indent+1)
}

// Quantifier identifies "some" vs "every" in a QuantifiedExpression.
type Quantifier int

const (
	QuantifierSome Quantifier = iota
	QuantifierEvery
)

// QuantifiedExpression is "some $v in Source satisfies Test" or "every
// $v in Source satisfies Test". Only a single binding clause is modeled
// directly; multiple clauses compose by nesting one QuantifiedExpression
// inside another's Test, matching the grammar's own recursive structure.
type QuantifiedExpression struct {
	base
	Kind    Quantifier
	VarKey  eval.VarKey
	VarName string
	Source  Expression
	Test    Expression
}

// NewQuantifiedExpression builds a QuantifiedExpression; its result is
// always exactly one xs:boolean.
func NewQuantifiedExpression(kind Quantifier, varKey eval.VarKey, varName string, source, test Expression) *QuantifiedExpression {
	q := &QuantifiedExpression{Kind: kind, VarKey: varKey, VarName: varName, Source: source, Test: test}
	q.staticType = xdm.SequenceType{ItemType: xdm.TypeBoolean, Cardinality: xdm.CardinalityExactlyOne}
	return q
}

func (q *QuantifiedExpression) Iterate(ctx *eval.Context) (sequence.Iterator, error) {
	item, err := q.EvaluateItem(ctx)
	if err != nil {
		return nil, err
	}
	return sequence.NewGroundedSequence([]sequence.Item{item}).Iterate(), nil
}

func (q *QuantifiedExpression) EvaluateItem(ctx *eval.Context) (sequence.Item, error) {
	ok, err := q.EffectiveBooleanValue(ctx)
	if err != nil {
		return nil, err
	}
	return boolItemOf(ok), nil
}

func (q *QuantifiedExpression) EffectiveBooleanValue(ctx *eval.Context) (bool, error) {
	srcIt, err := q.Source.Iterate(ctx)
	if err != nil {
		return false, err
	}
	wantEvery := q.Kind == QuantifierEvery
	for {
		item, err, ok := srcIt.Next()
		if err != nil {
			return false, err
		}
		if !ok {
			return wantEvery, nil
		}
		bound := ctx.BindVariable(q.VarKey, sequence.NewGroundedSequence([]sequence.Item{item}))
		satisfied, err := q.Test.EffectiveBooleanValue(bound)
		if err != nil {
			return false, err
		}
		if satisfied != wantEvery {
			return satisfied, nil
		}
	}
}

func (q *QuantifiedExpression) Simplify() (Expression, error) { return defaultSimplify(q) }
func (q *QuantifiedExpression) TypeCheck(xdm.SequenceType) (Expression, error) {
	return defaultTypeCheck(q)
}
func (q *QuantifiedExpression) Optimize() (Expression, error) { return defaultOptimize(q) }

// Promote installs its own accepting offer for Test, the same
// loop-invariant hoist ForExpression.Promote performs for a for-loop
// body: Test runs once per Source item, so a sub-expression of Test that
// does not reference $VarName is worth computing once above the
// quantifier instead.
func (q *QuantifiedExpression) Promote(offer *PromotionOffer) (Expression, error) {
	promotedSource, err := q.Source.Promote(offer)
	if err != nil {
		return nil, err
	}
	q.Source = promotedSource
	innerBindings := append(append([]eval.VarKey{}, offer.BindingsBelow...), q.VarKey)
	var accepted []hoistCandidate
	promotedTest, err := q.Test.Promote(acceptingOffer(innerBindings, &accepted))
	if err != nil {
		return nil, err
	}
	q.Test = promotedTest
	return wrapWithHoisted(q, accepted), nil
}

func (q *QuantifiedExpression) SubExpressions() []Expression { return []Expression{q.Source, q.Test} }

func (q *QuantifiedExpression) ReplaceSubExpression(old, replacement Expression) bool {
	switch old {
	case q.Source:
		q.Source = replacement
	case q.Test:
		q.Test = replacement
	default:
		return false
	}
	return true
}

func (q *QuantifiedExpression) Display(indent int) string {
	pad := strings.Repeat("  ", indent)
	kw := "some"
	if q.Kind == QuantifierEvery {
		kw = "every"
	}
	return pad + kw + " $" + q.VarName + "\n" + q.Source.Display(indent+1) + "\n" + q.Test.Display(indent+1)
}
