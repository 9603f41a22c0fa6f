// Package expr implements the compiled expression tree:
// a DAG of capability-tagged variant nodes (literal, variable reference,
// arithmetic, comparison, path step, filter, FLWOR, quantified, cast,
// function call, sequence constructor, sort key, document-order wrapper)
// each carrying a static item type, cardinality and special-properties
// bit set, and exposing the four compile passes (simplify, typeCheck,
// optimize, promote) plus the evaluation/display capabilities.
//
// Every variant embeds a base struct supplying the shared metadata; the
// default pass behavior lives in package functions (defaultSimplify,
// defaultTypeCheck, defaultOptimize, defaultPromote) that each variant
// calls from its own pass methods.
package expr

import (
	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// Properties is the special-properties bit set: statically inferred
// invariants the optimizer consults.
type Properties uint32

const (
	// PropOrderedNodeset marks an expression statically known to deliver
	// nodes in document order.
	PropOrderedNodeset Properties = 1 << iota
	// PropReverseDocumentOrder marks an expression statically known to
	// deliver nodes in reverse document order (e.g. the ancestor axis).
	PropReverseDocumentOrder
	// PropContextDocumentNodeset marks a node-set known to be confined to
	// the document containing the context node.
	PropContextDocumentNodeset
	// PropSingleDocumentNodeset marks a node-set statically known to come
	// from a single document (enables the cheaper LocalOrderComparer).
	PropSingleDocumentNodeset
	// PropNonCreative marks an expression with no side effects and that
	// creates no new nodes — safe to re-evaluate or hoist.
	PropNonCreative
	// PropContextItemIndependent marks an expression whose value does not
	// depend on the context item, enabling loop-invariant hoisting.
	PropContextItemIndependent
)

// Has reports whether p includes flag.
func (p Properties) Has(flag Properties) bool { return p&flag != 0 }

// Expression is the capability set every compiled-tree node exposes.
// It embeds eval.Iterable so the evaluation engine can
// drive any Expression without this package importing a concrete
// evaluator, and to keep the dependency edge one-directional (expr
// depends on eval, not the reverse).
type Expression interface {
	eval.Iterable

	// EvaluateItem is a derived operation; most nodes implement it via
	// eval.EvaluateItem(e, ctx) unless they have a cheaper direct route.
	EvaluateItem(ctx *eval.Context) (sequence.Item, error)
	// EffectiveBooleanValue is a derived operation, see EvaluateItem.
	EffectiveBooleanValue(ctx *eval.Context) (bool, error)

	// StaticType returns the node's statically inferred item type and
	// cardinality.
	StaticType() xdm.SequenceType
	// SpecialProperties returns the node's special-properties bit set.
	SpecialProperties() Properties

	// Simplify removes trivial wrappers and folds constant sub-trees with
	// no runtime dependency, returning a possibly different root.
	Simplify() (Expression, error)
	// TypeCheck propagates expected into the tree, inserting
	// cardinality-checker/atomizer nodes or raising a static error.
	TypeCheck(expected xdm.SequenceType) (Expression, error)
	// Optimize rewrites the tree for efficiency.
	Optimize() (Expression, error)
	// Promote walks the tree accepting a PromotionOffer that may lift a
	// hoistable sub-expression into an enclosing scope.
	Promote(offer *PromotionOffer) (Expression, error)

	// SubExpressions returns the node's direct children, for passes and
	// optimizer traversal that need to walk the DAG generically.
	SubExpressions() []Expression
	// ReplaceSubExpression replaces the first child equal (by identity)
	// to old with replacement, reporting whether a replacement occurred.
	ReplaceSubExpression(old, replacement Expression) bool

	// Display renders the node (and, recursively, its children) as
	// indented diagnostic text, for golden-file regression tests and
	// xsl:message/trace output.
	Display(indent int) string
}

// PromotionOffer is the visitor passed during the promote pass that lets
// an enclosing scope adopt a hoistable sub-expression — a loop-invariant
// computation or a range variable reference that no longer needs to be
// recomputed per iteration.
type PromotionOffer struct {
	// BindingsBelow lists the range-variable keys currently in scope at
	// the point the offer is made; a sub-expression may only be hoisted
	// if it references none of them (PropContextItemIndependent plus "no
	// free reference to BindingsBelow").
	BindingsBelow []eval.VarKey
	// AcceptSubExpression is called by a node willing to be hoisted; it
	// returns the (possibly variable-reference) replacement to install in
	// the node's former position, or nil if the offer's owner declines.
	AcceptSubExpression func(candidate Expression) (replacement Expression, accepted bool)
}

// References reports whether key appears in the offer's in-scope
// bindings, the guard every Promote implementation applies before
// calling AcceptSubExpression.
func (o *PromotionOffer) References(key eval.VarKey) bool {
	for _, b := range o.BindingsBelow {
		if b == key {
			return true
		}
	}
	return false
}

// base is embedded by every concrete variant node. It stores the fields
// common to the whole tree (static type, special properties, source
// locator) and their accessors; it supplies no pass methods.
type base struct {
	staticType xdm.SequenceType
	props      Properties
	locator    errors.Locator
}

func (b *base) StaticType() xdm.SequenceType   { return b.staticType }
func (b *base) SpecialProperties() Properties  { return b.props }
func (b *base) Locator() errors.Locator        { return b.locator }
func (b *base) SetLocator(l errors.Locator)    { b.locator = l }

// defaultSimplify recursively simplifies e's children in place (replacing
// any child that Simplify rewrote) and returns e unchanged — the no-op
// shape most variant nodes use unless they carry their own local
// simplification rule (e.g. folding a literal-valued arithmetic node).
func defaultSimplify(e Expression) (Expression, error) {
	for _, sub := range e.SubExpressions() {
		simplified, err := sub.Simplify()
		if err != nil {
			return nil, err
		}
		if simplified != sub {
			e.ReplaceSubExpression(sub, simplified)
		}
	}
	return e, nil
}

// foldConstant implements the "fold literals whose operands are already
// literals and whose evaluation has no runtime dependency" rule: if
// every one of operands is already a *Literal (meaning it
// was itself folded, or was a literal to begin with, and so carries no
// variable reference or context-item dependency), e is evaluated once at
// compile time over a nil context and the result replaces it outright.
// Returns ok=false, leaving e untouched, when any operand is not yet a
// compile-time constant.
func foldConstant(e Expression, operands ...Expression) (folded Expression, ok bool, err error) {
	for _, operand := range operands {
		if _, isLiteral := operand.(*Literal); !isLiteral {
			return nil, false, nil
		}
	}
	item, err := e.EvaluateItem(nil)
	if err != nil {
		return nil, false, err
	}
	if item == nil {
		return EmptyLiteral, true, nil
	}
	return NewLiteral([]sequence.Item{item}), true, nil
}

// defaultTypeCheck recurses into e's children with their own
// already-known static types as the expected type (i.e. it does not
// tighten anything at this node) — used by nodes whose own static type is
// fixed independently of any expected type propagated from above.
func defaultTypeCheck(e Expression) (Expression, error) {
	for _, sub := range e.SubExpressions() {
		checked, err := sub.TypeCheck(sub.StaticType())
		if err != nil {
			return nil, err
		}
		if checked != sub {
			e.ReplaceSubExpression(sub, checked)
		}
	}
	return e, nil
}

// defaultOptimize recurses into e's children and returns e unchanged.
func defaultOptimize(e Expression) (Expression, error) {
	for _, sub := range e.SubExpressions() {
		optimized, err := sub.Optimize()
		if err != nil {
			return nil, err
		}
		if optimized != sub {
			e.ReplaceSubExpression(sub, optimized)
		}
	}
	return e, nil
}

// defaultPromote forwards the offer to every child without e itself
// accepting anything, the shape used by any node that is not itself a
// valid hoist target independent of its children.
func defaultPromote(e Expression, offer *PromotionOffer) (Expression, error) {
	for _, sub := range e.SubExpressions() {
		promoted, err := sub.Promote(offer)
		if err != nil {
			return nil, err
		}
		if promoted != sub {
			e.ReplaceSubExpression(sub, promoted)
		}
	}
	return e, nil
}

// CardinalityFromItemCount reports the Cardinality matching a sequence
// statically known to always contain exactly n items (used by nodes
// whose arity is fixed at compile time, e.g. a literal or a cast).
func CardinalityFromItemCount(n int) xdm.Cardinality {
	if n == 0 {
		return xdm.CardinalityEmpty
	}
	if n == 1 {
		return xdm.CardinalityExactlyOne
	}
	return xdm.CardinalityOneOrMore
}
