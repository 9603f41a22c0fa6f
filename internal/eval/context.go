// Package eval implements the dynamic evaluation engine: the Context
// carried through every expression evaluation, the single primary
// evaluator contract (Iterate) and its default derived operations
// (EvaluateItem, EffectiveBooleanValue).
package eval

import (
	"github.com/oxhq/xpathcore/internal/compare"
	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/sequence"
)

// VarKey identifies a bound variable by its expanded name, mirroring how
// internal/node.Fingerprint identifies an element/attribute name but
// without requiring a shared NamePool (variables are resolved by the
// expression tree at compile time, not navigated at runtime).
type VarKey struct {
	URI   string
	Local string
}

// URIResolver resolves an href (and optional base URI) to a document.
// The core leaves
// document construction to the host; Resolve returns an opaque handle the
// expression tree's fn:doc implementation knows how to dereference.
type URIResolver interface {
	Resolve(href, base string) (any, error)
}

// Context is the dynamic evaluation context: the context
// item/position/size, the current iterator (for position()/last()), the
// current group iterator (for xsl:for-each-group's current-group()), the
// implicit timezone, variable bindings, a URI resolver, and the
// error/trace listener pair. A context is short-lived and owned by its
// evaluator; a compiled expression may be evaluated concurrently from
// independent Context values.
type Context struct {
	ContextItem     sequence.Item
	Position        int
	Size            int
	CurrentIterator sequence.Iterator
	CurrentGroup    *compare.GroupIterator

	ImplicitTimezoneMinutes int

	Variables map[VarKey]*sequence.GroundedSequence

	URIResolver   URIResolver
	ErrorListener errors.ErrorListener
	TraceListener errors.TraceListener

	// parent is non-nil for a "minor" context: a child scope
	// that overrides only a subset of slots. Go has no delegating-field
	// story, so Minor returns a shallow copy instead; parent is kept only
	// so a caller can recover the context a minor context was derived from
	// (e.g. to restore CurrentIterator after a nested iteration).
	parent *Context
}

// NewContext builds a root context over a single context item (or nil for
// none), with default empty bindings and discarding listeners.
func NewContext(contextItem sequence.Item) *Context {
	c := &Context{
		ContextItem:   contextItem,
		Variables:     make(map[VarKey]*sequence.GroundedSequence),
		ErrorListener: errors.DiscardingErrorListener{},
		TraceListener: errors.DiscardingTraceListener{},
	}
	if contextItem != nil {
		c.Position = 1
		c.Size = 1
	}
	return c
}

// Minor returns a child context overriding only the slots the caller sets
// afterward on the returned value; every other slot is inherited by
// shallow copy.
func (c *Context) Minor() *Context {
	cp := *c
	cp.parent = c
	return &cp
}

// Parent returns the context Minor was derived from, or nil for a root
// context.
func (c *Context) Parent() *Context { return c.parent }

// WithContextItem returns a minor context with a new context item,
// position 1 and size 1 — the common case of entering a focus-changing
// sub-expression (a path step, a predicate, a for-loop body).
func (c *Context) WithContextItem(item sequence.Item) *Context {
	cp := c.Minor()
	cp.ContextItem = item
	cp.Position = 1
	cp.Size = 1
	return cp
}

// WithPosition returns a minor context at a specific position/size over
// the same iteration, used by predicate and quantified-expression
// evaluation.
func (c *Context) WithPosition(item sequence.Item, position, size int) *Context {
	cp := c.Minor()
	cp.ContextItem = item
	cp.Position = position
	cp.Size = size
	return cp
}

// BindVariable returns a minor context with one additional (or
// overridden) variable binding.
func (c *Context) BindVariable(key VarKey, value *sequence.GroundedSequence) *Context {
	cp := c.Minor()
	cp.Variables = make(map[VarKey]*sequence.GroundedSequence, len(c.Variables)+1)
	for k, v := range c.Variables {
		cp.Variables[k] = v
	}
	cp.Variables[key] = value
	return cp
}

// ErrUnboundVariable is returned by LookupVariable for a key with no
// binding in scope; the expression tree's compile-time variable-reference
// resolution should normally prevent this from ever firing dynamically.
var ErrUnboundVariable = errors.New(errors.XPST0008, errors.Static, "eval: unbound variable reference")

// LookupVariable returns the sequence bound to key, or ErrUnboundVariable.
func (c *Context) LookupVariable(key VarKey) (*sequence.GroundedSequence, error) {
	if v, ok := c.Variables[key]; ok {
		return v, nil
	}
	return nil, ErrUnboundVariable
}
