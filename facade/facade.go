// Package facade implements the host-facing compile/load/run contract:
// compile source text to an Executable, load an Executable
// into a configurable Selector, and drive a Selector against either a
// pull interface (iterate/evaluate) or a push Destination (run).
//
// The composition is the same for all three input languages: a front end
// parses source into a compiled tree, and the caller drives that tree
// through a uniform iterate/evaluate/run surface regardless of which
// language produced it.
package facade

import (
	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/expr"
	"github.com/oxhq/xpathcore/internal/parse"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// Executable is a compiled, optimized expression tree ready to be loaded
// into one or more Selectors. It is immutable and safe to share across
// goroutines, since Selector holds all per-evaluation state.
type Executable struct {
	tree *expr.Expression
	sc   *parse.StaticContext
}

// Expression returns the compiled tree an Executable wraps, for callers
// that need lower-level access (e.g. its Display rendering, static type
// or special properties).
func (e *Executable) Expression() expr.Expression { return *e.tree }

// StaticContext returns the StaticContext the Executable was compiled
// against, so a caller can discover which external variables it declared.
func (e *Executable) StaticContext() *parse.StaticContext { return e.sc }

// Load returns a fresh Selector bound to this Executable. Each Selector
// is independent: separate context items, variable bindings and listeners,
// even when loaded from the same Executable: compile once, run many
// times concurrently.
func (e *Executable) Load() *Selector {
	return newSelector(e)
}

// compile runs a parsed tree through the four static compile passes in
// the fixed order simplify, typeCheck, optimize,
// promote (each pass may rewrite the root, so the result of each feeds
// the next), then wraps the result as an Executable.
func compile(source string, sc *parse.StaticContext) (*Executable, error) {
	if sc == nil {
		sc = parse.DefaultStaticContext()
	}
	tree, err := parse.Parse(source, sc)
	if err != nil {
		return nil, errors.Wrap(errors.XPST0017, errors.Static, "compilation failed", err)
	}
	tree, err = tree.Simplify()
	if err != nil {
		return nil, err
	}
	tree, err = tree.TypeCheck(xdm.SequenceType{ItemType: xdm.TypeItem, Cardinality: xdm.CardinalityZeroOrMore})
	if err != nil {
		return nil, err
	}
	tree, err = tree.Optimize()
	if err != nil {
		return nil, err
	}
	tree, err = tree.Promote(rootPromotionOffer())
	if err != nil {
		return nil, err
	}
	return &Executable{tree: &tree, sc: sc}, nil
}

// rootPromotionOffer builds the outermost PromotionOffer a compile pass
// starts with: no bindings yet in scope, and nothing above the root to
// hoist a loop-invariant sub-expression into, so every offer is declined.
func rootPromotionOffer() *expr.PromotionOffer {
	return &expr.PromotionOffer{
		AcceptSubExpression: func(candidate expr.Expression) (expr.Expression, bool) {
			return nil, false
		},
	}
}

// CompileXPath compiles an XPath 2.0 expression.
func CompileXPath(source string, sc *parse.StaticContext) (*Executable, error) {
	return compile(source, sc)
}

// CompileXQuery compiles an XQuery 1.0 expression. The module-level
// grammar (prologs, user function/variable declarations, library
// modules) is a peripheral-layer concern; this entry
// point covers the expression language the two share with XPath, which
// is where every subsystem this core builds is actually exercised.
func CompileXQuery(source string, sc *parse.StaticContext) (*Executable, error) {
	return compile(source, sc)
}

// CompileXSLT compiles the expression core of one XSLT construct (an
// xsl:template's match pattern, an xsl:value-of/xsl:sort's select, an
// xsl:if/xsl:when's test): the XPath subset XSLT embeds inside XML
// attributes. Full XSLT stylesheet (XML-syntax, template/mode
// resolution) compilation is a peripheral-layer concern
// and is not reproduced here.
func CompileXSLT(source string, sc *parse.StaticContext) (*Executable, error) {
	return compile(source, sc)
}
