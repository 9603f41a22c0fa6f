package expr_test

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/expr"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// assertDisplayGolden fails with a unified diff (go-difflib) between got and
// want, instead of testify's default single-line mismatch message —
// useful once Display() output spans many indented lines.
func assertDisplayGolden(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	require.NoError(t, err)
	t.Fatalf("Display() golden mismatch:\n%s", text)
}

func intLit(n int64) *expr.Literal {
	return expr.NewAtomicLiteral(value.NewInteger(xdm.TypeInteger, n))
}

// TestDisplayLiteral is a plain golden test for Literal.Display, the leaf
// every other node's Display recurses into.
func TestDisplayLiteral(t *testing.T) {
	assertDisplayGolden(t, "literal(2)", intLit(2).Display(0))
}

// TestDisplayArithmeticTree pins down the indented, parenthesis-free
// rendering of a binary tree before any compile pass runs.
func TestDisplayArithmeticTree(t *testing.T) {
	e := expr.NewArithmetic(expr.OpMul, intLit(3), intLit(4))
	want := "*\n" +
		"  literal(3)\n" +
		"  literal(4)"
	assertDisplayGolden(t, want, e.Display(0))
}

// TestSimplifyFoldsConstantArithmetic:
// "2 + 3 * 4" simplifies to a single Literal at compile time, not just at
// evaluation — Display() of the simplified tree is the golden proof,
// since a leftover Arithmetic node would render as a multi-line tree
// instead of one literal(..) line.
func TestSimplifyFoldsConstantArithmetic(t *testing.T) {
	inner := expr.NewArithmetic(expr.OpMul, intLit(3), intLit(4))
	outer := expr.NewArithmetic(expr.OpAdd, intLit(2), inner)

	simplified, err := outer.Simplify()
	require.NoError(t, err)

	_, stillArithmetic := simplified.(*expr.Arithmetic)
	assert.False(t, stillArithmetic, "constant arithmetic should fold to a Literal")
	assertDisplayGolden(t, "literal(14)", simplified.Display(0))
}

// TestSimplifyDoesNotFoldNonConstantArithmetic guards the other half of
// the rule: an operand that is not yet a compile-time constant (a
// variable reference here) must survive Simplify untouched.
func TestSimplifyDoesNotFoldNonConstantArithmetic(t *testing.T) {
	ref := expr.NewVariableReference(eval.VarKey{Local: "x"}, "x",
		xdm.SequenceType{ItemType: xdm.TypeInteger, Cardinality: xdm.CardinalityExactlyOne})
	e := expr.NewArithmetic(expr.OpAdd, ref, intLit(1))

	simplified, err := e.Simplify()
	require.NoError(t, err)

	_, stillArithmetic := simplified.(*expr.Arithmetic)
	assert.True(t, stillArithmetic, "arithmetic with a variable operand must not fold")
}

// TestOptimizeCollapsesOrderedDocumentOrderWrapper:
// wrapping a Source already flagged PropOrderedNodeset
// collapses the wrapper away entirely during Optimize.
func TestOptimizeCollapsesOrderedDocumentOrderWrapper(t *testing.T) {
	ordered := intLit(1) // Literal carries PropOrderedNodeset unconditionally
	wrapped := expr.NewDocumentOrderExpression(ordered, true)

	optimized, err := wrapped.Optimize()
	require.NoError(t, err)
	assert.Same(t, ordered, optimized)
}

// TestOptimizeCombinesAdjacentSorts: a SortExpression directly wrapping another
// SortExpression collapses to one SortExpression over the innermost
// Source with both key lists concatenated.
func TestOptimizeCombinesAdjacentSorts(t *testing.T) {
	src := intLit(1)
	innerKey := expr.SortKey{Select: intLit(2), Ascending: true}
	outerKey := expr.SortKey{Select: intLit(3), Ascending: false}
	inner := expr.NewSortExpression(src, []expr.SortKey{innerKey})
	outer := expr.NewSortExpression(inner, []expr.SortKey{outerKey})

	optimized, err := outer.Optimize()
	require.NoError(t, err)

	combined, ok := optimized.(*expr.SortExpression)
	require.True(t, ok, "adjacent sorts must combine into one SortExpression")
	assert.Same(t, src, combined.Source)
	require.Len(t, combined.Keys, 2)
	assert.Same(t, outerKey.Select, combined.Keys[0].Select)
	assert.Same(t, innerKey.Select, combined.Keys[1].Select)
}
