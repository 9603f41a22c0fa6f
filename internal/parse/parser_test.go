package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/parse"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
)

func intOf(t *testing.T, item sequence.Item) int64 {
	t.Helper()
	n, ok := item.(value.IntegerValue)
	require.True(t, ok, "expected an integer, got %T", item)
	v, err := n.LongValue()
	require.NoError(t, err)
	return v
}

func evalItem(t *testing.T, source string) sequence.Item {
	t.Helper()
	e, err := parse.Parse(source, nil)
	require.NoError(t, err, "parsing %q", source)
	item, err := e.EvaluateItem(eval.NewContext(nil))
	require.NoError(t, err, "evaluating %q", source)
	return item
}

func TestParseArithmetic(t *testing.T) {
	item := evalItem(t, "1 + 2 * 3")
	assert.Equal(t, int64(7), intOf(t, item))
}

func TestParseComparison(t *testing.T) {
	item := evalItem(t, "(1 + 2) eq 3")
	b, ok := item.(value.BooleanValue)
	require.True(t, ok)
	assert.True(t, b.Bool())
}

func TestParseStringLiteralAndFunctionCall(t *testing.T) {
	item := evalItem(t, `upper-case("abc")`)
	s, ok := item.(value.StringAtomicValue)
	require.True(t, ok)
	assert.Equal(t, "ABC", s.StringValue())
}

func TestParseLogicalShortCircuit(t *testing.T) {
	item := evalItem(t, `true() or (1 div 0 eq 1)`)
	b, ok := item.(value.BooleanValue)
	require.True(t, ok)
	assert.True(t, b.Bool())
}

func TestParseIfExpression(t *testing.T) {
	item := evalItem(t, `if (1 lt 2) then "yes" else "no"`)
	s, ok := item.(value.StringAtomicValue)
	require.True(t, ok)
	assert.Equal(t, "yes", s.StringValue())
}

func TestParseForExpression(t *testing.T) {
	e, err := parse.Parse("for $x in (1, 2, 3) return $x * 2", nil)
	require.NoError(t, err)
	it, err := e.Iterate(eval.NewContext(nil))
	require.NoError(t, err)
	items, err := sequence.Drain(it)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, int64(2), intOf(t, items[0]))
	assert.Equal(t, int64(4), intOf(t, items[1]))
	assert.Equal(t, int64(6), intOf(t, items[2]))
}

func TestParseLetExpression(t *testing.T) {
	item := evalItem(t, `let $x := 10 return $x + 5`)
	assert.Equal(t, int64(15), intOf(t, item))
}

func TestParseQuantifiedExpression(t *testing.T) {
	item := evalItem(t, `some $x in (1, 2, 3) satisfies $x eq 2`)
	b := item.(value.BooleanValue)
	assert.True(t, b.Bool())

	item = evalItem(t, `every $x in (1, 2, 3) satisfies $x gt 0`)
	b = item.(value.BooleanValue)
	assert.True(t, b.Bool())
}

func TestParseInstanceOfAndCast(t *testing.T) {
	item := evalItem(t, `1 instance of xs:integer`)
	assert.True(t, item.(value.BooleanValue).Bool())

	item = evalItem(t, `"42" cast as xs:integer`)
	assert.Equal(t, int64(42), intOf(t, item))
}

func TestParseRangeExpression(t *testing.T) {
	e, err := parse.Parse("1 to 4", nil)
	require.NoError(t, err)
	it, err := e.Iterate(eval.NewContext(nil))
	require.NoError(t, err)
	items, err := sequence.Drain(it)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, int64(1), intOf(t, items[0]))
	assert.Equal(t, int64(4), intOf(t, items[3]))

	item := evalItem(t, "count(5 to 3)")
	assert.Equal(t, int64(0), intOf(t, item))
}

func TestAdjustDateTimeToTimezone(t *testing.T) {
	item := evalItem(t, `adjust-dateTime-to-timezone(xs:dateTime("2020-01-15T12:00:00+05:00"), xs:dayTimeDuration("-PT8H"))`)
	assert.Equal(t, "2020-01-14T23:00:00-08:00", item.StringValue())
}

func TestRemoveTimezone(t *testing.T) {
	item := evalItem(t, `remove-timezone(xs:dateTime("2020-01-15T12:00:00+05:00"))`)
	assert.Equal(t, "2020-01-15T12:00:00", item.StringValue())
}

func TestParseSequenceConstructorAndCount(t *testing.T) {
	item := evalItem(t, `count((1, 2, (), 3))`)
	assert.Equal(t, int64(3), intOf(t, item))
}

func TestParseUndeclaredVariableIsStaticError(t *testing.T) {
	_, err := parse.Parse("$nope", nil)
	require.Error(t, err)
}

func TestParseUnknownFunctionIsStaticError(t *testing.T) {
	_, err := parse.Parse("fn:no-such-function(1)", nil)
	require.Error(t, err)
}
