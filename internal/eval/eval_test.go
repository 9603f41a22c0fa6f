package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

type fixedIterable struct {
	seq *sequence.GroundedSequence
}

func (f fixedIterable) Iterate(*eval.Context) (sequence.Iterator, error) {
	return f.seq.Iterate(), nil
}

func items(vs ...value.AtomicValue) *sequence.GroundedSequence {
	out := make([]sequence.Item, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return sequence.NewGroundedSequence(out)
}

func TestEvaluateItemEmpty(t *testing.T) {
	ctx := eval.NewContext(nil)
	v, err := eval.EvaluateItem(fixedIterable{items()}, ctx)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestEvaluateItemTooMany(t *testing.T) {
	ctx := eval.NewContext(nil)
	_, err := eval.EvaluateItem(fixedIterable{items(value.NewString("a"), value.NewString("b"))}, ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.XPTY0004))
}

func TestEffectiveBooleanValueRules(t *testing.T) {
	ctx := eval.NewContext(nil)

	ok, err := eval.EffectiveBooleanValue(fixedIterable{items()}, ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = eval.EffectiveBooleanValue(fixedIterable{items(value.NewBoolean(true))}, ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = eval.EffectiveBooleanValue(fixedIterable{items(value.NewInteger(xdm.TypeInteger, 0))}, ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = eval.EffectiveBooleanValue(fixedIterable{items(value.NewString(""))}, ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = eval.EffectiveBooleanValue(fixedIterable{items(value.NewString("x"))}, ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestEffectiveBooleanValueMixedSequenceErrors:
// EBV(("false", 0)) raises FORG0006.
func TestEffectiveBooleanValueMixedSequenceErrors(t *testing.T) {
	ctx := eval.NewContext(nil)
	_, err := eval.EffectiveBooleanValue(fixedIterable{items(value.NewString("false"), value.NewInteger(xdm.TypeInteger, 0))}, ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.FORG0006))
}

func TestMinorContextOverridesOneSlot(t *testing.T) {
	root := eval.NewContext(value.NewString("root"))
	root.ImplicitTimezoneMinutes = -480
	child := root.WithContextItem(value.NewString("child"))
	assert.Equal(t, "child", child.ContextItem.StringValue())
	assert.Equal(t, 1, child.Position)
	assert.Equal(t, -480, child.ImplicitTimezoneMinutes)
	assert.Same(t, root, child.Parent())
}

func TestBindVariableIsImmutableOnParent(t *testing.T) {
	root := eval.NewContext(nil)
	key := eval.VarKey{Local: "x"}
	bound := root.BindVariable(key, items(value.NewInteger(xdm.TypeInteger, 42)))

	_, err := root.LookupVariable(key)
	assert.ErrorIs(t, err, eval.ErrUnboundVariable)

	got, err := bound.LookupVariable(key)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
}
