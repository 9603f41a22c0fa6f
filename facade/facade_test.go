package facade_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/xpathcore/facade"
	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/node"
	"github.com/oxhq/xpathcore/internal/parse"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

func TestCompileXPathEvaluatesArithmetic(t *testing.T) {
	exe, err := facade.CompileXPath("2 + 3 * 4", nil)
	require.NoError(t, err)

	item, err := exe.Load().EvaluateSingle()
	require.NoError(t, err)
	n, ok := item.(value.IntegerValue)
	require.True(t, ok)
	v, err := n.LongValue()
	require.NoError(t, err)
	assert.Equal(t, int64(14), v)
}

func TestSelectorBindsExternalVariable(t *testing.T) {
	sc := parse.DefaultStaticContext()
	sc.ExternalVariables = map[string]xdm.SequenceType{
		"count": {ItemType: xdm.TypeInteger, Cardinality: xdm.CardinalityExactlyOne},
	}
	exe, err := facade.CompileXPath("$count * 2", sc)
	require.NoError(t, err)

	selector := exe.Load()
	bound := sequence.NewGroundedSequence([]sequence.Item{value.NewInteger(xdm.TypeInteger, 21)})
	selector.SetExternalVariable("count", bound)

	item, err := selector.EvaluateSingle()
	require.NoError(t, err)
	n := item.(value.IntegerValue)
	v, err := n.LongValue()
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestSelectorIsIndependentPerLoad(t *testing.T) {
	sc := parse.DefaultStaticContext()
	sc.ExternalVariables = map[string]xdm.SequenceType{
		"x": {ItemType: xdm.TypeInteger, Cardinality: xdm.CardinalityExactlyOne},
	}
	exe, err := facade.CompileXPath("$x", sc)
	require.NoError(t, err)

	first := exe.Load()
	first.SetExternalVariable("x", sequence.NewGroundedSequence([]sequence.Item{value.NewInteger(xdm.TypeInteger, 1)}))
	second := exe.Load()
	second.SetExternalVariable("x", sequence.NewGroundedSequence([]sequence.Item{value.NewInteger(xdm.TypeInteger, 2)}))

	firstItem, err := first.EvaluateSingle()
	require.NoError(t, err)
	secondItem, err := second.EvaluateSingle()
	require.NoError(t, err)

	fv, _ := firstItem.(value.IntegerValue).LongValue()
	sv, _ := secondItem.(value.IntegerValue).LongValue()
	assert.Equal(t, int64(1), fv)
	assert.Equal(t, int64(2), sv)
}

func TestCompileUnknownFunctionIsStaticError(t *testing.T) {
	_, err := facade.CompileXPath("fn:no-such-function(1)", nil)
	require.Error(t, err)
}

func TestSelectorRunPushesSequenceToDestination(t *testing.T) {
	exe, err := facade.CompileXPath(`("a", "b", "c")`, nil)
	require.NoError(t, err)

	pool := node.NewNamePool()
	dest := facade.NewTreeDestination(pool)
	require.NoError(t, exe.Load().Run(dest))

	tree := dest.Build()
	var texts []string
	for _, c := range tree.Root().Children() {
		texts = append(texts, c.StringValue())
	}
	assert.Equal(t, []string{"a", "b", "c"}, texts)
}

func TestCollectingErrorListenerStaysEmptyOnSuccess(t *testing.T) {
	exe, err := facade.CompileXPath("1 + 1", nil)
	require.NoError(t, err)

	listener := &errors.CollectingErrorListener{}
	_, err = exe.Load().SetErrorListener(listener).Evaluate()
	require.NoError(t, err)
	assert.Empty(t, listener.Errors)
}
