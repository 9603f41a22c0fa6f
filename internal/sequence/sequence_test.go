package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/xpathcore/internal/value"
)

func items(ss ...string) []Item {
	out := make([]Item, len(ss))
	for i, s := range ss {
		v := value.NewString(s)
		out[i] = Item(v)
	}
	return out
}

func TestGroundedIteratorWalksInOrder(t *testing.T) {
	seq := NewGroundedSequence(items("a", "b", "c"))
	it := seq.Iterate()
	var got []string
	for {
		item, err, ok := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, item.StringValue())
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestGroundedIteratorPositionTracking(t *testing.T) {
	seq := NewGroundedSequence(items("x", "y"))
	it := seq.Iterate()
	assert.Equal(t, 0, it.Position())
	_, _, _ = it.Next()
	assert.Equal(t, 1, it.Position())
	assert.Equal(t, "x", it.Current().StringValue())
	_, _, _ = it.Next()
	assert.Equal(t, 2, it.Position())
	_, _, ok := it.Next()
	assert.False(t, ok)
}

func TestGroundedIteratorGetAnotherRestarts(t *testing.T) {
	seq := NewGroundedSequence(items("a", "b"))
	it := seq.Iterate()
	_, _, _ = it.Next()
	fresh, err := it.GetAnother()
	require.NoError(t, err)
	item, _, ok := fresh.Next()
	require.True(t, ok)
	assert.Equal(t, "a", item.StringValue())
}

func TestGroundedIteratorReverse(t *testing.T) {
	seq := NewGroundedSequence(items("a", "b", "c"))
	it := seq.Iterate()
	rev, err := it.(Reversible).Reverse()
	require.NoError(t, err)
	got, err := Drain(rev)
	require.NoError(t, err)
	assert.Equal(t, "c", got[0].StringValue())
	assert.Equal(t, "a", got[2].StringValue())
}

func TestGroundedIteratorLastPosition(t *testing.T) {
	seq := NewGroundedSequence(items("a", "b", "c"))
	it := seq.Iterate()
	n, err := it.(LastPositionFinder).LastPosition()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestEmptySequenceSingleton(t *testing.T) {
	assert.Equal(t, 0, Empty.Len())
	it := Empty.Iterate()
	_, _, ok := it.Next()
	assert.False(t, ok)
}

func TestLazyIteratorOneShotNotRestartable(t *testing.T) {
	values := []string{"p", "q"}
	i := 0
	it := NewLazyIterator(func() (Item, error, bool) {
		if i >= len(values) {
			return nil, nil, false
		}
		v := value.NewString(values[i])
		i++
		return Item(v), nil, true
	})
	_, _, _ = it.Next()
	_, err := it.GetAnother()
	assert.ErrorIs(t, err, ErrNotRestartable)
}

func TestLazyIteratorRestartable(t *testing.T) {
	makeIt := func() *LazyIterator {
		values := []string{"p", "q"}
		i := 0
		return NewLazyIterator(func() (Item, error, bool) {
			if i >= len(values) {
				return nil, nil, false
			}
			v := value.NewString(values[i])
			i++
			return Item(v), nil, true
		})
	}
	it := NewRestartableLazyIterator(makeIt)
	got, err := Drain(it)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	fresh, err := it.GetAnother()
	require.NoError(t, err)
	got2, err := Drain(fresh)
	require.NoError(t, err)
	assert.Equal(t, got, got2)
}

func TestDrainPropagatesError(t *testing.T) {
	it := NewLazyIterator(func() (Item, error, bool) {
		return nil, assertErr, false
	})
	_, err := Drain(it)
	assert.ErrorIs(t, err, assertErr)
}

var assertErr = assertError{}

type assertError struct{}

func (assertError) Error() string { return "boom" }
