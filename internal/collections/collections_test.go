package collections

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntSetBasics(t *testing.T) {
	s := NewIntSet(4)
	assert.True(t, s.Add(5))
	assert.False(t, s.Add(5))
	assert.True(t, s.Contains(5))
	assert.False(t, s.Contains(6))
	assert.Equal(t, 1, s.Size())
	assert.True(t, s.Remove(5))
	assert.False(t, s.Contains(5))
	assert.Equal(t, 0, s.Size())
}

func TestIntSetGrowthAndProbing(t *testing.T) {
	s := NewIntSet(0)
	const n = 500
	for i := int32(0); i < n; i++ {
		require.True(t, s.Add(i*7))
	}
	assert.Equal(t, n, s.Size())
	for i := int32(0); i < n; i++ {
		assert.True(t, s.Contains(i*7))
	}
	assert.False(t, s.Contains(3))
}

func TestIntSetSetOps(t *testing.T) {
	a := NewIntSet(0)
	b := NewIntSet(0)
	for _, v := range []int32{1, 2, 3} {
		a.Add(v)
	}
	for _, v := range []int32{2, 3, 4} {
		b.Add(v)
	}
	union := a.Union(b)
	inter := a.Intersect(b)
	except := a.Except(b)

	assertSetEquals(t, union, []int32{1, 2, 3, 4})
	assertSetEquals(t, inter, []int32{2, 3})
	assertSetEquals(t, except, []int32{1})
	assert.True(t, union.ContainsAll(a))
	assert.False(t, a.ContainsAll(b))
}

func assertSetEquals(t *testing.T, s *IntSet, want []int32) {
	t.Helper()
	got := s.Iterator()
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	assert.Equal(t, want, got)
}

func TestSortedIntSetUnionIsLinearMerge(t *testing.T) {
	a := NewSortedIntSet()
	b := NewSortedIntSet()
	for _, v := range []int32{1, 3, 5, 7} {
		a.Add(v)
	}
	for _, v := range []int32{2, 3, 6} {
		b.Add(v)
	}
	union := a.Union(b)
	assert.Equal(t, []int32{1, 2, 3, 5, 6, 7}, union.Iterator())
	assert.Equal(t, []int32{3}, a.Intersect(b).Iterator())
}

func TestIntToIntMap(t *testing.T) {
	m := NewIntToIntMap(-1)
	m.Put(10, 100)
	m.Put(20, 200)
	assert.Equal(t, int32(100), m.Get(10))
	assert.Equal(t, int32(-1), m.Get(30))
	v, ok := m.Lookup(20)
	assert.True(t, ok)
	assert.Equal(t, int32(200), v)
	assert.True(t, m.Remove(10))
	assert.Equal(t, int32(-1), m.Get(10))
	assert.Equal(t, 1, m.Size())
}

func TestLRUCacheEvictsOnCapacity(t *testing.T) {
	c := NewLRUCache(2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3) // evicts "a"

	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, c.Size())

	stats := c.Stats()
	assert.Equal(t, int64(1), stats["evictions"])
}

func TestLRUCacheAccessOrder(t *testing.T) {
	c := NewLRUCache(2)
	c.Put(1, "one")
	c.Put(2, "two")
	c.Get(1) // touch 1, making 2 the LRU entry
	c.Put(3, "three")

	_, ok := c.Get(2)
	assert.False(t, ok, "2 should have been evicted as least recently used")
	_, ok = c.Get(1)
	assert.True(t, ok)
}

func TestQuickSortOrdersRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := make([]int, 300)
	for i := range values {
		values[i] = rng.Intn(50)
	}

	QuickSort(len(values),
		func(i, j int) bool { return values[i] < values[j] },
		func(i, j int) { values[i], values[j] = values[j], values[i] },
	)

	for i := 1; i < len(values); i++ {
		require.LessOrEqual(t, values[i-1], values[i])
	}
}

func TestQuickSortHandlesSmallAndEqualInputs(t *testing.T) {
	for _, values := range [][]int{{}, {1}, {2, 1}, {3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3}} {
		vs := append([]int(nil), values...)
		QuickSort(len(vs),
			func(i, j int) bool { return vs[i] < vs[j] },
			func(i, j int) { vs[i], vs[j] = vs[j], vs[i] },
		)
		for i := 1; i < len(vs); i++ {
			assert.LessOrEqual(t, vs[i-1], vs[i])
		}
	}
}

func TestMergeSortStability(t *testing.T) {
	type record struct {
		key, orig int
	}
	rng := rand.New(rand.NewSource(1))
	records := make([]record, 200)
	for i := range records {
		records[i] = record{key: rng.Intn(5), orig: i}
	}

	MergeSort(len(records),
		func(i, j int) bool { return records[i].key < records[j].key },
		func(i, j int) { records[i], records[j] = records[j], records[i] },
	)

	for i := 1; i < len(records); i++ {
		require.LessOrEqual(t, records[i-1].key, records[i].key)
		if records[i-1].key == records[i].key {
			assert.Less(t, records[i-1].orig, records[i].orig, "equal keys must keep original relative order")
		}
	}
}
