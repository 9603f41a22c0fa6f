package compare_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/xpathcore/internal/compare"
	"github.com/oxhq/xpathcore/internal/node"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// TestComparisonKeyContract verifies the comparison-key contract: for any two
// atomic values and any atomic comparer, CompareAtomicValues(a,b) == 0
// iff the comparison keys are equal.
func TestComparisonKeyContract(t *testing.T) {
	c := compare.NewGeneralComparer(nil, 0)
	pairs := []struct {
		a, b value.AtomicValue
	}{
		{value.NewInteger(xdm.TypeInteger, 3), value.NewInteger(xdm.TypeInteger, 3)},
		{value.NewInteger(xdm.TypeInteger, 3), value.NewInteger(xdm.TypeInteger, 4)},
		{value.NewString("abc"), value.NewString("abc")},
		{value.NewString("abc"), value.NewString("abd")},
		{value.NewBoolean(true), value.NewBoolean(true)},
		{value.NewBoolean(true), value.NewBoolean(false)},
	}
	for _, p := range pairs {
		cmp, err := c.CompareAtomicValues(p.a, p.b)
		require.NoError(t, err)
		ka, kb := c.ComparisonKey(p.a), c.ComparisonKey(p.b)
		assert.Equal(t, cmp == 0, ka.Equals(kb))
	}
}

// TestSortStability: equal-key items keep
// their relative input order.
func TestSortStability(t *testing.T) {
	type item struct {
		id  int
		key int64
	}
	items := []item{{1, 5}, {2, 3}, {3, 5}, {4, 3}, {5, 5}}
	comparer := compare.NewGeneralComparer(nil, 0)
	records := make([]compare.Record, len(items))
	for i, it := range items {
		records[i] = compare.Record{
			Item:     sequenceItemOf(it.id),
			Keys:     []value.AtomicValue{value.NewInteger(xdm.TypeInteger, it.key)},
			Original: i,
		}
	}
	require.NoError(t, compare.Sort(records, []compare.SortKeySpec{{Comparer: comparer, Ascending: true}}))
	var order []int
	for _, r := range records {
		order = append(order, r.Item.(intItem).id)
	}
	// Both key-5 groups must keep their relative order: 1 before 3 before 5;
	// key-3 group keeps 2 before 4.
	assert.Equal(t, []int{2, 4, 1, 3, 5}, order)
}

// TestSortEmptyGreatest: (3, (), 1, (), 2) ascending
// with empty-greatest yields (1, 2, 3, (), ()).
func TestSortEmptyGreatest(t *testing.T) {
	comparer := compare.NewGeneralComparer(nil, 0)
	keys := []value.AtomicValue{
		value.NewInteger(xdm.TypeInteger, 3), nil, value.NewInteger(xdm.TypeInteger, 1), nil, value.NewInteger(xdm.TypeInteger, 2),
	}
	records := make([]compare.Record, len(keys))
	for i, k := range keys {
		var ks []value.AtomicValue
		if k != nil {
			ks = []value.AtomicValue{k}
		}
		records[i] = compare.Record{Item: sequenceItemOf(i), Keys: ks, Original: i}
	}
	spec := compare.SortKeySpec{Comparer: comparer, Ascending: true, Empty: compare.EmptyGreatest}
	require.NoError(t, compare.Sort(records, []compare.SortKeySpec{spec}))
	var out []string
	for _, r := range records {
		if len(r.Keys) == 0 {
			out = append(out, "()")
			continue
		}
		out = append(out, r.Keys[0].StringValue())
	}
	assert.Equal(t, []string{"1", "2", "3", "()", "()"}, out)
}

// TestNaNGroupingUnderSortComparer: under
// the sort comparer, NaN compares equal to NaN and less than any non-NaN
// value; under the general (value-comparison) comparer, NaN eq NaN is
// false.
func TestNaNGroupingUnderSortComparer(t *testing.T) {
	general := compare.NewGeneralComparer(nil, 0)
	sortCmp := compare.NewSortComparer(general)
	nan := value.NewDouble(math.NaN())
	one := value.NewDouble(1)

	cmp, err := sortCmp.CompareAtomicValues(nan, nan)
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)

	cmp, err = sortCmp.CompareAtomicValues(nan, one)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	_, err = general.CompareAtomicValues(nan, nan)
	assert.ErrorIs(t, err, compare.ErrNotComparable)

	assert.True(t, sortCmp.ComparisonKey(nan).Equals(sortCmp.ComparisonKey(nan)))
}

// TestGroupByMembership: every
// item joins exactly one group per distinct value its key function
// produces, and groups are ordered by first appearance.
func TestGroupByMembership(t *testing.T) {
	comparer := compare.NewGeneralComparer(nil, 0)
	items := []sequence.Item{intItem{1}, intItem{2}, intItem{3}, intItem{4}}
	keyFn := func(it sequence.Item) ([]value.AtomicValue, error) {
		x := int64(it.(intItem).id)
		return []value.AtomicValue{value.NewInteger(xdm.TypeInteger, x%2), value.NewInteger(xdm.TypeInteger, x%3)}, nil
	}
	groups, err := compare.GroupBy(items, keyFn, comparer)
	require.NoError(t, err)

	var keys []string
	membership := map[string][]int{}
	for _, g := range groups {
		keys = append(keys, g.Key.StringValue())
		var ids []int
		for _, m := range g.Members {
			ids = append(ids, m.(intItem).id)
		}
		membership[g.Key.StringValue()] = ids
	}
	// item 1 -> {1 mod2=1, 1 mod3=1} -> distinct {1}
	// item 2 -> {0, 2}
	// item 3 -> {1, 0}
	// item 4 -> {0, 1}
	// first-appearance order of distinct keys: 1 (item1), 0 (item2), 2 (item2)
	assert.Equal(t, []string{"1", "0", "2"}, keys)
	assert.ElementsMatch(t, []int{1, 3, 4}, membership["1"])
	assert.ElementsMatch(t, []int{2, 3, 4}, membership["0"])
	assert.ElementsMatch(t, []int{2}, membership["2"])
}

// TestGroupAdjacent checks that a key change starts a new group and equal
// adjacent keys merge into the running group.
func TestGroupAdjacent(t *testing.T) {
	comparer := compare.NewGeneralComparer(nil, 0)
	items := []sequence.Item{
		stringItem{"a", 1}, stringItem{"a", 2}, stringItem{"b", 3}, stringItem{"a", 4},
	}
	keyFn := func(it sequence.Item) (value.AtomicValue, error) {
		return value.NewString(it.(stringItem).key), nil
	}
	groups, err := compare.GroupAdjacent(items, keyFn, comparer)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "a", groups[0].Key.StringValue())
	assert.Len(t, groups[0].Members, 2)
	assert.Equal(t, "b", groups[1].Key.StringValue())
	assert.Equal(t, "a", groups[2].Key.StringValue())
	assert.Len(t, groups[2].Members, 1)
}

// TestDocumentOrderAcrossDocuments: two documents
// D1, D2 with roots E1 (doc number 1), E2 (doc number 2); input (E2, E1,
// E1) yields (E1, E2) after dedup.
func TestDocumentOrderAcrossDocuments(t *testing.T) {
	pool := node.NewNamePool()
	fp := pool.Intern("", "", "root")

	b1 := node.NewBuilder(pool)
	b1.StartElement(fp)
	b1.EndElement()
	e1 := b1.Build().Root().Children()[0]

	b2 := node.NewBuilder(pool)
	b2.StartElement(fp)
	b2.EndElement()
	e2 := b2.Build().Root().Children()[0]

	require.Less(t, e1.DocumentNumber(), e2.DocumentNumber())

	in := []sequence.Item{e2, e1, e1}
	out, err := compare.DocumentOrder(in, false, false)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].(node.Node).Equal(e1))
	assert.True(t, out[1].(node.Node).Equal(e2))
}

// TestDocumentOrderIdempotent: wrapping an
// already ORDERED_NODESET sequence returns it unchanged.
func TestDocumentOrderIdempotent(t *testing.T) {
	pool := node.NewNamePool()
	fp := pool.Intern("", "", "root")
	b := node.NewBuilder(pool)
	b.StartElement(fp)
	b.EndElement()
	e := b.Build().Root().Children()[0]
	in := []sequence.Item{e}
	out, err := compare.DocumentOrder(in, true, true)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

type intItem struct{ id int }

func (i intItem) StringValue() string { return "" }

type stringItem struct {
	key string
	id  int
}

func (s stringItem) StringValue() string { return s.key }

func sequenceItemOf(id int) sequence.Item { return intItem{id: id} }
