package compare

import (
	"github.com/oxhq/xpathcore/internal/collections"
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
)

// SortKeySpec is one xsl:sort / order-by key specification: which
// comparer to use, ascending vs descending, and where a missing
// (empty-sequence) key value sorts.
type SortKeySpec struct {
	Comparer  AtomicComparer
	Ascending bool
	Empty     EmptyOrder
}

// Record is one row of the sort's record array: the item itself, one
// slot per sort key, and its original position (the stability
// tiebreaker). A nil Keys entry denotes an empty sort-key
// sequence for that key.
type Record struct {
	Item     sequence.Item
	Keys     []value.AtomicValue
	Original int
}

// Sort stably reorders records according to keys: ties on an earlier key
// fall through to the next, and equal-on-every-key records keep their
// original relative order. Uses
// internal/collections.MergeSort for its guaranteed linear-merge shape
// rather than stdlib sort.Stable, since Record swaps are comparatively
// expensive (a slice-of-slices payload) and the classic merge sort's
// fewer comparisons matter here, per internal/collections' own rationale.
func Sort(records []Record, keys []SortKeySpec) error {
	var sortErr error
	collections.MergeSort(len(records), func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		less, err := lessRecord(records[i], records[j], keys)
		if err != nil {
			sortErr = err
			return false
		}
		return less
	}, func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})
	return sortErr
}

func lessRecord(a, b Record, keys []SortKeySpec) (bool, error) {
	for i, k := range keys {
		var av, bv value.AtomicValue
		if i < len(a.Keys) {
			av = a.Keys[i]
		}
		if i < len(b.Keys) {
			bv = b.Keys[i]
		}
		cmp, err := CompareWithEmpty(k.Comparer, av, bv, k.Empty)
		if err != nil {
			return false, err
		}
		if cmp == 0 {
			continue
		}
		if !k.Ascending {
			cmp = -cmp
		}
		return cmp < 0, nil
	}
	return a.Original < b.Original, nil
}

// NewRecords builds a Record array from items and the per-item key
// functions, recording each item's original population position for the
// stability tiebreaker.
func NewRecords(items []sequence.Item, keyFns []func(sequence.Item) (value.AtomicValue, error)) ([]Record, error) {
	records := make([]Record, len(items))
	for i, item := range items {
		keys := make([]value.AtomicValue, len(keyFns))
		for k, fn := range keyFns {
			v, err := fn(item)
			if err != nil {
				return nil, err
			}
			keys[k] = v
		}
		records[i] = Record{Item: item, Keys: keys, Original: i}
	}
	return records, nil
}
