package sequence

// GroundedSequence is a fully materialized, indexable sequence: every
// item is resident in memory, so length and random access are O(1).
type GroundedSequence struct {
	items []Item
}

// NewGroundedSequence wraps a slice of items as a grounded sequence. The
// slice is not copied; callers must not mutate it afterward.
func NewGroundedSequence(items []Item) *GroundedSequence {
	return &GroundedSequence{items: items}
}

// Empty is the singleton empty sequence; a sequence of length zero
// compares equal to it structurally.
var Empty = NewGroundedSequence(nil)

// Len returns the number of items.
func (s *GroundedSequence) Len() int { return len(s.items) }

// Item returns the 0-based indexed item.
func (s *GroundedSequence) Item(i int) Item { return s.items[i] }

// Items returns the backing slice directly; callers must treat it as
// read-only.
func (s *GroundedSequence) Items() []Item { return s.items }

// Iterate returns a fresh Iterator over the sequence, positioned before the
// first item.
func (s *GroundedSequence) Iterate() Iterator {
	return &groundedIterator{seq: s, pos: 0}
}

type groundedIterator struct {
	seq *GroundedSequence
	pos int // 0 = before first item; otherwise 1-based position of Current
}

func (it *groundedIterator) Next() (Item, error, bool) {
	if it.pos >= len(it.seq.items) {
		it.pos = len(it.seq.items) + 1
		return nil, nil, false
	}
	item := it.seq.items[it.pos]
	it.pos++
	return item, nil, true
}

func (it *groundedIterator) Current() Item {
	if it.pos < 1 || it.pos > len(it.seq.items) {
		return nil
	}
	return it.seq.items[it.pos-1]
}

func (it *groundedIterator) Position() int {
	if it.pos < 1 {
		return 0
	}
	if it.pos > len(it.seq.items) {
		return len(it.seq.items)
	}
	return it.pos
}

func (it *groundedIterator) Properties() Property {
	return Grounded | PropLastPositionFinder | Lookahead | PropReversible
}

func (it *groundedIterator) GetAnother() (Iterator, error) {
	return &groundedIterator{seq: it.seq, pos: 0}, nil
}

func (it *groundedIterator) LastPosition() (int, error) {
	return len(it.seq.items), nil
}

func (it *groundedIterator) Reverse() (Iterator, error) {
	n := len(it.seq.items)
	reversed := make([]Item, n)
	for i, item := range it.seq.items {
		reversed[n-1-i] = item
	}
	return NewGroundedSequence(reversed).Iterate(), nil
}

func (it *groundedIterator) Peek() (bool, error) {
	return it.pos < len(it.seq.items), nil
}
