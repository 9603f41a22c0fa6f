package sequence

// NextFunc produces the next item of a lazy sequence, or ok=false when
// exhausted, or a non-nil error to abort; the error surfaces on the
// matching Next call, never silently.
type NextFunc func() (item Item, err error, ok bool)

// LazyIterator adapts a NextFunc into the Iterator contract. It carries
// none of Grounded/LastPositionFinder/Reversible/Lookahead by default,
// since a pull-based source generally cannot support any of them without
// buffering; callers needing those capabilities should Drain into a
// GroundedSequence first.
type LazyIterator struct {
	next    NextFunc
	restart func() *LazyIterator // nil if the source is one-shot
	pos     int
	cur     Item
	done    bool
}

// NewLazyIterator builds a one-shot lazy iterator from next. GetAnother
// will fail on it since there is no way to restart the underlying source.
func NewLazyIterator(next NextFunc) *LazyIterator {
	return &LazyIterator{next: next}
}

// NewRestartableLazyIterator builds a lazy iterator that can be restarted
// by calling factory again, e.g. because it wraps a pure function of the
// dynamic context rather than a single-pass external resource.
func NewRestartableLazyIterator(factory func() *LazyIterator) *LazyIterator {
	it := factory()
	it.restart = factory
	return it
}

func (it *LazyIterator) Next() (Item, error, bool) {
	if it.done {
		return nil, nil, false
	}
	item, err, ok := it.next()
	if err != nil {
		it.done = true
		return nil, err, false
	}
	if !ok {
		it.done = true
		it.cur = nil
		return nil, nil, false
	}
	it.pos++
	it.cur = item
	return item, nil, true
}

func (it *LazyIterator) Current() Item { return it.cur }
func (it *LazyIterator) Position() int { return it.pos }
func (it *LazyIterator) Properties() Property {
	return 0
}

func (it *LazyIterator) GetAnother() (Iterator, error) {
	if it.restart == nil {
		return nil, ErrNotRestartable
	}
	fresh := it.restart()
	fresh.restart = it.restart
	return fresh, nil
}
