package sequence

import "github.com/oxhq/xpathcore/internal/errors"

// Property is a bit in an Iterator's capability set.
type Property uint8

const (
	// Grounded means the iterator is backed by a fully materialized,
	// indexable sequence (cheap GetAnother, cheap LastPosition).
	Grounded Property = 1 << iota
	// PropLastPositionFinder means the iterator can report the sequence's
	// length without consuming it (see LastPositionFinder interface).
	PropLastPositionFinder
	// Lookahead means hasNext-style peeking is side-effect-free with
	// respect to the following Next call. This package's Iterator has no
	// separate hasNext; a Lookahead iterator additionally implements Peek.
	Lookahead
	// PropReversible means the iterator supports Reverse (see Reversible
	// interface).
	PropReversible
)

// Has reports whether p includes flag.
func (p Property) Has(flag Property) bool { return p&flag != 0 }

// Iterator is the primary contract every sequence exposes: pull-based
// iteration with 1-based position tracking. Next returns
// (nil, nil, false) to signal exhaustion; an error aborts iteration and
// must be surfaced to the matching Next call that produced it, never
// swallowed.
type Iterator interface {
	// Next advances to and returns the next item, or ok=false at the end.
	Next() (item Item, err error, ok bool)
	// Current returns the item returned by the most recent successful
	// Next call, or nil before the first call or after exhaustion.
	Current() Item
	// Position returns the 1-based position of Current, or 0 before the
	// first Next call.
	Position() int
	// Properties reports this iterator's capability bits.
	Properties() Property
	// GetAnother returns a fresh iterator over the same logical sequence,
	// positioned before the first item. Returns an error if the
	// underlying sequence is one-shot.
	GetAnother() (Iterator, error)
}

// LastPositionFinder is implemented by iterators whose Properties().Has(PropLastPositionFinder)
// is true.
type LastPositionFinder interface {
	// LastPosition returns the sequence's total item count without
	// requiring full consumption.
	LastPosition() (int, error)
}

// Reversible is implemented by iterators whose Properties().Has(PropReversible) is true.
type Reversible interface {
	// Reverse returns a fresh iterator over the same items in reverse
	// order.
	Reverse() (Iterator, error)
}

// Peekable is implemented by iterators whose Properties().Has(Lookahead) is true.
type Peekable interface {
	// Peek reports whether a following Next call would succeed, without
	// consuming the item.
	Peek() (bool, error)
}

// ErrNotRestartable is returned by GetAnother on a one-shot lazy iterator,
// whether or not it has begun consuming its source.
var ErrNotRestartable = errors.New(errors.Code("FODC0002"), errors.DynamicRuntime, "sequence: iterator is not restartable")

// Drain consumes it to completion and returns every item seen, or the
// first error encountered. This is the explicit, memoizable grounding
// operation lazy callers use to materialize a sequence.
func Drain(it Iterator) ([]Item, error) {
	var out []Item
	for {
		item, err, ok := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, item)
	}
}
