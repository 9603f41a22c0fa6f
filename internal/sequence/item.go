// Package sequence implements the XDM sequence and iterator model: an
// Item is the sum of an atomic value and a node; sequences are either
// grounded (indexable, fully resident) or lazy (pull-based, possibly
// one-shot), exposed through a common Iterator contract with a property
// bit set.
package sequence

import (
	"github.com/oxhq/xpathcore/internal/node"
	"github.com/oxhq/xpathcore/internal/value"
)

// Item is a single XDM item: either an atomic value or a node. Both
// value.AtomicValue and node.Node expose StringValue(), which is the only
// operation every item supports regardless of kind.
type Item interface {
	StringValue() string
}

// AsAtomic reports whether item is an atomic value and returns it.
func AsAtomic(item Item) (value.AtomicValue, bool) {
	v, ok := item.(value.AtomicValue)
	return v, ok
}

// AsNode reports whether item is a node and returns it.
func AsNode(item Item) (node.Node, bool) {
	n, ok := item.(node.Node)
	return n, ok
}

// IsNode reports whether item is a node.
func IsNode(item Item) bool {
	_, ok := item.(node.Node)
	return ok
}
