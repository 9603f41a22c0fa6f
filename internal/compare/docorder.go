package compare

import (
	"errors"

	"github.com/oxhq/xpathcore/internal/collections"
	"github.com/oxhq/xpathcore/internal/node"
	"github.com/oxhq/xpathcore/internal/sequence"
)

// ErrNotANode is returned by DocumentOrder when an item in the input
// sequence is an atomic value rather than a node.
var ErrNotANode = errors.New("compare: document-order sorter requires a sequence of nodes")

// DocumentOrder wraps an item sequence and returns its nodes in document
// order with duplicates removed. When singleDocument is
// true the operand is known to come from a single document and the
// cheaper CompareLocalOrder is used; otherwise CompareOrder also
// compares document numbers first.
//
// If alreadyOrdered is true (the operand carries the ordered-nodeset
// special property), the input is returned unchanged, keeping the
// wrapper idempotent.
func DocumentOrder(items []sequence.Item, singleDocument, alreadyOrdered bool) ([]sequence.Item, error) {
	if alreadyOrdered {
		return items, nil
	}
	nodes := make([]node.Node, len(items))
	for i, item := range items {
		n, ok := sequence.AsNode(item)
		if !ok {
			return nil, ErrNotANode
		}
		nodes[i] = n
	}
	cmp := node.CompareOrder
	if singleDocument {
		cmp = node.CompareLocalOrder
	}
	// Document order is total up to node identity, and the duplicates that
	// tie are removed immediately below, so the unstable QuickSort suffices.
	collections.QuickSort(len(nodes),
		func(i, j int) bool { return cmp(nodes[i], nodes[j]) < 0 },
		func(i, j int) { nodes[i], nodes[j] = nodes[j], nodes[i] })
	out := make([]sequence.Item, 0, len(nodes))
	for i, n := range nodes {
		if i > 0 && n.Equal(nodes[i-1]) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}
