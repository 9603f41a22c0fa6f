package node

import "github.com/oxhq/xpathcore/internal/xdm"

// CompareOrder implements the total order over nodes: within one tree, nodes compare by preorder position (document
// order); across trees, by document number first. Attribute and namespace
// nodes share their owning element's preorder position but are ordered
// after it and before its children, matching the common XDM convention
// that attribute/namespace nodes immediately follow their element in
// document order, namespace nodes first.
func CompareOrder(a, b Node) int {
	if a.Equal(b) {
		return 0
	}
	if a.tree.docNumber != b.tree.docNumber {
		switch {
		case a.tree.docNumber < b.tree.docNumber:
			return -1
		default:
			return 1
		}
	}
	ak, bk := orderKey(a), orderKey(b)
	switch {
	case ak < bk:
		return -1
	case ak > bk:
		return 1
	default:
		return 0
	}
}

// CompareLocalOrder orders two nodes known to belong to the same tree,
// without paying for the document-number check CompareOrder performs. Used
// by the document-order sorter's LocalOrderComparer when the operand is
// statically known to come from a single document.
func CompareLocalOrder(a, b Node) int {
	if a.Equal(b) {
		return 0
	}
	ak, bk := orderKey(a), orderKey(b)
	switch {
	case ak < bk:
		return -1
	case ak > bk:
		return 1
	default:
		return 0
	}
}

// orderKey maps a node to a sortable key within its tree: an element's own
// preorder, shifted left to leave room for its attribute/namespace nodes to
// sort immediately after it and before its first child.
func orderKey(n Node) float64 {
	r := n.rec()
	switch r.kind {
	case xdm.TypeAttribute, xdm.TypeNamespace:
		if p, ok := n.Parent(); ok {
			return float64(p.rec().preorder) + attributeOrderOffset(n, p)
		}
	}
	return float64(r.preorder)
}

func attributeOrderOffset(n, parent Node) float64 {
	// Namespace nodes are numbered first and attributes after them, so no
	// two nodes attached to one element share an offset.
	idx := indexOf(parent.NamespaceNodes(), n)
	if idx < 0 {
		idx = len(parent.NamespaceNodes()) + indexOf(parent.Attributes(), n)
	}
	if idx < 0 {
		idx = 0
	}
	// The offset is positive, so the node sorts after the element itself
	// (offset 0), and stays below 1, so before its first child
	// (preorder+1), while the element has fewer than 999 attribute and
	// namespace nodes.
	return (float64(idx) + 1) / 1000.0
}
