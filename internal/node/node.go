package node

import (
	"strings"

	"github.com/oxhq/xpathcore/internal/xdm"
)

// Node is a handle onto one record in a Tree. It is a small value type
// (pointer + index) and safe to copy, compare with ==, and use as a map
// key — two Node values are the same node iff both fields match.
type Node struct {
	tree *Tree
	idx  int
}

// IsZero reports whether n is the zero Node (no tree).
func (n Node) IsZero() bool { return n.tree == nil }

func (n Node) rec() *record { return &n.tree.records[n.idx] }

// Kind returns the node's kind as one of xdm's seven node-kind Types.
func (n Node) Kind() xdm.Type { return n.rec().kind }

// Name returns the node's interned name (NoFingerprint for document, text,
// comment and processing-instruction nodes; a PI's target is read with
// PITarget).
func (n Node) Name() Fingerprint { return n.rec().name }

// Tree returns the tree this node belongs to.
func (n Node) Tree() *Tree { return n.tree }

// DocumentNumber returns the process-unique number of the tree this node
// belongs to.
func (n Node) DocumentNumber() int64 { return n.tree.docNumber }

// Preorder returns this node's position in document order within its tree,
// used by the local order comparer.
func (n Node) Preorder() int64 { return n.rec().preorder }

// PITarget returns the processing-instruction target (only meaningful when
// Kind() is xdm.TypeProcessingInstruction).
func (n Node) PITarget() string { return n.rec().piTarget }

// StringValue computes the node's string-value per the XDM rules: for
// text/comment/PI/attribute/namespace it is the stored literal value; for
// document and element it is the concatenation, in document order, of
// every descendant text node's content.
func (n Node) StringValue() string {
	switch n.rec().kind {
	case xdm.TypeAttribute, xdm.TypeNamespace, xdm.TypeComment, xdm.TypeProcessingInstruction, xdm.TypeText:
		return n.rec().stringValue
	default:
		var b strings.Builder
		n.collectText(&b)
		return b.String()
	}
}

func (n Node) collectText(b *strings.Builder) {
	for _, c := range n.rec().children {
		child := Node{tree: n.tree, idx: c}
		switch child.rec().kind {
		case xdm.TypeText:
			b.WriteString(child.rec().stringValue)
		case xdm.TypeElement, xdm.TypeDocument:
			child.collectText(b)
		}
	}
}

// Parent returns the node's parent and true, or the zero Node and false at
// the document root.
func (n Node) Parent() (Node, bool) {
	p := n.rec().parent
	if p < 0 {
		return Node{}, false
	}
	return Node{tree: n.tree, idx: p}, true
}

// Children returns the node's element/text/comment/PI children in document
// order (never attribute or namespace nodes, which have their own axes).
func (n Node) Children() []Node {
	return n.wrap(n.rec().children)
}

// Attributes returns the element's attribute nodes (empty for any other
// kind), in the order they were attached.
func (n Node) Attributes() []Node {
	return n.wrap(n.rec().attrs)
}

// NamespaceNodes returns the element's namespace nodes.
func (n Node) NamespaceNodes() []Node {
	return n.wrap(n.rec().nsNodes)
}

func (n Node) wrap(idxs []int) []Node {
	out := make([]Node, len(idxs))
	for i, idx := range idxs {
		out[i] = Node{tree: n.tree, idx: idx}
	}
	return out
}

// Equal reports whether two Node values denote the same node.
func (n Node) Equal(other Node) bool {
	return n.tree == other.tree && n.idx == other.idx
}
