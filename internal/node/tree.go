package node

import (
	"sync/atomic"

	"github.com/oxhq/xpathcore/internal/xdm"
)

// documentCounter hands out the process-unique document numbers that
// order nodes across trees.
var documentCounter int64

func nextDocumentNumber() int64 {
	return atomic.AddInt64(&documentCounter, 1)
}

// record is the internal storage for one node; Node is a lightweight handle
// (tree pointer + index) over it, so copying a Node is cheap and nodes
// remain comparable by identity.
type record struct {
	kind        xdm.Type
	name        Fingerprint
	stringValue string // significant for text, comment, PI, attribute, namespace
	piTarget    string // processing-instruction target

	parent   int // index into tree.records, -1 for the document root
	children []int
	attrs    []int // element only
	nsNodes  []int // element only

	preorder int64 // assigned during construction, defines document order
}

// Tree is one document tree: a document node plus everything beneath it,
// built once via a Builder and then read-only: the operations this
// package supports never mutate a tree in place.
type Tree struct {
	pool         *NamePool
	docNumber    int64
	records      []record
	nextPreorder int64
}

// DocumentNumber returns the tree's process-unique document number.
func (t *Tree) DocumentNumber() int64 { return t.docNumber }

// Root returns the tree's document node.
func (t *Tree) Root() Node {
	return Node{tree: t, idx: 0}
}

// NamePool returns the name pool this tree's names were interned into.
func (t *Tree) NamePool() *NamePool { return t.pool }
