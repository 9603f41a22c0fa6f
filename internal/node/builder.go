package node

import "github.com/oxhq/xpathcore/internal/xdm"

// Builder constructs one Tree. Nodes are appended in document order
// (depth-first, children before following siblings); the caller is
// responsible for closing elements it opens. Builder is not safe for
// concurrent use; a finished Tree is immutable and safe to share.
type Builder struct {
	tree  *Tree
	stack []int // open element indices, innermost last
}

// NewBuilder starts a new tree whose names are interned into pool.
func NewBuilder(pool *NamePool) *Builder {
	t := &Tree{pool: pool, docNumber: nextDocumentNumber()}
	b := &Builder{tree: t}
	b.push(record{kind: xdm.TypeDocument, parent: -1}, false)
	return b
}

// push appends a new record and, if linkAsChild, registers it in its
// parent's children list (attribute and namespace nodes are reachable only
// via their own index lists, never via the child axis).
func (b *Builder) push(r record, linkAsChild bool) int {
	r.preorder = b.tree.nextPreorder
	b.tree.nextPreorder++
	b.tree.records = append(b.tree.records, r)
	idx := len(b.tree.records) - 1
	if linkAsChild && r.parent >= 0 {
		b.tree.records[r.parent].children = append(b.tree.records[r.parent].children, idx)
	}
	return idx
}

func (b *Builder) currentParent() int {
	if len(b.stack) == 0 {
		return 0 // the document node
	}
	return b.stack[len(b.stack)-1]
}

// StartElement opens an element named fp; its attribute and namespace
// nodes are attached by the Attribute and Namespace calls made while it is
// open. Call EndElement to close it.
func (b *Builder) StartElement(fp Fingerprint) {
	idx := b.push(record{kind: xdm.TypeElement, name: fp, parent: b.currentParent()}, true)
	b.stack = append(b.stack, idx)
}

// Attribute attaches an attribute node to the currently open element.
func (b *Builder) Attribute(fp Fingerprint, value string) {
	parent := b.currentParent()
	idx := b.push(record{kind: xdm.TypeAttribute, name: fp, stringValue: value, parent: parent}, false)
	b.tree.records[parent].attrs = append(b.tree.records[parent].attrs, idx)
}

// Namespace attaches a namespace node (prefix interned via fp, bound URI in
// value) to the currently open element.
func (b *Builder) Namespace(fp Fingerprint, uri string) {
	parent := b.currentParent()
	idx := b.push(record{kind: xdm.TypeNamespace, name: fp, stringValue: uri, parent: parent}, false)
	b.tree.records[parent].nsNodes = append(b.tree.records[parent].nsNodes, idx)
}

// EndElement closes the innermost open element.
func (b *Builder) EndElement() {
	b.stack = b.stack[:len(b.stack)-1]
}

// Text appends a text node under the currently open element (or the
// document, before any element is opened).
func (b *Builder) Text(value string) {
	b.push(record{kind: xdm.TypeText, stringValue: value, parent: b.currentParent()}, true)
}

// Comment appends a comment node.
func (b *Builder) Comment(value string) {
	b.push(record{kind: xdm.TypeComment, stringValue: value, parent: b.currentParent()}, true)
}

// ProcessingInstruction appends a PI node.
func (b *Builder) ProcessingInstruction(target, value string) {
	b.push(record{kind: xdm.TypeProcessingInstruction, piTarget: target, stringValue: value, parent: b.currentParent()}, true)
}

// Build finishes construction and returns the tree. The builder must not be
// reused afterward.
func (b *Builder) Build() *Tree {
	return b.tree
}
