package node

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/xpathcore/internal/xdm"
)

func buildSample(t *testing.T) (*Tree, Fingerprint, Fingerprint) {
	t.Helper()
	pool := NewNamePool()
	root := pool.Intern("", "", "root")
	child := pool.Intern("", "", "child")
	id := pool.Intern("", "", "id")

	b := NewBuilder(pool)
	b.StartElement(root)
	b.Attribute(id, "r1")
	b.StartElement(child)
	b.Attribute(id, "c1")
	b.Text("hello ")
	b.EndElement()
	b.StartElement(child)
	b.Text("world")
	b.EndElement()
	b.EndElement()
	return b.Build(), root, child
}

func TestNamePoolInterningIsStable(t *testing.T) {
	pool := NewNamePool()
	a := pool.Intern("http://ex.com", "ex", "foo")
	b := pool.Intern("http://ex.com", "other", "foo")
	assert.Equal(t, a, b)
	assert.Equal(t, "ex", pool.Prefix(a))
	assert.Equal(t, "foo", pool.LocalName(a))
}

func TestBuilderProducesChildAxis(t *testing.T) {
	tree, root, child := buildSample(t)
	rootNode := tree.Root().Children()[0]
	assert.Equal(t, xdm.TypeElement, rootNode.Kind())
	assert.Equal(t, root, rootNode.Name())

	kids := rootNode.Children()
	require.Len(t, kids, 2)
	assert.Equal(t, child, kids[0].Name())
	assert.Equal(t, child, kids[1].Name())
}

func TestAttributesAreNotChildren(t *testing.T) {
	tree, _, _ := buildSample(t)
	rootNode := tree.Root().Children()[0]
	assert.Len(t, rootNode.Attributes(), 1)
	assert.Equal(t, "r1", rootNode.Attributes()[0].StringValue())
	for _, c := range rootNode.Children() {
		assert.Equal(t, xdm.TypeElement, c.Kind())
	}
}

func TestElementStringValueConcatenatesDescendantText(t *testing.T) {
	tree, _, _ := buildSample(t)
	rootNode := tree.Root().Children()[0]
	assert.Equal(t, "hello world", rootNode.StringValue())
}

func TestParentAndAncestorAxis(t *testing.T) {
	tree, _, _ := buildSample(t)
	rootNode := tree.Root().Children()[0]
	firstChild := rootNode.Children()[0]
	p, ok := firstChild.Parent()
	require.True(t, ok)
	assert.True(t, p.Equal(rootNode))

	anc := Step(firstChild, AxisAncestorOrSelf)
	require.Len(t, anc, 3)
	assert.True(t, anc[0].Equal(firstChild))
	assert.True(t, anc[1].Equal(rootNode))
	assert.Equal(t, xdm.TypeDocument, anc[2].Kind())
}

func TestFollowingSiblingAxis(t *testing.T) {
	tree, _, _ := buildSample(t)
	rootNode := tree.Root().Children()[0]
	first := rootNode.Children()[0]
	second := rootNode.Children()[1]

	fs := Step(first, AxisFollowingSibling)
	require.Len(t, fs, 1)
	assert.True(t, fs[0].Equal(second))

	ps := Step(second, AxisPrecedingSibling)
	require.Len(t, ps, 1)
	assert.True(t, ps[0].Equal(first))
}

func TestDescendantAxisIsDocumentOrder(t *testing.T) {
	tree, _, _ := buildSample(t)
	desc := Step(tree.Root(), AxisDescendant)
	require.Len(t, desc, 5) // root element, 2 child elements, 2 text nodes (attrs excluded)
	for i := 1; i < len(desc); i++ {
		assert.True(t, CompareLocalOrder(desc[i-1], desc[i]) < 0)
	}
}

func TestCompareOrderAcrossDocuments(t *testing.T) {
	poolA := NewNamePool()
	poolB := NewNamePool()
	elA := poolA.Intern("", "", "a")
	elB := poolB.Intern("", "", "b")

	ba := NewBuilder(poolA)
	ba.StartElement(elA)
	ba.EndElement()
	treeA := ba.Build()

	bb := NewBuilder(poolB)
	bb.StartElement(elB)
	bb.EndElement()
	treeB := bb.Build()

	nodeA := treeA.Root().Children()[0]
	nodeB := treeB.Root().Children()[0]
	assert.True(t, CompareOrder(nodeA, nodeB) < 0 || CompareOrder(nodeA, nodeB) > 0)
	assert.Equal(t, -CompareOrder(nodeA, nodeB), CompareOrder(nodeB, nodeA))
}

func TestDocumentOrderIdempotenceOnAlreadySortedInput(t *testing.T) {
	tree, _, _ := buildSample(t)
	desc := Step(tree.Root(), AxisDescendant)
	reSorted := append([]Node(nil), desc...)
	sort.SliceStable(reSorted, func(i, j int) bool {
		return CompareLocalOrder(reSorted[i], reSorted[j]) < 0
	})
	for i := 1; i < len(reSorted); i++ {
		assert.True(t, CompareLocalOrder(reSorted[i-1], reSorted[i]) < 0)
	}
	assert.Equal(t, desc, reSorted)
}
