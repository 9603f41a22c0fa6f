package facade

import (
	"fmt"

	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/node"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// Destination is the push-stream output contract the core exposes: a
// sequence of well-formed XML-construction events a Selector.Run call
// drives, mirroring the receiver-pipeline pattern every
// real XSLT/XQuery processor's serialization and tree-construction paths
// share. A Destination need not build a node.Tree at all (a serializer
// writing bytes is an equally valid Destination); TreeDestination is the
// one concrete implementation this package provides.
type Destination interface {
	StartDocument() error
	EndDocument() error
	StartElement(uri, prefix, local string) error
	EndElement() error
	Attribute(uri, prefix, local, value string) error
	Namespace(prefix, uri string) error
	Text(value string) error
	Comment(value string) error
	ProcessingInstruction(target, value string) error
	// Append copies an existing node (and, if it is an element or
	// document, its subtree) into the stream at the current position,
	// the push-model equivalent of xsl:copy-of.
	Append(n node.Node) error
}

// TreeDestination builds a node.Tree from a push stream via node.Builder,
// the destination Selector.Run uses when a caller wants an in-memory
// result tree rather than a serialized byte stream. It follows
// node.Builder's append-only construction contract: events must already
// be well-formed (matched Start/EndElement pairs, attributes and
// namespaces only immediately after a StartElement).
type TreeDestination struct {
	pool    *node.NamePool
	builder *node.Builder
	open    bool // true between StartElement and its matching EndElement's attribute/namespace window
}

// NewTreeDestination starts a new tree whose names intern into pool.
func NewTreeDestination(pool *node.NamePool) *TreeDestination {
	return &TreeDestination{pool: pool, builder: node.NewBuilder(pool)}
}

func (d *TreeDestination) StartDocument() error { return nil }
func (d *TreeDestination) EndDocument() error   { return nil }

func (d *TreeDestination) StartElement(uri, prefix, local string) error {
	fp := d.pool.Intern(uri, prefix, local)
	d.builder.StartElement(fp)
	return nil
}

func (d *TreeDestination) EndElement() error {
	d.builder.EndElement()
	return nil
}

func (d *TreeDestination) Attribute(uri, prefix, local, value string) error {
	fp := d.pool.Intern(uri, prefix, local)
	d.builder.Attribute(fp, value)
	return nil
}

func (d *TreeDestination) Namespace(prefix, uri string) error {
	fp := d.pool.Intern("", prefix, prefix)
	d.builder.Namespace(fp, uri)
	return nil
}

func (d *TreeDestination) Text(value string) error {
	d.builder.Text(value)
	return nil
}

func (d *TreeDestination) Comment(value string) error {
	d.builder.Comment(value)
	return nil
}

func (d *TreeDestination) ProcessingInstruction(target, value string) error {
	d.builder.ProcessingInstruction(target, value)
	return nil
}

// Append copies n's subtree into the destination (xsl:copy-of semantics):
// an element is deep-copied with its attributes, namespaces and
// children, a document copies its children, and a text, comment or
// processing-instruction node copies as the single corresponding event.
// An attribute or namespace node raises XTDE0030.
func (d *TreeDestination) Append(n node.Node) error {
	return d.appendNode(n)
}

func (d *TreeDestination) appendNode(n node.Node) error {
	switch n.Kind() {
	case xdm.TypeDocument:
		for _, c := range n.Children() {
			if err := d.appendNode(c); err != nil {
				return err
			}
		}
		return nil
	case xdm.TypeElement:
		pool := n.Tree().NamePool()
		fp := n.Name()
		if err := d.StartElement(pool.URI(fp), pool.Prefix(fp), pool.LocalName(fp)); err != nil {
			return err
		}
		for _, a := range n.Attributes() {
			afp := a.Name()
			if err := d.Attribute(pool.URI(afp), pool.Prefix(afp), pool.LocalName(afp), a.StringValue()); err != nil {
				return err
			}
		}
		for _, ns := range n.NamespaceNodes() {
			if err := d.Namespace(pool.Prefix(ns.Name()), ns.StringValue()); err != nil {
				return err
			}
		}
		for _, c := range n.Children() {
			if err := d.appendNode(c); err != nil {
				return err
			}
		}
		return d.EndElement()
	case xdm.TypeText:
		return d.Text(n.StringValue())
	case xdm.TypeComment:
		return d.Comment(n.StringValue())
	case xdm.TypeProcessingInstruction:
		return d.ProcessingInstruction(n.PITarget(), n.StringValue())
	default:
		return errors.New(errors.XTDE0030, errors.DynamicRuntime,
			fmt.Sprintf("facade: cannot append a node of kind %s outside element content", xdm.Name(n.Kind())))
	}
}

// Build finishes construction and returns the assembled tree. The
// destination must not be used afterward.
func (d *TreeDestination) Build() *node.Tree {
	return d.builder.Build()
}
