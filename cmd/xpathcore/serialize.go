package main

import (
	"encoding/xml"
	"io"

	"github.com/oxhq/xpathcore/internal/node"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// serializeTree writes t's root (a document node) to w as XML, the same
// standard-library encoding/xml.Encoder this module uses on the read side
// in xmlsource.go.
func serializeTree(w io.Writer, t *node.Tree) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := writeNode(enc, t.Root()); err != nil {
		return err
	}
	return enc.Flush()
}

func writeNode(enc *xml.Encoder, n node.Node) error {
	switch n.Kind() {
	case xdm.TypeDocument:
		for _, c := range n.Children() {
			if err := writeNode(enc, c); err != nil {
				return err
			}
		}
		return nil
	case xdm.TypeElement:
		pool := n.Tree().NamePool()
		fp := n.Name()
		start := xml.StartElement{Name: xml.Name{Space: pool.URI(fp), Local: pool.LocalName(fp)}}
		for _, a := range n.Attributes() {
			afp := a.Name()
			start.Attr = append(start.Attr, xml.Attr{
				Name:  xml.Name{Space: pool.URI(afp), Local: pool.LocalName(afp)},
				Value: a.StringValue(),
			})
		}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for _, c := range n.Children() {
			if err := writeNode(enc, c); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	case xdm.TypeText:
		return enc.EncodeToken(xml.CharData(n.StringValue()))
	case xdm.TypeComment:
		return enc.EncodeToken(xml.Comment(n.StringValue()))
	case xdm.TypeProcessingInstruction:
		return enc.EncodeToken(xml.ProcInst{Target: n.PITarget(), Inst: []byte(n.StringValue())})
	default:
		return nil
	}
}
