package main

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/oxhq/xpathcore/internal/node"
)

// loadXML reads a well-formed XML document from r and builds a node.Tree
// out of it via node.Builder, driven by encoding/xml's token stream.
func loadXML(r io.Reader, pool *node.NamePool) (*node.Tree, error) {
	dec := xml.NewDecoder(r)
	b := node.NewBuilder(pool)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xpathcore: parsing XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			fp := pool.Intern(t.Name.Space, "", t.Name.Local)
			b.StartElement(fp)
			for _, a := range t.Attr {
				afp := pool.Intern(a.Name.Space, "", a.Name.Local)
				b.Attribute(afp, a.Value)
			}
		case xml.EndElement:
			b.EndElement()
		case xml.CharData:
			if s := string(t); s != "" {
				b.Text(s)
			}
		case xml.Comment:
			b.Comment(string(t))
		case xml.ProcInst:
			b.ProcessingInstruction(t.Target, string(t.Inst))
		}
	}
	return b.Build(), nil
}
