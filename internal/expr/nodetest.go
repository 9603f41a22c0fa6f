package expr

import (
	"github.com/oxhq/xpathcore/internal/node"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// NodeTest decides whether a candidate node reached by an axis step
// belongs in the step's result (a step is an axis plus a node test). It is intentionally not an Expression: it has no
// context-dependent evaluation of its own, only a pure predicate over a
// single candidate node.
type NodeTest interface {
	Matches(n node.Node) bool
	// Display renders the test's textual form, e.g. "*", "node()", "x:y".
	Display() string
}

// KindTest matches nodes of a single xdm.Type (element(), text(),
// comment(), processing-instruction(), document-node(), node()). node()
// itself is represented by KindTest{Kind: xdm.TypeNode}, which Matches
// treats as "any node kind".
type KindTest struct {
	Kind xdm.Type
}

func (t KindTest) Matches(n node.Node) bool {
	if t.Kind == xdm.TypeNode {
		return true
	}
	return n.Kind() == t.Kind
}

func (t KindTest) Display() string {
	switch t.Kind {
	case xdm.TypeNode:
		return "node()"
	case xdm.TypeElement:
		return "element()"
	case xdm.TypeAttribute:
		return "attribute()"
	case xdm.TypeText:
		return "text()"
	case xdm.TypeComment:
		return "comment()"
	case xdm.TypeProcessingInstruction:
		return "processing-instruction()"
	case xdm.TypeDocument:
		return "document-node()"
	default:
		return "node()"
	}
}

// NameTest matches element/attribute nodes by qualified name, with
// wildcard forms for the local name, the namespace URI, or both (*, *:x,
// x:*). It additionally restricts matches to a single principal node
// kind (element or attribute, per the axis the step traverses), since a
// bare NameTest has no meaning against a comment or text node.
type NameTest struct {
	PrincipalKind xdm.Type // xdm.TypeElement or xdm.TypeAttribute
	URI           string   // "" matches any URI when URIWildcard is set
	Local         string   // "" matches any local name when LocalWildcard is set
	URIWildcard   bool
	LocalWildcard bool
}

func (t NameTest) Matches(n node.Node) bool {
	if n.Kind() != t.PrincipalKind {
		return false
	}
	pool := n.Tree().NamePool()
	fp := n.Name()
	if !t.LocalWildcard && pool.LocalName(fp) != t.Local {
		return false
	}
	if !t.URIWildcard && pool.URI(fp) != t.URI {
		return false
	}
	return true
}

func (t NameTest) Display() string {
	switch {
	case t.URIWildcard && t.LocalWildcard:
		return "*"
	case t.LocalWildcard:
		return "{" + t.URI + "}*"
	case t.URIWildcard:
		return "*:" + t.Local
	default:
		return "{" + t.URI + "}" + t.Local
	}
}
