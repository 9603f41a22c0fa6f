package value

import "github.com/oxhq/xpathcore/internal/xdm"

// QNameValue is an xs:QName: a namespace URI (possibly empty), a local
// name, and the prefix used at the point of construction (retained only
// for re-serialization; two QNames are equal iff their namespace URI and
// local name match, the prefix plays no part in equality per XDM).
type QNameValue struct {
	NamespaceURI string
	Prefix       string
	Local        string
}

func NewQName(namespaceURI, prefix, local string) QNameValue {
	return QNameValue{NamespaceURI: namespaceURI, Prefix: prefix, Local: local}
}

func (v QNameValue) Type() xdm.Type { return xdm.TypeQName }

func (v QNameValue) StringValue() string {
	if v.Prefix == "" {
		return v.Local
	}
	return v.Prefix + ":" + v.Local
}

// Equal reports QName equality: same namespace URI and local name,
// irrespective of prefix.
func (v QNameValue) Equal(other QNameValue) bool {
	return v.NamespaceURI == other.NamespaceURI && v.Local == other.Local
}
