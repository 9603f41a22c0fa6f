package node

// Axis identifies one of the thirteen XPath navigation axes.
type Axis int

const (
	AxisChild Axis = iota
	AxisDescendant
	AxisDescendantOrSelf
	AxisParent
	AxisAncestor
	AxisAncestorOrSelf
	AxisFollowingSibling
	AxisPrecedingSibling
	AxisFollowing
	AxisPreceding
	AxisSelf
	AxisAttribute
	AxisNamespace
)

// Forward reports whether the axis enumerates nodes in document order:
// ancestor, ancestor-or-self, preceding-sibling and preceding are the
// reverse-document-order axes.
func (a Axis) Forward() bool {
	switch a {
	case AxisAncestor, AxisAncestorOrSelf, AxisPrecedingSibling, AxisPreceding:
		return false
	default:
		return true
	}
}

// Step enumerates the nodes reachable from n along axis, in the axis's
// natural order (forward axes in document order, reverse axes in reverse
// document order).
func Step(n Node, axis Axis) []Node {
	switch axis {
	case AxisSelf:
		return []Node{n}
	case AxisChild:
		return n.Children()
	case AxisAttribute:
		return n.Attributes()
	case AxisNamespace:
		return n.NamespaceNodes()
	case AxisParent:
		if p, ok := n.Parent(); ok {
			return []Node{p}
		}
		return nil
	case AxisDescendant:
		return descendants(n, false)
	case AxisDescendantOrSelf:
		return descendants(n, true)
	case AxisAncestor:
		return ancestors(n, false)
	case AxisAncestorOrSelf:
		return ancestors(n, true)
	case AxisFollowingSibling:
		return siblings(n, true)
	case AxisPrecedingSibling:
		return siblings(n, false)
	case AxisFollowing:
		return followingOrPreceding(n, true)
	case AxisPreceding:
		return followingOrPreceding(n, false)
	default:
		return nil
	}
}

func descendants(n Node, includeSelf bool) []Node {
	var out []Node
	if includeSelf {
		out = append(out, n)
	}
	var walk func(Node)
	walk = func(cur Node) {
		for _, c := range cur.Children() {
			out = append(out, c)
			walk(c)
		}
	}
	walk(n)
	return out
}

func ancestors(n Node, includeSelf bool) []Node {
	var out []Node
	if includeSelf {
		out = append(out, n)
	}
	cur := n
	for {
		p, ok := cur.Parent()
		if !ok {
			break
		}
		out = append(out, p)
		cur = p
	}
	return out
}

func siblings(n Node, following bool) []Node {
	p, ok := n.Parent()
	if !ok {
		return nil
	}
	kids := p.Children()
	pos := indexOf(kids, n)
	if pos < 0 {
		return nil
	}
	var out []Node
	if following {
		out = append(out, kids[pos+1:]...)
	} else {
		rev := kids[:pos]
		for i := len(rev) - 1; i >= 0; i-- {
			out = append(out, rev[i])
		}
	}
	return out
}

// followingOrPreceding implements the following/preceding axes: every node
// in document order after (or before) n, excluding n's own ancestors and
// descendants, per the XPath axis definitions.
func followingOrPreceding(n Node, following bool) []Node {
	all := descendants(n.tree.Root(), true)
	selfAndDesc := make(map[Node]bool)
	for _, d := range descendants(n, true) {
		selfAndDesc[d] = true
	}
	ancSet := make(map[Node]bool)
	for _, a := range ancestors(n, false) {
		ancSet[a] = true
	}
	var out []Node
	if following {
		started := false
		for _, cand := range all {
			if cand.Equal(n) {
				started = true
				continue
			}
			if !started {
				continue
			}
			if ancSet[cand] || selfAndDesc[cand] {
				continue
			}
			out = append(out, cand)
		}
	} else {
		for _, cand := range all {
			if cand.Equal(n) {
				break
			}
			if ancSet[cand] || selfAndDesc[cand] {
				continue
			}
			out = append(out, cand)
		}
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func indexOf(ns []Node, target Node) int {
	for i, n := range ns {
		if n.Equal(target) {
			return i
		}
	}
	return -1
}
