package xml

import (
	"slices"
	"strings"
)

// Facade is the read-only view of a document used by the evaluator. It
// never mutates the nodes it is given.
type Facade interface {
	Parent(Node) Node
	Children(Node) []Node
	Attributes(Node) []Node
	StringValue(Node) string
	Same(Node, Node) bool
	Compare(Node, Node) int
}

// Tree is the Facade over the in-memory nodes of this package.
type Tree struct{}

func DefaultFacade() Facade {
	return Tree{}
}

func (_ Tree) Parent(node Node) Node {
	if node == nil {
		return nil
	}
	return node.Parent()
}

func (_ Tree) Children(node Node) []Node {
	switch n := node.(type) {
	case *Document:
		return slices.Clone(n.Nodes)
	case *Element:
		return slices.Clone(n.Nodes)
	default:
		return nil
	}
}

func (_ Tree) Attributes(node Node) []Node {
	el, ok := node.(*Element)
	if !ok {
		return nil
	}
	list := make([]Node, 0, len(el.Attrs))
	for _, a := range el.Attrs {
		if a.QName.Name == "xmlns" || a.Space == "xmlns" {
			continue
		}
		list = append(list, a)
	}
	return list
}

func (_ Tree) StringValue(node Node) string {
	if node == nil {
		return ""
	}
	return node.Value()
}

func (_ Tree) Same(left, right Node) bool {
	return left != nil && left == right
}

// Compare orders two nodes in document order. Nodes from different trees
// are ordered by their root identity so the result stays stable.
func (t Tree) Compare(left, right Node) int {
	if t.Same(left, right) {
		return 0
	}
	if r1, r2 := rootOf(left), rootOf(right); r1 != r2 {
		return strings.Compare(r1.Identity(), r2.Identity())
	}
	return slices.Compare(left.path(), right.path())
}

func Before(left, right Node) bool {
	return Tree{}.Compare(left, right) < 0
}

func After(left, right Node) bool {
	return Tree{}.Compare(left, right) > 0
}

func rootOf(node Node) Node {
	for {
		p := node.Parent()
		if p == nil {
			return node
		}
		node = p
	}
}
