package xpath

import (
	"slices"

	"github.com/midbel/xquery/xml"
)

type Axis int8

const (
	AxisSelf Axis = iota
	AxisChild
	AxisAttribute
	AxisParent
	AxisAncestor
	AxisAncestorOrSelf
	AxisDescendant
	AxisDescendantOrSelf
	AxisFollowingSibling
	AxisPrecedingSibling
)

func (a Axis) String() string {
	switch a {
	case AxisSelf:
		return "self"
	case AxisChild:
		return "child"
	case AxisAttribute:
		return "attribute"
	case AxisParent:
		return "parent"
	case AxisAncestor:
		return "ancestor"
	case AxisAncestorOrSelf:
		return "ancestor-or-self"
	case AxisDescendant:
		return "descendant"
	case AxisDescendantOrSelf:
		return "descendant-or-self"
	case AxisFollowingSibling:
		return "following-sibling"
	case AxisPrecedingSibling:
		return "preceding-sibling"
	default:
		return "axis"
	}
}

func (a Axis) reverse() bool {
	return a == AxisParent || a == AxisAncestor || a == AxisAncestorOrSelf || a == AxisPrecedingSibling
}

type step struct {
	info
	axis Axis
	test Expr
}

// NewStep builds an axis step. The test is evaluated with each candidate
// node as context item and keeps the node when its result is true. Reverse
// axes produce their nodes nearest first.
func NewStep(axis Axis, test Expr) Expr {
	base := Specificity{}
	if axis == AxisAttribute {
		base.Attribute = 1
	}
	order := Sorted
	if axis.reverse() {
		order = Unsorted
	}
	in := combine(base, order, test)
	in.static = false
	return step{
		info: in,
		axis: axis,
		test: test,
	}
}

func (s step) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	node, ok := ctx.Node()
	if !ok {
		if ctx.Item == nil {
			return Sequence{}, newError(CodeContextAbsent, "context item is absent")
		}
		return Sequence{}, newError(CodeStepNotNode, "context item of an axis step is not a node")
	}
	var (
		facade     = ctx.facade()
		candidates = s.candidates(node, facade)
	)
	return Generate(func() Iterator {
		var pos int
		return iteratorFunc(func() (Item, bool, error) {
			for pos < len(candidates) {
				curr := candidates[pos]
				pos++
				ok, err := s.match(ctx.Derive(NewNode(curr), pos, len(candidates)), params)
				if err != nil {
					return nil, false, err
				}
				if ok {
					return NewNode(curr), true, nil
				}
			}
			return nil, false, nil
		})
	}), nil
}

func (s step) match(ctx Context, params *Parameters) (bool, error) {
	if t, ok := s.test.(nodeTest); ok {
		node, _ := ctx.Node()
		return t.Matches(node), nil
	}
	return evaluateBoolean(s.test, ctx, params)
}

func (s step) candidates(node xml.Node, facade xml.Facade) []xml.Node {
	var list []xml.Node
	switch s.axis {
	case AxisSelf:
		list = append(list, node)
	case AxisChild:
		list = facade.Children(node)
	case AxisAttribute:
		if node.Type() == xml.TypeElement {
			list = facade.Attributes(node)
		}
	case AxisParent:
		if p := facade.Parent(node); p != nil {
			list = append(list, p)
		}
	case AxisAncestor, AxisAncestorOrSelf:
		if s.axis == AxisAncestorOrSelf {
			list = append(list, node)
		}
		for p := facade.Parent(node); p != nil; p = facade.Parent(p) {
			list = append(list, p)
		}
	case AxisDescendant, AxisDescendantOrSelf:
		if s.axis == AxisDescendantOrSelf {
			list = append(list, node)
		}
		list = descendants(list, node, facade)
	case AxisFollowingSibling, AxisPrecedingSibling:
		if node.Type() == xml.TypeAttribute {
			break
		}
		parent := facade.Parent(node)
		if parent == nil {
			break
		}
		siblings := facade.Children(parent)
		ix := slices.IndexFunc(siblings, func(n xml.Node) bool {
			return facade.Same(n, node)
		})
		if ix < 0 {
			break
		}
		if s.axis == AxisFollowingSibling {
			list = siblings[ix+1:]
		} else {
			list = slices.Clone(siblings[:ix])
			slices.Reverse(list)
		}
	}
	return list
}

func descendants(list []xml.Node, node xml.Node, facade xml.Facade) []xml.Node {
	for _, c := range facade.Children(node) {
		list = append(list, c)
		list = descendants(list, c, facade)
	}
	return list
}

type path struct {
	info
	left  Expr
	right Expr
}

// NewPath builds left/right. Node results are returned in document order
// without duplicates, atomic results in the order they are produced.
func NewPath(left, right Expr) Expr {
	in := combine(Specificity{}, Sorted, left, right)
	in.static = false
	return path{
		info:  in,
		left:  left,
		right: right,
	}
}

func (p path) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	seq, err := p.left.Evaluate(ctx, params)
	if err != nil {
		return Sequence{}, err
	}
	var list []Item
	for sub, err := range ctx.Each(seq) {
		if err != nil {
			return Sequence{}, err
		}
		if !isNode(sub.Item) {
			return Sequence{}, newError(CodeNotNode, "the left operand of a path step must be nodes, got %s", sub.Item.Type())
		}
		res, err := p.right.Evaluate(sub, params)
		if err != nil {
			return Sequence{}, err
		}
		items, err := res.Items()
		if err != nil {
			return Sequence{}, err
		}
		list = append(list, items...)
	}
	return sortNodes(list, ctx.facade())
}

// sortNodes puts nodes in document order and drops duplicates. A mix of
// nodes and atomic values is an error.
func sortNodes(list []Item, facade xml.Facade) (Sequence, error) {
	var nodes int
	for _, item := range list {
		if isNode(item) {
			nodes++
		}
	}
	if nodes == 0 {
		return FromSlice(list), nil
	}
	if nodes != len(list) {
		return Sequence{}, newError(CodeMixedPath, "path result mixes nodes and atomic values")
	}
	slices.SortStableFunc(list, func(a, b Item) int {
		x, _ := toNode(a)
		y, _ := toNode(b)
		return facade.Compare(x, y)
	})
	list = slices.CompactFunc(list, func(a, b Item) bool {
		x, _ := toNode(a)
		y, _ := toNode(b)
		return facade.Same(x, y)
	})
	return FromSlice(list), nil
}

type root struct {
	info
}

// NewRoot builds the leading / of a path: the root of the tree holding the
// context node.
func NewRoot() Expr {
	return root{
		info: info{
			order: Sorted,
		},
	}
}

func (_ root) Evaluate(ctx Context, _ *Parameters) (Sequence, error) {
	node, ok := ctx.Node()
	if !ok {
		return Sequence{}, newError(CodeContextAbsent, "context item is not a node")
	}
	facade := ctx.facade()
	for p := facade.Parent(node); p != nil; p = facade.Parent(p) {
		node = p
	}
	return Singleton(NewNode(node)), nil
}

// nodeTest is implemented by the node tests that can be checked without a
// context.
type nodeTest interface {
	Matches(xml.Node) bool
}

type nameTest struct {
	info
	name xml.QName
}

// NewNameTest builds a test on the expanded name of elements and
// attributes. A Space of "*" matches any namespace, a Name of "*" any local
// name.
func NewNameTest(name xml.QName) Expr {
	spec := Specificity{Name: 1}
	if name.Name == "*" && name.Space == "*" {
		spec = Specificity{Universal: 1}
	}
	return nameTest{
		info: info{
			spec:  spec,
			order: Sorted,
		},
		name: name,
	}
}

func (n nameTest) Matches(node xml.Node) bool {
	if node == nil {
		return false
	}
	if t := node.Type(); t != xml.TypeElement && t != xml.TypeAttribute {
		return false
	}
	qn := node.Name()
	if n.name.Name != "*" && n.name.Name != qn.Name {
		return false
	}
	return n.name.Space == "*" || n.name.Uri == qn.Uri
}

func (n nameTest) Evaluate(ctx Context, _ *Parameters) (Sequence, error) {
	node, _ := ctx.Node()
	return Singleton(NewBoolean(n.Matches(node))), nil
}

type kindTest struct {
	info
	kind Type
}

// NewKindTest builds node(), element(), attribute(), text(), comment(),
// document-node() or processing-instruction().
func NewKindTest(kind Type) Expr {
	spec := Specificity{Kind: 1}
	if kind == TypeNode {
		spec = Specificity{Universal: 1}
	}
	return kindTest{
		info: info{
			spec:  spec,
			order: Sorted,
		},
		kind: kind,
	}
}

func (k kindTest) Matches(node xml.Node) bool {
	if node == nil {
		return false
	}
	return IsSubtypeOf(NewNode(node).Type(), k.kind)
}

func (k kindTest) Evaluate(ctx Context, _ *Parameters) (Sequence, error) {
	node, _ := ctx.Node()
	return Singleton(NewBoolean(k.Matches(node))), nil
}

type piTest struct {
	info
	target string
}

func NewPITargetTest(target string) Expr {
	return piTest{
		info: info{
			spec:  Specificity{Name: 1},
			order: Sorted,
		},
		target: target,
	}
}

func (p piTest) Matches(node xml.Node) bool {
	pi, ok := node.(*xml.Instruction)
	return ok && pi.Target == p.target
}

func (p piTest) Evaluate(ctx Context, _ *Parameters) (Sequence, error) {
	node, _ := ctx.Node()
	return Singleton(NewBoolean(p.Matches(node))), nil
}
