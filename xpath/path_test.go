package xpath

import (
	"errors"
	"testing"

	"github.com/midbel/xquery/xml"
)

const exampleNS = "http://example.org/ns"

type tree struct {
	doc     *xml.Document
	root    *xml.Element
	item1   *xml.Element
	item2   *xml.Element
	group   *xml.Element
	sub1    *xml.Element
	sub2    *xml.Element
	comment *xml.Comment
	pi      *xml.Instruction
	id      *xml.Attribute
	lang    *xml.Attribute
}

// sampleTree builds
//
//	<root>
//	  <item id="first">element-1</item>
//	  <ns:item>element-2</ns:item>
//	  <group>
//	    <item lang="en">sub-element-1</item>
//	    <!--ignored-->
//	    <?target data?>
//	    <item>sub-element-2</item>
//	  </group>
//	</root>
func sampleTree() tree {
	var t tree
	t.root = xml.NewElement(xml.LocalName("root"))
	t.item1 = xml.NewElement(xml.LocalName("item"))
	t.item2 = xml.NewElement(xml.ExpandedName("item", "ns", exampleNS))
	t.group = xml.NewElement(xml.LocalName("group"))
	t.sub1 = xml.NewElement(xml.LocalName("item"))
	t.sub2 = xml.NewElement(xml.LocalName("item"))
	t.comment = xml.NewComment("ignored")
	t.pi = xml.NewInstruction("target", "data")

	t.id = t.item1.SetAttribute(xml.LocalName("id"), "first")
	t.item1.Append(xml.NewText("element-1"))
	t.item2.Append(xml.NewText("element-2"))
	t.lang = t.sub1.SetAttribute(xml.LocalName("lang"), "en")
	t.sub1.Append(xml.NewText("sub-element-1"))
	t.sub2.Append(xml.NewText("sub-element-2"))

	t.group.Append(t.sub1)
	t.group.Append(t.comment)
	t.group.Append(t.pi)
	t.group.Append(t.sub2)

	t.root.Append(t.item1)
	t.root.Append(t.item2)
	t.root.Append(t.group)
	t.doc = xml.NewDocument(t.root)
	return t
}

func anyName(local string) xml.QName {
	return xml.ExpandedName(local, "*", "")
}

func childPath(names ...string) Expr {
	var expr Expr = NewRoot()
	for _, n := range names {
		expr = NewPath(expr, NewStep(AxisChild, NewNameTest(xml.LocalName(n))))
	}
	return expr
}

func evalNodes(t *testing.T, expr Expr, ctx Context) []xml.Node {
	t.Helper()
	seq, err := expr.Evaluate(ctx, DefaultParameters())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	items, err := seq.Items()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	var list []xml.Node
	for _, i := range items {
		n, ok := toNode(i)
		if !ok {
			t.Fatalf("%s is not a node", i.Type())
		}
		list = append(list, n)
	}
	return list
}

func TestPath(t *testing.T) {
	var (
		doc   = sampleTree()
		items = NewNameTest(xml.LocalName("item"))
	)
	tests := []struct {
		Name string
		Expr Expr
		From xml.Node
		Want []xml.Node
	}{
		{
			Name: "children",
			Expr: childPath("root", "item"),
			From: doc.item1,
			Want: []xml.Node{doc.item1},
		},
		{
			Name: "any namespace",
			Expr: NewPath(childPath("root"), NewStep(AxisChild, NewNameTest(anyName("item")))),
			From: doc.group,
			Want: []xml.Node{doc.item1, doc.item2},
		},
		{
			Name: "namespace",
			Expr: NewPath(childPath("root"), NewStep(AxisChild, NewNameTest(xml.ExpandedName("item", "x", exampleNS)))),
			From: doc.root,
			Want: []xml.Node{doc.item2},
		},
		{
			Name: "descendants",
			Expr: NewPath(NewRoot(), NewStep(AxisDescendant, items)),
			From: doc.sub2,
			Want: []xml.Node{doc.item1, doc.sub1, doc.sub2},
		},
		{
			Name: "attribute",
			Expr: NewPath(NewStep(AxisDescendant, NewKindTest(TypeElement)), NewStep(AxisAttribute, NewNameTest(anyName("*")))),
			From: doc.root,
			Want: []xml.Node{doc.id, doc.lang},
		},
		{
			Name: "ancestors in document order",
			Expr: NewStep(AxisAncestor, NewKindTest(TypeElement)),
			From: doc.sub1,
			Want: []xml.Node{doc.group, doc.root},
		},
		{
			Name: "ancestors through a path",
			Expr: NewPath(NewContextItem(), NewStep(AxisAncestor, NewKindTest(TypeElement))),
			From: doc.sub1,
			Want: []xml.Node{doc.root, doc.group},
		},
		{
			Name: "parent",
			Expr: NewStep(AxisParent, NewKindTest(TypeNode)),
			From: doc.lang,
			Want: []xml.Node{doc.sub1},
		},
		{
			Name: "following siblings",
			Expr: NewStep(AxisFollowingSibling, NewKindTest(TypeNode)),
			From: doc.sub1,
			Want: []xml.Node{doc.comment, doc.pi, doc.sub2},
		},
		{
			Name: "preceding siblings",
			Expr: NewStep(AxisPrecedingSibling, NewKindTest(TypeElement)),
			From: doc.group,
			Want: []xml.Node{doc.item2, doc.item1},
		},
		{
			Name: "comments",
			Expr: NewPath(NewRoot(), NewStep(AxisDescendantOrSelf, NewKindTest(TypeComment))),
			From: doc.root,
			Want: []xml.Node{doc.comment},
		},
		{
			Name: "instruction",
			Expr: NewStep(AxisChild, NewPITargetTest("target")),
			From: doc.group,
			Want: []xml.Node{doc.pi},
		},
		{
			Name: "no duplicates",
			Expr: NewPath(NewStep(AxisDescendant, items), NewStep(AxisParent, NewKindTest(TypeElement))),
			From: doc.root,
			Want: []xml.Node{doc.root, doc.group},
		},
	}
	for _, c := range tests {
		got := evalNodes(t, c.Expr, NewContext(NewNode(c.From)))
		if len(got) != len(c.Want) {
			t.Errorf("%s: want %d nodes, got %d", c.Name, len(c.Want), len(got))
			continue
		}
		for i := range got {
			if got[i] != c.Want[i] {
				t.Errorf("%s: node %d: want %s, got %s", c.Name, i, c.Want[i].Identity(), got[i].Identity())
			}
		}
	}
}

func TestPathErrors(t *testing.T) {
	doc := sampleTree()
	tests := []struct {
		Name string
		Expr Expr
		Item Item
		Err  error
	}{
		{
			Name: "absent context",
			Expr: NewStep(AxisChild, NewKindTest(TypeNode)),
			Err:  ErrContextAbsent,
		},
		{
			Name: "atomic context",
			Expr: NewStep(AxisChild, NewKindTest(TypeNode)),
			Item: NewInteger(1),
			Err:  Error{Code: CodeStepNotNode},
		},
		{
			Name: "atomic left operand",
			Expr: NewPath(NewLiteral(NewInteger(1)), NewContextItem()),
			Item: NewNode(doc.root),
			Err:  Error{Code: CodeNotNode},
		},
		{
			Name: "mixed result",
			Expr: NewPath(
				NewStep(AxisChild, NewKindTest(TypeElement)),
				NewIf(NewNodeCompare(NodeIs, NewContextItem(), NewLiteral(NewNode(doc.item1))), NewContextItem(), NewLiteral(NewInteger(1))),
			),
			Item: NewNode(doc.root),
			Err:  Error{Code: CodeMixedPath},
		},
	}
	for _, c := range tests {
		_, err := c.Expr.Evaluate(NewContext(c.Item), DefaultParameters())
		if !errors.Is(err, c.Err) {
			t.Errorf("%s: want %v, got %v", c.Name, c.Err, err)
		}
	}
}

func TestPathAtomicResult(t *testing.T) {
	doc := sampleTree()
	expr := NewPath(
		NewStep(AxisChild, NewNameTest(anyName("item"))),
		NewCall(xml.ExpandedName("string", "fn", funcNS)),
	)
	seq, err := expr.Evaluate(NewContext(NewNode(doc.root)), DefaultParameters())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	items, err := seq.Items()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := []string{"element-1", "element-2"}
	if len(items) != len(want) {
		t.Fatalf("want %d items, got %d", len(want), len(items))
	}
	for i := range want {
		if got := items[i].(Atomic).String(); got != want[i] {
			t.Errorf("item %d: want %s, got %s", i, want[i], got)
		}
	}
}

func TestStepSpecificity(t *testing.T) {
	var (
		attr  = NewStep(AxisAttribute, NewNameTest(xml.LocalName("id")))
		child = NewStep(AxisChild, NewNameTest(xml.LocalName("id")))
		kind  = NewStep(AxisChild, NewKindTest(TypeNode))
	)
	if attr.Specificity().Compare(child.Specificity()) <= 0 {
		t.Errorf("attribute step should be more specific than child step")
	}
	if child.Specificity().Compare(kind.Specificity()) <= 0 {
		t.Errorf("name test should be more specific than node()")
	}
	if NewStep(AxisAncestor, NewKindTest(TypeNode)).Ordering() != Unsorted {
		t.Errorf("reverse axis should not be sorted")
	}
}
