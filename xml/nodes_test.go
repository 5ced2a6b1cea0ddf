package xml

import (
	"testing"
)

func sampleDocument() (*Document, map[string]Node) {
	var (
		root  = NewElement(LocalName("root"))
		item1 = NewElement(LocalName("item"))
		item2 = NewElement(QualifiedName("item", "ns"))
		group = NewElement(LocalName("group"))
		pi    = NewInstruction("target", "data")
	)
	item2.QName.Uri = "http://example.org/ns"

	id := item1.SetAttribute(LocalName("id"), "first")
	item1.Append(NewText("element-1"))
	item2.Append(NewText("element-2"))
	group.Append(NewText("sub-"))
	group.Append(pi)
	group.Append(NewComment("ignored"))
	group.Append(NewText("text"))

	root.Append(item1)
	root.Append(item2)
	root.Append(group)
	doc := NewDocument(root)

	nodes := map[string]Node{
		"root":  root,
		"item1": item1,
		"item2": item2,
		"group": group,
		"pi":    pi,
		"id":    id,
	}
	return doc, nodes
}

func TestStringValue(t *testing.T) {
	doc, nodes := sampleDocument()
	tests := []struct {
		Node Node
		Want string
	}{
		{Node: doc, Want: "element-1element-2sub-text"},
		{Node: nodes["item1"], Want: "element-1"},
		{Node: nodes["group"], Want: "sub-text"},
		{Node: nodes["id"], Want: "first"},
		{Node: nodes["pi"], Want: "data"},
	}
	for _, c := range tests {
		got := DefaultFacade().StringValue(c.Node)
		if got != c.Want {
			t.Errorf("%s: string value mismatched! want %q, got %q", c.Node.Identity(), c.Want, got)
		}
	}
}

func TestDocumentOrder(t *testing.T) {
	doc, nodes := sampleDocument()
	tests := []struct {
		Left  Node
		Right Node
		Want  int
	}{
		{Left: doc, Right: nodes["root"], Want: -1},
		{Left: nodes["root"], Right: nodes["item1"], Want: -1},
		{Left: nodes["item1"], Right: nodes["id"], Want: -1},
		{Left: nodes["id"], Right: nodes["item2"], Want: -1},
		{Left: nodes["group"], Right: nodes["item2"], Want: 1},
		{Left: nodes["pi"], Right: nodes["pi"], Want: 0},
	}
	facade := DefaultFacade()
	for _, c := range tests {
		got := facade.Compare(c.Left, c.Right)
		if got != c.Want {
			t.Errorf("%s <> %s: order mismatched! want %d, got %d", c.Left.Identity(), c.Right.Identity(), c.Want, got)
		}
	}
	if !Before(nodes["item1"], nodes["group"]) || !After(nodes["group"], nodes["id"]) {
		t.Errorf("before/after helpers disagree with Compare")
	}
}

func TestNavigation(t *testing.T) {
	_, nodes := sampleDocument()
	facade := DefaultFacade()

	children := facade.Children(nodes["root"])
	if len(children) != 3 {
		t.Fatalf("children count mismatched! want 3, got %d", len(children))
	}
	if !facade.Same(facade.Parent(children[1]), nodes["root"]) {
		t.Errorf("parent of child is not the root element")
	}
	attrs := facade.Attributes(nodes["item1"])
	if len(attrs) != 1 || attrs[0].LocalName() != "id" {
		t.Errorf("attributes mismatched: %v", attrs)
	}
	if len(facade.Attributes(nodes["pi"])) != 0 {
		t.Errorf("processing instruction should not have attributes")
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		Input string
		Space string
		Local string
		Fail  bool
	}{
		{Input: "elem", Local: "elem"},
		{Input: "ns:elem", Space: "ns", Local: "elem"},
		{Input: ":elem", Fail: true},
		{Input: "ns:", Fail: true},
	}
	for _, c := range tests {
		qn, err := ParseName(c.Input)
		if c.Fail {
			if err == nil {
				t.Errorf("%s: expected error", c.Input)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Input, err)
			continue
		}
		if qn.Space != c.Space || qn.Name != c.Local {
			t.Errorf("%s: name mismatched! got %s/%s", c.Input, qn.Space, qn.Name)
		}
	}
}
