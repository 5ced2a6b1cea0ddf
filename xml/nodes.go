package xml

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var ErrElement = errors.New("element expected")

type NodeType int8

const (
	TypeDocument NodeType = 1 << iota
	TypeElement
	TypeComment
	TypeAttribute
	TypeInstruction
	TypeText
)

const TypeNode = TypeDocument | TypeElement | TypeComment | TypeAttribute | TypeInstruction | TypeText

func (n NodeType) String() string {
	switch n {
	default:
		return "<>"
	case TypeDocument:
		return "document"
	case TypeElement:
		return "element"
	case TypeComment:
		return "comment"
	case TypeAttribute:
		return "attribute"
	case TypeInstruction:
		return "pi"
	case TypeText:
		return "text"
	case TypeNode:
		return "node"
	}
}

type Node interface {
	Type() NodeType
	Name() QName
	LocalName() string
	QualifiedName() string
	Position() int
	Parent() Node
	Value() string
	Identity() string

	setParent(Node)
	setPosition(int)
	path() []int
}

type QName struct {
	Uri   string
	Space string
	Name  string
}

// ParseName splits a lexical name on its first colon. The namespace uri is
// left empty.
func ParseName(name string) (QName, error) {
	var (
		qn QName
		ok bool
	)
	qn.Space, qn.Name, ok = strings.Cut(name, ":")
	if !ok {
		qn.Name, qn.Space = qn.Space, ""
	}
	if ok && (qn.Space == "" || qn.Name == "") {
		return qn, fmt.Errorf("%s: invalid qualified name", name)
	}
	return qn, nil
}

func ExpandedName(name, space, uri string) QName {
	return QName{
		Name:  name,
		Space: space,
		Uri:   uri,
	}
}

func LocalName(name string) QName {
	return ExpandedName(name, "", "")
}

func QualifiedName(name, space string) QName {
	return ExpandedName(name, space, "")
}

func (q QName) Zero() bool {
	return q.Space == "" && q.Name == ""
}

// Equal compares expanded names: the prefix does not take part.
func (q QName) Equal(other QName) bool {
	return q.Uri == other.Uri && q.Name == other.Name
}

func (q QName) LocalName() string {
	return q.Name
}

func (q QName) ExpandedName() string {
	if q.Uri == "" {
		return q.LocalName()
	}
	return fmt.Sprintf("{%s}%s", q.Uri, q.Name)
}

func (q QName) QualifiedName() string {
	if q.Space == "" {
		return q.LocalName()
	}
	return fmt.Sprintf("%s:%s", q.Space, q.Name)
}

func (q QName) String() string {
	return q.QualifiedName()
}

type Document struct {
	Nodes []Node
}

func NewDocument(root Node) *Document {
	var doc Document
	if root != nil {
		doc.Append(root)
	}
	return &doc
}

func (d *Document) Root() Node {
	ix := slices.IndexFunc(d.Nodes, func(n Node) bool {
		return n.Type() == TypeElement
	})
	if ix < 0 {
		return nil
	}
	return d.Nodes[ix]
}

func (d *Document) Append(node Node) {
	node.setParent(d)
	node.setPosition(len(d.Nodes))
	d.Nodes = append(d.Nodes, node)
}

func (_ *Document) Type() NodeType {
	return TypeDocument
}

func (_ *Document) Name() QName {
	return QName{}
}

func (_ *Document) LocalName() string {
	return ""
}

func (_ *Document) QualifiedName() string {
	return ""
}

func (_ *Document) Position() int {
	return 0
}

func (_ *Document) Parent() Node {
	return nil
}

func (d *Document) Value() string {
	return stringValue(d.Nodes)
}

func (_ *Document) Identity() string {
	return "document"
}

func (_ *Document) path() []int {
	return nil
}

func (_ *Document) setParent(_ Node) {}

func (_ *Document) setPosition(_ int) {}

type Attribute struct {
	QName
	Datum string

	parent   Node
	position int
}

func NewAttribute(name QName, value string) *Attribute {
	return &Attribute{
		QName: name,
		Datum: value,
	}
}

func (_ *Attribute) Type() NodeType {
	return TypeAttribute
}

func (a *Attribute) Name() QName {
	return a.QName
}

func (a *Attribute) Position() int {
	return a.position
}

func (a *Attribute) Parent() Node {
	return a.parent
}

func (a *Attribute) Value() string {
	return a.Datum
}

func (a *Attribute) Identity() string {
	return fmt.Sprintf("attr(%s)[%s]", a.QualifiedName(), joinPath(a.path()))
}

// attributes sort after their element and before its children.
func (a *Attribute) path() []int {
	var steps []int
	if a.parent != nil {
		steps = a.parent.path()
	}
	return append(slices.Clone(steps), -1, a.position)
}

func (a *Attribute) setParent(node Node) {
	a.parent = node
}

func (a *Attribute) setPosition(pos int) {
	a.position = pos
}

type Element struct {
	QName
	Attrs []*Attribute
	Nodes []Node

	parent   Node
	position int
}

func NewElement(name QName) *Element {
	return &Element{
		QName: name,
	}
}

func (e *Element) Append(node Node) {
	node.setParent(e)
	node.setPosition(len(e.Nodes))
	e.Nodes = append(e.Nodes, node)
}

// SetAttribute replaces the value of an attribute with the same expanded
// name or appends a new one.
func (e *Element) SetAttribute(name QName, value string) *Attribute {
	ix := slices.IndexFunc(e.Attrs, func(a *Attribute) bool {
		return a.QName.Equal(name)
	})
	if ix >= 0 {
		e.Attrs[ix].Datum = value
		return e.Attrs[ix]
	}
	a := NewAttribute(name, value)
	a.setParent(e)
	a.setPosition(len(e.Attrs))
	e.Attrs = append(e.Attrs, a)
	return a
}

func (e *Element) GetAttribute(name string) *Attribute {
	ix := slices.IndexFunc(e.Attrs, func(a *Attribute) bool {
		return a.QualifiedName() == name
	})
	if ix < 0 {
		return nil
	}
	return e.Attrs[ix]
}

func (_ *Element) Type() NodeType {
	return TypeElement
}

func (e *Element) Name() QName {
	return e.QName
}

func (e *Element) Position() int {
	return e.position
}

func (e *Element) Parent() Node {
	return e.parent
}

func (e *Element) Value() string {
	return stringValue(e.Nodes)
}

func (e *Element) Identity() string {
	return fmt.Sprintf("element(%s)[%s]", e.QualifiedName(), joinPath(e.path()))
}

func (e *Element) path() []int {
	var steps []int
	if e.parent != nil {
		steps = e.parent.path()
	}
	return append(slices.Clone(steps), e.position)
}

func (e *Element) setParent(node Node) {
	e.parent = node
}

func (e *Element) setPosition(pos int) {
	e.position = pos
}

type Text struct {
	Content string

	parent   Node
	position int
}

func NewText(str string) *Text {
	return &Text{
		Content: str,
	}
}

func (_ *Text) Type() NodeType {
	return TypeText
}

func (_ *Text) Name() QName {
	return QName{}
}

func (_ *Text) LocalName() string {
	return ""
}

func (_ *Text) QualifiedName() string {
	return ""
}

func (t *Text) Position() int {
	return t.position
}

func (t *Text) Parent() Node {
	return t.parent
}

func (t *Text) Value() string {
	return t.Content
}

func (t *Text) Identity() string {
	return fmt.Sprintf("text[%s]", joinPath(t.path()))
}

func (t *Text) path() []int {
	var steps []int
	if t.parent != nil {
		steps = t.parent.path()
	}
	return append(slices.Clone(steps), t.position)
}

func (t *Text) setParent(node Node) {
	t.parent = node
}

func (t *Text) setPosition(pos int) {
	t.position = pos
}

type Comment struct {
	Content string

	parent   Node
	position int
}

func NewComment(str string) *Comment {
	return &Comment{
		Content: str,
	}
}

func (_ *Comment) Type() NodeType {
	return TypeComment
}

func (_ *Comment) Name() QName {
	return QName{}
}

func (_ *Comment) LocalName() string {
	return ""
}

func (_ *Comment) QualifiedName() string {
	return ""
}

func (c *Comment) Position() int {
	return c.position
}

func (c *Comment) Parent() Node {
	return c.parent
}

func (c *Comment) Value() string {
	return c.Content
}

func (c *Comment) Identity() string {
	return fmt.Sprintf("comment[%s]", joinPath(c.path()))
}

func (c *Comment) path() []int {
	var steps []int
	if c.parent != nil {
		steps = c.parent.path()
	}
	return append(slices.Clone(steps), c.position)
}

func (c *Comment) setParent(node Node) {
	c.parent = node
}

func (c *Comment) setPosition(pos int) {
	c.position = pos
}

type Instruction struct {
	Target  string
	Content string

	parent   Node
	position int
}

func NewInstruction(target, content string) *Instruction {
	return &Instruction{
		Target:  target,
		Content: content,
	}
}

func (_ *Instruction) Type() NodeType {
	return TypeInstruction
}

func (i *Instruction) Name() QName {
	return LocalName(i.Target)
}

func (i *Instruction) LocalName() string {
	return i.Target
}

func (i *Instruction) QualifiedName() string {
	return i.Target
}

func (i *Instruction) Position() int {
	return i.position
}

func (i *Instruction) Parent() Node {
	return i.parent
}

func (i *Instruction) Value() string {
	return i.Content
}

func (i *Instruction) Identity() string {
	return fmt.Sprintf("pi(%s)[%s]", i.Target, joinPath(i.path()))
}

func (i *Instruction) path() []int {
	var steps []int
	if i.parent != nil {
		steps = i.parent.path()
	}
	return append(slices.Clone(steps), i.position)
}

func (i *Instruction) setParent(node Node) {
	i.parent = node
}

func (i *Instruction) setPosition(pos int) {
	i.position = pos
}

// string value of a node list: the text of every descendant text node in
// document order.
func stringValue(nodes []Node) string {
	var (
		str  strings.Builder
		walk func([]Node)
	)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			switch n := n.(type) {
			case *Text:
				str.WriteString(n.Content)
			case *Element:
				walk(n.Nodes)
			default:
			}
		}
	}
	walk(nodes)
	return str.String()
}

func joinPath(steps []int) string {
	list := make([]string, 0, len(steps))
	for _, s := range steps {
		list = append(list, strconv.Itoa(s))
	}
	return strings.Join(list, "/")
}

// Clone makes a deep copy of node. The copy has no parent.
func Clone(node Node) Node {
	switch n := node.(type) {
	case *Document:
		doc := NewDocument(nil)
		for _, c := range n.Nodes {
			doc.Append(Clone(c))
		}
		return doc
	case *Element:
		el := NewElement(n.QName)
		for _, a := range n.Attrs {
			el.SetAttribute(a.QName, a.Datum)
		}
		for _, c := range n.Nodes {
			el.Append(Clone(c))
		}
		return el
	case *Attribute:
		return NewAttribute(n.QName, n.Datum)
	case *Text:
		return NewText(n.Content)
	case *Comment:
		return NewComment(n.Content)
	case *Instruction:
		return NewInstruction(n.Target, n.Content)
	default:
		return node
	}
}
