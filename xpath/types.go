package xpath

import (
	"fmt"
	"strings"
)

const (
	schemaNS = "http://www.w3.org/2001/XMLSchema"
	funcNS   = "http://www.w3.org/2005/xpath-functions"
	arrayNS  = "http://www.w3.org/2005/xpath-functions/array"
	mathNS   = "http://www.w3.org/2005/xpath-functions/math"
	xmlNS    = "http://www.w3.org/XML/1998/namespace"
)

type Type uint8

const (
	TypeItem Type = iota
	TypeNode
	TypeDocument
	TypeElement
	TypeAttribute
	TypeText
	TypeComment
	TypeInstruction
	TypeArray
	TypeAnyAtomic
	TypeUntypedAtomic
	TypeString
	TypeNormalizedString
	TypeToken
	TypeLanguage
	TypeNMTOKEN
	TypeName
	TypeNCName
	TypeAnyURI
	TypeBoolean
	TypeNumeric
	TypeDecimal
	TypeInteger
	TypeNonPositiveInteger
	TypeNegativeInteger
	TypeLong
	TypeInt
	TypeShort
	TypeByte
	TypeNonNegativeInteger
	TypeUnsignedLong
	TypeUnsignedInt
	TypeUnsignedShort
	TypeUnsignedByte
	TypePositiveInteger
	TypeFloat
	TypeDouble
	TypeDuration
	TypeYearMonthDuration
	TypeDayTimeDuration
	TypeDateTime
	TypeDateTimeStamp
	TypeDate
	TypeTime
	TypeGYearMonth
	TypeGYear
	TypeGMonthDay
	TypeGDay
	TypeGMonth
	TypeHexBinary
	TypeBase64Binary
	TypeQName
	TypeNOTATION
)

type Category uint8

const (
	CategoryOther Category = iota
	CategoryNode
	CategoryString
	CategoryBoolean
	CategoryNumeric
	CategoryDuration
	CategoryTemporal
	CategoryBinary
	CategoryName
)

func (c Category) String() string {
	switch c {
	case CategoryNode:
		return "node"
	case CategoryString:
		return "string"
	case CategoryBoolean:
		return "boolean"
	case CategoryNumeric:
		return "numeric"
	case CategoryDuration:
		return "duration"
	case CategoryTemporal:
		return "temporal"
	case CategoryBinary:
		return "binary"
	case CategoryName:
		return "name"
	default:
		return "other"
	}
}

type typeDef struct {
	kind     Type
	name     string
	parent   string
	category Category
}

var builtinTypes = []typeDef{
	{kind: TypeItem, name: "item()"},
	{kind: TypeNode, name: "node()", parent: "item()", category: CategoryNode},
	{kind: TypeDocument, name: "document-node()", parent: "node()", category: CategoryNode},
	{kind: TypeElement, name: "element()", parent: "node()", category: CategoryNode},
	{kind: TypeAttribute, name: "attribute()", parent: "node()", category: CategoryNode},
	{kind: TypeText, name: "text()", parent: "node()", category: CategoryNode},
	{kind: TypeComment, name: "comment()", parent: "node()", category: CategoryNode},
	{kind: TypeInstruction, name: "processing-instruction()", parent: "node()", category: CategoryNode},
	{kind: TypeArray, name: "array(*)", parent: "item()"},
	{kind: TypeAnyAtomic, name: "xs:anyAtomicType", parent: "item()"},
	{kind: TypeUntypedAtomic, name: "xs:untypedAtomic", parent: "xs:anyAtomicType", category: CategoryString},
	{kind: TypeString, name: "xs:string", parent: "xs:anyAtomicType", category: CategoryString},
	{kind: TypeNormalizedString, name: "xs:normalizedString", parent: "xs:string", category: CategoryString},
	{kind: TypeToken, name: "xs:token", parent: "xs:normalizedString", category: CategoryString},
	{kind: TypeLanguage, name: "xs:language", parent: "xs:token", category: CategoryString},
	{kind: TypeNMTOKEN, name: "xs:NMTOKEN", parent: "xs:token", category: CategoryString},
	{kind: TypeName, name: "xs:Name", parent: "xs:token", category: CategoryString},
	{kind: TypeNCName, name: "xs:NCName", parent: "xs:Name", category: CategoryString},
	{kind: TypeAnyURI, name: "xs:anyURI", parent: "xs:anyAtomicType", category: CategoryString},
	{kind: TypeBoolean, name: "xs:boolean", parent: "xs:anyAtomicType", category: CategoryBoolean},
	{kind: TypeNumeric, name: "xs:numeric", parent: "xs:anyAtomicType", category: CategoryNumeric},
	{kind: TypeDecimal, name: "xs:decimal", parent: "xs:numeric", category: CategoryNumeric},
	{kind: TypeInteger, name: "xs:integer", parent: "xs:decimal", category: CategoryNumeric},
	{kind: TypeNonPositiveInteger, name: "xs:nonPositiveInteger", parent: "xs:integer", category: CategoryNumeric},
	{kind: TypeNegativeInteger, name: "xs:negativeInteger", parent: "xs:nonPositiveInteger", category: CategoryNumeric},
	{kind: TypeLong, name: "xs:long", parent: "xs:integer", category: CategoryNumeric},
	{kind: TypeInt, name: "xs:int", parent: "xs:long", category: CategoryNumeric},
	{kind: TypeShort, name: "xs:short", parent: "xs:int", category: CategoryNumeric},
	{kind: TypeByte, name: "xs:byte", parent: "xs:short", category: CategoryNumeric},
	{kind: TypeNonNegativeInteger, name: "xs:nonNegativeInteger", parent: "xs:integer", category: CategoryNumeric},
	{kind: TypeUnsignedLong, name: "xs:unsignedLong", parent: "xs:nonNegativeInteger", category: CategoryNumeric},
	{kind: TypeUnsignedInt, name: "xs:unsignedInt", parent: "xs:unsignedLong", category: CategoryNumeric},
	{kind: TypeUnsignedShort, name: "xs:unsignedShort", parent: "xs:unsignedInt", category: CategoryNumeric},
	{kind: TypeUnsignedByte, name: "xs:unsignedByte", parent: "xs:unsignedShort", category: CategoryNumeric},
	{kind: TypePositiveInteger, name: "xs:positiveInteger", parent: "xs:nonNegativeInteger", category: CategoryNumeric},
	{kind: TypeFloat, name: "xs:float", parent: "xs:numeric", category: CategoryNumeric},
	{kind: TypeDouble, name: "xs:double", parent: "xs:numeric", category: CategoryNumeric},
	{kind: TypeDuration, name: "xs:duration", parent: "xs:anyAtomicType", category: CategoryDuration},
	{kind: TypeYearMonthDuration, name: "xs:yearMonthDuration", parent: "xs:duration", category: CategoryDuration},
	{kind: TypeDayTimeDuration, name: "xs:dayTimeDuration", parent: "xs:duration", category: CategoryDuration},
	{kind: TypeDateTime, name: "xs:dateTime", parent: "xs:anyAtomicType", category: CategoryTemporal},
	{kind: TypeDateTimeStamp, name: "xs:dateTimeStamp", parent: "xs:dateTime", category: CategoryTemporal},
	{kind: TypeDate, name: "xs:date", parent: "xs:anyAtomicType", category: CategoryTemporal},
	{kind: TypeTime, name: "xs:time", parent: "xs:anyAtomicType", category: CategoryTemporal},
	{kind: TypeGYearMonth, name: "xs:gYearMonth", parent: "xs:anyAtomicType", category: CategoryTemporal},
	{kind: TypeGYear, name: "xs:gYear", parent: "xs:anyAtomicType", category: CategoryTemporal},
	{kind: TypeGMonthDay, name: "xs:gMonthDay", parent: "xs:anyAtomicType", category: CategoryTemporal},
	{kind: TypeGDay, name: "xs:gDay", parent: "xs:anyAtomicType", category: CategoryTemporal},
	{kind: TypeGMonth, name: "xs:gMonth", parent: "xs:anyAtomicType", category: CategoryTemporal},
	{kind: TypeHexBinary, name: "xs:hexBinary", parent: "xs:anyAtomicType", category: CategoryBinary},
	{kind: TypeBase64Binary, name: "xs:base64Binary", parent: "xs:anyAtomicType", category: CategoryBinary},
	{kind: TypeQName, name: "xs:QName", parent: "xs:anyAtomicType", category: CategoryName},
	{kind: TypeNOTATION, name: "xs:NOTATION", parent: "xs:anyAtomicType", category: CategoryName},
}

type typeNode struct {
	name     string
	parent   Type
	root     bool
	defined  bool
	category Category
	depth    int
}

// Lattice is the read-only tree of built-in types. It is built once and
// never modified afterwards.
type Lattice struct {
	nodes  []typeNode
	byName map[string]Type
	root   Type
}

var lattice = mustLattice(builtinTypes)

func mustLattice(defs []typeDef) *Lattice {
	lt, err := buildLattice(defs)
	if err != nil {
		panic(err)
	}
	return lt
}

func buildLattice(defs []typeDef) (*Lattice, error) {
	lt := Lattice{
		byName: make(map[string]Type),
	}
	var size int
	for _, d := range defs {
		size = max(size, int(d.kind)+1)
	}
	lt.nodes = make([]typeNode, size)

	var roots int
	for _, d := range defs {
		if _, ok := lt.byName[d.name]; ok {
			return nil, fmt.Errorf("%s: duplicate type name: %w", d.name, ErrLattice)
		}
		if lt.nodes[d.kind].defined {
			return nil, fmt.Errorf("%s: duplicate type tag %d: %w", d.name, d.kind, ErrLattice)
		}
		lt.byName[d.name] = d.kind
		lt.nodes[d.kind] = typeNode{
			name:     d.name,
			root:     d.parent == "",
			defined:  true,
			category: d.category,
		}
		if d.parent == "" {
			roots++
			lt.root = d.kind
		}
	}
	if roots != 1 {
		return nil, fmt.Errorf("%d roots found: %w", roots, ErrLattice)
	}
	for _, d := range defs {
		if d.parent == "" {
			continue
		}
		parent, ok := lt.byName[d.parent]
		if !ok {
			return nil, fmt.Errorf("%s: unknown parent %s: %w", d.name, d.parent, ErrLattice)
		}
		lt.nodes[d.kind].parent = parent
	}
	for _, d := range defs {
		var (
			curr  = d.kind
			depth int
		)
		for !lt.nodes[curr].root {
			if depth > len(defs) {
				return nil, fmt.Errorf("%s: cycle in parent chain: %w", d.name, ErrLattice)
			}
			curr = lt.nodes[curr].parent
			depth++
		}
		lt.nodes[d.kind].depth = depth
	}
	return &lt, nil
}

func (lt *Lattice) IsSubtypeOf(candidate, ancestor Type) bool {
	if !lt.defined(candidate) || !lt.defined(ancestor) {
		return false
	}
	for curr := candidate; ; {
		if curr == ancestor {
			return true
		}
		node := lt.nodes[curr]
		if node.root {
			return false
		}
		curr = node.parent
	}
}

func (lt *Lattice) Lookup(name string) (Type, bool) {
	t, ok := lt.byName[name]
	return t, ok
}

func (lt *Lattice) Types() []Type {
	var list []Type
	for i, n := range lt.nodes {
		if n.defined {
			list = append(list, Type(i))
		}
	}
	return list
}

func (lt *Lattice) defined(t Type) bool {
	return int(t) < len(lt.nodes) && lt.nodes[t].defined
}

// IsSubtypeOf reports whether ancestor appears on the path from candidate to
// the root of the built-in lattice. Every type is a subtype of itself.
func IsSubtypeOf(candidate, ancestor Type) bool {
	return lattice.IsSubtypeOf(candidate, ancestor)
}

// LookupType resolves a lexical type name. Atomic types accept either the
// xs prefix, the expanded form or their bare local name.
func LookupType(name string) (Type, bool) {
	if t, ok := lattice.Lookup(name); ok {
		return t, ok
	}
	if rest, ok := strings.CutPrefix(name, "Q{"+schemaNS+"}"); ok {
		name = rest
	}
	return lattice.Lookup("xs:" + name)
}

func Types() []Type {
	return lattice.Types()
}

func (t Type) String() string {
	if !lattice.defined(t) {
		return fmt.Sprintf("type(%d)", uint8(t))
	}
	return lattice.nodes[t].name
}

func (t Type) Parent() (Type, bool) {
	if !lattice.defined(t) || lattice.nodes[t].root {
		return t, false
	}
	return lattice.nodes[t].parent, true
}

func (t Type) Category() Category {
	if !lattice.defined(t) {
		return CategoryOther
	}
	return lattice.nodes[t].category
}

func (t Type) Depth() int {
	if !lattice.defined(t) {
		return 0
	}
	return lattice.nodes[t].depth
}

// Atomic reports whether t is below xs:anyAtomicType.
func (t Type) Atomic() bool {
	return IsSubtypeOf(t, TypeAnyAtomic)
}

func (t Type) Numeric() bool {
	return IsSubtypeOf(t, TypeNumeric)
}

func (t Type) abstract() bool {
	return t == TypeAnyAtomic || t == TypeNumeric || t == TypeNOTATION || !t.Atomic()
}

// promote gives the type arithmetic on two numeric operands is carried out
// in. decimal, float and double are siblings: promotion is not subtyping.
func promote(left, right Type) Type {
	switch {
	case IsSubtypeOf(left, TypeInteger) && IsSubtypeOf(right, TypeInteger):
		return TypeInteger
	case IsSubtypeOf(left, TypeDecimal) && IsSubtypeOf(right, TypeDecimal):
		return TypeDecimal
	case IsSubtypeOf(left, TypeFloat) && IsSubtypeOf(right, TypeFloat):
		return TypeFloat
	default:
		return TypeDouble
	}
}

// primitive reduces a numeric type to the type its datum is stored as.
func primitive(t Type) Type {
	switch {
	case IsSubtypeOf(t, TypeInteger):
		return TypeInteger
	case IsSubtypeOf(t, TypeDecimal):
		return TypeDecimal
	case IsSubtypeOf(t, TypeFloat):
		return TypeFloat
	case IsSubtypeOf(t, TypeDouble):
		return TypeDouble
	case IsSubtypeOf(t, TypeString):
		return TypeString
	case IsSubtypeOf(t, TypeDateTime):
		return TypeDateTime
	default:
		return t
	}
}
