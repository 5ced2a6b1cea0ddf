package xpath

import (
	"fmt"
	"math"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/midbel/xquery/xml"
)

// Item is a member of a sequence: an atomic value, a node or an array.
type Item interface {
	Type() Type
	Value() any
}

// Atomic is an immutable typed value. The datum is always valid for its tag:
//
//	integer family   int64
//	xs:decimal       *apd.Decimal
//	xs:float         float32
//	xs:double        float64
//	string family    string (also xs:untypedAtomic and xs:anyURI)
//	xs:boolean       bool
//	QName, NOTATION  xml.QName
//	durations        Duration
//	dates and times  DateTime
//	binary           []byte
type Atomic struct {
	kind  Type
	value any
}

func newAtomic(kind Type, value any) Atomic {
	return Atomic{
		kind:  kind,
		value: value,
	}
}

func NewInteger(i int64) Atomic {
	return newAtomic(TypeInteger, i)
}

func NewDecimal(d *apd.Decimal) Atomic {
	var dec apd.Decimal
	dec.Set(d)
	return newAtomic(TypeDecimal, &dec)
}

func NewFloat(f float32) Atomic {
	return newAtomic(TypeFloat, f)
}

func NewDouble(f float64) Atomic {
	return newAtomic(TypeDouble, f)
}

func NewString(str string) Atomic {
	return newAtomic(TypeString, str)
}

func NewUntyped(str string) Atomic {
	return newAtomic(TypeUntypedAtomic, str)
}

func NewAnyURI(str string) Atomic {
	return newAtomic(TypeAnyURI, str)
}

func NewBoolean(b bool) Atomic {
	return newAtomic(TypeBoolean, b)
}

func NewQName(qn xml.QName) Atomic {
	return newAtomic(TypeQName, qn)
}

func NewYearMonthDuration(months int64) Atomic {
	return newAtomic(TypeYearMonthDuration, Duration{Months: months})
}

func NewDayTimeDuration(span time.Duration) Atomic {
	return newAtomic(TypeDayTimeDuration, Duration{Span: span})
}

func NewDuration(d Duration) Atomic {
	return newAtomic(TypeDuration, d)
}

// NewDateTime wraps t as a xs:dateTime with an explicit timezone.
func NewDateTime(t time.Time) Atomic {
	return newAtomic(TypeDateTime, DateTime{Time: t, Zoned: true})
}

func NewHexBinary(b []byte) Atomic {
	return newAtomic(TypeHexBinary, b)
}

func NewBase64Binary(b []byte) Atomic {
	return newAtomic(TypeBase64Binary, b)
}

func (a Atomic) Type() Type {
	return a.kind
}

func (a Atomic) Value() any {
	return a.value
}

// String gives the lexical form of the value, as cast to xs:string.
func (a Atomic) String() string {
	res := Cast(a, TypeString)
	if !res.Successful() {
		return fmt.Sprint(a.value)
	}
	return res.Value.str()
}

func (a Atomic) Equal(other Atomic) bool {
	fn, err := resolveComparison(OpEqual, a.Type(), other.Type())
	if err != nil {
		return false
	}
	res, err := fn(a, other)
	return err == nil && res.boolean()
}

func (a Atomic) str() string {
	s, _ := a.value.(string)
	return s
}

func (a Atomic) boolean() bool {
	b, _ := a.value.(bool)
	return b
}

func (a Atomic) integer() int64 {
	i, _ := a.value.(int64)
	return i
}

func (a Atomic) decimal() *apd.Decimal {
	switch v := a.value.(type) {
	case *apd.Decimal:
		return v
	case int64:
		return apd.New(v, 0)
	default:
		d, _ := decimalFromFloat(a.double())
		return d
	}
}

// double converts any numeric datum to a float64.
func (a Atomic) double() float64 {
	switch v := a.value.(type) {
	case int64:
		return float64(v)
	case *apd.Decimal:
		f, err := v.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case float32:
		return float64(v)
	case float64:
		return v
	default:
		return math.NaN()
	}
}

func (a Atomic) duration() Duration {
	d, _ := a.value.(Duration)
	return d
}

func (a Atomic) datetime() DateTime {
	d, _ := a.value.(DateTime)
	return d
}

func (a Atomic) qname() xml.QName {
	q, _ := a.value.(xml.QName)
	return q
}

func (a Atomic) binary() []byte {
	b, _ := a.value.([]byte)
	return b
}

// NodeItem wraps a node of the document so it can flow through sequences.
type NodeItem struct {
	node xml.Node
}

func NewNode(node xml.Node) NodeItem {
	return NodeItem{
		node: node,
	}
}

func (n NodeItem) Type() Type {
	switch n.node.Type() {
	case xml.TypeDocument:
		return TypeDocument
	case xml.TypeElement:
		return TypeElement
	case xml.TypeAttribute:
		return TypeAttribute
	case xml.TypeText:
		return TypeText
	case xml.TypeComment:
		return TypeComment
	case xml.TypeInstruction:
		return TypeInstruction
	default:
		return TypeNode
	}
}

func (n NodeItem) Value() any {
	return n.node
}

func (n NodeItem) Node() xml.Node {
	return n.node
}

// Array is an ordered list of members, each member being a sequence.
type Array struct {
	members []Sequence
}

func NewArray(members ...Sequence) Array {
	return Array{
		members: members,
	}
}

func (a Array) Type() Type {
	return TypeArray
}

func (a Array) Value() any {
	return a.members
}

func (a Array) Len() int {
	return len(a.members)
}

func (a Array) Members() []Sequence {
	return a.members
}

// Get returns the member at the 1-based position.
func (a Array) Get(pos int) (Sequence, error) {
	if pos < 1 || pos > len(a.members) {
		return Sequence{}, newError(CodeArrayIndex, "array position out of bounds.")
	}
	return a.members[pos-1], nil
}

func isNode(item Item) bool {
	_, ok := item.(NodeItem)
	return ok
}

func toNode(item Item) (xml.Node, bool) {
	n, ok := item.(NodeItem)
	if !ok {
		return nil, false
	}
	return n.node, true
}
