package xpath

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/midbel/xquery/xml"
	"golang.org/x/text/unicode/rangetable"
)

var ncNameStart = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x41, Hi: 0x5a, Stride: 1},
		{Lo: 0x5f, Hi: 0x5f, Stride: 1},
		{Lo: 0x61, Hi: 0x7a, Stride: 1},
		{Lo: 0xc0, Hi: 0xd6, Stride: 1},
		{Lo: 0xd8, Hi: 0xf6, Stride: 1},
		{Lo: 0xf8, Hi: 0x2ff, Stride: 1},
		{Lo: 0x370, Hi: 0x37d, Stride: 1},
		{Lo: 0x37f, Hi: 0x1fff, Stride: 1},
		{Lo: 0x200c, Hi: 0x200d, Stride: 1},
		{Lo: 0x2070, Hi: 0x218f, Stride: 1},
		{Lo: 0x2c00, Hi: 0x2fef, Stride: 1},
		{Lo: 0x3001, Hi: 0xd7ff, Stride: 1},
		{Lo: 0xf900, Hi: 0xfdcf, Stride: 1},
		{Lo: 0xfdf0, Hi: 0xfffd, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x10000, Hi: 0xeffff, Stride: 1},
	},
}

var ncNameExtra = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2d, Hi: 0x2e, Stride: 1},
		{Lo: 0x30, Hi: 0x39, Stride: 1},
		{Lo: 0xb7, Hi: 0xb7, Stride: 1},
		{Lo: 0x300, Hi: 0x36f, Stride: 1},
		{Lo: 0x203f, Hi: 0x2040, Stride: 1},
	},
}

var ncNameChar = rangetable.Merge(ncNameStart, ncNameExtra)

func isNameChar(r rune) bool {
	return r == ':' || unicode.Is(ncNameChar, r)
}

func isNCName(str string) bool {
	r, size := utf8.DecodeRuneInString(str)
	if size == 0 || !unicode.Is(ncNameStart, r) {
		return false
	}
	for _, r := range str[size:] {
		if !unicode.Is(ncNameChar, r) {
			return false
		}
	}
	return true
}

func isName(str string) bool {
	r, size := utf8.DecodeRuneInString(str)
	if size == 0 || (r != ':' && !unicode.Is(ncNameStart, r)) {
		return false
	}
	return strings.IndexFunc(str[size:], func(r rune) bool {
		return !isNameChar(r)
	}) < 0
}

// EvaluateName builds the expanded name produced by expr. A QName is kept
// as is, a string is split on its first colon and its prefix resolved with
// the static context.
func EvaluateName(static *StaticContext, ctx Context, params *Parameters, expr Expr) (xml.QName, error) {
	var qn xml.QName
	seq, err := expr.Evaluate(ctx, params)
	if err != nil {
		return qn, err
	}
	items, err := seq.Atomize(ctx.facade()).Items()
	if err != nil {
		return qn, err
	}
	if len(items) != 1 {
		return qn, errNameType()
	}
	value := items[0].(Atomic)
	switch value.Type() {
	case TypeQName:
		return value.qname(), nil
	case TypeString, TypeUntypedAtomic:
	default:
		if !IsSubtypeOf(value.Type(), TypeString) {
			return qn, errNameType()
		}
	}
	return resolveName(static, strings.TrimSpace(value.str()))
}

func resolveName(static *StaticContext, name string) (xml.QName, error) {
	var qn xml.QName
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		if !isNCName(name) {
			return qn, errDynamicName(name)
		}
		return xml.LocalName(name), nil
	}
	if !isNCName(prefix) || !isNCName(local) {
		return qn, errDynamicName(name)
	}
	uri, ok := static.ResolveNamespace(prefix)
	if !ok {
		return qn, errDynamicName(name)
	}
	return xml.ExpandedName(local, prefix, uri), nil
}

type computedName struct {
	info
	expr Expr
}

// NewComputedName gives the xs:QName built from the value of expr.
func NewComputedName(expr Expr) Expr {
	return computedName{
		info: combine(Specificity{}, Sorted, expr),
		expr: expr,
	}
}

func (c computedName) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	qn, err := EvaluateName(params.static(), ctx, params, c.expr)
	if err != nil {
		return Sequence{}, err
	}
	return Singleton(NewQName(qn)), nil
}

type computedElement struct {
	info
	name    Expr
	content Expr
}

// NewComputedElement builds element {name} {content}. Attribute nodes in
// the content become attributes of the element, other nodes are copied and
// adjacent atomic values are joined by a space into a text node.
func NewComputedElement(name, content Expr) Expr {
	in := combine(Specificity{}, Sorted, name, content)
	in.static = false
	return computedElement{
		info:    in,
		name:    name,
		content: content,
	}
}

func (c computedElement) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	qn, err := EvaluateName(params.static(), ctx, params, c.name)
	if err != nil {
		return Sequence{}, err
	}
	el := xml.NewElement(qn)
	if c.content == nil {
		return Singleton(NewNode(el)), nil
	}
	seq, err := c.content.Evaluate(ctx, params)
	if err != nil {
		return Sequence{}, err
	}
	var texts []string
	flush := func() {
		if len(texts) > 0 {
			el.Append(xml.NewText(strings.Join(texts, " ")))
			texts = texts[:0]
		}
	}
	for item, err := range seq.All() {
		if err != nil {
			return Sequence{}, err
		}
		switch item := item.(type) {
		case NodeItem:
			flush()
			if a, ok := item.node.(*xml.Attribute); ok {
				el.SetAttribute(a.QName, a.Datum)
				continue
			}
			el.Append(xml.Clone(item.node))
		default:
			values, err := Singleton(item).Atomize(ctx.facade()).Items()
			if err != nil {
				return Sequence{}, err
			}
			for _, v := range values {
				texts = append(texts, lexical(v.(Atomic)))
			}
		}
	}
	flush()
	return Singleton(NewNode(el)), nil
}

type computedAttribute struct {
	info
	name  Expr
	value Expr
}

func NewComputedAttribute(name, value Expr) Expr {
	in := combine(Specificity{}, Sorted, name, value)
	in.static = false
	return computedAttribute{
		info:  in,
		name:  name,
		value: value,
	}
}

func (c computedAttribute) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	qn, err := EvaluateName(params.static(), ctx, params, c.name)
	if err != nil {
		return Sequence{}, err
	}
	var parts []string
	if c.value != nil {
		seq, err := c.value.Evaluate(ctx, params)
		if err != nil {
			return Sequence{}, err
		}
		items, err := seq.Atomize(ctx.facade()).Items()
		if err != nil {
			return Sequence{}, err
		}
		for _, v := range items {
			parts = append(parts, lexical(v.(Atomic)))
		}
	}
	attr := xml.NewAttribute(qn, strings.Join(parts, " "))
	return Singleton(NewNode(attr)), nil
}
