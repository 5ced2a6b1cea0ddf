package xpath

import (
	"strings"
)

type Occurrence int8

const (
	OccurOne Occurrence = iota
	OccurOptional
	OccurMany
	OccurAtLeastOne
	OccurEmpty
)

// SequenceType describes the expected type and cardinality of a sequence.
type SequenceType struct {
	Type  Type
	Occur Occurrence
}

func One(t Type) SequenceType {
	return SequenceType{Type: t}
}

func Optional(t Type) SequenceType {
	return SequenceType{Type: t, Occur: OccurOptional}
}

func Many(t Type) SequenceType {
	return SequenceType{Type: t, Occur: OccurMany}
}

// ParseSequenceType reads forms like xs:integer, xs:string?, item()* or
// element()+.
func ParseSequenceType(str string) (SequenceType, bool) {
	var st SequenceType
	if str == "empty-sequence()" {
		st.Occur = OccurEmpty
		return st, true
	}
	switch {
	case strings.HasSuffix(str, "?"):
		st.Occur = OccurOptional
	case strings.HasSuffix(str, "*"):
		st.Occur = OccurMany
	case strings.HasSuffix(str, "+"):
		st.Occur = OccurAtLeastOne
	}
	if st.Occur != OccurOne {
		str = str[:len(str)-1]
	}
	t, ok := LookupType(str)
	st.Type = t
	return st, ok
}

func (s SequenceType) String() string {
	switch s.Occur {
	case OccurEmpty:
		return "empty-sequence()"
	case OccurOptional:
		return s.Type.String() + "?"
	case OccurMany:
		return s.Type.String() + "*"
	case OccurAtLeastOne:
		return s.Type.String() + "+"
	default:
		return s.Type.String()
	}
}

func (s SequenceType) accepts(count int) bool {
	switch s.Occur {
	case OccurEmpty:
		return count == 0
	case OccurOptional:
		return count <= 1
	case OccurMany:
		return true
	case OccurAtLeastOne:
		return count >= 1
	default:
		return count == 1
	}
}

// Matches reports whether every item is an instance of the type and the
// count of items fits the occurrence.
func (s SequenceType) Matches(items []Item) bool {
	if !s.accepts(len(items)) {
		return false
	}
	for _, item := range items {
		if !IsSubtypeOf(item.Type(), s.Type) {
			return false
		}
	}
	return true
}

// Convert applies the function conversion rules to a sequence given as
// argument: atomization when an atomic type is expected, casting of
// untypedAtomic values, numeric and URI promotion.
func (s SequenceType) Convert(seq Sequence, ctx Context) (Sequence, error) {
	if !s.Type.Atomic() {
		items, err := seq.Items()
		if err != nil {
			return Sequence{}, err
		}
		if !s.Matches(items) {
			return Sequence{}, typeError("expected %s", s)
		}
		return FromSlice(items), nil
	}
	items, err := seq.Atomize(ctx.facade()).Items()
	if err != nil {
		return Sequence{}, err
	}
	if !s.accepts(len(items)) {
		return Sequence{}, typeError("expected %s, got %d item(s)", s, len(items))
	}
	for i := range items {
		value := items[i].(Atomic)
		if IsSubtypeOf(value.Type(), s.Type) {
			continue
		}
		res := s.promote(value)
		if !res.Successful() {
			return Sequence{}, typeError("expected %s, got %s", s.Type, value.Type())
		}
		items[i] = res.Value
	}
	return FromSlice(items), nil
}

func (s SequenceType) promote(value Atomic) CastResult {
	var (
		from    = value.Type()
		targets []Type
	)
	switch {
	case from == TypeUntypedAtomic:
		if s.Type == TypeNumeric {
			targets = []Type{TypeDouble}
		} else if !s.Type.abstract() {
			targets = []Type{s.Type}
		}
	case from.Numeric() && s.Type == TypeDouble:
		targets = []Type{TypeDouble}
	case IsSubtypeOf(from, TypeDecimal) && s.Type == TypeFloat:
		targets = []Type{TypeFloat}
	case from == TypeAnyURI && s.Type == TypeString:
		targets = []Type{TypeString}
	}
	return CastFirst(value, targets...)
}

type castExpr struct {
	info
	expr     Expr
	target   SequenceType
	castable bool
}

// NewCast builds 'expr cast as target'. An optional target accepts the
// empty sequence.
func NewCast(expr Expr, target SequenceType) Expr {
	return castExpr{
		info:   combine(Specificity{}, Sorted, expr),
		expr:   expr,
		target: target,
	}
}

func NewCastable(expr Expr, target SequenceType) Expr {
	return castExpr{
		info:     combine(Specificity{}, Sorted, expr),
		expr:     expr,
		target:   target,
		castable: true,
	}
}

func (c castExpr) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	seq, err := c.expr.Evaluate(ctx, params)
	if err != nil {
		return Sequence{}, err
	}
	items, err := seq.Atomize(ctx.facade()).Items()
	if err != nil {
		return Sequence{}, err
	}
	switch {
	case len(items) == 0 && c.castable:
		return Singleton(NewBoolean(c.target.Occur == OccurOptional)), nil
	case len(items) == 0 && c.target.Occur == OccurOptional:
		return Empty(), nil
	case len(items) == 0:
		return Sequence{}, typeError("empty sequence can not be cast to %s", c.target.Type)
	case len(items) > 1 && c.castable:
		return Singleton(NewBoolean(false)), nil
	case len(items) > 1:
		return Sequence{}, typeError("a sequence of more than one item can not be cast to %s", c.target.Type)
	}
	res := Cast(items[0].(Atomic), c.target.Type)
	if c.castable {
		return Singleton(NewBoolean(res.Successful())), nil
	}
	if !res.Successful() {
		return Sequence{}, res.Err
	}
	return Singleton(res.Value), nil
}

type instanceOf struct {
	info
	expr Expr
	kind SequenceType
}

func NewInstanceOf(expr Expr, kind SequenceType) Expr {
	return instanceOf{
		info: combine(Specificity{}, Sorted, expr),
		expr: expr,
		kind: kind,
	}
}

func (i instanceOf) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	items, err := evaluateItems(i.expr, ctx, params)
	if err != nil {
		return Sequence{}, err
	}
	return Singleton(NewBoolean(i.kind.Matches(items))), nil
}
