package xpath

import (
	"slices"
)

// Ordering describes the order of the items an expression produces.
type Ordering int8

const (
	Sorted Ordering = iota
	Unsorted
	Unordered
)

func (o Ordering) String() string {
	switch o {
	case Sorted:
		return "sorted"
	case Unsorted:
		return "unsorted"
	default:
		return "unordered"
	}
}

// Specificity measures how selective an expression is. Values are compared
// on each count in turn, the external count first.
type Specificity struct {
	External  int
	Attribute int
	Name      int
	Kind      int
	Universal int
}

func (s Specificity) Add(other Specificity) Specificity {
	return Specificity{
		External:  s.External + other.External,
		Attribute: s.Attribute + other.Attribute,
		Name:      s.Name + other.Name,
		Kind:      s.Kind + other.Kind,
		Universal: s.Universal + other.Universal,
	}
}

func (s Specificity) Compare(other Specificity) int {
	left := []int{s.External, s.Attribute, s.Name, s.Kind, s.Universal}
	right := []int{other.External, other.Attribute, other.Name, other.Kind, other.Universal}
	return slices.Compare(left, right)
}

// Expr is a node of a compiled expression tree. Evaluate must not modify
// its arguments and should defer as much work as it can to the iteration
// of the returned sequence. The metadata is computed once when the node is
// built.
type Expr interface {
	Evaluate(Context, *Parameters) (Sequence, error)
	Specificity() Specificity
	Static() bool
	Ordering() Ordering
}

type info struct {
	spec   Specificity
	static bool
	order  Ordering
}

func (i info) Specificity() Specificity {
	return i.spec
}

func (i info) Static() bool {
	return i.static
}

func (i info) Ordering() Ordering {
	return i.order
}

// combine sums the specificity of the sub expressions. The result is static
// when they all are.
func combine(base Specificity, order Ordering, exprs ...Expr) info {
	in := info{
		spec:   base,
		static: true,
		order:  order,
	}
	for _, e := range exprs {
		if e == nil {
			continue
		}
		in.spec = in.spec.Add(e.Specificity())
		in.static = in.static && e.Static()
	}
	return in
}

type literal struct {
	info
	items []Item
}

// NewLiteral builds an expression always producing the given items.
func NewLiteral(items ...Item) Expr {
	return literal{
		info: info{
			static: true,
			order:  Sorted,
		},
		items: slices.Clone(items),
	}
}

func (i literal) Evaluate(_ Context, _ *Parameters) (Sequence, error) {
	return FromSlice(i.items), nil
}

type sequence struct {
	info
	all []Expr
}

func NewSequence(exprs ...Expr) Expr {
	return sequence{
		info: combine(Specificity{}, Unsorted, exprs...),
		all:  exprs,
	}
}

// Evaluate chains the results of its expressions. Each expression is only
// evaluated when the iteration reaches it.
func (s sequence) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	if len(s.all) == 0 {
		return Empty(), nil
	}
	var list []Sequence
	for _, e := range s.all {
		list = append(list, deferred(e, ctx, params))
	}
	return Concat(list...), nil
}

// deferred evaluates e the first time its result is pulled.
func deferred(e Expr, ctx Context, params *Parameters) Sequence {
	return Generate(func() Iterator {
		return lazyIterator(func() Iterator {
			seq, err := e.Evaluate(ctx, params)
			if err != nil {
				return failIterator(err)
			}
			return seq.Iter()
		})
	})
}

type varRef struct {
	info
	ident string
}

func NewVarRef(ident string) Expr {
	return varRef{
		info: info{
			order: Unsorted,
		},
		ident: ident,
	}
}

func (v varRef) Evaluate(ctx Context, _ *Parameters) (Sequence, error) {
	return ctx.Resolve(v.ident)
}

type current struct {
	info
}

func NewContextItem() Expr {
	return current{
		info: info{
			order: Sorted,
		},
	}
}

func (_ current) Evaluate(ctx Context, _ *Parameters) (Sequence, error) {
	if ctx.Item == nil {
		return Sequence{}, newError(CodeContextAbsent, "context item is absent")
	}
	return Singleton(ctx.Item), nil
}

// foldLimit is the largest number of items a folded literal holds.
const foldLimit = 1 << 12

// Fold evaluates a static expression once and replaces it by the literal
// of its result. Expressions that are not static, that fail or whose
// result has more than foldLimit items are returned unchanged.
func Fold(expr Expr) Expr {
	if expr == nil || !expr.Static() {
		return expr
	}
	if _, ok := expr.(literal); ok {
		return expr
	}
	seq, err := expr.Evaluate(Context{}, DefaultParameters())
	if err != nil {
		return expr
	}
	items, err := seq.Take(foldLimit + 1).Items()
	if err != nil || len(items) > foldLimit {
		return expr
	}
	lit := NewLiteral(items...).(literal)
	lit.spec = expr.Specificity()
	lit.order = expr.Ordering()
	return lit
}
