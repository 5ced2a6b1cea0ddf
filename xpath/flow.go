package xpath

import (
	"iter"
)

type conditional struct {
	info
	test Expr
	csq  Expr
	alt  Expr
}

func NewIf(test, csq, alt Expr) Expr {
	return conditional{
		info: combine(Specificity{}, Unsorted, test, csq, alt),
		test: test,
		csq:  csq,
		alt:  alt,
	}
}

func (c conditional) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	ok, err := evaluateBoolean(c.test, ctx, params)
	if err != nil {
		return Sequence{}, err
	}
	if ok {
		return c.csq.Evaluate(ctx, params)
	}
	return c.alt.Evaluate(ctx, params)
}

// Binding is one clause of a for, let or quantified expression. At names
// the positional variable of a for clause and may be left empty.
type Binding struct {
	Ident string
	At    string
	Expr  Expr
}

func bindingExprs(binds []Binding, others ...Expr) []Expr {
	var list []Expr
	for _, b := range binds {
		list = append(list, b.Expr)
	}
	return append(list, others...)
}

type loop struct {
	info
	binds []Binding
	body  Expr
}

func NewFor(binds []Binding, body Expr) Expr {
	in := combine(Specificity{}, Unsorted, bindingExprs(binds, body)...)
	in.static = false
	return loop{
		info:  in,
		binds: binds,
		body:  body,
	}
}

// Evaluate produces the result of the body for each combination of the
// bound items, lazily and in order.
func (o loop) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	return o.iterate(ctx, params, o.binds)
}

func (o loop) iterate(ctx Context, params *Parameters, binds []Binding) (Sequence, error) {
	if len(binds) == 0 {
		return o.body.Evaluate(ctx, params)
	}
	seq, err := binds[0].Expr.Evaluate(ctx, params)
	if err != nil {
		return Sequence{}, err
	}
	res := seq.FlatMap(func(item Item, pos int) (Sequence, error) {
		sub := ctx.Bind(binds[0].Ident, Singleton(item))
		if binds[0].At != "" {
			sub = sub.Bind(binds[0].At, Singleton(NewInteger(int64(pos))))
		}
		return o.iterate(sub, params, binds[1:])
	})
	return res, nil
}

type let struct {
	info
	binds []Binding
	body  Expr
}

func NewLet(binds []Binding, body Expr) Expr {
	in := combine(Specificity{}, Unsorted, bindingExprs(binds, body)...)
	in.static = false
	return let{
		info:  in,
		binds: binds,
		body:  body,
	}
}

// Evaluate binds every variable before evaluating the body. Bound values
// can be referenced many times so single pass results are memoized.
func (t let) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	for _, b := range t.binds {
		seq, err := b.Expr.Evaluate(ctx, params)
		if err != nil {
			return Sequence{}, err
		}
		ctx = ctx.Bind(b.Ident, seq.Memoize())
	}
	return t.body.Evaluate(ctx, params)
}

type quantified struct {
	info
	binds []Binding
	test  Expr
	every bool
}

func NewSome(binds []Binding, test Expr) Expr {
	return newQuantified(binds, test, false)
}

func NewEvery(binds []Binding, test Expr) Expr {
	return newQuantified(binds, test, true)
}

func newQuantified(binds []Binding, test Expr, every bool) Expr {
	in := combine(Specificity{}, Sorted, bindingExprs(binds, test)...)
	in.static = false
	return quantified{
		info:  in,
		binds: binds,
		test:  test,
		every: every,
	}
}

func (q quantified) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	for sub, err := range expand(q.binds, ctx, params) {
		if err != nil {
			return Sequence{}, err
		}
		ok, err := evaluateBoolean(q.test, sub, params)
		if err != nil {
			return Sequence{}, err
		}
		if ok != q.every {
			return Singleton(NewBoolean(ok)), nil
		}
	}
	return Singleton(NewBoolean(q.every)), nil
}

// expand yields one context for each combination of the items bound by the
// list of bindings.
func expand(binds []Binding, ctx Context, params *Parameters) iter.Seq2[Context, error] {
	return func(yield func(Context, error) bool) {
		if len(binds) == 0 {
			yield(ctx, nil)
			return
		}
		seq, err := binds[0].Expr.Evaluate(ctx, params)
		if err != nil {
			yield(ctx, err)
			return
		}
		for item, err := range seq.All() {
			if err != nil {
				yield(ctx, err)
				return
			}
			sub := ctx.Bind(binds[0].Ident, Singleton(item))
			for next, err := range expand(binds[1:], sub, params) {
				if !yield(next, err) || err != nil {
					return
				}
			}
		}
	}
}

type filter struct {
	info
	expr  Expr
	check Expr
}

// NewFilter builds expr[check]. A numeric predicate selects the item at
// that position, any other predicate keeps the items for which its
// effective boolean value is true.
func NewFilter(expr, check Expr) Expr {
	return filter{
		info:  combine(Specificity{}, expr.Ordering(), expr, check),
		expr:  expr,
		check: check,
	}
}

func (f filter) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	seq, err := f.expr.Evaluate(ctx, params)
	if err != nil {
		return Sequence{}, err
	}
	var list []Item
	for sub, err := range ctx.Each(seq) {
		if err != nil {
			return Sequence{}, err
		}
		ok, err := f.keep(sub, params)
		if err != nil {
			return Sequence{}, err
		}
		if ok {
			list = append(list, sub.Item)
		}
	}
	return FromSlice(list), nil
}

func (f filter) keep(ctx Context, params *Parameters) (bool, error) {
	seq, err := f.check.Evaluate(ctx, params)
	if err != nil {
		return false, err
	}
	first, err := seq.First()
	if err != nil {
		return false, err
	}
	if value, ok := first.(Atomic); ok && value.Type().Numeric() {
		if one, err := seq.IsSingleton(); err == nil && one {
			return value.double() == float64(ctx.Position), nil
		}
	}
	return seq.EffectiveBooleanValue()
}
