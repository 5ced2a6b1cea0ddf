package xpath

import (
	"math"

	"github.com/cockroachdb/apd/v3"
)

type binary struct {
	info
	op    Operator
	left  Expr
	right Expr
}

// NewBinary builds the arithmetic operation or the value comparison op
// between left and right.
func NewBinary(op Operator, left, right Expr) Expr {
	return binary{
		info:  combine(Specificity{}, Sorted, left, right),
		op:    op,
		left:  left,
		right: right,
	}
}

// NewValueCompare is NewBinary restricted to the comparison operators.
func NewValueCompare(op Operator, left, right Expr) Expr {
	if !op.Comparison() {
		op = OpEqual
	}
	return NewBinary(op, left, right)
}

// Evaluate atomizes the left operand first. When it is empty the right
// operand is not evaluated at all and the result is empty.
func (b binary) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	left, err := b.left.Evaluate(ctx, params)
	if err != nil {
		return Sequence{}, err
	}
	seq := left.Atomize(ctx.facade()).MapAll(func(lefts []Item) (Sequence, error) {
		if len(lefts) == 0 {
			return Empty(), nil
		}
		right, err := b.right.Evaluate(ctx, params)
		if err != nil {
			return Sequence{}, err
		}
		rights, err := right.Atomize(ctx.facade()).Items()
		if err != nil {
			return Sequence{}, err
		}
		if len(rights) == 0 {
			return Empty(), nil
		}
		if len(lefts) > 1 || len(rights) > 1 {
			return Sequence{}, errOperandArity(b.op)
		}
		x, y := lefts[0].(Atomic), rights[0].(Atomic)
		fn, err := params.Resolve(b.op, x.Type(), y.Type())
		if err != nil {
			return Sequence{}, err
		}
		res, err := fn(x, y)
		if err != nil {
			return Sequence{}, err
		}
		return Singleton(res), nil
	})
	return seq, nil
}

type generalCompare struct {
	info
	op    Operator
	left  Expr
	right Expr
}

// NewGeneralCompare builds the existential comparison (=, !=, <, ...): it
// is true when any pair of items from both operands satisfies op.
func NewGeneralCompare(op Operator, left, right Expr) Expr {
	if !op.Comparison() {
		op = OpEqual
	}
	return generalCompare{
		info:  combine(Specificity{}, Sorted, left, right),
		op:    op,
		left:  left,
		right: right,
	}
}

func (g generalCompare) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	left, err := g.left.Evaluate(ctx, params)
	if err != nil {
		return Sequence{}, err
	}
	right, err := g.right.Evaluate(ctx, params)
	if err != nil {
		return Sequence{}, err
	}
	rights, err := right.Atomize(ctx.facade()).Items()
	if err != nil {
		return Sequence{}, err
	}
	for item, err := range left.Atomize(ctx.facade()).All() {
		if err != nil {
			return Sequence{}, err
		}
		for _, other := range rights {
			ok, err := g.test(item.(Atomic), other.(Atomic), params)
			if err != nil {
				return Sequence{}, err
			}
			if ok {
				return Singleton(NewBoolean(true)), nil
			}
		}
	}
	return Singleton(NewBoolean(false)), nil
}

func (g generalCompare) test(left, right Atomic, params *Parameters) (bool, error) {
	left, right, err := generalCoerce(left, right)
	if err != nil {
		return false, err
	}
	fn, err := params.Resolve(g.op, left.Type(), right.Type())
	if err != nil {
		return false, err
	}
	res, err := fn(left, right)
	if err != nil {
		return false, err
	}
	return res.boolean(), nil
}

type NodeOperator int8

const (
	NodeIs NodeOperator = iota
	NodeBefore
	NodeAfter
)

type nodeCompare struct {
	info
	op    NodeOperator
	left  Expr
	right Expr
}

func NewNodeCompare(op NodeOperator, left, right Expr) Expr {
	return nodeCompare{
		info:  combine(Specificity{}, Sorted, left, right),
		op:    op,
		left:  left,
		right: right,
	}
}

func (n nodeCompare) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	left, err := evaluateItems(n.left, ctx, params)
	if err != nil {
		return Sequence{}, err
	}
	right, err := evaluateItems(n.right, ctx, params)
	if err != nil {
		return Sequence{}, err
	}
	if len(left) == 0 || len(right) == 0 {
		return Empty(), nil
	}
	if len(left) > 1 || len(right) > 1 {
		return Sequence{}, typeError("Sequences to compare are not singleton")
	}
	x, ok1 := toNode(left[0])
	y, ok2 := toNode(right[0])
	if !ok1 || !ok2 {
		return Sequence{}, typeError("Sequences to compare are not nodes")
	}
	var (
		facade = ctx.facade()
		res    bool
	)
	switch n.op {
	case NodeIs:
		res = facade.Same(x, y)
	case NodeBefore:
		res = facade.Compare(x, y) < 0
	case NodeAfter:
		res = facade.Compare(x, y) > 0
	}
	return Singleton(NewBoolean(res)), nil
}

type and struct {
	info
	left  Expr
	right Expr
}

func NewAnd(left, right Expr) Expr {
	return and{
		info:  combine(Specificity{}, Sorted, left, right),
		left:  left,
		right: right,
	}
}

func (a and) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	ok, err := evaluateBoolean(a.left, ctx, params)
	if err != nil || !ok {
		return Singleton(NewBoolean(false)), err
	}
	ok, err = evaluateBoolean(a.right, ctx, params)
	return Singleton(NewBoolean(ok)), err
}

type or struct {
	info
	left  Expr
	right Expr
}

func NewOr(left, right Expr) Expr {
	return or{
		info:  combine(Specificity{}, Sorted, left, right),
		left:  left,
		right: right,
	}
}

func (o or) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	ok, err := evaluateBoolean(o.left, ctx, params)
	if err != nil || ok {
		return Singleton(NewBoolean(ok)), err
	}
	ok, err = evaluateBoolean(o.right, ctx, params)
	return Singleton(NewBoolean(ok)), err
}

type unary struct {
	info
	negate bool
	expr   Expr
}

func NewUnaryMinus(expr Expr) Expr {
	return unary{
		info:   combine(Specificity{}, Sorted, expr),
		negate: true,
		expr:   expr,
	}
}

func NewUnaryPlus(expr Expr) Expr {
	return unary{
		info: combine(Specificity{}, Sorted, expr),
		expr: expr,
	}
}

func (u unary) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	seq, err := u.expr.Evaluate(ctx, params)
	if err != nil {
		return Sequence{}, err
	}
	items, err := seq.Atomize(ctx.facade()).Items()
	if err != nil || len(items) == 0 {
		return Empty(), err
	}
	if len(items) > 1 {
		return Sequence{}, typeError("the operand of the unary operator should be empty or singleton.")
	}
	value := items[0].(Atomic)
	if value.Type() == TypeUntypedAtomic {
		if value, err = toDouble(value); err != nil {
			return Sequence{}, err
		}
	}
	if !value.Type().Numeric() {
		return Sequence{}, typeError("unary operator not available for type %s", value.Type())
	}
	if !u.negate {
		return Singleton(value), nil
	}
	value, err = negate(value)
	if err != nil {
		return Sequence{}, err
	}
	return Singleton(value), nil
}

func negate(value Atomic) (Atomic, error) {
	switch primitive(value.Type()) {
	case TypeInteger:
		n := value.integer()
		if n == math.MinInt64 {
			return Atomic{}, errOverflow(OpSubtract)
		}
		return NewInteger(-n), nil
	case TypeDecimal:
		var d apd.Decimal
		d.Neg(value.decimal())
		return newAtomic(TypeDecimal, &d), nil
	case TypeFloat:
		return NewFloat(float32(-value.double())), nil
	default:
		return NewDouble(-value.double()), nil
	}
}

type rangeExpr struct {
	info
	from Expr
	to   Expr
}

// NewRange builds 'from to to': the integers between both bounds included.
// The integers are generated on demand.
func NewRange(from, to Expr) Expr {
	return rangeExpr{
		info: combine(Specificity{}, Sorted, from, to),
		from: from,
		to:   to,
	}
}

func (r rangeExpr) Evaluate(ctx Context, params *Parameters) (Sequence, error) {
	lower, ok, err := evaluateInteger(r.from, ctx, params)
	if err != nil || !ok {
		return Empty(), err
	}
	upper, ok, err := evaluateInteger(r.to, ctx, params)
	if err != nil || !ok || lower > upper {
		return Empty(), err
	}
	return Generate(func() Iterator {
		curr, done := lower, false
		return iteratorFunc(func() (Item, bool, error) {
			if done {
				return nil, false, nil
			}
			item := NewInteger(curr)
			if curr == upper || curr == math.MaxInt64 {
				done = true
			} else {
				curr++
			}
			return item, true, nil
		})
	}), nil
}

func evaluateInteger(expr Expr, ctx Context, params *Parameters) (int64, bool, error) {
	seq, err := expr.Evaluate(ctx, params)
	if err != nil {
		return 0, false, err
	}
	items, err := seq.Atomize(ctx.facade()).Items()
	if err != nil || len(items) == 0 {
		return 0, false, err
	}
	if len(items) > 1 {
		return 0, false, typeError("range bound should be empty or singleton")
	}
	value := items[0].(Atomic)
	if value.Type() == TypeUntypedAtomic {
		res := Cast(value, TypeInteger)
		if !res.Successful() {
			return 0, false, res.Err
		}
		value = res.Value
	}
	if !IsSubtypeOf(value.Type(), TypeInteger) {
		return 0, false, typeError("range bound should be xs:integer, got %s", value.Type())
	}
	return value.integer(), true, nil
}

func evaluateBoolean(expr Expr, ctx Context, params *Parameters) (bool, error) {
	seq, err := expr.Evaluate(ctx, params)
	if err != nil {
		return false, err
	}
	return seq.EffectiveBooleanValue()
}

func evaluateItems(expr Expr, ctx Context, params *Parameters) ([]Item, error) {
	seq, err := expr.Evaluate(ctx, params)
	if err != nil {
		return nil, err
	}
	return seq.Items()
}
