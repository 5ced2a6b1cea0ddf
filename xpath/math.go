package xpath

import (
	"math"
	"time"
)

type Operator uint8

const (
	OpAdd Operator = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpIntegerDivide
	OpModulo
	OpEqual
	OpNotEqual
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
)

var operatorNames = []struct {
	name   string
	symbol string
}{
	OpAdd:           {"addOp", "+"},
	OpSubtract:      {"subtractOp", "-"},
	OpMultiply:      {"multiplyOp", "*"},
	OpDivide:        {"divOp", "div"},
	OpIntegerDivide: {"idivOp", "idiv"},
	OpModulo:        {"modOp", "mod"},
	OpEqual:         {"eqOp", "eq"},
	OpNotEqual:      {"neOp", "ne"},
	OpLess:          {"ltOp", "lt"},
	OpLessEq:        {"leOp", "le"},
	OpGreater:       {"gtOp", "gt"},
	OpGreaterEq:     {"geOp", "ge"},
}

// ParseOperator accepts the name of an operator (addOp) as well as its
// symbol (+).
func ParseOperator(str string) (Operator, bool) {
	for i, n := range operatorNames {
		if n.name == str || n.symbol == str {
			return Operator(i), true
		}
	}
	return 0, false
}

func (o Operator) String() string {
	if int(o) >= len(operatorNames) {
		return "unknownOp"
	}
	return operatorNames[o].name
}

func (o Operator) Symbol() string {
	if int(o) >= len(operatorNames) {
		return "?"
	}
	return operatorNames[o].symbol
}

func (o Operator) Arithmetic() bool {
	return o <= OpModulo
}

func (o Operator) Comparison() bool {
	return o >= OpEqual && o <= OpGreaterEq
}

// BinaryFunc is the computation resolved for one operator and one pair of
// operand types.
type BinaryFunc func(Atomic, Atomic) (Atomic, error)

// ResolveOperator gives the function computing op for operands of the given
// types, without going through a cache.
func ResolveOperator(op Operator, left, right Type) (BinaryFunc, error) {
	if op.Comparison() {
		return resolveComparison(op, left, right)
	}
	return resolveArithmetic(op, left, right)
}

type coerceFunc func(Atomic) (Atomic, error)

func toDouble(value Atomic) (Atomic, error) {
	res := Cast(value, TypeDouble)
	return res.Value, res.Err
}

// coerce wraps fn so that its operands are converted before the call.
func coerce(fn BinaryFunc, left, right coerceFunc) BinaryFunc {
	if left == nil && right == nil {
		return fn
	}
	return func(a, b Atomic) (Atomic, error) {
		var err error
		if left != nil {
			if a, err = left(a); err != nil {
				return a, err
			}
		}
		if right != nil {
			if b, err = right(b); err != nil {
				return b, err
			}
		}
		return fn(a, b)
	}
}

type pairTest func(Type, Type) bool

func both(t Type) pairTest {
	return pair(t, t)
}

func pair(left, right Type) pairTest {
	return func(a, b Type) bool {
		return IsSubtypeOf(a, left) && IsSubtypeOf(b, right)
	}
}

func sameTemporal(a, b Type) bool {
	for _, t := range []Type{TypeDateTime, TypeDate, TypeTime} {
		if IsSubtypeOf(a, t) && IsSubtypeOf(b, t) {
			return true
		}
	}
	return false
}

func dateOrTime(t Type) bool {
	return IsSubtypeOf(t, TypeDateTime) || t == TypeDate || t == TypeTime
}

func dayOrMonth(t Type) bool {
	return t == TypeYearMonthDuration || t == TypeDayTimeDuration
}

func resolveArithmetic(op Operator, left, right Type) (BinaryFunc, error) {
	var castLeft, castRight coerceFunc
	if left == TypeUntypedAtomic {
		left, castLeft = TypeDouble, toDouble
	}
	if right == TypeUntypedAtomic {
		right, castRight = TypeDouble, toDouble
	}
	fn := arithmeticFunc(op, left, right)
	if fn == nil {
		return nil, errOperatorNotAvailable(op, left, right)
	}
	return coerce(fn, castLeft, castRight), nil
}

func arithmeticFunc(op Operator, left, right Type) BinaryFunc {
	switch {
	case both(TypeNumeric)(left, right):
		return numericFunc(op, promote(left, right))
	case both(TypeYearMonthDuration)(left, right):
		return monthsFunc(op)
	case pair(TypeYearMonthDuration, TypeNumeric)(left, right):
		return scaleFunc(op, TypeYearMonthDuration, false)
	case pair(TypeNumeric, TypeYearMonthDuration)(left, right):
		return scaleFunc(op, TypeYearMonthDuration, true)
	case both(TypeDayTimeDuration)(left, right):
		return spanFunc(op)
	case pair(TypeDayTimeDuration, TypeNumeric)(left, right):
		return scaleFunc(op, TypeDayTimeDuration, false)
	case pair(TypeNumeric, TypeDayTimeDuration)(left, right):
		return scaleFunc(op, TypeDayTimeDuration, true)
	case sameTemporal(left, right):
		if op != OpSubtract {
			return nil
		}
		return func(a, b Atomic) (Atomic, error) {
			span, err := a.datetime().Sub(b.datetime())
			if err != nil {
				return Atomic{}, err
			}
			return NewDayTimeDuration(span), nil
		}
	case dateOrTime(left) && dayOrMonth(right):
		return moveFunc(op, left, right, false)
	case dayOrMonth(left) && dateOrTime(right):
		return moveFunc(op, right, left, true)
	default:
		return nil
	}
}

func numericFunc(op Operator, kind Type) BinaryFunc {
	if op == OpIntegerDivide {
		return integerDivide(kind)
	}
	switch kind {
	case TypeInteger:
		if op == OpDivide {
			return func(a, b Atomic) (Atomic, error) {
				if b.integer() == 0 {
					return Atomic{}, errDivideByZero()
				}
				res, err := ratio(a.integer(), b.integer())
				if err != nil {
					return Atomic{}, err
				}
				return newAtomic(TypeDecimal, res), nil
			}
		}
		return func(a, b Atomic) (Atomic, error) {
			res, err := integerOp(op, a.integer(), b.integer())
			return NewInteger(res), err
		}
	case TypeDecimal:
		return func(a, b Atomic) (Atomic, error) {
			res, err := decimalOp(op, a.decimal(), b.decimal())
			if err != nil {
				return Atomic{}, err
			}
			return newAtomic(TypeDecimal, res), nil
		}
	case TypeFloat:
		return func(a, b Atomic) (Atomic, error) {
			res := floatOp(op, a.double(), b.double())
			return NewFloat(float32(res)), nil
		}
	default:
		return func(a, b Atomic) (Atomic, error) {
			return NewDouble(floatOp(op, a.double(), b.double())), nil
		}
	}
}

func integerOp(op Operator, left, right int64) (int64, error) {
	var res int64
	switch op {
	case OpAdd:
		res = left + right
		if (left > 0 && right > 0 && res < 0) || (left < 0 && right < 0 && res >= 0) {
			return 0, errOverflow(op)
		}
	case OpSubtract:
		res = left - right
		if (left >= 0 && right < 0 && res < 0) || (left < 0 && right > 0 && res >= 0) {
			return 0, errOverflow(op)
		}
	case OpMultiply:
		if left == 0 || right == 0 {
			return 0, nil
		}
		res = left * right
		if res/right != left || (left == -1 && right == math.MinInt64) || (right == -1 && left == math.MinInt64) {
			return 0, errOverflow(op)
		}
	case OpModulo:
		if right == 0 {
			return 0, errDivideByZero()
		}
		if right == -1 {
			return 0, nil
		}
		res = left % right
	default:
		return 0, ErrImplemented
	}
	return res, nil
}

func floatOp(op Operator, left, right float64) float64 {
	switch op {
	case OpAdd:
		return left + right
	case OpSubtract:
		return left - right
	case OpMultiply:
		return left * right
	case OpDivide:
		return left / right
	case OpModulo:
		return math.Mod(left, right)
	default:
		return math.NaN()
	}
}

func integerDivide(kind Type) BinaryFunc {
	switch kind {
	case TypeInteger:
		return func(a, b Atomic) (Atomic, error) {
			x, y := a.integer(), b.integer()
			if y == 0 {
				return Atomic{}, errIdivByZero()
			}
			if x == math.MinInt64 && y == -1 {
				return Atomic{}, errOverflow(OpIntegerDivide)
			}
			return NewInteger(x / y), nil
		}
	case TypeDecimal:
		return func(a, b Atomic) (Atomic, error) {
			res, err := decimalOp(OpIntegerDivide, a.decimal(), b.decimal())
			if err != nil {
				return Atomic{}, err
			}
			n, err := truncateDecimal(res)
			if err != nil {
				return Atomic{}, errOverflow(OpIntegerDivide)
			}
			return NewInteger(n), nil
		}
	default:
		return func(a, b Atomic) (Atomic, error) {
			x, y := a.double(), b.double()
			if y == 0 {
				return Atomic{}, errIdivByZero()
			}
			if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) {
				return Atomic{}, errIdivOperands()
			}
			if math.IsInf(y, 0) {
				return NewInteger(0), nil
			}
			q := math.Trunc(x / y)
			if q >= math.MaxInt64 || q < math.MinInt64 {
				return Atomic{}, errOverflow(OpIntegerDivide)
			}
			return NewInteger(int64(q)), nil
		}
	}
}

func monthsFunc(op Operator) BinaryFunc {
	switch op {
	case OpAdd, OpSubtract:
		return func(a, b Atomic) (Atomic, error) {
			right := b.duration().Months
			if op == OpSubtract {
				right = -right
			}
			res, err := addMonths(a.duration().Months, right)
			return NewYearMonthDuration(res), err
		}
	case OpDivide:
		return func(a, b Atomic) (Atomic, error) {
			if b.duration().Months == 0 {
				return Atomic{}, errDivideByZero()
			}
			res, err := ratio(a.duration().Months, b.duration().Months)
			if err != nil {
				return Atomic{}, err
			}
			return newAtomic(TypeDecimal, res), nil
		}
	default:
		return nil
	}
}

func spanFunc(op Operator) BinaryFunc {
	switch op {
	case OpAdd, OpSubtract:
		return func(a, b Atomic) (Atomic, error) {
			right := b.duration().Span
			if op == OpSubtract {
				right = -right
			}
			res, err := addSpan(a.duration().Span, right)
			return NewDayTimeDuration(res), err
		}
	case OpDivide:
		return func(a, b Atomic) (Atomic, error) {
			if b.duration().Span == 0 {
				return Atomic{}, errDivideByZero()
			}
			res, err := ratio(int64(a.duration().Span), int64(b.duration().Span))
			if err != nil {
				return Atomic{}, err
			}
			return newAtomic(TypeDecimal, res), nil
		}
	default:
		return nil
	}
}

// scaleFunc multiplies or divides a duration by a number. When swapped is
// set the number is the left operand and only multiplication is allowed.
func scaleFunc(op Operator, kind Type, swapped bool) BinaryFunc {
	if op != OpMultiply && (op != OpDivide || swapped) {
		return nil
	}
	return func(a, b Atomic) (Atomic, error) {
		if swapped {
			a, b = b, a
		}
		var (
			dur     = a.duration()
			factor  = b.double()
			inverse = op == OpDivide
		)
		if kind == TypeYearMonthDuration {
			res, err := scaleDuration(dur.Months, factor, inverse)
			return NewYearMonthDuration(res), err
		}
		res, err := scaleDuration(int64(dur.Span), factor, inverse)
		return NewDayTimeDuration(time.Duration(res)), err
	}
}

// moveFunc adds or subtracts a duration to a date or a time. The kind of
// the date/time operand is kept. A duration on the left is only accepted
// for addition.
func moveFunc(op Operator, kind, duration Type, swapped bool) BinaryFunc {
	if op != OpAdd && (op != OpSubtract || swapped) {
		return nil
	}
	if kind == TypeTime && duration != TypeDayTimeDuration {
		return nil
	}
	result := kind
	if IsSubtypeOf(kind, TypeDateTime) {
		result = TypeDateTime
	}
	return func(a, b Atomic) (Atomic, error) {
		if swapped {
			a, b = b, a
		}
		dur := b.duration()
		if op == OpSubtract {
			dur = dur.Negate()
		}
		dt := a.datetime().addDuration(dur, kind)
		return newAtomic(result, dt), nil
	}
}
