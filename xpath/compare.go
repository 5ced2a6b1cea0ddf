package xpath

import (
	"bytes"
	"cmp"
	"math"
	"strings"
)

type compareFunc func(Atomic, Atomic) (int, bool)

func resolveComparison(op Operator, left, right Type) (BinaryFunc, error) {
	var castLeft, castRight coerceFunc
	if left == TypeUntypedAtomic {
		left, castLeft = TypeString, toString
	}
	if right == TypeUntypedAtomic {
		right, castRight = TypeString, toString
	}
	fn, ordered := comparator(left, right)
	if fn == nil || (!ordered && op != OpEqual && op != OpNotEqual) {
		return nil, errOperatorNotAvailable(op, left, right)
	}
	test := func(a, b Atomic) (Atomic, error) {
		res, ok := fn(a, b)
		if !ok {
			return NewBoolean(op == OpNotEqual), nil
		}
		return NewBoolean(compareResult(op, res)), nil
	}
	return coerce(test, castLeft, castRight), nil
}

func toString(value Atomic) (Atomic, error) {
	res := Cast(value, TypeString)
	return res.Value, res.Err
}

func compareResult(op Operator, res int) bool {
	switch op {
	case OpEqual:
		return res == 0
	case OpNotEqual:
		return res != 0
	case OpLess:
		return res < 0
	case OpLessEq:
		return res <= 0
	case OpGreater:
		return res > 0
	case OpGreaterEq:
		return res >= 0
	default:
		return false
	}
}

// comparator gives the function ordering two values of the given types and
// whether the types support more than equality. A false second result from
// the returned function means the values are unordered (NaN).
func comparator(left, right Type) (compareFunc, bool) {
	switch {
	case both(TypeNumeric)(left, right):
		return numericComparator(promote(left, right)), true
	case stringLike(left) && stringLike(right):
		return func(a, b Atomic) (int, bool) {
			return strings.Compare(a.str(), b.str()), true
		}, true
	case both(TypeBoolean)(left, right):
		return func(a, b Atomic) (int, bool) {
			return cmpBool(a.boolean(), b.boolean()), true
		}, true
	case both(TypeYearMonthDuration)(left, right):
		return func(a, b Atomic) (int, bool) {
			return cmp.Compare(a.duration().Months, b.duration().Months), true
		}, true
	case both(TypeDayTimeDuration)(left, right):
		return func(a, b Atomic) (int, bool) {
			return cmp.Compare(a.duration().Span, b.duration().Span), true
		}, true
	case both(TypeDuration)(left, right):
		return func(a, b Atomic) (int, bool) {
			if a.duration().Equal(b.duration()) {
				return 0, true
			}
			return 1, true
		}, false
	case sameTemporal(left, right):
		return func(a, b Atomic) (int, bool) {
			return a.datetime().Compare(b.datetime()), true
		}, true
	case left.Category() == CategoryTemporal && left == right:
		return func(a, b Atomic) (int, bool) {
			return a.datetime().Compare(b.datetime()), true
		}, false
	case both(TypeQName)(left, right) || both(TypeNOTATION)(left, right):
		return func(a, b Atomic) (int, bool) {
			if a.qname().Equal(b.qname()) {
				return 0, true
			}
			return 1, true
		}, false
	case left.Category() == CategoryBinary && left == right:
		return func(a, b Atomic) (int, bool) {
			return bytes.Compare(a.binary(), b.binary()), true
		}, false
	default:
		return nil, false
	}
}

func numericComparator(kind Type) compareFunc {
	switch kind {
	case TypeInteger:
		return func(a, b Atomic) (int, bool) {
			return cmp.Compare(a.integer(), b.integer()), true
		}
	case TypeDecimal:
		return func(a, b Atomic) (int, bool) {
			return a.decimal().Cmp(b.decimal()), true
		}
	default:
		return func(a, b Atomic) (int, bool) {
			x, y := a.double(), b.double()
			if kind == TypeFloat {
				x, y = float64(float32(x)), float64(float32(y))
			}
			if math.IsNaN(x) || math.IsNaN(y) {
				return 0, false
			}
			return cmp.Compare(x, y), true
		}
	}
}

func cmpBool(left, right bool) int {
	switch {
	case left == right:
		return 0
	case !left:
		return -1
	default:
		return 1
	}
}

// generalCoerce converts the operands of a general comparison: an
// untypedAtomic value takes the type of the other operand, or xs:double when
// that operand is numeric, or xs:string when both are untyped.
func generalCoerce(left, right Atomic) (Atomic, Atomic, error) {
	var (
		lt  = left.Type()
		rt  = right.Type()
		err error
	)
	switch {
	case lt == TypeUntypedAtomic && rt == TypeUntypedAtomic:
		return left, right, nil
	case lt == TypeUntypedAtomic:
		left, err = coerceTo(left, rt)
	case rt == TypeUntypedAtomic:
		right, err = coerceTo(right, lt)
	}
	return left, right, err
}

func coerceTo(value Atomic, other Type) (Atomic, error) {
	target := other
	switch {
	case other.Numeric():
		target = TypeDouble
	case stringLike(other):
		target = TypeString
	}
	res := Cast(value, target)
	return res.Value, res.Err
}
