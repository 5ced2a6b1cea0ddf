package xpath

import (
	"math"
	"regexp"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// decimals carry 34 significant digits, as decimal128 does.
var decimalContext = apd.BaseContext.WithPrecision(34)

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

func parseDecimal(str string) (*apd.Decimal, error) {
	str = strings.TrimSpace(str)
	if !decimalPattern.MatchString(str) {
		return nil, errCastInvalid(str, TypeDecimal)
	}
	d, _, err := apd.NewFromString(str)
	if err != nil {
		return nil, errCastInvalid(str, TypeDecimal)
	}
	return d, nil
}

func decimalFromFloat(f float64) (*apd.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, newError(CodeInvalidNumber, "%s can not be converted to xs:decimal", formatDouble(f, 64))
	}
	var d apd.Decimal
	if _, err := d.SetFloat64(f); err != nil {
		return nil, newError(CodeInvalidNumber, err.Error())
	}
	return &d, nil
}

// truncateDecimal drops the fractional part of d and fits the rest in an
// int64.
func truncateDecimal(d *apd.Decimal) (int64, error) {
	var integ, frac apd.Decimal
	d.Modf(&integ, &frac)
	i, err := integ.Int64()
	if err != nil {
		return 0, newError(CodeNumberTooLarge, "%s does not fit into xs:integer", formatDecimal(d))
	}
	return i, nil
}

func formatDecimal(d *apd.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	var r apd.Decimal
	r.Reduce(d)
	return r.Text('f')
}

func decimalOp(op Operator, left, right *apd.Decimal) (*apd.Decimal, error) {
	var (
		res apd.Decimal
		err error
	)
	switch op {
	case OpAdd:
		_, err = decimalContext.Add(&res, left, right)
	case OpSubtract:
		_, err = decimalContext.Sub(&res, left, right)
	case OpMultiply:
		_, err = decimalContext.Mul(&res, left, right)
	case OpDivide:
		if right.IsZero() {
			return nil, errDivideByZero()
		}
		_, err = decimalContext.Quo(&res, left, right)
	case OpIntegerDivide:
		if right.IsZero() {
			return nil, errIdivByZero()
		}
		_, err = decimalContext.QuoInteger(&res, left, right)
	case OpModulo:
		if right.IsZero() {
			return nil, errDivideByZero()
		}
		_, err = decimalContext.Rem(&res, left, right)
	default:
		return nil, ErrImplemented
	}
	if err != nil {
		return nil, newError(CodeInvalidOperands, "%s: %s", op, err)
	}
	return &res, nil
}

// ratio divides two integral quantities and gives the exact decimal
// quotient.
func ratio(left, right int64) (*apd.Decimal, error) {
	return decimalOp(OpDivide, apd.New(left, 0), apd.New(right, 0))
}
