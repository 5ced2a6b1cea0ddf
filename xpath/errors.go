package xpath

import (
	"errors"
	"fmt"
)

const (
	CodeType            = "XPTY0004"
	CodeMixedPath       = "XPTY0018"
	CodeNotNode         = "XPTY0019"
	CodeStepNotNode     = "XPTY0020"
	CodeQNameCast       = "XPTY0117"
	CodeContextAbsent   = "XPDY0002"
	CodeUndefinedVar    = "XPST0008"
	CodeUndefinedFunc   = "XPST0017"
	CodeAbstractCast    = "XPST0080"
	CodeDivideByZero    = "FOAR0001"
	CodeInvalidOperands = "FOAR0002"
	CodeInvalidValue    = "FORG0001"
	CodeBooleanValue    = "FORG0006"
	CodeInvalidNumber   = "FOCA0002"
	CodeNumberTooLarge  = "FOCA0003"
	CodeNaNDuration     = "FOCA0005"
	CodeDateOverflow    = "FODT0001"
	CodeDurationRange   = "FODT0002"
	CodeArrayIndex      = "FOAY0001"
	CodeArrayLength     = "FOAY0002"
	CodeDynamicName     = "XQDY0074"
	CodeNoString        = "FOTY0014"
)

// Error is a failure identified by one of the error codes of the language.
// Two errors are considered the same by errors.Is when their codes match.
type Error struct {
	Code  string
	Cause string
}

func (e Error) Error() string {
	if e.Cause == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Cause)
}

func (e Error) Is(target error) bool {
	other, ok := target.(Error)
	return ok && other.Code == e.Code
}

var (
	ErrType            = Error{Code: CodeType}
	ErrDivideByZero    = Error{Code: CodeDivideByZero}
	ErrInvalidOperands = Error{Code: CodeInvalidOperands}
	ErrInvalidValue    = Error{Code: CodeInvalidValue}
	ErrBooleanValue    = Error{Code: CodeBooleanValue}
	ErrInvalidNumber   = Error{Code: CodeInvalidNumber}
	ErrDynamicName     = Error{Code: CodeDynamicName}
	ErrUndefinedVar    = Error{Code: CodeUndefinedVar}
	ErrUndefinedFunc   = Error{Code: CodeUndefinedFunc}
	ErrContextAbsent   = Error{Code: CodeContextAbsent}
	ErrArrayIndex      = Error{Code: CodeArrayIndex}
	ErrArrayLength     = Error{Code: CodeArrayLength}
	ErrDurationRange   = Error{Code: CodeDurationRange}
)

var (
	ErrConsumed    = errors.New("sequence already consumed")
	ErrLattice     = errors.New("malformed type lattice")
	ErrImplemented = errors.New("not implemented")
)

func newError(code, cause string, args ...any) error {
	if len(args) > 0 {
		cause = fmt.Sprintf(cause, args...)
	}
	return Error{
		Code:  code,
		Cause: cause,
	}
}

func typeError(cause string, args ...any) error {
	return newError(CodeType, cause, args...)
}

func errOperatorNotAvailable(op Operator, left, right Type) error {
	return typeError("%s not available for types %s and %s", op, left, right)
}

func errOperandArity(op Operator) error {
	if op.Comparison() {
		return typeError("Sequences to compare are not singleton")
	}
	return typeError("the operands of the %q operator should be empty or singleton.", op.String())
}

func errIdivByZero() error {
	return newError(CodeDivideByZero, "Divisor of idiv operator cannot be (-)0")
}

func errIdivOperands() error {
	return newError(CodeInvalidOperands, "One of the operands of idiv is NaN or the first operand is (-)INF")
}

func errDivideByZero() error {
	return newError(CodeDivideByZero, "division by zero")
}

func errOverflow(op Operator) error {
	return newError(CodeInvalidOperands, "%s: integer overflow", op)
}

func errBooleanValue() error {
	return newError(CodeBooleanValue, "effective boolean value undefined for multi-item non-boolean sequence")
}

func errCastUnsupported(from, to Type) error {
	return typeError("casting from %s to %s is not supported", from, to)
}

func errCastInvalid(str string, to Type) error {
	return newError(CodeInvalidValue, "%q is not a valid lexical value for %s", str, to)
}

func errDynamicName(name string) error {
	return newError(CodeDynamicName, "The value %q of a name expressions cannot be converted to an expanded QName.", name)
}

func errNameType() error {
	return typeError("a single xs:string or xs:untypedAtomic")
}
