package xpath

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/apd/v3"
)

// CastResult is the outcome of a cast. A failed cast is a value: callers
// decide whether to report it or to try something else.
type CastResult struct {
	Value Atomic
	Err   error
}

func (r CastResult) Successful() bool {
	return r.Err == nil
}

func castOk(value Atomic) CastResult {
	return CastResult{Value: value}
}

func castFail(err error) CastResult {
	return CastResult{Err: err}
}

func castWith(kind Type, value any, err error) CastResult {
	if err != nil {
		return castFail(err)
	}
	return castOk(newAtomic(kind, value))
}

// Cast converts value to the target type.
func Cast(value Atomic, target Type) CastResult {
	from := value.Type()
	if from == target {
		return castOk(value)
	}
	if target.abstract() {
		return castFail(newError(CodeAbstractCast, "can not cast to abstract type %s", target))
	}
	switch {
	case target == TypeUntypedAtomic || IsSubtypeOf(target, TypeString):
		return castToStringLike(value, target)
	case target == TypeAnyURI:
		return castToURI(value)
	case target == TypeBoolean:
		return castToBoolean(value)
	case IsSubtypeOf(target, TypeInteger):
		return castToInteger(value, target)
	case target == TypeDecimal:
		return castToDecimal(value)
	case target == TypeFloat || target == TypeDouble:
		return castToFloating(value, target)
	case IsSubtypeOf(target, TypeDuration):
		return castToDuration(value, target)
	case target.Category() == CategoryTemporal:
		return castToTemporal(value, target)
	case target.Category() == CategoryBinary:
		return castToBinary(value, target)
	case target == TypeQName:
		return castToQName(value)
	default:
		return castFail(errCastUnsupported(from, target))
	}
}

// CastFirst tries each target in order and returns the first successful
// cast. The failure of the last target is returned when none succeeds.
func CastFirst(value Atomic, targets ...Type) CastResult {
	res := castFail(errCastUnsupported(value.Type(), TypeAnyAtomic))
	for _, t := range targets {
		if res = Cast(value, t); res.Successful() {
			break
		}
	}
	return res
}

func Castable(value Atomic, target Type) bool {
	return Cast(value, target).Successful()
}

func stringLike(t Type) bool {
	return t == TypeUntypedAtomic || t == TypeAnyURI || IsSubtypeOf(t, TypeString)
}

// lexical gives the canonical string form of any atomic value.
func lexical(value Atomic) string {
	kind := value.Type()
	switch {
	case stringLike(kind):
		return value.str()
	case kind == TypeBoolean:
		return strconv.FormatBool(value.boolean())
	case IsSubtypeOf(kind, TypeInteger):
		return strconv.FormatInt(value.integer(), 10)
	case kind == TypeDecimal:
		return formatDecimal(value.decimal())
	case kind == TypeFloat:
		f, _ := value.value.(float32)
		return formatDouble(float64(f), 32)
	case kind == TypeDouble:
		f, _ := value.value.(float64)
		return formatDouble(f, 64)
	case kind == TypeYearMonthDuration:
		return formatYearMonth(value.duration().Months)
	case kind == TypeDayTimeDuration:
		return formatDayTime(value.duration().Span)
	case kind == TypeDuration:
		return value.duration().String()
	case kind.Category() == CategoryTemporal:
		return value.datetime().Format(kind)
	case kind == TypeHexBinary:
		return strings.ToUpper(hex.EncodeToString(value.binary()))
	case kind == TypeBase64Binary:
		return base64.StdEncoding.EncodeToString(value.binary())
	case kind.Category() == CategoryName:
		return value.qname().QualifiedName()
	default:
		return ""
	}
}

// formatDouble renders a floating point number the way the language
// expects: plain notation for magnitudes within [1e-6, 1e21), an upper case
// exponent without sign otherwise.
func formatDouble(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case f == 0 && math.Signbit(f):
		return "-0"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, bits)
	}
	str := strconv.FormatFloat(f, 'e', -1, bits)
	mant, exp, _ := strings.Cut(str, "e")
	n, _ := strconv.Atoi(exp)
	return mant + "E" + strconv.Itoa(n)
}

var (
	languagePattern = regexp.MustCompile(`^[a-zA-Z]{1,8}(-[a-zA-Z0-9]{1,8})*$`)
	integerPattern  = regexp.MustCompile(`^[+-]?\d+$`)
	floatPattern    = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
)

func castToStringLike(value Atomic, target Type) CastResult {
	str := lexical(value)
	switch target {
	case TypeString, TypeUntypedAtomic:
		return castOk(newAtomic(target, str))
	case TypeNormalizedString:
		str = normalizeSpace(str, false)
	default:
		str = normalizeSpace(str, true)
	}
	var valid bool
	switch target {
	case TypeNormalizedString, TypeToken:
		valid = true
	case TypeLanguage:
		valid = languagePattern.MatchString(str)
	case TypeNMTOKEN:
		valid = str != "" && strings.IndexFunc(str, func(r rune) bool {
			return !isNameChar(r)
		}) < 0
	case TypeName:
		valid = isName(str)
	case TypeNCName:
		valid = isNCName(str)
	}
	if !valid {
		return castFail(errCastInvalid(str, target))
	}
	return castOk(newAtomic(target, str))
}

// normalizeSpace replaces tabs and newlines by spaces. When collapse is set,
// runs of spaces are reduced to one and the result is trimmed.
func normalizeSpace(str string, collapse bool) string {
	str = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, str)
	if collapse {
		str = strings.Join(strings.Fields(str), " ")
	}
	return str
}

func castToURI(value Atomic) CastResult {
	if !stringLike(value.Type()) {
		return castFail(errCastUnsupported(value.Type(), TypeAnyURI))
	}
	return castOk(NewAnyURI(strings.TrimSpace(value.str())))
}

func castToBoolean(value Atomic) CastResult {
	kind := value.Type()
	switch {
	case kind.Numeric():
		b, _ := booleanValue(value)
		return castOk(NewBoolean(b))
	case stringLike(kind) && kind != TypeAnyURI:
		switch str := strings.TrimSpace(value.str()); str {
		case "true", "1":
			return castOk(NewBoolean(true))
		case "false", "0":
			return castOk(NewBoolean(false))
		default:
			return castFail(errCastInvalid(str, TypeBoolean))
		}
	default:
		return castFail(errCastUnsupported(kind, TypeBoolean))
	}
}

type integerRange struct {
	min, max int64
}

var integerRanges = map[Type]integerRange{
	TypeNonPositiveInteger: {math.MinInt64, 0},
	TypeNegativeInteger:    {math.MinInt64, -1},
	TypeInt:                {math.MinInt32, math.MaxInt32},
	TypeShort:              {math.MinInt16, math.MaxInt16},
	TypeByte:               {math.MinInt8, math.MaxInt8},
	TypeNonNegativeInteger: {0, math.MaxInt64},
	// integers are held in an int64: xs:unsignedLong stops at MaxInt64.
	TypeUnsignedLong:       {0, math.MaxInt64},
	TypeUnsignedInt:        {0, math.MaxUint32},
	TypeUnsignedShort:      {0, math.MaxUint16},
	TypeUnsignedByte:       {0, math.MaxUint8},
	TypePositiveInteger:    {1, math.MaxInt64},
}

func castToInteger(value Atomic, target Type) CastResult {
	var (
		kind = value.Type()
		num  int64
	)
	switch {
	case IsSubtypeOf(kind, TypeInteger):
		num = value.integer()
	case kind == TypeDecimal:
		n, err := truncateDecimal(value.decimal())
		if err != nil {
			return castFail(err)
		}
		num = n
	case kind == TypeFloat || kind == TypeDouble:
		f := value.double()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return castFail(newError(CodeInvalidNumber, "%s can not be cast to %s", lexical(value), target))
		}
		f = math.Trunc(f)
		if f >= math.MaxInt64 || f < math.MinInt64 {
			return castFail(newError(CodeNumberTooLarge, "%s does not fit into %s", lexical(value), target))
		}
		num = int64(f)
	case kind == TypeBoolean:
		if value.boolean() {
			num = 1
		}
	case stringLike(kind) && kind != TypeAnyURI:
		str := strings.TrimSpace(value.str())
		if !integerPattern.MatchString(str) {
			return castFail(errCastInvalid(str, target))
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return castFail(newError(CodeNumberTooLarge, "%s does not fit into %s", str, target))
		}
		num = n
	default:
		return castFail(errCastUnsupported(kind, target))
	}
	if r, ok := integerRanges[target]; ok && (num < r.min || num > r.max) {
		return castFail(newError(CodeInvalidValue, "%d is out of range for %s", num, target))
	}
	return castOk(newAtomic(target, num))
}

func castToDecimal(value Atomic) CastResult {
	kind := value.Type()
	switch {
	case IsSubtypeOf(kind, TypeInteger):
		return castOk(newAtomic(TypeDecimal, apd.New(value.integer(), 0)))
	case kind == TypeFloat || kind == TypeDouble:
		d, err := decimalFromFloat(value.double())
		return castWith(TypeDecimal, d, err)
	case kind == TypeBoolean:
		var n int64
		if value.boolean() {
			n = 1
		}
		return castOk(newAtomic(TypeDecimal, apd.New(n, 0)))
	case stringLike(kind) && kind != TypeAnyURI:
		d, err := parseDecimal(value.str())
		return castWith(TypeDecimal, d, err)
	default:
		return castFail(errCastUnsupported(kind, TypeDecimal))
	}
}

func castToFloating(value Atomic, target Type) CastResult {
	var (
		kind = value.Type()
		num  float64
	)
	switch {
	case kind.Numeric():
		num = value.double()
	case kind == TypeBoolean:
		if value.boolean() {
			num = 1
		}
	case stringLike(kind) && kind != TypeAnyURI:
		f, err := parseFloating(value.str(), target)
		if err != nil {
			return castFail(err)
		}
		num = f
	default:
		return castFail(errCastUnsupported(kind, target))
	}
	if target == TypeFloat {
		return castOk(NewFloat(float32(num)))
	}
	return castOk(NewDouble(num))
}

func parseFloating(str string, target Type) (float64, error) {
	str = strings.TrimSpace(str)
	switch str {
	case "NaN":
		return math.NaN(), nil
	case "INF", "+INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	}
	if !floatPattern.MatchString(str) {
		return 0, errCastInvalid(str, target)
	}
	bits := 64
	if target == TypeFloat {
		bits = 32
	}
	f, err := strconv.ParseFloat(str, bits)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, errCastInvalid(str, target)
	}
	return f, nil
}

func castToDuration(value Atomic, target Type) CastResult {
	kind := value.Type()
	switch {
	case IsSubtypeOf(kind, TypeDuration):
		dur := value.duration()
		switch target {
		case TypeYearMonthDuration:
			dur.Span = 0
		case TypeDayTimeDuration:
			dur.Months = 0
		}
		return castOk(newAtomic(target, dur))
	case stringLike(kind) && kind != TypeAnyURI:
		dur, err := parseDuration(value.str(), target)
		return castWith(target, dur, err)
	default:
		return castFail(errCastUnsupported(kind, target))
	}
}

func castToTemporal(value Atomic, target Type) CastResult {
	kind := value.Type()
	switch {
	case stringLike(kind) && kind != TypeAnyURI:
		dt, err := ParseTemporal(value.str(), target)
		return castWith(target, dt, err)
	case IsSubtypeOf(kind, TypeDateTime):
		dt := value.datetime()
		if target == TypeDateTimeStamp && !dt.Zoned {
			return castFail(errCastInvalid(lexical(value), target))
		}
		return castOk(newAtomic(target, dt.project(target)))
	case kind == TypeDate:
		if target == TypeTime || (target == TypeDateTimeStamp && !value.datetime().Zoned) {
			break
		}
		if IsSubtypeOf(target, TypeDateTime) {
			return castOk(newAtomic(target, value.datetime()))
		}
		return castOk(newAtomic(target, value.datetime().project(target)))
	}
	return castFail(errCastUnsupported(kind, target))
}

func castToBinary(value Atomic, target Type) CastResult {
	kind := value.Type()
	switch {
	case kind.Category() == CategoryBinary:
		return castOk(newAtomic(target, value.binary()))
	case stringLike(kind) && kind != TypeAnyURI:
		var (
			str = strings.TrimSpace(value.str())
			buf []byte
			err error
		)
		if target == TypeHexBinary {
			buf, err = hex.DecodeString(str)
		} else {
			buf, err = base64.StdEncoding.DecodeString(strings.Map(dropSpace, str))
		}
		if err != nil {
			return castFail(errCastInvalid(str, target))
		}
		return castOk(newAtomic(target, buf))
	default:
		return castFail(errCastUnsupported(kind, target))
	}
}

func dropSpace(r rune) rune {
	if unicode.IsSpace(r) {
		return -1
	}
	return r
}

// castToQName only accepts names: building a QName from a string needs
// the in-scope namespaces, see EvaluateName.
func castToQName(value Atomic) CastResult {
	kind := value.Type()
	switch {
	case kind.Category() == CategoryName:
		return castOk(newAtomic(TypeQName, value.qname()))
	case stringLike(kind):
		return castFail(newError(CodeQNameCast, "casting %s to xs:QName requires the static context", kind))
	default:
		return castFail(errCastUnsupported(kind, TypeQName))
	}
}

// InferType gives the most specific type a lexical value can be read as.
func InferType(str string) Atomic {
	res := CastFirst(NewUntyped(str),
		TypeInteger,
		TypeDecimal,
		TypeDouble,
		TypeBoolean,
		TypeDateTime,
		TypeDate,
		TypeTime,
		TypeDayTimeDuration,
		TypeYearMonthDuration,
		TypeDuration,
	)
	if res.Successful() {
		return res.Value
	}
	return NewString(str)
}
