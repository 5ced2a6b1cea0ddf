package xpath

import (
	"errors"
	"math"
	"testing"
)

func nan() float64 {
	return math.NaN()
}

func mustCast(t *testing.T, str string, target Type) Atomic {
	t.Helper()
	res := Cast(NewString(str), target)
	if !res.Successful() {
		t.Fatalf("%q as %s: unexpected error: %s", str, target, res.Err)
	}
	return res.Value
}

func TestCastString(t *testing.T) {
	tests := []struct {
		Input  string
		Target Type
		Want   string
	}{
		{Input: "42", Target: TypeInteger, Want: "42"},
		{Input: " +007 ", Target: TypeInteger, Want: "7"},
		{Input: "-0", Target: TypeInteger, Want: "0"},
		{Input: "1.50", Target: TypeDecimal, Want: "1.5"},
		{Input: "-0.0", Target: TypeDecimal, Want: "0"},
		{Input: ".5", Target: TypeDecimal, Want: "0.5"},
		{Input: "NaN", Target: TypeDouble, Want: "NaN"},
		{Input: "-INF", Target: TypeDouble, Want: "-INF"},
		{Input: "INF", Target: TypeFloat, Want: "INF"},
		{Input: "-0", Target: TypeDouble, Want: "-0"},
		{Input: "1E100", Target: TypeDouble, Want: "1E100"},
		{Input: "1e-7", Target: TypeDouble, Want: "1E-7"},
		{Input: "123.5", Target: TypeDouble, Want: "123.5"},
		{Input: "1", Target: TypeBoolean, Want: "true"},
		{Input: "false", Target: TypeBoolean, Want: "false"},
		{Input: "0aff", Target: TypeHexBinary, Want: "0AFF"},
		{Input: "aGVsbG8=", Target: TypeBase64Binary, Want: "aGVsbG8="},
		{Input: "  a\tb  c ", Target: TypeToken, Want: "a b c"},
		{Input: "a\tb", Target: TypeNormalizedString, Want: "a b"},
		{Input: "en-US", Target: TypeLanguage, Want: "en-US"},
		{Input: "P1Y13M", Target: TypeYearMonthDuration, Want: "P2Y1M"},
		{Input: "PT36H", Target: TypeDayTimeDuration, Want: "P1DT12H"},
		{Input: "-P1DT0.5S", Target: TypeDayTimeDuration, Want: "-P1DT0.5S"},
		{Input: "P0D", Target: TypeDuration, Want: "PT0S"},
		{Input: "2024-02-29", Target: TypeDate, Want: "2024-02-29"},
		{Input: "2024-02-29T10:20:30.500+02:00", Target: TypeDateTime, Want: "2024-02-29T10:20:30.5+02:00"},
		{Input: "23:59:59Z", Target: TypeTime, Want: "23:59:59Z"},
		{Input: "--12-25", Target: TypeGMonthDay, Want: "--12-25"},
		{Input: "2024-05", Target: TypeGYearMonth, Want: "2024-05"},
	}
	for _, c := range tests {
		res := Cast(NewString(c.Input), c.Target)
		if !res.Successful() {
			t.Errorf("%q as %s: unexpected error: %s", c.Input, c.Target, res.Err)
			continue
		}
		if res.Value.Type() != c.Target {
			t.Errorf("%q as %s: wrong type %s", c.Input, c.Target, res.Value.Type())
		}
		if got := res.Value.String(); got != c.Want {
			t.Errorf("%q as %s: want %q, got %q", c.Input, c.Target, c.Want, got)
		}
	}
}

func TestCastInvalid(t *testing.T) {
	tests := []struct {
		Input  Atomic
		Target Type
		Code   string
	}{
		{Input: NewString("abc"), Target: TypeInteger, Code: CodeInvalidValue},
		{Input: NewString("1.5"), Target: TypeInteger, Code: CodeInvalidValue},
		{Input: NewString("300"), Target: TypeByte, Code: CodeInvalidValue},
		{Input: NewString("-1"), Target: TypeUnsignedInt, Code: CodeInvalidValue},
		{Input: NewString("0"), Target: TypePositiveInteger, Code: CodeInvalidValue},
		{Input: NewString("yes"), Target: TypeBoolean, Code: CodeInvalidValue},
		{Input: NewString("2023-02-29"), Target: TypeDate, Code: CodeInvalidValue},
		{Input: NewString("2024-01-01T10:00:00"), Target: TypeDateTimeStamp, Code: CodeInvalidValue},
		{Input: NewString("P1D"), Target: TypeYearMonthDuration, Code: CodeInvalidValue},
		{Input: NewString("PT"), Target: TypeDuration, Code: CodeInvalidValue},
		{Input: NewString("1a"), Target: TypeNCName, Code: CodeInvalidValue},
		{Input: NewString("xyz"), Target: TypeHexBinary, Code: CodeInvalidValue},
		{Input: NewString("p:name"), Target: TypeQName, Code: CodeQNameCast},
		{Input: NewDouble(math.NaN()), Target: TypeInteger, Code: CodeInvalidNumber},
		{Input: NewDouble(math.Inf(1)), Target: TypeDecimal, Code: CodeInvalidNumber},
		{Input: NewDouble(1e30), Target: TypeInteger, Code: CodeNumberTooLarge},
		{Input: NewInteger(1), Target: TypeDate, Code: CodeType},
		{Input: NewBoolean(true), Target: TypeDuration, Code: CodeType},
		{Input: NewString("1"), Target: TypeNumeric, Code: CodeAbstractCast},
		{Input: NewString("1"), Target: TypeAnyAtomic, Code: CodeAbstractCast},
	}
	for _, c := range tests {
		res := Cast(c.Input, c.Target)
		if res.Successful() {
			t.Errorf("%s as %s: expected failure, got %s", c.Input, c.Target, res.Value)
			continue
		}
		if !errors.Is(res.Err, Error{Code: c.Code}) {
			t.Errorf("%s as %s: want %s, got %v", c.Input, c.Target, c.Code, res.Err)
		}
	}
}

func TestCastNumeric(t *testing.T) {
	tests := []struct {
		Input  Atomic
		Target Type
		Want   string
	}{
		{Input: NewDouble(3.9), Target: TypeInteger, Want: "3"},
		{Input: NewDouble(-3.9), Target: TypeInteger, Want: "-3"},
		{Input: NewInteger(12), Target: TypeDouble, Want: "12"},
		{Input: NewInteger(7), Target: TypeDecimal, Want: "7"},
		{Input: NewDouble(0.25), Target: TypeDecimal, Want: "0.25"},
		{Input: NewBoolean(true), Target: TypeInteger, Want: "1"},
		{Input: NewInteger(0), Target: TypeBoolean, Want: "false"},
		{Input: NewDouble(math.NaN()), Target: TypeBoolean, Want: "false"},
		{Input: NewInteger(100), Target: TypeByte, Want: "100"},
		{Input: NewFloat(0.1), Target: TypeString, Want: "0.1"},
	}
	for _, c := range tests {
		res := Cast(c.Input, c.Target)
		if !res.Successful() {
			t.Errorf("%s as %s: unexpected error: %s", c.Input, c.Target, res.Err)
			continue
		}
		if got := res.Value.String(); got != c.Want {
			t.Errorf("%s as %s: want %q, got %q", c.Input, c.Target, c.Want, got)
		}
	}
}

func TestCastUnsignedLongLimit(t *testing.T) {
	res := Cast(NewString("9223372036854775807"), TypeUnsignedLong)
	if !res.Successful() || res.Value.String() != "9223372036854775807" {
		t.Errorf("largest int64 should be a valid xs:unsignedLong: %v", res.Err)
	}
	res = Cast(NewString("18446744073709551615"), TypeUnsignedLong)
	if !errors.Is(res.Err, Error{Code: CodeNumberTooLarge}) {
		t.Errorf("value above int64 range: want FOCA0003, got %v", res.Err)
	}
}

func TestCastRoundTrip(t *testing.T) {
	values := []Atomic{
		NewInteger(-12345),
		NewDouble(1.5e300),
		NewDouble(0.001),
		NewBoolean(true),
		mustCast(t, "123.456", TypeDecimal),
		mustCast(t, "P1Y2M3DT4H5M6.7S", TypeDuration),
		mustCast(t, "2000-01-01T00:00:00-05:00", TypeDateTime),
		mustCast(t, "12:00:00", TypeTime),
		mustCast(t, "---05", TypeGDay),
		mustCast(t, "DEADBEEF", TypeHexBinary),
	}
	for _, v := range values {
		str := Cast(v, TypeString)
		if !str.Successful() {
			t.Errorf("%s to string: unexpected error: %s", v.Type(), str.Err)
			continue
		}
		back := Cast(str.Value, v.Type())
		if !back.Successful() {
			t.Errorf("%s: %q can not be read back: %s", v.Type(), str.Value, back.Err)
			continue
		}
		if !back.Value.Equal(v) {
			t.Errorf("%s: round trip mismatched: %s != %s", v.Type(), back.Value, v)
		}
	}
}

func TestCastDateTime(t *testing.T) {
	tests := []struct {
		Input  string
		From   Type
		Target Type
		Want   string
	}{
		{Input: "2024-03-10T08:30:00Z", From: TypeDateTime, Target: TypeDate, Want: "2024-03-10Z"},
		{Input: "2024-03-10T08:30:00Z", From: TypeDateTime, Target: TypeTime, Want: "08:30:00Z"},
		{Input: "2024-03-10T08:30:00Z", From: TypeDateTime, Target: TypeGYear, Want: "2024Z"},
		{Input: "2024-03-10", From: TypeDate, Target: TypeDateTime, Want: "2024-03-10T00:00:00"},
		{Input: "2024-03-10", From: TypeDate, Target: TypeGMonth, Want: "--03"},
		{Input: "2024-03-10T24:00:00", From: TypeDateTime, Target: TypeDateTime, Want: "2024-03-11T00:00:00"},
	}
	for _, c := range tests {
		value := mustCast(t, c.Input, c.From)
		res := Cast(value, c.Target)
		if !res.Successful() {
			t.Errorf("%s as %s: unexpected error: %s", c.Input, c.Target, res.Err)
			continue
		}
		if got := res.Value.String(); got != c.Want {
			t.Errorf("%s as %s: want %q, got %q", c.Input, c.Target, c.Want, got)
		}
	}
}

func TestCastFirst(t *testing.T) {
	res := CastFirst(NewUntyped("12.5"), TypeInteger, TypeDecimal, TypeDouble)
	if !res.Successful() || res.Value.Type() != TypeDecimal {
		t.Errorf("12.5 should be read as xs:decimal, got %s (%v)", res.Value.Type(), res.Err)
	}
	res = CastFirst(NewUntyped("abc"), TypeInteger, TypeDouble)
	if res.Successful() {
		t.Errorf("abc should not be castable to a number")
	}
}

func TestInferType(t *testing.T) {
	tests := []struct {
		Input string
		Want  Type
	}{
		{Input: "42", Want: TypeInteger},
		{Input: "4.2", Want: TypeDecimal},
		{Input: "4.2e1", Want: TypeDouble},
		{Input: "true", Want: TypeBoolean},
		{Input: "2024-01-01", Want: TypeDate},
		{Input: "2024-01-01T00:00:00", Want: TypeDateTime},
		{Input: "10:00:00", Want: TypeTime},
		{Input: "PT1H", Want: TypeDayTimeDuration},
		{Input: "P1M", Want: TypeYearMonthDuration},
		{Input: "P1MT1H", Want: TypeDuration},
		{Input: "hello", Want: TypeString},
	}
	for _, c := range tests {
		if got := InferType(c.Input).Type(); got != c.Want {
			t.Errorf("%s: want %s, got %s", c.Input, c.Want, got)
		}
	}
}
