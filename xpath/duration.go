package xpath

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Duration holds the two independent parts of a xs:duration: a number of
// months and an exact day-time span.
type Duration struct {
	Months int64
	Span   time.Duration
}

var durationPattern = regexp.MustCompile(`^(-)?P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:\.(\d+))?S)?)?$`)

const day = 24 * time.Hour

func ParseDuration(str string) (Duration, error) {
	return parseDuration(str, TypeDuration)
}

func parseDuration(str string, kind Type) (Duration, error) {
	var dur Duration
	str = strings.TrimSpace(str)
	parts := durationPattern.FindStringSubmatch(str)
	if parts == nil || str == "P" || str == "-P" || strings.HasSuffix(str, "T") {
		return dur, errCastInvalid(str, kind)
	}
	hasYM := parts[2] != "" || parts[3] != ""
	hasDT := parts[4] != "" || parts[5] != "" || parts[6] != "" || parts[7] != ""
	if (kind == TypeYearMonthDuration && hasDT) || (kind == TypeDayTimeDuration && hasYM) {
		return dur, errCastInvalid(str, kind)
	}
	atoi := func(s string) (int64, error) {
		if s == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, errDurationOverflow()
		}
		return n, nil
	}
	var (
		months int64
		span   time.Duration
	)
	for i, unit := range []int64{12, 1} {
		n, err := atoi(parts[2+i])
		if err != nil {
			return dur, err
		}
		if n, err = scaleCount(n, unit); err != nil {
			return dur, err
		}
		if months, err = addMonths(months, n); err != nil {
			return dur, err
		}
	}
	for i, unit := range []time.Duration{day, time.Hour, time.Minute, time.Second} {
		n, err := atoi(parts[4+i])
		if err != nil {
			return dur, err
		}
		if n, err = scaleCount(n, int64(unit)); err != nil {
			return dur, err
		}
		if span, err = addSpan(span, time.Duration(n)); err != nil {
			return dur, err
		}
	}
	if frac := parts[8]; frac != "" {
		n, _ := atoi((frac + "000000000")[:9])
		var err error
		if span, err = addSpan(span, time.Duration(n)); err != nil {
			return dur, err
		}
	}
	dur.Months = months
	dur.Span = span
	if parts[1] != "" {
		dur = dur.Negate()
	}
	return dur, nil
}

func (d Duration) Negate() Duration {
	return Duration{
		Months: -d.Months,
		Span:   -d.Span,
	}
}

func (d Duration) Zero() bool {
	return d.Months == 0 && d.Span == 0
}

func (d Duration) Equal(other Duration) bool {
	return d.Months == other.Months && d.Span == other.Span
}

// String renders the canonical form of a xs:duration.
func (d Duration) String() string {
	if d.Zero() {
		return "PT0S"
	}
	return formatDuration(d)
}

func formatYearMonth(months int64) string {
	if months == 0 {
		return "P0M"
	}
	return formatDuration(Duration{Months: months})
}

func formatDayTime(span time.Duration) string {
	if span == 0 {
		return "PT0S"
	}
	return formatDuration(Duration{Span: span})
}

func formatDuration(d Duration) string {
	var str strings.Builder
	if d.Months < 0 || d.Span < 0 {
		str.WriteByte('-')
		d = d.Negate()
	}
	str.WriteByte('P')
	if y := d.Months / 12; y > 0 {
		str.WriteString(strconv.FormatInt(y, 10))
		str.WriteByte('Y')
	}
	if m := d.Months % 12; m > 0 {
		str.WriteString(strconv.FormatInt(m, 10))
		str.WriteByte('M')
	}
	span := d.Span
	if days := span / day; days > 0 {
		str.WriteString(strconv.FormatInt(int64(days), 10))
		str.WriteByte('D')
		span -= days * day
	}
	if span == 0 {
		return str.String()
	}
	str.WriteByte('T')
	if h := span / time.Hour; h > 0 {
		str.WriteString(strconv.FormatInt(int64(h), 10))
		str.WriteByte('H')
		span -= h * time.Hour
	}
	if m := span / time.Minute; m > 0 {
		str.WriteString(strconv.FormatInt(int64(m), 10))
		str.WriteByte('M')
		span -= m * time.Minute
	}
	if span > 0 {
		secs := span / time.Second
		str.WriteString(strconv.FormatInt(int64(secs), 10))
		if nanos := span % time.Second; nanos > 0 {
			frac := strconv.FormatInt(int64(nanos)+int64(time.Second), 10)[1:]
			str.WriteByte('.')
			str.WriteString(strings.TrimRight(frac, "0"))
		}
		str.WriteByte('S')
	}
	return str.String()
}

func addMonths(left, right int64) (int64, error) {
	res := left + right
	if (left > 0 && right > 0 && res < 0) || (left < 0 && right < 0 && res >= 0) {
		return 0, errDurationOverflow()
	}
	return res, nil
}

func addSpan(left, right time.Duration) (time.Duration, error) {
	res := left + right
	if (left > 0 && right > 0 && res < 0) || (left < 0 && right < 0 && res >= 0) {
		return 0, errDurationOverflow()
	}
	return res, nil
}

// scaleDuration multiplies (or divides when inverse is set) a count of
// months or nanoseconds by a number, rounding half up.
func scaleDuration(value int64, factor float64, inverse bool) (int64, error) {
	if math.IsNaN(factor) {
		return 0, newError(CodeNaNDuration, "duration can not be scaled by NaN")
	}
	if inverse {
		if factor == 0 {
			return 0, errDurationOverflow()
		}
		factor = 1 / factor
	}
	res := math.Floor(float64(value)*factor + 0.5)
	if math.IsInf(res, 0) || res >= math.MaxInt64 || res < math.MinInt64 {
		return 0, errDurationOverflow()
	}
	return int64(res), nil
}

// scaleCount multiplies a non negative count by the size of its unit.
func scaleCount(n, unit int64) (int64, error) {
	if n > math.MaxInt64/unit {
		return 0, errDurationOverflow()
	}
	return n * unit, nil
}

func errDurationOverflow() error {
	return newError(CodeDurationRange, "overflow in duration arithmetic")
}
