package xpath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateTime is the datum of every date and time kind. Values without an
// explicit timezone are stored in UTC, which also serves as the implicit
// timezone when they are compared or subtracted.
type DateTime struct {
	time.Time
	Zoned bool
}

const (
	yearPart   = `(-?\d{4,})`
	zonePart   = `(Z|[+-]\d{2}:\d{2})?`
	secondPart = `(\d{2}):(\d{2}):(\d{2})(?:\.(\d+))?`
)

var temporalPatterns = map[Type]*regexp.Regexp{
	TypeDateTime:   regexp.MustCompile(`^` + yearPart + `-(\d{2})-(\d{2})T` + secondPart + zonePart + `$`),
	TypeDate:       regexp.MustCompile(`^` + yearPart + `-(\d{2})-(\d{2})` + zonePart + `$`),
	TypeTime:       regexp.MustCompile(`^` + secondPart + zonePart + `$`),
	TypeGYearMonth: regexp.MustCompile(`^` + yearPart + `-(\d{2})` + zonePart + `$`),
	TypeGYear:      regexp.MustCompile(`^` + yearPart + zonePart + `$`),
	TypeGMonthDay:  regexp.MustCompile(`^--(\d{2})-(\d{2})` + zonePart + `$`),
	TypeGDay:       regexp.MustCompile(`^---(\d{2})` + zonePart + `$`),
	TypeGMonth:     regexp.MustCompile(`^--(\d{2})` + zonePart + `$`),
}

// reference date used to store the kinds that have no year, month or day.
const (
	referenceYear  = 1972
	referenceMonth = 12
	referenceDay   = 31
)

type dateFields struct {
	year, month, day     int
	hour, minute, second int
	nanos                int
	zone                 string
}

// ParseTemporal parses the lexical form of one of the date and time kinds.
func ParseTemporal(str string, kind Type) (DateTime, error) {
	str = strings.TrimSpace(str)
	re, ok := temporalPatterns[primitive(kind)]
	if !ok {
		return DateTime{}, errCastUnsupported(TypeString, kind)
	}
	parts := re.FindStringSubmatch(str)
	if parts == nil {
		return DateTime{}, errCastInvalid(str, kind)
	}
	fields := dateFields{
		year:  referenceYear,
		month: referenceMonth,
		day:   referenceDay,
	}
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	parts = parts[1:]
	switch primitive(kind) {
	case TypeDateTime:
		fields.year, fields.month, fields.day = atoi(parts[0]), atoi(parts[1]), atoi(parts[2])
		fields.hour, fields.minute, fields.second = atoi(parts[3]), atoi(parts[4]), atoi(parts[5])
		fields.nanos = parseNanos(parts[6])
		fields.zone = parts[7]
	case TypeDate:
		fields.year, fields.month, fields.day = atoi(parts[0]), atoi(parts[1]), atoi(parts[2])
		fields.zone = parts[3]
	case TypeTime:
		fields.hour, fields.minute, fields.second = atoi(parts[0]), atoi(parts[1]), atoi(parts[2])
		fields.nanos = parseNanos(parts[3])
		fields.zone = parts[4]
	case TypeGYearMonth:
		fields.year, fields.month = atoi(parts[0]), atoi(parts[1])
		fields.day = 1
		fields.zone = parts[2]
	case TypeGYear:
		fields.year = atoi(parts[0])
		fields.month, fields.day = 1, 1
		fields.zone = parts[1]
	case TypeGMonthDay:
		fields.year = 2000
		fields.month, fields.day = atoi(parts[0]), atoi(parts[1])
		fields.zone = parts[2]
	case TypeGDay:
		fields.month, fields.day = 1, atoi(parts[0])
		fields.zone = parts[1]
	case TypeGMonth:
		fields.month, fields.day = atoi(parts[0]), 1
		fields.zone = parts[1]
	}
	dt, err := fields.build()
	if err != nil {
		return dt, errCastInvalid(str, kind)
	}
	if kind == TypeDateTimeStamp && !dt.Zoned {
		return dt, errCastInvalid(str, kind)
	}
	if primitive(kind) == TypeTime {
		dt = dt.project(TypeTime)
	}
	return dt, nil
}

func parseNanos(frac string) int {
	if frac == "" {
		return 0
	}
	frac = (frac + "000000000")[:9]
	n, _ := strconv.Atoi(frac)
	return n
}

func (f dateFields) build() (DateTime, error) {
	var dt DateTime
	if f.month < 1 || f.month > 12 || f.day < 1 || f.day > daysIn(f.year, time.Month(f.month)) {
		return dt, fmt.Errorf("invalid date")
	}
	endOfDay := f.hour == 24 && f.minute == 0 && f.second == 0 && f.nanos == 0
	if (f.hour > 23 && !endOfDay) || f.minute > 59 || f.second > 59 {
		return dt, fmt.Errorf("invalid time")
	}
	loc := time.UTC
	if f.zone != "" {
		dt.Zoned = true
		if f.zone != "Z" {
			hours, _ := strconv.Atoi(f.zone[1:3])
			mins, _ := strconv.Atoi(f.zone[4:6])
			if hours > 14 || mins > 59 || (hours == 14 && mins > 0) {
				return dt, fmt.Errorf("invalid timezone")
			}
			offset := hours*3600 + mins*60
			if f.zone[0] == '-' {
				offset = -offset
			}
			loc = zoneAt(offset)
		}
	}
	dt.Time = time.Date(f.year, time.Month(f.month), f.day, f.hour, f.minute, f.second, f.nanos, loc)
	return dt, nil
}

func zoneAt(offset int) *time.Location {
	if offset == 0 {
		return time.UTC
	}
	return time.FixedZone(formatZone(offset), offset)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Format renders dt in the canonical lexical form of kind.
func (dt DateTime) Format(kind Type) string {
	var str strings.Builder
	switch primitive(kind) {
	case TypeDateTime:
		str.WriteString(dt.formatDate())
		str.WriteByte('T')
		str.WriteString(dt.formatTime())
	case TypeDate:
		str.WriteString(dt.formatDate())
	case TypeTime:
		str.WriteString(dt.formatTime())
	case TypeGYearMonth:
		str.WriteString(formatYear(dt.Year()))
		fmt.Fprintf(&str, "-%02d", dt.Month())
	case TypeGYear:
		str.WriteString(formatYear(dt.Year()))
	case TypeGMonthDay:
		fmt.Fprintf(&str, "--%02d-%02d", dt.Month(), dt.Day())
	case TypeGDay:
		fmt.Fprintf(&str, "---%02d", dt.Day())
	case TypeGMonth:
		fmt.Fprintf(&str, "--%02d", dt.Month())
	}
	if dt.Zoned {
		_, offset := dt.Zone()
		str.WriteString(formatZone(offset))
	}
	return str.String()
}

func (dt DateTime) formatDate() string {
	return fmt.Sprintf("%s-%02d-%02d", formatYear(dt.Year()), dt.Month(), dt.Day())
}

func (dt DateTime) formatTime() string {
	str := fmt.Sprintf("%02d:%02d:%02d", dt.Hour(), dt.Minute(), dt.Second())
	if n := dt.Nanosecond(); n > 0 {
		frac := fmt.Sprintf("%09d", n)
		str += "." + strings.TrimRight(frac, "0")
	}
	return str
}

func formatYear(year int) string {
	if year < 0 {
		return fmt.Sprintf("-%04d", -year)
	}
	return fmt.Sprintf("%04d", year)
}

func formatZone(offset int) string {
	if offset == 0 {
		return "Z"
	}
	sign := '+'
	if offset < 0 {
		sign, offset = '-', -offset
	}
	return fmt.Sprintf("%c%02d:%02d", sign, offset/3600, (offset%3600)/60)
}

// project keeps the components of dt that exist in kind and resets the
// others to the reference date.
func (dt DateTime) project(kind Type) DateTime {
	var (
		t          = dt.Time
		y, m, d    = t.Date()
		hh, mm, ss = t.Clock()
		ns         = t.Nanosecond()
	)
	switch primitive(kind) {
	case TypeDate:
		hh, mm, ss, ns = 0, 0, 0, 0
	case TypeTime:
		y, m, d = referenceYear, referenceMonth, referenceDay
	case TypeGYearMonth:
		d, hh, mm, ss, ns = 1, 0, 0, 0, 0
	case TypeGYear:
		m, d, hh, mm, ss, ns = 1, 1, 0, 0, 0, 0
	case TypeGMonthDay:
		y, hh, mm, ss, ns = 2000, 0, 0, 0, 0
	case TypeGDay:
		y, m, hh, mm, ss, ns = referenceYear, 1, 0, 0, 0, 0
	case TypeGMonth:
		y, d, hh, mm, ss, ns = referenceYear, 1, 0, 0, 0, 0
	}
	dt.Time = time.Date(y, m, d, hh, mm, ss, ns, t.Location())
	return dt
}

// addDuration moves dt by dur. Months are added first with the day clamped
// to the end of the resulting month, then the day-time span.
func (dt DateTime) addDuration(dur Duration, kind Type) DateTime {
	t := dt.Time
	if dur.Months != 0 {
		var (
			y, m, d    = t.Date()
			hh, mm, ss = t.Clock()
			total      = int64(m-1) + dur.Months
			year       = int64(y) + floorDiv(total, 12)
			month      = time.Month(floorMod(total, 12) + 1)
		)
		d = min(d, daysIn(int(year), month))
		t = time.Date(int(year), month, d, hh, mm, ss, t.Nanosecond(), t.Location())
	}
	dt.Time = t.Add(dur.Span)
	switch primitive(kind) {
	case TypeTime:
		dt = dt.project(TypeTime)
	case TypeDate:
		dt = dt.project(TypeDate)
	}
	return dt
}

func (dt DateTime) Compare(other DateTime) int {
	return dt.Time.Compare(other.Time)
}

// Sub gives the span between both values. It fails when the span does not
// fit in a xs:dayTimeDuration.
func (dt DateTime) Sub(other DateTime) (time.Duration, error) {
	span := dt.Time.Sub(other.Time)
	if !other.Time.Add(span).Equal(dt.Time) {
		return 0, errDurationOverflow()
	}
	return span, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
