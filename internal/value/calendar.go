package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/oxhq/xpathcore/internal/xdm"
)

// CalendarValue is the shared representation for every date/time atomic
// type (xs:dateTime, xs:date, xs:time, and the five gregorian-fragment
// types). Which fields are significant is determined by
// Kind; unused fields are zero. Timezone, when present, is an offset in
// minutes east of UTC (XSD permits -14:00..+14:00).
type CalendarValue struct {
	kind         xdm.Type
	year         int64
	month        int
	day          int
	hour         int
	minute       int
	second       float64
	hasTimezone  bool
	tzOffsetMins int
}

// NewDateTime builds an xs:dateTime. second may carry a fractional part.
func NewDateTime(year int64, month, day, hour, minute int, second float64, hasTZ bool, tzOffsetMins int) CalendarValue {
	return CalendarValue{kind: xdm.TypeDateTime, year: year, month: month, day: day, hour: hour, minute: minute, second: second, hasTimezone: hasTZ, tzOffsetMins: tzOffsetMins}
}

// NewDate builds an xs:date.
func NewDate(year int64, month, day int, hasTZ bool, tzOffsetMins int) CalendarValue {
	return CalendarValue{kind: xdm.TypeDate, year: year, month: month, day: day, hasTimezone: hasTZ, tzOffsetMins: tzOffsetMins}
}

// NewTime builds an xs:time.
func NewTime(hour, minute int, second float64, hasTZ bool, tzOffsetMins int) CalendarValue {
	return CalendarValue{kind: xdm.TypeTime, hour: hour, minute: minute, second: second, hasTimezone: hasTZ, tzOffsetMins: tzOffsetMins}
}

func (v CalendarValue) Type() xdm.Type { return v.kind }

func (v CalendarValue) HasTimezone() bool { return v.hasTimezone }

// TimezoneOffsetMinutes returns the timezone offset in minutes east of UTC
// and whether one is present.
func (v CalendarValue) TimezoneOffsetMinutes() (int, bool) {
	return v.tzOffsetMins, v.hasTimezone
}

func (v CalendarValue) StringValue() string {
	var b strings.Builder
	switch v.kind {
	case xdm.TypeDateTime:
		fmt.Fprintf(&b, "%s-%02d-%02dT%02d:%02d:%s", formatYear(v.year), v.month, v.day, v.hour, v.minute, formatSeconds(v.second))
	case xdm.TypeDate:
		fmt.Fprintf(&b, "%s-%02d-%02d", formatYear(v.year), v.month, v.day)
	case xdm.TypeTime:
		fmt.Fprintf(&b, "%02d:%02d:%s", v.hour, v.minute, formatSeconds(v.second))
	case xdm.TypeGYearMonth:
		fmt.Fprintf(&b, "%s-%02d", formatYear(v.year), v.month)
	case xdm.TypeGYear:
		fmt.Fprintf(&b, "%s", formatYear(v.year))
	case xdm.TypeGMonthDay:
		fmt.Fprintf(&b, "--%02d-%02d", v.month, v.day)
	case xdm.TypeGDay:
		fmt.Fprintf(&b, "---%02d", v.day)
	case xdm.TypeGMonth:
		fmt.Fprintf(&b, "--%02d", v.month)
	}
	if v.hasTimezone {
		b.WriteString(formatTimezone(v.tzOffsetMins))
	}
	return b.String()
}

func formatYear(y int64) string {
	if y < 0 {
		return fmt.Sprintf("-%04d", -y)
	}
	return fmt.Sprintf("%04d", y)
}

func formatSeconds(s float64) string {
	whole := math.Trunc(s)
	frac := s - whole
	if frac < 1e-9 {
		return fmt.Sprintf("%02d", int(whole))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%09.6f", s), "0"), ".")
}

func formatTimezone(mins int) string {
	if mins == 0 {
		return "Z"
	}
	sign := "+"
	if mins < 0 {
		sign = "-"
		mins = -mins
	}
	return fmt.Sprintf("%s%02d:%02d", sign, mins/60, mins%60)
}

// ParseDateTime parses an xs:dateTime lexical form:
// "[-]YYYY-MM-DDThh:mm:ss[.fff][Z|(+|-)hh:mm]".
func ParseDateTime(lexical string) (CalendarValue, error) {
	s := lexical
	negYear := false
	if strings.HasPrefix(s, "-") {
		negYear = true
		s = s[1:]
	}
	datePart, timePart, found := strings.Cut(s, "T")
	if !found {
		return CalendarValue{}, fmt.Errorf("value.ParseDateTime: %q is missing the 'T' separator", lexical)
	}
	year, month, day, err := parseDateFields(datePart)
	if err != nil {
		return CalendarValue{}, fmt.Errorf("value.ParseDateTime: %w", err)
	}
	if negYear {
		year = -year
	}
	clock, hasTZ, tzMins, err := splitTimezone(timePart)
	if err != nil {
		return CalendarValue{}, fmt.Errorf("value.ParseDateTime: %w", err)
	}
	hour, minute, second, err := parseTimeFields(clock)
	if err != nil {
		return CalendarValue{}, fmt.Errorf("value.ParseDateTime: %w", err)
	}
	return NewDateTime(year, month, day, hour, minute, second, hasTZ, tzMins), nil
}

func parseDateFields(s string) (int64, int, int, error) {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed date %q", s)
	}
	year, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || len(parts[0]) < 4 {
		return 0, 0, 0, fmt.Errorf("malformed year %q", parts[0])
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("malformed month %q", parts[1])
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return 0, 0, 0, fmt.Errorf("malformed day %q", parts[2])
	}
	return year, month, day, nil
}

// splitTimezone strips a trailing "Z" or "(+|-)hh:mm" timezone designator
// from a time-of-day string, returning the bare clock reading and the
// offset (in minutes east of UTC) when one was present.
func splitTimezone(s string) (clock string, hasTZ bool, tzMins int, err error) {
	if strings.HasSuffix(s, "Z") {
		return strings.TrimSuffix(s, "Z"), true, 0, nil
	}
	i := strings.LastIndexAny(s, "+-")
	if i <= 0 {
		return s, false, 0, nil
	}
	offset := s[i:]
	hh, mm, found := strings.Cut(offset[1:], ":")
	if !found {
		return "", false, 0, fmt.Errorf("malformed timezone %q", offset)
	}
	h, err1 := strconv.Atoi(hh)
	m, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || h > 14 || m > 59 {
		return "", false, 0, fmt.Errorf("malformed timezone %q", offset)
	}
	mins := h*60 + m
	if offset[0] == '-' {
		mins = -mins
	}
	return s[:i], true, mins, nil
}

func parseTimeFields(s string) (int, int, float64, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed time %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour > 24 {
		return 0, 0, 0, fmt.Errorf("malformed hour %q", parts[0])
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute > 59 {
		return 0, 0, 0, fmt.Errorf("malformed minute %q", parts[1])
	}
	second, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || second < 0 || second >= 61 {
		return 0, 0, 0, fmt.Errorf("malformed seconds %q", parts[2])
	}
	return hour, minute, second, nil
}

// AdjustTimezone implements fn:adjust-dateTime-to-timezone and its
// xs:date/xs:time relatives: when newTZMins is nil, the
// timezone is removed without altering the local clock reading; otherwise,
// if the value already carries a timezone, the clock is recomputed so the
// instant denoted is unchanged, and if it has none, newTZMins is simply
// attached.
func (v CalendarValue) AdjustTimezone(newTZMins *int) CalendarValue {
	if newTZMins == nil {
		return v.RemoveTimezone()
	}
	if !v.hasTimezone {
		out := v
		out.hasTimezone = true
		out.tzOffsetMins = *newTZMins
		return out
	}
	deltaMins := *newTZMins - v.tzOffsetMins
	out := v.shiftMinutes(deltaMins)
	out.hasTimezone = true
	out.tzOffsetMins = *newTZMins
	return out
}

// RemoveTimezone drops the timezone without changing the local clock
// reading.
func (v CalendarValue) RemoveTimezone() CalendarValue {
	out := v
	out.hasTimezone = false
	out.tzOffsetMins = 0
	return out
}

// shiftMinutes adds delta minutes to the value's clock, carrying across
// day/month/year boundaries via time.Time arithmetic. Only meaningful for
// dateTime/date/time kinds; gregorian-fragment kinds never carry a
// timezone that needs recomputing in XDM, so they are not handled here.
func (v CalendarValue) shiftMinutes(delta int) CalendarValue {
	if delta == 0 {
		return v
	}
	switch v.kind {
	case xdm.TypeDateTime:
		t := time.Date(int(v.year), time.Month(v.month), v.day, v.hour, v.minute, 0, 0, time.UTC)
		t = t.Add(time.Duration(delta) * time.Minute)
		out := v
		out.year, out.month, out.day = int64(t.Year()), int(t.Month()), t.Day()
		out.hour, out.minute = t.Hour(), t.Minute()
		return out
	case xdm.TypeTime:
		total := v.hour*60 + v.minute + delta
		total = ((total % 1440) + 1440) % 1440
		out := v
		out.hour, out.minute = total/60, total%60
		return out
	case xdm.TypeDate:
		t := time.Date(int(v.year), time.Month(v.month), v.day, 0, 0, 0, 0, time.UTC)
		t = t.Add(time.Duration(delta) * time.Minute)
		out := v
		out.year, out.month, out.day = int64(t.Year()), int(t.Month()), t.Day()
		return out
	default:
		return v
	}
}

// ToInstant converts a dateTime to seconds since the Unix epoch, applying
// implicitTZMins when the value itself has no timezone, for use by ordering
// comparisons between values with and without a timezone.
func (v CalendarValue) ToInstant(implicitTZMins int) (float64, bool) {
	if v.kind != xdm.TypeDateTime && v.kind != xdm.TypeDate && v.kind != xdm.TypeTime {
		return 0, false
	}
	tz := implicitTZMins
	if v.hasTimezone {
		tz = v.tzOffsetMins
	}
	year, month, day := v.year, v.month, v.day
	if v.kind == xdm.TypeTime {
		year, month, day = 1972, 1, 1
	}
	whole := math.Trunc(v.second)
	nsec := int((v.second - whole) * 1e9)
	t := time.Date(int(year), time.Month(month), day, v.hour, v.minute, int(whole), nsec, time.UTC)
	t = t.Add(-time.Duration(tz) * time.Minute)
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9, true
}

// Compare orders two calendar values of the same kind by instant,
// resolving a missing timezone on either side via implicitTZMins.
func Compare(a, b CalendarValue, implicitTZMins int) (int, bool) {
	ai, ok1 := a.ToInstant(implicitTZMins)
	bi, ok2 := b.ToInstant(implicitTZMins)
	if !ok1 || !ok2 {
		return 0, false
	}
	switch {
	case ai < bi:
		return -1, true
	case ai > bi:
		return 1, true
	default:
		return 0, true
	}
}
