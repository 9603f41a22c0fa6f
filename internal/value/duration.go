package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/oxhq/xpathcore/internal/xdm"
)

// DurationValue covers xs:duration and its two better-behaved
// derivations, xs:yearMonthDuration and xs:dayTimeDuration.
// yearMonthDuration compares by total months and dayTimeDuration by
// total seconds; a general xs:duration mixes both components and, per
// F&O, is only orderable against another duration when one component is
// zero on both sides, which this package leaves to the comparison layer
// (Months/Seconds are exposed so it can apply that rule).
type DurationValue struct {
	kind     xdm.Type
	negative bool
	months   int64   // years*12 + months, always non-negative; sign is separate
	seconds  float64 // days*86400 + hours*3600 + minutes*60 + seconds, always non-negative
}

// NewYearMonthDuration builds an xs:yearMonthDuration from a signed total
// number of months.
func NewYearMonthDuration(totalMonths int64) DurationValue {
	neg := totalMonths < 0
	if neg {
		totalMonths = -totalMonths
	}
	return DurationValue{kind: xdm.TypeYearMonthDuration, negative: neg, months: totalMonths}
}

// NewDayTimeDuration builds an xs:dayTimeDuration from a signed total
// number of seconds (may carry a fractional part).
func NewDayTimeDuration(totalSeconds float64) DurationValue {
	neg := totalSeconds < 0
	if neg {
		totalSeconds = -totalSeconds
	}
	return DurationValue{kind: xdm.TypeDayTimeDuration, negative: neg, seconds: totalSeconds}
}

// NewDuration builds a general xs:duration from independent month and
// second magnitudes and a shared sign, per the XSD rule that both
// components of a general duration carry the same sign.
func NewDuration(negative bool, totalMonths int64, totalSeconds float64) DurationValue {
	return DurationValue{kind: xdm.TypeDuration, negative: negative, months: totalMonths, seconds: totalSeconds}
}

func (v DurationValue) Type() xdm.Type { return v.kind }

// Months returns the signed total months component (0 for a pure
// dayTimeDuration).
func (v DurationValue) Months() int64 {
	if v.negative {
		return -v.months
	}
	return v.months
}

// Seconds returns the signed total seconds component (0 for a pure
// yearMonthDuration).
func (v DurationValue) Seconds() float64 {
	if v.negative {
		return -v.seconds
	}
	return v.seconds
}

func (v DurationValue) StringValue() string {
	var b strings.Builder
	if v.negative && (v.months != 0 || v.seconds != 0) {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	years, months := v.months/12, v.months%12
	wroteDatePart := false
	if years != 0 {
		fmt.Fprintf(&b, "%dY", years)
		wroteDatePart = true
	}
	if months != 0 {
		fmt.Fprintf(&b, "%dM", months)
		wroteDatePart = true
	}
	totalSeconds := v.seconds
	days := math.Trunc(totalSeconds / 86400)
	rem := totalSeconds - days*86400
	hours := math.Trunc(rem / 3600)
	rem -= hours * 3600
	minutes := math.Trunc(rem / 60)
	secs := rem - minutes*60
	if days != 0 {
		fmt.Fprintf(&b, "%dD", int64(days))
		wroteDatePart = true
	}
	hasTimePart := hours != 0 || minutes != 0 || secs != 0
	if hasTimePart {
		b.WriteByte('T')
		if hours != 0 {
			fmt.Fprintf(&b, "%dH", int64(hours))
		}
		if minutes != 0 {
			fmt.Fprintf(&b, "%dM", int64(minutes))
		}
		if secs != 0 {
			fmt.Fprintf(&b, "%sS", formatDurationSeconds(secs))
		}
	}
	if !wroteDatePart && !hasTimePart {
		// Zero duration: XSD canonical form is "PT0S" (dayTime) or "P0M"
		// (yearMonth); pick by kind.
		if v.kind == xdm.TypeYearMonthDuration {
			return "P0M"
		}
		return "PT0S"
	}
	return b.String()
}

// formatDurationSeconds renders a duration's seconds component without the
// zero-padding a calendar clock reading requires (xs:duration's "4S" vs.
// xs:dateTime's "04").
func formatDurationSeconds(s float64) string {
	whole := math.Trunc(s)
	frac := s - whole
	if frac < 1e-9 {
		return fmt.Sprintf("%d", int64(whole))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", s), "0"), ".")
}

// ParseDayTimeDuration parses an xs:dayTimeDuration lexical form:
// "[-]P[nD][T[nH][nM][n[.n]S]]".
func ParseDayTimeDuration(lexical string) (DurationValue, error) {
	s := lexical
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") {
		return DurationValue{}, fmt.Errorf("value.ParseDayTimeDuration: %q is missing the 'P' designator", lexical)
	}
	s = s[1:]
	datePart, timePart, hasTime := strings.Cut(s, "T")
	total := 0.0
	seen := false
	if datePart != "" {
		n, rest, err := leadingNumber(datePart)
		if err != nil || rest != "D" {
			return DurationValue{}, fmt.Errorf("value.ParseDayTimeDuration: malformed days component in %q", lexical)
		}
		total += n * 86400
		seen = true
	}
	if hasTime {
		if timePart == "" {
			return DurationValue{}, fmt.Errorf("value.ParseDayTimeDuration: empty time part in %q", lexical)
		}
		for _, unit := range []struct {
			designator byte
			seconds    float64
		}{{'H', 3600}, {'M', 60}, {'S', 1}} {
			if timePart == "" {
				break
			}
			n, rest, err := leadingNumber(timePart)
			if err != nil {
				return DurationValue{}, fmt.Errorf("value.ParseDayTimeDuration: malformed component in %q", lexical)
			}
			if rest == "" {
				return DurationValue{}, fmt.Errorf("value.ParseDayTimeDuration: missing designator in %q", lexical)
			}
			if rest[0] != unit.designator {
				continue
			}
			total += n * unit.seconds
			timePart = rest[1:]
			seen = true
		}
		if timePart != "" {
			return DurationValue{}, fmt.Errorf("value.ParseDayTimeDuration: trailing input %q in %q", timePart, lexical)
		}
	}
	if !seen {
		return DurationValue{}, fmt.Errorf("value.ParseDayTimeDuration: %q has no components", lexical)
	}
	if neg {
		total = -total
	}
	return NewDayTimeDuration(total), nil
}

func leadingNumber(s string) (float64, string, error) {
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	if i == 0 {
		return 0, "", fmt.Errorf("expected a number in %q", s)
	}
	n, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, "", err
	}
	return n, s[i:], nil
}

// Signum returns -1, 0 or 1.
func (v DurationValue) Signum() int {
	if v.months == 0 && v.seconds == 0 {
		return 0
	}
	if v.negative {
		return -1
	}
	return 1
}

// CompareYearMonth orders two yearMonthDurations by total months.
func CompareYearMonth(a, b DurationValue) int {
	am, bm := a.Months(), b.Months()
	switch {
	case am < bm:
		return -1
	case am > bm:
		return 1
	default:
		return 0
	}
}

// CompareDayTime orders two dayTimeDurations by total seconds.
func CompareDayTime(a, b DurationValue) int {
	as, bs := a.Seconds(), b.Seconds()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}
