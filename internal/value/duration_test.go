package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYearMonthDurationStringValue(t *testing.T) {
	assert.Equal(t, "P1Y2M", NewYearMonthDuration(14).StringValue())
	assert.Equal(t, "-P1Y2M", NewYearMonthDuration(-14).StringValue())
	assert.Equal(t, "P0M", NewYearMonthDuration(0).StringValue())
}

func TestDayTimeDurationStringValue(t *testing.T) {
	assert.Equal(t, "P1DT2H3M4S", NewDayTimeDuration(1*86400+2*3600+3*60+4).StringValue())
	assert.Equal(t, "PT0S", NewDayTimeDuration(0).StringValue())
	assert.Equal(t, "-PT30M", NewDayTimeDuration(-30*60).StringValue())
}

func TestParseDayTimeDuration(t *testing.T) {
	cases := []struct {
		lexical string
		seconds float64
	}{
		{"PT8H", 8 * 3600},
		{"-PT8H", -8 * 3600},
		{"P1DT2H3M4S", 1*86400 + 2*3600 + 3*60 + 4},
		{"PT30M", 30 * 60},
		{"PT1.5S", 1.5},
	}
	for _, c := range cases {
		v, err := ParseDayTimeDuration(c.lexical)
		if assert.NoError(t, err, c.lexical) {
			assert.InDelta(t, c.seconds, v.Seconds(), 1e-9, c.lexical)
		}
	}
}

func TestParseDayTimeDurationRejectsGarbage(t *testing.T) {
	for _, lexical := range []string{"", "P", "PT", "8H", "P1Y", "PT5X", "PT2H1D"} {
		_, err := ParseDayTimeDuration(lexical)
		assert.Error(t, err, lexical)
	}
}

func TestCompareYearMonthDuration(t *testing.T) {
	a := NewYearMonthDuration(12)
	b := NewYearMonthDuration(13)
	assert.Equal(t, -1, CompareYearMonth(a, b))
	assert.Equal(t, 1, CompareYearMonth(b, a))
	assert.Equal(t, 0, CompareYearMonth(a, a))
}

func TestCompareDayTimeDuration(t *testing.T) {
	a := NewDayTimeDuration(60)
	b := NewDayTimeDuration(120)
	assert.Equal(t, -1, CompareDayTime(a, b))
}

func TestDurationSignum(t *testing.T) {
	assert.Equal(t, 0, NewDayTimeDuration(0).Signum())
	assert.Equal(t, 1, NewDayTimeDuration(5).Signum())
	assert.Equal(t, -1, NewDayTimeDuration(-5).Signum())
}
