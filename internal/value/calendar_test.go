package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDateTimeStringValue(t *testing.T) {
	v := NewDateTime(2024, 3, 5, 14, 30, 0, true, 0)
	assert.Equal(t, "2024-03-05T14:30:00Z", v.StringValue())
}

func TestDateTimeNoTimezone(t *testing.T) {
	v := NewDateTime(2024, 3, 5, 14, 30, 0, false, 0)
	assert.Equal(t, "2024-03-05T14:30:00", v.StringValue())
}

func TestParseDateTimeRoundTrip(t *testing.T) {
	for _, lexical := range []string{
		"2020-01-15T12:00:00+05:00",
		"2024-03-05T14:30:00Z",
		"2024-03-05T14:30:00",
	} {
		v, err := ParseDateTime(lexical)
		if assert.NoError(t, err, lexical) {
			assert.Equal(t, lexical, v.StringValue())
		}
	}
}

func TestParseDateTimeRejectsGarbage(t *testing.T) {
	for _, lexical := range []string{"", "2020-01-15", "2020-01-15T", "not-a-date", "2020-13-01T00:00:00"} {
		_, err := ParseDateTime(lexical)
		assert.Error(t, err, lexical)
	}
}

func TestAdjustTimezoneRecomputesClockWhenTimezonePresent(t *testing.T) {
	// adjust-dateTime-to-timezone across a
	// timezone that already has an offset recomputes the local time.
	v := NewDateTime(2024, 3, 5, 23, 30, 0, true, 0) // 23:30 UTC
	newTZ := -5 * 60
	adjusted := v.AdjustTimezone(&newTZ)
	assert.Equal(t, "2024-03-05T18:30:00-05:00", adjusted.StringValue())
}

func TestAdjustTimezoneAttachesWithoutChangeWhenAbsent(t *testing.T) {
	v := NewDateTime(2024, 3, 5, 23, 30, 0, false, 0)
	newTZ := -5 * 60
	adjusted := v.AdjustTimezone(&newTZ)
	assert.Equal(t, "2024-03-05T23:30:00-05:00", adjusted.StringValue())
}

func TestAdjustTimezoneNilRemovesTimezone(t *testing.T) {
	v := NewDateTime(2024, 3, 5, 23, 30, 0, true, -300)
	adjusted := v.AdjustTimezone(nil)
	assert.False(t, adjusted.HasTimezone())
	assert.Equal(t, "2024-03-05T23:30:00", adjusted.StringValue())
}

func TestAdjustTimezoneCarriesAcrossMidnight(t *testing.T) {
	v := NewDateTime(2024, 3, 5, 1, 0, 0, true, 0) // 01:00 UTC
	newTZ := -5 * 60
	adjusted := v.AdjustTimezone(&newTZ)
	assert.Equal(t, "2024-03-04T20:00:00-05:00", adjusted.StringValue())
}

func TestCompareDateTimeUsesImplicitTimezone(t *testing.T) {
	a := NewDateTime(2024, 3, 5, 12, 0, 0, false, 0)
	b := NewDateTime(2024, 3, 5, 12, 0, 0, true, 0)
	cmp, ok := Compare(a, b, 0)
	assert.True(t, ok)
	assert.Equal(t, 0, cmp)
}

func TestCompareDateTimeOrdering(t *testing.T) {
	a := NewDateTime(2024, 3, 5, 12, 0, 0, true, 0)
	b := NewDateTime(2024, 3, 5, 13, 0, 0, true, 0)
	cmp, ok := Compare(a, b, 0)
	assert.True(t, ok)
	assert.Equal(t, -1, cmp)
}
