package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/xpathcore/internal/xdm"
)

func TestIntegerValueBasics(t *testing.T) {
	v := NewInteger(xdm.TypeInteger, 7)
	assert.Equal(t, xdm.TypeInteger, v.Type())
	assert.Equal(t, "7", v.StringValue())
	assert.Equal(t, 1, v.Signum())
	assert.True(t, v.IsWholeNumber())
	assert.False(t, v.IsNaN())

	n, err := v.LongValue()
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
}

func TestDecimalAtomicValuePromotesToDouble(t *testing.T) {
	d, _ := ParseDecimal("2.5")
	v := NewDecimal(d)
	assert.InDelta(t, 2.5, v.DoubleValue(), 1e-9)
	assert.False(t, v.IsWholeNumber())
}

func TestDoubleFormatting(t *testing.T) {
	assert.Equal(t, "NaN", NewDouble(math.NaN()).StringValue())
	assert.Equal(t, "INF", NewDouble(math.Inf(1)).StringValue())
	assert.Equal(t, "-INF", NewDouble(math.Inf(-1)).StringValue())
	assert.Equal(t, "0", NewDouble(0).StringValue())
	assert.Equal(t, "1.5", NewDouble(1.5).StringValue())
}

func TestDoubleScientificNotationOutsideRange(t *testing.T) {
	s := NewDouble(1.5e20).StringValue()
	assert.Equal(t, "1.5E20", s)

	s2 := NewDouble(1.5e-8).StringValue()
	assert.Contains(t, s2, "E-")
}

func TestDoubleSignum(t *testing.T) {
	assert.Equal(t, 0, NewDouble(math.NaN()).Signum())
	assert.Equal(t, 0, NewDouble(0).Signum())
	assert.Equal(t, 1, NewDouble(3).Signum())
	assert.Equal(t, -1, NewDouble(-3).Signum())
}

func TestDoubleDecimalValueRejectsNonFinite(t *testing.T) {
	_, err := NewDouble(math.NaN()).DecimalValue()
	assert.Error(t, err)
	_, err = NewDouble(math.Inf(1)).DecimalValue()
	assert.Error(t, err)
}

func TestFloatIsWholeNumber(t *testing.T) {
	assert.True(t, NewFloat(3).IsWholeNumber())
	assert.False(t, NewFloat(3.5).IsWholeNumber())
}
