package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimalRoundTrip(t *testing.T) {
	cases := []string{"0", "1", "-1", "3.14", "-3.14", "100.500", "+42", ".5", "5."}
	for _, c := range cases {
		d, ok := ParseDecimal(c)
		require.True(t, ok, "expected %q to parse", c)
		back, ok := ParseDecimal(d.String())
		require.True(t, ok, "expected the canonical form of %q to parse", c)
		assert.Equal(t, 0, d.Cmp(back), c)
	}
}

func TestParseDecimalRejectsGarbage(t *testing.T) {
	for _, c := range []string{"", "abc", "1.2.3", "1e10", "--1", ""} {
		_, ok := ParseDecimal(c)
		assert.False(t, ok, "expected %q to be rejected", c)
	}
}

func TestDecimalArithmeticIsExact(t *testing.T) {
	a, _ := ParseDecimal("0.1")
	b, _ := ParseDecimal("0.2")
	sum := a.Add(b)
	assert.Equal(t, "0.3", sum.String())
}

func TestDecimalCmp(t *testing.T) {
	a, _ := ParseDecimal("1.5")
	b, _ := ParseDecimal("1.50")
	assert.Equal(t, 0, a.Cmp(b))

	c, _ := ParseDecimal("1.49")
	assert.Equal(t, 1, a.Cmp(c))
	assert.Equal(t, -1, c.Cmp(a))
}

func TestDecimalInt64(t *testing.T) {
	d := DecimalFromInt64(42)
	n, ok := d.Int64()
	require.True(t, ok)
	assert.EqualValues(t, 42, n)

	frac, _ := ParseDecimal("3.5")
	n2, ok2 := frac.Int64()
	require.True(t, ok2)
	assert.EqualValues(t, 3, n2)
}

func TestDecimalDivByZero(t *testing.T) {
	a := DecimalFromInt64(1)
	z := DecimalFromInt64(0)
	_, ok := a.Div(z)
	assert.False(t, ok)
}
