package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodepointCompareBMPFastPath(t *testing.T) {
	a := NewString("abc")
	b := NewString("abd")
	assert.Equal(t, -1, CodepointCompare(&a, &b))
	assert.False(t, a.HasNonBMP())
}

func TestCodepointCompareNonBMP(t *testing.T) {
	// U+10000 (non-BMP) should still compare correctly by code point.
	a := NewString("\U00010000")
	b := NewString("￿")
	assert.True(t, a.HasNonBMP())
	assert.Equal(t, 1, CodepointCompare(&a, &b))
}

func TestUTF16Length(t *testing.T) {
	assert.Equal(t, 3, UTF16Length("abc"))
	assert.Equal(t, 2, UTF16Length("\U00010000"))
}

func TestBooleanStringValue(t *testing.T) {
	assert.Equal(t, "true", NewBoolean(true).StringValue())
	assert.Equal(t, "false", NewBoolean(false).StringValue())
}
