package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQNameEqualityIgnoresPrefix(t *testing.T) {
	a := NewQName("http://example.com/ns", "ex", "foo")
	b := NewQName("http://example.com/ns", "other", "foo")
	assert.True(t, a.Equal(b))
	assert.Equal(t, "ex:foo", a.StringValue())
}

func TestQNameInequalityOnLocalOrNamespace(t *testing.T) {
	a := NewQName("http://example.com/ns", "ex", "foo")
	b := NewQName("http://example.com/ns", "ex", "bar")
	assert.False(t, a.Equal(b))

	c := NewQName("http://other.com/ns", "ex", "foo")
	assert.False(t, a.Equal(c))
}

func TestHexBinaryRoundTrip(t *testing.T) {
	v, err := ParseHexBinary("0FB7")
	require.NoError(t, err)
	assert.Equal(t, "0FB7", v.StringValue())
}

func TestHexBinaryEquality(t *testing.T) {
	a, _ := ParseHexBinary("0fb7")
	b, _ := ParseHexBinary("0FB7")
	assert.True(t, a.Equal(b))
}

func TestBase64BinaryRoundTrip(t *testing.T) {
	v := NewBase64Binary([]byte("hello"))
	assert.Equal(t, "aGVsbG8=", v.StringValue())

	parsed, err := ParseBase64Binary("aGVsbG8=")
	require.NoError(t, err)
	assert.True(t, v.Equal(parsed))
}

func TestAnyURIStringValue(t *testing.T) {
	v := NewAnyURI("http://example.com/")
	assert.Equal(t, "http://example.com/", v.StringValue())
}
