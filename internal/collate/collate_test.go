package collate

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodepointCompare(t *testing.T) {
	assert.Equal(t, -1, Codepoint.CompareStrings("a", "b"))
	assert.Equal(t, 0, Codepoint.CompareStrings("a", "a"))
	assert.Equal(t, 1, Codepoint.CompareStrings("b", "a"))
}

func TestAlphanumericSortScenarioS1(t *testing.T) {
	c := NewAlphanumeric(Codepoint)
	in := []string{"a10", "a2", "a1"}
	sort.Slice(in, func(i, j int) bool { return c.CompareStrings(in[i], in[j]) < 0 })
	assert.Equal(t, []string{"a1", "a2", "a10"}, in)
}

func TestAlphanumericCollationKeyAgreesWithCompare(t *testing.T) {
	c := NewAlphanumeric(Codepoint)
	a, b := "a2", "a10"
	cmp := c.CompareStrings(a, b)
	ka, kb := c.CollationKey(a), c.CollationKey(b)
	eq := ka.Equals(kb)
	assert.Equal(t, cmp == 0, eq)
}

func TestCaseOrderCollator(t *testing.T) {
	lowerFirst := NewLowercaseFirst(Codepoint)
	assert.True(t, lowerFirst.CompareStrings("a", "A") < 0)

	upperFirst := NewUppercaseFirst(Codepoint)
	assert.True(t, upperFirst.CompareStrings("A", "a") < 0)
}

func TestParseCollationURIDefaults(t *testing.T) {
	spec, err := ParseCollationURI("http://example.com/collation")
	require.NoError(t, err)
	assert.Equal(t, StrengthTertiary, spec.Strength)
	assert.False(t, spec.Alphanumeric)
}

func TestParseCollationURIWithParams(t *testing.T) {
	spec, err := ParseCollationURI("http://example.com/collation?lang=en;strength=primary;alphanumeric=yes;case-order=upper-first")
	require.NoError(t, err)
	assert.Equal(t, "en", spec.Lang)
	assert.Equal(t, StrengthPrimary, spec.Strength)
	assert.True(t, spec.Alphanumeric)
	assert.Equal(t, CaseOrderUpperFirst, spec.CaseOrder)
}

func TestLangWithoutHyphenUsesWholeTag(t *testing.T) {
	spec, err := ParseCollationURI("http://example.com/collation?lang=en")
	require.NoError(t, err)
	collator, err := spec.Resolve()
	require.NoError(t, err)
	assert.NotNil(t, collator)
}

func TestRegistryResolvesAndCaches(t *testing.T) {
	reg := NewRegistry()
	c1, err := reg.Resolve("http://example.com/collation?alphanumeric=yes")
	require.NoError(t, err)
	c2, err := reg.Resolve("http://example.com/collation?alphanumeric=yes")
	require.NoError(t, err)
	assert.Same(t, c1, c2)
}

func TestRegistryEmptyURIIsCodepoint(t *testing.T) {
	reg := NewRegistry()
	c, err := reg.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, Codepoint, c)
}
