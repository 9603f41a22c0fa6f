package xdm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// allTypes enumerates every registered Type for exhaustive property checks.
func allTypes() []Type {
	out := make([]Type, 0, len(typeTable))
	for t := range typeTable {
		out = append(out, t)
	}
	return out
}

func TestSubtypeClosure(t *testing.T) {
	// isSubType(T,U) ∧ isSubType(U,V) ⇒ isSubType(T,V).
	types := allTypes()
	for _, a := range types {
		for _, b := range types {
			if !IsSubType(a, b) {
				continue
			}
			for _, c := range types {
				if IsSubType(b, c) {
					assert.True(t, IsSubType(a, c), "%s <: %s <: %s should imply %s <: %s", Name(a), Name(b), Name(c), Name(a), Name(c))
				}
			}
		}
	}
}

func TestSubtypeReflexive(t *testing.T) {
	for _, a := range allTypes() {
		assert.True(t, IsSubType(a, a))
	}
}

func TestKnownSubtypeFacts(t *testing.T) {
	assert.True(t, IsSubType(TypeInteger, TypeDecimal))
	assert.True(t, IsSubType(TypeInt, TypeInteger))
	assert.True(t, IsSubType(TypeInt, TypeDecimal))
	assert.True(t, IsSubType(TypeInt, TypeAnyAtomicType))
	assert.True(t, IsSubType(TypeElement, TypeNode))
	assert.False(t, IsSubType(TypeDecimal, TypeInteger))
	assert.False(t, IsSubType(TypeString, TypeDecimal))
	assert.False(t, IsSubType(TypeElement, TypeAnyAtomicType))
}

func TestPrimitiveAncestor(t *testing.T) {
	assert.Equal(t, TypeDecimal, Primitive(TypeInteger))
	assert.Equal(t, TypeDecimal, Primitive(TypeInt))
	assert.Equal(t, TypeDuration, Primitive(TypeDayTimeDuration))
	assert.Equal(t, TypeString, Primitive(TypeString))
}

func TestCardinalityLattice(t *testing.T) {
	cards := []Cardinality{CardinalityEmpty, CardinalityZeroOrOne, CardinalityExactlyOne, CardinalityOneOrMore, CardinalityZeroOrMore}

	// Reflexive.
	for _, c := range cards {
		assert.True(t, CardinalitySubsumes(c, c))
	}

	// Transitive.
	for _, a := range cards {
		for _, b := range cards {
			if !CardinalitySubsumes(a, b) {
				continue
			}
			for _, c := range cards {
				if CardinalitySubsumes(b, c) {
					assert.True(t, CardinalitySubsumes(a, c))
				}
			}
		}
	}

	// Antisymmetric up to equality.
	for _, a := range cards {
		for _, b := range cards {
			if a != b && CardinalitySubsumes(a, b) {
				assert.False(t, CardinalitySubsumes(b, a), "%v and %v should not subsume each other", a, b)
			}
		}
	}

	assert.True(t, CardinalitySubsumes(CardinalityZeroOrMore, CardinalityOneOrMore))
	assert.True(t, CardinalitySubsumes(CardinalityZeroOrOne, CardinalityEmpty))
	assert.Equal(t, CardinalityExactlyOne, Intersect(CardinalityZeroOrOne, CardinalityOneOrMore))
}

func TestSequenceTypeSubsumes(t *testing.T) {
	ints := SequenceType{ItemType: TypeInteger, Cardinality: CardinalityOneOrMore}
	nums := SequenceType{ItemType: TypeDecimal, Cardinality: CardinalityZeroOrMore}
	assert.True(t, nums.Subsumes(ints))
	assert.False(t, ints.Subsumes(nums))
	assert.True(t, nums.Subsumes(EmptySequenceType))
}

func TestLeastCommonSupertype(t *testing.T) {
	assert.Equal(t, TypeDecimal, LeastCommonSupertype(TypeInteger, TypeDecimal))
	assert.Equal(t, TypeAnyAtomicType, LeastCommonSupertype(TypeInteger, TypeString))
	assert.Equal(t, TypeNode, LeastCommonSupertype(TypeElement, TypeAttribute))
}
