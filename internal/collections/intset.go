// Package collections implements the small, non-thread-safe container types
// the evaluation engine leans on: integer sets and maps tuned for the node
// and expression identifiers used throughout the tree, and a bounded LRU
// cache for query/collation lookups.
package collections

import "math/bits"

// phi64 is the golden-ratio multiplicative-hashing constant used by the
// open-addressed IntSet/IntToIntMap below (Fibonacci hashing).
const phi64 uint64 = 0x9E3779B97F4A7C15

// IntSet is a set of signed 32-bit integers. It is the hash-table-backed
// implementation: an open-addressed table of power-of-two size, load factor
// capped at 0.25, linear probing, keys hashed with the golden-ratio
// multiplicative constant. Not safe for concurrent use.
type IntSet struct {
	slots    []int32
	occupied []bool
	count    int
}

const intSetEmptyMarker = false

// NewIntSet returns an empty set with room for at least capacityHint entries
// before its first resize.
func NewIntSet(capacityHint int) *IntSet {
	size := nextPow2(capacityHint*4 + 1)
	if size < 8 {
		size = 8
	}
	return &IntSet{
		slots:    make([]int32, size),
		occupied: make([]bool, size),
	}
}

func nextPow2(n int) int {
	if n < 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

func (s *IntSet) hash(v int32) int {
	h := (uint64(uint32(v)) * phi64) >> 32
	return int(h) & (len(s.slots) - 1)
}

// Add inserts v, returning true if it was not already present.
func (s *IntSet) Add(v int32) bool {
	if float64(s.count+1) > float64(len(s.slots))*0.25 {
		s.grow()
	}
	idx := s.hash(v)
	for s.occupied[idx] {
		if s.slots[idx] == v {
			return false
		}
		idx = (idx + 1) & (len(s.slots) - 1)
	}
	s.slots[idx] = v
	s.occupied[idx] = true
	s.count++
	return true
}

func (s *IntSet) grow() {
	old := s.slots
	oldOcc := s.occupied
	newSize := len(s.slots) * 2
	if newSize == 0 {
		newSize = 8
	}
	s.slots = make([]int32, newSize)
	s.occupied = make([]bool, newSize)
	s.count = 0
	for i, v := range old {
		if oldOcc[i] {
			s.Add(v)
		}
	}
}

// Contains reports whether v is a member of the set.
func (s *IntSet) Contains(v int32) bool {
	if len(s.slots) == 0 {
		return false
	}
	idx := s.hash(v)
	for s.occupied[idx] {
		if s.slots[idx] == v {
			return true
		}
		idx = (idx + 1) & (len(s.slots) - 1)
	}
	return false
}

// Remove deletes v from the set, returning true if it was present. Uses
// backward-shift deletion to keep the probe chain intact.
func (s *IntSet) Remove(v int32) bool {
	if len(s.slots) == 0 {
		return false
	}
	mask := len(s.slots) - 1
	idx := s.hash(v)
	for s.occupied[idx] {
		if s.slots[idx] == v {
			s.occupied[idx] = intSetEmptyMarker
			s.count--
			// Backward-shift: re-insert the probe chain that follows.
			next := (idx + 1) & mask
			for s.occupied[next] {
				reloc := s.slots[next]
				s.occupied[next] = intSetEmptyMarker
				s.count--
				s.Add(reloc)
				next = (next + 1) & mask
			}
			return true
		}
		idx = (idx + 1) & mask
	}
	return false
}

// Size returns the number of members.
func (s *IntSet) Size() int { return s.count }

// Iterator returns the members in unspecified order.
func (s *IntSet) Iterator() []int32 {
	out := make([]int32, 0, s.count)
	for i, occ := range s.occupied {
		if occ {
			out = append(out, s.slots[i])
		}
	}
	return out
}

// Union returns a new set containing every member of s or other.
func (s *IntSet) Union(other *IntSet) *IntSet {
	result := NewIntSet(s.count + other.count)
	for _, v := range s.Iterator() {
		result.Add(v)
	}
	for _, v := range other.Iterator() {
		result.Add(v)
	}
	return result
}

// Intersect returns a new set containing members present in both s and other.
func (s *IntSet) Intersect(other *IntSet) *IntSet {
	result := NewIntSet(0)
	small, big := s, other
	if big.count < small.count {
		small, big = big, small
	}
	for _, v := range small.Iterator() {
		if big.Contains(v) {
			result.Add(v)
		}
	}
	return result
}

// Except returns a new set containing members of s that are not in other.
func (s *IntSet) Except(other *IntSet) *IntSet {
	result := NewIntSet(0)
	for _, v := range s.Iterator() {
		if !other.Contains(v) {
			result.Add(v)
		}
	}
	return result
}

// ContainsAll reports whether every member of other is also a member of s.
func (s *IntSet) ContainsAll(other *IntSet) bool {
	for _, v := range other.Iterator() {
		if !s.Contains(v) {
			return false
		}
	}
	return true
}
