package collections

import "sort"

// SortedIntSet is the small-set IntSet variant: members kept in a sorted
// slice. Lookup is O(log n) via binary search; union of two sorted sets is a
// linear merge of the two runs. Preferred over IntSet when the expected
// cardinality is small (a handful of sibling node fingerprints, say), where
// the hash table's fixed overhead dominates.
type SortedIntSet struct {
	members []int32
}

// NewSortedIntSet returns an empty sorted set.
func NewSortedIntSet() *SortedIntSet {
	return &SortedIntSet{}
}

func (s *SortedIntSet) search(v int32) int {
	return sort.Search(len(s.members), func(i int) bool { return s.members[i] >= v })
}

// Add inserts v, returning true if it was not already present.
func (s *SortedIntSet) Add(v int32) bool {
	i := s.search(v)
	if i < len(s.members) && s.members[i] == v {
		return false
	}
	s.members = append(s.members, 0)
	copy(s.members[i+1:], s.members[i:])
	s.members[i] = v
	return true
}

// Contains reports whether v is a member.
func (s *SortedIntSet) Contains(v int32) bool {
	i := s.search(v)
	return i < len(s.members) && s.members[i] == v
}

// Remove deletes v, returning true if it was present.
func (s *SortedIntSet) Remove(v int32) bool {
	i := s.search(v)
	if i >= len(s.members) || s.members[i] != v {
		return false
	}
	s.members = append(s.members[:i], s.members[i+1:]...)
	return true
}

// Size returns the number of members.
func (s *SortedIntSet) Size() int { return len(s.members) }

// Iterator returns the members in ascending order.
func (s *SortedIntSet) Iterator() []int32 {
	out := make([]int32, len(s.members))
	copy(out, s.members)
	return out
}

// Union returns a new sorted set merging s and other in a single linear pass.
func (s *SortedIntSet) Union(other *SortedIntSet) *SortedIntSet {
	merged := make([]int32, 0, len(s.members)+len(other.members))
	i, j := 0, 0
	for i < len(s.members) && j < len(other.members) {
		switch {
		case s.members[i] < other.members[j]:
			merged = append(merged, s.members[i])
			i++
		case s.members[i] > other.members[j]:
			merged = append(merged, other.members[j])
			j++
		default:
			merged = append(merged, s.members[i])
			i++
			j++
		}
	}
	merged = append(merged, s.members[i:]...)
	merged = append(merged, other.members[j:]...)
	return &SortedIntSet{members: merged}
}

// Intersect returns a new sorted set of members present in both s and other.
func (s *SortedIntSet) Intersect(other *SortedIntSet) *SortedIntSet {
	var merged []int32
	i, j := 0, 0
	for i < len(s.members) && j < len(other.members) {
		switch {
		case s.members[i] < other.members[j]:
			i++
		case s.members[i] > other.members[j]:
			j++
		default:
			merged = append(merged, s.members[i])
			i++
			j++
		}
	}
	return &SortedIntSet{members: merged}
}

// ContainsAll reports whether every member of other is also a member of s.
func (s *SortedIntSet) ContainsAll(other *SortedIntSet) bool {
	for _, v := range other.members {
		if !s.Contains(v) {
			return false
		}
	}
	return true
}
