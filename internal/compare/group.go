package compare

import (
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
)

// Group is one group produced by a grouping pass: its key (nil for the
// pattern-based variants, which have no key) and its members in
// population order.
type Group struct {
	Key     value.AtomicValue
	Members []sequence.Item
}

// GroupIterator steps through the groups a grouping pass produced.
// Current, after a successful Next, exposes the group just
// entered, and the previously current group remains readable via the
// value this method last returned (callers that need xsl:sort's
// "current-group()" should retain that value themselves).
type GroupIterator struct {
	groups []Group
	pos    int // -1 before the first group
}

// NewGroupIterator wraps a slice of groups, in the order they should be
// emitted (population order of first appearance).
func NewGroupIterator(groups []Group) *GroupIterator {
	return &GroupIterator{groups: groups, pos: -1}
}

// Next advances to the next group and returns it, or ok=false once every
// group has been emitted.
func (it *GroupIterator) Next() (Group, bool) {
	it.pos++
	if it.pos >= len(it.groups) {
		it.pos = len(it.groups)
		return Group{}, false
	}
	return it.groups[it.pos], true
}

// Current returns the group most recently returned by Next, or the zero
// Group before the first call.
func (it *GroupIterator) Current() (Group, bool) {
	if it.pos < 0 || it.pos >= len(it.groups) {
		return Group{}, false
	}
	return it.groups[it.pos], true
}

// GroupByKeyFunc computes the set of distinct key values that place one
// item into one or more groups. A single item may yield more than one
// value, so an item may appear in multiple groups; repeated
// values from the same item's own key sequence are deduplicated so the
// item joins each of its groups exactly once.
type GroupByKeyFunc func(item sequence.Item) ([]value.AtomicValue, error)

// GroupBy implements the group-by variant: every distinct key value
// across the whole population starts a group, in order of the first item
// whose key sequence produced that value; every item whose key sequence
// contains a group's value becomes (or rejoins) a member of that group.
// The key is hashed via AtomicComparer.ComparisonKey().HashString(); a
// comparer that cannot classify a key's dynamic type is the caller's
// XPTY0004 to raise before calling GroupBy.
func GroupBy(items []sequence.Item, keyFn GroupByKeyFunc, comparer AtomicComparer) ([]Group, error) {
	index := make(map[string]int)
	var groups []Group
	for _, item := range items {
		values, err := keyFn(item)
		if err != nil {
			return nil, err
		}
		seenThisItem := make(map[string]bool, len(values))
		for _, v := range values {
			hash := comparer.ComparisonKey(v).HashString()
			if seenThisItem[hash] {
				continue
			}
			seenThisItem[hash] = true
			gi, ok := index[hash]
			if !ok {
				gi = len(groups)
				index[hash] = gi
				groups = append(groups, Group{Key: v})
			}
			groups[gi].Members = append(groups[gi].Members, item)
		}
	}
	return groups, nil
}

// GroupKeyFunc computes a single key value for one item, used by
// group-adjacent.
type GroupKeyFunc func(item sequence.Item) (value.AtomicValue, error)

// GroupAdjacent implements the group-adjacent variant: an item joins the
// running group iff its key compares equal to the running key; any other
// key starts a new group.
func GroupAdjacent(items []sequence.Item, keyFn GroupKeyFunc, comparer AtomicComparer) ([]Group, error) {
	var groups []Group
	var runningKey Key
	haveRunning := false
	for _, item := range items {
		v, err := keyFn(item)
		if err != nil {
			return nil, err
		}
		k := comparer.ComparisonKey(v)
		if haveRunning && runningKey.Equals(k) {
			last := &groups[len(groups)-1]
			last.Members = append(last.Members, item)
			continue
		}
		groups = append(groups, Group{Key: v, Members: []sequence.Item{item}})
		runningKey = k
		haveRunning = true
	}
	return groups, nil
}

// PatternMatchFunc reports whether an item matches the xsl:for-each-group
// group-starting-with/group-ending-with pattern.
type PatternMatchFunc func(item sequence.Item) (bool, error)

// GroupStartingWith implements the group-starting-with variant: a new
// group starts at every item matching the pattern, and always at the
// first item.
func GroupStartingWith(items []sequence.Item, matches PatternMatchFunc) ([]Group, error) {
	var groups []Group
	for i, item := range items {
		start := i == 0
		if !start {
			m, err := matches(item)
			if err != nil {
				return nil, err
			}
			start = m
		}
		if start {
			groups = append(groups, Group{Members: []sequence.Item{item}})
			continue
		}
		last := &groups[len(groups)-1]
		last.Members = append(last.Members, item)
	}
	return groups, nil
}

// GroupEndingWith implements the group-ending-with variant: the current
// group closes after every item matching the pattern.
func GroupEndingWith(items []sequence.Item, matches PatternMatchFunc) ([]Group, error) {
	var groups []Group
	var cur Group
	open := false
	for _, item := range items {
		if !open {
			cur = Group{}
			open = true
		}
		cur.Members = append(cur.Members, item)
		m, err := matches(item)
		if err != nil {
			return nil, err
		}
		if m {
			groups = append(groups, cur)
			open = false
		}
	}
	if open && len(cur.Members) > 0 {
		groups = append(groups, cur)
	}
	return groups, nil
}
