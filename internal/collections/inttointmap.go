package collections

// IntToIntMap is the open-addressed hash variant of IntSet refitted for
// int->int mappings, used by the expression tree to map expression IDs to
// parent IDs (a side table instead of bidirectional owning references).
type IntToIntMap struct {
	keys     []int32
	values   []int32
	occupied []bool
	count    int
	// defaultValue is returned by Get for an absent key.
	defaultValue int32
}

// NewIntToIntMap returns an empty map whose Get returns defaultValue for
// absent keys.
func NewIntToIntMap(defaultValue int32) *IntToIntMap {
	size := 8
	return &IntToIntMap{
		keys:         make([]int32, size),
		values:       make([]int32, size),
		occupied:     make([]bool, size),
		defaultValue: defaultValue,
	}
}

func (m *IntToIntMap) hash(k int32) int {
	h := (uint64(uint32(k)) * phi64) >> 32
	return int(h) & (len(m.keys) - 1)
}

// Put sets key to value, overwriting any existing mapping.
func (m *IntToIntMap) Put(key, value int32) {
	if float64(m.count+1) > float64(len(m.keys))*0.25 {
		m.grow()
	}
	idx := m.hash(key)
	for m.occupied[idx] {
		if m.keys[idx] == key {
			m.values[idx] = value
			return
		}
		idx = (idx + 1) & (len(m.keys) - 1)
	}
	m.keys[idx] = key
	m.values[idx] = value
	m.occupied[idx] = true
	m.count++
}

func (m *IntToIntMap) grow() {
	oldKeys, oldVals, oldOcc := m.keys, m.values, m.occupied
	newSize := len(m.keys) * 2
	m.keys = make([]int32, newSize)
	m.values = make([]int32, newSize)
	m.occupied = make([]bool, newSize)
	m.count = 0
	for i, occ := range oldOcc {
		if occ {
			m.Put(oldKeys[i], oldVals[i])
		}
	}
}

// Get returns the value mapped to key, or defaultValue if absent.
func (m *IntToIntMap) Get(key int32) int32 {
	v, ok := m.Lookup(key)
	if !ok {
		return m.defaultValue
	}
	return v
}

// Lookup returns the value mapped to key and whether key is present.
func (m *IntToIntMap) Lookup(key int32) (int32, bool) {
	if len(m.keys) == 0 {
		return 0, false
	}
	idx := m.hash(key)
	for m.occupied[idx] {
		if m.keys[idx] == key {
			return m.values[idx], true
		}
		idx = (idx + 1) & (len(m.keys) - 1)
	}
	return 0, false
}

// Remove deletes key, returning true if it was present.
func (m *IntToIntMap) Remove(key int32) bool {
	mask := len(m.keys) - 1
	idx := m.hash(key)
	for m.occupied[idx] {
		if m.keys[idx] == key {
			m.occupied[idx] = false
			m.count--
			next := (idx + 1) & mask
			for m.occupied[next] {
				rk, rv := m.keys[next], m.values[next]
				m.occupied[next] = false
				m.count--
				m.Put(rk, rv)
				next = (next + 1) & mask
			}
			return true
		}
		idx = (idx + 1) & mask
	}
	return false
}

// Size returns the number of entries.
func (m *IntToIntMap) Size() int { return m.count }
