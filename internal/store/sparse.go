package store

import "sort"

// Ordered constrains sparse map keys to types with a natural total order
// (entity ids, user ids by string form, room-encoded ints, ...).
type Ordered interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~string
}

// SparseTable is a sorted-slice map used for tables that hold few rows
// relative to the id space and are not spatial (e.g. scripts, logs and room
// records, each keyed by the string form of its id). Point
// lookup and insert are O(log n) + O(n) shift, which is cheaper than a Go
// map for the table sizes this engine expects and keeps iteration ordered,
// matching the original's BTreeMap-backed sparse tables.
type SparseTable[Key Ordered, Row any] struct {
	keys []Key
	rows []Row
}

// NewSparseTable returns an empty table.
func NewSparseTable[Key Ordered, Row any]() *SparseTable[Key, Row] {
	return &SparseTable[Key, Row]{}
}

func (t *SparseTable[Key, Row]) search(key Key) (int, bool) {
	idx := sort.Search(len(t.keys), func(i int) bool { return t.keys[i] >= key })
	if idx < len(t.keys) && t.keys[idx] == key {
		return idx, true
	}
	return idx, false
}

// Len returns the number of rows.
func (t *SparseTable[Key, Row]) Len() int { return len(t.keys) }

// Insert stores row for key, overwriting any existing row.
func (t *SparseTable[Key, Row]) Insert(key Key, row Row) {
	idx, found := t.search(key)
	if found {
		t.rows[idx] = row
		return
	}
	t.keys = append(t.keys, key)
	copy(t.keys[idx+1:], t.keys[idx:])
	t.keys[idx] = key
	t.rows = append(t.rows, row)
	copy(t.rows[idx+1:], t.rows[idx:])
	t.rows[idx] = row
}

// Get returns key's row, if present.
func (t *SparseTable[Key, Row]) Get(key Key) (Row, bool) {
	var zero Row
	idx, found := t.search(key)
	if !found {
		return zero, false
	}
	return t.rows[idx], true
}

// GetPtr returns a pointer to key's row for in-place mutation.
func (t *SparseTable[Key, Row]) GetPtr(key Key) (*Row, bool) {
	idx, found := t.search(key)
	if !found {
		return nil, false
	}
	return &t.rows[idx], true
}

// Contains reports whether key has a row.
func (t *SparseTable[Key, Row]) Contains(key Key) bool {
	_, found := t.search(key)
	return found
}

// Delete removes key's row and reports whether anything was removed.
func (t *SparseTable[Key, Row]) Delete(key Key) bool {
	idx, found := t.search(key)
	if !found {
		return false
	}
	t.keys = append(t.keys[:idx], t.keys[idx+1:]...)
	t.rows = append(t.rows[:idx], t.rows[idx+1:]...)
	return true
}

// DeleteKey is Delete under the name store.Deletable expects.
func (t *SparseTable[Key, Row]) DeleteKey(key Key) bool { return t.Delete(key) }

// Iter calls visit for every (key, row) pair in ascending key order.
func (t *SparseTable[Key, Row]) Iter(visit func(Key, *Row) bool) {
	for i := range t.keys {
		if !visit(t.keys[i], &t.rows[i]) {
			return
		}
	}
}

// Clear empties the table.
func (t *SparseTable[Key, Row]) Clear() {
	t.keys = nil
	t.rows = nil
}
