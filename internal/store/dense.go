package store

import "github.com/hexswarm/sim/pkg/hexgrid"

// DenseTable is a contiguous, offset-addressed table keyed by EntityId. Most
// entity component tables (Hp, Carry, Energy, Bot, Structure, ...) are
// expected to hold a row for most live entities, so a dense array indexed by
// id-offset avoids the per-lookup indirection a map would cost. Grounded on
// the vector-backed storage the original engine uses for its bulk component
// tables, adapted to Go's slice-of-optional-row idiom (a parallel "present"
// bitmap rather than an Option<T> column).
type DenseTable[Row any] struct {
	offset  hexgrid.EntityId
	rows    []Row
	present []bool
	count   int
}

// NewDenseTable returns an empty table.
func NewDenseTable[Row any]() *DenseTable[Row] { return &DenseTable[Row]{} }

// Len returns the number of rows currently present.
func (t *DenseTable[Row]) Len() int { return t.count }

func (t *DenseTable[Row]) indexFor(id hexgrid.EntityId) (int, bool) {
	if len(t.rows) == 0 {
		return 0, false
	}
	if id < t.offset {
		return 0, false
	}
	idx := int(id - t.offset)
	if idx >= len(t.rows) {
		return 0, false
	}
	return idx, true
}

// growTo extends the backing slices so id addresses a valid index,
// initializing the offset from the first insert the table ever receives.
func (t *DenseTable[Row]) growTo(id hexgrid.EntityId) int {
	if len(t.rows) == 0 {
		t.offset = id
		t.rows = make([]Row, 1)
		t.present = make([]bool, 1)
		return 0
	}
	if id < t.offset {
		// Shift the window down; entity ids are handed out monotonically by
		// World.InsertEntity so this path is rare (only exercised by tests
		// that insert out of id order).
		shift := int(t.offset - id)
		rows := make([]Row, len(t.rows)+shift)
		present := make([]bool, len(t.present)+shift)
		copy(rows[shift:], t.rows)
		copy(present[shift:], t.present)
		t.rows, t.present = rows, present
		t.offset = id
		return 0
	}
	idx := int(id - t.offset)
	if idx >= len(t.rows) {
		grown := make([]Row, idx+1)
		presentGrown := make([]bool, idx+1)
		copy(grown, t.rows)
		copy(presentGrown, t.present)
		t.rows, t.present = grown, presentGrown
	}
	return idx
}

// Insert stores row for id, replacing any existing row without affecting Len.
func (t *DenseTable[Row]) Insert(id hexgrid.EntityId, row Row) {
	idx := t.growTo(id)
	if !t.present[idx] {
		t.count++
	}
	t.present[idx] = true
	t.rows[idx] = row
}

// Get returns the row for id, if present.
func (t *DenseTable[Row]) Get(id hexgrid.EntityId) (Row, bool) {
	var zero Row
	idx, ok := t.indexFor(id)
	if !ok || !t.present[idx] {
		return zero, false
	}
	return t.rows[idx], true
}

// GetPtr returns a pointer to id's row for in-place mutation.
func (t *DenseTable[Row]) GetPtr(id hexgrid.EntityId) (*Row, bool) {
	idx, ok := t.indexFor(id)
	if !ok || !t.present[idx] {
		return nil, false
	}
	return &t.rows[idx], true
}

// Contains reports whether id has a row.
func (t *DenseTable[Row]) Contains(id hexgrid.EntityId) bool {
	idx, ok := t.indexFor(id)
	return ok && t.present[idx]
}

// Delete removes id's row, if any, and reports whether anything was removed.
func (t *DenseTable[Row]) Delete(id hexgrid.EntityId) bool {
	idx, ok := t.indexFor(id)
	if !ok || !t.present[idx] {
		return false
	}
	var zero Row
	t.rows[idx] = zero
	t.present[idx] = false
	t.count--
	return true
}

// DeleteKey is Delete under the name store.Deletable expects, so a
// DeferredDeleteQueue[hexgrid.EntityId] can be applied directly to a
// *DenseTable[Row].
func (t *DenseTable[Row]) DeleteKey(id hexgrid.EntityId) bool { return t.Delete(id) }

// Iter calls visit for every present (id, row) pair in ascending id order.
func (t *DenseTable[Row]) Iter(visit func(hexgrid.EntityId, *Row) bool) {
	for i := range t.rows {
		if !t.present[i] {
			continue
		}
		if !visit(t.offset+hexgrid.EntityId(i), &t.rows[i]) {
			return
		}
	}
}

// Clear empties the table.
func (t *DenseTable[Row]) Clear() {
	t.rows = nil
	t.present = nil
	t.offset = 0
	t.count = 0
}
