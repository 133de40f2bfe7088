package store

import "github.com/hexswarm/sim/pkg/hexgrid"

// HierarchicalTable is a two-level spatial index: a Go map keyed by Room
// selects the in-room MortonTable that actually holds the row, so a range
// query never has to scan positions belonging to a different room. The
// outer level is not Morton-ordered; rooms come back in map order.
// Grounded on SPEC_FULL.md §4.2 (hierarchical spatial table), the Go
// counterpart of the original engine's per-room Morton table split that
// keeps a single query_range pass from crossing room boundaries, which the
// flat axial domain alone cannot express (two different rooms can contain
// the same in-room Axial).
type HierarchicalTable[Row any] struct {
	rooms map[hexgrid.Room]*MortonTable[Row]
}

// NewHierarchicalTable returns an empty table.
func NewHierarchicalTable[Row any]() *HierarchicalTable[Row] {
	return &HierarchicalTable[Row]{rooms: make(map[hexgrid.Room]*MortonTable[Row])}
}

func (t *HierarchicalTable[Row]) roomTable(room hexgrid.Room, create bool) *MortonTable[Row] {
	rt, ok := t.rooms[room]
	if !ok {
		if !create {
			return nil
		}
		rt = NewMortonTable[Row]()
		t.rooms[room] = rt
	}
	return rt
}

// Len returns the total number of rows across every room.
func (t *HierarchicalTable[Row]) Len() int {
	n := 0
	for _, rt := range t.rooms {
		n += rt.Len()
	}
	return n
}

// Insert stores row at pos.
func (t *HierarchicalTable[Row]) Insert(pos hexgrid.WorldPosition, row Row) error {
	return t.roomTable(pos.Room, true).Insert(pos.Pos, row)
}

// Get returns the row at pos, if any.
func (t *HierarchicalTable[Row]) Get(pos hexgrid.WorldPosition) (Row, bool) {
	var zero Row
	rt := t.roomTable(pos.Room, false)
	if rt == nil {
		return zero, false
	}
	return rt.Get(pos.Pos)
}

// GetPtr returns a pointer to the row at pos for in-place mutation, if any.
func (t *HierarchicalTable[Row]) GetPtr(pos hexgrid.WorldPosition) (*Row, bool) {
	rt := t.roomTable(pos.Room, false)
	if rt == nil {
		return nil, false
	}
	return rt.GetPtr(pos.Pos)
}

// Contains reports whether pos has a row.
func (t *HierarchicalTable[Row]) Contains(pos hexgrid.WorldPosition) bool {
	rt := t.roomTable(pos.Room, false)
	return rt != nil && rt.ContainsKey(pos.Pos)
}

// Update overwrites the row at pos if present.
func (t *HierarchicalTable[Row]) Update(pos hexgrid.WorldPosition, row Row) bool {
	rt := t.roomTable(pos.Room, false)
	if rt == nil {
		return false
	}
	return rt.Update(pos.Pos, row)
}

// Delete removes the row at pos, if any, pruning the room's table once it
// becomes empty so Rooms() and iteration never surface stale empty rooms.
func (t *HierarchicalTable[Row]) Delete(pos hexgrid.WorldPosition) (Row, bool) {
	var zero Row
	rt := t.roomTable(pos.Room, false)
	if rt == nil {
		return zero, false
	}
	row, ok := rt.Delete(pos.Pos)
	if rt.Len() == 0 {
		delete(t.rooms, pos.Room)
	}
	return row, ok
}

// DeleteKey is Delete under the name store.Deletable expects.
func (t *HierarchicalTable[Row]) DeleteKey(pos hexgrid.WorldPosition) bool {
	_, ok := t.Delete(pos)
	return ok
}

// QueryRange visits every (position, row) within radius hex steps of center,
// restricted to center's room.
func (t *HierarchicalTable[Row]) QueryRange(center hexgrid.WorldPosition, radius uint32, visit func(hexgrid.WorldPosition, *Row)) {
	rt := t.roomTable(center.Room, false)
	if rt == nil {
		return
	}
	rt.QueryRange(center.Pos, radius, func(pos hexgrid.Axial, row *Row) {
		visit(hexgrid.WorldPosition{Room: center.Room, Pos: pos}, row)
	})
}

// Rooms returns the set of rooms that currently hold at least one row.
func (t *HierarchicalTable[Row]) Rooms() []hexgrid.Room {
	out := make([]hexgrid.Room, 0, len(t.rooms))
	for r := range t.rooms {
		out = append(out, r)
	}
	return out
}

// IterRoom calls visit for every (position, row) pair within room, in
// Morton order.
func (t *HierarchicalTable[Row]) IterRoom(room hexgrid.Room, visit func(hexgrid.Axial, *Row) bool) {
	rt := t.roomTable(room, false)
	if rt == nil {
		return
	}
	rt.Iter(visit)
}

// Clear empties the table.
func (t *HierarchicalTable[Row]) Clear() {
	t.rooms = make(map[hexgrid.Room]*MortonTable[Row])
}
