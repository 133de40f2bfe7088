package store

import (
	"testing"

	"github.com/hexswarm/sim/pkg/hexgrid"
)

func TestHierarchicalTableRoomIsolation(t *testing.T) {
	tbl := NewHierarchicalTable[string]()
	roomA := hexgrid.NewRoom(0, 0)
	roomB := hexgrid.NewRoom(1, 0)
	posA := hexgrid.WorldPosition{Room: roomA, Pos: hexgrid.NewAxial(1, 1)}
	posB := hexgrid.WorldPosition{Room: roomB, Pos: hexgrid.NewAxial(1, 1)}

	if err := tbl.Insert(posA, "a"); err != nil {
		t.Fatalf("insert a: %v", err)
	}
	if err := tbl.Insert(posB, "b"); err != nil {
		t.Fatalf("insert b: %v", err)
	}

	va, ok := tbl.Get(posA)
	if !ok || va != "a" {
		t.Fatalf("expected a, got %q (ok=%v)", va, ok)
	}
	vb, ok := tbl.Get(posB)
	if !ok || vb != "b" {
		t.Fatalf("expected b, got %q (ok=%v)", vb, ok)
	}
}

func TestHierarchicalTableDeletePrunesEmptyRoom(t *testing.T) {
	tbl := NewHierarchicalTable[int]()
	room := hexgrid.NewRoom(3, 3)
	pos := hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(0, 0)}
	_ = tbl.Insert(pos, 1)

	if len(tbl.Rooms()) != 1 {
		t.Fatalf("expected 1 room, got %d", len(tbl.Rooms()))
	}
	if _, ok := tbl.Delete(pos); !ok {
		t.Fatal("expected delete to report found")
	}
	if len(tbl.Rooms()) != 0 {
		t.Fatalf("expected room pruned after last row removed, got %d rooms", len(tbl.Rooms()))
	}
}

func TestHierarchicalTableQueryRangeRestrictedToRoom(t *testing.T) {
	tbl := NewHierarchicalTable[int]()
	roomA := hexgrid.NewRoom(0, 0)
	roomB := hexgrid.NewRoom(5, 5)
	center := hexgrid.NewAxial(10, 10)
	_ = tbl.Insert(hexgrid.WorldPosition{Room: roomA, Pos: center}, 1)
	_ = tbl.Insert(hexgrid.WorldPosition{Room: roomB, Pos: center}, 2)

	var hits int
	tbl.QueryRange(hexgrid.WorldPosition{Room: roomA, Pos: center}, 5, func(hexgrid.WorldPosition, *int) {
		hits++
	})
	if hits != 1 {
		t.Fatalf("expected exactly 1 hit within roomA, got %d", hits)
	}
}
