package store

import (
	"testing"

	"github.com/hexswarm/sim/pkg/hexgrid"
)

func TestMortonEncodeDecodeRoundTrip(t *testing.T) {
	cases := []hexgrid.Axial{
		{Q: 0, R: 0},
		{Q: 1, R: 0},
		{Q: 0, R: 1},
		{Q: hexgrid.PosMax, R: hexgrid.PosMax},
		{Q: 1234, R: 5678},
	}
	for _, c := range cases {
		key := mortonEncode(c.Q, c.R)
		q, r := mortonDecode(key)
		if q != c.Q || r != c.R {
			t.Fatalf("round trip for %v gave (%d,%d)", c, q, r)
		}
	}
}

func TestMortonTableInsertGet(t *testing.T) {
	tbl := NewMortonTable[string]()
	if err := tbl.Insert(hexgrid.NewAxial(3, 4), "a"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tbl.Insert(hexgrid.NewAxial(1, 2), "b"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	v, ok := tbl.Get(hexgrid.NewAxial(3, 4))
	if !ok || v != "a" {
		t.Fatalf("expected a, got %q (ok=%v)", v, ok)
	}
	if _, ok := tbl.Get(hexgrid.NewAxial(9, 9)); ok {
		t.Fatal("expected miss for unset position")
	}
}

func TestMortonTableOutOfBounds(t *testing.T) {
	tbl := NewMortonTable[int]()
	err := tbl.Insert(hexgrid.NewAxial(-1, 0), 1)
	if err != ErrOutOfBounds {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestMortonTableDeleteRemovesAll(t *testing.T) {
	tbl := NewMortonTable[int]()
	pos := hexgrid.NewAxial(5, 5)
	_ = tbl.Insert(pos, 1)
	_ = tbl.Insert(pos, 2)
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", tbl.Len())
	}
	if _, ok := tbl.Delete(pos); !ok {
		t.Fatal("expected delete to report found")
	}
	if tbl.ContainsKey(pos) {
		t.Fatal("expected no entries left at pos after delete")
	}
}

func TestMortonTableQueryRange(t *testing.T) {
	tbl := NewMortonTable[int]()
	center := hexgrid.NewAxial(100, 100)
	var items []Entry[int]
	for _, n := range center.Neighbours() {
		items = append(items, Entry[int]{Pos: n, Row: 1})
	}
	items = append(items, Entry[int]{Pos: hexgrid.NewAxial(200, 200), Row: 1})
	if err := tbl.Extend(items); err != nil {
		t.Fatalf("extend: %v", err)
	}
	count := tbl.CountInRange(center, 2)
	if count != 6 {
		t.Fatalf("expected 6 neighbours within range, got %d", count)
	}
}

func TestMortonTableExtendRejectsOutOfBounds(t *testing.T) {
	tbl := NewMortonTable[int]()
	err := tbl.Extend([]Entry[int]{{Pos: hexgrid.NewAxial(-5, 0), Row: 1}})
	if err != ErrOutOfBounds {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestMortonTableUpdate(t *testing.T) {
	tbl := NewMortonTable[int]()
	pos := hexgrid.NewAxial(7, 7)
	_ = tbl.Insert(pos, 1)
	if !tbl.Update(pos, 99) {
		t.Fatal("expected update to succeed")
	}
	v, _ := tbl.Get(pos)
	if v != 99 {
		t.Fatalf("expected 99, got %d", v)
	}
	if tbl.Update(hexgrid.NewAxial(0, 0), 1) {
		t.Fatal("expected update of absent key to fail")
	}
}
