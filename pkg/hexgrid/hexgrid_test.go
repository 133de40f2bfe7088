package hexgrid

import "testing"

func TestHexDistance(t *testing.T) {
	a := NewAxial(0, 0)
	b := NewAxial(3, -1)
	if d := a.HexDistance(b); d != 3 {
		t.Fatalf("expected distance 3, got %d", d)
	}
}

func TestHexDistanceSelf(t *testing.T) {
	a := NewAxial(5, 5)
	if d := a.HexDistance(a); d != 0 {
		t.Fatalf("expected distance 0, got %d", d)
	}
}

func TestNeighboursAreAllDistanceOne(t *testing.T) {
	center := NewAxial(10, 10)
	for _, n := range center.Neighbours() {
		if d := center.HexDistance(n); d != 1 {
			t.Fatalf("neighbour %v at distance %d, want 1", n, d)
		}
	}
}

func TestInDomain(t *testing.T) {
	if !NewAxial(0, 0).InDomain() {
		t.Fatal("origin should be in domain")
	}
	if !NewAxial(PosMax, PosMax).InDomain() {
		t.Fatal("PosMax,PosMax should be in domain")
	}
	if NewAxial(-1, 0).InDomain() {
		t.Fatal("negative coordinate should not be in domain")
	}
	if NewAxial(PosMax+1, 0).InDomain() {
		t.Fatal("out of range coordinate should not be in domain")
	}
}

func TestRoomKeyDistinctPerRoom(t *testing.T) {
	a := NewRoom(1, 2)
	b := NewRoom(2, 1)
	if a.Key() == b.Key() {
		t.Fatalf("expected distinct keys for %v and %v", a, b)
	}
}

func TestEntityTimeKey(t *testing.T) {
	a := EntityTime{Entity: 1, Tick: 5}
	b := EntityTime{Entity: 1, Tick: 6}
	if a.Key() == b.Key() {
		t.Fatal("expected distinct keys for different ticks")
	}
}
