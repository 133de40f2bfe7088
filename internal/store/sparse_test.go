package store

import "testing"

func TestSparseTableInsertGetOrder(t *testing.T) {
	tbl := NewSparseTable[string, int]()
	tbl.Insert("b", 2)
	tbl.Insert("a", 1)
	tbl.Insert("c", 3)

	var gotKeys []string
	tbl.Iter(func(k string, v *int) bool {
		gotKeys = append(gotKeys, k)
		return true
	})
	want := []string{"a", "b", "c"}
	if len(gotKeys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(gotKeys))
	}
	for i := range want {
		if gotKeys[i] != want[i] {
			t.Fatalf("expected ascending key order, got %v", gotKeys)
		}
	}
}

func TestSparseTableOverwrite(t *testing.T) {
	tbl := NewSparseTable[string, int]()
	tbl.Insert("k", 1)
	tbl.Insert("k", 2)
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 row after overwrite, got %d", tbl.Len())
	}
	v, ok := tbl.Get("k")
	if !ok || v != 2 {
		t.Fatalf("expected 2, got %d (ok=%v)", v, ok)
	}
}

func TestSparseTableDelete(t *testing.T) {
	tbl := NewSparseTable[string, int]()
	tbl.Insert("k", 1)
	if !tbl.DeleteKey("k") {
		t.Fatal("expected delete to report found")
	}
	if tbl.Contains("k") {
		t.Fatal("expected key gone after delete")
	}
}
