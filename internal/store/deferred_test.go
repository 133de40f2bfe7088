package store

import "testing"

func TestDeferredDeleteQueueDedupes(t *testing.T) {
	q := NewDeferredDeleteQueue[int]()
	q.Push(1)
	q.Push(2)
	q.Push(1)
	if q.Len() != 2 {
		t.Fatalf("expected 2 distinct keys, got %d", q.Len())
	}
}

func TestDeferredDeleteQueueApplyTo(t *testing.T) {
	q := NewDeferredDeleteQueue[int]()
	q.Push(1)
	q.Push(2)

	tbl := NewSparseTable[int, string]()
	tbl.Insert(1, "one")
	tbl.Insert(2, "two")
	tbl.Insert(3, "three")

	ApplyTo[int](q, tbl)

	if tbl.Contains(1) || tbl.Contains(2) {
		t.Fatal("expected queued keys removed")
	}
	if !tbl.Contains(3) {
		t.Fatal("expected unqueued key to survive")
	}
}

func TestDeferredDeleteQueueReset(t *testing.T) {
	q := NewDeferredDeleteQueue[int]()
	q.Push(1)
	q.Reset()
	if q.Len() != 0 {
		t.Fatalf("expected empty queue after reset, got %d", q.Len())
	}
	q.Push(1)
	if q.Len() != 1 {
		t.Fatal("expected push to work again after reset")
	}
}
