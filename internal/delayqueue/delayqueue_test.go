package delayqueue

import (
	"slices"
	"testing"
)

func TestPopDueOrder(t *testing.T) {
	q := New[string]()
	q.Push(12, "c")
	q.Push(10, "a")
	q.Push(11, "b1")
	q.Push(11, "b2")
	q.Push(20, "late")

	var got []string
	n := q.Drain(12, func(s string) { got = append(got, s) })

	want := []string{"a", "b1", "b2", "c"}
	if !slices.Equal(got, want) {
		t.Errorf("Drain(12) = %v, want %v", got, want)
	}
	if n != len(want) {
		t.Errorf("Drain returned %d, want %d", n, len(want))
	}
	if q.Len() != 1 {
		t.Errorf("Len = %d, want 1", q.Len())
	}
	if ready, ok := q.Peek(); !ok || ready != 20 {
		t.Errorf("Peek = (%d, %v), want (20, true)", ready, ok)
	}
}

func TestPopDueNotReady(t *testing.T) {
	q := New[int]()
	q.Push(5, 1)
	if _, ok := q.PopDue(4); ok {
		t.Error("PopDue(4) returned an entry due at 5")
	}
	if v, ok := q.PopDue(5); !ok || v != 1 {
		t.Errorf("PopDue(5) = (%d, %v), want (1, true)", v, ok)
	}
	if _, ok := q.PopDue(100); ok {
		t.Error("PopDue on empty queue returned an entry")
	}
	if _, ok := q.Peek(); ok {
		t.Error("Peek on empty queue reported an entry")
	}
}

func TestStableFIFOForSameFrame(t *testing.T) {
	q := New[int]()
	for i := 0; i < 100; i++ {
		q.Push(7, i)
	}
	for i := 0; i < 100; i++ {
		v, ok := q.PopDue(7)
		if !ok || v != i {
			t.Fatalf("pop %d = (%d, %v), want (%d, true)", i, v, ok, i)
		}
	}
}
