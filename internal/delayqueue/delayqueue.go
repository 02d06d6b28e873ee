// Package delayqueue holds values until a frame number is reached.
//
// Entries become due once the current frame is at or past their ready
// frame. Due entries come out in ready-frame order; entries with the same
// ready frame come out in insertion order.
//
// A Queue is not safe for concurrent use. It is driven from the frame loop.
package delayqueue

import "container/heap"

// Queue is a min-heap keyed by (ready frame, insertion sequence).
type Queue[T any] struct {
	h   entries[T]
	seq uint64
}

type entry[T any] struct {
	ready int64
	seq   uint64
	value T
}

type entries[T any] []entry[T]

func (e entries[T]) Len() int { return len(e) }

func (e entries[T]) Less(i, j int) bool {
	if e[i].ready != e[j].ready {
		return e[i].ready < e[j].ready
	}
	return e[i].seq < e[j].seq
}

func (e entries[T]) Swap(i, j int) { e[i], e[j] = e[j], e[i] }

func (e *entries[T]) Push(x any) { *e = append(*e, x.(entry[T])) }

func (e *entries[T]) Pop() any {
	old := *e
	n := len(old)
	it := old[n-1]
	var zero entry[T]
	old[n-1] = zero
	*e = old[:n-1]
	return it
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push schedules v for the given ready frame.
func (q *Queue[T]) Push(ready int64, v T) {
	heap.Push(&q.h, entry[T]{ready: ready, seq: q.seq, value: v})
	q.seq++
}

// PopDue removes and returns the earliest entry if its ready frame is at
// or before frame.
func (q *Queue[T]) PopDue(frame int64) (T, bool) {
	if len(q.h) == 0 || q.h[0].ready > frame {
		var zero T
		return zero, false
	}
	return heap.Pop(&q.h).(entry[T]).value, true
}

// Drain removes every entry due at frame and passes it to fn in order.
func (q *Queue[T]) Drain(frame int64, fn func(T)) int {
	n := 0
	for {
		v, ok := q.PopDue(frame)
		if !ok {
			return n
		}
		fn(v)
		n++
	}
}

// Peek returns the ready frame of the earliest entry.
func (q *Queue[T]) Peek() (int64, bool) {
	if len(q.h) == 0 {
		return 0, false
	}
	return q.h[0].ready, true
}

// Len returns the number of scheduled entries.
func (q *Queue[T]) Len() int { return len(q.h) }
