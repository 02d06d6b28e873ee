package mailbox

import "sync/atomic"

// Sealed wraps a pointer that may be opened only once. The goroutine that
// opens it becomes the sole owner of the value; later calls get nothing.
//
// Values crossing from one goroutine to another are sealed by the sender
// and opened by the receiver, so the sender cannot keep using them by
// accident.
type Sealed[T any] struct {
	p atomic.Pointer[T]
}

// Seal wraps v. A nil v yields a seal that opens empty.
func Seal[T any](v *T) *Sealed[T] {
	s := &Sealed[T]{}
	s.p.Store(v)
	return s
}

// Open takes the value out. Only the first call returns it.
func (s *Sealed[T]) Open() (*T, bool) {
	if s == nil {
		return nil, false
	}
	v := s.p.Swap(nil)
	return v, v != nil
}

// Opened reports whether the value has been taken.
func (s *Sealed[T]) Opened() bool {
	return s == nil || s.p.Load() == nil
}
