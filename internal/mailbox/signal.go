package mailbox

import "context"

// Signal is a level-triggered wake-up flag. Any number of Notify calls
// made while nobody waits collapse into one pending wake-up.
type Signal struct {
	ch chan struct{}
}

// NewSignal returns a signal with no pending wake-up.
func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Notify records a wake-up. It never blocks.
func (s *Signal) Notify() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// C returns the channel that receives pending wake-ups, for use in select.
func (s *Signal) C() <-chan struct{} {
	return s.ch
}

// Wait blocks until a wake-up is pending or ctx is done.
func (s *Signal) Wait(ctx context.Context) error {
	select {
	case <-s.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
