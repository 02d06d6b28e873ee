package iconstage

import (
	"context"
	"errors"
	"sync"

	"github.com/gogpu/iconstage/internal/delayqueue"
	"github.com/gogpu/iconstage/internal/mailbox"
)

// ErrClosed is returned by Start on a stage that was stopped.
var ErrClosed = errors.New("iconstage: stage is closed")

// Stage renders icons for objects. It owns the request scheduler, the
// compute worker, the render slot and the result pipeline.
//
// Enqueue, Update, OnRenderBegin and OnRenderEnd belong to the frame loop
// and must be called from one goroutine. Stats and Idle may be called from
// anywhere.
type Stage struct {
	opts options
	rig  Rig
	ph   Placeholders

	worker *worker

	// Frame loop to worker.
	admissions *mailbox.Queue[*Request]
	retries    *mailbox.Queue[*Item]
	done       *mailbox.Queue[doneNote]
	wake       *mailbox.Signal

	// Worker to frame loop.
	ready *mailbox.Queue[*mailbox.Sealed[readyJob]]

	// Owned by the frame loop.
	frame   int64
	delayed *delayqueue.Queue[*Request]
	slot    *renderSlot
	cleanup []func()
	pending []*pendingResult

	stats counters

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a stage that samples meshes with sampler and shoots icons
// with rig. The worker does not run until Start.
func New(sampler MeshSampler, rig Rig, opts ...Option) (*Stage, error) {
	if sampler == nil {
		return nil, ErrNilSampler
	}
	if rig.Camera == nil || rig.Scene == nil || rig.Capturer == nil {
		return nil, ErrNilRig
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ph := DefaultPlaceholders()
	if o.placeholders != nil {
		ph = *o.placeholders
	}
	ph = ph.withOverrides(o.overrides)

	s := &Stage{
		opts:       o,
		rig:        rig,
		ph:         ph,
		admissions: mailbox.NewQueue[*Request](),
		retries:    mailbox.NewQueue[*Item](),
		done:       mailbox.NewQueue[doneNote](),
		wake:       mailbox.NewSignal(),
		ready:      mailbox.NewQueue[*mailbox.Sealed[readyJob]](),
		delayed:    delayqueue.New[*Request](),
	}
	s.worker = newWorker(s, sampler)
	return s, nil
}

// Start launches the compute worker. It stops when ctx is done or Stop is
// called.
func (s *Stage) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker.run(ctx)
	}()
	return nil
}

// Stop stops the worker and waits for it to exit. Captures still pending
// are released. Stop belongs to the frame loop and is idempotent.
func (s *Stage) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.restore()
	for _, p := range s.pending {
		p.frame.Release()
	}
	s.pending = nil
	s.stats.pending.Store(0)
}

// Update runs one frame: it finalizes at most one capture, admits the
// requests whose delay elapsed and stages the next fitted job.
func (s *Stage) Update() {
	if s.opts.clock == nil {
		s.frame++
	}
	frame := s.Frame()

	s.finalizeHead(frame)
	s.drainDelayed(frame)
	s.prepareNext()
}

// Frame returns the current frame number.
func (s *Stage) Frame() int64 {
	if s.opts.clock != nil {
		return s.opts.clock.Frame()
	}
	return s.frame
}

// Placeholders returns the placeholder icons in use.
func (s *Stage) Placeholders() Placeholders {
	return s.ph
}

// Stats returns a snapshot of the stage counters.
func (s *Stage) Stats() Stats {
	return s.stats.snapshot()
}

// Idle reports whether every accepted request reached an outcome.
func (s *Stage) Idle() bool {
	return s.stats.outstanding.Load() == 0
}

func (s *Stage) notify(obj Object, icon *Icon) {
	if s.opts.sink != nil {
		s.opts.sink.IconChanged(obj, icon)
	}
}
