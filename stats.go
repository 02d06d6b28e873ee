package iconstage

import "sync/atomic"

// Stats is a snapshot of stage counters.
type Stats struct {
	Enqueued   uint64 // requests accepted by Enqueue
	Rejected   uint64 // requests refused because the item has an icon
	Overridden uint64 // requests resolved by an override image
	Admitted   uint64 // requests sent to the fitter
	Alternates uint64 // requests parked behind an in-flight item
	Retries    uint64 // retry signals emitted
	Computed   uint64 // jobs fitted successfully
	Failed     uint64 // jobs whose fitting failed
	Rendered   uint64 // frames captured
	Succeeded  uint64 // frames finalized with a rendered icon
	Empty      uint64 // frames finalized with the fallback icon
	TimedOut   uint64 // frames abandoned by the result timeout
	Pending    int    // captures waiting for their fence or count
	InFlight   int    // items currently in the dedup table

	// Outstanding counts requests that have not reached an outcome yet.
	Outstanding int
}

type counters struct {
	enqueued, rejected, overridden atomic.Uint64
	admitted, alternates, retries  atomic.Uint64
	computed, failed, rendered     atomic.Uint64
	succeeded, empty, timedOut     atomic.Uint64
	pending, inFlight, outstanding atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Enqueued:   c.enqueued.Load(),
		Rejected:   c.rejected.Load(),
		Overridden: c.overridden.Load(),
		Admitted:   c.admitted.Load(),
		Alternates: c.alternates.Load(),
		Retries:    c.retries.Load(),
		Computed:   c.computed.Load(),
		Failed:     c.failed.Load(),
		Rendered:   c.rendered.Load(),
		Succeeded:  c.succeeded.Load(),
		Empty:      c.empty.Load(),
		TimedOut:   c.timedOut.Load(),
		Pending:    int(c.pending.Load()),
		InFlight:   int(c.inFlight.Load()),

		Outstanding: int(c.outstanding.Load()),
	}
}
