package iconstage

// Enqueue asks for an icon for obj, starting delay frames from now.
// fallback is shown if the render turns out empty; nil means the Error
// placeholder.
//
// Enqueue reports false when the item already has an icon or is filtered
// out. An item with an override image gets it immediately.
func (s *Stage) Enqueue(obj Object, fallback *Icon, delay int) bool {
	if obj == nil || obj.Item() == nil {
		return false
	}
	if fallback == nil {
		fallback = s.ph.Error
	}
	if delay < 0 {
		delay = 0
	}

	req := newRequest(obj, fallback, s.opts.overrides)
	if req.hasIcon(s.opts.filter, s.ph) {
		s.stats.rejected.Add(1)
		return false
	}

	if img := req.overrideIcon(); img != nil {
		icon := &Icon{Name: req.Key, Image: img}
		req.Item.SetIcon(icon)
		s.stats.overridden.Add(1)
		slogger().Debug("iconstage: using override icon", "item", req.Key, "source", req.Override.Source)
		s.notify(obj, icon)
		return true
	}

	req.Item.SetIcon(s.ph.Loading)
	s.delayed.Push(s.Frame()+int64(delay), req)
	s.stats.enqueued.Add(1)
	s.stats.outstanding.Add(1)
	return true
}

// EnqueueSpawned enqueues a freshly spawned object with the spawn delay and
// the Warning placeholder as fallback.
func (s *Stage) EnqueueSpawned(obj Object) bool {
	return s.Enqueue(obj, s.ph.Warning, DefaultSpawnDelay)
}

// drainDelayed admits every request whose ready frame has been reached.
func (s *Stage) drainDelayed(frame int64) {
	admitted := 0
	s.delayed.Drain(frame, func(req *Request) {
		if !req.eligible(s.opts.filter, s.ph) {
			slogger().Debug("iconstage: dropping stale request", "item", req.Key)
			s.stats.outstanding.Add(-1)
			return
		}
		s.admissions.Push(req)
		admitted++
	})
	if admitted > 0 {
		s.wake.Notify()
	}
}

// retry ends req without an icon and lets the worker promote the next
// alternate of its item.
func (s *Stage) retry(req *Request) {
	s.stats.retries.Add(1)
	s.stats.outstanding.Add(-1)
	s.retries.Push(req.Item)
	s.wake.Notify()
}

// finish ends req with a finalized capture.
func (s *Stage) finish(req *Request, ratio float64, passed bool) {
	s.stats.outstanding.Add(-1)
	s.done.Push(doneNote{item: req.Item, key: req.Key, ratio: ratio, passed: passed})
	s.wake.Notify()
}
